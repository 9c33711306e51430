package cmd

import (
	"fmt"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/auth"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/config"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/stream"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/parser"

	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite URL",
	Short: "Print the downstream compatible version of an mpd",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestURL := args[0]
		headers := auth.NewStaticHeadersFromConfig(config.GetBroadcasterConfig(manifestURL))
		fetcher := stream.NewManifestFetcher(nil, headers, config.Env.FetchTimeout)

		body, finalURL, err := fetcher.FetchRaw(cmd.Context(), manifestURL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), parser.RewriteManifest(string(body), finalURL))
		return nil
	},
}
