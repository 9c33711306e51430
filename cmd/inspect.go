package cmd

import (
	"fmt"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/auth"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/config"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/drm"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/stream"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/parser"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect URL",
	Short: "Summarize a manifest and its protection",
	Args:  cobra.ExactArgs(1),
	RunE:  inspectRun,
}

type inspectResult struct {
	Summary    *models.ManifestSummary `json:"summary"`
	Protection *models.ProtectionInfo  `json:"protection,omitempty"`
	PSSH       []models.PsshRecord     `json:"pssh,omitempty"`
}

func inspectRun(cmd *cobra.Command, args []string) error {
	manifestURL := args[0]
	headers := auth.NewStaticHeadersFromConfig(config.GetBroadcasterConfig(manifestURL))
	fetcher := stream.NewManifestFetcher(nil, headers, config.Env.FetchTimeout)

	body, finalURL, err := fetcher.FetchRaw(cmd.Context(), manifestURL)
	if err != nil {
		return err
	}
	summary, err := parser.Inspect(body, finalURL)
	if err != nil {
		return err
	}
	result := &inspectResult{Summary: summary}

	if !parser.IsHLS(body) {
		doc, err := parser.ParseManifest(body, finalURL)
		if err != nil {
			zap.S().Warnf("skipping protection scan: %v", err)
		} else {
			extractor := &drm.Extractor{}
			result.Protection, result.PSSH = extractor.Extract(doc)
		}
	}

	if flagJSON {
		return printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "type: %s  live: %t  duration: %ds  protected: %t\n",
		summary.Type, summary.IsLive, summary.Duration, summary.Protected)
	if summary.DefaultKID != "" {
		fmt.Fprintf(out, "default kid: %s\n", summary.DefaultKID)
	}
	for _, variant := range summary.Variants {
		fmt.Fprintf(out, "  %-12s %-6s %-5s %-5s %9d %dx%d\n",
			variant.ID, variant.MediaType, variant.VideoCodec, variant.AudioCodec,
			variant.Bandwidth, variant.Width, variant.Height)
	}
	if result.Protection != nil && !result.Protection.IsEmpty() {
		fmt.Fprintf(out, "key id: %s\n", result.Protection.KeyID)
	}
	for _, record := range result.PSSH {
		systemID := record.SystemID
		switch {
		case record.IsWidevine():
			systemID = "widevine"
		case record.IsPlayReady():
			systemID = "playready"
		case systemID == "":
			systemID = "-"
		}
		fmt.Fprintf(out, "pssh %-9s under %-18s %s (%d bytes, v%d)\n",
			record.Source, record.Parent, systemID, record.Length, record.Version)
	}
	return nil
}
