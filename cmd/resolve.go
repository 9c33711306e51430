package cmd

import (
	"fmt"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/config"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/stream"

	"github.com/spf13/cobra"
)

var (
	flagContentID  string
	flagAssets     []string
	flagLive       bool
	flagLicenseURL string
	flagSaveName   string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a replay into a playable stream",
	Example: `  replaytv resolve --content-id show_s01e01 \
    --asset usp_dashcenc_h264,hd,https://cdn.example.com/show/manifest.mpd \
    --asset http_h264,sd,https://cdn.example.com/show/master.m3u8`,
	RunE: resolveRun,
}

func init() {
	resolveCmd.Flags().StringVar(&flagContentID, "content-id", "", "Broadcaster content id")
	resolveCmd.Flags().StringArrayVar(&flagAssets, "asset", nil, "Asset as type,quality,url (repeatable)")
	resolveCmd.Flags().BoolVar(&flagLive, "live", false, "The content is a live stream")
	resolveCmd.Flags().StringVar(&flagLicenseURL, "license-url", "", "Widevine license server url")
	resolveCmd.Flags().StringVar(&flagSaveName, "save-name", "", "Remux save name (default: derived from content id)")
	_ = resolveCmd.MarkFlagRequired("content-id")
	_ = resolveCmd.MarkFlagRequired("asset")
}

func resolveRun(cmd *cobra.Command, args []string) error {
	assets, err := parseAssets(flagAssets)
	if err != nil {
		return err
	}

	req := &stream.ResolveRequest{
		ContentID:  flagContentID,
		Assets:     assets,
		IsLive:     flagLive,
		LicenseURL: flagLicenseURL,
		SaveName:   flagSaveName,
	}
	manifestURL := assets[0].URL
	if broadcaster := config.GetBroadcasterConfig(manifestURL); broadcaster != nil {
		if req.LicenseURL == "" {
			req.LicenseURL = broadcaster.LicenseURL
		}
		req.Headers = broadcaster.Headers
	}

	resolved, err := newResolver(manifestURL).Resolve(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", flagContentID, err)
	}
	if flagJSON {
		return printJSON(cmd, resolved)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "outcome:  %s\n", resolved.Outcome)
	fmt.Fprintf(out, "type:     %s\n", resolved.ManifestType)
	fmt.Fprintf(out, "url:      %s\n", resolved.URL)
	if resolved.ExternalURL.Valid {
		fmt.Fprintf(out, "external: %s\n", resolved.ExternalURL.String)
	}
	if resolved.LicenseURL.Valid {
		fmt.Fprintf(out, "license:  %s\n", resolved.LicenseURL.String)
	}
	if resolved.Status.Valid {
		fmt.Fprintf(out, "status:   %s\n", resolved.Status.String)
	}
	return nil
}

// parseAssets reads "type,quality,url" triples. the url may itself
// contain commas.
func parseAssets(values []string) ([]models.AssetDescriptor, error) {
	assets := make([]models.AssetDescriptor, 0, len(values))
	for _, value := range values {
		parts := strings.SplitN(value, ",", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("invalid asset %q, want type,quality,url", value)
		}
		assets = append(assets, models.AssetDescriptor{
			Type:    strings.TrimSpace(parts[0]),
			Quality: enums.Quality(strings.ToLower(strings.TrimSpace(parts[1]))),
			URL:     strings.TrimSpace(parts[2]),
		})
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("at least one --asset is required")
	}
	return assets, nil
}
