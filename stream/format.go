package stream

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/networking"

	"go.uber.org/zap"
)

const (
	// the one asset type whose url may redirect to a tokenized location
	probedAssetType     = "usp_dashcenc_h264"
	defaultProbeTimeout = 10 * time.Second
)

func isHLSLike(assetType string) bool {
	return strings.Contains(strings.ToLower(assetType), "http_h264")
}

func isMPDLike(assetType string) bool {
	tag := strings.ToLower(assetType)
	return strings.Contains(tag, "dashcenc") || strings.Contains(tag, "mpd")
}

// SelectFormat picks the best asset. vod prefers dash for its adaptive
// bitrate ceiling, live prefers hls for latency; the other bucket is the
// fallback. within a bucket the highest quality wins, first seen on ties.
func SelectFormat(assets []models.AssetDescriptor, isLive bool) (*models.FormatChoice, error) {
	var hlsLike, mpdLike []models.AssetDescriptor
	for _, asset := range assets {
		if asset.URL == "" {
			continue
		}
		// a tag matching both buckets counts as dash
		switch {
		case isMPDLike(asset.Type):
			mpdLike = append(mpdLike, asset)
		case isHLSLike(asset.Type):
			hlsLike = append(hlsLike, asset)
		}
	}

	preferred, fallback := mpdLike, hlsLike
	if isLive {
		preferred, fallback = hlsLike, mpdLike
	}
	best, ok := bestQuality(preferred)
	if !ok {
		best, ok = bestQuality(fallback)
	}
	if !ok {
		return nil, util.ErrNoFormat
	}

	formatType := enums.FormatTypeHLS
	if isMPDLike(best.Type) {
		formatType = enums.FormatTypeMPD
	}
	return &models.FormatChoice{
		Type:        formatType,
		AssetType:   best.Type,
		Quality:     best.Quality,
		URL:         best.URL,
		DRMRequired: strings.Contains(strings.ToLower(best.Type), "cenc"),
	}, nil
}

func bestQuality(assets []models.AssetDescriptor) (models.AssetDescriptor, bool) {
	type dedupKey struct {
		quality enums.Quality
		url     string
	}
	seen := make(map[dedupKey]bool, len(assets))

	var best models.AssetDescriptor
	found := false
	for _, asset := range assets {
		key := dedupKey{enums.Quality(strings.ToLower(string(asset.Quality))), asset.URL}
		if seen[key] {
			continue
		}
		seen[key] = true
		if !found || asset.Quality.Rank() > best.Quality.Rank() {
			best = asset
			found = true
		}
	}
	return best, found
}

// FormatSelector adds the redirect probe to SelectFormat.
type FormatSelector struct {
	client  models.HTTPClient
	timeout time.Duration
}

// NewFormatSelector probes with client, which must not follow redirects.
// a nil client gets a dedicated no-redirect one.
func NewFormatSelector(client models.HTTPClient, timeout time.Duration) *FormatSelector {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	if client == nil {
		client = networking.NewNoRedirectClient(timeout)
	}
	return &FormatSelector{
		client:  client,
		timeout: timeout,
	}
}

func (s *FormatSelector) Select(
	ctx context.Context,
	assets []models.AssetDescriptor,
	isLive bool,
) (*models.FormatChoice, error) {
	choice, err := SelectFormat(assets, isLive)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(choice.AssetType, probedAssetType) {
		if location, ok := s.probe(ctx, choice.URL); ok {
			zap.S().Debugf("asset %s redirects to %s", choice.URL, location)
			choice.URL = location
		}
	}
	return choice, nil
}

// probe follows exactly one redirect hop. any failure keeps the original url.
func (s *FormatSelector) probe(ctx context.Context, assetURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", util.ChromeUA)
	req.Header.Set("Accept", util.BrowserAccept)

	resp, err := s.client.Do(req)
	if err != nil {
		zap.S().Debugf("redirect probe failed for %s: %v", assetURL, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", false
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", false
	}
	base, err := url.Parse(assetURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
