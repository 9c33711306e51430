package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"

	"github.com/grafov/m3u8"
	"github.com/pkg/errors"
)

// InspectM3U8 summarizes an hls playlist. variant playlists of a master
// are not fetched.
func InspectM3U8(
	content []byte,
	baseURL string,
) (*models.ManifestSummary, error) {
	baseURLObj, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	buf := bytes.NewBuffer(content)
	playlist, listType, err := m3u8.DecodeFrom(buf, true)
	if err != nil {
		return nil, fmt.Errorf("failed parsing m3u8: %w", err)
	}

	switch listType {
	case m3u8.MASTER:
		return inspectMasterPlaylist(
			playlist.(*m3u8.MasterPlaylist),
			baseURLObj,
		), nil
	case m3u8.MEDIA:
		return inspectMediaPlaylist(
			playlist.(*m3u8.MediaPlaylist),
			baseURLObj,
		), nil
	}

	return nil, errors.New("unsupported m3u8 playlist type")
}

func inspectMasterPlaylist(
	playlist *m3u8.MasterPlaylist,
	baseURL *url.URL,
) *models.ManifestSummary {
	summary := &models.ManifestSummary{
		Type:     string(enums.FormatTypeHLS),
		Variants: make([]*models.VariantSummary, 0, len(playlist.Variants)),
	}

	seenAlternatives := make(map[string]bool)
	for _, variant := range playlist.Variants {
		if variant == nil || variant.URI == "" {
			continue
		}
		for _, alt := range variant.Alternatives {
			if alt == nil || alt.URI == "" || seenAlternatives[alt.GroupId+alt.URI] {
				continue
			}
			seenAlternatives[alt.GroupId+alt.URI] = true
			summary.Variants = append(summary.Variants, &models.VariantSummary{
				ID:        alt.GroupId,
				MediaType: alternativeMediaType(alt.Type),
				URL:       resolveURL(baseURL, alt.URI),
			})
		}
		width, height := getResolution(variant.Resolution)
		mediaType, videoCodec, audioCodec := parseVariantType(variant)
		if variant.Audio != "" {
			audioCodec = ""
		}
		summary.Variants = append(summary.Variants, &models.VariantSummary{
			ID:         fmt.Sprintf("hls-%d", variant.Bandwidth/1000),
			MediaType:  string(mediaType),
			VideoCodec: string(videoCodec),
			AudioCodec: string(audioCodec),
			Bandwidth:  int64(variant.Bandwidth),
			Width:      width,
			Height:     height,
			URL:        resolveURL(baseURL, variant.URI),
		})
	}
	return summary
}

func inspectMediaPlaylist(
	playlist *m3u8.MediaPlaylist,
	baseURL *url.URL,
) *models.ManifestSummary {
	var totalDuration float64
	protected := isEncrypted(playlist.Key)
	for _, segment := range playlist.Segments {
		if segment == nil {
			continue
		}
		totalDuration += segment.Duration
		if isEncrypted(segment.Key) {
			protected = true
		}
	}
	return &models.ManifestSummary{
		Type:      string(enums.FormatTypeHLS),
		IsLive:    !playlist.Closed,
		Duration:  int64(totalDuration),
		Protected: protected,
		Variants: []*models.VariantSummary{{
			ID:        "hls",
			URL:       baseURL.String(),
			Protected: protected,
		}},
	}
}

func isEncrypted(key *m3u8.Key) bool {
	return key != nil && key.Method != "" && !strings.EqualFold(key.Method, "NONE")
}

func alternativeMediaType(altType string) string {
	switch strings.ToUpper(altType) {
	case "AUDIO":
		return string(enums.MediaTypeAudio)
	case "SUBTITLES", "CLOSED-CAPTIONS":
		return string(enums.MediaTypeText)
	default:
		return string(enums.MediaTypeVideo)
	}
}

func getResolution(
	resolution string,
) (int64, int64) {
	var width, height int
	if _, err := fmt.Sscanf(resolution, "%dx%d", &width, &height); err == nil {
		return int64(width), int64(height)
	}
	return 0, 0
}

func parseVariantType(
	variant *m3u8.Variant,
) (enums.MediaType, enums.MediaCodec, enums.MediaCodec) {
	var mediaType enums.MediaType

	videoCodec := getVideoCodec(variant.Codecs)
	audioCodec := getAudioCodec(variant.Codecs)

	if videoCodec != "" {
		mediaType = enums.MediaTypeVideo
	} else if audioCodec != "" {
		mediaType = enums.MediaTypeAudio
	}

	return mediaType, videoCodec, audioCodec
}
