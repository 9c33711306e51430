package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"

	"github.com/pkg/errors"
	"github.com/unki2aut/go-mpd"
	"github.com/unki2aut/go-xsd-types"
	"go.uber.org/zap"
)

// InspectMPD decodes an mpd with the typed schema and summarizes its
// first period.
func InspectMPD(content []byte, baseURL string) (*models.ManifestSummary, error) {
	baseURLObj, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	mpdDoc := &mpd.MPD{}
	if err := mpdDoc.Decode(content); err != nil {
		return nil, fmt.Errorf("failed parsing MPD: %w", err)
	}
	zap.S().Debug("detected mpd manifest")

	summary := &models.ManifestSummary{
		Type:     string(enums.FormatTypeMPD),
		IsLive:   mpdDoc.Type != nil && *mpdDoc.Type == "dynamic",
		Duration: getTotalDurationSeconds(mpdDoc.MediaPresentationDuration),
	}
	if len(mpdDoc.Period) == 0 {
		return nil, errors.New("no periods found in mpd")
	}

	// process first period (most common case)
	period := mpdDoc.Period[0]
	mpdBaseURL := resolveMPDBaseURL(baseURLObj, mpdDoc.BaseURL)
	periodBaseURL := resolveMPDBaseURL(mpdBaseURL, period.BaseURL)

	for _, adaptationSet := range period.AdaptationSets {
		if adaptationSet == nil {
			continue
		}
		adaptationBaseURL := resolveMPDBaseURL(periodBaseURL, adaptationSet.BaseURL)
		for _, representation := range adaptationSet.Representations {
			if representation.ID == nil {
				continue
			}
			variant := summarizeRepresentation(adaptationSet, representation, adaptationBaseURL)
			kid, protected := findDefaultKID(adaptationSet, representation)
			variant.Protected = protected
			if protected {
				summary.Protected = true
			}
			if summary.DefaultKID == "" && kid != "" {
				summary.DefaultKID = kid
			}
			summary.Variants = append(summary.Variants, variant)
		}
	}

	return summary, nil
}

// DefaultKID returns the first cenc:default_KID the typed schema sees.
func DefaultKID(content []byte) (string, bool) {
	mpdDoc := &mpd.MPD{}
	if err := mpdDoc.Decode(content); err != nil {
		return "", false
	}
	for _, period := range mpdDoc.Period {
		for _, adaptationSet := range period.AdaptationSets {
			if adaptationSet == nil {
				continue
			}
			for _, representation := range adaptationSet.Representations {
				if kid, _ := findDefaultKID(adaptationSet, representation); kid != "" {
					return kid, true
				}
			}
			if kid, _ := findDefaultKID(adaptationSet, mpd.Representation{}); kid != "" {
				return kid, true
			}
		}
	}
	return "", false
}

func summarizeRepresentation(
	adaptationSet *mpd.AdaptationSet,
	representation mpd.Representation,
	baseURL *url.URL,
) *models.VariantSummary {
	mediaType, videoCodec, audioCodec := parseAdaptationSetType(adaptationSet, representation)
	representationBaseURL := resolveMPDBaseURL(baseURL, representation.BaseURL)

	variant := &models.VariantSummary{
		ID:         *representation.ID,
		MediaType:  string(mediaType),
		VideoCodec: string(videoCodec),
		AudioCodec: string(audioCodec),
		URL:        representationBaseURL.String(),
	}
	if representation.Bandwidth != nil {
		variant.Bandwidth = int64(*representation.Bandwidth)
	}
	if representation.Width != nil {
		variant.Width = int64(*representation.Width)
	}
	if representation.Height != nil {
		variant.Height = int64(*representation.Height)
	}
	return variant
}

func findDefaultKID(
	adaptationSet *mpd.AdaptationSet,
	representation mpd.Representation,
) (string, bool) {
	protections := adaptationSet.ContentProtections
	if len(representation.ContentProtections) > 0 {
		protections = representation.ContentProtections
	}

	var protected bool
	for _, protection := range protections {
		if protection.SchemeIDURI == nil {
			continue
		}
		protected = true
		if ClassifyScheme(*protection.SchemeIDURI) != SchemeCENC {
			continue
		}
		if protection.CencDefaultKeyId != nil {
			kid := strings.ToLower(strings.ReplaceAll(*protection.CencDefaultKeyId, "-", ""))
			return kid, true
		}
	}
	return "", protected
}

func getTotalDurationSeconds(duration *xsd.Duration) int64 {
	if duration == nil {
		return 0
	}
	var total float64

	if duration.Hours != 0 {
		total += float64(duration.Hours) * 3600
	}
	if duration.Minutes != 0 {
		total += float64(duration.Minutes) * 60
	}
	total += float64(duration.Seconds)

	return int64(total)
}

func parseAdaptationSetType(adaptationSet *mpd.AdaptationSet, representation mpd.Representation) (enums.MediaType, enums.MediaCodec, enums.MediaCodec) {
	var codecs string
	if representation.Codecs != nil {
		codecs = *representation.Codecs
	} else if adaptationSet.Codecs != nil {
		codecs = *adaptationSet.Codecs
	}

	videoCodec := getVideoCodec(codecs)
	audioCodec := getAudioCodec(codecs)

	mimeType := strings.ToLower(adaptationSet.MimeType)
	var mediaType enums.MediaType

	switch {
	case strings.HasPrefix(mimeType, "video/") || videoCodec != "":
		mediaType = enums.MediaTypeVideo
	case strings.HasPrefix(mimeType, "audio/") || audioCodec != "":
		mediaType = enums.MediaTypeAudio
	case strings.HasPrefix(mimeType, "text/") || getTextCodec(codecs) != "":
		mediaType = enums.MediaTypeText
	case adaptationSet.ContentType != nil:
		switch strings.ToLower(*adaptationSet.ContentType) {
		case "video":
			mediaType = enums.MediaTypeVideo
		case "audio":
			mediaType = enums.MediaTypeAudio
		case "text":
			mediaType = enums.MediaTypeText
		}
	}

	return mediaType, videoCodec, audioCodec
}

func resolveMPDBaseURL(baseURL *url.URL, baseURLs []*mpd.BaseURL) *url.URL {
	if len(baseURLs) > 0 && baseURLs[0] != nil && baseURLs[0].Value != "" {
		if resolved, err := url.Parse(baseURLs[0].Value); err == nil {
			return baseURL.ResolveReference(resolved)
		}
	}
	return baseURL
}
