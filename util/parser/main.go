package parser

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
)

// Inspect summarizes a fetched manifest, hls or dash.
func Inspect(content []byte, baseURL string) (*models.ManifestSummary, error) {
	if IsHLS(content) {
		return InspectM3U8(content, baseURL)
	}
	return InspectMPD(content, baseURL)
}

func IsHLS(content []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(content), []byte("#EXTM3U"))
}

func getVideoCodec(codecs string) enums.MediaCodec {
	codecs = strings.ToLower(codecs)
	switch {
	case strings.Contains(codecs, "avc") || strings.Contains(codecs, "h264"):
		return enums.MediaCodecAVC
	case strings.Contains(codecs, "hvc") || strings.Contains(codecs, "h265") || strings.Contains(codecs, "hev1"):
		return enums.MediaCodecHEVC
	case strings.Contains(codecs, "av01"):
		return enums.MediaCodecAV1
	case strings.Contains(codecs, "vp9") || strings.Contains(codecs, "vp09"):
		return enums.MediaCodecVP9
	default:
		return ""
	}
}

func getAudioCodec(codecs string) enums.MediaCodec {
	codecs = strings.ToLower(codecs)
	switch {
	case strings.Contains(codecs, "mp4a"):
		return enums.MediaCodecAAC
	case strings.Contains(codecs, "ec-3"):
		return enums.MediaCodecEAC3
	case strings.Contains(codecs, "ac-3"):
		return enums.MediaCodecAC3
	case strings.Contains(codecs, "opus"):
		return enums.MediaCodecOpus
	case strings.Contains(codecs, "mp3"):
		return enums.MediaCodecMP3
	default:
		return ""
	}
}

func getTextCodec(codecs string) enums.MediaCodec {
	codecs = strings.ToLower(codecs)
	switch {
	case strings.Contains(codecs, "wvtt"):
		return enums.MediaCodecWebVTT
	case strings.Contains(codecs, "stpp"):
		return enums.MediaCodecTTML
	default:
		return ""
	}
}

func resolveURL(base *url.URL, uri string) string {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}
