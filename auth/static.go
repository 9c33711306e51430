package auth

import (
	"context"
	"maps"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"

	"go.uber.org/zap"
)

// StaticHeaders serves configured headers plus the cookies of a netscape
// cookie file as a single Cookie header.
type StaticHeaders struct {
	headers     map[string]string
	cookiesFile string
}

func NewStaticHeaders(headers map[string]string, cookiesFile string) *StaticHeaders {
	return &StaticHeaders{
		headers:     maps.Clone(headers),
		cookiesFile: cookiesFile,
	}
}

func NewStaticHeadersFromConfig(cfg *models.BroadcasterConfig) *StaticHeaders {
	if cfg == nil {
		return NewStaticHeaders(nil, "")
	}
	return NewStaticHeaders(cfg.Headers, cfg.CookiesFile)
}

func (h *StaticHeaders) Headers(_ context.Context) (map[string]string, error) {
	headers := make(map[string]string, len(h.headers)+1)
	maps.Copy(headers, h.headers)
	if h.cookiesFile == "" {
		return headers, nil
	}
	cookies, err := util.ParseCookieFile(h.cookiesFile)
	if err != nil {
		return nil, err
	}
	if cookie := util.CookieHeader(cookies); cookie != "" {
		headers["Cookie"] = cookie
	} else {
		zap.S().Debugf("cookie file %s has no cookies", h.cookiesFile)
	}
	return headers, nil
}

// StaticToken hands out the same token for every content.
type StaticToken string

func (t StaticToken) Token(_ context.Context, contentID string) (*models.LicenseToken, error) {
	if t == "" {
		return nil, util.ErrNoToken
	}
	return &models.LicenseToken{
		Value:     string(t),
		ContentID: contentID,
	}, nil
}
