package stream

import (
	"net/url"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/drm"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"

	"github.com/pkg/errors"
)

const clearKeyPath = "/proxy/mpd/manifest.m3u8"

// ClearKeyURLBuilder points a clearkey capable proxy at the protected
// manifest, handing it the key in the query.
type ClearKeyURLBuilder struct {
	proxyURL string
	password string
}

func NewClearKeyURLBuilder(proxyURL string, password string) *ClearKeyURLBuilder {
	if proxyURL == "" {
		return nil
	}
	return &ClearKeyURLBuilder{
		proxyURL: strings.TrimRight(proxyURL, "/"),
		password: password,
	}
}

// Build encodes key id and key as unpadded base64url.
func (b *ClearKeyURLBuilder) Build(manifestURL string, keyID string, key string) (string, error) {
	if b == nil || b.proxyURL == "" {
		return "", util.ErrNotConfigured
	}
	encodedKeyID, err := drm.ToBase64URL(keyID)
	if err != nil {
		return "", errors.Wrap(err, "invalid key id")
	}
	encodedKey, err := drm.ToBase64URL(key)
	if err != nil {
		return "", errors.Wrap(err, "invalid key")
	}

	query := url.Values{}
	query.Set("d", manifestURL)
	query.Set("key_id", encodedKeyID)
	query.Set("key", encodedKey)
	if b.password != "" {
		query.Set("api_password", b.password)
	}
	return b.proxyURL + clearKeyPath + "?" + query.Encode(), nil
}
