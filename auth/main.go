// Package auth supplies the session headers and the short lived drm
// token the key exchange needs. login flows live elsewhere; these
// providers only hand over what was already obtained.
package auth

import (
	"context"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
)

type HeaderProvider interface {
	Headers(ctx context.Context) (map[string]string, error)
}

type TokenProvider interface {
	Token(ctx context.Context, contentID string) (*models.LicenseToken, error)
}

// HeaderFunc adapts a function to HeaderProvider.
type HeaderFunc func(ctx context.Context) (map[string]string, error)

func (f HeaderFunc) Headers(ctx context.Context) (map[string]string, error) {
	return f(ctx)
}

// TokenFunc adapts a function to TokenProvider.
type TokenFunc func(ctx context.Context, contentID string) (*models.LicenseToken, error)

func (f TokenFunc) Token(ctx context.Context, contentID string) (*models.LicenseToken, error) {
	return f(ctx, contentID)
}
