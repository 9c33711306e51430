package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"

	"github.com/tidwall/gjson"
)

const (
	contentIDPlaceholder = "{content_id}"
	entitlementTimeout   = 15 * time.Second
)

// EntitlementClient asks an entitlement endpoint for the drm token of one
// content. the endpoint url may carry a {content_id} placeholder, the
// token is read from the json response at TokenPath.
type EntitlementClient struct {
	client    models.HTTPClient
	endpoint  string
	tokenPath string
	headers   HeaderProvider
}

func NewEntitlementClient(
	client models.HTTPClient,
	endpoint string,
	tokenPath string,
	headers HeaderProvider,
) *EntitlementClient {
	if tokenPath == "" {
		tokenPath = "token"
	}
	return &EntitlementClient{
		client:    client,
		endpoint:  endpoint,
		tokenPath: tokenPath,
		headers:   headers,
	}
}

func (c *EntitlementClient) Token(ctx context.Context, contentID string) (*models.LicenseToken, error) {
	if c.endpoint == "" {
		return nil, util.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, entitlementTimeout)
	defer cancel()

	endpoint := strings.ReplaceAll(c.endpoint, contentIDPlaceholder, url.PathEscape(contentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", util.ChromeUA)
	req.Header.Set("Accept", "application/json")
	if c.headers != nil {
		headers, err := c.headers.Headers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get session headers: %w", err)
		}
		for name, value := range headers {
			req.Header.Set(name, value)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrNoToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: entitlement status %d", util.ErrNoToken, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	token := gjson.GetBytes(body, c.tokenPath).String()
	if token == "" {
		return nil, fmt.Errorf("%w: nothing at %q", util.ErrNoToken, c.tokenPath)
	}
	return &models.LicenseToken{
		Value:     token,
		ContentID: contentID,
	}, nil
}
