package drm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/logger"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const (
	licenseTimeout     = 30 * time.Second
	defaultTokenHeader = "x-dt-auth-token"
)

type KeyRequest struct {
	PSSH       string
	LicenseURL string
	Token      *models.LicenseToken
	// extra headers the license server expects, forwarded in the bag
	Headers map[string]string
}

type keyExchangeBody struct {
	PSSH    string `json:"pssh"`
	LicURL  string `json:"licurl"`
	Headers string `json:"headers"`
}

// LicenseClient performs the one-shot key exchange. the license server
// is never called directly, its url travels inside the request body.
type LicenseClient struct {
	client      models.HTTPClient
	endpoint    string
	tokenHeader string
	userAgent   string
	limiter     ratelimit.Limiter
}

type LicenseClientOptions struct {
	Endpoint    string
	TokenHeader string
	UserAgent   string
	// RPS caps outgoing exchanges, 0 means unlimited
	RPS int
}

func NewLicenseClient(client models.HTTPClient, opts LicenseClientOptions) *LicenseClient {
	if opts.TokenHeader == "" {
		opts.TokenHeader = defaultTokenHeader
	}
	limiter := ratelimit.NewUnlimited()
	if opts.RPS > 0 {
		limiter = ratelimit.New(opts.RPS)
	}
	return &LicenseClient{
		client:      client,
		endpoint:    opts.Endpoint,
		tokenHeader: opts.TokenHeader,
		userAgent:   opts.UserAgent,
		limiter:     limiter,
	}
}

// RequestKey returns the raw key response, the message field of a 200
// reply. there is no retry: grants can be single use upstream.
func (c *LicenseClient) RequestKey(ctx context.Context, req KeyRequest) (string, bool) {
	message, err := c.requestKey(ctx, req)
	if err != nil {
		zap.S().Warnf("key exchange failed: %v", err)
		return "", false
	}
	return message, true
}

func (c *LicenseClient) requestKey(ctx context.Context, req KeyRequest) (string, error) {
	if c == nil || c.endpoint == "" {
		return "", util.ErrNotConfigured
	}
	body, err := c.buildBody(req)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, licenseTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.limiter.Take()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrKeyExchange, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", util.ErrKeyExchange, err)
	}
	logger.WriteFile("key_response", respBody)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", util.ErrKeyExchange, resp.StatusCode)
	}
	message := gjson.GetBytes(respBody, "message")
	if !message.Exists() {
		return "", fmt.Errorf("%w: response has no message field", util.ErrKeyExchange)
	}
	if message.Type == gjson.String {
		return message.Str, nil
	}
	return message.Raw, nil
}

func (c *LicenseClient) buildBody(req KeyRequest) ([]byte, error) {
	bag := make(map[string]string, len(req.Headers)+2)
	for name, value := range req.Headers {
		bag[name] = value
	}
	bag["User-Agent"] = c.userAgent
	if req.Token != nil && req.Token.Value != "" {
		bag[c.tokenHeader] = req.Token.Value
	}
	headers, err := sonic.ConfigFastest.MarshalToString(bag)
	if err != nil {
		return nil, fmt.Errorf("failed to encode header bag: %w", err)
	}
	return sonic.ConfigFastest.Marshal(keyExchangeBody{
		PSSH:    req.PSSH,
		LicURL:  req.LicenseURL,
		Headers: headers,
	})
}
