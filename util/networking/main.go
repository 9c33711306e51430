package networking

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/config"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once

	broadcasterClients   = make(map[string]models.HTTPClient)
	broadcasterClientsMu sync.Mutex
)

func GetDefaultHTTPClient() *http.Client {
	defaultClientOnce.Do(func() {
		transport := GetBaseTransport()
		newProxySettings(
			config.Env.HTTPProxy,
			config.Env.HTTPSProxy,
			config.Env.NoProxy,
		).apply(transport)
		defaultClient = &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		}
	})
	return defaultClient
}

func GetBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		ResponseHeaderTimeout: 10 * time.Second,
		DisableCompression:    false,
	}
}

// GetBroadcasterHTTPClient returns the client configured for the
// broadcaster serving rawURL: edge proxy, plain proxy or the default client.
func GetBroadcasterHTTPClient(rawURL string) models.HTTPClient {
	host, err := util.ExtractBaseHost(rawURL)
	if err != nil {
		return GetDefaultHTTPClient()
	}

	broadcasterClientsMu.Lock()
	defer broadcasterClientsMu.Unlock()

	if client, exists := broadcasterClients[host]; exists {
		return client
	}

	var client models.HTTPClient
	cfg := config.GetBroadcasterConfig(rawURL)
	switch {
	case cfg == nil && config.Env.EdgeProxyURL != "":
		client = NewEdgeProxyClient(config.Env.EdgeProxyURL, false)
	case cfg == nil:
		client = GetDefaultHTTPClient()
	case cfg.EdgeProxyURL != "":
		client = NewEdgeProxyClientFromConfig(cfg)
	default:
		client = NewClientFromConfig(cfg)
	}
	broadcasterClients[host] = client

	return client
}

func NewClientFromConfig(cfg *models.BroadcasterConfig) *http.Client {
	transport := GetBaseTransport()
	proxySettingsFromConfig(cfg).apply(transport)
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// NewNoRedirectClient returns a client that hands back 3xx responses
// instead of following them.
func NewNoRedirectClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: GetBaseTransport(),
		Timeout:   timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
