package networking

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"

	"github.com/pkg/errors"
)

// EdgeProxyClient sends every request through a geo-unblocking proxy
// whose contract is {proxy}?url=<escaped destination>. the method, body
// and headers of the original request are forwarded untouched.
type EdgeProxyClient struct {
	client   *http.Client
	proxyURL string
	envelope bool
}

func NewEdgeProxyClientFromConfig(cfg *models.BroadcasterConfig) *EdgeProxyClient {
	client := NewEdgeProxyClient(cfg.EdgeProxyURL, cfg.EdgeProxyEnvelope)
	if settings := proxySettingsFromConfig(cfg); settings != nil {
		transport := GetBaseTransport()
		settings.apply(transport)
		client.client.Transport = transport
	}
	return client
}

// NewEdgeProxyClient builds a proxy client. with envelope set, the proxy
// answers with a json EdgeProxyResponse instead of the raw upstream body.
func NewEdgeProxyClient(proxyURL string, envelope bool) *EdgeProxyClient {
	return &EdgeProxyClient{
		client: &http.Client{
			Transport: GetBaseTransport(),
			Timeout:   60 * time.Second,
		},
		proxyURL: proxyURL,
		envelope: envelope,
	}
}

func (c *EdgeProxyClient) Do(req *http.Request) (*http.Response, error) {
	if c.proxyURL == "" {
		return nil, errors.New("edge proxy url is not set")
	}
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}
	proxyReq, err := http.NewRequestWithContext(
		req.Context(),
		req.Method,
		BuildProxyURL(c.proxyURL, req.URL.String()),
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, errors.Wrap(err, "building edge proxy request")
	}
	copyHeaders(req.Header, proxyReq.Header)

	resp, err := c.client.Do(proxyReq)
	if err != nil {
		return nil, errors.Wrap(err, "edge proxy request")
	}
	if !c.envelope {
		// callers resolve relative urls against resp.Request
		resp.Request = req
		return resp, nil
	}
	defer resp.Body.Close()
	return unwrapEnvelope(resp, req)
}

// BuildProxyURL appends the percent-encoded destination to the proxy base.
func BuildProxyURL(proxyURL string, targetURL string) string {
	separator := "?"
	if parsed, err := url.Parse(proxyURL); err == nil && parsed.RawQuery != "" {
		separator = "&"
	}
	return proxyURL + separator + "url=" + url.QueryEscape(targetURL)
}

// bufferBody reads the request body and puts a fresh reader back,
// so the original request stays reusable.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "reading request body")
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}
