package networking

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// proxySettings is the forward proxy part of a broadcaster section
// or of the process environment.
type proxySettings struct {
	httpURL  *url.URL
	httpsURL *url.URL
	bypass   []string
}

func newProxySettings(httpProxy, httpsProxy, noProxy string) *proxySettings {
	settings := &proxySettings{
		httpURL:  parseProxyURL(httpProxy),
		httpsURL: parseProxyURL(httpsProxy),
		bypass:   parseNoProxyList(noProxy),
	}
	if settings.httpURL == nil && settings.httpsURL == nil {
		return nil
	}
	return settings
}

func proxySettingsFromConfig(cfg *models.BroadcasterConfig) *proxySettings {
	if cfg == nil {
		return nil
	}
	return newProxySettings(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
}

func parseProxyURL(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		zap.S().Warnf("ignoring invalid proxy url %q", raw)
		return nil
	}
	return parsed
}

// apply routes the transport through the proxy matching the request
// scheme, falling back to whichever proxy is set.
func (s *proxySettings) apply(transport *http.Transport) {
	if s == nil {
		return
	}
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		if shouldBypassProxy(req.URL.Hostname(), s.bypass) {
			return nil, nil
		}
		switch {
		case req.URL.Scheme == "https" && s.httpsURL != nil:
			return s.httpsURL, nil
		case req.URL.Scheme == "http" && s.httpURL != nil:
			return s.httpURL, nil
		case s.httpsURL != nil:
			return s.httpsURL, nil
		}
		return s.httpURL, nil
	}
}

func parseNoProxyList(noProxy string) []string {
	var list []string
	for entry := range strings.SplitSeq(noProxy, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			list = append(list, entry)
		}
	}
	return list
}

// shouldBypassProxy matches host against NO_PROXY style entries:
// "*", an exact host, or a ".suffix" that also covers the bare domain.
func shouldBypassProxy(host string, noProxyList []string) bool {
	host = strings.ToLower(host)
	for _, entry := range noProxyList {
		switch {
		case entry == "*", entry == host:
			return true
		case strings.HasPrefix(entry, "."):
			if strings.HasSuffix(host, entry) || host == entry[1:] {
				return true
			}
		}
	}
	return false
}

func copyHeaders(source, destination http.Header) {
	for name, values := range source {
		for _, value := range values {
			destination.Add(name, value)
		}
	}
}

// unwrapEnvelope turns a json EdgeProxyResponse back into the upstream
// response it describes. the request url follows the upstream redirects.
func unwrapEnvelope(proxyResp *http.Response, originalReq *http.Request) (*http.Response, error) {
	var envelope models.EdgeProxyResponse
	if err := sonic.ConfigFastest.NewDecoder(proxyResp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrap(err, "decoding edge proxy envelope")
	}

	resp := &http.Response{
		StatusCode: envelope.StatusCode,
		Status:     strconv.Itoa(envelope.StatusCode) + " " + http.StatusText(envelope.StatusCode),
		Body:       io.NopCloser(bytes.NewBufferString(envelope.Text)),
		Header:     make(http.Header, len(envelope.Headers)),
		Request:    originalReq,
	}
	if envelope.URL != "" {
		finalURL, err := url.Parse(envelope.URL)
		if err != nil {
			return nil, errors.Wrap(err, "parsing edge proxy final url")
		}
		resp.Request = originalReq.Clone(originalReq.Context())
		resp.Request.URL = finalURL
	}
	for name, value := range envelope.Headers {
		resp.Header.Set(name, value)
	}
	for _, cookie := range envelope.Cookies {
		resp.Header.Add("Set-Cookie", cookie)
	}
	return resp, nil
}
