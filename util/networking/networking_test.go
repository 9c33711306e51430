package networking

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
)

func TestBuildProxyURL(t *testing.T) {
	target := "https://cdn.example.com/show/manifest.mpd?t=1&b=2"
	tests := map[string]string{
		"https://proxy.example.com/fetch":        "https://proxy.example.com/fetch?url=" + url.QueryEscape(target),
		"https://proxy.example.com/fetch?key=pw": "https://proxy.example.com/fetch?key=pw&url=" + url.QueryEscape(target),
	}
	for proxy, want := range tests {
		if got := BuildProxyURL(proxy, target); got != want {
			t.Errorf("BuildProxyURL(%q) = %q, want %q", proxy, got, want)
		}
	}
}

func TestEdgeProxyPassthrough(t *testing.T) {
	target := "https://cdn.example.com/show/manifest.mpd"
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != target {
			t.Errorf("proxied url = %q", got)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("headers not forwarded")
		}
		io.WriteString(w, "<MPD/>")
	}))
	defer proxy.Close()

	client := NewEdgeProxyClient(proxy.URL, false)
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", "test-agent")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<MPD/>" {
		t.Errorf("body = %q", body)
	}
	if resp.Request.URL.String() != target {
		t.Errorf("response request url = %q, want the destination", resp.Request.URL)
	}
}

func TestEdgeProxyEnvelope(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"url":"https://cdn2.example.com/final.mpd","status_code":200,"text":"<MPD/>","headers":{"Content-Type":"application/dash+xml"},"cookies":["a=b"]}`)
	}))
	defer proxy.Close()

	client := NewEdgeProxyClientFromConfig(&models.BroadcasterConfig{
		EdgeProxyURL:      proxy.URL,
		EdgeProxyEnvelope: true,
	})
	req, _ := http.NewRequest(http.MethodGet, "https://cdn.example.com/manifest.mpd", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "<MPD/>" {
		t.Errorf("status %d body %q", resp.StatusCode, body)
	}
	if resp.Request.URL.String() != "https://cdn2.example.com/final.mpd" {
		t.Errorf("final url = %q", resp.Request.URL)
	}
	if resp.Header.Get("Content-Type") != "application/dash+xml" || resp.Header.Get("Set-Cookie") != "a=b" {
		t.Errorf("headers = %v", resp.Header)
	}
}

func TestEdgeProxyWithoutURL(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://cdn.example.com/a.mpd", nil)
	if _, err := NewEdgeProxyClient("", false).Do(req); err == nil {
		t.Error("expected error without proxy url")
	}
}

func TestShouldBypassProxy(t *testing.T) {
	list := parseNoProxyList(" localhost , .Internal.example.com,")
	tests := map[string]bool{
		"localhost":                true,
		"api.internal.example.com": true,
		"internal.example.com":     true,
		"cdn.example.com":          false,
	}
	for host, want := range tests {
		if got := shouldBypassProxy(host, list); got != want {
			t.Errorf("shouldBypassProxy(%q) = %v, want %v", host, got, want)
		}
	}
	if !shouldBypassProxy("anything.example.org", parseNoProxyList("*")) {
		t.Error("wildcard should bypass every host")
	}
}

func TestProxySettings(t *testing.T) {
	if newProxySettings("", "", "localhost") != nil {
		t.Error("settings without proxies should be nil")
	}
	if newProxySettings("::not a url", "", "") != nil {
		t.Error("invalid proxy url should be ignored")
	}

	settings := newProxySettings("http://plain:3128", "http://secure:3128", "bypass.example.com")
	transport := &http.Transport{}
	settings.apply(transport)

	tests := []struct {
		target string
		want   string
	}{
		{target: "https://cdn.example.com/a.mpd", want: "http://secure:3128"},
		{target: "http://cdn.example.com/a.mpd", want: "http://plain:3128"},
		{target: "https://bypass.example.com/a.mpd", want: ""},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.target, nil)
		proxy, err := transport.Proxy(req)
		if err != nil {
			t.Fatalf("Proxy(%s): %v", tt.target, err)
		}
		got := ""
		if proxy != nil {
			got = proxy.String()
		}
		if got != tt.want {
			t.Errorf("Proxy(%s) = %q, want %q", tt.target, got, tt.want)
		}
	}

	httpsOnly := newProxySettings("", "http://secure:3128", "")
	transport = &http.Transport{}
	httpsOnly.apply(transport)
	req, _ := http.NewRequest(http.MethodGet, "http://cdn.example.com/a.mpd", nil)
	if proxy, _ := transport.Proxy(req); proxy == nil || proxy.Host != "secure:3128" {
		t.Errorf("http request should fall back to the https proxy, got %v", proxy)
	}
}

func TestNoRedirectClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewNoRedirectClient(0).Get(server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want the redirect itself", resp.StatusCode)
	}
}
