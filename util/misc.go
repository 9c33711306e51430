package util

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aki237/nscjar"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

const (
	ChromeUA      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	BrowserAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,application/dash+xml,*/*;q=0.8"
)

var (
	cookiesCache   = make(map[string][]*http.Cookie)
	cookiesCacheMu sync.Mutex
)

// ParseCookieFile reads a netscape cookie file, caching the result per path.
func ParseCookieFile(cookiePath string) ([]*http.Cookie, error) {
	cookiesCacheMu.Lock()
	defer cookiesCacheMu.Unlock()

	cachedCookies, ok := cookiesCache[cookiePath]
	if ok {
		return cachedCookies, nil
	}
	cookieFile, err := os.Open(cookiePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer cookieFile.Close()

	var parser nscjar.Parser
	cookies, err := parser.Unmarshal(cookieFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}
	cookiesCache[cookiePath] = cookies
	return cookies, nil
}

// CookieHeader joins cookies into a single Cookie header value.
func CookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie == nil || cookie.Name == "" {
			continue
		}
		parts = append(parts, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(parts, "; ")
}

// ExtractBaseHost returns the registrable label of a url host,
// "tf1" for "https://www.tf1.fr/...".
func ExtractBaseHost(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	host := parsedURL.Hostname()
	if host == "" {
		return "", errors.New("url has no host")
	}
	etld, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("failed to get eTLD+1: %w", err)
	}
	parts := strings.Split(etld, ".")
	if len(parts) == 0 {
		return "", errors.New("invalid domain structure")
	}
	return parts[0], nil
}
