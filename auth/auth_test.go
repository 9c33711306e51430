package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"
)

func TestStaticHeadersWithCookies(t *testing.T) {
	dir := t.TempDir()
	cookiesFile := filepath.Join(dir, "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		".example.com\tTRUE\t/\tTRUE\t2147483647\tsession\tabc123\n"
	if err := os.WriteFile(cookiesFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write cookies: %v", err)
	}

	provider := NewStaticHeadersFromConfig(&models.BroadcasterConfig{
		Headers:     map[string]string{"Referer": "https://www.example.com/"},
		CookiesFile: cookiesFile,
	})
	headers, err := provider.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	if headers["Referer"] != "https://www.example.com/" {
		t.Errorf("Referer = %q", headers["Referer"])
	}
	if headers["Cookie"] != "session=abc123" {
		t.Errorf("Cookie = %q", headers["Cookie"])
	}
}

func TestStaticHeadersMissingCookieFile(t *testing.T) {
	provider := NewStaticHeaders(nil, filepath.Join(t.TempDir(), "missing.txt"))
	if _, err := provider.Headers(context.Background()); err == nil {
		t.Error("expected error for a missing cookie file")
	}
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken("abc").Token(context.Background(), "show")
	if err != nil || token.Value != "abc" || token.ContentID != "show" {
		t.Errorf("Token = %+v, %v", token, err)
	}
	if _, err := StaticToken("").Token(context.Background(), "show"); !errors.Is(err, util.ErrNoToken) {
		t.Errorf("empty token error = %v", err)
	}
}

func TestEntitlementClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entitlement/show_s01e01" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{"drm":{"token":"drm-token"}}}`))
	}))
	defer server.Close()

	headers := HeaderFunc(func(context.Context) (map[string]string, error) {
		return map[string]string{"Authorization": "Bearer session"}, nil
	})
	client := NewEntitlementClient(server.Client(), server.URL+"/entitlement/{content_id}", "data.drm.token", headers)

	token, err := client.Token(context.Background(), "show_s01e01")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token.Value != "drm-token" || token.ContentID != "show_s01e01" {
		t.Errorf("token = %+v", token)
	}

	if _, err := client.Token(context.Background(), "other"); !errors.Is(err, util.ErrNoToken) {
		t.Errorf("404 error = %v, want ErrNoToken", err)
	}
}

func TestEntitlementClientMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := NewEntitlementClient(server.Client(), server.URL, "", nil)
	if _, err := client.Token(context.Background(), "show"); !errors.Is(err, util.ErrNoToken) {
		t.Errorf("error = %v, want ErrNoToken", err)
	}
}
