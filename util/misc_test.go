package util

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractBaseHost(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://www.tf1.fr/tf1/replay", want: "tf1"},
		{url: "https://vod-das.cdn-0.tf1.fr/x/manifest.mpd", want: "tf1"},
		{url: "https://replay.bbc.co.uk/a", want: "bbc"},
		{url: "/relative/path", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ExtractBaseHost(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ExtractBaseHost(%q) should fail", tt.url)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ExtractBaseHost(%q) = %q, %v; want %q", tt.url, got, err, tt.want)
		}
	}
}

func TestCookieHeader(t *testing.T) {
	cookies := []*http.Cookie{
		{Name: "session", Value: "abc"},
		nil,
		{Name: "", Value: "ignored"},
		{Name: "consent", Value: "1"},
	}
	if got := CookieHeader(cookies); got != "session=abc; consent=1" {
		t.Errorf("CookieHeader = %q", got)
	}
	if got := CookieHeader(nil); got != "" {
		t.Errorf("CookieHeader(nil) = %q", got)
	}
}

func TestParseCookieFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		".tf1.fr\tTRUE\t/\tTRUE\t2147483647\tsession\tabc\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write cookies: %v", err)
	}
	cookies, err := ParseCookieFile(path)
	if err != nil {
		t.Fatalf("ParseCookieFile: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].Value != "abc" {
		t.Errorf("cookies = %+v", cookies)
	}
	if _, err := ParseCookieFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing cookie file should fail")
	}
}
