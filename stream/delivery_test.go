package stream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

const (
	testKID = "1d83a873b4d34f77b5f68424a0efc8c1"
	testKey = "000102030405060708090a0b0c0d0e0f"
)

func TestClearKeyURLBuilder(t *testing.T) {
	builder := NewClearKeyURLBuilder("https://proxy.example.com/", "pw")
	manifestURL := "https://cdn.example.com/show/manifest.mpd?t=1"

	got, err := builder.Build(manifestURL, testKID, testKey)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("invalid url %q: %v", got, err)
	}
	if parsed.Scheme+"://"+parsed.Host+parsed.Path != "https://proxy.example.com/proxy/mpd/manifest.m3u8" {
		t.Errorf("unexpected endpoint in %q", got)
	}
	query := parsed.Query()
	want := map[string]string{
		"d":            manifestURL,
		"key_id":       "HYOoc7TTT3e19oQkoO_IwQ",
		"key":          "AAECAwQFBgcICQoLDA0ODw",
		"api_password": "pw",
	}
	for name, value := range want {
		if query.Get(name) != value {
			t.Errorf("%s = %q, want %q", name, query.Get(name), value)
		}
	}
}

func TestClearKeyURLBuilderErrors(t *testing.T) {
	if builder := NewClearKeyURLBuilder("", ""); builder != nil {
		t.Error("empty proxy should give no builder")
	}
	var unset *ClearKeyURLBuilder
	if _, err := unset.Build("https://cdn.example.com/a.mpd", testKID, testKey); err == nil {
		t.Error("nil builder should fail")
	}
	builder := NewClearKeyURLBuilder("https://proxy.example.com", "")
	if _, err := builder.Build("https://cdn.example.com/a.mpd", "nothex", testKey); err == nil {
		t.Error("invalid key id should fail")
	}
	got, err := builder.Build("https://cdn.example.com/a.mpd", testKID, testKey)
	if err != nil || strings.Contains(got, "api_password") {
		t.Errorf("password leaked or error: %q, %v", got, err)
	}
}

func TestSaveName(t *testing.T) {
	tests := map[string]string{
		"show_s01e01":       "show_s01e01",
		" show s01/e01 ":    "show_s01_e01",
		"../../etc/passwd":  "etc_passwd",
		"tf1:program:12345": "tf1_program_12345",
	}
	for input, want := range tests {
		if got := SaveName(input); got != want {
			t.Errorf("SaveName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRemuxClientExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/stream/show_s01e01.mp4" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewRemuxClient(server.Client(), server.URL+"/", "")
	assetURL, ok := client.Exists(context.Background(), "show_s01e01")
	if !ok || assetURL != server.URL+"/stream/show_s01e01.mp4" {
		t.Errorf("Exists = %q, %v", assetURL, ok)
	}
	if _, ok := client.Exists(context.Background(), "other"); ok {
		t.Error("missing asset reported as existing")
	}
	var unset *RemuxClient
	if _, ok := unset.Exists(context.Background(), "show_s01e01"); ok {
		t.Error("nil client reported an asset")
	}
}

func TestRemuxClientSubmit(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/process" {
			http.NotFound(w, r)
			return
		}
		body, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"job_id":"job-42"}`)
	}))
	defer server.Close()

	client := NewRemuxClient(server.Client(), server.URL, "mkv")
	job := client.NewJob("https://cdn.example.com/a.mpd", "show_s01e01", testKID+":"+testKey)
	jobID, err := client.Submit(context.Background(), job)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if jobID != "job-42" {
		t.Errorf("jobID = %q", jobID)
	}
	fields := map[string]string{
		"url":             "https://cdn.example.com/a.mpd",
		"save_name":       "show_s01e01",
		"key":             testKID + ":" + testKey,
		"format":          "mkv",
		"select_video":    "best",
		"select_audio":    "all",
		"select_subtitle": "all",
	}
	for name, want := range fields {
		if got := gjson.GetBytes(body, name).String(); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if !gjson.GetBytes(body, "binary_merge").Exists() || !gjson.GetBytes(body, "log_level").Exists() {
		t.Errorf("job body misses fields: %s", body)
	}
}

func TestRemuxClientSubmitFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRemuxClient(server.Client(), server.URL, "mp4")
	if _, err := client.Submit(context.Background(), client.NewJob("u", "s", "k")); err == nil {
		t.Error("expected error on 503")
	}
	if NewRemuxClient(server.Client(), "", "mp4") != nil {
		t.Error("empty base url should give no client")
	}
}
