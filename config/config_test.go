package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func resetEnv(t *testing.T) {
	t.Helper()
	previous := Env
	Env = GetDefaultConfig()
	t.Cleanup(func() { Env = previous })
}

func TestLoadEnvDefaults(t *testing.T) {
	resetEnv(t)
	if err := LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if Env.DRMTokenHeader != "x-dt-auth-token" || Env.RemuxFormat != "mp4" {
		t.Errorf("unexpected defaults %+v", Env)
	}
	if Env.CacheTTL != 10*time.Minute || !Env.SingleFlight {
		t.Errorf("unexpected cache defaults %+v", Env)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	resetEnv(t)
	t.Setenv("KEY_EXCHANGE_URL", "https://keys.example.com/api")
	t.Setenv("KEY_EXCHANGE_RPS", "2")
	t.Setenv("DELIVERY_STRATEGY", "remux")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_CAPACITY", "16")
	t.Setenv("SINGLE_FLIGHT", "false")
	t.Setenv("CLEARKEY_PROXY_URL", "https://proxy.example.com")

	if err := LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if Env.KeyExchangeURL != "https://keys.example.com/api" || Env.KeyExchangeRPS != 2 {
		t.Errorf("key exchange settings %+v", Env)
	}
	if Env.DeliveryStrategy != "remux" || Env.CacheTTL != 90*time.Second || Env.CacheCapacity != 16 {
		t.Errorf("resolver settings %+v", Env)
	}
	if Env.SingleFlight || Env.ClearKeyProxyURL != "https://proxy.example.com" {
		t.Errorf("misc settings %+v", Env)
	}
}

func TestLoadEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"DELIVERY_STRATEGY": "carrier-pigeon",
		"CACHE_TTL":         "soon",
		"CACHE_CAPACITY":    "0",
		"SINGLE_FLIGHT":     "maybe",
		"KEY_EXCHANGE_RPS":  "-1",
		"PROBE_TIMEOUT":     "10",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			resetEnv(t)
			t.Setenv(name, value)
			if err := LoadEnv(); err == nil {
				t.Errorf("%s=%q should be rejected", name, value)
			}
		})
	}
}

func TestBroadcasterConfigs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broadcasters.yaml")
	content := `tf1:
  edge_proxy_url: https://edge.example.com/fetch
  license_url: https://lic.tf1.fr/widevine
  headers:
    Referer: https://www.tf1.fr/
francetv:
  disabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := LoadBroadcasterConfigs(path); err != nil {
		t.Fatalf("LoadBroadcasterConfigs: %v", err)
	}
	t.Cleanup(func() { LoadBroadcasterConfigs(filepath.Join(t.TempDir(), "none.yaml")) })

	cfg := GetBroadcasterConfig("https://vod-das.cdn-0.tf1.fr/show/manifest.mpd")
	if cfg == nil {
		t.Fatal("no config for tf1")
	}
	if cfg.LicenseURL != "https://lic.tf1.fr/widevine" || cfg.Headers["Referer"] != "https://www.tf1.fr/" {
		t.Errorf("unexpected tf1 config %+v", cfg)
	}
	if GetBroadcasterConfig("https://www.france.tv/x") != nil {
		t.Error("unknown host got a config")
	}
	if GetBroadcasterConfig("https://www.francetv.fr/x") != nil {
		t.Error("disabled config was returned")
	}
}

func TestBroadcasterConfigsMissingFile(t *testing.T) {
	if err := LoadBroadcasterConfigs(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Errorf("missing file should be fine, got %v", err)
	}
}
