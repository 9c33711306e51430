package models

import "time"

type EnvConfig struct {
	LogLevel string
	LogFile  bool

	KeyExchangeURL   string
	KeyExchangeRPS   int
	PlayerUserAgent  string
	DRMTokenHeader   string
	DRMToken         string
	EntitlementURL   string
	EntitlementToken string // gjson path of the token in the entitlement response

	ClearKeyProxyURL      string
	ClearKeyProxyPassword string

	RemuxProcessorURL string
	RemuxFormat       string
	RemuxPendingURL   string

	DeliveryStrategy string

	CacheTTL      time.Duration
	CacheCapacity int
	SingleFlight  bool

	EdgeProxyURL string
	HTTPSProxy   string
	HTTPProxy    string
	NoProxy      string

	FetchTimeout time.Duration
	ProbeTimeout time.Duration
}

// BroadcasterConfig is the per-host section of broadcasters.yaml.
type BroadcasterConfig struct {
	HTTPProxy         string            `yaml:"http_proxy"`
	HTTPSProxy        string            `yaml:"https_proxy"`
	NoProxy           string            `yaml:"no_proxy"`
	EdgeProxyURL      string            `yaml:"edge_proxy_url"`
	EdgeProxyEnvelope bool              `yaml:"edge_proxy_envelope"`
	CookiesFile       string            `yaml:"cookies_file"`
	LicenseURL        string            `yaml:"license_url"`
	Headers           map[string]string `yaml:"headers"`

	IsDisabled bool `yaml:"disabled"`
}
