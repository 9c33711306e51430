package config

import (
	"os"
	"strconv"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var Env = GetDefaultConfig()

func LoadEnv() error {
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		Env.LogLevel = value
	}
	if value := os.Getenv("LOG_FILE"); value != "" {
		logFile, err := strconv.ParseBool(value)
		if err != nil {
			return errors.New("LOG_FILE env is not a valid boolean")
		}
		Env.LogFile = logFile
	}
	if value := os.Getenv("KEY_EXCHANGE_URL"); value != "" {
		Env.KeyExchangeURL = value
	} else {
		zap.S().Warnf("KEY_EXCHANGE_URL is not set, using default %s", Env.KeyExchangeURL)
	}
	if value := os.Getenv("KEY_EXCHANGE_RPS"); value != "" {
		rps, err := strconv.Atoi(value)
		if err != nil || rps < 0 {
			return errors.New("KEY_EXCHANGE_RPS env is not a valid non-negative integer")
		}
		Env.KeyExchangeRPS = rps
	}
	if value := os.Getenv("PLAYER_USER_AGENT"); value != "" {
		Env.PlayerUserAgent = value
	}
	if value := os.Getenv("DRM_TOKEN_HEADER"); value != "" {
		Env.DRMTokenHeader = value
	}
	if value := os.Getenv("DRM_TOKEN"); value != "" {
		Env.DRMToken = value
	}
	if value := os.Getenv("ENTITLEMENT_URL"); value != "" {
		Env.EntitlementURL = value
	}
	if value := os.Getenv("ENTITLEMENT_TOKEN_PATH"); value != "" {
		Env.EntitlementToken = value
	}
	if value := os.Getenv("CLEARKEY_PROXY_URL"); value != "" {
		Env.ClearKeyProxyURL = value
	}
	if value := os.Getenv("CLEARKEY_PROXY_PASSWORD"); value != "" {
		Env.ClearKeyProxyPassword = value
	}
	if value := os.Getenv("REMUX_PROCESSOR_URL"); value != "" {
		Env.RemuxProcessorURL = value
	}
	if value := os.Getenv("REMUX_FORMAT"); value != "" {
		Env.RemuxFormat = value
	}
	if value := os.Getenv("REMUX_PENDING_URL"); value != "" {
		Env.RemuxPendingURL = value
	}
	if value := os.Getenv("DELIVERY_STRATEGY"); value != "" {
		if _, ok := enums.ParseDeliveryStrategy(value); !ok {
			return errors.Errorf("DELIVERY_STRATEGY env is not one of auto, clearkey, remux: %q", value)
		}
		Env.DeliveryStrategy = value
	}
	if value := os.Getenv("CACHE_TTL"); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrap(err, "CACHE_TTL env is not a valid duration")
		}
		Env.CacheTTL = ttl
	}
	if value := os.Getenv("CACHE_CAPACITY"); value != "" {
		capacity, err := strconv.Atoi(value)
		if err != nil || capacity <= 0 {
			return errors.New("CACHE_CAPACITY env is not a valid positive integer")
		}
		Env.CacheCapacity = capacity
	}
	if value := os.Getenv("SINGLE_FLIGHT"); value != "" {
		singleFlight, err := strconv.ParseBool(value)
		if err != nil {
			return errors.New("SINGLE_FLIGHT env is not a valid boolean")
		}
		Env.SingleFlight = singleFlight
	}
	if value := os.Getenv("EDGE_PROXY_URL"); value != "" {
		Env.EdgeProxyURL = value
	}
	if value := os.Getenv("HTTP_PROXY"); value != "" {
		Env.HTTPProxy = value
	}
	if value := os.Getenv("HTTPS_PROXY"); value != "" {
		Env.HTTPSProxy = value
	}
	if value := os.Getenv("NO_PROXY"); value != "" {
		Env.NoProxy = value
	}
	if value := os.Getenv("FETCH_TIMEOUT"); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrap(err, "FETCH_TIMEOUT env is not a valid duration")
		}
		Env.FetchTimeout = timeout
	}
	if value := os.Getenv("PROBE_TIMEOUT"); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrap(err, "PROBE_TIMEOUT env is not a valid duration")
		}
		Env.ProbeTimeout = timeout
	}
	return nil
}

func GetDefaultConfig() *models.EnvConfig {
	return &models.EnvConfig{
		LogLevel: "info",

		KeyExchangeURL:   "https://cdrm-project.com/api/decrypt",
		PlayerUserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		DRMTokenHeader:   "x-dt-auth-token",
		EntitlementToken: "token",

		RemuxFormat:     "mp4",
		RemuxPendingURL: "about:blank",

		DeliveryStrategy: string(enums.DeliveryAuto),

		CacheTTL:      10 * time.Minute,
		CacheCapacity: 512,
		SingleFlight:  true,

		FetchTimeout: 15 * time.Second,
		ProbeTimeout: 10 * time.Second,
	}
}
