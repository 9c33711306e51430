package cmd

import (
	"github.com/unsuns06/ReplayTV-Stremio-sub000/auth"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/cache"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/config"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/drm"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/stream"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/networking"

	"go.uber.org/zap"
)

// newResolver assembles the resolver for the broadcaster serving
// manifestURL from the loaded configuration.
func newResolver(manifestURL string) *stream.Resolver {
	env := config.Env
	broadcaster := config.GetBroadcasterConfig(manifestURL)
	headers := auth.NewStaticHeadersFromConfig(broadcaster)
	client := networking.GetDefaultHTTPClient()

	deps := stream.Dependencies{
		Formats:  stream.NewFormatSelector(nil, env.ProbeTimeout),
		Fetcher:  stream.NewManifestFetcher(nil, headers, env.FetchTimeout),
		Tokens:   newTokenProvider(env, client, headers),
		ClearKey: stream.NewClearKeyURLBuilder(env.ClearKeyProxyURL, env.ClearKeyProxyPassword),
		Remux:    stream.NewRemuxClient(client, env.RemuxProcessorURL, env.RemuxFormat),
		Licenses: drm.NewLicenseClient(client, drm.LicenseClientOptions{
			Endpoint:    env.KeyExchangeURL,
			TokenHeader: env.DRMTokenHeader,
			UserAgent:   env.PlayerUserAgent,
			RPS:         env.KeyExchangeRPS,
		}),
	}

	store, err := cache.NewMemory[*models.ResolvedStream](env.CacheCapacity)
	if err != nil {
		zap.S().Warnf("resolving without cache: %v", err)
	} else {
		deps.Cache = store
	}

	strategy, _ := enums.ParseDeliveryStrategy(env.DeliveryStrategy)
	return stream.NewResolver(deps, &stream.ResolverConfig{
		Strategy:     strategy,
		CacheTTL:     env.CacheTTL,
		SingleFlight: env.SingleFlight,
		PendingURL:   env.RemuxPendingURL,
		TokenHeader:  env.DRMTokenHeader,
	})
}

func newTokenProvider(
	env *models.EnvConfig,
	client models.HTTPClient,
	headers auth.HeaderProvider,
) auth.TokenProvider {
	if env.EntitlementURL != "" {
		return auth.NewEntitlementClient(client, env.EntitlementURL, env.EntitlementToken, headers)
	}
	return auth.StaticToken(env.DRMToken)
}
