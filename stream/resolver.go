// Package stream turns a broadcaster's asset list into something a player
// can open, unlocking protected dash through an external key exchange.
package stream

import (
	"context"
	"maps"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/auth"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/cache"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/drm"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/parser"

	"github.com/guregu/null/v6"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix    = "stream:"
	processingStatus  = "processing"
	defaultCacheTTL   = 10 * time.Minute
	defaultPendingURL = "about:blank"
	defaultDRMHeader  = "x-dt-auth-token"
)

type ResolveRequest struct {
	ContentID string
	Assets    []models.AssetDescriptor
	IsLive    bool

	// LicenseURL is embedded in the key exchange, never called here
	LicenseURL     string
	LicenseHeaders map[string]string
	// Headers are the playback headers handed back with the stream
	Headers map[string]string
	// SaveName defaults to SaveName(ContentID)
	SaveName string
}

type Fetcher interface {
	Fetch(ctx context.Context, manifestURL string) (*models.ManifestDocument, error)
}

type ProtectionExtractor interface {
	Extract(doc *models.ManifestDocument) (*models.ProtectionInfo, []models.PsshRecord)
	SelectPSSH(records []models.PsshRecord) (models.PsshRecord, bool)
}

type KeyRequester interface {
	RequestKey(ctx context.Context, req drm.KeyRequest) (string, bool)
}

type Dependencies struct {
	Formats    *FormatSelector
	Fetcher    Fetcher
	Extractor  ProtectionExtractor
	Tokens     auth.TokenProvider
	Licenses   KeyRequester
	Normalizer *drm.KeyNormalizer
	ClearKey   *ClearKeyURLBuilder
	Remux      *RemuxClient
	Cache      cache.Store[*models.ResolvedStream]
}

type ResolverConfig struct {
	Strategy     enums.DeliveryStrategy
	CacheTTL     time.Duration
	SingleFlight bool
	// PendingURL is handed out while a remux job runs
	PendingURL string
	// TokenHeader carries the drm token in the no key license headers
	TokenHeader string
}

func (c *ResolverConfig) Ensure() {
	if _, ok := enums.ParseDeliveryStrategy(string(c.Strategy)); !ok {
		c.Strategy = enums.DeliveryAuto
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.PendingURL == "" {
		c.PendingURL = defaultPendingURL
	}
	if c.TokenHeader == "" {
		c.TokenHeader = defaultDRMHeader
	}
}

// Resolver is the resolution state machine. the idempotency check for an
// already remuxed asset always runs before any drm work.
type Resolver struct {
	deps   Dependencies
	config *ResolverConfig
	group  singleflight.Group
}

func NewResolver(deps Dependencies, config *ResolverConfig) *Resolver {
	if config == nil {
		config = &ResolverConfig{}
	}
	config.Ensure()
	if deps.Formats == nil {
		deps.Formats = NewFormatSelector(nil, 0)
	}
	if deps.Extractor == nil {
		deps.Extractor = &drm.Extractor{}
	}
	if deps.Normalizer == nil {
		deps.Normalizer = &drm.KeyNormalizer{}
	}
	return &Resolver{
		deps:   deps,
		config: config,
	}
}

// Resolve only fails when no playable format exists. every other failure
// degrades to the best outcome still reachable.
func (r *Resolver) Resolve(ctx context.Context, req *ResolveRequest) (*models.ResolvedStream, error) {
	cacheKey := cacheKeyPrefix + req.ContentID
	if r.deps.Cache != nil && req.ContentID != "" {
		if cached, ok := r.deps.Cache.Get(cacheKey); ok {
			zap.S().Debugf("resolve %s: cache hit", req.ContentID)
			return cloneStream(cached), nil
		}
	}

	r.transition(req, enums.StateSelectingFormat)
	choice, err := r.deps.Formats.Select(ctx, req.Assets, req.IsLive)
	if err != nil {
		zap.S().Warnf("resolve %s: %v", req.ContentID, err)
		return nil, err
	}

	var stream *models.ResolvedStream
	switch {
	case !choice.DRMRequired:
		stream = &models.ResolvedStream{
			URL:          choice.URL,
			ManifestType: choice.Type,
			Headers:      maps.Clone(req.Headers),
			Outcome:      enums.OutcomeClear,
		}
	case r.config.SingleFlight && req.ContentID != "":
		result, _, _ := r.group.Do(req.ContentID, func() (any, error) {
			return r.resolveProtected(ctx, req, choice), nil
		})
		stream = cloneStream(result.(*models.ResolvedStream))
	default:
		stream = r.resolveProtected(ctx, req, choice)
	}

	if stream.Outcome.Degraded() {
		zap.S().Warnf("resolve %s: degraded to %s", req.ContentID, stream.Outcome)
	} else {
		zap.S().Infof("resolve %s: %s", req.ContentID, stream.Outcome)
	}
	if r.deps.Cache != nil && req.ContentID != "" && cacheable(stream.Outcome) {
		r.deps.Cache.Set(cacheKey, cloneStream(stream), r.config.CacheTTL)
	}
	return stream, nil
}

func (r *Resolver) resolveProtected(
	ctx context.Context,
	req *ResolveRequest,
	choice *models.FormatChoice,
) *models.ResolvedStream {
	saveName := req.SaveName
	if saveName == "" {
		saveName = SaveName(req.ContentID)
	}

	r.transition(req, enums.StateCheckingExistingAsset)
	if r.deps.Remux != nil {
		if assetURL, ok := r.deps.Remux.Exists(ctx, saveName); ok {
			return &models.ResolvedStream{
				URL:          assetURL,
				ManifestType: enums.FormatTypeVideo,
				Outcome:      enums.OutcomeProcessedAsset,
			}
		}
	}

	r.transition(req, enums.StateExtractingProtection)
	if r.deps.Fetcher == nil {
		zap.S().Warnf("resolve %s: no manifest fetcher", req.ContentID)
		return r.noKey(req, choice, nil)
	}
	doc, err := r.deps.Fetcher.Fetch(ctx, choice.URL)
	if err != nil {
		zap.S().Warnf("resolve %s: %v", req.ContentID, err)
		return r.noKey(req, choice, nil)
	}
	info, records := r.deps.Extractor.Extract(doc)
	record, ok := r.deps.Extractor.SelectPSSH(records)
	if !ok {
		zap.S().Warnf("resolve %s: %v (%d pssh records)", req.ContentID, util.ErrNoProtection, len(records))
		return r.noKey(req, choice, nil)
	}
	keyID := info.KeyID
	if keyID == "" {
		keyID, _ = drm.FallbackKeyID(doc, record)
	}

	r.transition(req, enums.StateRequestingLicenseToken)
	if r.deps.Tokens == nil {
		zap.S().Warnf("resolve %s: no token provider", req.ContentID)
		return r.noKey(req, choice, nil)
	}
	token, err := r.deps.Tokens.Token(ctx, req.ContentID)
	if err != nil {
		zap.S().Warnf("resolve %s: %v", req.ContentID, err)
		return r.noKey(req, choice, nil)
	}

	r.transition(req, enums.StateRequestingKey)
	if r.deps.Licenses == nil {
		zap.S().Warnf("resolve %s: no key exchange client", req.ContentID)
		return r.noKey(req, choice, token)
	}
	rawKey, ok := r.deps.Licenses.RequestKey(ctx, drm.KeyRequest{
		PSSH:       record.Base64,
		LicenseURL: req.LicenseURL,
		Token:      token,
		Headers:    req.LicenseHeaders,
	})
	if !ok {
		return r.noKey(req, choice, token)
	}

	r.transition(req, enums.StateNormalizingKey)
	key, ok := r.deps.Normalizer.NormalizeDecryptionKey(rawKey, keyID)
	if !ok {
		zap.S().Warnf("resolve %s: %v", req.ContentID, util.ErrKeyMismatch)
		return r.noKey(req, choice, token)
	}
	if keyID == "" {
		keyID = key.KeyID
	}
	zap.S().Debugf("resolve %s: key %s for kid %s", req.ContentID, drm.MaskKey(key.Key), keyID)

	r.transition(req, enums.StateChoosingDelivery)
	return r.deliver(ctx, req, choice, doc, keyID, key.Key, saveName, token)
}

func (r *Resolver) deliver(
	ctx context.Context,
	req *ResolveRequest,
	choice *models.FormatChoice,
	doc *models.ManifestDocument,
	keyID string,
	key string,
	saveName string,
	token *models.LicenseToken,
) *models.ResolvedStream {
	canClearKey := r.deps.ClearKey != nil && keyID != ""
	canRemux := r.deps.Remux != nil

	var useRemux bool
	switch r.config.Strategy {
	case enums.DeliveryClearKey:
		useRemux = false
	case enums.DeliveryRemux:
		useRemux = canRemux
	default:
		useRemux = !canClearKey && canRemux
	}

	if useRemux {
		r.transition(req, enums.StateTriggerAsyncRemux)
		pair := key
		if keyID != "" {
			pair = keyID + ":" + key
		}
		jobID, err := r.deps.Remux.Submit(ctx, r.deps.Remux.NewJob(choice.URL, saveName, pair))
		if err == nil {
			zap.S().Infof("resolve %s: remux job %s queued as %s", req.ContentID, jobID, saveName)
			return &models.ResolvedStream{
				URL:          r.config.PendingURL,
				ManifestType: enums.FormatTypeVideo,
				Status:       null.StringFrom(processingStatus),
				Outcome:      enums.OutcomeProcessingPending,
			}
		}
		zap.S().Warnf("resolve %s: %v", req.ContentID, err)
	}

	if canClearKey {
		proxyURL, err := r.deps.ClearKey.Build(choice.URL, keyID, key)
		if err == nil {
			return &models.ResolvedStream{
				URL:          proxyURL,
				ManifestType: enums.FormatTypeMPD,
				ExternalURL:  null.StringFrom(choice.URL),
				Manifest:     null.StringFrom(parser.RewriteManifest(string(doc.Raw), doc.SourceURL)),
				Outcome:      enums.OutcomeClearKeyURL,
			}
		}
		zap.S().Warnf("resolve %s: %v", req.ContentID, err)
	}

	zap.S().Warnf("resolve %s: no delivery strategy available", req.ContentID)
	return r.noKey(req, choice, token)
}

// noKey hands the protected manifest back so a player with its own drm
// client can still try.
func (r *Resolver) noKey(
	req *ResolveRequest,
	choice *models.FormatChoice,
	token *models.LicenseToken,
) *models.ResolvedStream {
	licenseHeaders := maps.Clone(req.LicenseHeaders)
	if token != nil && token.Value != "" {
		if licenseHeaders == nil {
			licenseHeaders = make(map[string]string, 1)
		}
		licenseHeaders[r.config.TokenHeader] = token.Value
	}
	stream := &models.ResolvedStream{
		URL:            choice.URL,
		ManifestType:   enums.FormatTypeMPD,
		Headers:        maps.Clone(req.Headers),
		LicenseHeaders: licenseHeaders,
		Outcome:        enums.OutcomeNoKey,
	}
	if req.LicenseURL != "" {
		stream.LicenseURL = null.StringFrom(req.LicenseURL)
	}
	return stream
}

func (r *Resolver) transition(req *ResolveRequest, state enums.ResolveState) {
	zap.S().Debugf("resolve %s: %s", req.ContentID, state)
}

func cacheable(outcome enums.Outcome) bool {
	switch outcome {
	case enums.OutcomeClear, enums.OutcomeProcessedAsset, enums.OutcomeClearKeyURL:
		return true
	}
	return false
}

func cloneStream(stream *models.ResolvedStream) *models.ResolvedStream {
	if stream == nil {
		return nil
	}
	clone := *stream
	clone.Headers = maps.Clone(stream.Headers)
	clone.LicenseHeaders = maps.Clone(stream.LicenseHeaders)
	return &clone
}

// IsNoFormat reports whether err is the one failure Resolve surfaces.
func IsNoFormat(err error) bool {
	return errors.Is(err, util.ErrNoFormat)
}
