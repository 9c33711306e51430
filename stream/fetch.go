package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/auth"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/logger"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/networking"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/parser"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const defaultFetchTimeout = 15 * time.Second

// ManifestFetcher downloads and parses mpd manifests the way a browser
// would request them.
type ManifestFetcher struct {
	// client overrides the per broadcaster client, mostly for tests
	client  models.HTTPClient
	headers auth.HeaderProvider
	timeout time.Duration
}

func NewManifestFetcher(
	client models.HTTPClient,
	headers auth.HeaderProvider,
	timeout time.Duration,
) *ManifestFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &ManifestFetcher{
		client:  client,
		headers: headers,
		timeout: timeout,
	}
}

func (f *ManifestFetcher) Fetch(ctx context.Context, manifestURL string) (*models.ManifestDocument, error) {
	body, finalURL, err := f.FetchRaw(ctx, manifestURL)
	if err != nil {
		return nil, err
	}
	doc, err := parser.ParseManifest(body, finalURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrParse, err)
	}
	return doc, nil
}

// FetchRaw returns the manifest body and the url it was finally served
// from, after redirects.
func (f *ManifestFetcher) FetchRaw(ctx context.Context, manifestURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", util.ErrFetch, err)
	}
	req.Header.Set("User-Agent", util.ChromeUA)
	req.Header.Set("Accept", util.BrowserAccept)
	if f.headers != nil {
		headers, err := f.headers.Headers(ctx)
		if err != nil {
			zap.S().Warnf("failed to get session headers: %v", err)
		}
		for name, value := range headers {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.httpClient(manifestURL).Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", util.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status %d", util.ErrFetch, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", util.ErrFetch, err)
	}

	finalURL := manifestURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	zap.S().Debugf("fetched manifest %s (%s)", finalURL, humanize.Bytes(uint64(len(body))))
	logger.WriteFile("manifest", body)

	return body, finalURL, nil
}

func (f *ManifestFetcher) httpClient(manifestURL string) models.HTTPClient {
	if f.client != nil {
		return f.client
	}
	return networking.GetBroadcasterHTTPClient(manifestURL)
}
