package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	existsTimeout = 10 * time.Second
	submitTimeout = 30 * time.Second
)

var unsafeSaveNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SaveName turns a content id into the file name the remux service saves
// under.
func SaveName(contentID string) string {
	name := unsafeSaveNameChars.ReplaceAllString(strings.TrimSpace(contentID), "_")
	return strings.Trim(name, "_")
}

// RemuxClient talks to the external decrypt and remux service. jobs are
// fire and forget: nothing here polls them.
type RemuxClient struct {
	client  models.HTTPClient
	baseURL string
	format  string
}

func NewRemuxClient(client models.HTTPClient, baseURL string, format string) *RemuxClient {
	if baseURL == "" {
		return nil
	}
	if format == "" {
		format = "mp4"
	}
	return &RemuxClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		format:  format,
	}
}

// AssetURL is where a finished job is served.
func (c *RemuxClient) AssetURL(saveName string) string {
	return c.baseURL + "/stream/" + url.PathEscape(saveName) + "." + c.format
}

// Exists reports whether saveName was already produced.
func (c *RemuxClient) Exists(ctx context.Context, saveName string) (string, bool) {
	if c == nil || saveName == "" {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, existsTimeout)
	defer cancel()

	assetURL := c.AssetURL(saveName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		zap.S().Debugf("remux existence check failed: %v", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	return assetURL, true
}

// NewJob fills the fixed job options around a url, save name and
// "kid:key" pair.
func (c *RemuxClient) NewJob(sourceURL string, saveName string, keyPair string) models.RemuxJob {
	return models.RemuxJob{
		URL:            sourceURL,
		SaveName:       saveName,
		Key:            keyPair,
		SelectVideo:    "best",
		SelectAudio:    "all",
		SelectSubtitle: "all",
		Format:         c.format,
		LogLevel:       "INFO",
		BinaryMerge:    false,
	}
}

// Submit queues a job and returns its id.
func (c *RemuxClient) Submit(ctx context.Context, job models.RemuxJob) (string, error) {
	if c == nil {
		return "", util.ErrNotConfigured
	}
	body, err := sonic.ConfigFastest.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrRemux, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", util.ErrRemux, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", util.ErrRemux, resp.StatusCode)
	}
	jobID := gjson.GetBytes(respBody, "job_id").String()
	if jobID == "" {
		return "", fmt.Errorf("%w: response has no job_id", util.ErrRemux)
	}
	return jobID, nil
}
