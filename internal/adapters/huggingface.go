// Package adapters fetches artifact metadata from the model hub and GitHub
// and shapes it into the bundle the metric engine consumes.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/model-o-meter/internal/apperrors"
	"github.com/ZanzyTHEbar/model-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/model-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

const (
	hfAPIBase = "https://huggingface.co/api"
	hfRawBase = "https://huggingface.co"

	// README bodies are bounded so a pathological model card cannot blow
	// up memory during a batch.
	maxReadmeBytes = 1 << 20
)

// hfRepoInfo mirrors the subset of the hub's repo JSON the metrics read.
type hfRepoInfo struct {
	ID           string   `json:"id"`
	Downloads    int64    `json:"downloads"`
	Likes        int64    `json:"likes"`
	LastModified string   `json:"lastModified"`
	Tags         []string `json:"tags"`
	UsedStorage  int64    `json:"usedStorage"`
	CardData     struct {
		License any    `json:"license"`
		Summary string `json:"summary"`
	} `json:"cardData"`
	Siblings []struct {
		Filename string `json:"rfilename"`
	} `json:"siblings"`
}

// HuggingFaceAdapter fetches model and dataset metadata from the hub.
type HuggingFaceAdapter struct {
	client  *resilience.Client
	cache   cache.Store
	logger  *monitoring.Logger
	counter *monitoring.Metrics
}

func NewHuggingFaceAdapter(client *resilience.Client, store cache.Store, logger *monitoring.Logger, counter *monitoring.Metrics) *HuggingFaceAdapter {
	return &HuggingFaceAdapter{
		client:  client,
		cache:   store,
		logger:  logger,
		counter: counter,
	}
}

// FetchModel builds the host-metadata section of a bundle for one model URL.
func (a *HuggingFaceAdapter) FetchModel(ctx context.Context, rawURL string) (*types.HostMetadata, error) {
	repoID := types.RepoID(rawURL)
	if repoID == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot extract repo id from %q", rawURL))
	}

	if meta, ok := a.cached(ctx, cache.KeyModel+repoID); ok {
		return meta, nil
	}

	info, err := a.fetchRepoInfo(ctx, fmt.Sprintf("%s/models/%s", hfAPIBase, repoID))
	if err != nil {
		return nil, err
	}

	meta := a.buildMetadata(rawURL, repoID, info)
	meta.ReadmeText = a.fetchReadme(ctx, repoID)

	a.store(ctx, cache.KeyModel+repoID, cache.TTLModel, meta)
	return meta, nil
}

// FetchDataset builds host metadata for a hub dataset URL. This is the
// dataset-quality metric's fetcher.
func (a *HuggingFaceAdapter) FetchDataset(ctx context.Context, rawURL string) (*types.HostMetadata, error) {
	datasetID, err := types.DatasetID(rawURL)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if meta, ok := a.cached(ctx, cache.KeyDataset+datasetID); ok {
		return meta, nil
	}

	info, err := a.fetchRepoInfo(ctx, fmt.Sprintf("%s/datasets/%s", hfAPIBase, datasetID))
	if err != nil {
		return nil, err
	}

	meta := a.buildMetadata(rawURL, datasetID, info)

	a.store(ctx, cache.KeyDataset+datasetID, cache.TTLDataset, meta)
	return meta, nil
}

func (a *HuggingFaceAdapter) fetchRepoInfo(ctx context.Context, url string) (*hfRepoInfo, error) {
	a.counter.IncrementExternalCall()
	start := time.Now()

	resp, err := a.client.Get(ctx, url, nil)
	if err != nil {
		a.counter.IncrementExternalError()
		a.logger.ExternalAPILogger("huggingface", http.MethodGet, url, 0, time.Since(start), false)
		return nil, err
	}
	defer resp.Body.Close()

	a.logger.ExternalAPILogger("huggingface", http.MethodGet, url, resp.StatusCode, time.Since(start), resp.StatusCode == http.StatusOK)

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hub repo not found: %s", url))
	}
	if resp.StatusCode != http.StatusOK {
		a.counter.IncrementExternalError()
		return nil, apperrors.NewExternalAPIError(fmt.Sprintf("hub returned status %d for %s", resp.StatusCode, url), nil)
	}

	var info hfRepoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.NewExternalAPIError(fmt.Sprintf("malformed hub response for %s", url), err)
	}
	return &info, nil
}

func (a *HuggingFaceAdapter) buildMetadata(rawURL, repoID string, info *hfRepoInfo) *types.HostMetadata {
	files := make([]string, 0, len(info.Siblings))
	for _, s := range info.Siblings {
		files = append(files, s.Filename)
	}

	return &types.HostMetadata{
		RepoURL:      rawURL,
		RepoID:       repoID,
		Downloads:    info.Downloads,
		Likes:        info.Likes,
		LastModified: info.LastModified,
		NumFiles:     len(files),
		License:      extractLicense(info),
		SizeMB:       float64(info.UsedStorage) / (1024 * 1024),
		Description:  info.CardData.Summary,
		Tags:         info.Tags,
		Files:        files,
	}
}

// extractLicense prefers the card's license field and falls back to the
// "license:x" tag the hub attaches.
func extractLicense(info *hfRepoInfo) string {
	switch v := info.CardData.License.(type) {
	case string:
		if v != "" {
			return v
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, tag := range info.Tags {
		if rest, ok := strings.CutPrefix(tag, "license:"); ok {
			return rest
		}
	}
	return ""
}

// fetchReadme pulls the raw README. Absence is normal and yields "".
func (a *HuggingFaceAdapter) fetchReadme(ctx context.Context, repoID string) string {
	url := fmt.Sprintf("%s/%s/raw/main/README.md", hfRawBase, repoID)

	a.counter.IncrementExternalCall()
	resp, err := a.client.Get(ctx, url, nil)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadmeBytes))
	if err != nil {
		return ""
	}
	return string(body)
}

func (a *HuggingFaceAdapter) cached(ctx context.Context, key string) (*types.HostMetadata, bool) {
	if a.cache == nil {
		return nil, false
	}
	data, ok := a.cache.Get(ctx, key)
	if !ok {
		a.counter.IncrementCacheMiss()
		a.logger.CacheLogger("get", key, false)
		return nil, false
	}
	var meta types.HostMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		a.cache.Delete(ctx, key)
		return nil, false
	}
	a.counter.IncrementCacheHit()
	a.logger.CacheLogger("get", key, true)
	return &meta, true
}

func (a *HuggingFaceAdapter) store(ctx context.Context, key string, ttl time.Duration, meta *types.HostMetadata) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	a.cache.Set(ctx, key, data, ttl)
}
