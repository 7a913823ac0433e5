package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/model-o-meter/internal/apperrors"
	"github.com/ZanzyTHEbar/model-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
	"github.com/ZanzyTHEbar/model-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

const ghAPIBase = "https://api.github.com"

type ghRepoInfo struct {
	FullName string `json:"full_name"`
	PushedAt string `json:"pushed_at"`
}

type ghContributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// GitHubAdapter fetches repository metadata from the GitHub REST API.
// Requests are authenticated when a token is configured, which raises the
// rate limit from 60 to 5000 requests per hour.
type GitHubAdapter struct {
	client  *resilience.Client
	cache   cache.Store
	tokens  metrics.TokenSource
	logger  *monitoring.Logger
	counter *monitoring.Metrics
}

func NewGitHubAdapter(client *resilience.Client, store cache.Store, tokens metrics.TokenSource, logger *monitoring.Logger, counter *monitoring.Metrics) *GitHubAdapter {
	return &GitHubAdapter{
		client:  client,
		cache:   store,
		tokens:  tokens,
		logger:  logger,
		counter: counter,
	}
}

// FetchRepo builds the repo-metadata section of a bundle for one code URL.
func (a *GitHubAdapter) FetchRepo(ctx context.Context, rawURL string) (*types.RepoMetadata, error) {
	repoID := types.RepoID(rawURL)
	if repoID == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot extract repo id from %q", rawURL))
	}

	if a.cache != nil {
		if data, ok := a.cache.Get(ctx, cache.KeyRepo+repoID); ok {
			var meta types.RepoMetadata
			if err := json.Unmarshal(data, &meta); err == nil {
				a.counter.IncrementCacheHit()
				return &meta, nil
			}
			a.cache.Delete(ctx, cache.KeyRepo+repoID)
		}
		a.counter.IncrementCacheMiss()
	}

	meta := &types.RepoMetadata{RepoURL: rawURL}

	var info ghRepoInfo
	if err := a.getJSON(ctx, fmt.Sprintf("%s/repos/%s", ghAPIBase, repoID), &info); err != nil {
		return nil, err
	}
	meta.LastCommitDate = info.PushedAt

	var contributors []ghContributor
	url := fmt.Sprintf("%s/repos/%s/contributors?per_page=100", ghAPIBase, repoID)
	if err := a.getJSON(ctx, url, &contributors); err == nil {
		meta.RecentCommitters = len(contributors)
		meta.CommitsByCommitter = make(map[string]int, len(contributors))
		for _, c := range contributors {
			meta.CommitsByCommitter[c.Login] = c.Contributions
		}
	}

	if a.cache != nil {
		if data, err := json.Marshal(meta); err == nil {
			a.cache.Set(ctx, cache.KeyRepo+repoID, data, cache.TTLRepo)
		}
	}

	return meta, nil
}

func (a *GitHubAdapter) getJSON(ctx context.Context, url string, out any) error {
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if token := a.tokens.Token("github"); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	a.counter.IncrementExternalCall()
	start := time.Now()

	resp, err := a.client.Get(ctx, url, headers)
	if err != nil {
		a.counter.IncrementExternalError()
		a.logger.ExternalAPILogger("github", http.MethodGet, url, 0, time.Since(start), false)
		return err
	}
	defer resp.Body.Close()

	a.logger.ExternalAPILogger("github", http.MethodGet, url, resp.StatusCode, time.Since(start), resp.StatusCode == http.StatusOK)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewNotFoundError(fmt.Sprintf("repository not found: %s", url))
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		a.counter.IncrementExternalError()
		return apperrors.NewExternalAPIError(fmt.Sprintf("GitHub rate limited request to %s", url), nil)
	case resp.StatusCode != http.StatusOK:
		a.counter.IncrementExternalError()
		return apperrors.NewExternalAPIError(fmt.Sprintf("GitHub returned status %d for %s", resp.StatusCode, url), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalAPIError(fmt.Sprintf("malformed GitHub response for %s", url), err)
	}
	return nil
}
