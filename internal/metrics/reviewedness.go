package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

const (
	githubGraphQLEndpoint = "https://api.github.com/graphql"

	// Caps history pagination at roughly 1000 commits per repository.
	reviewednessMaxPages = 10
)

// HTTPDoer is the slice of http.Client the reviewedness metric needs;
// injected so tests can stub the GraphQL endpoint.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ReviewednessMetric computes the fraction of default-branch commits that
// landed through a reviewed pull request, via the GitHub GraphQL API.
// With no linked repository the metric is not applicable and reports the
// sentinel value instead of zero.
type ReviewednessMetric struct {
	tokens TokenSource
	client HTTPDoer
}

func NewReviewednessMetric(tokens TokenSource, client HTTPDoer) *ReviewednessMetric {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ReviewednessMetric{tokens: tokens, client: client}
}

func (m *ReviewednessMetric) Name() string { return "reviewedness" }

func (m *ReviewednessMetric) Compute(ctx context.Context, b *types.Bundle) Result {
	if b.Repo == nil || b.Repo.RepoURL == "" {
		return Result{Name: m.Name(), Value: NotApplicable, Details: map[string]any{"reason": "no linked code repository"}}
	}

	token := ""
	if m.tokens != nil {
		token = m.tokens.Token("github")
	}
	if token == "" {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": "github token not configured"}}
	}

	owner, repo, err := splitRepoURL(b.Repo.RepoURL)
	if err != nil {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": err.Error()}}
	}

	prCommits, totalCommits, err := m.fetchPRStats(ctx, token, owner, repo)
	if err != nil {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": err.Error()}}
	}
	if totalCommits == 0 {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"reason": "no commits found"}}
	}

	score := float64(prCommits) / float64(totalCommits)
	return Result{
		Name:  m.Name(),
		Value: round3(score),
		Details: map[string]any{
			"pr_commits":        prCommits,
			"total_commits":     totalCommits,
			"review_percentage": round3(score * 100),
		},
	}
}

func splitRepoURL(repoURL string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimRight(repoURL, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("malformed repository URL: %s", repoURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

const reviewednessQuery = `
query($owner: String!, $repo: String!, $cursor: String) {
  repository(owner: $owner, name: $repo) {
    defaultBranchRef {
      target {
        ... on Commit {
          history(first: 100, after: $cursor) {
            pageInfo { hasNextPage endCursor }
            nodes {
              associatedPullRequests(first: 1) {
                nodes { reviews(first: 1) { totalCount } }
              }
            }
          }
        }
      }
    }
  }
}`

type graphQLHistory struct {
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
	Nodes []struct {
		AssociatedPullRequests struct {
			Nodes []struct {
				Reviews struct {
					TotalCount int `json:"totalCount"`
				} `json:"reviews"`
			} `json:"nodes"`
		} `json:"associatedPullRequests"`
	} `json:"nodes"`
}

type graphQLResponse struct {
	Data struct {
		Repository struct {
			DefaultBranchRef struct {
				Target struct {
					History graphQLHistory `json:"history"`
				} `json:"target"`
			} `json:"defaultBranchRef"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// fetchPRStats walks the default-branch history and counts commits whose
// associated pull request received at least one review.
func (m *ReviewednessMetric) fetchPRStats(ctx context.Context, token, owner, repo string) (prCommits, totalCommits int, err error) {
	cursor := ""
	for page := 0; page < reviewednessMaxPages; page++ {
		variables := map[string]any{"owner": owner, "repo": repo}
		if cursor != "" {
			variables["cursor"] = cursor
		}
		payload, err := json.Marshal(map[string]any{"query": reviewednessQuery, "variables": variables})
		if err != nil {
			return 0, 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, githubGraphQLEndpoint, bytes.NewReader(payload))
		if err != nil {
			return 0, 0, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.client.Do(req)
		if err != nil {
			return 0, 0, fmt.Errorf("graphql request failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return 0, 0, fmt.Errorf("graphql query failed: status %d", resp.StatusCode)
		}

		var decoded graphQLResponse
		err = json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if err != nil {
			return 0, 0, fmt.Errorf("decode graphql response: %w", err)
		}
		if len(decoded.Errors) > 0 {
			return 0, 0, fmt.Errorf("graphql error: %s", decoded.Errors[0].Message)
		}

		history := decoded.Data.Repository.DefaultBranchRef.Target.History
		for _, node := range history.Nodes {
			totalCommits++
			prs := node.AssociatedPullRequests.Nodes
			if len(prs) > 0 && prs[0].Reviews.TotalCount > 0 {
				prCommits++
			}
		}

		if !history.PageInfo.HasNextPage {
			break
		}
		cursor = history.PageInfo.EndCursor
	}
	return prCommits, totalCommits, nil
}
