package adapters

import (
	"context"
	"log/slog"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// BundleBuilder assembles the full metadata bundle for one submitted model
// URL, consulting the hub for the model and GitHub for the first linked
// code repository. Fetch failures degrade to absent sections so scoring
// can always proceed.
type BundleBuilder struct {
	hub    *HuggingFaceAdapter
	github *GitHubAdapter
	logger *slog.Logger
}

func NewBundleBuilder(hub *HuggingFaceAdapter, github *GitHubAdapter, logger *slog.Logger) *BundleBuilder {
	return &BundleBuilder{hub: hub, github: github, logger: logger}
}

// Build fetches metadata for the artifact. The returned bundle is never
// nil; sections the collaborators could not supply are nil inside it.
func (b *BundleBuilder) Build(ctx context.Context, artifact types.ArtifactURL) *types.Bundle {
	bundle := &types.Bundle{
		ArtifactID: types.RepoID(artifact.URL),
		Links: types.LinkCounts{
			Code:     len(artifact.Code),
			Datasets: len(artifact.Datasets),
		},
	}

	host, err := b.hub.FetchModel(ctx, artifact.URL)
	if err != nil {
		b.logger.Warn("Model metadata unavailable", "url", artifact.URL, "error", err)
	} else {
		if len(artifact.Datasets) > 0 {
			host.DatasetURL = artifact.Datasets[0]
		}
		bundle.Host = host
	}

	if len(artifact.Code) > 0 {
		repo, err := b.github.FetchRepo(ctx, artifact.Code[0])
		if err != nil {
			b.logger.Warn("Repository metadata unavailable", "url", artifact.Code[0], "error", err)
		} else {
			bundle.Repo = repo
		}
	}

	return bundle
}
