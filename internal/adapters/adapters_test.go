package adapters

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/model-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/model-o-meter/internal/config"
	"github.com/ZanzyTHEbar/model-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func quietLogger() *monitoring.Logger {
	return monitoring.NewLoggerTo(discard{}, slog.LevelError)
}

func testHubAdapter() *HuggingFaceAdapter {
	return NewHuggingFaceAdapter(nil, cache.NewMemoryStore(), quietLogger(), monitoring.NewMetrics())
}

func TestExtractLicense(t *testing.T) {
	t.Run("string card license", func(t *testing.T) {
		info := &hfRepoInfo{}
		info.CardData.License = "apache-2.0"
		assert.Equal(t, "apache-2.0", extractLicense(info))
	})

	t.Run("list card license takes first string", func(t *testing.T) {
		info := &hfRepoInfo{}
		info.CardData.License = []any{"mit", "gpl"}
		assert.Equal(t, "mit", extractLicense(info))
	})

	t.Run("falls back to license tag", func(t *testing.T) {
		info := &hfRepoInfo{Tags: []string{"text-generation", "license:bsd"}}
		assert.Equal(t, "bsd", extractLicense(info))
	})

	t.Run("nothing declared", func(t *testing.T) {
		info := &hfRepoInfo{Tags: []string{"text-generation"}}
		assert.Equal(t, "", extractLicense(info))
	})
}

func TestBuildMetadata(t *testing.T) {
	a := testHubAdapter()

	info := &hfRepoInfo{
		ID:          "google/bert-base",
		Downloads:   12345,
		Likes:       678,
		UsedStorage: 3 * 1024 * 1024 * 1024, // 3 GiB
		Tags:        []string{"license:mit", "fill-mask"},
	}
	info.Siblings = append(info.Siblings, struct {
		Filename string `json:"rfilename"`
	}{Filename: "config.json"}, struct {
		Filename string `json:"rfilename"`
	}{Filename: "model.bin"})

	meta := a.buildMetadata("https://huggingface.co/google/bert-base", "google/bert-base", info)

	assert.Equal(t, "google/bert-base", meta.RepoID)
	assert.Equal(t, int64(12345), meta.Downloads)
	assert.Equal(t, int64(678), meta.Likes)
	assert.Equal(t, 2, meta.NumFiles)
	assert.Equal(t, []string{"config.json", "model.bin"}, meta.Files)
	assert.Equal(t, "mit", meta.License)
	assert.InDelta(t, 3072, meta.SizeMB, 0.001)
}

func TestMetadataCacheRoundTrip(t *testing.T) {
	a := testHubAdapter()
	ctx := context.Background()

	_, ok := a.cached(ctx, cache.KeyModel+"org/m")
	assert.False(t, ok)

	meta := &types.HostMetadata{RepoID: "org/m", Downloads: 9}
	a.store(ctx, cache.KeyModel+"org/m", cache.TTLModel, meta)

	got, ok := a.cached(ctx, cache.KeyModel+"org/m")
	require.True(t, ok)
	assert.Equal(t, "org/m", got.RepoID)
	assert.Equal(t, int64(9), got.Downloads)
}

func TestFetchModelRejectsUnparseableURL(t *testing.T) {
	a := testHubAdapter()
	_, err := a.FetchModel(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestFetchDatasetRejectsNonDatasetURL(t *testing.T) {
	a := testHubAdapter()
	_, err := a.FetchDataset(context.Background(), "https://huggingface.co/google/bert-base")
	assert.Error(t, err)
}

func TestBundleBuilderLinkCounts(t *testing.T) {
	// Link counts come from the submission, not from fetch success, so
	// they are correct even when the hub is unreachable.
	github := NewGitHubAdapter(nil, cache.NewMemoryStore(), config.EnvTokenSource{}, quietLogger(), monitoring.NewMetrics())
	b := NewBundleBuilder(testHubAdapter(), github, slog.New(slog.NewTextHandler(discard{}, nil)))

	bundle := b.Build(context.Background(), types.ArtifactURL{
		URL:      "://bad",
		Category: types.CategoryModel,
		Datasets: []string{"https://huggingface.co/datasets/glue"},
	})

	require.NotNil(t, bundle)
	assert.Nil(t, bundle.Host)
	assert.Equal(t, 0, bundle.Links.Code)
	assert.Equal(t, 1, bundle.Links.Datasets)
}
