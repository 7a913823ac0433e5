package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

type stubFetcher struct {
	meta *types.HostMetadata
	err  error
}

func (f *stubFetcher) FetchDataset(_ context.Context, _ string) (*types.HostMetadata, error) {
	return f.meta, f.err
}

func TestDatasetQualityMetric(t *testing.T) {
	bundleWithDataset := func() *types.Bundle {
		return &types.Bundle{Host: &types.HostMetadata{
			RepoURL:    "https://huggingface.co/org/model",
			DatasetURL: "https://huggingface.co/datasets/org/data",
		}}
	}

	t.Run("no dataset url scores zero", func(t *testing.T) {
		m := NewDatasetQualityMetric(&stubFetcher{})
		res := m.Compute(context.Background(), &types.Bundle{Host: &types.HostMetadata{}})
		assert.Equal(t, 0.0, res.Value)
		assert.Contains(t, res.Details, "error")
	})

	t.Run("fetch failure scores zero", func(t *testing.T) {
		m := NewDatasetQualityMetric(&stubFetcher{err: errors.New("boom")})
		res := m.Compute(context.Background(), bundleWithDataset())
		assert.Equal(t, 0.0, res.Value)
	})

	t.Run("nil fetcher scores zero", func(t *testing.T) {
		m := NewDatasetQualityMetric(nil)
		res := m.Compute(context.Background(), bundleWithDataset())
		assert.Equal(t, 0.0, res.Value)
	})

	t.Run("well populated dataset scores high", func(t *testing.T) {
		m := NewDatasetQualityMetric(&stubFetcher{meta: &types.HostMetadata{
			Downloads:  500000,
			Likes:      2000,
			NumFiles:   25,
			SizeMB:     800,
			ReadmeText: string(make([]byte, 400)),
			License:    "apache-2.0",
		}})
		res := m.Compute(context.Background(), bundleWithDataset())
		assert.Greater(t, res.Value, 0.6)
		assert.LessOrEqual(t, res.Value, 1.0)
	})

	t.Run("sparse record uses fallback proxies", func(t *testing.T) {
		m := NewDatasetQualityMetric(&stubFetcher{meta: &types.HostMetadata{
			Likes: 100,
			Tags:  []string{"nlp", "english", "text"},
		}})
		res := m.Compute(context.Background(), bundleWithDataset())

		// likes*50 stands in for downloads, tag count for files.
		assert.Equal(t, int64(5000), res.Details["downloads"])
		assert.Equal(t, 3, res.Details["num_files"])
		assert.Greater(t, res.Value, 0.0)
	})
}
