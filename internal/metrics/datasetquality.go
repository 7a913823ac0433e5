package metrics

import (
	"context"
	"math"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// DatasetFetcher resolves hub dataset metadata for a dataset URL. The
// dataset-quality metric is the only consumer; it is injected so the metric
// can be tested without network access.
type DatasetFetcher interface {
	FetchDataset(ctx context.Context, datasetURL string) (*types.HostMetadata, error)
}

// DatasetQualityMetric scores the documentation, popularity and licensing
// of the dataset the model was trained on.
type DatasetQualityMetric struct {
	fetcher DatasetFetcher
}

func NewDatasetQualityMetric(fetcher DatasetFetcher) *DatasetQualityMetric {
	return &DatasetQualityMetric{fetcher: fetcher}
}

func (m *DatasetQualityMetric) Name() string { return "dataset_quality" }

func (m *DatasetQualityMetric) Compute(ctx context.Context, b *types.Bundle) Result {
	if b.Host == nil || b.Host.DatasetURL == "" {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": "missing dataset URL"}}
	}
	if m.fetcher == nil {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": "no dataset fetcher configured"}}
	}

	ds, err := m.fetcher.FetchDataset(ctx, b.Host.DatasetURL)
	if err != nil || ds == nil {
		detail := "dataset metadata unavailable"
		if err != nil {
			detail = err.Error()
		}
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": detail}}
	}

	downloads := ds.Downloads
	likes := ds.Likes
	numFiles := ds.NumFiles
	sizeMB := ds.SizeMB

	// Fallback proxies for sparsely populated dataset records.
	if downloads == 0 && likes > 0 {
		downloads = likes * 50
	}
	if numFiles == 0 {
		numFiles = len(ds.Tags)
	}
	if sizeMB == 0 {
		sizeMB = float64(numFiles) * 10
	}

	popularity := 0.0
	if downloads > 0 {
		popularity = minf(1, math.Pow(float64(downloads)/10000.0, 0.25))
	}

	likeScore := 0.0
	if downloads > 0 {
		likeScore = minf(1, float64(likes)/float64(downloads)*5)
	}

	fileScore := minf(1, float64(numFiles)/10.0)

	var sizeScore float64
	switch {
	case sizeMB < 1:
		sizeScore = 0
	case sizeMB > 5000:
		sizeScore = 0.2 // oversized datasets are penalized, not failed
	default:
		sizeScore = minf(1, sizeMB/500.0)
	}

	readmeScore := minf(1, float64(len(ds.ReadmeText))/300.0)

	licenseScore := 0.0
	if ds.License != "" && ds.License != "unknown" {
		licenseScore = 1.0
	}

	total := 0.25*popularity + 0.2*likeScore + 0.15*fileScore +
		0.15*sizeScore + 0.15*readmeScore + 0.1*licenseScore

	return Result{
		Name:  m.Name(),
		Value: clamp01(total),
		Details: map[string]any{
			"popularity":    round3(popularity),
			"like_score":    round3(likeScore),
			"file_score":    round3(fileScore),
			"size_score":    round3(sizeScore),
			"readme_score":  round3(readmeScore),
			"license_score": round3(licenseScore),
			"downloads":     downloads,
			"likes":         likes,
			"num_files":     numFiles,
			"size_mb":       sizeMB,
			"license":       ds.License,
		},
	}
}
