package analysis

import (
	"context"

	"github.com/ZanzyTHEbar/model-o-meter/internal/adapters"
	"github.com/ZanzyTHEbar/model-o-meter/internal/encoding"
	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
	"github.com/ZanzyTHEbar/model-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-o-meter/internal/storage"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// Scorer runs the full pipeline for one artifact: fetch metadata, evaluate
// every metric, aggregate the net score, persist the record.
type Scorer struct {
	builder    *adapters.BundleBuilder
	registry   []metrics.Metric
	weights    map[string]float64
	store      *storage.Store
	maxWorkers int
	logger     *monitoring.Logger
	counter    *monitoring.Metrics
}

// NewScorer wires the pipeline. store may be nil for one-shot CLI runs
// that only print NDJSON; scored records are then not persisted and
// lineage lookups see an empty index.
func NewScorer(builder *adapters.BundleBuilder, registry []metrics.Metric, weights map[string]float64, store *storage.Store, maxWorkers int, logger *monitoring.Logger, counter *monitoring.Metrics) (*Scorer, error) {
	if err := metrics.ValidateRegistry(registry); err != nil {
		return nil, err
	}
	return &Scorer{
		builder:    builder,
		registry:   registry,
		weights:    weights,
		store:      store,
		maxWorkers: maxWorkers,
		logger:     logger,
		counter:    counter,
	}, nil
}

// Score produces the output record for one submitted model URL. It never
// fails on missing metadata; only persistence errors surface.
func (s *Scorer) Score(ctx context.Context, artifact types.ArtifactURL) (encoding.Record, error) {
	bundle := s.builder.Build(ctx, artifact)

	results := EvaluateAll(ctx, bundle, s.registry, s.maxWorkers)
	netScore, netLatency := Aggregate(results, s.weights)

	s.counter.IncrementEvaluations()
	for _, r := range results {
		if _, ok := r.Details["error"]; ok {
			s.counter.IncrementMetricFailures()
		}
	}

	name := types.ShortName(bundle.ArtifactID)
	record := encoding.Record{
		Name:            name,
		Category:        artifact.Category,
		Results:         results,
		NetScore:        netScore,
		NetScoreLatency: netLatency,
	}

	s.logger.EvaluationLogger(bundle.ArtifactID, len(results), netScore, netLatency)

	if s.store != nil {
		if _, err := s.store.SaveRecord(ctx, artifact.URL, record); err != nil {
			return record, err
		}
	}

	return record, nil
}

// ScoreBatch scores artifacts in submission order. Lineage lookups inside
// a batch see earlier entries because each record is persisted before the
// next artifact starts.
func (s *Scorer) ScoreBatch(ctx context.Context, artifacts []types.ArtifactURL) ([]encoding.Record, error) {
	records := make([]encoding.Record, 0, len(artifacts))
	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		record, err := s.Score(ctx, artifact)
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}
