package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// DefaultMaxWorkers bounds the pool when the caller does not.
const DefaultMaxWorkers = 8

// EvaluateAll runs every metric in the registry against one bundle using a
// worker pool bounded by maxWorkers, and returns exactly one result per
// metric, in registry order.
//
// Guarantees:
//   - a panicking metric never fails the batch; its slot is filled with a
//     zero-value result carrying the error detail
//   - each result's latency is the wall clock of that metric's Compute
//     call, measured inside the worker
//   - the call blocks until every submitted metric has finished; any
//     deadline discipline is the caller's (via ctx) or the metric's own
func EvaluateAll(ctx context.Context, bundle *types.Bundle, registry []metrics.Metric, maxWorkers int) []metrics.Result {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	results := make([]metrics.Result, len(registry))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, m := range registry {
		g.Go(func() error {
			results[i] = computeOne(gctx, m, bundle)
			return nil
		})
	}

	// Workers never return errors; failures are contained per slot.
	_ = g.Wait()

	return results
}

// computeOne times a single metric and contains any panic it raises.
func computeOne(ctx context.Context, m metrics.Metric, bundle *types.Bundle) (res metrics.Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("metric panicked", "metric", m.Name(), "panic", fmt.Sprint(r))
			res = metrics.Result{
				Name:    m.Name(),
				Value:   0,
				Details: map[string]any{"error": fmt.Sprintf("metric panicked: %v", r)},
			}
		}
		res.LatencyMS = latencyMS(start)
	}()

	res = m.Compute(ctx, bundle)
	// The result's name is authoritative for consumers; keep it honest
	// even when an implementation forgets to set it.
	if res.Name == "" {
		res.Name = m.Name()
	}
	return res
}

// latencyMS reports elapsed wall clock in whole milliseconds, at least 1.
func latencyMS(start time.Time) int64 {
	ms := time.Since(start).Milliseconds()
	if ms < 1 {
		return 1
	}
	return ms
}

// ResultsByName indexes a result slice by metric name. Output order from
// the evaluator is a convenience, not a contract; consumers look up by
// name.
func ResultsByName(results []metrics.Result) map[string]metrics.Result {
	byName := make(map[string]metrics.Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	return byName
}
