package analysis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

type fakeMetric struct {
	name    string
	value   float64
	delay   time.Duration
	panics  bool
	running *atomic.Int32
	peak    *atomic.Int32
}

func (m *fakeMetric) Name() string { return m.name }

func (m *fakeMetric) Compute(_ context.Context, _ *types.Bundle) metrics.Result {
	if m.running != nil {
		now := m.running.Add(1)
		for {
			peak := m.peak.Load()
			if now <= peak || m.peak.CompareAndSwap(peak, now) {
				break
			}
		}
		defer m.running.Add(-1)
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panics {
		panic("intentional test panic")
	}
	return metrics.Result{Name: m.name, Value: m.value}
}

func TestEvaluateAllReturnsOneResultPerMetric(t *testing.T) {
	registry := []metrics.Metric{
		&fakeMetric{name: "a", value: 0.1},
		&fakeMetric{name: "b", value: 0.2},
		&fakeMetric{name: "c", value: 0.3},
	}

	results := EvaluateAll(context.Background(), &types.Bundle{}, registry, 2)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, "b", results[1].Name)
	assert.Equal(t, "c", results[2].Name)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.LatencyMS, int64(1), "latency is stamped for every result")
	}
}

func TestEvaluateAllIsolatesPanics(t *testing.T) {
	registry := []metrics.Metric{
		&fakeMetric{name: "good", value: 0.9},
		&fakeMetric{name: "bad", panics: true},
		&fakeMetric{name: "also_good", value: 0.4},
	}

	results := EvaluateAll(context.Background(), &types.Bundle{}, registry, 3)

	require.Len(t, results, 3)
	assert.Equal(t, 0.9, results[0].Value)

	assert.Equal(t, "bad", results[1].Name)
	assert.Equal(t, 0.0, results[1].Value)
	assert.Contains(t, results[1].Details, "error")
	assert.GreaterOrEqual(t, results[1].LatencyMS, int64(1))

	assert.Equal(t, 0.4, results[2].Value)
}

func TestEvaluateAllRespectsWorkerBound(t *testing.T) {
	var running, peak atomic.Int32

	var registry []metrics.Metric
	for _, name := range []string{"m1", "m2", "m3", "m4", "m5", "m6"} {
		registry = append(registry, &fakeMetric{
			name: name, value: 0.5, delay: 20 * time.Millisecond,
			running: &running, peak: &peak,
		})
	}

	EvaluateAll(context.Background(), &types.Bundle{}, registry, 2)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestEvaluateAllDeterministicValues(t *testing.T) {
	registry := []metrics.Metric{
		&fakeMetric{name: "a", value: 0.1},
		&fakeMetric{name: "b", value: 0.2},
		&fakeMetric{name: "c", value: 0.3},
		&fakeMetric{name: "d", value: 0.4},
	}

	serial := EvaluateAll(context.Background(), &types.Bundle{}, registry, 1)
	parallel := EvaluateAll(context.Background(), &types.Bundle{}, registry, 8)

	require.Len(t, parallel, len(serial))
	for i := range serial {
		assert.Equal(t, serial[i].Name, parallel[i].Name)
		assert.Equal(t, serial[i].Value, parallel[i].Value)
	}
}

func TestResultsByName(t *testing.T) {
	results := []metrics.Result{
		{Name: "a", Value: 0.1},
		{Name: "b", Value: 0.2},
	}
	byName := ResultsByName(results)
	assert.Len(t, byName, 2)
	assert.Equal(t, 0.2, byName["b"].Value)
}
