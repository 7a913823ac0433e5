package metrics

import (
	"context"
	"math"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// NotApplicable is the sentinel value a metric may report when it cannot
// apply to the artifact at all (e.g. no linked code repository). It is
// distinct from a genuine low score of 0 and is excluded from aggregation.
const NotApplicable float64 = -1.0

// Result is the standard envelope returned by every metric.
//
// Value is a normalized float in [0,1] (or NotApplicable). Metrics that
// score per deployment target set ByDevice instead; such results carry no
// meaningful scalar and are excluded from the net-score sum.
type Result struct {
	Name      string             `json:"name"`
	Value     float64            `json:"value"`
	ByDevice  map[string]float64 `json:"by_device,omitempty"`
	Details   map[string]any     `json:"details,omitempty"`
	LatencyMS int64              `json:"latency_ms"`
}

// Scalar reports the scalar value and whether it should participate in
// weighted aggregation.
func (r Result) Scalar() (float64, bool) {
	if r.ByDevice != nil || r.Value < 0 {
		return 0, false
	}
	return r.Value, true
}

// Metric is a named unit of computation over one artifact's metadata.
//
// Name must be stable and unique within a registry. Compute must not
// mutate the bundle and must not fail on absent data; expected absence
// degrades to a zero score with an explanatory detail. Only programming
// errors may panic, and the evaluator contains those per unit.
type Metric interface {
	Name() string
	Compute(ctx context.Context, b *types.Bundle) Result
}

// ArtifactIndex looks up already-scored artifacts by name pattern.
// Implementations must be safe for concurrent readers; the lineage metric
// calls it from inside the evaluator's worker pool.
type ArtifactIndex interface {
	FindByName(ctx context.Context, pattern string) ([]types.ArtifactScore, error)
}

// TokenSource supplies access tokens for secondary services ("github", ...).
// An empty string means no credential is configured.
type TokenSource interface {
	Token(service string) string
}

// RunOutcome classifies a sandboxed snippet execution.
type RunOutcome int

const (
	RunFailed RunOutcome = iota
	RunMinorIssues
	RunClean
)

// SnippetRunner executes an externally supplied code snippet inside a
// bounded sandbox. Implementations must enforce their own wall-clock
// ceiling and must never panic into the caller.
type SnippetRunner interface {
	Run(ctx context.Context, source string) (RunOutcome, string)
}

// clamp01 clamps a score into [0,1]; NaN maps to 0.
func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// round3 rounds to three decimal places for detail values.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
