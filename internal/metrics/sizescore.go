package metrics

import (
	"context"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// deviceBudgetsMB caps the storage each deployment class can comfortably
// dedicate to one model.
var deviceBudgetsMB = map[string]float64{
	"raspberry_pi": 2000,
	"jetson_nano":  8000,
	"desktop_pc":   16000,
	"aws_server":   64000,
}

// SizeScoreMetric rates deployment suitability per device class from the
// model's storage footprint. It returns a per-device map rather than a
// scalar, so it never participates in the scalar net-score sum.
type SizeScoreMetric struct{}

func NewSizeScoreMetric() *SizeScoreMetric { return &SizeScoreMetric{} }

func (m *SizeScoreMetric) Name() string { return "size_score" }

func (m *SizeScoreMetric) Compute(_ context.Context, b *types.Bundle) Result {
	sizeMB := 0.0
	if b.Host != nil && b.Host.SizeMB > 0 {
		sizeMB = b.Host.SizeMB
	}

	scores := make(map[string]float64, len(deviceBudgetsMB))
	for device, budget := range deviceBudgetsMB {
		if sizeMB <= 0 {
			scores[device] = 0
			continue
		}
		headroom := budget / sizeMB
		if headroom > 1 {
			headroom = 1
		}
		scores[device] = round3(headroom)
	}

	return Result{
		Name:     m.Name(),
		ByDevice: scores,
		Details:  map[string]any{"size_mb": sizeMB},
	}
}
