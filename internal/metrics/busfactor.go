package metrics

import (
	"context"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// BusFactorMetric measures knowledge distribution in the linked code
// repository: the recent committer count scaled linearly, ten or more
// active committers scoring 1.0.
type BusFactorMetric struct{}

func NewBusFactorMetric() *BusFactorMetric { return &BusFactorMetric{} }

func (m *BusFactorMetric) Name() string { return "bus_factor" }

func (m *BusFactorMetric) Compute(_ context.Context, b *types.Bundle) Result {
	committers := 0
	if b.Repo != nil {
		committers = b.Repo.RecentCommitters
	}

	return Result{
		Name:    m.Name(),
		Value:   clamp01(float64(committers) / 10.0),
		Details: map[string]any{"recent_committers": committers},
	}
}
