package metrics

import (
	"context"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// CodeQualityMetric scores maintainability evidence. The current signal is
// binary: a linked code repository counts as evidence of a maintained
// codebase, its absence scores zero.
//
// TODO: weigh README length and the presence of config.json once hub file
// listings are reliably populated in the bundle.
type CodeQualityMetric struct{}

func NewCodeQualityMetric() *CodeQualityMetric { return &CodeQualityMetric{} }

func (m *CodeQualityMetric) Name() string { return "code_quality" }

func (m *CodeQualityMetric) Compute(_ context.Context, b *types.Bundle) Result {
	if b.Links.Code > 0 {
		return Result{Name: m.Name(), Value: 1.0, Details: map[string]any{"linked_code_repos": b.Links.Code}}
	}
	return Result{Name: m.Name(), Value: 0, Details: map[string]any{"reason": "no linked code repository"}}
}
