package metrics

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// LicenseMetric scores legal clarity from the hub's declared license field.
// Permissive licenses score 1.0, known-problematic ones 0.4, anything
// missing or unrecognized 0.0.
type LicenseMetric struct{}

func NewLicenseMetric() *LicenseMetric { return &LicenseMetric{} }

func (m *LicenseMetric) Name() string { return "license" }

var (
	allowedLicenses     = map[string]bool{"mit": true, "apache-2.0": true, "bsd": true, "lgpl-2.1": true, "cc0-1.0": true}
	problematicLicenses = map[string]bool{"gpl": true, "agpl": true, "cc-by-nc": true, "proprietary": true}
)

func (m *LicenseMetric) Compute(_ context.Context, b *types.Bundle) Result {
	if b.Host == nil {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"reason": "no host metadata"}}
	}

	raw := b.Host.License
	norm := normalizeLicense(raw)

	score := 0.0
	switch {
	case allowedLicenses[norm]:
		score = 1.0
	case problematicLicenses[norm]:
		score = 0.4
	}

	return Result{
		Name:    m.Name(),
		Value:   score,
		Details: map[string]any{"license": raw, "normalized": norm},
	}
}

// normalizeLicense folds the free-form license string onto a small set of
// canonical identifiers. Order matters: lgpl before gpl, cc- before cc.
func normalizeLicense(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "mit"):
		return "mit"
	case strings.Contains(s, "apache"):
		return "apache-2.0"
	case strings.Contains(s, "bsd"):
		return "bsd"
	case strings.Contains(s, "lgpl") && strings.Contains(s, "2.1"):
		return "lgpl-2.1"
	case strings.Contains(s, "agpl"):
		return "agpl"
	case strings.Contains(s, "gpl"):
		return "gpl"
	case strings.Contains(s, "cc-"):
		return "cc-by-nc"
	case strings.Contains(s, "cc"):
		return "cc0-1.0"
	case strings.Contains(s, "proprietary"):
		return "proprietary"
	}
	return strings.TrimSpace(s)
}
