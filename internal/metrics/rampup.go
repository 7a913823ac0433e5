package metrics

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// RampUpTimeMetric estimates how quickly a newcomer can get the model
// running, from README quality, model-card completeness and usage signals.
type RampUpTimeMetric struct{}

func NewRampUpTimeMetric() *RampUpTimeMetric { return &RampUpTimeMetric{} }

func (m *RampUpTimeMetric) Name() string { return "ramp_up_time" }

func (m *RampUpTimeMetric) Compute(_ context.Context, b *types.Bundle) Result {
	if b.Host == nil || b.Host.RepoURL == "" {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": "missing repo_url"}}
	}

	readmeScore := evalReadme(b.Host.ReadmeText)
	cardScore := evalModelCard(b.Host)
	usageScore := evalUsage(b.Host)

	score := readmeScore*0.5 + cardScore*0.2 + usageScore*0.3

	return Result{
		Name:  m.Name(),
		Value: clamp01(score),
		Details: map[string]any{
			"readme_score":     round3(readmeScore),
			"model_card_score": round3(cardScore),
			"usage_score":      round3(usageScore),
		},
	}
}

func evalReadme(readme string) float64 {
	if readme == "" {
		return 0
	}
	lower := strings.ToLower(readme)

	score := 0.0
	if strings.Contains(lower, "usage") || strings.Contains(lower, "how to use") {
		score += 0.3
	}
	if strings.Contains(lower, "example") || strings.Contains(readme, "```python") {
		score += 0.3
	}
	if strings.Contains(lower, "install") {
		score += 0.2
	}
	if len(readme) > 500 {
		score += 0.2
	}
	return clamp01(score)
}

func evalModelCard(h *types.HostMetadata) float64 {
	score := 0.0
	if h.Description != "" {
		score += 0.7
	}
	if h.ReadmeText != "" {
		score += 0.2
	}
	if len(h.Tags) > 0 {
		score += 0.1
	}
	return clamp01(score)
}

func evalUsage(h *types.HostMetadata) float64 {
	downloadScore := minf(1, float64(h.Downloads)/10000)
	likeScore := minf(1, float64(h.Likes)/100)
	return (downloadScore + likeScore) / 2
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
