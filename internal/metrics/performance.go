package metrics

import (
	"context"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// PerformanceClaimsMetric scores author-reported results: benchmark
// vocabulary backed by numbers in the README, plus evaluation artifacts in
// the file listing. Self-reported, so it is lightly weighted elsewhere.
type PerformanceClaimsMetric struct{}

func NewPerformanceClaimsMetric() *PerformanceClaimsMetric { return &PerformanceClaimsMetric{} }

func (m *PerformanceClaimsMetric) Name() string { return "performance_claims" }

var (
	perfIndicators = []string{
		"accuracy", "f1", "bleu", "rouge", "perplexity",
		"benchmark", "evaluation", "performance", "results",
	}
	evalFileIndicators = []string{"eval", "benchmark", "test", "metric"}
	decimalPattern     = regexp.MustCompile(`\d+\.\d+`)
)

func (m *PerformanceClaimsMetric) Compute(_ context.Context, b *types.Bundle) Result {
	if b.Host == nil {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"reason": "no host metadata"}}
	}

	readmeScore := scoreClaims(b.Host.ReadmeText)
	filesScore := scoreEvalFiles(b.Host.Files)

	return Result{
		Name:  m.Name(),
		Value: clamp01(readmeScore*0.8 + filesScore*0.2),
		Details: map[string]any{
			"readme_score": round3(readmeScore),
			"files_score":  round3(filesScore),
		},
	}
}

func scoreClaims(readme string) float64 {
	if readme == "" {
		return 0
	}
	lower := strings.ToLower(readme)
	hasNumbers := decimalPattern.MatchString(readme)

	score := 0.0
	for _, indicator := range perfIndicators {
		if !strings.Contains(lower, indicator) {
			continue
		}
		if hasNumbers {
			score += 0.3 // numeric claims weigh more than bare mentions
		} else {
			score += 0.1
		}
	}
	return clamp01(score)
}

func scoreEvalFiles(files []string) float64 {
	if len(files) == 0 {
		return 0
	}
	for _, f := range files {
		lower := strings.ToLower(f)
		for _, indicator := range evalFileIndicators {
			if strings.Contains(lower, indicator) {
				return 1.0
			}
		}
	}
	return 0.2
}
