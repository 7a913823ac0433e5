package metrics

import (
	"context"
	"regexp"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// DatasetAndCodeMetric checks whether the model documents its training data
// and ships runnable code. Two binary sub-signals, 0.5 each.
type DatasetAndCodeMetric struct{}

func NewDatasetAndCodeMetric() *DatasetAndCodeMetric { return &DatasetAndCodeMetric{} }

func (m *DatasetAndCodeMetric) Name() string { return "dataset_and_code_score" }

var (
	datasetKeywords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bdatasets?\b`),
		regexp.MustCompile(`(?i)\btraining data\b`),
		regexp.MustCompile(`(?i)\btrain(?:ed)? on\b`),
		regexp.MustCompile(`(?i)\bevaluation data\b`),
		regexp.MustCompile(`(?i)\bbenchmarks?\b`),
		regexp.MustCompile(`(?i)\bdata source\b`),
		regexp.MustCompile(`(?i)\bcorpus\b`),
	}
	codeKeywords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bexamples?\b`),
		regexp.MustCompile(`(?i)\busage\b`),
		regexp.MustCompile(`(?i)\bquickstart\b`),
		regexp.MustCompile(`(?i)\bhow to run\b`),
		regexp.MustCompile(`(?i)\brun the model\b`),
		regexp.MustCompile(`(?i)\btrain(?:ing)? script\b`),
		regexp.MustCompile(`(?i)\beval(?:uation)? script\b`),
		regexp.MustCompile(`(?i)\bnotebook\b`),
		regexp.MustCompile(`(?i)\bcolab\b`),
	}
)

func (m *DatasetAndCodeMetric) Compute(_ context.Context, b *types.Bundle) Result {
	readme := b.Readme()

	hasDatasetURL := b.Links.Datasets > 0
	mentionsDataset := containsAny(readme, datasetKeywords)
	hasRepoURL := b.Links.Code > 0
	mentionsCode := containsAny(readme, codeKeywords)

	datasetPresent := hasDatasetURL || mentionsDataset
	codePresent := hasRepoURL || mentionsCode

	score := 0.0
	if datasetPresent {
		score += 0.5
	}
	if codePresent {
		score += 0.5
	}

	return Result{
		Name:  m.Name(),
		Value: score,
		Details: map[string]any{
			"dataset_present": datasetPresent,
			"dataset_signals": map[string]any{"has_dataset_url": hasDatasetURL, "mentions_dataset": mentionsDataset},
			"code_present":    codePresent,
			"code_signals":    map[string]any{"has_repo_url": hasRepoURL, "mentions_code": mentionsCode},
		},
	}
}

func containsAny(text string, patterns []*regexp.Regexp) bool {
	if text == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
