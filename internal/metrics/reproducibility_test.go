package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

type stubRunner struct {
	outcome RunOutcome
	output  string
	ran     bool
}

func (r *stubRunner) Run(_ context.Context, _ string) (RunOutcome, string) {
	r.ran = true
	return r.outcome, r.output
}

const demoReadme = "# Model\n```python\nfrom transformers import pipeline\npipe = pipeline('fill-mask')\nprint(pipe('Hello [MASK]'))\n```\n"

func TestExtractDemoCode(t *testing.T) {
	tests := []struct {
		name     string
		readme   string
		expected string
	}{
		{
			name:     "empty readme",
			readme:   "",
			expected: "",
		},
		{
			name:     "no code fence",
			readme:   "just prose",
			expected: "",
		},
		{
			name:     "short fence is skipped",
			readme:   "```python\nx = 1\n```",
			expected: "",
		},
		{
			name:     "substantial python fence is returned",
			readme:   demoReadme,
			expected: "from transformers import pipeline\npipe = pipeline('fill-mask')\nprint(pipe('Hello [MASK]'))",
		},
		{
			name:     "non-python fences are ignored",
			readme:   "```bash\npip install something-long-enough-to-pass-the-filter\n```",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDemoCode(tt.readme))
		})
	}
}

func TestReproducibilityMetric(t *testing.T) {
	bundle := &types.Bundle{Host: &types.HostMetadata{ReadmeText: demoReadme}}

	tests := []struct {
		name     string
		outcome  RunOutcome
		expected float64
	}{
		{name: "clean run", outcome: RunClean, expected: 1.0},
		{name: "environment issues", outcome: RunMinorIssues, expected: 0.5},
		{name: "hard failure", outcome: RunFailed, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{outcome: tt.outcome}
			m := NewReproducibilityMetric(runner)
			res := m.Compute(context.Background(), bundle)

			assert.Equal(t, tt.expected, res.Value)
			assert.True(t, runner.ran)
		})
	}

	t.Run("no demo code never invokes the runner", func(t *testing.T) {
		runner := &stubRunner{outcome: RunClean}
		m := NewReproducibilityMetric(runner)
		res := m.Compute(context.Background(), &types.Bundle{})

		assert.Equal(t, 0.0, res.Value)
		assert.False(t, runner.ran)
	})

	t.Run("failure output is truncated in details", func(t *testing.T) {
		runner := &stubRunner{outcome: RunFailed, output: strings.Repeat("e", 2000)}
		m := NewReproducibilityMetric(runner)
		res := m.Compute(context.Background(), bundle)

		out, _ := res.Details["execution_output"].(string)
		assert.LessOrEqual(t, len(out), 500)
	})
}
