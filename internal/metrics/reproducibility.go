package metrics

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// minDemoCodeLen filters out trivial fenced blocks that are not a real demo.
const minDemoCodeLen = 50

// ReproducibilityMetric tries to run the demo snippet from the model card
// through the injected sandbox runner. A clean run scores 1.0, a run that
// fails on fixable setup issues 0.5, anything else 0.0.
type ReproducibilityMetric struct {
	runner SnippetRunner
}

func NewReproducibilityMetric(runner SnippetRunner) *ReproducibilityMetric {
	return &ReproducibilityMetric{runner: runner}
}

func (m *ReproducibilityMetric) Name() string { return "reproducibility" }

func (m *ReproducibilityMetric) Compute(ctx context.Context, b *types.Bundle) Result {
	demo := ExtractDemoCode(b.Readme())
	if demo == "" {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"reason": "no demo code found in README"}}
	}
	if m.runner == nil {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"error": "no sandbox runner configured"}}
	}

	outcome, output := m.runner.Run(ctx, demo)

	var score float64
	var reason string
	switch outcome {
	case RunClean:
		score, reason = 1.0, "demo code executed successfully"
	case RunMinorIssues:
		score, reason = 0.5, "demo code has minor issues but might work with debugging"
	default:
		score, reason = 0.0, "demo code failed: "+truncate(output, 200)
	}

	return Result{
		Name:  m.Name(),
		Value: score,
		Details: map[string]any{
			"reason":           reason,
			"demo_code_length": len(demo),
			"execution_output": truncate(output, 500),
		},
	}
}

// ExtractDemoCode returns the first substantial python code fence from
// markdown documentation.
func ExtractDemoCode(readme string) string {
	if readme == "" {
		return ""
	}

	var blocks []string
	var current []string
	inBlock := false
	for _, line := range strings.Split(readme, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```python"):
			inBlock = true
			current = current[:0]
		case strings.HasPrefix(trimmed, "```") && inBlock:
			inBlock = false
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
			}
		case inBlock:
			current = append(current, line)
		}
	}

	for _, block := range blocks {
		if len(block) > minDemoCodeLen {
			return block
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
