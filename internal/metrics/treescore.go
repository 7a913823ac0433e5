package metrics

import (
	"context"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// parentTriggers are the phrases that introduce a parent-model reference in
// free-text documentation. Matching is case-insensitive.
var parentTriggers = []string{
	"base model:",
	"fine-tuned from",
	"trained from",
	"parent model:",
	"derived from",
}

// repoIDPattern matches an "org/name" shaped identifier.
var repoIDPattern = regexp.MustCompile(`[\w-]+/[\w-]+`)

// maxParentsPerTrigger bounds how many candidates one trigger phrase yields.
const maxParentsPerTrigger = 3

// TreeScoreMetric averages the already-computed net scores of the model's
// lineage parents. Traversal is one hop: parents only, never grandparents.
// A per-call visited set, seeded with the current artifact's own id, keeps
// self-references and repeated candidates from being counted twice.
type TreeScoreMetric struct {
	index ArtifactIndex
}

func NewTreeScoreMetric(index ArtifactIndex) *TreeScoreMetric {
	return &TreeScoreMetric{index: index}
}

func (m *TreeScoreMetric) Name() string { return "tree_score" }

func (m *TreeScoreMetric) Compute(ctx context.Context, b *types.Bundle) Result {
	parents := extractParentModels(b.Readme())
	if len(parents) == 0 {
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"reason": "no parent models found"}}
	}

	visited := map[string]bool{}
	if b.ArtifactID != "" {
		visited[b.ArtifactID] = true
	}

	var parentScores []float64
	for _, parentID := range parents {
		if visited[parentID] {
			continue
		}
		visited[parentID] = true

		score, ok := m.lookupParentScore(ctx, parentID)
		if ok {
			parentScores = append(parentScores, score)
		}
	}

	if len(parentScores) == 0 {
		// Distinct from "no parent models found": candidates existed but
		// none resolved to a scored artifact.
		return Result{Name: m.Name(), Value: 0, Details: map[string]any{"reason": "could not resolve parent scores"}}
	}

	sum := 0.0
	for _, s := range parentScores {
		sum += s
	}

	return Result{
		Name:  m.Name(),
		Value: round3(clamp01(sum / float64(len(parentScores)))),
		Details: map[string]any{
			"num_parents":       len(parents),
			"evaluated_parents": len(parentScores),
			"parent_scores":     parentScores,
		},
	}
}

// lookupParentScore resolves one candidate through the artifact index.
// Unresolved candidates are dropped by the caller, never scored as zero.
func (m *TreeScoreMetric) lookupParentScore(ctx context.Context, parentID string) (float64, bool) {
	if m.index == nil {
		return 0, false
	}
	matches, err := m.index.FindByName(ctx, "^"+regexp.QuoteMeta(parentID)+"$")
	if err != nil || len(matches) == 0 {
		return 0, false
	}
	// Matches come back ordered by net score; take the best.
	return matches[0].NetScore, true
}

// extractParentModels pulls candidate parent identifiers from documentation
// text: an org/name token within 200 characters after a trigger phrase.
func extractParentModels(readme string) []string {
	if readme == "" {
		return nil
	}
	lower := strings.ToLower(readme)

	seen := map[string]bool{}
	var parents []string
	for _, trigger := range parentTriggers {
		idx := strings.Index(lower, trigger)
		if idx < 0 {
			continue
		}
		end := idx + 200
		if end > len(readme) {
			end = len(readme)
		}
		snippet := readme[idx:end]

		matches := repoIDPattern.FindAllString(snippet, maxParentsPerTrigger)
		for _, candidate := range matches {
			if !seen[candidate] {
				seen[candidate] = true
				parents = append(parents, candidate)
			}
		}
		break
	}
	return parents
}
