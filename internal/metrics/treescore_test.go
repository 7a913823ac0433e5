package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// stubIndex resolves a fixed set of names to scores.
type stubIndex struct {
	scores map[string]float64
}

func (s *stubIndex) FindByName(_ context.Context, pattern string) ([]types.ArtifactScore, error) {
	// Patterns arrive as ^quoted-id$; strip the anchors and unquote the
	// separator to recover the candidate id.
	id := pattern
	id = trimAnchor(id)
	if score, ok := s.scores[id]; ok {
		return []types.ArtifactScore{{ID: id, Name: id, NetScore: score}}, nil
	}
	return nil, nil
}

func trimAnchor(pattern string) string {
	out := make([]byte, 0, len(pattern))
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '^', '$', '\\':
			continue
		default:
			out = append(out, pattern[i])
		}
	}
	return string(out)
}

func TestExtractParentModels(t *testing.T) {
	tests := []struct {
		name     string
		readme   string
		expected []string
	}{
		{
			name:     "no triggers",
			readme:   "just a model card",
			expected: nil,
		},
		{
			name:     "base model trigger",
			readme:   "This model is great.\nBase model: google/bert-base over here",
			expected: []string{"google/bert-base"},
		},
		{
			name:     "fine-tuned trigger case insensitive",
			readme:   "Fine-Tuned From openai/whisper-large for speech",
			expected: []string{"openai/whisper-large"},
		},
		{
			name:     "empty readme",
			readme:   "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractParentModels(tt.readme))
		})
	}
}

func TestTreeScoreMetric(t *testing.T) {
	index := &stubIndex{scores: map[string]float64{
		"google/bert-base":     0.8,
		"openai/whisper-large": 0.6,
	}}
	m := NewTreeScoreMetric(index)

	t.Run("no parents found", func(t *testing.T) {
		b := &types.Bundle{Host: &types.HostMetadata{ReadmeText: "a plain model card"}}
		res := m.Compute(context.Background(), b)
		assert.Equal(t, 0.0, res.Value)
		assert.Equal(t, "no parent models found", res.Details["reason"])
	})

	t.Run("parents resolve to average", func(t *testing.T) {
		b := &types.Bundle{
			ArtifactID: "me/derived",
			Host:       &types.HostMetadata{ReadmeText: "base model: google/bert-base and openai/whisper-large"},
		}
		res := m.Compute(context.Background(), b)
		assert.InDelta(t, 0.7, res.Value, 1e-9)
		assert.Equal(t, 2, res.Details["evaluated_parents"])
	})

	t.Run("self reference is skipped", func(t *testing.T) {
		b := &types.Bundle{
			ArtifactID: "google/bert-base",
			Host:       &types.HostMetadata{ReadmeText: "base model: google/bert-base"},
		}
		res := m.Compute(context.Background(), b)
		assert.Equal(t, 0.0, res.Value)
		assert.Equal(t, "could not resolve parent scores", res.Details["reason"])
	})

	t.Run("unresolved parents are dropped not zeroed", func(t *testing.T) {
		b := &types.Bundle{
			ArtifactID: "me/derived",
			Host:       &types.HostMetadata{ReadmeText: "base model: google/bert-base and nobody/unknown-model"},
		}
		res := m.Compute(context.Background(), b)
		require.Equal(t, 1, res.Details["evaluated_parents"])
		assert.InDelta(t, 0.8, res.Value, 1e-9)
	})

	t.Run("nil index resolves nothing", func(t *testing.T) {
		m := NewTreeScoreMetric(nil)
		b := &types.Bundle{Host: &types.HostMetadata{ReadmeText: "base model: google/bert-base"}}
		res := m.Compute(context.Background(), b)
		assert.Equal(t, 0.0, res.Value)
		assert.Equal(t, "could not resolve parent scores", res.Details["reason"])
	})
}
