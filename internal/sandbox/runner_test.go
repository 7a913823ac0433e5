package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEnvironmentFailure(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected bool
	}{
		{name: "missing module", output: "ModuleNotFoundError: No module named 'transformers'", expected: true},
		{name: "import error", output: "ImportError: cannot import name 'x'", expected: true},
		{name: "missing credentials", output: "requires authentication to download", expected: true},
		{name: "missing file", output: "FileNotFoundError: No such file or directory: 'weights.bin'", expected: true},
		{name: "syntax error is the snippet's fault", output: "SyntaxError: invalid syntax", expected: false},
		{name: "name error is the snippet's fault", output: "NameError: name 'pipline' is not defined", expected: false},
		{name: "empty output", output: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isEnvironmentFailure(tt.output))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "", truncate("", 5))
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner("", 0, nil)
	assert.Equal(t, "python3", r.interpreter)
	assert.Equal(t, defaultTimeout, r.timeout)
	assert.NotNil(t, r.logger)
}
