// Package sandbox executes untrusted README demo snippets in a separate
// interpreter process with a hard wall-clock ceiling. The runner never
// reports an error to the caller: an unrunnable snippet is a scoring
// signal, not a failure.
package sandbox

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
)

const (
	defaultTimeout = 120 * time.Second
	maxOutputBytes = 64 * 1024
)

// Environment problems a correct snippet cannot be blamed for: missing
// packages, missing credentials, missing local files.
var environmentIndicators = []string{
	"no module named",
	"importerror",
	"modulenotfounderror",
	"authentication",
	"credentials",
	"token",
	"no such file",
	"permission denied",
	"connection",
}

// Runner executes Python snippets via a subprocess.
type Runner struct {
	interpreter string
	timeout     time.Duration
	logger      *slog.Logger
}

// NewRunner builds a runner using the given interpreter ("python3" when
// empty).
func NewRunner(interpreter string, timeout time.Duration, logger *slog.Logger) *Runner {
	if interpreter == "" {
		interpreter = "python3"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{interpreter: interpreter, timeout: timeout, logger: logger}
}

// Run writes the snippet to a scratch directory and executes it. The
// outcome classifies the run: clean exit, failure caused by the execution
// environment, or a genuine failure of the snippet itself.
func (r *Runner) Run(ctx context.Context, source string) (metrics.RunOutcome, string) {
	dir, err := os.MkdirTemp("", "snippet-*")
	if err != nil {
		r.logger.Warn("Sandbox scratch dir unavailable", "error", err)
		return metrics.RunFailed, "sandbox unavailable: " + err.Error()
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, "demo.py")
	if err := os.WriteFile(script, []byte(source), 0600); err != nil {
		return metrics.RunFailed, "sandbox write failed: " + err.Error()
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.interpreter, script)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err = cmd.Run()
	text := truncate(output.String(), maxOutputBytes)

	if err == nil {
		return metrics.RunClean, text
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return metrics.RunFailed, "execution timed out after " + r.timeout.String()
	}
	if isEnvironmentFailure(text) {
		return metrics.RunMinorIssues, text
	}
	return metrics.RunFailed, text
}

// isEnvironmentFailure reports whether the output points at the execution
// environment rather than the snippet.
func isEnvironmentFailure(output string) bool {
	lower := strings.ToLower(output)
	for _, indicator := range environmentIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
