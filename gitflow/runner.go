// Package gitflow implements the git-level core of the git-flow-mcp server:
// repository state inspection, conflict-marker parsing, heuristic conflict
// resolution, and the branch synchronization state machine. All mutating git
// operations are delegated to the git CLI through the Runner port; this
// package only interprets the results.
package gitflow

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Result captures the outcome of one external command.
// ErrorText is empty when Success is true.
type Result struct {
	Stdout    string
	Success   bool
	ErrorText string
}

// Output returns stdout with surrounding whitespace trimmed.
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// Runner abstracts command execution for testability. Implementations never
// panic or return a Go error: a nonzero exit is reported through Result.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs commands with os/exec in a fixed working directory.
// Arguments are always passed as an array, never interpolated into a shell
// string.
type ExecRunner struct {
	Dir string
}

// NewExecRunner creates a runner rooted at dir.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir}
}

// Run executes the command and captures stdout and stderr separately.
// On failure ErrorText carries the captured stderr, falling back to the exec
// error message when stderr is empty.
func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Success: err == nil}
	if err != nil {
		res.ErrorText = strings.TrimSpace(stderr.String())
		if res.ErrorText == "" {
			res.ErrorText = err.Error()
		}
	}
	return res
}
