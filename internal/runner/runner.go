// Package runner executes collaborator commands. Actions depend on the
// Runner interface so tests can substitute a mock; the exec-backed
// implementation honours context deadlines.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Result holds the outcome of one command invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes external commands.
type Runner interface {
	// Run executes an argv-form command.
	Run(ctx context.Context, name string, args ...string) (Result, error)
	// Shell executes a command line via sh -c in dir. Used for the
	// build and migrate commands, which are genuinely shell lines.
	Shell(ctx context.Context, dir, command string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates the exec-backed Runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return run(ctx, exec.CommandContext(ctx, name, args...))
}

func (e *ExecRunner) Shell(ctx context.Context, dir, command string) (Result, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	return run(ctx, cmd)
}

func run(ctx context.Context, cmd *exec.Cmd) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	// A deadline or cancellation surfaces as an error so the engine can
	// classify it, regardless of how the killed process exited.
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// CommandLine renders an argv invocation for logs and mock keys.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
