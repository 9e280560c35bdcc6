// Package runner executes the reconstructed command line as an external
// process.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner runs one token sequence as an external process and returns its
// exit code.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (int, error)
}

// ExecRunner runs commands through os/exec with the process's standard
// streams attached, so interactive invocations behave like a direct call.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates a runner wired to the current process's streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the command and blocks until it exits. A non-zero exit from
// the child is not an error; it is reported through the exit code.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return 0, nil
}

var _ Runner = (*ExecRunner)(nil)
