package runner

import (
	"bytes"
	"context"
	"runtime"
	"testing"
)

func TestRunCapturesExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	r := NewExecRunner()
	var stdout bytes.Buffer
	r.Stdout = &stdout

	code, err := r.Run(context.Background(), "sh", []string{"-c", "echo hello; exit 0"})
	if err != nil {
		t.Fatalf("Failed to run: %v", err)
	}
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if stdout.String() != "hello\n" {
		t.Errorf("Expected captured stdout, got %q", stdout.String())
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	r := NewExecRunner()
	code, err := r.Run(context.Background(), "sh", []string{"-c", "exit 3"})
	if err != nil {
		t.Fatalf("Expected no error for non-zero exit, got %v", err)
	}
	if code != 3 {
		t.Errorf("Expected exit code 3, got %d", code)
	}
}

func TestRunMissingProgram(t *testing.T) {
	r := NewExecRunner()
	code, err := r.Run(context.Background(), "redock-no-such-program", nil)
	if err == nil {
		t.Fatal("Expected an error for a missing program")
	}
	if code != -1 {
		t.Errorf("Expected exit code -1, got %d", code)
	}
}
