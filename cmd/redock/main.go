// Package main implements the redock CLI: capture a docker invocation once,
// replay it by id, optionally with changed arguments merged in.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/redock-cli/redock/internal/config"
	"github.com/redock-cli/redock/internal/controller"
	"github.com/redock-cli/redock/internal/parse"
	"github.com/redock-cli/redock/internal/runner"
	"github.com/redock-cli/redock/internal/schema"
	"github.com/redock-cli/redock/internal/store"
	"github.com/redock-cli/redock/internal/store/memory"
	"github.com/redock-cli/redock/internal/store/sqlite"
)

const cliName = "redock"

var (
	// Version is set at build time
	version = "0.1.0"
)

// Exit codes, one per fatal condition class.
const (
	exitFailure           = 1
	exitUsage             = 2
	exitNotFound          = 3
	exitUpdateUnavailable = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	loader := config.NewLoader(cliName)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}

	registry, err := schema.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}

	st, err := openStore(loader, cfg, registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer st.Close()

	ctrl, err := controller.New(controller.Config{
		Registry: registry,
		Store:    st,
		Runner:   runner.NewExecRunner(),
		Program:  cfg.Program,
		Printer:  func(line string) { fmt.Fprintln(os.Stdout, line) },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}

	if err := newRootCmd(ctrl, registry, cfg).Execute(); err != nil {
		var child *childExitError
		if errors.As(err, &child) {
			// The replayed process already reported its own failure.
			return child.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// openStore selects the store backend from configuration.
func openStore(loader *config.Loader, cfg *config.Config, registry *schema.Registry) (store.Store, error) {
	switch cfg.Store {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		if err := loader.EnsureDataDir(); err != nil {
			return nil, err
		}
		return sqlite.Open(cfg.StorePath, registry.Categories())
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store)
	}
}

// exitCode maps the error taxonomy to distinguishable exit codes.
func exitCode(err error) int {
	var missing *parse.MissingRequiredError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return exitNotFound
	case errors.Is(err, controller.ErrUpdateUnavailable):
		return exitUpdateUnavailable
	case errors.Is(err, schema.ErrCategoryUnsupported), errors.As(err, &missing):
		return exitUsage
	default:
		return exitFailure
	}
}

// childExitError carries a non-zero exit code from the replayed process.
type childExitError struct {
	code int
}

func (e *childExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.code)
}
