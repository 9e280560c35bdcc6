// Package controller orchestrates the capture, replay, update-replay,
// listing, and deletion of commands by composing the schema registry, the
// argument mapper, the merge engine, the store, and the process runner.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redock-cli/redock/internal/command"
	"github.com/redock-cli/redock/internal/runner"
	"github.com/redock-cli/redock/internal/schema"
	"github.com/redock-cli/redock/internal/store"
)

// ErrUpdateUnavailable is returned when an update targets a verbatim
// fallback record.
var ErrUpdateUnavailable = errors.New("command cannot be updated")

// Options selects per-invocation execution behavior. It is passed explicitly
// into every call; the controller keeps no ambient flag state.
type Options struct {
	// Defer skips process execution entirely.
	Defer bool
	// Print echoes the reconstructed command line before execution.
	Print bool
}

// Result reports the outcome of a create or replay.
type Result struct {
	// ID is the record the invocation ran from (the new id for creates and
	// update-replays).
	ID int64
	// Tokens is the executed token sequence, program name included.
	Tokens []string
	// Display is the command line in display form.
	Display string
	// Warning is a non-fatal diagnostic, typically the verbatim fallback
	// notice for captures with unrecognized tokens.
	Warning string
	// ExitCode is the child process exit code; zero when execution was
	// deferred.
	ExitCode int
}

// Controller wires the engine components together for one process.
type Controller struct {
	registry *schema.Registry
	store    store.Store
	runner   runner.Runner
	program  string
	printer  func(line string)
}

// Config configures a controller.
type Config struct {
	Registry *schema.Registry
	Store    store.Store
	Runner   runner.Runner
	// Program is the external program the captured tokens belong to,
	// normally "docker".
	Program string
	// Printer receives the command line when Options.Print is set. Optional.
	Printer func(line string)
}

// New creates a controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if cfg.Program == "" {
		return nil, fmt.Errorf("program name is required")
	}
	return &Controller{
		registry: cfg.Registry,
		store:    cfg.Store,
		runner:   cfg.Runner,
		program:  cfg.Program,
		printer:  cfg.Printer,
	}, nil
}

// Create captures a new command from raw tokens, persists it, and triggers
// execution. A missing-required parse aborts before anything is stored.
func (c *Controller) Create(ctx context.Context, category string, tokens []string, opts Options) (Result, error) {
	cs, err := c.registry.Lookup(category)
	if err != nil {
		return Result{}, err
	}

	cmd := command.New(cs)
	if err := cmd.AssignFromArgs(tokens); err != nil {
		return Result{}, err
	}

	res := Result{}
	fallback, fallbackTokens := cmd.Fallback()
	if fallback {
		res.Warning = "command contains unrecognized tokens; stored verbatim and not updatable"
	}

	id, err := c.store.Insert(ctx, store.Record{
		Category:       category,
		Values:         cmd.Values(),
		Fallback:       fallback,
		FallbackTokens: fallbackTokens,
	})
	if err != nil {
		return Result{}, err
	}
	res.ID = id

	return c.execute(ctx, category, cmd, res, opts)
}

// Replay re-executes a stored command unchanged. No new record is written.
func (c *Controller) Replay(ctx context.Context, category string, id int64, opts Options) (Result, error) {
	cmd, err := c.load(ctx, category, id)
	if err != nil {
		return Result{}, err
	}
	return c.execute(ctx, category, cmd, Result{ID: id}, opts)
}

// ReplayWithUpdate merges extra tokens into a stored command, persists the
// merged set under a new id, and executes it. The original record is never
// touched. Updating a verbatim fallback record fails with
// ErrUpdateUnavailable before any store write.
func (c *Controller) ReplayWithUpdate(ctx context.Context, category string, id int64, extra []string, opts Options) (Result, error) {
	cmd, err := c.load(ctx, category, id)
	if err != nil {
		return Result{}, err
	}
	if !cmd.CanUpdate() {
		return Result{}, fmt.Errorf("category %s, id %d: %w", category, id, ErrUpdateUnavailable)
	}

	warning, err := cmd.UpdateFromArgs(extra)
	if err != nil {
		return Result{}, err
	}

	res := Result{}
	if warning != nil {
		res.Warning = warning.Error()
	}

	fallback, fallbackTokens := cmd.Fallback()
	newID, err := c.store.Insert(ctx, store.Record{
		Category:       category,
		Values:         cmd.Values(),
		Fallback:       fallback,
		FallbackTokens: fallbackTokens,
	})
	if err != nil {
		return Result{}, err
	}
	res.ID = newID

	return c.execute(ctx, category, cmd, res, opts)
}

// List returns the stored records of a category in ascending id order.
func (c *Controller) List(ctx context.Context, category string) ([]store.Record, error) {
	if _, err := c.registry.Lookup(category); err != nil {
		return nil, err
	}
	return c.store.List(ctx, category)
}

// Delete removes one stored record.
func (c *Controller) Delete(ctx context.Context, category string, id int64) error {
	if _, err := c.registry.Lookup(category); err != nil {
		return err
	}
	return c.store.Delete(ctx, category, id)
}

// Describe renders a stored record as its display command line.
func (c *Controller) Describe(rec store.Record) (string, error) {
	cs, err := c.registry.Lookup(rec.Category)
	if err != nil {
		return "", err
	}
	cmd := command.Restore(cs, rec.Values, rec.Fallback, rec.FallbackTokens)
	return cmd.String(), nil
}

// load fetches a record and rebuilds its merge engine state.
func (c *Controller) load(ctx context.Context, category string, id int64) (*command.Command, error) {
	cs, err := c.registry.Lookup(category)
	if err != nil {
		return nil, err
	}
	rec, err := c.store.Get(ctx, category, id)
	if err != nil {
		return nil, err
	}
	return command.Restore(cs, rec.Values, rec.Fallback, rec.FallbackTokens), nil
}

// execute runs the reconstructed command line unless execution is deferred.
func (c *Controller) execute(ctx context.Context, category string, cmd *command.Command, res Result, opts Options) (Result, error) {
	args := append([]string{category}, cmd.Args()...)
	res.Tokens = append([]string{c.program}, args...)
	res.Display = strings.TrimSpace(c.program + " " + category + " " + cmd.String())

	if opts.Print && c.printer != nil {
		c.printer(res.Display)
	}
	if opts.Defer {
		return res, nil
	}

	code, err := c.runner.Run(ctx, c.program, args)
	if err != nil {
		return res, err
	}
	res.ExitCode = code
	return res, nil
}
