package main

import (
	"github.com/spf13/cobra"

	"github.com/redock-cli/redock/internal/config"
	"github.com/redock-cli/redock/internal/controller"
	"github.com/redock-cli/redock/internal/schema"
)

func newRootCmd(ctrl *controller.Controller, registry *schema.Registry, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   cliName,
		Short: "Capture docker commands and replay them by id",
		Long: `redock records a docker invocation as a normalized parameter set and
replays it later, unchanged or with a partial set of changed arguments
merged against the stored version.

  redock run -d -e TEST=test test:1.0.0   capture and run (id printed)
  redock run 1                            replay command 1 unchanged
  redock run 1 -d test:1.0.1              merge changes, store as a new id, run
  redock run ls                           list stored commands
  redock run rm 1                         delete command 1`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Parse the global flags that precede the category; everything after
		// the category name reaches the category handler untouched.
		TraverseChildren: true,
	}

	cmd.PersistentFlags().BoolP("defer", "d", false, "Store without executing")
	cmd.PersistentFlags().BoolP("print", "p", false, "Echo the reconstructed command line")

	for _, category := range registry.Categories() {
		cmd.AddCommand(newCategoryCmd(ctrl, registry, cfg, category))
	}

	return cmd
}
