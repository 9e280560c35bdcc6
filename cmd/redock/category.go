package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/redock-cli/redock/internal/config"
	"github.com/redock-cli/redock/internal/controller"
	"github.com/redock-cli/redock/internal/schema"
)

// newCategoryCmd builds the subcommand for one schema category. Flag parsing
// is disabled so the raw tokens reach the argument mapper unmodified.
func newCategoryCmd(ctrl *controller.Controller, registry *schema.Registry, cfg *config.Config, category string) *cobra.Command {
	cmd := &cobra.Command{
		Use:                category + " [tokens... | <id> [tokens...] | ls | rm <id>]",
		Short:              fmt.Sprintf("Capture or replay %s %s commands", cfg.Program, category),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
				return cmd.Help()
			}
			return runCategory(cmd, ctrl, registry, cfg, category, args)
		},
	}
	return cmd
}

func runCategory(cmd *cobra.Command, ctrl *controller.Controller, registry *schema.Registry, cfg *config.Config, category string, args []string) error {
	ctx := cmd.Context()

	opts := controller.Options{Print: cfg.AlwaysPrint}
	if v, err := cmd.Root().PersistentFlags().GetBool("defer"); err == nil && v {
		opts.Defer = true
	}
	if v, err := cmd.Root().PersistentFlags().GetBool("print"); err == nil && v {
		opts.Print = true
	}
	args = extractGlobalFlags(registry, category, args, &opts)

	if len(args) > 0 {
		switch args[0] {
		case "ls":
			return listCommands(cmd, ctrl, category)
		case "rm":
			if len(args) != 2 {
				return fmt.Errorf("usage: %s %s rm <id>", cliName, category)
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", args[1])
			}
			if err := ctrl.Delete(ctx, category, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s command %d\n", category, id)
			return nil
		}
	}

	var (
		res controller.Result
		err error
	)
	if len(args) > 0 {
		if id, convErr := strconv.ParseInt(args[0], 10, 64); convErr == nil && id > 0 {
			if len(args) == 1 {
				res, err = ctrl.Replay(ctx, category, id, opts)
			} else {
				res, err = ctrl.ReplayWithUpdate(ctx, category, id, args[1:], opts)
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Stored as %s command %d\n", category, res.ID)
				}
			}
			return finish(res, err)
		}
	}

	res, err = ctrl.Create(ctx, category, args, opts)
	if err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Stored as %s command %d\n", category, res.ID)
	}
	return finish(res, err)
}

// finish surfaces the warning and converts a non-zero child exit into an
// error the caller maps back onto the process exit code.
func finish(res controller.Result, err error) error {
	if err != nil {
		return err
	}
	if res.Warning != "" {
		pterm.Warning.Println(res.Warning)
	}
	if res.ExitCode != 0 {
		return &childExitError{code: res.ExitCode}
	}
	return nil
}

// listCommands renders the stored records of a category as a table.
func listCommands(cmd *cobra.Command, ctrl *controller.Controller, category string) error {
	records, err := ctrl.List(cmd.Context(), category)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No stored %s commands\n", category)
		return nil
	}

	data := pterm.TableData{{"ID", "CREATED", "COMMAND"}}
	for _, rec := range records {
		line, err := ctrl.Describe(rec)
		if err != nil {
			return err
		}
		if rec.Fallback {
			line += " (verbatim)"
		}
		data = append(data, []string{
			strconv.FormatInt(rec.ID, 10),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			line,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// extractGlobalFlags claims the long-form global flags that appear after the
// category name, but only when the category schema does not define a flag of
// the same name. Short forms are never claimed here; after the category they
// belong to the category tokens (-d means detach for run, not defer).
func extractGlobalFlags(registry *schema.Registry, category string, args []string, opts *controller.Options) []string {
	cs, err := registry.Lookup(category)
	if err != nil {
		return args
	}

	out := args[:0:0]
	for _, tok := range args {
		switch tok {
		case "--defer":
			if _, taken := cs.LongFlag("defer"); !taken {
				opts.Defer = true
				continue
			}
		case "--print":
			if _, taken := cs.LongFlag("print"); !taken {
				opts.Print = true
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}
