package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/history"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(app *App) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		prune      bool
	)

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show the commands pacfront has run",
		Long: `Show recent install, update and uninstall commands with their exit codes. Commands sent to an external terminal are listed as launched.

With an ID (or the short ID from the table) the full record of that operation is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := app.OpenHistory(ctx)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			if store == nil {
				fmt.Fprintln(out, "History is disabled (history.enabled = false).")
				return nil
			}
			defer store.Close()

			if len(args) == 1 {
				e, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(out, e)
				}
				printHistoryEntry(out, e)
				return nil
			}

			if prune {
				removed, err := store.Prune(ctx, app.Config.History.Keep)
				if err != nil {
					return fmt.Errorf("prune history: %w", err)
				}
				fmt.Fprintln(out, ui.SprintSuccess("Removed %d old entries", removed))
				return nil
			}

			entries, err := store.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			if jsonOutput {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(out, entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No operations recorded yet.")
				return nil
			}
			return ui.PrintHistoryTable(out, entries)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().BoolVar(&prune, "prune", false, "drop entries beyond history.keep")

	return cmd
}

func printHistoryEntry(out io.Writer, e *history.Entry) {
	ui.PrintHeader(out, "Operation "+e.ID)
	ui.PrintKeyValue(out, "Action", e.Action)
	ui.PrintKeyValue(out, "Packages", strings.Join(e.Packages, " "))
	ui.PrintKeyValue(out, "Command", e.Command)
	ui.PrintKeyValue(out, "Mode", e.Mode)
	ui.PrintKeyValue(out, "Started", e.StartedAt.Local().Format(time.RFC1123))

	switch {
	case e.FinishedAt == nil:
		ui.PrintKeyValue(out, "Status", ui.Warning.Sprint("running"))
	case e.ExitCode < 0 && e.Error == "":
		ui.PrintKeyValue(out, "Status", ui.Muted.Sprint("launched in an external terminal"))
	case e.Succeeded():
		ui.PrintKeyValue(out, "Status", ui.Success.Sprint("ok"))
	default:
		ui.PrintKeyValue(out, "Status", ui.Error.Sprintf("failed (exit %d)", e.ExitCode))
	}
	if e.FinishedAt != nil {
		ui.PrintKeyValue(out, "Finished", e.FinishedAt.Local().Format(time.RFC1123))
	}
	if e.Error != "" {
		ui.PrintKeyValue(out, "Error", e.Error)
	}
}
