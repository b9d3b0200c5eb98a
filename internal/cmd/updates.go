package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/filter"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewUpdatesCmd creates the updates command
func NewUpdatesCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "updates",
		Short: "List pending updates",
		Long:  `List pending updates from the repositories (pacman -Qu) and the AUR (yay -Qua).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query(app.Config.UI.FuzzyFilter)
			if err != nil {
				return err
			}

			spin := flags.spinner(cmd, "Checking for updates...")
			res, err := app.Catalog().Updates(cmd.Context(), func(catalog.Batch[syspkg.Update]) {
				spin.Tick()
			})
			_ = spin.Stop()
			if err != nil {
				return fmt.Errorf("check for updates: %w", err)
			}
			if res.Failed() {
				return fmt.Errorf("check for updates: %w", res.Err())
			}

			updates := filter.Updates(q, res.Items)

			if flags.json {
				return writeJSON(cmd.OutOrStdout(), updates)
			}

			out := cmd.OutOrStdout()
			warnSourceErrors(cmd.ErrOrStderr(), res.Errors)
			if len(res.Items) == 0 {
				fmt.Fprintln(out, ui.SprintSuccess("Your system is fully updated"))
				return nil
			}
			if len(updates) == 0 {
				fmt.Fprintln(out, "No updates match the filter.")
				return nil
			}
			if err := ui.PrintUpdateTable(out, updates); err != nil {
				return err
			}

			repo, aur := countBySource(updates)
			fmt.Fprintf(out, "\nFound %d update(s): %d repo, %d AUR.\n", len(updates), repo, aur)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
