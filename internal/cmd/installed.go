package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/filter"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewInstalledCmd creates the installed command
func NewInstalledCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:     "installed",
		Aliases: []string{"list"},
		Short:   "List explicitly installed packages",
		Long:    `List explicitly installed packages: native ones (pacman -Qen) as Pacman and foreign ones (pacman -Qem) as Yay.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query(app.Config.UI.FuzzyFilter)
			if err != nil {
				return err
			}

			spin := flags.spinner(cmd, "Loading installed packages...")
			res, err := app.Catalog().Installed(cmd.Context(), func(catalog.Batch[syspkg.Package]) {
				spin.Tick()
			})
			_ = spin.Stop()
			if err != nil {
				return fmt.Errorf("list installed packages: %w", err)
			}
			if res.Failed() {
				return fmt.Errorf("list installed packages: %w", res.Err())
			}

			pkgs := filter.Packages(q, res.Items)

			if flags.json {
				return writeJSON(cmd.OutOrStdout(), pkgs)
			}

			out := cmd.OutOrStdout()
			warnSourceErrors(cmd.ErrOrStderr(), res.Errors)
			if len(pkgs) == 0 {
				if q.Empty() {
					fmt.Fprintln(out, "No explicitly installed packages found.")
				} else {
					fmt.Fprintln(out, "No packages match the filter.")
				}
				return nil
			}
			if err := ui.PrintPackageTable(out, pkgs, false); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nTotal: %d package(s)", len(res.Items))
			if len(pkgs) != len(res.Items) {
				fmt.Fprintf(out, " (showing %d)", len(pkgs))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
