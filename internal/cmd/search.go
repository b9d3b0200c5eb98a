package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/filter"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewSearchCmd creates the search command
func NewSearchCmd(app *App) *cobra.Command {
	var (
		flags         listFlags
		showInstalled bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the repositories and the AUR",
		Long:  `Search the official repositories (pacman -Ss) and the AUR (yay -Ss --aur) in parallel. Only packages whose name contains the term are listed; installed packages are hidden unless --installed is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query(app.Config.UI.FuzzyFilter)
			if err != nil {
				return err
			}

			cat := app.Catalog()
			if showInstalled {
				opts := cat.Options()
				opts.HideInstalled = false
				cat.SetOptions(opts)
			}

			spin := flags.spinner(cmd, "Searching repos + AUR...")
			res, err := cat.Search(cmd.Context(), args[0], func(catalog.Batch[syspkg.Package]) {
				spin.Tick()
			})
			_ = spin.Stop()
			if err != nil {
				if errors.Is(err, syspkg.ErrInvalidTerm) {
					return err
				}
				return fmt.Errorf("search failed: %w", err)
			}
			if res.Failed() {
				return fmt.Errorf("search failed: %w", res.Err())
			}

			pkgs := filter.Packages(q, res.Items)
			app.Log.Debug().
				Str("term", args[0]).
				Int("hits", len(res.Items)).
				Int("shown", len(pkgs)).
				Msg("search finished")

			if flags.json {
				return writeJSON(cmd.OutOrStdout(), pkgs)
			}

			out := cmd.OutOrStdout()
			warnSourceErrors(cmd.ErrOrStderr(), res.Errors)
			if len(pkgs) == 0 {
				fmt.Fprintln(out, "No packages found.")
				return nil
			}
			if err := ui.PrintPackageTable(out, pkgs, true); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nFound %d package(s).", len(pkgs))
			if res.Truncated {
				fmt.Fprintf(out, " Showing the first %d.", len(res.Items))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&showInstalled, "installed", false, "include packages that are already installed")

	return cmd
}
