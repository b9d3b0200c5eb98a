package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/security"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd(app *App) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:     "remove [package]...",
		Aliases: []string{"uninstall"},
		Short:   "Uninstall packages",
		Long:    `Uninstall packages with -Rns: repository packages through sudo pacman, AUR packages through yay. Run without arguments to pick from the explicitly installed packages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				items []plan.Item
				err   error
			)
			if len(args) == 0 {
				items, err = selectInstalled(cmd, app)
			} else {
				items, err = installedSources(ctx, app, args)
			}
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return nil
			}

			p, err := app.Planner().Remove(items, app.Catalog().YayUsable(ctx))
			if err != nil {
				return err
			}
			return runPlan(cmd, app, p, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

// installedSources checks each name is installed and marks foreign
// packages as AUR packages
func installedSources(ctx context.Context, app *App, names []string) ([]plan.Item, error) {
	if err := security.ValidatePackageNames(names); err != nil {
		return nil, err
	}

	foreign, err := app.Repo.Explicit(ctx, syspkg.ExplicitForeign, nil)
	if err != nil {
		app.Log.Warn().Err(err).Msg("could not list foreign packages, removing through pacman")
	}
	isForeign := make(map[string]bool, len(foreign))
	for _, p := range foreign {
		isForeign[p.Name] = true
	}

	items := make([]plan.Item, 0, len(names))
	for _, name := range names {
		installed, err := app.Repo.IsInstalled(ctx, name)
		if err != nil {
			return nil, err
		}
		if !installed {
			return nil, fmt.Errorf("%s is not installed", name)
		}

		source := syspkg.SourceRepo
		if isForeign[name] {
			source = syspkg.SourceAUR
		}
		items = append(items, plan.Item{Name: name, Source: source})
	}
	return items, nil
}

// selectInstalled lets the user pick packages from the installed list
func selectInstalled(cmd *cobra.Command, app *App) ([]plan.Item, error) {
	out := cmd.OutOrStdout()

	spin := ui.NewSpinner(cmd.ErrOrStderr(), "Loading installed packages...")
	res, err := app.Catalog().Installed(cmd.Context(), nil)
	_ = spin.Stop()
	if err != nil {
		return nil, fmt.Errorf("list installed packages: %w", err)
	}
	if len(res.Items) == 0 {
		fmt.Fprintln(out, "No explicitly installed packages found.")
		return nil, nil
	}

	labels := make([]string, 0, len(res.Items))
	byLabel := make(map[string]syspkg.Package, len(res.Items))
	for _, p := range res.Items {
		label := fmt.Sprintf("%s %s (%s)", p.Name, p.Version, p.Source.Label())
		labels = append(labels, label)
		byLabel[label] = p
	}

	chosen, err := app.Prompter.MultiSelect("Select packages to uninstall", labels)
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Fprintln(out, "Selection cancelled. No packages were uninstalled.")
			return nil, nil
		}
		return nil, err
	}
	if len(chosen) == 0 {
		fmt.Fprintln(out, "No packages selected. Nothing to do.")
		return nil, nil
	}

	pkgs := make([]syspkg.Package, 0, len(chosen))
	for _, label := range chosen {
		pkgs = append(pkgs, byLabel[label])
	}
	return plan.FromPackages(pkgs), nil
}
