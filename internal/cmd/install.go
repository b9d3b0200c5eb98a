package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/security"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

// NewInstallCmd creates the install command
func NewInstallCmd(app *App) *cobra.Command {
	var (
		flags planFlags
		aur   bool
	)

	cmd := &cobra.Command{
		Use:   "install <package>...",
		Short: "Install packages",
		Long:  `Install packages from the repositories with sudo pacman -S --needed and from the AUR with yay -S. Each name is looked up in the repositories first, then in the AUR.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := security.ValidatePackageNames(args); err != nil {
				return err
			}

			ctx := cmd.Context()
			cat := app.Catalog()
			yayUsable := cat.YayUsable(ctx)

			var items []plan.Item
			if aur {
				for _, name := range args {
					items = append(items, plan.Item{Name: name, Source: syspkg.SourceAUR})
				}
			} else {
				var err error
				items, err = resolveSources(ctx, app, args, yayUsable)
				if err != nil {
					return err
				}
			}

			p, err := app.Planner().Install(items, yayUsable)
			if err != nil {
				return err
			}
			return runPlan(cmd, app, p, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&aur, "aur", false, "treat every name as an AUR package")

	return cmd
}

// resolveSources finds where each package comes from: the repositories
// when pacman knows it, the AUR otherwise.
func resolveSources(ctx context.Context, app *App, names []string, yayUsable bool) ([]plan.Item, error) {
	cat := app.Catalog()
	items := make([]plan.Item, 0, len(names))

	for _, name := range names {
		_, err := cat.Details(ctx, syspkg.SourceRepo, name)
		switch {
		case err == nil:
			items = append(items, plan.Item{Name: name, Source: syspkg.SourceRepo})
			continue
		case !errors.Is(err, syspkg.ErrPackageNotFound):
			return nil, err
		}

		// without yay the planner decides what to do with AUR names
		if yayUsable {
			if _, err := cat.Details(ctx, syspkg.SourceAUR, name); err != nil {
				if errors.Is(err, syspkg.ErrPackageNotFound) {
					return nil, fmt.Errorf("%s: %w", name, syspkg.ErrPackageNotFound)
				}
				return nil, err
			}
		}
		items = append(items, plan.Item{Name: name, Source: syspkg.SourceAUR})
	}

	return items, nil
}
