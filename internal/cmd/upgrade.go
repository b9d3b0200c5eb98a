package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/security"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// NewUpgradeCmd creates the upgrade command
func NewUpgradeCmd(app *App) *cobra.Command {
	var (
		flags     planFlags
		selection bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade [package]...",
		Short: "Update packages",
		Long: `Without arguments, update the whole system with yay -Syu (sudo pacman -Syu when yay is unavailable).
With package names, or with --select, update only those packages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			cat := app.Catalog()
			yayUsable := cat.YayUsable(ctx)

			if len(args) == 0 && !selection {
				return runPlan(cmd, app, app.Planner().UpgradeAll(yayUsable), flags)
			}
			if err := security.ValidatePackageNames(args); err != nil {
				return err
			}

			spin := ui.NewSpinner(cmd.ErrOrStderr(), "Checking for updates...")
			res, err := cat.Updates(ctx, nil)
			_ = spin.Stop()
			if err != nil {
				return fmt.Errorf("check for updates: %w", err)
			}
			warnSourceErrors(cmd.ErrOrStderr(), res.Errors)
			if len(res.Items) == 0 {
				fmt.Fprintln(out, ui.SprintSuccess("Your system is fully updated"))
				return nil
			}

			var chosen []syspkg.Update
			if selection {
				chosen, err = selectUpdates(app, res.Items)
				if errors.Is(err, ui.ErrCancelled) {
					fmt.Fprintln(out, "Selection cancelled.")
					return nil
				}
				if err != nil {
					return err
				}
			} else {
				pending := make(map[string]syspkg.Update, len(res.Items))
				for _, u := range res.Items {
					if _, seen := pending[u.Name]; !seen {
						pending[u.Name] = u
					}
				}
				for _, name := range args {
					u, ok := pending[name]
					if !ok {
						fmt.Fprintln(cmd.ErrOrStderr(), ui.Warning.Sprint(ui.SprintWarning("no pending update for %s", name)))
						continue
					}
					chosen = append(chosen, u)
				}
			}

			if len(chosen) == 0 {
				fmt.Fprintln(out, "Nothing to update.")
				return nil
			}

			p, err := app.Planner().UpdateSelected(plan.FromUpdates(chosen), yayUsable)
			if err != nil {
				return err
			}
			return runPlan(cmd, app, p, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&selection, "select", "s", false, "pick the packages to update from the pending updates")

	return cmd
}

func selectUpdates(app *App, updates []syspkg.Update) ([]syspkg.Update, error) {
	labels := make([]string, 0, len(updates))
	byLabel := make(map[string]syspkg.Update, len(updates))
	for _, u := range updates {
		label := fmt.Sprintf("%s %s -> %s (%s)", u.Name, u.Current, u.New, u.Source.Label())
		labels = append(labels, label)
		byLabel[label] = u
	}

	chosen, err := app.Prompter.MultiSelect("Select packages to update", labels)
	if err != nil {
		return nil, err
	}

	out := make([]syspkg.Update, 0, len(chosen))
	for _, label := range chosen {
		out = append(out, byLabel[label])
	}
	return out, nil
}
