package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/history"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/terminal"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// planFlags are shared by install, remove and upgrade
type planFlags struct {
	yes      bool
	external bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "run without asking for confirmation")
	cmd.Flags().BoolVar(&f.external, "external", false, "run in a new terminal window")
}

var planTitles = map[plan.Action]string{
	plan.ActionInstall:    "Install",
	plan.ActionUpdate:     "Update",
	plan.ActionRemove:     "Uninstall",
	plan.ActionUpgradeAll: "Full system update",
}

// runPlan prints p, asks for confirmation unless --yes was given, then runs
// it and records the outcome.
func runPlan(cmd *cobra.Command, app *App, p *plan.Plan, flags planFlags) error {
	out := cmd.OutOrStdout()

	ui.PrintHeader(out, planTitles[p.Action])
	if w := p.Warning(); w != "" {
		fmt.Fprintln(out, ui.Warning.Sprint(ui.SprintWarning("%s", w)))
	}
	for _, c := range p.Commands() {
		fmt.Fprintf(out, "  %s %s\n", ui.Arrow, c)
	}
	fmt.Fprintln(out)

	if !flags.yes {
		ok, err := app.Prompter.Confirm("Proceed", !p.Degraded)
		if errors.Is(err, ui.ErrCancelled) || (err == nil && !ok) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	mode, err := terminal.ParseMode(app.Config.Terminal.Mode)
	if err != nil {
		return err
	}
	if flags.external {
		mode = terminal.ModeExternal
	}

	ctx := cmd.Context()
	store, err := app.OpenHistory(ctx)
	if err != nil {
		app.Log.Warn().Err(err).Msg("history unavailable, not recording")
		store = nil
	}
	if store != nil {
		defer store.Close()
	}
	id := beginEntry(ctx, app, store, p, mode)

	app.Log.Info().
		Str("action", string(p.Action)).
		Str("command", p.Script()).
		Str("mode", string(mode)).
		Msg("running plan")

	if mode == terminal.ModeExternal {
		term, err := app.Executor.Launch(ctx, p)
		finishEntry(ctx, app, store, id, -1, err)
		if err != nil {
			return fmt.Errorf("launch terminal: %w", err)
		}
		fmt.Fprintln(out, ui.SprintSuccess("Launched in %s", term))
		return nil
	}

	code, err := app.Executor.RunInline(ctx, p, os.Stdin, os.Stdout, os.Stderr)
	finishEntry(ctx, app, store, id, code, err)
	if err != nil {
		return fmt.Errorf("%s failed (exit %d): %w", p.Script(), code, err)
	}
	fmt.Fprintln(out, ui.SprintSuccess("Operation complete"))
	return nil
}

func beginEntry(ctx context.Context, app *App, store *history.Store, p *plan.Plan, mode terminal.Mode) string {
	if store == nil {
		return ""
	}
	e, err := store.Begin(ctx, string(p.Action), p.Script(), p.Packages(), string(mode))
	if err != nil {
		app.Log.Warn().Err(err).Msg("failed to record history")
		return ""
	}
	return e.ID
}

func finishEntry(ctx context.Context, app *App, store *history.Store, id string, code int, runErr error) {
	if store == nil || id == "" {
		return
	}
	if err := store.Finish(context.WithoutCancel(ctx), id, code, runErr); err != nil {
		app.Log.Warn().Err(err).Str("id", id).Msg("failed to finish history entry")
	}
}
