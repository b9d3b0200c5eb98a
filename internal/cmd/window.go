package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/terminal"
	"github.com/quantmind-br/pacfront/internal/tui"
)

// NewUICmd creates the ui command
func NewUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the package manager window",
		Long:  `Open the full-screen window with the Search & Install, Installed Packages and Update tabs. This is also what pacfront does without a subcommand.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), app)
		},
	}
}

// runUI opens the window. The window owns the terminal, so everything it
// starts logs to the file only.
func runUI(ctx context.Context, app *App) error {
	cfg := app.Config
	log := app.FileLog
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	deps := tui.Deps{
		Catalog: catalog.New(app.Repo, app.AUR, app.catalogOptions(), log),
		Planner: app.Planner(),
		Executor: terminal.NewLauncher(app.Runner, terminal.Options{
			Preferred: cfg.Terminal.Preferred,
			KeepOpen:  cfg.Terminal.KeepOpen,
		}, log),
		Config: cfg,
		Fs:     app.Fs,
		Log:    log,
	}
	if cfg.UI.WatchLocalDB {
		deps.WatchDir = app.LocalDBDir
	}

	store, err := app.OpenHistory(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable, not recording")
	} else if store != nil {
		defer store.Close()
		deps.History = store
	}

	log.Info().Str("version", app.Version).Msg("opening window")
	return tui.Run(ctx, deps)
}
