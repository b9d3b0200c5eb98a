package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/pacfront/internal/cache"
	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/config"
	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/history"
	"github.com/quantmind-br/pacfront/internal/paths"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/syspkg/arch"
	"github.com/quantmind-br/pacfront/internal/terminal"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// RepoProvider is the pacman side as the commands use it
type RepoProvider interface {
	catalog.RepoQuerier
	IsInstalled(ctx context.Context, name string) (bool, error)
	ListFiles(ctx context.Context, name string) ([]string, error)
}

// Executor runs a confirmed plan inline or in an external terminal
type Executor interface {
	Launch(ctx context.Context, p *plan.Plan) (string, error)
	RunInline(ctx context.Context, p *plan.Plan, stdin, stdout, stderr *os.File) (int, error)
}

// App carries the services shared by every subcommand
type App struct {
	Config *config.Config
	Log    *zerolog.Logger
	// FileLog writes to the log file only; the window logs through it
	FileLog  *zerolog.Logger
	Version  string
	Fs       afero.Fs
	Runner   helpers.CommandRunner
	Prompter ui.Prompter
	Repo     RepoProvider
	AUR      catalog.AURQuerier
	Launcher *terminal.Launcher
	Executor Executor
	Updater  cache.Updater
	Paths    *paths.Resolver
	// LocalDBDir is the pacman local database the window watches
	LocalDBDir string
	// Executable reports the path written into the desktop launcher
	Executable func() (string, error)

	catalog *catalog.Catalog
}

// NewApp wires the real pacman, yay and terminal services from cfg
func NewApp(cfg *config.Config, log *zerolog.Logger, version string) *App {
	runner := helpers.NewOSCommandRunner()
	launcher := terminal.NewLauncher(runner, terminal.Options{
		Preferred: cfg.Terminal.Preferred,
		KeepOpen:  cfg.Terminal.KeepOpen,
	}, log)

	return &App{
		Config:   cfg,
		Log:      log,
		Version:  version,
		Fs:       afero.NewOsFs(),
		Runner:   runner,
		Prompter: ui.TerminalPrompter{},
		Repo:     arch.NewPacmanProviderWithRunner(runner).WithBinary(cfg.Tools.Pacman),
		AUR:      arch.NewYayProviderWithRunner(runner).WithBinary(cfg.Tools.Yay),
		Launcher: launcher,
		Executor: launcher,
		Updater:  cache.NewCacheManagerWithRunner(runner),
		Paths:    paths.NewResolver(cfg),

		LocalDBDir: paths.LocalDBDir,
		Executable: os.Executable,
	}
}

// Catalog returns the query orchestrator, created on first use
func (a *App) Catalog() *catalog.Catalog {
	if a.catalog == nil {
		a.catalog = catalog.New(a.Repo, a.AUR, a.catalogOptions(), a.Log)
	}
	return a.catalog
}

func (a *App) catalogOptions() catalog.Options {
	return catalog.Options{
		SearchLimit:    a.Config.UI.SearchLimit,
		InstalledLimit: a.Config.UI.InstalledLimit,
		HideInstalled:  a.Config.UI.HideInstalled,
	}
}

// Planner returns a planner for the configured tools
func (a *App) Planner() *plan.Planner {
	return plan.New(plan.Tools{
		Pacman: a.Config.Tools.Pacman,
		Yay:    a.Config.Tools.Yay,
		Sudo:   a.Config.Tools.Sudo,
	})
}

// OpenHistory opens the history store. It returns nil, nil when history
// is disabled.
func (a *App) OpenHistory(ctx context.Context) (*history.Store, error) {
	if !a.Config.History.Enabled || a.Config.Paths.DBFile == "" {
		return nil, nil
	}
	return history.Open(ctx, a.Config.Paths.DBFile)
}
