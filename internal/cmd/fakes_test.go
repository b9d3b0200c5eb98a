package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pacfront/internal/cache"
	"github.com/quantmind-br/pacfront/internal/config"
	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/logging"
	"github.com/quantmind-br/pacfront/internal/paths"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/terminal"
)

type fakeSource struct {
	source  syspkg.Source
	search  []syspkg.Package
	updates []syspkg.Update
	native  []syspkg.Package
	foreign []syspkg.Package
	details map[string]*syspkg.Details
	files   map[string][]string
	usable  bool
	err     error
}

func (f *fakeSource) Name() string          { return string(f.source) }
func (f *fakeSource) Source() syspkg.Source { return f.source }

func (f *fakeSource) Search(ctx context.Context, term string, _ func(syspkg.Package)) ([]syspkg.Package, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]syspkg.Package(nil), f.search...), nil
}

func (f *fakeSource) Updates(ctx context.Context, _ func(syspkg.Update)) ([]syspkg.Update, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]syspkg.Update(nil), f.updates...), nil
}

func (f *fakeSource) Details(ctx context.Context, name string) (*syspkg.Details, error) {
	if d, ok := f.details[name]; ok {
		return d, nil
	}
	return nil, syspkg.ErrPackageNotFound
}

func (f *fakeSource) InstalledNames(ctx context.Context) ([]string, error) {
	var names []string
	for _, p := range append(append([]syspkg.Package(nil), f.native...), f.foreign...) {
		names = append(names, p.Name)
	}
	return names, nil
}

func (f *fakeSource) Explicit(ctx context.Context, kind syspkg.ExplicitKind, _ func(syspkg.Package)) ([]syspkg.Package, error) {
	if kind == syspkg.ExplicitForeign {
		return append([]syspkg.Package(nil), f.foreign...), nil
	}
	return append([]syspkg.Package(nil), f.native...), nil
}

func (f *fakeSource) IsInstalled(ctx context.Context, name string) (bool, error) {
	names, _ := f.InstalledNames(ctx)
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSource) ListFiles(ctx context.Context, name string) ([]string, error) {
	return f.files[name], nil
}

func (f *fakeSource) Usable(ctx context.Context) bool { return f.usable }

type fakeExecutor struct {
	launched []*plan.Plan
	inline   []*plan.Plan
	code     int
	err      error
}

func (f *fakeExecutor) Launch(ctx context.Context, p *plan.Plan) (string, error) {
	f.launched = append(f.launched, p)
	if f.err != nil {
		return "", f.err
	}
	return "konsole", nil
}

func (f *fakeExecutor) RunInline(ctx context.Context, p *plan.Plan, stdin, stdout, stderr *os.File) (int, error) {
	f.inline = append(f.inline, p)
	return f.code, f.err
}

// fakePrompter answers confirmations with confirm and selections by
// picking the labels pick accepts
type fakePrompter struct {
	confirm  bool
	err      error
	pick     func(label string) bool
	confirms int
	offered  []string
}

func (f *fakePrompter) Confirm(label string, defaultYes bool) (bool, error) {
	f.confirms++
	return f.confirm, f.err
}

func (f *fakePrompter) MultiSelect(label string, items []string) ([]string, error) {
	f.offered = items
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, it := range items {
		if f.pick != nil && f.pick(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

type fixture struct {
	app      *App
	repo     *fakeSource
	aur      *fakeSource
	exec     *fakeExecutor
	prompter *fakePrompter
	runner   *helpers.MockCommandRunner
	home     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("TERMINAL", "")

	dir := t.TempDir()
	cfg := config.Default()
	cfg.SetFile(filepath.Join(dir, "config", "config.toml"))
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.DBFile = filepath.Join(dir, "data", "history.db")
	cfg.Paths.LogFile = filepath.Join(dir, "logs", "pacfront.log")
	cfg.UI.CustomThemeFile = ""
	cfg.Logging.Color = "never"

	repo := &fakeSource{
		source: syspkg.SourceRepo,
		search: []syspkg.Package{
			{Repo: "extra", Name: "firefox", Version: "131.0-1", Description: "Web browser", Source: syspkg.SourceRepo},
			{Repo: "extra", Name: "firefox-ublock-origin", Version: "1.60.0-1", Description: "Content blocker", Source: syspkg.SourceRepo},
			{Repo: "extra", Name: "vim", Version: "9.1-1", Description: "Vi Improved", Source: syspkg.SourceRepo},
		},
		native: []syspkg.Package{
			{Name: "bash", Version: "5.2.037-1", Source: syspkg.SourceRepo},
			{Name: "htop", Version: "3.3.0-1", Source: syspkg.SourceRepo},
			{Name: "vim", Version: "9.1-1", Source: syspkg.SourceRepo},
		},
		updates: []syspkg.Update{
			{Name: "bash", Current: "5.2.037-1", New: "5.2.037-2", Source: syspkg.SourceRepo},
		},
		details: map[string]*syspkg.Details{
			"firefox": {Name: "firefox", Version: "131.0-1", Repo: "extra", Description: "Web browser", URL: "https://www.mozilla.org/firefox/", Source: syspkg.SourceRepo},
			"vim":     {Name: "vim", Version: "9.1-1", Repo: "extra", Description: "Vi Improved", Source: syspkg.SourceRepo},
		},
		files: map[string][]string{
			"vim": {"/usr/bin/vim", "/usr/share/vim/"},
		},
	}
	aur := &fakeSource{
		source: syspkg.SourceAUR,
		search: []syspkg.Package{
			{Repo: "aur", Name: "firefox-nightly", Version: "133.0a1-1", Description: "Nightly build", Source: syspkg.SourceAUR},
		},
		updates: []syspkg.Update{
			{Name: "yay", Current: "12.3.5-1", New: "12.4.2-1", Source: syspkg.SourceAUR},
		},
		details: map[string]*syspkg.Details{
			"firefox-nightly": {Name: "firefox-nightly", Version: "133.0a1-1", Repo: "aur", Description: "Nightly build", Source: syspkg.SourceAUR},
		},
		usable: true,
	}
	repo.foreign = []syspkg.Package{{Name: "yay", Version: "12.3.5-1", Source: syspkg.SourceAUR}}

	runner := &helpers.MockCommandRunner{
		CommandExistsFunc: func(name string) bool {
			switch name {
			case "pacman", "sudo", "yay", "konsole":
				return true
			}
			return false
		},
	}
	log := logging.NewTestLogger(&bytes.Buffer{})
	executor := &fakeExecutor{}
	prompter := &fakePrompter{confirm: true}

	app := &App{
		Config:     cfg,
		Log:        log,
		Version:    "1.2.3",
		Fs:         afero.NewMemMapFs(),
		Runner:     runner,
		Prompter:   prompter,
		Repo:       repo,
		AUR:        aur,
		Launcher:   terminal.NewLauncher(runner, terminal.Options{}, log).WithEnv(nil),
		Executor:   executor,
		Updater:    &cache.MockCacheManager{},
		Paths:      paths.NewResolverWithHome(cfg, dir),
		LocalDBDir: t.TempDir(),
		Executable: func() (string, error) { return "/usr/bin/pacfront", nil },
	}

	return &fixture{
		app:      app,
		repo:     repo,
		aur:      aur,
		exec:     executor,
		prompter: prompter,
		runner:   runner,
		home:     dir,
	}
}

// run executes the root command with args and returns stdout and stderr
func (f *fixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd(f.app)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var errBoom = errors.New("boom")

func requireNoError(t *testing.T, err error, stdout, stderr string) {
	t.Helper()
	require.NoError(t, err, "stdout:\n%s\nstderr:\n%s", stdout, stderr)
}
