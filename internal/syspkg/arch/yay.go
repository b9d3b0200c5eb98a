package arch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

const yayProbeTimeout = 3 * time.Second

// YayProvider queries the AUR through yay. Every query is restricted to
// the AUR so repository packages are only ever reported by pacman.
type YayProvider struct {
	runner helpers.CommandRunner
	bin    string
}

// NewYayProvider creates a new yay provider
func NewYayProvider() *YayProvider {
	return NewYayProviderWithRunner(helpers.NewOSCommandRunner())
}

// NewYayProviderWithRunner creates a yay provider with a custom command runner
func NewYayProviderWithRunner(runner helpers.CommandRunner) *YayProvider {
	return &YayProvider{
		runner: runner,
		bin:    "yay",
	}
}

// WithBinary overrides the yay executable
func (y *YayProvider) WithBinary(bin string) *YayProvider {
	if bin != "" {
		y.bin = bin
	}
	return y
}

func (y *YayProvider) Name() string {
	return "yay"
}

func (y *YayProvider) Source() syspkg.Source {
	return syspkg.SourceAUR
}

// Usable reports whether yay can run. A non-zero exit from --version is
// fine; a broken dynamic link after a system upgrade is not.
func (y *YayProvider) Usable(ctx context.Context) bool {
	if !y.runner.CommandExists(y.bin) {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, yayProbeTimeout)
	defer cancel()

	stdout, stderr, err := y.runner.RunCommandWithOutput(ctx, y.bin, "--version")
	if err != nil && (helpers.IsNotFound(err) || ctx.Err() != nil) {
		return false
	}

	text := strings.ToLower(stdout + stderr)
	return !strings.Contains(text, "error while loading shared libraries")
}

// Search searches the AUR (yay -Ss --aur)
func (y *YayProvider) Search(ctx context.Context, term string, onItem func(syspkg.Package)) ([]syspkg.Package, error) {
	if err := checkTerm(term); err != nil {
		return nil, err
	}

	var pkgs []syspkg.Package
	parser := syspkg.NewSearchParser(func(pkg syspkg.Package) {
		pkgs = append(pkgs, pkg)
		if onItem != nil {
			onItem(pkg)
		}
	})

	err := streamLines(ctx, y.runner, y.bin, []string{"--color=never", "-Ss", strings.TrimSpace(term), "--aur"}, parser.Feed)
	parser.Close()
	if err != nil {
		return pkgs, fmt.Errorf("AUR search failed: %w", err)
	}
	return pkgs, nil
}

// Updates lists pending AUR upgrades (yay -Qua)
func (y *YayProvider) Updates(ctx context.Context, onItem func(syspkg.Update)) ([]syspkg.Update, error) {
	var updates []syspkg.Update
	err := streamLines(ctx, y.runner, y.bin, []string{"--color=never", "-Qua"}, func(line string) {
		u, ok := syspkg.ParseUpdateLine(line)
		if !ok {
			return
		}
		u.Source = syspkg.SourceAUR
		updates = append(updates, u)
		if onItem != nil {
			onItem(u)
		}
	})
	if err != nil {
		return updates, fmt.Errorf("yay -Qua failed: %w", err)
	}
	return updates, nil
}

// Details retrieves AUR information (yay -Si --aur)
func (y *YayProvider) Details(ctx context.Context, name string) (*syspkg.Details, error) {
	stdout, stderr, err := y.runner.RunCommandWithOutput(ctx, y.bin, "--color=never", "-Si", name, "--aur")
	if err := detailsError(ctx, y.bin, name, err, stdout, stderr); err != nil {
		return nil, err
	}

	d := syspkg.ParseDetails(stdout)
	if d.Name == "" {
		d.Name = name
	}
	if d.Repo == "" {
		d.Repo = "aur"
	}
	d.Source = syspkg.SourceAUR
	return d, nil
}
