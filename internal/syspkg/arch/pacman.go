package arch

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

// PacmanProvider implements the Provider interface for the official repositories
type PacmanProvider struct {
	runner helpers.CommandRunner
	bin    string
}

// NewPacmanProvider creates a new Pacman provider
func NewPacmanProvider() *PacmanProvider {
	return NewPacmanProviderWithRunner(helpers.NewOSCommandRunner())
}

// NewPacmanProviderWithRunner creates a Pacman provider with a custom command runner
func NewPacmanProviderWithRunner(runner helpers.CommandRunner) *PacmanProvider {
	return &PacmanProvider{
		runner: runner,
		bin:    "pacman",
	}
}

// WithBinary overrides the pacman executable
func (p *PacmanProvider) WithBinary(bin string) *PacmanProvider {
	if bin != "" {
		p.bin = bin
	}
	return p
}

func (p *PacmanProvider) Name() string {
	return "pacman"
}

func (p *PacmanProvider) Source() syspkg.Source {
	return syspkg.SourceRepo
}

// Search searches the sync databases with pacman -Ss
func (p *PacmanProvider) Search(ctx context.Context, term string, onItem func(syspkg.Package)) ([]syspkg.Package, error) {
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

	err := streamLines(ctx, p.runner, p.bin, []string{"--color", "never", "-Ss", strings.TrimSpace(term)}, parser.Feed)
	parser.Close()
	if err != nil {
		return pkgs, fmt.Errorf("pacman search failed: %w", err)
	}
	return pkgs, nil
}

// InstalledNames lists every installed package name (pacman -Qq)
func (p *PacmanProvider) InstalledNames(ctx context.Context) ([]string, error) {
	stdout, stderr, err := p.runner.RunCommandWithOutput(ctx, p.bin, "--color", "never", "-Qq")
	if err := classify(ctx, p.bin, err, stderr); err != nil {
		return nil, fmt.Errorf("pacman -Qq failed: %w", err)
	}
	return syspkg.ParseNames(stdout), nil
}

// Explicit lists explicitly installed packages: native (-Qen) ones are
// reported as pacman packages, foreign (-Qem) ones as yay packages.
func (p *PacmanProvider) Explicit(ctx context.Context, kind syspkg.ExplicitKind, onItem func(syspkg.Package)) ([]syspkg.Package, error) {
	flag, source := "-Qen", syspkg.SourceRepo
	if kind == syspkg.ExplicitForeign {
		flag, source = "-Qem", syspkg.SourceAUR
	}

	var pkgs []syspkg.Package
	err := streamLines(ctx, p.runner, p.bin, []string{"--color", "never", flag}, func(line string) {
		pkg, ok := syspkg.ParseInstalledLine(line)
		if !ok {
			return
		}
		pkg.Source = source
		pkgs = append(pkgs, pkg)
		if onItem != nil {
			onItem(pkg)
		}
	})
	if err != nil {
		return pkgs, fmt.Errorf("pacman %s failed: %w", flag, err)
	}
	return pkgs, nil
}

// Updates lists pending repository upgrades (pacman -Qu)
func (p *PacmanProvider) Updates(ctx context.Context, onItem func(syspkg.Update)) ([]syspkg.Update, error) {
	var updates []syspkg.Update
	err := streamLines(ctx, p.runner, p.bin, []string{"--color", "never", "-Qu"}, func(line string) {
		u, ok := syspkg.ParseUpdateLine(line)
		if !ok {
			return
		}
		u.Source = syspkg.SourceRepo
		updates = append(updates, u)
		if onItem != nil {
			onItem(u)
		}
	})
	if err != nil {
		return updates, fmt.Errorf("pacman -Qu failed: %w", err)
	}
	return updates, nil
}

// Details retrieves sync database information (pacman -Si)
func (p *PacmanProvider) Details(ctx context.Context, name string) (*syspkg.Details, error) {
	stdout, stderr, err := p.runner.RunCommandWithOutput(ctx, p.bin, "--color", "never", "-Si", name)
	if err := detailsError(ctx, p.bin, name, err, stdout, stderr); err != nil {
		return nil, err
	}

	d := syspkg.ParseDetails(stdout)
	if d.Name == "" {
		d.Name = name
	}
	d.Source = syspkg.SourceRepo
	return d, nil
}

// IsInstalled checks if a package is installed
func (p *PacmanProvider) IsInstalled(ctx context.Context, pkgName string) (bool, error) {
	_, err := p.runner.RunCommand(ctx, p.bin, "-Qi", pkgName)
	if err != nil {
		if helpers.IsNotFound(err) {
			return false, fmt.Errorf("%s: %w", p.bin, syspkg.ErrToolNotFound)
		}
		return false, nil // Not installed
	}
	return true, nil
}

// ListFiles lists files owned by the package
func (p *PacmanProvider) ListFiles(ctx context.Context, pkgName string) ([]string, error) {
	output, err := p.runner.RunCommand(ctx, p.bin, "-Ql", pkgName)
	if err != nil {
		return nil, err
	}

	var files []string
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		// Format: "pkgname /path/to/file"
		parts := strings.Fields(line)
		if len(parts) >= 2 {
			files = append(files, parts[1])
		}
	}

	return files, nil
}
