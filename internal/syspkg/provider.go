package syspkg

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Source identifies which tool a package belongs to
type Source string

const (
	// SourceRepo marks packages from the official repositories (pacman)
	SourceRepo Source = "pacman"
	// SourceAUR marks packages from the Arch User Repository (yay)
	SourceAUR Source = "yay"
)

// Label returns the display name used in lists and filters
func (s Source) Label() string {
	switch s {
	case SourceRepo:
		return "Pacman"
	case SourceAUR:
		return "Yay"
	default:
		return string(s)
	}
}

// SourceFromRepo maps a repository name from search output to a Source
func SourceFromRepo(repo string) Source {
	if strings.EqualFold(repo, "aur") {
		return SourceAUR
	}
	return SourceRepo
}

// ParseSource parses a source filter value. The empty string and "all"
// yield an empty Source, meaning no restriction.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "pacman", "repo":
		return SourceRepo, nil
	case "yay", "aur":
		return SourceAUR, nil
	default:
		return "", fmt.Errorf("unknown source %q (want all, pacman or yay)", s)
	}
}

// Package is a search hit or an installed package
type Package struct {
	Repo        string `json:"repo,omitempty"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Source      Source `json:"source"`
}

// Update is a pending upgrade reported by -Qu / -Qua
type Update struct {
	Name    string `json:"name"`
	Current string `json:"current"`
	New     string `json:"new"`
	Source  Source `json:"source"`
	Ignored bool   `json:"ignored,omitempty"`
}

// Field is one "Key : Value" pair from -Si output
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Details contains the parsed -Si output for one package
type Details struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Repo        string   `json:"repo"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Licenses    []string `json:"licenses,omitempty"`
	Depends     []string `json:"depends,omitempty"`
	Source      Source   `json:"source"`
	Fields      []Field  `json:"fields"`
}

// ExplicitKind selects native (-Qen) or foreign (-Qem) explicit packages
type ExplicitKind int

const (
	// ExplicitNative lists explicitly installed packages from sync databases
	ExplicitNative ExplicitKind = iota
	// ExplicitForeign lists explicitly installed packages not in any sync database
	ExplicitForeign
)

var (
	// ErrToolNotFound is returned when pacman or yay is not on PATH
	ErrToolNotFound = errors.New("package tool not found")
	// ErrInvalidTerm is returned for search terms the tools would misread
	ErrInvalidTerm = errors.New("invalid search term")
	// ErrPackageNotFound is returned when -Si knows nothing about a package
	ErrPackageNotFound = errors.New("package not found")
	// ErrYayUnavailable is returned when yay is missing or cannot start
	ErrYayUnavailable = errors.New("yay is not available")
)

// Provider defines the read-only queries shared by pacman and yay.
// Mutating operations never go through a Provider: they need a TTY and
// are planned by the plan package and run by the terminal package.
type Provider interface {
	// Name returns the provider name ("pacman" or "yay")
	Name() string

	// Source returns the package source this provider reports
	Source() Source

	// Search runs -Ss; onItem, when non-nil, receives hits as they stream in
	Search(ctx context.Context, term string, onItem func(Package)) ([]Package, error)

	// Updates runs -Qu (pacman) or -Qua (yay)
	Updates(ctx context.Context, onItem func(Update)) ([]Update, error)

	// Details runs -Si for one package
	Details(ctx context.Context, name string) (*Details, error)
}
