// Package plan turns a package selection into the pacman and yay commands
// that carry it out.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/quantmind-br/pacfront/internal/security"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

// ErrNothingSelected is returned when an action is requested with an empty selection
var ErrNothingSelected = errors.New("nothing selected")

// ErrYayUnavailable is returned when only AUR packages are selected and yay cannot run
var ErrYayUnavailable = syspkg.ErrYayUnavailable

// Action names what a plan does
type Action string

const (
	ActionInstall    Action = "install"
	ActionUpdate     Action = "update"
	ActionRemove     Action = "remove"
	ActionUpgradeAll Action = "upgrade"
)

// Tools names the executables plans invoke
type Tools struct {
	Pacman string
	Yay    string
	Sudo   string
}

// DefaultTools returns the stock executable names
func DefaultTools() Tools {
	return Tools{Pacman: "pacman", Yay: "yay", Sudo: "sudo"}
}

// Item is one selected package
type Item struct {
	Name   string
	Source syspkg.Source
}

// FromPackages converts selected packages to plan items
func FromPackages(pkgs []syspkg.Package) []Item {
	items := make([]Item, 0, len(pkgs))
	for _, p := range pkgs {
		items = append(items, Item{Name: p.Name, Source: p.Source})
	}
	return items
}

// FromUpdates converts selected updates to plan items
func FromUpdates(updates []syspkg.Update) []Item {
	items := make([]Item, 0, len(updates))
	for _, u := range updates {
		items = append(items, Item{Name: u.Name, Source: u.Source})
	}
	return items
}

// Step is one external command. Sudo names the elevation command and is
// empty when the tool runs as the invoking user.
type Step struct {
	Tool     string
	Args     []string
	Packages []string
	Sudo     string
}

// Argv returns the full argument vector, elevation included
func (s Step) Argv() []string {
	argv := make([]string, 0, len(s.Args)+len(s.Packages)+2)
	if s.Sudo != "" {
		argv = append(argv, s.Sudo)
	}
	argv = append(argv, s.Tool)
	argv = append(argv, s.Args...)
	argv = append(argv, s.Packages...)
	return argv
}

// String renders the step as a shell-quoted command line
func (s Step) String() string {
	return shellquote.Join(s.Argv()...)
}

// Plan is the ordered list of commands an action runs. When Degraded is
// set the plan deviates from what was asked (yay is unavailable) and the
// caller must confirm it; Dropped lists packages the plan leaves out.
type Plan struct {
	Action   Action
	Steps    []Step
	Dropped  []string
	Degraded bool
}

// Packages returns every package the plan touches, in step order
func (p *Plan) Packages() []string {
	var names []string
	for _, s := range p.Steps {
		names = append(names, s.Packages...)
	}
	return names
}

// Commands renders each step on its own
func (p *Plan) Commands() []string {
	cmds := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		cmds = append(cmds, s.String())
	}
	return cmds
}

// Script joins the steps so each runs only if the previous one succeeded
func (p *Plan) Script() string {
	return strings.Join(p.Commands(), " && ")
}

func (p *Plan) String() string {
	return p.Script()
}

// Warning describes how a degraded plan differs from the request
func (p *Plan) Warning() string {
	if !p.Degraded {
		return ""
	}
	switch {
	case p.Action == ActionUpgradeAll:
		return "yay is not available: only repository packages will be upgraded via pacman"
	case p.Action == ActionRemove:
		return "yay is not available: every package will be removed via pacman"
	case len(p.Dropped) > 0:
		return fmt.Sprintf("yay is not available: skipping AUR packages %s", strings.Join(p.Dropped, ", "))
	default:
		return "yay is not available"
	}
}

// Planner builds plans for a set of tools
type Planner struct {
	tools Tools
}

// New creates a Planner. Empty tool names fall back to the defaults.
func New(tools Tools) *Planner {
	def := DefaultTools()
	if tools.Pacman == "" {
		tools.Pacman = def.Pacman
	}
	if tools.Yay == "" {
		tools.Yay = def.Yay
	}
	if tools.Sudo == "" {
		tools.Sudo = def.Sudo
	}
	return &Planner{tools: tools}
}

// Tools returns the executables this planner uses
func (p *Planner) Tools() Tools {
	return p.tools
}

// Install plans installation: repository packages through
// "sudo pacman -S --needed", AUR packages through "yay -S".
func (p *Planner) Install(items []Item, yayUsable bool) (*Plan, error) {
	return p.sync(ActionInstall, items, yayUsable, []string{"-S"})
}

// UpdateSelected plans upgrading selected packages. Both tools get --needed.
func (p *Planner) UpdateSelected(items []Item, yayUsable bool) (*Plan, error) {
	return p.sync(ActionUpdate, items, yayUsable, []string{"-S", "--needed"})
}

func (p *Planner) sync(action Action, items []Item, yayUsable bool, yayArgs []string) (*Plan, error) {
	repo, aur, err := split(items)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Action: action}
	if !yayUsable && len(aur) > 0 {
		if len(repo) == 0 {
			return nil, fmt.Errorf("%w: cannot handle AUR packages %s", ErrYayUnavailable, strings.Join(aur, ", "))
		}
		plan.Degraded = true
		plan.Dropped = aur
		aur = nil
	}

	if len(repo) > 0 {
		plan.Steps = append(plan.Steps, p.pacman([]string{"-S", "--needed"}, repo))
	}
	if len(aur) > 0 {
		plan.Steps = append(plan.Steps, p.yay(yayArgs, aur))
	}
	return plan, nil
}

// Remove plans removal with -Rns, split by source. Without yay every
// package goes through pacman.
func (p *Planner) Remove(items []Item, yayUsable bool) (*Plan, error) {
	repo, aur, err := split(items)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Action: ActionRemove}
	if !yayUsable {
		all := append(append([]string{}, repo...), aur...)
		plan.Steps = []Step{p.pacman([]string{"-Rns"}, all)}
		plan.Degraded = len(aur) > 0
		return plan, nil
	}

	if len(repo) > 0 {
		plan.Steps = append(plan.Steps, p.pacman([]string{"-Rns"}, repo))
	}
	if len(aur) > 0 {
		plan.Steps = append(plan.Steps, p.yay([]string{"-Rns"}, aur))
	}
	return plan, nil
}

// UpgradeAll plans a full system upgrade: "yay -Syu", or "sudo pacman -Syu"
// when yay cannot run.
func (p *Planner) UpgradeAll(yayUsable bool) *Plan {
	if yayUsable {
		return &Plan{Action: ActionUpgradeAll, Steps: []Step{p.yay([]string{"-Syu"}, nil)}}
	}
	return &Plan{
		Action:   ActionUpgradeAll,
		Steps:    []Step{p.pacman([]string{"-Syu"}, nil)},
		Degraded: true,
	}
}

func (p *Planner) pacman(args, pkgs []string) Step {
	return Step{Tool: p.tools.Pacman, Args: args, Packages: pkgs, Sudo: p.tools.Sudo}
}

func (p *Planner) yay(args, pkgs []string) Step {
	return Step{Tool: p.tools.Yay, Args: args, Packages: pkgs}
}

// split validates the selection and separates repository from AUR names,
// dropping duplicates.
func split(items []Item) (repo, aur []string, err error) {
	if len(items) == 0 {
		return nil, nil, ErrNothingSelected
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if err := security.ValidatePackageName(it.Name); err != nil {
			return nil, nil, err
		}
		if _, dup := seen[it.Name]; dup {
			continue
		}
		seen[it.Name] = struct{}{}

		if it.Source == syspkg.SourceAUR {
			aur = append(aur, it.Name)
		} else {
			repo = append(repo, it.Name)
		}
	}
	return repo, aur, nil
}
