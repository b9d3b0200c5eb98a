package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/terminal"
)

// confirmation is the dialog shown before a plan runs
type confirmation struct {
	title string
	plan  *plan.Plan
}

// planned builds a plan in a command; the yay check may spawn yay and must
// stay off the update loop
func (m *Model) planned(t tab, title string, build func(yayUsable bool) (*plan.Plan, error)) tea.Cmd {
	cat := m.deps.Catalog
	ctx := m.ctx
	return func() tea.Msg {
		p, err := build(cat.YayUsable(ctx))
		return planReadyMsg{tab: t, title: title, plan: p, err: err}
	}
}

func (m *Model) installSelected() tea.Cmd {
	var pkgs []syspkg.Package
	for _, idx := range m.search.list.Checked() {
		pkgs = append(pkgs, m.search.items[idx])
	}
	if len(pkgs) == 0 {
		m.search.setStatus("Select at least one package to install.", true)
		return nil
	}
	planner := m.deps.Planner
	return m.planned(tabSearch, "Confirm install", func(yay bool) (*plan.Plan, error) {
		return planner.Install(plan.FromPackages(pkgs), yay)
	})
}

func (m *Model) removeSelected() tea.Cmd {
	var pkgs []syspkg.Package
	for _, idx := range m.installed.list.Checked() {
		pkgs = append(pkgs, m.installed.items[idx])
	}
	if len(pkgs) == 0 {
		m.installed.setStatus("Select at least one package to uninstall.", true)
		return nil
	}
	planner := m.deps.Planner
	return m.planned(tabInstalled, "Confirm uninstall", func(yay bool) (*plan.Plan, error) {
		return planner.Remove(plan.FromPackages(pkgs), yay)
	})
}

func (m *Model) updateSelected() tea.Cmd {
	var updates []syspkg.Update
	for _, idx := range m.updates.list.Checked() {
		updates = append(updates, m.updates.items[idx])
	}
	if len(updates) == 0 {
		m.updates.setStatus("Select at least one package to update.", true)
		return nil
	}
	planner := m.deps.Planner
	return m.planned(tabUpdates, "Confirm update", func(yay bool) (*plan.Plan, error) {
		return planner.UpdateSelected(plan.FromUpdates(updates), yay)
	})
}

func (m *Model) updateAll() tea.Cmd {
	planner := m.deps.Planner
	return m.planned(tabUpdates, "Confirm full update", func(yay bool) (*plan.Plan, error) {
		return planner.UpgradeAll(yay), nil
	})
}

func (m *Model) onPlanReady(msg planReadyMsg) {
	if m.confirm != nil {
		return
	}
	m.propose(msg.title, msg.plan, msg.err, m.stateOf(msg.tab))
}

func (m *Model) propose(title string, p *plan.Plan, err error, state *listState) {
	if err != nil {
		switch {
		case errors.Is(err, plan.ErrYayUnavailable):
			state.setStatus("Yay is not available or broken. AUR packages cannot be handled. Fix yay first.", true)
		case errors.Is(err, plan.ErrNothingSelected):
			state.setStatus("Nothing selected.", true)
		default:
			state.setStatus(err.Error(), true)
		}
		return
	}
	m.confirm = &confirmation{title: title, plan: p}
}

// execute runs a confirmed plan in the configured mode
func (m *Model) execute(p *plan.Plan) tea.Cmd {
	mode, err := terminal.ParseMode(m.deps.Config.Terminal.Mode)
	if err != nil {
		mode = terminal.ModeInline
	}
	id := m.beginHistory(p, mode)

	if mode == terminal.ModeExternal {
		executor := m.deps.Executor
		ctx := m.ctx
		return func() tea.Msg {
			term, err := executor.Launch(ctx, p)
			return launchedMsg{plan: p, historyID: id, terminal: term, err: err}
		}
	}

	cmd, err := m.deps.Executor.InlineCommand(m.ctx, p)
	if err != nil {
		return func() tea.Msg {
			return execDoneMsg{plan: p, historyID: id, err: err}
		}
	}
	m.deps.Log.Info().Str("command", p.Script()).Msg("handing terminal to command")
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return execDoneMsg{plan: p, historyID: id, err: err}
	})
}

func (m *Model) beginHistory(p *plan.Plan, mode terminal.Mode) string {
	if m.deps.History == nil {
		return ""
	}
	e, err := m.deps.History.Begin(m.ctx, string(p.Action), p.Script(), p.Packages(), string(mode))
	if err != nil {
		m.deps.Log.Warn().Err(err).Msg("failed to record history")
		return ""
	}
	return e.ID
}

func (m *Model) finishHistory(id string, exitCode int, runErr error) {
	if m.deps.History == nil || id == "" {
		return
	}
	if err := m.deps.History.Finish(m.ctx, id, exitCode, runErr); err != nil {
		m.deps.Log.Warn().Err(err).Str("id", id).Msg("failed to finish history entry")
	}
}

func (m *Model) onExecDone(msg execDoneMsg) tea.Cmd {
	code := helpers.ExitCode(msg.err)
	m.finishHistory(msg.historyID, code, msg.err)

	state := m.activeState()
	if msg.err != nil {
		state.setStatus(fmt.Sprintf("Command failed (exit %d): %s", code, msg.plan.Script()), true)
	} else {
		state.setStatus("Operation complete: "+msg.plan.Script(), false)
	}
	return m.afterMutation()
}

func (m *Model) onLaunched(msg launchedMsg) tea.Cmd {
	m.finishHistory(msg.historyID, -1, msg.err)

	state := m.activeState()
	if msg.err != nil {
		state.setStatus("Terminal error: "+msg.err.Error(), true)
		return nil
	}
	state.setStatus(fmt.Sprintf("Launched in %s: %s", msg.terminal, msg.plan.Script()), false)
	m.deps.Catalog.InvalidateInstalled()
	m.markStale()
	return nil
}

// afterMutation drops cached installed state, clears selections and
// refreshes the visible tab
func (m *Model) afterMutation() tea.Cmd {
	m.deps.Catalog.InvalidateInstalled()
	m.search.list.ClearChecks()
	m.installed.list.ClearChecks()
	m.updates.list.ClearChecks()
	m.markStale()
	return m.refreshVisible()
}

func (m *Model) markStale() {
	m.search.stale = m.search.loaded
	m.installed.stale = m.installed.loaded
	m.updates.stale = m.updates.loaded
}

// refreshVisible reloads the active tab when it is stale or never loaded
func (m *Model) refreshVisible() tea.Cmd {
	switch m.active {
	case tabSearch:
		if m.search.stale && m.search.term != "" {
			m.search.stale = false
			return m.startSearch(m.search.term)
		}
	case tabInstalled:
		if m.installed.stale || !m.installed.loaded && !m.installed.loading {
			return m.loadInstalled()
		}
	case tabUpdates:
		if m.updates.stale || !m.updates.loaded && !m.updates.loading {
			return m.loadUpdates()
		}
	}
	return nil
}
