// Package tui is the full-screen window: search, installed and update tabs
// with checkbox lists, a details pane and a settings overlay.
package tui

import (
	"context"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/config"
	"github.com/quantmind-br/pacfront/internal/history"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/terminal"
	"github.com/quantmind-br/pacfront/internal/theme"
)

// detailsSettle is how long the cursor must rest on a search row before
// its -Si details are fetched
const detailsSettle = 150 * time.Millisecond

// Executor runs confirmed plans
type Executor interface {
	Options() terminal.Options
	SetOptions(opts terminal.Options)
	Launch(ctx context.Context, p *plan.Plan) (string, error)
	InlineCommand(ctx context.Context, p *plan.Plan) (*exec.Cmd, error)
}

// Recorder stores each plan the window runs
type Recorder interface {
	Begin(ctx context.Context, action, command string, packages []string, mode string) (*history.Entry, error)
	Finish(ctx context.Context, id string, exitCode int, runErr error) error
}

// Deps are the services the window drives
type Deps struct {
	Catalog  *catalog.Catalog
	Planner  *plan.Planner
	Executor Executor
	History  Recorder
	Config   *config.Config
	Fs       afero.Fs
	Log      *zerolog.Logger
	// WatchDir is the pacman local database; empty disables watching
	WatchDir string
}

// Model is the bubbletea model of the window
type Model struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc
	save   func() error

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	details  viewport.Model
	palette  theme.Palette
	styles   theme.Styles
	width    int
	height   int
	active   tab
	typing   bool
	showHelp bool

	search    searchTab
	installed installedTab
	updates   updatesTab

	detailsFor   string
	detailsPkg   syspkg.Package
	detailsDelay time.Duration
	confirm      *confirmation
	settings     *settings

	watcher  *dbWatcher
	watchSeq int
}

// New creates the window model. ctx bounds every query it starts.
func New(ctx context.Context, deps Deps) *Model {
	if deps.Log == nil {
		nop := zerolog.Nop()
		deps.Log = &nop
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	ctx, cancel := context.WithCancel(ctx)

	m := &Model{
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		save:    deps.Config.Save,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		details: viewport.New(40, 10),
		width:   100,
		height:  30,

		detailsDelay: detailsSettle,
	}

	m.search.listState = listState{
		input: newInput("Search packages (Enter to search)"),
		list:  newCheckList(column{"Package", 0}, column{"Version", 22}, column{"Source", 7}),
	}
	m.installed.listState = listState{
		input: newInput("Filter installed packages"),
		list:  newCheckList(column{"Package", 0}, column{"Version", 24}, column{"Source", 7}),
	}
	m.updates.listState = listState{
		input: newInput("Filter updates"),
		list:  newCheckList(column{"Package", 0}, column{"Current", 20}, column{"New", 20}, column{"Source", 7}),
	}

	m.search.setStatus("Ready", false)
	m.installed.setStatus("Installed packages (pacman -Qen/-Qem)", false)
	m.updates.setStatus("Updates (pacman -Qu + yay -Qua)", false)

	m.applyTheme()
	m.keys.forTab(m.active)
	m.focusInput()
	m.layout()

	if deps.WatchDir != "" {
		w, err := newDBWatcher(deps.WatchDir)
		if err != nil {
			deps.Log.Warn().Err(err).Str("dir", deps.WatchDir).Msg("cannot watch pacman database")
		} else {
			m.watcher = w
		}
	}

	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cat := m.deps.Catalog
	ctx := m.ctx
	cmds := []tea.Cmd{textinput.Blink, func() tea.Msg {
		cat.YayUsable(ctx)
		return nil
	}}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.next())
	}
	return tea.Batch(cmds...)
}

// Close cancels every running query and stops the database watcher
func (m *Model) Close() {
	m.deps.Catalog.CancelAll()
	m.cancel()
	if m.watcher != nil {
		m.watcher.Close()
	}
}

func (m *Model) activeState() *listState {
	return m.stateOf(m.active)
}

func (m *Model) stateOf(t tab) *listState {
	switch t {
	case tabInstalled:
		return &m.installed.listState
	case tabUpdates:
		return &m.updates.listState
	default:
		return &m.search.listState
	}
}

func (m *Model) focusInput() tea.Cmd {
	m.typing = true
	return m.activeState().input.Focus()
}

func (m *Model) blurInput() {
	m.typing = false
	m.activeState().input.Blur()
}

func (m *Model) switchTab(t tab) tea.Cmd {
	m.blurInput()
	m.active = t
	m.keys.forTab(t)
	if t == tabSearch && m.search.term == "" {
		return tea.Batch(m.focusInput(), m.refreshVisible())
	}
	return m.refreshVisible()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case streamed:
		_, cmd := m.Update(msg.msg)
		return m, tea.Batch(cmd, msg.next)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchBatchMsg:
		return m, m.onSearchBatch(msg)
	case searchDoneMsg:
		return m, m.onSearchDone(msg)
	case installedBatchMsg:
		m.onInstalledBatch(msg)
		return m, nil
	case installedDoneMsg:
		m.onInstalledDone(msg)
		return m, nil
	case updatesBatchMsg:
		m.onUpdatesBatch(msg)
		return m, nil
	case updatesDoneMsg:
		m.onUpdatesDone(msg)
		return m, nil
	case detailsSettledMsg:
		return m, m.onDetailsSettled(msg)
	case detailsMsg:
		m.onDetails(msg)
		return m, nil
	case planReadyMsg:
		m.onPlanReady(msg)
		return m, nil

	case execDoneMsg:
		return m, m.onExecDone(msg)
	case launchedMsg:
		return m, m.onLaunched(msg)

	case dbChangedMsg:
		if m.watcher == nil {
			return m, nil
		}
		m.watchSeq++
		return m, tea.Batch(settle(m.watchSeq), m.watcher.next())
	case dbSettledMsg:
		if msg.seq != m.watchSeq {
			return m, nil
		}
		m.deps.Log.Debug().Msg("pacman database changed")
		m.deps.Catalog.InvalidateInstalled()
		m.installed.stale = m.installed.loaded
		m.updates.stale = m.updates.loaded
		if m.active == tabSearch {
			return m, nil
		}
		return m, m.refreshVisible()
	case watchErrMsg:
		m.deps.Log.Warn().Err(msg.err).Msg("pacman database watcher error")
		if m.watcher == nil {
			return m, nil
		}
		return m, m.watcher.next()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.typing {
		return m, m.updateInput(msg)
	}
	return m, nil
}

func (m *Model) loading() bool {
	return m.search.loading || m.installed.loading || m.updates.loading
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.Close()
		return tea.Quit
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.settings != nil {
		return m.updateSettings(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.active + 1) % tab(len(tabTitles)))
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.active + tab(len(tabTitles)) - 1) % tab(len(tabTitles)))
	case key.Matches(msg, m.keys.Settings):
		m.blurInput()
		m.settings = &settings{}
		return nil
	}

	if m.typing {
		return m.handleTypingKey(msg)
	}

	state := m.activeState()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
	case key.Matches(msg, m.keys.Focus):
		return m.focusInput()
	case key.Matches(msg, m.keys.Back):
		if state.input.Value() != "" && m.active != tabSearch {
			state.input.SetValue("")
			m.applyFilter()
		}
	case key.Matches(msg, m.keys.Up):
		state.list.Move(-1)
	case key.Matches(msg, m.keys.Down):
		state.list.Move(1)
	case key.Matches(msg, m.keys.PageUp):
		state.list.Move(-state.list.height)
	case key.Matches(msg, m.keys.PageDown):
		state.list.Move(state.list.height)
	case key.Matches(msg, m.keys.Home):
		state.list.Top()
	case key.Matches(msg, m.keys.End):
		state.list.Bottom()
	case key.Matches(msg, m.keys.Toggle):
		state.list.Toggle()
		state.list.Move(1)
	case key.Matches(msg, m.keys.ToggleAll):
		state.list.ToggleAll()
	case key.Matches(msg, m.keys.Source):
		state.source = nextSource(state.source)
		m.applyFilter()
	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	case key.Matches(msg, m.keys.Install):
		return m.installSelected()
	case key.Matches(msg, m.keys.Remove):
		return m.removeSelected()
	case key.Matches(msg, m.keys.Update):
		return m.updateSelected()
	case key.Matches(msg, m.keys.UpdateAll):
		return m.updateAll()
	case key.Matches(msg, m.keys.DetailsUp):
		m.details.HalfPageUp()
	case key.Matches(msg, m.keys.DetailsDown):
		m.details.HalfPageDown()
	}

	if m.active == tabSearch {
		return m.requestDetails()
	}
	return nil
}

func (m *Model) handleTypingKey(msg tea.KeyMsg) tea.Cmd {
	state := m.activeState()
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.active == tabSearch {
			term := state.input.Value()
			if term == "" {
				state.setStatus("Please enter a search term.", true)
				return nil
			}
			m.blurInput()
			return m.startSearch(term)
		}
		m.blurInput()
		return nil
	case key.Matches(msg, m.keys.Back):
		m.blurInput()
		return nil
	case msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		m.blurInput()
		return m.handleKey(msg)
	}
	return m.updateInput(msg)
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	state := m.activeState()
	before := state.input.Value()
	var cmd tea.Cmd
	state.input, cmd = state.input.Update(msg)
	if m.active != tabSearch && state.input.Value() != before {
		m.applyFilter()
	}
	return cmd
}

func (m *Model) applyFilter() {
	switch m.active {
	case tabSearch:
		m.applySearchFilter()
	case tabInstalled:
		m.applyInstalledFilter()
	case tabUpdates:
		m.applyUpdatesFilter()
	}
}

func (m *Model) reload() tea.Cmd {
	switch m.active {
	case tabInstalled:
		m.deps.Catalog.InvalidateInstalled()
		return m.loadInstalled()
	case tabUpdates:
		return m.loadUpdates()
	}
	return nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		p := m.confirm.plan
		m.confirm = nil
		return m.execute(p)
	case "n", "N", "esc", "q":
		m.confirm = nil
		m.activeState().setStatus("Cancelled.", false)
	}
	return nil
}

// Run opens the window on the current terminal and blocks until it closes
func Run(ctx context.Context, deps Deps) error {
	m := New(ctx, deps)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
