package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/filter"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

type tab int

const (
	tabSearch tab = iota
	tabInstalled
	tabUpdates
)

var tabTitles = []string{"Search & Install", "Installed Packages", "Update"}

func (t tab) String() string {
	return tabTitles[t]
}

// listState is what the three tabs share
type listState struct {
	input   textinput.Model
	list    checkList
	source  syspkg.Source
	gen     int
	loading bool
	loaded  bool
	stale   bool
	status  string
	failed  bool
}

func (s *listState) setStatus(text string, failed bool) {
	s.status = text
	s.failed = failed
}

type searchTab struct {
	listState
	term  string
	items []syspkg.Package
}

type installedTab struct {
	listState
	items []syspkg.Package
}

type updatesTab struct {
	listState
	items []syspkg.Update
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "› "
	in.CharLimit = 255
	return in
}

func packageKey(source syspkg.Source, name string) string {
	return string(source) + "/" + name
}

func nextSource(s syspkg.Source) syspkg.Source {
	switch s {
	case "":
		return syspkg.SourceRepo
	case syspkg.SourceRepo:
		return syspkg.SourceAUR
	default:
		return ""
	}
}

func sourceLabel(s syspkg.Source) string {
	if s == "" {
		return "All"
	}
	return s.Label()
}

// resultStatus describes per-source failures next to a summary
func resultStatus(summary string, errs []error) (string, bool) {
	if len(errs) == 0 {
		return summary, false
	}
	for _, err := range errs {
		summary += " " + err.Error()
	}
	return summary, true
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// --- search ---

func (m *Model) startSearch(term string) tea.Cmd {
	s := &m.search

	s.gen++
	gen := s.gen
	s.term = term
	s.items = nil
	s.list.SetRows(nil, nil)
	s.loading = true
	s.setStatus("Searching repos + AUR...", false)
	m.detailsFor = ""
	m.details.SetContent("")

	cat := m.deps.Catalog
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, stream(func(emit func(tea.Msg)) {
		res, err := cat.Search(ctx, term, func(b catalog.Batch[syspkg.Package]) {
			emit(searchBatchMsg{gen: gen, batch: b})
		})
		emit(searchDoneMsg{gen: gen, result: res, err: err})
	}))
}

func (m *Model) onSearchBatch(msg searchBatchMsg) tea.Cmd {
	s := &m.search
	if msg.gen != s.gen || msg.batch.Err != nil {
		return nil
	}
	s.items = append(s.items, msg.batch.Items...)
	m.refreshSearchRows()
	s.setStatus(fmt.Sprintf("Searching repos + AUR... %d so far", len(s.items)), false)
	return m.requestDetails()
}

func (m *Model) onSearchDone(msg searchDoneMsg) tea.Cmd {
	s := &m.search
	if msg.gen != s.gen {
		return nil
	}
	s.loading = false
	s.loaded = true

	if msg.err != nil {
		if isCancelled(msg.err) {
			return nil
		}
		s.setStatus("Search failed: "+msg.err.Error(), true)
		return nil
	}

	s.items = msg.result.Items
	m.refreshSearchRows()

	summary := "No packages found."
	if n := len(s.items); n > 0 {
		summary = fmt.Sprintf("Found %d package(s).", n)
		if msg.result.Truncated {
			summary += fmt.Sprintf(" Showing the first %d.", n)
		}
	}
	s.setStatus(resultStatus(summary, msg.result.Errors))
	return m.requestDetails()
}

func (m *Model) refreshSearchRows() {
	s := &m.search
	keys := make([]string, len(s.items))
	rows := make([][]string, len(s.items))
	for i, p := range s.items {
		keys[i] = packageKey(p.Source, p.Name)
		rows[i] = []string{p.Name, p.Version, p.Source.Label()}
	}
	s.list.SetRows(keys, rows)
	m.applySearchFilter()
}

func (m *Model) applySearchFilter() {
	q := filter.Query{Source: m.search.source}
	m.search.list.SetVisible(filter.Indices(m.search.items, q.MatchPackage))
}

// --- installed ---

func (m *Model) loadInstalled() tea.Cmd {
	s := &m.installed
	s.gen++
	gen := s.gen
	s.items = nil
	s.list.SetRows(nil, nil)
	s.loading = true
	s.stale = false
	s.setStatus("Loading installed packages...", false)

	cat := m.deps.Catalog
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, stream(func(emit func(tea.Msg)) {
		res, err := cat.Installed(ctx, func(b catalog.Batch[syspkg.Package]) {
			emit(installedBatchMsg{gen: gen, batch: b})
		})
		emit(installedDoneMsg{gen: gen, result: res, err: err})
	}))
}

func (m *Model) onInstalledBatch(msg installedBatchMsg) {
	s := &m.installed
	if msg.gen != s.gen || msg.batch.Err != nil {
		return
	}
	s.items = append(s.items, msg.batch.Items...)
	m.refreshInstalledRows()
	s.setStatus(fmt.Sprintf("Loaded %d installed package(s)...", len(s.items)), false)
}

func (m *Model) onInstalledDone(msg installedDoneMsg) {
	s := &m.installed
	if msg.gen != s.gen {
		return
	}
	s.loading = false
	if msg.err != nil {
		if !isCancelled(msg.err) {
			s.setStatus("Error: "+msg.err.Error(), true)
		}
		return
	}
	s.loaded = true
	s.items = msg.result.Items
	m.refreshInstalledRows()

	summary := "No explicitly installed packages found."
	if n := len(s.items); n > 0 {
		summary = fmt.Sprintf("Found %d package(s).", n)
	}
	s.setStatus(resultStatus(summary, msg.result.Errors))
}

func (m *Model) refreshInstalledRows() {
	s := &m.installed
	keys := make([]string, len(s.items))
	rows := make([][]string, len(s.items))
	for i, p := range s.items {
		keys[i] = packageKey(p.Source, p.Name)
		rows[i] = []string{p.Name, p.Version, p.Source.Label()}
	}
	s.list.SetRows(keys, rows)
	m.applyInstalledFilter()
}

func (m *Model) applyInstalledFilter() {
	q := filter.Query{
		Text:   m.installed.input.Value(),
		Source: m.installed.source,
		Fuzzy:  m.deps.Config.UI.FuzzyFilter,
	}
	m.installed.list.SetVisible(filter.Indices(m.installed.items, q.MatchPackage))
}

// --- updates ---

func (m *Model) loadUpdates() tea.Cmd {
	s := &m.updates
	s.gen++
	gen := s.gen
	s.items = nil
	s.list.SetRows(nil, nil)
	s.loading = true
	s.stale = false
	s.setStatus("Checking for updates...", false)

	cat := m.deps.Catalog
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, stream(func(emit func(tea.Msg)) {
		res, err := cat.Updates(ctx, func(b catalog.Batch[syspkg.Update]) {
			emit(updatesBatchMsg{gen: gen, batch: b})
		})
		emit(updatesDoneMsg{gen: gen, result: res, err: err})
	}))
}

func (m *Model) onUpdatesBatch(msg updatesBatchMsg) {
	s := &m.updates
	if msg.gen != s.gen || msg.batch.Err != nil {
		return
	}
	s.items = catalog.DedupeUpdates(append(s.items, msg.batch.Items...))
	m.refreshUpdateRows()
	repo, aur := countUpdates(s.items)
	s.setStatus(fmt.Sprintf("Updates: Repo %d, AUR %d (loading...)", repo, aur), false)
}

func (m *Model) onUpdatesDone(msg updatesDoneMsg) {
	s := &m.updates
	if msg.gen != s.gen {
		return
	}
	s.loading = false
	if msg.err != nil {
		if !isCancelled(msg.err) {
			s.setStatus("Update check failed: "+msg.err.Error(), true)
		}
		return
	}
	s.loaded = true
	s.items = msg.result.Items
	m.refreshUpdateRows()

	summary := "Your system is fully updated"
	if n := len(s.items); n > 0 {
		repo, aur := countUpdates(s.items)
		summary = fmt.Sprintf("Found %d update(s): %d repo, %d AUR.", n, repo, aur)
	}
	s.setStatus(resultStatus(summary, msg.result.Errors))
}

func countUpdates(updates []syspkg.Update) (repo, aur int) {
	for _, u := range updates {
		if u.Source == syspkg.SourceAUR {
			aur++
		} else {
			repo++
		}
	}
	return repo, aur
}

func (m *Model) refreshUpdateRows() {
	s := &m.updates
	keys := make([]string, len(s.items))
	rows := make([][]string, len(s.items))
	for i, u := range s.items {
		keys[i] = packageKey(u.Source, u.Name)
		newVersion := u.New
		if u.Ignored {
			newVersion += " [ignored]"
		}
		rows[i] = []string{u.Name, u.Current, newVersion, u.Source.Label()}
	}
	s.list.SetRows(keys, rows)
	m.applyUpdatesFilter()
}

func (m *Model) applyUpdatesFilter() {
	q := filter.Query{
		Text:   m.updates.input.Value(),
		Source: m.updates.source,
		Fuzzy:  m.deps.Config.UI.FuzzyFilter,
	}
	m.updates.list.SetVisible(filter.Indices(m.updates.items, q.MatchUpdate))
}

// --- details ---

// requestDetails shows what the search row already knows and fetches the
// full -Si record once the cursor settles
func (m *Model) requestDetails() tea.Cmd {
	idx, ok := m.search.list.Current()
	if !ok {
		m.detailsFor = ""
		m.details.SetContent("")
		return nil
	}
	p := m.search.items[idx]
	key := packageKey(p.Source, p.Name)
	if key == m.detailsFor {
		return nil
	}
	m.detailsFor = key
	m.detailsPkg = p
	m.details.SetContent(renderSummary(p, m.details.Width))
	m.details.GotoTop()

	if m.detailsDelay <= 0 {
		return m.fetchDetails(p, key)
	}
	return tea.Tick(m.detailsDelay, func(time.Time) tea.Msg {
		return detailsSettledMsg{key: key}
	})
}

func (m *Model) onDetailsSettled(msg detailsSettledMsg) tea.Cmd {
	if msg.key != m.detailsFor {
		return nil
	}
	return m.fetchDetails(m.detailsPkg, msg.key)
}

func (m *Model) fetchDetails(p syspkg.Package, key string) tea.Cmd {
	cat := m.deps.Catalog
	ctx := m.ctx
	return func() tea.Msg {
		d, err := cat.Details(ctx, p.Source, p.Name)
		return detailsMsg{key: key, details: d, err: err}
	}
}

func (m *Model) onDetails(msg detailsMsg) {
	if msg.key != m.detailsFor {
		return
	}
	p := m.detailsPkg
	if msg.err != nil {
		if isCancelled(msg.err) {
			return
		}
		if p.Description != "" {
			m.deps.Log.Debug().Err(msg.err).Str("package", p.Name).Msg("details unavailable, keeping search summary")
			return
		}
		m.details.SetContent(m.styles.Error.Render("Info fetch error: " + msg.err.Error()))
		return
	}

	d := syspkg.Details{Name: p.Name, Version: p.Version}
	if msg.details != nil {
		d = *msg.details
	}
	if d.Description == "" {
		d.Description = p.Description
	}
	if d.Repo == "" {
		d.Repo = p.Repo
	}
	m.details.SetContent(renderDetails(&d, m.details.Width))
}
