package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quantmind-br/pacfront/internal/syspkg"
)

const (
	tabBarHeight  = 1
	inputHeight   = 3
	toolbarHeight = 1
	statusHeight  = 1
	minPaneWidth  = 90
)

func (m *Model) showPane() bool {
	return m.active == tabSearch && m.width >= minPaneWidth
}

// layout sizes the lists and the details pane for the current window
func (m *Model) layout() {
	helpHeight := 1
	if m.showHelp {
		helpHeight = 5
	}
	listHeight := max(3, m.height-tabBarHeight-inputHeight-toolbarHeight-statusHeight-helpHeight-1)

	listWidth := m.width
	if m.width >= minPaneWidth {
		paneWidth := m.width / 3
		m.details.Width = paneWidth - 4
		m.details.Height = listHeight - 1
		m.search.list.SetSize(m.width-paneWidth-1, listHeight)
	} else {
		m.search.list.SetSize(listWidth, listHeight)
	}
	m.installed.list.SetSize(listWidth, listHeight)
	m.updates.list.SetSize(listWidth, listHeight)

	for _, s := range []*listState{&m.search.listState, &m.installed.listState, &m.updates.listState} {
		s.input.Width = max(10, m.width-8)
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.settings != nil {
		return m.settingsView()
	}
	if m.confirm != nil {
		return m.confirmView()
	}

	state := m.activeState()

	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(m.styles.Input.Width(max(10, m.width-2)).Render(state.input.View()))
	b.WriteString("\n")
	b.WriteString(m.toolbar(state))
	b.WriteString("\n")

	list := state.list.View(m.styles, !m.typing, m.emptyText())
	if m.showPane() {
		pane := m.styles.Pane.
			Width(m.details.Width + 2).
			Height(m.details.Height).
			Render(m.details.View())
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, " ", pane)
	}
	b.WriteString(list)
	b.WriteString("\n")

	b.WriteString(m.statusLine(state))
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return m.styles.App.Render(b.String())
}

func (m *Model) tabBar() string {
	tabs := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		if tab(i) == m.active {
			tabs[i] = m.styles.ActiveTab.Render(title)
		} else {
			tabs[i] = m.styles.Tab.Render(title)
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	gear := m.styles.Tab.Render("⚙ F2")
	gap := max(1, m.width-lipgloss.Width(bar)-lipgloss.Width(gear))
	return bar + strings.Repeat(" ", gap) + gear
}

func (m *Model) toolbar(state *listState) string {
	parts := []string{"Source: " + sourceLabel(state.source) + " (s)"}
	if n := state.list.CheckedCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	parts = append(parts, fmt.Sprintf("%d shown", state.list.Len()))

	switch m.active {
	case tabSearch:
		parts = append(parts, m.styles.Button.Render("Install Selected (i)"))
	case tabInstalled:
		parts = append(parts, m.styles.Button.Render("Refresh (r)"), m.styles.Button.Render("Uninstall Selected (x)"))
	case tabUpdates:
		parts = append(parts,
			m.styles.Button.Render("Check (r)"),
			m.styles.Button.Render("Update Selected (u)"),
			m.styles.Button.Render("Update All (U)"))
	}
	if m.deps.Config.Terminal.Mode == "external" {
		parts = append(parts, m.styles.Dim.Render("external terminal"))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) emptyText() string {
	switch m.active {
	case tabSearch:
		if m.search.term == "" {
			return "Type a package name and press Enter."
		}
		return "No packages."
	case tabInstalled:
		return "No installed packages to show."
	default:
		return "No updates to show."
	}
}

func (m *Model) statusLine(state *listState) string {
	text := state.status
	if state.loading {
		text = m.spinner.View() + " " + text
	}
	style := m.styles.Status
	if state.failed {
		style = m.styles.Error
	}
	return style.Width(m.width).Render(text)
}

func (m *Model) confirmView() string {
	p := m.confirm.plan

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.confirm.title))
	b.WriteString("\n\n")
	if w := p.Warning(); w != "" {
		b.WriteString(m.styles.Error.Render(w))
		b.WriteString("\n\n")
	}
	b.WriteString(m.styles.DialogText.Render("Run:"))
	b.WriteString("\n")
	for _, c := range p.Commands() {
		b.WriteString("  " + c + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render("y / enter to run • n / esc to cancel"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.styles.Dialog.Render(b.String()))
}

// renderSummary shows a search row before its -Si record arrives
func renderSummary(p syspkg.Package, width int) string {
	d := &syspkg.Details{Name: p.Name, Version: p.Version, Repo: p.Repo, Description: p.Description}
	if p.Description == "" {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Name + " " + p.Version))
		b.WriteString("\n\nFetching description…")
		if p.Repo != "" {
			b.WriteString("\n\nRepository: " + p.Repo)
		}
		return b.String()
	}
	return renderDetails(d, width)
}

// renderDetails formats -Si output for the details pane
func renderDetails(d *syspkg.Details, width int) string {
	if d == nil {
		return "No description available."
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(d.Name + " " + d.Version))
	b.WriteString("\n\n")

	wrap := lipgloss.NewStyle().Width(max(10, width))
	if d.Description != "" {
		b.WriteString(wrap.Render(d.Description))
	} else {
		b.WriteString("No description available.")
	}
	if d.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(d.URL)
	}
	if d.Repo != "" {
		b.WriteString("\n\nRepository: " + d.Repo)
	}
	if len(d.Licenses) > 0 {
		b.WriteString("\nLicenses: " + strings.Join(d.Licenses, ", "))
	}
	if len(d.Depends) > 0 {
		b.WriteString("\n\n")
		b.WriteString(wrap.Render("Depends on: " + strings.Join(d.Depends, " ")))
	}
	return b.String()
}
