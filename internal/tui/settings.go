package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quantmind-br/pacfront/internal/config"
	"github.com/quantmind-br/pacfront/internal/terminal"
	"github.com/quantmind-br/pacfront/internal/theme"
)

const (
	settingKeepOpen = iota
	settingMode
	settingTheme
	settingRestore
	settingCount
)

// settings is the overlay opened with the gear key
type settings struct {
	cursor int
}

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	s := m.settings
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Settings):
		m.settings = nil
	case key.Matches(msg, m.keys.Up):
		s.cursor = (s.cursor + settingCount - 1) % settingCount
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.NextTab):
		s.cursor = (s.cursor + 1) % settingCount
	case msg.String() == "left" || msg.String() == "h":
		m.changeSetting(s.cursor, -1)
	case msg.String() == "right" || msg.String() == "l",
		key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Submit):
		m.changeSetting(s.cursor, 1)
	}
	return nil
}

func (m *Model) changeSetting(which, dir int) {
	cfg := m.deps.Config
	switch which {
	case settingKeepOpen:
		cfg.Terminal.KeepOpen = !cfg.Terminal.KeepOpen
	case settingMode:
		if cfg.Terminal.Mode == string(terminal.ModeExternal) {
			cfg.Terminal.Mode = string(terminal.ModeInline)
		} else {
			cfg.Terminal.Mode = string(terminal.ModeExternal)
		}
	case settingTheme:
		names := theme.Names()
		cur := 0
		if canonical, ok := theme.Canonical(cfg.UI.Theme); ok {
			for i, n := range names {
				if n == canonical {
					cur = i
				}
			}
		}
		cfg.UI.Theme = names[(cur+dir+len(names))%len(names)]
	case settingRestore:
		def := config.Default()
		cfg.Terminal.KeepOpen = def.Terminal.KeepOpen
		cfg.Terminal.Mode = def.Terminal.Mode
		cfg.UI.Theme = def.UI.Theme
	}
	m.applySettings()
}

// applySettings pushes the config into the launcher and styles, then saves it
func (m *Model) applySettings() {
	cfg := m.deps.Config

	opts := m.deps.Executor.Options()
	opts.KeepOpen = cfg.Terminal.KeepOpen
	m.deps.Executor.SetOptions(opts)

	m.applyTheme()

	if err := m.save(); err != nil {
		m.deps.Log.Error().Err(err).Msg("failed to save settings")
		m.activeState().setStatus("Could not save settings: "+err.Error(), true)
		return
	}
	m.deps.Log.Debug().
		Bool("keep_open", cfg.Terminal.KeepOpen).
		Str("mode", cfg.Terminal.Mode).
		Str("theme", cfg.UI.Theme).
		Msg("settings saved")
}

func (m *Model) applyTheme() {
	cfg := m.deps.Config
	p, err := theme.Resolve(m.deps.Fs, cfg.UI.Theme, cfg.UI.CustomThemeFile)
	if err != nil {
		m.activeState().setStatus("Theme error: "+err.Error(), true)
	}
	m.palette = p
	m.styles = theme.NewStyles(p)
}

func (m *Model) settingsView() string {
	cfg := m.deps.Config
	check := func(b bool) string {
		if b {
			return "[x]"
		}
		return "[ ]"
	}

	mode := cfg.Terminal.Mode
	if mode == "" {
		mode = string(terminal.ModeInline)
	}

	rows := []string{
		fmt.Sprintf("%s Keep terminal open after commands", check(cfg.Terminal.KeepOpen)),
		fmt.Sprintf("Execution mode:  ‹ %s ›", mode),
		fmt.Sprintf("Theme:           ‹ %s ›", cfg.UI.Theme),
		"Restore defaults",
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Settings"))
	b.WriteString("\n\n")
	for i, r := range rows {
		if i == m.settings.cursor {
			b.WriteString(m.styles.Cursor.Render("› " + r))
		} else {
			b.WriteString("  " + r)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render("↑/↓ move • ←/→ change • space toggle • esc close"))
	if f := cfg.File(); f != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Dim.Render("Saved to " + f))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.styles.Dialog.Render(b.String()))
}
