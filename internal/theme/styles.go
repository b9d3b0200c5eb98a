package theme

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles the window renders with
type Styles struct {
	App        lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Input      lipgloss.Style
	Header     lipgloss.Style
	Row        lipgloss.Style
	Cursor     lipgloss.Style
	Checked    lipgloss.Style
	Dim        lipgloss.Style
	Pane       lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
	Button     lipgloss.Style
	Dialog     lipgloss.Style
	DialogText lipgloss.Style
}

// color maps an empty hex to the terminal default
func color(hex string) lipgloss.TerminalColor {
	if hex == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// NewStyles builds Styles from a palette
func NewStyles(p Palette) Styles {
	fg := color(p.Foreground)
	bg := color(p.Background)
	accent := color(p.Accent)
	border := color(p.Border)

	s := Styles{}

	s.App = lipgloss.NewStyle().Foreground(fg).Background(bg)

	s.Tab = lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(fg).
		Background(color(p.Button))
	s.ActiveTab = s.Tab.
		Bold(true).
		Foreground(accent).
		Background(color(p.ButtonHover)).
		Underline(true)

	s.Input = lipgloss.NewStyle().
		Foreground(color(p.InputForeground)).
		Background(color(p.InputBackground)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(border).
		Padding(0, 1)

	s.Header = lipgloss.NewStyle().Bold(true).Foreground(accent)
	s.Row = lipgloss.NewStyle().Foreground(fg).Background(color(p.ListBackground))
	s.Cursor = lipgloss.NewStyle().Bold(true).Reverse(true)
	s.Checked = lipgloss.NewStyle().Foreground(accent).Bold(true)
	s.Dim = lipgloss.NewStyle().Faint(true)

	s.Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	s.Status = lipgloss.NewStyle().
		Foreground(fg).
		Background(color(p.StatusBackground)).
		Padding(0, 1)

	errColor := color(p.Error)
	if p.Error == "" {
		errColor = lipgloss.ANSIColor(1)
	}
	s.Error = lipgloss.NewStyle().Foreground(errColor).Bold(true)

	s.Button = lipgloss.NewStyle().
		Foreground(fg).
		Background(color(p.Button)).
		Padding(0, 1)

	s.Dialog = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	s.DialogText = lipgloss.NewStyle().Foreground(fg)

	return s
}
