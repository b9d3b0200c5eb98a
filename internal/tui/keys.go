package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab     key.Binding
	PrevTab     key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Toggle      key.Binding
	ToggleAll   key.Binding
	Focus       key.Binding
	Submit      key.Binding
	Back        key.Binding
	Source      key.Binding
	Refresh     key.Binding
	Install     key.Binding
	Remove      key.Binding
	Update      key.Binding
	UpdateAll   key.Binding
	Settings    key.Binding
	DetailsUp   key.Binding
	DetailsDown key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		End:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		ToggleAll:   key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		Focus:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Source:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "source")),
		Refresh:     key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Install:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "install selected")),
		Remove:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "uninstall selected")),
		Update:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update selected")),
		UpdateAll:   key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "update all")),
		Settings:    key.NewBinding(key.WithKeys("f2", "ctrl+o"), key.WithHelp("f2", "settings")),
		DetailsUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "scroll details")),
		DetailsDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "scroll details")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// forTab enables the bindings that make sense on the given tab
func (k *keyMap) forTab(t tab) {
	k.Install.SetEnabled(t == tabSearch)
	k.DetailsUp.SetEnabled(t == tabSearch)
	k.DetailsDown.SetEnabled(t == tabSearch)
	k.Remove.SetEnabled(t == tabInstalled)
	k.Update.SetEnabled(t == tabUpdates)
	k.UpdateAll.SetEnabled(t == tabUpdates)
	k.Refresh.SetEnabled(t != tabSearch)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Focus, k.Toggle, k.Install, k.Remove, k.Update, k.UpdateAll, k.Settings, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Toggle, k.ToggleAll, k.Focus, k.Submit, k.Back, k.Source},
		{k.Install, k.Remove, k.Update, k.UpdateAll, k.Refresh},
		{k.NextTab, k.PrevTab, k.DetailsUp, k.DetailsDown, k.Settings, k.Help, k.Quit},
	}
}
