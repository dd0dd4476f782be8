package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the normal-mode bindings.
type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding

	Copy       key.Binding
	Search     key.Binding
	CaseMode   key.Binding
	Pin        key.Binding
	Delete     key.Binding
	Clear      key.Binding
	SetTemp    key.Binding
	SetPerm    key.Binding
	GotoTemp   key.Binding
	GotoPerm   key.Binding
	FilterTemp key.Binding
	FilterPerm key.Binding
	FilterPin  key.Binding
	ViewMode   key.Binding
	Logs       key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "half page up")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "half page down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn", "page down")),
		Top:          key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:       key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("[n]G", "bottom / entry n")),

		Copy:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		CaseMode:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "toggle case")),
		Pin:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Clear:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "clear unpinned")),
		SetTemp:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m<key>", "temp register")),
		SetPerm:    key.NewBinding(key.WithKeys("M"), key.WithHelp("M<key>", "perm register")),
		GotoTemp:   key.NewBinding(key.WithKeys("'"), key.WithHelp("'<key>", "go to temp")),
		GotoPerm:   key.NewBinding(key.WithKeys("\""), key.WithHelp("\"<key>", "go to perm")),
		FilterTemp: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "temp only")),
		FilterPerm: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "perm only")),
		FilterPin:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pinned only")),
		ViewMode:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view mode")),
		Logs:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logs")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Search, k.Pin, k.SetTemp, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.HalfPageUp, k.HalfPageDown, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Copy, k.Search, k.CaseMode, k.Pin, k.Delete, k.Clear, k.ViewMode},
		{k.SetTemp, k.SetPerm, k.GotoTemp, k.GotoPerm, k.FilterTemp, k.FilterPerm, k.FilterPin},
		{k.Logs, k.Help, k.Quit},
	}
}
