package ui

import "charm.land/bubbles/v2/key"

// KeyMap defines all global keybindings.
type KeyMap struct {
	Quit        key.Binding
	Copy        key.Binding
	Entries     key.Binding
	History     key.Binding
	Diagnostics key.Binding
	Refresh     key.Binding
	ClearHist   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Copy: key.NewBinding(
			key.WithKeys("enter", "y", "c"),
			key.WithHelp("y", "copy"),
		),
		Entries: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "entries"),
		),
		History: key.NewBinding(
			key.WithKeys("2", "h"),
			key.WithHelp("2", "history"),
		),
		Diagnostics: key.NewBinding(
			key.WithKeys("3", "d"),
			key.WithHelp("3", "diagnostics"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ClearHist: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear history"),
		),
	}
}

// ShortHelp returns keybindings to show in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Entries, k.History, k.Diagnostics, k.Quit}
}

// helpFor returns the status bar hints for a view.
func (k KeyMap) helpFor(m mode) []key.Binding {
	switch m {
	case modeHistory:
		return []key.Binding{k.Copy, k.Entries, k.Diagnostics, k.Refresh, k.ClearHist, k.Quit}
	case modeDiagnostics:
		return []key.Binding{k.Copy, k.Entries, k.History, k.Refresh, k.Quit}
	default:
		return k.ShortHelp()
	}
}
