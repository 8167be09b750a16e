package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all global keybindings.
type KeyMap struct {
	Submit      key.Binding
	Cancel      key.Binding
	QuitEOF     key.Binding
	Escape      key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	CopyCode    key.Binding
	FocusPrev   key.Binding
	FocusNext   key.Binding
	Attachments key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "cancel/quit"),
		),
		QuitEOF: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		CopyCode: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy focused code block"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+↑", "previous code block"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+↓", "next code block"),
		),
		Attachments: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "remove attachments"),
		),
	}
}

// bindings lists the keys shown by /help.
func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Submit, k.CopyCode, k.FocusPrev, k.FocusNext, k.Attachments, k.PageUp, k.PageDown, k.Escape, k.Cancel, k.QuitEOF}
}
