package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit key.Binding
	Help key.Binding
	Tab  key.Binding
	Sync key.Binding

	// Preferences
	CycleTheme    key.Binding
	CycleCurrency key.Binding
	CycleLocale   key.Binding

	// Contacts
	AddContact    key.Binding
	DeleteContact key.Binding

	// Logs
	CycleLevel   key.Binding
	ToggleFollow key.Binding

	// Navigation
	Up   key.Binding
	Down key.Binding

	// Input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "help"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		Sync: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "sync now"),
		),

		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		CycleCurrency: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "currency"),
		),
		CycleLocale: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "locale"),
		),

		AddContact: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add contact"),
		),
		DeleteContact: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete contact"),
		),

		CycleLevel: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "log level"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "follow"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "down"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Sync, k.CycleTheme, k.CycleCurrency, k.CycleLocale, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Up, k.Down, k.Sync},
		{k.CycleTheme, k.CycleCurrency, k.CycleLocale},
		{k.AddContact, k.DeleteContact},
		{k.CycleLevel, k.ToggleFollow},
		{k.Help, k.Quit},
	}
}
