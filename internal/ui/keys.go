package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

type keyMap struct {
	Add    key.Binding
	Reload key.Binding
	Resend key.Binding
	Help   key.Binding
	Quit   key.Binding

	Submit key.Binding
	Toggle key.Binding
	Cancel key.Binding

	// Navigation is handled by the list; these are here for the help view.
	Up, Down, PrevPage, NextPage key.Binding
}

func defaultKeyMap() keyMap {
	nav := list.DefaultKeyMap()
	return keyMap{
		Add:    key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Resend: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry create")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle done")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Up:       nav.CursorUp,
		Down:     nav.CursorDown,
		PrevPage: nav.PrevPage,
		NextPage: nav.NextPage,
	}
}

// formKeys is the help shown while the create form is open.
type formKeys struct{ k keyMap }

func (f formKeys) ShortHelp() []key.Binding {
	return []key.Binding{f.k.Submit, f.k.Toggle, f.k.Cancel}
}

func (f formKeys) FullHelp() [][]key.Binding { return [][]key.Binding{f.ShortHelp()} }

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Reload, k.Resend, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Add, k.Reload, k.Resend},
		{k.Help, k.Quit},
	}
}
