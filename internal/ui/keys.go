package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit       key.Binding
	Back       key.Binding
	Enter      key.Binding
	Refresh    key.Binding
	Login      key.Binding
	Profile    key.Binding
	NextView   key.Binding
	PrevView   key.Binding
	Home       key.Binding
	Events     key.Binding
	Community  key.Binding
	Membership key.Binding
	ProfileTab key.Binding
}

var Keys = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Login:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
	Profile:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
	NextView:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	PrevView:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
	Home:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
	Events:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "events")),
	Community:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "community")),
	Membership: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "membership")),
	ProfileTab: key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "profile")),
}
