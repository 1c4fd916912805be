package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type confirmKeyMap struct {
	Apply  key.Binding
	Skip   key.Binding
	Quit   key.Binding
	Scroll key.Binding
}

var confirmKeys = confirmKeyMap{
	Apply: key.NewBinding(
		key.WithKeys("a", "y"),
		key.WithHelp("a", "apply"),
	),
	Skip: key.NewBinding(
		key.WithKeys("s", "n", "esc"),
		key.WithHelp("s/esc", "skip"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "skip and stop"),
	),
	// Scrolling itself is handled by the viewport key map.
	Scroll: key.NewBinding(
		key.WithKeys("up", "down", "k", "j", "pgup", "pgdown"),
		key.WithHelp("↑↓/jk/pgup/pgdn", "scroll"),
	),
}

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

var pickerKeys = pickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "choose"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpBarStyle.Render(h.Desc))
	}
	return strings.Join(parts, helpBarStyle.Render("  •  "))
}
