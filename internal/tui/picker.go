package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/rework/internal/review"
)

// Picker lists the review modes and lets the user choose one.
type Picker struct {
	modes     []review.Mode
	cursor    int
	chosen    bool
	cancelled bool
}

// NewPicker starts with the cursor on initial, or on the first mode when
// initial is not listed.
func NewPicker(initial review.Mode) Picker {
	m := Picker{modes: review.Modes}
	for i, mode := range m.modes {
		if mode == initial {
			m.cursor = i
		}
	}
	return m
}

// Selected returns the chosen mode. ok is false when the picker was
// dismissed.
func (m Picker) Selected() (review.Mode, bool) {
	if !m.chosen {
		return "", false
	}
	return m.modes[m.cursor], true
}

// Init implements tea.Model.
func (m Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msgKey, pickerKeys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(msgKey, pickerKeys.Choose):
		m.chosen = true
		return m, tea.Quit
	case key.Matches(msgKey, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msgKey, pickerKeys.Down):
		if m.cursor < len(m.modes)-1 {
			m.cursor++
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Picker) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Select a review mode"))
	b.WriteString("\n")
	for i, mode := range m.modes {
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + mode.Title()))
			b.WriteString("\n")
			b.WriteString(pickerDescStyle.Render(mode.Description()))
		} else {
			b.WriteString(pickerItemStyle.Render("  " + mode.Title()))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpLine(pickerKeys.Up, pickerKeys.Down, pickerKeys.Choose, pickerKeys.Quit))
	return b.String()
}
