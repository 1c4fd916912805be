package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed     = lipgloss.Color("#ff5555")
	colorGreen   = lipgloss.Color("#50fa7b")
	colorYellow  = lipgloss.Color("#f1fa8c")
	colorBlue    = lipgloss.Color("#8be9fd")
	colorPurple  = lipgloss.Color("#bd93f9")
	colorDim     = lipgloss.Color("#6272a4")
	colorBgLight = lipgloss.Color("#343746")
	colorFg      = lipgloss.Color("#f8f8f2")
	colorBorder  = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Diff view
	headerStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	paneTitleStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(5).
			Align(lipgloss.Right).
			PaddingRight(1)

	addedLineStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	deletedLineStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	contextLineStyle = lipgloss.NewStyle().
				Foreground(colorFg)

	separatorStyle = lipgloss.NewStyle().
			Foreground(colorBorder)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Mode picker
	pickerTitleStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Padding(0, 0, 1, 0)

	pickerItemStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true).
				PaddingLeft(2)

	pickerDescStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingLeft(4)

	// Console messages
	progressStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	summaryAppliedStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	summarySkippedStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	summaryErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed)
)
