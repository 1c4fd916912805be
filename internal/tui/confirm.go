package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/rework/internal/diff"
	"github.com/dshills/rework/internal/review"
)

// header, pane titles and status bar
const chromeHeight = 3

// Confirm shows one proposal as two full panes, original on the left and
// proposed on the right, and waits for the user to apply or skip it. Long
// lines wrap inside their pane; nothing is truncated.
type Confirm struct {
	proposal review.Proposal
	rows     []diff.Row
	oldHL    []diff.Highlighted
	newHL    []diff.Highlighted
	added    int
	deleted  int

	viewport viewport.Model
	width    int
	height   int
	ready    bool

	decision review.Decision
	stop     bool
}

// NewConfirm prepares the comparison for p.
func NewConfirm(p review.Proposal) Confirm {
	lines := diff.Compute(p.Original, p.Modified)
	added, deleted := diff.Stats(lines)
	return Confirm{
		proposal: p,
		rows:     diff.SideBySide(lines),
		oldHL:    diff.Highlight(p.Path, p.Original),
		newHL:    diff.Highlight(p.Path, p.Modified),
		added:    added,
		deleted:  deleted,
	}
}

// Decision is the user's choice. It is Skip unless apply was pressed.
func (m Confirm) Decision() review.Decision { return m.decision }

// Stopped reports whether the user asked to end the whole session.
func (m Confirm) Stopped() bool { return m.stop }

// Init implements tea.Model.
func (m Confirm) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(1, msg.Height-chromeHeight)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.viewport.SetContent(m.renderRows())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, confirmKeys.Apply):
			m.decision = review.Apply
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.Skip):
			m.decision = review.Skip
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.Quit):
			m.decision = review.Skip
			m.stop = true
			return m, tea.Quit
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Confirm) View() string {
	if !m.ready {
		return "Loading..."
	}

	pane := m.paneWidth()
	header := headerStyle.Render(m.proposal.Label) + "  " +
		helpBarStyle.Render(fmt.Sprintf("[%d/%d]", m.proposal.Index+1, m.proposal.Total)) + "  " +
		addedLineStyle.Render(fmt.Sprintf("+%d", m.added)) + " " +
		deletedLineStyle.Render(fmt.Sprintf("-%d", m.deleted))
	titles := paneTitleStyle.Width(pane).Render("Original") + "   " + paneTitleStyle.Render("Proposed")

	status := statusBarStyle.Width(m.width).Render(
		fmt.Sprintf("%3.f%%  ", m.viewport.ScrollPercent()*100) +
			helpLine(confirmKeys.Apply, confirmKeys.Skip, confirmKeys.Quit, confirmKeys.Scroll))

	return lipgloss.JoinVertical(lipgloss.Left, header, titles, m.viewport.View(), status)
}

func (m Confirm) paneWidth() int {
	return max(16, (m.width-3)/2)
}

func (m Confirm) renderRows() string {
	pane := m.paneWidth()
	sep := separatorStyle.Render("│")

	out := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		var left, right string
		if r.Changed {
			left = cell(r.OldNum, deletedLineStyle.Render(r.Old), pane)
			right = cell(r.NewNum, addedLineStyle.Render(r.New), pane)
		} else {
			left = cell(r.OldNum, colourise(lineAt(m.oldHL, r.OldNum), r.Old), pane)
			right = cell(r.NewNum, colourise(lineAt(m.newHL, r.NewNum), r.New), pane)
		}
		h := max(lipgloss.Height(left), lipgloss.Height(right))
		bar := strings.TrimSuffix(strings.Repeat(sep+"\n", h), "\n")
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, left, " ", bar, " ", right))
	}
	return strings.Join(out, "\n")
}

// cell renders one side of a row. A zero line number renders a blank pane.
func cell(num int, content string, width int) string {
	if num == 0 {
		return lipgloss.NewStyle().Width(width).Render("")
	}
	gutter := lineNumberStyle.Render(strconv.Itoa(num))
	body := lipgloss.NewStyle().Width(width - lipgloss.Width(gutter)).Render(content)
	return lipgloss.JoinHorizontal(lipgloss.Top, gutter, body)
}

func lineAt(hl []diff.Highlighted, num int) diff.Highlighted {
	if num < 1 || num > len(hl) {
		return nil
	}
	return hl[num-1]
}

func colourise(hl diff.Highlighted, fallback string) string {
	if hl == nil {
		return contextLineStyle.Render(fallback)
	}
	var b strings.Builder
	for _, tok := range hl {
		if tok.Color == "" {
			b.WriteString(contextLineStyle.Render(tok.Text))
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
	}
	return b.String()
}
