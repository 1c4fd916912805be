package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/rework/internal/diff"
	"github.com/dshills/rework/internal/review"
)

// Decider selects how proposals are confirmed.
type Decider int

const (
	// Interactive opens the full-screen two-pane view.
	Interactive Decider = iota
	// Plain prints the whole diff and reads the answer from a line of input.
	Plain
	// AutoApply accepts every proposal.
	AutoApply
	// DryRun prints each proposal as a unified diff and never applies.
	DryRun
)

// ParseDecider maps the review command's flags onto a Decider.
func ParseDecider(yes, dryRun, plain bool) (Decider, error) {
	switch {
	case yes && dryRun:
		return 0, errors.New("--yes and --dry-run cannot be combined")
	case dryRun:
		return DryRun, nil
	case yes:
		return AutoApply, nil
	case plain:
		return Plain, nil
	}
	return Interactive, nil
}

// Terminal is the console implementation of review.UI. Progress, notices and
// prompts go to Err; dry-run diffs go to Out.
type Terminal struct {
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Decider Decider
	// DiffContext is the number of unchanged lines around each change in
	// dry-run output.
	DiffContext int
	// Cancel is called when the user asks to stop the session from a prompt.
	Cancel context.CancelFunc

	percent float64
	lines   *bufio.Reader
}

var _ review.UI = (*Terminal)(nil)

// Progress implements review.UI.
func (t *Terminal) Progress(p review.Progress) {
	t.percent = min(100, t.percent+p.Increment)
	fmt.Fprintln(t.Err, progressStyle.Render("Reviewing: "+p.Path)+
		infoStyle.Render(fmt.Sprintf("  [%d/%d] %.0f%%", p.Index+1, p.Total, t.percent)))
}

// Notify implements review.UI.
func (t *Terminal) Notify(level review.Level, msg string) {
	switch level {
	case review.Error:
		fmt.Fprintln(t.Err, errorStyle.Render("error: ")+msg)
	case review.Warn:
		fmt.Fprintln(t.Err, warnStyle.Render("warning: ")+msg)
	default:
		fmt.Fprintln(t.Err, infoStyle.Render(msg))
	}
}

// Confirm implements review.UI.
func (t *Terminal) Confirm(ctx context.Context, p review.Proposal) (review.Decision, error) {
	switch t.Decider {
	case AutoApply:
		return review.Apply, nil
	case DryRun:
		fmt.Fprint(t.Out, diff.Unified(p.Path, diff.Compute(p.Original, p.Modified), t.DiffContext))
		return review.Skip, nil
	case Plain:
		return t.confirmLine(ctx, p)
	}
	return t.confirmScreen(ctx, p)
}

func (t *Terminal) confirmScreen(ctx context.Context, p review.Proposal) (review.Decision, error) {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Err != nil {
		opts = append(opts, tea.WithOutput(t.Err))
	}
	final, err := tea.NewProgram(NewConfirm(p), opts...).Run()
	if err != nil {
		return review.Skip, viewError(ctx, err)
	}
	m, ok := final.(Confirm)
	if !ok {
		return review.Skip, nil
	}
	if m.Stopped() {
		t.stop()
	}
	return m.Decision(), nil
}

// viewError maps a failed diff view run to the error Confirm returns. A view
// killed by cancellation is a plain skip.
func viewError(ctx context.Context, err error) error {
	if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("diff view: %w", err)
}

func (t *Terminal) confirmLine(ctx context.Context, p review.Proposal) (review.Decision, error) {
	lines := diff.Compute(p.Original, p.Modified)
	added, deleted := diff.Stats(lines)
	fmt.Fprint(t.Err, diff.Unified(p.Path, lines, -1))
	fmt.Fprintf(t.Err, "%s  %s %s\n", headerStyle.Render(p.Label),
		addedLineStyle.Render(fmt.Sprintf("+%d", added)),
		deletedLineStyle.Render(fmt.Sprintf("-%d", deleted)))
	fmt.Fprint(t.Err, "Apply changes? [a]pply, [s]kip, [q]uit: ")

	if ctx.Err() != nil {
		fmt.Fprintln(t.Err)
		return review.Skip, nil
	}
	if t.lines == nil {
		t.lines = bufio.NewReader(t.In)
	}
	answer, err := t.lines.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(t.Err)
		if errors.Is(err, io.EOF) {
			return review.Skip, nil
		}
		return review.Skip, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "a", "apply", "y", "yes":
		return review.Apply, nil
	case "q", "quit":
		t.stop()
	}
	return review.Skip, nil
}

func (t *Terminal) stop() {
	if t.Cancel != nil {
		t.Cancel()
	}
}

// Report implements review.UI. It prints the one closing notice of the
// session.
func (t *Terminal) Report(res review.Result) {
	s := res.Summary
	counts := fmt.Sprintf("Mode: %s  Reviewed: %d  %s  %s  No change: %d  %s",
		s.Mode.Title(), s.Reviewed,
		summaryAppliedStyle.Render(fmt.Sprintf("Modified: %d", s.Modified)),
		summarySkippedStyle.Render(fmt.Sprintf("Skipped: %d", s.Skipped)),
		s.NoChange,
		summaryErrorStyle.Render(fmt.Sprintf("Errors: %d", s.Errors)))

	switch res.Ending {
	case review.Aborted:
		fmt.Fprintln(t.Err, errorStyle.Render("Review aborted: ")+res.Reason)
	case review.Cancelled:
		fmt.Fprintln(t.Err, warnStyle.Render(res.Reason))
	default:
		fmt.Fprintln(t.Err, summaryHeaderStyle.Render(res.Reason))
	}
	fmt.Fprintln(t.Err, counts)
}

// PickMode shows the mode picker on the terminal. ok is false when the user
// dismissed it.
func PickMode(ctx context.Context, in io.Reader, out io.Writer, initial review.Mode) (review.Mode, bool, error) {
	final, err := tea.NewProgram(NewPicker(initial),
		tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", false, fmt.Errorf("mode picker: %w", err)
	}
	m, ok := final.(Picker)
	if !ok {
		return "", false, nil
	}
	mode, chosen := m.Selected()
	return mode, chosen, nil
}
