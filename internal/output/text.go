package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/rework/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}
	s := res.Summary

	ew.printf("Rework Review — %s\n", s.Mode.Title())
	ew.printf("Provider: %s (%s)  Run: %s\n", res.Provider, res.Model, res.RunID)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Reviewed: %d of %d  Modified: %d  Skipped: %d  No change: %d  Errors: %d\n",
		s.Reviewed, res.Candidates, s.Modified, s.Skipped, s.NoChange, s.Errors)
	ew.println(strings.Repeat("─", 60))

	if len(res.Files) > 0 {
		ew.println("")
		for _, f := range res.Files {
			ew.printf("  %s %s\n", outcomeIcon(f.Outcome), f.Path)
			if f.Message == "" {
				continue
			}
			detail := f.Message
			if f.Category != "" {
				detail = f.Category + ": " + detail
			}
			for _, line := range wrapText(detail, 70) {
				ew.printf("      %s\n", line)
			}
		}
	}

	ew.printf("\n%s\n", endingLine(res))
	ew.printf("Completed in %dms\n", res.DurationMs)
	return ew.err
}

func endingLine(res *review.Result) string {
	if res.Ending == review.Aborted {
		return "Review aborted: " + res.Reason
	}
	return res.Reason
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func outcomeIcon(o review.Outcome) string {
	switch o {
	case review.Applied:
		return "[+]"
	case review.Skipped:
		return "[-]"
	case review.ProviderError:
		return "[!]"
	default:
		return "[=]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
