package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/rework/internal/review"
)

// MarkdownWriter outputs a markdown report suitable for a PR description.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}
	s := res.Summary

	ew.printf("## Rework Review: %s\n\n", s.Mode.Title())
	ew.printf("%s\n\n", mdEnding(res))

	ew.println("| Outcome | Count |")
	ew.println("|---------|-------|")
	ew.printf("| Modified | %d |\n", s.Modified)
	ew.printf("| Skipped | %d |\n", s.Skipped)
	ew.printf("| No change | %d |\n", s.NoChange)
	ew.printf("| Errors | %d |\n", s.Errors)
	ew.printf("| **Reviewed** | **%d** of %d |\n\n", s.Reviewed, res.Candidates)

	if len(res.Files) == 0 {
		ew.println("No files were reviewed.")
		return ew.err
	}

	ew.printf("<details>\n<summary>Files (%d)</summary>\n\n", len(res.Files))
	ew.println("| File | Outcome | Detail |")
	ew.println("|------|---------|--------|")
	for _, f := range res.Files {
		detail := f.Message
		if f.Category != "" {
			detail = f.Category + ": " + detail
		}
		ew.printf("| `%s` | %s | %s |\n", f.Path, f.Outcome, mdEscape(detail))
	}
	ew.println("\n</details>")
	ew.printf("\n<sub>%s %s · %s/%s · %dms</sub>\n", res.Tool, res.Version, res.Provider, res.Model, res.DurationMs)
	return ew.err
}

func mdEnding(res *review.Result) string {
	switch res.Ending {
	case review.Aborted:
		return fmt.Sprintf(":x: **Review aborted:** %s", res.Reason)
	case review.Cancelled:
		return fmt.Sprintf(":warning: %s", res.Reason)
	default:
		return fmt.Sprintf(":white_check_mark: %s", res.Reason)
	}
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
