package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/rework/internal/classify"
)

// Mode selects the instruction profile sent to the provider. It is fixed for
// the whole session.
type Mode string

const (
	ModeGeneral     Mode = "general"
	ModeFull        Mode = "full"
	ModeBugFix      Mode = "bugfix"
	ModePerformance Mode = "performance"
	ModeSecurity    Mode = "security"
	ModeCleanup     Mode = "cleanup"
)

// Modes lists the selectable modes in menu order.
var Modes = []Mode{ModeGeneral, ModeFull, ModeBugFix, ModePerformance, ModeSecurity, ModeCleanup}

var modeAliases = map[string]Mode{
	"":         ModeGeneral,
	"default":  ModeGeneral,
	"review":   ModeFull,
	"bug":      ModeBugFix,
	"bugs":     ModeBugFix,
	"bug-fix":  ModeBugFix,
	"perf":     ModePerformance,
	"optimize": ModePerformance,
	"sec":      ModeSecurity,
	"refactor": ModeCleanup,
	"clean":    ModeCleanup,
}

// ParseMode resolves a mode name or alias.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if string(m) == key {
			return m, nil
		}
	}
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown review mode %q (want one of %s)", s, modeNames())
}

func modeNames() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// Title is the menu label for the mode.
func (m Mode) Title() string {
	switch m {
	case ModeFull:
		return "Full Review"
	case ModeBugFix:
		return "Bug Fix Only"
	case ModePerformance:
		return "Performance Optimization"
	case ModeSecurity:
		return "Security Review"
	case ModeCleanup:
		return "Code Cleanup / Refactor"
	default:
		return "General"
	}
}

// Description is a one-line explanation for the mode picker.
func (m Mode) Description() string {
	switch m {
	case ModeFull:
		return "Bugs, performance, security and readability"
	case ModeBugFix:
		return "Fix bugs and errors only, no refactoring"
	case ModePerformance:
		return "Speed up hot paths and reduce allocations"
	case ModeSecurity:
		return "Fix vulnerabilities and unsafe input handling"
	case ModeCleanup:
		return "Improve structure and naming without changing behavior"
	default:
		return "Bug fixes, performance and security together"
	}
}

// Outcome is the terminal state of one attempted file.
type Outcome int

const (
	NoChange Outcome = iota
	Applied
	Skipped
	ProviderError
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case ProviderError:
		return "error"
	default:
		return "no_change"
	}
}

// MarshalText renders the outcome by name in reports.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Decision is the user's answer for one proposal. The zero value is Skip, so
// a dismissed prompt skips the file.
type Decision int

const (
	Skip Decision = iota
	Apply
)

func (d Decision) String() string {
	if d == Apply {
		return "apply"
	}
	return "skip"
}

// Summary holds the session counters. Reviewed always equals
// Modified + Skipped + NoChange + Errors.
type Summary struct {
	Mode     Mode `json:"mode"`
	Reviewed int  `json:"reviewed"`
	Modified int  `json:"modified"`
	Skipped  int  `json:"skipped"`
	NoChange int  `json:"noChange"`
	Errors   int  `json:"errors"`
}

// Record returns the summary after one more file reached outcome o.
func (s Summary) Record(o Outcome) Summary {
	s.Reviewed++
	switch o {
	case Applied:
		s.Modified++
	case Skipped:
		s.Skipped++
	case ProviderError:
		s.Errors++
	default:
		s.NoChange++
	}
	return s
}

// Ending says how a session finished.
type Ending int

const (
	Completed Ending = iota
	Cancelled
	Aborted
)

func (e Ending) String() string {
	switch e {
	case Cancelled:
		return "cancelled"
	case Aborted:
		return "aborted"
	default:
		return "completed"
	}
}

// MarshalText renders the ending by name in reports.
func (e Ending) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// FileResult records what happened to one attempted file.
type FileResult struct {
	Path     string  `json:"path"`
	Outcome  Outcome `json:"outcome"`
	Category string  `json:"category,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// Result is the final report of a session.
type Result struct {
	Tool       string            `json:"tool"`
	Version    string            `json:"version"`
	RunID      string            `json:"runId"`
	Provider   string            `json:"provider"`
	Model      string            `json:"model"`
	Candidates int               `json:"candidates"`
	Summary    Summary           `json:"summary"`
	Ending     Ending            `json:"ending"`
	Reason     string            `json:"reason,omitempty"`
	Files      []FileResult      `json:"files"`
	StartedAt  time.Time         `json:"startedAt"`
	DurationMs int64             `json:"durationMs"`
	// Abort is the verdict that stopped an Aborted session.
	Abort      *classify.Verdict `json:"-"`
}

// Proposal is a rewrite awaiting the user's decision.
type Proposal struct {
	Path     string
	Label    string
	Original string
	Modified string
	Index    int
	Total    int
}

// Progress is reported when a file starts its review.
type Progress struct {
	Path  string
	Index int
	Total int
	// Increment is this file's share of the whole session, in percent.
	Increment float64
}

// Level grades UI notifications.
type Level int

const (
	Info Level = iota
	Warn
	Error
)

// FileStore reads and writes candidate files.
type FileStore interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// UI is everything the session needs from the user interface.
type UI interface {
	Progress(p Progress)
	Notify(level Level, message string)
	// Confirm shows the full two-pane diff and returns the user's choice.
	Confirm(ctx context.Context, p Proposal) (Decision, error)
	// Report receives the final result exactly once.
	Report(r Result)
}
