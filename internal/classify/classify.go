// Package classify maps provider failures onto the session policy: abort the
// whole run, skip the current file, or log the failure and move on.
package classify

import (
	"fmt"
	"strings"

	"github.com/dshills/rework/internal/providers"
)

// Category is the human-facing failure category.
type Category int

const (
	Unknown Category = iota
	RateLimited
	Unauthorized
	Forbidden
	PayloadTooLarge
	ServerError
)

var categoryLabels = map[Category]string{
	Unknown:         "Unknown",
	RateLimited:     "RateLimited",
	Unauthorized:    "Unauthorized",
	Forbidden:       "Forbidden",
	PayloadTooLarge: "PayloadTooLarge",
	ServerError:     "ServerError",
}

func (c Category) String() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return "Unknown"
}

// Action is what the orchestrator does with a failed file.
type Action int

const (
	// LogAndContinue records the file as an error and continues.
	LogAndContinue Action = iota
	// SkipFile records the file as an error and continues without further
	// logging beyond the category message.
	SkipFile
	// Abort stops the session.
	Abort
)

func (a Action) String() string {
	switch a {
	case Abort:
		return "abort"
	case SkipFile:
		return "skip"
	default:
		return "continue"
	}
}

// Verdict is the result of classifying one failure.
type Verdict struct {
	Category Category
	Action   Action
	// Message is a short actionable explanation suitable for display.
	Message string
}

// Classifier applies the failure policy. The zero value skips unknown
// failures.
type Classifier struct {
	// AbortOnUnknown makes unclassified failures session-fatal.
	AbortOnUnknown bool
}

// ParseUnknownPolicy accepts "skip" (or "") and "abort".
func ParseUnknownPolicy(s string) (abort bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip", "continue":
		return false, nil
	case "abort":
		return true, nil
	default:
		return false, fmt.Errorf("unknownErrors must be \"skip\" or \"abort\", got %q", s)
	}
}

// Classify maps err to a verdict. Errors that are not provider errors are
// treated as Unknown.
func (c Classifier) Classify(err error) Verdict {
	cat := categoryOf(providers.KindOf(err))
	v := Verdict{Category: cat, Message: message(cat)}

	switch cat {
	case RateLimited, Unauthorized, Forbidden, ServerError:
		v.Action = Abort
	case PayloadTooLarge:
		v.Action = SkipFile
	default:
		if c.AbortOnUnknown {
			v.Action = Abort
		} else {
			v.Action = LogAndContinue
		}
	}
	return v
}

// IsAuth reports whether the category concerns the credential.
func (v Verdict) IsAuth() bool {
	return v.Category == Unauthorized || v.Category == Forbidden
}

func categoryOf(k providers.Kind) Category {
	switch k {
	case providers.KindRateLimited:
		return RateLimited
	case providers.KindUnauthorized:
		return Unauthorized
	case providers.KindForbidden:
		return Forbidden
	case providers.KindPayloadTooLarge:
		return PayloadTooLarge
	case providers.KindServer:
		return ServerError
	default:
		return Unknown
	}
}

func message(c Category) string {
	switch c {
	case RateLimited:
		return "API limit reached. Try again later or raise your quota."
	case Unauthorized:
		return "Invalid API key provided. Run 'rework key set' to replace it."
	case Forbidden:
		return "Provider access forbidden. Check API enablement or billing."
	case PayloadTooLarge:
		return "Skipping large file."
	case ServerError:
		return "Server problem on the provider side. Try again later."
	default:
		return "Unexpected provider error."
	}
}
