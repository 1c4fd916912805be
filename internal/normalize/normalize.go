// Package normalize turns raw provider output into the text that is diffed
// and written back.
package normalize

import (
	"iter"
	"regexp"
	"strings"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_+#.-]*[ \t]*(?:\r?\n|$)")
	closingFence = regexp.MustCompile("(?:\r?\n)?```$")
)

// Collect drains a fragment sequence into one string, concatenating
// fragments in arrival order. The first error stops consumption and is
// returned together with an empty string.
func Collect(fragments iter.Seq2[string, error]) (string, error) {
	var b strings.Builder
	for frag, err := range fragments {
		if err != nil {
			return "", err
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

// StripFences removes a leading code-fence line (with optional language
// tag) and a trailing code fence, then trims surrounding whitespace. It is
// applied until the text stops changing, so StripFences(StripFences(s)) ==
// StripFences(s) for every s.
func StripFences(text string) string {
	cur := strings.TrimSpace(text)
	for {
		next := openingFence.ReplaceAllString(cur, "")
		next = closingFence.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == cur {
			return cur
		}
		cur = next
	}
}

// Normalize collects fragments and strips code fences from the result.
func Normalize(fragments iter.Seq2[string, error]) (string, error) {
	raw, err := Collect(fragments)
	if err != nil {
		return "", err
	}
	return StripFences(raw), nil
}

// Unchanged reports whether the proposal carries no change relative to the
// original: it is empty, or equal to the original once surrounding
// whitespace is ignored.
func Unchanged(original, proposal string) bool {
	p := strings.TrimSpace(proposal)
	return p == "" || p == strings.TrimSpace(original)
}
