package normalize

import (
	"errors"
	"iter"
	"testing"
)

func fragments(parts []string, err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain code untouched", "package main\n", "package main"},
		{"fence with language", "```go\npackage main\n```", "package main"},
		{"fence without language", "```\nx := 1\n```", "x := 1"},
		{"uppercase tag", "```Python\nprint(1)\n```", "print(1)"},
		{"tag with symbols", "```c++\nint x;\n```", "int x;"},
		{"surrounding whitespace", "\n\n  ```js\nlet a\n```  \n", "let a"},
		{"only opening fence", "```ts\nconst a = 1", "const a = 1"},
		{"only closing fence", "const a = 1\n```", "const a = 1"},
		{"crlf", "```go\r\npackage main\r\n```", "package main"},
		{"inner fences kept", "a\n```\nb\n```\nc", "a\n```\nb\n```\nc"},
		{"empty", "", ""},
		{"bare fence", "```", ""},
		{"nested wrapping", "```\n```py\nx = 1\n```\n```", "x = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.input)
			if got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripFences_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"```",
		"``````",
		"```go\npackage main\n```",
		"```\n```py\nx = 1\n```\n```",
		"  \n```rust\nfn main() {}\n```\n\n",
		"no fences at all\n",
		"a\n```\nb\n```\nc",
		"```\n\n```\n\n```",
		"```go code on same line```",
	}
	for _, in := range inputs {
		once := StripFences(in)
		twice := StripFences(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCollect_PreservesArrivalOrder(t *testing.T) {
	got, err := Collect(fragments([]string{"pack", "age ", "main"}, nil))
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if got != "package main" {
		t.Errorf("Collect = %q, want %q", got, "package main")
	}
}

func TestCollect_StopsOnError(t *testing.T) {
	boom := errors.New("stream broke")
	got, err := Collect(fragments([]string{"partial"}, boom))
	if !errors.Is(err, boom) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text on error, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(fragments([]string{"```go\n", "package main\n", "```\n"}, nil))
	if err != nil {
		t.Fatal(err)
	}
	if got != "package main" {
		t.Errorf("Normalize = %q, want %q", got, "package main")
	}
}

func TestUnchanged(t *testing.T) {
	tests := []struct {
		original, proposal string
		want               bool
	}{
		{"a\n", "a", true},
		{"  a  ", "\na\n", true},
		{"a", "", true},
		{"a", "   ", true},
		{"a", "b", false},
		{"a\nb", "a\n b", false},
	}
	for _, tt := range tests {
		if got := Unchanged(tt.original, tt.proposal); got != tt.want {
			t.Errorf("Unchanged(%q, %q) = %v, want %v", tt.original, tt.proposal, got, tt.want)
		}
	}
}
