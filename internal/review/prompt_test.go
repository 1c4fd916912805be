package review

import (
	"strings"
	"testing"
)

func TestSystemPrompt_PerMode(t *testing.T) {
	seen := map[string]Mode{}
	for _, m := range Modes {
		p := SystemPrompt(m)
		if !strings.Contains(p, "Return ONLY the improved code") {
			t.Errorf("%s prompt missing output rule", m)
		}
		if prev, dup := seen[p]; dup {
			t.Errorf("modes %s and %s share a prompt", prev, m)
		}
		seen[p] = m
	}
	if SystemPrompt("unknown") != SystemPrompt(ModeGeneral) {
		t.Error("unknown mode should fall back to general")
	}
	if !strings.Contains(SystemPrompt(ModeBugFix), "Do not refactor") {
		t.Error("bugfix prompt should forbid refactoring")
	}
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := BuildUserPrompt("/repo/main.go", "package main", nil)

	for _, want := range []string{
		"Review and improve this file.",
		"Return ONLY the full improved code.",
		"Language: Go",
		"FILE PATH: /repo/main.go\n",
		"CODE:\npackage main\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Index(prompt, "FILE PATH") > strings.Index(prompt, "CODE:") {
		t.Error("path should precede code")
	}
}

func TestBuildUserPrompt_WithRules(t *testing.T) {
	rules := &Rules{Required: []RequiredCheck{{ID: "ERR", Text: "Handle every error"}}}
	prompt := BuildUserPrompt("x.rs", "fn main() {}\n", rules)
	if !strings.Contains(prompt, "[ERR] Handle every error") {
		t.Errorf("rules section missing:\n%s", prompt)
	}
	if strings.Index(prompt, "[ERR]") > strings.Index(prompt, "CODE:") {
		t.Error("rules should precede code")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"a.go", "Go"},
		{"web/app.tsx", "TypeScript/React"},
		{"styles/site.scss", "SCSS"},
		{".env", "dotenv"},
		{"README.md", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		if got := detectLanguage(tt.path); got != tt.want {
			t.Errorf("detectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
