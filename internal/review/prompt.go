package review

import (
	"fmt"
	"path/filepath"
	"strings"
)

const basePrompt = `You are a code reviewer and bug fixer. You receive one complete source file and return an improved version of it.

Rules:
1. Return the COMPLETE file, never a fragment, a diff or a summary.
2. Keep the file's language, public API and overall structure unless a change is required to fix a problem.
3. Add a short comment next to each change you make explaining what was changed.
4. If the file needs no changes, return it exactly as it was given.
5. Return ONLY the improved code. No markdown, no explanation, no preamble.`

var modeFocus = map[Mode]string{
	ModeGeneral:     `Focus: resolve bugs, errors and possible exceptions; fix syntax or logic errors; remove obvious performance problems and security issues.`,
	ModeFull:        `Focus: perform a full review. Fix bugs and logic errors, handle possible exceptions, remove performance problems, close security issues, and improve readability and naming where it clearly helps.`,
	ModeBugFix:      `Focus: fix bugs only. Resolve syntax errors, logic errors, unhandled errors and possible exceptions. Do not refactor, rename or restyle code that is not broken.`,
	ModePerformance: `Focus: performance. Reduce algorithmic complexity, avoid redundant work and allocations, and remove blocking calls from hot paths. Behavior must stay identical.`,
	ModeSecurity:    `Focus: security. Fix injection risks, unsafe input handling, hard-coded secrets, weak cryptography, path traversal and missing validation. Do not make unrelated changes.`,
	ModeCleanup:     `Focus: cleanup and refactoring. Improve structure, naming, duplication and dead code without changing observable behavior.`,
}

// SystemPrompt returns the system instruction for mode.
func SystemPrompt(mode Mode) string {
	focus, ok := modeFocus[mode]
	if !ok {
		focus = modeFocus[ModeGeneral]
	}
	return basePrompt + "\n\n" + focus
}

// BuildUserPrompt constructs the user prompt for one file. The path is given
// for context only.
func BuildUserPrompt(path, code string, rules *Rules) string {
	var b strings.Builder

	b.WriteString("Review and improve this file.\n")
	b.WriteString("Return ONLY the full improved code.\n")

	if lang := detectLanguage(path); lang != "" {
		fmt.Fprintf(&b, "Language: %s\n", lang)
	}

	if rulesSection := BuildRulesPromptSection(rules); rulesSection != "" {
		b.WriteString(rulesSection)
	}

	fmt.Fprintf(&b, "\nFILE PATH: %s\n", path)
	b.WriteString("CODE:\n")
	b.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		b.WriteString("\n")
	}

	return b.String()
}

var langMap = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript/React",
	".jsx":  "JavaScript/React",
	".rs":   "Rust",
	".java": "Java",
	".rb":   "Ruby",
	".cpp":  "C++",
	".hpp":  "C++",
	".c":    "C",
	".h":    "C/C++",
	".cs":   "C#",
	".php":  "PHP",
	".sql":  "SQL",
	".sh":   "Shell",
	".yaml": "YAML",
	".yml":  "YAML",
	".json": "JSON",
	".xml":  "XML",
	".html": "HTML",
	".css":  "CSS",
	".scss": "SCSS",
	".sass": "Sass",
	".env":  "dotenv",
}

func detectLanguage(path string) string {
	ext := filepath.Ext(path)
	if ext == "" && strings.HasPrefix(filepath.Base(path), ".env") {
		ext = ".env"
	}
	return langMap[ext]
}
