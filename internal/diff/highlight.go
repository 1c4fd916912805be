package diff

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Token is a run of text with a single colour. Color is a hex colour such
// as "#ff79c6", or empty for the terminal default.
type Token struct {
	Text  string
	Color string
}

// Highlighted is one source line split into coloured tokens.
type Highlighted []Token

// Plain returns the text of the line without colour.
func (h Highlighted) Plain() string {
	var b strings.Builder
	for _, t := range h {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Highlight tokenizes text using the lexer chosen by filename and returns
// exactly one entry per line of text. Unknown languages come back as plain
// single-token lines.
func Highlight(filename, text string) []Highlighted {
	lines := splitLines(text)
	lexer := lexerFor(filename)
	if lexer == nil {
		return plain(lines)
	}
	it, err := lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return plain(lines)
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	out := make([]Highlighted, 0, len(lines))
	var cur Highlighted
	for _, tok := range it.Tokens() {
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				out = append(out, cur)
				cur = nil
			}
			if part != "" {
				cur = append(cur, Token{Text: part, Color: colour(style, tok.Type)})
			}
		}
	}
	out = append(out, cur)

	// Lexers may add a trailing newline of their own.
	for len(out) < len(lines) {
		out = append(out, Highlighted{{Text: lines[len(out)]}})
	}
	return out[:len(lines)]
}

func plain(lines []string) []Highlighted {
	out := make([]Highlighted, len(lines))
	for i, l := range lines {
		out[i] = Highlighted{{Text: l}}
	}
	return out
}

func lexerFor(filename string) chroma.Lexer {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		if ext := filepath.Ext(filename); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}

func colour(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}
