// Package diff compares an original file with a proposed rewrite, line by
// line, using the sergi/go-diff engine. Results can be laid out as
// side-by-side rows for the terminal UI or as unified text.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff line.
type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

// Line is one line of the comparison. OldNum and NewNum are 1-based; zero
// means the line does not exist on that side.
type Line struct {
	Op     Op
	OldNum int
	NewNum int
	Text   string
}

// Compute returns the full line diff of original against modified. Every
// line of both texts appears exactly once.
func Compute(original, modified string) []Line {
	var table lineTable
	a := table.encode(splitLines(original))
	b := table.encode(splitLines(modified))

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a, b, false)

	var out []Line
	oldNum, newNum := 1, 1
	for _, d := range diffs {
		for _, r := range d.Text {
			text := table.decode(r)
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				out = append(out, Line{Op: Equal, OldNum: oldNum, NewNum: newNum, Text: text})
				oldNum++
				newNum++
			case diffmatchpatch.DiffDelete:
				out = append(out, Line{Op: Delete, OldNum: oldNum, Text: text})
				oldNum++
			case diffmatchpatch.DiffInsert:
				out = append(out, Line{Op: Insert, NewNum: newNum, Text: text})
				newNum++
			}
		}
	}
	return out
}

// lineTable maps each distinct line to one rune so the diff engine compares
// whole lines. Surrogate code points are skipped so every id survives a
// round trip through a Go string.
type lineTable struct {
	lines []string
	ids   map[string]rune
}

const surrogateGap = 0x800

func (t *lineTable) encode(lines []string) []rune {
	if t.ids == nil {
		t.ids = make(map[string]rune)
	}
	out := make([]rune, len(lines))
	for i, l := range lines {
		id, ok := t.ids[l]
		if !ok {
			id = rune(len(t.lines))
			if id >= 0xD800 {
				id += surrogateGap
			}
			t.ids[l] = id
			t.lines = append(t.lines, l)
		}
		out[i] = id
	}
	return out
}

func (t *lineTable) decode(id rune) string {
	if id >= 0xD800+surrogateGap {
		id -= surrogateGap
	}
	return t.lines[id]
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Stats counts inserted and deleted lines.
func Stats(lines []Line) (added, deleted int) {
	for _, l := range lines {
		switch l.Op {
		case Insert:
			added++
		case Delete:
			deleted++
		}
	}
	return added, deleted
}

// Row is one row of a two-pane view. A zero line number leaves that side
// blank.
type Row struct {
	Changed bool
	OldNum  int
	Old     string
	NewNum  int
	New     string
}

// SideBySide pairs deletions with the insertions that replace them so the
// two texts can be shown next to each other. Every line of both texts
// appears in exactly one row.
func SideBySide(lines []Line) []Row {
	rows := make([]Row, 0, len(lines))
	for i := 0; i < len(lines); {
		if lines[i].Op == Equal {
			l := lines[i]
			rows = append(rows, Row{OldNum: l.OldNum, Old: l.Text, NewNum: l.NewNum, New: l.Text})
			i++
			continue
		}

		var dels, ins []Line
		for i < len(lines) && lines[i].Op != Equal {
			if lines[i].Op == Delete {
				dels = append(dels, lines[i])
			} else {
				ins = append(ins, lines[i])
			}
			i++
		}
		for j := 0; j < max(len(dels), len(ins)); j++ {
			r := Row{Changed: true}
			if j < len(dels) {
				r.OldNum, r.Old = dels[j].OldNum, dels[j].Text
			}
			if j < len(ins) {
				r.NewNum, r.New = ins[j].NewNum, ins[j].Text
			}
			rows = append(rows, r)
		}
	}
	return rows
}

// Unified renders lines as a unified diff. context is the number of
// unchanged lines kept around each change; a negative value keeps the whole
// file in a single hunk.
func Unified(label string, lines []Line, context int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", label)
	fmt.Fprintf(&b, "+++ b/%s (proposed)\n", label)

	for _, h := range hunks(lines, context) {
		writeHunk(&b, lines, h[0], h[1])
	}
	return b.String()
}

// hunks returns [start, end) ranges of lines to print.
func hunks(lines []Line, context int) [][2]int {
	if len(lines) == 0 {
		return nil
	}
	if context < 0 {
		return [][2]int{{0, len(lines)}}
	}

	var out [][2]int
	for i, l := range lines {
		if l.Op == Equal {
			continue
		}
		start := max(0, i-context)
		end := min(len(lines), i+context+1)
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = max(out[n-1][1], end)
			continue
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

func writeHunk(b *strings.Builder, lines []Line, start, end int) {
	oldBefore, newBefore := 0, 0
	for _, l := range lines[:start] {
		if l.Op != Insert {
			oldBefore++
		}
		if l.Op != Delete {
			newBefore++
		}
	}
	oldCount, newCount := 0, 0
	for _, l := range lines[start:end] {
		if l.Op != Insert {
			oldCount++
		}
		if l.Op != Delete {
			newCount++
		}
	}

	fmt.Fprintf(b, "@@ -%s +%s @@\n", hunkRange(oldBefore, oldCount), hunkRange(newBefore, newCount))
	for _, l := range lines[start:end] {
		switch l.Op {
		case Equal:
			b.WriteString(" ")
		case Delete:
			b.WriteString("-")
		case Insert:
			b.WriteString("+")
		}
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
}

func hunkRange(before, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", before)
	}
	if count == 1 {
		return fmt.Sprintf("%d", before+1)
	}
	return fmt.Sprintf("%d,%d", before+1, count)
}
