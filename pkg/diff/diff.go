// Package diff provides unified diff generation.
package diff

import (
	"fmt"
	"strings"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// noNewline marks a final line that lacks its terminator.
const noNewline = "\\ No newline at end of file\n"

// Unified generates a unified diff turning oldText (named oldName) into
// newText (named newName), with DefaultContext lines of context. It returns
// an empty string if the inputs are identical.
func Unified(oldName, newName, oldText, newText string) string {
	return UnifiedContext(oldName, newName, oldText, newText, DefaultContext)
}

// UnifiedContext is Unified with n lines of context around each change.
func UnifiedContext(oldName, newName, oldText, newText string, n int) string {
	if oldText == newText {
		return ""
	}
	if n < 0 {
		n = 0
	}

	a, b := splitLines(oldText), splitLines(newText)
	hunks := group(myers(a, b), n)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", oldName)
	fmt.Fprintf(&sb, "+++ %s\n", newName)
	for _, h := range hunks {
		h.write(&sb, a, b)
	}
	return sb.String()
}

// splitLines splits text after each newline. An empty string produces zero
// lines; a final line without a newline is kept as is.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type op byte

const (
	opEqual  op = ' '
	opDelete op = '-'
	opInsert op = '+'
)

// edit is one line of the edit script. a and b index the old and new lines;
// the index not taking part in the edit is -1.
type edit struct {
	op   op
	a, b int
}

// myers returns the shortest edit script from a to b.
func myers(a, b []string) []edit {
	n, m := len(a), len(b)
	off := n + m
	if off == 0 {
		return nil
	}

	// v[k+off] is the furthest x reached on diagonal k = x - y.
	v := make([]int, 2*off+1)
	var trace [][]int

	for d := 0; d <= off; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			x := v[k+1+off]
			if !down(v, k, d, off) {
				x = v[k-1+off] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x, y = x+1, y+1
			}
			v[k+off] = x
			if x >= n && y >= m {
				return walkBack(trace, n, m, off)
			}
		}
	}
	return nil
}

// down reports whether diagonal k at step d is reached from k+1, which is
// an insertion, rather than from k-1, a deletion.
func down(v []int, k, d, off int) bool {
	return k == -d || (k != d && v[k-1+off] < v[k+1+off])
}

// walkBack rebuilds the edit script from the per-step snapshots of v.
func walkBack(trace [][]int, n, m, off int) []edit {
	x, y := n, m
	script := make([]edit, 0, n+m)

	for d := len(trace) - 1; d > 0; d-- {
		v := trace[d]
		k := x - y
		prevK := k - 1
		if down(v, k, d, off) {
			prevK = k + 1
		}
		prevX := v[prevK+off]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x, y = x-1, y-1
			script = append(script, edit{opEqual, x, y})
		}
		if prevK == k+1 {
			y--
			script = append(script, edit{opInsert, -1, y})
		} else {
			x--
			script = append(script, edit{opDelete, x, -1})
		}
	}
	for x > 0 && y > 0 {
		x, y = x-1, y-1
		script = append(script, edit{opEqual, x, y})
	}

	for i, j := 0, len(script)-1; i < j; i, j = i+1, j-1 {
		script[i], script[j] = script[j], script[i]
	}
	return script
}

// hunk is a window of the edit script. aStart and bStart count the lines
// of each side that precede it.
type hunk struct {
	aStart, aLen int
	bStart, bLen int
	edits        []edit
}

// group cuts the script into hunks holding every change plus up to n
// equal lines on each side. Changes separated by at most 2n equal lines
// share a hunk.
func group(script []edit, n int) []hunk {
	var hunks []hunk
	start, end := -1, -1 // current window, end exclusive
	aSeen, bSeen, pos := 0, 0, 0

	flush := func() {
		if start < 0 {
			return
		}
		for ; pos < start; pos++ {
			aSeen, bSeen = advance(script[pos], aSeen, bSeen)
		}
		h := hunk{aStart: aSeen, bStart: bSeen, edits: script[start:end]}
		for ; pos < end; pos++ {
			aSeen, bSeen = advance(script[pos], aSeen, bSeen)
		}
		h.aLen, h.bLen = aSeen-h.aStart, bSeen-h.bStart
		hunks = append(hunks, h)
		start = -1
	}

	for i, e := range script {
		if e.op == opEqual {
			continue
		}
		lo := max(i-n, 0)
		if start >= 0 && lo > end {
			flush()
		}
		if start < 0 {
			start = lo
		}
		end = min(i+n+1, len(script))
	}
	flush()
	return hunks
}

// advance adds the lines e consumes from each side.
func advance(e edit, a, b int) (int, int) {
	if e.a >= 0 {
		a++
	}
	if e.b >= 0 {
		b++
	}
	return a, b
}

// write renders the hunk.
func (h *hunk) write(sb *strings.Builder, a, b []string) {
	fmt.Fprintf(sb, "@@ -%s +%s @@\n", span(h.aStart, h.aLen), span(h.bStart, h.bLen))
	for _, e := range h.edits {
		line := ""
		switch e.op {
		case opEqual, opDelete:
			line = a[e.a]
		case opInsert:
			line = b[e.b]
		}
		sb.WriteByte(byte(e.op))
		sb.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			sb.WriteString("\n" + noNewline)
		}
	}
}

// span formats a hunk range. An empty range names the line before it, as
// diff(1) does.
func span(start, n int) string {
	switch n {
	case 0:
		return fmt.Sprintf("%d,0", start)
	case 1:
		return fmt.Sprintf("%d", start+1)
	}
	return fmt.Sprintf("%d,%d", start+1, n)
}
