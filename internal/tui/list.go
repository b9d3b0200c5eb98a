package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/quantmind-br/pacfront/internal/theme"
)

const checkWidth = 5

type column struct {
	title string
	width int // 0 takes the remaining space
}

// checkList is a scrolling table with a checkbox per row. Rows are kept
// unfiltered; visible holds the indices currently shown.
type checkList struct {
	columns []column
	rows    [][]string
	keys    []string
	visible []int
	checked map[string]bool

	cursor int
	offset int
	height int
	width  int
}

func newCheckList(columns ...column) checkList {
	return checkList{columns: columns, checked: make(map[string]bool)}
}

// SetRows replaces every row. Checks survive for keys still present.
func (l *checkList) SetRows(keys []string, rows [][]string) {
	l.keys = keys
	l.rows = rows

	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	for k := range l.checked {
		if !present[k] {
			delete(l.checked, k)
		}
	}

	l.visible = make([]int, len(rows))
	for i := range rows {
		l.visible[i] = i
	}
	l.clamp()
}

// SetVisible restricts the list to the given row indices
func (l *checkList) SetVisible(idx []int) {
	l.visible = idx
	l.clamp()
}

func (l *checkList) Len() int {
	return len(l.visible)
}

func (l *checkList) SetSize(width, height int) {
	l.width = width
	l.height = max(1, height)
	l.clamp()
}

func (l *checkList) Move(delta int) {
	l.cursor += delta
	l.clamp()
}

func (l *checkList) Top() {
	l.cursor = 0
	l.clamp()
}

func (l *checkList) Bottom() {
	l.cursor = len(l.visible) - 1
	l.clamp()
}

// Current returns the row index under the cursor
func (l *checkList) Current() (int, bool) {
	if len(l.visible) == 0 {
		return 0, false
	}
	return l.visible[l.cursor], true
}

func (l *checkList) Toggle() {
	idx, ok := l.Current()
	if !ok {
		return
	}
	k := l.keys[idx]
	if l.checked[k] {
		delete(l.checked, k)
	} else {
		l.checked[k] = true
	}
}

// ToggleAll checks every visible row, or clears them when all are checked
func (l *checkList) ToggleAll() {
	all := len(l.visible) > 0
	for _, idx := range l.visible {
		if !l.checked[l.keys[idx]] {
			all = false
			break
		}
	}
	for _, idx := range l.visible {
		if all {
			delete(l.checked, l.keys[idx])
		} else {
			l.checked[l.keys[idx]] = true
		}
	}
}

func (l *checkList) ClearChecks() {
	clear(l.checked)
}

// Checked returns the checked row indices that are visible, in list order
func (l *checkList) Checked() []int {
	var out []int
	for _, idx := range l.visible {
		if l.checked[l.keys[idx]] {
			out = append(out, idx)
		}
	}
	return out
}

func (l *checkList) CheckedCount() int {
	return len(l.Checked())
}

func (l *checkList) clamp() {
	if l.cursor >= len(l.visible) {
		l.cursor = len(l.visible) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.height <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
	if maxOffset := max(0, len(l.visible)-l.height); l.offset > maxOffset {
		l.offset = maxOffset
	}
}

func (l *checkList) widths() []int {
	out := make([]int, len(l.columns))
	fixed := checkWidth
	flex := 0
	for i, c := range l.columns {
		out[i] = c.width
		if c.width == 0 {
			flex++
		}
		fixed += c.width + 1
	}
	if flex > 0 {
		each := max(8, (l.width-fixed)/flex)
		for i := range out {
			if out[i] == 0 {
				out[i] = each
			}
		}
	}
	return out
}

func cell(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// View renders the header and the visible window of rows
func (l *checkList) View(st theme.Styles, focused bool, empty string) string {
	widths := l.widths()

	var b strings.Builder
	header := cell("Sel", checkWidth)
	for i, c := range l.columns {
		header += cell(c.title, widths[i]) + " "
	}
	b.WriteString(st.Header.Render(strings.TrimRight(header, " ")))
	b.WriteString("\n")

	if len(l.visible) == 0 {
		b.WriteString(st.Dim.Render(empty))
		return b.String()
	}

	end := min(len(l.visible), l.offset+l.height)
	for pos := l.offset; pos < end; pos++ {
		idx := l.visible[pos]

		box := "[ ]"
		if l.checked[l.keys[idx]] {
			box = st.Checked.Render("[x]")
		}
		line := cell(box, checkWidth)
		for i := range l.columns {
			val := ""
			if i < len(l.rows[idx]) {
				val = l.rows[idx][i]
			}
			line += cell(val, widths[i]) + " "
		}
		line = strings.TrimRight(line, " ")

		switch {
		case pos == l.cursor && focused:
			line = st.Cursor.Render(line)
		case pos == l.cursor:
			line = st.Checked.Render(line)
		default:
			line = st.Row.Render(line)
		}
		b.WriteString(line)
		if pos < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
