// Package viewport computes, for a text plus window options, rectangle and
// anchor, exactly which characters are visible on each row and how much
// horizontal padding is owed at the margins. Viewports are pure values:
// they reference nothing and are re-derived whenever text or shape change.
package viewport

import (
	"github.com/rivo/uniseg"

	"github.com/rsvim/rsvim-sub002/internal/buf"
)

// Options are the window options the layout depends on.
type Options struct {
	// Wrap lets a long line span multiple rows.
	Wrap bool
	// LineBreak makes wrap prefer Unicode word boundaries.
	LineBreak bool
}

// RowViewport is the char range [StartChar, EndChar) of one row.
type RowViewport struct {
	StartChar int
	EndChar   int
}

// LineViewport describes how one buffer line maps onto viewport rows.
type LineViewport struct {
	// FirstRow is the viewport row index of Rows[0]; the remaining rows
	// follow contiguously.
	FirstRow int
	// Rows are the per-row char ranges, strictly monotonic in StartChar.
	Rows []RowViewport
	// StartFilledCols counts the pad cells owed at the left margin when a
	// char straddles the anchor column.
	StartFilledCols int
	// EndFilledCols counts the pad cells owed at the right margin when a
	// char straddles the window edge.
	EndFilledCols int
}

// Viewport is the derived mapping of visible lines to rows.
type Viewport struct {
	// Width and Height are the shape the layout was computed against.
	Width  int
	Height int
	// StartLine and EndLine bound the included lines, half-open.
	StartLine int
	EndLine   int
	// StartColumn is the anchor display column; always 0 in wrap modes.
	StartColumn int
	Lines       map[int]*LineViewport
}

// Compute lays the text out against a width x height rectangle anchored at
// (startLine, startColumn).
func Compute(text *buf.Text, opts Options, width, height int, startLine, startColumn int) *Viewport {
	vp := &Viewport{
		Width:       width,
		Height:      height,
		StartLine:   startLine,
		EndLine:     startLine,
		StartColumn: startColumn,
		Lines:       make(map[int]*LineViewport),
	}
	if width <= 0 || height <= 0 {
		return vp
	}
	if startLine < 0 {
		startLine = 0
		vp.StartLine = 0
	}

	row := 0
	line := startLine
	for row < height && line < text.LineCount() {
		// A line reached before the window bottom is laid out in full,
		// even if its tail rows land below the bottom; drawing clips.
		var lv *LineViewport
		if opts.Wrap {
			lv = layoutWrapped(text, opts, line, width, startColumn)
		} else {
			lv = layoutNoWrap(text, line, width, startColumn)
		}
		lv.FirstRow = row
		vp.Lines[line] = lv
		row += len(lv.Rows)
		line++
	}
	vp.EndLine = line
	return vp
}

// layoutNoWrap maps one line onto exactly one row covering the display
// window [startColumn, startColumn+width).
func layoutNoWrap(text *buf.Text, line, width, startColumn int) *LineViewport {
	content := text.Line(line)
	lv := &LineViewport{}

	// Skip chars fully left of the window; a char straddling the anchor
	// column is skipped too and owes its visible remainder as fill.
	i := 0
	for i < len(content) {
		w := text.CharWidth(content[i])
		until := text.WidthUntil(line, i)
		if until <= startColumn && !(w == 0 && until == startColumn) {
			i++
			continue
		}
		if until > startColumn && text.WidthBefore(line, i) < startColumn {
			lv.StartFilledCols = until - startColumn
			i++
		}
		break
	}

	capacity := width - lv.StartFilledCols
	start := i
	used := 0
	for i < len(content) {
		w := text.CharWidth(content[i])
		if used+w > capacity {
			break
		}
		used += w
		i++
	}
	if i < len(content) && used < capacity {
		// The next char straddles the right edge.
		lv.EndFilledCols = capacity - used
	}
	lv.Rows = []RowViewport{{StartChar: start, EndChar: i}}
	return lv
}

// layoutWrapped maps one line onto rows of the given width. The anchor
// column applies to the first row only; word-boundary breaking is engaged
// by opts.LineBreak.
func layoutWrapped(text *buf.Text, opts Options, line, width, startColumn int) *LineViewport {
	content := text.Line(line)
	lv := &LineViewport{}

	var segStart, segEnd []int
	if opts.LineBreak {
		segStart, segEnd = segmentWords(content)
	}

	i := 0
	if startColumn > 0 {
		for i < len(content) {
			until := text.WidthUntil(line, i)
			if until <= startColumn {
				i++
				continue
			}
			if text.WidthBefore(line, i) < startColumn {
				lv.StartFilledCols = until - startColumn
				i++
			}
			break
		}
	}

	for {
		capacity := width
		if len(lv.Rows) == 0 {
			capacity -= lv.StartFilledCols
		}
		start := i
		used := 0
		for i < len(content) {
			w := text.CharWidth(content[i])
			if used+w > capacity {
				break
			}
			used += w
			i++
		}
		if i < len(content) && i == start {
			// A single char wider than the row: place it alone so the
			// layout always advances.
			over := text.CharWidth(content[i]) - capacity
			i++
			if i >= len(content) {
				lv.EndFilledCols = over
			}
		} else if i < len(content) && opts.LineBreak {
			ws, we := segStart[i], segEnd[i]
			if ws > start && !isSpace(content[ws]) && wordWidth(text, line, ws, we) <= width {
				// The word began earlier in this row and fits on a row
				// of its own: move it down wholesale.
				i = ws
			}
		}
		lv.Rows = append(lv.Rows, RowViewport{StartChar: start, EndChar: i})
		if i >= len(content) {
			break
		}
	}
	return lv
}

// segmentWords maps every char index of the line to the bounds of its
// Unicode word segment.
func segmentWords(content []rune) (segStart, segEnd []int) {
	segStart = make([]int, len(content))
	segEnd = make([]int, len(content))
	rest := string(content)
	state := -1
	idx := 0
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		n := len([]rune(word))
		for k := 0; k < n; k++ {
			segStart[idx+k] = idx
			segEnd[idx+k] = idx + n
		}
		idx += n
	}
	return segStart, segEnd
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t'
}

// wordWidth measures the display width of chars [ws, we) of the line.
func wordWidth(text *buf.Text, line, ws, we int) int {
	return text.WidthBefore(line, we) - text.WidthBefore(line, ws)
}

// Line returns the layout of one included line.
func (vp *Viewport) Line(line int) (*LineViewport, bool) {
	lv, ok := vp.Lines[line]
	return lv, ok
}

// RowCount returns how many viewport rows the included lines occupy.
func (vp *Viewport) RowCount() int {
	n := 0
	for _, lv := range vp.Lines {
		n += len(lv.Rows)
	}
	return n
}

// ContainsLine reports whether the line is fully or partly visible.
func (vp *Viewport) ContainsLine(line int) bool {
	_, ok := vp.Lines[line]
	return ok
}

// Contains reports whether the buffer position is inside some visible
// row's char range.
func (vp *Viewport) Contains(line, char int) bool {
	lv, ok := vp.Lines[line]
	if !ok {
		return false
	}
	for _, r := range lv.Rows {
		if char >= r.StartChar && char < r.EndChar {
			return true
		}
	}
	return false
}
