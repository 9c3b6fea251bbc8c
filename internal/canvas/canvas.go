// Package canvas provides the double-buffered cell grid the widget tree
// draws into, and the diff that turns two consecutive frames into a minimal
// stream of terminal commands.
package canvas

import (
	"runtime"

	"github.com/rsvim/rsvim-sub002/internal/coord"
)

// windowsCursorJitter guards the Hide/Show wrap around cell output.
// Windows terminals honor cursor moves mid-refresh, which makes the cursor
// visibly jump around while a frame is flushed; POSIX terminals do not need
// the wrap. Overridable in tests.
var windowsCursorJitter = runtime.GOOS == "windows"

// Canvas owns the current and previous frames. Widgets draw into the
// current frame; Shade diffs it against the previous one.
type Canvas struct {
	current *Frame
	prev    *Frame
}

// New creates a canvas of the given size with two blank frames.
func New(size coord.Size) *Canvas {
	return &Canvas{
		current: NewFrame(size),
		prev:    NewFrame(size),
	}
}

// Size returns the current frame size.
func (c *Canvas) Size() coord.Size {
	return c.current.Size()
}

// Frame returns the current frame, which widgets draw into.
func (c *Canvas) Frame() *Frame {
	return c.current
}

// PrevFrame returns the previous (already shaded) frame.
func (c *Canvas) PrevFrame() *Frame {
	return c.prev
}

// Resize grows or shrinks the current frame. The previous frame keeps its
// old size until the next Shade, which detects the mismatch and runs the
// brute-force diff.
func (c *Canvas) Resize(size coord.Size) {
	c.current.Resize(size)
}

// SetCell writes one cell into the current frame. Panics out of bounds.
func (c *Canvas) SetCell(pos Pos, cell Cell) {
	c.current.SetCell(pos, cell)
}

// TrySetCell writes one cell, failing silently out of bounds.
func (c *Canvas) TrySetCell(pos Pos, cell Cell) bool {
	return c.current.TrySetCell(pos, cell)
}

// SetCellsAt writes a run of cells. Panics when the run does not fit.
func (c *Canvas) SetCellsAt(pos Pos, cells []Cell) {
	c.current.SetCellsAt(pos, cells)
}

// TrySetCellsAt writes a run of cells, clipping to the frame.
func (c *Canvas) TrySetCellsAt(pos Pos, cells []Cell) bool {
	return c.current.TrySetCellsAt(pos, cells)
}

// SetCursor updates the current frame's cursor.
func (c *Canvas) SetCursor(cursor Cursor) {
	c.current.SetCursor(cursor)
}

// Shade diffs the current frame against the previous one, returns the
// command stream, and advances prev to match current. After Shade the two
// frames are equal and no row is dirty.
func (c *Canvas) Shade() Shader {
	var s Shader

	var cellCmds Shader
	if c.current.Size() != c.prev.Size() {
		// A resize invalidates the per-row dirty bits.
		c.shadeBruteForce(&cellCmds)
	} else {
		c.shadeDirtyMarks(&cellCmds)
	}

	wrap := windowsCursorJitter && !c.current.Cursor().Hidden && len(cellCmds.Commands) > 0
	if wrap {
		s.push(CursorHide{})
	}
	s.Commands = append(s.Commands, cellCmds.Commands...)
	if wrap {
		cur := c.current.Cursor()
		s.push(CursorGoto{X: cur.Pos.X, Y: cur.Pos.Y})
		s.push(CursorShow{})
	}
	// Printing leaves the terminal cursor at the end of the last run, so
	// the position must be restored whenever cells were written, not only
	// when the logical cursor moved.
	needGoto := len(cellCmds.Commands) > 0 && !wrap
	c.shadeCursor(&s, needGoto)

	c.prev.copyFrom(c.current)
	c.current.clearDirty()
	c.prev.clearDirty()
	return s
}

// shadeBruteForce scans every row of the current frame against the
// previous frame, emitting one CursorGoto plus a Print run per changed
// span. Rows beyond the previous frame's size are treated as all-changed.
func (c *Canvas) shadeBruteForce(s *Shader) {
	h := int(c.current.Size().Height)
	for y := 0; y < h; y++ {
		c.shadeRow(s, uint16(y))
	}
}

// shadeDirtyMarks scans only rows whose dirty bit is set.
func (c *Canvas) shadeDirtyMarks(s *Shader) {
	for y, dirty := range c.current.DirtyRows() {
		if dirty {
			c.shadeRow(s, uint16(y))
		}
	}
}

func (c *Canvas) shadeRow(s *Shader, y uint16) {
	w := int(c.current.Size().Width)
	x := 0
	for x < w {
		if !c.cellChanged(uint16(x), y) {
			x++
			continue
		}
		// Advance to the next unchanged cell (or end of line).
		end := x + 1
		for end < w && c.cellChanged(uint16(end), y) {
			end++
		}
		s.push(CursorGoto{X: uint16(x), Y: y})
		c.printRun(s, y, x, end)
		x = end
	}
}

// cellChanged reports whether the current cell differs from the previous
// frame's cell at the same position. Positions outside the previous frame
// always count as changed.
func (c *Canvas) cellChanged(x, y uint16) bool {
	cur := c.current.Cell(Pos{X: x, Y: y})
	if x >= c.prev.Size().Width || y >= c.prev.Size().Height {
		return true
	}
	return cur != c.prev.Cell(Pos{X: x, Y: y})
}

// printRun emits Print commands for cells [from, to) of row y, splitting
// the run wherever the pen style changes. Continuation cells of wide
// glyphs carry an empty symbol and are skipped.
func (c *Canvas) printRun(s *Shader, y uint16, from, to int) {
	i := from
	for i < to {
		first := c.current.Cell(Pos{X: uint16(i), Y: y})
		text := first.Symbol
		j := i + 1
		for j < to {
			next := c.current.Cell(Pos{X: uint16(j), Y: y})
			if !first.SameStyle(next) {
				break
			}
			text += next.Symbol
			j++
		}
		s.push(Print{Text: text, Fg: first.Fg, Bg: first.Bg, Attrs: first.Attrs})
		i = j
	}
}

// shadeCursor emits at most four commands covering the blinking, hidden,
// style and position deltas between the two frames' cursors.
func (c *Canvas) shadeCursor(s *Shader, needGoto bool) {
	cur := c.current.Cursor()
	prev := c.prev.Cursor()

	if cur.Blinking != prev.Blinking {
		if cur.Blinking {
			s.push(CursorBlinkOn{})
		} else {
			s.push(CursorBlinkOff{})
		}
	}
	if cur.Hidden != prev.Hidden {
		if cur.Hidden {
			s.push(CursorHide{})
		} else {
			s.push(CursorShow{})
		}
	}
	if cur.Style != prev.Style {
		s.push(CursorSetStyle{Style: cur.Style})
	}
	if cur.Pos != prev.Pos || needGoto {
		s.push(CursorGoto{X: cur.Pos.X, Y: cur.Pos.Y})
	}
}
