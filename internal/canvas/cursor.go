package canvas

import "github.com/rsvim/rsvim-sub002/internal/coord"

// CursorStyle is the terminal cursor shape, matching the DECSCUSR styles.
type CursorStyle int

const (
	CursorBlinkingBlock CursorStyle = iota + 1
	CursorSteadyBlock
	CursorBlinkingUnderline
	CursorSteadyUnderline
	CursorBlinkingBar
	CursorSteadyBar
)

// Pos is a cell position on the canvas, (0,0) at the top-left.
type Pos struct {
	X uint16
	Y uint16
}

// NewPos creates a Pos.
func NewPos(x, y uint16) Pos {
	return Pos{X: x, Y: y}
}

// Cursor is the terminal cursor state carried by a frame.
type Cursor struct {
	Pos      Pos
	Blinking bool
	Hidden   bool
	Style    CursorStyle
}

// DefaultCursor is the cursor state a fresh frame starts with.
func DefaultCursor() Cursor {
	return Cursor{
		Pos:      NewPos(0, 0),
		Blinking: false,
		Hidden:   false,
		Style:    CursorSteadyBlock,
	}
}

// InsideOf reports whether the cursor position lies inside the rectangle.
func (c Cursor) InsideOf(r coord.U16Rect) bool {
	return c.Pos.X >= r.X1 && c.Pos.X < r.X2 && c.Pos.Y >= r.Y1 && c.Pos.Y < r.Y2
}
