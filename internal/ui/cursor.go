package ui

import (
	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
)

// CursorWidget places the terminal cursor at its own actual shape. It is
// mounted as a child of the window content or the command line and moved
// with BoundedMoveTo.
type CursorWidget struct {
	Blinking bool
	Hidden   bool
	Style    canvas.CursorStyle
}

func NewCursorWidget() *CursorWidget {
	d := canvas.DefaultCursor()
	return &CursorWidget{Blinking: d.Blinking, Hidden: d.Hidden, Style: d.Style}
}

func (w *CursorWidget) Draw(c *canvas.Canvas, shape coord.U16Rect) {
	c.SetCursor(canvas.Cursor{
		Pos:      canvas.Pos{X: shape.X1, Y: shape.Y1},
		Blinking: w.Blinking,
		Hidden:   w.Hidden,
		Style:    w.Style,
	})
}

// RootContainer fills the canvas behind every other widget.
type RootContainer struct{}

func (RootContainer) Draw(c *canvas.Canvas, shape coord.U16Rect) {}
