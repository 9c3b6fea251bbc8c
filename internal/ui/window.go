package ui

import (
	"github.com/rsvim/rsvim-sub002/internal/buf"
	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
	"github.com/rsvim/rsvim-sub002/internal/viewport"
)

// WindowState is the mutable half of a window: which buffer it shows,
// its layout options, the anchor, and the viewports derived from them.
// The window and its content widget share one WindowState.
type WindowState struct {
	Buffer *buf.Buffer
	Opts   viewport.Options

	StartLine   int
	StartColumn int

	// CursorLine and CursorChar are the buffer position of the cursor.
	CursorLine int
	CursorChar int

	Viewport *viewport.Viewport
	Cursor   viewport.CursorViewport
}

// Sync re-derives the viewport and cursor mapping against the given
// shape. Called after every edit, scroll, or resize.
func (w *WindowState) Sync(width, height int) {
	w.StartLine, w.StartColumn = viewport.Clamp(w.Buffer.Text, w.StartLine, w.StartColumn)
	if w.Opts.Wrap {
		w.StartColumn = 0
	}
	w.Viewport = viewport.Compute(w.Buffer.Text, w.Opts, width, height, w.StartLine, w.StartColumn)
	if cv, ok := viewport.CursorFor(w.Viewport, w.Buffer.Text, w.CursorLine, w.CursorChar); ok {
		w.Cursor = cv
	}
}

// ScrollTo moves the anchor so the target position is visible, using the
// direction of travel to pick the alignment edge.
func (w *WindowState) ScrollTo(width, height int, dir viewport.Direction, line, char int) {
	w.StartLine, w.StartColumn = viewport.SearchAnchor(
		w.Buffer.Text, w.Opts, width, height,
		w.StartLine, w.StartColumn, dir, line, char)
}

// Window is a container widget; its content child does the drawing.
type Window struct {
	State *WindowState
}

func (w *Window) Draw(c *canvas.Canvas, shape coord.U16Rect) {}

// WindowContent renders the window's viewport into its shape.
type WindowContent struct {
	State *WindowState
}

func (w *WindowContent) Draw(c *canvas.Canvas, shape coord.U16Rect) {
	width := int(shape.Width())
	height := int(shape.Height())
	if width <= 0 || height <= 0 {
		return
	}
	vp := w.State.Viewport
	if vp == nil {
		return
	}
	text := w.State.Buffer.Text

	drawn := make([]bool, height)
	for line := vp.StartLine; line < vp.EndLine; line++ {
		lv, ok := vp.Line(line)
		if !ok {
			continue
		}
		for ri, r := range lv.Rows {
			row := lv.FirstRow + ri
			if row < 0 || row >= height {
				continue
			}
			cells := renderRow(text, line, lv, ri, r, width)
			c.TrySetCellsAt(canvas.Pos{X: shape.X1, Y: shape.Y1 + uint16(row)}, cells)
			drawn[row] = true
		}
	}
	for row := 0; row < height; row++ {
		if !drawn[row] {
			c.TrySetCellsAt(canvas.Pos{X: shape.X1, Y: shape.Y1 + uint16(row)}, blankRow(width))
		}
	}
}

// renderRow expands one viewport row into exactly width cells, with fill
// markers where a wide char straddles a margin: '>' on the left edge,
// '<' on the right edge.
func renderRow(text *buf.Text, line int, lv *viewport.LineViewport, ri int, r viewport.RowViewport, width int) []canvas.Cell {
	cells := make([]canvas.Cell, 0, width)
	if ri == 0 {
		for i := 0; i < lv.StartFilledCols && len(cells) < width; i++ {
			cells = append(cells, canvas.NewCell(">"))
		}
	}
	lineContent := text.Line(line)
	for i := r.StartChar; i < r.EndChar && len(cells) < width; i++ {
		cells = appendCharCells(cells, text, lineContent[i], width)
	}
	if ri == len(lv.Rows)-1 {
		for i := 0; i < lv.EndFilledCols && len(cells) < width; i++ {
			cells = append(cells, canvas.NewCell("<"))
		}
	}
	for len(cells) < width {
		cells = append(cells, canvas.EmptyCell())
	}
	if len(cells) > width {
		cells = cells[:width]
	}
	return cells
}

// appendCharCells expands one char into its display cells: one cell per
// column, continuation cells carrying an empty symbol.
func appendCharCells(cells []canvas.Cell, text *buf.Text, ch rune, width int) []canvas.Cell {
	symbol, w := text.CharSymbolAndWidth(ch)
	if w == 0 {
		return cells
	}
	runes := []rune(symbol)
	if len(runes) == w {
		// One single-width glyph per column (expanded tabs, caret codes).
		for _, g := range runes {
			if len(cells) >= width {
				break
			}
			cells = append(cells, canvas.NewCell(string(g)))
		}
		return cells
	}
	cells = append(cells, canvas.NewCell(symbol))
	for i := 1; i < w && len(cells) < width; i++ {
		cells = append(cells, canvas.Cell{Symbol: "", Fg: canvas.ColorDefault, Bg: canvas.ColorDefault})
	}
	return cells
}

func blankRow(width int) []canvas.Cell {
	cells := make([]canvas.Cell, width)
	for i := range cells {
		cells[i] = canvas.EmptyCell()
	}
	return cells
}
