package canvas

import (
	"fmt"

	"github.com/rsvim/rsvim-sub002/internal/coord"
)

// Frame is one H x W grid of cells plus the cursor state and a per-row
// dirty bitmap. The canvas keeps two of them (current and previous) and
// diffs them to produce shader commands.
type Frame struct {
	size      coord.Size
	cells     []Cell
	cursor    Cursor
	dirtyRows []bool
}

// NewFrame creates a blank frame of the given size.
func NewFrame(size coord.Size) *Frame {
	f := &Frame{
		size:      size,
		cells:     make([]Cell, int(size.Width)*int(size.Height)),
		cursor:    DefaultCursor(),
		dirtyRows: make([]bool, size.Height),
	}
	for i := range f.cells {
		f.cells[i] = EmptyCell()
	}
	return f
}

// Size returns the frame dimensions.
func (f *Frame) Size() coord.Size {
	return f.size
}

// Resize reallocates the grid, blanking every cell and marking all rows
// dirty. A same-size resize is a no-op.
func (f *Frame) Resize(size coord.Size) {
	if size == f.size {
		return
	}
	f.size = size
	f.cells = make([]Cell, int(size.Width)*int(size.Height))
	for i := range f.cells {
		f.cells[i] = EmptyCell()
	}
	f.dirtyRows = make([]bool, size.Height)
	for i := range f.dirtyRows {
		f.dirtyRows[i] = true
	}
}

func (f *Frame) index(pos Pos) int {
	return int(pos.Y)*int(f.size.Width) + int(pos.X)
}

func (f *Frame) inBounds(pos Pos) bool {
	return pos.X < f.size.Width && pos.Y < f.size.Height
}

// Cell returns the cell at pos. Panics when out of bounds.
func (f *Frame) Cell(pos Pos) Cell {
	if !f.inBounds(pos) {
		panic(fmt.Sprintf("canvas: cell position %+v out of frame %+v", pos, f.size))
	}
	return f.cells[f.index(pos)]
}

// SetCell overwrites the cell at pos and marks its row dirty.
// Panics when out of bounds.
func (f *Frame) SetCell(pos Pos, cell Cell) {
	if !f.inBounds(pos) {
		panic(fmt.Sprintf("canvas: cell position %+v out of frame %+v", pos, f.size))
	}
	f.cells[f.index(pos)] = cell
	f.dirtyRows[pos.Y] = true
}

// TrySetCell is SetCell that fails silently when out of bounds.
func (f *Frame) TrySetCell(pos Pos, cell Cell) bool {
	if !f.inBounds(pos) {
		return false
	}
	f.cells[f.index(pos)] = cell
	f.dirtyRows[pos.Y] = true
	return true
}

// SetCellsAt writes a run of cells starting at pos, wrapping to the next
// row at the right edge. Panics when the run does not fit.
func (f *Frame) SetCellsAt(pos Pos, cells []Cell) {
	idx := f.index(pos)
	if !f.inBounds(pos) || idx+len(cells) > len(f.cells) {
		panic(fmt.Sprintf("canvas: cell run at %+v len %d out of frame %+v", pos, len(cells), f.size))
	}
	copy(f.cells[idx:], cells)
	firstRow := int(pos.Y)
	lastRow := (idx + len(cells) - 1) / int(f.size.Width)
	for y := firstRow; y <= lastRow; y++ {
		f.dirtyRows[y] = true
	}
}

// TrySetCellsAt is SetCellsAt that clips the run to the frame instead of
// panicking. It reports whether anything was written.
func (f *Frame) TrySetCellsAt(pos Pos, cells []Cell) bool {
	if !f.inBounds(pos) || len(cells) == 0 {
		return false
	}
	idx := f.index(pos)
	n := len(cells)
	if idx+n > len(f.cells) {
		n = len(f.cells) - idx
	}
	copy(f.cells[idx:idx+n], cells[:n])
	firstRow := int(pos.Y)
	lastRow := (idx + n - 1) / int(f.size.Width)
	for y := firstRow; y <= lastRow; y++ {
		f.dirtyRows[y] = true
	}
	return true
}

// Cursor returns the frame's cursor state.
func (f *Frame) Cursor() Cursor {
	return f.cursor
}

// SetCursor overwrites the frame's cursor state.
func (f *Frame) SetCursor(cursor Cursor) {
	f.cursor = cursor
}

// DirtyRows returns the per-row dirty bitmap.
func (f *Frame) DirtyRows() []bool {
	return f.dirtyRows
}

func (f *Frame) clearDirty() {
	for i := range f.dirtyRows {
		f.dirtyRows[i] = false
	}
}

// copyFrom makes f an exact copy of o.
func (f *Frame) copyFrom(o *Frame) {
	f.size = o.size
	if len(f.cells) != len(o.cells) {
		f.cells = make([]Cell, len(o.cells))
	}
	copy(f.cells, o.cells)
	f.cursor = o.cursor
	if len(f.dirtyRows) != len(o.dirtyRows) {
		f.dirtyRows = make([]bool, len(o.dirtyRows))
	}
	copy(f.dirtyRows, o.dirtyRows)
}
