package viewport

import "github.com/rsvim/rsvim-sub002/internal/buf"

// CursorViewport locates a buffer position inside a computed viewport.
type CursorViewport struct {
	LineIdx int
	CharIdx int
	// RowIdx and ColumnIdx are viewport-relative display coordinates.
	RowIdx    int
	ColumnIdx int
}

// CursorFor maps the buffer position (line, char) onto viewport display
// coordinates. The position must be on an included line; positions past
// the laid-out rows land on a phantom slot per the rules below.
func CursorFor(vp *Viewport, text *buf.Text, line, char int) (CursorViewport, bool) {
	lv, ok := vp.Lines[line]
	if !ok || len(lv.Rows) == 0 {
		return CursorViewport{}, false
	}
	cv := CursorViewport{LineIdx: line, CharIdx: char}

	for ri, r := range lv.Rows {
		if char >= r.StartChar && char < r.EndChar {
			cv.RowIdx = lv.FirstRow + ri
			cv.ColumnIdx = columnInRow(text, lv, line, ri, char)
			return cv, true
		}
	}

	// Phantom slot: char is at or past the end of the laid-out rows,
	// typically one past a line with no EOL char. It renders on the cell
	// right after the last char if that cell exists in the row, otherwise
	// it wraps to the next row's first column.
	last := len(lv.Rows) - 1
	r := lv.Rows[last]
	if char < r.StartChar {
		// Left of the anchor column: pin to the row start.
		cv.RowIdx = lv.FirstRow
		cv.ColumnIdx = 0
		return cv, true
	}
	col := columnInRow(text, lv, line, last, char)
	if col < vp.Width {
		cv.RowIdx = lv.FirstRow + last
		cv.ColumnIdx = col
		return cv, true
	}
	cv.RowIdx = lv.FirstRow + last
	cv.ColumnIdx = vp.Width - 1
	if vp.Width <= 0 {
		cv.ColumnIdx = 0
	}
	return cv, true
}

// columnInRow converts a char index to a display column relative to the
// given row of the line.
func columnInRow(text *buf.Text, lv *LineViewport, line, rowIdx, char int) int {
	r := lv.Rows[rowIdx]
	col := text.WidthBefore(line, char) - text.WidthBefore(line, r.StartChar)
	if rowIdx == 0 {
		col += lv.StartFilledCols
	}
	return col
}
