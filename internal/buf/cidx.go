package buf

import "sort"

// ColumnIndex is the per-line display-width index: a prefix-sum array over
// char display widths, built lazily as queries reach further into the line
// and truncated on edits. widths[i] is the cumulative display width of
// chars [0, i].
type ColumnIndex struct {
	widths []int
}

// NewColumnIndex creates an empty index.
func NewColumnIndex() *ColumnIndex {
	return &ColumnIndex{}
}

// built returns how many chars have an indexed width.
func (ci *ColumnIndex) built() int {
	return len(ci.widths)
}

// extend grows the index to cover chars [0, upto) of the line, using
// widthOf to measure each char. A request past the line end stops at the
// line end.
func (ci *ColumnIndex) extend(line []rune, upto int, widthOf func(rune) int) {
	if upto > len(line) {
		upto = len(line)
	}
	for i := len(ci.widths); i < upto; i++ {
		prev := 0
		if i > 0 {
			prev = ci.widths[i-1]
		}
		ci.widths = append(ci.widths, prev+widthOf(line[i]))
	}
}

// widthBefore returns the total display width of chars [0, c).
func (ci *ColumnIndex) widthBefore(c int) int {
	if c <= 0 {
		return 0
	}
	if c > len(ci.widths) {
		c = len(ci.widths)
	}
	return ci.widths[c-1]
}

// widthUntil returns the total display width of chars [0, c].
func (ci *ColumnIndex) widthUntil(c int) int {
	return ci.widthBefore(c + 1)
}

// Truncate drops the index from char c on. Queried again, widths past c are
// rebuilt from the edited line.
func (ci *ColumnIndex) Truncate(c int) {
	if c < 0 {
		c = 0
	}
	if c < len(ci.widths) {
		ci.widths = ci.widths[:c]
	}
}

// TruncateByWidth drops the index from the first char whose extent reaches
// width w.
func (ci *ColumnIndex) TruncateByWidth(w int) {
	i := sort.Search(len(ci.widths), func(i int) bool {
		return ci.widths[i] >= w
	})
	ci.Truncate(i)
}

// Clear drops the whole index.
func (ci *ColumnIndex) Clear() {
	ci.widths = ci.widths[:0]
}
