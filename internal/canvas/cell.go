package canvas

// Color identifies a terminal color. Negative means the terminal default;
// values in [0, 256) are palette colors; values with the RGB bit set carry a
// 24-bit true color.
type Color int32

// ColorDefault is the terminal's own foreground/background color.
const ColorDefault Color = -1

const rgbBit Color = 1 << 24

// RGB packs a 24-bit true color.
func RGB(r, g, b uint8) Color {
	return rgbBit | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// IsRGB reports whether the color carries a 24-bit value.
func (c Color) IsRGB() bool {
	return c >= 0 && c&rgbBit != 0
}

// RGBValues unpacks a 24-bit color. Only meaningful when IsRGB is true.
func (c Color) RGBValues() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Attr is a bit set of cell text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrReverse
)

// Cell is one terminal glyph slot.
type Cell struct {
	// Symbol is the grapheme shown in the cell. Continuation cells of a
	// wide glyph hold an empty symbol.
	Symbol string
	Fg     Color
	Bg     Color
	Attrs  Attr
}

// EmptyCell is the blank cell frames are filled with.
func EmptyCell() Cell {
	return Cell{Symbol: " ", Fg: ColorDefault, Bg: ColorDefault}
}

// NewCell creates a plain cell with default colors.
func NewCell(symbol string) Cell {
	return Cell{Symbol: symbol, Fg: ColorDefault, Bg: ColorDefault}
}

// SameStyle reports whether two cells share fg/bg/attrs, i.e. whether their
// symbols can be printed in one run without changing the pen.
func (c Cell) SameStyle(o Cell) bool {
	return c.Fg == o.Fg && c.Bg == o.Bg && c.Attrs == o.Attrs
}
