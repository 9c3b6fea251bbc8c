// Package coord provides the geometry primitives shared by the canvas,
// widget tree and viewport engine: signed logical rectangles, unsigned
// actual rectangles, and the clamping math that maps one onto the other.
package coord

// Size is the unsigned dimensions of a terminal region.
type Size struct {
	Width  uint16
	Height uint16
}

// NewSize creates a Size.
func NewSize(width, height uint16) Size {
	return Size{Width: width, Height: height}
}

// IsEmpty reports whether the size covers zero cells.
func (s Size) IsEmpty() bool {
	return s.Width == 0 || s.Height == 0
}

// IRect is a signed, half-open rectangle [X1,X2) x [Y1,Y2). Logical widget
// shapes use it: coordinates may be negative or exceed the parent.
type IRect struct {
	X1, Y1, X2, Y2 int
}

// NewIRect creates an IRect from its top-left corner and size.
func NewIRect(x, y, width, height int) IRect {
	return IRect{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// Width returns the horizontal extent, never negative.
func (r IRect) Width() int {
	if r.X2 < r.X1 {
		return 0
	}
	return r.X2 - r.X1
}

// Height returns the vertical extent, never negative.
func (r IRect) Height() int {
	if r.Y2 < r.Y1 {
		return 0
	}
	return r.Y2 - r.Y1
}

// IsEmpty reports whether the rectangle covers zero cells.
func (r IRect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Translate returns a copy shifted by (dx, dy).
func (r IRect) Translate(dx, dy int) IRect {
	return IRect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// MoveTo returns a copy with its top-left corner at (x, y).
func (r IRect) MoveTo(x, y int) IRect {
	return NewIRect(x, y, r.Width(), r.Height())
}

// Intersect returns the overlapping region of two rectangles. The result is
// empty when they do not overlap.
func (r IRect) Intersect(o IRect) IRect {
	out := IRect{
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
		X2: min(r.X2, o.X2),
		Y2: min(r.Y2, o.Y2),
	}
	if out.X2 < out.X1 {
		out.X2 = out.X1
	}
	if out.Y2 < out.Y1 {
		out.Y2 = out.Y1
	}
	return out
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r IRect) Contains(x, y int) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

// U16Rect is an unsigned, half-open rectangle. Actual widget shapes use it:
// every actual shape lies within its parent's actual shape, so coordinates
// fit in uint16 like terminal coordinates do.
type U16Rect struct {
	X1, Y1, X2, Y2 uint16
}

// NewU16Rect creates a U16Rect from its top-left corner and size.
func NewU16Rect(x, y, width, height uint16) U16Rect {
	return U16Rect{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// Width returns the horizontal extent.
func (r U16Rect) Width() uint16 {
	if r.X2 < r.X1 {
		return 0
	}
	return r.X2 - r.X1
}

// Height returns the vertical extent.
func (r U16Rect) Height() uint16 {
	if r.Y2 < r.Y1 {
		return 0
	}
	return r.Y2 - r.Y1
}

// Size returns the rectangle's dimensions.
func (r U16Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// IsEmpty reports whether the rectangle covers zero cells.
func (r U16Rect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// ToIRect widens the rectangle to signed coordinates.
func (r U16Rect) ToIRect() IRect {
	return IRect{X1: int(r.X1), Y1: int(r.Y1), X2: int(r.X2), Y2: int(r.Y2)}
}

// ContainsRect reports whether o lies entirely inside r. Empty rectangles
// are contained anywhere.
func (r U16Rect) ContainsRect(o U16Rect) bool {
	if o.IsEmpty() {
		return true
	}
	return o.X1 >= r.X1 && o.X2 <= r.X2 && o.Y1 >= r.Y1 && o.Y2 <= r.Y2
}

// TruncatePolicy selects how a child logical shape is clamped to its
// parent's actual shape.
type TruncatePolicy int

const (
	// Brutal cuts whatever part of the child sticks out of the parent.
	Brutal TruncatePolicy = iota
	// Reserved first shifts the child inside the parent by the minimal
	// vector, then cuts whatever still sticks out.
	Reserved
)

// String implements fmt.Stringer.
func (p TruncatePolicy) String() string {
	switch p {
	case Brutal:
		return "brutal"
	case Reserved:
		return "reserved"
	default:
		return "unknown"
	}
}

// ClampToParent computes a child's actual shape from its logical shape and
// its parent's actual shape. The logical shape is interpreted relative to
// the parent's top-left corner; the result is absolute (canvas coordinates)
// and always inside the parent.
func ClampToParent(child IRect, parent U16Rect, policy TruncatePolicy) U16Rect {
	pw, ph := int(parent.Width()), int(parent.Height())
	c := child

	if policy == Reserved {
		// Shrink oversized children to the parent first, then shift the
		// remainder inside by the minimal vector.
		if c.Width() > pw {
			c.X2 = c.X1 + pw
		}
		if c.Height() > ph {
			c.Y2 = c.Y1 + ph
		}
		if c.X1 < 0 {
			c = c.Translate(-c.X1, 0)
		} else if c.X2 > pw {
			c = c.Translate(pw-c.X2, 0)
		}
		if c.Y1 < 0 {
			c = c.Translate(0, -c.Y1)
		} else if c.Y2 > ph {
			c = c.Translate(0, ph-c.Y2)
		}
	}

	c = c.Intersect(IRect{X1: 0, Y1: 0, X2: pw, Y2: ph})
	return U16Rect{
		X1: parent.X1 + uint16(c.X1),
		Y1: parent.Y1 + uint16(c.Y1),
		X2: parent.X1 + uint16(c.X2),
		Y2: parent.Y1 + uint16(c.Y2),
	}
}
