package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIRectBasics(t *testing.T) {
	r := NewIRect(-3, 2, 10, 4)
	assert.Equal(t, 10, r.Width())
	assert.Equal(t, 4, r.Height())
	assert.False(t, r.IsEmpty())
	assert.True(t, r.Contains(-3, 2))
	assert.False(t, r.Contains(7, 2))

	moved := r.MoveTo(0, 0)
	assert.Equal(t, NewIRect(0, 0, 10, 4), moved)
}

func TestIRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b IRect
		want IRect
	}{
		{
			name: "overlap",
			a:    NewIRect(0, 0, 10, 10),
			b:    NewIRect(5, 5, 10, 10),
			want: NewIRect(5, 5, 5, 5),
		},
		{
			name: "disjoint",
			a:    NewIRect(0, 0, 4, 4),
			b:    NewIRect(10, 10, 4, 4),
			want: IRect{X1: 10, Y1: 10, X2: 10, Y2: 10},
		},
		{
			name: "contained",
			a:    NewIRect(0, 0, 10, 10),
			b:    NewIRect(2, 2, 3, 3),
			want: NewIRect(2, 2, 3, 3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, tt.b.Intersect(tt.a))
		})
	}
}

func TestClampToParentBrutal(t *testing.T) {
	parent := NewU16Rect(2, 1, 20, 10)

	// Fully inside: just offset into canvas coordinates.
	got := ClampToParent(NewIRect(3, 2, 5, 4), parent, Brutal)
	assert.Equal(t, NewU16Rect(5, 3, 5, 4), got)

	// Sticking out top-left: cut.
	got = ClampToParent(NewIRect(-2, -1, 5, 4), parent, Brutal)
	assert.Equal(t, NewU16Rect(2, 1, 3, 3), got)

	// Sticking out bottom-right: cut.
	got = ClampToParent(NewIRect(18, 8, 5, 5), parent, Brutal)
	assert.Equal(t, NewU16Rect(20, 9, 2, 2), got)

	// Entirely outside: empty.
	got = ClampToParent(NewIRect(30, 30, 5, 5), parent, Brutal)
	assert.True(t, got.IsEmpty())
}

func TestClampToParentReserved(t *testing.T) {
	parent := NewU16Rect(0, 0, 20, 10)

	// Smaller than parent but partly outside: shifted fully inside.
	got := ClampToParent(NewIRect(-2, -1, 5, 4), parent, Reserved)
	assert.Equal(t, NewU16Rect(0, 0, 5, 4), got)

	got = ClampToParent(NewIRect(18, 8, 5, 4), parent, Reserved)
	assert.Equal(t, NewU16Rect(15, 6, 5, 4), got)

	// Larger than parent: shrink to parent size first.
	got = ClampToParent(NewIRect(-5, -5, 30, 30), parent, Reserved)
	assert.Equal(t, NewU16Rect(0, 0, 20, 10), got)
}

func TestContainsRect(t *testing.T) {
	outer := NewU16Rect(0, 0, 10, 10)
	assert.True(t, outer.ContainsRect(NewU16Rect(0, 0, 10, 10)))
	assert.True(t, outer.ContainsRect(NewU16Rect(3, 3, 2, 2)))
	assert.False(t, outer.ContainsRect(NewU16Rect(8, 8, 5, 5)))
	// Empty rectangles are contained anywhere.
	assert.True(t, outer.ContainsRect(NewU16Rect(50, 50, 0, 0)))
}
