package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rsvim/rsvim-sub002/internal/coord"
)

func cellCommands(s Shader) []ShaderCommand {
	var out []ShaderCommand
	for _, cmd := range s.Commands {
		switch cmd.(type) {
		case CursorGoto, Print:
			out = append(out, cmd)
		}
	}
	return out
}

func TestSetCellMarksRowDirty(t *testing.T) {
	c := New(coord.NewSize(10, 4))
	c.SetCell(NewPos(3, 2), NewCell("x"))
	assert.True(t, c.Frame().DirtyRows()[2])
	assert.False(t, c.Frame().DirtyRows()[0])
}

func TestTrySetCellOutOfBounds(t *testing.T) {
	c := New(coord.NewSize(4, 2))
	assert.False(t, c.TrySetCell(NewPos(4, 0), NewCell("x")))
	assert.False(t, c.TrySetCell(NewPos(0, 2), NewCell("x")))
	assert.Panics(t, func() {
		c.SetCell(NewPos(4, 0), NewCell("x"))
	})
}

func TestShadeEmitsMinimalRuns(t *testing.T) {
	c := New(coord.NewSize(8, 2))
	// Prime: shade the blank frame so prev == current.
	c.Shade()

	c.SetCell(NewPos(1, 0), NewCell("a"))
	c.SetCell(NewPos(2, 0), NewCell("b"))
	c.SetCell(NewPos(6, 1), NewCell("z"))

	s := c.Shade()
	cells := cellCommands(s)
	require.Len(t, cells, 5)
	assert.Equal(t, CursorGoto{X: 1, Y: 0}, cells[0])
	assert.Equal(t, Print{Text: "ab", Fg: ColorDefault, Bg: ColorDefault}, cells[1])
	assert.Equal(t, CursorGoto{X: 6, Y: 1}, cells[2])
	assert.Equal(t, Print{Text: "z", Fg: ColorDefault, Bg: ColorDefault}, cells[3])
	// Cell output leaves the pen at the end of the last run; the stream
	// ends by restoring the cursor position.
	assert.Equal(t, CursorGoto{X: 0, Y: 0}, cells[4])
}

func TestShadeSplitsRunsOnStyleChange(t *testing.T) {
	c := New(coord.NewSize(4, 1))
	c.Shade()

	c.SetCell(NewPos(0, 0), Cell{Symbol: "a", Fg: ColorDefault, Bg: ColorDefault})
	c.SetCell(NewPos(1, 0), Cell{Symbol: "b", Fg: Color(2), Bg: ColorDefault, Attrs: AttrBold})

	s := c.Shade()
	cells := cellCommands(s)
	require.Len(t, cells, 4)
	assert.Equal(t, CursorGoto{X: 0, Y: 0}, cells[0])
	assert.Equal(t, Print{Text: "a", Fg: ColorDefault, Bg: ColorDefault}, cells[1])
	assert.Equal(t, Print{Text: "b", Fg: Color(2), Bg: ColorDefault, Attrs: AttrBold}, cells[2])
	assert.Equal(t, CursorGoto{X: 0, Y: 0}, cells[3])
}

func TestShadeAfterResizeUsesBruteForce(t *testing.T) {
	c := New(coord.NewSize(3, 1))
	c.Shade()

	c.Resize(coord.NewSize(5, 1))
	c.SetCell(NewPos(4, 0), NewCell("x"))
	s := c.Shade()

	// Columns 3 and 4 did not exist in the previous frame, so the brute
	// force diff reports them changed even though 3 still holds a blank.
	cells := cellCommands(s)
	require.Len(t, cells, 3)
	assert.Equal(t, CursorGoto{X: 3, Y: 0}, cells[0])
	assert.Equal(t, Print{Text: " x", Fg: ColorDefault, Bg: ColorDefault}, cells[1])
	assert.Equal(t, CursorGoto{X: 0, Y: 0}, cells[2])
}

func TestShadeCursorDeltas(t *testing.T) {
	c := New(coord.NewSize(4, 2))
	c.Shade()

	cur := DefaultCursor()
	cur.Pos = NewPos(2, 1)
	cur.Blinking = true
	cur.Style = CursorSteadyBar
	c.SetCursor(cur)

	s := c.Shade()
	require.Len(t, s.Commands, 3)
	assert.Equal(t, CursorBlinkOn{}, s.Commands[0])
	assert.Equal(t, CursorSetStyle{Style: CursorSteadyBar}, s.Commands[1])
	assert.Equal(t, CursorGoto{X: 2, Y: 1}, s.Commands[2])
}

func TestShadeNoChangeEmitsNothing(t *testing.T) {
	c := New(coord.NewSize(4, 2))
	c.Shade()
	s := c.Shade()
	assert.Empty(t, s.Commands)
}

func TestWindowsCursorJitterWrap(t *testing.T) {
	old := windowsCursorJitter
	windowsCursorJitter = true
	defer func() { windowsCursorJitter = old }()

	c := New(coord.NewSize(4, 1))
	c.Shade()
	c.SetCell(NewPos(0, 0), NewCell("a"))

	s := c.Shade()
	require.NotEmpty(t, s.Commands)
	assert.Equal(t, CursorHide{}, s.Commands[0])
	// The wrap restores the saved position and shows the cursor again.
	n := len(s.Commands)
	assert.Equal(t, CursorShow{}, s.Commands[n-1])
	assert.Equal(t, CursorGoto{X: 0, Y: 0}, s.Commands[n-2])
}

// Property: after any sequence of writes, Shade leaves prev equal to
// current with every dirty bit cleared, and a second Shade emits nothing.
func TestShadeConvergesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.Uint16Range(1, 12).Draw(t, "w")
		h := rapid.Uint16Range(1, 8).Draw(t, "h")
		c := New(coord.NewSize(w, h))

		n := rapid.IntRange(0, 40).Draw(t, "n")
		for i := 0; i < n; i++ {
			x := rapid.Uint16Range(0, w-1).Draw(t, "x")
			y := rapid.Uint16Range(0, h-1).Draw(t, "y")
			sym := rapid.StringMatching(`[a-z]`).Draw(t, "sym")
			c.SetCell(NewPos(x, y), NewCell(sym))
		}

		c.Shade()
		for y := uint16(0); y < h; y++ {
			for x := uint16(0); x < w; x++ {
				pos := NewPos(x, y)
				if c.Frame().Cell(pos) != c.PrevFrame().Cell(pos) {
					t.Fatalf("prev != current at %v", pos)
				}
			}
		}
		for _, dirty := range c.Frame().DirtyRows() {
			if dirty {
				t.Fatal("dirty row left after shade")
			}
		}
		if s := c.Shade(); len(s.Commands) != 0 {
			t.Fatalf("second shade emitted %d commands", len(s.Commands))
		}
	})
}
