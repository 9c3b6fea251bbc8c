package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsvim/rsvim-sub002/internal/buf"
	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
	"github.com/rsvim/rsvim-sub002/internal/viewport"
)

func newTestLayout(t *testing.T, content string, w, h uint16, opts viewport.Options) *Layout {
	t.Helper()
	bm := buf.NewBuffersManager()
	b, err := bm.CreateUnnamed(buf.DefaultOptions())
	require.NoError(t, err)
	if content != "" {
		b.Text = buf.NewText(content, buf.DefaultOptions())
	}
	return NewLayout(coord.Size{Width: w, Height: h}, b, opts)
}

func rowString(c *canvas.Canvas, y uint16, width int) string {
	var sb strings.Builder
	for x := 0; x < width; x++ {
		sb.WriteString(c.Frame().Cell(canvas.Pos{X: uint16(x), Y: y}).Symbol)
	}
	return sb.String()
}

func TestWindowContentDrawsText(t *testing.T) {
	l := newTestLayout(t, "hello\nworld\n", 10, 4, viewport.Options{})
	c := canvas.New(coord.Size{Width: 10, Height: 4})
	l.Tree.Draw(c)

	assert.Equal(t, "hello     ", rowString(c, 0, 10))
	assert.Equal(t, "world     ", rowString(c, 1, 10))
	assert.Equal(t, "          ", rowString(c, 2, 10))
}

func TestWindowContentDrawsFillMarkers(t *testing.T) {
	l := newTestLayout(t, "你好世界\n", 4, 2, viewport.Options{})
	l.Window.StartColumn = 1
	l.Window.Sync(4, 1)
	c := canvas.New(coord.Size{Width: 4, Height: 2})
	l.Tree.Draw(c)

	// The half-covered wide char on the left edge pads with '>' and the
	// one on the right edge pads with '<'.
	row := rowString(c, 0, 4)
	assert.True(t, strings.HasPrefix(row, ">"), "row %q", row)
	assert.True(t, strings.HasSuffix(row, "<"), "row %q", row)
	assert.Contains(t, row, "好")
	assert.Equal(t, ">好<", row)
}

func TestCommandLineDrawsPromptAndInput(t *testing.T) {
	l := newTestLayout(t, "", 10, 3, viewport.Options{})
	l.CmdLine.Active = true
	l.CmdLine.Input.InsertAt(0, 0, []rune("wq"))
	c := canvas.New(coord.Size{Width: 10, Height: 3})
	l.Tree.Draw(c)

	assert.Equal(t, ":wq       ", rowString(c, 2, 10))
}

func TestCommandLineDrawsLastMessage(t *testing.T) {
	l := newTestLayout(t, "", 10, 3, viewport.Options{})
	l.Contents.Push("first")
	l.Contents.Push("second")
	c := canvas.New(coord.Size{Width: 10, Height: 3})
	l.Tree.Draw(c)

	assert.Equal(t, "second    ", rowString(c, 2, 10))
}

func TestCursorWidgetSetsCanvasCursor(t *testing.T) {
	l := newTestLayout(t, "abc\n", 10, 3, viewport.Options{})
	c := canvas.New(coord.Size{Width: 10, Height: 3})
	l.Tree.Draw(c)

	cur := c.Frame().Cursor()
	assert.Equal(t, canvas.Pos{X: 0, Y: 0}, cur.Pos)
	assert.False(t, cur.Hidden)
}

func TestContentsConcurrentAccess(t *testing.T) {
	contents := NewContents()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			contents.Push("x")
		}
		close(done)
	}()
	for i := 0; i < 100; i++ {
		contents.Messages()
	}
	<-done
	assert.Equal(t, 100, contents.Len())
}

func TestResizeReflowsWindow(t *testing.T) {
	l := newTestLayout(t, "Hello, RSVIM!\n", 20, 4, viewport.Options{Wrap: true})
	require.NotNil(t, l.Window.Viewport)
	lv, ok := l.Window.Viewport.Line(0)
	require.True(t, ok)
	assert.Len(t, lv.Rows, 1)

	l.Resize(coord.Size{Width: 10, Height: 4})
	lv, ok = l.Window.Viewport.Line(0)
	require.True(t, ok)
	assert.Len(t, lv.Rows, 2)
}
