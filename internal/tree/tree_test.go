package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
)

// recorder is a widget that records the order and shapes it was drawn with.
type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) Draw(c *canvas.Canvas, shape coord.U16Rect) {
	*r.log = append(*r.log, r.name)
}

func newTestTree(t *testing.T) (*Tree, NodeId, *[]string) {
	t.Helper()
	log := &[]string{}
	tr := New(coord.NewSize(20, 10))
	root := tr.AddRoot(&recorder{name: "root", log: log}, "root")
	return tr, root, log
}

func TestAddRootShape(t *testing.T) {
	tr, root, _ := newTestTree(t)
	actual, ok := tr.ActualShape(root)
	require.True(t, ok)
	assert.Equal(t, coord.NewU16Rect(0, 0, 20, 10), actual)
	assert.Panics(t, func() {
		tr.AddRoot(nil, "second-root")
	})
}

func TestChildShapeClampedToParent(t *testing.T) {
	tr, root, log := newTestTree(t)
	win, err := tr.AddChild(root, KindWindow, &recorder{name: "win", log: log},
		coord.NewIRect(5, 2, 30, 30), 0, coord.Brutal, "window")
	require.NoError(t, err)

	actual, ok := tr.ActualShape(win)
	require.True(t, ok)
	assert.Equal(t, coord.NewU16Rect(5, 2, 15, 8), actual)

	parentActual, _ := tr.ActualShape(root)
	assert.True(t, parentActual.ContainsRect(actual))
}

func TestGrandchildReclampedWithParent(t *testing.T) {
	tr, root, log := newTestTree(t)
	win, err := tr.AddChild(root, KindWindow, &recorder{name: "win", log: log},
		coord.NewIRect(2, 2, 10, 6), 0, coord.Brutal, "window")
	require.NoError(t, err)
	content, err := tr.AddChild(win, KindWindowContent, &recorder{name: "content", log: log},
		coord.NewIRect(0, 0, 100, 100), 0, coord.Brutal, "content")
	require.NoError(t, err)

	actual, _ := tr.ActualShape(content)
	assert.Equal(t, coord.NewU16Rect(2, 2, 10, 6), actual)

	// Moving the window drags the content's actual shape along.
	require.NoError(t, tr.BoundedMoveBy(win, 3, 1))
	actual, _ = tr.ActualShape(content)
	assert.Equal(t, coord.NewU16Rect(5, 3, 10, 6), actual)
}

func TestBoundedMoveReservedStaysInside(t *testing.T) {
	tr, root, log := newTestTree(t)
	cur, err := tr.AddChild(root, KindCursor, &recorder{name: "cursor", log: log},
		coord.NewIRect(0, 0, 1, 1), 100, coord.Reserved, "cursor")
	require.NoError(t, err)

	// Move far past the bottom-right corner; Reserved pulls it back in.
	require.NoError(t, tr.BoundedMoveTo(cur, 100, 100))
	actual, _ := tr.ActualShape(cur)
	assert.Equal(t, coord.NewU16Rect(19, 9, 1, 1), actual)
}

func TestRemoveDropsSubtree(t *testing.T) {
	tr, root, log := newTestTree(t)
	win, _ := tr.AddChild(root, KindWindow, &recorder{name: "win", log: log},
		coord.NewIRect(0, 0, 10, 5), 0, coord.Brutal, "window")
	content, _ := tr.AddChild(win, KindWindowContent, &recorder{name: "content", log: log},
		coord.NewIRect(0, 0, 10, 5), 0, coord.Brutal, "content")

	require.NoError(t, tr.Remove(win))
	assert.False(t, tr.Contains(win))
	assert.False(t, tr.Contains(content))
	assert.Empty(t, tr.Children(root))

	// A reused slot gets a new generation, so the stale id stays dead.
	again, err := tr.AddChild(root, KindWindow, &recorder{name: "win2", log: log},
		coord.NewIRect(0, 0, 5, 5), 0, coord.Brutal, "window2")
	require.NoError(t, err)
	assert.True(t, tr.Contains(again))
	assert.False(t, tr.Contains(win))
	assert.NotEqual(t, win, again)
}

func TestRemoveRootRejected(t *testing.T) {
	tr, root, _ := newTestTree(t)
	assert.Error(t, tr.Remove(root))
}

func TestDrawOrderZIndexAndVisibility(t *testing.T) {
	tr, root, log := newTestTree(t)
	c := canvas.New(coord.NewSize(20, 10))

	low, _ := tr.AddChild(root, KindWindow, &recorder{name: "low", log: log},
		coord.NewIRect(0, 0, 5, 5), 1, coord.Brutal, "low")
	_, _ = tr.AddChild(root, KindWindow, &recorder{name: "high", log: log},
		coord.NewIRect(0, 0, 5, 5), 5, coord.Brutal, "high")
	_, _ = tr.AddChild(low, KindWindowContent, &recorder{name: "low-child", log: log},
		coord.NewIRect(0, 0, 5, 5), 0, coord.Brutal, "low-child")
	hidden, _ := tr.AddChild(root, KindWindow, &recorder{name: "hidden", log: log},
		coord.NewIRect(5, 5, 5, 5), 9, coord.Brutal, "hidden")
	_, _ = tr.AddChild(hidden, KindWindowContent, &recorder{name: "hidden-child", log: log},
		coord.NewIRect(0, 0, 5, 5), 0, coord.Brutal, "hidden-child")
	tr.SetVisible(hidden, false)

	tr.Draw(c)
	// Parent before children; siblings by z-index; invisible subtree skipped.
	assert.Equal(t, []string{"root", "low", "high", "low-child"}, *log)
}

func TestResizeReclampsEverything(t *testing.T) {
	tr, root, log := newTestTree(t)
	win, _ := tr.AddChild(root, KindWindow, &recorder{name: "win", log: log},
		coord.NewIRect(0, 0, 20, 10), 0, coord.Brutal, "window")

	tr.Resize(coord.NewSize(8, 4))
	rootActual, _ := tr.ActualShape(root)
	assert.Equal(t, coord.NewU16Rect(0, 0, 8, 4), rootActual)
	winActual, _ := tr.ActualShape(win)
	assert.Equal(t, coord.NewU16Rect(0, 0, 8, 4), winActual)
}
