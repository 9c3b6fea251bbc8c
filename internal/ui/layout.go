package ui

import (
	"github.com/rsvim/rsvim-sub002/internal/buf"
	"github.com/rsvim/rsvim-sub002/internal/coord"
	"github.com/rsvim/rsvim-sub002/internal/tree"
	"github.com/rsvim/rsvim-sub002/internal/viewport"
)

// Layout is the standard widget arrangement: one window filling the
// screen above a one-row command line, with the cursor parked inside the
// window content.
type Layout struct {
	Tree     *tree.Tree
	Window   *WindowState
	CmdLine  *CommandLineState
	Contents *Contents

	WindowId  tree.NodeId
	ContentId tree.NodeId
	CmdLineId tree.NodeId
	CursorId  tree.NodeId
}

// NewLayout mounts the arrangement for the given buffer and screen size.
func NewLayout(size coord.Size, buffer *buf.Buffer, opts viewport.Options) *Layout {
	contents := NewContents()
	l := &Layout{
		Tree:     tree.New(size),
		Window:   &WindowState{Buffer: buffer, Opts: opts},
		CmdLine:  NewCommandLineState(contents),
		Contents: contents,
	}
	l.Tree.AddRoot(RootContainer{}, "root")
	root := l.Tree.RootId()

	winShape, cmdShape := splitShapes(size)
	l.WindowId, _ = l.Tree.AddChild(root, tree.KindWindow,
		&Window{State: l.Window}, winShape, 0, coord.Brutal, "window")
	l.ContentId, _ = l.Tree.AddChild(l.WindowId, tree.KindWindowContent,
		&WindowContent{State: l.Window},
		coord.NewIRect(0, 0, winShape.Width(), winShape.Height()),
		0, coord.Brutal, "window-content")
	l.CmdLineId, _ = l.Tree.AddChild(root, tree.KindCommandLine,
		&CommandLine{State: l.CmdLine}, cmdShape, 0, coord.Brutal, "command-line")
	l.CursorId, _ = l.Tree.AddChild(l.ContentId, tree.KindCursor,
		NewCursorWidget(), coord.NewIRect(0, 0, 1, 1),
		100, coord.Reserved, "cursor")

	l.syncShape()
	return l
}

// Resize reshapes the arrangement for a new screen size.
func (l *Layout) Resize(size coord.Size) {
	l.Tree.Resize(size)
	winShape, cmdShape := splitShapes(size)
	_ = l.Tree.SetShape(l.WindowId, winShape)
	_ = l.Tree.SetShape(l.ContentId,
		coord.NewIRect(0, 0, winShape.Width(), winShape.Height()))
	_ = l.Tree.SetShape(l.CmdLineId, cmdShape)
	l.syncShape()
}

func (l *Layout) syncShape() {
	if shape, ok := l.Tree.ActualShape(l.ContentId); ok {
		l.Window.Sync(int(shape.Width()), int(shape.Height()))
	}
}

// splitShapes carves the screen into the window area and the bottom
// command-line row. A one-row screen is all command line.
func splitShapes(size coord.Size) (win, cmd coord.IRect) {
	w := int(size.Width)
	h := int(size.Height)
	if h <= 1 {
		return coord.NewIRect(0, 0, w, 0), coord.NewIRect(0, 0, w, h)
	}
	return coord.NewIRect(0, 0, w, h-1), coord.NewIRect(0, h-1, w, 1)
}
