// Package state implements the modal state machine. Each mode handles one
// event against shared editor data and returns the next mode; reaching
// ModeQuit makes the loop fire its cancellation token.
package state

import (
	"github.com/rsvim/rsvim-sub002/internal/msg"
	"github.com/rsvim/rsvim-sub002/internal/tree"
	"github.com/rsvim/rsvim-sub002/internal/ui"
)

// Mode is one of the finite editor modes.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeVisual
	ModeCommandLineEx
	ModeQuit
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInsert:
		return "insert"
	case ModeVisual:
		return "visual"
	case ModeCommandLineEx:
		return "command-line-ex"
	case ModeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Access bundles everything a mode handler may touch: the tree, the
// focused window, the command line, the message history, and callbacks
// into the host for work the state machine cannot do itself.
type Access struct {
	Tree     *tree.Tree
	Window   *ui.WindowState
	CmdLine  *ui.CommandLineState
	Contents *ui.Contents

	// ContentId and CursorId locate the window content widget and the
	// cursor widget inside the tree.
	ContentId tree.NodeId
	CursorId  tree.NodeId
	// CmdLineId locates the command line widget.
	CmdLineId tree.NodeId

	// EvalJs runs a script chunk on the isolate; wired by the loop.
	EvalJs func(code string)
	// RunUserCommand invokes a script-registered ex command, reporting
	// whether the name was registered.
	RunUserCommand func(name, args string) bool
	// SaveBuffer writes the focused buffer back to its file.
	SaveBuffer func() error
	// OpenFile replaces the window's buffer with the named file.
	OpenFile func(path string) error
}

// Machine drives mode transitions.
type Machine struct {
	mode Mode
}

func NewMachine() *Machine {
	return &Machine{mode: ModeNormal}
}

func (m *Machine) Mode() Mode {
	return m.mode
}

// Handle processes one event and advances the mode.
func (m *Machine) Handle(a *Access, ev msg.Event) Mode {
	switch e := ev.(type) {
	case msg.ResizeEvent:
		// Resize is mode-independent; the loop already resized the tree.
		syncWindow(a)
	case msg.MockEvent:
		m.mode = m.handleMock(a, e.Op)
	case msg.KeyEvent:
		switch m.mode {
		case ModeNormal:
			m.mode = handleNormal(a, e)
		case ModeInsert:
			m.mode = handleInsert(a, e)
		case ModeVisual:
			m.mode = handleVisual(a, e)
		case ModeCommandLineEx:
			m.mode = handleCommandLineEx(a, e)
		}
	}
	return m.mode
}

func handleNormal(a *Access, e msg.KeyEvent) Mode {
	switch e.Code {
	case msg.KeyLeft:
		CursorMove(a, -1, 0, false)
	case msg.KeyRight:
		CursorMove(a, 1, 0, false)
	case msg.KeyUp:
		CursorMove(a, 0, -1, false)
	case msg.KeyDown:
		CursorMove(a, 0, 1, false)
	case msg.KeyRune:
		switch e.Rune {
		case 'h':
			CursorMove(a, -1, 0, false)
		case 'l':
			CursorMove(a, 1, 0, false)
		case 'k':
			CursorMove(a, 0, -1, false)
		case 'j':
			CursorMove(a, 0, 1, false)
		case '0':
			CursorMoveTo(a, a.Window.CursorLine, 0, false)
		case '$':
			CursorMoveToLineEnd(a, false)
		case 'i':
			return ModeInsert
		case 'a':
			CursorMove(a, 1, 0, true)
			return ModeInsert
		case 'x':
			CursorDelete(a, 1)
			a.Window.Buffer.Undo.Commit()
		case 'u':
			undoLast(a)
		case 'v':
			return ModeVisual
		case ':':
			enterCommandLineEx(a)
			return ModeCommandLineEx
		}
	}
	return ModeNormal
}

func handleInsert(a *Access, e msg.KeyEvent) Mode {
	switch e.Code {
	case msg.KeyEsc:
		a.Window.Buffer.Undo.Commit()
		CursorMove(a, -1, 0, false)
		return ModeNormal
	case msg.KeyEnter:
		CursorInsert(a, []rune{'\n'})
	case msg.KeyBackspace:
		CursorDelete(a, -1)
	case msg.KeyDelete:
		CursorDelete(a, 1)
	case msg.KeyTab:
		CursorInsert(a, []rune{'\t'})
	case msg.KeyLeft:
		CursorMove(a, -1, 0, true)
	case msg.KeyRight:
		CursorMove(a, 1, 0, true)
	case msg.KeyUp:
		CursorMove(a, 0, -1, true)
	case msg.KeyDown:
		CursorMove(a, 0, 1, true)
	case msg.KeyRune:
		CursorInsert(a, []rune{e.Rune})
	}
	return ModeInsert
}

// handleVisual keeps motions alive but drops edits; a richer selection
// model can grow here later.
func handleVisual(a *Access, e msg.KeyEvent) Mode {
	switch e.Code {
	case msg.KeyEsc:
		return ModeNormal
	case msg.KeyRune:
		switch e.Rune {
		case 'h':
			CursorMove(a, -1, 0, false)
		case 'l':
			CursorMove(a, 1, 0, false)
		case 'k':
			CursorMove(a, 0, -1, false)
		case 'j':
			CursorMove(a, 0, 1, false)
		case 'v':
			return ModeNormal
		}
	}
	return ModeVisual
}

func handleCommandLineEx(a *Access, e msg.KeyEvent) Mode {
	switch e.Code {
	case msg.KeyEsc:
		leaveCommandLineEx(a)
		return ModeNormal
	case msg.KeyEnter:
		cmd := a.CmdLine.InputString()
		leaveCommandLineEx(a)
		return ExecuteEx(a, cmd)
	case msg.KeyBackspace:
		cmdLineDelete(a, -1)
		if a.CmdLine.Input.IsEmpty() && a.CmdLine.CursorChar == 0 {
			leaveCommandLineEx(a)
			return ModeNormal
		}
	case msg.KeyRune:
		cmdLineInsert(a, []rune{e.Rune})
	}
	return ModeCommandLineEx
}

func (m *Machine) handleMock(a *Access, op msg.MockOp) Mode {
	switch op.Kind {
	case msg.MockGotoNormalMode:
		if m.mode == ModeCommandLineEx {
			leaveCommandLineEx(a)
		}
		if m.mode == ModeInsert {
			a.Window.Buffer.Undo.Commit()
		}
		return ModeNormal
	case msg.MockGotoInsertMode:
		return ModeInsert
	case msg.MockGotoCommandLineExMode:
		enterCommandLineEx(a)
		return ModeCommandLineEx
	case msg.MockCursorInsert:
		if m.mode == ModeCommandLineEx {
			cmdLineInsert(a, []rune(op.Payload))
		} else {
			CursorInsert(a, []rune(op.Payload))
		}
		return m.mode
	case msg.MockCursorDelete:
		if m.mode == ModeCommandLineEx {
			cmdLineDelete(a, op.N)
		} else {
			CursorDelete(a, op.N)
		}
		return m.mode
	case msg.MockCursorMoveBy:
		CursorMove(a, op.DX, op.DY, m.mode == ModeInsert)
		return m.mode
	case msg.MockConfirmExCommandAndGotoNormalMode:
		cmd := a.CmdLine.InputString()
		leaveCommandLineEx(a)
		return ExecuteEx(a, cmd)
	case msg.MockSleep:
		// Handled by the event source; a no-op here.
		return m.mode
	case msg.MockQuit:
		return ModeQuit
	}
	return m.mode
}

func enterCommandLineEx(a *Access) {
	a.CmdLine.Reset()
	a.CmdLine.Active = true
}

func leaveCommandLineEx(a *Access) {
	a.CmdLine.Reset()
}
