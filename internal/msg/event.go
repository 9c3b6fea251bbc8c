package msg

import "time"

// KeyCode identifies a non-printable key.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyDelete
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
)

// KeyMods is a bit set of held modifiers.
type KeyMods uint8

const (
	ModCtrl KeyMods = 1 << iota
	ModAlt
)

// Event is one input delivered to the main loop, either from the
// terminal reader or from a mock source in tests.
type Event interface{ isEvent() }

// KeyEvent is a single key press. Code is KeyRune for printable input,
// with the rune in Rune.
type KeyEvent struct {
	Code KeyCode
	Rune rune
	Mods KeyMods
}

// ResizeEvent reports a new terminal size.
type ResizeEvent struct {
	Width  uint16
	Height uint16
}

// MockEvent wraps a scripted operation for headless end-to-end tests.
type MockEvent struct {
	Op MockOp
}

func (KeyEvent) isEvent()    {}
func (ResizeEvent) isEvent() {}
func (MockEvent) isEvent()   {}

// MockOpKind enumerates the scripted operations a mock event source can
// deliver. They bypass key decoding and drive the state machine directly.
type MockOpKind int

const (
	// MockGotoNormalMode returns to normal mode, discarding pending input.
	MockGotoNormalMode MockOpKind = iota
	// MockGotoInsertMode enters insert mode at the cursor.
	MockGotoInsertMode
	// MockGotoCommandLineExMode enters ex command-line mode.
	MockGotoCommandLineExMode
	// MockCursorInsert types the payload at the cursor.
	MockCursorInsert
	// MockCursorDelete deletes N chars at the cursor, sign is direction.
	MockCursorDelete
	// MockCursorMoveBy moves the cursor by a delta.
	MockCursorMoveBy
	// MockConfirmExCommandAndGotoNormalMode executes the pending ex
	// command and returns to normal mode.
	MockConfirmExCommandAndGotoNormalMode
	// MockSleep pauses the event feed without touching the editor, so
	// in-flight script work can settle.
	MockSleep
	// MockQuit requests shutdown.
	MockQuit
)

// MockOp is one scripted operation.
type MockOp struct {
	Kind    MockOpKind
	Payload string
	N       int
	DX, DY  int
	Sleep   time.Duration
}

func GotoNormalMode() MockOp        { return MockOp{Kind: MockGotoNormalMode} }
func GotoInsertMode() MockOp        { return MockOp{Kind: MockGotoInsertMode} }
func GotoCommandLineExMode() MockOp { return MockOp{Kind: MockGotoCommandLineExMode} }
func CursorInsert(payload string) MockOp {
	return MockOp{Kind: MockCursorInsert, Payload: payload}
}
func CursorDelete(n int) MockOp { return MockOp{Kind: MockCursorDelete, N: n} }
func CursorMoveBy(dx, dy int) MockOp {
	return MockOp{Kind: MockCursorMoveBy, DX: dx, DY: dy}
}
func ConfirmExCommandAndGotoNormalMode() MockOp {
	return MockOp{Kind: MockConfirmExCommandAndGotoNormalMode}
}
func Sleep(d time.Duration) MockOp { return MockOp{Kind: MockSleep, Sleep: d} }
func Quit() MockOp                 { return MockOp{Kind: MockQuit} }
