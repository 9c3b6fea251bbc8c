package state

import (
	"fmt"

	"github.com/rsvim/rsvim-sub002/internal/buf/undo"
	"github.com/rsvim/rsvim-sub002/internal/viewport"
)

// contentShape returns the drawable size of the window content widget.
func contentShape(a *Access) (int, int) {
	shape, ok := a.Tree.ActualShape(a.ContentId)
	if !ok {
		return 0, 0
	}
	return int(shape.Width()), int(shape.Height())
}

// SyncWindow re-derives the window viewport and cursor placement after an
// out-of-band change, such as an option write from script.
func SyncWindow(a *Access) {
	syncWindow(a)
}

// syncWindow re-derives the window viewport and parks the cursor widget
// on the cursor's display cell.
func syncWindow(a *Access) {
	w, h := contentShape(a)
	a.Window.Sync(w, h)
	if !a.CursorId.IsNil() {
		cv := a.Window.Cursor
		_ = a.Tree.BoundedMoveTo(a.CursorId, cv.ColumnIdx, cv.RowIdx)
	}
}

// lastLineIdx is the last line the cursor may rest on. The rope's
// trailing empty line (after the final EOL) is not addressable.
func lastLineIdx(a *Access) int {
	text := a.Window.Buffer.Text
	n := text.LineCount()
	if n > 1 && len(text.Line(n-1)) == 0 {
		n--
	}
	return n - 1
}

// clampChar clamps a char index onto the line. With includeEol the
// cursor may rest one past the last non-EOL char, on the EOL slot.
func clampChar(a *Access, line, char int, includeEol bool) int {
	if char < 0 {
		return 0
	}
	last, ok := a.Window.Buffer.Text.LastCharOnLineNoEOL(line)
	if !ok {
		return 0
	}
	max := last
	if includeEol {
		max = last + 1
	}
	if char > max {
		return max
	}
	return char
}

// CursorMove moves the cursor by a delta, scrolling the viewport when the
// target falls outside it.
func CursorMove(a *Access, dx, dy int, includeEol bool) {
	line := a.Window.CursorLine + dy
	if line < 0 {
		line = 0
	}
	if last := lastLineIdx(a); line > last {
		line = last
	}
	char := clampChar(a, line, a.Window.CursorChar+dx, includeEol)
	moveCursorTo(a, line, char, directionOf(dx, dy))
}

// CursorMoveTo moves the cursor to an absolute position.
func CursorMoveTo(a *Access, line, char int, includeEol bool) {
	if line < 0 {
		line = 0
	}
	if last := lastLineIdx(a); line > last {
		line = last
	}
	dy := line - a.Window.CursorLine
	char = clampChar(a, line, char, includeEol)
	dx := char - a.Window.CursorChar
	moveCursorTo(a, line, char, directionOf(dx, dy))
}

// CursorMoveToLineEnd moves to the last addressable char of the line.
func CursorMoveToLineEnd(a *Access, includeEol bool) {
	line := a.Window.CursorLine
	last, ok := a.Window.Buffer.Text.LastCharOnLineNoEOL(line)
	if !ok {
		last = 0
	} else if includeEol {
		last++
	}
	moveCursorTo(a, line, last, viewport.DirectionRight)
}

func directionOf(dx, dy int) viewport.Direction {
	switch {
	case dy > 0:
		return viewport.DirectionDown
	case dy < 0:
		return viewport.DirectionUp
	case dx < 0:
		return viewport.DirectionLeft
	default:
		return viewport.DirectionRight
	}
}

func moveCursorTo(a *Access, line, char int, dir viewport.Direction) {
	w, h := contentShape(a)
	if a.Window.Viewport == nil || !a.Window.Viewport.Contains(line, char) {
		a.Window.ScrollTo(w, h, dir, line, char)
	}
	a.Window.CursorLine = line
	a.Window.CursorChar = char
	syncWindow(a)
}

// CursorInsert types the payload at the cursor, records the change in the
// open undo commit, and follows the cursor with the viewport.
func CursorInsert(a *Access, payload []rune) {
	w := a.Window
	text := w.Buffer.Text
	before := undo.Pos{Line: w.CursorLine, Char: w.CursorChar}

	res := text.InsertAt(w.CursorLine, w.CursorChar, payload)
	recorded := payload
	if res.AppendedEOL {
		recorded = append(append([]rune{}, payload...), text.Options().FileFormat.EOL()...)
	}
	after := undo.Pos{Line: res.Pos.Line, Char: res.Pos.Char}
	w.Buffer.Undo.Insert(res.StartAbs, recorded, before, after)

	dir := viewport.DirectionRight
	if res.Pos.Line != w.CursorLine {
		dir = viewport.DirectionDown
	}
	moveCursorTo(a, res.Pos.Line, res.Pos.Char, dir)
}

// CursorDelete deletes n chars at the cursor (negative n deletes to the
// left) and records the change.
func CursorDelete(a *Access, n int) {
	w := a.Window
	text := w.Buffer.Text
	before := undo.Pos{Line: w.CursorLine, Char: w.CursorChar}

	res := text.DeleteAt(w.CursorLine, w.CursorChar, n)
	if res == nil {
		return
	}
	recorded := res.Removed
	if res.AppendedEOL {
		// The deletion took the trailing EOL and the invariant put one
		// back; the two cancel in the recorded payload.
		eol := text.Options().FileFormat.EOL()
		if len(recorded) >= len(eol) {
			recorded = recorded[:len(recorded)-len(eol)]
		}
	}
	if len(recorded) > 0 {
		after := undo.Pos{Line: res.Pos.Line, Char: res.Pos.Char}
		w.Buffer.Undo.Delete(res.StartAbs, recorded, before, after)
	}

	dir := viewport.DirectionRight
	if n < 0 {
		dir = viewport.DirectionLeft
	}
	moveCursorTo(a, res.Pos.Line, res.Pos.Char, dir)
}

// CursorClear empties the text and homes the cursor.
func CursorClear(a *Access) {
	a.Window.Buffer.Text.Clear()
	moveCursorTo(a, 0, 0, viewport.DirectionLeft)
}

func undoLast(a *Access) {
	w := a.Window
	w.Buffer.Undo.Commit()
	cursor, ok := w.Buffer.Undo.Undo(w.Buffer.Text)
	if !ok {
		a.Contents.Push("Already at oldest change")
		return
	}
	line := cursor.Line
	if last := lastLineIdx(a); line > last {
		line = last
	}
	char := clampChar(a, line, cursor.Char, true)
	moveCursorTo(a, line, char, viewport.DirectionLeft)
}

func cmdLineInsert(a *Access, payload []rune) {
	s := a.CmdLine
	res := s.Input.InsertAt(0, s.CursorChar, payload)
	s.CursorChar = res.Pos.Char
}

func cmdLineDelete(a *Access, n int) {
	s := a.CmdLine
	res := s.Input.DeleteAt(0, s.CursorChar, n)
	if res != nil {
		s.CursorChar = res.Pos.Char
	}
}

func pushError(a *Access, err error) {
	a.Contents.Push(fmt.Sprintf("Error: %v", err))
}
