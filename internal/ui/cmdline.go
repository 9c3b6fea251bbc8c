package ui

import (
	"github.com/rsvim/rsvim-sub002/internal/buf"
	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
	"github.com/rsvim/rsvim-sub002/internal/viewport"
)

// CommandLineState backs the bottom command line: the ex input text while
// the user is typing a command, and the message history otherwise.
type CommandLineState struct {
	// Input is the ex command being typed, without the leading colon.
	Input *buf.Text
	// CursorChar is the input cursor position on line 0.
	CursorChar int
	// Active is true while in ex command-line mode.
	Active bool

	Contents *Contents
}

func NewCommandLineState(contents *Contents) *CommandLineState {
	return &CommandLineState{
		Input:    buf.NewText("", buf.DefaultOptions()),
		Contents: contents,
	}
}

// Reset clears the input and leaves ex mode.
func (s *CommandLineState) Reset() {
	s.Input.Clear()
	s.CursorChar = 0
	s.Active = false
}

// InputString returns the typed command without its trailing EOL.
func (s *CommandLineState) InputString() string {
	content := s.Input.Line(0)
	for len(content) > 0 && (content[len(content)-1] == '\n' || content[len(content)-1] == '\r') {
		content = content[:len(content)-1]
	}
	return string(content)
}

// CommandLine renders the ex prompt or the latest message.
type CommandLine struct {
	State *CommandLineState
}

func (w *CommandLine) Draw(c *canvas.Canvas, shape coord.U16Rect) {
	width := int(shape.Width())
	if width <= 0 || shape.Height() == 0 {
		return
	}
	var cells []canvas.Cell
	if w.State.Active {
		cells = append(cells, canvas.NewCell(":"))
		vp := viewport.Compute(w.State.Input, viewport.Options{}, width-1, 1, 0, 0)
		if lv, ok := vp.Line(0); ok && len(lv.Rows) > 0 {
			content := w.State.Input.Line(0)
			r := lv.Rows[0]
			for i := r.StartChar; i < r.EndChar && len(cells) < width; i++ {
				cells = appendCharCells(cells, w.State.Input, content[i], width)
			}
		}
	} else if last, ok := w.State.Contents.Last(); ok {
		for _, g := range last {
			if len(cells) >= width {
				break
			}
			cells = append(cells, canvas.NewCell(string(g)))
		}
	}
	for len(cells) < width {
		cells = append(cells, canvas.EmptyCell())
	}
	c.TrySetCellsAt(canvas.Pos{X: shape.X1, Y: shape.Y1}, cells[:width])
}
