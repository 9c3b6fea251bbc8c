package evloop

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rsvim/rsvim-sub002/internal/canvas"
)

// ShaderWriter flushes one refresh's command stream to the terminal.
type ShaderWriter interface {
	Apply(s canvas.Shader) error
}

// AnsiWriter translates shader commands into ANSI escape sequences. One
// Apply is one buffered write, so a refresh reaches the terminal as a
// single syscall in the common case.
type AnsiWriter struct {
	out *bufio.Writer
}

func NewAnsiWriter(w io.Writer) *AnsiWriter {
	return &AnsiWriter{out: bufio.NewWriterSize(w, 32*1024)}
}

func (w *AnsiWriter) Apply(s canvas.Shader) error {
	for _, cmd := range s.Commands {
		switch c := cmd.(type) {
		case canvas.CursorGoto:
			fmt.Fprintf(w.out, "\x1b[%d;%dH", c.Y+1, c.X+1)
		case canvas.Print:
			w.out.WriteString(sgr(c.Fg, c.Bg, c.Attrs))
			w.out.WriteString(c.Text)
			w.out.WriteString("\x1b[0m")
		case canvas.CursorHide:
			w.out.WriteString("\x1b[?25l")
		case canvas.CursorShow:
			w.out.WriteString("\x1b[?25h")
		case canvas.CursorBlinkOn:
			w.out.WriteString("\x1b[?12h")
		case canvas.CursorBlinkOff:
			w.out.WriteString("\x1b[?12l")
		case canvas.CursorSetStyle:
			fmt.Fprintf(w.out, "\x1b[%d q", int(c.Style))
		}
	}
	return w.out.Flush()
}

// sgr builds the Select Graphic Rendition sequence for a pen. Default
// colors with no attributes need no sequence at all.
func sgr(fg, bg canvas.Color, attrs canvas.Attr) string {
	var parts []string
	if attrs&canvas.AttrBold != 0 {
		parts = append(parts, "1")
	}
	if attrs&canvas.AttrItalic != 0 {
		parts = append(parts, "3")
	}
	if attrs&canvas.AttrUnderline != 0 {
		parts = append(parts, "4")
	}
	if attrs&canvas.AttrReverse != 0 {
		parts = append(parts, "7")
	}
	parts = appendColor(parts, fg, 38)
	parts = appendColor(parts, bg, 48)
	if len(parts) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(parts, ";") + "m"
}

func appendColor(parts []string, c canvas.Color, base int) []string {
	switch {
	case c == canvas.ColorDefault:
		return parts
	case c.IsRGB():
		r, g, b := c.RGBValues()
		return append(parts, fmt.Sprintf("%d;2;%d;%d;%d", base, r, g, b))
	default:
		return append(parts, fmt.Sprintf("%d;5;%d", base, int(c)))
	}
}
