//go:build !windows

package evloop

import (
	"fmt"
	"os"
	"os/signal"
	"unicode/utf8"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/rsvim/rsvim-sub002/internal/msg"
)

// TtyEventSource reads raw terminal input and turns bytes into key
// events. It also watches SIGWINCH and reports resizes.
type TtyEventSource struct {
	in      *os.File
	events  chan msg.Event
	done    chan struct{}
	winch   chan os.Signal
	restore func() error
}

// NewTtyEventSource switches the terminal into raw mode and starts the
// reader and resize watcher goroutines.
func NewTtyEventSource(in *os.File) (*TtyEventSource, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("input %s is not a terminal", in.Name())
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}

	s := &TtyEventSource{
		in:      in,
		events:  make(chan msg.Event, 16),
		done:    make(chan struct{}),
		winch:   make(chan os.Signal, 1),
		restore: func() error { return term.Restore(fd, old) },
	}
	signal.Notify(s.winch, unix.SIGWINCH)
	go s.readLoop()
	go s.watchResize(fd)
	return s, nil
}

// Size reports the current terminal dimensions.
func (s *TtyEventSource) Size() (uint16, uint16, error) {
	w, h, err := term.GetSize(int(s.in.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("terminal size: %w", err)
	}
	return uint16(w), uint16(h), nil
}

func (s *TtyEventSource) Events() <-chan msg.Event {
	return s.events
}

func (s *TtyEventSource) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	signal.Stop(s.winch)
	return s.restore()
}

func (s *TtyEventSource) watchResize(fd int) {
	for {
		select {
		case <-s.done:
			return
		case <-s.winch:
			if w, h, err := term.GetSize(fd); err == nil {
				s.emit(msg.ResizeEvent{Width: uint16(w), Height: uint16(h)})
			}
		}
	}
}

func (s *TtyEventSource) emit(ev msg.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *TtyEventSource) readLoop() {
	defer close(s.events)
	var pending []byte
	chunk := make([]byte, 256)
	for {
		n, err := s.in.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			pending = s.decode(pending)
		}
		if err != nil {
			return
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

// decode consumes complete input sequences from buf and returns the
// remainder, which may be a partial escape sequence or UTF-8 rune.
func (s *TtyEventSource) decode(buf []byte) []byte {
	for len(buf) > 0 {
		ev, n := decodeOne(buf)
		if n == 0 {
			return buf
		}
		if ev != nil {
			s.emit(ev)
		}
		buf = buf[n:]
	}
	return nil
}

// decodeOne parses one event off the front of buf, returning the bytes
// consumed. n == 0 means incomplete input.
func decodeOne(buf []byte) (msg.Event, int) {
	switch b := buf[0]; {
	case b == 0x1b:
		return decodeEscape(buf)
	case b == '\r' || b == '\n':
		return msg.KeyEvent{Code: msg.KeyEnter}, 1
	case b == 0x7f || b == 0x08:
		return msg.KeyEvent{Code: msg.KeyBackspace}, 1
	case b == '\t':
		return msg.KeyEvent{Code: msg.KeyTab}, 1
	case b < 0x20:
		// Ctrl-letter arrives as the letter minus 0x60.
		return msg.KeyEvent{Code: msg.KeyRune, Rune: rune(b) + 0x60, Mods: msg.ModCtrl}, 1
	default:
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 && !utf8.FullRune(buf) {
			return nil, 0
		}
		return msg.KeyEvent{Code: msg.KeyRune, Rune: r}, size
	}
}

func decodeEscape(buf []byte) (msg.Event, int) {
	if len(buf) == 1 {
		// A lone ESC; a following byte would have arrived in the same read.
		return msg.KeyEvent{Code: msg.KeyEsc}, 1
	}
	if buf[1] != '[' {
		// Alt-modified key.
		ev, n := decodeOne(buf[1:])
		if n == 0 {
			return nil, 0
		}
		if key, ok := ev.(msg.KeyEvent); ok {
			key.Mods |= msg.ModAlt
			return key, n + 1
		}
		return ev, n + 1
	}
	if len(buf) < 3 {
		return nil, 0
	}
	switch buf[2] {
	case 'A':
		return msg.KeyEvent{Code: msg.KeyUp}, 3
	case 'B':
		return msg.KeyEvent{Code: msg.KeyDown}, 3
	case 'C':
		return msg.KeyEvent{Code: msg.KeyRight}, 3
	case 'D':
		return msg.KeyEvent{Code: msg.KeyLeft}, 3
	case 'H':
		return msg.KeyEvent{Code: msg.KeyHome}, 3
	case 'F':
		return msg.KeyEvent{Code: msg.KeyEnd}, 3
	case '3':
		if len(buf) < 4 {
			return nil, 0
		}
		if buf[3] == '~' {
			return msg.KeyEvent{Code: msg.KeyDelete}, 4
		}
		return nil, 4
	default:
		// Unrecognized CSI sequence: drop the introducer and final byte.
		return nil, 3
	}
}
