package evloop

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
	"github.com/rsvim/rsvim-sub002/internal/msg"
)

func writeScript(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func runLoop(t *testing.T, opts Options, ops []msg.MockOp) (*Loop, int) {
	t.Helper()
	opts.Source = NewMockEventSource(ops)
	opts.Writer = NewAnsiWriter(io.Discard)
	if opts.Size.IsEmpty() {
		opts.Size = coord.NewSize(20, 6)
	}
	l, err := New(opts)
	require.NoError(t, err)
	code := l.Run(context.Background())
	return l, code
}

func TestConfigEchoesOnStartup(t *testing.T) {
	dir := t.TempDir()
	entry := writeScript(t, dir, "rsvim.js", `
const infra = require("rsvim:ext/infra");
Rsvim.cmd.echo(infra.stringify(1));`)

	l, _ := runLoop(t, Options{ConfigEntry: entry}, []msg.MockOp{
		msg.Sleep(100 * time.Millisecond),
		msg.Quit(),
	})
	assert.Equal(t, []string{"1"}, l.Contents().Messages())
}

func TestSnapshotPersistsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	entry := writeScript(t, dir, "rsvim.js", `Rsvim.cmd.echo("up");`)
	ops := []msg.MockOp{msg.Sleep(100 * time.Millisecond), msg.Quit()}

	l, _ := runLoop(t, Options{ConfigEntry: entry, DataDir: data}, ops)
	assert.Equal(t, []string{"up"}, l.Contents().Messages())
	_, err := os.Stat(filepath.Join(data, "snapshot.bin"))
	require.NoError(t, err)

	// Second run serves the entry from the snapshot cache.
	l2, _ := runLoop(t, Options{ConfigEntry: entry, DataDir: data}, ops)
	assert.Equal(t, []string{"up"}, l2.Contents().Messages())
}

func TestDynamicImportAndUncaughtReport(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "util.js", `exports.value = 1;`)
	entry := writeScript(t, dir, "rsvim.js", `
importModule("./util.js").then((m) => { Rsvim.cmd.echo(m.value); });
queueMicrotask(() => { reportError("oops"); });`)

	l, _ := runLoop(t, Options{ConfigEntry: entry}, []msg.MockOp{
		msg.Sleep(100 * time.Millisecond),
		msg.Quit(),
	})
	assert.ElementsMatch(t, []string{"1", "Uncaught oops"}, l.Contents().Messages())
}

func TestTimerFires(t *testing.T) {
	dir := t.TempDir()
	entry := writeScript(t, dir, "rsvim.js",
		`setTimeout(() => Rsvim.cmd.echo("later"), 10);`)

	l, _ := runLoop(t, Options{ConfigEntry: entry}, []msg.MockOp{
		msg.Sleep(200 * time.Millisecond),
		msg.Quit(),
	})
	assert.Equal(t, []string{"later"}, l.Contents().Messages())
}

func TestExCommandsThroughLoop(t *testing.T) {
	l, _ := runLoop(t, Options{}, []msg.MockOp{
		msg.GotoCommandLineExMode(),
		msg.CursorInsert("echo hi"),
		msg.ConfirmExCommandAndGotoNormalMode(),
		msg.GotoCommandLineExMode(),
		msg.CursorInsert("js Rsvim.cmd.echo(2)"),
		msg.ConfirmExCommandAndGotoNormalMode(),
		msg.Quit(),
	})
	assert.Equal(t, []string{"hi", "2"}, l.Contents().Messages())
}

func TestUserCommandFromConfig(t *testing.T) {
	dir := t.TempDir()
	entry := writeScript(t, dir, "rsvim.js",
		`Rsvim.cmd.create("greet", (args) => Rsvim.cmd.echo("hello " + args));`)

	l, _ := runLoop(t, Options{ConfigEntry: entry}, []msg.MockOp{
		msg.Sleep(100 * time.Millisecond),
		msg.GotoCommandLineExMode(),
		msg.CursorInsert("greet world"),
		msg.ConfirmExCommandAndGotoNormalMode(),
		msg.Quit(),
	})
	assert.Contains(t, l.Contents().Messages(), "hello world")
}

func TestUnknownExCommandStillReports(t *testing.T) {
	l, _ := runLoop(t, Options{}, []msg.MockOp{
		msg.GotoCommandLineExMode(),
		msg.CursorInsert("nonsense"),
		msg.ConfirmExCommandAndGotoNormalMode(),
		msg.Quit(),
	})
	assert.Equal(t, []string{"Not an editor command: nonsense"}, l.Contents().Messages())
}

func TestInsertAndWriteQuit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")

	l, _ := runLoop(t, Options{Files: []string{path}}, []msg.MockOp{
		msg.GotoInsertMode(),
		msg.CursorInsert("hello"),
		msg.GotoNormalMode(),
		msg.GotoCommandLineExMode(),
		msg.CursorInsert("w"),
		msg.ConfirmExCommandAndGotoNormalMode(),
		msg.Sleep(100 * time.Millisecond),
		msg.GotoCommandLineExMode(),
		msg.CursorInsert("q"),
		msg.ConfirmExCommandAndGotoNormalMode(),
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
	last, ok := l.Contents().Last()
	require.True(t, ok)
	assert.Contains(t, last, "written")
}

func TestWriteQuitFlushesBeforeExit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")

	runLoop(t, Options{Files: []string{path}}, []msg.MockOp{
		msg.GotoInsertMode(),
		msg.CursorInsert("bye"),
		msg.GotoNormalMode(),
		msg.GotoCommandLineExMode(),
		msg.CursorInsert("wq"),
		msg.ConfirmExCommandAndGotoNormalMode(),
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bye\n", string(data))
}

func TestScriptOptionWrite(t *testing.T) {
	dir := t.TempDir()
	entry := writeScript(t, dir, "rsvim.js", `
Rsvim.opt.setWrap(false);
Rsvim.cmd.echo(Rsvim.opt.getWrap());`)

	l, _ := runLoop(t, Options{ConfigEntry: entry}, []msg.MockOp{
		msg.Sleep(100 * time.Millisecond),
		msg.Quit(),
	})
	assert.Equal(t, []string{"false"}, l.Contents().Messages())
	assert.False(t, l.layout.Window.Opts.Wrap)
}

func TestRtExitStopsLoop(t *testing.T) {
	dir := t.TempDir()
	entry := writeScript(t, dir, "rsvim.js", `Rsvim.rt.exit(3);`)

	_, code := runLoop(t, Options{ConfigEntry: entry}, []msg.MockOp{
		msg.Sleep(time.Second),
		msg.Quit(),
	})
	assert.Equal(t, 3, code)
}

func TestAnsiWriterTranslatesCommands(t *testing.T) {
	var out bytes.Buffer
	w := NewAnsiWriter(&out)
	require.NoError(t, w.Apply(canvas.Shader{Commands: []canvas.ShaderCommand{
		canvas.CursorGoto{X: 2, Y: 1},
		canvas.Print{Text: "hi", Fg: canvas.ColorDefault, Bg: canvas.ColorDefault},
		canvas.CursorShow{},
	}}))
	assert.Equal(t, "\x1b[2;3Hhi\x1b[0m\x1b[?25h", out.String())
}

func TestAnsiWriterStyledPrint(t *testing.T) {
	var out bytes.Buffer
	w := NewAnsiWriter(&out)
	require.NoError(t, w.Apply(canvas.Shader{Commands: []canvas.ShaderCommand{
		canvas.Print{Text: "x", Fg: canvas.RGB(255, 0, 0), Bg: canvas.ColorDefault, Attrs: canvas.AttrBold},
	}}))
	assert.Equal(t, "\x1b[1;38;2;255;0;0mx\x1b[0m", out.String())
}

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  msg.Event
		n     int
	}{
		{"rune", []byte("a"), msg.KeyEvent{Code: msg.KeyRune, Rune: 'a'}, 1},
		{"wide rune", []byte("你"), msg.KeyEvent{Code: msg.KeyRune, Rune: '你'}, 3},
		{"enter", []byte{0x0d}, msg.KeyEvent{Code: msg.KeyEnter}, 1},
		{"backspace", []byte{0x7f}, msg.KeyEvent{Code: msg.KeyBackspace}, 1},
		{"tab", []byte{0x09}, msg.KeyEvent{Code: msg.KeyTab}, 1},
		{"ctrl-c", []byte{0x03}, msg.KeyEvent{Code: msg.KeyRune, Rune: 'c', Mods: msg.ModCtrl}, 1},
		{"esc", []byte{0x1b}, msg.KeyEvent{Code: msg.KeyEsc}, 1},
		{"up", []byte("\x1b[A"), msg.KeyEvent{Code: msg.KeyUp}, 3},
		{"left", []byte("\x1b[D"), msg.KeyEvent{Code: msg.KeyLeft}, 3},
		{"delete", []byte("\x1b[3~"), msg.KeyEvent{Code: msg.KeyDelete}, 4},
		{"alt-x", []byte("\x1bx"), msg.KeyEvent{Code: msg.KeyRune, Rune: 'x', Mods: msg.ModAlt}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, n := decodeOne(tt.input)
			assert.Equal(t, tt.want, ev)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestDecodePartialInput(t *testing.T) {
	ev, n := decodeOne([]byte("\x1b["))
	assert.Nil(t, ev)
	assert.Zero(t, n)

	ev, n = decodeOne([]byte{0xe4, 0xbd})
	assert.Nil(t, ev)
	assert.Zero(t, n)
}

func TestResizeReflows(t *testing.T) {
	src := NewMockEventSource(nil)
	defer src.Close()
	l, err := New(Options{Source: src, Writer: NewAnsiWriter(io.Discard), Size: coord.NewSize(20, 6)})
	require.NoError(t, err)
	l.handleEvent(msg.ResizeEvent{Width: 10, Height: 4})
	assert.Equal(t, coord.NewSize(10, 4), l.canvas.Size())
	assert.Equal(t, 10, l.layout.Window.Viewport.Width)
}
