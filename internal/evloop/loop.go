// Package evloop runs the editor: one goroutine owns the script isolate,
// the buffers, the widget tree and the canvas, and multiplexes input
// events, script requests and async completions over a select. Async work
// runs on tracked goroutines and reports back through channels, so the
// owning goroutine never blocks on it.
package evloop

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rsvim/rsvim-sub002/internal/buf"
	"github.com/rsvim/rsvim-sub002/internal/canvas"
	"github.com/rsvim/rsvim-sub002/internal/coord"
	"github.com/rsvim/rsvim-sub002/internal/jsrt"
	"github.com/rsvim/rsvim-sub002/internal/msg"
	"github.com/rsvim/rsvim-sub002/internal/state"
	"github.com/rsvim/rsvim-sub002/internal/ui"
	"github.com/rsvim/rsvim-sub002/internal/viewport"
)

// Options configures a Loop.
type Options struct {
	Source EventSource
	Writer ShaderWriter
	Size   coord.Size
	// Files are opened into buffers at startup; the first becomes the
	// focused buffer. Empty means one unnamed buffer.
	Files []string
	// ConfigEntry is the user config script, empty to skip.
	ConfigEntry string
	// DataDir holds the startup snapshot cache, empty to disable.
	DataDir string
	// ImportMap maps bare import prefixes to directories.
	ImportMap map[string]string
	Logger    *slog.Logger
}

// Loop is the single-threaded editor core. New and Run must be called on
// the same goroutine, which becomes the isolate owner.
type Loop struct {
	buffers *buf.BuffersManager
	layout  *ui.Layout
	canvas  *canvas.Canvas
	machine *state.Machine
	rt      *jsrt.Runtime
	access  *state.Access

	source EventSource
	writer ShaderWriter
	logger *slog.Logger

	requests  chan msg.Request
	responses chan msg.Response
	notify    chan msg.WorkerNotify

	snapshots   *jsrt.SnapshotStore
	configEntry string

	detached Tracker
	blocking Tracker

	cancel   context.CancelFunc
	quitting bool
	exitCode int
}

// New builds the loop on the calling goroutine.
func New(opts Options) (*Loop, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	l := &Loop{
		buffers:     buf.NewBuffersManager(),
		source:      opts.Source,
		writer:      opts.Writer,
		logger:      opts.Logger,
		requests:    make(chan msg.Request, 128),
		responses:   make(chan msg.Response, 128),
		notify:      make(chan msg.WorkerNotify, 16),
		configEntry: opts.ConfigEntry,
	}

	buffer, err := l.openStartupBuffer(opts.Files)
	if err != nil {
		return nil, err
	}

	l.canvas = canvas.New(opts.Size)
	l.layout = ui.NewLayout(opts.Size, buffer, viewport.Options{Wrap: true})
	l.machine = state.NewMachine()
	l.access = &state.Access{
		Tree:      l.layout.Tree,
		Window:    l.layout.Window,
		CmdLine:   l.layout.CmdLine,
		Contents:  l.layout.Contents,
		ContentId: l.layout.ContentId,
		CursorId:  l.layout.CursorId,
		CmdLineId: l.layout.CmdLineId,
	}

	rt, err := jsrt.New(jsrt.Options{Editor: l, Requests: l.requests, ImportMap: opts.ImportMap})
	if err != nil {
		return nil, fmt.Errorf("evloop: %w", err)
	}
	l.rt = rt

	l.access.EvalJs = rt.Eval
	l.access.RunUserCommand = rt.RunUserCommand
	l.access.SaveBuffer = l.saveFocused
	l.access.OpenFile = l.openIntoWindow

	if opts.DataDir != "" {
		l.snapshots = jsrt.OpenSnapshotStore(opts.DataDir)
	}
	return l, nil
}

func (l *Loop) openStartupBuffer(files []string) (*buf.Buffer, error) {
	if len(files) == 0 {
		b, err := l.buffers.CreateUnnamed(buf.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("evloop: %w", err)
		}
		return b, nil
	}
	var first *buf.Buffer
	for _, path := range files {
		b, err := l.buffers.OpenFile(path, buf.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("evloop: %w", err)
		}
		if first == nil {
			first = b
		}
	}
	return first, nil
}

// Contents exposes the message history, for tests and the command line.
func (l *Loop) Contents() *ui.Contents {
	return l.layout.Contents
}

// Buffers exposes the buffer manager.
func (l *Loop) Buffers() *buf.BuffersManager {
	return l.buffers
}

// Run drives the loop until quit, returning the exit code. Must be called
// on the goroutine that called New.
func (l *Loop) Run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	defer cancel()

	if l.configEntry != "" {
		l.rt.LoadEntry(l.configEntry)
	}
	l.render()

	for !l.quitting {
		select {
		case <-ctx.Done():
			l.quitting = true
		case ev, ok := <-l.source.Events():
			if !ok {
				l.quitting = true
				break
			}
			l.handleEvent(ev)
		case req := <-l.requests:
			l.service(ctx, req)
		case n := <-l.notify:
			l.handleNotify(n)
		case resp := <-l.responses:
			l.rt.Deliver(resp)
			l.drainResponses()
			l.rt.Tick()
		}
		l.render()
	}

	l.shutdown()
	return l.exitCode
}

func (l *Loop) handleEvent(ev msg.Event) {
	if rz, ok := ev.(msg.ResizeEvent); ok {
		size := coord.NewSize(rz.Width, rz.Height)
		l.canvas.Resize(size)
		l.layout.Resize(size)
	}
	if l.machine.Handle(l.access, ev) == state.ModeQuit {
		l.quitting = true
	}
}

// service handles one script request. Filesystem and module loads run
// inline because the descriptor table and module map belong to this
// goroutine; timers detach.
func (l *Loop) service(ctx context.Context, req msg.Request) {
	switch r := req.(type) {
	case msg.TimeoutReq:
		l.detached.Go(func() {
			timer := time.NewTimer(r.Duration)
			defer timer.Stop()
			select {
			case <-ctx.Done():
			case <-timer.C:
				select {
				case l.responses <- msg.TimeoutResp{FutureId: r.FutureId, Duration: r.Duration}:
				case <-ctx.Done():
				}
			}
		})
		return
	case msg.FsOpenReq:
		fd, err := l.rt.Fds().Open(r.Path, r.Flags, r.Perm)
		l.rt.Deliver(msg.FsOpenResp{FutureId: r.FutureId, Fd: fd, Err: err})
	case msg.FsReadReq:
		data, err := l.rt.Fds().Read(r.Fd, r.N)
		l.rt.Deliver(msg.FsReadResp{FutureId: r.FutureId, Bytes: data, Err: err})
	case msg.FsWriteReq:
		n, err := l.rt.Fds().Write(r.Fd, r.Bytes)
		l.rt.Deliver(msg.FsWriteResp{FutureId: r.FutureId, N: n, Err: err})
	case msg.FsCloseReq:
		err := l.rt.Fds().Close(r.Fd)
		l.rt.Deliver(msg.FsCloseResp{FutureId: r.FutureId, Err: err})
	case msg.ImportLoadReq:
		source, err := l.loadModuleSource(r.Specifier)
		l.rt.Deliver(msg.ImportLoadResp{FutureId: r.FutureId, Specifier: r.Specifier, Source: source, Err: err})
	}
	l.rt.Tick()
}

// loadModuleSource reads a module, consulting the snapshot cache first so
// an unchanged config skips the disk read on startup.
func (l *Loop) loadModuleSource(path string) (string, error) {
	if l.snapshots != nil {
		if source, ok := l.snapshots.Lookup(path); ok {
			return source, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	source := string(data)
	if l.snapshots != nil {
		l.snapshots.Store(path, source)
	}
	return source, nil
}

func (l *Loop) drainResponses() {
	for {
		select {
		case resp := <-l.responses:
			l.rt.Deliver(resp)
		default:
			return
		}
	}
}

// render draws the tree into the canvas and flushes the diff.
func (l *Loop) render() {
	l.layout.Tree.Draw(l.canvas)
	shader := l.canvas.Shade()
	if len(shader.Commands) == 0 {
		return
	}
	if err := l.writer.Apply(shader); err != nil {
		// Losing the terminal stream is fatal; nothing useful survives it.
		l.logger.Error("flush refresh", "error", err)
		l.quitting = true
		l.exitCode = 1
	}
}

func (l *Loop) shutdown() {
	l.cancel()
	l.blocking.Wait()
	l.detached.Wait()
	l.rt.Fds().CloseAll()
	if l.snapshots != nil {
		if err := l.snapshots.Flush(); err != nil {
			l.logger.Error("flush snapshot", "error", err)
		}
	}
	if err := l.source.Close(); err != nil {
		l.logger.Error("close event source", "error", err)
	}
}

// saveFocused writes the focused buffer back to its file on a blocking
// task, so shutdown waits for the write even when :wq quits immediately.
// Completion comes back as a worker notification.
func (l *Loop) saveFocused() error {
	buffer := l.layout.Window.Buffer
	if !buffer.Named() {
		return fmt.Errorf("buffer %d has no file name", buffer.Id)
	}
	size := len(buffer.Text.String())
	l.blocking.Go(func() {
		err := buffer.WriteToFile()
		// Best effort: the loop may already have quit by the time the
		// write lands, and shutdown must not deadlock on this send.
		select {
		case l.notify <- msg.WorkerNotify{Path: buffer.Path, Bytes: size, Err: err}:
		default:
		}
	})
	return nil
}

// handleNotify surfaces a worker's completion in the message history.
func (l *Loop) handleNotify(n msg.WorkerNotify) {
	if n.Err != nil {
		l.layout.Contents.Push(fmt.Sprintf("Error: %v", n.Err))
		l.logger.Error("worker task failed", "path", n.Path, "error", n.Err)
		return
	}
	l.layout.Contents.Push(fmt.Sprintf("\"%s\" %dB written", n.Path, n.Bytes))
}

// openIntoWindow backs the :e command.
func (l *Loop) openIntoWindow(path string) error {
	b, err := l.buffers.OpenFile(path, buf.DefaultOptions())
	if err != nil {
		return err
	}
	w := l.layout.Window
	w.Buffer = b
	w.CursorLine, w.CursorChar = 0, 0
	w.StartLine, w.StartColumn = 0, 0
	state.SyncWindow(l.access)
	return nil
}

// Echo implements jsrt.Editor.
func (l *Loop) Echo(text string) {
	l.layout.Contents.Push(text)
}

// OptGet implements jsrt.Editor over the window and buffer options.
func (l *Loop) OptGet(name string) (any, bool) {
	w := l.layout.Window
	bopts := w.Buffer.Text.Options()
	switch name {
	case "wrap":
		return w.Opts.Wrap, true
	case "lineBreak":
		return w.Opts.LineBreak, true
	case "tabStop":
		return bopts.TabStop, true
	case "expandTab":
		return bopts.ExpandTab, true
	case "shiftWidth":
		return bopts.ShiftWidth, true
	case "fileEncoding":
		return bopts.FileEncoding.String(), true
	case "fileFormat":
		return bopts.FileFormat.String(), true
	default:
		return nil, false
	}
}

// OptSet implements jsrt.Editor. A successful write re-syncs the window
// so the new layout shows on the next refresh.
func (l *Loop) OptSet(name string, value any) error {
	w := l.layout.Window
	bopts := w.Buffer.Text.Options()
	switch name {
	case "wrap":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("option %q expects a boolean", name)
		}
		w.Opts.Wrap = v
	case "lineBreak":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("option %q expects a boolean", name)
		}
		w.Opts.LineBreak = v
	case "tabStop":
		v, err := intOption(name, value)
		if err != nil {
			return err
		}
		bopts.TabStop = v
		w.Buffer.Text.SetOptions(bopts)
	case "expandTab":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("option %q expects a boolean", name)
		}
		bopts.ExpandTab = v
		w.Buffer.Text.SetOptions(bopts)
	case "shiftWidth":
		v, err := intOption(name, value)
		if err != nil {
			return err
		}
		bopts.ShiftWidth = v
		w.Buffer.Text.SetOptions(bopts)
	default:
		return fmt.Errorf("unknown or read-only option %q", name)
	}
	state.SyncWindow(l.access)
	return nil
}

func intOption(name string, value any) (int, error) {
	switch v := value.(type) {
	case int64:
		if v < 1 {
			return 0, fmt.Errorf("option %q expects a positive integer", name)
		}
		return int(v), nil
	case float64:
		if v < 1 {
			return 0, fmt.Errorf("option %q expects a positive integer", name)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("option %q expects a positive integer", name)
	}
}

// CurrentBufferId implements jsrt.Editor.
func (l *Loop) CurrentBufferId() uint64 {
	return uint64(l.layout.Window.Buffer.Id)
}

// BufferIds implements jsrt.Editor.
func (l *Loop) BufferIds() []uint64 {
	ids := l.buffers.Ids()
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}

// CreateBuffer implements jsrt.Editor.
func (l *Loop) CreateBuffer() (uint64, error) {
	b, err := l.buffers.CreateUnnamed(buf.DefaultOptions())
	if err != nil {
		return 0, err
	}
	return uint64(b.Id), nil
}

// Exit implements jsrt.Editor.
func (l *Loop) Exit(code int) {
	l.exitCode = code
	l.quitting = true
}
