// Package jsrt embeds the JavaScript isolate that runs user config and ex
// :js chunks. The isolate is not goroutine-safe: the main loop owns it and
// every entry point asserts it is called from the owning goroutine. All
// async work the script starts becomes a request message; the loop posts
// the response back and calls Tick, which runs the queued futures and
// microtasks and surfaces uncaught rejections.
package jsrt

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/rsvim/rsvim-sub002/internal/goroutineid"
	"github.com/rsvim/rsvim-sub002/internal/msg"
)

// Editor is the surface the script bindings reach back into. The loop
// implements it; tests stub it.
type Editor interface {
	// Echo appends one line to the command-line message history.
	Echo(text string)
	// OptGet reads a window or buffer option by its script name.
	OptGet(name string) (any, bool)
	// OptSet writes a window or buffer option by its script name.
	OptSet(name string, value any) error
	// CurrentBufferId identifies the focused buffer.
	CurrentBufferId() uint64
	// BufferIds lists all buffers.
	BufferIds() []uint64
	// CreateBuffer makes a new unnamed buffer and returns its id.
	CreateBuffer() (uint64, error)
	// Exit requests editor shutdown with the given code.
	Exit(code int)
}

// Runtime owns the goja isolate and the bridge bookkeeping: outstanding
// futures, the module map, microtasks, and rejected promises.
type Runtime struct {
	vm       *goja.Runtime
	registry *require.Registry
	editor   Editor
	requests chan<- msg.Request

	// ownerID is the goroutine that may touch the isolate.
	ownerID int64

	nextFuture msg.FutureId
	// ops maps outstanding future ids to their continuations.
	ops map[msg.FutureId]operation
	// pending holds futures delivered by the loop, run on the next tick.
	pending []JsFuture

	microtasks []goja.Callable
	// uncaught collects reportError values and unhandled rejections until
	// the next tick surfaces them.
	uncaught   []string
	rejections map[*goja.Promise]goja.Value

	modules *ModuleMap
	fds     *FdTable
	// commands holds user ex commands registered via cmd.create.
	commands map[string]goja.Callable
}

// operation is the continuation for one outstanding request.
type operation struct {
	// callback runs for timer completions.
	callback goja.Callable
	// resolve and reject settle the promise for I/O completions.
	resolve func(any)
	reject  func(any)
}

// Options configures the runtime.
type Options struct {
	Editor   Editor
	Requests chan<- msg.Request
	// ImportMap maps bare specifier prefixes to directories.
	ImportMap map[string]string
}

// New creates the isolate on the calling goroutine, which becomes its
// owner.
func New(opts Options) (*Runtime, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	registry := require.NewRegistry()
	registry.Enable(vm)
	console.Enable(vm)

	rt := &Runtime{
		vm:         vm,
		registry:   registry,
		editor:     opts.Editor,
		requests:   opts.Requests,
		ownerID:    goroutineid.Get(),
		ops:        make(map[msg.FutureId]operation),
		rejections: make(map[*goja.Promise]goja.Value),
		commands:   make(map[string]goja.Callable),
		fds:        NewFdTable(),
	}
	rt.modules = newModuleMap(rt, opts.ImportMap)

	vm.SetPromiseRejectionTracker(rt.trackRejection)
	if err := rt.installGlobals(); err != nil {
		return nil, fmt.Errorf("jsrt: install globals: %w", err)
	}
	return rt, nil
}

// Fds exposes the descriptor table so the loop can service async fs
// requests against the same namespace the Sync bindings use.
func (rt *Runtime) Fds() *FdTable {
	return rt.fds
}

// Modules exposes the module map for the loop and tests.
func (rt *Runtime) Modules() *ModuleMap {
	return rt.modules
}

// assertOwner panics when the isolate is touched off its goroutine. The
// isolate has no locks; this is the only guard.
func (rt *Runtime) assertOwner() {
	if id := goroutineid.Get(); id != rt.ownerID {
		panic(fmt.Sprintf("jsrt: isolate touched from goroutine %d, owner is %d", id, rt.ownerID))
	}
}

func (rt *Runtime) allocFuture() msg.FutureId {
	rt.nextFuture++
	return rt.nextFuture
}

// send posts a request without blocking the owning goroutine. The request
// channel is bounded and drained by the same loop that called into the
// isolate, so a full channel falls back to a goroutine send.
func (rt *Runtime) send(req msg.Request) {
	select {
	case rt.requests <- req:
	default:
		go func() { rt.requests <- req }()
	}
}

// Deliver queues the future for a response. Called by the loop before
// Tick.
func (rt *Runtime) Deliver(resp msg.Response) {
	rt.assertOwner()
	switch r := resp.(type) {
	case msg.TimeoutResp:
		rt.pending = append(rt.pending, &timerFuture{id: r.FutureId})
	case msg.FsOpenResp:
		rt.pending = append(rt.pending, &settleFuture{id: r.FutureId, value: r.Fd, err: r.Err})
	case msg.FsReadResp:
		rt.pending = append(rt.pending, &settleFuture{id: r.FutureId, value: string(r.Bytes), err: r.Err})
	case msg.FsWriteResp:
		rt.pending = append(rt.pending, &settleFuture{id: r.FutureId, value: r.N, err: r.Err})
	case msg.FsCloseResp:
		rt.pending = append(rt.pending, &settleFuture{id: r.FutureId, value: nil, err: r.Err})
	case msg.ImportLoadResp:
		rt.pending = append(rt.pending, &esModuleFuture{id: r.FutureId, specifier: r.Specifier, source: r.Source, err: r.Err})
	}
}

// Tick drains delivered futures, runs microtasks, and surfaces uncaught
// errors. One tick is one cooperative turn of the isolate.
func (rt *Runtime) Tick() {
	rt.assertOwner()
	for len(rt.pending) > 0 {
		batch := rt.pending
		rt.pending = nil
		for _, f := range batch {
			f.Run(rt)
		}
	}
	rt.drainMicrotasks()
	rt.surfaceUncaught()
}

func (rt *Runtime) drainMicrotasks() {
	for len(rt.microtasks) > 0 {
		batch := rt.microtasks
		rt.microtasks = nil
		for _, fn := range batch {
			if _, err := fn(goja.Undefined()); err != nil {
				rt.uncaught = append(rt.uncaught, renderJsError(err))
			}
		}
	}
}

func (rt *Runtime) surfaceUncaught() {
	for p, reason := range rt.rejections {
		rt.uncaught = append(rt.uncaught, renderValue(reason))
		delete(rt.rejections, p)
	}
	for _, text := range rt.uncaught {
		rt.editor.Echo("Uncaught " + text)
	}
	rt.uncaught = nil
}

func (rt *Runtime) trackRejection(p *goja.Promise, op goja.PromiseRejectionOperation) {
	switch op {
	case goja.PromiseRejectionReject:
		rt.rejections[p] = p.Result()
	case goja.PromiseRejectionHandle:
		delete(rt.rejections, p)
	}
}

// Eval runs one script chunk, as typed after :js. Errors surface in the
// message history rather than propagating.
func (rt *Runtime) Eval(code string) {
	rt.assertOwner()
	if _, err := rt.vm.RunString(code); err != nil {
		rt.uncaught = append(rt.uncaught, renderJsError(err))
	}
	rt.drainMicrotasks()
	rt.surfaceUncaught()
}

// HasPendingWork reports whether delivered futures or microtasks are
// waiting for a tick.
func (rt *Runtime) HasPendingWork() bool {
	return len(rt.pending) > 0 || len(rt.microtasks) > 0
}

// RunUserCommand invokes an ex command registered by cmd.create. It
// reports whether the name was registered.
func (rt *Runtime) RunUserCommand(name, args string) bool {
	rt.assertOwner()
	fn, ok := rt.commands[name]
	if !ok {
		return false
	}
	if _, err := fn(goja.Undefined(), rt.vm.ToValue(args)); err != nil {
		rt.uncaught = append(rt.uncaught, renderJsError(err))
	}
	rt.drainMicrotasks()
	rt.surfaceUncaught()
	return true
}

// renderJsError flattens a goja error into the message-history form.
func renderJsError(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return renderValue(exc.Value())
	}
	return err.Error()
}

func renderValue(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	return v.String()
}
