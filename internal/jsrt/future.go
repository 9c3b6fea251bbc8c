package jsrt

import "github.com/rsvim/rsvim-sub002/internal/msg"

// JsFuture is one completed async operation waiting to run on the
// isolate. The loop delivers them; Tick runs each exactly once.
type JsFuture interface {
	Run(rt *Runtime)
}

// timerFuture fires a setTimeout callback.
type timerFuture struct {
	id msg.FutureId
}

func (f *timerFuture) Run(rt *Runtime) {
	op, ok := rt.ops[f.id]
	if !ok {
		return
	}
	delete(rt.ops, f.id)
	if op.callback == nil {
		return
	}
	if _, err := op.callback(nil); err != nil {
		rt.uncaught = append(rt.uncaught, renderJsError(err))
	}
}

// settleFuture resolves or rejects the promise of an I/O operation.
type settleFuture struct {
	id    msg.FutureId
	value any
	err   error
}

func (f *settleFuture) Run(rt *Runtime) {
	op, ok := rt.ops[f.id]
	if !ok {
		return
	}
	delete(rt.ops, f.id)
	if f.err != nil {
		if op.reject != nil {
			op.reject(rt.osError(f.err))
		}
		return
	}
	if op.resolve != nil {
		op.resolve(f.value)
	}
}

// esModuleFuture continues a dynamic-import graph once the loop has
// loaded one module's source.
type esModuleFuture struct {
	id        msg.FutureId
	specifier string
	source    string
	err       error
}

func (f *esModuleFuture) Run(rt *Runtime) {
	delete(rt.ops, f.id)
	rt.modules.onLoaded(f.specifier, f.source, f.err)
}
