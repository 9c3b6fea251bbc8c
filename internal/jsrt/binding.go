package jsrt

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dop251/goja"

	"github.com/rsvim/rsvim-sub002/internal/msg"
)

// optNames are the option fields exposed to script, in their script-side
// spelling.
var optNames = []string{
	"wrap", "lineBreak", "tabStop", "expandTab",
	"shiftWidth", "fileEncoding", "fileFormat",
}

func (rt *Runtime) installGlobals() error {
	vm := rt.vm

	vm.Set("setTimeout", rt.jsSetTimeout)
	vm.Set("queueMicrotask", rt.jsQueueMicrotask)
	vm.Set("reportError", rt.jsReportError)
	vm.Set("importModule", rt.jsImport)
	rt.installTextCodecs()

	rsvim := vm.NewObject()

	cmd := vm.NewObject()
	cmd.Set("echo", func(call goja.FunctionCall) goja.Value {
		rt.editor.Echo(renderValue(call.Argument(0)))
		return goja.Undefined()
	})
	cmd.Set("create", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			panic(vm.NewTypeError("cmd.create: second argument must be a function"))
		}
		rt.commands[name] = fn
		return goja.Undefined()
	})
	rsvim.Set("cmd", cmd)

	opt := vm.NewObject()
	opt.Set("get", func(call goja.FunctionCall) goja.Value {
		v, ok := rt.editor.OptGet(call.Argument(0).String())
		if !ok {
			return goja.Undefined()
		}
		return vm.ToValue(v)
	})
	opt.Set("set", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if err := rt.editor.OptSet(name, call.Argument(1).Export()); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	for _, name := range optNames {
		name := name
		opt.Set("get"+title(name), func(call goja.FunctionCall) goja.Value {
			v, ok := rt.editor.OptGet(name)
			if !ok {
				return goja.Undefined()
			}
			return vm.ToValue(v)
		})
		opt.Set("set"+title(name), func(call goja.FunctionCall) goja.Value {
			if err := rt.editor.OptSet(name, call.Argument(0).Export()); err != nil {
				panic(vm.NewGoError(err))
			}
			return goja.Undefined()
		})
	}
	rsvim.Set("opt", opt)

	bufObj := vm.NewObject()
	bufObj.Set("current", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(rt.editor.CurrentBufferId())
	})
	bufObj.Set("list", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(rt.editor.BufferIds())
	})
	bufObj.Set("create", func(call goja.FunctionCall) goja.Value {
		id, err := rt.editor.CreateBuffer()
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(id)
	})
	rsvim.Set("buf", bufObj)

	rsvim.Set("fs", rt.installFs())

	rtObj := vm.NewObject()
	rtObj.Set("exit", func(call goja.FunctionCall) goja.Value {
		rt.editor.Exit(int(call.Argument(0).ToInteger()))
		return goja.Undefined()
	})
	rsvim.Set("rt", rtObj)

	return vm.Set("Rsvim", rsvim)
}

// installTextCodecs provides the UTF-8 TextEncoder and TextDecoder
// globals scripts expect.
func (rt *Runtime) installTextCodecs() {
	vm := rt.vm
	vm.Set("TextEncoder", func(call goja.ConstructorCall) *goja.Object {
		obj := call.This
		obj.Set("encoding", "utf-8")
		obj.Set("encode", func(c goja.FunctionCall) goja.Value {
			buf := vm.NewArrayBuffer([]byte(c.Argument(0).String()))
			u8, err := vm.New(vm.Get("Uint8Array"), vm.ToValue(buf))
			if err != nil {
				panic(vm.NewGoError(err))
			}
			return u8
		})
		return nil
	})
	vm.Set("TextDecoder", func(call goja.ConstructorCall) *goja.Object {
		obj := call.This
		obj.Set("encoding", "utf-8")
		obj.Set("decode", func(c goja.FunctionCall) goja.Value {
			return vm.ToValue(decodeText(c.Argument(0)))
		})
		return nil
	})
}

func decodeText(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	switch data := v.Export().(type) {
	case goja.ArrayBuffer:
		return string(data.Bytes())
	case []byte:
		return string(data)
	case string:
		return data
	default:
		return v.String()
	}
}

func (rt *Runtime) jsSetTimeout(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(rt.vm.NewTypeError("setTimeout: first argument must be a function"))
	}
	ms := call.Argument(1).ToInteger()
	if ms < 0 {
		ms = 0
	}
	id := rt.allocFuture()
	rt.ops[id] = operation{callback: fn}
	rt.send(msg.TimeoutReq{FutureId: id, Duration: time.Duration(ms) * time.Millisecond})
	return rt.vm.ToValue(uint64(id))
}

func (rt *Runtime) jsQueueMicrotask(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(rt.vm.NewTypeError("queueMicrotask: first argument must be a function"))
	}
	rt.microtasks = append(rt.microtasks, fn)
	return goja.Undefined()
}

func (rt *Runtime) jsReportError(call goja.FunctionCall) goja.Value {
	rt.uncaught = append(rt.uncaught, renderValue(call.Argument(0)))
	return goja.Undefined()
}

func (rt *Runtime) jsImport(call goja.FunctionCall) goja.Value {
	specifier := call.Argument(0).String()
	return rt.modules.importDynamic(specifier)
}

func (rt *Runtime) installFs() *goja.Object {
	vm := rt.vm
	fsObj := vm.NewObject()

	fsObj.Set("open", func(call goja.FunctionCall) goja.Value {
		path := call.Argument(0).String()
		flags, perm := parseOpenOpts(call.Argument(1))
		p, resolve, reject := vm.NewPromise()
		id := rt.allocFuture()
		rt.ops[id] = operation{resolve: func(v any) { resolve(v) }, reject: func(v any) { reject(v) }}
		rt.send(msg.FsOpenReq{FutureId: id, Path: path, Flags: flags, Perm: perm})
		return vm.ToValue(p)
	})
	fsObj.Set("read", func(call goja.FunctionCall) goja.Value {
		fd := int32(call.Argument(0).ToInteger())
		n := int(call.Argument(1).ToInteger())
		p, resolve, reject := vm.NewPromise()
		id := rt.allocFuture()
		rt.ops[id] = operation{resolve: func(v any) { resolve(v) }, reject: func(v any) { reject(v) }}
		rt.send(msg.FsReadReq{FutureId: id, Fd: fd, N: n})
		return vm.ToValue(p)
	})
	fsObj.Set("write", func(call goja.FunctionCall) goja.Value {
		fd := int32(call.Argument(0).ToInteger())
		data := []byte(call.Argument(1).String())
		p, resolve, reject := vm.NewPromise()
		id := rt.allocFuture()
		rt.ops[id] = operation{resolve: func(v any) { resolve(v) }, reject: func(v any) { reject(v) }}
		rt.send(msg.FsWriteReq{FutureId: id, Fd: fd, Bytes: data})
		return vm.ToValue(p)
	})
	fsObj.Set("close", func(call goja.FunctionCall) goja.Value {
		fd := int32(call.Argument(0).ToInteger())
		p, resolve, reject := vm.NewPromise()
		id := rt.allocFuture()
		rt.ops[id] = operation{resolve: func(v any) { resolve(v) }, reject: func(v any) { reject(v) }}
		rt.send(msg.FsCloseReq{FutureId: id, Fd: fd})
		return vm.ToValue(p)
	})

	fsObj.Set("openSync", func(call goja.FunctionCall) goja.Value {
		path := call.Argument(0).String()
		flags, perm := parseOpenOpts(call.Argument(1))
		fd, err := rt.fds.Open(path, flags, perm)
		if err != nil {
			panic(rt.vm.ToValue(rt.osError(err)))
		}
		return vm.ToValue(fd)
	})
	fsObj.Set("readSync", func(call goja.FunctionCall) goja.Value {
		fd := int32(call.Argument(0).ToInteger())
		n := int(call.Argument(1).ToInteger())
		data, err := rt.fds.Read(fd, n)
		if err != nil {
			panic(rt.vm.ToValue(rt.osError(err)))
		}
		return vm.ToValue(string(data))
	})
	fsObj.Set("writeSync", func(call goja.FunctionCall) goja.Value {
		fd := int32(call.Argument(0).ToInteger())
		n, err := rt.fds.Write(fd, []byte(call.Argument(1).String()))
		if err != nil {
			panic(rt.vm.ToValue(rt.osError(err)))
		}
		return vm.ToValue(n)
	})
	fsObj.Set("closeSync", func(call goja.FunctionCall) goja.Value {
		fd := int32(call.Argument(0).ToInteger())
		if err := rt.fds.Close(fd); err != nil {
			panic(rt.vm.ToValue(rt.osError(err)))
		}
		return goja.Undefined()
	})
	return fsObj
}

// parseOpenOpts maps a mode string ("r", "w", "a", "rw") to open flags.
func parseOpenOpts(v goja.Value) (int, os.FileMode) {
	mode := "r"
	if v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		mode = v.String()
	}
	switch mode {
	case "w":
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, 0o644
	case "a":
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, 0o644
	case "rw":
		return os.O_RDWR | os.O_CREATE, 0o644
	default:
		return os.O_RDONLY, 0
	}
}

// osError turns a Go error into a script exception value carrying the
// OS error kind as a code property.
func (rt *Runtime) osError(err error) goja.Value {
	obj := rt.vm.NewGoError(err)
	obj.Set("code", errorCode(err))
	return obj
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "ENOENT"
	case errors.Is(err, fs.ErrPermission):
		return "EACCES"
	case errors.Is(err, fs.ErrExist):
		return "EEXIST"
	case errors.Is(err, fs.ErrClosed):
		return "EBADF"
	default:
		return "EIO"
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
