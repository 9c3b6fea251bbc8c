package jsrt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dop251/goja"

	"github.com/rsvim/rsvim-sub002/internal/msg"
)

// ModuleStatus tracks a specifier through the loading pipeline.
type ModuleStatus int

const (
	// StatusFetching means the source is being loaded from disk.
	StatusFetching ModuleStatus = iota
	// StatusResolving means the source is compiled and waiting on deps.
	StatusResolving
	// StatusDuplicate marks a specifier already tracked by another graph.
	StatusDuplicate
	// StatusReady means the module is evaluated (or failed terminally).
	StatusReady
)

// EsModule is one compiled module and its place in the dependency graph.
type EsModule struct {
	Specifier string
	Program   *goja.Program
	Deps      []string
	Status    ModuleStatus
	Exception error
	Namespace *goja.Object
}

// BuiltinInfra is the built-in infra module specifier.
const BuiltinInfra = "rsvim:ext/infra"

const builtinInfraSource = `
exports.stringify = function (v) {
  if (typeof v === "string") return v;
  try { return JSON.stringify(v); } catch (e) { return String(v); }
};
exports.once = function (fn) {
  var done = false, result;
  return function () {
    if (!done) { done = true; result = fn.apply(this, arguments); }
    return result;
  };
};
`

type resolverPair struct {
	resolve func(any)
	reject  func(any)
}

// ModuleMap owns every known module, the seen-status index, and the
// promises waiting on in-flight graphs.
type ModuleMap struct {
	rt        *Runtime
	importMap map[string]string
	modules   map[string]*EsModule
	seen      map[string]ModuleStatus
	// waiters holds promises to settle once their root specifier turns
	// Ready; a second import of an in-flight specifier attaches here as a
	// same-origin waiter instead of starting a new graph.
	waiters map[string][]resolverPair
	// dup records specifiers reached from more than one graph.
	dup map[string]struct{}
	// baseStack tracks the directory of the module being evaluated, for
	// relative resolution; the bottom entry is the entry script's dir.
	baseStack []string
	entry     string
}

func newModuleMap(rt *Runtime, importMap map[string]string) *ModuleMap {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &ModuleMap{
		rt:        rt,
		importMap: importMap,
		modules:   make(map[string]*EsModule),
		seen:      make(map[string]ModuleStatus),
		waiters:   make(map[string][]resolverPair),
		dup:       make(map[string]struct{}),
		baseStack: []string{cwd},
	}
}

func (mm *ModuleMap) baseDir() string {
	return mm.baseStack[len(mm.baseStack)-1]
}

// Status reports how the map classifies a specifier. A specifier reached
// from more than one graph reports Duplicate until it turns Ready.
func (mm *ModuleMap) Status(specifier string) (ModuleStatus, bool) {
	st, ok := mm.seen[specifier]
	if !ok {
		return 0, false
	}
	if st != StatusReady {
		if _, dup := mm.dup[specifier]; dup {
			return StatusDuplicate, true
		}
	}
	return st, true
}

// Resolve maps a specifier to its canonical form: builtins stay as-is,
// relative specifiers join the base directory, bare specifiers consult
// the import map. File candidates prefer .ts over .js.
func (mm *ModuleMap) Resolve(specifier, baseDir string) (string, error) {
	if specifier == BuiltinInfra {
		return specifier, nil
	}
	var path string
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		path = filepath.Join(baseDir, specifier)
	case filepath.IsAbs(specifier):
		path = filepath.Clean(specifier)
	default:
		mapped, ok := mm.lookupImportMap(specifier)
		if !ok {
			return "", fmt.Errorf("cannot resolve import %q from %s", specifier, baseDir)
		}
		path = mapped
	}
	resolved, err := resolveFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve import %q: %w", specifier, err)
	}
	return resolved, nil
}

func (mm *ModuleMap) lookupImportMap(specifier string) (string, bool) {
	best := ""
	target := ""
	for prefix, dir := range mm.importMap {
		if strings.HasPrefix(specifier, prefix) && len(prefix) > len(best) {
			best = prefix
			target = filepath.Join(dir, strings.TrimPrefix(specifier, prefix))
		}
	}
	return target, best != ""
}

// resolveFile applies the filesystem rules: directories resolve to their
// index file and a missing extension tries .ts then .js.
func resolveFile(path string) (string, error) {
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return path, nil
		}
		for _, name := range []string{"index.ts", "index.js"} {
			candidate := filepath.Join(path, name)
			if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("directory %s has no index module", path)
	}
	for _, ext := range []string{".ts", ".js"} {
		candidate := path + ext
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("module file %s does not exist", path)
}

// LoadEntry starts the graph rooted at the entry script, typically the
// user config. Failures surface in the message history.
func (rt *Runtime) LoadEntry(path string) {
	rt.assertOwner()
	abs, err := filepath.Abs(path)
	if err != nil {
		rt.editor.Echo("Uncaught " + err.Error())
		return
	}
	mm := rt.modules
	mm.entry = abs
	mm.baseStack[0] = filepath.Dir(abs)
	mm.waiters[abs] = append(mm.waiters[abs], resolverPair{
		resolve: func(any) {},
		reject: func(v any) {
			rt.editor.Echo("Uncaught " + renderAny(rt.vm, v))
		},
	})
	mm.fetch(abs)
}

// importDynamic serves the importModule global: a promise settled when
// the target module graph is ready.
func (mm *ModuleMap) importDynamic(specifier string) goja.Value {
	vm := mm.rt.vm
	p, resolve, reject := vm.NewPromise()
	pv := vm.ToValue(p)

	abs, err := mm.Resolve(specifier, mm.baseDir())
	if err != nil {
		reject(vm.NewGoError(err))
		return pv
	}
	pair := resolverPair{
		resolve: func(v any) { resolve(v) },
		reject:  func(v any) { reject(v) },
	}

	if m, ok := mm.modules[abs]; ok && m.Status == StatusReady {
		if m.Exception != nil {
			reject(vm.NewGoError(m.Exception))
		} else {
			resolve(m.Namespace)
		}
		return pv
	}
	if st, seen := mm.seen[abs]; seen && st != StatusReady {
		// Same-origin attachment: the in-flight graph settles this
		// promise together with its own.
		mm.waiters[abs] = append(mm.waiters[abs], pair)
		return pv
	}
	mm.waiters[abs] = append(mm.waiters[abs], pair)
	mm.fetch(abs)
	return pv
}

// fetch marks the specifier Fetching and asks the loop for its source.
// The builtin loads inline; everything else goes through the channel.
func (mm *ModuleMap) fetch(specifier string) {
	mm.seen[specifier] = StatusFetching
	if specifier == BuiltinInfra {
		mm.onLoaded(specifier, builtinInfraSource, nil)
		return
	}
	id := mm.rt.allocFuture()
	mm.rt.ops[id] = operation{}
	mm.rt.send(msg.ImportLoadReq{FutureId: id, Specifier: specifier})
}

// depRe finds static dependencies: require and importModule calls with a
// string literal argument.
var depRe = regexp.MustCompile(`(?:require|importModule)\(\s*["']([^"']+)["']\s*\)`)

func scanDeps(source string) []string {
	var deps []string
	for _, m := range depRe.FindAllStringSubmatch(source, -1) {
		deps = append(deps, m[1])
	}
	return deps
}

// onLoaded continues the graph once a module's source arrived: compile,
// record dependencies, fetch the unseen ones, and fast-forward.
func (mm *ModuleMap) onLoaded(specifier, source string, err error) {
	if err != nil {
		mm.fail(specifier, fmt.Errorf("load module %s: %w", specifier, err))
		return
	}
	prg, cerr := compileModule(specifier, source)
	if cerr != nil {
		mm.fail(specifier, cerr)
		return
	}

	dir := filepath.Dir(specifier)
	if specifier == BuiltinInfra {
		dir = mm.baseDir()
	}
	var deps []string
	for _, raw := range scanDeps(source) {
		resolved, rerr := mm.Resolve(raw, dir)
		if rerr != nil {
			mm.fail(specifier, rerr)
			return
		}
		deps = append(deps, resolved)
	}

	mm.modules[specifier] = &EsModule{
		Specifier: specifier,
		Program:   prg,
		Deps:      deps,
		Status:    StatusResolving,
	}
	mm.seen[specifier] = StatusResolving

	for _, dep := range deps {
		if _, known := mm.seen[dep]; known {
			// Another graph already tracks this dep: record the duplicate
			// edge and let readiness consult the canonical status.
			mm.dup[dep] = struct{}{}
			continue
		}
		mm.fetch(dep)
	}
	mm.fastForward()
}

// fail records a terminal failure for the specifier and rejects waiters.
func (mm *ModuleMap) fail(specifier string, err error) {
	mm.modules[specifier] = &EsModule{Specifier: specifier, Status: StatusReady, Exception: err}
	mm.seen[specifier] = StatusReady
	mm.fastForward()
}

// fastForward evaluates every module whose dependencies are all Ready,
// repeating until a fixpoint, then settles waiters of Ready roots.
func (mm *ModuleMap) fastForward() {
	for changed := true; changed; {
		changed = false
		for _, m := range mm.modules {
			if m.Status != StatusResolving {
				continue
			}
			ready := true
			var depErr error
			for _, dep := range m.Deps {
				d := mm.modules[dep]
				if d == nil || d.Status != StatusReady {
					ready = false
					break
				}
				if d.Exception != nil && depErr == nil {
					depErr = d.Exception
				}
			}
			if !ready {
				continue
			}
			if depErr != nil {
				m.Exception = depErr
			} else if err := mm.evaluate(m); err != nil {
				m.Exception = err
			}
			m.Status = StatusReady
			mm.seen[m.Specifier] = StatusReady
			changed = true
		}
	}

	vm := mm.rt.vm
	for spec, pairs := range mm.waiters {
		m := mm.modules[spec]
		if m == nil || m.Status != StatusReady {
			continue
		}
		for _, p := range pairs {
			if m.Exception != nil {
				p.reject(vm.NewGoError(m.Exception))
			} else {
				p.resolve(m.Namespace)
			}
		}
		delete(mm.waiters, spec)
	}
}

// compileModule wraps the source in a module function so exports, module,
// require and import.meta resolve lexically.
func compileModule(specifier, source string) (*goja.Program, error) {
	wrapped := "(function (exports, module, require, importMeta) {\n" + source + "\n})"
	prg, err := goja.Compile(specifier, wrapped, true)
	if err != nil {
		return nil, fmt.Errorf("compile module %s: %w", specifier, err)
	}
	return prg, nil
}

// evaluate runs the module function and captures its namespace.
func (mm *ModuleMap) evaluate(m *EsModule) error {
	vm := mm.rt.vm
	v, err := vm.RunProgram(m.Program)
	if err != nil {
		return fmt.Errorf("evaluate module %s: %w", m.Specifier, err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return fmt.Errorf("evaluate module %s: wrapper is not a function", m.Specifier)
	}

	exports := vm.NewObject()
	module := vm.NewObject()
	_ = module.Set("exports", exports)

	dir := filepath.Dir(m.Specifier)
	if m.Specifier == BuiltinInfra {
		dir = mm.baseDir()
	}
	requireFn := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		raw := call.Argument(0).String()
		abs, rerr := mm.Resolve(raw, dir)
		if rerr != nil {
			panic(vm.NewGoError(rerr))
		}
		dep := mm.modules[abs]
		if dep == nil || dep.Status != StatusReady {
			panic(vm.NewGoError(fmt.Errorf("module %s is not loaded", raw)))
		}
		if dep.Exception != nil {
			panic(vm.NewGoError(dep.Exception))
		}
		return dep.Namespace
	})

	meta := vm.NewObject()
	_ = meta.Set("url", "file://"+m.Specifier)
	_ = meta.Set("main", m.Specifier == mm.entry)
	_ = meta.Set("resolve", func(call goja.FunctionCall) goja.Value {
		abs, rerr := mm.Resolve(call.Argument(0).String(), dir)
		if rerr != nil {
			panic(vm.NewGoError(rerr))
		}
		return vm.ToValue(abs)
	})

	mm.baseStack = append(mm.baseStack, dir)
	_, err = fn(goja.Undefined(), exports, module, requireFn, meta)
	mm.baseStack = mm.baseStack[:len(mm.baseStack)-1]
	if err != nil {
		return fmt.Errorf("evaluate module %s: %w", m.Specifier, err)
	}

	ns := module.Get("exports")
	if obj, ok := ns.(*goja.Object); ok {
		m.Namespace = obj
	} else {
		m.Namespace = exports
	}
	return nil
}

func renderAny(vm *goja.Runtime, v any) string {
	if gv, ok := v.(goja.Value); ok {
		return renderValue(gv)
	}
	return fmt.Sprintf("%v", v)
}
