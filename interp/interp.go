package interp

import "github.com/plume-lang/plume/ops"

// EvalFlags controls EvalString/EvalObj's choice of frame (spec §6).
type EvalFlags int

const (
	EvalLocal EvalFlags = iota
	EvalGlobal
)

// DefaultRecursionLimit bounds call-stack depth absent an explicit
// SetRecursionLimit call (spec §5).
const DefaultRecursionLimit = 1000

// Interp is a single, single-threaded interpreter instance (spec §5: "the
// interpreter state... is owned exclusively by one interpreter"). Nothing
// here is a process-wide singleton; every field hangs off this struct.
type Interp struct {
	Ops ops.HostOps

	Namespaces *NamespaceRegistry

	Frames []*CallFrame
	Active int

	result        *ops.Obj
	returnOptions *ops.Obj

	recursionLimit int

	varTraces map[string][]TraceEntry
	cmdTraces map[string][]TraceEntry
	execTraces map[string][]TraceEntry

	// stepTargets is allocated by NewInterp but not otherwise read or
	// written: the scope of enterstep/leavestep traces is passed down the
	// call chain on CallFrame.StepTargets instead (spec §4.9/§9 "Step
	// traces... passed down the call chain explicitly").
	stepTargets map[string][]string

	// disabledTraces suppresses re-entrant firing of a trace script on
	// the same (name, op) pair while it is itself running (spec §5 /
	// §9 "Trace recursion").
	disabledTraces map[string]bool

	errs errorTraceState

	// HostUnknown is the deepest command-resolution fallback (spec §4.5
	// "bind.unknown"), invoked only when neither a builtin/proc/host
	// command named cmd nor a proc/command named "unknown" exists.
	HostUnknown func(i *Interp, name string, args []*ops.Obj) Code
}

// NewInterp creates an interpreter with the given Host Operations vtable.
// Pass ops.New() to use the bundled default value representation.
func NewInterp(hostOps ops.HostOps) *Interp {
	i := &Interp{
		Ops:            hostOps,
		Namespaces:     newNamespaceRegistry(),
		recursionLimit: DefaultRecursionLimit,
		varTraces:      make(map[string][]TraceEntry),
		cmdTraces:      make(map[string][]TraceEntry),
		execTraces:     make(map[string][]TraceEntry),
		stepTargets:    make(map[string][]string),
		disabledTraces: make(map[string]bool),
	}
	global := newCallFrame(i.Namespaces.Root(), 0)
	// The global frame's locals and "::"'s variable map are the same
	// storage (spec §4.2): an unqualified `set x 1` at top level and a
	// proc's `global x` must see one another's writes.
	global.Locals = i.Namespaces.Root().Vars
	i.Frames = []*CallFrame{global}
	i.result = hostOps.NewString("")
	i.returnOptions = defaultReturnOptions(hostOps)
	i.bootstrapGlobals()
	RegisterControlBuiltins(i)
	return i
}

func (i *Interp) bootstrapGlobals() {
	root := i.Namespaces.Root()
	root.Vars["errorInfo"] = i.Ops.NewString("")
	root.Vars["errorCode"] = i.Ops.NewString("NONE")
	root.Vars["tcl_patchLevel"] = i.Ops.NewString("1.0.0")
}

// SetRecursionLimit sets the maximum call stack depth; limit <= 0 resets
// to DefaultRecursionLimit (spec §5).
func (i *Interp) SetRecursionLimit(limit int) {
	if limit <= 0 {
		i.recursionLimit = DefaultRecursionLimit
	} else {
		i.recursionLimit = limit
	}
}

func (i *Interp) recursionOK() bool {
	return len(i.Frames) < i.recursionLimit
}

// SetResult / GetResult are the result slot the evaluator reads/writes
// (spec §6 "interp.set_result/get_result").
func (i *Interp) SetResult(o *ops.Obj)      { i.result = o }
func (i *Interp) GetResult() *ops.Obj       { return i.result }
func (i *Interp) SetResultString(s string)  { i.result = i.Ops.NewString(s) }
func (i *Interp) ResultString() string      { return i.Ops.StringOf(i.result) }

// SetReturnOptions / ReturnOptions are the return-options slot (spec §6
// "interp.set_return_options/get_return_options").
func (i *Interp) SetReturnOptions(o *ops.Obj) { i.returnOptions = o }
func (i *Interp) ReturnOptions() *ops.Obj     { return i.returnOptions }

// RegisterBuiltin installs a core-implemented command into the global
// namespace's command table. name is typically unqualified ("if",
// "while") and becomes visible from anywhere via the dispatcher's
// ::-fallback (spec §4.5).
func (i *Interp) RegisterBuiltin(name string, fn BuiltinFunc) {
	i.Namespaces.Root().Commands[name] = &Command{Kind: CmdBuiltin, Builtin: fn}
}

// RegisterHost installs a host-provided command (spec §6
// "register_builtin"), typically under a fully-qualified name.
func (i *Interp) RegisterHost(name string, fn HostFunc) {
	qualifier, tail := SplitName(name)
	nsPath := ResolveNamespacePath("::", qualifier)
	ns := i.Namespaces.Ensure(nsPath)
	ns.Commands[tail] = &Command{Kind: CmdHost, Host: fn}
}

// EvalString is the entry point for a script string (spec §6
// "eval_string"). flags choose between evaluating in the active frame
// (EvalLocal, the default and what `eval`/proc bodies use) or forcing
// global scope (EvalGlobal, what `namespace eval ::` and the top level
// conceptually use).
func (i *Interp) EvalString(src string, flags EvalFlags) Code {
	if flags == EvalGlobal {
		return i.withActiveFrame(0, func() Code { return i.evalScript(src) })
	}
	return i.evalScript(src)
}

// EvalTopLevel evaluates src as a complete top-level script (what a host
// REPL or script-file runner calls), converting any break/continue/return
// that escapes every loop and proc into the matching invalid-context
// error (spec §4.8 "User-visible behavior at top level").
func (i *Interp) EvalTopLevel(src string) Code {
	code := i.unwrapReturn(i.EvalString(src, EvalGlobal))
	switch code {
	case BREAK:
		return i.Fail(`invoked "break" outside of a loop`)
	case CONTINUE:
		return i.Fail(`invoked "continue" outside of a loop`)
	case RETURN:
		return i.Fail(`invoked "return" outside of a proc`)
	case ERROR:
		i.finalizeErrorTrace()
		return ERROR
	}
	return code
}

// EvalObj is EvalString accepting an Obj whose string form is the script,
// satisfying the round-trip requirement of spec §9: every Eval reparses
// the canonical string form from scratch, so there is no cached AST for
// `uplevel`/`eval` to go stale against.
func (i *Interp) EvalObj(script *ops.Obj, flags EvalFlags) Code {
	return i.EvalString(i.Ops.StringOf(script), flags)
}

// evalScript parses src into commands and executes them in sequence,
// stopping at the first non-OK completion code (spec §4.1 dataflow).
func (i *Interp) evalScript(src string) Code {
	pos := 0
	for pos < len(src) {
		words, rest, line, err := parseCommand(src, pos)
		pos = rest
		if err != nil {
			i.SetResultString(err.Error())
			i.noteErrorOrigin("", nil, line)
			return ERROR
		}
		if len(words) == 0 {
			continue
		}
		i.SetLine(line)
		code := i.execWords(words)
		if code != OK {
			return code
		}
	}
	i.SetResultString(i.ResultString())
	return OK
}

// execWords substitutes each parsed word and dispatches the resulting
// command (spec §4.1/§4.5).
func (i *Interp) execWords(words []word) Code {
	args := make([]*ops.Obj, 0, len(words))
	for _, w := range words {
		val, code := i.substWord(w)
		if code != OK {
			return code
		}
		args = append(args, val)
	}
	if len(args) == 0 {
		return OK
	}
	return i.Dispatch(args)
}
