package interp

import "github.com/plume-lang/plume/ops"

// linkKind discriminates the two Link variants of spec §3.
type linkKind int

const (
	linkUpvar linkKind = iota
	linkNS
)

// varLink is an alias in a frame's locals to a variable elsewhere: either
// another frame (upvar) or a namespace's variable map (the `variable`
// command), per spec §3 "Variable".
type varLink struct {
	kind linkKind

	// upvar link
	targetLevel int // absolute index into Interp.Frames
	targetName  string

	// namespace link
	targetNS *Namespace
}

// CallFrame is one entry of the call stack (spec §3 "Frame").
type CallFrame struct {
	Cmd    string     // command name that created this frame
	Args   []*ops.Obj // argument list given to that command
	NS     *Namespace // namespace bound to this frame
	Line   int        // current source line within this frame
	Lambda *ops.Obj    // lambda expr object, if this frame invokes `apply`

	Locals map[string]*ops.Obj
	Links  map[string]*varLink

	Level int // absolute index in the frame stack (0 = global)

	// tailcalled marks a frame `tailcall` has already popped (spec §4.8
	// step 2), so invokeProcCommon's own exit path must not pop it again.
	tailcalled bool

	// StepTargets holds the absolute proc names whose enterstep/leavestep
	// execution traces are active for every command run in this frame and
	// any frame pushed underneath it (spec §4.9/§9 "step traces cross proc
	// boundaries... pass the step-target identity down the call chain
	// explicitly").
	StepTargets []string
}

func newCallFrame(ns *Namespace, level int) *CallFrame {
	return &CallFrame{
		NS:     ns,
		Locals: make(map[string]*ops.Obj),
		Links:  make(map[string]*varLink),
		Level:  level,
	}
}

// PushFrame allocates a new frame inheriting the caller's namespace (spec
// §4.3). The invoker (proc.go) may override the namespace afterward via
// SetFrameNamespace.
func (i *Interp) PushFrame(cmd string, args []*ops.Obj) *CallFrame {
	caller := i.Frames[i.Active]
	f := newCallFrame(caller.NS, len(i.Frames))
	f.Cmd = cmd
	f.Args = args
	f.Line = caller.Line
	i.Frames = append(i.Frames, f)
	if DiagEnabled() {
		diagLog(cmd, "push frame %d cmd=%s ns=%s", f.Level, cmd, caller.NS.Path)
	}
	return f
}

// PopFrame removes the top-most frame. Must run on every exit path from a
// proc/apply invocation (spec §4.6 "Frame pop").
func (i *Interp) PopFrame() {
	n := len(i.Frames)
	if n <= 1 {
		return // frame 0 (global) is never popped
	}
	i.Frames = i.Frames[:n-1]
	if i.Active >= len(i.Frames) {
		i.Active = len(i.Frames) - 1
	}
}

// FrameCount returns the number of frames on the call stack.
func (i *Interp) FrameCount() int { return len(i.Frames) }

// FrameInvocation returns the command name and argument list that created
// the frame at the given absolute level, for `info level`/`info frame`.
func (i *Interp) FrameInvocation(level int) (string, []*ops.Obj) {
	f := i.Frames[level]
	return f.Cmd, f.Args
}

// FrameLine returns the current source line recorded against the frame at
// the given absolute level, for `info frame`.
func (i *Interp) FrameLine(level int) int {
	return i.Frames[level].Line
}

// TopFrame returns the physical top of the call stack (not necessarily
// the active frame, which `uplevel` can redirect).
func (i *Interp) TopFrame() *CallFrame { return i.Frames[len(i.Frames)-1] }

// ActiveFrame returns the frame currently used for local-variable
// resolution (spec glossary "Active frame").
func (i *Interp) ActiveFrame() *CallFrame { return i.Frames[i.Active] }

// SetFrameNamespace overrides the namespace bound to f (spec §4.3
// "frame.set_namespace").
func (i *Interp) SetFrameNamespace(f *CallFrame, ns *Namespace) { f.NS = ns }

// SetLine records the current source line on the active frame (spec
// §4.1 "frame.set_line").
func (i *Interp) SetLine(line int) {
	i.ActiveFrame().Line = line
}

// WithActiveFrameAt is the exported form of withActiveFrame, for `uplevel`.
func (i *Interp) WithActiveFrameAt(level int, fn func() Code) Code {
	return i.withActiveFrame(level, fn)
}

// withActiveFrame temporarily redirects the active-frame pointer to level,
// invokes fn, and restores the previous active index even if fn panics or
// returns early -- the `uplevel` contract in spec §4.3.
func (i *Interp) withActiveFrame(level int, fn func() Code) Code {
	prev := i.Active
	i.Active = level
	defer func() { i.Active = prev }()
	return fn()
}

// ResolveFrameLevel interprets a Tcl level argument ("#N" absolute, "N"
// relative-up, or empty meaning 1) against the current active frame,
// returning an absolute frame index. Shared by uplevel/upvar.
func (i *Interp) ResolveFrameLevel(levelArg string) (int, error) {
	cur := i.Active
	if levelArg == "" {
		if cur == 0 {
			return 0, errShape("no such frame")
		}
		return cur - 1, nil
	}
	if len(levelArg) > 0 && levelArg[0] == '#' {
		n, ok := parseIntStrict(levelArg[1:])
		if !ok || n < 0 || int(n) >= len(i.Frames) {
			return 0, errShape("bad level %q", levelArg)
		}
		return int(n), nil
	}
	n, ok := parseIntStrict(levelArg)
	if !ok {
		return 0, errShape("bad level %q", levelArg)
	}
	target := cur - int(n)
	if target < 0 || target >= len(i.Frames) {
		return 0, errShape("bad level %q", levelArg)
	}
	return target, nil
}

// --- Variable engine (C4) ---

// varStorage abstracts "a map variables live in", letting the same
// resolution code address either a frame's locals or a namespace's Vars.
type varStorage = map[string]*ops.Obj

// resolveVarHome finds (a) the storage map and (b) the key under which an
// unqualified or qualified variable name lives, chasing at most one level
// of link per spec §3 ("links never chain through links during a single
// read"). frame is the frame local lookups are relative to (the active
// frame for ordinary references, a caller frame for upvar's own targets).
func (i *Interp) resolveVarHome(frame *CallFrame, name string) (storage varStorage, key string, ok bool) {
	if IsQualified(name) {
		qualifier, tail := SplitName(name)
		nsPath := ResolveNamespacePath(frame.NS.Path, qualifier)
		ns := i.Namespaces.Ensure(nsPath)
		return ns.Vars, tail, true
	}
	if link, has := frame.Links[name]; has {
		switch link.kind {
		case linkUpvar:
			if link.targetLevel < 0 || link.targetLevel >= len(i.Frames) {
				return nil, "", false
			}
			target := i.Frames[link.targetLevel]
			return target.Locals, link.targetName, true
		case linkNS:
			return link.targetNS.Vars, link.targetName, true
		}
	}
	return frame.Locals, name, true
}

// GetVar reads a scalar variable, firing a read trace first (spec §4.3).
func (i *Interp) GetVar(name string) (*ops.Obj, error) {
	frame := i.ActiveFrame()
	if err := i.fireVarTrace(frame, name, "read"); err != nil {
		return nil, err
	}
	storage, key, ok := i.resolveVarHome(frame, name)
	if !ok {
		return nil, errNoSuchVar(name)
	}
	val, present := storage[key]
	if !present {
		return nil, errNoSuchVar(name)
	}
	return val, nil
}

// SetVar writes (creating if absent) a scalar variable, firing a write
// trace after the write (spec §4.3).
func (i *Interp) SetVar(name string, val *ops.Obj) (*ops.Obj, error) {
	frame := i.ActiveFrame()
	storage, key, ok := i.resolveVarHome(frame, name)
	if !ok {
		return nil, errNoSuchVar(name)
	}
	storage[key] = val
	if err := i.fireVarTrace(frame, name, "write"); err != nil {
		return nil, err
	}
	return storage[key], nil
}

// UnsetVar removes a variable, firing an unset trace first (errors from
// that trace are swallowed per spec §4.3/§4.9), then purges all traces
// registered on the variable. Unsetting a link removes the link only, not
// its target (spec §4.3 invariant).
func (i *Interp) UnsetVar(name string) error {
	frame := i.ActiveFrame()
	_ = i.fireVarTrace(frame, name, "unset")
	if _, isLink := frame.Links[name]; isLink && !IsQualified(name) {
		delete(frame.Links, name)
		i.purgeVarTraces(absVarName(frame, name))
		return nil
	}
	storage, key, ok := i.resolveVarHome(frame, name)
	if !ok {
		return errNoSuchVar(name)
	}
	if _, present := storage[key]; !present {
		return errNoSuchVar(name)
	}
	delete(storage, key)
	i.purgeVarTraces(absVarName(frame, name))
	return nil
}

// ExistsVar mirrors GetVar's resolution with no trace firing (spec §4.3).
func (i *Interp) ExistsVar(name string) bool {
	frame := i.ActiveFrame()
	storage, key, ok := i.resolveVarHome(frame, name)
	if !ok {
		return false
	}
	_, present := storage[key]
	return present
}

// LinkUpvar installs an upvar-style link in the active frame: local now
// aliases targetName in the frame at targetLevel (spec §4.3).
func (i *Interp) LinkUpvar(local string, targetLevel int, targetName string) {
	frame := i.ActiveFrame()
	frame.Links[local] = &varLink{kind: linkUpvar, targetLevel: targetLevel, targetName: targetName}
}

// LinkNS installs a namespace-variable link in the active frame: local now
// aliases targetName inside ns's variable map (spec §4.3, used by the
// `variable` and `global` commands).
func (i *Interp) LinkNS(local string, ns *Namespace, targetName string) {
	frame := i.ActiveFrame()
	frame.Links[local] = &varLink{kind: linkNS, targetNS: ns, targetName: targetName}
}

// absVarName returns a best-effort fully-qualified name for trace-table
// keys, used so traces on a link survive being referenced from different
// frames by their local alias.
func absVarName(frame *CallFrame, name string) string {
	if IsQualified(name) {
		return name
	}
	if link, ok := frame.Links[name]; ok && link.kind == linkNS {
		if link.targetNS.Path == "::" {
			return "::" + link.targetName
		}
		return link.targetNS.Path + "::" + link.targetName
	}
	return name
}
