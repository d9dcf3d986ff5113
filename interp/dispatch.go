package interp

import "github.com/plume-lang/plume/ops"

// Command Dispatcher (C6, spec §4.5). Grounded on feather's dispatch()
// fallback chain (try as given, then the global namespace) generalized
// to the full current-namespace/global/unknown resolution order, and on
// MongooseMoo-barn's task dispatch loop for threading the completion
// code back out untouched for non-error codes.

// resolveCommand looks up name against the active frame's namespace,
// returning the matched Command and the absolute name it was found
// under. A nil Command means no match at any fallback.
func (i *Interp) resolveCommand(name string) (*Command, string) {
	cur := i.ActiveFrame().NS.Path

	if IsQualified(name) {
		qualifier, tail := SplitName(name)
		nsPath := ResolveNamespacePath(cur, qualifier)
		if c := i.lookupCommandAt(nsPath, tail); c != nil {
			return c, joinNS(nsPath, tail)
		}
		if c := i.lookupCommandAt("::", tail); c != nil {
			return c, joinNS("::", tail)
		}
		return nil, ""
	}

	if cur != "::" {
		if c := i.lookupCommandAt(cur, name); c != nil {
			return c, joinNS(cur, name)
		}
	}
	if c := i.lookupCommandAt("::", name); c != nil {
		return c, joinNS("::", name)
	}
	return nil, ""
}

func joinNS(nsPath, tail string) string {
	if nsPath == "::" {
		return "::" + tail
	}
	return nsPath + "::" + tail
}

// lookupCommandAt fetches nsPath::tail, following at most a chain of
// `namespace import` aliases (CmdImport) to their real definition.
func (i *Interp) lookupCommandAt(nsPath, tail string) *Command {
	seen := 0
	for {
		ns := i.Namespaces.Get(nsPath)
		if ns == nil {
			return nil
		}
		cmd := ns.Commands[tail]
		if cmd == nil {
			return nil
		}
		if cmd.Kind != CmdImport {
			return cmd
		}
		seen++
		if seen > 32 {
			return nil // broken import cycle
		}
		qual, t := SplitName(cmd.ImportSource)
		nsPath = ResolveNamespacePath("::", qual)
		tail = t
	}
}

// LookupCommand is the exported form of resolveCommand, for `info`/
// `namespace which`/`rename`.
func (i *Interp) LookupCommand(name string) (*Command, string) {
	return i.resolveCommand(name)
}

// Dispatch resolves args[0] to a command and invokes it (spec §4.5). An
// empty args is a no-op returning OK, matching an empty parsed command
// line.
func (i *Interp) Dispatch(args []*ops.Obj) Code {
	if len(args) == 0 {
		return OK
	}
	name := i.Ops.StringOf(args[0])
	cmd, abs := i.resolveCommand(name)
	if cmd != nil {
		return i.invokeCommand(cmd, abs, name, args[1:])
	}

	if unk, absU := i.resolveCommand("unknown"); unk != nil {
		return i.invokeCommand(unk, absU, "unknown", args)
	}
	if i.HostUnknown != nil {
		return i.HostUnknown(i, name, args[1:])
	}
	return i.Fail(errNoSuchCommand(name).Error())
}

// invokeCommand runs a resolved command, firing enter/enterstep traces
// before and leave/leavestep traces after, and initializing the error
// trace at the first command whose result is TCL_ERROR (spec §4.7
// "Initialization", §4.9 "execution traces").
func (i *Interp) invokeCommand(cmd *Command, absName, dispatchedName string, callArgs []*ops.Obj) Code {
	frame := i.ActiveFrame()
	steppers := frame.StepTargets
	cmdStr := i.displayCommand(dispatchedName, callArgs)

	i.fireExecTrace(absName, "enter", cmdStr)
	if len(steppers) > 0 {
		i.fireStepTraces(steppers, "enterstep", cmdStr)
	}

	var code Code
	switch cmd.Kind {
	case CmdBuiltin:
		code = cmd.Builtin(i, dispatchedName, callArgs)
	case CmdHost:
		code = cmd.Host(i, dispatchedName, callArgs)
	case CmdProc:
		code = i.invokeProc(cmd.Proc, absName, dispatchedName, callArgs)
	default:
		code = i.Fail(errNoSuchCommand(dispatchedName).Error())
	}

	if code == ERROR && !i.errs.active {
		i.noteErrorOrigin(dispatchedName, callArgs, frame.Line)
	}

	if len(steppers) > 0 {
		i.fireStepTraces(steppers, "leavestep", cmdStr)
	}
	i.fireExecTrace(absName, "leave", cmdStr)

	return code
}

// Fail sets the result to msg and returns ERROR, the helper builtins use
// so error-trace initialization stays centralized in invokeCommand.
func (i *Interp) Fail(msg string) Code {
	i.SetResultString(msg)
	return ERROR
}
