package interp

// Trace subsystem (C10, spec §4.9): variable (read/write/unset), command
// (rename/delete), and execution (enter/leave/enterstep/leavestep)
// traces. Grounded on barn's trace/tracer.go for the "fire a callback,
// suppress self-recursion for its duration" shape, generalized here from
// a single hardwired debug callback to arbitrary registered scripts keyed
// by name and op.

// TraceEntry is one registered trace: which ops it fires on, and the
// command-prefix script to run (spec args are appended by the firer).
type TraceEntry struct {
	Ops    []string
	Script string
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func removeTraceEntry(entries []TraceEntry, opsList []string, script string) []TraceEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.Script == script && sameOps(e.Ops, opsList) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sameOps(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !containsStr(b, x) {
			return false
		}
	}
	return true
}

// tclQuote wraps a value in braces so it can be appended as one word to
// a trace-script command line without itself being word-split.
func tclQuote(s string) string {
	return "{" + s + "}"
}

// --- variable traces ---

func (i *Interp) TraceAddVariable(frame *CallFrame, name string, opsList []string, script string) {
	abs := absVarName(frame, name)
	i.varTraces[abs] = append(i.varTraces[abs], TraceEntry{Ops: opsList, Script: script})
}

func (i *Interp) TraceRemoveVariable(frame *CallFrame, name string, opsList []string, script string) {
	abs := absVarName(frame, name)
	i.varTraces[abs] = removeTraceEntry(i.varTraces[abs], opsList, script)
}

func (i *Interp) TraceInfoVariable(frame *CallFrame, name string) []TraceEntry {
	return i.varTraces[absVarName(frame, name)]
}

// purgeVarTraces drops every trace registered on a variable, fired when
// the variable (or the link aliasing it) is unset (spec §4.3).
func (i *Interp) purgeVarTraces(abs string) {
	delete(i.varTraces, abs)
}

// fireVarTrace runs every trace on name matching op, in registration
// order, suppressing re-entrant firing on the same variable (spec §5
// "Trace recursion"). An ERROR completion from the trace script
// surfaces as an error to the caller (other codes are ignored); UnsetVar callers discard it since
// unset traces cannot veto (spec §4.3).
func (i *Interp) fireVarTrace(frame *CallFrame, name, op string) error {
	abs := absVarName(frame, name)
	entries := i.varTraces[abs]
	if len(entries) == 0 {
		return nil
	}
	key := "var:" + abs
	if i.disabledTraces[key] {
		return nil
	}
	i.disabledTraces[key] = true
	defer delete(i.disabledTraces, key)

	for _, e := range entries {
		if !containsStr(e.Ops, op) {
			continue
		}
		cmd := e.Script + " " + tclQuote(name) + " {} " + op
		if code := i.EvalString(cmd, EvalLocal); code == ERROR {
			return errShape("%s", i.ResultString())
		}
	}
	return nil
}

// --- command traces (rename/delete) ---

func (i *Interp) TraceAddCommand(currentNS string, name string, opsList []string, script string) {
	abs := AbsoluteCommandName(currentNS, name)
	i.cmdTraces[abs] = append(i.cmdTraces[abs], TraceEntry{Ops: opsList, Script: script})
}

func (i *Interp) TraceRemoveCommand(currentNS string, name string, opsList []string, script string) {
	abs := AbsoluteCommandName(currentNS, name)
	i.cmdTraces[abs] = removeTraceEntry(i.cmdTraces[abs], opsList, script)
}

func (i *Interp) TraceInfoCommand(currentNS string, name string) []TraceEntry {
	return i.cmdTraces[AbsoluteCommandName(currentNS, name)]
}

// FireCommandRenamed notifies the command-trace subsystem that oldName
// was renamed to newName (op "rename") or removed (op "delete", newName
// empty), for `rename`'s use from package builtins.
func (i *Interp) FireCommandRenamed(oldName, newName, op string) {
	i.fireCmdTrace(oldName, newName, op)
}

// fireCmdTrace runs rename/delete traces registered on oldName.
func (i *Interp) fireCmdTrace(oldName, newName, op string) {
	entries := i.cmdTraces[oldName]
	if len(entries) == 0 {
		return
	}
	key := "cmd:" + oldName
	if i.disabledTraces[key] {
		return
	}
	i.disabledTraces[key] = true
	defer delete(i.disabledTraces, key)

	for _, e := range entries {
		if !containsStr(e.Ops, op) {
			continue
		}
		cmd := e.Script + " " + tclQuote(oldName) + " " + tclQuote(newName) + " " + op
		i.EvalString(cmd, EvalLocal)
	}
	if op == "delete" {
		delete(i.cmdTraces, oldName)
	}
}

// --- execution traces (enter/leave/enterstep/leavestep) ---

func (i *Interp) TraceAddExecution(currentNS string, name string, opsList []string, script string) {
	abs := AbsoluteCommandName(currentNS, name)
	i.execTraces[abs] = append(i.execTraces[abs], TraceEntry{Ops: opsList, Script: script})
}

func (i *Interp) TraceRemoveExecution(currentNS string, name string, opsList []string, script string) {
	abs := AbsoluteCommandName(currentNS, name)
	i.execTraces[abs] = removeTraceEntry(i.execTraces[abs], opsList, script)
}

func (i *Interp) TraceInfoExecution(currentNS string, name string) []TraceEntry {
	return i.execTraces[AbsoluteCommandName(currentNS, name)]
}

// hasStepTrace reports whether absName carries an active enterstep or
// leavestep registration, the trigger for threading it onto a pushed
// frame's StepTargets (spec §4.9/§9).
func (i *Interp) hasStepTrace(absName string) bool {
	for _, e := range i.execTraces[absName] {
		if containsStr(e.Ops, "enterstep") || containsStr(e.Ops, "leavestep") {
			return true
		}
	}
	return false
}

// fireExecTrace runs enter/leave traces registered directly on absName.
func (i *Interp) fireExecTrace(absName, op, cmdStr string) {
	entries := i.execTraces[absName]
	if len(entries) == 0 {
		return
	}
	key := "exec:" + absName
	if i.disabledTraces[key] {
		return
	}
	i.disabledTraces[key] = true
	defer delete(i.disabledTraces, key)

	for _, e := range entries {
		if !containsStr(e.Ops, op) {
			continue
		}
		cmd := e.Script + " " + tclQuote(cmdStr) + " " + op
		i.EvalString(cmd, EvalLocal)
	}
}

// fireStepTraces runs enterstep/leavestep traces for every target whose
// scope currently covers the executing frame, propagated down the call
// chain via CallFrame.StepTargets rather than a global (spec §9).
func (i *Interp) fireStepTraces(targets []string, op, cmdStr string) {
	for _, target := range targets {
		entries := i.execTraces[target]
		key := "exec:" + target + ":" + op
		if i.disabledTraces[key] {
			continue
		}
		fired := false
		for _, e := range entries {
			if !containsStr(e.Ops, op) {
				continue
			}
			if !fired {
				i.disabledTraces[key] = true
				fired = true
			}
			cmd := e.Script + " " + tclQuote(cmdStr) + " " + op
			i.EvalString(cmd, EvalLocal)
		}
		if fired {
			delete(i.disabledTraces, key)
		}
	}
}
