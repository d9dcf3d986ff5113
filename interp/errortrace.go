package interp

import (
	"fmt"
	"strings"

	"github.com/plume-lang/plume/ops"
)

// errorTraceState accumulates the traceback for the error currently
// unwinding the call stack (spec §4.7). It is reset every time a
// catch/try/top-level boundary finalizes it, and (re)initialized by the
// first command dispatch that turns up a TCL_ERROR while no trace is
// already active -- matching real Tcl's rule that nested `catch`es don't
// stomp on an outer traceback still being built.
type errorTraceState struct {
	active bool
	info   []string   // -errorinfo lines, joined with "\n"
	stack  []*ops.Obj // -errorstack: INNER {cmd args…} CALL {name args…} CALL {name args…} ...
	code   string     // -errorcode, defaults to "NONE"
	line   int        // -errorline, the line the error originated on
}

// noteErrorOrigin initializes the error-trace state at the first command
// whose execution produced TCL_ERROR (spec §4.7 "Initialization"). cmdName
// is empty for parse-time errors, which have no command/args to report.
func (i *Interp) noteErrorOrigin(cmdName string, args []*ops.Obj, line int) {
	if i.errs.active {
		return
	}
	i.errs.active = true
	i.errs.line = line
	i.errs.code = "NONE"
	i.errs.stack = nil

	msg := i.ResultString()
	if cmdName == "" {
		i.errs.info = []string{msg}
		return
	}
	display := i.displayCommand(cmdName, args)
	i.errs.info = []string{msg, fmt.Sprintf("    while executing\n\"%s\"", display)}
	i.errs.stack = []*ops.Obj{i.Ops.NewString("INNER"), i.cmdFrameEl(cmdName, args)}
}

// appendErrorFrame records that the unwinding error is crossing a proc
// boundary (spec §4.7 "Append"), called by proc.go's invoker just before
// it pops the frame the error is leaving.
func (i *Interp) appendErrorFrame(procName string, args []*ops.Obj, line int) {
	if !i.errs.active {
		return
	}
	display := i.displayCommand(procName, args)
	i.errs.info = append(i.errs.info,
		fmt.Sprintf("    (procedure %q line %d)\n    invoked from within\n\"%s\"", procName, line, display))
	i.errs.stack = append(i.errs.stack, i.Ops.NewString("CALL"), i.cmdFrameEl(procName, args))
}

// cmdFrameEl builds the {name arg1 arg2…} sublist element spec §3/§4.7
// nests each INNER/CALL tag against in -errorstack.
func (i *Interp) cmdFrameEl(name string, args []*ops.Obj) *ops.Obj {
	els := append([]*ops.Obj{i.Ops.NewString(name)}, args...)
	return i.Ops.NewList(els)
}

// finalizeErrorTrace copies the accumulated trace into the current
// return-options dict, mirrors -errorinfo/-errorcode into the
// ::errorInfo/::errorCode globals, and clears the active state (spec
// §4.7 "Finalization", fired at a catch/try/top-level boundary).
func (i *Interp) finalizeErrorTrace() *ops.Obj {
	opts := i.ReturnOptions()
	opts = i.optDictSet(opts, "-errorinfo", i.Ops.NewString(strings.Join(i.errs.info, "\n")))
	opts = i.optDictSet(opts, "-errorstack", i.Ops.NewList(i.errs.stack))
	if _, has := i.optDictGet(opts, "-errorcode"); !has {
		opts = i.optDictSet(opts, "-errorcode", i.Ops.NewString(i.errs.code))
	}
	opts = i.optDictSet(opts, "-errorline", i.Ops.NewInt(int64(i.errs.line)))
	i.SetReturnOptions(opts)

	root := i.Namespaces.Root()
	root.Vars["errorInfo"] = i.Ops.NewString(strings.Join(i.errs.info, "\n"))
	if ec, ok := i.optDictGet(opts, "-errorcode"); ok {
		root.Vars["errorCode"] = ec
	}

	i.errs.active = false
	i.errs.info = nil
	i.errs.stack = nil
	i.errs.code = "NONE"
	i.errs.line = 0
	return opts
}

// displayCommand renders a command and its arguments the way Tcl's own
// tracebacks do, for the "while executing" line.
func (i *Interp) displayCommand(cmdName string, args []*ops.Obj) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, cmdName)
	for _, a := range args {
		parts = append(parts, i.Ops.StringOf(a))
	}
	s := strings.Join(parts, " ")
	const maxLen = 150
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
