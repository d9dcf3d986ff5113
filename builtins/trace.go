package builtins

import (
	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// `trace add/remove/info <kind> name opList script` (spec §4.9), a thin
// script-level front end over the C10 trace tables package interp
// already maintains in tracesub.go.

func registerTrace(i *interp.Interp) {
	i.RegisterBuiltin("trace", builtinTrace)
}

func builtinTrace(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 {
		return i.Fail(`wrong # args: should be "trace add|remove|info kind name ?opList? ?script?"`)
	}
	action := i.Ops.StringOf(args[0])
	rest := args[1:]
	switch action {
	case "add":
		return traceAdd(i, rest)
	case "remove":
		return traceRemove(i, rest)
	case "info":
		return traceInfo(i, rest)
	default:
		return i.Fail("unknown or ambiguous subcommand \"" + action + "\"")
	}
}

func traceAdd(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 4 {
		return i.Fail(`wrong # args: should be "trace add kind name opList script"`)
	}
	kind := i.Ops.StringOf(rest[0])
	target := i.Ops.StringOf(rest[1])
	opsList := wordList(i, rest[2])
	script := i.Ops.StringOf(rest[3])
	cur := i.ActiveFrame().NS.Path

	switch kind {
	case "variable":
		i.TraceAddVariable(i.ActiveFrame(), target, opsList, script)
	case "command":
		i.TraceAddCommand(cur, target, opsList, script)
	case "execution":
		i.TraceAddExecution(cur, target, opsList, script)
	default:
		return i.Fail("bad trace type \"" + kind + "\": must be variable, command, or execution")
	}
	i.SetResultString("")
	return interp.OK
}

func traceRemove(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 4 {
		return i.Fail(`wrong # args: should be "trace remove kind name opList script"`)
	}
	kind := i.Ops.StringOf(rest[0])
	target := i.Ops.StringOf(rest[1])
	opsList := wordList(i, rest[2])
	script := i.Ops.StringOf(rest[3])
	cur := i.ActiveFrame().NS.Path

	switch kind {
	case "variable":
		i.TraceRemoveVariable(i.ActiveFrame(), target, opsList, script)
	case "command":
		i.TraceRemoveCommand(cur, target, opsList, script)
	case "execution":
		i.TraceRemoveExecution(cur, target, opsList, script)
	default:
		return i.Fail("bad trace type \"" + kind + "\": must be variable, command, or execution")
	}
	i.SetResultString("")
	return interp.OK
}

func traceInfo(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 2 {
		return i.Fail(`wrong # args: should be "trace info kind name"`)
	}
	kind := i.Ops.StringOf(rest[0])
	target := i.Ops.StringOf(rest[1])
	cur := i.ActiveFrame().NS.Path

	var entries []interp.TraceEntry
	switch kind {
	case "variable":
		entries = i.TraceInfoVariable(i.ActiveFrame(), target)
	case "command":
		entries = i.TraceInfoCommand(cur, target)
	case "execution":
		entries = i.TraceInfoExecution(cur, target)
	default:
		return i.Fail("bad trace type \"" + kind + "\": must be variable, command, or execution")
	}

	out := make([]*ops.Obj, len(entries))
	for idx, e := range entries {
		opsObjs := make([]*ops.Obj, len(e.Ops))
		for j, o := range e.Ops {
			opsObjs[j] = i.Ops.NewString(o)
		}
		pair := []*ops.Obj{i.Ops.NewList(opsObjs), i.Ops.NewString(e.Script)}
		out[idx] = i.Ops.NewList(pair)
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}
