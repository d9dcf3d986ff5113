package builtins

import (
	"strconv"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// `info` subcommands (SPEC_FULL.md §C): introspection over the frame
// stack, namespace registry, and procedure table, rounding out the
// handful spec.md names explicitly (info exists/commands/vars) with the
// rest of standard Tcl's info family.

func registerInfo(i *interp.Interp) {
	i.RegisterBuiltin("info", builtinInfo)
}

func builtinInfo(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "info subcommand ?arg ...?"`)
	}
	sub := i.Ops.StringOf(args[0])
	rest := args[1:]
	switch sub {
	case "exists":
		if len(rest) != 1 {
			return i.Fail(`wrong # args: should be "info exists varName"`)
		}
		i.SetResult(boolObj(i, i.ExistsVar(i.Ops.StringOf(rest[0]))))
		return interp.OK
	case "commands":
		return infoNames(i, rest, func(ns *interp.Namespace) map[string]bool {
			out := make(map[string]bool)
			for n := range ns.Commands {
				out[n] = true
			}
			return out
		})
	case "procs":
		return infoNames(i, rest, func(ns *interp.Namespace) map[string]bool {
			out := make(map[string]bool)
			for n, c := range ns.Commands {
				if c.Kind == interp.CmdProc {
					out[n] = true
				}
			}
			return out
		})
	case "vars":
		return infoNames(i, rest, func(ns *interp.Namespace) map[string]bool {
			out := make(map[string]bool)
			for n := range ns.Vars {
				out[n] = true
			}
			return out
		})
	case "level":
		return infoLevel(i, rest)
	case "body":
		return infoProcField(i, rest, "body")
	case "args":
		return infoProcField(i, rest, "args")
	case "default":
		return infoDefault(i, rest)
	case "errorstack":
		i.SetResult(i.Ops.NewList(nil))
		if opts := i.ReturnOptions(); opts != nil {
			if _, vals, err := i.Ops.AsDict(opts); err == nil {
				if stack, ok := vals["-errorstack"]; ok {
					i.SetResult(stack)
				}
			}
		}
		return interp.OK
	case "frame":
		return infoFrame(i, rest)
	default:
		return i.Fail("unknown or ambiguous subcommand \"" + sub + "\": must be exists, commands, procs, vars, level, body, args, default, errorstack, or frame")
	}
}

func infoNames(i *interp.Interp, rest []*ops.Obj, collect func(*interp.Namespace) map[string]bool) interp.Code {
	pattern := ""
	if len(rest) >= 1 {
		pattern = i.Ops.StringOf(rest[0])
	}
	ns := i.ActiveFrame().NS
	seen := collect(ns)
	if ns.Path != "::" {
		for n := range collect(i.Namespaces.Root()) {
			seen[n] = true
		}
	}
	var out []*ops.Obj
	for n := range seen {
		if pattern == "" || i.Ops.StringMatch(pattern, n) {
			out = append(out, i.Ops.NewString(n))
		}
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func infoLevel(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) == 0 {
		i.SetResult(i.Ops.NewInt(int64(i.ActiveFrame().Level)))
		return interp.OK
	}
	if len(rest) != 1 {
		return i.Fail(`wrong # args: should be "info level ?number?"`)
	}
	n, err := strconv.ParseInt(i.Ops.StringOf(rest[0]), 10, 64)
	if err != nil {
		return i.Fail("bad level \"" + i.Ops.StringOf(rest[0]) + "\"")
	}
	idx := int(n)
	if idx <= 0 {
		idx = i.ActiveFrame().Level + idx
	}
	frames := i.FrameCount()
	if idx < 0 || idx >= frames {
		return i.Fail("bad level \"" + i.Ops.StringOf(rest[0]) + "\"")
	}
	cmd, fargs := i.FrameInvocation(idx)
	items := append([]*ops.Obj{i.Ops.NewString(cmd)}, fargs...)
	i.SetResult(i.Ops.NewList(items))
	return interp.OK
}

func infoProcField(i *interp.Interp, rest []*ops.Obj, field string) interp.Code {
	if len(rest) != 1 {
		return i.Fail(`wrong # args: should be "info ` + field + ` procname"`)
	}
	cmd, _ := i.LookupCommand(i.Ops.StringOf(rest[0]))
	if cmd == nil || cmd.Kind != interp.CmdProc {
		return i.Fail("\"" + i.Ops.StringOf(rest[0]) + "\" isn't a procedure")
	}
	proc := cmd.Proc
	if field == "body" {
		i.SetResultString(proc.Body)
		return interp.OK
	}
	var out []*ops.Obj
	for idx, p := range proc.Params {
		if proc.Variadic && idx == len(proc.Params)-1 {
			out = append(out, i.Ops.NewString("args"))
			continue
		}
		out = append(out, i.Ops.NewString(p.Name))
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func infoDefault(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 3 {
		return i.Fail(`wrong # args: should be "info default procname arg varname"`)
	}
	cmd, _ := i.LookupCommand(i.Ops.StringOf(rest[0]))
	if cmd == nil || cmd.Kind != interp.CmdProc {
		return i.Fail("\"" + i.Ops.StringOf(rest[0]) + "\" isn't a procedure")
	}
	argName := i.Ops.StringOf(rest[1])
	varName := i.Ops.StringOf(rest[2])
	for _, p := range cmd.Proc.Params {
		if p.Name != argName {
			continue
		}
		if p.HasDefault {
			i.SetVar(varName, p.Default)
			i.SetResult(boolObj(i, true))
			return interp.OK
		}
		i.SetVar(varName, i.Ops.NewString(""))
		i.SetResult(boolObj(i, false))
		return interp.OK
	}
	return i.Fail("procedure \"" + i.Ops.StringOf(rest[0]) + "\" doesn't have an argument \"" + argName + "\"")
}

func infoFrame(i *interp.Interp, rest []*ops.Obj) interp.Code {
	idx := i.ActiveFrame().Level
	if len(rest) == 1 {
		n, err := strconv.ParseInt(i.Ops.StringOf(rest[0]), 10, 64)
		if err != nil {
			return i.Fail("bad level \"" + i.Ops.StringOf(rest[0]) + "\"")
		}
		idx = int(n)
		if idx <= 0 {
			idx = i.ActiveFrame().Level + idx
		}
	}
	if idx < 0 || idx >= i.FrameCount() {
		return i.Fail("bad level")
	}
	cmd, fargs := i.FrameInvocation(idx)
	line := i.FrameLine(idx)
	keys := []string{"level", "cmd", "line"}
	vals := []*ops.Obj{i.Ops.NewInt(int64(idx)), i.Ops.NewString(cmd), i.Ops.NewInt(int64(line))}
	_ = fargs
	i.SetResult(i.Ops.NewDict(keys, vals))
	return interp.OK
}
