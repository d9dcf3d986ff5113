package builtins

import (
	"strings"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// `namespace` subcommands (spec §4.4), rounding out eval/import/export/
// delete with the usual introspection subcommands (current/parent/
// children/qualifiers/tail/which/exists/origin/code) per SPEC_FULL.md §C.

func registerNamespace(i *interp.Interp) {
	i.RegisterBuiltin("namespace", builtinNamespace)
}

func builtinNamespace(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "namespace subcommand ?arg ...?"`)
	}
	sub := i.Ops.StringOf(args[0])
	rest := args[1:]
	switch sub {
	case "eval":
		return nsEval(i, rest)
	case "import":
		return nsImport(i, rest)
	case "export":
		return nsExport(i, rest)
	case "delete":
		return nsDelete(i, rest)
	case "current":
		i.SetResultString(i.ActiveFrame().NS.Path)
		return interp.OK
	case "parent":
		return nsParent(i, rest)
	case "children":
		return nsChildren(i, rest)
	case "qualifiers":
		if len(rest) != 1 {
			return i.Fail(`wrong # args: should be "namespace qualifiers name"`)
		}
		q, _ := interp.SplitName(i.Ops.StringOf(rest[0]))
		i.SetResultString(q)
		return interp.OK
	case "tail":
		if len(rest) != 1 {
			return i.Fail(`wrong # args: should be "namespace tail name"`)
		}
		_, tail := interp.SplitName(i.Ops.StringOf(rest[0]))
		i.SetResultString(tail)
		return interp.OK
	case "which":
		return nsWhich(i, rest)
	case "exists":
		if len(rest) != 1 {
			return i.Fail(`wrong # args: should be "namespace exists name"`)
		}
		path := interp.ResolveNamespacePath(i.ActiveFrame().NS.Path, i.Ops.StringOf(rest[0]))
		i.SetResult(boolObj(i, i.Namespaces.Get(path) != nil))
		return interp.OK
	case "origin":
		return nsOrigin(i, rest)
	case "code":
		if len(rest) != 1 {
			return i.Fail(`wrong # args: should be "namespace code script"`)
		}
		i.SetResult(i.Ops.NewList([]*ops.Obj{
			i.Ops.NewString("::namespace"), i.Ops.NewString("eval"),
			i.Ops.NewString(i.ActiveFrame().NS.Path), rest[0],
		}))
		return interp.OK
	default:
		return i.Fail("unknown or ambiguous subcommand \"" + sub + "\"")
	}
}

func nsEval(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 2 {
		return i.Fail(`wrong # args: should be "namespace eval name arg ?arg ...?"`)
	}
	cur := i.ActiveFrame().NS.Path
	path := interp.ResolveNamespacePath(cur, i.Ops.StringOf(rest[0]))
	ns := i.Namespaces.Ensure(path)

	parts := make([]string, len(rest)-1)
	for idx, a := range rest[1:] {
		parts[idx] = i.Ops.StringOf(a)
	}
	script := strings.Join(parts, " ")

	frame := i.ActiveFrame()
	saved := frame.NS
	i.SetFrameNamespace(frame, ns)
	code := i.EvalString(script, interp.EvalLocal)
	i.SetFrameNamespace(frame, saved)
	return code
}

func nsImport(i *interp.Interp, rest []*ops.Obj) interp.Code {
	force := false
	if len(rest) > 0 && i.Ops.StringOf(rest[0]) == "-force" {
		force = true
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return i.Fail(`wrong # args: should be "namespace import ?-force? pattern ?pattern ...?"`)
	}
	cur := i.ActiveFrame().NS
	for _, a := range rest {
		spec := i.Ops.StringOf(a)
		qualifier, pattern := interp.SplitName(spec)
		nsPath := interp.ResolveNamespacePath(cur.Path, qualifier)
		src := i.Namespaces.Get(nsPath)
		if src == nil {
			continue
		}
		for cmdName := range src.Commands {
			if !ops.GlobMatch(pattern, cmdName) {
				continue
			}
			if _, exists := cur.Commands[cmdName]; exists && !force {
				continue
			}
			abs := nsPath + "::" + cmdName
			if nsPath == "::" {
				abs = "::" + cmdName
			}
			cur.Commands[cmdName] = &interp.Command{Kind: interp.CmdImport, ImportSource: abs}
		}
	}
	i.SetResultString("")
	return interp.OK
}

func nsExport(i *interp.Interp, rest []*ops.Obj) interp.Code {
	ns := i.ActiveFrame().NS
	if len(rest) > 0 && i.Ops.StringOf(rest[0]) == "-clear" {
		ns.ExportPatterns = nil
		rest = rest[1:]
	}
	for _, a := range rest {
		ns.ExportPatterns = append(ns.ExportPatterns, i.Ops.StringOf(a))
	}
	out := make([]*ops.Obj, len(ns.ExportPatterns))
	for idx, p := range ns.ExportPatterns {
		out[idx] = i.Ops.NewString(p)
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func nsDelete(i *interp.Interp, rest []*ops.Obj) interp.Code {
	cur := i.ActiveFrame().NS.Path
	for _, a := range rest {
		path := interp.ResolveNamespacePath(cur, i.Ops.StringOf(a))
		if err := i.Namespaces.Delete(path); err != nil {
			return i.Fail(err.Error())
		}
	}
	i.SetResultString("")
	return interp.OK
}

func nsParent(i *interp.Interp, rest []*ops.Obj) interp.Code {
	path := i.ActiveFrame().NS.Path
	if len(rest) == 1 {
		path = interp.ResolveNamespacePath(i.ActiveFrame().NS.Path, i.Ops.StringOf(rest[0]))
	}
	ns := i.Namespaces.Get(path)
	if ns == nil || ns.Parent == nil {
		i.SetResultString("")
		return interp.OK
	}
	i.SetResultString(ns.Parent.Path)
	return interp.OK
}

func nsChildren(i *interp.Interp, rest []*ops.Obj) interp.Code {
	path := i.ActiveFrame().NS.Path
	pattern := ""
	if len(rest) >= 1 {
		path = interp.ResolveNamespacePath(i.ActiveFrame().NS.Path, i.Ops.StringOf(rest[0]))
	}
	if len(rest) >= 2 {
		pattern = i.Ops.StringOf(rest[1])
	}
	children := i.Namespaces.ChildPaths(path, pattern)
	out := make([]*ops.Obj, len(children))
	for idx, c := range children {
		out[idx] = i.Ops.NewString(c)
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func nsWhich(i *interp.Interp, rest []*ops.Obj) interp.Code {
	mode := "-command"
	if len(rest) == 2 {
		mode = i.Ops.StringOf(rest[0])
		rest = rest[1:]
	}
	if len(rest) != 1 {
		return i.Fail(`wrong # args: should be "namespace which ?-command|-variable? name"`)
	}
	name := i.Ops.StringOf(rest[0])
	if mode == "-variable" {
		if i.ExistsVar(name) {
			i.SetResultString(name)
		} else {
			i.SetResultString("")
		}
		return interp.OK
	}
	_, abs := i.LookupCommand(name)
	i.SetResultString(abs)
	return interp.OK
}

func nsOrigin(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 1 {
		return i.Fail(`wrong # args: should be "namespace origin name"`)
	}
	cmd, abs := i.LookupCommand(i.Ops.StringOf(rest[0]))
	if cmd == nil {
		return i.Fail("invalid command name \"" + i.Ops.StringOf(rest[0]) + "\"")
	}
	i.SetResultString(abs)
	return interp.OK
}
