package builtins

import (
	"strings"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// eval/unset/rename: the remaining scalar-variable and command-table
// operations spec §4.3/§4.9 assumes exist as script-visible commands,
// rounding out what varcmds.go and namespacecmd.go already cover.

func registerEval(i *interp.Interp) {
	i.RegisterBuiltin("eval", builtinEval)
	i.RegisterBuiltin("unset", builtinUnset)
	i.RegisterBuiltin("rename", builtinRename)
}

// builtinEval joins its words into one script and re-evaluates it in
// the caller's frame, matching the spec's round-trip requirement that
// `eval` on any object reliably re-parses its canonical string form.
func builtinEval(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "eval arg ?arg ...?"`)
	}
	parts := make([]string, len(args))
	for idx, a := range args {
		parts[idx] = i.Ops.StringOf(a)
	}
	return i.EvalString(strings.Join(parts, " "), interp.EvalLocal)
}

func builtinUnset(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	nocomplain := false
	rest := args
	if len(rest) > 0 && i.Ops.StringOf(rest[0]) == "-nocomplain" {
		nocomplain = true
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return i.Fail(`wrong # args: should be "unset ?-nocomplain? varName ?varName ...?"`)
	}
	for _, a := range rest {
		if err := i.UnsetVar(i.Ops.StringOf(a)); err != nil && !nocomplain {
			return i.Fail(err.Error())
		}
	}
	i.SetResultString("")
	return interp.OK
}

// builtinRename moves a command's table entry from oldName to newName
// (which may resolve into a different namespace, created if missing),
// or deletes it if newName is "", firing the
// command trace (rename or delete) registered on oldName (spec §4.9).
func builtinRename(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) != 2 {
		return i.Fail(`wrong # args: should be "rename oldName newName"`)
	}
	oldName := i.Ops.StringOf(args[0])
	newName := i.Ops.StringOf(args[1])

	cur := i.ActiveFrame().NS.Path
	oldQual, oldTail := interp.SplitName(oldName)
	oldNS := i.Namespaces.Get(interp.ResolveNamespacePath(cur, oldQual))
	if oldNS == nil || oldNS.Commands[oldTail] == nil {
		return i.Fail("can't rename \"" + oldName + "\": command doesn't exist")
	}
	cmd := oldNS.Commands[oldTail]
	oldAbs := interp.AbsoluteCommandName(cur, oldName)

	if newName == "" {
		delete(oldNS.Commands, oldTail)
		i.FireCommandRenamed(oldAbs, "", "delete")
		i.SetResultString("")
		return interp.OK
	}

	newQual, newTail := interp.SplitName(newName)
	newNSPath := interp.ResolveNamespacePath(cur, newQual)
	newNS := i.Namespaces.Ensure(newNSPath)
	if newNS.Commands[newTail] != nil {
		return i.Fail("can't rename to \"" + newName + "\": command already exists")
	}
	delete(oldNS.Commands, oldTail)
	newNS.Commands[newTail] = cmd
	newAbs := interp.AbsoluteCommandName(cur, newName)
	i.FireCommandRenamed(oldAbs, newAbs, "rename")
	i.SetResultString("")
	return interp.OK
}
