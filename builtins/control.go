package builtins

import (
	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// Control-flow and variable-assignment builtins, grounded on barn's
// builtins/compat_core.go verb-dispatch shape (argument-count checks
// then a type switch) but driving package interp's EvalString/GetVar/
// SetVar instead of a MOO task context.

func registerControl(i *interp.Interp) {
	i.RegisterBuiltin("if", builtinIf)
	i.RegisterBuiltin("while", builtinWhile)
	i.RegisterBuiltin("for", builtinFor)
	i.RegisterBuiltin("foreach", builtinForeach)
	i.RegisterBuiltin("lmap", builtinLmap)
	i.RegisterBuiltin("switch", builtinSwitch)
	i.RegisterBuiltin("set", builtinSet)
	i.RegisterBuiltin("append", builtinAppend)
	i.RegisterBuiltin("lappend", builtinLappend)
	i.RegisterBuiltin("proc", builtinProc)
}

func wordList(i *interp.Interp, o *ops.Obj) []string {
	items, err := i.Ops.AsList(o)
	if err != nil {
		return nil
	}
	out := make([]string, len(items))
	for idx, it := range items {
		out[idx] = i.Ops.StringOf(it)
	}
	return out
}

func builtinSet(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 || len(args) > 2 {
		return i.Fail(`wrong # args: should be "set varName ?newValue?"`)
	}
	varName := i.Ops.StringOf(args[0])
	if len(args) == 1 {
		val, err := i.GetVar(varName)
		if err != nil {
			return i.Fail(err.Error())
		}
		i.SetResult(val)
		return interp.OK
	}
	val, err := i.SetVar(varName, args[1])
	if err != nil {
		return i.Fail(err.Error())
	}
	i.SetResult(val)
	return interp.OK
}

func builtinAppend(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 {
		return i.Fail(`wrong # args: should be "append varName ?value value ...?"`)
	}
	varName := i.Ops.StringOf(args[0])
	cur := ""
	if v, err := i.GetVar(varName); err == nil {
		cur = i.Ops.StringOf(v)
	}
	for _, a := range args[1:] {
		cur += i.Ops.StringOf(a)
	}
	val, err := i.SetVar(varName, i.Ops.NewString(cur))
	if err != nil {
		return i.Fail(err.Error())
	}
	i.SetResult(val)
	return interp.OK
}

func builtinLappend(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 {
		return i.Fail(`wrong # args: should be "lappend varName ?value value ...?"`)
	}
	varName := i.Ops.StringOf(args[0])
	cur, err := i.GetVar(varName)
	if err != nil {
		cur = i.Ops.NewList(nil)
	}
	cur = i.Ops.ListPush(cur, args[1:]...)
	val, serr := i.SetVar(varName, cur)
	if serr != nil {
		return i.Fail(serr.Error())
	}
	i.SetResult(val)
	return interp.OK
}

// builtinIf implements `if expr ?then? body ?elseif expr ?then? body ...? ?else body?`.
func builtinIf(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	idx := 0
	for idx < len(args) {
		cond, code := EvalExprString(i, i.Ops.StringOf(args[idx]))
		idx++
		if code != interp.OK {
			return code
		}
		if idx < len(args) && i.Ops.StringOf(args[idx]) == "then" {
			idx++
		}
		if idx >= len(args) {
			return i.Fail(`wrong # args: should be "if expr ?then? body ?elseif expr ?then? body ...? ?else? body"`)
		}
		body := args[idx]
		idx++
		if truthy(i, cond) {
			return i.EvalString(i.Ops.StringOf(body), interp.EvalLocal)
		}
		if idx >= len(args) {
			return interp.OK
		}
		kw := i.Ops.StringOf(args[idx])
		switch kw {
		case "elseif":
			idx++
			continue
		case "else":
			idx++
			if idx >= len(args) {
				return i.Fail(`wrong # args: should be "if expr ?then? body ... ?else? body"`)
			}
			return i.EvalString(i.Ops.StringOf(args[idx]), interp.EvalLocal)
		default:
			return i.Fail(`wrong # args: should be "if expr ?then? body ?elseif expr ?then? body ...? ?else? body"`)
		}
	}
	return interp.OK
}

func builtinWhile(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) != 2 {
		return i.Fail(`wrong # args: should be "while test body"`)
	}
	condText := i.Ops.StringOf(args[0])
	bodyText := i.Ops.StringOf(args[1])
	for {
		cv, code := EvalExprString(i, condText)
		if code != interp.OK {
			return code
		}
		if !truthy(i, cv) {
			return interp.OK
		}
		switch code := i.EvalString(bodyText, interp.EvalLocal); code {
		case interp.BREAK:
			return interp.OK
		case interp.OK, interp.CONTINUE:
		default:
			return code
		}
	}
}

func builtinFor(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) != 4 {
		return i.Fail(`wrong # args: should be "for start test next body"`)
	}
	start := i.Ops.StringOf(args[0])
	cond := i.Ops.StringOf(args[1])
	next := i.Ops.StringOf(args[2])
	body := i.Ops.StringOf(args[3])

	if code := i.EvalString(start, interp.EvalLocal); code != interp.OK {
		return code
	}
	for {
		cv, code := EvalExprString(i, cond)
		if code != interp.OK {
			return code
		}
		if !truthy(i, cv) {
			return interp.OK
		}
		switch code := i.EvalString(body, interp.EvalLocal); code {
		case interp.BREAK:
			return interp.OK
		case interp.ERROR, interp.RETURN:
			return code
		}
		if code := i.EvalString(next, interp.EvalLocal); code != interp.OK {
			return code
		}
	}
}

func builtinForeach(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 3 || len(args)%2 == 0 {
		return i.Fail(`wrong # args: should be "foreach varList list ?varList list ...? body"`)
	}
	n := (len(args) - 1) / 2
	varLists := make([][]string, n)
	valLists := make([][]*ops.Obj, n)
	rounds := 0
	for k := 0; k < n; k++ {
		varLists[k] = wordList(i, args[2*k])
		vl, err := i.Ops.AsList(args[2*k+1])
		if err != nil {
			return i.Fail(err.Error())
		}
		valLists[k] = vl
		if len(varLists[k]) == 0 {
			return i.Fail("foreach varlist is empty")
		}
		r := (len(vl) + len(varLists[k]) - 1) / len(varLists[k])
		if r > rounds {
			rounds = r
		}
	}
	body := i.Ops.StringOf(args[len(args)-1])

	for round := 0; round < rounds; round++ {
		for k := 0; k < n; k++ {
			vars := varLists[k]
			vals := valLists[k]
			for vi, vname := range vars {
				vidx := round*len(vars) + vi
				val := i.Ops.NewString("")
				if vidx < len(vals) {
					val = vals[vidx]
				}
				if _, err := i.SetVar(vname, val); err != nil {
					return i.Fail(err.Error())
				}
			}
		}
		switch code := i.EvalString(body, interp.EvalLocal); code {
		case interp.BREAK:
			return interp.OK
		case interp.OK, interp.CONTINUE:
		default:
			return code
		}
	}
	return interp.OK
}

func builtinLmap(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 3 || len(args)%2 == 0 {
		return i.Fail(`wrong # args: should be "lmap varList list ?varList list ...? body"`)
	}
	n := (len(args) - 1) / 2
	varLists := make([][]string, n)
	valLists := make([][]*ops.Obj, n)
	rounds := 0
	for k := 0; k < n; k++ {
		varLists[k] = wordList(i, args[2*k])
		vl, err := i.Ops.AsList(args[2*k+1])
		if err != nil {
			return i.Fail(err.Error())
		}
		valLists[k] = vl
		if len(varLists[k]) == 0 {
			return i.Fail("lmap varlist is empty")
		}
		r := (len(vl) + len(varLists[k]) - 1) / len(varLists[k])
		if r > rounds {
			rounds = r
		}
	}
	body := i.Ops.StringOf(args[len(args)-1])
	var collected []*ops.Obj

	for round := 0; round < rounds; round++ {
		for k := 0; k < n; k++ {
			vars := varLists[k]
			vals := valLists[k]
			for vi, vname := range vars {
				vidx := round*len(vars) + vi
				val := i.Ops.NewString("")
				if vidx < len(vals) {
					val = vals[vidx]
				}
				if _, err := i.SetVar(vname, val); err != nil {
					return i.Fail(err.Error())
				}
			}
		}
		switch code := i.EvalString(body, interp.EvalLocal); code {
		case interp.BREAK:
			i.SetResult(i.Ops.NewList(collected))
			return interp.OK
		case interp.CONTINUE:
		case interp.OK:
			collected = append(collected, i.GetResult())
		default:
			return code
		}
	}
	i.SetResult(i.Ops.NewList(collected))
	return interp.OK
}

func builtinSwitch(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	idx := 0
	mode := "exact"
loop:
	for idx < len(args) {
		switch i.Ops.StringOf(args[idx]) {
		case "-exact":
			mode = "exact"
			idx++
		case "-glob":
			mode = "glob"
			idx++
		case "--":
			idx++
			break loop
		default:
			break loop
		}
	}
	if idx >= len(args) {
		return i.Fail(`wrong # args: should be "switch ?options? string pattern body ..."`)
	}
	value := i.Ops.StringOf(args[idx])
	idx++

	var pairs []*ops.Obj
	if idx == len(args)-1 {
		lst, err := i.Ops.AsList(args[idx])
		if err != nil {
			return i.Fail(err.Error())
		}
		pairs = lst
	} else {
		pairs = args[idx:]
	}
	if len(pairs)%2 != 0 {
		return i.Fail("extra switch pattern with no body")
	}

	for k := 0; k+1 < len(pairs); k += 2 {
		pat := i.Ops.StringOf(pairs[k])
		matched := pat == "default" && k+2 == len(pairs)
		if !matched {
			if mode == "glob" {
				matched = i.Ops.StringMatch(pat, value)
			} else {
				matched = pat == value
			}
		}
		if !matched {
			continue
		}
		bodyStr := i.Ops.StringOf(pairs[k+1])
		for bodyStr == "-" && k+3 < len(pairs) {
			k += 2
			bodyStr = i.Ops.StringOf(pairs[k+1])
		}
		return i.EvalString(bodyStr, interp.EvalLocal)
	}
	i.SetResultString("")
	return interp.OK
}

// builtinProc implements `proc name params body` (spec §4.6).
func builtinProc(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) != 3 {
		return i.Fail(`wrong # args: should be "proc name args body"`)
	}
	procName := i.Ops.StringOf(args[0])
	params, variadic, err := interp.ParseParams(i, args[1])
	if err != nil {
		return i.Fail(err.Error())
	}
	body := i.Ops.StringOf(args[2])

	cur := i.ActiveFrame().NS
	qualifier, tail := interp.SplitName(procName)
	nsPath := interp.ResolveNamespacePath(cur.Path, qualifier)
	ns := i.Namespaces.Ensure(nsPath)
	abs := nsPath + "::" + tail
	if nsPath == "::" {
		abs = "::" + tail
	}

	proc := interp.NewProcedure(abs, params, variadic, body, ns)
	ns.Commands[tail] = &interp.Command{Kind: interp.CmdProc, Proc: proc}
	i.SetResultString("")
	return interp.OK
}
