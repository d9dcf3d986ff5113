package builtins

import (
	"strings"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// uplevel/upvar/global/variable/incr: script-visible sugar over the
// Frame Stack & Variable Engine's (C4) link/active-frame primitives,
// per SPEC_FULL.md §C.

func registerVars(i *interp.Interp) {
	i.RegisterBuiltin("uplevel", builtinUplevel)
	i.RegisterBuiltin("upvar", builtinUpvar)
	i.RegisterBuiltin("global", builtinGlobal)
	i.RegisterBuiltin("variable", builtinVariable)
	i.RegisterBuiltin("incr", builtinIncr)
}

func isLevelSpec(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '#' {
		return true
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		start = 1
	}
	if start >= len(s) {
		return false
	}
	for _, c := range s[start:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func builtinUplevel(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "uplevel ?level? arg ?arg ...?"`)
	}
	levelArg := ""
	rest := args
	if len(args) >= 2 && isLevelSpec(i.Ops.StringOf(args[0])) {
		levelArg = i.Ops.StringOf(args[0])
		rest = args[1:]
	}
	level, err := i.ResolveFrameLevel(levelArg)
	if err != nil {
		return i.Fail(err.Error())
	}
	parts := make([]string, len(rest))
	for idx, a := range rest {
		parts[idx] = i.Ops.StringOf(a)
	}
	script := strings.Join(parts, " ")
	return i.WithActiveFrameAt(level, func() interp.Code {
		return i.EvalString(script, interp.EvalLocal)
	})
}

func builtinUpvar(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 2 {
		return i.Fail(`wrong # args: should be "upvar ?level? otherVar myVar ?otherVar myVar ...?"`)
	}
	levelArg := ""
	rest := args
	if len(args)%2 == 1 {
		levelArg = i.Ops.StringOf(args[0])
		rest = args[1:]
	}
	if len(rest) == 0 || len(rest)%2 != 0 {
		return i.Fail(`wrong # args: should be "upvar ?level? otherVar myVar ?otherVar myVar ...?"`)
	}
	level, err := i.ResolveFrameLevel(levelArg)
	if err != nil {
		return i.Fail(err.Error())
	}
	for k := 0; k+1 < len(rest); k += 2 {
		other := i.Ops.StringOf(rest[k])
		mine := i.Ops.StringOf(rest[k+1])
		i.LinkUpvar(mine, level, other)
	}
	i.SetResultString("")
	return interp.OK
}

func builtinGlobal(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "global name ?name ...?"`)
	}
	root := i.Namespaces.Root()
	for _, a := range args {
		n := i.Ops.StringOf(a)
		i.LinkNS(n, root, n)
	}
	i.SetResultString("")
	return interp.OK
}

func builtinVariable(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "variable name ?value? ?name value ...?"`)
	}
	ns := i.ActiveFrame().NS
	n := len(args)
	idx := 0
	for idx < n {
		varName := i.Ops.StringOf(args[idx])
		if n-idx >= 2 {
			if _, exists := ns.Vars[varName]; !exists {
				ns.Vars[varName] = args[idx+1]
			}
			idx += 2
		} else {
			if _, exists := ns.Vars[varName]; !exists {
				ns.Vars[varName] = i.Ops.NewString("")
			}
			idx++
		}
		i.LinkNS(varName, ns, varName)
	}
	i.SetResultString("")
	return interp.OK
}

func builtinIncr(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 || len(args) > 2 {
		return i.Fail(`wrong # args: should be "incr varName ?increment?"`)
	}
	varName := i.Ops.StringOf(args[0])
	delta := int64(1)
	if len(args) == 2 {
		d, err := i.Ops.AsInt(args[1])
		if err != nil {
			return i.Fail(err.Error())
		}
		delta = d
	}
	cur := int64(0)
	if v, err := i.GetVar(varName); err == nil {
		n, cerr := i.Ops.AsInt(v)
		if cerr != nil {
			return i.Fail("expected integer but got \"" + i.Ops.StringOf(v) + "\"")
		}
		cur = n
	}
	val, err := i.SetVar(varName, i.Ops.NewInt(cur+delta))
	if err != nil {
		return i.Fail(err.Error())
	}
	i.SetResult(val)
	return interp.OK
}
