package builtins

import (
	"strings"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// `dict` subcommands, built directly on the Host Ops vtable's native-dict
// primitives (SPEC_FULL.md §C) rather than reimplementing key/value
// storage at the builtins layer.

func registerDict(i *interp.Interp) {
	i.RegisterBuiltin("dict", builtinDict)
}

func builtinDict(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "dict subcommand ?arg ...?"`)
	}
	sub := i.Ops.StringOf(args[0])
	rest := args[1:]
	switch sub {
	case "create":
		return dictCreate(i, rest)
	case "get":
		return dictGet(i, rest)
	case "set":
		return dictSetCmd(i, rest)
	case "exists":
		return dictExists(i, rest)
	case "keys":
		return dictKeys(i, rest)
	case "values":
		return dictValues(i, rest)
	case "size":
		return dictSize(i, rest)
	case "for":
		return dictFor(i, rest)
	case "merge":
		return dictMerge(i, rest)
	case "remove":
		return dictRemove(i, rest)
	case "append":
		return dictAppend(i, rest)
	case "incr":
		return dictIncr(i, rest)
	default:
		return i.Fail("unknown or ambiguous subcommand \"" + sub + "\"")
	}
}

func dictCreate(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest)%2 != 0 {
		return i.Fail(`wrong # args: should be "dict create ?key value ...?"`)
	}
	var keys []string
	var vals []*ops.Obj
	for k := 0; k+1 < len(rest); k += 2 {
		keys = append(keys, i.Ops.StringOf(rest[k]))
		vals = append(vals, rest[k+1])
	}
	d := i.Ops.NewDict(nil, nil)
	for idx, key := range keys {
		d = i.Ops.DictSet(d, key, vals[idx])
	}
	i.SetResult(d)
	return interp.OK
}

func dictGet(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 1 {
		return i.Fail(`wrong # args: should be "dict get dictionary ?key ...?"`)
	}
	_, vals, err := i.Ops.AsDict(rest[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	if len(rest) == 1 {
		return dictAsList(i, rest[0])
	}
	cur := vals
	var val *ops.Obj
	for idx, keyArg := range rest[1:] {
		key := i.Ops.StringOf(keyArg)
		v, present := cur[key]
		if !present {
			return i.Fail("key \"" + key + "\" not known in dictionary")
		}
		val = v
		if idx < len(rest[1:])-1 {
			_, sub, serr := i.Ops.AsDict(v)
			if serr != nil {
				return i.Fail(serr.Error())
			}
			cur = sub
		}
	}
	i.SetResult(val)
	return interp.OK
}

func dictAsList(i *interp.Interp, d *ops.Obj) interp.Code {
	keys, vals, err := i.Ops.AsDict(d)
	if err != nil {
		return i.Fail(err.Error())
	}
	var out []*ops.Obj
	for _, k := range keys {
		out = append(out, i.Ops.NewString(k), vals[k])
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func dictSetCmd(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 3 {
		return i.Fail(`wrong # args: should be "dict set varName key ?key ...? value"`)
	}
	varName := i.Ops.StringOf(rest[0])
	keys := rest[1 : len(rest)-1]
	value := rest[len(rest)-1]

	cur, err := i.GetVar(varName)
	if err != nil {
		cur = i.Ops.NewDict(nil, nil)
	}
	updated, serr := dictSetPath(i, cur, keys, value)
	if serr != nil {
		return i.Fail(serr.Error())
	}
	out, verr := i.SetVar(varName, updated)
	if verr != nil {
		return i.Fail(verr.Error())
	}
	i.SetResult(out)
	return interp.OK
}

func dictSetPath(i *interp.Interp, d *ops.Obj, keys []*ops.Obj, value *ops.Obj) (*ops.Obj, error) {
	key := i.Ops.StringOf(keys[0])
	if len(keys) == 1 {
		return i.Ops.DictSet(d, key, value), nil
	}
	_, vals, err := i.Ops.AsDict(d)
	if err != nil {
		vals = map[string]*ops.Obj{}
	}
	child, present := vals[key]
	if !present {
		child = i.Ops.NewDict(nil, nil)
	}
	updatedChild, serr := dictSetPath(i, child, keys[1:], value)
	if serr != nil {
		return nil, serr
	}
	return i.Ops.DictSet(d, key, updatedChild), nil
}

func dictExists(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 2 {
		return i.Fail(`wrong # args: should be "dict exists dictionary key ?key ...?"`)
	}
	cur := rest[0]
	for _, keyArg := range rest[1:] {
		_, vals, err := i.Ops.AsDict(cur)
		if err != nil {
			i.SetResult(boolObj(i, false))
			return interp.OK
		}
		v, present := vals[i.Ops.StringOf(keyArg)]
		if !present {
			i.SetResult(boolObj(i, false))
			return interp.OK
		}
		cur = v
	}
	i.SetResult(boolObj(i, true))
	return interp.OK
}

func dictKeys(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 1 {
		return i.Fail(`wrong # args: should be "dict keys dictionary ?pattern?"`)
	}
	keys, _, err := i.Ops.AsDict(rest[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	pattern := ""
	if len(rest) >= 2 {
		pattern = i.Ops.StringOf(rest[1])
	}
	var out []*ops.Obj
	for _, k := range keys {
		if pattern == "" || i.Ops.StringMatch(pattern, k) {
			out = append(out, i.Ops.NewString(k))
		}
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func dictValues(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 1 {
		return i.Fail(`wrong # args: should be "dict values dictionary ?pattern?"`)
	}
	keys, vals, err := i.Ops.AsDict(rest[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	pattern := ""
	if len(rest) >= 2 {
		pattern = i.Ops.StringOf(rest[1])
	}
	var out []*ops.Obj
	for _, k := range keys {
		if pattern == "" || i.Ops.StringMatch(pattern, k) {
			out = append(out, vals[k])
		}
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func dictSize(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 1 {
		return i.Fail(`wrong # args: should be "dict size dictionary"`)
	}
	keys, _, err := i.Ops.AsDict(rest[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	i.SetResult(i.Ops.NewInt(int64(len(keys))))
	return interp.OK
}

func dictFor(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 3 {
		return i.Fail(`wrong # args: should be "dict for {keyVar valueVar} dictionary body"`)
	}
	varNames, err := i.Ops.AsList(rest[0])
	if err != nil || len(varNames) != 2 {
		return i.Fail("must have exactly two variable names")
	}
	keys, vals, derr := i.Ops.AsDict(rest[1])
	if derr != nil {
		return i.Fail(derr.Error())
	}
	keyVar := i.Ops.StringOf(varNames[0])
	valVar := i.Ops.StringOf(varNames[1])
	body := i.Ops.StringOf(rest[2])
	for _, k := range keys {
		i.SetVar(keyVar, i.Ops.NewString(k))
		i.SetVar(valVar, vals[k])
		code := i.EvalString(body, interp.EvalLocal)
		switch code {
		case interp.BREAK:
			i.SetResultString("")
			return interp.OK
		case interp.CONTINUE:
			continue
		case interp.OK:
			continue
		default:
			return code
		}
	}
	i.SetResultString("")
	return interp.OK
}

func dictMerge(i *interp.Interp, rest []*ops.Obj) interp.Code {
	d := i.Ops.NewDict(nil, nil)
	for _, a := range rest {
		keys, vals, err := i.Ops.AsDict(a)
		if err != nil {
			return i.Fail(err.Error())
		}
		for _, k := range keys {
			d = i.Ops.DictSet(d, k, vals[k])
		}
	}
	i.SetResult(d)
	return interp.OK
}

func dictRemove(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 1 {
		return i.Fail(`wrong # args: should be "dict remove dictionary ?key ...?"`)
	}
	d := rest[0]
	for _, keyArg := range rest[1:] {
		d = i.Ops.DictUnset(d, i.Ops.StringOf(keyArg))
	}
	i.SetResult(d)
	return interp.OK
}

func dictAppend(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 2 {
		return i.Fail(`wrong # args: should be "dict append varName key ?value ...?"`)
	}
	varName := i.Ops.StringOf(rest[0])
	key := i.Ops.StringOf(rest[1])
	cur, err := i.GetVar(varName)
	if err != nil {
		cur = i.Ops.NewDict(nil, nil)
	}
	_, vals, derr := i.Ops.AsDict(cur)
	existing := ""
	if derr == nil {
		if v, present := vals[key]; present {
			existing = i.Ops.StringOf(v)
		}
	}
	var extra strings.Builder
	extra.WriteString(existing)
	for _, a := range rest[2:] {
		extra.WriteString(i.Ops.StringOf(a))
	}
	updated := i.Ops.DictSet(cur, key, i.Ops.NewString(extra.String()))
	out, verr := i.SetVar(varName, updated)
	if verr != nil {
		return i.Fail(verr.Error())
	}
	i.SetResult(out)
	return interp.OK
}

func dictIncr(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 2 || len(rest) > 3 {
		return i.Fail(`wrong # args: should be "dict incr varName key ?increment?"`)
	}
	varName := i.Ops.StringOf(rest[0])
	key := i.Ops.StringOf(rest[1])
	delta := int64(1)
	if len(rest) == 3 {
		d, err := i.Ops.AsInt(rest[2])
		if err != nil {
			return i.Fail(err.Error())
		}
		delta = d
	}
	cur, err := i.GetVar(varName)
	if err != nil {
		cur = i.Ops.NewDict(nil, nil)
	}
	_, vals, derr := i.Ops.AsDict(cur)
	base := int64(0)
	if derr == nil {
		if v, present := vals[key]; present {
			n, nerr := i.Ops.AsInt(v)
			if nerr != nil {
				return i.Fail("expected integer but got \"" + i.Ops.StringOf(v) + "\"")
			}
			base = n
		}
	}
	updated := i.Ops.DictSet(cur, key, i.Ops.NewInt(base+delta))
	out, verr := i.SetVar(varName, updated)
	if verr != nil {
		return i.Fail(verr.Error())
	}
	i.SetResult(out)
	return interp.OK
}
