package builtins

import (
	"sort"
	"strconv"
	"strings"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// List and string commands (spec §4 doesn't name these; SPEC_FULL.md §C
// rounds out the ambient vocabulary a real Tcl script needs, built on the
// Host Ops vtable's list/string primitives rather than a parallel
// native-Go representation).

func registerListString(i *interp.Interp) {
	i.RegisterBuiltin("list", builtinList)
	i.RegisterBuiltin("lindex", builtinLindex)
	i.RegisterBuiltin("lreplace", builtinLreplace)
	i.RegisterBuiltin("lset", builtinLset)
	i.RegisterBuiltin("lrepeat", builtinLrepeat)
	i.RegisterBuiltin("lreverse", builtinLreverse)
	i.RegisterBuiltin("linsert", builtinLinsert)
	i.RegisterBuiltin("split", builtinSplit)
	i.RegisterBuiltin("format", builtinFormat)
	i.RegisterBuiltin("subst", builtinSubst)
	i.RegisterBuiltin("lsearch", builtinLsearch)
	i.RegisterBuiltin("lsort", builtinLsort)
	i.RegisterBuiltin("llength", builtinLlength)
	i.RegisterBuiltin("concat", builtinConcat)
	i.RegisterBuiltin("join", builtinJoin)
	i.RegisterBuiltin("string", builtinString)
}

func normIndex(spec string, n int) (int, bool) {
	if spec == "end" {
		return n - 1, true
	}
	if strings.HasPrefix(spec, "end-") {
		d, err := strconv.Atoi(spec[4:])
		if err != nil {
			return 0, false
		}
		return n - 1 - d, true
	}
	v, err := strconv.Atoi(spec)
	if err != nil {
		return 0, false
	}
	return v, true
}

func builtinList(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	i.SetResult(i.Ops.NewList(args))
	return interp.OK
}

func builtinLindex(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 {
		return i.Fail(`wrong # args: should be "lindex list ?index ...?"`)
	}
	list, err := i.Ops.AsList(args[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	cur := list
	var result *ops.Obj = i.Ops.NewList(list)
	for _, idxArg := range args[1:] {
		idx, ok := normIndex(i.Ops.StringOf(idxArg), len(cur))
		if !ok || idx < 0 || idx >= len(cur) {
			i.SetResultString("")
			return interp.OK
		}
		result = cur[idx]
		if sub, serr := i.Ops.AsList(result); serr == nil {
			cur = sub
		} else {
			cur = nil
		}
	}
	i.SetResult(result)
	return interp.OK
}

func builtinLreplace(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 3 {
		return i.Fail(`wrong # args: should be "lreplace list first last ?element ...?"`)
	}
	list, err := i.Ops.AsList(args[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	first, ok1 := normIndex(i.Ops.StringOf(args[1]), len(list))
	last, ok2 := normIndex(i.Ops.StringOf(args[2]), len(list))
	if !ok1 || !ok2 {
		return i.Fail("bad index")
	}
	if first < 0 {
		first = 0
	}
	if last >= len(list) {
		last = len(list) - 1
	}
	count := 0
	if last >= first {
		count = last - first + 1
	}
	i.SetResult(i.Ops.ListSplice(args[0], first, count, args[3:]))
	return interp.OK
}

func builtinLset(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 2 {
		return i.Fail(`wrong # args: should be "lset varName index value"`)
	}
	varName := i.Ops.StringOf(args[0])
	cur, err := i.GetVar(varName)
	if err != nil {
		return i.Fail(err.Error())
	}
	idxSpec := i.Ops.StringOf(args[1])
	value := args[len(args)-1]
	list, lerr := i.Ops.AsList(cur)
	if lerr != nil {
		return i.Fail(lerr.Error())
	}
	idx, ok := normIndex(idxSpec, len(list))
	if !ok || idx < 0 || idx >= len(list) {
		return i.Fail("list index out of range")
	}
	updated, serr := i.Ops.ListSetAt(cur, idx, value)
	if serr != nil {
		return i.Fail(serr.Error())
	}
	out, _ := i.SetVar(varName, updated)
	i.SetResult(out)
	return interp.OK
}

func builtinLrepeat(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 {
		return i.Fail(`wrong # args: should be "lrepeat count ?element ...?"`)
	}
	n, err := i.Ops.AsInt(args[0])
	if err != nil || n < 0 {
		return i.Fail("bad count \"" + i.Ops.StringOf(args[0]) + "\"")
	}
	elems := args[1:]
	var out []*ops.Obj
	for k := int64(0); k < n; k++ {
		out = append(out, elems...)
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func builtinLreverse(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) != 1 {
		return i.Fail(`wrong # args: should be "lreverse list"`)
	}
	list, err := i.Ops.AsList(args[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	out := make([]*ops.Obj, len(list))
	for idx, v := range list {
		out[len(list)-1-idx] = v
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func builtinLinsert(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 2 {
		return i.Fail(`wrong # args: should be "linsert list index ?element ...?"`)
	}
	list, err := i.Ops.AsList(args[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	idx, ok := normIndex(i.Ops.StringOf(args[1]), len(list))
	if !ok {
		return i.Fail("bad index")
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(list) {
		idx = len(list)
	}
	i.SetResult(i.Ops.ListSplice(args[0], idx, 0, args[2:]))
	return interp.OK
}

func builtinSplit(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 || len(args) > 2 {
		return i.Fail(`wrong # args: should be "split string ?splitChars?"`)
	}
	s := i.Ops.StringOf(args[0])
	seps := " \t\n"
	if len(args) == 2 {
		seps = i.Ops.StringOf(args[1])
	}
	var parts []string
	if seps == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) })
	}
	out := make([]*ops.Obj, len(parts))
	for idx, p := range parts {
		out[idx] = i.Ops.NewString(p)
	}
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func builtinJoin(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 || len(args) > 2 {
		return i.Fail(`wrong # args: should be "join list ?joinString?"`)
	}
	list, err := i.Ops.AsList(args[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	sep := " "
	if len(args) == 2 {
		sep = i.Ops.StringOf(args[1])
	}
	parts := make([]string, len(list))
	for idx, v := range list {
		parts[idx] = i.Ops.StringOf(v)
	}
	i.SetResultString(strings.Join(parts, sep))
	return interp.OK
}

func builtinConcat(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	var parts []string
	for _, a := range args {
		s := strings.TrimSpace(i.Ops.StringOf(a))
		if s != "" {
			parts = append(parts, s)
		}
	}
	i.SetResultString(strings.Join(parts, " "))
	return interp.OK
}

func builtinLlength(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) != 1 {
		return i.Fail(`wrong # args: should be "llength list"`)
	}
	list, err := i.Ops.AsList(args[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	i.SetResult(i.Ops.NewInt(int64(len(list))))
	return interp.OK
}

func builtinLsearch(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	glob := false
	exact := false
	for len(args) > 2 {
		switch i.Ops.StringOf(args[0]) {
		case "-glob":
			glob = true
			args = args[1:]
		case "-exact":
			exact = true
			args = args[1:]
		default:
			goto done
		}
	}
done:
	if len(args) != 2 {
		return i.Fail(`wrong # args: should be "lsearch ?options? list pattern"`)
	}
	list, err := i.Ops.AsList(args[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	pattern := i.Ops.StringOf(args[1])
	for idx, v := range list {
		s := i.Ops.StringOf(v)
		match := false
		switch {
		case glob:
			match = i.Ops.StringMatch(pattern, s)
		case exact:
			match = s == pattern
		default:
			match = s == pattern
		}
		if match {
			i.SetResult(i.Ops.NewInt(int64(idx)))
			return interp.OK
		}
	}
	i.SetResult(i.Ops.NewInt(-1))
	return interp.OK
}

func builtinLsort(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	decreasing := false
	integer := false
	rest := args
	for len(rest) > 0 {
		switch i.Ops.StringOf(rest[0]) {
		case "-decreasing":
			decreasing = true
			rest = rest[1:]
		case "-increasing":
			rest = rest[1:]
		case "-integer":
			integer = true
			rest = rest[1:]
		case "-ascii":
			rest = rest[1:]
		default:
			goto done
		}
	}
done:
	if len(rest) != 1 {
		return i.Fail(`wrong # args: should be "lsort ?options? list"`)
	}
	list, err := i.Ops.AsList(rest[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	out := make([]*ops.Obj, len(list))
	copy(out, list)
	sort.SliceStable(out, func(a, b int) bool {
		var less bool
		if integer {
			less = i.Ops.Compare(out[a], out[b]) < 0
		} else {
			less = i.Ops.StringOf(out[a]) < i.Ops.StringOf(out[b])
		}
		if decreasing {
			return !less && i.Ops.StringOf(out[a]) != i.Ops.StringOf(out[b])
		}
		return less
	})
	i.SetResult(i.Ops.NewList(out))
	return interp.OK
}

func builtinFormat(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) < 1 {
		return i.Fail(`wrong # args: should be "format formatString ?arg ...?"`)
	}
	fmtStr := i.Ops.StringOf(args[0])
	vals := args[1:]
	var b strings.Builder
	vi := 0
	next := func() *ops.Obj {
		if vi < len(vals) {
			v := vals[vi]
			vi++
			return v
		}
		return i.Ops.NewString("")
	}
	runes := []rune(fmtStr)
	for k := 0; k < len(runes); k++ {
		if runes[k] != '%' {
			b.WriteRune(runes[k])
			continue
		}
		k++
		if k >= len(runes) {
			break
		}
		switch runes[k] {
		case '%':
			b.WriteByte('%')
		case 'd':
			n, _ := i.Ops.AsInt(next())
			b.WriteString(strconv.FormatInt(n, 10))
		case 's':
			b.WriteString(i.Ops.StringOf(next()))
		case 'f':
			f, _ := i.Ops.AsDouble(next())
			b.WriteString(strconv.FormatFloat(f, 'f', 6, 64))
		case 'x':
			n, _ := i.Ops.AsInt(next())
			b.WriteString(strconv.FormatInt(n, 16))
		default:
			b.WriteRune(runes[k])
		}
	}
	i.SetResultString(b.String())
	return interp.OK
}

func builtinSubst(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) != 1 {
		return i.Fail(`wrong # args: should be "subst string"`)
	}
	obj, code := i.SubstString(i.Ops.StringOf(args[0]))
	if code != interp.OK {
		return code
	}
	i.SetResult(obj)
	return interp.OK
}

func builtinString(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "string subcommand ?arg ...?"`)
	}
	sub := i.Ops.StringOf(args[0])
	rest := args[1:]
	switch sub {
	case "length":
		if len(rest) != 1 {
			return i.Fail(`wrong # args: should be "string length string"`)
		}
		i.SetResult(i.Ops.NewInt(int64(i.Ops.RuneLen(rest[0]))))
		return interp.OK
	case "index":
		if len(rest) != 2 {
			return i.Fail(`wrong # args: should be "string index string charIndex"`)
		}
		idx, ok := normIndex(i.Ops.StringOf(rest[1]), i.Ops.RuneLen(rest[0]))
		if !ok {
			return i.Fail("bad index")
		}
		r, present := i.Ops.RuneAt(rest[0], idx)
		if !present {
			i.SetResultString("")
		} else {
			i.SetResultString(string(r))
		}
		return interp.OK
	case "range":
		if len(rest) != 3 {
			return i.Fail(`wrong # args: should be "string range string first last"`)
		}
		n := i.Ops.RuneLen(rest[0])
		first, _ := normIndex(i.Ops.StringOf(rest[1]), n)
		last, _ := normIndex(i.Ops.StringOf(rest[2]), n)
		i.SetResultString(i.Ops.RuneRange(rest[0], first, last+1))
		return interp.OK
	case "toupper":
		i.SetResultString(strings.ToUpper(i.Ops.StringOf(rest[0])))
		return interp.OK
	case "tolower":
		i.SetResultString(strings.ToLower(i.Ops.StringOf(rest[0])))
		return interp.OK
	case "trim":
		i.SetResultString(strimOpt(i, rest, strings.TrimSpace, strings.Trim))
		return interp.OK
	case "trimleft":
		i.SetResultString(strimOpt(i, rest, func(s string) string { return strings.TrimLeft(s, " \t\n\r") }, strings.TrimLeft))
		return interp.OK
	case "trimright":
		i.SetResultString(strimOpt(i, rest, func(s string) string { return strings.TrimRight(s, " \t\n\r") }, strings.TrimRight))
		return interp.OK
	case "repeat":
		if len(rest) != 2 {
			return i.Fail(`wrong # args: should be "string repeat string count"`)
		}
		n, err := i.Ops.AsInt(rest[1])
		if err != nil || n < 0 {
			return i.Fail("bad count")
		}
		i.SetResultString(strings.Repeat(i.Ops.StringOf(rest[0]), int(n)))
		return interp.OK
	case "compare":
		if len(rest) != 2 {
			return i.Fail(`wrong # args: should be "string compare string1 string2"`)
		}
		i.SetResult(i.Ops.NewInt(int64(sign(strings.Compare(i.Ops.StringOf(rest[0]), i.Ops.StringOf(rest[1]))))))
		return interp.OK
	case "equal":
		if len(rest) != 2 {
			return i.Fail(`wrong # args: should be "string equal string1 string2"`)
		}
		i.SetResult(boolObj(i, i.Ops.StringOf(rest[0]) == i.Ops.StringOf(rest[1])))
		return interp.OK
	case "first":
		if len(rest) != 2 {
			return i.Fail(`wrong # args: should be "string first needle haystack"`)
		}
		idx := strings.Index(i.Ops.StringOf(rest[1]), i.Ops.StringOf(rest[0]))
		i.SetResult(i.Ops.NewInt(int64(idx)))
		return interp.OK
	case "last":
		if len(rest) != 2 {
			return i.Fail(`wrong # args: should be "string last needle haystack"`)
		}
		idx := strings.LastIndex(i.Ops.StringOf(rest[1]), i.Ops.StringOf(rest[0]))
		i.SetResult(i.Ops.NewInt(int64(idx)))
		return interp.OK
	case "replace":
		return stringReplace(i, rest)
	case "map":
		return stringMap(i, rest)
	case "match":
		if len(rest) != 2 {
			return i.Fail(`wrong # args: should be "string match pattern string"`)
		}
		i.SetResult(boolObj(i, i.Ops.StringMatch(i.Ops.StringOf(rest[0]), i.Ops.StringOf(rest[1]))))
		return interp.OK
	default:
		return i.Fail("unknown or ambiguous subcommand \"" + sub + "\"")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func strimOpt(i *interp.Interp, rest []*ops.Obj, def func(string) string, withChars func(string, string) string) string {
	if len(rest) == 0 {
		return ""
	}
	s := i.Ops.StringOf(rest[0])
	if len(rest) >= 2 {
		return withChars(s, i.Ops.StringOf(rest[1]))
	}
	return def(s)
}

func stringReplace(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) < 3 || len(rest) > 4 {
		return i.Fail(`wrong # args: should be "string replace string first last ?newstring?"`)
	}
	n := i.Ops.RuneLen(rest[0])
	first, _ := normIndex(i.Ops.StringOf(rest[1]), n)
	last, _ := normIndex(i.Ops.StringOf(rest[2]), n)
	if first < 0 {
		first = 0
	}
	if last >= n {
		last = n - 1
	}
	if first > last {
		i.SetResult(rest[0])
		return interp.OK
	}
	repl := ""
	if len(rest) == 4 {
		repl = i.Ops.StringOf(rest[3])
	}
	before := i.Ops.RuneRange(rest[0], 0, first)
	after := i.Ops.RuneRange(rest[0], last+1, n)
	i.SetResultString(before + repl + after)
	return interp.OK
}

func stringMap(i *interp.Interp, rest []*ops.Obj) interp.Code {
	if len(rest) != 2 {
		return i.Fail(`wrong # args: should be "string map mapping string"`)
	}
	pairs, err := i.Ops.AsList(rest[0])
	if err != nil {
		return i.Fail(err.Error())
	}
	s := i.Ops.StringOf(rest[1])
	var oldnew []string
	for _, p := range pairs {
		oldnew = append(oldnew, i.Ops.StringOf(p))
	}
	rep := strings.NewReplacer(oldnew...)
	i.SetResultString(rep.Replace(s))
	return interp.OK
}
