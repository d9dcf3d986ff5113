package interp

import "github.com/plume-lang/plume/ops"

// Return-options dict helpers (spec §4.6/§4.7). The dict is always a
// flat alternating key/value native dict so it round-trips through
// `dict merge`/`array set`-style host code with no special casing.

func defaultReturnOptions(hostOps ops.HostOps) *ops.Obj {
	return hostOps.NewDict(
		[]string{"-code", "-level"},
		[]*ops.Obj{hostOps.NewInt(int64(OK)), hostOps.NewInt(0)},
	)
}

// optDictGet reads key out of a return-options dict, ignoring malformed
// dicts (returns ok=false rather than erroring -- callers always fall
// back to a sane default).
func (i *Interp) optDictGet(dict *ops.Obj, key string) (*ops.Obj, bool) {
	_, vals, err := i.Ops.AsDict(dict)
	if err != nil {
		return nil, false
	}
	v, ok := vals[key]
	return v, ok
}

func (i *Interp) optDictSet(dict *ops.Obj, key string, val *ops.Obj) *ops.Obj {
	return i.Ops.DictSet(dict, key, val)
}

// optCode reads -code from a return-options dict, defaulting to OK.
func (i *Interp) optCode(dict *ops.Obj) Code {
	v, ok := i.optDictGet(dict, "-code")
	if !ok {
		return OK
	}
	if n, err := i.Ops.AsInt(v); err == nil {
		return Code(n)
	}
	if c, ok := CodeFromName(i.Ops.StringOf(v)); ok {
		return c
	}
	return OK
}

// optLevel reads -level from a return-options dict, defaulting to 0.
func (i *Interp) optLevel(dict *ops.Obj) int {
	v, ok := i.optDictGet(dict, "-level")
	if !ok {
		return 0
	}
	n, err := i.Ops.AsInt(v)
	if err != nil {
		return 0
	}
	return int(n)
}

func (i *Interp) optString(dict *ops.Obj, key string) (string, bool) {
	v, ok := i.optDictGet(dict, key)
	if !ok {
		return "", false
	}
	return i.Ops.StringOf(v), true
}

// withOptCode/withOptLevel return a copy of dict with -code/-level set,
// used by `return -code ... -level ...` and by RETURN unwinding.
func (i *Interp) withOptCode(dict *ops.Obj, code Code) *ops.Obj {
	return i.optDictSet(dict, "-code", i.Ops.NewInt(int64(code)))
}

func (i *Interp) withOptLevel(dict *ops.Obj, level int) *ops.Obj {
	return i.optDictSet(dict, "-level", i.Ops.NewInt(int64(level)))
}
