package interp

import (
	"strings"

	"github.com/plume-lang/plume/ops"
)

// Exception Controllers (C9, spec §4.8). No teacher in the pack
// implements Tcl's catch/try/return model; these are written directly
// from spec §4.6-§4.8's algorithms, in the same plain-stdlib-error style
// the rest of the package uses.

// RegisterControlBuiltins installs catch/try/throw/return/break/
// continue/error/tailcall into the root namespace.
func RegisterControlBuiltins(i *Interp) {
	i.RegisterBuiltin("catch", builtinCatch)
	i.RegisterBuiltin("try", builtinTry)
	i.RegisterBuiltin("throw", builtinThrow)
	i.RegisterBuiltin("return", builtinReturn)
	i.RegisterBuiltin("break", builtinBreak)
	i.RegisterBuiltin("continue", builtinContinue)
	i.RegisterBuiltin("error", builtinError)
	i.RegisterBuiltin("tailcall", builtinTailcall)
	i.RegisterBuiltin("apply", builtinApply)
}

func builtinApply(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) < 1 {
		return i.Fail(errWrongArgs("apply lambdaExpr ?arg ...?").Error())
	}
	return i.InvokeLambda(args[0], args[1:])
}

// builtinCatch implements spec §4.8 "catch script ?resultVar? ?optionsVar?".
func builtinCatch(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) < 1 || len(args) > 3 {
		return i.Fail(errWrongArgs("catch script ?resultVar? ?optionsVar?").Error())
	}
	script := i.Ops.StringOf(args[0])
	code := i.unwrapReturn(i.EvalString(script, EvalLocal))

	var opts *ops.Obj
	if code == ERROR {
		opts = i.finalizeErrorTrace()
	} else {
		opts = i.ReturnOptions()
	}
	opts = i.withOptLevel(i.withOptCode(opts, code), 0)
	i.SetReturnOptions(opts)

	result := i.GetResult()
	if len(args) >= 2 {
		if _, err := i.SetVar(i.Ops.StringOf(args[1]), result); err != nil {
			return i.Fail(err.Error())
		}
	}
	if len(args) >= 3 {
		if _, err := i.SetVar(i.Ops.StringOf(args[2]), opts); err != nil {
			return i.Fail(err.Error())
		}
	}
	i.SetResult(i.Ops.NewInt(int64(code)))
	return OK
}

type tryHandler struct {
	isTrap    bool
	codeMatch Code
	pattern   []string
	varList   []string
	script    string
}

func objListToStrings(i *Interp, o *ops.Obj) []string {
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

// builtinTry implements spec §4.8 "try/on/trap/finally".
func builtinTry(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) < 1 {
		return i.Fail(errWrongArgs("try body ?handler ...? ?finally script?").Error())
	}
	body := i.Ops.StringOf(args[0])
	rest := args[1:]

	var handlers []tryHandler
	finallyScript := ""
	haveFinally := false

	idx := 0
	for idx < len(rest) {
		kw := i.Ops.StringOf(rest[idx])
		switch kw {
		case "on":
			if idx+3 >= len(rest) {
				return i.Fail(errWrongArgs("try ... on code varList script").Error())
			}
			c, ok := CodeFromName(i.Ops.StringOf(rest[idx+1]))
			if !ok {
				return i.Fail(errShape("bad completion code %q", i.Ops.StringOf(rest[idx+1])).Error())
			}
			handlers = append(handlers, tryHandler{
				codeMatch: c,
				varList:   objListToStrings(i, rest[idx+2]),
				script:    i.Ops.StringOf(rest[idx+3]),
			})
			idx += 4
		case "trap":
			if idx+3 >= len(rest) {
				return i.Fail(errWrongArgs("try ... trap pattern varList script").Error())
			}
			handlers = append(handlers, tryHandler{
				isTrap:  true,
				pattern: objListToStrings(i, rest[idx+1]),
				varList: objListToStrings(i, rest[idx+2]),
				script:  i.Ops.StringOf(rest[idx+3]),
			})
			idx += 4
		case "finally":
			if idx+1 >= len(rest) {
				return i.Fail(errWrongArgs("try ... finally script").Error())
			}
			finallyScript = i.Ops.StringOf(rest[idx+1])
			haveFinally = true
			idx += 2
		default:
			return i.Fail(errShape("bad option %q: must be on, trap, or finally", kw).Error())
		}
	}

	code := i.unwrapReturn(i.EvalString(body, EvalLocal))
	result := i.GetResult()
	var opts *ops.Obj
	if code == ERROR {
		opts = i.finalizeErrorTrace()
	} else {
		opts = i.ReturnOptions()
	}
	opts = i.withOptLevel(i.withOptCode(opts, code), 0)

	outcome := code
	for _, h := range handlers {
		match := false
		if h.isTrap {
			if code == ERROR {
				ec, _ := i.optString(opts, "-errorcode")
				match = matchErrorCodePrefix(strings.Fields(ec), h.pattern)
			}
		} else {
			match = h.codeMatch == code
		}
		if !match {
			continue
		}
		if len(h.varList) >= 1 {
			i.SetVar(h.varList[0], result)
		}
		if len(h.varList) >= 2 {
			i.SetVar(h.varList[1], opts)
		}
		outcome = i.unwrapReturn(i.EvalString(h.script, EvalLocal))
		result = i.GetResult()
		if outcome == ERROR {
			opts = i.finalizeErrorTrace()
		} else {
			opts = i.ReturnOptions()
		}
		opts = i.withOptLevel(i.withOptCode(opts, outcome), 0)
		break
	}

	if haveFinally {
		fcode := i.unwrapReturn(i.EvalString(finallyScript, EvalLocal))
		if fcode == ERROR {
			return fcode
		}
	}

	i.SetResult(result)
	i.SetReturnOptions(opts)
	return outcome
}

func matchErrorCodePrefix(actual, pattern []string) bool {
	if len(pattern) > len(actual) {
		return false
	}
	for idx, p := range pattern {
		if actual[idx] != p {
			return false
		}
	}
	return true
}

// builtinThrow implements spec §4.8 "throw errorCode message".
func builtinThrow(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) != 2 {
		return i.Fail(errWrongArgs("throw type message").Error())
	}
	i.SetResultString(i.Ops.StringOf(args[1]))
	i.noteErrorOrigin(name, args, i.ActiveFrame().Line)
	i.errs.code = i.Ops.StringOf(args[0])
	return ERROR
}

// builtinReturn implements spec §4.8 "return ?-options dict? ?-code c?
// ?-level n? ... ?value?". Defaults: code=OK, level=1, value="".
func builtinReturn(i *Interp, name string, args []*ops.Obj) Code {
	opts := i.Ops.NewDict(
		[]string{"-code", "-level"},
		[]*ops.Obj{i.Ops.NewInt(int64(OK)), i.Ops.NewInt(1)},
	)
	value := i.Ops.NewString("")

	idx, n := 0, len(args)
	for idx < n {
		s := i.Ops.StringOf(args[idx])
		if len(s) == 0 || s[0] != '-' || idx+1 >= n {
			break
		}
		val := args[idx+1]
		switch s {
		case "-options":
			keys, vals, err := i.Ops.AsDict(val)
			if err == nil {
				for _, k := range keys {
					opts = i.optDictSet(opts, k, vals[k])
				}
			}
		case "-code":
			c, ok := CodeFromName(i.Ops.StringOf(val))
			if !ok {
				return i.Fail(errShape("bad completion code %q", i.Ops.StringOf(val)).Error())
			}
			opts = i.withOptCode(opts, c)
		case "-level":
			lv, err := i.Ops.AsInt(val)
			if err != nil {
				return i.Fail(errShape("bad level %q", i.Ops.StringOf(val)).Error())
			}
			opts = i.withOptLevel(opts, int(lv))
		default:
			opts = i.optDictSet(opts, s, val)
		}
		idx += 2
	}
	if idx < n {
		value = args[idx]
		idx++
	}
	if idx != n {
		return i.Fail(errWrongArgs("return ?-option value ...? ?value?").Error())
	}

	i.SetResult(value)
	level := i.optLevel(opts)
	if level > 0 {
		i.SetReturnOptions(opts)
		return RETURN
	}

	code := i.optCode(opts)
	if code == ERROR {
		i.noteErrorOrigin(name, args, i.ActiveFrame().Line)
		if ec, has := i.optString(opts, "-errorcode"); has {
			i.errs.code = ec
		}
		if ei, has := i.optString(opts, "-errorinfo"); has {
			i.errs.info = []string{ei}
		}
	}
	i.SetReturnOptions(opts)
	return code
}

func builtinBreak(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) != 0 {
		return i.Fail(errWrongArgs("break").Error())
	}
	return BREAK
}

func builtinContinue(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) != 0 {
		return i.Fail(errWrongArgs("continue").Error())
	}
	return CONTINUE
}

// builtinError implements spec §4.8 "error message ?errorInfo? ?errorCode?".
func builtinError(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) < 1 || len(args) > 3 {
		return i.Fail(errWrongArgs("error message ?errorInfo? ?errorCode?").Error())
	}
	i.SetResultString(i.Ops.StringOf(args[0]))
	i.noteErrorOrigin(name, args[:1], i.ActiveFrame().Line)
	if len(args) >= 2 {
		if ei := i.Ops.StringOf(args[1]); ei != "" {
			i.errs.info = []string{ei}
		}
	}
	if len(args) >= 3 {
		i.errs.code = i.Ops.StringOf(args[2])
	}
	return ERROR
}

// builtinTailcall replaces the current procedure invocation with the
// given command, per spec §4.8's algorithm: capture the current
// namespace, pop the current frame, dispatch the command under the
// caller's (now-active) frame with its namespace temporarily switched
// to the captured one, then restore it. This keeps frame-stack depth
// from growing per tailcall -- the popped frame's slot is reused by
// whatever invokeProcCommon push the dispatched command triggers --
// rather than merely skipping the rest of the current body.
func builtinTailcall(i *Interp, name string, args []*ops.Obj) Code {
	if len(args) == 0 {
		return i.Fail(errWrongArgs("tailcall command ?arg ...?").Error())
	}
	frame := i.ActiveFrame()
	capturedNS := frame.NS
	frame.tailcalled = true
	i.PopFrame()

	caller := i.ActiveFrame()
	savedNS := caller.NS
	caller.NS = capturedNS
	code := i.Dispatch(args)
	caller.NS = savedNS

	if code != OK {
		return code
	}
	opts := i.withOptLevel(i.withOptCode(i.ReturnOptions(), OK), 1)
	i.SetReturnOptions(opts)
	return RETURN
}
