package interp

import (
	"strings"

	"github.com/plume-lang/plume/ops"
)

// Procedure & Lambda Invoker (C7, spec §4.6). Grounded on feather's
// Interp.CallProc argument-binding loop (required/optional/args) and on
// barn's task stack push/pop discipline for the frame lifecycle; the
// -level decrement on TCL_RETURN is spec §4.6/§6's own algorithm, not
// taken from either teacher since neither implements Tcl's return model.

// ProcParam is one formal parameter: a bare name, a {name default}
// pair, or the literal trailing "args" (variadic rest-of-arguments).
type ProcParam struct {
	Name       string
	HasDefault bool
	Default    *ops.Obj
}

// Procedure is a user-defined command body (spec §3 "Procedure").
type Procedure struct {
	Name     string // fully-qualified name as registered
	Params   []ProcParam
	Variadic bool // true when the last param is literally "args"
	Body     string
	NS       *Namespace // namespace the proc's name resolves into; bound to the call frame
}

func (p *Procedure) usage() string {
	parts := make([]string, 0, len(p.Params)+1)
	parts = append(parts, p.Name)
	for idx, param := range p.Params {
		switch {
		case p.Variadic && idx == len(p.Params)-1:
			parts = append(parts, "args")
		case param.HasDefault:
			parts = append(parts, "?"+param.Name+"?")
		default:
			parts = append(parts, param.Name)
		}
	}
	return strings.Join(parts, " ")
}

// NewProcedure builds a Procedure from an already-parsed parameter list,
// for the `proc` builtin.
func NewProcedure(name string, params []ProcParam, variadic bool, body string, ns *Namespace) *Procedure {
	return &Procedure{Name: name, Params: params, Variadic: variadic, Body: body, NS: ns}
}

// ParseParams parses a Tcl-style parameter-list object: each element is
// itself a 1-element (name) or 2-element (name default) list; a final
// element literally named "args" makes the procedure variadic.
func ParseParams(i *Interp, spec *ops.Obj) ([]ProcParam, bool, error) {
	items, err := i.Ops.AsList(spec)
	if err != nil {
		return nil, false, err
	}
	params := make([]ProcParam, 0, len(items))
	variadic := false
	for idx, item := range items {
		sub, serr := i.Ops.AsList(item)
		if serr != nil || len(sub) == 0 {
			return nil, false, errShape("argument with no name")
		}
		name := i.Ops.StringOf(sub[0])
		if name == "args" && idx == len(items)-1 {
			variadic = true
			params = append(params, ProcParam{Name: "args"})
			continue
		}
		if len(sub) >= 2 {
			params = append(params, ProcParam{Name: name, HasDefault: true, Default: sub[1]})
		} else {
			params = append(params, ProcParam{Name: name})
		}
	}
	return params, variadic, nil
}

// bindProcArgs binds callArgs to proc's formal parameters in frame's
// locals (spec §4.6 "Binds formal parameters").
func bindProcArgs(i *Interp, proc *Procedure, frame *CallFrame, callArgs []*ops.Obj) error {
	params := proc.Params
	n := len(params)

	if proc.Variadic {
		fixed := params[:n-1]
		required := 0
		for _, p := range fixed {
			if !p.HasDefault {
				required++
			}
		}
		if len(callArgs) < required {
			return errWrongArgs(proc.usage())
		}
		for idx, p := range fixed {
			if idx < len(callArgs) {
				frame.Locals[p.Name] = callArgs[idx]
			} else if p.HasDefault {
				frame.Locals[p.Name] = p.Default
			} else {
				return errWrongArgs(proc.usage())
			}
		}
		rest := []*ops.Obj{}
		if len(callArgs) > len(fixed) {
			rest = callArgs[len(fixed):]
		}
		frame.Locals["args"] = i.Ops.NewList(rest)
		return nil
	}

	if len(callArgs) > n {
		return errWrongArgs(proc.usage())
	}
	for idx, p := range params {
		if idx < len(callArgs) {
			frame.Locals[p.Name] = callArgs[idx]
		} else if p.HasDefault {
			frame.Locals[p.Name] = p.Default
		} else {
			return errWrongArgs(proc.usage())
		}
	}
	return nil
}

// unwrapReturn applies spec §4.6's TCL_RETURN rule: decrement -level;
// if the result is <= 0 the code becomes -code (the value returned from
// this frame), otherwise -level is updated and TCL_RETURN keeps
// propagating. Shared by the proc/apply invoker and `catch`/`try`.
func (i *Interp) unwrapReturn(code Code) Code {
	if code != RETURN {
		return code
	}
	opts := i.ReturnOptions()
	level := i.optLevel(opts) - 1
	if level <= 0 {
		final := i.optCode(opts)
		i.SetReturnOptions(i.withOptLevel(i.withOptCode(opts, OK), 0))
		return final
	}
	i.SetReturnOptions(i.withOptLevel(opts, level))
	return RETURN
}

// invokeProc pushes a frame, binds arguments, evaluates the body, and
// unwinds TCL_RETURN/TCL_ERROR per spec §4.6/§4.7.
func (i *Interp) invokeProc(proc *Procedure, absName, dispatchedName string, callArgs []*ops.Obj) Code {
	return i.invokeProcCommon(proc, dispatchedName, callArgs, nil)
}

// InvokeLambda implements `apply`: lambdaObj is a {params body ?ns?}
// list (spec §4.6, the Lambda Invoker half of C7).
func (i *Interp) InvokeLambda(lambdaObj *ops.Obj, callArgs []*ops.Obj) Code {
	parts, err := i.Ops.AsList(lambdaObj)
	if err != nil || len(parts) < 2 {
		return i.Fail("can't interpret expression as a lambda expression")
	}
	params, variadic, perr := ParseParams(i, parts[0])
	if perr != nil {
		return i.Fail(perr.Error())
	}
	ns := i.ActiveFrame().NS
	if len(parts) >= 3 {
		nsPath := ResolveNamespacePath(i.ActiveFrame().NS.Path, i.Ops.StringOf(parts[2]))
		ns = i.Namespaces.Ensure(nsPath)
	}
	proc := &Procedure{Name: "apply", Params: params, Variadic: variadic, Body: i.Ops.StringOf(parts[1]), NS: ns}
	return i.invokeProcCommon(proc, "apply", callArgs, lambdaObj)
}

func (i *Interp) invokeProcCommon(proc *Procedure, dispatchedName string, callArgs []*ops.Obj, lambdaObj *ops.Obj) Code {
	if !i.recursionOK() {
		if DiagEnabled() {
			diagLog(proc.Name, "recursion limit %d tripped invoking %s", i.recursionLimit, proc.Name)
		}
		return i.Fail("too many nested evaluations (infinite loop?)")
	}

	parentSteppers := i.ActiveFrame().StepTargets
	frame := i.PushFrame(dispatchedName, callArgs)
	frame.NS = proc.NS
	frame.Lambda = lambdaObj
	if i.hasStepTrace(proc.Name) {
		frame.StepTargets = append(append([]string{}, parentSteppers...), proc.Name)
	} else {
		frame.StepTargets = parentSteppers
	}

	prevActive := i.Active
	i.Active = len(i.Frames) - 1

	if err := bindProcArgs(i, proc, frame, callArgs); err != nil {
		i.Active = prevActive
		i.PopFrame()
		return i.Fail(err.Error())
	}

	code := i.evalScript(proc.Body)
	code = i.unwrapReturn(code)

	if code == ERROR {
		i.appendErrorFrame(dispatchedName, callArgs, frame.Line)
	}

	if frame.tailcalled {
		// tailcall already popped this frame and dispatched its
		// replacement in the caller's slot; nothing left to restore.
		return code
	}

	i.Active = prevActive
	i.PopFrame()
	return code
}
