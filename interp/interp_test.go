package interp

import (
	"testing"

	"github.com/plume-lang/plume/ops"
)

func newTestInterp() *Interp {
	i := NewInterp(ops.New())
	i.RegisterBuiltin("set", func(i *Interp, name string, args []*ops.Obj) Code {
		if len(args) == 1 {
			v, err := i.GetVar(i.Ops.StringOf(args[0]))
			if err != nil {
				return i.Fail(err.Error())
			}
			i.SetResult(v)
			return OK
		}
		v, err := i.SetVar(i.Ops.StringOf(args[0]), args[1])
		if err != nil {
			return i.Fail(err.Error())
		}
		i.SetResult(v)
		return OK
	})
	i.RegisterBuiltin("proc", func(i *Interp, name string, args []*ops.Obj) Code {
		if len(args) != 3 {
			return i.Fail("wrong # args")
		}
		procName := i.Ops.StringOf(args[0])
		params, variadic, err := ParseParams(i, args[1])
		if err != nil {
			return i.Fail(err.Error())
		}
		body := i.Ops.StringOf(args[2])
		ns := i.ActiveFrame().NS
		qualifier, tail := SplitName(procName)
		nsPath := ResolveNamespacePath(ns.Path, qualifier)
		target := i.Namespaces.Ensure(nsPath)
		abs := joinNS(nsPath, tail)
		proc := NewProcedure(abs, params, variadic, body, target)
		target.Commands[tail] = &Command{Kind: CmdProc, Proc: proc}
		i.SetResultString("")
		return OK
	})
	return i
}

func TestSetGetVar(t *testing.T) {
	i := newTestInterp()
	if code := i.EvalTopLevel("set x 42"); code != OK {
		t.Fatalf("set failed: %v", code)
	}
	if code := i.EvalTopLevel("set x"); code != OK || i.ResultString() != "42" {
		t.Fatalf("got %v %q, want OK 42", code, i.ResultString())
	}
}

func TestProcArityMismatchIsError(t *testing.T) {
	i := newTestInterp()
	if code := i.EvalTopLevel("proc double {n} {return [set n]}"); code != OK {
		t.Fatalf("proc def failed: %v", code)
	}
	if code := i.EvalTopLevel("double 5 6"); code != ERROR {
		t.Fatalf("expected arity error, got %v", code)
	}
}

func TestCatchCapturesProcError(t *testing.T) {
	i := newTestInterp()
	if code := i.EvalTopLevel(`proc inner {} { return -code error "boom" }`); code != OK {
		t.Fatalf("proc def failed: %v", code)
	}
	code := i.EvalTopLevel(`catch {inner} msg`)
	if code != OK {
		t.Fatalf("catch should return OK, got %v (%s)", code, i.ResultString())
	}
	v, err := i.GetVar("msg")
	if err != nil || i.Ops.StringOf(v) != "boom" {
		t.Fatalf("msg = %v %v, want boom", v, err)
	}
}

func TestNamespaceEnsureIsIdempotent(t *testing.T) {
	i := newTestInterp()
	a := i.Namespaces.Ensure("::foo::bar")
	b := i.Namespaces.Ensure("::foo::bar")
	if a != b {
		t.Fatalf("Ensure should return the same namespace node on repeat calls")
	}
	if i.Namespaces.Get("::foo") == nil {
		t.Fatalf("Ensure should lazily create ancestor namespaces")
	}
}

func TestUpvarLinksToCallerFrame(t *testing.T) {
	i := newTestInterp()
	i.SetVar("g", i.Ops.NewString("orig"))
	frame := i.PushFrame("test", nil)
	i.Active = len(i.Frames) - 1
	i.LinkUpvar("local", 0, "g")
	v, err := i.GetVar("local")
	if err != nil || i.Ops.StringOf(v) != "orig" {
		t.Fatalf("upvar read failed: %v %v", v, err)
	}
	i.SetVar("local", i.Ops.NewString("changed"))
	i.Active = 0
	v2, _ := i.GetVar("g")
	if i.Ops.StringOf(v2) != "changed" {
		t.Fatalf("write through upvar link did not propagate, got %q", i.Ops.StringOf(v2))
	}
	_ = frame
}

func TestTailcallPopsCurrentFrameBeforeDispatch(t *testing.T) {
	i := newTestInterp()
	if code := i.EvalTopLevel(`proc target {} { return hit }`); code != OK {
		t.Fatalf("proc def failed: %v", code)
	}
	if code := i.EvalTopLevel(`proc caller {} { tailcall target }`); code != OK {
		t.Fatalf("proc def failed: %v", code)
	}
	depthBefore := i.FrameCount()
	code := i.Dispatch([]*ops.Obj{i.Ops.NewString("caller")})
	if code != OK {
		t.Fatalf("caller = %v (%s), want OK", code, i.ResultString())
	}
	if i.ResultString() != "hit" {
		t.Fatalf("result = %q, want hit", i.ResultString())
	}
	// caller's frame was popped before target's was pushed in its place,
	// so the net stack depth after the call matches depth before it.
	if i.FrameCount() != depthBefore {
		t.Fatalf("frame count after tailcall = %d, want %d", i.FrameCount(), depthBefore)
	}
}

func TestErrorStackShapeIsInnerThenCallSublists(t *testing.T) {
	i := newTestInterp()
	if code := i.EvalTopLevel(`proc inner {} { return -code error "boom" }`); code != OK {
		t.Fatalf("proc def failed: %v", code)
	}
	if code := i.EvalTopLevel(`proc outer {} { inner }`); code != OK {
		t.Fatalf("proc def failed: %v", code)
	}
	if code := i.EvalTopLevel(`catch {outer} msg opts`); code != OK {
		t.Fatalf("catch failed: %v", code)
	}
	opts, err := i.GetVar("opts")
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	stackObj, ok := i.optDictGet(opts, "-errorstack")
	if !ok {
		t.Fatalf("-errorstack missing from options")
	}
	stack, err := i.Ops.AsList(stackObj)
	if err != nil || len(stack) < 2 {
		t.Fatalf("-errorstack = %v, %v", stack, err)
	}
	if i.Ops.StringOf(stack[0]) != "INNER" {
		t.Fatalf("-errorstack[0] = %q, want INNER", i.Ops.StringOf(stack[0]))
	}
	innerFrame, err := i.Ops.AsList(stack[1])
	if err != nil || len(innerFrame) == 0 || i.Ops.StringOf(innerFrame[0]) != "inner" {
		t.Fatalf("-errorstack[1] = %v, %v, want a sublist starting with \"inner\"", innerFrame, err)
	}
}

func TestRecursionLimitTrips(t *testing.T) {
	i := newTestInterp()
	i.SetRecursionLimit(5)
	i.EvalTopLevel(`proc loopy {} { return [loopy] }`)
	code := i.Dispatch([]*ops.Obj{i.Ops.NewString("loopy")})
	if code != ERROR {
		t.Fatalf("want ERROR from recursion limit, got %v", code)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	i := newTestInterp()
	code := i.Dispatch([]*ops.Obj{i.Ops.NewString("nosuchcommand")})
	if code != ERROR {
		t.Fatalf("want ERROR for unknown command, got %v", code)
	}
}
