package builtins

import (
	"testing"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

func newTestInterp() *interp.Interp {
	i := interp.NewInterp(ops.New())
	RegisterAll(i)
	return i
}

func evalOK(t *testing.T, i *interp.Interp, script string) string {
	t.Helper()
	if code := i.EvalTopLevel(script); code != interp.OK {
		t.Fatalf("script %q: want OK, got %v (%s)", script, code, i.ResultString())
	}
	return i.ResultString()
}

func TestExprArithmeticAndPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 / 3", "3"},
		{"1 == 1 && 2 == 2", "1"},
		{"1 == 1 && 2 == 3", "0"},
		{"!0", "1"},
		{"2 < 3", "1"},
		{"\"abc\" eq \"abc\"", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			i := newTestInterp()
			got := evalOK(t, i, "expr {"+tt.expr+"}")
			if got != tt.want {
				t.Errorf("expr {%s} = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestIfElseIf(t *testing.T) {
	i := newTestInterp()
	got := evalOK(t, i, `set x 2
if {$x == 1} {
  set r one
} elseif {$x == 2} {
  set r two
} else {
  set r other
}
set r`)
	if got != "two" {
		t.Fatalf("got %q, want two", got)
	}
}

func TestWhileBreakContinue(t *testing.T) {
	i := newTestInterp()
	got := evalOK(t, i, `set total 0
set n 0
while {$n < 10} {
  incr n
  if {$n == 5} { continue }
  if {$n > 8} { break }
  set total [expr {$total + $n}]
}
set total`)
	// 1+2+3+4+6+7+8 = 31
	if got != "31" {
		t.Fatalf("got %q, want 31", got)
	}
}

func TestForeachMultiList(t *testing.T) {
	i := newTestInterp()
	got := evalOK(t, i, `set out {}
foreach {a b} {1 2 3 4} {
  lappend out "$a-$b"
}
set out`)
	if got != "1-2 3-4" {
		t.Fatalf("got %q, want \"1-2 3-4\"", got)
	}
}

func TestLmapCollectsResults(t *testing.T) {
	i := newTestInterp()
	got := evalOK(t, i, `lmap x {1 2 3} { expr {$x * $x} }`)
	if got != "1 4 9" {
		t.Fatalf("got %q, want \"1 4 9\"", got)
	}
}

func TestSwitchGlob(t *testing.T) {
	i := newTestInterp()
	got := evalOK(t, i, `switch -glob foobar {
  foo* { set r matched-foo }
  default { set r nomatch }
}
set r`)
	if got != "matched-foo" {
		t.Fatalf("got %q, want matched-foo", got)
	}
}

func TestProcWithDefaultAndVariadicArgs(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `proc greet {name {greeting hello} args} {
  return "$greeting, $name! [llength $args] extra"
}`)
	got := evalOK(t, i, `greet World`)
	if got != "hello, World! 0 extra" {
		t.Fatalf("got %q", got)
	}
	got2 := evalOK(t, i, `greet World hi a b c`)
	if got2 != "hi, World! 3 extra" {
		t.Fatalf("got %q", got2)
	}
}

func TestUpvarMutatesCallerVariable(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `proc incrit {name} {
  upvar 1 $name v
  set v [expr {$v + 1}]
}`)
	evalOK(t, i, `set counter 10`)
	evalOK(t, i, `incrit counter`)
	got := evalOK(t, i, `set counter`)
	if got != "11" {
		t.Fatalf("got %q, want 11", got)
	}
}

func TestGlobalLinksToRootNamespace(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `set topvar 1`)
	evalOK(t, i, `proc bumpit {} { global topvar; incr topvar }`)
	evalOK(t, i, `bumpit`)
	got := evalOK(t, i, `set topvar`)
	if got != "2" {
		t.Fatalf("got %q, want 2", got)
	}
}

func TestCatchStoresCodeAndMessage(t *testing.T) {
	i := newTestInterp()
	got := evalOK(t, i, `set code [catch {error "oops"} msg]
list $code $msg`)
	if got != "1 oops" {
		t.Fatalf("got %q, want \"1 oops\"", got)
	}
}

func TestTryFinallyAlwaysRuns(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `set ran 0`)
	evalOK(t, i, `try {
  error "boom"
} on error {msg} {
  set caught $msg
} finally {
  set ran 1
}`)
	if got := evalOK(t, i, `set ran`); got != "1" {
		t.Fatalf("finally did not run, ran=%q", got)
	}
	if got := evalOK(t, i, `set caught`); got != "boom" {
		t.Fatalf("on error did not catch, got %q", got)
	}
}

func TestListCommands(t *testing.T) {
	i := newTestInterp()
	if got := evalOK(t, i, `lindex {a b c} 1`); got != "b" {
		t.Fatalf("lindex = %q", got)
	}
	if got := evalOK(t, i, `llength {a b c d}`); got != "4" {
		t.Fatalf("llength = %q", got)
	}
	if got := evalOK(t, i, `lsort {banana apple cherry}`); got != "apple banana cherry" {
		t.Fatalf("lsort = %q", got)
	}
	if got := evalOK(t, i, `lreverse {1 2 3}`); got != "3 2 1" {
		t.Fatalf("lreverse = %q", got)
	}
	if got := evalOK(t, i, `linsert {a c} 1 b`); got != "a b c" {
		t.Fatalf("linsert = %q", got)
	}
	if got := evalOK(t, i, `join {a b c} -`); got != "a-b-c" {
		t.Fatalf("join = %q", got)
	}
}

func TestStringCommands(t *testing.T) {
	i := newTestInterp()
	if got := evalOK(t, i, `string length hello`); got != "5" {
		t.Fatalf("length = %q", got)
	}
	if got := evalOK(t, i, `string toupper hello`); got != "HELLO" {
		t.Fatalf("toupper = %q", got)
	}
	if got := evalOK(t, i, `string range hello 1 3`); got != "ell" {
		t.Fatalf("range = %q", got)
	}
	if got := evalOK(t, i, `string trim {  hi  }`); got != "hi" {
		t.Fatalf("trim = %q", got)
	}
	if got := evalOK(t, i, `string match h*o hello`); got != "1" {
		t.Fatalf("match = %q", got)
	}
}

func TestDictCommands(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `set d [dict create a 1 b 2]`)
	if got := evalOK(t, i, `dict get $d a`); got != "1" {
		t.Fatalf("dict get = %q", got)
	}
	if got := evalOK(t, i, `dict exists $d b`); got != "1" {
		t.Fatalf("dict exists = %q", got)
	}
	evalOK(t, i, `dict set d c 3`)
	if got := evalOK(t, i, `dict size $d`); got != "3" {
		t.Fatalf("dict size = %q", got)
	}
	if got := evalOK(t, i, `dict incr d a 5`); got != "a 6 b 2 c 3" {
		t.Fatalf("dict incr = %q", got)
	}
}

func TestNamespaceEvalAndCurrent(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `namespace eval foo {
  set bar 1
}`)
	got := evalOK(t, i, `namespace eval foo { namespace current }`)
	if got != "::foo" {
		t.Fatalf("namespace current = %q, want ::foo", got)
	}
}

func TestEvalJoinsWordsAndReparses(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `set cmd {set x}`)
	got := evalOK(t, i, `eval $cmd 42`)
	if got != "42" {
		t.Fatalf("eval = %q, want 42", got)
	}
	if got2 := evalOK(t, i, `set x`); got2 != "42" {
		t.Fatalf("eval did not run in caller scope, x=%q", got2)
	}
}

func TestUnsetRemovesVariable(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `set x 1`)
	evalOK(t, i, `unset x`)
	if code := i.EvalTopLevel(`set x`); code != interp.ERROR {
		t.Fatalf("expected reading unset var to fail, got %v", code)
	}
	// -nocomplain swallows a missing variable instead of erroring.
	if code := i.EvalTopLevel(`unset -nocomplain nosuchvar`); code != interp.OK {
		t.Fatalf("unset -nocomplain should succeed, got %v", code)
	}
}

func TestRenameCommand(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `proc double {n} { return [expr {$n * 2}] }`)
	evalOK(t, i, `rename double twice`)
	got := evalOK(t, i, `twice 21`)
	if got != "42" {
		t.Fatalf("twice 21 = %q, want 42", got)
	}
	if code := i.EvalTopLevel(`double 21`); code != interp.ERROR {
		t.Fatalf("old name should no longer exist, got %v", code)
	}
}

func TestTraceAddVariableWriteFiresScript(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `set x 0`)
	evalOK(t, i, `set hits 0`)
	evalOK(t, i, `proc bump {args} { global hits; incr hits }`)
	evalOK(t, i, `trace add variable x write bump`)
	evalOK(t, i, `set x 1`)
	evalOK(t, i, `set x 2`)
	if got := evalOK(t, i, `set hits`); got != "2" {
		t.Fatalf("hits = %q, want 2", got)
	}
}

func TestTailcallReplacesFrameWithoutGrowingStack(t *testing.T) {
	i := newTestInterp()
	i.SetRecursionLimit(50)
	evalOK(t, i, `proc countdown {n acc} {
  if {$n <= 0} { return $acc }
  tailcall countdown [expr {$n - 1}] [expr {$acc + $n}]
}`)
	// 200 tailcalled invocations would trip a 50-deep recursion limit if
	// each one pushed a frame on top of the last; tailcall must instead
	// reuse the popped frame's slot.
	got := evalOK(t, i, `countdown 200 0`)
	if got != "20100" {
		t.Fatalf("countdown 200 0 = %q, want 20100", got)
	}
}

func TestGlobalAliasesTopLevelFrame(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `set counter 5`)
	evalOK(t, i, `proc bump {} { global counter; incr counter }`)
	evalOK(t, i, `bump`)
	got := evalOK(t, i, `set counter`)
	if got != "6" {
		t.Fatalf("set counter = %q, want 6", got)
	}
}

func TestInfoCommandsAndProcIntrospection(t *testing.T) {
	i := newTestInterp()
	evalOK(t, i, `proc myproc {a {b 2}} { return $a }`)
	if got := evalOK(t, i, `info args myproc`); got != "a b" {
		t.Fatalf("info args = %q", got)
	}
	if got := evalOK(t, i, `info body myproc`); got != " return $a " {
		t.Fatalf("info body = %q", got)
	}
	if got := evalOK(t, i, `info exists nosuchvar`); got != "0" {
		t.Fatalf("info exists = %q", got)
	}
}
