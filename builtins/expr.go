package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plume-lang/plume/interp"
	"github.com/plume-lang/plume/ops"
)

// expr: a small recursive-descent arithmetic/comparison/logical
// evaluator over the Host Ops vtable's integer/dbl groups, in the shape
// of the teacher's own recursive-descent expression parser
// (parser/parser_arithmetic_test.go, parser/parser_logical_test.go show
// the precedence ladder to imitate) rather than a from-scratch grammar.

func registerExpr(i *interp.Interp) {
	i.RegisterBuiltin("expr", builtinExpr)
}

func builtinExpr(i *interp.Interp, name string, args []*ops.Obj) interp.Code {
	if len(args) == 0 {
		return i.Fail(`wrong # args: should be "expr arg ?arg ...?"`)
	}
	parts := make([]string, len(args))
	for idx, a := range args {
		parts[idx] = i.Ops.StringOf(a)
	}
	val, code := EvalExprString(i, strings.Join(parts, " "))
	if code != interp.OK {
		return code
	}
	i.SetResult(val)
	return interp.OK
}

// EvalExprString substitutes raw (as a bare word would be) and then
// parses/evaluates the result as a Tcl expression.
func EvalExprString(i *interp.Interp, raw string) (*ops.Obj, interp.Code) {
	substituted, code := i.SubstString(raw)
	if code != interp.OK {
		return nil, code
	}
	text := i.Ops.StringOf(substituted)
	p := &exprParser{i: i, src: text}
	val, err := p.parseOr()
	if err != nil {
		return nil, i.Fail(err.Error())
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, i.Fail("syntax error in expression \"" + text + "\"")
	}
	return val, interp.OK
}

func truthy(i *interp.Interp, o *ops.Obj) bool {
	if n, err := i.Ops.AsInt(o); err == nil {
		return n != 0
	}
	if f, err := i.Ops.AsDouble(o); err == nil {
		return f != 0
	}
	switch strings.ToLower(i.Ops.StringOf(o)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off", "":
		return false
	}
	return i.Ops.StringOf(o) != ""
}

func boolObj(i *interp.Interp, b bool) *ops.Obj {
	if b {
		return i.Ops.NewInt(1)
	}
	return i.Ops.NewInt(0)
}

type exprParser struct {
	i   *interp.Interp
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *exprParser) peekOp(ops_ ...string) string {
	p.skipSpace()
	rest := p.src[p.pos:]
	for _, o := range ops_ {
		if strings.HasPrefix(rest, o) {
			return o
		}
	}
	return ""
}

func (p *exprParser) parseOr() (*ops.Obj, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if op := p.peekOp("||"); op != "" {
			p.pos += len(op)
			right, err := p.parseAnd()
			if err != nil {
				return nil, err
			}
			left = boolObj(p.i, truthy(p.i, left) || truthy(p.i, right))
			continue
		}
		return left, nil
	}
}

func (p *exprParser) parseAnd() (*ops.Obj, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for {
		if op := p.peekOp("&&"); op != "" {
			p.pos += len(op)
			right, err := p.parseEquality()
			if err != nil {
				return nil, err
			}
			left = boolObj(p.i, truthy(p.i, left) && truthy(p.i, right))
			continue
		}
		return left, nil
	}
}

func (p *exprParser) parseEquality() (*ops.Obj, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peekWordOrOp("==", "!=", "eq", "ne", "in", "ni")
		if op == "" {
			return left, nil
		}
		p.advanceToken(op)
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		switch op {
		case "==":
			left = boolObj(p.i, p.i.Ops.Compare(left, right) == 0)
		case "!=":
			left = boolObj(p.i, p.i.Ops.Compare(left, right) != 0)
		case "eq":
			left = boolObj(p.i, p.i.Ops.Equal(left, right))
		case "ne":
			left = boolObj(p.i, !p.i.Ops.Equal(left, right))
		case "in", "ni":
			items, _ := p.i.Ops.AsList(right)
			found := false
			for _, it := range items {
				if p.i.Ops.Equal(left, it) {
					found = true
					break
				}
			}
			if op == "ni" {
				found = !found
			}
			left = boolObj(p.i, found)
		}
	}
}

func (p *exprParser) parseRelational() (*ops.Obj, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peekOp("<=", ">=", "<", ">")
		if op == "" {
			return left, nil
		}
		p.pos += len(op)
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		c := p.i.Ops.Compare(left, right)
		switch op {
		case "<":
			left = boolObj(p.i, c < 0)
		case "<=":
			left = boolObj(p.i, c <= 0)
		case ">":
			left = boolObj(p.i, c > 0)
		case ">=":
			left = boolObj(p.i, c >= 0)
		}
	}
}

func (p *exprParser) parseAdd() (*ops.Obj, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peekOp("+", "-")
		if op == "" {
			return left, nil
		}
		p.pos += len(op)
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left, err = p.arith(left, right, op)
		if err != nil {
			return nil, err
		}
	}
}

func (p *exprParser) parseMul() (*ops.Obj, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peekOp("*", "/", "%")
		if op == "" {
			return left, nil
		}
		p.pos += len(op)
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left, err = p.arith(left, right, op)
		if err != nil {
			return nil, err
		}
	}
}

func (p *exprParser) parseUnary() (*ops.Obj, error) {
	if op := p.peekOp("!", "-", "+"); op != "" {
		p.pos += len(op)
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		switch op {
		case "!":
			return boolObj(p.i, !truthy(p.i, v)), nil
		case "-":
			return p.arith(p.i.Ops.NewInt(0), v, "-")
		default:
			return v, nil
		}
	}
	return p.parsePrimary()
}

func (p *exprParser) arith(a, b *ops.Obj, op string) (*ops.Obj, error) {
	ai, aerr := p.i.Ops.AsInt(a)
	bi, berr := p.i.Ops.AsInt(b)
	if aerr == nil && berr == nil {
		switch op {
		case "+":
			return p.i.Ops.NewInt(ai + bi), nil
		case "-":
			return p.i.Ops.NewInt(ai - bi), nil
		case "*":
			return p.i.Ops.NewInt(ai * bi), nil
		case "/":
			if bi == 0 {
				return nil, errShape("divide by zero")
			}
			return p.i.Ops.NewInt(ai / bi), nil
		case "%":
			if bi == 0 {
				return nil, errShape("divide by zero")
			}
			return p.i.Ops.NewInt(ai % bi), nil
		}
	}
	af, aferr := p.i.Ops.AsDouble(a)
	bf, bferr := p.i.Ops.AsDouble(b)
	if aferr != nil || bferr != nil {
		return nil, errShape("expected number but got %q", p.i.Ops.StringOf(a))
	}
	switch op {
	case "+":
		return p.i.Ops.NewDouble(af + bf), nil
	case "-":
		return p.i.Ops.NewDouble(af - bf), nil
	case "*":
		return p.i.Ops.NewDouble(af * bf), nil
	case "/":
		if bf == 0 {
			return nil, errShape("divide by zero")
		}
		return p.i.Ops.NewDouble(af / bf), nil
	default:
		return nil, errShape("unsupported operator %q on doubles", op)
	}
}

func (p *exprParser) parsePrimary() (*ops.Obj, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, errShape("unexpected end of expression")
	}
	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, errShape("missing close-paren in expression")
		}
		p.pos++
		return v, nil
	case c == '"':
		return p.parseQuoted()
	case c == '{':
		return p.parseBraced()
	case c >= '0' && c <= '9', c == '.':
		return p.parseNumber()
	default:
		return p.parseBareword()
	}
}

func (p *exprParser) parseQuoted() (*ops.Obj, error) {
	start := p.pos + 1
	i := start
	var out []byte
	for i < len(p.src) && p.src[i] != '"' {
		if p.src[i] == '\\' && i+1 < len(p.src) {
			out = append(out, p.src[i+1])
			i += 2
			continue
		}
		out = append(out, p.src[i])
		i++
	}
	if i >= len(p.src) {
		return nil, errShape("missing close-quote in expression")
	}
	p.pos = i + 1
	return p.i.Ops.NewString(string(out)), nil
}

func (p *exprParser) parseBraced() (*ops.Obj, error) {
	start := p.pos + 1
	depth := 1
	i := start
	for i < len(p.src) && depth > 0 {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		i++
	}
	if depth != 0 {
		return nil, errShape("missing close-brace in expression")
	}
	body := p.src[start : i-1]
	p.pos = i
	return p.i.Ops.NewString(body), nil
}

func (p *exprParser) parseNumber() (*ops.Obj, error) {
	start := p.pos
	i := start
	isFloat := false
	for i < len(p.src) && (p.src[i] >= '0' && p.src[i] <= '9') {
		i++
	}
	if i < len(p.src) && p.src[i] == '.' {
		isFloat = true
		i++
		for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
			i++
		}
	}
	if i < len(p.src) && (p.src[i] == 'e' || p.src[i] == 'E') {
		j := i + 1
		if j < len(p.src) && (p.src[j] == '+' || p.src[j] == '-') {
			j++
		}
		if j < len(p.src) && p.src[j] >= '0' && p.src[j] <= '9' {
			isFloat = true
			i = j
			for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
				i++
			}
		}
	}
	text := p.src[start:i]
	p.pos = i
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errShape("bad number %q", text)
		}
		return p.i.Ops.NewDouble(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, errShape("bad number %q", text)
	}
	return p.i.Ops.NewInt(n), nil
}

func (p *exprParser) parseBareword() (*ops.Obj, error) {
	start := p.pos
	i := start
	for i < len(p.src) && isExprIdentByte(p.src[i]) {
		i++
	}
	if i == start {
		return nil, errShape("syntax error in expression: unexpected character %q", string(p.src[i]))
	}
	text := p.src[start:i]
	p.pos = i
	switch text {
	case "true", "yes", "on":
		return p.i.Ops.NewInt(1), nil
	case "false", "no", "off":
		return p.i.Ops.NewInt(0), nil
	}
	return p.i.Ops.NewString(text), nil
}

func isExprIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// peekWordOrOp looks for either a symbolic operator or a bareword
// operator (eq/ne/in/ni) at the current position without consuming it.
func (p *exprParser) peekWordOrOp(candidates ...string) string {
	p.skipSpace()
	rest := p.src[p.pos:]
	for _, c := range candidates {
		if len(c) > 0 && isExprIdentByte(c[0]) {
			if strings.HasPrefix(rest, c) && (len(rest) == len(c) || !isExprIdentByte(rest[len(c)])) {
				return c
			}
			continue
		}
		if strings.HasPrefix(rest, c) {
			return c
		}
	}
	return ""
}

func (p *exprParser) advanceToken(tok string) {
	p.skipSpace()
	p.pos += len(tok)
}

func errShape(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
