package interp

import "github.com/plume-lang/plume/ops"

// substWord applies the substitutions appropriate to w's quoting form
// (spec §4.1) and returns the resulting value. A word that is, in its
// entirety, a single `$var` or `[cmd]` substitution yields that value's
// native Obj unchanged (preserving list/dict sharing per spec §3);
// anything else is built as a new string.
func (i *Interp) substWord(w word) (*ops.Obj, Code) {
	switch w.kind {
	case wordBraced:
		return i.Ops.NewString(foldBackslashNewline(w.text)), OK
	default:
		return i.substText(w.text)
	}
}

func foldBackslashNewline(s string) string {
	out := make([]byte, 0, len(s))
	n := len(s)
	for idx := 0; idx < n; idx++ {
		if s[idx] == '\\' && idx+1 < n && s[idx+1] == '\n' {
			out = append(out, ' ')
			idx += 2
			for idx < n && isSpaceTab(s[idx]) {
				idx++
			}
			idx--
			continue
		}
		out = append(out, s[idx])
	}
	return string(out)
}

type substPart struct {
	literal string
	obj     *ops.Obj
	isSub   bool
}

// substText runs the full backslash/variable/command substitution pass
// over a bare or quoted word's raw text (spec §4.1 "Substitutions").
func (i *Interp) substText(text string) (*ops.Obj, Code) {
	var parts []substPart
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			parts = append(parts, substPart{literal: string(lit)})
			lit = lit[:0]
		}
	}

	n := len(text)
	pos := 0
	for pos < n {
		switch text[pos] {
		case '\\':
			out, adv, err := backslashSubst(text[pos:])
			if err != nil {
				i.SetResultString(err.Error())
				return nil, ERROR
			}
			lit = append(lit, out...)
			pos += adv
		case '$':
			obj, adv, code := i.substDollar(text, pos)
			if code != OK {
				return nil, code
			}
			if obj == nil {
				lit = append(lit, '$')
				pos++
			} else {
				flush()
				parts = append(parts, substPart{obj: obj, isSub: true})
				pos += adv
			}
		case '[':
			obj, adv, code := i.substBracket(text, pos)
			if code != OK {
				return nil, code
			}
			flush()
			parts = append(parts, substPart{obj: obj, isSub: true})
			pos += adv
		default:
			lit = append(lit, text[pos])
			pos++
		}
	}
	flush()

	if len(parts) == 1 && parts[0].isSub {
		return parts[0].obj, OK
	}
	var sb []byte
	for _, p := range parts {
		if p.isSub {
			sb = append(sb, i.Ops.StringOf(p.obj)...)
		} else {
			sb = append(sb, p.literal...)
		}
	}
	return i.Ops.NewString(string(sb)), OK
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// backslashSubst decodes a single backslash escape starting at rest[0] ==
// '\\'. Returns the replacement text and how many bytes of rest it
// consumed (spec §4.1 "Substitutions" backslash table).
func backslashSubst(rest string) (string, int, error) {
	if len(rest) < 2 {
		return "\\", 1, nil
	}
	switch rest[1] {
	case 'a':
		return "\a", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'f':
		return "\f", 2, nil
	case 'n':
		return "\n", 2, nil
	case 'r':
		return "\r", 2, nil
	case 't':
		return "\t", 2, nil
	case 'v':
		return "\v", 2, nil
	case '\\':
		return "\\", 2, nil
	case '\n':
		j := 2
		for j < len(rest) && isSpaceTab(rest[j]) {
			j++
		}
		return " ", j, nil
	case 'x':
		j := 2
		digits := 0
		for j < len(rest) && digits < 2 && isHexDigit(rest[j]) {
			j++
			digits++
		}
		if digits == 0 {
			return "x", 2, nil
		}
		val := 0
		for k := 2; k < 2+digits; k++ {
			val = val*16 + hexVal(rest[k])
		}
		return string(rune(val)), j, nil
	case 'u':
		if len(rest) < 6 || !isHexDigit(rest[2]) || !isHexDigit(rest[3]) || !isHexDigit(rest[4]) || !isHexDigit(rest[5]) {
			return "", 0, errShape("missing hexadecimal digits for \\u escape")
		}
		val := 0
		for k := 2; k < 6; k++ {
			val = val*16 + hexVal(rest[k])
		}
		return string(rune(val)), 6, nil
	case 'U':
		if len(rest) < 10 {
			return "", 0, errShape("missing hexadecimal digits for \\U escape")
		}
		val := 0
		for k := 2; k < 10; k++ {
			if !isHexDigit(rest[k]) {
				return "", 0, errShape("missing hexadecimal digits for \\U escape")
			}
			val = val*16 + hexVal(rest[k])
		}
		return string(rune(val)), 10, nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		j := 1
		digits := 0
		for j < len(rest) && digits < 3 && rest[j] >= '0' && rest[j] <= '7' {
			j++
			digits++
		}
		val := 0
		for k := 1; k < 1+digits; k++ {
			val = val*8 + int(rest[k]-'0')
		}
		return string(rune(val)), 1 + digits, nil
	default:
		return string(rest[1]), 2, nil
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// substDollar decodes one `$name`, `${name}`, or `$name(index)` reference
// starting at text[pos] == '$'. A nil obj with OK means "not a valid
// variable reference" -- the caller treats the '$' as a literal character.
func (i *Interp) substDollar(text string, pos int) (*ops.Obj, int, Code) {
	n := len(text)
	if pos+1 >= n {
		return nil, 0, OK
	}
	if text[pos+1] == '{' {
		closeIdx := -1
		for k := pos + 2; k < n; k++ {
			if text[k] == '}' {
				closeIdx = k
				break
			}
		}
		if closeIdx < 0 {
			i.SetResultString("missing close-brace for variable name")
			return nil, 0, ERROR
		}
		name := text[pos+2 : closeIdx]
		val, err := i.GetVar(name)
		if err != nil {
			i.SetResultString(err.Error())
			return nil, 0, ERROR
		}
		return val, closeIdx + 1 - pos, OK
	}

	j := pos + 1
	for j < n {
		if isIdentByte(text[j]) {
			j++
			continue
		}
		if text[j] == ':' && j+1 < n && text[j+1] == ':' {
			j += 2
			continue
		}
		break
	}
	if j == pos+1 {
		return nil, 0, OK
	}
	name := text[pos+1 : j]

	if j < n && text[j] == '(' {
		depth := 1
		k := j + 1
		for k < n && depth > 0 {
			switch text[k] {
			case '(':
				depth++
			case ')':
				depth--
			}
			k++
		}
		if depth != 0 {
			i.SetResultString("missing close-paren for array reference")
			return nil, 0, ERROR
		}
		idxRaw := text[j+1 : k-1]
		idxObj, code := i.substText(idxRaw)
		if code != OK {
			return nil, 0, code
		}
		fullName := name + "(" + i.Ops.StringOf(idxObj) + ")"
		val, err := i.GetVar(fullName)
		if err != nil {
			i.SetResultString(err.Error())
			return nil, 0, ERROR
		}
		return val, k - pos, OK
	}

	val, err := i.GetVar(name)
	if err != nil {
		i.SetResultString(err.Error())
		return nil, 0, ERROR
	}
	return val, j - pos, OK
}

// substBracket evaluates a `[...]` command-substitution span starting at
// text[pos] == '['.
func (i *Interp) substBracket(text string, pos int) (*ops.Obj, int, Code) {
	end, err := scanBracketSpan(text, pos)
	if err != nil {
		i.SetResultString(err.Error())
		return nil, 0, ERROR
	}
	inner := text[pos+1 : end-1]
	val, code := i.evalSubScript(inner)
	return val, end - pos, code
}

// SubstString runs the backslash/variable/command substitution pass
// over an arbitrary string outside of command-word parsing, for `subst`
// and `expr` (which substitutes its argument before parsing arithmetic).
func (i *Interp) SubstString(text string) (*ops.Obj, Code) {
	return i.substText(text)
}

// evalSubScript evaluates inner as a script in the active frame and
// returns the result object alongside the completion code, for use by
// command substitution, `eval`, and `subst`.
func (i *Interp) evalSubScript(inner string) (*ops.Obj, Code) {
	code := i.evalScript(inner)
	return i.GetResult(), code
}
