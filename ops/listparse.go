package ops

import "fmt"

// ParseList parses a canonical TCL list string into elements, following the
// same brace/quote/bareword rules as command-word parsing (spec §4.1) but
// without backslash, variable, or command substitution: list elements are
// taken literally once unwrapped. Grounded on feather's internp.go
// parseList, generalized to handle nested braces and escaped characters
// inside quoted elements correctly.
func ParseList(s string) ([]*Obj, error) {
	var items []*Obj
	pos, n := 0, len(s)

	skipWS := func() {
		for pos < n {
			switch s[pos] {
			case ' ', '\t', '\n', '\r', '\v', '\f':
				pos++
			default:
				return
			}
		}
	}

	for {
		skipWS()
		if pos >= n {
			break
		}
		var elem string
		switch s[pos] {
		case '{':
			depth := 1
			start := pos + 1
			pos++
			for pos < n && depth > 0 {
				switch s[pos] {
				case '{':
					depth++
				case '}':
					depth--
				case '\\':
					if pos+1 < n {
						pos++
					}
				}
				pos++
			}
			if depth != 0 {
				return nil, fmt.Errorf("unmatched open brace in list")
			}
			elem = s[start : pos-1]
		case '"':
			start := pos + 1
			pos++
			for pos < n && s[pos] != '"' {
				if s[pos] == '\\' && pos+1 < n {
					pos++
				}
				pos++
			}
			if pos >= n {
				return nil, fmt.Errorf("unmatched open quote in list")
			}
			elem = unescapeListWord(s[start:pos])
			pos++
		default:
			start := pos
			for pos < n {
				switch s[pos] {
				case ' ', '\t', '\n', '\r', '\v', '\f':
					goto wordDone
				case '\\':
					if pos+1 < n {
						pos++
					}
				}
				pos++
			}
		wordDone:
			elem = unescapeListWord(s[start:pos])
		}
		items = append(items, NewString(elem))
	}
	return items, nil
}

// unescapeListWord collapses backslash sequences the way a bare/quoted
// list element does, mirroring the single-character part of command
// substitution's escape table (see interp/subst.go's backslashSubst for
// the full escape set used in full script substitution; list parsing only
// needs the common single-character escapes plus the catch-all "drop the
// backslash").
func unescapeListWord(s string) string {
	if indexByte(s, '\\') < 0 {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'a':
				out = append(out, '\a')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'v':
				out = append(out, '\v')
			default:
				out = append(out, s[i])
			}
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
