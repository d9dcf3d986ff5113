package interp

import "fmt"

// errShape builds a plain Go error carrying one of the fixed message
// shapes spec §6 locks (tests check these prefixes verbatim). Kept as a
// thin fmt.Errorf wrapper, matching the teacher's style of using stdlib
// errors with no wrapping framework anywhere in the pack.
func errShape(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func errWrongArgs(usage string) error {
	return errShape("wrong # args: should be %q", usage)
}

func errNoSuchVar(name string) error {
	return errShape("can't read %q: no such variable", name)
}

func errNoSuchCommand(name string) error {
	return errShape("invalid command name %q", name)
}

func errMissingCloseBrace() error {
	return errShape("missing close-brace")
}

func errMissingCloseBracket() error {
	return errShape("missing close-bracket")
}

func errMissingCloseQuote() error {
	return errShape("missing close-quote")
}

func errExtraAfterBrace() error {
	return errShape("extra characters after close-brace")
}
