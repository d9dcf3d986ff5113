package interp

import "strings"

// SplitName implements the Name Resolver (C2): splits name at its last
// "::" into (qualifier, tail). A name with no "::" is unqualified and
// returns ("", name). Grounded on feather's Namespace.fullPath handling
// and the qualifier logic implicit in its dispatch() fallback chain.
func SplitName(name string) (qualifier, tail string) {
	idx := strings.LastIndex(name, "::")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+2:]
}

// IsQualified reports whether name contains "::" anywhere.
func IsQualified(name string) bool {
	return strings.Contains(name, "::")
}

// ResolveNamespacePath resolves a (possibly relative) qualifier string
// against the current namespace's absolute path, per spec §4.2:
//   - absolute qualifier (starts with "::") resolves to itself
//   - relative qualifier resolves to "::qualifier" if current is "::",
//     else "current::qualifier"
//   - an empty qualifier resolves to the current namespace itself
func ResolveNamespacePath(currentAbs, qualifier string) string {
	if qualifier == "" {
		return currentAbs
	}
	if strings.HasPrefix(qualifier, "::") {
		if qualifier == "::" {
			return "::"
		}
		return normalizeNSPath(qualifier)
	}
	if currentAbs == "::" {
		return normalizeNSPath("::" + qualifier)
	}
	return normalizeNSPath(currentAbs + "::" + qualifier)
}

// normalizeNSPath collapses any accidental "::::" runs produced by string
// concatenation above into a single "::" separator.
func normalizeNSPath(p string) string {
	for strings.Contains(p, ":::") {
		p = strings.ReplaceAll(p, ":::", "::")
	}
	return p
}

// AbsoluteCommandName normalizes a command name for trace/command-table
// storage: unqualified names are prefixed with "::" relative to the
// current namespace path supplied, matching spec §4.9's "normalized to
// absolute" rule for `trace add command|execution`.
func AbsoluteCommandName(currentNSAbs, name string) string {
	if strings.HasPrefix(name, "::") {
		return name
	}
	qualifier, tail := SplitName(name)
	ns := ResolveNamespacePath(currentNSAbs, qualifier)
	if ns == "::" {
		return "::" + tail
	}
	return ns + "::" + tail
}
