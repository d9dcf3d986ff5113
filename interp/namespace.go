package interp

import (
	"strings"

	"github.com/plume-lang/plume/ops"
)

// CommandKind discriminates a Command's implementation.
type CommandKind int

const (
	CmdBuiltin CommandKind = iota
	CmdProc
	CmdHost
	CmdImport // alias into another namespace's command, created by `namespace import`
)

// BuiltinFunc is a core-implemented command (package builtins registers
// these). args excludes the command name itself.
type BuiltinFunc func(i *Interp, name string, args []*ops.Obj) Code

// HostFunc is a host-registered command, analogous to feather's
// CommandFunc / Interp.Commands map.
type HostFunc func(i *Interp, name string, args []*ops.Obj) Code

// Command is an entry in a namespace's command table (spec §3).
type Command struct {
	Kind    CommandKind
	Builtin BuiltinFunc
	Host    HostFunc
	Proc    *Procedure

	// ImportSource is set when Kind == CmdImport: the fully-qualified
	// name this entry is an alias for.
	ImportSource string
}

// Namespace is a node in the tree rooted at "::" (spec §3 / §4.4).
type Namespace struct {
	Path     string // fully-qualified, e.g. "::foo::bar"
	Parent   *Namespace
	Children map[string]*Namespace

	Vars     map[string]*ops.Obj
	Commands map[string]*Command

	ExportPatterns []string
}

func newNamespaceNode(path string, parent *Namespace) *Namespace {
	return &Namespace{
		Path:     path,
		Parent:   parent,
		Children: make(map[string]*Namespace),
		Vars:     make(map[string]*ops.Obj),
		Commands: make(map[string]*Command),
	}
}

// NamespaceRegistry owns the namespace tree (C5).
type NamespaceRegistry struct {
	root *Namespace
	byPath map[string]*Namespace
}

func newNamespaceRegistry() *NamespaceRegistry {
	root := newNamespaceNode("::", nil)
	return &NamespaceRegistry{root: root, byPath: map[string]*Namespace{"::": root}}
}

// Root returns the global "::" namespace.
func (r *NamespaceRegistry) Root() *Namespace { return r.root }

// Get looks up a namespace by absolute path without creating it.
func (r *NamespaceRegistry) Get(path string) *Namespace {
	return r.byPath[path]
}

// Ensure creates path and any missing ancestors, mirroring the
// lazy-creation rule of spec §4.4 ("Creates directories lazily").
func (r *NamespaceRegistry) Ensure(path string) *Namespace {
	if ns, ok := r.byPath[path]; ok {
		return ns
	}
	if path == "::" {
		return r.root
	}
	parentPath, tail := splitNSParent(path)
	parent := r.Ensure(parentPath)
	child := newNamespaceNode(path, parent)
	parent.Children[tail] = child
	r.byPath[path] = child
	if DiagEnabled() {
		diagLog(path, "created namespace %s", path)
	}
	return child
}

// splitNSParent splits an absolute namespace path into its parent path and
// the final path component.
func splitNSParent(path string) (parent, tail string) {
	trimmed := strings.TrimPrefix(path, "::")
	idx := strings.LastIndex(trimmed, "::")
	if idx < 0 {
		return "::", trimmed
	}
	return "::" + trimmed[:idx], trimmed[idx+2:]
}

// Delete removes a namespace (and its subtree) from the registry. Forbidden
// on "::" per spec §4.4.
func (r *NamespaceRegistry) Delete(path string) error {
	if path == "::" {
		return errShape("can't delete the root namespace")
	}
	ns := r.byPath[path]
	if ns == nil {
		return nil
	}
	var walk func(n *Namespace)
	walk = func(n *Namespace) {
		for _, c := range n.Children {
			walk(c)
		}
		delete(r.byPath, n.Path)
	}
	walk(ns)
	if ns.Parent != nil {
		_, tail := splitNSParent(path)
		delete(ns.Parent.Children, tail)
	}
	return nil
}

// ChildPaths returns the absolute paths of path's direct children matching
// pattern (glob; empty pattern matches all), for `namespace children`.
func (r *NamespaceRegistry) ChildPaths(path, pattern string) []string {
	ns := r.byPath[path]
	if ns == nil {
		return nil
	}
	var out []string
	for name, child := range ns.Children {
		if pattern == "" || ops.GlobMatch(pattern, name) {
			out = append(out, child.Path)
		}
	}
	return out
}
