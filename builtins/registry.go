// Package builtins implements the Control/List/String Built-ins (C11):
// the standard command set layered on top of package interp's core
// (parsing, dispatch, frames, namespaces, exceptions). Grounded on
// MongooseMoo-barn's builtins/registry.go `Register` idiom, generalized
// from barn's single flat function table to registering straight into
// an interp.Interp's namespace command tables via RegisterBuiltin.
package builtins

import "github.com/plume-lang/plume/interp"

// RegisterAll installs every command in this package into i's root
// namespace. Called once by a host after interp.NewInterp.
func RegisterAll(i *interp.Interp) {
	registerControl(i)
	registerVars(i)
	registerInfo(i)
	registerNamespace(i)
	registerExpr(i)
	registerListString(i)
	registerDict(i)
	registerEval(i)
	registerTrace(i)
}
