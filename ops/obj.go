// Package ops defines the Host Operations vtable the evaluator core
// consumes, and ships a default implementation of it (stdops) so the
// engine is usable without an embedder supplying its own.
//
// The core never looks inside an Obj. All fields here are unexported;
// the only way to inspect or build one is through a HostOps method.
package ops

import (
	"fmt"
	"sync"
)

// Obj is the opaque runtime value handle. A nil *Obj means "not present".
type Obj struct {
	mu       sync.Mutex // guards bytes/bytesValid and intrep, which the As* conversions may replace
	intrep   any
	bytes    string
	bytesValid bool
}

// intrep tags, mirroring feather's IntType/DoubleType/ListType/*DictType/*ForeignType.
type intString string
type intInt int64
type intDouble float64
type intList []*Obj

// intDict is a dict representation that preserves insertion order, the
// same shape feather's DictType uses (Items map + Order slice).
type intDict struct {
	order []string
	items map[string]*Obj
}

type intForeign struct {
	typeName string
	value    any
}

// NewString builds a string-valued Obj.
func NewString(s string) *Obj {
	return &Obj{intrep: intString(s), bytes: s, bytesValid: true}
}

// NewInt builds an integer-valued Obj.
func NewInt(n int64) *Obj {
	return &Obj{intrep: intInt(n)}
}

// NewDouble builds a float-valued Obj.
func NewDouble(f float64) *Obj {
	return &Obj{intrep: intDouble(f)}
}

// NewList builds a list-valued Obj from already-constructed elements.
func NewList(items []*Obj) *Obj {
	cp := make(intList, len(items))
	copy(cp, items)
	return &Obj{intrep: cp}
}

// NewDict builds a dict-valued Obj. keys and vals must be the same length;
// later duplicate keys overwrite the value but keep the first occurrence's
// position, matching the flat-list dict encoding in spec §3.
func NewDict(keys []string, vals []*Obj) *Obj {
	d := &intDict{items: make(map[string]*Obj, len(keys))}
	for idx, k := range keys {
		if idx >= len(vals) {
			break
		}
		if _, exists := d.items[k]; !exists {
			d.order = append(d.order, k)
		}
		d.items[k] = vals[idx]
	}
	return &Obj{intrep: d}
}

// NewForeign builds a host-foreign value wrapping an arbitrary Go value.
func NewForeign(typeName string, value any) *Obj {
	o := &Obj{intrep: intForeign{typeName: typeName, value: value}}
	o.bytes = fmt.Sprintf("<%s>", typeName)
	o.bytesValid = true
	return o
}

// Invalidate drops any cached string form, forcing recomputation on next
// String() call. Used after a mutating list/dict operation.
func (o *Obj) Invalidate() {
	o.mu.Lock()
	o.bytesValid = false
	o.mu.Unlock()
}

// String returns the canonical TCL string representation of the value,
// computing and caching it on first use (feather calls this "shimmering").
func (o *Obj) String() string {
	if o == nil {
		return ""
	}
	o.mu.Lock()
	if o.bytesValid {
		s := o.bytes
		o.mu.Unlock()
		return s
	}
	o.mu.Unlock()

	s := stringifyIntrep(o.intrep)

	o.mu.Lock()
	o.bytes = s
	o.bytesValid = true
	o.mu.Unlock()
	return s
}

func stringifyIntrep(ir any) string {
	switch t := ir.(type) {
	case intString:
		return string(t)
	case intInt:
		return fmt.Sprintf("%d", int64(t))
	case intDouble:
		return formatDouble(float64(t))
	case intList:
		return formatList(t)
	case *intDict:
		return formatDict(t)
	case intForeign:
		return fmt.Sprintf("<%s>", t.typeName)
	default:
		return ""
	}
}

// formatDouble mimics Tcl's %g-ish default double formatting: shortest
// round-trippable form, always showing a decimal point or exponent so
// doubles remain visually distinct from integers.
func formatDouble(f float64) string {
	s := fmt.Sprintf("%g", f)
	hasDotOrExp := false
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' || c == 'n' /* NaN/Inf */ {
			hasDotOrExp = true
			break
		}
	}
	if !hasDotOrExp {
		s += ".0"
	}
	return s
}

func needsBraces(s string) bool {
	if len(s) == 0 {
		return true
	}
	for _, c := range s {
		switch c {
		case ' ', '\t', '\n', '\v', '\f', '\r', '{', '}', '"', ';', '$', '[', ']', '\\':
			return true
		}
	}
	return false
}

func formatList(items intList) string {
	var sb []byte
	for idx, it := range items {
		if idx > 0 {
			sb = append(sb, ' ')
		}
		s := it.String()
		if needsBraces(s) {
			sb = append(sb, '{')
			sb = append(sb, s...)
			sb = append(sb, '}')
		} else {
			sb = append(sb, s...)
		}
	}
	return string(sb)
}

func formatDict(d *intDict) string {
	var sb []byte
	first := true
	for _, k := range d.order {
		if !first {
			sb = append(sb, ' ')
		}
		first = false
		if needsBraces(k) {
			sb = append(sb, '{')
			sb = append(sb, k...)
			sb = append(sb, '}')
		} else {
			sb = append(sb, k...)
		}
		sb = append(sb, ' ')
		v := d.items[k].String()
		if needsBraces(v) {
			sb = append(sb, '{')
			sb = append(sb, v...)
			sb = append(sb, '}')
		} else {
			sb = append(sb, v...)
		}
	}
	return string(sb)
}
