package ops

import (
	"fmt"
	"strconv"
	"strings"
)

// Std is the default HostOps implementation: plain in-process Go values
// behind the Obj tagged union defined in obj.go. An embedder with its own
// object system (e.g. backed by a C library, or a GC'd arena) supplies an
// alternative implementation of HostOps instead.
type Std struct{}

// New returns the default Host Operations vtable.
func New() HostOps { return Std{} }

func (Std) NewString(s string) *Obj { return NewString(s) }

func (Std) StringOf(o *Obj) string { return o.String() }

func (Std) ByteLen(o *Obj) int { return len(o.String()) }

func (Std) ByteAt(o *Obj, i int) (byte, bool) {
	s := o.String()
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return s[i], true
}

func (Std) RuneLen(o *Obj) int { return len([]rune(o.String())) }

func (Std) RuneAt(o *Obj, i int) (rune, bool) {
	rs := []rune(o.String())
	if i < 0 || i >= len(rs) {
		return 0, false
	}
	return rs[i], true
}

func (Std) RuneRange(o *Obj, start, end int) string {
	rs := []rune(o.String())
	if start < 0 {
		start = 0
	}
	if end > len(rs) {
		end = len(rs)
	}
	if start >= end {
		return ""
	}
	return string(rs[start:end])
}

func (Std) NewInt(n int64) *Obj    { return NewInt(n) }
func (Std) NewDouble(f float64) *Obj { return NewDouble(f) }

func (Std) IsInt(o *Obj) bool {
	if o == nil {
		return false
	}
	_, ok := o.intrep.(intInt)
	return ok
}

func (Std) IsDouble(o *Obj) bool {
	if o == nil {
		return false
	}
	_, ok := o.intrep.(intDouble)
	return ok
}

func (Std) AsInt(o *Obj) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("expected integer but got nil value")
	}
	switch t := o.intrep.(type) {
	case intInt:
		return int64(t), nil
	case intDouble:
		return int64(t), nil
	}
	s := strings.TrimSpace(o.String())
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer but got %q", o.String())
	}
	o.mu.Lock()
	o.intrep = intInt(n)
	o.mu.Unlock()
	return n, nil
}

func (Std) AsDouble(o *Obj) (float64, error) {
	if o == nil {
		return 0, fmt.Errorf("expected floating-point number but got nil value")
	}
	switch t := o.intrep.(type) {
	case intDouble:
		return float64(t), nil
	case intInt:
		return float64(t), nil
	}
	s := strings.TrimSpace(o.String())
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected floating-point number but got %q", o.String())
	}
	return f, nil
}

func (Std) NewList(items []*Obj) *Obj { return NewList(items) }

func (Std) IsNativeList(o *Obj) bool {
	if o == nil {
		return false
	}
	_, ok := o.intrep.(intList)
	return ok
}

func (s Std) AsList(o *Obj) ([]*Obj, error) {
	if o == nil {
		return nil, nil
	}
	if l, ok := o.intrep.(intList); ok {
		out := make([]*Obj, len(l))
		copy(out, l)
		return out, nil
	}
	items, err := ParseList(o.String())
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.intrep = intList(append(intList(nil), items...))
	o.mu.Unlock()
	out := make([]*Obj, len(items))
	copy(out, items)
	return out, nil
}

func (s Std) ListSetAt(o *Obj, idx int, val *Obj) (*Obj, error) {
	items, err := s.AsList(o)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(items) {
		return nil, fmt.Errorf("list index out of range")
	}
	cp := make([]*Obj, len(items))
	copy(cp, items)
	cp[idx] = val
	return NewList(cp), nil
}

func (s Std) ListPush(o *Obj, vals ...*Obj) *Obj {
	items, _ := s.AsList(o)
	cp := make([]*Obj, 0, len(items)+len(vals))
	cp = append(cp, items...)
	cp = append(cp, vals...)
	return NewList(cp)
}

// ListSplice removes deleteCount elements starting at start and inserts
// insert in their place, returning the new list handle (never mutates o).
func (s Std) ListSplice(o *Obj, start, deleteCount int, insert []*Obj) *Obj {
	items, _ := s.AsList(o)
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	end := start + deleteCount
	if end > len(items) {
		end = len(items)
	}
	if end < start {
		end = start
	}
	out := make([]*Obj, 0, len(items)-(end-start)+len(insert))
	out = append(out, items[:start]...)
	out = append(out, insert...)
	out = append(out, items[end:]...)
	return NewList(out)
}

func (s Std) ListShift(o *Obj) (*Obj, *Obj) {
	items, _ := s.AsList(o)
	if len(items) == 0 {
		return nil, NewList(nil)
	}
	return items[0], NewList(items[1:])
}

func (Std) NewDict(keys []string, vals []*Obj) *Obj { return NewDict(keys, vals) }

func (Std) IsNativeDict(o *Obj) bool {
	if o == nil {
		return false
	}
	_, ok := o.intrep.(*intDict)
	return ok
}

func (s Std) AsDict(o *Obj) ([]string, map[string]*Obj, error) {
	if o == nil {
		return nil, nil, nil
	}
	if d, ok := o.intrep.(*intDict); ok {
		vals := make(map[string]*Obj, len(d.items))
		for k, v := range d.items {
			vals[k] = v
		}
		order := make([]string, len(d.order))
		copy(order, d.order)
		return order, vals, nil
	}
	items, err := s.AsList(o)
	if err != nil {
		return nil, nil, err
	}
	if len(items)%2 != 0 {
		return nil, nil, fmt.Errorf("missing value to go with key")
	}
	d := &intDict{items: make(map[string]*Obj, len(items)/2)}
	for i := 0; i+1 < len(items); i += 2 {
		k := items[i].String()
		if _, exists := d.items[k]; !exists {
			d.order = append(d.order, k)
		}
		d.items[k] = items[i+1]
	}
	o.mu.Lock()
	o.intrep = d
	o.mu.Unlock()
	vals := make(map[string]*Obj, len(d.items))
	for k, v := range d.items {
		vals[k] = v
	}
	order := make([]string, len(d.order))
	copy(order, d.order)
	return order, vals, nil
}

func (s Std) DictSet(o *Obj, key string, val *Obj) *Obj {
	order, vals, _ := s.AsDict(o)
	newOrder := order
	if _, exists := vals[key]; !exists {
		newOrder = append(append([]string(nil), order...), key)
	}
	vals[key] = val
	keys := make([]string, len(newOrder))
	copy(keys, newOrder)
	vv := make([]*Obj, len(keys))
	for i, k := range keys {
		vv[i] = vals[k]
	}
	return NewDict(keys, vv)
}

func (s Std) DictUnset(o *Obj, key string) *Obj {
	order, vals, _ := s.AsDict(o)
	keys := make([]string, 0, len(order))
	vv := make([]*Obj, 0, len(order))
	for _, k := range order {
		if k == key {
			continue
		}
		keys = append(keys, k)
		vv = append(vv, vals[k])
	}
	return NewDict(keys, vv)
}

func (Std) NewForeign(typeName string, value any) *Obj { return NewForeign(typeName, value) }

func (Std) IsForeign(o *Obj) bool {
	if o == nil {
		return false
	}
	_, ok := o.intrep.(intForeign)
	return ok
}

func (Std) ForeignType(o *Obj) string {
	if o == nil {
		return ""
	}
	if f, ok := o.intrep.(intForeign); ok {
		return f.typeName
	}
	return ""
}

func (Std) ForeignValue(o *Obj) any {
	if o == nil {
		return nil
	}
	if f, ok := o.intrep.(intForeign); ok {
		return f.value
	}
	return nil
}

func (s Std) Equal(a, b *Obj) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return a.String() == b.String()
	}
	// No numeric fast path: values compare by string form even when both
	// carry a numeric intrep, matching Tcl's "everything is a string"
	// equality for the ==/eq split (eq is always string compare; this
	// Equal backs `eq`/dict/list membership, not arithmetic ==).
	return a.String() == b.String()
}

func (s Std) Compare(a, b *Obj) int {
	af, aerr := s.AsDouble(cloneForPeek(a))
	bf, berr := s.AsDouble(cloneForPeek(b))
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.String(), b.String())
}

// cloneForPeek lets Compare probe numeric-ness without mutating the
// caller's Obj's cached intrep as a side effect of AsDouble's shimmering.
func cloneForPeek(o *Obj) *Obj {
	if o == nil {
		return nil
	}
	return &Obj{intrep: o.intrep, bytes: o.String(), bytesValid: true}
}

func (Std) StringMatch(pattern, s string) bool {
	return GlobMatch(pattern, s)
}
