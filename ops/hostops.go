package ops

// HostOps is the vtable the evaluator core consumes for every concrete
// value operation. An embedder may supply its own implementation; Std
// (see stdops.go) is the default used when none is supplied.
//
// Every method that can fail due to the argument's shape (e.g. treating a
// non-numeric string as an integer) returns an error instead of panicking;
// the evaluator turns that error into a TCL_ERROR result.
type HostOps interface {
	// --- string group ---
	NewString(s string) *Obj
	StringOf(o *Obj) string
	ByteLen(o *Obj) int
	ByteAt(o *Obj, i int) (byte, bool)

	// --- rune group ---
	RuneLen(o *Obj) int
	RuneAt(o *Obj, i int) (rune, bool)
	RuneRange(o *Obj, start, end int) string

	// --- integer / double groups ---
	NewInt(n int64) *Obj
	NewDouble(f float64) *Obj
	AsInt(o *Obj) (int64, error)
	AsDouble(o *Obj) (float64, error)
	IsInt(o *Obj) bool
	IsDouble(o *Obj) bool

	// --- list group ---
	NewList(items []*Obj) *Obj
	AsList(o *Obj) ([]*Obj, error)
	IsNativeList(o *Obj) bool
	ListSetAt(o *Obj, idx int, val *Obj) (*Obj, error)
	ListPush(o *Obj, vals ...*Obj) *Obj
	ListSplice(o *Obj, start, deleteCount int, insert []*Obj) *Obj
	ListShift(o *Obj) (removed *Obj, rest *Obj)

	// --- dict group ---
	NewDict(keys []string, vals []*Obj) *Obj
	AsDict(o *Obj) (keys []string, vals map[string]*Obj, err error)
	IsNativeDict(o *Obj) bool
	DictSet(o *Obj, key string, val *Obj) *Obj
	DictUnset(o *Obj, key string) *Obj

	// --- foreign group ---
	NewForeign(typeName string, value any) *Obj
	IsForeign(o *Obj) bool
	ForeignType(o *Obj) string
	ForeignValue(o *Obj) any

	// Equal compares two values the way TCL does: by string representation
	// only, whatever intrep either side carries (spec §3: "object identity
	// is not observable except through equality of string projections").
	Equal(a, b *Obj) bool

	// Compare orders two values: numeric compare when both are numeric,
	// else a byte-wise string compare. Used by expr's comparison operators
	// and lsort -integer.
	Compare(a, b *Obj) int

	// StringMatch implements glob matching (*, ?, [...]) used by
	// `string match`, namespace export/import patterns, `switch -glob`,
	// and `lsearch -glob`.
	StringMatch(pattern, s string) bool
}
