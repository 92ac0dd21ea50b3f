package model

import "strings"

// Kind identifies a ValueType variant.
type Kind int

const (
	KindPrimitive Kind = iota
	KindCustom
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindCustom:
		return "custom"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Primitive type names.
const (
	String  = "string"
	Boolean = "boolean"
	Float32 = "float32"
	Float64 = "float64"
	Uint8   = "uint8"
	Uint16  = "uint16"
	Uint32  = "uint32"
	Uint64  = "uint64"
	Int8    = "int8"
	Int16   = "int16"
	Int32   = "int32"
	Int64   = "int64"
	Binary  = "binary"
)

// Stable type codes. Primitive codes follow the primitive declaration order.
const (
	CodeList   = 13
	CodeMap    = 14
	CodeCustom = 15
)

var primitiveCodes = map[string]int{
	String:  0,
	Boolean: 1,
	Float32: 2,
	Float64: 3,
	Uint8:   4,
	Uint16:  5,
	Uint32:  6,
	Uint64:  7,
	Int8:    8,
	Int16:   9,
	Int32:   10,
	Int64:   11,
	Binary:  12,
}

// IsPrimitive reports whether name is one of the primitive type names.
func IsPrimitive(name string) bool {
	_, ok := primitiveCodes[name]
	return ok
}

// ValueType is the structural descriptor of a field's data shape. The set of
// implementations is closed: *Primitive, *Custom, *List and *Map.
type ValueType interface {
	Kind() Kind
	// TypeCode returns the stable per-kind code used by encoders.
	TypeCode() int
	String() string
	valueType()
}

// Primitive is one of the built-in scalar types.
type Primitive struct {
	Name string
}

func (p *Primitive) Kind() Kind     { return KindPrimitive }
func (p *Primitive) TypeCode() int  { return primitiveCodes[p.Name] }
func (p *Primitive) String() string { return p.Name }
func (*Primitive) valueType()       {}

// Custom is a reference to a declared type, optionally package qualified.
type Custom struct {
	Ref string // "Type" or "pkg.Type"
}

func (c *Custom) Kind() Kind     { return KindCustom }
func (c *Custom) TypeCode() int  { return CodeCustom }
func (c *Custom) String() string { return c.Ref }
func (*Custom) valueType()       {}

// Split returns the package qualifier (empty when unqualified) and the type
// name of the reference.
func (c *Custom) Split() (pkg, name string) {
	if i := strings.LastIndexByte(c.Ref, '.'); i >= 0 {
		return c.Ref[:i], c.Ref[i+1:]
	}
	return "", c.Ref
}

// List holds elements of a single non-container type.
type List struct {
	Elem ValueType
}

func (l *List) Kind() Kind     { return KindList }
func (l *List) TypeCode() int  { return CodeList }
func (l *List) String() string { return "list(" + l.Elem.String() + ")" }
func (*List) valueType()       {}

// Map holds key/value pairs of non-container types.
type Map struct {
	Key   ValueType
	Value ValueType
}

func (m *Map) Kind() Kind     { return KindMap }
func (m *Map) TypeCode() int  { return CodeMap }
func (m *Map) String() string { return "map(" + m.Key.String() + "," + m.Value.String() + ")" }
func (*Map) valueType()       {}

// IsContainer reports whether vt is a List or a Map.
func IsContainer(vt ValueType) bool {
	if vt == nil {
		return false
	}
	k := vt.Kind()
	return k == KindList || k == KindMap
}

// Equal compares two value types by type code, recursing into the children
// of lists and maps. Custom references compare by reference text.
func Equal(a, b ValueType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.TypeCode() != b.TypeCode() {
		return false
	}
	switch at := a.(type) {
	case *Custom:
		return at.Ref == b.(*Custom).Ref
	case *List:
		return Equal(at.Elem, b.(*List).Elem)
	case *Map:
		bm := b.(*Map)
		return Equal(at.Key, bm.Key) && Equal(at.Value, bm.Value)
	}
	return true
}

// CustomRefs returns the custom references held by vt, directly or as list
// element, map key or map value.
func CustomRefs(vt ValueType) []*Custom {
	switch t := vt.(type) {
	case *Custom:
		return []*Custom{t}
	case *List:
		return CustomRefs(t.Elem)
	case *Map:
		return append(CustomRefs(t.Key), CustomRefs(t.Value)...)
	}
	return nil
}
