package model

import (
	"strconv"
	"strings"
)

// ValueKind identifies a Value variant.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueBool
	ValueInt
	ValueUint
	ValueFloat
	ValueList
	ValueMap
	ValueCustom
)

// Value is a resolved default value or metadata value. The set of
// implementations is closed: StringValue, BoolValue, IntValue, UintValue,
// FloatValue, ListValue, MapValue and CustomRef.
type Value interface {
	ValueKind() ValueKind
	// Literal renders the canonical source form of the value.
	Literal() string
	value()
}

type StringValue string

func (StringValue) ValueKind() ValueKind { return ValueString }
func (v StringValue) Literal() string    { return strconv.Quote(string(v)) }
func (StringValue) value()               {}

type BoolValue bool

func (BoolValue) ValueKind() ValueKind { return ValueBool }
func (v BoolValue) Literal() string    { return strconv.FormatBool(bool(v)) }
func (BoolValue) value()               {}

// IntValue holds any signed integer default (int8 through int64) and
// integer metadata.
type IntValue int64

func (IntValue) ValueKind() ValueKind { return ValueInt }
func (v IntValue) Literal() string    { return strconv.FormatInt(int64(v), 10) }
func (IntValue) value()               {}

// UintValue holds unsigned integer defaults (uint8 through uint64).
type UintValue uint64

func (UintValue) ValueKind() ValueKind { return ValueUint }
func (v UintValue) Literal() string    { return strconv.FormatUint(uint64(v), 10) }
func (UintValue) value()               {}

// FloatValue holds float32/float64 defaults and float metadata. Bits records
// the declared width so the literal renders with the right precision.
type FloatValue struct {
	V    float64
	Bits int // 32 or 64
}

func (FloatValue) ValueKind() ValueKind { return ValueFloat }
func (v FloatValue) Literal() string {
	bits := v.Bits
	if bits != 32 {
		bits = 64
	}
	return strconv.FormatFloat(v.V, 'g', -1, bits)
}
func (FloatValue) value() {}

type ListValue []Value

func (ListValue) ValueKind() ValueKind { return ValueList }
func (v ListValue) Literal() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Literal()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (ListValue) value() {}

// MapEntry is one key/value pair of a MapValue.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapValue keeps entries in declaration order; keys may be any scalar Value.
type MapValue []MapEntry

func (MapValue) ValueKind() ValueKind { return ValueMap }
func (v MapValue) Literal() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = "(" + e.Key.Literal() + ":" + e.Value.Literal() + ")"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (MapValue) value() {}

// CustomRef is a resolved reference to an enum or union member used as a
// default value.
type CustomRef struct {
	TypeID  string
	Type    string // declared type name
	Package string // owning package name
	Member  string
}

func (CustomRef) ValueKind() ValueKind { return ValueCustom }
func (v CustomRef) Literal() string    { return v.Package + "." + v.Type + "." + v.Member }
func (CustomRef) value()               {}
