package wire

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/reoring/mpschema/model"
)

// Schema is the document sent to a plugin.
type Schema struct {
	Encoding Encoding  `json:"encoding" msgpack:"encoding"`
	Packages []Package `json:"packages" msgpack:"packages"`
}

type Package struct {
	ID        string   `json:"id" msgpack:"id"`
	Version   int      `json:"version" msgpack:"version"`
	Name      string   `json:"name" msgpack:"name"`
	Directory string   `json:"directory,omitempty" msgpack:"directory,omitempty"`
	Imports   []string `json:"imports" msgpack:"imports"`
	Types     []Type   `json:"types" msgpack:"types"`
}

type Type struct {
	ID       string  `json:"id" msgpack:"id"`
	Name     string  `json:"name" msgpack:"name"`
	Package  string  `json:"package" msgpack:"package"`
	FullName string  `json:"fullName" msgpack:"fullName"`
	Modifier string  `json:"modifier,omitempty" msgpack:"modifier,omitempty"`
	Fields   []Field `json:"fields" msgpack:"fields"`
}

type Field struct {
	Name         string         `json:"name" msgpack:"name"`
	Index        int            `json:"index" msgpack:"index"`
	IsNullable   bool           `json:"isNullable" msgpack:"isNullable"`
	Type         *TypeRef       `json:"type,omitempty" msgpack:"type,omitempty"`
	DefaultValue any            `json:"defaultValue,omitempty" msgpack:"defaultValue,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
}

// TypeRef describes a field value type. Type holds the primitive name or the
// custom reference; list and map types describe their components.
type TypeRef struct {
	DataType    string   `json:"dataType" msgpack:"dataType"`
	Type        string   `json:"type,omitempty" msgpack:"type,omitempty"`
	ElementType *TypeRef `json:"elementType,omitempty" msgpack:"elementType,omitempty"`
	KeyType     *TypeRef `json:"keyType,omitempty" msgpack:"keyType,omitempty"`
	ValueType   *TypeRef `json:"valueType,omitempty" msgpack:"valueType,omitempty"`
}

// MapEntry is the wire form of one map default value entry.
type MapEntry struct {
	Key   any `json:"key" msgpack:"key"`
	Value any `json:"value" msgpack:"value"`
}

// CustomValue is the wire form of an enum or union member default.
type CustomValue struct {
	TypeID string `json:"typeId" msgpack:"typeId"`
	Type   string `json:"type" msgpack:"type"`
	Value  string `json:"value" msgpack:"value"`
}

// NewSchema converts compiled packages to their wire form.
func NewSchema(enc Encoding, pkgs []*model.Package) Schema {
	return Schema{
		Encoding: enc,
		Packages: lo.Map(pkgs, func(p *model.Package, _ int) Package { return newPackage(p) }),
	}
}

// EncodeSchema serializes pkgs with enc.
func EncodeSchema(enc Encoding, pkgs []*model.Package) ([]byte, error) {
	b, err := enc.marshal(NewSchema(enc, pkgs))
	if err != nil {
		return nil, fmt.Errorf("wire: encoding schema: %w", err)
	}
	return b, nil
}

// DecodeSchema parses a document produced by EncodeSchema. Default and
// metadata values decode to generic JSON or MessagePack values.
func DecodeSchema(enc Encoding, b []byte) (Schema, error) {
	var s Schema
	if err := enc.unmarshal(b, &s); err != nil {
		return Schema{}, fmt.Errorf("wire: decoding %s schema: %w", enc, err)
	}
	return s, nil
}

func newPackage(p *model.Package) Package {
	imports := p.Imports
	if imports == nil {
		imports = []string{}
	}
	return Package{
		ID:        p.ID,
		Version:   p.Version,
		Name:      p.Name,
		Directory: p.Directory,
		Imports:   imports,
		Types:     lo.Map(p.Types, func(t *model.Type, _ int) Type { return newType(t) }),
	}
}

func newType(t *model.Type) Type {
	return Type{
		ID:       t.ID,
		Name:     t.Name,
		Package:  t.Package,
		FullName: t.FullName(),
		Modifier: t.Modifier.String(),
		Fields:   lo.Map(t.Fields, func(f *model.Field, _ int) Field { return newField(f) }),
	}
}

func newField(f *model.Field) Field {
	out := Field{
		Name:       f.Name,
		Index:      f.Index,
		IsNullable: f.Nullable,
		Type:       NewTypeRef(f.ValueType),
	}
	if v := f.Default(); v != nil {
		out.DefaultValue = Value(v)
	}
	if md := f.Metadata(); len(md) > 0 {
		out.Metadata = make(map[string]any, len(md))
		for k, v := range md {
			out.Metadata[k] = Value(v)
		}
	}
	return out
}

// NewTypeRef describes vt; nil for enum members.
func NewTypeRef(vt model.ValueType) *TypeRef {
	switch t := vt.(type) {
	case *model.Primitive:
		return &TypeRef{DataType: "primitive", Type: t.Name}
	case *model.Custom:
		return &TypeRef{DataType: "custom", Type: t.Ref}
	case *model.List:
		return &TypeRef{DataType: "list", ElementType: NewTypeRef(t.Elem)}
	case *model.Map:
		return &TypeRef{DataType: "map", KeyType: NewTypeRef(t.Key), ValueType: NewTypeRef(t.Value)}
	}
	return nil
}

// Value converts a resolved value to a plain value both encoders handle:
// scalars map to Go scalars, lists to slices, maps to []MapEntry (keys may
// be non-strings) and custom references to CustomValue.
func Value(v model.Value) any {
	switch t := v.(type) {
	case model.StringValue:
		return string(t)
	case model.BoolValue:
		return bool(t)
	case model.IntValue:
		return int64(t)
	case model.UintValue:
		return uint64(t)
	case model.FloatValue:
		if t.Bits == 32 {
			return float32(t.V)
		}
		return t.V
	case model.ListValue:
		return lo.Map(t, func(e model.Value, _ int) any { return Value(e) })
	case model.MapValue:
		return lo.Map(t, func(e model.MapEntry, _ int) MapEntry {
			return MapEntry{Key: Value(e.Key), Value: Value(e.Value)}
		})
	case model.CustomRef:
		return CustomValue{TypeID: t.TypeID, Type: t.Type, Value: t.Member}
	}
	return nil
}
