package compiler

import (
	"sort"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/model"
)

// TypeBuilder accumulates the fields of the type being declared. It is
// consumed by Build; a consumed builder rejects further use.
type TypeBuilder struct {
	name     string
	pkg      string
	modifier model.Modifier
	loc      model.Location

	fields  []*model.Field
	indices map[int]bool
	names   map[string]bool
	built   bool
}

// NewTypeBuilder starts a type declared at loc.
func NewTypeBuilder(pkg, name string, mod model.Modifier, loc model.Location) *TypeBuilder {
	return &TypeBuilder{
		name:     name,
		pkg:      pkg,
		modifier: mod,
		loc:      loc,
		indices:  map[int]bool{},
		names:    map[string]bool{},
	}
}

func (b *TypeBuilder) Name() string             { return b.name }
func (b *TypeBuilder) Modifier() model.Modifier { return b.modifier }

// HasIndex reports whether a field already uses index.
func (b *TypeBuilder) HasIndex(index int) bool { return b.indices[index] }

// HasField reports whether a field already uses name.
func (b *TypeBuilder) HasField(name string) bool { return b.names[name] }

// Add appends f after checking index and name uniqueness.
func (b *TypeBuilder) Add(f *model.Field) error {
	if b.built {
		return diag.Internal("type %s was already built", b.name)
	}
	if f.Nullable && b.modifier != model.ModifierNone {
		return diag.Errorf(f.Location, diag.CodeIllegalNullable, "%s fields cannot be nullable", b.modifier)
	}
	if b.indices[f.Index] {
		return diag.Errorf(f.Location, diag.CodeDuplicateIndex, "field index %d is already defined in type %s", f.Index, b.name)
	}
	if b.names[f.Name] {
		return diag.Errorf(f.Location, diag.CodeDuplicateFieldName, "field %s is already defined in type %s", f.Name, b.name)
	}
	b.indices[f.Index] = true
	b.names[f.Name] = true
	b.fields = append(b.fields, f)
	return nil
}

// Build consumes the builder into a Type with fields ordered by index.
func (b *TypeBuilder) Build() (*model.Type, error) {
	if b.built {
		return nil, diag.Internal("type %s was already built", b.name)
	}
	b.built = true
	fields := make([]*model.Field, len(b.fields))
	copy(fields, b.fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Index < fields[j].Index })
	return &model.Type{
		Name:     b.name,
		Package:  b.pkg,
		Modifier: b.modifier,
		ID:       model.TypeID(b.name),
		Fields:   fields,
		Location: b.loc,
	}, nil
}
