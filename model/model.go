// Package model defines the resolved schema representation produced by the
// compiler and consumed by plugins. Values in this package are populated by
// the compiler passes; plugins should treat them as read only.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// SupportedVersion is the only schema version the compiler accepts.
const SupportedVersion = 1

// Location identifies a source line for diagnostics.
type Location struct {
	File string // source file (or package name for in-memory sources)
	Line int    // 1-based line index
	Text string // raw line text, before comment stripping
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool { return l.File == "" && l.Line == 0 }

func (l Location) String() string {
	if l.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Modifier is the kind tag of a Type. The zero value is a plain struct.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierEnum
	ModifierUnion
)

func (m Modifier) String() string {
	switch m {
	case ModifierEnum:
		return "enum"
	case ModifierUnion:
		return "union"
	default:
		return ""
	}
}

// ParseModifier maps a header keyword to a Modifier.
func ParseModifier(s string) (Modifier, bool) {
	switch s {
	case "enum":
		return ModifierEnum, true
	case "union":
		return ModifierUnion, true
	}
	return ModifierNone, false
}

// Package is one compiled schema file.
type Package struct {
	Name      string   // lowercased file base name
	Directory string   // optional directory prefix, e.g. "utils/shared"
	Version   int      // schema version
	ID        string   // MD5 of "Directory.Name", or of Name when Directory is empty
	Imports   []string // imported package names, lowercased, insertion ordered
	Types     []*Type  // ordered by FullName
}

// NewPackage builds a package from its source name. A name containing '/'
// is split into directory and package name.
func NewPackage(sourceName string, version int) *Package {
	dir, name := SplitPackagePath(strings.ToLower(sourceName))
	return &Package{
		Name:      name,
		Directory: dir,
		Version:   version,
		ID:        PackageID(dir, name),
	}
}

// Path returns "Directory/Name", or Name without a directory.
func (p *Package) Path() string {
	if p.Directory == "" {
		return p.Name
	}
	return p.Directory + "/" + p.Name
}

// HasImport reports whether name is in the import set.
func (p *Package) HasImport(name string) bool {
	for _, imp := range p.Imports {
		if imp == name {
			return true
		}
	}
	return false
}

// AddImport adds name to the import set. It returns false when the name is
// already imported.
func (p *Package) AddImport(name string) bool {
	if p.HasImport(name) {
		return false
	}
	p.Imports = append(p.Imports, name)
	return true
}

// AddType inserts t keeping Types ordered by FullName.
func (p *Package) AddType(t *Type) {
	i := sort.Search(len(p.Types), func(i int) bool { return p.Types[i].FullName() >= t.FullName() })
	p.Types = append(p.Types, nil)
	copy(p.Types[i+1:], p.Types[i:])
	p.Types[i] = t
}

// Type looks up a type by its declared name.
func (p *Package) Type(name string) (*Type, bool) {
	id := TypeID(name)
	for _, t := range p.Types {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Type is a struct, enum or union declared within a package.
type Type struct {
	Name     string
	Package  string
	Modifier Modifier
	ID       string   // MD5 of Name
	Fields   []*Field // ordered by Index
	Location Location // header line
}

// FullName returns "package.Name".
func (t *Type) FullName() string { return t.Package + "." + t.Name }

// Field returns the field declared with name.
func (t *Type) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func (t *Type) String() string {
	return fmt.Sprintf("Type: %s - Modifier [%s] - Fields [%d]", t.Name, t.Modifier, len(t.Fields))
}

// Field is a named, indexed member of a Type.
type Field struct {
	Name      string
	Index     int
	ValueType ValueType // nil for enum members
	Nullable  bool
	Location  Location

	// Raw default value and metadata text as written in the source. They are
	// kept after resolution for diagnostics.
	RawDefault  string
	RawMetadata string

	defaultValue Value
	metadata     map[string]Value
	generated    bool
}

// HasDefault reports whether the field declares a default value.
func (f *Field) HasDefault() bool { return f.RawDefault != "" }

// Default returns the resolved default value. It is nil until the default
// generation pass has run, or when the field has none.
func (f *Field) Default() Value { return f.defaultValue }

// Metadata returns the resolved metadata map, nil when none was declared.
func (f *Field) Metadata() map[string]Value { return f.metadata }

// Generated reports whether the default value and metadata were resolved.
func (f *Field) Generated() bool { return f.generated }

// Resolve stores the typed default value and metadata. Only the first call
// has any effect; it reports whether the values were stored.
func (f *Field) Resolve(def Value, meta map[string]Value) bool {
	if f.generated {
		return false
	}
	f.defaultValue = def
	f.metadata = meta
	f.generated = true
	return true
}

func (f *Field) String() string {
	vt := "-"
	if f.ValueType != nil {
		vt = f.ValueType.String()
	}
	def := f.RawDefault
	if f.defaultValue != nil {
		def = f.defaultValue.Literal()
	}
	return fmt.Sprintf("Field: %s - Index [%d] - Type [%s] - Default Value [%s] - Nullable [%t]", f.Name, f.Index, vt, def, f.Nullable)
}
