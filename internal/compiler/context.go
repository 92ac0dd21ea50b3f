// Package compiler holds the parse context: the package registry, the type
// being built, the current source location and the verification passes that
// run once every source has been parsed.
package compiler

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/model"
)

// LookupPolicy selects the package searched for unqualified custom type
// references.
type LookupPolicy int

const (
	// LookupOwningPackage searches the package declaring the field.
	LookupOwningPackage LookupPolicy = iota
	// LookupFirstPackage searches the first registered package.
	LookupFirstPackage
)

func (p LookupPolicy) String() string {
	if p == LookupFirstPackage {
		return "first"
	}
	return "owning"
}

// ParseLookupPolicy maps "owning" (or "") and "first" to a policy.
func ParseLookupPolicy(s string) (LookupPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "owning":
		return LookupOwningPackage, nil
	case "first":
		return LookupFirstPackage, nil
	}
	return 0, fmt.Errorf("unknown lookup policy %q (want owning or first)", s)
}

// Options configure a Context.
type Options struct {
	Logger zerolog.Logger
	Lookup LookupPolicy
	// StrictImports requires cross-package references, in field types and
	// default values alike, to name an imported package.
	StrictImports bool
	// VerifyUnions extends type verification to union variants. Unions
	// are skipped by default.
	VerifyUnions bool
}

// Context is the state of one compilation. It is not safe for concurrent
// use; run independent compilations in separate contexts.
type Context struct {
	opts Options
	log  zerolog.Logger

	packages []*model.Package
	byName   map[string]*model.Package
	imports  map[string]model.Location // "pkg\x00import" -> declaring line

	current *model.Package
	builder *TypeBuilder
	loc     model.Location
}

// New creates an empty context.
func New(opts Options) *Context {
	c := &Context{opts: opts, log: opts.Logger}
	c.Clear()
	return c
}

// SetLocation records the line being processed. Errors raised afterwards
// without a location of their own are attributed to it.
func (c *Context) SetLocation(loc model.Location) { c.loc = loc }

// Location returns the line being processed.
func (c *Context) Location() model.Location { return c.loc }

// Logger returns the logger passes and parsers write debug events to.
func (c *Context) Logger() zerolog.Logger { return c.log }

// CurrentPackage returns the package receiving declarations, if any.
func (c *Context) CurrentPackage() *model.Package { return c.current }

// Builder returns the builder of the open type, or nil.
func (c *Context) Builder() *TypeBuilder { return c.builder }

// CreatePackage registers a package for sourceName and makes it current.
func (c *Context) CreatePackage(sourceName string, version int) (*model.Package, error) {
	p := model.NewPackage(sourceName, version)
	if p.Name == "" {
		return nil, diag.Internal("package source name %q is empty", sourceName)
	}
	if prev, ok := c.byName[p.Name]; ok {
		return nil, diag.Errorf(c.loc, diag.CodeDuplicatePackage, "package %s is declared by both %s and %s", p.Name, prev.Path(), p.Path())
	}
	c.packages = append(c.packages, p)
	c.byName[p.Name] = p
	c.current = p
	c.log.Debug().Str("pkg", p.Name).Str("dir", p.Directory).Str("id", p.ID).Msg("package created")
	return p, nil
}

// AddImport adds name to the current package's imports.
func (c *Context) AddImport(name string) error {
	if c.current == nil {
		return diag.Internal("no package is selected to add import %q", name)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return diag.New(c.loc, diag.CodeInvalidImport, "import statements require a package name")
	}
	if !c.current.AddImport(name) {
		return diag.New(c.loc, diag.CodeDuplicateImport, "package "+name+" is already imported")
	}
	c.imports[c.current.Name+"\x00"+name] = c.loc
	return nil
}

// OpenType starts building a type in the current package.
func (c *Context) OpenType(name string, mod model.Modifier) error {
	if c.current == nil {
		return diag.Internal("no package is selected to open type %s", name)
	}
	if c.builder != nil {
		return diag.Errorf(c.loc, diag.CodeUnterminatedType, "type %s is not closed before declaring %s", c.builder.Name(), name)
	}
	c.builder = NewTypeBuilder(c.current.Name, name, mod, c.loc)
	return nil
}

// EnsureEmptyFieldIndex fails when the open type already uses index.
func (c *Context) EnsureEmptyFieldIndex(index int) error {
	if c.builder == nil {
		return diag.Internal("no type is open to check field index %d", index)
	}
	if c.builder.HasIndex(index) {
		return diag.Errorf(c.loc, diag.CodeDuplicateIndex, "field index %d is already defined in type %s", index, c.builder.Name())
	}
	return nil
}

// EnsureEmptyFieldName fails when the open type already declares name.
func (c *Context) EnsureEmptyFieldName(name string) error {
	if c.builder == nil {
		return diag.Internal("no type is open to check field %s", name)
	}
	if c.builder.HasField(name) {
		return diag.Errorf(c.loc, diag.CodeDuplicateFieldName, "field %s is already defined in type %s", name, c.builder.Name())
	}
	return nil
}

// AddField adds f to the open type.
func (c *Context) AddField(f *model.Field) error {
	if c.builder == nil {
		return diag.Internal("no type is open to add field %s", f.Name)
	}
	if f.Location.IsZero() {
		f.Location = c.loc
	}
	if err := c.EnsureEmptyFieldIndex(f.Index); err != nil {
		return err
	}
	if err := c.EnsureEmptyFieldName(f.Name); err != nil {
		return err
	}
	return c.builder.Add(f)
}

// CloseType builds the open type and registers it in the current package.
func (c *Context) CloseType() (*model.Type, error) {
	if c.builder == nil {
		return nil, diag.Internal("no type is open to close")
	}
	if c.current == nil {
		return nil, diag.Internal("no package is selected to add type %s", c.builder.Name())
	}
	t, err := c.builder.Build()
	c.builder = nil
	if err != nil {
		return nil, err
	}
	c.current.AddType(t)
	c.log.Debug().Str("pkg", t.Package).Str("type", t.Name).Int("fields", len(t.Fields)).Msg("type registered")
	return t, nil
}

// EndSource finishes the current source. An open type is an error.
func (c *Context) EndSource() error {
	defer func() {
		c.current = nil
		c.builder = nil
	}()
	if c.builder != nil {
		return diag.Errorf(c.loc, diag.CodeUnterminatedType, "type %s is not closed at end of file", c.builder.Name())
	}
	return nil
}

// Packages returns the registered packages in registration order.
func (c *Context) Packages() []*model.Package {
	out := make([]*model.Package, len(c.packages))
	copy(out, c.packages)
	return out
}

// Package looks up a registered package by name.
func (c *Context) Package(name string) (*model.Package, bool) {
	p, ok := c.byName[strings.ToLower(name)]
	return p, ok
}

// GetCompiledAndClear returns the registered packages and resets the
// context.
func (c *Context) GetCompiledAndClear() []*model.Package {
	c.log.Debug().Strs("packages", lo.Map(c.packages, func(p *model.Package, _ int) string { return p.Name })).Msg("compiled")
	pkgs := c.packages
	c.Clear()
	return pkgs
}

// Clear drops every registered package and the parse state.
func (c *Context) Clear() {
	c.packages = nil
	c.byName = map[string]*model.Package{}
	c.imports = map[string]model.Location{}
	c.current = nil
	c.builder = nil
	c.loc = model.Location{}
}

// ResolveType finds the type name referenced from package from. A non-empty
// pkg searches only that package; otherwise the lookup policy decides.
func (c *Context) ResolveType(from *model.Package, pkg, name string) (*model.Type, error) {
	var target *model.Package
	switch {
	case pkg != "":
		p, ok := c.byName[strings.ToLower(pkg)]
		if !ok {
			return nil, diag.Errorf(c.loc, diag.CodeUnknownType, "package %s was not found for type %s", pkg, name)
		}
		if c.opts.StrictImports && from != nil && p != from && !imports(from, p) {
			return nil, diag.Errorf(c.loc, diag.CodeUnimportedPackage, "package %s must be imported to reference %s.%s", p.Name, pkg, name)
		}
		target = p
	case c.opts.Lookup == LookupFirstPackage:
		if len(c.packages) == 0 {
			return nil, diag.Internal("no packages are registered to resolve %s", name)
		}
		target = c.packages[0]
	default:
		if from == nil {
			return nil, diag.Internal("type %s resolved without an owning package", name)
		}
		target = from
	}
	t, ok := target.Type(name)
	if !ok {
		return nil, diag.Errorf(c.loc, diag.CodeUnknownType, "type %s was not found in package %s", name, target.Name)
	}
	return t, nil
}

func imports(from, p *model.Package) bool {
	_, ok := lo.Find(from.Imports, func(imp string) bool {
		return model.PackageID(model.SplitPackagePath(imp)) == p.ID
	})
	return ok
}

// fieldResolver resolves default-value references from one package.
type fieldResolver struct {
	c    *Context
	from *model.Package
}

func (r fieldResolver) ResolveType(pkg, name string) (*model.Type, error) {
	return r.c.ResolveType(r.from, pkg, name)
}
