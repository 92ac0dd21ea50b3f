package compiler

import (
	"strings"

	"github.com/samber/lo"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/internal/literal"
	"github.com/reoring/mpschema/model"
)

// Verify runs every pass in order and stops at the first failure.
func (c *Context) Verify() error {
	for _, pass := range []func() error{
		c.VerifyImports,
		c.GenerateDefaultValues,
		c.VerifyAllTypes,
		c.VerifyEnums,
	} {
		if err := pass(); err != nil {
			return err
		}
	}
	return nil
}

// VerifyImports checks that each import names a registered package. Imports
// with a directory ("a/b/name") are matched by directory-aware id.
func (c *Context) VerifyImports() error {
	c.log.Debug().Msg("verifying imports")
	ids := make(map[string]bool, len(c.packages))
	for _, p := range c.packages {
		ids[p.ID] = true
	}
	for _, p := range c.packages {
		for _, imp := range p.Imports {
			if loc, ok := c.imports[p.Name+"\x00"+imp]; ok {
				c.SetLocation(loc)
			}
			if !ids[model.PackageID(model.SplitPackagePath(imp))] {
				return diag.Errorf(c.loc, diag.CodeUnknownImport, "imported package %s does not exist in the compiled sources", imp)
			}
		}
	}
	return nil
}

// GenerateDefaultValues resolves the raw default value and metadata of every
// field. Fields already resolved are skipped, so the pass may run again.
func (c *Context) GenerateDefaultValues() error {
	c.log.Debug().Msg("generating default values")
	for _, p := range c.packages {
		r := fieldResolver{c: c, from: p}
		for _, t := range p.Types {
			for _, f := range t.Fields {
				if f.Generated() || (!f.HasDefault() && f.RawMetadata == "") {
					continue
				}
				c.SetLocation(f.Location)
				c.log.Debug().Str("pkg", p.Name).Str("type", t.Name).Str("field", f.Name).Msg("generating default value")

				var def model.Value
				if f.HasDefault() {
					v, err := literal.Parse(f.RawDefault, f.ValueType, r)
					if err != nil {
						return diag.Locate(err, f.Location)
					}
					def = v
				}
				var meta map[string]model.Value
				if f.RawMetadata != "" {
					m, err := literal.ParseMetadata(f.RawMetadata)
					if err != nil {
						return diag.Locate(err, f.Location)
					}
					meta = m
				}
				f.Resolve(def, meta)
			}
		}
	}
	return nil
}

// VerifyAllTypes checks that every custom reference of every struct field
// resolves to a registered type. Enums are never checked; unions only with
// Options.VerifyUnions.
func (c *Context) VerifyAllTypes() error {
	c.log.Debug().Msg("running type verification")
	for _, p := range c.packages {
		for _, t := range p.Types {
			if t.Modifier != model.ModifierNone && !(t.Modifier == model.ModifierUnion && c.opts.VerifyUnions) {
				continue
			}
			for _, f := range t.Fields {
				refs := model.CustomRefs(f.ValueType)
				if len(refs) == 0 {
					continue
				}
				c.SetLocation(f.Location)
				c.log.Debug().Str("pkg", p.Name).Str("type", t.Name).Str("field", f.Name).Msg("verifying field")
				for _, ref := range refs {
					pkg, name := ref.Split()
					if _, err := c.ResolveType(p, strings.ToLower(pkg), name); err != nil {
						return diag.Locate(err, f.Location)
					}
				}
			}
		}
	}
	return nil
}

// VerifyEnums checks that enum member indices start at zero and are
// consecutive.
func (c *Context) VerifyEnums() error {
	c.log.Debug().Msg("verifying enum types")
	for _, p := range c.packages {
		enums := lo.Filter(p.Types, func(t *model.Type, _ int) bool { return t.Modifier == model.ModifierEnum })
		for _, t := range enums {
			c.SetLocation(t.Location)
			if len(t.Fields) == 0 {
				return diag.Errorf(c.loc, diag.CodeEmptyEnum, "enum %s declares no members", t.FullName())
			}
			if first := t.Fields[0]; first.Index != 0 {
				c.SetLocation(first.Location)
				return diag.Errorf(c.loc, diag.CodeEnumDoesNotStartAtZero, "first member of enum %s should have index 0, got %d", t.FullName(), first.Index)
			}
			for i := 1; i < len(t.Fields); i++ {
				if prev, f := t.Fields[i-1], t.Fields[i]; f.Index != prev.Index+1 {
					c.SetLocation(f.Location)
					return diag.Errorf(c.loc, diag.CodeNonConsecutiveEnumIndices, "enum %s indices should be consecutive: %s has %d after %d", t.FullName(), f.Name, f.Index, prev.Index)
				}
			}
		}
	}
	return nil
}
