package compiler

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/model"
)

type fieldSpec struct {
	name string
	idx  int
	typ  model.ValueType
	def  string
	meta string
}

// declare opens, fills and closes a type in the current package.
func declare(t *testing.T, c *Context, name string, mod model.Modifier, fields ...fieldSpec) {
	t.Helper()
	if err := c.OpenType(name, mod); err != nil {
		t.Fatal(err)
	}
	for _, fs := range fields {
		f := &model.Field{Name: fs.name, Index: fs.idx, ValueType: fs.typ, RawDefault: fs.def, RawMetadata: fs.meta}
		if err := c.AddField(f); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.CloseType(); err != nil {
		t.Fatal(err)
	}
}

func newPackage(t *testing.T, c *Context, name string, imports ...string) {
	t.Helper()
	if _, err := c.CreatePackage(name, model.SupportedVersion); err != nil {
		t.Fatal(err)
	}
	for _, imp := range imports {
		if err := c.AddImport(imp); err != nil {
			t.Fatal(err)
		}
	}
}

func enumMembers(indices ...int) []fieldSpec {
	out := make([]fieldSpec, len(indices))
	for i, idx := range indices {
		out[i] = fieldSpec{name: string(rune('a' + i)), idx: idx}
	}
	return out
}

func custom(ref string) model.ValueType { return &model.Custom{Ref: ref} }

func TestContext_InternalErrors(t *testing.T) {
	c := New(Options{Logger: zerolog.Nop()})
	if err := c.AddImport("x"); !diag.IsInternal(err) {
		t.Errorf("AddImport without package: %v", err)
	}
	if err := c.OpenType("T", model.ModifierNone); !diag.IsInternal(err) {
		t.Errorf("OpenType without package: %v", err)
	}
	if err := c.AddField(&model.Field{Name: "a"}); !diag.IsInternal(err) {
		t.Errorf("AddField without type: %v", err)
	}
	if _, err := c.CloseType(); !diag.IsInternal(err) {
		t.Errorf("CloseType without type: %v", err)
	}
	if err := c.EnsureEmptyFieldIndex(0); !diag.IsInternal(err) {
		t.Errorf("EnsureEmptyFieldIndex without type: %v", err)
	}
	if err := c.EnsureEmptyFieldName("a"); !diag.IsInternal(err) {
		t.Errorf("EnsureEmptyFieldName without type: %v", err)
	}
}

func TestContext_DuplicateFieldsThroughContext(t *testing.T) {
	c := New(Options{})
	newPackage(t, c, "pkg")
	if err := c.OpenType("T", model.ModifierNone); err != nil {
		t.Fatal(err)
	}
	if err := c.AddField(&model.Field{Name: "a", Index: 5, ValueType: str()}); err != nil {
		t.Fatal(err)
	}
	if err := c.AddField(&model.Field{Name: "b", Index: 5, ValueType: str()}); !diag.HasCode(err, diag.CodeDuplicateIndex) {
		t.Fatalf("expected duplicate index, got %v", err)
	}
	if err := c.AddField(&model.Field{Name: "a", Index: 6, ValueType: str()}); !diag.HasCode(err, diag.CodeDuplicateFieldName) {
		t.Fatalf("expected duplicate name, got %v", err)
	}
}

func TestContext_PackagesAndImports(t *testing.T) {
	c := New(Options{})
	p, err := c.CreatePackage("Utils/Shared/Common", 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "common" || p.Directory != "utils/shared" || p.ID != model.HashID("utils/shared.common") {
		t.Fatalf("unexpected package %+v", p)
	}
	if err := c.AddImport("Other"); err != nil {
		t.Fatal(err)
	}
	if err := c.AddImport("other"); !diag.HasCode(err, diag.CodeDuplicateImport) {
		t.Fatalf("expected duplicate import, got %v", err)
	}
	if err := c.AddImport("  "); !diag.HasCode(err, diag.CodeInvalidImport) {
		t.Fatalf("expected invalid import, got %v", err)
	}
	if _, err := c.CreatePackage("elsewhere/common", 1); !diag.HasCode(err, diag.CodeDuplicatePackage) {
		t.Fatalf("expected duplicate package, got %v", err)
	}
	if err := c.OpenType("T", model.ModifierNone); err != nil {
		t.Fatal(err)
	}
	if err := c.OpenType("U", model.ModifierNone); !diag.HasCode(err, diag.CodeUnterminatedType) {
		t.Fatalf("expected unterminated type, got %v", err)
	}
	if err := c.EndSource(); !diag.HasCode(err, diag.CodeUnterminatedType) {
		t.Fatalf("expected unterminated type at end, got %v", err)
	}
	if c.CurrentPackage() != nil || c.Builder() != nil {
		t.Fatal("EndSource should reset the current package and builder")
	}
}

func TestContext_TypesOrderedByFullName(t *testing.T) {
	c := New(Options{})
	newPackage(t, c, "pkg")
	declare(t, c, "Zebra", model.ModifierNone)
	declare(t, c, "Apple", model.ModifierNone)
	declare(t, c, "Mango", model.ModifierNone)
	p, _ := c.Package("pkg")
	got := []string{}
	for _, typ := range p.Types {
		got = append(got, typ.Name)
	}
	if len(got) != 3 || got[0] != "Apple" || got[1] != "Mango" || got[2] != "Zebra" {
		t.Fatalf("types not ordered: %v", got)
	}
}

func TestVerifyEnums(t *testing.T) {
	cases := []struct {
		name    string
		indices []int
		code    string
	}{
		{"consecutive", []int{0, 1, 2}, ""},
		{"declared out of order", []int{2, 0, 1}, ""},
		{"gap", []int{0, 2}, diag.CodeNonConsecutiveEnumIndices},
		{"starts at one", []int{1}, diag.CodeEnumDoesNotStartAtZero},
		{"empty", nil, diag.CodeEmptyEnum},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(Options{})
			newPackage(t, c, "pkg")
			declare(t, c, "T", model.ModifierEnum, enumMembers(tc.indices...)...)
			err := c.VerifyEnums()
			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !diag.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestVerifyImports(t *testing.T) {
	c := New(Options{})
	c.SetLocation(model.Location{File: "main", Line: 2, Text: `import "pkga"`})
	newPackage(t, c, "main", "pkga")
	err := c.VerifyImports()
	if !diag.HasCode(err, diag.CodeUnknownImport) {
		t.Fatalf("expected unknown import, got %v", err)
	}
	is, _ := diag.AsIssue(err)
	if is.Location.Line != 2 {
		t.Errorf("expected import line location, got %v", is.Location)
	}

	c = New(Options{})
	newPackage(t, c, "main", "lib/shared/pkga")
	newPackage(t, c, "lib/shared/pkga")
	if err := c.VerifyImports(); err != nil {
		t.Fatalf("directory import should resolve: %v", err)
	}
}

func TestVerifyAllTypes_ImportClosure(t *testing.T) {
	c := New(Options{})
	newPackage(t, c, "otherpkg")
	declare(t, c, "Present", model.ModifierNone)
	newPackage(t, c, "main")
	declare(t, c, "User", model.ModifierNone, fieldSpec{name: "x", idx: 0, typ: custom("otherpkg.SomeType")})

	if err := c.VerifyImports(); err != nil {
		t.Fatalf("VerifyImports should pass: %v", err)
	}
	if err := c.VerifyAllTypes(); !diag.HasCode(err, diag.CodeUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
}

func TestVerifyAllTypes_ContainersAndUnions(t *testing.T) {
	build := func(t *testing.T, vt model.ValueType, mod model.Modifier, opts ...Options) error {
		o := Options{}
		if len(opts) > 0 {
			o = opts[0]
		}
		c := New(o)
		newPackage(t, c, "pkg")
		declare(t, c, "Color", model.ModifierEnum, enumMembers(0)...)
		declare(t, c, "Holder", mod, fieldSpec{name: "f", idx: 0, typ: vt})
		return c.VerifyAllTypes()
	}
	ok := []model.ValueType{
		custom("Color"),
		custom("pkg.Color"),
		&model.List{Elem: custom("Color")},
		&model.Map{Key: str(), Value: custom("Color")},
	}
	for _, vt := range ok {
		if err := build(t, vt, model.ModifierNone); err != nil {
			t.Errorf("%s: %v", vt, err)
		}
	}
	bad := []model.ValueType{
		custom("Missing"),
		&model.List{Elem: custom("Missing")},
		&model.Map{Key: custom("Missing"), Value: str()},
		&model.Map{Key: str(), Value: custom("nowhere.Color")},
	}
	for _, vt := range bad {
		if err := build(t, vt, model.ModifierNone); !diag.HasCode(err, diag.CodeUnknownType) {
			t.Errorf("%s: expected unknown type, got %v", vt, err)
		}
	}
	if err := build(t, custom("Missing"), model.ModifierUnion); err != nil {
		t.Errorf("union variants are not verified by default, got %v", err)
	}
	if err := build(t, custom("Missing"), model.ModifierUnion, Options{VerifyUnions: true}); !diag.HasCode(err, diag.CodeUnknownType) {
		t.Errorf("union variants should be verified with VerifyUnions, got %v", err)
	}
	if err := build(t, custom("Color"), model.ModifierUnion, Options{VerifyUnions: true}); err != nil {
		t.Errorf("resolvable union variant: %v", err)
	}
}

func TestResolveType_LookupPolicy(t *testing.T) {
	setup := func(policy LookupPolicy) *Context {
		c := New(Options{Lookup: policy})
		newPackage(t, c, "first")
		declare(t, c, "Base", model.ModifierNone)
		newPackage(t, c, "second")
		declare(t, c, "Local", model.ModifierNone)
		declare(t, c, "User", model.ModifierNone, fieldSpec{name: "f", idx: 0, typ: custom("Local")})
		return c
	}
	if err := setup(LookupOwningPackage).VerifyAllTypes(); err != nil {
		t.Fatalf("owning lookup: %v", err)
	}
	if err := setup(LookupFirstPackage).VerifyAllTypes(); !diag.HasCode(err, diag.CodeUnknownType) {
		t.Fatalf("first-package lookup should miss Local, got %v", err)
	}
}

func TestResolveType_StrictImports(t *testing.T) {
	setup := func(strict bool, imports ...string) *Context {
		c := New(Options{StrictImports: strict})
		newPackage(t, c, "shared")
		declare(t, c, "Color", model.ModifierEnum, enumMembers(0, 1)...)
		newPackage(t, c, "main", imports...)
		declare(t, c, "User", model.ModifierNone,
			fieldSpec{name: "c", idx: 0, typ: custom("shared.Color"), def: "shared.Color.b"})
		return c
	}
	if err := setup(false).Verify(); err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if err := setup(true).Verify(); !diag.HasCode(err, diag.CodeUnimportedPackage) {
		t.Fatalf("strict without import: %v", err)
	}
	if err := setup(true, "shared").Verify(); err != nil {
		t.Fatalf("strict with import: %v", err)
	}
}

func TestGenerateDefaultValues(t *testing.T) {
	c := New(Options{})
	newPackage(t, c, "pkg")
	declare(t, c, "Color", model.ModifierEnum, enumMembers(0, 1)...)
	declare(t, c, "User", model.ModifierNone,
		fieldSpec{name: "n", idx: 0, typ: &model.Primitive{Name: model.Int32}, def: "2", meta: `(["k": true])`},
		fieldSpec{name: "c", idx: 1, typ: custom("Color"), def: "Color.b"},
		fieldSpec{name: "plain", idx: 2, typ: str()},
	)
	if err := c.GenerateDefaultValues(); err != nil {
		t.Fatal(err)
	}
	p, _ := c.Package("pkg")
	user, _ := p.Type("User")
	n, _ := user.Field("n")
	if n.Default() != model.IntValue(2) || n.Metadata()["k"] != model.BoolValue(true) {
		t.Fatalf("unexpected n: %v %v", n.Default(), n.Metadata())
	}
	cf, _ := user.Field("c")
	if ref, ok := cf.Default().(model.CustomRef); !ok || ref.Member != "b" || ref.TypeID != model.TypeID("Color") {
		t.Fatalf("unexpected custom default %#v", cf.Default())
	}
	plain, _ := user.Field("plain")
	if plain.Generated() || plain.Default() != nil {
		t.Fatal("fields without default or metadata should be left alone")
	}

	// Resolution happens at most once.
	if err := c.GenerateDefaultValues(); err != nil {
		t.Fatal(err)
	}
	if n.Resolve(model.IntValue(9), nil) || n.Default() != model.IntValue(2) {
		t.Fatal("resolved default must not be replaced")
	}
}

func TestGenerateDefaultValues_ErrorCarriesFieldLocation(t *testing.T) {
	c := New(Options{})
	newPackage(t, c, "pkg")
	loc := model.Location{File: "pkg", Line: 7, Text: "n:int8 0 = 300"}
	c.SetLocation(model.Location{File: "pkg", Line: 2})
	if err := c.OpenType("T", model.ModifierNone); err != nil {
		t.Fatal(err)
	}
	if err := c.AddField(&model.Field{Name: "n", Index: 0, ValueType: &model.Primitive{Name: model.Int8}, RawDefault: "300", Location: loc}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.CloseType(); err != nil {
		t.Fatal(err)
	}
	err := c.GenerateDefaultValues()
	is, ok := diag.AsIssue(err)
	if !ok || is.Code != diag.CodeDefaultValueOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	if is.Location != loc {
		t.Errorf("location = %v, want %v", is.Location, loc)
	}
}

func TestGetCompiledAndClear(t *testing.T) {
	c := New(Options{})
	newPackage(t, c, "b")
	newPackage(t, c, "a")
	pkgs := c.GetCompiledAndClear()
	if len(pkgs) != 2 || pkgs[0].Name != "b" || pkgs[1].Name != "a" {
		t.Fatalf("unexpected packages %v", pkgs)
	}
	if len(c.Packages()) != 0 {
		t.Fatal("context should be empty after GetCompiledAndClear")
	}
	if _, err := c.CreatePackage("b", 1); err != nil {
		t.Fatalf("cleared context should accept b again: %v", err)
	}
}

func TestParseLookupPolicy(t *testing.T) {
	for in, want := range map[string]LookupPolicy{"": LookupOwningPackage, "owning": LookupOwningPackage, "FIRST": LookupFirstPackage} {
		got, err := ParseLookupPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseLookupPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLookupPolicy("nearest"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
