package model

import (
	"strings"
	"testing"
)

func TestValueLiteral(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{StringValue(`say "hi"`), `"say \"hi\""`},
		{BoolValue(true), "true"},
		{IntValue(-42), "-42"},
		{UintValue(18446744073709551615), "18446744073709551615"},
		{FloatValue{V: 0.1, Bits: 64}, "0.1"},
		{FloatValue{V: float64(float32(0.1)), Bits: 32}, "0.1"},
		{ListValue{IntValue(1), IntValue(2)}, "[1, 2]"},
		{MapValue{{Key: StringValue("a"), Value: BoolValue(false)}}, `[("a":false)]`},
		{CustomRef{Package: "shapes", Type: "Color", Member: "red"}, "shapes.Color.red"},
	}
	for _, c := range cases {
		if got := c.v.Literal(); got != c.want {
			t.Errorf("%#v.Literal() = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	str := &Primitive{Name: String}
	i32 := &Primitive{Name: Int32}
	nested := &List{Elem: &Map{Key: str, Value: i32}}
	if !Equal(nested, &List{Elem: &Map{Key: &Primitive{Name: String}, Value: &Primitive{Name: Int32}}}) {
		t.Error("structurally equal types compare unequal")
	}
	if Equal(nested, &List{Elem: str}) {
		t.Error("list(map) equals list(string)")
	}
	if Equal(&Custom{Ref: "a.T"}, &Custom{Ref: "b.T"}) {
		t.Error("custom refs with different packages compare equal")
	}
	if Equal(str, nil) || !Equal(nil, nil) {
		t.Error("nil handling")
	}
	if str.TypeCode() != 0 || (&Primitive{Name: Binary}).TypeCode() != 12 || nested.TypeCode() != CodeList {
		t.Error("unexpected type codes")
	}
}

func TestCustomRefs(t *testing.T) {
	vt := &Map{Key: &Custom{Ref: "K"}, Value: &Custom{Ref: "pkg.V"}}
	refs := CustomRefs(vt)
	if len(refs) != 2 || refs[0].Ref != "K" || refs[1].Ref != "pkg.V" {
		t.Fatalf("CustomRefs = %v", refs)
	}
	if pkg, name := refs[1].Split(); pkg != "pkg" || name != "V" {
		t.Errorf("Split = %s, %s", pkg, name)
	}
	if CustomRefs(&Primitive{Name: String}) != nil {
		t.Error("primitive has refs")
	}
	if !IsContainer(vt) || IsContainer(refs[0]) || IsContainer(nil) {
		t.Error("IsContainer")
	}
}

func TestHashID(t *testing.T) {
	if got := HashID("Animal"); got != "161E7CE7BFDC89AB4B9F52C1D4C94212" {
		t.Errorf("HashID = %s", got)
	}
	if HashID("  ") != "" {
		t.Error("blank input should have no id")
	}
	if PackageID("utils/shared", "common") != HashID("utils/shared.common") || PackageID("", "common") != HashID("common") {
		t.Error("PackageID")
	}
}

func TestSplitPackagePath(t *testing.T) {
	cases := []struct{ in, dir, name string }{
		{"common", "", "common"},
		{"utils/common", "utils", "common"},
		{"/a//b/common", "a/b", "common"},
	}
	for _, c := range cases {
		if dir, name := SplitPackagePath(c.in); dir != c.dir || name != c.name {
			t.Errorf("SplitPackagePath(%q) = %q, %q", c.in, dir, name)
		}
	}
}

func TestPackage(t *testing.T) {
	p := NewPackage("Utils/Shared/Common", 1)
	if p.Name != "common" || p.Directory != "utils/shared" || p.Path() != "utils/shared/common" {
		t.Fatalf("unexpected package %+v", p)
	}
	if !p.AddImport("base") || p.AddImport("base") || !p.HasImport("base") {
		t.Error("import set")
	}
	for _, n := range []string{"Zeta", "Alpha", "Mid"} {
		p.AddType(&Type{Name: n, Package: p.Name, ID: TypeID(n)})
	}
	var names []string
	for _, ty := range p.Types {
		names = append(names, ty.Name)
	}
	if strings.Join(names, ",") != "Alpha,Mid,Zeta" {
		t.Errorf("types not ordered: %v", names)
	}
	if ty, ok := p.Type("Mid"); !ok || ty.FullName() != "common.Mid" {
		t.Error("Type lookup")
	}
	if _, ok := p.Type("Missing"); ok {
		t.Error("found missing type")
	}
}

func TestFieldResolveOnce(t *testing.T) {
	f := &Field{Name: "n", RawDefault: "1"}
	if !f.HasDefault() || f.Generated() {
		t.Fatal("fresh field")
	}
	if !f.Resolve(IntValue(1), nil) {
		t.Fatal("first Resolve must store")
	}
	if f.Resolve(IntValue(2), nil) {
		t.Fatal("second Resolve must be ignored")
	}
	if f.Default() != IntValue(1) || !f.Generated() {
		t.Errorf("Default = %v", f.Default())
	}
}

func TestParseModifier(t *testing.T) {
	if m, ok := ParseModifier("enum"); !ok || m != ModifierEnum || m.String() != "enum" {
		t.Error("enum")
	}
	if m, ok := ParseModifier("union"); !ok || m != ModifierUnion {
		t.Error("union")
	}
	if _, ok := ParseModifier("struct"); ok {
		t.Error("struct is not a modifier")
	}
}
