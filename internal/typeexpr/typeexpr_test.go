package typeexpr

import (
	"testing"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/model"
)

func TestParse_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want string
		kind model.Kind
	}{
		{"string", "string", model.KindPrimitive},
		{"binary", "binary", model.KindPrimitive},
		{"MyEnum", "MyEnum", model.KindCustom},
		{"pkg.MyEnum", "pkg.MyEnum", model.KindCustom},
		{"_Hidden", "_Hidden", model.KindCustom},
		{"list(string)", "list(string)", model.KindList},
		{"list(  string )", "list(string)", model.KindList},
		{"map(int8,string)", "map(int8,string)", model.KindMap},
		{"map( int8 ,  other.Color )", "map(int8,other.Color)", model.KindMap},
	}
	for _, tc := range cases {
		vt, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if vt.Kind() != tc.kind {
			t.Errorf("Parse(%q) kind = %v, want %v", tc.in, vt.Kind(), tc.kind)
		}
		if vt.String() != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.in, vt.String(), tc.want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		in   string
		code string
	}{
		{"", diag.CodeUnknownType},
		{"int", diag.CodeUnknownType},
		{"myType", diag.CodeUnknownType},
		{"pkg.lower", diag.CodeUnknownType},
		{"set(string)", diag.CodeUnknownType},
		{"list(map(string,int32))", diag.CodeNestedContainer},
		{"map(int8,list(string))", diag.CodeNestedContainer},
		{"map(list(string),int8)", diag.CodeNestedContainer},
		{"list(list(string))", diag.CodeNestedContainer},
		{"map(a)", diag.CodeInvalidTypeArity},
		{"map(a,b,c)", diag.CodeInvalidTypeArity},
		{"map(string,)", diag.CodeInvalidTypeArity},
		{"list(a,b)", diag.CodeInvalidTypeArity},
		{"list()", diag.CodeInvalidTypeArity},
		{"list(string", diag.CodeInvalidTypeExpression},
		{"list(string))", diag.CodeInvalidTypeExpression},
		{"string)", diag.CodeInvalidTypeExpression},
		{"list(int)", diag.CodeUnknownType},
	}
	for _, tc := range cases {
		_, err := Parse(tc.in)
		if err == nil {
			t.Fatalf("Parse(%q): expected error %s", tc.in, tc.code)
		}
		if !diag.HasCode(err, tc.code) {
			t.Errorf("Parse(%q) error = %v, want code %s", tc.in, err, tc.code)
		}
	}
}

func TestParse_WhitespaceInsensitive(t *testing.T) {
	a, err := Parse("list(  string )")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("list(string)")
	if err != nil {
		t.Fatal(err)
	}
	if !model.Equal(a, b) {
		t.Fatalf("expected %v == %v", a, b)
	}
}

func TestParse_ComponentTypes(t *testing.T) {
	vt, err := Parse("map(uint16, Color)")
	if err != nil {
		t.Fatal(err)
	}
	m, ok := vt.(*model.Map)
	if !ok {
		t.Fatalf("expected *model.Map, got %T", vt)
	}
	if m.Key.TypeCode() != 5 {
		t.Errorf("key type code = %d, want 5", m.Key.TypeCode())
	}
	if m.Value.TypeCode() != model.CodeCustom {
		t.Errorf("value type code = %d, want %d", m.Value.TypeCode(), model.CodeCustom)
	}
}

func TestNamePatterns(t *testing.T) {
	for _, s := range []string{"Animal", "_Private", "HTTPServer", "V2"} {
		if !IsTypeName(s) {
			t.Errorf("IsTypeName(%q) = false", s)
		}
	}
	for _, s := range []string{"animal", "pkg.Animal", "2Fast", "Bad-Name", ""} {
		if IsTypeName(s) {
			t.Errorf("IsTypeName(%q) = true", s)
		}
	}
	if !IsCustomName("shared.Color") || IsCustomName("shared.color") || IsCustomName("a.b.Color") {
		t.Error("unexpected custom name classification")
	}
}
