// Package typeexpr resolves field type expressions such as "string",
// "list(MyEnum)" or "map(int8, string)" into model value types.
package typeexpr

import (
	"regexp"
	"strings"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/internal/split"
	"github.com/reoring/mpschema/model"
)

const (
	listKeyword = "list"
	mapKeyword  = "map"
)

// customName matches "Type" and "pkg.Type". The type part starts with an
// uppercase letter or underscore, which keeps lowercase typos such as "int"
// from being taken as custom references.
var customName = regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_]*\.)?[A-Z_][A-Za-z0-9_]*$`)

var typeName = regexp.MustCompile(`^[A-Z_][A-Za-z0-9_]*$`)

// IsCustomName reports whether s is a valid custom type reference.
func IsCustomName(s string) bool { return customName.MatchString(s) }

// IsTypeName reports whether s is a valid name for a type declaration.
func IsTypeName(s string) bool { return typeName.MatchString(s) }

// Parse resolves a type expression. Returned errors are *diag.Issue values
// without a location.
func Parse(expr string) (model.ValueType, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, diag.New(model.Location{}, diag.CodeUnknownType, "missing value type")
	}
	open := strings.IndexByte(expr, '(')
	if open < 0 {
		if strings.IndexByte(expr, ')') >= 0 {
			return nil, diag.Errorf(model.Location{}, diag.CodeInvalidTypeExpression, "unbalanced parentheses in type %q", expr)
		}
		return parseName(expr)
	}
	if !strings.HasSuffix(expr, ")") || !split.Balanced(expr) {
		return nil, diag.Errorf(model.Location{}, diag.CodeInvalidTypeExpression, "malformed type expression %q", expr)
	}

	head := strings.TrimSpace(expr[:open])
	args := split.TopLevel(expr[open+1:len(expr)-1], ',')
	switch head {
	case listKeyword:
		if len(args) != 1 || args[0] == "" {
			return nil, diag.Errorf(model.Location{}, diag.CodeInvalidTypeArity, "list types can only specify one element type, given %q", expr)
		}
		elem, err := parseComponent(args[0])
		if err != nil {
			return nil, err
		}
		return &model.List{Elem: elem}, nil
	case mapKeyword:
		if len(args) != 2 || args[0] == "" || args[1] == "" {
			return nil, diag.Errorf(model.Location{}, diag.CodeInvalidTypeArity, "map types should specify key and value types, given %q", expr)
		}
		key, err := parseComponent(args[0])
		if err != nil {
			return nil, err
		}
		val, err := parseComponent(args[1])
		if err != nil {
			return nil, err
		}
		return &model.Map{Key: key, Value: val}, nil
	default:
		return nil, diag.Errorf(model.Location{}, diag.CodeUnknownType, "only list and map types can have element types, given %q", head)
	}
}

// parseComponent resolves a list element or map key/value, which may not be
// a container itself.
func parseComponent(expr string) (model.ValueType, error) {
	if open := strings.IndexByte(expr, '('); open >= 0 {
		head := strings.TrimSpace(expr[:open])
		if head == listKeyword || head == mapKeyword {
			return nil, diag.Errorf(model.Location{}, diag.CodeNestedContainer, "map and lists cannot store other lists or maps, given %q", expr)
		}
	}
	vt, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	if model.IsContainer(vt) {
		return nil, diag.New(model.Location{}, diag.CodeNestedContainer, "")
	}
	return vt, nil
}

func parseName(name string) (model.ValueType, error) {
	if model.IsPrimitive(name) {
		return &model.Primitive{Name: name}, nil
	}
	if IsCustomName(name) {
		return &model.Custom{Ref: name}, nil
	}
	return nil, diag.Errorf(model.Location{}, diag.CodeUnknownType, "unknown primitive type %s", name)
}
