// Package literal converts raw default-value and metadata text into typed
// model values. It runs after every type is registered because custom
// defaults refer to enum and union members by name.
package literal

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/internal/split"
	"github.com/reoring/mpschema/model"
)

// Resolver looks up declared types on behalf of custom default values.
type Resolver interface {
	// ResolveType returns the type name declared in package pkg. An empty
	// pkg refers to the package owning the field being resolved.
	ResolveType(pkg, name string) (*model.Type, error)
}

// Parse resolves raw against the declared value type vt. Returned errors
// are *diag.Issue values without a location.
func Parse(raw string, vt model.ValueType, r Resolver) (model.Value, error) {
	return parse(strings.TrimSpace(raw), vt, r, false)
}

func parse(raw string, vt model.ValueType, r Resolver, nested bool) (model.Value, error) {
	if raw == "" {
		return nil, diag.New(model.Location{}, diag.CodeInvalidDefaultValue, "")
	}
	switch t := vt.(type) {
	case *model.Primitive:
		return parsePrimitive(raw, t.Name)
	case *model.List:
		if nested {
			return nil, nestedErr(raw)
		}
		return parseList(raw, t, r)
	case *model.Map:
		if nested {
			return nil, nestedErr(raw)
		}
		return parseMap(raw, t, r)
	case *model.Custom:
		return parseCustom(raw, t, r)
	case nil:
		return nil, diag.Internal("default value %q has no declared type", raw)
	}
	return nil, diag.Internal("value type %T could not be recognized", vt)
}

func nestedErr(raw string) error {
	return diag.Errorf(model.Location{}, diag.CodeNestedContainer, "list and map default values cannot be nested, given %s", raw)
}

func parsePrimitive(raw, name string) (model.Value, error) {
	switch name {
	case model.String:
		if strings.HasPrefix(raw, `"`) {
			s, err := strconv.Unquote(raw)
			if err != nil {
				return nil, diag.Wrap(model.Location{}, diag.CodeInvalidDefaultValue, err, "invalid string literal %s", raw)
			}
			return model.StringValue(s), nil
		}
		return model.StringValue(raw), nil
	case model.Boolean:
		switch raw {
		case "true":
			return model.BoolValue(true), nil
		case "false":
			return model.BoolValue(false), nil
		}
		return nil, invalid(raw, name, nil)
	case model.Float32, model.Float64:
		bits := 64
		if name == model.Float32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(raw, bits)
		if err != nil {
			return nil, numErr(raw, name, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, invalid(raw, name, nil)
		}
		return model.FloatValue{V: f, Bits: bits}, nil
	case model.Int8, model.Int16, model.Int32, model.Int64:
		n, err := strconv.ParseInt(raw, 10, intBits(name))
		if err != nil {
			return nil, numErr(raw, name, err)
		}
		return model.IntValue(n), nil
	case model.Uint8, model.Uint16, model.Uint32, model.Uint64:
		if strings.HasPrefix(raw, "-") {
			if _, err := strconv.ParseInt(raw, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
				return nil, overflow(raw, name)
			}
			return nil, invalid(raw, name, nil)
		}
		n, err := strconv.ParseUint(raw, 10, intBits(name))
		if err != nil {
			return nil, numErr(raw, name, err)
		}
		return model.UintValue(n), nil
	case model.Binary:
		return nil, diag.New(model.Location{}, diag.CodeIllegalDefaultForBinary, "binary fields cannot declare default values")
	}
	return nil, diag.Internal("primitive type %q could not be recognized", name)
}

func intBits(name string) int {
	switch name {
	case model.Int8, model.Uint8:
		return 8
	case model.Int16, model.Uint16:
		return 16
	case model.Int32, model.Uint32:
		return 32
	}
	return 64
}

func numErr(raw, name string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return overflow(raw, name)
	}
	return invalid(raw, name, err)
}

func overflow(raw, name string) error {
	return diag.Errorf(model.Location{}, diag.CodeDefaultValueOverflow, "default value %s is out of range for %s", raw, name)
}

func invalid(raw, name string, cause error) error {
	return diag.Wrap(model.Location{}, diag.CodeInvalidDefaultValue, cause, "default value %s is not a valid %s", raw, name)
}

func parseList(raw string, t *model.List, r Resolver) (model.Value, error) {
	inner, ok := split.Unwrap(raw, '[', ']')
	if !ok {
		return nil, diag.Errorf(model.Location{}, diag.CodeInvalidDefaultValue, "list default values must be enclosed in brackets, given %s", raw)
	}
	parts := split.TopLevel(inner, ',')
	out := make(model.ListValue, 0, len(parts))
	for _, p := range parts {
		v, err := element(p, t.Elem, r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseMap(raw string, t *model.Map, r Resolver) (model.Value, error) {
	inner, ok := split.Unwrap(raw, '[', ']')
	if !ok {
		return nil, diag.Errorf(model.Location{}, diag.CodeInvalidDefaultValue, "map default values must be enclosed in brackets, given %s", raw)
	}
	parts := split.TopLevel(inner, ',')
	out := make(model.MapValue, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		pair, _ := split.Unwrap(p, '(', ')')
		kv := split.TopLevel(pair, ':')
		if len(kv) != 2 {
			return nil, diag.Errorf(model.Location{}, diag.CodeInvalidDefaultValue, "map entries must be written as (key:value), given %s", p)
		}
		k, err := element(kv[0], t.Key, r)
		if err != nil {
			return nil, err
		}
		if seen[k.Literal()] {
			return nil, diag.Errorf(model.Location{}, diag.CodeInvalidDefaultValue, "duplicate map key %s", k.Literal())
		}
		seen[k.Literal()] = true
		v, err := element(kv[1], t.Value, r)
		if err != nil {
			return nil, err
		}
		out = append(out, model.MapEntry{Key: k, Value: v})
	}
	return out, nil
}

// element parses a list element or map key/value, which may not be a
// container literal.
func element(raw string, vt model.ValueType, r Resolver) (model.Value, error) {
	if strings.HasPrefix(raw, "[") {
		return nil, nestedErr(raw)
	}
	return parse(raw, vt, r, true)
}

func parseCustom(raw string, declared *model.Custom, r Resolver) (model.Value, error) {
	tokens := strings.Split(raw, ".")
	if len(tokens) < 2 || len(tokens) > 3 {
		return nil, diag.Errorf(model.Location{}, diag.CodeInvalidDefaultValue, "custom default values must be written as [package.]Type.member, given %s", raw)
	}
	for _, tok := range tokens {
		if !isIdent(tok) {
			return nil, diag.Errorf(model.Location{}, diag.CodeInvalidDefaultValue, "invalid custom default value %s", raw)
		}
	}
	var pkg string
	if len(tokens) == 3 {
		pkg, tokens = strings.ToLower(tokens[0]), tokens[1:]
	}
	typeName, member := tokens[0], tokens[1]
	if r == nil {
		return nil, diag.Internal("custom default value %s resolved without a type resolver", raw)
	}

	t, err := r.ResolveType(pkg, typeName)
	if err != nil {
		return nil, err
	}
	if t.Modifier == model.ModifierNone {
		return nil, diag.Errorf(model.Location{}, diag.CodeIllegalDefaultForStruct, "type %s is a struct; only enum and union members can be default values", t.FullName())
	}
	if _, ok := t.Field(member); !ok {
		return nil, diag.Errorf(model.Location{}, diag.CodeUnknownMember, "type %s does not declare %s", t.FullName(), member)
	}
	// An unresolvable declared type is reported by type verification.
	dp, dn := declared.Split()
	if want, err := r.ResolveType(strings.ToLower(dp), dn); err == nil && (want.ID != t.ID || want.Package != t.Package) {
		return nil, diag.Errorf(model.Location{}, diag.CodeDefaultValueTypeMismatch, "default value %s is not a member of %s", raw, want.FullName())
	}
	return model.CustomRef{TypeID: t.ID, Type: t.Name, Package: t.Package, Member: member}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
