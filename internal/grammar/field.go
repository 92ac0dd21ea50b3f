package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/internal/split"
	"github.com/reoring/mpschema/internal/typeexpr"
	"github.com/reoring/mpschema/model"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseField parses one field declaration of a type with modifier mod.
// Default value and metadata text are kept raw. Errors carry no location.
func ParseField(text string, mod model.Modifier) (*model.Field, error) {
	f, err := parseField(strings.TrimSpace(text), mod)
	if err != nil {
		return nil, err
	}
	if f.Nullable && mod != model.ModifierNone {
		return nil, diag.Errorf(model.Location{}, diag.CodeIllegalNullable, "%s fields cannot be nullable", mod)
	}
	return f, nil
}

func parseField(text string, mod model.Modifier) (*model.Field, error) {
	if mod == model.ModifierEnum {
		return parseEnumMember(text)
	}

	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		return nil, diag.Errorf(model.Location{}, diag.CodeMissingFieldType, "field %s does not declare a type", text)
	}
	f := &model.Field{}
	if err := setName(f, text[:colon]); err != nil {
		return nil, err
	}

	rest := strings.TrimSpace(text[colon+1:])
	if rest == "" {
		return nil, diag.Errorf(model.Location{}, diag.CodeMissingFieldType, "field %s does not declare a type", f.Name)
	}
	sp := split.IndexTopLevel(rest, " ")
	if sp < 0 {
		return nil, diag.Errorf(model.Location{}, diag.CodeMissingFieldIndex, "field %s does not declare an index", f.Name)
	}
	vt, err := typeexpr.Parse(rest[:sp])
	if err != nil {
		return nil, err
	}
	f.ValueType = vt

	if err := parseTail(f, strings.TrimSpace(rest[sp+1:])); err != nil {
		return nil, err
	}
	return f, nil
}

func parseEnumMember(text string) (*model.Field, error) {
	tokens := strings.Fields(text)
	if len(tokens) > 0 && strings.Contains(tokens[0], ":") {
		return nil, diag.Errorf(model.Location{}, diag.CodeEnumMemberWithType, "enum members cannot declare a type, given %s", tokens[0])
	}
	if len(tokens) != 2 {
		return nil, diag.Errorf(model.Location{}, diag.CodeInvalidEnumMember, "enum members are declared as: name index, given %s", text)
	}
	f := &model.Field{}
	if err := setName(f, tokens[0]); err != nil {
		return nil, err
	}
	idx, err := parseIndex(tokens[1])
	if err != nil {
		return nil, err
	}
	f.Index = idx
	return f, nil
}

// setName stores name, stripping the trailing '?' nullable marker.
func setName(f *model.Field, name string) error {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "?") {
		f.Nullable = true
		name = strings.TrimSpace(strings.TrimSuffix(name, "?"))
	}
	if name == "" {
		return diag.New(model.Location{}, diag.CodeMissingFieldName, "fields must declare a name")
	}
	if !fieldName.MatchString(name) {
		return diag.Errorf(model.Location{}, diag.CodeInvalidFieldName, "invalid field name %s", name)
	}
	f.Name = name
	return nil
}

func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, diag.New(model.Location{}, diag.CodeMissingFieldIndex, "fields must declare an index")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, diag.Errorf(model.Location{}, diag.CodeInvalidFieldIndex, "field index must be a non-negative integer, given %s", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, diag.Wrap(model.Location{}, diag.CodeInvalidFieldIndex, err, "field index %s is out of range", s)
	}
	return n, nil
}

// parseTail reads "index [= default] [@metadata]".
func parseTail(f *model.Field, tail string) error {
	marker := split.IndexUnquoted(tail, "=@")
	if marker < 0 {
		idx, err := parseIndex(tail)
		f.Index = idx
		return err
	}
	idx, err := parseIndex(tail[:marker])
	if err != nil {
		return err
	}
	f.Index = idx

	rest := tail[marker+1:]
	if tail[marker] == '@' {
		if split.IndexUnquoted(rest, "=") >= 0 {
			return diag.New(model.Location{}, diag.CodeMetadataBeforeDefault, "when declaring a default value and metadata, the default value must go first")
		}
		return setMetadata(f, rest)
	}

	at := split.IndexUnquoted(rest, "@")
	def := rest
	if at >= 0 {
		def = rest[:at]
	}
	def = strings.TrimSpace(def)
	if def == "" {
		return diag.Errorf(model.Location{}, diag.CodeInvalidDefaultValue, "field %s declares an empty default value", f.Name)
	}
	f.RawDefault = def
	if at < 0 {
		return nil
	}
	meta := rest[at+1:]
	if split.IndexUnquoted(meta, "=") >= 0 {
		return diag.New(model.Location{}, diag.CodeMetadataBeforeDefault, "when declaring a default value and metadata, the default value must go first")
	}
	return setMetadata(f, meta)
}

func setMetadata(f *model.Field, meta string) error {
	meta = strings.TrimSpace(meta)
	if meta == "" || split.IndexUnquoted(meta, "@") >= 0 {
		return diag.Errorf(model.Location{}, diag.CodeInvalidMetadata, "invalid characters after metadata of field %s", f.Name)
	}
	f.RawMetadata = meta
	return nil
}
