package literal

import (
	"math"
	"strconv"
	"strings"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/internal/split"
	"github.com/reoring/mpschema/model"
)

// ParseMetadata parses a metadata block such as
//
//	@(["obsolete": true], ["since"]: 2, ["note": "a, b"])
//
// The leading '@' and the outer parentheses are optional; brackets around
// entries and keys are decoration.
func ParseMetadata(raw string) (map[string]model.Value, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "@"))
	if inner, ok := split.Unwrap(raw, '(', ')'); ok {
		raw = inner
	}
	out := map[string]model.Value{}
	for _, entry := range split.TopLevel(raw, ',') {
		entry = stripBrackets(entry)
		if entry == "" {
			continue
		}
		kv := split.TopLevel(entry, ':')
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			return nil, diag.Errorf(model.Location{}, diag.CodeInvalidMetadataEntry, "metadata entries should contain exactly a key and a value, given %s", entry)
		}
		key, err := metadataKey(kv[0])
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; dup {
			return nil, diag.Errorf(model.Location{}, diag.CodeDuplicateMetadataKey, "metadata key %q is declared twice", key)
		}
		v, err := MetadataValue(kv[1])
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func metadataKey(s string) (string, error) {
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return "", diag.Errorf(model.Location{}, diag.CodeInvalidMetadataKey, "metadata keys can only be strings, given %s", s)
	}
	k, err := strconv.Unquote(s)
	if err != nil {
		return "", diag.Wrap(model.Location{}, diag.CodeInvalidMetadataKey, err, "invalid metadata key %s", s)
	}
	return k, nil
}

// MetadataValue parses a single metadata value: a quoted string, a boolean,
// an int64 or a float64, tried in that order.
func MetadataValue(s string) (model.Value, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		v, err := strconv.Unquote(s)
		if err != nil {
			return nil, diag.Wrap(model.Location{}, diag.CodeInvalidMetadataValue, err, "invalid metadata string %s", s)
		}
		return model.StringValue(v), nil
	}
	switch s {
	case "true":
		return model.BoolValue(true), nil
	case "false":
		return model.BoolValue(false), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.IntValue(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return model.FloatValue{V: f, Bits: 64}, nil
	}
	return nil, diag.Errorf(model.Location{}, diag.CodeInvalidMetadataValue, "metadata values can be only of string, boolean, int or float types, given %s", s)
}

// stripBrackets drops '[' and ']' outside double quotes.
func stripBrackets(s string) string {
	b := strings.Builder{}
	for {
		i := split.IndexUnquoted(s, "[]")
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		s = s[i+1:]
	}
	return strings.TrimSpace(b.String())
}
