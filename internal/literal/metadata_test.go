package literal

import (
	"testing"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/model"
)

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata(`@(["obsolete": true],["another":23],["hey":"another key"],["doubleKey"]:25.25)`)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]model.Value{
		"obsolete":  model.BoolValue(true),
		"another":   model.IntValue(23),
		"hey":       model.StringValue("another key"),
		"doubleKey": model.FloatValue{V: 25.25, Bits: 64},
	}
	if len(md) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(md), len(want), md)
	}
	for k, v := range want {
		if md[k] != v {
			t.Errorf("md[%q] = %#v, want %#v", k, md[k], v)
		}
	}
}

func TestParseMetadata_Forms(t *testing.T) {
	for _, raw := range []string{`(["k": true])`, `["k": true]`, `"k": true`, `@ ( [ "k" : true ] )`} {
		md, err := ParseMetadata(raw)
		if err != nil {
			t.Fatalf("ParseMetadata(%q): %v", raw, err)
		}
		if md["k"] != model.BoolValue(true) {
			t.Errorf("ParseMetadata(%q) = %v", raw, md)
		}
	}

	md, err := ParseMetadata(`(["note": "a, [b]: c"])`)
	if err != nil {
		t.Fatal(err)
	}
	if md["note"] != model.StringValue("a, [b]: c") {
		t.Errorf("quoted punctuation lost: %#v", md["note"])
	}
}

func TestParseMetadata_Errors(t *testing.T) {
	cases := []struct {
		raw  string
		code string
	}{
		{`(["a":1:2])`, diag.CodeInvalidMetadataEntry},
		{`(["a"])`, diag.CodeInvalidMetadataEntry},
		{`([23: 1])`, diag.CodeInvalidMetadataKey},
		{`([key: 1])`, diag.CodeInvalidMetadataKey},
		{`(["a": maybe])`, diag.CodeInvalidMetadataValue},
		{`(["a": 1], ["a": 2])`, diag.CodeDuplicateMetadataKey},
		{`(["a": NaN])`, diag.CodeInvalidMetadataValue},
		{`(["a": +Inf])`, diag.CodeInvalidMetadataValue},
		{`(["a": -infinity])`, diag.CodeInvalidMetadataValue},
	}
	for _, tc := range cases {
		_, err := ParseMetadata(tc.raw)
		if !diag.HasCode(err, tc.code) {
			t.Errorf("ParseMetadata(%q) error = %v, want %s", tc.raw, err, tc.code)
		}
	}
}
