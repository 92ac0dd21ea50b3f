package scan

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw       string
		sanitized string
		text      string
	}{
		{"\tname:string 0\r\n", "name:string 0", "name:string 0"},
		{"   version:1   ", "version:1", "version:1"},
		{"name:string 0 // the name", "name:string 0 // the name", "name:string 0"},
		{"// only a comment", "// only a comment", ""},
		{`url:string 0 = "http://example.com"`, `url:string 0 = "http://example.com"`, `url:string 0 = "http://example.com"`},
		{`path:string 0 = a\//b`, `path:string 0 = a\//b`, `path:string 0 = a\//b`},
		{"", "", ""},
	}
	for _, c := range cases {
		sanitized, text := Normalize(c.raw)
		if sanitized != c.sanitized || text != c.text {
			t.Errorf("Normalize(%q) = (%q, %q), want (%q, %q)", c.raw, sanitized, text, c.sanitized, c.text)
		}
	}
}

func TestScanner_CountsBlankLines(t *testing.T) {
	src := "version:1\n\n// comment\ntype A {\n}"
	s := New(strings.NewReader(src), "a.mpack")

	var lines []Line
	for s.Scan() {
		lines = append(lines, s.Line())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if !lines[1].Blank() || !lines[2].Blank() {
		t.Fatalf("expected lines 2 and 3 to be blank")
	}
	if lines[2].Loc.Text != "// comment" {
		t.Fatalf("raw text should keep the comment, got %q", lines[2].Loc.Text)
	}
	last := lines[4]
	if last.Loc.Line != 5 || last.Loc.File != "a.mpack" || last.Text != "}" {
		t.Fatalf("unexpected last line: %+v", last)
	}
}

func TestScanner_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200_000)
	s := New(strings.NewReader(long+"\nnext"), "f")
	if !s.Scan() || len(s.Line().Text) != len(long) {
		t.Fatalf("long line not read in full")
	}
	if !s.Scan() || s.Line().Text != "next" || s.Line().Loc.Line != 2 {
		t.Fatalf("unexpected second line: %+v", s.Line())
	}
	if s.Scan() {
		t.Fatalf("expected end of input")
	}
}
