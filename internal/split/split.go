// Package split holds the small, quote- and bracket-aware string splitting
// helpers shared by the grammar, type-expression and literal parsers.
package split

import "strings"

// walker tracks nesting while scanning a string byte by byte.
type walker struct {
	depth   int
	inQuote bool
	escaped bool
}

// step consumes c and reports whether it sits at the top level, outside any
// quote, bracket or parenthesis.
func (w *walker) step(c byte) bool {
	if w.inQuote {
		switch {
		case w.escaped:
			w.escaped = false
		case c == '\\':
			w.escaped = true
		case c == '"':
			w.inQuote = false
		}
		return false
	}
	switch c {
	case '"':
		w.inQuote = true
		return false
	case '(', '[':
		w.depth++
		return false
	case ')', ']':
		w.depth--
		return false
	}
	return w.depth == 0
}

// TopLevel splits s on sep occurrences that are outside quotes, brackets and
// parentheses. Parts are trimmed. An empty s yields no parts.
func TopLevel(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		parts []string
		w     walker
		start int
	)
	for i := 0; i < len(s); i++ {
		if w.step(s[i]) && s[i] == sep {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// IndexTopLevel returns the index of the first byte of chars found outside
// quotes, brackets and parentheses, or -1.
func IndexTopLevel(s, chars string) int {
	var w walker
	for i := 0; i < len(s); i++ {
		if w.step(s[i]) && strings.IndexByte(chars, s[i]) >= 0 {
			return i
		}
	}
	return -1
}

// IndexUnquoted returns the index of the first byte of chars found outside
// double quotes, regardless of bracket nesting, or -1.
func IndexUnquoted(s, chars string) int {
	var w walker
	for i := 0; i < len(s); i++ {
		c := s[i]
		wasQuoted := w.inQuote
		w.step(c)
		if !wasQuoted && c != '"' && strings.IndexByte(chars, c) >= 0 {
			return i
		}
	}
	return -1
}

// Balanced reports whether parentheses, brackets and quotes in s are closed.
func Balanced(s string) bool {
	var w walker
	for i := 0; i < len(s); i++ {
		w.step(s[i])
		if w.depth < 0 {
			return false
		}
	}
	return w.depth == 0 && !w.inQuote
}

// Unwrap removes one pair of open/close delimiters around s when present.
func Unwrap(s string, open, close byte) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == open && s[len(s)-1] == close {
		return strings.TrimSpace(s[1 : len(s)-1]), true
	}
	return s, false
}
