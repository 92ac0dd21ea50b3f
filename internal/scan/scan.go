// Package scan splits schema sources into normalized lines and tracks the
// location of each one.
package scan

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/reoring/mpschema/model"
)

// Line is one physical source line.
type Line struct {
	Loc  model.Location // Loc.Text holds the raw text before comment stripping
	Text string         // normalized text, empty for blank lines
}

// Blank reports whether nothing remains after normalization.
func (l Line) Blank() bool { return l.Text == "" }

// Scanner reads lines from a source. Blank lines are returned too so that
// callers can keep their current location in sync.
type Scanner struct {
	r    *bufio.Reader
	file string
	n    int
	line Line
	err  error
	done bool
}

// New returns a Scanner reading from r; file is used in locations.
func New(r io.Reader, file string) *Scanner {
	return &Scanner{r: bufio.NewReader(r), file: file}
}

// Scan advances to the next line. It returns false at end of input or on a
// read error; see Err.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	raw, err := s.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
			s.done = true
			return false
		}
		s.done = true
		if raw == "" {
			return false
		}
	}
	s.n++
	sanitized, text := Normalize(raw)
	s.line = Line{
		Loc:  model.Location{File: s.file, Line: s.n, Text: sanitized},
		Text: text,
	}
	return true
}

// Line returns the current line.
func (s *Scanner) Line() Line { return s.line }

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error { return s.err }

// Normalize strips tabs and carriage returns and trims the line, returning
// that sanitized form, then removes any comment and trims again.
func Normalize(raw string) (sanitized, text string) {
	sanitized = strings.TrimSpace(strings.NewReplacer("\t", "", "\r", "", "\n", "").Replace(raw))
	if i := CommentIndex(sanitized); i >= 0 {
		return sanitized, strings.TrimSpace(sanitized[:i])
	}
	return sanitized, sanitized
}

// CommentIndex returns the offset of the first "//" that starts a comment,
// or -1. A "//" inside a double-quoted literal or preceded by a backslash
// does not start a comment.
func CommentIndex(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case '/':
			if !inQuote && i+1 < len(s) && s[i+1] == '/' {
				return i
			}
		}
	}
	return -1
}
