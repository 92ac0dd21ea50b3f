// Package diag defines the compiler's error model: every failure is an Issue
// carrying a class, a stable code, a message and the source location it was
// detected at.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/mpschema/i18n"
	"github.com/reoring/mpschema/model"
)

// Class groups issue codes by the pipeline stage that detects them.
type Class string

const (
	ClassLex            Class = "lex"
	ClassGrammar        Class = "grammar"
	ClassTypeExpression Class = "type_expression"
	ClassLiteral        Class = "literal"
	ClassReference      Class = "reference"
	ClassStructural     Class = "structural"
	// ClassIO covers source discovery and read failures.
	ClassIO Class = "io"
	// ClassInternal signals a bug in pipeline orchestration, not bad input.
	ClassInternal Class = "internal"
)

// Issue codes.
const (
	// Lex
	CodeMissingVersion     = "missing_version"
	CodeInvalidVersion     = "invalid_version"
	CodeUnsupportedVersion = "unsupported_version"
	CodeDuplicateVersion   = "duplicate_version"
	CodeInvalidImport      = "invalid_import"
	// Grammar
	CodeImportAfterType       = "import_after_type"
	CodeDuplicateImport       = "duplicate_import"
	CodeInvalidTypeHeader     = "invalid_type_header"
	CodeInvalidTypeName       = "invalid_type_name"
	CodeInvalidTypeModifier   = "invalid_type_modifier"
	CodeFieldOutsideType      = "field_outside_type"
	CodeUnexpectedClose       = "unexpected_close"
	CodeInvalidEnumMember     = "invalid_enum_member"
	CodeEnumMemberWithType    = "enum_member_with_type"
	CodeMissingFieldName      = "missing_field_name"
	CodeInvalidFieldName      = "invalid_field_name"
	CodeMissingFieldType      = "missing_field_type"
	CodeMissingFieldIndex     = "missing_field_index"
	CodeInvalidFieldIndex     = "invalid_field_index"
	CodeMetadataBeforeDefault = "metadata_before_default"
	CodeInvalidMetadata       = "invalid_metadata"
	// Type expressions
	CodeUnknownType           = "unknown_type"
	CodeInvalidTypeArity      = "invalid_type_arity"
	CodeNestedContainer       = "nested_container"
	CodeInvalidTypeExpression = "invalid_type_expression"
	// Literals
	CodeInvalidDefaultValue      = "invalid_default_value"
	CodeDefaultValueOverflow     = "default_value_overflow"
	CodeIllegalDefaultForBinary  = "illegal_default_for_binary"
	CodeIllegalDefaultForStruct  = "illegal_default_for_struct"
	CodeDefaultValueTypeMismatch = "default_value_type_mismatch"
	CodeInvalidMetadataEntry     = "invalid_metadata_entry"
	CodeInvalidMetadataKey       = "invalid_metadata_key"
	CodeInvalidMetadataValue     = "invalid_metadata_value"
	CodeDuplicateMetadataKey     = "duplicate_metadata_key"
	// References
	CodeUnknownImport     = "unknown_import"
	CodeUnknownMember     = "unknown_member"
	CodeUnimportedPackage = "unimported_package"
	// Structural
	CodeDuplicateIndex            = "duplicate_index"
	CodeDuplicateFieldName        = "duplicate_field_name"
	CodeDuplicatePackage          = "duplicate_package"
	CodeIllegalNullable           = "illegal_nullable"
	CodeUnterminatedType          = "unterminated_type"
	CodeEmptyEnum                 = "empty_enum"
	CodeEnumDoesNotStartAtZero    = "enum_does_not_start_at_zero"
	CodeNonConsecutiveEnumIndices = "non_consecutive_enum_indices"
	// IO
	CodeSourceRead = "source_read"
	// Internal
	CodeInternal = "internal"
)

var codeClasses = map[string]Class{
	CodeMissingVersion:     ClassLex,
	CodeInvalidVersion:     ClassLex,
	CodeUnsupportedVersion: ClassLex,
	CodeDuplicateVersion:   ClassLex,
	CodeInvalidImport:      ClassLex,

	CodeImportAfterType:       ClassGrammar,
	CodeDuplicateImport:       ClassGrammar,
	CodeInvalidTypeHeader:     ClassGrammar,
	CodeInvalidTypeName:       ClassGrammar,
	CodeInvalidTypeModifier:   ClassGrammar,
	CodeFieldOutsideType:      ClassGrammar,
	CodeUnexpectedClose:       ClassGrammar,
	CodeInvalidEnumMember:     ClassGrammar,
	CodeEnumMemberWithType:    ClassGrammar,
	CodeMissingFieldName:      ClassGrammar,
	CodeInvalidFieldName:      ClassGrammar,
	CodeMissingFieldType:      ClassGrammar,
	CodeMissingFieldIndex:     ClassGrammar,
	CodeInvalidFieldIndex:     ClassGrammar,
	CodeMetadataBeforeDefault: ClassGrammar,
	CodeInvalidMetadata:       ClassGrammar,

	CodeUnknownType:           ClassTypeExpression,
	CodeInvalidTypeArity:      ClassTypeExpression,
	CodeNestedContainer:       ClassTypeExpression,
	CodeInvalidTypeExpression: ClassTypeExpression,

	CodeInvalidDefaultValue:      ClassLiteral,
	CodeDefaultValueOverflow:     ClassLiteral,
	CodeIllegalDefaultForBinary:  ClassLiteral,
	CodeIllegalDefaultForStruct:  ClassLiteral,
	CodeDefaultValueTypeMismatch: ClassLiteral,
	CodeInvalidMetadataEntry:     ClassLiteral,
	CodeInvalidMetadataKey:       ClassLiteral,
	CodeInvalidMetadataValue:     ClassLiteral,
	CodeDuplicateMetadataKey:     ClassLiteral,

	CodeUnknownImport:     ClassReference,
	CodeUnknownMember:     ClassReference,
	CodeUnimportedPackage: ClassReference,

	CodeDuplicateIndex:            ClassStructural,
	CodeDuplicateFieldName:        ClassStructural,
	CodeDuplicatePackage:          ClassStructural,
	CodeIllegalNullable:           ClassStructural,
	CodeUnterminatedType:          ClassStructural,
	CodeEmptyEnum:                 ClassStructural,
	CodeEnumDoesNotStartAtZero:    ClassStructural,
	CodeNonConsecutiveEnumIndices: ClassStructural,

	CodeSourceRead: ClassIO,
	CodeInternal:   ClassInternal,
}

// ClassOf returns the class a code belongs to.
func ClassOf(code string) Class {
	if c, ok := codeClasses[code]; ok {
		return c
	}
	return ClassInternal
}

// Issue is a single compilation failure.
type Issue struct {
	Class    Class
	Code     string
	Message  string
	Location model.Location
	Cause    error // Optional: underlying error.
}

// Error renders "file:line: message [code]" followed by the offending line.
func (e *Issue) Error() string {
	b := &strings.Builder{}
	if !e.Location.IsZero() {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	fmt.Fprintf(b, " [%s]", e.Code)
	if e.Location.Text != "" {
		fmt.Fprintf(b, "\n\t%s", e.Location.Text)
	}
	return b.String()
}

func (e *Issue) Unwrap() error { return e.Cause }

// New creates an Issue at loc. An empty message falls back to the i18n
// catalog entry for the code.
func New(loc model.Location, code, msg string) *Issue {
	if msg == "" {
		msg = i18n.T(code, nil)
	}
	return &Issue{Class: ClassOf(code), Code: code, Message: msg, Location: loc}
}

// Errorf creates an Issue at loc with a formatted message.
func Errorf(loc model.Location, code, format string, args ...any) *Issue {
	return New(loc, code, fmt.Sprintf(format, args...))
}

// Wrap creates an Issue at loc that records cause.
func Wrap(loc model.Location, code string, cause error, format string, args ...any) *Issue {
	is := Errorf(loc, code, format, args...)
	is.Cause = cause
	return is
}

// Internal reports an orchestration bug. It should never be caught and
// retried.
func Internal(format string, args ...any) *Issue {
	return &Issue{Class: ClassInternal, Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// AsIssue extracts an *Issue from err using errors.As.
func AsIssue(err error) (*Issue, bool) {
	var is *Issue
	if errors.As(err, &is) {
		return is, true
	}
	return nil, false
}

// HasCode reports whether err carries an Issue with the given code.
func HasCode(err error, code string) bool {
	is, ok := AsIssue(err)
	return ok && is.Code == code
}

// IsInternal reports whether err is an internal orchestration error.
func IsInternal(err error) bool {
	is, ok := AsIssue(err)
	return ok && is.Class == ClassInternal
}

// Issues collects failures from independent compilations.
type Issues []*Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unknown_type at schemas/user.mpack:4
		fmt.Fprintf(b, "%s at %s", it.Code, it.Location)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends the Issue carried by err (when any) to dst. Errors that
// are not Issues are recorded as source_read issues.
func AppendIssues(dst Issues, err error) Issues {
	if err == nil {
		return dst
	}
	if iss, ok := AsIssues(err); ok {
		return append(dst, iss...)
	}
	if is, ok := AsIssue(err); ok {
		return append(dst, is)
	}
	return append(dst, Wrap(model.Location{}, CodeSourceRead, err, "%v", err))
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Locate sets loc on the Issue carried by err when it has no location yet.
func Locate(err error, loc model.Location) error {
	if is, ok := AsIssue(err); ok && is.Location.IsZero() {
		is.Location = loc
	}
	return err
}
