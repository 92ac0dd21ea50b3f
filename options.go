package mpschema

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/reoring/mpschema/internal/compiler"
)

// DefaultExtension is the file extension of schema sources.
const DefaultExtension = ".mpack"

// LookupPolicy selects the package searched for unqualified type references.
type LookupPolicy = compiler.LookupPolicy

const (
	// LookupOwningPackage resolves "Type" in the package declaring the field.
	LookupOwningPackage = compiler.LookupOwningPackage
	// LookupFirstPackage resolves "Type" in the first package compiled.
	LookupFirstPackage = compiler.LookupFirstPackage
)

// ParseLookupPolicy maps "owning" and "first" to a LookupPolicy.
func ParseLookupPolicy(s string) (LookupPolicy, error) { return compiler.ParseLookupPolicy(s) }

// Option configures a compilation.
type Option func(*options)

type options struct {
	logger        zerolog.Logger
	lookup        LookupPolicy
	strictImports bool
	verifyUnions  bool
	recursive     bool
	extension     string
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop(), extension: DefaultExtension}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) compiler() compiler.Options {
	return compiler.Options{Logger: o.logger, Lookup: o.lookup, StrictImports: o.strictImports, VerifyUnions: o.verifyUnions}
}

// WithLogger sets the logger receiving debug events. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// WithLookupPolicy selects how unqualified custom type references resolve.
func WithLookupPolicy(p LookupPolicy) Option { return func(o *options) { o.lookup = p } }

// WithStrictImports requires cross-package references to name an imported
// package, both in field types and in default values.
func WithStrictImports(enabled bool) Option { return func(o *options) { o.strictImports = enabled } }

// WithUnionVerification also resolves the custom types referenced by union
// variants. Unions are not verified by default.
func WithUnionVerification(enabled bool) Option { return func(o *options) { o.verifyUnions = enabled } }

// WithRecursive makes directory discovery descend into sub-directories; the
// relative sub-directory becomes the package directory.
func WithRecursive(enabled bool) Option { return func(o *options) { o.recursive = enabled } }

// WithExtension overrides the schema file extension. A missing leading dot
// is added.
func WithExtension(ext string) Option {
	return func(o *options) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.extension = ext
	}
}
