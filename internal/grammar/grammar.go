// Package grammar parses schema sources line by line into a compiler
// context: the version line, imports, type headers and field declarations.
package grammar

import (
	"io"
	"strconv"
	"strings"

	"github.com/reoring/mpschema/diag"
	"github.com/reoring/mpschema/internal/compiler"
	"github.com/reoring/mpschema/internal/scan"
	"github.com/reoring/mpschema/internal/typeexpr"
	"github.com/reoring/mpschema/model"
)

const (
	versionPrefix = "version:"
	importKeyword = "import"
	typeKeyword   = "type"
	openBlock     = "{"
	closeBlock    = "}"
)

type state int

const (
	awaitingVersion state = iota
	awaitingBody
	inType
)

type pendingImport struct {
	name string
	loc  model.Location
}

type fileParser struct {
	ctx     *compiler.Context
	pkgName string
	state   state
	typed   bool // a type has been opened in this file
	pending []pendingImport
}

// Parse reads one source into ctx. pkgName is the package source name
// ("name" or "dir/name"); file is used in locations.
func Parse(ctx *compiler.Context, r io.Reader, pkgName, file string) error {
	if file == "" {
		file = pkgName
	}
	log := ctx.Logger()
	log.Debug().Str("file", file).Str("pkg", pkgName).Msg("parsing source")

	p := &fileParser{ctx: ctx, pkgName: pkgName}
	sc := scan.New(r, file)
	for sc.Scan() {
		line := sc.Line()
		ctx.SetLocation(line.Loc)
		if line.Blank() {
			continue
		}
		if err := p.line(line.Text); err != nil {
			return diag.Locate(err, line.Loc)
		}
	}
	if err := sc.Err(); err != nil {
		return diag.Wrap(ctx.Location(), diag.CodeSourceRead, err, "reading %s: %v", file, err)
	}
	return p.finish()
}

func (p *fileParser) line(text string) error {
	switch {
	case p.state != inType && strings.HasPrefix(text, versionPrefix):
		// Inside a type, "version:..." declares a field named version.
		return p.version(text)
	case isImport(text):
		return p.importLine(text)
	}

	switch p.state {
	case awaitingVersion:
		return diag.New(p.ctx.Location(), diag.CodeMissingVersion, "schema does not specify a version; it must be declared before any type")
	case inType:
		if text == closeBlock {
			if _, err := p.ctx.CloseType(); err != nil {
				return err
			}
			p.state = awaitingBody
			return nil
		}
		if strings.HasSuffix(text, openBlock) {
			return diag.Errorf(p.ctx.Location(), diag.CodeUnterminatedType, "type %s is not closed before declaring a new one", p.ctx.Builder().Name())
		}
		f, err := ParseField(text, p.ctx.Builder().Modifier())
		if err != nil {
			return err
		}
		return p.ctx.AddField(f)
	default:
		if text == closeBlock {
			return diag.New(p.ctx.Location(), diag.CodeUnexpectedClose, "before closing a type, a new one must be declared")
		}
		if strings.HasSuffix(text, openBlock) {
			name, mod, err := ParseTypeHeader(text)
			if err != nil {
				return err
			}
			if err := p.ctx.OpenType(name, mod); err != nil {
				return err
			}
			p.state = inType
			p.typed = true
			return nil
		}
		return diag.New(p.ctx.Location(), diag.CodeFieldOutsideType, "before declaring a field, a type must be declared")
	}
}

func (p *fileParser) version(text string) error {
	if p.state != awaitingVersion {
		return diag.New(p.ctx.Location(), diag.CodeDuplicateVersion, "schema version is declared more than once")
	}
	v, err := ParseVersion(text)
	if err != nil {
		return err
	}
	if _, err := p.ctx.CreatePackage(p.pkgName, v); err != nil {
		return err
	}
	p.state = awaitingBody

	loc := p.ctx.Location()
	defer p.ctx.SetLocation(loc)
	for _, imp := range p.pending {
		p.ctx.SetLocation(imp.loc)
		if err := p.ctx.AddImport(imp.name); err != nil {
			return diag.Locate(err, imp.loc)
		}
	}
	p.pending = nil
	return nil
}

func (p *fileParser) importLine(text string) error {
	if p.typed {
		return diag.New(p.ctx.Location(), diag.CodeImportAfterType, "imports must be declared before any type")
	}
	name, err := ParseImport(text)
	if err != nil {
		return err
	}
	if p.state == awaitingVersion {
		for _, imp := range p.pending {
			if imp.name == name {
				return diag.New(p.ctx.Location(), diag.CodeDuplicateImport, "package "+name+" is already imported")
			}
		}
		p.pending = append(p.pending, pendingImport{name: name, loc: p.ctx.Location()})
		return nil
	}
	return p.ctx.AddImport(name)
}

func (p *fileParser) finish() error {
	if p.state == awaitingVersion {
		return diag.New(p.ctx.Location(), diag.CodeMissingVersion, "schema does not specify a version")
	}
	return p.ctx.EndSource()
}

func isImport(text string) bool {
	return text == importKeyword || strings.HasPrefix(text, importKeyword+" ")
}

// ParseVersion reads "version:<int>" and checks the version is supported.
func ParseVersion(text string) (int, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(text, versionPrefix))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, diag.Wrap(model.Location{}, diag.CodeInvalidVersion, err, "invalid version declaration %q", raw)
	}
	if v != model.SupportedVersion {
		return 0, diag.Errorf(model.Location{}, diag.CodeUnsupportedVersion, "unsupported schema version %d, expected %d", v, model.SupportedVersion)
	}
	return v, nil
}

// ParseImport reads `import "name"` and returns the lowercased name.
func ParseImport(text string) (string, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(text, importKeyword))
	name := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, `"`, "")))
	if name == "" {
		return "", diag.New(model.Location{}, diag.CodeInvalidImport, "import statements must be followed by the package name to import")
	}
	return name, nil
}

// ParseTypeHeader reads "type <Name> [enum|union] {".
func ParseTypeHeader(text string) (string, model.Modifier, error) {
	tokens := strings.Fields(strings.TrimSuffix(strings.TrimSpace(text), openBlock))
	if len(tokens) < 2 || len(tokens) > 3 {
		return "", 0, diag.Errorf(model.Location{}, diag.CodeInvalidTypeHeader, "invalid type declaration %q", text)
	}
	if tokens[0] != typeKeyword {
		return "", 0, diag.Errorf(model.Location{}, diag.CodeInvalidTypeHeader, "expected 'type' keyword, given %q", tokens[0])
	}
	name := tokens[1]
	if !typeexpr.IsTypeName(name) {
		return "", 0, diag.Errorf(model.Location{}, diag.CodeInvalidTypeName, "type name %s must start with an uppercase letter or underscore", name)
	}
	mod := model.ModifierNone
	if len(tokens) == 3 {
		m, ok := model.ParseModifier(tokens[2])
		if !ok {
			return "", 0, diag.Errorf(model.Location{}, diag.CodeInvalidTypeModifier, "unknown type modifier %s", tokens[2])
		}
		mod = m
	}
	return name, mod, nil
}
