// Package golang renders record units as Go source using jennifer.
//
// Generated code depends only on the standard library. Each unit becomes an
// immutable struct with unexported fields, a validating constructor taking
// one interface{} argument per property in declaration order, a FromMap
// adapter for decoded JSON, and getters. Files additionally carry the
// ValidationError prelude shared by all units.
package golang

import (
	"bytes"
	"fmt"
	"strings"

	jen "github.com/dave/jennifer/jen"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/gen"
	"github.com/reoring/recordgen/internal/ir"
)

// DefaultPackage is used when FileOptions.Package is empty.
const DefaultPackage = "records"

// Renderer implements gen.Renderer for Go.
type Renderer struct {
	tr i18n.Translator
}

var _ gen.Renderer = (*Renderer)(nil)

// New returns a Go renderer whose runtime messages come from tr.
func New(tr i18n.Translator) *Renderer {
	if tr == nil {
		tr = i18n.New("en")
	}
	return &Renderer{tr: tr}
}

func (r *Renderer) Language() string { return "go" }

func (r *Renderer) FileExtension() string { return ".go" }

func (r *Renderer) Comment(text string) string { return "// " + text }

// Unit renders the declarations of u, each formatted with gofmt rules and
// separated by a blank line.
func (r *Renderer) Unit(u *ir.Unit) (string, error) {
	decls, err := r.decls(u)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, d := range decls {
		var buf bytes.Buffer
		if err := d.Render(&buf); err != nil {
			return "", fmt.Errorf("render %s: %w", u.TypeName, err)
		}
		parts = append(parts, strings.TrimRight(buf.String(), "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

// File renders a complete Go source file.
func (r *Renderer) File(opts gen.FileOptions, parts []gen.Part) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	f := jen.NewFile(pkg)
	f.ImportName("encoding/json", "json")
	f.ImportName("net/url", "url")
	f.ImportName("unicode/utf8", "utf8")
	if opts.Header != "" {
		f.HeaderComment(opts.Header)
	}
	for _, c := range prelude() {
		f.Add(c)
		f.Line()
	}
	for _, p := range parts {
		if p.Diagnostic != "" {
			f.Comment(p.Diagnostic)
			f.Line()
			continue
		}
		for _, u := range p.Units {
			decls, err := r.decls(u)
			if err != nil {
				return nil, err
			}
			for _, d := range decls {
				f.Add(d)
				f.Line()
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render file: %w", err)
	}
	return buf.Bytes(), nil
}

// decls lowers one unit into its top-level declarations: pattern variables,
// the type, the constructor, the map adapter, getters and helpers.
func (r *Renderer) decls(u *ir.Unit) ([]*jen.Statement, error) {
	b, err := newUnitBuilder(r.tr, u)
	if err != nil {
		return nil, err
	}
	var out []*jen.Statement
	out = append(out, b.patternVars()...)
	out = append(out, b.typeDecl(), b.constructor(), b.fromMap())
	out = append(out, b.accessors()...)
	out = append(out, b.helpers()...)
	return out, nil
}
