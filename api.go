package recordgen

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/compiler"
	"github.com/reoring/recordgen/internal/gen"
	"github.com/reoring/recordgen/internal/gen/golang"
	"github.com/reoring/recordgen/internal/gen/ruby"
	"github.com/reoring/recordgen/internal/ir"
	"github.com/reoring/recordgen/jsonschema"
)

// Target selects the language of the generated source.
type Target string

const (
	TargetGo   Target = "go"
	TargetRuby Target = "ruby"
)

var renderers = map[Target]func(i18n.Translator) gen.Renderer{
	TargetGo:   func(tr i18n.Translator) gen.Renderer { return golang.New(tr) },
	TargetRuby: func(tr i18n.Translator) gen.Renderer { return ruby.New(tr) },
}

// Targets lists the supported targets in name order.
func Targets() []Target {
	out := make([]Target, 0, len(renderers))
	for t := range renderers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseTarget accepts a target name, case-insensitively.
func ParseTarget(name string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := renderers[t]; !ok {
		return "", fmt.Errorf("recordgen: unknown target %q (supported: %v)", name, Targets())
	}
	return t, nil
}

// DefaultHeader is written at the top of generated files.
const DefaultHeader = "Code generated by recordgen. DO NOT EDIT."

// Option configures a Compiler.
type Option func(*Compiler)

// WithTarget selects the output language. The default is TargetGo.
func WithTarget(t Target) Option { return func(c *Compiler) { c.target = t } }

// WithLanguage selects the language of generated messages and comments
// ("en" or "ja"). Unknown languages fall back to English.
func WithLanguage(lang string) Option {
	return func(c *Compiler) { c.tr = i18n.New(lang) }
}

// WithTranslator installs a custom message catalog.
func WithTranslator(tr i18n.Translator) Option {
	return func(c *Compiler) {
		if tr != nil {
			c.tr = tr
		}
	}
}

// WithLogger routes compiler diagnostics to l. Compilers log nothing by
// default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPackage sets the package clause of generated Go files.
func WithPackage(name string) Option { return func(c *Compiler) { c.pkg = name } }

// WithHeader replaces DefaultHeader; an empty header omits the line.
func WithHeader(h string) Option { return func(c *Compiler) { c.header = h } }

// WithStrict makes Load validate documents against the JSON Schema
// meta-schema before compiling them.
func WithStrict(strict bool) Option { return func(c *Compiler) { c.strict = strict } }

// WithParseOptions tunes document decoding in Load.
func WithParseOptions(opt jsonschema.Options) Option {
	return func(c *Compiler) { c.parse = opt }
}

// Compiler turns JSON Schema object definitions into record source code.
// A Compiler is immutable after New and safe for concurrent use.
type Compiler struct {
	target Target
	tr     i18n.Translator
	log    logrus.FieldLogger
	pkg    string
	header string
	strict bool
	parse  jsonschema.Options

	r gen.Renderer
}

// New builds a Compiler. It fails only for an unknown target.
func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		target: TargetGo,
		tr:     i18n.New("en"),
		pkg:    golang.DefaultPackage,
		header: DefaultHeader,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	mk, ok := renderers[c.target]
	if !ok {
		return nil, fmt.Errorf("recordgen: unknown target %q (supported: %v)", c.target, Targets())
	}
	c.r = mk(c.tr)
	c.log = c.log.WithFields(logrus.Fields{"target": string(c.target), "lang": c.tr.Lang()})
	return c, nil
}

// Target reports the output language.
func (c *Compiler) Target() Target { return c.target }

// FileExtension is the conventional extension of generated files, with the
// leading dot.
func (c *Compiler) FileExtension() string { return c.r.FileExtension() }

// Unit is one generated record type.
type Unit struct {
	TypeName string
	Source   string
}

// Output is the result of compiling one schema. Exactly one of Units and
// Diagnostic is set.
type Output struct {
	// Key is the definition key the output was built from, if any.
	Key string
	// Units holds the nested record types first and the requested type last.
	Units []Unit
	// Diagnostic explains a soft failure, such as a non-object root.
	Diagnostic string
	// Issues is set when a definition compiled by BuildMany was rejected;
	// Diagnostic then summarizes them.
	Issues Issues
	// Code is the generated text: the units separated by blank lines, or
	// the diagnostic as a comment in the target language.
	Code string

	ir []*ir.Unit
}

// Build lowers s into record types named after typeName. A schema whose type
// is not object yields an Output carrying a diagnostic and a nil error.
// Broken schema invariants are reported as Issues.
func (c *Compiler) Build(s *jsonschema.Schema, typeName string) (Output, error) {
	log := c.log.WithField("type", typeName)
	res, err := compiler.Build(s, typeName, c.tr)
	if err != nil {
		log.WithError(err).Debug("schema rejected")
		return Output{}, publicError(err)
	}
	if res.NotObject {
		log.Debug("root is not an object")
		return c.diagnostic(i18n.DiagNotObject, nil), nil
	}
	srcs, err := gen.Units(c.r, res.Units)
	if err != nil {
		log.WithError(err).Debug("render failed")
		return Output{}, publicError(err)
	}
	out := Output{ir: res.Units, Units: make([]Unit, len(srcs)), Code: strings.Join(srcs, "\n\n")}
	for i, src := range srcs {
		out.Units[i] = Unit{TypeName: res.Units[i].TypeName, Source: src}
	}
	log.WithField("units", len(out.Units)).Debug("compiled")
	return out, nil
}

func (c *Compiler) diagnostic(code string, data map[string]string) Output {
	msg := c.tr.Message(code, data)
	return Output{Diagnostic: msg, Code: c.r.Comment(msg)}
}

// Compile returns the source of the record type typeName and of its nested
// types, nested types first. For a non-object schema it returns a one-line
// comment in the target language instead.
func (c *Compiler) Compile(s *jsonschema.Schema, typeName string) (string, error) {
	out, err := c.Build(s, typeName)
	if err != nil {
		return "", err
	}
	return out.Code, nil
}

// Render assembles a complete source file from outputs, in order. Go files
// get the package clause, imports and the shared ValidationError prelude.
func (c *Compiler) Render(outputs ...Output) ([]byte, error) {
	parts := make([]gen.Part, 0, len(outputs))
	for _, o := range outputs {
		if o.Diagnostic != "" {
			parts = append(parts, gen.Part{Diagnostic: o.Diagnostic})
			continue
		}
		parts = append(parts, gen.Part{Units: o.ir})
	}
	b, err := c.r.File(gen.FileOptions{Package: c.pkg, Header: c.header}, parts)
	if err != nil {
		return nil, publicError(err)
	}
	return b, nil
}
