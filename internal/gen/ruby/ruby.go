// Package ruby renders record units as Ruby Data classes.
//
// Each unit becomes `Name = Data.define(...) do ... end` with an initialize
// that validates keyword arguments and raises TypeError for kind mismatches
// and ArgumentError for constraint violations.
package ruby

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/engine"
	"github.com/reoring/recordgen/internal/gen"
	"github.com/reoring/recordgen/internal/ir"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("ruby").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"))

var (
	localName    = regexp.MustCompile(`^[a-z_][A-Za-z0-9_]*$`)
	constantName = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)
)

// keywords cannot be used as keyword-argument names that are read back as
// local variables.
var keywords = map[string]bool{
	"alias": true, "and": true, "begin": true, "break": true, "case": true, "class": true,
	"def": true, "defined?": true, "do": true, "else": true, "elsif": true, "end": true,
	"ensure": true, "false": true, "for": true, "if": true, "in": true, "module": true,
	"next": true, "nil": true, "not": true, "or": true, "redo": true, "rescue": true,
	"retry": true, "return": true, "self": true, "super": true, "then": true, "true": true,
	"undef": true, "unless": true, "until": true, "when": true, "while": true, "yield": true,
	"__method__": true, "__FILE__": true, "__LINE__": true,
}

// Renderer implements gen.Renderer for Ruby.
type Renderer struct {
	tr i18n.Translator
}

var _ gen.Renderer = (*Renderer)(nil)

// New returns a Ruby renderer whose messages come from tr.
func New(tr i18n.Translator) *Renderer {
	if tr == nil {
		tr = i18n.New("en")
	}
	return &Renderer{tr: tr}
}

func (r *Renderer) Language() string { return "ruby" }

func (r *Renderer) FileExtension() string { return ".rb" }

func (r *Renderer) Comment(text string) string { return "# " + text }

type unitView struct {
	TypeName string
	DocLines []string
	Symbols  []string
	Params   []string
	Super    []string
	Fields   []fieldView
	Helpers  helperView
}

type fieldView struct {
	Name    string
	Guarded bool
	Lines   []string
}

type noun struct {
	Kind string
	Noun string
}

type helperView struct {
	Any, Items, Enum, AnyOf, OneOf, Schema, Format bool

	Nouns   []noun
	AnyNoun string
	Msg     map[string]string
}

// Unit renders u as a Data class.
func (r *Renderer) Unit(u *ir.Unit) (string, error) {
	if iss := validateNames(u); len(iss) > 0 {
		return "", iss
	}
	v := unitView{TypeName: u.TypeName}
	if d := strings.TrimSpace(u.Description); d != "" {
		for _, l := range strings.Split(d, "\n") {
			v.DocLines = append(v.DocLines, strings.TrimRight(l, " \t\r"))
		}
	}
	v.DocLines = append(v.DocLines, r.tr.Message(i18n.DocFields, map[string]string{"type": u.TypeName}))
	for _, f := range u.Fields {
		v.DocLines = append(v.DocLines, "- "+f.Name+": "+f.Doc)
	}

	var optional []string
	for i := range u.Fields {
		f := &u.Fields[i]
		v.Symbols = append(v.Symbols, ":"+f.Name)
		v.Super = append(v.Super, f.Name+": "+f.Name)
		if f.Required {
			v.Params = append(v.Params, f.Name+":")
		} else {
			optional = append(optional, f.Name+": nil")
		}
		lines := r.checks(f)
		v.Fields = append(v.Fields, fieldView{
			Name:    f.Name,
			Guarded: !f.Required && len(lines) > 0,
			Lines:   lines,
		})
	}
	v.Params = append(v.Params, optional...)
	v.Helpers = r.helperView(u.Helpers)

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "record", v); err != nil {
		return "", fmt.Errorf("render %s: %w", u.TypeName, err)
	}
	return strings.TrimLeft(buf.String(), "\n"), nil
}

type fileView struct {
	Header      string
	RequireJSON bool
	Sections    []string
}

// File renders a complete Ruby source file. json is required only when some
// unit embeds parsed schema or enum literals.
func (r *Renderer) File(opts gen.FileOptions, parts []gen.Part) ([]byte, error) {
	v := fileView{Header: opts.Header}
	for _, p := range parts {
		if p.Diagnostic != "" {
			v.Sections = append(v.Sections, r.Comment(p.Diagnostic))
			continue
		}
		for _, u := range p.Units {
			if needsJSON(u) {
				v.RequireJSON = true
			}
			s, err := r.Unit(u)
			if err != nil {
				return nil, err
			}
			v.Sections = append(v.Sections, s)
		}
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "file", v); err != nil {
		return nil, fmt.Errorf("render file: %w", err)
	}
	return buf.Bytes(), nil
}

func needsJSON(u *ir.Unit) bool {
	if u.Helpers.NeedsSchemaMatch() {
		return true
	}
	for _, f := range u.Fields {
		for _, o := range f.Obligations {
			if e, ok := o.(*ir.Enum); ok {
				for _, l := range e.Values {
					if compound(l.Value) {
						return true
					}
				}
			}
		}
	}
	return false
}

func validateNames(u *ir.Unit) ir.Issues {
	var iss ir.Issues
	if !constantName.MatchString(u.TypeName) {
		iss = append(iss, ir.Issue{
			Code:    ir.CodeInvalidTypeName,
			Message: fmt.Sprintf("%q is not a Ruby constant name", u.TypeName),
		})
	}
	for _, f := range u.Fields {
		if !localName.MatchString(f.Name) || keywords[f.Name] {
			iss = append(iss, ir.Issue{
				Path:    f.Path,
				Code:    ir.CodeInvalidIdentifier,
				Message: fmt.Sprintf("property %q cannot be used as a Ruby keyword argument", f.Name),
			})
		}
	}
	return iss
}

// checks renders the validation statements of one field, unindented.
func (r *Renderer) checks(f *ir.Field) []string {
	var out []string
	name := f.Name
	msg := func(code string, data map[string]string) string {
		d := map[string]string{"field": name}
		for k, v := range data {
			d[k] = v
		}
		return quote(r.tr.Message(code, d))
	}
	for _, o := range f.Obligations {
		switch ob := o.(type) {
		case *ir.Nested:
			expected := r.tr.Message(i18n.KindObject, nil)
			out = append(out,
				fmt.Sprintf("raise TypeError, %s unless %s.is_a?(Hash) || %s.is_a?(%s)",
					msg(i18n.InvalidType, map[string]string{"expected": expected}), name, name, ob.TypeName),
				fmt.Sprintf("%s = %s.new(**%s.transform_keys(&:to_sym)) if %s.is_a?(Hash)", name, ob.TypeName, name, name),
			)
		case *ir.TypeCheck:
			expected := r.tr.Message(i18n.KindCode(string(ob.Kind)), nil)
			out = append(out, fmt.Sprintf("raise TypeError, %s unless %s",
				msg(i18n.InvalidType, map[string]string{"expected": expected}), kindTest(ob.Kind, name)))
		case *ir.Union:
			method := "validate_any_of"
			if ob.Mode == ir.OneOf {
				method = "validate_one_of"
			}
			alts := make([]string, 0, len(ob.Alternatives))
			for _, a := range ob.Alternatives {
				alts = append(alts, "JSON.parse('"+singleQuote(a.Source)+"')")
			}
			out = append(out, fmt.Sprintf("%s(%s, [%s], %s)", method, name, strings.Join(alts, ", "), quote(name)))
		case *ir.Format:
			out = append(out, fmt.Sprintf("validate_format(%s, %s, %s)", name, quote(ob.Name), quote(name)))
		case *ir.Enum:
			lits := make([]string, 0, len(ob.Values))
			for _, l := range ob.Values {
				lits = append(lits, literal(l))
			}
			out = append(out, fmt.Sprintf("validate_enum(%s, [%s], %s)", name, strings.Join(lits, ", "), quote(name)))
		case *ir.Items:
			if ob.Kind != ir.KindUnknown {
				out = append(out, fmt.Sprintf("validate_array_items(%s, %s, %s)", name, quote(string(ob.Kind)), quote(name)))
			}
			if ob.Minimum != "" {
				out = append(out, fmt.Sprintf("validate_array_items_minimum(%s, %s, %s)", name, ob.Minimum, quote(name)))
			}
			if ob.Maximum != "" {
				out = append(out, fmt.Sprintf("validate_array_items_maximum(%s, %s, %s)", name, ob.Maximum, quote(name)))
			}
		case *ir.Bound:
			op, code := "<", i18n.TooSmall
			if ob.Op == ir.Max {
				op, code = ">", i18n.TooBig
			}
			out = append(out, fmt.Sprintf("raise ArgumentError, %s if %s %s %s",
				msg(code, map[string]string{"limit": ob.Value}), name, op, ob.Value))
		case *ir.Length:
			op, code := "<", i18n.TooShort
			if ob.Op == ir.Max {
				op, code = ">", i18n.TooLong
			}
			limit := strconv.Itoa(ob.Value)
			out = append(out, fmt.Sprintf("raise ArgumentError, %s if %s.length %s %s",
				msg(code, map[string]string{"limit": limit}), name, op, limit))
		case *ir.Pattern:
			out = append(out, fmt.Sprintf("raise ArgumentError, %s unless %s.match?(Regexp.new(%s, Regexp::IGNORECASE))",
				msg(i18n.Pattern, nil), name, quote(ob.Expr)))
		case *ir.Count:
			op, code := "<", i18n.TooFewItems
			if ob.Op == ir.Max {
				op, code = ">", i18n.TooManyItems
			}
			limit := strconv.Itoa(ob.Value)
			out = append(out, fmt.Sprintf("raise ArgumentError, %s if %s.length %s %s",
				msg(code, map[string]string{"limit": limit}), name, op, limit))
		}
	}
	return out
}

func kindTest(k ir.Kind, name string) string {
	switch k {
	case ir.KindString:
		return name + ".is_a?(String)"
	case ir.KindInteger:
		return name + ".is_a?(Integer)"
	case ir.KindNumber:
		return name + ".is_a?(Numeric)"
	case ir.KindBoolean:
		return "[true, false].include?(" + name + ")"
	case ir.KindArray:
		return name + ".is_a?(Array)"
	}
	return name + ".is_a?(Hash)"
}

// helperView prepares the helper templates. Messages are Ruby string
// literals interpolating the helper's own parameters.
func (r *Renderer) helperView(hs ir.HelperSet) helperView {
	v := helperView{
		Any:    !hs.Empty(),
		Items:  hs.Has(ir.HelperItems),
		Enum:   hs.Has(ir.HelperEnum),
		AnyOf:  hs.Has(ir.HelperAnyOf),
		OneOf:  hs.Has(ir.HelperOneOf),
		Schema: hs.NeedsSchemaMatch(),
		Format: hs.Has(ir.HelperFormat),
		Msg:    map[string]string{},
	}
	if v.Items {
		for _, k := range []string{"string", "integer", "number", "boolean", "array", "object"} {
			v.Nouns = append(v.Nouns, noun{Kind: k, Noun: quote(r.tr.Message(i18n.KindCode(k), nil))})
		}
		v.AnyNoun = quote(r.tr.Message(i18n.KindAny, nil))
		v.Msg[i18n.ItemsType] = r.interp(i18n.ItemsType, map[string]string{"field": "array_name", "expected": "expected"})
		v.Msg[i18n.ItemsTooSmall] = r.interp(i18n.ItemsTooSmall, map[string]string{"field": "array_name", "limit": "minimum"})
		v.Msg[i18n.ItemsTooBig] = r.interp(i18n.ItemsTooBig, map[string]string{"field": "array_name", "limit": "maximum"})
	}
	if v.Enum {
		v.Msg[i18n.InvalidEnum] = r.interp(i18n.InvalidEnum, map[string]string{"field": "field_name", "values": "formatted_values"})
	}
	if v.AnyOf {
		v.Msg[i18n.UnionNoMatch] = r.interp(i18n.UnionNoMatch, map[string]string{"field": "field_name"})
	}
	if v.OneOf {
		v.Msg[i18n.UnionNotOne] = r.interp(i18n.UnionNotOne, map[string]string{"field": "field_name"})
	}
	if v.Format {
		for _, f := range []string{"email", "uri", "date", "date-time", "ipv4", "ipv6"} {
			code, _ := i18n.FormatCode(f)
			v.Msg[code] = r.interp(code, map[string]string{"field": "field_name"})
		}
	}
	return v
}

// interp renders a message as a double-quoted Ruby literal where each
// placeholder interpolates the named Ruby expression.
func (r *Renderer) interp(code string, exprs map[string]string) string {
	marks := make(map[string]string, len(exprs))
	var pairs []string
	for k, expr := range exprs {
		mark := "\x00" + k + "\x00"
		marks[k] = mark
		pairs = append(pairs, mark, "#{"+expr+"}")
	}
	s := quote(r.tr.Message(code, marks))
	return strings.NewReplacer(pairs...).Replace(s)
}

// quote renders s as a double-quoted Ruby string without interpolation.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '#':
			if i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '@' || s[i+1] == '$') {
				b.WriteString(`\#`)
			} else {
				b.WriteByte(c)
			}
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// singleQuote escapes s for a single-quoted Ruby literal.
func singleQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func compound(v any) bool {
	switch v.(type) {
	case *engine.Object, []any:
		return true
	}
	return false
}

func literal(l ir.Literal) string {
	switch v := l.Value.(type) {
	case nil:
		return "nil"
	case string:
		return quote(v)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}
	return "JSON.parse('" + singleQuote(l.JSON) + "')"
}
