package golang

import (
	"encoding/json"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	jen "github.com/dave/jennifer/jen"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/engine"
	"github.com/reoring/recordgen/internal/ir"
)

// unitBuilder holds the identifiers chosen for one unit.
type unitBuilder struct {
	tr     i18n.Translator
	u      *ir.Unit
	fields []fieldIdents
}

type fieldIdents struct {
	f *ir.Field
	// field is the struct field; its getter is accessorName(field).
	field string
	// param is the constructor argument.
	param string
	// local holds the converted value; empty for untyped fields, which
	// store the argument as is.
	local string
	// pattern is the package-level regexp variable, if any.
	pattern string
}

func newUnitBuilder(tr i18n.Translator, u *ir.Unit) (*unitBuilder, error) {
	b := &unitBuilder{tr: tr, u: u}

	// Names referenced inside constructors must not be shadowed by params.
	outer := []string{u.TypeName, "New" + u.TypeName, u.TypeName + "FromMap", errorType, kindType, kindMismatch, kindViolation, nestedFunc}
	var iss ir.Issues
	fieldNamer := newNamer(helperNames)
	for i := range u.Fields {
		f := &u.Fields[i]
		fi := fieldIdents{f: f, field: fieldNamer.name(lowerIdent(f.Name))}
		if f.Nested != "" {
			outer = append(outer, f.Nested, f.Nested+"FromMap")
		}
		for _, o := range f.Obligations {
			p, ok := o.(*ir.Pattern)
			if !ok {
				continue
			}
			if _, err := regexp.Compile("(?i)" + p.Expr); err != nil {
				iss = append(iss, ir.Issue{
					Path:    engine.JoinPointer(f.Path, "pattern"),
					Code:    ir.CodeInvalidPattern,
					Message: err.Error(),
				})
				continue
			}
			fi.pattern = lowerFirst(u.TypeName) + upperFirst(strings.TrimSuffix(fi.field, "_")) + "Pattern"
			outer = append(outer, fi.pattern)
		}
		b.fields = append(b.fields, fi)
	}
	if len(iss) > 0 {
		return nil, iss
	}

	params := newNamer(reserved, outer)
	for i := range b.fields {
		fi := &b.fields[i]
		base := strings.TrimSuffix(lowerIdent(fi.f.Name), "_")
		if token.IsKeyword(base) {
			base += "Arg"
		}
		fi.param = params.name(base)
	}
	for i := range b.fields {
		fi := &b.fields[i]
		if fi.f.Kind != ir.KindUnknown {
			fi.local = params.name(fi.param + "Val")
		}
	}
	return b, nil
}

func (b *unitBuilder) zero() *jen.Statement { return jen.Id(b.u.TypeName).Values() }

func (b *unitBuilder) fail(fi fieldIdents, kind, msg string) *jen.Statement {
	return jen.Return(b.zero(), validationError(fi.f.Name, kind, msg))
}

func (b *unitBuilder) msg(code string, fi fieldIdents, data map[string]string) string {
	d := map[string]string{"field": fi.f.Name}
	for k, v := range data {
		d[k] = v
	}
	return b.tr.Message(code, d)
}

func (b *unitBuilder) typeMismatch(fi fieldIdents, kind ir.Kind) *jen.Statement {
	expected := b.tr.Message(i18n.KindCode(string(kind)), nil)
	return b.fail(fi, kindMismatch, b.msg(i18n.InvalidType, fi, map[string]string{"expected": expected}))
}

// baseType is the non-pointer storage type of a field.
func baseType(f *ir.Field) *jen.Statement {
	switch f.Kind {
	case ir.KindString:
		return jen.String()
	case ir.KindInteger:
		return jen.Int64()
	case ir.KindNumber:
		return jen.Float64()
	case ir.KindBoolean:
		return jen.Bool()
	case ir.KindArray:
		return jen.Index().Interface()
	case ir.KindObject:
		if f.Nested != "" {
			return jen.Id(f.Nested)
		}
		return jen.Map(jen.String()).Interface()
	}
	return jen.Interface()
}

// nilable reports whether the storage type already represents absence.
func nilable(f *ir.Field) bool {
	switch f.Kind {
	case ir.KindUnknown, ir.KindArray:
		return true
	case ir.KindObject:
		return f.Nested == ""
	}
	return false
}

func storageType(f *ir.Field) *jen.Statement {
	if f.Required || nilable(f) {
		return baseType(f)
	}
	return jen.Op("*").Add(baseType(f))
}

func (b *unitBuilder) patternVars() []*jen.Statement {
	var out []*jen.Statement
	for _, fi := range b.fields {
		for _, o := range fi.f.Obligations {
			if p, ok := o.(*ir.Pattern); ok && fi.pattern != "" {
				out = append(out, jen.Var().Id(fi.pattern).Op("=").Qual("regexp", "MustCompile").Call(jen.Lit("(?i)"+p.Expr)))
			}
		}
	}
	return out
}

func (b *unitBuilder) typeDecl() *jen.Statement {
	name := b.u.TypeName
	var lines []string
	if d := strings.TrimSpace(b.u.Description); d != "" {
		for _, l := range strings.Split(d, "\n") {
			lines = append(lines, strings.TrimRight(l, " \t\r"))
		}
		lines = append(lines, "")
	}
	lines = append(lines, b.tr.Message(i18n.DocFields, map[string]string{"type": name}))
	for _, fi := range b.fields {
		lines = append(lines, "  - "+fi.f.Name+": "+fi.f.Doc)
	}

	st := &jen.Statement{}
	for _, l := range lines {
		if l == "" {
			st.Comment("//").Line()
			continue
		}
		st.Comment(l).Line()
	}
	fields := make([]jen.Code, 0, len(b.fields))
	for _, fi := range b.fields {
		fields = append(fields, jen.Id(fi.field).Add(storageType(fi.f)))
	}
	return st.Type().Id(name).Struct(fields...)
}

func (b *unitBuilder) constructor() *jen.Statement {
	name := b.u.TypeName
	var params []jen.Code
	for _, fi := range b.fields {
		params = append(params, jen.Id(fi.param))
	}
	var sig []jen.Code
	if len(params) > 0 {
		sig = append(sig, jen.List(params...).Interface())
	}

	var body []jen.Code
	for _, fi := range b.fields {
		body = append(body, b.fieldStatements(fi)...)
	}
	values := make([]jen.Code, 0, len(b.fields))
	for _, fi := range b.fields {
		src := fi.local
		if src == "" {
			src = fi.param
		}
		values = append(values, jen.Id(fi.field).Op(":").Id(src))
	}
	body = append(body, jen.Return(jen.Id(name).Values(values...), jen.Nil()))

	return jen.Comment("New"+name+" validates its arguments in declaration order and").Line().
		Comment("returns the first failure as a *"+errorType+".").Line().
		Func().Id("New"+name).Params(sig...).Params(jen.Id(name), jen.Error()).Block(body...)
}

func (b *unitBuilder) fromMap() *jen.Statement {
	name := b.u.TypeName
	args := make([]jen.Code, 0, len(b.fields))
	for _, fi := range b.fields {
		args = append(args, jen.Id("m").Index(jen.Lit(fi.f.Name)))
	}
	return jen.Comment(name+"FromMap builds a "+name+" from decoded JSON. Unknown keys are ignored.").Line().
		Func().Id(name+"FromMap").Params(jen.Id("m").Map(jen.String()).Interface()).Params(jen.Id(name), jen.Error()).Block(
		jen.Return(jen.Id("New" + name).Call(args...)),
	)
}

func (b *unitBuilder) accessors() []*jen.Statement {
	out := make([]*jen.Statement, 0, len(b.fields))
	for _, fi := range b.fields {
		out = append(out, jen.Func().Params(jen.Id("r").Id(b.u.TypeName)).Id(accessorName(fi.field)).Params().Add(storageType(fi.f)).Block(
			jen.Return(jen.Id("r").Dot(fi.field)),
		))
	}
	return out
}

// fieldStatements validates one argument and leaves the converted value in
// fi.local.
func (b *unitBuilder) fieldStatements(fi fieldIdents) []jen.Code {
	f := fi.f
	present := jen.Id(fi.param).Op("!=").Nil()
	if f.Kind == ir.KindUnknown {
		checks := b.checks(fi, fi.param)
		if f.Required {
			guard := jen.If(jen.Id(fi.param).Op("==").Nil()).Block(b.fail(fi, kindMismatch, b.msg(i18n.Required, fi, nil)))
			return append([]jen.Code{guard}, checks...)
		}
		if len(checks) == 0 {
			return nil
		}
		return []jen.Code{jen.If(present).Block(checks...)}
	}

	if f.Required {
		out := []jen.Code{jen.If(jen.Id(fi.param).Op("==").Nil()).Block(b.fail(fi, kindMismatch, b.msg(i18n.Required, fi, nil)))}
		out = append(out, b.convert(fi, fi.local)...)
		return append(out, b.checks(fi, fi.local)...)
	}

	inner := b.convert(fi, "v")
	inner = append(inner, b.checks(fi, "v")...)
	if nilable(f) {
		inner = append(inner, jen.Id(fi.local).Op("=").Id("v"))
	} else {
		inner = append(inner, jen.Id(fi.local).Op("=").Op("&").Id("v"))
	}
	return []jen.Code{
		jen.Var().Id(fi.local).Add(storageType(f)),
		jen.If(present).Block(inner...),
	}
}

// convert checks the runtime kind of the argument and declares target with
// the converted value.
func (b *unitBuilder) convert(fi fieldIdents, target string) []jen.Code {
	f := fi.f
	arg := jen.Id(fi.param)
	switch f.Kind {
	case ir.KindInteger, ir.KindNumber:
		return []jen.Code{
			jen.Var().Id(target).Add(baseType(f)),
			b.numberSwitch(fi, target),
		}
	case ir.KindObject:
		if f.Nested != "" {
			return []jen.Code{
				jen.Var().Id(target).Id(f.Nested),
				jen.Switch(jen.Id("x").Op(":=").Add(arg).Assert(jen.Type())).Block(
					jen.Case(jen.Id(f.Nested)).Block(jen.Id(target).Op("=").Id("x")),
					jen.Case(jen.Map(jen.String()).Interface()).Block(
						jen.List(jen.Id("nv"), jen.Err()).Op(":=").Id(f.Nested+"FromMap").Call(jen.Id("x")),
						jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(b.zero(), jen.Id(nestedFunc).Call(jen.Lit(f.Name), jen.Err()))),
						jen.Id(target).Op("=").Id("nv"),
					),
					jen.Default().Block(b.typeMismatch(fi, ir.KindObject)),
				),
			}
		}
	}
	return []jen.Code{
		jen.List(jen.Id(target), jen.Id("ok")).Op(":=").Add(arg).Assert(baseType(f)),
		jen.If(jen.Op("!").Id("ok")).Block(b.typeMismatch(fi, f.Kind)),
	}
}

// numberSwitch accepts the numeric types produced by Go literals and by JSON
// decoding. Integers additionally accept whole floats.
func (b *unitBuilder) numberSwitch(fi fieldIdents, target string) jen.Code {
	integer := fi.f.Kind == ir.KindInteger
	x := jen.Id("x")
	set := func(v jen.Code) jen.Code { return jen.Id(target).Op("=").Add(v) }
	conv := func(v jen.Code) jen.Code {
		if integer {
			return jen.Int64().Call(v)
		}
		return jen.Float64().Call(v)
	}
	mismatch := b.typeMismatch(fi, fi.f.Kind)

	cases := []jen.Code{
		jen.Case(jen.Int()).Block(set(conv(x))),
		jen.Case(jen.Int32()).Block(set(conv(x))),
	}
	if integer {
		cases = append(cases,
			jen.Case(jen.Int64()).Block(set(x)),
			jen.Case(jen.Float64()).Block(
				jen.If(x.Clone().Op("!=").Qual("math", "Trunc").Call(x)).Block(mismatch),
				set(conv(x)),
			),
			jen.Case(jen.Qual("encoding/json", "Number")).Block(
				jen.List(jen.Id("n"), jen.Err()).Op(":=").Add(x).Dot("Int64").Call(),
				jen.If(jen.Err().Op("!=").Nil()).Block(
					jen.List(jen.Id("f"), jen.Id("ferr")).Op(":=").Add(x).Dot("Float64").Call(),
					jen.If(jen.Id("ferr").Op("!=").Nil().Op("||").Id("f").Op("!=").Qual("math", "Trunc").Call(jen.Id("f"))).Block(mismatch),
					jen.Id("n").Op("=").Int64().Call(jen.Id("f")),
				),
				set(jen.Id("n")),
			),
		)
	} else {
		cases = append(cases,
			jen.Case(jen.Int64()).Block(set(conv(x))),
			jen.Case(jen.Float32()).Block(set(conv(x))),
			jen.Case(jen.Float64()).Block(set(x)),
			jen.Case(jen.Qual("encoding/json", "Number")).Block(
				jen.List(jen.Id("n"), jen.Err()).Op(":=").Add(x).Dot("Float64").Call(),
				jen.If(jen.Err().Op("!=").Nil()).Block(mismatch),
				set(jen.Id("n")),
			),
		)
	}
	cases = append(cases, jen.Default().Block(mismatch))
	return jen.Switch(jen.Id("x").Op(":=").Id(fi.param).Assert(jen.Type())).Block(cases...)
}

// checks renders every constraint obligation of fi against val, the
// converted value. Helpers receive the raw argument.
func (b *unitBuilder) checks(fi fieldIdents, val string) []jen.Code {
	var out []jen.Code
	raw := jen.Id(fi.param)
	name := jen.Lit(fi.f.Name)
	for _, o := range fi.f.Obligations {
		switch ob := o.(type) {
		case *ir.Union:
			method := "validateAnyOf"
			if ob.Mode == ir.OneOf {
				method = "validateOneOf"
			}
			alts := make([]jen.Code, 0, len(ob.Alternatives))
			for _, a := range ob.Alternatives {
				alts = append(alts, jen.Lit(a.Source))
			}
			out = append(out, b.helperCall(method, raw.Clone(), jen.Index().String().Values(alts...), name))
		case *ir.Format:
			out = append(out, b.helperCall("validateFormat", raw.Clone(), jen.Lit(ob.Name), name))
		case *ir.Enum:
			lits := make([]jen.Code, 0, len(ob.Values))
			for _, l := range ob.Values {
				lits = append(lits, enumLiteral(l))
			}
			out = append(out, b.helperCall("validateEnum", raw.Clone(), jen.Index().Interface().Values(lits...), name))
		case *ir.Items:
			if ob.Kind != ir.KindUnknown {
				out = append(out, b.helperCall("validateArrayItems", jen.Id(val), jen.Lit(string(ob.Kind)), name))
			}
			if ob.Minimum != "" {
				out = append(out, b.helperCall("validateArrayItemsMinimum", jen.Id(val), jen.Id(ob.Minimum), name))
			}
			if ob.Maximum != "" {
				out = append(out, b.helperCall("validateArrayItemsMaximum", jen.Id(val), jen.Id(ob.Maximum), name))
			}
		case *ir.Bound:
			lhs := jen.Id(val)
			if fi.f.Kind == ir.KindInteger && !fitsInt64(ob) {
				lhs = jen.Float64().Call(jen.Id(val))
			}
			op, code := "<", i18n.TooSmall
			if ob.Op == ir.Max {
				op, code = ">", i18n.TooBig
			}
			out = append(out, jen.If(lhs.Op(op).Id(ob.Value)).Block(
				b.fail(fi, kindViolation, b.msg(code, fi, map[string]string{"limit": ob.Value})),
			))
		case *ir.Length:
			op, code := "<", i18n.TooShort
			if ob.Op == ir.Max {
				op, code = ">", i18n.TooLong
			}
			out = append(out, jen.If(jen.Qual("unicode/utf8", "RuneCountInString").Call(jen.Id(val)).Op(op).Lit(ob.Value)).Block(
				b.fail(fi, kindViolation, b.msg(code, fi, map[string]string{"limit": strconv.Itoa(ob.Value)})),
			))
		case *ir.Pattern:
			out = append(out, jen.If(jen.Op("!").Id(fi.pattern).Dot("MatchString").Call(jen.Id(val))).Block(
				b.fail(fi, kindViolation, b.msg(i18n.Pattern, fi, nil)),
			))
		case *ir.Count:
			op, code := "<", i18n.TooFewItems
			if ob.Op == ir.Max {
				op, code = ">", i18n.TooManyItems
			}
			out = append(out, jen.If(jen.Len(jen.Id(val)).Op(op).Lit(ob.Value)).Block(
				b.fail(fi, kindViolation, b.msg(code, fi, map[string]string{"limit": strconv.Itoa(ob.Value)})),
			))
		}
	}
	return out
}

// helperCall renders `if err := (T{}).method(args...); err != nil { return T{}, err }`.
func (b *unitBuilder) helperCall(method string, args ...jen.Code) jen.Code {
	return jen.If(
		jen.Err().Op(":=").Parens(b.zero()).Dot(method).Call(args...),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(b.zero(), jen.Err()))
}

func fitsInt64(bd *ir.Bound) bool {
	if !bd.Integer {
		return false
	}
	_, err := strconv.ParseInt(bd.Value, 10, 64)
	return err == nil
}

// enumLiteral renders an enum value. Compound values are embedded as JSON and
// compared structurally by validateEnum.
func enumLiteral(l ir.Literal) jen.Code {
	switch v := l.Value.(type) {
	case nil:
		return jen.Nil()
	case string:
		return jen.Lit(v)
	case bool:
		return jen.Lit(v)
	case json.Number:
		text := v.String()
		if _, err := strconv.ParseInt(text, 10, 64); err != nil && !strings.ContainsAny(text, ".eE") {
			// Out of int range: keep it an untyped float constant.
			text += ".0"
		}
		return jen.Id(text)
	}
	return jen.Qual("encoding/json", "RawMessage").Call(jen.Lit(l.JSON))
}
