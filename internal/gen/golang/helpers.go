package golang

import (
	jen "github.com/dave/jennifer/jen"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/ir"
)

// Formats with a built-in check, in the order their cases are emitted.
var checkedFormats = []string{"email", "uri", "date", "date-time", "ipv4", "ipv6"}

// helpers renders the private methods the unit's checks call. Only the
// routines listed in the unit's helper set are emitted.
func (b *unitBuilder) helpers() []*jen.Statement {
	hs := b.u.Helpers
	var out []*jen.Statement
	if hs.Has(ir.HelperItems) || hs.NeedsSchemaMatch() {
		out = append(out, b.kindMatches())
	}
	if hs.Has(ir.HelperItems) || hs.Has(ir.HelperEnum) {
		out = append(out, b.toFloat())
	}
	if hs.Has(ir.HelperItems) {
		out = append(out, b.arrayItems(), b.arrayItemsBound(ir.Min), b.arrayItemsBound(ir.Max))
	}
	if hs.Has(ir.HelperEnum) {
		out = append(out, b.enum())
	}
	if hs.Has(ir.HelperAnyOf) {
		out = append(out, b.anyOf())
	}
	if hs.Has(ir.HelperOneOf) {
		out = append(out, b.oneOf())
	}
	if hs.NeedsSchemaMatch() {
		out = append(out, b.schemaMatch())
	}
	if hs.Has(ir.HelperFormat) {
		out = append(out, b.format())
	}
	return out
}

func (b *unitBuilder) method(name string) *jen.Statement {
	return jen.Func().Params(jen.Id("r").Id(b.u.TypeName)).Id(name)
}

// runtimeMsg renders a message whose placeholders are filled at run time.
func (b *unitBuilder) runtimeMsg(code string, data map[string]string) string {
	d := map[string]string{"field": "%s"}
	for k, v := range data {
		d[k] = v
	}
	return b.tr.Message(code, d)
}

func (b *unitBuilder) kindMatches() *jen.Statement {
	v := jen.Id("value")
	okAssert := func(t jen.Code) []jen.Code {
		return []jen.Code{
			jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Add(v).Assert(t),
			jen.Return(jen.Id("ok")),
		}
	}
	return b.method("kindMatches").Params(jen.Id("value").Interface(), jen.Id("kind").String()).Bool().Block(
		jen.Switch(jen.Id("kind")).Block(
			jen.Case(jen.Lit("string")).Block(okAssert(jen.String())...),
			jen.Case(jen.Lit("integer")).Block(
				jen.Switch(jen.Id("x").Op(":=").Add(v).Assert(jen.Type())).Block(
					jen.Case(jen.Int(), jen.Int32(), jen.Int64()).Block(jen.Return(jen.True())),
					jen.Case(jen.Float64()).Block(jen.Return(jen.Id("x").Op("==").Qual("math", "Trunc").Call(jen.Id("x")))),
					jen.Case(jen.Qual("encoding/json", "Number")).Block(
						jen.If(jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("x").Dot("Int64").Call(), jen.Err().Op("==").Nil()).Block(jen.Return(jen.True())),
						jen.List(jen.Id("f"), jen.Err()).Op(":=").Id("x").Dot("Float64").Call(),
						jen.Return(jen.Err().Op("==").Nil().Op("&&").Id("f").Op("==").Qual("math", "Trunc").Call(jen.Id("f"))),
					),
				),
				jen.Return(jen.False()),
			),
			jen.Case(jen.Lit("number")).Block(
				jen.Switch(v.Clone().Assert(jen.Type())).Block(
					jen.Case(jen.Int(), jen.Int32(), jen.Int64(), jen.Float32(), jen.Float64(), jen.Qual("encoding/json", "Number")).Block(
						jen.Return(jen.True()),
					),
				),
				jen.Return(jen.False()),
			),
			jen.Case(jen.Lit("boolean")).Block(okAssert(jen.Bool())...),
			jen.Case(jen.Lit("array")).Block(okAssert(jen.Index().Interface())...),
			jen.Case(jen.Lit("object")).Block(okAssert(jen.Map(jen.String()).Interface())...),
			jen.Case(jen.Lit("null")).Block(jen.Return(v.Clone().Op("==").Nil())),
		),
		jen.Return(jen.True()),
	)
}

func (b *unitBuilder) toFloat() *jen.Statement {
	x := jen.Id("x")
	return b.method("toFloat").Params(jen.Id("value").Interface()).Params(jen.Float64(), jen.Bool()).Block(
		jen.Switch(jen.Id("x").Op(":=").Id("value").Assert(jen.Type())).Block(
			jen.Case(jen.Int()).Block(jen.Return(jen.Float64().Call(x), jen.True())),
			jen.Case(jen.Int32()).Block(jen.Return(jen.Float64().Call(x), jen.True())),
			jen.Case(jen.Int64()).Block(jen.Return(jen.Float64().Call(x), jen.True())),
			jen.Case(jen.Float32()).Block(jen.Return(jen.Float64().Call(x), jen.True())),
			jen.Case(jen.Float64()).Block(jen.Return(x, jen.True())),
			jen.Case(jen.Qual("encoding/json", "Number")).Block(
				jen.List(jen.Id("f"), jen.Err()).Op(":=").Add(x).Dot("Float64").Call(),
				jen.Return(jen.Id("f"), jen.Err().Op("==").Nil()),
			),
		),
		jen.Return(jen.Lit(0), jen.False()),
	)
}

func (b *unitBuilder) arrayItems() *jen.Statement {
	kinds := []string{"string", "integer", "number", "boolean", "array", "object"}
	nouns := make(jen.Dict, len(kinds))
	for _, k := range kinds {
		nouns[jen.Lit(k)] = jen.Lit(b.tr.Message(i18n.KindCode(k), nil))
	}
	msg := b.runtimeMsg(i18n.ItemsType, map[string]string{"expected": "%s"})
	return b.method("validateArrayItems").Params(
		jen.Id("items").Index().Interface(), jen.Id("expected").String(), jen.Id("field").String(),
	).Error().Block(
		jen.Id("nouns").Op(":=").Map(jen.String()).String().Values(nouns),
		jen.For(jen.List(jen.Id("_"), jen.Id("item")).Op(":=").Range().Id("items")).Block(
			jen.If(jen.Op("!").Id("r").Dot("kindMatches").Call(jen.Id("item"), jen.Id("expected"))).Block(
				jen.Return(validationErrorf(kindMismatch, msg, jen.Id("field"), jen.Id("nouns").Index(jen.Id("expected")))),
			),
		),
		jen.Return(jen.Nil()),
	)
}

func (b *unitBuilder) arrayItemsBound(op ir.Op) *jen.Statement {
	name, param, cmp, code := "validateArrayItemsMinimum", "minimum", "<", i18n.ItemsTooSmall
	if op == ir.Max {
		name, param, cmp, code = "validateArrayItemsMaximum", "maximum", ">", i18n.ItemsTooBig
	}
	msg := b.runtimeMsg(code, map[string]string{"limit": "%v"})
	return b.method(name).Params(
		jen.Id("items").Index().Interface(), jen.Id(param).Float64(), jen.Id("field").String(),
	).Error().Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("item")).Op(":=").Range().Id("items")).Block(
			jen.If(
				jen.List(jen.Id("f"), jen.Id("ok")).Op(":=").Id("r").Dot("toFloat").Call(jen.Id("item")),
				jen.Id("ok").Op("&&").Id("f").Op(cmp).Id(param),
			).Block(
				jen.Return(validationErrorf(kindViolation, msg, jen.Id("field"), jen.Id(param))),
			),
		),
		jen.Return(jen.Nil()),
	)
}

func (b *unitBuilder) enum() *jen.Statement {
	msg := b.runtimeMsg(i18n.InvalidEnum, map[string]string{"values": "%s"})
	want := jen.Id("want")
	return b.method("validateEnum").Params(
		jen.Id("value").Interface(), jen.Id("allowed").Index().Interface(), jen.Id("field").String(),
	).Error().Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("a")).Op(":=").Range().Id("allowed")).Block(
			jen.Switch(jen.Id("want").Op(":=").Id("a").Assert(jen.Type())).Block(
				jen.Case(jen.Nil()).Block(
					jen.If(jen.Id("value").Op("==").Nil()).Block(jen.Return(jen.Nil())),
				),
				jen.Case(jen.String()).Block(
					jen.If(jen.List(jen.Id("s"), jen.Id("ok")).Op(":=").Id("value").Assert(jen.String()), jen.Id("ok").Op("&&").Id("s").Op("==").Add(want)).Block(jen.Return(jen.Nil())),
				),
				jen.Case(jen.Bool()).Block(
					jen.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Id("value").Assert(jen.Bool()), jen.Id("ok").Op("&&").Id("v").Op("==").Add(want)).Block(jen.Return(jen.Nil())),
				),
				jen.Case(jen.Qual("encoding/json", "RawMessage")).Block(
					jen.Var().Id("w").Interface(),
					jen.If(jen.Qual("encoding/json", "Unmarshal").Call(want, jen.Op("&").Id("w")).Op("!=").Nil()).Block(jen.Continue()),
					jen.List(jen.Id("wb"), jen.Id("err1")).Op(":=").Qual("encoding/json", "Marshal").Call(jen.Id("w")),
					jen.List(jen.Id("vb"), jen.Id("err2")).Op(":=").Qual("encoding/json", "Marshal").Call(jen.Id("value")),
					jen.If(jen.Id("err1").Op("==").Nil().Op("&&").Id("err2").Op("==").Nil().Op("&&").Qual("bytes", "Equal").Call(jen.Id("wb"), jen.Id("vb"))).Block(jen.Return(jen.Nil())),
				),
				jen.Default().Block(
					jen.List(jen.Id("wf"), jen.Id("ok1")).Op(":=").Id("r").Dot("toFloat").Call(want),
					jen.List(jen.Id("vf"), jen.Id("ok2")).Op(":=").Id("r").Dot("toFloat").Call(jen.Id("value")),
					jen.If(jen.Id("ok1").Op("&&").Id("ok2").Op("&&").Id("wf").Op("==").Id("vf")).Block(jen.Return(jen.Nil())),
				),
			),
		),
		jen.Id("values").Op(":=").Make(jen.Index().String(), jen.Len(jen.Id("allowed"))),
		jen.For(jen.List(jen.Id("i"), jen.Id("a")).Op(":=").Range().Id("allowed")).Block(
			jen.Switch(jen.Id("x").Op(":=").Id("a").Assert(jen.Type())).Block(
				jen.Case(jen.Nil()).Block(jen.Id("values").Index(jen.Id("i")).Op("=").Lit("null")),
				jen.Case(jen.Qual("encoding/json", "RawMessage")).Block(jen.Id("values").Index(jen.Id("i")).Op("=").String().Call(jen.Id("x"))),
				jen.Default().Block(jen.Id("values").Index(jen.Id("i")).Op("=").Qual("fmt", "Sprint").Call(jen.Id("x"))),
			),
		),
		jen.Return(validationErrorf(kindViolation, msg, jen.Id("field"), jen.Qual("strings", "Join").Call(jen.Id("values"), jen.Lit(", ")))),
	)
}

func (b *unitBuilder) anyOf() *jen.Statement {
	return b.method("validateAnyOf").Params(
		jen.Id("value").Interface(), jen.Id("schemas").Index().String(), jen.Id("field").String(),
	).Error().Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("s")).Op(":=").Range().Id("schemas")).Block(
			jen.If(jen.Id("r").Dot("validateSchema").Call(jen.Id("value"), jen.Id("s"))).Block(jen.Return(jen.Nil())),
		),
		jen.Return(validationErrorf(kindViolation, b.runtimeMsg(i18n.UnionNoMatch, nil), jen.Id("field"))),
	)
}

func (b *unitBuilder) oneOf() *jen.Statement {
	return b.method("validateOneOf").Params(
		jen.Id("value").Interface(), jen.Id("schemas").Index().String(), jen.Id("field").String(),
	).Error().Block(
		jen.Id("matches").Op(":=").Lit(0),
		jen.For(jen.List(jen.Id("_"), jen.Id("s")).Op(":=").Range().Id("schemas")).Block(
			jen.If(jen.Id("r").Dot("validateSchema").Call(jen.Id("value"), jen.Id("s"))).Block(jen.Id("matches").Op("++")),
		),
		jen.If(jen.Id("matches").Op("!=").Lit(1)).Block(
			jen.Return(validationErrorf(kindViolation, b.runtimeMsg(i18n.UnionNotOne, nil), jen.Id("field"))),
		),
		jen.Return(jen.Nil()),
	)
}

// schemaMatch checks a value against one union alternative. Only the
// alternative's type and, for objects, its required keys are considered.
func (b *unitBuilder) schemaMatch() *jen.Statement {
	return b.method("validateSchema").Params(jen.Id("value").Interface(), jen.Id("schema").String()).Bool().Block(
		jen.Var().Id("doc").Interface(),
		jen.If(jen.Qual("encoding/json", "Unmarshal").Call(jen.Index().Byte().Call(jen.Id("schema")), jen.Op("&").Id("doc")).Op("!=").Nil()).Block(
			jen.Return(jen.False()),
		),
		jen.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Id("doc").Assert(jen.Bool()), jen.Id("ok")).Block(jen.Return(jen.Id("v"))),
		jen.List(jen.Id("alt"), jen.Id("ok")).Op(":=").Id("doc").Assert(jen.Map(jen.String()).Interface()),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.False())),
		jen.List(jen.Id("kind"), jen.Id("_")).Op(":=").Id("alt").Index(jen.Lit("type")).Assert(jen.String()),
		jen.If(jen.Id("kind").Op("==").Lit("")).Block(jen.Return(jen.True())),
		jen.If(jen.Op("!").Id("r").Dot("kindMatches").Call(jen.Id("value"), jen.Id("kind"))).Block(jen.Return(jen.False())),
		jen.If(jen.Id("kind").Op("==").Lit("object")).Block(
			jen.List(jen.Id("m"), jen.Id("_")).Op(":=").Id("value").Assert(jen.Map(jen.String()).Interface()),
			jen.List(jen.Id("required"), jen.Id("_")).Op(":=").Id("alt").Index(jen.Lit("required")).Assert(jen.Index().Interface()),
			jen.For(jen.List(jen.Id("_"), jen.Id("k")).Op(":=").Range().Id("required")).Block(
				jen.List(jen.Id("key"), jen.Id("_")).Op(":=").Id("k").Assert(jen.String()),
				jen.If(jen.List(jen.Id("_"), jen.Id("found")).Op(":=").Id("m").Index(jen.Id("key")), jen.Op("!").Id("found")).Block(
					jen.Return(jen.False()),
				),
			),
		),
		jen.Return(jen.True()),
	)
}

// format validates well-known string formats. Non-string values and
// unchecked formats pass.
func (b *unitBuilder) format() *jen.Statement {
	s := jen.Id("s")
	fail := func(format string) jen.Code {
		code, _ := i18n.FormatCode(format)
		return jen.Return(validationErrorf(kindViolation, b.runtimeMsg(code, nil), jen.Id("field")))
	}
	var cases []jen.Code
	for _, f := range checkedFormats {
		var body []jen.Code
		switch f {
		case "email":
			body = []jen.Code{
				jen.If(jen.Op("!").Qual("regexp", "MustCompile").Call(jen.Lit(`(?i)\A[\w+\-.]+@[a-z\d\-]+(\.[a-z\d\-]+)*\.[a-z]+\z`)).Dot("MatchString").Call(s)).Block(fail(f)),
			}
		case "uri":
			body = []jen.Code{
				jen.List(jen.Id("u"), jen.Err()).Op(":=").Qual("net/url", "Parse").Call(s),
				jen.If(jen.Err().Op("!=").Nil().Op("||").Op("!").Parens(
					jen.Qual("strings", "EqualFold").Call(jen.Id("u").Dot("Scheme"), jen.Lit("http")).Op("||").
						Qual("strings", "EqualFold").Call(jen.Id("u").Dot("Scheme"), jen.Lit("https")),
				)).Block(fail(f)),
			}
		case "date":
			body = []jen.Code{
				jen.If(jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual("time", "Parse").Call(jen.Lit("2006-01-02"), s), jen.Err().Op("!=").Nil()).Block(fail(f)),
			}
		case "date-time":
			body = []jen.Code{
				jen.If(jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual("time", "Parse").Call(jen.Qual("time", "RFC3339"), s), jen.Err().Op("!=").Nil()).Block(fail(f)),
			}
		case "ipv4":
			body = []jen.Code{
				jen.Id("ip").Op(":=").Qual("net", "ParseIP").Call(s),
				jen.If(jen.Id("ip").Op("==").Nil().Op("||").Id("ip").Dot("To4").Call().Op("==").Nil().Op("||").Qual("strings", "Contains").Call(s, jen.Lit(":"))).Block(fail(f)),
			}
		case "ipv6":
			body = []jen.Code{
				jen.If(jen.Qual("net", "ParseIP").Call(s).Op("==").Nil().Op("||").Op("!").Qual("strings", "Contains").Call(s, jen.Lit(":"))).Block(fail(f)),
			}
		}
		cases = append(cases, jen.Case(jen.Lit(f)).Block(body...))
	}
	return b.method("validateFormat").Params(
		jen.Id("value").Interface(), jen.Id("format").String(), jen.Id("field").String(),
	).Error().Block(
		jen.List(jen.Id("s"), jen.Id("ok")).Op(":=").Id("value").Assert(jen.String()),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.Nil())),
		jen.Switch(jen.Id("format")).Block(cases...),
		jen.Return(jen.Nil()),
	)
}
