package golang

import (
	jen "github.com/dave/jennifer/jen"
)

// Identifiers declared once per file and shared by every unit.
const (
	errorType     = "ValidationError"
	kindType      = "ValidationKind"
	kindMismatch  = "TypeMismatch"
	kindViolation = "ConstraintViolation"
	nestedFunc    = "nestedError"
)

func prelude() []jen.Code {
	return []jen.Code{
		jen.Comment(kindType + " classifies a construction failure.").Line().
			Type().Id(kindType).Int(),
		jen.Const().Defs(
			jen.Comment(kindMismatch+" reports a missing value or a value of the wrong kind."),
			jen.Id(kindMismatch).Id(kindType).Op("=").Lit(1),
			jen.Comment(kindViolation+" reports a value outside its declared constraints."),
			jen.Id(kindViolation).Id(kindType).Op("=").Lit(2),
		),
		jen.Func().Params(jen.Id("k").Id(kindType)).Id("String").Params().String().Block(
			jen.Switch(jen.Id("k")).Block(
				jen.Case(jen.Id(kindMismatch)).Block(jen.Return(jen.Lit("type mismatch"))),
				jen.Case(jen.Id(kindViolation)).Block(jen.Return(jen.Lit("constraint violation"))),
			),
			jen.Return(jen.Lit("unknown")),
		),
		jen.Comment(errorType+" is returned by generated constructors. Field is the").Line().
			Comment("JSON property name of the rejected argument, dotted for values inside").Line().
			Comment("nested records.").Line().
			Type().Id(errorType).Struct(
			jen.Id("Field").String(),
			jen.Id("Kind").Id(kindType),
			jen.Id("Message").String(),
		),
		jen.Func().Params(jen.Id("e").Op("*").Id(errorType)).Id("Error").Params().String().Block(
			jen.Return(jen.Id("e").Dot("Message")),
		),
		nestedError(),
	}
}

// nestedError declares the function that qualifies the field of an error
// returned by a nested constructor with the parent property, so that a
// failure deep in the tree reads "opt.deep.z is required".
func nestedError() *jen.Statement {
	ve := jen.Id("ve")
	return jen.Func().Id(nestedFunc).Params(jen.Id("parent").String(), jen.Err().Error()).Error().Block(
		jen.List(ve, jen.Id("ok")).Op(":=").Err().Assert(jen.Op("*").Id(errorType)),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.Err())),
		jen.Id("field").Op(":=").Id("parent").Op("+").Lit(".").Op("+").Add(ve.Clone().Dot("Field")),
		jen.Id("msg").Op(":=").Add(ve.Clone().Dot("Message")),
		jen.If(jen.Qual("strings", "HasPrefix").Call(jen.Id("msg"), ve.Clone().Dot("Field"))).Block(
			jen.Id("msg").Op("=").Id("field").Op("+").Id("msg").Index(jen.Len(ve.Clone().Dot("Field")).Op(":")),
		),
		jen.Return(jen.Op("&").Id(errorType).Values(
			jen.Id("Field").Op(":").Id("field"),
			jen.Id("Kind").Op(":").Add(ve.Clone().Dot("Kind")),
			jen.Id("Message").Op(":").Id("msg"),
		)),
	)
}

// validationError builds &ValidationError{...} for a message known at
// generation time.
func validationError(field, kind, msg string) *jen.Statement {
	return jen.Op("&").Id(errorType).Values(
		jen.Id("Field").Op(":").Lit(field),
		jen.Id("Kind").Op(":").Id(kind),
		jen.Id("Message").Op(":").Lit(msg),
	)
}

// validationErrorf builds &ValidationError{...} whose field and message are
// computed at run time from the helper's field parameter.
func validationErrorf(kind, format string, args ...jen.Code) *jen.Statement {
	return jen.Op("&").Id(errorType).Values(
		jen.Id("Field").Op(":").Id("field"),
		jen.Id("Kind").Op(":").Id(kind),
		jen.Id("Message").Op(":").Qual("fmt", "Sprintf").Call(append([]jen.Code{jen.Lit(format)}, args...)...),
	)
}
