// Package compiler lowers a JSON Schema object into record type IR.
//
// Lowering is a pure walk: Build returns the top-level unit together with
// the nested units it depends on, and holds no state between calls.
package compiler

import (
	"fmt"
	"unicode"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/engine"
	"github.com/reoring/recordgen/internal/ir"
	"github.com/reoring/recordgen/jsonschema"
	"github.com/reoring/recordgen/naming"
)

// Result is the outcome of lowering one schema.
type Result struct {
	// Units holds the nested units in depth-first property order followed
	// by the top-level unit. It is empty when NotObject is set.
	Units []*ir.Unit
	// NotObject is set when the root schema is not of type object. This is
	// a soft failure: callers render a diagnostic instead of a type.
	NotObject bool
}

// Top returns the top-level unit, or nil for a soft failure.
func (r Result) Top() *ir.Unit {
	if len(r.Units) == 0 {
		return nil
	}
	return r.Units[len(r.Units)-1]
}

// Build validates s and lowers it into units named after typeName. The
// translator only affects documentation strings.
func Build(s *jsonschema.Schema, typeName string, tr i18n.Translator) (Result, error) {
	if s == nil || s.Type != jsonschema.TypeObject {
		return Result{NotObject: true}, nil
	}
	if tr == nil {
		tr = i18n.New("en")
	}
	if iss := Validate(s, typeName); len(iss) > 0 {
		return Result{}, iss
	}
	w := walker{tr: tr}
	own, nested := w.build(s, typeName, "")
	units := make([]*ir.Unit, 0, len(nested)+1)
	for i := range nested {
		units = append(units, &nested[i])
	}
	units = append(units, &own)
	return Result{Units: units}, nil
}

type walker struct {
	tr i18n.Translator
}

// build returns the unit for s and, in declaration order, the units of the
// object properties it embeds (each preceded by its own nested units).
func (w walker) build(s *jsonschema.Schema, name, path string) (ir.Unit, []ir.Unit) {
	var nested []ir.Unit
	fields := make([]ir.Field, 0, len(s.Properties))
	for _, p := range s.Properties {
		ppath := engine.JoinPointer(path, "properties", p.Name)
		f := ir.Field{
			Name:     p.Name,
			Required: s.IsRequired(p.Name),
			Doc:      w.describe(p.Schema),
			Path:     ppath,
		}
		if p.Schema.Type == jsonschema.TypeObject {
			child := naming.Nested(name, p.Name)
			cu, cn := w.build(p.Schema, child, ppath)
			nested = append(nested, cn...)
			nested = append(nested, cu)
			f.Kind = ir.KindObject
			f.Nested = child
			f.Obligations = []ir.Obligation{&ir.Nested{TypeName: child}}
		} else {
			f.Kind, f.Obligations = obligations(p.Schema)
		}
		fields = append(fields, f)
	}
	u := ir.Unit{
		TypeName:    name,
		Description: s.Description,
		Fields:      fields,
		Helpers:     ir.ScanHelpers(fields),
	}
	return u, nested
}

// obligations lists the checks of a non-object property in emission order:
// type or union, format, enum, array items, then range checks.
func obligations(s *jsonschema.Schema) (ir.Kind, []ir.Obligation) {
	var out []ir.Obligation
	kind := kindOf(s.Type)
	switch {
	case s.AnyOf != nil:
		out = append(out, &ir.Union{Mode: ir.AnyOf, Alternatives: alternatives(s.AnyOf)})
		kind = ir.KindUnknown
	case s.OneOf != nil:
		out = append(out, &ir.Union{Mode: ir.OneOf, Alternatives: alternatives(s.OneOf)})
		kind = ir.KindUnknown
	case kind != ir.KindUnknown:
		out = append(out, &ir.TypeCheck{Kind: kind})
	}

	if s.Format != "" && (s.Type == jsonschema.TypeString || s.Type == jsonschema.TypeUnknown) {
		out = append(out, &ir.Format{Name: s.Format})
	}

	if s.Enum != nil {
		vals := make([]ir.Literal, 0, len(s.Enum))
		for _, v := range s.Enum {
			text, err := jsonschema.EncodeValue(v)
			if err != nil {
				text = fmt.Sprint(v)
			}
			vals = append(vals, ir.Literal{Value: v, JSON: text})
		}
		out = append(out, &ir.Enum{Values: vals})
	}

	// Range checks need a typed value; union fields stay untyped.
	switch kind {
	case ir.KindArray:
		if s.Items != nil {
			it := &ir.Items{Kind: kindOf(s.Items.Type)}
			if it.Kind.Numeric() {
				if s.Items.Minimum != nil {
					it.Minimum = s.Items.Minimum.String()
				}
				if s.Items.Maximum != nil {
					it.Maximum = s.Items.Maximum.String()
				}
			}
			out = append(out, it)
		}
		if s.MinItems != nil {
			out = append(out, &ir.Count{Op: ir.Min, Value: *s.MinItems})
		}
		if s.MaxItems != nil {
			out = append(out, &ir.Count{Op: ir.Max, Value: *s.MaxItems})
		}
	case ir.KindInteger, ir.KindNumber:
		if s.Minimum != nil {
			out = append(out, &ir.Bound{Op: ir.Min, Value: s.Minimum.String(), Integer: s.Minimum.IsInteger()})
		}
		if s.Maximum != nil {
			out = append(out, &ir.Bound{Op: ir.Max, Value: s.Maximum.String(), Integer: s.Maximum.IsInteger()})
		}
	case ir.KindString:
		if s.MinLength != nil {
			out = append(out, &ir.Length{Op: ir.Min, Value: *s.MinLength})
		}
		if s.MaxLength != nil {
			out = append(out, &ir.Length{Op: ir.Max, Value: *s.MaxLength})
		}
		if s.Pattern != nil {
			out = append(out, &ir.Pattern{Expr: *s.Pattern})
		}
	}
	return kind, out
}

func alternatives(alts []*jsonschema.Schema) []ir.Alternative {
	out := make([]ir.Alternative, 0, len(alts))
	for _, a := range alts {
		alt := ir.Alternative{Kind: kindOf(a.Type), Source: a.Canonical()}
		if a.Type == jsonschema.TypeObject && len(a.Required) > 0 {
			alt.Required = append([]string(nil), a.Required...)
		}
		out = append(out, alt)
	}
	return out
}

func kindOf(t jsonschema.Type) ir.Kind {
	if !t.Known() {
		return ir.KindUnknown
	}
	return ir.Kind(t)
}

// Validate reports the invariant violations that make s impossible to lower
// under typeName.
func Validate(s *jsonschema.Schema, typeName string) ir.Issues {
	var iss ir.Issues
	if !IsIdentifier(typeName) {
		iss = append(iss, ir.Issue{Code: ir.CodeInvalidTypeName, Message: fmt.Sprintf("%q is not a valid type name", typeName)})
	}
	validateObject(s, typeName, "", &iss)
	return iss
}

func validateObject(s *jsonschema.Schema, name, path string, iss *ir.Issues) {
	for i, r := range s.Required {
		if _, ok := s.Property(r); !ok {
			*iss = append(*iss, ir.Issue{
				Path:    engine.JoinPointer(path, "required", fmt.Sprint(i)),
				Code:    ir.CodeUnknownRequired,
				Message: fmt.Sprintf("required property %q is not declared in properties", r),
			})
		}
	}
	for _, p := range s.Properties {
		ppath := engine.JoinPointer(path, "properties", p.Name)
		ps := p.Schema
		if ps.Type == jsonschema.TypeObject {
			child := naming.Nested(name, p.Name)
			if !IsIdentifier(child) {
				*iss = append(*iss, ir.Issue{
					Path:    ppath,
					Code:    ir.CodeInvalidTypeName,
					Message: fmt.Sprintf("derived type name %q is not a valid identifier", child),
				})
			}
			validateObject(ps, child, ppath, iss)
			continue
		}
		if ps.HasProperties && ps.Type.Known() {
			*iss = append(*iss, ir.Issue{
				Path:    engine.JoinPointer(ppath, "properties"),
				Code:    ir.CodePropertiesOnNonObject,
				Message: fmt.Sprintf("a %s schema cannot declare properties", ps.Type),
			})
		}
		if ps.AnyOf != nil && ps.OneOf != nil {
			*iss = append(*iss, ir.Issue{
				Path:    ppath,
				Code:    ir.CodeUnionConflict,
				Message: "a property cannot declare both anyOf and oneOf",
			})
		}
	}
}

// IsIdentifier reports whether name is a letter or underscore followed by
// letters, digits and underscores.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
