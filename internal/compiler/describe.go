package compiler

import (
	"strings"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/jsonschema"
)

// describe renders the one-line type description used in documentation
// comments, e.g. `string (email) - Contact address` or `integer[] (array)`.
func (w walker) describe(s *jsonschema.Schema) string {
	var b strings.Builder
	switch {
	case s.AnyOf != nil:
		seen := map[string]bool{}
		var types []string
		for _, a := range s.AnyOf {
			t := a.TypeLabel
			if t == "" {
				t = w.tr.Message(i18n.DocObject, nil)
			}
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
		b.WriteString(strings.Join(types, w.tr.Message(i18n.DocOr, nil)))
	case s.OneOf != nil:
		b.WriteString(w.tr.Message(i18n.DocOneOf, nil))
	case s.Enum != nil:
		vals := make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			text, err := jsonschema.EncodeValue(v)
			if err != nil {
				continue
			}
			vals = append(vals, text)
		}
		b.WriteString(w.label(s.TypeLabel))
		b.WriteString(" (")
		b.WriteString(strings.Join(vals, ", "))
		b.WriteString(")")
	case s.Type == jsonschema.TypeArray && s.Items != nil:
		b.WriteString(w.label(s.Items.TypeLabel))
		b.WriteString("[] (")
		b.WriteString(w.tr.Message(i18n.DocArray, nil))
		b.WriteString(")")
	case s.Type == jsonschema.TypeObject:
		b.WriteString(w.tr.Message(i18n.DocObject, nil))
	default:
		b.WriteString(w.label(s.TypeLabel))
		if s.Format != "" {
			b.WriteString(" (")
			b.WriteString(s.Format)
			b.WriteString(")")
		}
	}
	if s.Description != "" {
		b.WriteString(" - ")
		b.WriteString(s.Description)
	}
	// Documentation lines must stay single-line comments.
	return strings.Join(strings.Fields(b.String()), " ")
}

func (w walker) label(t string) string {
	if t == "" {
		return w.tr.Message(i18n.DocAny, nil)
	}
	return t
}
