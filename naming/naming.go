// Package naming derives the type names of nested record types from the
// property names that introduce them.
//
// The derivation is a fixed suffix heuristic, not a linguistic one:
// "categories" becomes "Category" and "boxes" becomes "Box", but "names"
// becomes "Nam" and "addresses" becomes "Addresse". Generated code may depend
// on these exact names, so the rules must stay as they are.
package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Singularize strips a plural suffix from name. Rules are tried in order:
// "ies" becomes "y"; otherwise a trailing "es" is dropped unless the name ends
// in "sses"; otherwise a trailing "s" is dropped unless the name ends in "ss".
func Singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "es") && !strings.HasSuffix(name, "sses"):
		return strings.TrimSuffix(name, "es")
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss"):
		return strings.TrimSuffix(name, "s")
	}
	return name
}

// TypeName converts a property name into a type name fragment: the name is
// singularized once, split on "_" and every word is capitalized (first letter
// upper case, the rest lower case).
func TypeName(property string) string {
	// Casers keep state between calls and must not be shared.
	caser := cases.Title(language.Und)
	words := strings.Split(Singularize(property), "_")
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

// Nested returns the name of the record type synthesized for property inside
// the record type parent.
func Nested(parent, property string) string {
	return parent + TypeName(property)
}

// FromFileName derives a root type name from a schema file base name without
// extension: "user_profile" becomes "UserProfile". No singularization is
// applied.
func FromFileName(base string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range strings.Split(base, "_") {
		b.WriteString(caser.String(w))
	}
	return b.String()
}
