package golang

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// reserved names must never be taken by parameters or locals. They cover the
// predeclared identifiers and package names the generated code refers to,
// and the temporaries used inside constructors.
var reserved = []string{
	"bool", "string", "int", "int32", "int64", "float32", "float64",
	"interface", "map", "len", "nil", "true", "false", "error", "make", "append",
	"bytes", "fmt", "json", "math", "net", "regexp", "strings", "time", "url", "utf8",
	"f", "ferr", "m", "n", "nv", "ok", "err", "v", "x",
}

// helperNames are the unexported methods a unit may declare; struct fields
// must not collide with them.
var helperNames = []string{
	"validateArrayItems", "validateArrayItemsMinimum", "validateArrayItemsMaximum",
	"validateEnum", "validateAnyOf", "validateOneOf", "validateSchema",
	"validateFormat", "toFloat", "kindMatches",
}

// namer hands out unique identifiers within one scope.
type namer struct {
	taken map[string]bool
}

func newNamer(reservedSets ...[]string) *namer {
	n := &namer{taken: map[string]bool{}}
	for _, set := range reservedSets {
		for _, s := range set {
			n.taken[s] = true
		}
	}
	return n
}

// name returns base, or base with a numeric suffix when base is taken.
func (n *namer) name(base string) string {
	if !n.taken[base] {
		n.taken[base] = true
		return base
	}
	for i := 2; ; i++ {
		c := base + strconv.Itoa(i)
		if !n.taken[c] {
			n.taken[c] = true
			return c
		}
	}
}

// lowerIdent converts a JSON property name into a lowerCamel Go identifier:
// "is_active" -> "isActive", "URL" -> "url", "2fa" -> "f2fa", "type" -> "type_".
func lowerIdent(prop string) string {
	words := strings.FieldsFunc(prop, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return "field"
	}
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(lowerWord(w))
			continue
		}
		b.WriteString(upperFirst(w))
	}
	id := b.String()
	if r := []rune(id)[0]; !unicode.IsLetter(r) {
		id = "f" + id
	}
	if token.IsKeyword(id) {
		id += "_"
	}
	return id
}

func lowerWord(w string) string {
	if strings.ToUpper(w) == w {
		return strings.ToLower(w)
	}
	r := []rune(w)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func upperFirst(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// accessorName derives the exported getter name from a field identifier.
func accessorName(field string) string {
	return upperFirst(strings.TrimSuffix(field, "_"))
}
