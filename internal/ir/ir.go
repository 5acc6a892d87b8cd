// Package ir defines the intermediate representation between the schema walk
// and the target-language renderers. This package is internal and not part of
// the public API.
//
// A Unit describes one record type. Its Fields carry ordered Obligations:
// the validation rules a constructor must enforce, in emission order. The
// walk decides what to check; renderers decide only how to spell it.
package ir

// Kind names the runtime shape a value must have.
type Kind string

const (
	KindUnknown Kind = ""
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	// KindObject is an opaque map: only map-ness is checked.
	KindObject Kind = "object"
)

// Numeric reports whether k is integer or number.
func (k Kind) Numeric() bool { return k == KindInteger || k == KindNumber }

// Category identifies an obligation type.
type Category int

const (
	CatNested Category = iota
	CatType
	CatUnion
	CatFormat
	CatEnum
	CatItems
	CatBound
	CatLength
	CatPattern
	CatCount
)

// Obligation is one validation rule emitted for a field.
type Obligation interface {
	Category() Category
}

// Nested constructs the field's value as the nested record type TypeName
// from a map argument.
type Nested struct {
	TypeName string
}

func (*Nested) Category() Category { return CatNested }

// TypeCheck requires the value to have the given runtime kind.
type TypeCheck struct {
	Kind Kind
}

func (*TypeCheck) Category() Category { return CatType }

// UnionMode distinguishes anyOf from oneOf.
type UnionMode int

const (
	AnyOf UnionMode = iota
	OneOf
)

func (m UnionMode) String() string {
	if m == OneOf {
		return "oneOf"
	}
	return "anyOf"
}

// Alternative is one member of a union. Matching only looks at Kind and, for
// object alternatives, the Required keys; Source keeps the alternative's
// schema text verbatim for targets that embed it.
type Alternative struct {
	Kind     Kind
	Required []string
	Source   string
}

// Union requires the value to match at least one (AnyOf) or exactly one
// (OneOf) of the alternatives.
type Union struct {
	Mode         UnionMode
	Alternatives []Alternative
}

func (*Union) Category() Category { return CatUnion }

// Format requires a string value to be well-formed for Name. Formats without
// a built-in check always pass.
type Format struct {
	Name string
}

func (*Format) Category() Category { return CatFormat }

// Literal is an enum value as written in the schema.
type Literal struct {
	// Value is string, json.Number, bool, nil or a decoded compound value.
	Value any
	// JSON is the compact JSON text of Value.
	JSON string
}

// Enum restricts the value to the listed literals.
type Enum struct {
	Values []Literal
}

func (*Enum) Category() Category { return CatEnum }

// Items checks every element of an array. Kind may be KindUnknown, in which
// case elements are not type checked. Minimum and Maximum are only set for
// numeric item kinds.
type Items struct {
	Kind    Kind
	Minimum string
	Maximum string
}

func (*Items) Category() Category { return CatItems }

// Op selects the lower or upper side of a range check.
type Op int

const (
	Min Op = iota
	Max
)

// Bound is an inclusive numeric bound. Value is the literal from the schema.
type Bound struct {
	Op    Op
	Value string
	// Integer is true when Value has no fraction or exponent.
	Integer bool
}

func (*Bound) Category() Category { return CatBound }

// Length is an inclusive bound on string length counted in characters.
type Length struct {
	Op    Op
	Value int
}

func (*Length) Category() Category { return CatLength }

// Pattern requires a case-insensitive regular expression match.
type Pattern struct {
	Expr string
}

func (*Pattern) Category() Category { return CatPattern }

// Count is an inclusive bound on array length.
type Count struct {
	Op    Op
	Value int
}

func (*Count) Category() Category { return CatCount }

// Field is one record field.
type Field struct {
	Name     string
	Required bool
	// Kind is the declared kind used for the field's storage type. It is
	// KindUnknown for untyped and union fields.
	Kind Kind
	// Nested is the record type name for object fields.
	Nested string
	// Doc is the human readable type description.
	Doc string
	// Path is the JSON Pointer of the property schema.
	Path        string
	Obligations []Obligation
}

// Helper identifies a shared routine a unit needs.
type Helper int

const (
	HelperItems Helper = 1 << iota
	HelperEnum
	HelperAnyOf
	HelperOneOf
	HelperFormat
)

// HelperSet is a bit set of helpers.
type HelperSet int

// Has reports whether h is in the set.
func (s HelperSet) Has(h Helper) bool { return int(s)&int(h) != 0 }

// Add returns the set with h included.
func (s HelperSet) Add(h Helper) HelperSet { return HelperSet(int(s) | int(h)) }

// Empty reports whether no helper is needed.
func (s HelperSet) Empty() bool { return s == 0 }

// NeedsSchemaMatch reports whether the per-alternative match routine is
// needed.
func (s HelperSet) NeedsSchemaMatch() bool { return s.Has(HelperAnyOf) || s.Has(HelperOneOf) }

// Unit is one record type declaration.
type Unit struct {
	TypeName    string
	Description string
	Fields      []Field
	Helpers     HelperSet
}

// ScanHelpers derives the helper set from the obligations of every field.
func ScanHelpers(fields []Field) HelperSet {
	var hs HelperSet
	for _, f := range fields {
		for _, o := range f.Obligations {
			switch ob := o.(type) {
			case *Items:
				hs = hs.Add(HelperItems)
			case *Enum:
				hs = hs.Add(HelperEnum)
			case *Union:
				if ob.Mode == OneOf {
					hs = hs.Add(HelperOneOf)
				} else {
					hs = hs.Add(HelperAnyOf)
				}
			case *Format:
				hs = hs.Add(HelperFormat)
			}
		}
	}
	return hs
}

// Issue reports a schema that cannot be lowered to IR or rendered.
type Issue struct {
	Path    string // JSON Pointer into the schema document.
	Code    string
	Message string
}

// Issue codes.
const (
	CodeUnknownRequired       = "unknown_required"
	CodeUnionConflict         = "union_conflict"
	CodePropertiesOnNonObject = "properties_on_non_object"
	CodeInvalidTypeName       = "invalid_type_name"
	CodeInvalidPattern        = "invalid_pattern"
	CodeInvalidIdentifier     = "invalid_identifier"
)

// Issues is a list of problems; it implements error.
type Issues []Issue

func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	msg := iss[0].Code + " at " + rootPath(iss[0].Path) + ": " + iss[0].Message
	if len(iss) > 1 {
		msg += " (and more)"
	}
	return msg
}

func rootPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
