package compiler

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/ir"
	"github.com/reoring/recordgen/jsonschema"
)

func mustParse(t *testing.T, doc string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Parse([]byte(doc))
	require.NoError(t, err)
	return s
}

func categories(f ir.Field) []ir.Category {
	out := make([]ir.Category, len(f.Obligations))
	for i, o := range f.Obligations {
		out[i] = o.Category()
	}
	return out
}

func fieldNames(u *ir.Unit) []string {
	out := make([]string, len(u.Fields))
	for i, f := range u.Fields {
		out[i] = f.Name
	}
	return out
}

func TestBuild_NotObject(t *testing.T) {
	res, err := Build(mustParse(t, `{"type":"string"}`), "X", nil)
	require.NoError(t, err)
	assert.True(t, res.NotObject)
	assert.Nil(t, res.Top())

	res, err = Build(nil, "X", nil)
	require.NoError(t, err)
	assert.True(t, res.NotObject)
}

func TestBuild_FieldOrderAndRequired(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"integer"},"mid":{}},"required":["alpha"]}`)
	res, err := Build(s, "Thing", nil)
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	top := res.Top()
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, fieldNames(top))
	assert.False(t, top.Fields[0].Required)
	assert.True(t, top.Fields[1].Required)
	// untyped properties carry no obligation at all
	assert.Empty(t, top.Fields[2].Obligations)
	assert.Equal(t, ir.KindUnknown, top.Fields[2].Kind)
}

func TestBuild_NestedUnitsComeFirst(t *testing.T) {
	s := mustParse(t, `{
	  "type":"object",
	  "properties":{
	    "addr":{"type":"object","properties":{"street":{"type":"string"},"geo":{"type":"object","properties":{"lat":{"type":"number"}}}},"required":["street"]},
	    "name":{"type":"string"},
	    "categories":{"type":"object","properties":{}}
	  },
	  "required":["addr"]
	}`)
	res, err := Build(s, "Person", nil)
	require.NoError(t, err)
	var order []string
	for _, u := range res.Units {
		order = append(order, u.TypeName)
	}
	assert.Equal(t, []string{"PersonAddrGeo", "PersonAddr", "PersonCategory", "Person"}, order)

	addr := res.Top().Fields[0]
	assert.Equal(t, "PersonAddr", addr.Nested)
	require.Len(t, addr.Obligations, 1)
	assert.Equal(t, &ir.Nested{TypeName: "PersonAddr"}, addr.Obligations[0])
	assert.Equal(t, "/properties/addr", addr.Path)
}

func TestBuild_EmissionOrder(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{
	  "email":{"type":"string","format":"email","enum":["a@b.co"],"minLength":3,"maxLength":9,"pattern":"^a"},
	  "scores":{"type":"array","items":{"type":"integer","minimum":0,"maximum":10},"minItems":1,"maxItems":3},
	  "age":{"type":"integer","minimum":0,"maximum":1.5}
	}}`)
	res, err := Build(s, "R", nil)
	require.NoError(t, err)
	top := res.Top()

	assert.Equal(t, []ir.Category{ir.CatType, ir.CatFormat, ir.CatEnum, ir.CatLength, ir.CatLength, ir.CatPattern}, categories(top.Fields[0]))
	assert.Equal(t, []ir.Category{ir.CatType, ir.CatItems, ir.CatCount, ir.CatCount}, categories(top.Fields[1]))
	assert.Equal(t, &ir.Items{Kind: ir.KindInteger, Minimum: "0", Maximum: "10"}, top.Fields[1].Obligations[1])
	assert.Equal(t, []ir.Category{ir.CatType, ir.CatBound, ir.CatBound}, categories(top.Fields[2]))
	assert.Equal(t, &ir.Bound{Op: ir.Max, Value: "1.5"}, top.Fields[2].Obligations[2])
}

func TestBuild_UnionReplacesTypeCheck(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{
	  "v":{"type":"string","anyOf":[{"type":"string"},{"type":"object","required":["id"]},{"description":"x"}]},
	  "w":{"oneOf":[{"type":"integer"},{"type":"boolean"}]}
	},"required":["v"]}`)
	res, err := Build(s, "U", nil)
	require.NoError(t, err)
	top := res.Top()

	v := top.Fields[0]
	assert.True(t, v.Required)
	assert.Equal(t, ir.KindUnknown, v.Kind)
	u, ok := v.Obligations[0].(*ir.Union)
	require.True(t, ok)
	assert.Equal(t, ir.AnyOf, u.Mode)
	assert.Equal(t, ir.Alternative{Kind: ir.KindString, Source: `{"type":"string"}`}, u.Alternatives[0])
	assert.Equal(t, []string{"id"}, u.Alternatives[1].Required)
	assert.Equal(t, ir.KindUnknown, u.Alternatives[2].Kind)

	assert.Equal(t, ir.OneOf, top.Fields[1].Obligations[0].(*ir.Union).Mode)
	assert.True(t, top.Helpers.Has(ir.HelperAnyOf))
	assert.True(t, top.Helpers.Has(ir.HelperOneOf))
}

func TestBuild_FormatOnlyForStringOrUntyped(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{
	  "n":{"type":"integer","format":"int32"},
	  "u":{"format":"uri"}
	}}`)
	res, err := Build(s, "F", nil)
	require.NoError(t, err)
	top := res.Top()
	assert.Equal(t, []ir.Category{ir.CatType}, categories(top.Fields[0]))
	assert.Equal(t, []ir.Category{ir.CatFormat}, categories(top.Fields[1]))
}

func TestBuild_HelperMinimality(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{"a":{"type":"string","minLength":1},"b":{"type":"number","maximum":3},"c":{"type":"array","maxItems":1}}}`)
	res, err := Build(s, "Plain", nil)
	require.NoError(t, err)
	assert.True(t, res.Top().Helpers.Empty())
}

func TestBuild_Deterministic(t *testing.T) {
	doc := `{"type":"object","properties":{"tags":{"type":"object","properties":{"x":{"enum":[1,"a",null]}}},"v":{"anyOf":[{"type":"string"}]}}}`
	a, err := Build(mustParse(t, doc), "D", nil)
	require.NoError(t, err)
	b, err := Build(mustParse(t, doc), "D", nil)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(a, b))
}

func TestBuild_DocDescriptions(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{
	  "email":{"type":"string","format":"email","description":"Contact  address"},
	  "value":{"anyOf":[{"type":"string"},{"type":"integer"},{"type":"string"},{"required":["a"]}]},
	  "pick":{"oneOf":[{"type":"string"}]},
	  "status":{"type":"string","enum":["active","inactive",3]},
	  "tags":{"type":"array","items":{"type":"string"}},
	  "list":{"type":"array","items":{}},
	  "meta":{"type":"object"},
	  "free":{}
	}}`)
	res, err := Build(s, "Doc", i18n.New("en"))
	require.NoError(t, err)
	var docs []string
	for _, f := range res.Top().Fields {
		docs = append(docs, f.Doc)
	}
	assert.Equal(t, []string{
		"string (email) - Contact address",
		"string or integer or object",
		"oneOf pattern",
		`string ("active", "inactive", 3)`,
		"string[] (array)",
		"any[] (array)",
		"object",
		"any",
	}, docs)
}

func TestBuild_JapaneseDocs(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{"meta":{"type":"object"},"v":{"oneOf":[{}]}}}`)
	res, err := Build(s, "J", i18n.New("ja"))
	require.NoError(t, err)
	top := res.Top()
	assert.Equal(t, "オブジェクト", top.Fields[0].Doc)
	assert.Equal(t, "oneOf パターン", top.Fields[1].Doc)
}

func TestValidate_Issues(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{
	  "a":{"type":"string","properties":{"x":{}}},
	  "b":{"anyOf":[{}],"oneOf":[{}]},
	  "c":{"type":"object","properties":{},"required":["ghost"]},
	  "bad-name":{"type":"object"}
	},"required":["a","nope"]}`)
	_, err := Build(s, "Root", nil)
	var iss ir.Issues
	require.True(t, errors.As(err, &iss))

	got := map[string]string{}
	for _, is := range iss {
		got[is.Path] = is.Code
	}
	assert.Equal(t, map[string]string{
		"/required/1":              ir.CodeUnknownRequired,
		"/properties/a/properties": ir.CodePropertiesOnNonObject,
		"/properties/b":            ir.CodeUnionConflict,
		"/properties/c/required/0": ir.CodeUnknownRequired,
		"/properties/bad-name":     ir.CodeInvalidTypeName,
	}, got)
}

func TestValidate_TypeName(t *testing.T) {
	s := mustParse(t, `{"type":"object"}`)
	_, err := Build(s, "1Bad", nil)
	require.Error(t, err)
	_, err = Build(s, "", nil)
	require.Error(t, err)
	_, err = Build(s, "Good_1", nil)
	require.NoError(t, err)
}
