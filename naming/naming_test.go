package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/recordgen/naming"
)

func TestSingularize(t *testing.T) {
	cases := map[string]string{
		"categories": "category",
		"boxes":      "box",
		"statuses":   "status",
		"addresses":  "addresse",
		"names":      "nam",
		"tags":       "tag",
		"class":      "class",
		"addr":       "addr",
		"datas":      "data",
		"s":          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, naming.Singularize(in), "singularize %q", in)
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Addr", naming.TypeName("addr"))
	assert.Equal(t, "ShippingAddress", naming.TypeName("shipping_address"))
	assert.Equal(t, "LineItem", naming.TypeName("line_items"))
	// capitalization lower-cases the tail of every word
	assert.Equal(t, "Mimetype", naming.TypeName("mimeType"))
}

func TestNested_Deterministic(t *testing.T) {
	a := naming.Nested("Person", "addr")
	b := naming.Nested("Person", "addr")
	assert.Equal(t, "PersonAddr", a)
	assert.Equal(t, a, b)
	assert.Equal(t, "OrderCategory", naming.Nested("Order", "categories"))
}

func TestFromFileName(t *testing.T) {
	assert.Equal(t, "UserProfiles", naming.FromFileName("user_profiles"))
	assert.Equal(t, "Schema", naming.FromFileName("schema"))
}
