package ruby

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/internal/compiler"
	"github.com/reoring/recordgen/internal/gen"
	"github.com/reoring/recordgen/internal/ir"
	"github.com/reoring/recordgen/jsonschema"
)

func units(t *testing.T, doc, name string, tr i18n.Translator) []*ir.Unit {
	t.Helper()
	s, err := jsonschema.Parse([]byte(doc))
	require.NoError(t, err)
	res, err := compiler.Build(s, name, tr)
	require.NoError(t, err)
	return res.Units
}

func TestUnit_UserShape(t *testing.T) {
	us := units(t, `{"type":"object","properties":{
	  "name":{"type":"string"},
	  "age":{"type":"integer","minimum":0},
	  "email":{"type":"string"},
	  "is_active":{"type":"boolean"}
	},"required":["name","age","email"]}`, "User", nil)
	out, err := New(nil).Unit(us[0])
	require.NoError(t, err)

	want := `# User fields:
# - name: string
# - age: integer
# - email: string
# - is_active: boolean

User = Data.define(:name, :age, :email, :is_active) do
  def initialize(name:, age:, email:, is_active: nil)
    raise TypeError, "name must be a string" unless name.is_a?(String)
    raise TypeError, "age must be an integer" unless age.is_a?(Integer)
    raise ArgumentError, "age must be greater than or equal to 0" if age < 0
    raise TypeError, "email must be a string" unless email.is_a?(String)
    unless is_active.nil?
      raise TypeError, "is_active must be a boolean" unless [true, false].include?(is_active)
    end
    super(name: name, age: age, email: email, is_active: is_active)
  end
end`
	assert.Equal(t, want, out)
}

func TestUnit_OptionalChecksAreGuarded(t *testing.T) {
	us := units(t, `{"type":"object","properties":{"n":{"type":"integer","minimum":1,"maximum":9}}}`, "G", nil)
	out, err := New(nil).Unit(us[0])
	require.NoError(t, err)
	assert.Contains(t, out, `    unless n.nil?
      raise TypeError, "n must be an integer" unless n.is_a?(Integer)
      raise ArgumentError, "n must be greater than or equal to 1" if n < 1
      raise ArgumentError, "n must be less than or equal to 9" if n > 9
    end`)
}

func TestUnit_NestedAndHelpers(t *testing.T) {
	us := units(t, `{"type":"object","properties":{
	  "addr":{"type":"object","properties":{"city":{"type":"string"}}},
	  "tags":{"type":"array","items":{"type":"string"}},
	  "kind":{"enum":["a",1,null,{"k":"it's"}]},
	  "v":{"oneOf":[{"type":"string"},{"type":"integer"}]}
	},"required":["addr"]}`, "Doc", nil)
	require.Len(t, us, 2)
	out, err := New(nil).Unit(us[1])
	require.NoError(t, err)

	assert.Contains(t, out, `raise TypeError, "addr must be an object" unless addr.is_a?(Hash) || addr.is_a?(DocAddr)`)
	assert.Contains(t, out, `addr = DocAddr.new(**addr.transform_keys(&:to_sym)) if addr.is_a?(Hash)`)
	assert.Contains(t, out, `validate_array_items(tags, "string", "tags")`)
	assert.Contains(t, out, `validate_enum(kind, ["a", 1, nil, JSON.parse('{"k":"it\'s"}')], "kind")`)
	assert.Contains(t, out, `validate_one_of(v, [JSON.parse('{"type":"string"}'), JSON.parse('{"type":"integer"}')], "v")`)
	assert.Contains(t, out, "\n  private\n")
	assert.Contains(t, out, `raise TypeError, "All items in #{array_name} must be #{expected}" unless type_check.call(item)`)
	assert.Contains(t, out, `raise ArgumentError, "#{field_name} must match exactly one of the allowed schemas"`)
	assert.Contains(t, out, "def validate_schema(value, schema)")
	assert.NotContains(t, out, "def validate_any_of")
	assert.NotContains(t, out, "def validate_format")
	assert.True(t, strings.HasSuffix(out, "\nend"))
}

func TestUnit_NoPrivateSectionWithoutHelpers(t *testing.T) {
	us := units(t, `{"type":"object","properties":{"a":{"type":"string","maxLength":3}}}`, "P", nil)
	out, err := New(nil).Unit(us[0])
	require.NoError(t, err)
	assert.NotContains(t, out, "private")
}

func TestUnit_Japanese(t *testing.T) {
	tr := i18n.New("ja")
	us := units(t, `{"type":"object","properties":{"uri":{"type":"string","format":"uri","description":"The URI."}},"required":["uri"]}`, "Blob", tr)
	out, err := New(tr).Unit(us[0])
	require.NoError(t, err)
	assert.Contains(t, out, "# Blob クラスの型定義:\n# - uri: string (uri) - The URI.\n")
	assert.Contains(t, out, `raise TypeError, "uriは文字列である必要があります" unless uri.is_a?(String)`)
	assert.Contains(t, out, `validate_format(uri, "uri", "uri")`)
	assert.Contains(t, out, `raise ArgumentError, "#{field_name}は有効なURI形式ではありません"`)
}

func TestUnit_Escaping(t *testing.T) {
	us := units(t, `{"type":"object","properties":{"code":{"type":"string","pattern":"^\"#{x}\\d$"}}}`, "E", nil)
	out, err := New(nil).Unit(us[0])
	require.NoError(t, err)
	assert.Contains(t, out, `code.match?(Regexp.new("^\"\#{x}\\d$", Regexp::IGNORECASE))`)
}

func TestUnit_InvalidNames(t *testing.T) {
	us := units(t, `{"type":"object","properties":{"mimeType":{},"Bad":{},"end":{},"x-y":{}}}`, "Ok", nil)
	_, err := New(nil).Unit(us[0])
	var iss ir.Issues
	require.True(t, errors.As(err, &iss))
	var paths []string
	for _, is := range iss {
		assert.Equal(t, ir.CodeInvalidIdentifier, is.Code)
		paths = append(paths, is.Path)
	}
	assert.Equal(t, []string{"/properties/Bad", "/properties/end", "/properties/x-y"}, paths)

	us = units(t, `{"type":"object"}`, "lower", nil)
	_, err = New(nil).Unit(us[0])
	require.True(t, errors.As(err, &iss))
	assert.Equal(t, ir.CodeInvalidTypeName, iss[0].Code)
}

func TestFile_Layout(t *testing.T) {
	r := New(nil)
	us := units(t, `{"type":"object","properties":{"v":{"anyOf":[{"type":"string"}]}}}`, "U", nil)
	out, err := r.File(gen.FileOptions{Header: "Code generated by recordgen. DO NOT EDIT."}, []gen.Part{
		{Units: us},
		{Diagnostic: "definition \"Missing\" does not exist in the JSON schema"},
	})
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "# frozen_string_literal: true\n# Code generated by recordgen. DO NOT EDIT.\n\nrequire \"json\"\n\n# U fields:\n"))
	assert.True(t, strings.HasSuffix(s, "end\n\n# definition \"Missing\" does not exist in the JSON schema\n"))
}

func TestFile_NoJSONRequireWithoutUnions(t *testing.T) {
	us := units(t, `{"type":"object","properties":{"a":{"type":"string"}}}`, "A", nil)
	out, err := New(nil).File(gen.FileOptions{}, []gen.Part{{Units: us}})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "require")
	assert.True(t, strings.HasPrefix(string(out), "# frozen_string_literal: true\n\n# A fields:\n"))
}
