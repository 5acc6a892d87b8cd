package recordgen_test

import (
	"bytes"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/recordgen"
	"github.com/reoring/recordgen/jsonschema"
)

const personDoc = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age":  {"type": "integer", "minimum": 0},
    "addr": {"type": "object", "properties": {"city": {"type": "string"}}}
  },
  "required": ["name", "addr"]
}`

func mustParse(t *testing.T, doc string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Parse([]byte(doc))
	require.NoError(t, err)
	return s
}

func mustCompiler(t *testing.T, opts ...recordgen.Option) *recordgen.Compiler {
	t.Helper()
	c, err := recordgen.New(opts...)
	require.NoError(t, err)
	return c
}

func TestCompile_NestedFirst(t *testing.T) {
	for _, target := range recordgen.Targets() {
		t.Run(string(target), func(t *testing.T) {
			c := mustCompiler(t, recordgen.WithTarget(target))
			out, err := c.Build(mustParse(t, personDoc), "Person")
			require.NoError(t, err)
			require.Len(t, out.Units, 2)
			assert.Equal(t, "PersonAddr", out.Units[0].TypeName)
			assert.Equal(t, "Person", out.Units[1].TypeName)
			assert.Equal(t, out.Units[0].Source+"\n\n"+out.Units[1].Source, out.Code)
			assert.Empty(t, out.Diagnostic)

			code, err := c.Compile(mustParse(t, personDoc), "Person")
			require.NoError(t, err)
			assert.Equal(t, out.Code, code)
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	c := mustCompiler(t)
	a, err := c.Compile(mustParse(t, personDoc), "Person")
	require.NoError(t, err)
	b, err := c.Compile(mustParse(t, personDoc), "Person")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompile_NotObject(t *testing.T) {
	cases := []struct {
		target recordgen.Target
		lang   string
		want   string
	}{
		{recordgen.TargetGo, "en", "// the JSON schema type is not object"},
		{recordgen.TargetRuby, "en", "# the JSON schema type is not object"},
		{recordgen.TargetRuby, "ja", "# JSONスキーマの型がobjectではありません"},
	}
	for _, tc := range cases {
		c := mustCompiler(t, recordgen.WithTarget(tc.target), recordgen.WithLanguage(tc.lang))
		code, err := c.Compile(mustParse(t, `{"type":"string"}`), "X")
		require.NoError(t, err)
		assert.Equal(t, tc.want, code)
	}
}

func TestCompile_IssuesForBrokenSchemas(t *testing.T) {
	c := mustCompiler(t)
	_, err := c.Compile(mustParse(t, `{"type":"object","properties":{"a":{}},"required":["b"]}`), "X")
	iss, ok := recordgen.AsIssues(err)
	require.True(t, ok, "expected Issues, got %v", err)
	require.Len(t, iss, 1)
	assert.Equal(t, recordgen.CodeUnknownRequired, iss[0].Code)
	assert.Equal(t, "/required/0", iss[0].Path)

	_, err = c.Compile(mustParse(t, `{"type":"object"}`), "not a name")
	iss, ok = recordgen.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, recordgen.CodeInvalidTypeName, iss[0].Code)
}

func TestCompile_RubyRejectsUnusableNames(t *testing.T) {
	c := mustCompiler(t, recordgen.WithTarget(recordgen.TargetRuby))
	_, err := c.Compile(mustParse(t, `{"type":"object","properties":{"class":{}}}`), "X")
	iss, ok := recordgen.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, recordgen.CodeInvalidIdentifier, iss[0].Code)
	assert.Equal(t, "/properties/class", iss[0].Path)
}

func TestNew_UnknownTarget(t *testing.T) {
	_, err := recordgen.New(recordgen.WithTarget("cobol"))
	require.Error(t, err)

	_, err = recordgen.ParseTarget("COBOL")
	require.Error(t, err)
	got, err := recordgen.ParseTarget(" Ruby ")
	require.NoError(t, err)
	assert.Equal(t, recordgen.TargetRuby, got)
}

func TestRender_GoFile(t *testing.T) {
	c := mustCompiler(t, recordgen.WithPackage("models"))
	person, err := c.Build(mustParse(t, personDoc), "Person")
	require.NoError(t, err)
	bad, err := c.Build(mustParse(t, `{"type":"array"}`), "Bad")
	require.NoError(t, err)

	src, err := c.Render(person, bad)
	require.NoError(t, err)
	s := string(src)
	assert.True(t, strings.HasPrefix(s, "// "+recordgen.DefaultHeader))
	assert.Contains(t, s, "package models")
	assert.Contains(t, s, "type ValidationError struct")
	assert.Contains(t, s, "// the JSON schema type is not object")
	assert.Less(t, strings.Index(s, "type PersonAddr struct"), strings.Index(s, "type Person struct"))

	_, err = parser.ParseFile(token.NewFileSet(), "models.go", src, parser.AllErrors)
	require.NoError(t, err)
	assert.Equal(t, ".go", c.FileExtension())
}

func TestRender_NoHeader(t *testing.T) {
	c := mustCompiler(t, recordgen.WithTarget(recordgen.TargetRuby), recordgen.WithHeader(""))
	out, err := c.Build(mustParse(t, personDoc), "Person")
	require.NoError(t, err)
	src, err := c.Render(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "# frozen_string_literal: true\n\n# PersonAddr fields:"))
	assert.Equal(t, ".rb", c.FileExtension())
}

func TestWithLogger_ReceivesDebugEntries(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})

	c := mustCompiler(t, recordgen.WithLogger(l))
	_, err := c.Compile(mustParse(t, personDoc), "Person")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"compiled"`)
	assert.Contains(t, buf.String(), `"type":"Person"`)
	assert.Contains(t, buf.String(), `"target":"go"`)
}
