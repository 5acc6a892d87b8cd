package recordgen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/recordgen"
	"github.com/reoring/recordgen/jsonschema"
)

func TestLoad_DuplicateKey_Error(t *testing.T) {
	c := mustCompiler(t)
	_, err := c.Load(recordgen.JSONBytes([]byte(`{"type":"object","properties":{"a":{},"a":{}}}`)))
	if err == nil {
		t.Fatalf("expected error for duplicate key")
	}
	iss, ok := recordgen.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues error, got: %v", err)
	}
	if len(iss) == 0 || iss[0].Code != recordgen.CodeDuplicateKey {
		t.Fatalf("expected duplicate_key issue, got: %v", iss)
	}
	if iss[0].Path != "/properties/a" {
		t.Fatalf("expected path=/properties/a, got: %s", iss[0].Path)
	}
}

func TestLoad_DuplicateKey_Allowed(t *testing.T) {
	c := mustCompiler(t, recordgen.WithParseOptions(jsonschema.Options{AllowDuplicateKeys: true}))
	s, err := c.Load(recordgen.JSONBytes([]byte(`{"type":"string","type":"object"}`)))
	if err != nil {
		t.Fatalf("duplicates should be allowed: %v", err)
	}
	if s.Type != jsonschema.TypeObject {
		t.Fatalf("expected the last member to win, got %q", s.Type)
	}
}

func TestLoad_MaxDepth_Exceeded(t *testing.T) {
	c := mustCompiler(t, recordgen.WithParseOptions(jsonschema.Options{MaxDepth: 2}))
	_, err := c.Load(recordgen.JSONReader(strings.NewReader(`{"properties":{"a":{"type":"object"}}}`)))
	iss, ok := recordgen.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Code != recordgen.CodeParseError {
		t.Fatalf("expected depth parse_error, got: %v", err)
	}
}

func TestLoad_YAMLKeepsOrder(t *testing.T) {
	doc := []byte("type: object\nproperties:\n  zeta:\n    type: string\n  alpha:\n    type: integer\nrequired: [zeta]\n")
	c := mustCompiler(t)
	s, err := c.Load(recordgen.YAMLBytes(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Properties) != 2 || s.Properties[0].Name != "zeta" || s.Properties[1].Name != "alpha" {
		t.Fatalf("unexpected property order: %+v", s.Properties)
	}
}

func TestLoad_FileSourcePicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "user.json")
	yamlPath := filepath.Join(dir, "user.yml")
	if err := os.WriteFile(jsonPath, []byte(`{"type":"object","properties":{"id":{"type":"integer"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("type: object\nproperties:\n  id:\n    type: integer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := mustCompiler(t)
	for _, p := range []string{jsonPath, yamlPath} {
		s, err := c.Load(recordgen.FileSource(p))
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if _, ok := s.Property("id"); !ok {
			t.Fatalf("%s: property id missing", p)
		}
	}
	if got := recordgen.FormatOf("A.YAML"); got != recordgen.FormatYAML {
		t.Fatalf("expected yaml, got %s", got)
	}

	_, err := c.Load(recordgen.FileSource(filepath.Join(dir, "missing.json")))
	if err == nil {
		t.Fatalf("expected error for a missing file")
	}
	if _, ok := recordgen.AsIssues(err); ok {
		t.Fatalf("IO errors must not be reported as Issues: %v", err)
	}
}

func TestLoad_Strict(t *testing.T) {
	doc := []byte(`{"type":"object","uniqueItems":"yes"}`)

	lenient := mustCompiler(t)
	if _, err := lenient.Load(recordgen.JSONBytes(doc)); err != nil {
		t.Fatalf("lenient load should ignore unknown keyword shapes: %v", err)
	}

	strict := mustCompiler(t, recordgen.WithStrict(true))
	_, err := strict.Load(recordgen.JSONBytes(doc))
	iss, ok := recordgen.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != recordgen.CodeSchemaCheck || iss[0].Cause == nil {
		t.Fatalf("expected schema_check issue, got: %v", err)
	}
}
