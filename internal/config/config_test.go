package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_YAML(t *testing.T) {
	p := write(t, t.TempDir(), ".recordgen.yaml", `
target: ruby
lang: ja
header: ""
strict: true
parse:
  allow_duplicate_keys: true
  max_depth: 64
log:
  level: debug
  format: json
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "ruby", cfg.Target)
	assert.Equal(t, "ja", cfg.Lang)
	assert.Equal(t, "records", cfg.Package)
	require.NotNil(t, cfg.Header)
	assert.Equal(t, "", *cfg.Header)
	assert.True(t, cfg.Strict)
	assert.Equal(t, ParseConfig{AllowDuplicateKeys: true, MaxDepth: 64}, cfg.Parse)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_TOML(t *testing.T) {
	p := write(t, t.TempDir(), ".recordgen.toml", `
package = "models"
output = "gen/models.go"

[parse]
max_depth = 32
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "go", cfg.Target)
	assert.Equal(t, "models", cfg.Package)
	assert.Equal(t, "gen/models.go", cfg.Output)
	assert.Nil(t, cfg.Header)
	assert.Equal(t, 32, cfg.Parse.MaxDepth)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key":  "targt: go\n",
		"bad target":   "target: cobol\n",
		"bad lang":     "lang: fr\n",
		"bad log":      "log:\n  format: xml\n",
		"negative":     "parse:\n  max_depth: -1\n",
		"invalid yaml": "target: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, dir, ".recordgen.yml", body))
			assert.Error(t, err)
		})
	}

	_, err := Load(write(t, dir, "recordgen.json", "{}"))
	assert.Error(t, err)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := write(t, root, ".recordgen.toml", "lang = \"ja\"\n")

	got, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	cfg, path, err := LoadDefault(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, "ja", cfg.Lang)
}

func TestLoadDefault_NoFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Find(dir); err == nil {
		t.Skip("a config file above the temp dir is outside the test's control")
	} else {
		require.ErrorIs(t, err, ErrNotFound)
	}
	cfg, path, err := LoadDefault(dir)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}
