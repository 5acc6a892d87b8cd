package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaJSON = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "home": {"type": "object", "properties": {"city": {"type": "string"}}}
  },
  "required": ["name"],
  "definitions": {
    "Tag": {"type": "object", "properties": {"label": {"type": "string"}}},
    "Color": {"type": "string", "enum": ["red"]}
  }
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("RECORDGEN_LOG_LEVEL", "")
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRoot_DefaultsToFileName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "user_profile.json", schemaJSON)
	out, _, err := execute(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "package records")
	assert.Contains(t, out, "type UserProfileHome struct")
	assert.Contains(t, out, "func NewUserProfile(name, home interface{}) (UserProfile, error)")
}

func TestRoot_RubyClassName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "user.json", schemaJSON)
	out, _, err := execute(t, "-t", "ruby", "-c", "Account", path)
	require.NoError(t, err)
	assert.Contains(t, out, "AccountHome = Data.define(:city)")
	assert.Contains(t, out, "Account = Data.define(:name, :home)")
}

func TestRoot_Definitions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.json", schemaJSON)

	out, _, err := execute(t, "-l", path)
	require.NoError(t, err)
	assert.Equal(t, "available definitions:\n- Tag\n- Color\n", out)

	out, _, err = execute(t, "-t", "ruby", "-d", "Tag", "-c", "Label", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Label = Data.define(:label)")

	out, _, err = execute(t, "-t", "ruby", "-m", "Tag,Nope", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Tag = Data.define(:label)")
	assert.Contains(t, out, `# definition "Nope" does not exist in the JSON schema`)

	out, _, err = execute(t, "-t", "ruby", "-a", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Tag = Data.define(:label)")
	assert.Contains(t, out, "# the JSON schema type is not object")

	out, _, err = execute(t, "-t", "ruby", "--lang", "ja", "-m", "", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# 定義名が指定されていません")
}

func TestRoot_ExclusiveFlags(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.json", schemaJSON)
	_, _, err := execute(t, "-d", "Tag", "-a", path)
	assert.Error(t, err)
	_, _, err = execute(t)
	assert.Error(t, err)
}

func TestRoot_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "user.yaml", "type: object\nproperties:\n  id:\n    type: integer\n")
	target := filepath.Join(dir, "gen", "user.go")

	out, _, err := execute(t, "-o", target, "-p", "models", path)
	require.NoError(t, err)
	assert.Equal(t, "generated "+target+"\n", out)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(b), "package models")
	assert.Contains(t, string(b), "func (r User) Id() *int64")
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".recordgen.yaml", "target: ruby\nheader: \"\"\n")
	path := writeFile(t, dir, "user.json", schemaJSON)

	out, _, err := execute(t, path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# frozen_string_literal: true\n\n"), out)

	// Explicit flags win over the file.
	out, _, err = execute(t, "-t", "go", path)
	require.NoError(t, err)
	assert.Contains(t, out, "package records")

	bad := writeFile(t, t.TempDir(), "bad.toml", "target = \"cobol\"\n")
	_, _, err = execute(t, "--config", bad, path)
	assert.Error(t, err)
}

func TestRoot_Errors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	broken := writeFile(t, dir, "broken.json", `{"type":"object","required":["ghost"]}`)
	_, _, err = execute(t, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_required at /required/0")

	strict := writeFile(t, dir, "strict.json", `{"type":"object","uniqueItems":"yes"}`)
	_, _, err = execute(t, strict)
	require.NoError(t, err)
	_, _, err = execute(t, "--strict", strict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_check")
}

func TestRoot_VerboseJSONLogging(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "user.json", schemaJSON)
	_, logs, err := execute(t, "-v", "--json", "-o", filepath.Join(dir, "user.go"), path)
	require.NoError(t, err)
	assert.Contains(t, logs, `"component":"cli"`)
	assert.Contains(t, logs, `"msg":"schema loaded"`)
	assert.Contains(t, logs, `"msg":"generated"`)
}

func TestWatchLoop_DebouncesAndFilters(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan struct{}, 4)
	regenerate := func() error {
		calls.Add(1)
		done <- struct{}{}
		if calls.Load() == 2 {
			return errors.New("broken schema")
		}
		return nil
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	finished := make(chan error, 1)
	go func() {
		finished <- watchLoop(ctx, events, errs, "/tmp/s/user.json", 20*time.Millisecond, logrus.NewEntry(logger), regenerate)
	}()

	events <- fsnotify.Event{Name: "/tmp/s/other.json", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "/tmp/s/user.json", Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: "/tmp/s/user.json", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "/tmp/s/user.json", Op: fsnotify.Write}
	waitFor(t, done)
	assert.Equal(t, int32(1), calls.Load())

	// Errors from regeneration or the watcher do not stop the loop.
	events <- fsnotify.Event{Name: "/tmp/s/user.json", Op: fsnotify.Create}
	waitFor(t, done)
	errs <- errors.New("overflow")
	events <- fsnotify.Event{Name: "/tmp/s/./user.json", Op: fsnotify.Rename}
	waitFor(t, done)
	assert.Equal(t, int32(3), calls.Load())

	cancel()
	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for regeneration")
	}
}
