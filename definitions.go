package recordgen

import (
	"context"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/recordgen/i18n"
	"github.com/reoring/recordgen/jsonschema"
)

// ListDefinitionKeys returns the keys of the document's "definitions" map
// (or "$defs") in the order they were written. It returns nil when the
// document has no such map.
func ListDefinitionKeys(doc *jsonschema.Schema) []string {
	if doc == nil || !doc.HasDefinitions {
		return nil
	}
	keys := make([]string, 0, len(doc.Definitions))
	for _, d := range doc.Definitions {
		keys = append(keys, d.Name)
	}
	return keys
}

// DescribeDefinitions renders the definition keys as a human readable list,
// one "- key" line each, under a heading. The text is localized.
func (c *Compiler) DescribeDefinitions(doc *jsonschema.Schema) string {
	keys := ListDefinitionKeys(doc)
	if len(keys) == 0 {
		return c.tr.Message(i18n.DiagListEmpty, nil)
	}
	var b strings.Builder
	b.WriteString(c.tr.Message(i18n.DiagListHeading, nil))
	for _, k := range keys {
		b.WriteString("\n- ")
		b.WriteString(k)
	}
	return b.String()
}

// BuildDefinition compiles the entry key of the document's definitions map.
// The record type is named override, or key when override is empty. A
// missing definitions map or key yields a diagnostic, not an error.
func (c *Compiler) BuildDefinition(doc *jsonschema.Schema, key, override string) (Output, error) {
	def, ok := doc.Definition(key)
	if !ok {
		c.log.WithField("definition", key).Debug("definition not found")
		out := c.diagnostic(i18n.DiagMissingDef, map[string]string{"name": key})
		out.Key = key
		return out, nil
	}
	name := override
	if name == "" {
		name = key
	}
	out, err := c.Build(def, name)
	if err != nil {
		return Output{}, err
	}
	out.Key = key
	return out, nil
}

// CompileDefinition is BuildDefinition returning only the generated text.
func (c *Compiler) CompileDefinition(doc *jsonschema.Schema, key, override string) (string, error) {
	out, err := c.BuildDefinition(doc, key, override)
	if err != nil {
		return "", err
	}
	return out.Code, nil
}

// BuildMany compiles the named definitions concurrently. Results are
// returned in the order of keys; each key is named after itself. Missing keys
// and definitions rejected with Issues become diagnostic outputs so one bad
// definition does not stop the batch. Other errors, such as a canceled
// context, abort it. An empty key list yields a single diagnostic output.
func (c *Compiler) BuildMany(ctx context.Context, doc *jsonschema.Schema, keys []string) ([]Output, error) {
	if len(keys) == 0 {
		return []Output{c.diagnostic(i18n.DiagNoDefs, nil)}, nil
	}
	outs := make([]Output, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := c.BuildDefinition(doc, key, "")
			if iss, ok := AsIssues(err); ok {
				out, err = c.rejected(key, iss), nil
			}
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

func (c *Compiler) rejected(key string, iss Issues) Output {
	c.log.WithFields(logrus.Fields{"definition": key, "issues": len(iss)}).Warn("definition rejected")
	summary := strings.ReplaceAll(iss.Error(), "\n", " ")
	out := c.diagnostic(i18n.DiagInvalidDef, map[string]string{"name": key, "issues": summary})
	out.Key = key
	out.Issues = iss
	return out
}

// CompileMany compiles the named definitions and joins their text with a
// blank line. An empty key list yields a diagnostic comment.
func (c *Compiler) CompileMany(ctx context.Context, doc *jsonschema.Schema, keys []string) (string, error) {
	outs, err := c.BuildMany(ctx, doc, keys)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(outs))
	for _, o := range outs {
		parts = append(parts, o.Code)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Definition pairs a definition key with its generated text.
type Definition struct {
	Key  string
	Code string
}

// CompileAllDefinitions compiles every definition of doc, in key order. A
// document without definitions yields an empty result.
func (c *Compiler) CompileAllDefinitions(ctx context.Context, doc *jsonschema.Schema) ([]Definition, error) {
	keys := ListDefinitionKeys(doc)
	if len(keys) == 0 {
		return nil, nil
	}
	outs, err := c.BuildMany(ctx, doc, keys)
	if err != nil {
		return nil, err
	}
	defs := make([]Definition, 0, len(outs))
	for _, o := range outs {
		defs = append(defs, Definition{Key: o.Key, Code: o.Code})
	}
	return defs, nil
}
