package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/reoring/recordgen"
	"github.com/reoring/recordgen/internal/config"
	"github.com/reoring/recordgen/internal/logging"
	"github.com/reoring/recordgen/jsonschema"
	"github.com/reoring/recordgen/naming"
)

// options holds the raw flag values.
type options struct {
	output     string
	className  string
	definition string
	multi      []string
	all        bool
	list       bool

	target  string
	pkg     string
	lang    string
	strict  bool
	watch   bool
	verbose bool
	json    bool
	config  string
}

func newRootCommand() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "recordgen [flags] <schema_file>",
		Short: "Generate validated record types from a JSON Schema",
		Long: `recordgen reads a JSON Schema (JSON or YAML) and writes immutable record
types whose constructors validate their arguments. By default the root object
of the schema is compiled and named after the file; use --definition,
--multi-definitions or --all-definitions to compile entries of "definitions".`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "write the generated file to `FILE` instead of stdout")
	f.StringVarP(&o.className, "class-name", "c", "", "name of the generated type (default: derived from the file name)")
	f.StringVarP(&o.definition, "definition", "d", "", "compile the named entry of \"definitions\"")
	f.StringSliceVarP(&o.multi, "multi-definitions", "m", nil, "compile several definitions (comma separated)")
	f.BoolVarP(&o.all, "all-definitions", "a", false, "compile every definition")
	f.BoolVarP(&o.list, "list-definitions", "l", false, "list the definition names and exit")
	f.StringVarP(&o.target, "target", "t", "go", "output language: go or ruby")
	f.StringVarP(&o.pkg, "package", "p", "records", "package clause of generated Go files")
	f.StringVar(&o.lang, "lang", "en", "language of generated messages: en or ja")
	f.BoolVar(&o.strict, "strict", false, "validate the schema against the JSON Schema meta-schema first")
	f.BoolVarP(&o.watch, "watch", "w", false, "regenerate whenever the schema file changes")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&o.json, "json", false, "log in JSON format")
	f.StringVar(&o.config, "config", "", "path to a .recordgen.yaml or .recordgen.toml file")

	cmd.MarkFlagsMutuallyExclusive("definition", "multi-definitions", "all-definitions", "list-definitions")
	cmd.MarkFlagsMutuallyExclusive("class-name", "multi-definitions")
	cmd.MarkFlagsMutuallyExclusive("class-name", "all-definitions")
	return cmd
}

// settings are the effective values after merging the config file and the
// flags that were set explicitly.
type settings struct {
	target recordgen.Target
	lang   string
	pkg    string
	header *string
	output string
	strict bool
	parse  jsonschema.Options
	log    logging.Options
}

func resolve(flags *pflag.FlagSet, o *options, schemaPath string, stderr io.Writer) (*settings, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if o.config != "" {
		path = o.config
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault(filepath.Dir(schemaPath))
	}
	if err != nil {
		return nil, path, err
	}

	pick := func(name, flagValue, cfgValue string) string {
		if flags.Changed(name) || cfgValue == "" {
			return flagValue
		}
		return cfgValue
	}
	s := &settings{
		lang:   pick("lang", o.lang, cfg.Lang),
		pkg:    pick("package", o.pkg, cfg.Package),
		output: pick("output", o.output, cfg.Output),
		header: cfg.Header,
		strict: o.strict || (!flags.Changed("strict") && cfg.Strict),
		parse: jsonschema.Options{
			AllowDuplicateKeys: cfg.Parse.AllowDuplicateKeys,
			MaxDepth:           cfg.Parse.MaxDepth,
		},
		log: logging.Options{
			Component: "cli",
			Output:    stderr,
			Level:     cfg.Log.Level,
			Verbose:   o.verbose,
			JSON:      o.json || cfg.Log.Format == "json",
		},
	}
	if s.target, err = recordgen.ParseTarget(pick("target", o.target, cfg.Target)); err != nil {
		return nil, path, err
	}
	return s, path, nil
}

func run(cmd *cobra.Command, o *options, schemaPath string) error {
	s, cfgPath, err := resolve(cmd.Flags(), o, schemaPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log := logging.New(s.log)
	if cfgPath != "" {
		log.WithField("config", cfgPath).Debug("config loaded")
	}

	opts := []recordgen.Option{
		recordgen.WithTarget(s.target),
		recordgen.WithLanguage(s.lang),
		recordgen.WithPackage(s.pkg),
		recordgen.WithStrict(s.strict),
		recordgen.WithParseOptions(s.parse),
		recordgen.WithLogger(log),
	}
	if s.header != nil {
		opts = append(opts, recordgen.WithHeader(*s.header))
	}
	c, err := recordgen.New(opts...)
	if err != nil {
		return err
	}

	g := generator{
		c:      c,
		o:      o,
		multi:  cmd.Flags().Changed("multi-definitions"),
		output: s.output,
		schema: schemaPath,
		stdout: cmd.OutOrStdout(),
		log:    log,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := g.generate(ctx); err != nil {
		if !o.watch {
			return err
		}
		log.WithError(err).Error("generation failed")
	}
	if !o.watch {
		return nil
	}
	return watch(ctx, schemaPath, log, func() error { return g.generate(ctx) })
}

type generator struct {
	c      *recordgen.Compiler
	o      *options
	multi  bool
	output string
	schema string
	stdout io.Writer
	log    *logrus.Entry
}

func (g generator) generate(ctx context.Context) error {
	doc, err := g.c.Load(recordgen.FileSource(g.schema))
	if err != nil {
		return fmt.Errorf("%s: %w", g.schema, err)
	}
	if g.o.list {
		_, err := fmt.Fprintln(g.stdout, g.c.DescribeDefinitions(doc))
		return err
	}

	var outs []recordgen.Output
	switch {
	case g.o.definition != "":
		out, berr := g.c.BuildDefinition(doc, g.o.definition, g.o.className)
		outs, err = []recordgen.Output{out}, berr
	case g.multi:
		outs, err = g.c.BuildMany(ctx, doc, nonEmpty(g.o.multi))
	case g.o.all:
		outs, err = g.c.BuildMany(ctx, doc, recordgen.ListDefinitionKeys(doc))
	default:
		out, berr := g.c.Build(doc, g.typeName())
		outs, err = []recordgen.Output{out}, berr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", g.schema, err)
	}
	src, err := g.c.Render(outs...)
	if err != nil {
		return fmt.Errorf("%s: %w", g.schema, err)
	}

	if g.output == "" {
		_, err := g.stdout.Write(src)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(g.output), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(g.output, src, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	g.log.WithFields(logrus.Fields{"output": g.output, "outputs": len(outs)}).Info("generated")
	_, err = fmt.Fprintf(g.stdout, "generated %s\n", g.output)
	return err
}

// typeName is the --class-name value or the schema file name in
// CamelCase ("user_profile.json" -> "UserProfile").
func (g generator) typeName() string {
	if g.o.className != "" {
		return g.o.className
	}
	base := filepath.Base(g.schema)
	return naming.FromFileName(strings.TrimSuffix(base, filepath.Ext(base)))
}

func nonEmpty(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
