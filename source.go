package recordgen

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/reoring/recordgen/jsonschema"
)

// Format names the encoding of a schema document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatOf guesses the document format from a file name. Anything that does
// not end in ".yaml" or ".yml" is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Source abstracts over where a schema document comes from.
type Source interface {
	// Open returns the raw document and its format.
	Open() (io.ReadCloser, Format, error)
	// Name identifies the source in logs and errors.
	Name() string
}

type bytesSource struct {
	b      []byte
	format Format
	name   string
}

func (s bytesSource) Open() (io.ReadCloser, Format, error) {
	return io.NopCloser(bytes.NewReader(s.b)), s.format, nil
}

func (s bytesSource) Name() string { return s.name }

type readerSource struct {
	r      io.Reader
	format Format
}

func (s readerSource) Open() (io.ReadCloser, Format, error) {
	return io.NopCloser(s.r), s.format, nil
}

func (s readerSource) Name() string { return "<reader>" }

type fileSource struct{ path string }

func (s fileSource) Open() (io.ReadCloser, Format, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, FormatJSON, fmt.Errorf("open schema: %w", err)
	}
	return f, FormatOf(s.path), nil
}

func (s fileSource) Name() string { return s.path }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return bytesSource{b: b, format: FormatJSON, name: "<json>"} }

// YAMLBytes wraps a byte slice as a YAML Source.
func YAMLBytes(b []byte) Source { return bytesSource{b: b, format: FormatYAML, name: "<yaml>"} }

// JSONReader wraps an io.Reader as a JSON Source. The reader is consumed once.
func JSONReader(r io.Reader) Source { return readerSource{r: r, format: FormatJSON} }

// FileSource reads the schema at path; the extension selects the format.
func FileSource(path string) Source { return fileSource{path: path} }

// Load decodes the document behind src using the compiler's decoding options.
// In strict mode the document must also satisfy the JSON Schema
// meta-schema. Failures are reported as Issues except for IO errors.
func (c *Compiler) Load(src Source) (*jsonschema.Schema, error) {
	rc, format, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	log := c.log.WithField("source", src.Name())
	var s *jsonschema.Schema
	switch format {
	case FormatYAML:
		data, rerr := io.ReadAll(rc)
		if rerr != nil {
			return nil, fmt.Errorf("read schema: %w", rerr)
		}
		s, err = jsonschema.ParseYAMLWithOptions(data, c.parse)
	default:
		s, err = jsonschema.ParseReader(rc, c.parse)
	}
	if err != nil {
		log.WithError(err).Debug("schema rejected by decoder")
		return nil, publicError(err)
	}
	if c.strict {
		if cerr := jsonschema.Check(s); cerr != nil {
			log.WithError(cerr).Debug("schema rejected by meta-schema")
			return nil, Issues{{Code: CodeSchemaCheck, Message: cerr.Error(), Cause: cerr}}
		}
	}
	log.WithFields(logrus.Fields{
		"format":      format.String(),
		"properties":  len(s.Properties),
		"definitions": len(s.Definitions),
	}).Debug("schema loaded")
	return s, nil
}
