package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/reoring/recordgen/internal/engine"
)

// DefaultMaxDepth bounds nesting of decoded documents.
const DefaultMaxDepth = 512

// Options tune document decoding.
type Options struct {
	// MaxDepth limits container nesting; zero means DefaultMaxDepth and a
	// negative value disables the limit.
	MaxDepth int
	// AllowDuplicateKeys accepts objects that repeat a key; the last member
	// wins. Duplicates are rejected by default.
	AllowDuplicateKeys bool
}

func (o Options) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	}
	return o.MaxDepth
}

// Error codes reported while decoding.
const (
	CodeParseError     = "parse_error"
	CodeDuplicateKey   = "duplicate_key"
	CodeInvalidKeyword = "invalid_keyword"
	CodeInvalidNumber  = "invalid_number"
)

// Error describes one structural problem of a schema document.
type Error struct {
	Path    string // JSON Pointer of the offending value.
	Code    string
	Message string
}

// Errors collects decoding problems; it implements error.
type Errors []Error

func (es Errors) Error() string {
	if len(es) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, e := range es {
		if i == 3 {
			fmt.Fprintf(b, "; ... (total %d)", len(es))
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s: %s", e.Code, pathOrRoot(e.Path), e.Message)
	}
	return b.String()
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// Parse decodes a JSON schema document with default options.
func Parse(data []byte) (*Schema, error) { return ParseWithOptions(data, Options{}) }

// ParseWithOptions decodes a JSON schema document.
func ParseWithOptions(data []byte, opt Options) (*Schema, error) {
	return ParseReader(bytes.NewReader(data), opt)
}

// ParseReader decodes a JSON schema document from r.
func ParseReader(r io.Reader, opt Options) (*Schema, error) {
	lx := engine.Guard(engine.NewReader(r), engine.Limits{
		AllowDuplicates: opt.AllowDuplicateKeys,
		MaxDepth:        opt.maxDepth(),
	})
	v, err := engine.Decode(lx)
	if err != nil {
		var se *engine.SyntaxError
		if errors.As(err, &se) {
			return nil, Errors{{Path: se.Pointer, Code: se.Code, Message: se.Msg}}
		}
		return nil, Errors{{Path: "", Code: CodeParseError, Message: err.Error()}}
	}
	if opt.AllowDuplicateKeys {
		v = dedupe(v)
	}
	return fromDocument(v)
}

// dedupe keeps the last member for every repeated key, at the position of the
// first occurrence.
func dedupe(v any) any {
	switch t := v.(type) {
	case *engine.Object:
		idx := make(map[string]int, len(t.Members))
		out := &engine.Object{}
		for _, m := range t.Members {
			val := dedupe(m.Value)
			if i, ok := idx[m.Key]; ok {
				out.Members[i].Value = val
				continue
			}
			idx[m.Key] = len(out.Members)
			out.Members = append(out.Members, engine.Member{Key: m.Key, Value: val})
		}
		return out
	case []any:
		for i := range t {
			t[i] = dedupe(t[i])
		}
	}
	return v
}

// fromDocument converts a decoded document tree (ordered objects as produced
// by this package's decoders) into a Schema.
func fromDocument(v any) (*Schema, error) {
	c := &converter{}
	s := c.node(v, "")
	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return s, nil
}

type converter struct {
	errs Errors
}

func (c *converter) fail(path, format string, args ...any) {
	c.errs = append(c.errs, Error{Path: path, Code: CodeInvalidKeyword, Message: fmt.Sprintf(format, args...)})
}

func (c *converter) node(v any, path string) *Schema {
	s := &Schema{raw: v}
	obj, ok := v.(*engine.Object)
	if !ok {
		// Boolean schemas accept or reject everything; both carry no
		// obligations the compiler understands.
		if _, isBool := v.(bool); !isBool {
			c.fail(path, "schema must be an object or a boolean, got %s", describe(v))
		}
		return s
	}
	for _, m := range obj.Members {
		p := engine.JoinPointer(path, m.Key)
		switch m.Key {
		case "type":
			c.typeKeyword(s, m.Value, p)
		case "title":
			s.Title = c.str(m.Value, p)
		case "description":
			s.Description = c.str(m.Value, p)
		case "format":
			s.Format = c.str(m.Value, p)
		case "pattern":
			pat := c.str(m.Value, p)
			s.Pattern = &pat
		case "properties":
			s.HasProperties = true
			s.Properties = c.members(m.Value, p)
		case "definitions":
			s.HasDefinitions = true
			s.Definitions = c.members(m.Value, p)
		case "$defs":
			if _, seen := obj.Get("definitions"); !seen {
				s.HasDefinitions = true
				s.Definitions = c.members(m.Value, p)
			}
		case "required":
			s.Required = c.strings(m.Value, p)
		case "minLength":
			s.MinLength = c.count(m.Value, p)
		case "maxLength":
			s.MaxLength = c.count(m.Value, p)
		case "minItems":
			s.MinItems = c.count(m.Value, p)
		case "maxItems":
			s.MaxItems = c.count(m.Value, p)
		case "minimum":
			s.Minimum = c.number(m.Value, p)
		case "maximum":
			s.Maximum = c.number(m.Value, p)
		case "items":
			// The tuple form of "items" is outside the supported subset.
			if _, isArr := m.Value.([]any); !isArr {
				s.Items = c.node(m.Value, p)
			}
		case "enum":
			arr, ok := m.Value.([]any)
			if !ok {
				c.fail(p, "enum must be an array, got %s", describe(m.Value))
				continue
			}
			s.Enum = append([]any{}, arr...)
		case "anyOf":
			s.AnyOf = c.list(m.Value, p)
		case "oneOf":
			s.OneOf = c.list(m.Value, p)
		}
	}
	return s
}

func (c *converter) typeKeyword(s *Schema, v any, path string) {
	switch t := v.(type) {
	case string:
		s.TypeLabel = t
		if Type(t).Known() {
			s.Type = Type(t)
		}
	case []any:
		names := make([]string, 0, len(t))
		for i, e := range t {
			name, ok := e.(string)
			if !ok {
				c.fail(engine.JoinPointer(path, strconv.Itoa(i)), "type entries must be strings, got %s", describe(e))
				continue
			}
			names = append(names, name)
		}
		s.TypeLabel = strings.Join(names, ",")
		if len(names) == 1 && Type(names[0]).Known() {
			s.Type = Type(names[0])
		}
	default:
		c.fail(path, "type must be a string or an array, got %s", describe(v))
	}
}

func (c *converter) str(v any, path string) string {
	s, ok := v.(string)
	if !ok {
		c.fail(path, "expected a string, got %s", describe(v))
	}
	return s
}

func (c *converter) strings(v any, path string) []string {
	arr, ok := v.([]any)
	if !ok {
		c.fail(path, "expected an array of strings, got %s", describe(v))
		return nil
	}
	out := make([]string, 0, len(arr))
	for i, e := range arr {
		out = append(out, c.str(e, engine.JoinPointer(path, strconv.Itoa(i))))
	}
	return out
}

func (c *converter) count(v any, path string) *int {
	n, ok := v.(json.Number)
	if !ok {
		c.fail(path, "expected a non-negative integer, got %s", describe(v))
		return nil
	}
	i, err := strconv.Atoi(string(n))
	if err != nil {
		// Accept integral floats such as 1.0.
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int(f)) {
			c.fail(path, "expected a non-negative integer, got %s", n)
			return nil
		}
		i = int(f)
	}
	if i < 0 {
		c.fail(path, "expected a non-negative integer, got %s", n)
		return nil
	}
	return &i
}

func (c *converter) number(v any, path string) *Number {
	n, ok := v.(json.Number)
	if !ok {
		c.fail(path, "expected a number, got %s", describe(v))
		return nil
	}
	if f, err := n.Float64(); err != nil || math.IsInf(f, 0) {
		c.errs = append(c.errs, Error{Path: path, Code: CodeInvalidNumber, Message: fmt.Sprintf("%s is not a finite number", n)})
		return nil
	}
	num := Number(n)
	return &num
}

func (c *converter) members(v any, path string) []Property {
	obj, ok := v.(*engine.Object)
	if !ok {
		c.fail(path, "expected an object, got %s", describe(v))
		return nil
	}
	out := make([]Property, 0, len(obj.Members))
	for _, m := range obj.Members {
		out = append(out, Property{Name: m.Key, Schema: c.node(m.Value, engine.JoinPointer(path, m.Key))})
	}
	return out
}

func (c *converter) list(v any, path string) []*Schema {
	arr, ok := v.([]any)
	if !ok {
		c.fail(path, "expected an array of schemas, got %s", describe(v))
		return nil
	}
	out := make([]*Schema, 0, len(arr))
	for i, e := range arr {
		out = append(out, c.node(e, engine.JoinPointer(path, strconv.Itoa(i))))
	}
	return out
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case *engine.Object:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
