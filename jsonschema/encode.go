package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/recordgen/internal/engine"
)

// MarshalJSON re-encodes the node exactly as it was decoded: keys keep
// their document order, numbers keep their literal text and unknown keywords
// are retained. The output is compact.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if s.raw == nil {
		buf.WriteString("{}")
		return buf.Bytes(), nil
	}
	if err := encodeValue(&buf, s.raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Canonical returns the compact JSON text of the node, or "{}" for a nil
// node.
func (s *Schema) Canonical() string {
	b, err := s.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(string(t))
	case string:
		if err := encodeString(buf, t); err != nil {
			return err
		}
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *engine.Object:
		buf.WriteByte('{')
		for i, m := range t.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsonschema: cannot encode %T", v)
	}
	return nil
}

// encodeString writes s as a JSON string. "<", ">" and "&" stay literal.
func encodeString(buf *bytes.Buffer, s string) error {
	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// EncodeValue encodes a value taken from an enum list (or any other decoded
// document value) as compact JSON.
func EncodeValue(v any) (string, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
