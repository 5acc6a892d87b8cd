package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/recordgen/internal/engine"
)

// ParseYAML decodes a schema written as YAML with default options. Only the
// first document of a multi-document stream is used.
func ParseYAML(data []byte) (*Schema, error) { return ParseYAMLWithOptions(data, Options{}) }

// ParseYAMLWithOptions decodes a schema written as YAML. yaml.Node keeps
// mapping order, so properties come out in the order they were written.
func ParseYAMLWithOptions(data []byte, opt Options) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Errors{{Code: CodeParseError, Message: "empty YAML document"}}
		}
		return nil, Errors{{Code: CodeParseError, Message: err.Error()}}
	}
	y := yamlConverter{opt: opt}
	v, err := y.value(&root, "", 0)
	if err != nil {
		return nil, err
	}
	return fromDocument(v)
}

type yamlConverter struct {
	opt Options
}

func (y yamlConverter) value(n *yaml.Node, path string, depth int) (any, error) {
	if max := y.opt.maxDepth(); max > 0 && depth > max {
		return nil, Errors{{Path: pathOrRoot(path), Code: CodeParseError, Message: "max depth exceeded"}}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return y.value(n.Content[0], path, depth)
	case yaml.AliasNode:
		return y.value(n.Alias, path, depth)
	case yaml.MappingNode:
		obj := &engine.Object{}
		first := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			key := k.Value
			p := engine.JoinPointer(path, key)
			val, err := y.value(v, p, depth+1)
			if err != nil {
				return nil, err
			}
			if at, dup := first[key]; dup {
				if !y.opt.AllowDuplicateKeys {
					msg := fmt.Sprintf("key '%s' duplicated (line %d, first at line %d)", key, k.Line, n.Content[at*2].Line)
					return nil, Errors{{Path: p, Code: CodeDuplicateKey, Message: msg}}
				}
				obj.Members[at].Value = val
				continue
			}
			first[key] = len(obj.Members)
			obj.Members = append(obj.Members, engine.Member{Key: key, Value: val})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := y.value(c, engine.JoinPointer(path, strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return n.Value, nil
			}
			return b, nil
		case "!!int", "!!float":
			return yamlNumber(n, path)
		}
		return n.Value, nil
	}
	return nil, nil
}

// jsonNumberText matches the number grammar of RFC 8259.
var jsonNumberText = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// yamlNumber converts a YAML number to JSON number text. Literals that JSON
// spells differently ("+5", ".5", "0x1F", "1_000") are normalized; ".inf"
// and ".nan" have no JSON form and are rejected.
func yamlNumber(n *yaml.Node, path string) (any, error) {
	if jsonNumberText.MatchString(n.Value) {
		return json.Number(n.Value), nil
	}
	if n.ShortTag() == "!!int" {
		var i int64
		if err := n.Decode(&i); err == nil {
			return json.Number(strconv.FormatInt(i, 10)), nil
		}
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return n.Value, nil
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, Errors{{Path: pathOrRoot(path), Code: CodeInvalidNumber, Message: fmt.Sprintf("%s is not a finite number", n.Value)}}
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
