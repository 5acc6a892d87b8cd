// Package engine turns JSON text into an ordered value tree. Objects keep
// their members in document order, which the schema compiler relies on for
// deterministic output.
package engine

import (
	"encoding/json"
	"errors"
	"io"
)

// Kind classifies a lexical token.
type Kind uint8

const (
	TokObjectStart Kind = iota
	TokObjectEnd
	TokArrayStart
	TokArrayEnd
	TokKey
	TokString
	TokNumber
	TokBool
	TokNull
)

// Token is one lexical element. Text holds the key, the string value or the
// literal number text.
type Token struct {
	Kind   Kind
	Text   string
	Bool   bool
	Offset int64
}

// Lexer yields tokens until io.EOF.
type Lexer interface {
	Next() (Token, error)
	Offset() int64
}

// SyntaxError reports a structural problem at a JSON Pointer location.
type SyntaxError struct {
	Code    string
	Pointer string
	Offset  int64
	Msg     string
}

func (e *SyntaxError) Error() string { return e.Msg }

// Member is one key/value pair of a decoded object.
type Member struct {
	Key   string
	Value any
}

// Object is a decoded JSON object that keeps its members in document order.
type Object struct {
	Members []Member
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	for i := range o.Members {
		if o.Members[i].Key == key {
			return o.Members[i].Value, true
		}
	}
	return nil, false
}

// Keys returns the member keys in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, len(o.Members))
	for _, m := range o.Members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Decode reads exactly one value from lx. Objects come back as *Object,
// arrays as []any and numbers as json.Number.
func Decode(lx Lexer) (any, error) {
	d := decoder{lx: lx}
	first, err := lx.Next()
	if err != nil {
		return nil, err
	}
	v, err := d.value(first)
	if err != nil {
		return nil, err
	}
	switch _, err := lx.Next(); {
	case err == nil:
		return nil, &SyntaxError{Code: "parse_error", Pointer: "/", Offset: lx.Offset(), Msg: "unexpected data after top-level value"}
	case !errors.Is(err, io.EOF):
		return nil, err
	}
	return v, nil
}

type decoder struct{ lx Lexer }

// next treats a clean EOF inside a container as truncated input.
func (d decoder) next() (Token, error) {
	tok, err := d.lx.Next()
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return tok, err
}

func (d decoder) value(tok Token) (any, error) {
	switch tok.Kind {
	case TokObjectStart:
		return d.object()
	case TokArrayStart:
		return d.array()
	case TokString:
		return tok.Text, nil
	case TokNumber:
		return json.Number(tok.Text), nil
	case TokBool:
		return tok.Bool, nil
	case TokNull:
		return nil, nil
	}
	return nil, io.ErrUnexpectedEOF
}

func (d decoder) object() (*Object, error) {
	obj := &Object{}
	for {
		key, err := d.next()
		if err != nil {
			return nil, err
		}
		switch key.Kind {
		case TokObjectEnd:
			return obj, nil
		case TokKey:
		default:
			return nil, io.ErrUnexpectedEOF
		}
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, Member{Key: key.Text, Value: v})
	}
}

func (d decoder) array() ([]any, error) {
	out := []any{}
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokArrayEnd {
			return out, nil
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}
