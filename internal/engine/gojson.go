package engine

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// jsonLexer adapts the go-json streaming decoder. The decoder reports keys
// and string values alike, so the lexer tracks the state of every open
// container.
type jsonLexer struct {
	dec  *gojson.Decoder
	open []container
}

type container uint8

const (
	inArray container = iota
	inObjectKey
	inObjectValue
)

// NewReader returns a Lexer over JSON text read from r.
func NewReader(r io.Reader) Lexer {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return &jsonLexer{dec: dec}
}

// NewBytes returns a Lexer over b.
func NewBytes(b []byte) Lexer { return NewReader(bytes.NewReader(b)) }

func (l *jsonLexer) Offset() int64 { return l.dec.InputOffset() }

func (l *jsonLexer) Next() (Token, error) {
	off := l.dec.InputOffset()
	raw, err := l.dec.Token()
	if err != nil {
		return Token{}, err
	}
	tok := Token{Kind: TokNull, Offset: off}
	switch v := raw.(type) {
	case gojson.Delim:
		return l.delim(v, off), nil
	case string:
		if n := len(l.open); n > 0 && l.open[n-1] == inObjectKey {
			l.open[n-1] = inObjectValue
			return Token{Kind: TokKey, Text: v, Offset: off}, nil
		}
		tok.Kind, tok.Text = TokString, v
	case bool:
		tok.Kind, tok.Bool = TokBool, v
	case gojson.Number:
		// The number text aliases the decoder's buffer.
		tok.Kind, tok.Text = TokNumber, strings.Clone(string(v))
	case float64:
		tok.Kind, tok.Text = TokNumber, strconv.FormatFloat(v, 'g', -1, 64)
	}
	l.endValue()
	return tok, nil
}

func (l *jsonLexer) delim(d gojson.Delim, off int64) Token {
	switch d {
	case '{':
		l.open = append(l.open, inObjectKey)
		return Token{Kind: TokObjectStart, Offset: off}
	case '[':
		l.open = append(l.open, inArray)
		return Token{Kind: TokArrayStart, Offset: off}
	}
	if n := len(l.open); n > 0 {
		l.open = l.open[:n-1]
	}
	l.endValue()
	if d == '}' {
		return Token{Kind: TokObjectEnd, Offset: off}
	}
	return Token{Kind: TokArrayEnd, Offset: off}
}

// endValue lets the enclosing object expect its next key.
func (l *jsonLexer) endValue() {
	if n := len(l.open); n > 0 && l.open[n-1] == inObjectValue {
		l.open[n-1] = inObjectKey
	}
}
