package engine

import (
	"strconv"
	"strings"
)

// Limits configures Guard.
type Limits struct {
	// AllowDuplicates accepts repeated keys in one object.
	AllowDuplicates bool
	// MaxDepth bounds container nesting; zero means unlimited.
	MaxDepth int
}

// Guard wraps lx so that repeated object keys and excessive nesting fail with
// a *SyntaxError pointing at the offending location.
func Guard(lx Lexer, lim Limits) Lexer {
	return &guard{lx: lx, lim: lim}
}

type scope struct {
	object  bool
	pointer string
	seen    map[string]struct{}
	index   int
	key     string
}

type guard struct {
	lx     Lexer
	lim    Limits
	scopes []scope
}

func (g *guard) Offset() int64 { return g.lx.Offset() }

func (g *guard) Next() (Token, error) {
	tok, err := g.lx.Next()
	if err != nil {
		return tok, err
	}
	switch tok.Kind {
	case TokKey:
		top := g.top()
		if top == nil || !top.object {
			return tok, nil
		}
		at := JoinPointer(top.pointer, tok.Text)
		if _, dup := top.seen[tok.Text]; dup && !g.lim.AllowDuplicates {
			return Token{}, &SyntaxError{Code: "duplicate_key", Pointer: at, Offset: tok.Offset, Msg: "key '" + tok.Text + "' duplicated"}
		}
		top.seen[tok.Text] = struct{}{}
		top.key = tok.Text
	case TokObjectStart, TokArrayStart:
		s := scope{pointer: g.claim(), object: tok.Kind == TokObjectStart}
		if s.object {
			s.seen = map[string]struct{}{}
		}
		g.scopes = append(g.scopes, s)
		if g.lim.MaxDepth > 0 && len(g.scopes) > g.lim.MaxDepth {
			return Token{}, &SyntaxError{Code: "parse_error", Pointer: orRoot(s.pointer), Offset: tok.Offset, Msg: "max depth exceeded"}
		}
	case TokObjectEnd, TokArrayEnd:
		if n := len(g.scopes); n > 0 {
			g.scopes = g.scopes[:n-1]
		}
	default:
		g.claim()
	}
	return tok, nil
}

func (g *guard) top() *scope {
	if len(g.scopes) == 0 {
		return nil
	}
	return &g.scopes[len(g.scopes)-1]
}

// claim returns the pointer of the value that starts now and advances the
// enclosing scope past it.
func (g *guard) claim() string {
	top := g.top()
	switch {
	case top == nil:
		return ""
	case top.object:
		return JoinPointer(top.pointer, top.key)
	default:
		p := top.pointer + "/" + strconv.Itoa(top.index)
		top.index++
		return p
	}
}

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends reference tokens to a JSON Pointer, escaping "~" and
// "/" as RFC 6901 requires.
func JoinPointer(base string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, t := range tokens {
		b.WriteByte('/')
		pointerEscaper.WriteString(&b, t)
	}
	return b.String()
}
