// Package gen defines the contract between the compiler and the
// target-language renderers. This package is internal and not part of the
// public API.
package gen

import (
	"fmt"
	"strings"

	"github.com/reoring/recordgen/internal/ir"
)

// Renderer turns IR units into source text for one target language.
//
// Unit must be deterministic: identical units render to identical text.
type Renderer interface {
	// Language is the target name, e.g. "go" or "ruby".
	Language() string
	// FileExtension includes the leading dot.
	FileExtension() string
	// Unit renders a single record type and everything it owns (helpers,
	// package-level variables) but none of the shared file prelude.
	Unit(u *ir.Unit) (string, error)
	// Comment renders text as a single-line comment.
	Comment(text string) string
	// File assembles a complete source file. Units are rendered in order
	// after the prelude; diagnostics are rendered as comments in place.
	File(opts FileOptions, parts []Part) ([]byte, error)
}

// FileOptions configures File.
type FileOptions struct {
	// Package is the Go package clause. Other targets ignore it.
	Package string
	// Header is an optional leading comment line.
	Header string
}

// Part is one section of an output file: either the units of one schema or
// a diagnostic comment that replaces them.
type Part struct {
	Units      []*ir.Unit
	Diagnostic string
}

// Units renders units in order with trailing newlines trimmed. It stops at
// the first unit the renderer rejects.
func Units(r Renderer, units []*ir.Unit) ([]string, error) {
	out := make([]string, 0, len(units))
	for _, u := range units {
		src, err := r.Unit(u)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", u.TypeName, err)
		}
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return out, nil
}
