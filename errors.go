package recordgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/recordgen/internal/ir"
	"github.com/reoring/recordgen/jsonschema"
)

// Codes carried by Issue.Code.
const (
	CodeParseError     = jsonschema.CodeParseError
	CodeDuplicateKey   = jsonschema.CodeDuplicateKey
	CodeInvalidKeyword = jsonschema.CodeInvalidKeyword
	CodeInvalidNumber  = jsonschema.CodeInvalidNumber
	// CodeSchemaCheck marks a document rejected by the meta-schema under
	// WithStrict.
	CodeSchemaCheck = "schema_check"

	CodeUnknownRequired       = ir.CodeUnknownRequired
	CodeUnionConflict         = ir.CodeUnionConflict
	CodePropertiesOnNonObject = ir.CodePropertiesOnNonObject
	CodeInvalidTypeName       = ir.CodeInvalidTypeName
	CodeInvalidPattern        = ir.CodeInvalidPattern
	CodeInvalidIdentifier     = ir.CodeInvalidIdentifier
)

// Issue describes one reason a schema could not be compiled. Path is a JSON
// Pointer into the schema document, "" meaning the root.
type Issue struct {
	Path    string
	Code    string
	Message string
	Cause   error
}

func (it Issue) String() string {
	at := it.Path
	if at == "" {
		at = "/"
	}
	if it.Message == "" {
		return it.Code + " at " + at
	}
	return it.Code + " at " + at + ": " + it.Message
}

// Issues is the error returned for schemas that cannot be compiled.
type Issues []Issue

// issuesShown bounds how many entries Error spells out.
const issuesShown = 3

func (iss Issues) Error() string {
	parts := make([]string, 0, issuesShown+1)
	for i, it := range iss {
		if i == issuesShown {
			parts = append(parts, fmt.Sprintf("... (total %d)", len(iss)))
			break
		}
		parts = append(parts, it.String())
	}
	return strings.Join(parts, "; ")
}

// AsIssues reports whether err wraps Issues and returns them.
func AsIssues(err error) (Issues, bool) {
	var iss Issues
	if err != nil && errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// publicError converts the issue types of internal packages into Issues so
// callers only ever see one error model. Other errors pass through.
func publicError(err error) error {
	if err == nil {
		return nil
	}
	var lowered ir.Issues
	if errors.As(err, &lowered) {
		out := make(Issues, len(lowered))
		for i, it := range lowered {
			out[i] = Issue{Path: it.Path, Code: it.Code, Message: it.Message}
		}
		return out
	}
	var decoded jsonschema.Errors
	if errors.As(err, &decoded) {
		out := make(Issues, len(decoded))
		for i, e := range decoded {
			out[i] = Issue{Path: e.Path, Code: e.Code, Message: e.Message}
		}
		return out
	}
	return err
}
