// Package diag defines the stage-tagged diagnostics the core raises and a
// renderer that turns them into the human-facing format of a source slice
// with a caret under the offending column.
package diag

import (
	"fmt"
	"strings"

	"github.com/typeforge/tfc/internal/ast"
)

// Stage is one of the pipeline stages a diagnostic can be attributed to.
type Stage string

const (
	Parse     Stage = "parse"
	Desugar   Stage = "desugar"
	Typecheck Stage = "typecheck"
	Erasure   Stage = "erasure"
	Codegen   Stage = "codegen"
)

// Kind is the error kind (not a Go type) per the spec's error taxonomy.
type Kind string

const (
	ParseFailure        Kind = "ParseFailure"
	DesugarFailure       Kind = "DesugarFailure"
	TypeMismatch         Kind = "TypeMismatch"
	ConstraintViolation  Kind = "ConstraintViolation"
	NoSuchField          Kind = "NoSuchField"
	BadIndex             Kind = "BadIndex"
	MissingArg           Kind = "MissingArg"
	BadSpread            Kind = "BadSpread"
	UndefinedIdentifier  Kind = "UndefinedIdentifier"
	FuelExhausted        Kind = "FuelExhausted"
	StagingError         Kind = "StagingError"
	NoMatch              Kind = "NoMatch"
	AmbiguousSignature   Kind = "AmbiguousSignature"
	UserThrow            Kind = "UserThrow"
	AssertionFailed      Kind = "AssertionFailed"
	CyclicBinding        Kind = "CyclicBinding"
)

// Note is a secondary annotation attached to a Diagnostic.
type Note struct {
	Message string
	Range   *ast.Range
}

// Diagnostic is the single error type the core surfaces. The primary Kind
// and Range are never rewritten by surrounding passes; only Notes accrue.
type Diagnostic struct {
	Stage   Stage
	Kind    Kind
	Message string
	Range   *ast.Range
	Notes   []Note
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s error: %s", d.Stage, d.Message)
}

// New builds a Diagnostic. rng may be nil when no useful range is
// available (e.g. a whole-program error).
func New(stage Stage, kind Kind, rng *ast.Range, format string, args ...any) *Diagnostic {
	return &Diagnostic{Stage: stage, Kind: kind, Message: fmt.Sprintf(format, args...), Range: rng}
}

// WithNote appends a context note and returns the same Diagnostic, for
// chaining at each pass boundary without rewriting Kind/Range.
func (d *Diagnostic) WithNote(msg string, rng *ast.Range) *Diagnostic {
	d.Notes = append(d.Notes, Note{Message: msg, Range: rng})
	return d
}

// Render prints "<stage> error: <message>", the offending source line with
// a caret under the column (when both source and range are available),
// and one line per note.
func Render(d *Diagnostic, source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error: %s\n", d.Stage, d.Message)
	if d.Range != nil {
		if line, ok := sourceLine(source, d.Range.Start.Line); ok {
			fmt.Fprintf(&b, "%s\n", line)
			fmt.Fprintf(&b, "%s^\n", strings.Repeat(" ", max(0, d.Range.Start.Column-1)))
		}
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "note: %s\n", n.Message)
	}
	return b.String()
}

func sourceLine(source string, line int) (string, bool) {
	if line <= 0 {
		return "", false
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
