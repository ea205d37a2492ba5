package glsl

import (
	"fmt"
	"strings"
)

// Position is a 1-based location in GLSL source.
type Position struct {
	Line   int
	Column int
}

// Span is the source range an HIR node or error refers to.
type Span struct {
	Start Position
	End   Position
}

// ErrorKind classifies front-end errors.
type ErrorKind uint8

const (
	// ErrSemantic is any semantic error raised while lowering or
	// registering declarations.
	ErrSemantic ErrorKind = iota
	// ErrWrongArgCount is a builtin called with the wrong number of
	// arguments.
	ErrWrongArgCount
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSemantic:
		return "semantic error"
	case ErrWrongArgCount:
		return "wrong number of arguments"
	}
	return "error"
}

// Error is a front-end error with source location information.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    Span
	Source  string // Original source code (for context display)

	// Set for ErrWrongArgCount.
	Name     string
	Expected int
	Got      int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Span.Start.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// FormatWithContext returns the error message with source context.
// Shows the problematic line with a caret pointing to the error location.
func (e *Error) FormatWithContext() string {
	if e.Source == "" || e.Span.Start.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	lineNum := e.Span.Start.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Span.Start.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}

// WithSource returns a copy of e that renders context from source.
func (e *Error) WithSource(source string) *Error {
	c := *e
	c.Source = source
	return &c
}

func semanticError(span Span, format string, args ...any) *Error {
	return &Error{
		Kind:    ErrSemantic,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	}
}

func wrongArgCount(name string, expected, got int, span Span) *Error {
	return &Error{
		Kind:     ErrWrongArgCount,
		Message:  fmt.Sprintf("wrong number of arguments to %s: expected %d, found %d", name, expected, got),
		Span:     span,
		Name:     name,
		Expected: expected,
		Got:      got,
	}
}

// Errors is a list of front-end errors.
type Errors []*Error

// Error implements the error interface.
func (el Errors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// FormatAll returns all errors formatted with context.
func (el Errors) FormatAll() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.FormatWithContext())
	}
	return sb.String()
}

// Add adds an error to the list.
func (el *Errors) Add(err *Error) {
	*el = append(*el, err)
}

// HasErrors returns true if there are any errors.
func (el Errors) HasErrors() bool {
	return len(el) > 0
}
