// Package diag implements the error taxonomy from spec.md §7: a closed
// set of error kinds shared by the parser, analyzer, compiler, VM and
// tree interpreter so that every stage reports failures the same way.
package diag

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/tethal/rnatrix/internal/source"
)

// Kind is one of the error kinds named in spec.md §7.
type Kind string

const (
	ParseError     Kind = "ParseError"
	NameError      Kind = "NameError"
	TypeError      Kind = "TypeError"
	IndexError     Kind = "IndexError"
	ArityError     Kind = "ArityError"
	DivisionByZero Kind = "DivisionByZero"
	ValueError     Kind = "ValueError"
	InternalError  Kind = "InternalError"
)

// Error is a single diagnostic: a kind, a human message, and either a
// source span (analysis time) or a bytecode offset (runtime).
type Error struct {
	Kind    Kind
	Message string
	Span    *source.Span
	Offset  int // valid when Span is nil and this came from the VM
	cause   error
}

func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (at offset %d)", e.Kind, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the InternalError's underlying stack-bearing cause,
// if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// At builds a diagnostic anchored to a source span, for errors raised
// during parsing or analysis.
func At(kind Kind, span source.Span, format string, args ...any) *Error {
	s := span
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: &s, Offset: -1}
}

// AtOffset builds a diagnostic anchored to a bytecode instruction
// offset, for errors raised by the VM.
func AtOffset(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Internal wraps a VM or compiler invariant violation with a stack
// trace via github.com/pkg/errors: these indicate a bug in Natrix
// itself (spec.md §7, "InternalError... fatal and not user-recoverable"),
// so the extra trace is worth the dependency.
func Internal(offset int, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: InternalError, Message: msg, Offset: offset, cause: pkgerrors.New(msg)}
}
