package goexpr

import (
	"errors"
	"fmt"
)

// ============================================================
// Errors
// ============================================================

// Sentinel errors. Every *ExprError matches exactly one of these with errors.Is.
var (
	ErrUndefinedVariable   = errors.New("undefined variable")
	ErrMalformedExpression = errors.New("malformed expression")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrTypeMismatch        = errors.New("type mismatch")
)

// ExprError is the error type returned by evaluation and collapsing.
type ExprError struct {
	Kind error  // one of the Err* sentinels
	Name string // offending identifier or function name, if any
	Msg  string
}

func (e *ExprError) Error() string {
	switch {
	case e.Name != "" && e.Msg != "":
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Name, e.Msg)
	case e.Name != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Name)
	case e.Msg != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return e.Kind.Error()
}

func (e *ExprError) Is(target error) bool { return target == e.Kind }

func (e *ExprError) Unwrap() error { return e.Kind }

func undefinedVariable(name string) error {
	return &ExprError{Kind: ErrUndefinedVariable, Name: name}
}

func malformed(format string, args ...interface{}) error {
	return &ExprError{Kind: ErrMalformedExpression, Msg: fmt.Sprintf(format, args...)}
}

func typeMismatch(name, msg string) error {
	return &ExprError{Kind: ErrTypeMismatch, Name: name, Msg: msg}
}

var errDivisionByZero = &ExprError{Kind: ErrDivisionByZero}
