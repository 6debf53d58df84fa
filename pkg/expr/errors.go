package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax marks malformed expressions: empty input, misplaced operators,
	// unbalanced brackets.
	ErrSyntax = errors.New("syntax error")
	// ErrUnknownCondition marks operands the lookup could not resolve.
	ErrUnknownCondition = errors.New("unknown condition")
)

// ParseError describes why an expression failed to compile. Kind is one of
// ErrSyntax or ErrUnknownCondition so callers can use errors.Is.
type ParseError struct {
	Kind       error
	Expression string
	Pos        int
	Token      string
	Msg        string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("expr: %v at offset %d", e.Kind, e.Pos)
	if e.Token != "" {
		msg += fmt.Sprintf(" near %q", e.Token)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

// Unwrap exposes Kind to errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Kind
}
