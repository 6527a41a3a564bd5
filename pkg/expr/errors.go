package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/macropower/csvr/pkg/value"
)

var (
	// ErrSyntax is returned when a rule cannot be parsed.
	ErrSyntax = errors.New("syntax error")
	// ErrUnknownFunction is returned when a rule calls a function that is not registered.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrArity is returned when a function is called with the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrUnknownVariable is returned when a rule references a column that is not in the context.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrType is returned when an operator is applied to operands of unsupported kinds.
	ErrType = errors.New("type mismatch")
)

// SyntaxError describes a compile failure and the byte offset where it occurred.
type SyntaxError struct {
	Err error // One of ErrSyntax, ErrUnknownFunction or ErrArity.
	Msg string
	Pos int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.Err, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func syntaxErrorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Err: ErrSyntax, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// TypeError is returned when an operator receives operands it cannot handle.
type TypeError struct {
	Operands []value.Kind
	Op       Op
}

func (e *TypeError) Error() string {
	kinds := make([]string, len(e.Operands))
	for i, k := range e.Operands {
		kinds[i] = k.String()
	}

	return fmt.Sprintf("%v: operator %s does not accept (%s)", ErrType, e.Op, strings.Join(kinds, ", "))
}

func (e *TypeError) Unwrap() error {
	return ErrType
}
