package expr

import (
	"strings"

	"github.com/macropower/csvr/pkg/value"
)

// Func is a function callable from rules.
type Func struct {
	// Call receives exactly Arity arguments.
	Call  func(args []value.Value) (value.Value, error)
	Arity int
}

// Option configures [Compile].
type Option func(*compiler)

// WithFunction registers fn under name, replacing any builtin of the same
// name.
func WithFunction(name string, fn Func) Option {
	return func(c *compiler) {
		c.funcs[name] = fn
	}
}

func builtins() map[string]Func {
	return map[string]Func{
		"string_contains": {Arity: 2, Call: stringContains},
	}
}

// stringContains reports whether the first argument contains the second.
// Non-text arguments yield false rather than an error.
func stringContains(args []value.Value) (value.Value, error) {
	haystack, ok := args[0].AsString()
	if !ok {
		return value.Bool(false), nil
	}

	needle, ok := args[1].AsString()
	if !ok {
		return value.Bool(false), nil
	}

	return value.Bool(strings.Contains(haystack, needle)), nil
}
