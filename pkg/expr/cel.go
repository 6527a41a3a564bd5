package expr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// RowVariable is the name under which CEL rules see the current record.
const RowVariable = "row"

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// ErrNotBoolean is returned when a CEL rule cannot produce a boolean.
var ErrNotBoolean = errors.New("rule does not produce a boolean")

// Environment provides a thread-safe wrapper around a [*cel.Env] that
// declares the record variable and the rule functions.
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment].
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	env, err := createEnvironment(opts...)
	if err != nil {
		return nil, err
	}

	return &Environment{env: env}, nil
}

// MustNewEnvironment creates a new [Environment] and panics on error.
func MustNewEnvironment(opts ...cel.EnvOption) *Environment {
	env, err := NewEnvironment(opts...)
	if err != nil {
		panic(err)
	}

	return env
}

func createEnvironment(opts ...cel.EnvOption) (*cel.Env, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts,
		cel.Variable(RowVariable, cel.MapType(cel.StringType, cel.DynType)),
		cel.Lib(&lib{}),
	)

	celEnv, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return celEnv, nil
}

// Compile compiles a CEL rule. Rules whose static result type is neither
// bool nor dyn are rejected.
func (e *Environment) Compile(expression string) (*CELProgram, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: result type is %s", ErrNotBoolean, out)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return &CELProgram{program: program, src: expression}, nil
}

var defaultEnvironment = sync.OnceValues(func() (*Environment, error) {
	return NewEnvironment()
})

// CompileCEL compiles a CEL rule using the default [Environment].
func CompileCEL(expression string) (*CELProgram, error) {
	env, err := defaultEnvironment()
	if err != nil {
		return nil, err
	}

	return env.Compile(expression)
}

// CELProgram is a compiled CEL rule. It implements [Predicate] and is safe
// for concurrent use.
type CELProgram struct {
	program cel.Program
	src     string
}

func (p *CELProgram) String() string {
	return p.src
}

// Match reports whether the rule evaluates to true for ctx. Evaluation
// errors, such as a missing key or mismatched operand types, are
// non-matches.
func (p *CELProgram) Match(ctx Context) bool {
	out, _, err := p.program.Eval(map[string]any{RowVariable: RowValue(ctx)})
	if err != nil {
		return false
	}

	b, ok := out.(types.Bool)

	return ok && bool(b)
}
