package expr

import (
	"fmt"

	"github.com/macropower/csvr/pkg/value"
)

// Context maps column names to the typed values of one record.
type Context map[string]value.Value

// NewContext builds a fresh [Context] for one record, coercing every cell
// with [value.Coerce]. Cells beyond len(headers) are ignored.
func NewContext(headers, cells []string) Context {
	ctx := make(Context, len(headers))
	for i, h := range headers {
		if i >= len(cells) {
			break
		}

		ctx[h] = value.Coerce(cells[i])
	}

	return ctx
}

// Interface returns ctx as a map of plain Go values.
func (ctx Context) Interface() map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v.Interface()
	}

	return out
}

// Predicate is a compiled rule that can be matched against a record.
type Predicate interface {
	// Match reports whether the rule evaluates to Boolean true. Evaluation
	// errors are non-matches.
	Match(ctx Context) bool
	// String returns the source text of the rule.
	String() string
}

// Program is a compiled rule. It is immutable and safe for concurrent use.
type Program struct {
	root Node
	src  string
}

// Compile parses src into a [Program]. Column names are not resolved until
// evaluation.
func Compile(src string, opts ...Option) (*Program, error) {
	c := &compiler{funcs: builtins()}
	for _, opt := range opts {
		opt(c)
	}

	root, err := c.parse(src)
	if err != nil {
		return nil, err
	}

	return &Program{root: root, src: src}, nil
}

// Root returns the expression tree.
func (p *Program) Root() Node {
	return p.root
}

func (p *Program) String() string {
	return p.src
}

// Match reports whether p evaluates to Boolean true against ctx. Lookup and
// type errors are treated as a non-match.
func (p *Program) Match(ctx Context) bool {
	v, err := p.Eval(ctx)
	if err != nil {
		return false
	}

	b, ok := v.AsBool()

	return ok && b
}

// Eval evaluates p against ctx.
func (p *Program) Eval(ctx Context) (value.Value, error) {
	return eval(p.root, ctx)
}

func eval(n Node, ctx Context) (value.Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *Variable:
		v, ok := ctx[n.Name]
		if !ok {
			return value.Value{}, fmt.Errorf("%w: %q", ErrUnknownVariable, n.Name)
		}

		return v, nil

	case *Unary:
		return evalUnary(n, ctx)

	case *Binary:
		if n.Op == OpAnd || n.Op == OpOr {
			return evalLogical(n, ctx)
		}

		return evalBinary(n, ctx)

	case *Call:
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := eval(a, ctx)
			if err != nil {
				return value.Value{}, err
			}

			args[i] = v
		}

		v, err := n.fn.Call(args)
		if err != nil {
			return value.Value{}, fmt.Errorf("call %s: %w", n.Name, err)
		}

		return v, nil
	}

	return value.Value{}, fmt.Errorf("unsupported node %T", n)
}

func evalUnary(n *Unary, ctx Context) (value.Value, error) {
	x, err := eval(n.X, ctx)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case OpNot:
		if b, ok := x.AsBool(); ok {
			return value.Bool(!b), nil
		}

	case OpNeg:
		if f, ok := x.AsFloat(); ok {
			return value.Float(-f), nil
		}

	default:
	}

	return value.Value{}, &TypeError{Op: n.Op, Operands: []value.Kind{x.Kind()}}
}

// evalLogical short-circuits: once the left operand decides the result the
// right operand is never evaluated, so its errors cannot surface.
func evalLogical(n *Binary, ctx Context) (value.Value, error) {
	l, err := eval(n.L, ctx)
	if err != nil {
		return value.Value{}, err
	}

	lb, ok := l.AsBool()
	if !ok {
		return value.Value{}, &TypeError{Op: n.Op, Operands: []value.Kind{l.Kind()}}
	}

	if n.Op == OpAnd && !lb {
		return value.Bool(false), nil
	}

	if n.Op == OpOr && lb {
		return value.Bool(true), nil
	}

	r, err := eval(n.R, ctx)
	if err != nil {
		return value.Value{}, err
	}

	rb, ok := r.AsBool()
	if !ok {
		return value.Value{}, &TypeError{Op: n.Op, Operands: []value.Kind{l.Kind(), r.Kind()}}
	}

	return value.Bool(rb), nil
}

func evalBinary(n *Binary, ctx Context) (value.Value, error) {
	l, err := eval(n.L, ctx)
	if err != nil {
		return value.Value{}, err
	}

	r, err := eval(n.R, ctx)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case OpEq:
		return value.Bool(l.Equal(r)), nil
	case OpNe:
		return value.Bool(!l.Equal(r)), nil
	default:
	}

	lf, lok := l.AsFloat()
	rf, rok := r.AsFloat()

	if !lok || !rok {
		return value.Value{}, &TypeError{Op: n.Op, Operands: []value.Kind{l.Kind(), r.Kind()}}
	}

	switch n.Op {
	case OpMul:
		return value.Float(lf * rf), nil
	case OpDiv:
		return value.Float(lf / rf), nil
	case OpAdd:
		return value.Float(lf + rf), nil
	case OpSub:
		return value.Float(lf - rf), nil
	case OpLT:
		return value.Bool(lf < rf), nil
	case OpLE:
		return value.Bool(lf <= rf), nil
	case OpGT:
		return value.Bool(lf > rf), nil
	case OpGE:
		return value.Bool(lf >= rf), nil
	default:
	}

	return value.Value{}, &TypeError{Op: n.Op, Operands: []value.Kind{l.Kind(), r.Kind()}}
}
