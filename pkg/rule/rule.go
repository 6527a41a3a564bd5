package rule

import (
	"errors"
	"fmt"

	"github.com/macropower/csvr/pkg/expr"
)

// ErrCompile is returned when a rule cannot be compiled.
var ErrCompile = errors.New("can't compile rule")

// Lang selects the language a rule is written in.
type Lang string

const (
	// LangExpr is the native rule language, see [expr.Compile].
	LangExpr Lang = "expr"
	// LangCEL is the Common Expression Language, see [expr.CompileCEL].
	LangCEL Lang = "cel"
)

// Rule is one entry of a rule document.
type Rule struct {
	// Rule is the expression evaluated against every record.
	Rule string `json:"rule" jsonschema:"title=Rule Expression,minLength=1"`
	// Lang is the language of the expression. Defaults to expr.
	Lang Lang `json:"lang,omitempty" jsonschema:"title=Language,enum=expr,enum=cel,default=expr"`
	// Name is an optional label, used in logs.
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
}

// Compiled is a [Rule] together with its compiled predicate. It is immutable
// and shared by every worker for the lifetime of a run.
type Compiled struct {
	pred expr.Predicate
	Rule
}

// New compiles a native rule.
func New(text string) (*Compiled, error) {
	return Compile(Rule{Rule: text})
}

// MustNew compiles a native rule and panics if there's an error.
func MustNew(text string) *Compiled {
	c, err := New(text)
	if err != nil {
		panic(err)
	}

	return c
}

// Compile compiles r with the compiler for its language.
func Compile(r Rule) (*Compiled, error) {
	var (
		pred expr.Predicate
		err  error
	)

	switch r.Lang {
	case "", LangExpr:
		pred, err = expr.Compile(r.Rule)
	case LangCEL:
		pred, err = expr.CompileCEL(r.Rule)
	default:
		err = fmt.Errorf("unknown language %q", r.Lang)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, r.Rule, err)
	}

	return &Compiled{Rule: r, pred: pred}, nil
}

// CompileAll compiles every rule, stopping at the first failure.
func CompileAll(rules []Rule) ([]*Compiled, error) {
	out := make([]*Compiled, 0, len(rules))
	for _, r := range rules {
		c, err := Compile(r)
		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, nil
}

// Match reports whether the rule matches the record in ctx.
func (c *Compiled) Match(ctx expr.Context) bool {
	return c.pred.Match(ctx)
}

// String returns the rule text.
func (c *Compiled) String() string {
	return c.Rule.Rule
}
