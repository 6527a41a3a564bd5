package expr

import (
	"fmt"

	"github.com/macropower/csvr/pkg/value"
)

type compiler struct {
	funcs map[string]Func
}

type parser struct {
	c    *compiler
	toks []token
	pos  int
}

func (c *compiler) parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{c: c, toks: toks}

	n, err := p.expr(1)
	if err != nil {
		return nil, err
	}

	if tk := p.peek(); tk.kind != tokEOF {
		return nil, syntaxErrorf(tk.pos, "unexpected %s", describe(tk))
	}

	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	tk := p.toks[p.pos]
	if tk.kind != tokEOF {
		p.pos++
	}

	return tk
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tk := p.advance()
	if tk.kind != kind {
		return tk, syntaxErrorf(tk.pos, "expected %s, found %s", kind, describe(tk))
	}

	return tk, nil
}

// expr parses a binary expression whose operators bind at least as tightly
// as minPrec. All binary operators are left-associative.
func (p *parser) expr(minPrec int) (Node, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := binaryOps[p.peek().kind]
		if !ok || op.precedence() < minPrec {
			return lhs, nil
		}

		p.advance()

		rhs, err := p.expr(op.precedence() + 1)
		if err != nil {
			return nil, err
		}

		lhs = &Binary{Op: op, L: lhs, R: rhs}
	}
}

func (p *parser) unary() (Node, error) {
	switch p.peek().kind {
	case tokNot:
		p.advance()

		x, err := p.unary()
		if err != nil {
			return nil, err
		}

		return &Unary{Op: OpNot, X: x}, nil

	case tokMinus:
		p.advance()

		x, err := p.unary()
		if err != nil {
			return nil, err
		}

		return &Unary{Op: OpNeg, X: x}, nil

	default:
		return p.primary()
	}
}

func (p *parser) primary() (Node, error) {
	tk := p.advance()

	switch tk.kind {
	case tokNumber:
		return &Literal{Value: value.Float(tk.num)}, nil
	case tokString:
		return &Literal{Value: value.String(tk.text)}, nil
	case tokTrue:
		return &Literal{Value: value.Bool(true)}, nil
	case tokFalse:
		return &Literal{Value: value.Bool(false)}, nil

	case tokIdent:
		if !tk.quoted && p.peek().kind == tokLParen {
			return p.call(tk)
		}

		return &Variable{Name: tk.text}, nil

	case tokLParen:
		n, err := p.expr(1)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}

		return n, nil

	default:
		return nil, syntaxErrorf(tk.pos, "unexpected %s", describe(tk))
	}
}

func (p *parser) call(name token) (Node, error) {
	fn, ok := p.c.funcs[name.text]
	if !ok {
		return nil, &SyntaxError{Err: ErrUnknownFunction, Pos: name.pos, Msg: name.text}
	}

	p.advance() // (

	var args []Node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.expr(1)
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if p.peek().kind != tokComma {
				break
			}

			p.advance()
		}
	}

	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}

	if len(args) != fn.Arity {
		return nil, &SyntaxError{
			Err: ErrArity,
			Pos: name.pos,
			Msg: fmt.Sprintf("%s expects %d, got %d", name.text, fn.Arity, len(args)),
		}
	}

	return &Call{Name: name.text, Args: args, fn: fn}, nil
}

func describe(tk token) string {
	switch tk.kind {
	case tokIdent:
		return fmt.Sprintf("identifier %q", tk.text)
	case tokNumber:
		return "number " + tk.text
	case tokString:
		return "string literal"
	default:
		return fmt.Sprintf("%q", tk.kind.String())
	}
}
