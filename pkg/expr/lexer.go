package expr

import (
	"strconv"
	"strings"
)

// lexer turns rule text into tokens. It works on bytes; non-ASCII text is
// only allowed inside string literals and back-tick identifiers.
type lexer struct {
	src string
	pos int
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}

	var toks []token
	for {
		tk, err := lx.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tk)
		if tk.kind == tokEOF {
			return toks, nil
		}
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpace()

	start := lx.pos
	if start >= len(lx.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := lx.src[start]
	switch {
	case isDigit(c) || (c == '.' && start+1 < len(lx.src) && isDigit(lx.src[start+1])):
		return lx.number()
	case isIdentStart(c):
		return lx.ident(), nil
	case c == '`':
		return lx.quotedIdent()
	case c == '"':
		return lx.str()
	}

	two := ""
	if start+1 < len(lx.src) {
		two = lx.src[start : start+2]
	}

	switch two {
	case "&&":
		return lx.emit(tokAnd, 2), nil
	case "||":
		return lx.emit(tokOr, 2), nil
	case "==":
		return lx.emit(tokEq, 2), nil
	case "!=":
		return lx.emit(tokNe, 2), nil
	case "<=":
		return lx.emit(tokLE, 2), nil
	case ">=":
		return lx.emit(tokGE, 2), nil
	}

	switch c {
	case '<':
		return lx.emit(tokLT, 1), nil
	case '>':
		return lx.emit(tokGT, 1), nil
	case '!':
		return lx.emit(tokNot, 1), nil
	case '+':
		return lx.emit(tokPlus, 1), nil
	case '-':
		return lx.emit(tokMinus, 1), nil
	case '*':
		return lx.emit(tokStar, 1), nil
	case '/':
		return lx.emit(tokSlash, 1), nil
	case '(':
		return lx.emit(tokLParen, 1), nil
	case ')':
		return lx.emit(tokRParen, 1), nil
	case ',':
		return lx.emit(tokComma, 1), nil
	}

	return token{}, syntaxErrorf(start, "unexpected character %q", c)
}

func (lx *lexer) emit(kind tokenKind, width int) token {
	tk := token{kind: kind, pos: lx.pos}
	lx.pos += width

	return tk
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case ' ', '\t', '\n', '\r':
			lx.pos++
		default:
			return
		}
	}
}

func (lx *lexer) number() (token, error) {
	start := lx.pos
	lx.digits()

	if lx.peek() == '.' {
		lx.pos++
		lx.digits()
	}

	if c := lx.peek(); c == 'e' || c == 'E' {
		lx.pos++
		if c := lx.peek(); c == '+' || c == '-' {
			lx.pos++
		}

		if !isDigit(lx.peek()) {
			return token{}, syntaxErrorf(start, "malformed number %q", lx.src[start:lx.pos])
		}

		lx.digits()
	}

	// A number running straight into a letter, like 12abc, is not two tokens.
	if isIdentStart(lx.peek()) {
		return token{}, syntaxErrorf(start, "malformed number %q", lx.src[start:lx.pos+1])
	}

	text := lx.src[start:lx.pos]

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, syntaxErrorf(start, "malformed number %q", text)
	}

	return token{kind: tokNumber, pos: start, text: text, num: f}, nil
}

func (lx *lexer) digits() {
	for isDigit(lx.peek()) {
		lx.pos++
	}
}

func (lx *lexer) ident() token {
	start := lx.pos
	for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
		lx.pos++
	}

	text := lx.src[start:lx.pos]
	switch text {
	case "true":
		return token{kind: tokTrue, pos: start, text: text}
	case "false":
		return token{kind: tokFalse, pos: start, text: text}
	}

	return token{kind: tokIdent, pos: start, text: text}
}

func (lx *lexer) quotedIdent() (token, error) {
	start := lx.pos

	end := strings.IndexByte(lx.src[start+1:], '`')
	if end < 0 {
		return token{}, syntaxErrorf(start, "unterminated quoted identifier")
	}

	name := lx.src[start+1 : start+1+end]
	if name == "" {
		return token{}, syntaxErrorf(start, "empty quoted identifier")
	}

	lx.pos = start + end + 2

	return token{kind: tokIdent, pos: start, text: name, quoted: true}, nil
}

func (lx *lexer) str() (token, error) {
	start := lx.pos
	lx.pos++

	var sb strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case '"':
			lx.pos++
			return token{kind: tokString, pos: start, text: sb.String()}, nil

		case '\\':
			if lx.pos+1 >= len(lx.src) {
				return token{}, syntaxErrorf(lx.pos, "unterminated escape sequence")
			}

			switch esc := lx.src[lx.pos+1]; esc {
			case '"', '\\':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return token{}, syntaxErrorf(lx.pos, "unknown escape sequence \\%c", esc)
			}

			lx.pos += 2

		default:
			sb.WriteByte(c)
			lx.pos++
		}
	}

	return token{}, syntaxErrorf(start, "unterminated string literal")
}

func (lx *lexer) peek() byte {
	if lx.pos < len(lx.src) {
		return lx.src[lx.pos]
	}

	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.'
}
