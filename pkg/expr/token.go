package expr

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokTrue
	tokFalse
	tokLParen
	tokRParen
	tokComma
	tokNot
	tokMinus
	tokPlus
	tokStar
	tokSlash
	tokLT
	tokLE
	tokGT
	tokGE
	tokEq
	tokNe
	tokAnd
	tokOr
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of input",
	tokIdent:  "identifier",
	tokNumber: "number",
	tokString: "string",
	tokTrue:   "true",
	tokFalse:  "false",
	tokLParen: "(",
	tokRParen: ")",
	tokComma:  ",",
	tokNot:    "!",
	tokMinus:  "-",
	tokPlus:   "+",
	tokStar:   "*",
	tokSlash:  "/",
	tokLT:     "<",
	tokLE:     "<=",
	tokGT:     ">",
	tokGE:     ">=",
	tokEq:     "==",
	tokNe:     "!=",
	tokAnd:    "&&",
	tokOr:     "||",
}

func (k tokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}

	return "unknown"
}

type token struct {
	text   string // Identifier name or unescaped string contents.
	num    float64
	pos    int
	kind   tokenKind
	quoted bool // Identifier was written between back-ticks.
}

// binaryOps maps operator tokens to their AST operator.
var binaryOps = map[tokenKind]Op{
	tokStar:  OpMul,
	tokSlash: OpDiv,
	tokPlus:  OpAdd,
	tokMinus: OpSub,
	tokLT:    OpLT,
	tokLE:    OpLE,
	tokGT:    OpGT,
	tokGE:    OpGE,
	tokEq:    OpEq,
	tokNe:    OpNe,
	tokAnd:   OpAnd,
	tokOr:    OpOr,
}
