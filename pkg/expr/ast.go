package expr

import (
	"strconv"
	"strings"

	"github.com/macropower/csvr/pkg/value"
)

// Op is a unary or binary operator.
type Op uint8

const (
	OpNot Op = iota
	OpNeg
	OpMul
	OpDiv
	OpAdd
	OpSub
	OpLT
	OpLE
	OpGT
	OpGE
	OpEq
	OpNe
	OpAnd
	OpOr
)

var opSymbols = [...]string{
	OpNot: "!",
	OpNeg: "-",
	OpMul: "*",
	OpDiv: "/",
	OpAdd: "+",
	OpSub: "-",
	OpLT:  "<",
	OpLE:  "<=",
	OpGT:  ">",
	OpGE:  ">=",
	OpEq:  "==",
	OpNe:  "!=",
	OpAnd: "&&",
	OpOr:  "||",
}

func (o Op) String() string {
	if int(o) < len(opSymbols) {
		return opSymbols[o]
	}

	return "op(" + strconv.Itoa(int(o)) + ")"
}

// precedence returns the binding power of a binary operator. Higher binds
// tighter.
func (o Op) precedence() int {
	switch o {
	case OpMul, OpDiv:
		return 6
	case OpAdd, OpSub:
		return 5
	case OpLT, OpLE, OpGT, OpGE:
		return 4
	case OpEq, OpNe:
		return 3
	case OpAnd:
		return 2
	case OpOr:
		return 1
	case OpNot, OpNeg:
	}

	return 0
}

// Node is a node of a compiled expression tree. Trees are immutable once
// built.
type Node interface {
	// String renders the node fully parenthesized.
	String() string

	node()
}

// Variable references a column by name.
type Variable struct {
	Name string
}

// Literal is a constant value.
type Literal struct {
	Value value.Value
}

// Unary applies Op to X.
type Unary struct {
	X  Node
	Op Op
}

// Binary applies Op to L and R.
type Binary struct {
	L  Node
	R  Node
	Op Op
}

// Call invokes a registered function.
type Call struct {
	fn   Func
	Name string
	Args []Node
}

func (*Variable) node() {}
func (*Literal) node()  {}
func (*Unary) node()    {}
func (*Binary) node()   {}
func (*Call) node()     {}

func (n *Variable) String() string {
	if isPlainIdent(n.Name) {
		return n.Name
	}

	return "`" + n.Name + "`"
}

func (n *Literal) String() string {
	if s, ok := n.Value.AsString(); ok {
		return strconv.Quote(s)
	}

	return n.Value.String()
}

func (n *Unary) String() string {
	return "(" + n.Op.String() + n.X.String() + ")"
}

func (n *Binary) String() string {
	return "(" + n.L.String() + " " + n.Op.String() + " " + n.R.String() + ")"
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}

	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

func isPlainIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}

	return s != "true" && s != "false"
}
