package ast

import (
	"strconv"
	"strings"
)

// Kind represents the type of a Node
type Kind int

const (
	KNumber Kind = iota
	KString
	KVariable
	KList
	KBinop
	KCall
	KIf
	KLoop
	KProcDef
	KBlock
)

func (k Kind) String() string {
	switch k {
	case KNumber:
		return "number"
	case KString:
		return "string"
	case KVariable:
		return "variable"
	case KList:
		return "list"
	case KBinop:
		return "binop"
	case KCall:
		return "call"
	case KIf:
		return "if"
	case KLoop:
		return "repeat"
	case KProcDef:
		return "to"
	case KBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Op is a binary operator tag
type Op int

const (
	OpAnd Op = iota
	OpOr
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqualEqual
	OpAdd
	OpSub
	OpMul
	OpDiv
)

var opNames = [...]string{
	OpAnd:          "and",
	OpOr:           "or",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpEqualEqual:   "==",
	OpAdd:          "+",
	OpSub:          "-",
	OpMul:          "*",
	OpDiv:          "/",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return "?"
}

// LookupOp maps an operator token to its tag.
func LookupOp(tok string) (Op, bool) {
	for i, name := range opNames {
		if name == tok {
			return Op(i), true
		}
	}
	return 0, false
}

// Node is the tagged union for all AST nodes.
// Nodes are built once by the parser and never mutated afterwards.
type Node struct {
	Kind Kind

	// KNumber
	Num float64

	// KString, KVariable; procedure name for KProcDef
	Str string

	// KBinop
	Op    Op
	Left  *Node
	Right *Node

	// KCall: Callee applied to Items.
	// KList, KBlock: elements / statements.
	Callee *Node
	Items  []*Node

	// KIf: Cond and Body. KLoop: Cond holds the repeat count.
	// KProcDef: Body with Params.
	Cond   *Node
	Body   *Node
	Params []string
}

// NewNumber creates a numeric literal
func NewNumber(n float64) *Node {
	return &Node{Kind: KNumber, Num: n}
}

// NewString creates a string literal
func NewString(s string) *Node {
	return &Node{Kind: KString, Str: s}
}

// NewVariable creates a variable reference
func NewVariable(name string) *Node {
	return &Node{Kind: KVariable, Str: name}
}

// NewList creates a list literal
func NewList(elems []*Node) *Node {
	return &Node{Kind: KList, Items: elems}
}

// NewBinop creates a binary operation
func NewBinop(left *Node, op Op, right *Node) *Node {
	return &Node{Kind: KBinop, Left: left, Op: op, Right: right}
}

// NewCall creates a call of callee with args
func NewCall(callee *Node, args []*Node) *Node {
	return &Node{Kind: KCall, Callee: callee, Items: args}
}

// NewIf creates a conditional with no else branch
func NewIf(cond, body *Node) *Node {
	return &Node{Kind: KIf, Cond: cond, Body: body}
}

// NewLoop creates a repeat loop
func NewLoop(count, body *Node) *Node {
	return &Node{Kind: KLoop, Cond: count, Body: body}
}

// NewProcDef creates a procedure definition
func NewProcDef(name string, params []string, body *Node) *Node {
	return &Node{Kind: KProcDef, Str: name, Params: params, Body: body}
}

// NewBlock creates a statement block
func NewBlock(stmts []*Node) *Node {
	return &Node{Kind: KBlock, Items: stmts}
}

// Convenience constructors for the arithmetic/logic operators.

func Add(l, r *Node) *Node { return NewBinop(l, OpAdd, r) }
func Sub(l, r *Node) *Node { return NewBinop(l, OpSub, r) }
func Mul(l, r *Node) *Node { return NewBinop(l, OpMul, r) }
func Div(l, r *Node) *Node { return NewBinop(l, OpDiv, r) }

// Equal compares two nodes for structural equality.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNumber:
		return a.Num == b.Num
	case KString, KVariable:
		return a.Str == b.Str
	case KList, KBlock:
		return equalAll(a.Items, b.Items)
	case KBinop:
		return a.Op == b.Op && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case KCall:
		return Equal(a.Callee, b.Callee) && equalAll(a.Items, b.Items)
	case KIf, KLoop:
		return Equal(a.Cond, b.Cond) && Equal(a.Body, b.Body)
	case KProcDef:
		if a.Str != b.Str || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i] != b.Params[i] {
				return false
			}
		}
		return Equal(a.Body, b.Body)
	}
	return false
}

func equalAll(as, bs []*Node) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// Walk calls fn for n and every node below it, depth first.
// Returning false from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n.Kind {
	case KBinop:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case KCall:
		Walk(n.Callee, fn)
		for _, a := range n.Items {
			Walk(a, fn)
		}
	case KList, KBlock:
		for _, a := range n.Items {
			Walk(a, fn)
		}
	case KIf, KLoop:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)
	case KProcDef:
		Walk(n.Body, fn)
	}
}

// String renders the node as an s-expression, mostly for tests and -v output.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case KNumber:
		sb.WriteString(strconv.FormatFloat(n.Num, 'g', -1, 64))
	case KString:
		sb.WriteString(strconv.Quote(n.Str))
	case KVariable:
		sb.WriteString(n.Str)
	case KList:
		sb.WriteByte('[')
		writeSeq(sb, n.Items)
		sb.WriteByte(']')
	case KBinop:
		sb.WriteByte('(')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		n.Left.write(sb)
		sb.WriteByte(' ')
		n.Right.write(sb)
		sb.WriteByte(')')
	case KCall:
		sb.WriteByte('(')
		n.Callee.write(sb)
		for _, a := range n.Items {
			sb.WriteByte(' ')
			a.write(sb)
		}
		sb.WriteByte(')')
	case KIf, KLoop:
		sb.WriteByte('(')
		sb.WriteString(n.Kind.String())
		sb.WriteByte(' ')
		n.Cond.write(sb)
		sb.WriteByte(' ')
		n.Body.write(sb)
		sb.WriteByte(')')
	case KProcDef:
		sb.WriteString("(to ")
		sb.WriteString(n.Str)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(n.Params, " "))
		sb.WriteString(") ")
		n.Body.write(sb)
		sb.WriteByte(')')
	case KBlock:
		sb.WriteString("(block")
		for _, s := range n.Items {
			sb.WriteByte(' ')
			s.write(sb)
		}
		sb.WriteByte(')')
	}
}

func writeSeq(sb *strings.Builder, items []*Node) {
	for i, it := range items {
		if i > 0 {
			sb.WriteByte(' ')
		}
		it.write(sb)
	}
}
