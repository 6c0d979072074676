package ast

// Node is any element of the s-expression AST: either a primitive Literal
// or an Expr (an opcode head plus sub-ASTs). Objects and lists are never
// literals — authors construct them with the obj.new/list.new opcodes, so
// every non-primitive value enters the tree through an Expr.
type Node interface {
	astNode()
	// String renders the node back to s-expression notation, e.g.
	// (add 1 2). Used for debugging and error stack traces.
	String() string
}

// Literal is a primitive AST leaf: null, boolean, number, or string. The
// zero Literal (Val == nil) is null.
type Literal struct {
	Val *Value
}

func (*Literal) astNode() {}

// NewLiteral wraps v (which must be a primitive kind) as a Literal node.
func NewLiteral(v *Value) *Literal { return &Literal{Val: v} }

func (l *Literal) String() string {
	if l == nil || l.Val == nil {
		return "null"
	}
	return l.Val.GoString()
}

// Expr is a compound AST node: an opcode name followed by its sub-AST
// arguments. For a lazy opcode, Args holds the raw, unevaluated sub-trees;
// for a strict opcode they are evaluated left to right before the handler
// runs.
type Expr struct {
	Op   string
	Args []Node
}

func (*Expr) astNode() {}

// NewExpr builds an expression node.
func NewExpr(op string, args ...Node) *Expr { return &Expr{Op: op, Args: args} }

func (e *Expr) String() string {
	s := "(" + e.Op
	for _, a := range e.Args {
		s += " " + a.String()
	}
	return s + ")"
}

// IsPrimitiveLiteral reports whether v is a value the AST may hold
// directly in a Literal node: null, bool, number, or string. Lists and
// objects must be produced by list.new/obj.new or quoted via std.quote.
func IsPrimitiveLiteral(v *Value) bool {
	switch v.Kind() {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}
