package interp

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
)

// frame is one activation record of the explicit interpreter stack (§4.2):
// the opcode being evaluated, its accumulated arguments, and a cursor into
// the source expression's sub-ASTs. Lazy opcodes populate raw instead of
// args — they receive unevaluated sub-trees.
type frame struct {
	expr   *ast.Expr
	entry  registry.Entry
	args   []*ast.Value
	raw    []ast.Node
	cursor int
	filled bool // true once a lazy frame's raw args have been moved in
}
