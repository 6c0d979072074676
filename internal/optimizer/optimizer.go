// Package optimizer implements the pure-subtree partial evaluator (§4.6):
// it folds any subtree whose every opcode is pure and whose every free
// std.var reference resolves to a std.let introduced within that same
// subtree, replacing it with the literal (or std.quote-wrapped) result of
// running it once against a fresh context.
package optimizer

import (
	"fmt"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/compiler"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib"
)

// WarnFunc receives a non-fatal diagnostic when partial evaluation of a
// subtree fails; folding simply leaves the original subtree in place
// (§4.6: "optimization is opportunistic, never a compilation blocker").
type WarnFunc func(message string)

// Optimizer folds pure subtrees of an AST against a fixed registry.
type Optimizer struct {
	Ops *registry.Registry
	// Warn is invoked (never panics, never aborts) whenever partial
	// evaluation of an otherwise-pure subtree fails at runtime (e.g. it
	// exhausts the fixed evaluation budget below). Defaults to a no-op.
	Warn WarnFunc
	// gas bounds the fresh context each folded subtree runs against, so a
	// pure-but-non-terminating loop (e.g. `std.while(true, std.seq())`)
	// cannot hang the optimizer; exhaustion is treated as an ordinary
	// fold failure, not propagated.
	gas int64
}

// defaultGas is generous enough for any constant-foldable expression a
// human would write (loops over small literal lists, short arithmetic
// chains) without risking a hang on an adversarial pure-looking subtree.
const defaultGas = 200_000

// New returns an Optimizer. A nil warn is replaced with a no-op.
func New(ops *registry.Registry, warn WarnFunc) *Optimizer {
	if warn == nil {
		warn = func(string) {}
	}
	return &Optimizer{Ops: ops, Warn: warn, gas: defaultGas}
}

var pureSet = buildPureSet()

func buildPureSet() map[string]bool {
	set := make(map[string]bool, len(stdlib.PureOpNames))
	for _, name := range stdlib.PureOpNames {
		set[name] = true
	}
	return set
}

// Fold walks node bottom-up, folding every pure subtree it finds.
func (o *Optimizer) Fold(node ast.Node) ast.Node {
	e, ok := node.(*ast.Expr)
	if !ok {
		return node
	}
	if e.Op == "std.quote" {
		// Quoted data is never evaluated, so it is never descended into
		// or folded — it is already exactly the literal it represents.
		return e
	}

	args := make([]ast.Node, len(e.Args))
	for i, a := range e.Args {
		args[i] = o.Fold(a)
	}
	folded := ast.NewExpr(e.Op, args...)

	if folded.Op == "std.lambda" || folded.Op == "obj.new" {
		// Value constructors with reference semantics are never folded at
		// the top level (§4.6): doing so would bake a single shared,
		// mutable Value into the AST, reused — and potentially mutated in
		// place — across every future evaluation of this subtree.
		return folded
	}
	if folded.Op == "std.let" {
		// A let folded on its own would drop the binding its siblings read;
		// it is folded only as part of an enclosing pure subtree.
		return folded
	}

	if !o.isPure(folded, map[string]bool{}) {
		return folded
	}
	return o.evaluate(folded)
}

func (o *Optimizer) evaluate(e *ast.Expr) ast.Node {
	comp := compiler.New(o.Ops).WithoutOptimize()
	fn, err := comp.Compile(e)
	if err != nil {
		o.Warn(fmt.Sprintf("optimizer: %s: compile failed: %v", e.Op, err))
		return e
	}
	ctx := interp.NewContext(nil, nil, nil, o.gas, o.Ops)
	v, err := fn(ctx)
	if err != nil {
		o.Warn(fmt.Sprintf("optimizer: %s: evaluation failed: %v", e.Op, err))
		return e
	}
	return requote(v)
}

func requote(v *ast.Value) ast.Node {
	if v == nil || ast.IsPrimitiveLiteral(v) {
		return ast.NewLiteral(v)
	}
	return ast.NewExpr("std.quote", ast.NewLiteral(v))
}

func cloneBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound)+1)
	for k, v := range bound {
		out[k] = v
	}
	return out
}

func literalStringArg(args []ast.Node, idx int) (string, bool) {
	if idx >= len(args) {
		return "", false
	}
	lit, ok := args[idx].(*ast.Literal)
	if !ok || lit.Val == nil || lit.Val.Kind() != ast.KindString {
		return "", false
	}
	return lit.Val.Str(), true
}

// isPure reports whether node, evaluated with bound already declared via
// std.let, produces no observable effect beyond its own free-variable
// references and always terminates (modulo the fixed gas budget applied
// when actually running a candidate).
func (o *Optimizer) isPure(node ast.Node, bound map[string]bool) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *ast.Literal:
		return true
	case *ast.Expr:
		switch n.Op {
		case "std.quote":
			return true
		case "std.var":
			name, ok := literalStringArg(n.Args, 0)
			return ok && bound[name]
		case "std.set":
			if len(n.Args) < 2 {
				return false
			}
			name, ok := literalStringArg(n.Args, 0)
			if !ok || !bound[name] {
				return false
			}
			return o.isPure(n.Args[1], bound)
		case "std.let":
			if len(n.Args) < 2 {
				return false
			}
			name, ok := literalStringArg(n.Args, 0)
			if !ok || !o.isPure(n.Args[1], bound) {
				return false
			}
			bound[name] = true
			return true
		case "std.seq":
			child := cloneBound(bound)
			for _, a := range n.Args {
				if !o.isPure(a, child) {
					return false
				}
			}
			return true
		case "std.if":
			if len(n.Args) < 2 || !o.isPure(n.Args[0], bound) {
				return false
			}
			for _, a := range n.Args[1:] {
				if !o.isPure(a, cloneBound(bound)) {
					return false
				}
			}
			return true
		case "std.while":
			if len(n.Args) < 2 || !o.isPure(n.Args[0], bound) {
				return false
			}
			return o.isPure(n.Args[1], cloneBound(bound))
		case "std.for":
			if len(n.Args) < 3 {
				return false
			}
			name, ok := literalStringArg(n.Args, 0)
			if !ok || !o.isPure(n.Args[1], bound) {
				return false
			}
			child := cloneBound(bound)
			child[name] = true
			return o.isPure(n.Args[2], child)
		case "time.offset":
			// Only pure with an explicit base: omitting it reads the
			// wall clock, a non-deterministic input (§4.6 call-site
			// restriction noted alongside stdlib.PureOpNames).
			if len(n.Args) < 3 {
				return false
			}
			for _, a := range n.Args {
				if !o.isPure(a, bound) {
					return false
				}
			}
			return true
		default:
			if !pureSet[n.Op] {
				return false
			}
			for _, a := range n.Args {
				if !o.isPure(a, bound) {
					return false
				}
			}
			return true
		}
	default:
		return false
	}
}
