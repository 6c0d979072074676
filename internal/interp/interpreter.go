// Package interp implements the non-recursive stack-machine evaluator
// (§4.2): gas metering, the lazy/strict opcode dispatch split, typed
// control-flow signals, and cooperative suspension on pending values.
package interp

import (
	"fmt"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

// Interpreter evaluates AST nodes against a registry. It carries no
// per-invocation state itself — that all lives on ScriptContext — so one
// Interpreter may safely evaluate many scripts concurrently.
type Interpreter struct {
	// ValidateTypes toggles the optional opcode-metadata argument check
	// described in §4.2. Disabled by default so embedders pay for it only
	// when they want it (e.g. during development).
	ValidateTypes bool
}

// New returns an Interpreter with type validation disabled.
func New() *Interpreter {
	return &Interpreter{}
}

// Evaluate is the entry point: it dispatches a literal directly and runs
// an expression through the stack machine.
func (it *Interpreter) Evaluate(node ast.Node, ctx *ScriptContext) (*ast.Value, error) {
	switch n := node.(type) {
	case nil:
		return ast.Null(), nil
	case *ast.Literal:
		return literalValue(n), nil
	case *ast.Expr:
		return it.run(n, ctx)
	default:
		return nil, scripterr.New(scripterr.KindCustom, "unrecognized AST node %T", node)
	}
}

func literalValue(l *ast.Literal) *ast.Value {
	if l == nil || l.Val == nil {
		return ast.Null()
	}
	return l.Val
}

// run drives the explicit frame stack for a single root expression. Nested
// strict sub-expressions are flattened onto this same stack (no Go
// recursion); lazy opcodes re-enter Evaluate via the handler they're
// given, which is the one place genuine host recursion remains — bounded
// by the script's own lazy-construct nesting, not by adversarial argument
// chains.
func (it *Interpreter) run(root *ast.Expr, ctx *ScriptContext) (*ast.Value, error) {
	first, err := it.newFrame(root, ctx)
	if err != nil {
		return nil, err
	}
	stack := []*frame{first}

	for len(stack) > 0 {
		if err := it.useGas(ctx); err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]

		if top.entry.Lazy != nil {
			if !top.filled {
				top.raw = top.expr.Args
				top.cursor = len(top.expr.Args)
				top.filled = true
			}
		} else if top.cursor < len(top.expr.Args) {
			sub := top.expr.Args[top.cursor]
			switch n := sub.(type) {
			case *ast.Literal:
				top.args = append(top.args, literalValue(n))
				top.cursor++
			case *ast.Expr:
				nf, err := it.newFrame(n, ctx)
				if err != nil {
					return nil, err
				}
				stack = append(stack, nf)
			default:
				return nil, scripterr.New(scripterr.KindCustom, "unrecognized AST node %T", sub)
			}
			continue
		}

		result, err := it.invoke(top, ctx)
		if err != nil {
			return nil, it.wrapErr(err, top, ctx)
		}
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return result, nil
		}
		parent := stack[len(stack)-1]
		parent.args = append(parent.args, result)
		parent.cursor++
	}
	return ast.Null(), nil
}

func (it *Interpreter) newFrame(expr *ast.Expr, ctx *ScriptContext) (*frame, error) {
	entry, err := ctx.Ops.Lookup(expr.Op)
	if err != nil {
		return nil, err
	}
	if it.ValidateTypes {
		// Literal-arity checks (type checks happen post-evaluation for
		// strict opcodes, since the values don't exist yet here); lazy
		// opcodes are checked against raw-arg count only.
		if err := validateArity(entry.Meta, len(expr.Args)); err != nil {
			return nil, err
		}
	}
	return &frame{expr: expr, entry: entry}, nil
}

func (it *Interpreter) invoke(f *frame, ctx *ScriptContext) (*ast.Value, error) {
	if f.entry.Lazy != nil {
		if it.ValidateTypes {
			if err := validateArity(f.entry.Meta, len(f.raw)); err != nil {
				return nil, err
			}
		}
		outcome, err := f.entry.Lazy(ctx, f.raw)
		if err != nil {
			return nil, err
		}
		return it.resolve(outcome)
	}
	if it.ValidateTypes {
		if err := validateTypes(f.entry.Meta, f.args); err != nil {
			return nil, err
		}
	}
	outcome, err := f.entry.Handler(ctx, f.args)
	if err != nil {
		return nil, err
	}
	return it.resolve(outcome)
}

// resolve awaits a pending outcome, implementing the suspension point
// described in §4.2: the interpreter blocks here, single-threaded,
// until the handler's async work completes.
func (it *Interpreter) resolve(outcome registry.Outcome) (*ast.Value, error) {
	if outcome.Pending == nil {
		return outcome.Value, nil
	}
	return outcome.Pending.Await()
}

// useGas implements step 1 of the evaluation loop: decrement once per
// step, fail with GasExhausted once negative.
func (it *Interpreter) useGas(ctx *ScriptContext) error {
	return ctx.UseGas()
}

// wrapErr implements the interpreter's error policy: signals pass through
// untouched, everything else becomes (or stays) a ScriptError with the
// current frame appended to its trace.
func (it *Interpreter) wrapErr(err error, f *frame, ctx *ScriptContext) error {
	if IsSignal(err) {
		return err
	}
	se := scripterr.AsScriptError(err)
	return se.WithFrame(scripterr.StackFrame{Op: f.expr.Op, Args: renderArgs(f.args)})
}

func renderArgs(args []*ast.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.GoString()
	}
	return out
}

func validateArity(meta ast.Metadata, n int) error {
	min, max := 0, -1
	for i, p := range meta.Parameters {
		if p.Variadic {
			max = -1
			break
		}
		if !p.Optional {
			min = i + 1
		}
		max = i + 1
	}
	if n < min || (max >= 0 && n > max) {
		return scripterr.New(scripterr.KindArgumentCount,
			"%s: expected %s, got %d", meta.Name, arityDescription(min, max), n)
	}
	return nil
}

func arityDescription(min, max int) string {
	if max < 0 {
		return fmt.Sprintf("at least %d argument(s)", min)
	}
	if min == max {
		return fmt.Sprintf("%d argument(s)", min)
	}
	return fmt.Sprintf("between %d and %d argument(s)", min, max)
}
