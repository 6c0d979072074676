// Package compiler lowers an AST to a directly callable Go closure
// (§4.3): a CompiledFunc that executes without the interpreter's explicit
// frame stack, resolving each opcode against the registry once at compile
// time instead of on every call.
//
// Compiled output is the composed closure tree itself rather than
// generated textual source: this engine embeds in a Go host, so the
// natural compiled form of a script is a Go closure, not a string later
// fed to another compiler. Identifier sanitization, by contrast, concerns
// textual identifiers and applies at the transpiler/decompiler boundary
// (surface syntax is text); see DESIGN.md for the recorded rationale.
package compiler

import (
	"strings"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
	"github.com/cwbudde/verbscript/internal/stdlib/objlib"
)

// Compiler lowers AST nodes into CompiledFuncs against a fixed registry.
type Compiler struct {
	Ops *registry.Registry
	// Optimize controls whether the optimizer may re-enter this Compiler
	// for pure-subtree partial evaluation. The optimizer always compiles
	// with Optimize=false on its own re-entrant calls to avoid unbounded
	// recursion between the two passes (§4.6).
	Optimize bool
}

// New returns a Compiler that inlines fast paths and falls through to ops
// for everything else, with optimization enabled.
func New(ops *registry.Registry) *Compiler {
	return &Compiler{Ops: ops, Optimize: true}
}

// WithoutOptimize returns a derived Compiler used for the optimizer's
// re-entrant compile call (§4.6: "compiled with optimization disabled to
// avoid recursion").
func (c *Compiler) WithoutOptimize() *Compiler {
	return &Compiler{Ops: c.Ops, Optimize: false}
}

func constFunc(v *ast.Value) ast.CompiledFunc {
	return func(ast.EvalContext) (*ast.Value, error) { return v, nil }
}

// Compile lowers node to a CompiledFunc, or fails with a CompilerError for
// unknown opcodes or disallowed literal keys (§4.3, compile-time only).
func (c *Compiler) Compile(node ast.Node) (ast.CompiledFunc, error) {
	switch n := node.(type) {
	case nil:
		return constFunc(ast.Null()), nil
	case *ast.Literal:
		return constFunc(literalValue(n)), nil
	case *ast.Expr:
		return c.compileExpr(n)
	default:
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "unrecognized AST node", "", "")
	}
}

func literalValue(l *ast.Literal) *ast.Value {
	if l == nil || l.Val == nil {
		return ast.Null()
	}
	return l.Val
}

// specialForms are opcodes the compiler must not treat as ordinary
// strict/lazy calls: they affect control flow, scope, or require raw AST
// access to sub-expressions the registry handler also needs raw (§4.3).
var specialForms = map[string]func(*Compiler, *ast.Expr) (ast.CompiledFunc, error){
	"std.seq":      (*Compiler).compileSeq,
	"std.if":       (*Compiler).compileIf,
	"std.while":    (*Compiler).compileWhile,
	"std.for":      (*Compiler).compileFor,
	"std.let":      (*Compiler).compileLet,
	"std.set":      (*Compiler).compileSet,
	"std.var":      (*Compiler).compileVar,
	"std.break":    (*Compiler).compileBreak,
	"std.continue": (*Compiler).compileContinue,
	"std.return":   (*Compiler).compileReturn,
	"std.try":      (*Compiler).compileTry,
	"std.lambda":   (*Compiler).compileLambda,
	"std.quote":    (*Compiler).compileQuote,
	"and":          (*Compiler).compileAnd,
	"or":           (*Compiler).compileOr,
	"obj.new":      (*Compiler).compileObjNew,
}

// formTable is specialForms as compileExpr reads it. It is assigned in
// init because the form compilers reach compileExpr, so a direct reference
// would make specialForms' initializer depend on itself.
var formTable map[string]func(*Compiler, *ast.Expr) (ast.CompiledFunc, error)

func init() { formTable = specialForms }

// securityFiltered names the opcodes whose key argument (second arg for
// obj.*, second arg for list.get/set) is checked against the forbidden
// key set at compile time when it is a literal (§4.3).
var securityFiltered = map[string]int{
	"obj.get": 1, "obj.set": 1, "obj.has": 1, "obj.del": 1,
	"list.get": 1, "list.set": 1,
}

// chainedComparisons lists the opcodes whose 3+-argument form is chained
// rather than a simple binary call (§4.3).
var chainedComparisons = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}

func (c *Compiler) compileExpr(e *ast.Expr) (ast.CompiledFunc, error) {
	if fn, ok := formTable[e.Op]; ok {
		return fn(c, e)
	}
	entry, err := c.Ops.Lookup(e.Op)
	if err != nil {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, err.Error(), "", "")
	}

	if keyIdx, ok := securityFiltered[e.Op]; ok && keyIdx < len(e.Args) {
		if lit, ok := e.Args[keyIdx].(*ast.Literal); ok && lit.Val != nil && lit.Val.Kind() == ast.KindString {
			if objlib.DisallowedKeys[lit.Val.Str()] {
				return nil, scripterr.NewCompilerError(scripterr.Position{},
					"access to "+lit.Val.Str()+" is not permitted", "", "")
			}
		}
		// Dynamic or safe-literal keys fall through; the handler itself
		// performs the runtime DisallowedKey check uniformly.
	}

	if entry.Lazy != nil {
		return c.compileLazyCall(e, entry)
	}

	argFuncs := make([]ast.CompiledFunc, len(e.Args))
	for i, a := range e.Args {
		f, err := c.Compile(a)
		if err != nil {
			return nil, err
		}
		argFuncs[i] = f
	}

	if chainedComparisons[e.Op] && len(argFuncs) >= 3 {
		return c.compileChained(e.Op, entry, argFuncs), nil
	}

	handler := entry.Handler
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		args := make([]*ast.Value, len(argFuncs))
		for i, f := range argFuncs {
			v, err := f(ec)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		outcome, err := handler(ec, args)
		if err != nil {
			return nil, wrapRuntime(err, e.Op, args)
		}
		if outcome.Pending != nil {
			return outcome.Pending.Await()
		}
		return outcome.Value, nil
	}, nil
}

// compileChained evaluates each pair (a[i], a[i+1]) with the binary
// handler and requires every pair to hold (§4.3 chained comparisons).
func (c *Compiler) compileChained(op string, entry registry.Entry, argFuncs []ast.CompiledFunc) ast.CompiledFunc {
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		vals := make([]*ast.Value, len(argFuncs))
		for i, f := range argFuncs {
			v, err := f(ec)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		for i := 0; i+1 < len(vals); i++ {
			outcome, err := entry.Handler(ec, vals[i:i+2])
			if err != nil {
				return nil, wrapRuntime(err, op, vals)
			}
			if !outcome.Value.Truthy() {
				return ast.Bool(false), nil
			}
		}
		return ast.Bool(true), nil
	}
}

func (c *Compiler) compileLazyCall(e *ast.Expr, entry registry.Entry) (ast.CompiledFunc, error) {
	raw := e.Args
	lazy := entry.Lazy
	op := e.Op
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		outcome, err := lazy(ec, raw)
		if err != nil {
			return nil, wrapRuntimeRaw(err, op)
		}
		if outcome.Pending != nil {
			return outcome.Pending.Await()
		}
		return outcome.Value, nil
	}, nil
}

func wrapRuntime(err error, op string, args []*ast.Value) error {
	if interp.IsSignal(err) {
		return err
	}
	rendered := make([]string, len(args))
	for i, a := range args {
		rendered[i] = a.GoString()
	}
	return scripterr.AsScriptError(err).WithFrame(scripterr.StackFrame{Op: op, Args: rendered})
}

func wrapRuntimeRaw(err error, op string) error {
	if interp.IsSignal(err) {
		return err
	}
	return scripterr.AsScriptError(err).WithFrame(scripterr.StackFrame{Op: op})
}

func sanitizeIdentifier(name string) string {
	var sb strings.Builder
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$' || (r >= '0' && r <= '9')
		if !ok {
			sb.WriteByte('_')
			continue
		}
		sb.WriteRune(r)
	}
	out := sb.String()
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if reservedWords[out] {
		out = "_" + out
	}
	return out
}

// reservedWords are surface-language keywords; identifiers colliding with
// them are prefixed (§4.3). Populated from token.ReservedWords via
// RegisterReservedWords (called by pkg/verbscript.New), kept here so the
// compiler does not import the token package.
var reservedWords = map[string]bool{}

// RegisterReservedWords installs the surface language's keyword set used
// by sanitizeIdentifier's collision check.
func RegisterReservedWords(words []string) {
	for _, w := range words {
		reservedWords[w] = true
	}
}
