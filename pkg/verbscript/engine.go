// Package verbscript is the host embedding API: construct an Engine, feed
// it surface source (or a pre-built AST), and get back a Value plus any
// warnings the script raised along the way. Everything below this package
// is internal; this is the one surface a Go program embedding the
// sandboxed s-expression engine is meant to import.
package verbscript

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/compiler"
	"github.com/cwbudde/verbscript/internal/decompile"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib"
	"github.com/cwbudde/verbscript/internal/token"
	"github.com/cwbudde/verbscript/internal/transpile"
)

// defaultGas bounds a single Eval/Run call's interpreter steps (§4.2) when
// the caller leaves EngineOptions.Gas unset. Generous enough for ordinary
// scripts, cheap enough that a runaway loop fails fast rather than
// starving the host process.
const defaultGas = 1_000_000

// EngineOptions configures a new Engine. Zero value is a usable default:
// every opcode library registered, type validation off, gas capped at
// defaultGas, no send callback.
type EngineOptions struct {
	// Gas is the per-call step budget (§4.2). Zero means defaultGas.
	Gas int64

	// ValidateTypes turns on the interpreter's opcode-metadata argument
	// check (arity + type tags) at the cost of per-call overhead;
	// intended for development, not production embeddings.
	ValidateTypes bool

	// Send, if set, lets scripts emit host-visible output via the `send`
	// opcode (§5). Nil means `send` is a no-op sink.
	Send interp.SendFunc

	// Profile selects a subset of the opcode libraries instead of
	// registering all of them (§4.7's sandboxing story: an embedder that
	// never wants to expose, say, jsonlib or timelib to a script can
	// build a restricted Engine). Nil means every library is registered.
	Profile *Profile
}

// Engine is the host's handle onto one configured opcode registry plus the
// Interpreter and Compiler built against it. An Engine is safe for
// concurrent use: Interpreter and Registry carry no per-call state, and
// Eval/Run each build a fresh ScriptContext.
type Engine struct {
	ops      *registry.Registry
	it       *interp.Interpreter
	compiler *compiler.Compiler
	gas      int64
	send     interp.SendFunc
}

// New builds an Engine from opts. The surface language's reserved-word
// table is wired into the compiler's identifier sanitizer here so every
// Engine construction installs it exactly once.
func New(opts EngineOptions) *Engine {
	compiler.RegisterReservedWords(token.ReservedWords)

	ops := registry.New()
	it := &interp.Interpreter{ValidateTypes: opts.ValidateTypes}

	if opts.Profile == nil {
		stdlib.RegisterAll(ops, it)
	} else {
		opts.Profile.register(ops, it)
	}

	gas := opts.Gas
	if gas <= 0 {
		gas = defaultGas
	}

	return &Engine{
		ops:      ops,
		it:       it,
		compiler: compiler.New(ops),
		gas:      gas,
		send:     opts.Send,
	}
}

// Result is what Eval/Run return: the script's value plus any warnings
// raised via std.warn along the way (§3's Warnings sink).
type Result struct {
	Value    *ast.Value
	Warnings []string
}

// Transpile lowers surface source to an opcode AST (§4.4) without running
// it. The known-opcode set is read fresh from the registry on every call,
// so opcodes registered via Registry() after New() are visible to direct
// call syntax immediately. Errors are *scripterr.CompilerError under the
// hood and format via Error() on their own.
func (e *Engine) Transpile(source string) (ast.Node, error) {
	names := e.ops.Names()
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return transpile.Transpile(source, known)
}

// Decompile renders an opcode AST back to surface source (§4.5).
func (e *Engine) Decompile(node ast.Node) (string, error) {
	return decompile.Decompile(node)
}

// Compile lowers an opcode AST to a directly callable closure (§4.3).
func (e *Engine) Compile(node ast.Node) (ast.CompiledFunc, error) {
	return e.compiler.Compile(node)
}

// Eval transpiles, compiles, and runs source against a fresh root
// ScriptContext in one call — the common case for an embedder that just
// wants a script's result.
func (e *Engine) Eval(source string) (Result, error) {
	node, err := e.Transpile(source)
	if err != nil {
		return Result{}, err
	}
	return e.Run(node, nil, nil, nil)
}

// Run compiles and executes an already-transpiled AST against a fresh
// ScriptContext built from caller/this/args, matching the invocation shape
// §6 describes for host-initiated calls (e.g. a capability callback).
func (e *Engine) Run(node ast.Node, caller, this *ast.Entity, args []*ast.Value) (Result, error) {
	fn, err := e.Compile(node)
	if err != nil {
		return Result{}, err
	}
	ctx := interp.NewContext(caller, this, args, e.gas, e.ops)
	ctx.Send = e.send
	v, err := fn(ctx)
	if err != nil {
		return Result{Warnings: ctx.Warnings}, err
	}
	return Result{Value: v, Warnings: ctx.Warnings}, nil
}

// Registry exposes the underlying opcode registry for embedders that need
// to register additional host-defined opcodes before running a script.
func (e *Engine) Registry() *registry.Registry { return e.ops }
