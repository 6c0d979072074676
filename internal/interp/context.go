package interp

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

// SendFunc is the optional host-visible output callback a script can
// invoke via the `send` opcode: a channel name plus a payload value.
type SendFunc func(channel string, payload *ast.Value)

// ScriptContext is the per-invocation state threaded through one script
// evaluation (§3). It is created fresh by the host for each invocation and
// discarded afterward; nothing here is safe to reuse across invocations.
type ScriptContext struct {
	Caller *ast.Entity
	This   *ast.Entity
	Args   []*ast.Value

	// Gas is decremented once per interpreter step; evaluation fails with
	// GasExhausted when it goes negative (§4.2 step 1).
	Gas int64

	// Warnings is an append-only sink opcodes use to report non-fatal
	// conditions (e.g. std.warn) without aborting evaluation.
	Warnings []string

	Vars *ast.Scope
	// Cow mirrors the copy-on-write snapshot flag described in §3: true
	// between a block entry and the first mutating `let` inside it.
	Cow bool

	Stack scripterr.StackTrace
	Send  SendFunc
	Ops   *registry.Registry
}

// NewContext constructs a root ScriptContext for a fresh script invocation.
func NewContext(caller, this *ast.Entity, args []*ast.Value, gas int64, ops *registry.Registry) *ScriptContext {
	return &ScriptContext{
		Caller: caller,
		This:   this,
		Args:   args,
		Gas:    gas,
		Vars:   ast.NewRootScope(),
		Ops:    ops,
	}
}

// Warn appends a warning, matching std.warn's contract.
func (c *ScriptContext) Warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

// UseGas implements the gas-metering step shared by the interpreter's
// explicit frame stack and the compiler's closure tree alike (§4.2 step 1,
// §5): decrement once per step, fail with GasExhausted once negative.
func (c *ScriptContext) UseGas() error {
	c.Gas--
	if c.Gas < 0 {
		return scripterr.New(scripterr.KindGasExhausted, "gas exhausted")
	}
	return nil
}

// Arg returns the nth invocation argument, or null if out of range
// (std.arg).
func (c *ScriptContext) Arg(n int) *ast.Value {
	if n < 0 || n >= len(c.Args) {
		return ast.Null()
	}
	return c.Args[n]
}

// PushFrame returns a child context sharing everything except Vars, which
// is snapshotted per the COW contract: entry into a block-creating
// construct captures (vars, cow) and marks cow=true without allocating.
func (c *ScriptContext) PushFrame() *ScriptContext {
	child := *c
	child.Cow = true
	return &child
}

// Let declares name in the current scope, forking the scope map on first
// write after a snapshot (the lazy half of COW — §3).
func (c *ScriptContext) Let(name string, v *ast.Value) {
	if c.Cow {
		c.Vars = c.Vars.Fork()
		c.Cow = false
	}
	c.Vars.Let(name, v)
}

// Set updates the nearest existing binding of name, returning false if
// none exists anywhere in the chain (the caller raises UndefinedVariable).
func (c *ScriptContext) Set(name string, v *ast.Value) bool {
	return c.Vars.Set(name, v)
}

// Lookup reads name through the scope chain (std.var).
func (c *ScriptContext) Lookup(name string) (*ast.Value, bool) {
	return c.Vars.Lookup(name)
}

// WithFrame returns a ScriptContext whose Stack has frame appended, used
// when entering a nested call for error-trace accumulation.
func (c *ScriptContext) WithFrame(frame scripterr.StackFrame) *ScriptContext {
	child := *c
	child.Stack = c.Stack.Push(frame)
	return &child
}
