// Package stdlib wires every opcode library (§4.7) into one registry and
// exposes the PURE_OPS name list the optimizer restricts itself to
// (§4.6).
package stdlib

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib/controllib"
	"github.com/cwbudde/verbscript/internal/stdlib/corelib"
	"github.com/cwbudde/verbscript/internal/stdlib/jsonlib"
	"github.com/cwbudde/verbscript/internal/stdlib/listlib"
	"github.com/cwbudde/verbscript/internal/stdlib/mathlib"
	"github.com/cwbudde/verbscript/internal/stdlib/objlib"
	"github.com/cwbudde/verbscript/internal/stdlib/strlib"
	"github.com/cwbudde/verbscript/internal/stdlib/timelib"
)

// RegisterAll populates r with every opcode the engine ships: context
// accessors, control flow, arithmetic, strings, lists, objects, time, and
// JSON.
func RegisterAll(r *registry.Registry, it *interp.Interpreter) {
	apply := func(ec ast.EvalContext, fn *ast.Value, args []*ast.Value) (*ast.Value, error) {
		return controllib.Apply(it, ec, fn, args)
	}

	corelib.Register(r)
	controllib.Register(r, it)
	mathlib.Register(r)
	strlib.Register(r)
	listlib.Register(r, apply)
	objlib.Register(r)
	timelib.Register(r)
	jsonlib.Register(r)
}

// PureOpNames lists every opcode the optimizer's partial evaluator is
// permitted to fold (§4.6): arithmetic, boolean, string, list, object
// constructors, pure time, json, and the side-effect-free control forms.
// Notably absent: std.let/set/var (scope-mutating; the optimizer accepts
// them itself only where a subtree binds every variable it reads),
// std.lambda (a value constructor), send, std.warn/log/throw (observable
// side effects), random (non-deterministic), and std.apply (may call
// arbitrary, potentially impure lambdas). std.quote and obj.new are
// listed, but the optimizer never descends into std.quote and never folds
// obj.new at the top level (§4.6).
var PureOpNames = []string{
	"add", "sub", "mul", "div", "mod", "^",
	"<", "<=", ">", ">=", "eq", "neq", "and", "or", "not",
	"str.concat", "str.upper", "str.lower", "str.trim", "str.split",
	"str.replace", "str.slice", "str.indexOf", "str.contains", "str.len", "str.toNumber",
	"list.new", "list.slice", "list.len", "list.get",
	"obj.new", "obj.get", "obj.has", "obj.keys",
	"math.sqrt", "math.abs", "math.floor", "math.ceil", "math.round",
	"math.sin", "math.cos", "math.log", "math.min", "math.max",
	"time.offset", // only pure when called with an explicit base argument; the optimizer checks this call-site-by-call-site (see internal/optimizer)
	"json.stringify", "json.parse", "json.get", "json.pretty",
	"std.if", "std.while", "std.for", "std.seq",
	"std.typeof", "std.quote", "std.break", "std.continue",
}
