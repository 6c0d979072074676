// Package corelib registers the ScriptContext accessor opcodes (§4.3):
// std.this, std.caller, std.arg, std.args, std.warn, send, std.typeof,
// std.log, std.capability.
package corelib

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

func asCtx(ec ast.EvalContext) *interp.ScriptContext {
	return ec.(*interp.ScriptContext)
}

func thisHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	return registry.Done(asCtx(ec).This.ToValue()), nil
}

func callerHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	return registry.Done(asCtx(ec).Caller.ToValue()), nil
}

func argHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 || args[0].Kind() != ast.KindNumber {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "std.arg: expected a numeric index")
	}
	return registry.Done(asCtx(ec).Arg(int(args[0].Number()))), nil
}

func argsHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	ctx := asCtx(ec)
	return registry.Done(ast.ValueFromList(ast.NewListOf(ctx.Args...))), nil
}

func warnHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.warn: expected 1 argument, got 0")
	}
	asCtx(ec).Warn(args[0].GoString())
	return registry.Done(ast.Null()), nil
}

func sendHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "send: expected 2 arguments, got %d", len(args))
	}
	if args[0].Kind() != ast.KindString {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "send: channel must be a string")
	}
	ctx := asCtx(ec)
	if ctx.Send != nil {
		ctx.Send(args[0].Str(), args[1])
	}
	return registry.Done(ast.Null()), nil
}

func typeofHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.typeof: expected 1 argument, got 0")
	}
	return registry.Done(ast.String(args[0].Kind().String())), nil
}

func logHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	parts := make([]any, len(args))
	for i, a := range args {
		if a.Kind() == ast.KindString {
			parts[i] = a.Str()
		} else {
			parts[i] = a.GoString()
		}
	}
	asCtx(ec).Warn(fmt.Sprintln(parts...))
	return registry.Done(ast.Null()), nil
}

func throwHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	msg := "script error"
	if len(args) > 0 {
		if args[0].Kind() == ast.KindString {
			msg = args[0].Str()
		} else {
			msg = args[0].GoString()
		}
	}
	return registry.Outcome{}, scripterr.New(scripterr.KindUserThrow, "%s", msg)
}

// capabilityHandler mints a fresh capability token owned by the calling
// entity. The id is a random UUID, opaque to script code.
func capabilityHandler(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	ctx := asCtx(ec)
	cap := ast.NewCapability(uuid.New().String(), ctx.This)
	return registry.Done(ast.ValueFromCapability(cap)), nil
}

func meta(name, ret string, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "std", Layout: ast.LayoutStandard, Parameters: params, ReturnType: ret}
}

// Register adds the ScriptContext accessor opcodes to r.
func Register(r *registry.Registry) {
	r.Register(registry.Library{
		"std.this":       {Meta: meta("std.this", "Entity"), Handler: thisHandler},
		"std.caller":     {Meta: meta("std.caller", "Entity"), Handler: callerHandler},
		"std.arg":        {Meta: meta("std.arg", "any", ast.Param{Name: "index", Type: "number"}), Handler: argHandler},
		"std.args":       {Meta: meta("std.args", "any[]"), Handler: argsHandler},
		"std.warn":       {Meta: meta("std.warn", "null", ast.Param{Name: "message", Type: "any"}), Handler: warnHandler},
		"send":           {Meta: meta("send", "null", ast.Param{Name: "channel", Type: "string"}, ast.Param{Name: "payload", Type: "any"}), Handler: sendHandler},
		"std.typeof":     {Meta: meta("std.typeof", "string", ast.Param{Name: "v", Type: "any"}), Handler: typeofHandler},
		"std.log":        {Meta: meta("std.log", "null", ast.Param{Name: "values", Type: "any", Variadic: true}), Handler: logHandler},
		"std.throw":      {Meta: meta("std.throw", "null", ast.Param{Name: "message", Type: "any"}), Handler: throwHandler},
		"std.capability": {Meta: meta("std.capability", "Capability"), Handler: capabilityHandler},
	})
}
