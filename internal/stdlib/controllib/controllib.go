// Package controllib registers the lazy control-flow special forms
// (§4.2, §4.3): seq/if/while/for/let/set/var/break/continue/return/try/
// lambda/quote/apply, and/or/not. These opcodes receive raw AST and
// decide for themselves which sub-nodes to evaluate and in which scope —
// this is the entire mechanism behind the engine's control flow.
package controllib

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

func asCtx(ec ast.EvalContext) *interp.ScriptContext {
	return ec.(*interp.ScriptContext)
}

// Apply invokes fnVal (a lambda Value) with args already evaluated,
// running its body in a freshly forked scope binding params to args, and
// absorbing a ReturnSignal as the lambda's result. This is the mechanism
// behind std.apply and the higher-order list.* operations.
func Apply(it *interp.Interpreter, ec ast.EvalContext, fnVal *ast.Value, args []*ast.Value) (*ast.Value, error) {
	ctx := asCtx(ec)
	if fnVal.Kind() != ast.KindLambda {
		return nil, scripterr.New(scripterr.KindArgumentType, "apply: expected a lambda, got %s", fnVal.Kind())
	}
	lam := fnVal.Lambda()

	call := &interp.ScriptContext{
		Caller: ctx.Caller,
		This:   ctx.This,
		Args:   args,
		Gas:    ctx.Gas,
		Vars:   lam.Closure.Fork(),
		Stack:  ctx.Stack,
		Send:   ctx.Send,
		Ops:    ctx.Ops,
	}
	for i, name := range lam.Params {
		var v *ast.Value
		if i < len(args) {
			v = args[i]
		} else {
			v = ast.Null()
		}
		call.Vars.Let(name, v)
	}

	var result *ast.Value
	var err error
	if lam.Execute != nil {
		result, err = lam.Execute(call)
	} else {
		result, err = it.Evaluate(lam.Body, call)
	}
	ctx.Gas = call.Gas
	if ret, ok := err.(interp.ReturnSignal); ok {
		return ret.Value, nil
	}
	return result, err
}

func seqHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		ctx := asCtx(ec)
		child := ctx.PushFrame()
		var result *ast.Value = ast.Null()
		for _, n := range args {
			v, err := it.Evaluate(n, child)
			ctx.Gas = child.Gas
			if err != nil {
				return registry.Outcome{}, err
			}
			result = v
		}
		return registry.Done(result), nil
	}
}

func ifHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		if len(args) < 2 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.if: expected at least 2 arguments, got %d", len(args))
		}
		ctx := asCtx(ec)
		cond, err := it.Evaluate(args[0], ctx)
		if err != nil {
			return registry.Outcome{}, err
		}
		if cond.Truthy() {
			child := ctx.PushFrame()
			v, err := it.Evaluate(args[1], child)
			ctx.Gas = child.Gas
			return registry.Done(v), err
		}
		if len(args) > 2 {
			child := ctx.PushFrame()
			v, err := it.Evaluate(args[2], child)
			ctx.Gas = child.Gas
			return registry.Done(v), err
		}
		return registry.Done(ast.Null()), nil
	}
}

func whileHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		if len(args) < 2 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.while: expected 2 arguments, got %d", len(args))
		}
		ctx := asCtx(ec)
		for {
			cond, err := it.Evaluate(args[0], ctx)
			if err != nil {
				return registry.Outcome{}, err
			}
			if !cond.Truthy() {
				return registry.Done(ast.Null()), nil
			}
			child := ctx.PushFrame()
			_, err = it.Evaluate(args[1], child)
			ctx.Gas = child.Gas
			if err != nil {
				if _, ok := err.(interp.BreakSignal); ok {
					return registry.Done(ast.Null()), nil
				}
				if _, ok := err.(interp.ContinueSignal); ok {
					continue
				}
				return registry.Outcome{}, err
			}
		}
	}
}

func forHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		if len(args) < 3 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.for: expected 3 arguments, got %d", len(args))
		}
		ctx := asCtx(ec)
		nameLit, ok := args[0].(*ast.Literal)
		if !ok || nameLit.Val.Kind() != ast.KindString {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "std.for: first argument must be a string literal name")
		}
		listVal, err := it.Evaluate(args[1], ctx)
		if err != nil {
			return registry.Outcome{}, err
		}
		if listVal.Kind() != ast.KindList {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "std.for: expected a list, got %s", listVal.Kind())
		}
		for _, elem := range listVal.List().Elements() {
			iter := ctx.PushFrame()
			iter.Let(nameLit.Val.Str(), elem)
			_, err := it.Evaluate(args[2], iter)
			ctx.Gas = iter.Gas
			if err != nil {
				if _, ok := err.(interp.BreakSignal); ok {
					return registry.Done(ast.Null()), nil
				}
				if _, ok := err.(interp.ContinueSignal); ok {
					continue
				}
				return registry.Outcome{}, err
			}
		}
		return registry.Done(ast.Null()), nil
	}
}

func literalName(op string, n ast.Node) (string, error) {
	lit, ok := n.(*ast.Literal)
	if !ok || lit.Val.Kind() != ast.KindString {
		return "", scripterr.New(scripterr.KindArgumentType, "%s: expected a string literal name", op)
	}
	return lit.Val.Str(), nil
}

func letHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		if len(args) < 2 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.let: expected 2 arguments, got %d", len(args))
		}
		name, err := literalName("std.let", args[0])
		if err != nil {
			return registry.Outcome{}, err
		}
		ctx := asCtx(ec)
		v, err := it.Evaluate(args[1], ctx)
		if err != nil {
			return registry.Outcome{}, err
		}
		ctx.Let(name, v)
		return registry.Done(v), nil
	}
}

func setHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		if len(args) < 2 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.set: expected 2 arguments, got %d", len(args))
		}
		name, err := literalName("std.set", args[0])
		if err != nil {
			return registry.Outcome{}, err
		}
		ctx := asCtx(ec)
		v, err := it.Evaluate(args[1], ctx)
		if err != nil {
			return registry.Outcome{}, err
		}
		if !ctx.Set(name, v) {
			return registry.Outcome{}, scripterr.New(scripterr.KindUndefinedVariable, "std.set: %q is not defined", name)
		}
		return registry.Done(v), nil
	}
}

func varHandler(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.var: expected 1 argument, got 0")
	}
	name, err := literalName("std.var", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	ctx := asCtx(ec)
	if v, ok := ctx.Lookup(name); ok {
		return registry.Done(v), nil
	}
	return registry.Outcome{}, scripterr.New(scripterr.KindUndefinedVariable, "std.var: %q is not defined", name)
}

func breakHandler(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
	return registry.Outcome{}, interp.BreakSignal{}
}

func continueHandler(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
	return registry.Outcome{}, interp.ContinueSignal{}
}

func returnHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		ctx := asCtx(ec)
		v := ast.Null()
		if len(args) > 0 {
			var err error
			v, err = it.Evaluate(args[0], ctx)
			if err != nil {
				return registry.Outcome{}, err
			}
		}
		return registry.Outcome{}, interp.ReturnSignal{Value: v}
	}
}

func tryHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		if len(args) < 3 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.try: expected 3 arguments, got %d", len(args))
		}
		ctx := asCtx(ec)
		errName, err := literalName("std.try", args[1])
		if err != nil {
			return registry.Outcome{}, err
		}
		bodyCtx := ctx.PushFrame()
		v, bodyErr := it.Evaluate(args[0], bodyCtx)
		ctx.Gas = bodyCtx.Gas
		if bodyErr == nil {
			return registry.Done(v), nil
		}
		if interp.IsSignal(bodyErr) {
			return registry.Outcome{}, bodyErr
		}
		se := scripterr.AsScriptError(bodyErr)
		catchCtx := ctx.PushFrame()
		catchCtx.Let(errName, ast.String(se.Message))
		cv, cerr := it.Evaluate(args[2], catchCtx)
		ctx.Gas = catchCtx.Gas
		return registry.Done(cv), cerr
	}
}

func lambdaHandler(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.lambda: expected 2 arguments, got %d", len(args))
	}
	ctx := asCtx(ec)
	paramsExpr, ok := args[0].(*ast.Expr)
	var params []string
	if ok {
		for _, p := range paramsExpr.Args {
			lit, ok := p.(*ast.Literal)
			if !ok || lit.Val.Kind() != ast.KindString {
				return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "std.lambda: parameter names must be string literals")
			}
			params = append(params, lit.Val.Str())
		}
	}
	lam := ast.NewLambda(params, args[1], ctx.Vars)
	return registry.Done(ast.ValueFromLambda(lam)), nil
}

// quoteHandler implements std.quote: its single argument slot must never
// be evaluated (§4.3). A Literal's Val is returned directly, even when
// non-primitive — this is the one sanctioned way to embed a list/object/
// lambda Value as an AST literal (§3).
func quoteHandler(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.quote: expected 1 argument, got 0")
	}
	lit, ok := args[0].(*ast.Literal)
	if !ok {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "std.quote: argument must be a literal")
	}
	if lit.Val == nil {
		return registry.Done(ast.Null()), nil
	}
	return registry.Done(lit.Val), nil
}

func applyHandler(it *interp.Interpreter) registry.Handler {
	return func(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		if len(args) < 1 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "std.apply: expected at least 1 argument, got 0")
		}
		v, err := Apply(it, ec, args[0], args[1:])
		return registry.Done(v), err
	}
}

func andHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		ctx := asCtx(ec)
		result := ast.Bool(true)
		for _, n := range args {
			v, err := it.Evaluate(n, ctx)
			if err != nil {
				return registry.Outcome{}, err
			}
			if !v.Truthy() {
				return registry.Done(v), nil
			}
			result = v
		}
		return registry.Done(result), nil
	}
}

func orHandler(it *interp.Interpreter) registry.LazyHandler {
	return func(ec ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
		ctx := asCtx(ec)
		result := ast.Bool(false)
		for _, n := range args {
			v, err := it.Evaluate(n, ctx)
			if err != nil {
				return registry.Outcome{}, err
			}
			if v.Truthy() {
				return registry.Done(v), nil
			}
			result = v
		}
		return registry.Done(result), nil
	}
}

func notHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "not: expected 1 argument, got 0")
	}
	return registry.Done(ast.Bool(!args[0].Truthy())), nil
}

func eqHandler(strict bool) registry.Handler {
	return func(ec ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		if len(args) < 2 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "eq: expected 2 arguments, got %d", len(args))
		}
		eq := ast.Equal(args[0], args[1])
		if !strict {
			eq = !eq
		}
		return registry.Done(ast.Bool(eq)), nil
	}
}

func meta(name string, lazy bool, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "control", Layout: ast.LayoutControlFlow, Lazy: lazy, Parameters: params}
}

// Register adds every lazy control-flow special form, plus and/or/not/eq,
// to r. it is the Interpreter these handlers recurse back through for
// their sub-evaluations.
func Register(r *registry.Registry, it *interp.Interpreter) {
	r.Register(registry.Library{
		"std.seq":      {Meta: meta("std.seq", true, ast.Param{Name: "exprs", Type: "any", Variadic: true}), Lazy: seqHandler(it)},
		"std.if":       {Meta: meta("std.if", true, ast.Param{Name: "cond", Type: "any"}, ast.Param{Name: "then", Type: "any"}, ast.Param{Name: "else", Type: "any", Optional: true}), Lazy: ifHandler(it)},
		"std.while":    {Meta: meta("std.while", true, ast.Param{Name: "cond", Type: "any"}, ast.Param{Name: "body", Type: "any"}), Lazy: whileHandler(it)},
		"std.for":      {Meta: meta("std.for", true, ast.Param{Name: "name", Type: "string"}, ast.Param{Name: "list", Type: "any"}, ast.Param{Name: "body", Type: "any"}), Lazy: forHandler(it)},
		"std.let":      {Meta: meta("std.let", true, ast.Param{Name: "name", Type: "string"}, ast.Param{Name: "v", Type: "any"}), Lazy: letHandler(it)},
		"std.set":      {Meta: meta("std.set", true, ast.Param{Name: "name", Type: "string"}, ast.Param{Name: "v", Type: "any"}), Lazy: setHandler(it)},
		"std.var":      {Meta: meta("std.var", true, ast.Param{Name: "name", Type: "string"}), Lazy: varHandler},
		"std.break":    {Meta: meta("std.break", true), Lazy: breakHandler},
		"std.continue": {Meta: meta("std.continue", true), Lazy: continueHandler},
		"std.return":   {Meta: meta("std.return", true, ast.Param{Name: "v", Type: "any", Optional: true}), Lazy: returnHandler(it)},
		"std.try":      {Meta: meta("std.try", true, ast.Param{Name: "body", Type: "any"}, ast.Param{Name: "errName", Type: "string"}, ast.Param{Name: "catchBody", Type: "any"}), Lazy: tryHandler(it)},
		"std.lambda":   {Meta: meta("std.lambda", true, ast.Param{Name: "params", Type: "any"}, ast.Param{Name: "body", Type: "any"}), Lazy: lambdaHandler},
		"std.quote":    {Meta: meta("std.quote", true, ast.Param{Name: "value", Type: "any"}), Lazy: quoteHandler},
		"std.apply":    {Meta: meta("std.apply", false, ast.Param{Name: "fn", Type: "lambda"}, ast.Param{Name: "args", Type: "any", Variadic: true}), Handler: applyHandler(it)},
		"and": {Meta: meta("and", true, ast.Param{Name: "values", Type: "any", Variadic: true}), Lazy: andHandler(it)},
		"or":  {Meta: meta("or", true, ast.Param{Name: "values", Type: "any", Variadic: true}), Lazy: orHandler(it)},
		"not": {Meta: meta("not", false, ast.Param{Name: "v", Type: "any"}), Handler: notHandler},
		"eq":  {Meta: meta("eq", false, ast.Param{Name: "a", Type: "any"}, ast.Param{Name: "b", Type: "any"}), Handler: eqHandler(true)},
		"neq": {Meta: meta("neq", false, ast.Param{Name: "a", Type: "any"}, ast.Param{Name: "b", Type: "any"}), Handler: eqHandler(false)},
	})
}
