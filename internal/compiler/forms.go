package compiler

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/scripterr"
	"github.com/cwbudde/verbscript/internal/stdlib/objlib"
)

func asCtx(ec ast.EvalContext) *interp.ScriptContext {
	return ec.(*interp.ScriptContext)
}

func literalName(op string, n ast.Node) (string, error) {
	lit, ok := n.(*ast.Literal)
	if !ok || lit.Val == nil || lit.Val.Kind() != ast.KindString {
		return "", scripterr.NewCompilerError(scripterr.Position{}, op+": expected a string literal name", "", "")
	}
	return lit.Val.Str(), nil
}

func (c *Compiler) compileSeq(e *ast.Expr) (ast.CompiledFunc, error) {
	funcs := make([]ast.CompiledFunc, len(e.Args))
	for i, a := range e.Args {
		f, err := c.Compile(a)
		if err != nil {
			return nil, err
		}
		funcs[i] = f
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		child := ctx.PushFrame()
		result := ast.Null()
		for _, f := range funcs {
			v, err := f(child)
			ctx.Gas = child.Gas
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil
	}, nil
}

func (c *Compiler) compileIf(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 2 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.if: expected at least 2 arguments", "", "")
	}
	cond, err := c.Compile(e.Args[0])
	if err != nil {
		return nil, err
	}
	then, err := c.Compile(e.Args[1])
	if err != nil {
		return nil, err
	}
	var els ast.CompiledFunc
	if len(e.Args) > 2 {
		els, err = c.Compile(e.Args[2])
		if err != nil {
			return nil, err
		}
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		cv, err := cond(ctx)
		if err != nil {
			return nil, err
		}
		if cv.Truthy() {
			child := ctx.PushFrame()
			v, err := then(child)
			ctx.Gas = child.Gas
			return v, err
		}
		if els != nil {
			child := ctx.PushFrame()
			v, err := els(child)
			ctx.Gas = child.Gas
			return v, err
		}
		return ast.Null(), nil
	}, nil
}

func (c *Compiler) compileWhile(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 2 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.while: expected 2 arguments", "", "")
	}
	cond, err := c.Compile(e.Args[0])
	if err != nil {
		return nil, err
	}
	body, err := c.Compile(e.Args[1])
	if err != nil {
		return nil, err
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		for {
			if err := ctx.UseGas(); err != nil {
				return nil, err
			}
			cv, err := cond(ctx)
			if err != nil {
				return nil, err
			}
			if !cv.Truthy() {
				return ast.Null(), nil
			}
			child := ctx.PushFrame()
			_, err = body(child)
			ctx.Gas = child.Gas
			if err != nil {
				if _, ok := err.(interp.BreakSignal); ok {
					return ast.Null(), nil
				}
				if _, ok := err.(interp.ContinueSignal); ok {
					continue
				}
				return nil, err
			}
		}
	}, nil
}

func (c *Compiler) compileFor(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 3 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.for: expected 3 arguments", "", "")
	}
	name, err := literalName("std.for", e.Args[0])
	if err != nil {
		return nil, err
	}
	listFn, err := c.Compile(e.Args[1])
	if err != nil {
		return nil, err
	}
	body, err := c.Compile(e.Args[2])
	if err != nil {
		return nil, err
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		lv, err := listFn(ctx)
		if err != nil {
			return nil, err
		}
		if lv.Kind() != ast.KindList {
			return nil, scripterr.New(scripterr.KindArgumentType, "std.for: expected a list, got %s", lv.Kind())
		}
		for _, elem := range lv.List().Elements() {
			if err := ctx.UseGas(); err != nil {
				return nil, err
			}
			iter := ctx.PushFrame()
			iter.Let(name, elem)
			_, err := body(iter)
			ctx.Gas = iter.Gas
			if err != nil {
				if _, ok := err.(interp.BreakSignal); ok {
					return ast.Null(), nil
				}
				if _, ok := err.(interp.ContinueSignal); ok {
					continue
				}
				return nil, err
			}
		}
		return ast.Null(), nil
	}, nil
}

func (c *Compiler) compileLet(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 2 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.let: expected 2 arguments", "", "")
	}
	name, err := literalName("std.let", e.Args[0])
	if err != nil {
		return nil, err
	}
	val, err := c.Compile(e.Args[1])
	if err != nil {
		return nil, err
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		v, err := val(ctx)
		if err != nil {
			return nil, err
		}
		ctx.Let(name, v)
		return v, nil
	}, nil
}

func (c *Compiler) compileSet(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 2 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.set: expected 2 arguments", "", "")
	}
	name, err := literalName("std.set", e.Args[0])
	if err != nil {
		return nil, err
	}
	val, err := c.Compile(e.Args[1])
	if err != nil {
		return nil, err
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		v, err := val(ctx)
		if err != nil {
			return nil, err
		}
		if !ctx.Set(name, v) {
			return nil, scripterr.New(scripterr.KindUndefinedVariable, "std.set: %q is not defined", name)
		}
		return v, nil
	}, nil
}

func (c *Compiler) compileVar(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 1 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.var: expected 1 argument", "", "")
	}
	name, err := literalName("std.var", e.Args[0])
	if err != nil {
		return nil, err
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		if v, ok := ctx.Lookup(name); ok {
			return v, nil
		}
		return nil, scripterr.New(scripterr.KindUndefinedVariable, "std.var: %q is not defined", name)
	}, nil
}

func (c *Compiler) compileBreak(e *ast.Expr) (ast.CompiledFunc, error) {
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		return nil, interp.BreakSignal{}
	}, nil
}

func (c *Compiler) compileContinue(e *ast.Expr) (ast.CompiledFunc, error) {
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		return nil, interp.ContinueSignal{}
	}, nil
}

func (c *Compiler) compileReturn(e *ast.Expr) (ast.CompiledFunc, error) {
	var val ast.CompiledFunc
	if len(e.Args) > 0 {
		var err error
		val, err = c.Compile(e.Args[0])
		if err != nil {
			return nil, err
		}
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		v := ast.Null()
		if val != nil {
			var err error
			v, err = val(ec)
			if err != nil {
				return nil, err
			}
		}
		return nil, interp.ReturnSignal{Value: v}
	}, nil
}

func (c *Compiler) compileTry(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 3 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.try: expected 3 arguments", "", "")
	}
	errName, err := literalName("std.try", e.Args[1])
	if err != nil {
		return nil, err
	}
	body, err := c.Compile(e.Args[0])
	if err != nil {
		return nil, err
	}
	catchBody, err := c.Compile(e.Args[2])
	if err != nil {
		return nil, err
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		bodyCtx := ctx.PushFrame()
		v, bodyErr := body(bodyCtx)
		ctx.Gas = bodyCtx.Gas
		if bodyErr == nil {
			return v, nil
		}
		if interp.IsSignal(bodyErr) {
			return nil, bodyErr
		}
		se := scripterr.AsScriptError(bodyErr)
		catchCtx := ctx.PushFrame()
		catchCtx.Let(errName, ast.String(se.Message))
		result, catchErr := catchBody(catchCtx)
		ctx.Gas = catchCtx.Gas
		return result, catchErr
	}, nil
}

func (c *Compiler) compileLambda(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 2 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.lambda: expected 2 arguments", "", "")
	}
	paramsExpr, ok := e.Args[0].(*ast.Expr)
	var params []string
	if ok {
		for _, p := range paramsExpr.Args {
			lit, ok := p.(*ast.Literal)
			if !ok || lit.Val == nil || lit.Val.Kind() != ast.KindString {
				return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.lambda: parameter names must be string literals", "", "")
			}
			params = append(params, lit.Val.Str())
		}
	}
	body := e.Args[1]
	bodyFn, err := c.Compile(body)
	if err != nil {
		return nil, err
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		ctx := asCtx(ec)
		if err := ctx.UseGas(); err != nil {
			return nil, err
		}
		lam := ast.NewLambda(params, body, ctx.Vars)
		lam.Execute = bodyFn
		return ast.ValueFromLambda(lam), nil
	}, nil
}

// compileQuote never evaluates its argument slot (§4.3): it is either a
// primitive Literal or, via the std.quote exception, a non-primitive one
// produced by an earlier quote/optimizer pass.
func (c *Compiler) compileQuote(e *ast.Expr) (ast.CompiledFunc, error) {
	if len(e.Args) < 1 {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.quote: expected 1 argument", "", "")
	}
	lit, ok := e.Args[0].(*ast.Literal)
	if !ok {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, "std.quote: argument must be a literal", "", "")
	}
	v := lit.Val
	if v == nil {
		v = ast.Null()
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		return v, nil
	}, nil
}

func (c *Compiler) compileAnd(e *ast.Expr) (ast.CompiledFunc, error) {
	funcs := make([]ast.CompiledFunc, len(e.Args))
	for i, a := range e.Args {
		f, err := c.Compile(a)
		if err != nil {
			return nil, err
		}
		funcs[i] = f
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		result := ast.Bool(true)
		for _, f := range funcs {
			v, err := f(ec)
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				return v, nil
			}
			result = v
		}
		return result, nil
	}, nil
}

func (c *Compiler) compileOr(e *ast.Expr) (ast.CompiledFunc, error) {
	funcs := make([]ast.CompiledFunc, len(e.Args))
	for i, a := range e.Args {
		f, err := c.Compile(a)
		if err != nil {
			return nil, err
		}
		funcs[i] = f
	}
	return func(ec ast.EvalContext) (*ast.Value, error) {
		if err := asCtx(ec).UseGas(); err != nil {
			return nil, err
		}
		result := ast.Bool(false)
		for _, f := range funcs {
			v, err := f(ec)
			if err != nil {
				return nil, err
			}
			if v.Truthy() {
				return v, nil
			}
			result = v
		}
		return result, nil
	}, nil
}

// compileObjNew checks every literal entry key against the disallowed-key
// set at compile time (§4.3/§9), in addition to the handler's own runtime
// check for keys that turn out to be dynamic.
func (c *Compiler) compileObjNew(e *ast.Expr) (ast.CompiledFunc, error) {
	entry, err := c.Ops.Lookup("obj.new")
	if err != nil {
		return nil, scripterr.NewCompilerError(scripterr.Position{}, err.Error(), "", "")
	}
	if entry.Lazy != nil {
		return c.compileLazyCall(e, entry)
	}
	for i := 0; i+1 < len(e.Args); i += 2 {
		if lit, ok := e.Args[i].(*ast.Literal); ok && lit.Val != nil && lit.Val.Kind() == ast.KindString {
			if objlib.DisallowedKeys[lit.Val.Str()] {
				return nil, scripterr.NewCompilerError(scripterr.Position{},
					"access to "+lit.Val.Str()+" is not permitted", "", "")
			}
		}
	}
	argFuncs := make([]ast.CompiledFunc, len(e.Args))
	for i, a := range e.Args {
		f, err := c.Compile(a)
		if err != nil {
			return nil, err
		}
		argFuncs[i] = f
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
		return outcome.Value, nil
	}, nil
}
