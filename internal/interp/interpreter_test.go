package interp

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
)

func testRegistry() *registry.Registry {
	r := registry.New()
	r.Register(registry.Library{
		"add": {
			Meta: ast.Metadata{Parameters: []ast.Param{{Name: "a", Type: "number"}, {Name: "b", Type: "number"}}},
			Handler: func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
				return registry.Done(ast.Number(args[0].Number() + args[1].Number())), nil
			},
		},
		"std.if": {
			Meta: ast.Metadata{Lazy: true},
			Lazy: func(evalCtx ast.EvalContext, args []ast.Node) (registry.Outcome, error) {
				it := New()
				ctx := evalCtx.(*ScriptContext)
				cond, err := it.Evaluate(args[0], ctx)
				if err != nil {
					return registry.Outcome{}, err
				}
				if cond.Truthy() {
					v, err := it.Evaluate(args[1], ctx)
					return registry.Done(v), err
				}
				if len(args) > 2 {
					v, err := it.Evaluate(args[2], ctx)
					return registry.Done(v), err
				}
				return registry.Done(ast.Null()), nil
			},
		},
		"std.break": {
			Meta: ast.Metadata{},
			Handler: func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
				return registry.Outcome{}, BreakSignal{}
			},
		},
		"fail": {
			Meta: ast.Metadata{},
			Handler: func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
				return registry.Outcome{}, fmtErr("boom")
			},
		},
	})
	return r
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
func fmtErr(s string) error       { return simpleErr(s) }

func newTestContext(gas int64, ops *registry.Registry) *ScriptContext {
	return NewContext(nil, nil, nil, gas, ops)
}

func TestEvaluateArithmetic(t *testing.T) {
	it := New()
	ctx := newTestContext(1000, testRegistry())
	node := ast.NewExpr("add", ast.NewLiteral(ast.Number(1)), ast.NewExpr("add", ast.NewLiteral(ast.Number(2)), ast.NewLiteral(ast.Number(3))))

	v, err := it.Evaluate(node, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Number() != 6 {
		t.Errorf("expected 6, got %v", v.Number())
	}
}

func TestGasExhausted(t *testing.T) {
	it := New()
	ctx := newTestContext(1, testRegistry())
	node := ast.NewExpr("add", ast.NewExpr("add", ast.NewLiteral(ast.Number(1)), ast.NewLiteral(ast.Number(2))), ast.NewLiteral(ast.Number(3)))

	if _, err := it.Evaluate(node, ctx); err == nil {
		t.Fatal("expected GasExhausted with a starting gas of 1")
	}
}

func TestLazyIfSkipsElseBranch(t *testing.T) {
	it := New()
	ctx := newTestContext(1000, testRegistry())
	node := ast.NewExpr("std.if", ast.NewLiteral(ast.Bool(true)), ast.NewLiteral(ast.Number(1)), ast.NewExpr("fail"))

	v, err := it.Evaluate(node, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Number() != 1 {
		t.Errorf("expected the then-branch value, got %v", v.GoString())
	}
}

func TestSignalPassesThroughUnwrapped(t *testing.T) {
	it := New()
	ctx := newTestContext(1000, testRegistry())
	node := ast.NewExpr("std.break")

	_, err := it.Evaluate(node, ctx)
	if !IsSignal(err) {
		t.Fatalf("expected a Signal, got %T: %v", err, err)
	}
}

func TestUnknownOpcode(t *testing.T) {
	it := New()
	ctx := newTestContext(1000, testRegistry())
	node := ast.NewExpr("nope")

	if _, err := it.Evaluate(node, ctx); err == nil {
		t.Fatal("expected UnknownOpcode error")
	}
}
