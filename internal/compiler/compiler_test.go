package compiler

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib"
)

func newTestContext(ops *registry.Registry) *interp.ScriptContext {
	return interp.NewContext(nil, nil, nil, 10_000, ops)
}

func newEngine() *registry.Registry {
	ops := registry.New()
	stdlib.RegisterAll(ops, interp.New())
	return ops
}

func lit(v *ast.Value) *ast.Literal { return ast.NewLiteral(v) }

func TestCompileArithmetic(t *testing.T) {
	ops := newEngine()
	c := New(ops)
	node := ast.NewExpr("add", lit(ast.Number(1)), lit(ast.Number(2)), lit(ast.Number(3)))
	fn, err := c.Compile(node)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, err := fn(newTestContext(ops))
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v.Number() != 6 {
		t.Fatalf("got %v, want 6", v.Number())
	}
}

func TestCompileChainedComparison(t *testing.T) {
	ops := newEngine()
	c := New(ops)
	node := ast.NewExpr("<", lit(ast.Number(1)), lit(ast.Number(2)), lit(ast.Number(3)))
	fn, err := c.Compile(node)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, err := fn(newTestContext(ops))
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if !v.Truthy() {
		t.Fatal("expected chained comparison to hold")
	}

	failing := ast.NewExpr("<", lit(ast.Number(1)), lit(ast.Number(5)), lit(ast.Number(3)))
	fn2, err := c.Compile(failing)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v2, err := fn2(newTestContext(ops))
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v2.Truthy() {
		t.Fatal("expected chained comparison to fail")
	}
}

func TestCompileIfWhileLet(t *testing.T) {
	ops := newEngine()
	c := New(ops)
	// seq(let("n", 0), while(<(var("n"), 3), seq(set("n", add(var("n"), 1)))), var("n"))
	node := ast.NewExpr("std.seq",
		ast.NewExpr("std.let", lit(ast.String("n")), lit(ast.Number(0))),
		ast.NewExpr("std.while",
			ast.NewExpr("<", ast.NewExpr("std.var", lit(ast.String("n"))), lit(ast.Number(3))),
			ast.NewExpr("std.set", lit(ast.String("n")), ast.NewExpr("add", ast.NewExpr("std.var", lit(ast.String("n"))), lit(ast.Number(1)))),
		),
		ast.NewExpr("std.var", lit(ast.String("n"))),
	)
	fn, err := c.Compile(node)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, err := fn(newTestContext(ops))
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v.Number() != 3 {
		t.Fatalf("got %v, want 3", v.Number())
	}
}

func TestCompileDisallowedKeyFailsAtCompileTime(t *testing.T) {
	ops := newEngine()
	c := New(ops)
	node := ast.NewExpr("obj.get", ast.NewExpr("obj.new"), lit(ast.String("__proto__")))
	if _, err := c.Compile(node); err == nil {
		t.Fatal("expected a compile-time error for a disallowed literal key")
	}
}

func TestCompileLambdaClosureCounter(t *testing.T) {
	ops := newEngine()
	c := New(ops)
	// std.seq(std.let("n", 0), std.let("inc", std.lambda([], std.seq(std.set("n", add(std.var("n"), 1)), std.var("n")))), std.apply(std.var("inc")), std.apply(std.var("inc")))
	lambdaBody := ast.NewExpr("std.seq",
		ast.NewExpr("std.set", lit(ast.String("n")), ast.NewExpr("add", ast.NewExpr("std.var", lit(ast.String("n"))), lit(ast.Number(1)))),
		ast.NewExpr("std.var", lit(ast.String("n"))),
	)
	node := ast.NewExpr("std.seq",
		ast.NewExpr("std.let", lit(ast.String("n")), lit(ast.Number(0))),
		ast.NewExpr("std.let", lit(ast.String("inc")), ast.NewExpr("std.lambda", ast.NewExpr("params"), lambdaBody)),
		ast.NewExpr("std.apply", ast.NewExpr("std.var", lit(ast.String("inc")))),
		ast.NewExpr("std.apply", ast.NewExpr("std.var", lit(ast.String("inc")))),
	)
	fn, err := c.Compile(node)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, err := fn(newTestContext(ops))
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v.Number() != 2 {
		t.Fatalf("got %v, want 2 (counter should persist across calls)", v.Number())
	}
}

func TestCompileUnknownOpcodeFails(t *testing.T) {
	ops := newEngine()
	c := New(ops)
	node := ast.NewExpr("not.a.real.opcode", lit(ast.Number(1)))
	if _, err := c.Compile(node); err == nil {
		t.Fatal("expected a compile-time error for an unknown opcode")
	}
}
