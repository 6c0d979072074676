package transpile

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/compiler"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib"
)

func newEngine(t *testing.T) (*registry.Registry, map[string]bool) {
	t.Helper()
	ops := registry.New()
	stdlib.RegisterAll(ops, interp.New())
	known := make(map[string]bool)
	for _, n := range ops.Names() {
		known[n] = true
	}
	return ops, known
}

// run transpiles, compiles, and evaluates source against a fresh engine,
// returning the resulting value.
func run(t *testing.T, source string) *ast.Value {
	t.Helper()
	ops, known := newEngine(t)
	node, err := Transpile(source, known)
	if err != nil {
		t.Fatalf("transpile %q: %v", source, err)
	}
	fn, err := compiler.New(ops).Compile(node)
	if err != nil {
		t.Fatalf("compile %q: %v", source, err)
	}
	v, err := fn(interp.NewContext(nil, nil, nil, 100000, ops))
	if err != nil {
		t.Fatalf("exec %q: %v", source, err)
	}
	return v
}

func runErr(t *testing.T, source string) error {
	t.Helper()
	ops, known := newEngine(t)
	node, err := Transpile(source, known)
	if err != nil {
		return err
	}
	fn, err := compiler.New(ops).Compile(node)
	if err != nil {
		return err
	}
	_, err = fn(interp.NewContext(nil, nil, nil, 100000, ops))
	return err
}

func TestArithmeticPrecedence(t *testing.T) {
	v := run(t, "1 + 2 * 3;")
	if v.Number() != 7 {
		t.Fatalf("got %v, want 7", v.Number())
	}
}

func TestPowerIsRightAssociative(t *testing.T) {
	// 2 ** (3 ** 2) = 2 ** 9 = 512, not (2 ** 3) ** 2 = 64.
	v := run(t, "2 ** 3 ** 2;")
	if v.Number() != 512 {
		t.Fatalf("got %v, want 512", v.Number())
	}
}

func TestLetAndArithmeticMutation(t *testing.T) {
	v := run(t, `
		let total = 0;
		let i = 0;
		while (i < 5) {
			total = total + i;
			i = i + 1;
		}
		total;
	`)
	if v.Number() != 10 {
		t.Fatalf("got %v, want 10", v.Number())
	}
}

func TestForOfLoop(t *testing.T) {
	v := run(t, `
		let sum = 0;
		for (const x of [1, 2, 3, 4]) {
			sum += x;
		}
		sum;
	`)
	if v.Number() != 10 {
		t.Fatalf("got %v, want 10", v.Number())
	}
}

func TestCStyleForLoopWithBreak(t *testing.T) {
	v := run(t, `
		let count = 0;
		for (let i = 0; i < 100; i += 1) {
			if (i == 3) { break; }
			count += 1;
		}
		count;
	`)
	if v.Number() != 3 {
		t.Fatalf("got %v, want 3", v.Number())
	}
}

func TestFunctionDeclarationAndCall(t *testing.T) {
	v := run(t, `
		function square(n) { return n * n; }
		square(6);
	`)
	if v.Number() != 36 {
		t.Fatalf("got %v, want 36", v.Number())
	}
}

func TestArrowLambdaClosureCounter(t *testing.T) {
	v := run(t, `
		let n = 0;
		const inc = () => { n = n + 1; return n; };
		inc();
		inc();
		inc();
	`)
	if v.Number() != 3 {
		t.Fatalf("got %v, want 3", v.Number())
	}
}

func TestObjectAndMemberAccess(t *testing.T) {
	v := run(t, `
		let point = { x: 1, y: 2 };
		point.x + point["y"];
	`)
	if v.Number() != 3 {
		t.Fatalf("got %v, want 3", v.Number())
	}
}

func TestCompoundAssignmentOnObjectMemberEvaluatesTargetOnce(t *testing.T) {
	v := run(t, `
		let calls = 0;
		function target() {
			calls = calls + 1;
			return { v: 10 };
		}
		target().v += 5;
		calls;
	`)
	if v.Number() != 1 {
		t.Fatalf("expected target() evaluated exactly once, got %v calls", v.Number())
	}
}

func TestOptionalChainingShortCircuitsOnNull(t *testing.T) {
	v := run(t, `
		let obj = null;
		obj?.missing;
	`)
	if v.Kind() != ast.KindNull {
		t.Fatalf("expected null, got %s", v.Kind())
	}
}

func TestOptionalChainingPassesThroughWhenPresent(t *testing.T) {
	v := run(t, `
		let obj = { name: "hi" };
		obj?.name;
	`)
	if v.Str() != "hi" {
		t.Fatalf("got %q", v.Str())
	}
}

func TestNullishCoalescing(t *testing.T) {
	v := run(t, "null ?? 42;")
	if v.Number() != 42 {
		t.Fatalf("got %v, want 42", v.Number())
	}
	v2 := run(t, "7 ?? 42;")
	if v2.Number() != 7 {
		t.Fatalf("got %v, want 7", v2.Number())
	}
}

func TestTemplateStringInterpolation(t *testing.T) {
	v := run(t, "let n = 4; `count: ${n + 1}!`;")
	if v.Str() != "count: 5!" {
		t.Fatalf("got %q", v.Str())
	}
}

func TestTryCatch(t *testing.T) {
	v := run(t, `
		try {
			std.throw("boom");
			1;
		} catch (e) {
			99;
		}
	`)
	if v.Number() != 99 {
		t.Fatalf("got %v, want 99", v.Number())
	}
}

func TestInOperator(t *testing.T) {
	v := run(t, `let o = { a: 1 }; "a" in o;`)
	if !v.Bool() {
		t.Fatal("expected true")
	}
}

func TestShadowedIdentifierCompilesToApplyNotOpcodeCall(t *testing.T) {
	// "add" is a registered opcode name; a local parameter named add
	// shadows it, so add(1,2) inside the lambda must call the parameter,
	// not the opcode.
	v := run(t, `
		function useAdd(add) {
			return add(10);
		}
		useAdd((x) => x + 1);
	`)
	if v.Number() != 11 {
		t.Fatalf("got %v, want 11", v.Number())
	}
}

func TestUnshadowedOpcodeNameCallsOpcodeDirectly(t *testing.T) {
	v := run(t, "add(1, 2, 3);")
	if v.Number() != 6 {
		t.Fatalf("got %v, want 6", v.Number())
	}
}

func TestDisallowedKeyFailsAtCompileTime(t *testing.T) {
	err := runErr(t, `let o = {}; o.__proto__;`)
	if err == nil {
		t.Fatal("expected a compile-time error for a disallowed literal key")
	}
}

func TestDeleteMember(t *testing.T) {
	v := run(t, `
		let o = { a: 1, b: 2 };
		delete o.a;
		"a" in o;
	`)
	if v.Bool() {
		t.Fatal("expected a to be deleted")
	}
}

func TestUnsupportedConstructIsReported(t *testing.T) {
	ops, known := newEngine(t)
	_, err := Transpile(`delete (1 + 2);`, known)
	if err == nil {
		t.Fatal("expected an UnsupportedConstruct error")
	}
	if _, ok := err.(*UnsupportedConstruct); !ok {
		t.Fatalf("expected *UnsupportedConstruct, got %T", err)
	}
	_ = ops
}

func TestReservedWordCallEscape(t *testing.T) {
	v := run(t, "if_(true, 1, 2);")
	if v.Number() != 1 {
		t.Fatalf("got %v, want 1", v.Number())
	}
}
