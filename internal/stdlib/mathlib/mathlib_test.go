package mathlib_test

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib/mathlib"
)

func call(t *testing.T, r *registry.Registry, op string, args ...*ast.Value) (*ast.Value, error) {
	t.Helper()
	entry, err := r.Lookup(op)
	if err != nil {
		t.Fatalf("lookup %s: %v", op, err)
	}
	outcome, err := entry.Handler(nil, args)
	if err != nil {
		return nil, err
	}
	return outcome.Value, nil
}

func TestArithmeticFolds(t *testing.T) {
	r := registry.New()
	mathlib.Register(r)

	tests := []struct {
		op   string
		args []float64
		want float64
	}{
		{"add", []float64{1, 2, 3}, 6},
		{"sub", []float64{10, 3, 2}, 5},
		{"mul", []float64{2, 3, 4}, 24},
		{"div", []float64{100, 5, 2}, 10},
		{"mod", []float64{7, 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			args := make([]*ast.Value, len(tt.args))
			for i, a := range tt.args {
				args[i] = ast.Number(a)
			}
			got, err := call(t, r, tt.op, args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Number() != tt.want {
				t.Fatalf("%s(%v) = %v, want %v", tt.op, tt.args, got.Number(), tt.want)
			}
		})
	}
}

func TestPowerTowerIsRightAssociative(t *testing.T) {
	r := registry.New()
	mathlib.Register(r)

	// 2 ^ 3 ^ 2 == 2 ^ (3 ^ 2) == 2^9 == 512, not (2^3)^2 == 64.
	got, err := call(t, r, "^", ast.Number(2), ast.Number(3), ast.Number(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number() != 512 {
		t.Fatalf("got %v, want 512", got.Number())
	}
}

func TestChainedComparison(t *testing.T) {
	r := registry.New()
	mathlib.Register(r)

	holds, err := call(t, r, "<", ast.Number(1), ast.Number(2), ast.Number(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !holds.Bool() {
		t.Fatal("1 < 2 < 3 should hold")
	}

	fails, err := call(t, r, "<", ast.Number(1), ast.Number(5), ast.Number(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fails.Bool() {
		t.Fatal("1 < 5 < 3 should not hold")
	}
}

func TestChainedComparisonVacuouslyTrueBelowTwoArgs(t *testing.T) {
	r := registry.New()
	mathlib.Register(r)

	got, err := call(t, r, "<", ast.Number(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Bool() {
		t.Fatal("single-argument chained comparison should be vacuously true")
	}
}

func TestMathLibrary(t *testing.T) {
	r := registry.New()
	mathlib.Register(r)

	got, err := call(t, r, "math.sqrt", ast.Number(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number() != 4 {
		t.Fatalf("sqrt(16) = %v, want 4", got.Number())
	}

	got, err = call(t, r, "math.max", ast.Number(1), ast.Number(9), ast.Number(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number() != 9 {
		t.Fatalf("max = %v, want 9", got.Number())
	}
}

func TestRandomRejectsInvertedRange(t *testing.T) {
	r := registry.New()
	mathlib.Register(r)

	if _, err := call(t, r, "random", ast.Number(10), ast.Number(1)); err == nil {
		t.Fatal("expected error for min > max")
	}
}

func TestArgumentTypeErrors(t *testing.T) {
	r := registry.New()
	mathlib.Register(r)

	if _, err := call(t, r, "add", ast.String("x"), ast.Number(1)); err == nil {
		t.Fatal("expected error for non-number operand")
	}
}
