package ast

import "testing"

func TestScopeLookupWalksChain(t *testing.T) {
	root := NewRootScope()
	root.Let("x", Number(1))
	child := root.Fork()

	v, ok := child.Lookup("x")
	if !ok || v.Number() != 1 {
		t.Fatalf("expected to find x=1 through the chain, got %v, %v", v, ok)
	}
}

func TestScopeLetShadowsOuter(t *testing.T) {
	root := NewRootScope()
	root.Let("x", Number(1))
	child := root.Fork()
	child.Let("x", Number(2))

	if v, _ := child.Lookup("x"); v.Number() != 2 {
		t.Errorf("inner let should shadow outer binding, got %v", v.Number())
	}
	if v, _ := root.Lookup("x"); v.Number() != 1 {
		t.Errorf("outer binding should be unaffected by inner shadow, got %v", v.Number())
	}
}

func TestScopeSetUpdatesNearestBinding(t *testing.T) {
	root := NewRootScope()
	root.Let("x", Number(1))
	child := root.Fork()

	if !child.Set("x", Number(99)) {
		t.Fatal("set on an existing outer binding should succeed")
	}
	if v, _ := root.Lookup("x"); v.Number() != 99 {
		t.Errorf("set should mutate the binding in place, got %v", v.Number())
	}
}

func TestScopeSetUndefinedFails(t *testing.T) {
	root := NewRootScope()
	if root.Set("missing", Number(1)) {
		t.Error("set on an undefined variable should report failure")
	}
}

func TestScopeHasLocal(t *testing.T) {
	root := NewRootScope()
	root.Let("x", Number(1))
	child := root.Fork()

	if child.HasLocal("x") {
		t.Error("x is bound in the outer scope, not locally in child")
	}
	if !root.HasLocal("x") {
		t.Error("x should be local to root")
	}
}
