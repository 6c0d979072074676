package objlib_test

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib/objlib"
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

func newRegistry() *registry.Registry {
	r := registry.New()
	objlib.Register(r)
	return r
}

func TestNewGetSet(t *testing.T) {
	r := newRegistry()

	obj, err := call(t, r, "obj.new", ast.String("x"), ast.Number(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := call(t, r, "obj.get", obj, ast.String("x"))
	if err != nil || got.Number() != 1 {
		t.Fatalf("got %v, %v", got, err)
	}

	if _, err := call(t, r, "obj.set", obj, ast.String("y"), ast.Number(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err = call(t, r, "obj.get", obj, ast.String("y"))
	if err != nil || got.Number() != 2 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestGetMissingKeyReturnsDefaultOrNull(t *testing.T) {
	r := newRegistry()
	obj := ast.ValueFromObject(ast.NewEmptyObject())

	got, err := call(t, r, "obj.get", obj, ast.String("missing"))
	if err != nil || !got.IsNull() {
		t.Fatalf("got %v, %v, want null", got, err)
	}

	got, err = call(t, r, "obj.get", obj, ast.String("missing"), ast.Number(42))
	if err != nil || got.Number() != 42 {
		t.Fatalf("got %v, %v, want default 42", got, err)
	}
}

func TestHasAndDelete(t *testing.T) {
	r := newRegistry()
	obj, _ := call(t, r, "obj.new", ast.String("k"), ast.Number(1))

	has, err := call(t, r, "obj.has", obj, ast.String("k"))
	if err != nil || !has.Bool() {
		t.Fatalf("got %v, %v", has, err)
	}

	deleted, err := call(t, r, "obj.del", obj, ast.String("k"))
	if err != nil || !deleted.Bool() {
		t.Fatalf("got %v, %v", deleted, err)
	}

	has, err = call(t, r, "obj.has", obj, ast.String("k"))
	if err != nil || has.Bool() {
		t.Fatalf("key should be gone after delete, got %v, %v", has, err)
	}
}

func TestKeysPreservesInsertionOrder(t *testing.T) {
	r := newRegistry()
	obj, _ := call(t, r, "obj.new", ast.String("b"), ast.Number(2), ast.String("a"), ast.Number(1))

	keys, err := call(t, r, "obj.keys", obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := keys.List()
	first, _ := list.Get(0)
	second, _ := list.Get(1)
	if first.Str() != "b" || second.Str() != "a" {
		t.Fatalf("keys = [%q, %q], want insertion order [b, a]", first.Str(), second.Str())
	}
}

func TestDisallowedKeysRejectedAtRuntime(t *testing.T) {
	r := newRegistry()
	obj := ast.ValueFromObject(ast.NewEmptyObject())

	for key := range objlib.DisallowedKeys {
		if _, err := call(t, r, "obj.get", obj, ast.String(key)); err == nil {
			t.Fatalf("expected error accessing disallowed key %q", key)
		}
	}
}

func TestWrongTypeArgumentErrors(t *testing.T) {
	r := newRegistry()

	if _, err := call(t, r, "obj.get", ast.String("not an object"), ast.String("k")); err == nil {
		t.Fatal("expected type error for non-object argument")
	}
}
