package strlib_test

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib/strlib"
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
	strlib.Register(r)
	return r
}

func TestUpperLowerTrim(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.upper", ast.String("hello"))
	if err != nil || got.Str() != "HELLO" {
		t.Fatalf("str.upper = %v, %v", got, err)
	}

	got, err = call(t, r, "str.lower", ast.String("HELLO"))
	if err != nil || got.Str() != "hello" {
		t.Fatalf("str.lower = %v, %v", got, err)
	}

	got, err = call(t, r, "str.trim", ast.String("  hi  "))
	if err != nil || got.Str() != "hi" {
		t.Fatalf("str.trim = %v, %v", got, err)
	}
}

func TestConcatStringifiesNonStrings(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.concat", ast.String("n="), ast.Number(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "n=3" {
		t.Fatalf("got %q, want %q", got.Str(), "n=3")
	}
}

func TestSplit(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.split", ast.String("a,b,c"), ast.String(","))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := got.List()
	if list.Len() != 3 {
		t.Fatalf("got %d elements, want 3", list.Len())
	}
	v, _ := list.Get(1)
	if v.Str() != "b" {
		t.Fatalf("elem[1] = %q, want %q", v.Str(), "b")
	}
}

func TestReplace(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.replace", ast.String("foo bar foo"), ast.String("foo"), ast.String("baz"))
	if err != nil || got.Str() != "baz bar baz" {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestSliceSupportsNegativeIndices(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.slice", ast.String("hello"), ast.Number(-3))
	if err != nil || got.Str() != "llo" {
		t.Fatalf("got %v, %v", got, err)
	}

	got, err = call(t, r, "str.slice", ast.String("hello"), ast.Number(1), ast.Number(3))
	if err != nil || got.Str() != "el" {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestIndexOfAndContains(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.indexOf", ast.String("hello"), ast.String("ll"))
	if err != nil || got.Number() != 2 {
		t.Fatalf("got %v, %v", got, err)
	}

	got, err = call(t, r, "str.contains", ast.String("hello"), ast.String("xyz"))
	if err != nil || got.Bool() {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestLenCountsRunesNotBytes(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.len", ast.String("héllo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number() != 5 {
		t.Fatalf("got %v, want 5", got.Number())
	}
}

func TestToNumber(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "str.toNumber", ast.String(" 42.5 "))
	if err != nil || got.Number() != 42.5 {
		t.Fatalf("got %v, %v", got, err)
	}

	if _, err := call(t, r, "str.toNumber", ast.String("not a number")); err == nil {
		t.Fatal("expected error for unparsable string")
	}
}

func TestWrongTypeArgumentErrors(t *testing.T) {
	r := newRegistry()

	if _, err := call(t, r, "str.upper", ast.Number(1)); err == nil {
		t.Fatal("expected type error for non-string argument")
	}
}
