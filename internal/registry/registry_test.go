package registry

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
)

func echoHandler(ctx ast.EvalContext, args []*ast.Value) (Outcome, error) {
	if len(args) == 0 {
		return Done(ast.Null()), nil
	}
	return Done(args[0]), nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	r.Register(Library{
		"std.echo": {Meta: ast.Metadata{Category: "core"}, Handler: echoHandler},
	})

	e, err := r.Lookup("std.echo")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if e.Meta.Name != "std.echo" {
		t.Errorf("Register should stamp the map key onto Meta.Name, got %q", e.Meta.Name)
	}
}

func TestLookupUnknownOpcode(t *testing.T) {
	r := New()
	if _, err := r.Lookup("nope"); err == nil {
		t.Fatal("expected an UnknownOpcode error")
	}
}

func TestRegisterLastWins(t *testing.T) {
	r := New()
	r.Register(Library{"op": {Meta: ast.Metadata{Category: "a"}, Handler: echoHandler}})
	r.Register(Library{"op": {Meta: ast.Metadata{Category: "b"}, Handler: echoHandler}})

	e, _ := r.Lookup("op")
	if e.Meta.Category != "b" {
		t.Errorf("second Register call should replace the first, got category %q", e.Meta.Category)
	}
}

func TestSubsetIsIndependent(t *testing.T) {
	r := New()
	r.Register(Library{
		"a": {Meta: ast.Metadata{}, Handler: echoHandler},
		"b": {Meta: ast.Metadata{}, Handler: echoHandler},
	})
	sub := r.Subset("a")

	if !sub.Has("a") {
		t.Error("subset should contain the requested opcode")
	}
	if sub.Has("b") {
		t.Error("subset should not contain opcodes that weren't requested")
	}
	r.Register(Library{"c": {Meta: ast.Metadata{}, Handler: echoHandler}})
	if sub.Has("c") {
		t.Error("subsequent registrations on the parent must not leak into the subset")
	}
}
