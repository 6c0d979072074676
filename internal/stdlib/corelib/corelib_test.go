package corelib_test

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/interp"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib/corelib"
)

func newContext(args ...*ast.Value) (*registry.Registry, *interp.ScriptContext) {
	r := registry.New()
	corelib.Register(r)
	caller := ast.NewEntity(1)
	this := ast.NewEntity(2)
	ctx := interp.NewContext(caller, this, args, 1000, r)
	return r, ctx
}

func call(t *testing.T, r *registry.Registry, ctx *interp.ScriptContext, op string, args ...*ast.Value) (*ast.Value, error) {
	t.Helper()
	entry, err := r.Lookup(op)
	if err != nil {
		t.Fatalf("lookup %s: %v", op, err)
	}
	outcome, err := entry.Handler(ctx, args)
	if err != nil {
		return nil, err
	}
	return outcome.Value, nil
}

func TestThisAndCaller(t *testing.T) {
	r, ctx := newContext()

	this, err := call(t, r, ctx, "std.this")
	if err != nil || !this.IsEntity() {
		t.Fatalf("got %v, %v", this, err)
	}

	caller, err := call(t, r, ctx, "std.caller")
	if err != nil || !caller.IsEntity() {
		t.Fatalf("got %v, %v", caller, err)
	}
}

func TestArgAndArgs(t *testing.T) {
	r, ctx := newContext(ast.Number(10), ast.Number(20))

	first, err := call(t, r, ctx, "std.arg", ast.Number(0))
	if err != nil || first.Number() != 10 {
		t.Fatalf("got %v, %v", first, err)
	}

	outOfRange, err := call(t, r, ctx, "std.arg", ast.Number(5))
	if err != nil || !outOfRange.IsNull() {
		t.Fatalf("out-of-range std.arg should be null, got %v, %v", outOfRange, err)
	}

	all, err := call(t, r, ctx, "std.args")
	if err != nil || all.List().Len() != 2 {
		t.Fatalf("got %v, %v", all, err)
	}
}

func TestWarnAppendsToWarnings(t *testing.T) {
	r, ctx := newContext()

	if _, err := call(t, r, ctx, "std.warn", ast.String("careful")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctx.Warnings) != 1 || ctx.Warnings[0] != "careful" {
		t.Fatalf("got %v, want [careful]", ctx.Warnings)
	}
}

func TestSendInvokesCallbackWhenSet(t *testing.T) {
	r, ctx := newContext()
	var gotChannel string
	var gotPayload *ast.Value
	ctx.Send = func(channel string, payload *ast.Value) {
		gotChannel = channel
		gotPayload = payload
	}

	if _, err := call(t, r, ctx, "send", ast.String("events"), ast.Number(42)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotChannel != "events" || gotPayload.Number() != 42 {
		t.Fatalf("got %q, %v", gotChannel, gotPayload)
	}
}

func TestSendIsNoOpWithoutCallback(t *testing.T) {
	r, ctx := newContext()

	if _, err := call(t, r, ctx, "send", ast.String("events"), ast.Number(1)); err != nil {
		t.Fatalf("send without a host callback should not error: %v", err)
	}
}

func TestTypeof(t *testing.T) {
	r, ctx := newContext()

	got, err := call(t, r, ctx, "std.typeof", ast.Number(1))
	if err != nil || got.Str() != "number" {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestThrowProducesUserThrowError(t *testing.T) {
	r, ctx := newContext()

	if _, err := call(t, r, ctx, "std.throw", ast.String("boom")); err == nil {
		t.Fatal("expected an error from std.throw")
	}
}

func TestCapabilityMintsDistinctTokensOwnedByThis(t *testing.T) {
	r, ctx := newContext()

	first, err := call(t, r, ctx, "std.capability")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Kind() != ast.KindCapability {
		t.Fatalf("got kind %v, want Capability", first.Kind())
	}
	if first.Capability().Owner != ctx.This {
		t.Fatalf("capability owner should be the calling entity")
	}

	second, err := call(t, r, ctx, "std.capability")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Capability().ID == second.Capability().ID {
		t.Fatal("each std.capability call should mint a distinct id")
	}
}
