package timelib_test

import (
	"testing"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/stdlib/timelib"
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
	timelib.Register(r)
	return r
}

func TestMillisRoundTrip(t *testing.T) {
	r := newRegistry()
	iso := ast.String("2024-01-15T10:30:00Z")

	ms, err := call(t, r, "time.toMillis", iso)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back, err := call(t, r, "time.fromMillis", ms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Str() != iso.Str() {
		t.Fatalf("got %q, want %q", back.Str(), iso.Str())
	}
}

func TestOffsetSingularAndPluralUnitsAgree(t *testing.T) {
	r := newRegistry()
	base := ast.String("2024-01-01T00:00:00Z")

	singular, err := call(t, r, "time.offset", ast.Number(1), ast.String("day"), base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plural, err := call(t, r, "time.offset", ast.Number(1), ast.String("days"), base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if singular.Str() != plural.Str() {
		t.Fatalf("singular %q != plural %q", singular.Str(), plural.Str())
	}
	if singular.Str() != "2024-01-02T00:00:00Z" {
		t.Fatalf("got %q, want 2024-01-02T00:00:00Z", singular.Str())
	}
}

func TestOffsetRejectsUnknownUnit(t *testing.T) {
	r := newRegistry()

	if _, err := call(t, r, "time.offset", ast.Number(1), ast.String("fortnight"), ast.String("2024-01-01T00:00:00Z")); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestToMillisRejectsMalformedTimestamp(t *testing.T) {
	r := newRegistry()

	if _, err := call(t, r, "time.toMillis", ast.String("not a date")); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestNowProducesRFC3339(t *testing.T) {
	r := newRegistry()

	got, err := call(t, r, "time.now")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := call(t, r, "time.toMillis", got); err != nil {
		t.Fatalf("time.now output should parse as ISO-8601: %v", err)
	}
}
