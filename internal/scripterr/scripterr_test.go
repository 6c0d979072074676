package scripterr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/cwbudde/verbscript/internal/scripterr"
)

func TestScriptErrorFormatsKindAndMessage(t *testing.T) {
	err := scripterr.New(scripterr.KindArgumentType, "expected %s, got %s", "number", "string")
	if got := err.Error(); got != "ArgumentType: expected number, got string" {
		t.Fatalf("got %q", got)
	}
}

func TestWithFramePreservesKindAndAppendsTrace(t *testing.T) {
	err := scripterr.New(scripterr.KindUserThrow, "boom")
	withFrame := err.WithFrame(scripterr.StackFrame{Op: "std.throw", Args: []string{`"boom"`}})

	if withFrame.Kind != scripterr.KindUserThrow {
		t.Fatalf("got kind %v, want %v", withFrame.Kind, scripterr.KindUserThrow)
	}
	if !strings.Contains(withFrame.Error(), "std.throw") {
		t.Fatalf("formatted error missing frame: %q", withFrame.Error())
	}
	// the original error must be left untouched (StackTrace is immutable).
	if len(err.Trace) != 0 {
		t.Fatalf("original error's trace was mutated: %v", err.Trace)
	}
}

func TestWithContextAttachesStructuredData(t *testing.T) {
	err := scripterr.New(scripterr.KindDisallowedKey, "nope").WithContext("key", "__proto__")
	if err.Context["key"] != "__proto__" {
		t.Fatalf("got %v", err.Context)
	}
}

func TestAsScriptErrorPassesThroughExistingScriptError(t *testing.T) {
	original := scripterr.New(scripterr.KindGasExhausted, "out of gas")
	got := scripterr.AsScriptError(original)
	if got != original {
		t.Fatal("AsScriptError should return the same *ScriptError unchanged")
	}
}

func TestAsScriptErrorWrapsPlainErrors(t *testing.T) {
	got := scripterr.AsScriptError(errors.New("plain failure"))
	if got.Kind != scripterr.KindCustom {
		t.Fatalf("got kind %v, want %v", got.Kind, scripterr.KindCustom)
	}
	if got.Message != "plain failure" {
		t.Fatalf("got message %q", got.Message)
	}
}

func TestAsScriptErrorNilInputReturnsNil(t *testing.T) {
	if got := scripterr.AsScriptError(nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestStackTraceStringIsNewestFrameFirst(t *testing.T) {
	trace := scripterr.StackTrace{}.Push(scripterr.StackFrame{Op: "outer"}).Push(scripterr.StackFrame{Op: "inner"})
	got := trace.String()
	if !strings.HasPrefix(got, "inner") {
		t.Fatalf("got %q, want newest frame (inner) first", got)
	}
}

func TestStackFrameStringIncludesArgs(t *testing.T) {
	f := scripterr.StackFrame{Op: "add", Args: []string{"1", "2"}}
	if got := f.String(); got != "add(1, 2)" {
		t.Fatalf("got %q", got)
	}
}

func TestCompilerErrorFormatsSourceLineAndCaret(t *testing.T) {
	source := "let x = ;\n"
	err := scripterr.NewCompilerError(scripterr.Position{Line: 1, Column: 9}, "unexpected token", source, "")
	out := err.Format()
	if !strings.Contains(out, "let x = ;") {
		t.Fatalf("missing source line in %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret in %q", out)
	}
	if !strings.Contains(out, "unexpected token") {
		t.Fatalf("missing message in %q", out)
	}
}

func TestFormatErrorsBannerForMultipleErrors(t *testing.T) {
	errs := []*scripterr.CompilerError{
		scripterr.NewCompilerError(scripterr.Position{Line: 1, Column: 1}, "first", "", ""),
		scripterr.NewCompilerError(scripterr.Position{Line: 2, Column: 1}, "second", "", ""),
	}
	out := scripterr.FormatErrors(errs)
	if !strings.Contains(out, "2 error(s)") {
		t.Fatalf("got %q", out)
	}
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("got %q", out)
	}
}

func TestFormatErrorsSingleErrorHasNoBanner(t *testing.T) {
	errs := []*scripterr.CompilerError{scripterr.NewCompilerError(scripterr.Position{Line: 1, Column: 1}, "only", "", "")}
	out := scripterr.FormatErrors(errs)
	if strings.Contains(out, "error(s)") {
		t.Fatalf("single error should not use the multi-error banner: %q", out)
	}
}
