package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestRunScriptEvalFlag(t *testing.T) {
	oldEval, oldGas, oldProfile, oldDump := runEval, runGas, runProfile, runDumpAST
	defer func() { runEval, runGas, runProfile, runDumpAST = oldEval, oldGas, oldProfile, oldDump }()
	runEval = `std.warn("hi"); 1 + 2;`
	runGas = 0
	runProfile = ""
	runDumpAST = false

	out := captureStdout(t, func() {
		if err := runScript(runCmd, nil); err != nil {
			t.Fatalf("runScript failed: %v", err)
		}
	})
	if !strings.Contains(out, "3") {
		t.Errorf("expected result 3 in output, got %q", out)
	}
}

func TestRunScriptReadsFromFile(t *testing.T) {
	oldEval, oldGas, oldProfile := runEval, runGas, runProfile
	defer func() { runEval, runGas, runProfile = oldEval, oldGas, oldProfile }()
	runEval, runGas, runProfile = "", 0, ""

	dir := t.TempDir()
	path := filepath.Join(dir, "main.vs")
	if err := os.WriteFile(path, []byte("2 * 21;"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	out := captureStdout(t, func() {
		if err := runScript(runCmd, []string{path}); err != nil {
			t.Fatalf("runScript failed: %v", err)
		}
	})
	if !strings.Contains(out, "42") {
		t.Errorf("expected 42 in output, got %q", out)
	}
}

func TestRunScriptRejectsUnknownProfile(t *testing.T) {
	oldEval, oldGas, oldProfile := runEval, runGas, runProfile
	defer func() { runEval, runGas, runProfile = oldEval, oldGas, oldProfile }()
	runEval = "1;"
	runProfile = filepath.Join(t.TempDir(), "missing-profile.yaml")

	if err := runScript(runCmd, nil); err == nil {
		t.Fatal("expected an error for a missing profile file")
	}
}

func TestRunScriptTranspileErrorIsReported(t *testing.T) {
	oldEval, oldGas, oldProfile := runEval, runGas, runProfile
	defer func() { runEval, runGas, runProfile = oldEval, oldGas, oldProfile }()
	runEval, runGas, runProfile = "let = ;", 0, ""

	if err := runScript(runCmd, nil); err == nil {
		t.Fatal("expected a transpile error")
	}
}

func TestRunTokensReportsIllegalTokens(t *testing.T) {
	oldEval, oldShowPos, oldOnlyErr := tokensEval, tokensShowPos, tokensOnlyError
	defer func() { tokensEval, tokensShowPos, tokensOnlyError = oldEval, oldShowPos, oldOnlyErr }()
	tokensEval = "let x = 1 # 2;"
	tokensShowPos = false
	tokensOnlyError = false

	out := captureStdout(t, func() {
		err := runTokens(tokensCmd, nil)
		if err == nil {
			t.Fatal("expected an error reporting illegal tokens")
		}
	})
	if !strings.Contains(out, "ILLEGAL") {
		t.Errorf("expected an ILLEGAL token line, got %q", out)
	}
}

func TestRunTokensCleanInputHasNoErrors(t *testing.T) {
	oldEval, oldOnlyErr := tokensEval, tokensOnlyError
	defer func() { tokensEval, tokensOnlyError = oldEval, oldOnlyErr }()
	tokensEval = "let x = 1 + 2;"
	tokensOnlyError = false

	out := captureStdout(t, func() {
		if err := runTokens(tokensCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "[let") {
		t.Errorf("expected a let keyword token in output, got %q", out)
	}
}

func TestRunParsePrintsOpcodeAST(t *testing.T) {
	oldEval := parseEval
	defer func() { parseEval = oldEval }()
	parseEval = "1 + 2;"

	out := captureStdout(t, func() {
		if err := runParse(parseCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "add") {
		t.Errorf("expected opcode AST mentioning add, got %q", out)
	}
}

func TestRunDecompileRoundTripsSimpleExpression(t *testing.T) {
	oldEval := decompileEval
	defer func() { decompileEval = oldEval }()
	decompileEval = "1 + 2;"

	out := captureStdout(t, func() {
		if err := runDecompile(decompileCmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "1") || !strings.Contains(out, "2") {
		t.Errorf("expected decompiled source containing operands, got %q", out)
	}
}
