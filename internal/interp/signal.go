package interp

import "github.com/cwbudde/verbscript/internal/ast"

// Signal is the marker for the three typed control-flow exceptions used by
// break/continue/return (§4.2). Signals are never ScriptErrors: a generic
// failure handler must check IsSignal before wrapping an error, or it will
// turn ordinary loop control into a reported script failure.
type Signal interface {
	error
	signal()
}

// BreakSignal aborts the nearest enclosing loop; the loop handler absorbs
// it and returns normally.
type BreakSignal struct{}

func (BreakSignal) Error() string { return "break outside loop" }
func (BreakSignal) signal()       {}

// ContinueSignal aborts the current loop iteration; the loop handler
// absorbs it and advances.
type ContinueSignal struct{}

func (ContinueSignal) Error() string { return "continue outside loop" }
func (ContinueSignal) signal()       {}

// ReturnSignal unwinds to the nearest lambda body boundary, carrying the
// value the lambda returns.
type ReturnSignal struct {
	Value *ast.Value
}

func (ReturnSignal) Error() string { return "return outside lambda" }
func (ReturnSignal) signal()       {}

// IsSignal reports whether err is one of the three control-flow signals,
// as opposed to a reportable ScriptError.
func IsSignal(err error) bool {
	_, ok := err.(Signal)
	return ok
}
