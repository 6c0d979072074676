// Package scripterr implements the engine's error taxonomy (§7): the
// distinction between compile-time CompilerError, runtime ScriptError, and
// the non-error control Signals (defined in package interp, since they are
// interpreter-internal control flow rather than reportable failures).
//
// StackFrame/StackTrace track opcode call frames rather than
// file:line:column source positions, since a runtime failure here is
// reported as the chain of opcode calls that led to it.
package scripterr

import (
	"fmt"
	"strings"
)

// StackFrame captures one opcode invocation for error reporting: the
// opcode name and the arguments accumulated for it at the time of failure.
type StackFrame struct {
	Op   string
	Args []string // best-effort string rendering of accumulated arguments
}

func (f StackFrame) String() string {
	if len(f.Args) == 0 {
		return f.Op
	}
	return fmt.Sprintf("%s(%s)", f.Op, strings.Join(f.Args, ", "))
}

// StackTrace is a sequence of frames, oldest (outermost) first.
type StackTrace []StackFrame

// String renders the trace newest-frame-first, showing the most recent
// call on top.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Push returns a new trace with frame appended (StackTrace is treated as
// an immutable value so frames captured at nested depths are never
// retroactively mutated).
func (st StackTrace) Push(frame StackFrame) StackTrace {
	out := make(StackTrace, len(st)+1)
	copy(out, st)
	out[len(st)] = frame
	return out
}

// Top returns the innermost frame, or the zero value if the trace is empty.
func (st StackTrace) Top() (StackFrame, bool) {
	if len(st) == 0 {
		return StackFrame{}, false
	}
	return st[len(st)-1], true
}
