package scripterr

import (
	"fmt"
	"strings"
)

// Position is a source location for transpile/compile-time diagnostics.
type Position struct {
	Line   int
	Column int
}

// CompilerError represents a single parse-, transpile-, or compile-time
// failure with source context: a line/column header, the offending
// source line, and a caret pointing at the column.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     Position
}

// NewCompilerError constructs a CompilerError.
func NewCompilerError(pos Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

func (e *CompilerError) Error() string { return e.Format() }

// Format renders the error with a source-line/caret indicator, plain
// text with no ANSI color codes.
func (e *CompilerError) Format() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(fmt.Sprintf("error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("error at line %d:%d\n", e.Pos.Line, e.Pos.Column))
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := e.Pos.Column - 1
		if col < 0 {
			col = 0
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col))
		sb.WriteString("^\n")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func (e *CompilerError) sourceLine(n int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// FormatErrors renders a batch of compiler errors as a multi-error
// banner.
func FormatErrors(errs []*CompilerError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "compilation failed with %d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[error %d of %d]\n", i+1, len(errs))
		sb.WriteString(e.Format())
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
