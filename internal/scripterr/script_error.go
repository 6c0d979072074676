package scripterr

import "fmt"

// Kind enumerates the taxonomy of runtime script failures from §4.2/§7.
type Kind string

const (
	KindUnknownOpcode     Kind = "UnknownOpcode"
	KindArgumentCount     Kind = "ArgumentCount"
	KindArgumentType      Kind = "ArgumentType"
	KindGasExhausted      Kind = "GasExhausted"
	KindUndefinedVariable Kind = "UndefinedVariable"
	KindDisallowedKey     Kind = "DisallowedKey"
	KindUserThrow         Kind = "UserThrow"
	KindUnknownUnit       Kind = "UnknownUnit"
	KindCustom            Kind = "Custom"
)

// ScriptError is the single runtime-error type of the engine (§7). It
// carries a Kind for programmatic handling by try/catch and the host, a
// human Message, the StackTrace accumulated as the error propagated, and
// an optional structured Context payload (e.g. the offending key for
// DisallowedKey).
type ScriptError struct {
	Kind    Kind
	Message string
	Trace   StackTrace
	Context map[string]any
}

// New constructs a ScriptError with no trace yet attached; the interpreter
// and compiler attach frames as the error unwinds (§4.2: "appends the
// current frame trace").
func New(kind Kind, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithContext attaches structured context and returns the receiver, for
// chaining at the construction site.
func (e *ScriptError) WithContext(key string, value any) *ScriptError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e == nil {
		return "<nil script error>"
	}
	if len(e.Trace) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s\nstack trace:\n%s", e.Kind, e.Message, e.Trace.String())
}

// WithFrame returns a copy of e with frame appended to its trace. Used by
// the interpreter/compiler to build up a trace as a failure unwinds
// through nested frames, preserving the original Kind (§4.2: "wraps into a
// ScriptError preserving type if already one").
func (e *ScriptError) WithFrame(frame StackFrame) *ScriptError {
	return &ScriptError{
		Kind:    e.Kind,
		Message: e.Message,
		Trace:   e.Trace.Push(frame),
		Context: e.Context,
	}
}

// AsScriptError extracts a *ScriptError from an arbitrary error, wrapping
// non-ScriptError failures as KindCustom. Signal types (break/continue/
// return, defined in package interp) must never reach this function —
// callers are expected to check for them first.
func AsScriptError(err error) *ScriptError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ScriptError); ok {
		return se
	}
	return New(KindCustom, "%s", err.Error())
}
