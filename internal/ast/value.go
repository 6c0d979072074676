// Package ast defines the value and abstract-syntax-tree model shared by
// every other verb-script component: the interpreter, compiler, optimizer,
// and both translators operate on the types declared here.
//
// Design overview: Value is a tagged union implemented with private
// fields rather than interface{}, so downstream packages get
// compile-time-checked accessors instead of type assertions scattered
// across the codebase.
package ast

import "fmt"

// Kind identifies which alternative of the Value union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
	KindLambda
	KindCapability
)

// String returns a human-readable name for the kind, used in type-mismatch
// error messages and the decompiler.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindLambda:
		return "lambda"
	case KindCapability:
		return "capability"
	default:
		return "unknown"
	}
}

// Value is the tagged sum every script expression evaluates to: null,
// boolean, number, string, list, object, lambda, or capability.
//
// Lists and objects hold pointers to shared, mutable backing stores — two
// Values referencing the same List or Object observe each other's
// mutations. Lambda and Capability are likewise reference types.
// Primitive kinds (null, bool, number, string) are held by value so two
// Values of the same primitive never alias.
type Value struct {
	kind Kind

	b   bool
	num float64
	str string

	list *List
	obj  *Object
	lam  *Lambda
	cap  *Capability
}

// Kind reports which alternative is populated.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// Null returns the null value. Every nil *Value is treated as null by the
// accessor methods, but Null() gives an explicit, non-nil instance to put
// into lists/objects.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boxed boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Number returns a boxed numeric (float64) value.
func Number(n float64) *Value { return &Value{kind: KindNumber, num: n} }

// String returns a boxed string value.
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// ValueFromList wraps an existing *List in a Value.
func ValueFromList(l *List) *Value { return &Value{kind: KindList, list: l} }

// ValueFromObject wraps an existing *Object in a Value.
func ValueFromObject(o *Object) *Value { return &Value{kind: KindObject, obj: o} }

// ValueFromLambda wraps a *Lambda in a Value.
func ValueFromLambda(l *Lambda) *Value { return &Value{kind: KindLambda, lam: l} }

// ValueFromCapability wraps a *Capability in a Value.
func ValueFromCapability(c *Capability) *Value { return &Value{kind: KindCapability, cap: c} }

// IsNull reports whether v is null (including a bare Go nil pointer, which
// the engine treats as null rather than panicking).
func (v *Value) IsNull() bool { return v == nil || v.kind == KindNull }

// Bool returns the boolean payload, or false if v is not a boolean.
func (v *Value) Bool() bool {
	if v == nil || v.kind != KindBool {
		return false
	}
	return v.b
}

// Number returns the numeric payload, or 0 if v is not a number.
func (v *Value) Number() float64 {
	if v == nil || v.kind != KindNumber {
		return 0
	}
	return v.num
}

// Str returns the string payload, or "" if v is not a string.
func (v *Value) Str() string {
	if v == nil || v.kind != KindString {
		return ""
	}
	return v.str
}

// List returns the underlying *List, or nil if v is not a list.
func (v *Value) List() *List {
	if v == nil || v.kind != KindList {
		return nil
	}
	return v.list
}

// Object returns the underlying *Object, or nil if v is not an object.
func (v *Value) Object() *Object {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Lambda returns the underlying *Lambda, or nil if v is not a lambda.
func (v *Value) Lambda() *Lambda {
	if v == nil || v.kind != KindLambda {
		return nil
	}
	return v.lam
}

// Capability returns the underlying *Capability, or nil if v is not one.
func (v *Value) Capability() *Capability {
	if v == nil || v.kind != KindCapability {
		return nil
	}
	return v.cap
}

// Truthy implements the engine's single truthiness rule: null and false are
// falsy, every other value (including 0, "", empty list/object) is truthy.
// This matches the opcode stdlib's "and/or/not short-circuit" semantics.
func (v *Value) Truthy() bool {
	if v.IsNull() {
		return false
	}
	if v.kind == KindBool {
		return v.b
	}
	return true
}

// Equal implements strict value/reference equality for ==/!=.
// Primitives compare by value; lists, objects, lambdas and capabilities
// compare by identity (reference equality), matching §4.7.
func Equal(a, b *Value) bool {
	ak, bk := a.Kind(), b.Kind()
	if ak != bk {
		return false
	}
	switch ak {
	case KindNull:
		return true
	case KindBool:
		return a.Bool() == b.Bool()
	case KindNumber:
		return a.Number() == b.Number()
	case KindString:
		return a.Str() == b.Str()
	case KindList:
		return a.List() == b.List()
	case KindObject:
		return a.Object() == b.Object()
	case KindLambda:
		return a.Lambda() == b.Lambda()
	case KindCapability:
		return a.Capability() == b.Capability()
	default:
		return false
	}
}

// IsEntity reports whether v looks like an Entity: an object with a
// numeric "id" field. Used by the type validator to recognize the Entity
// type tag (§4.2).
func (v *Value) IsEntity() bool {
	o := v.Object()
	if o == nil {
		return false
	}
	id, ok := o.Get("id")
	return ok && id.Kind() == KindNumber
}

// GoString gives a debug representation, used in panics and test failures.
func (v *Value) GoString() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.Bool())
	case KindNumber:
		return fmt.Sprintf("%g", v.Number())
	case KindString:
		return fmt.Sprintf("%q", v.Str())
	case KindList:
		return fmt.Sprintf("list(len=%d)", v.List().Len())
	case KindObject:
		return fmt.Sprintf("object(len=%d)", v.Object().Len())
	case KindLambda:
		return "lambda"
	case KindCapability:
		return fmt.Sprintf("capability(%s)", v.Capability().ID)
	default:
		return "?"
	}
}
