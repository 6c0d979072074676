package interp

import (
	"strings"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

// validateTypes checks already-evaluated args against an opcode's
// declared parameter types (§4.2's optional, globally-toggleable type
// validator). Generic parameter names (single uppercase letters such as
// "T") bypass checking, matching the metadata convention.
func validateTypes(meta ast.Metadata, args []*ast.Value) error {
	generics := make(map[string]bool, len(meta.GenericParameters))
	for _, g := range meta.GenericParameters {
		generics[g] = true
	}
	for i, v := range args {
		p := paramFor(meta.Parameters, i)
		if p == nil || p.Type == "" || p.Type == "any" || p.Type == "unknown" || generics[p.Type] {
			continue
		}
		if !typeMatches(p.Type, v) {
			return scripterr.New(scripterr.KindArgumentType,
				"%s: argument %d expected %s, got %s", meta.Name, i+1, p.Type, v.Kind())
		}
	}
	return nil
}

// paramFor resolves the declared parameter for positional arg index,
// accounting for a trailing variadic parameter absorbing any overflow.
func paramFor(params []ast.Param, index int) *ast.Param {
	if len(params) == 0 {
		return nil
	}
	if index < len(params) {
		return &params[index]
	}
	last := &params[len(params)-1]
	if last.Variadic {
		return last
	}
	return nil
}

func typeMatches(tag string, v *ast.Value) bool {
	if strings.Contains(tag, "|") {
		for _, alt := range strings.Split(tag, "|") {
			if typeMatches(strings.TrimSpace(alt), v) {
				return true
			}
		}
		return false
	}
	if strings.HasSuffix(tag, "[]") {
		if v.Kind() != ast.KindList {
			return false
		}
		elemTag := strings.TrimSuffix(tag, "[]")
		for _, e := range v.List().Elements() {
			if !typeMatches(elemTag, e) {
				return false
			}
		}
		return true
	}
	switch tag {
	case "number":
		return v.Kind() == ast.KindNumber
	case "string":
		return v.Kind() == ast.KindString
	case "boolean":
		return v.Kind() == ast.KindBool
	case "object":
		return v.Kind() == ast.KindObject
	case "list":
		return v.Kind() == ast.KindList
	case "lambda":
		return v.Kind() == ast.KindLambda
	case "Entity":
		return v.IsEntity()
	case "Capability":
		return v.Kind() == ast.KindCapability
	default:
		return true
	}
}
