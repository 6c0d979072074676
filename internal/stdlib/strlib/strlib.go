// Package strlib registers the str.* opcodes (§4.3/§4.7) built on the Go
// standard strings package: upper/lower/trim/split/replace/slice/indexOf/
// contains/len/toNumber, each translated to the opcode calling
// convention.
package strlib

import (
	"strconv"
	"strings"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

func asString(op string, v *ast.Value) (string, error) {
	if v.Kind() != ast.KindString {
		return "", scripterr.New(scripterr.KindArgumentType, "%s: expected string, got %s", op, v.Kind())
	}
	return v.Str(), nil
}

func concatHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	var sb strings.Builder
	for _, a := range args {
		if a.Kind() == ast.KindString {
			sb.WriteString(a.Str())
		} else {
			sb.WriteString(a.GoString())
		}
	}
	return registry.Done(ast.String(sb.String())), nil
}

func oneArgString(name string, fn func(string) string) registry.Handler {
	return func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		if len(args) < 1 {
			return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "%s: expected 1 argument, got 0", name)
		}
		s, err := asString(name, args[0])
		if err != nil {
			return registry.Outcome{}, err
		}
		return registry.Done(ast.String(fn(s))), nil
	}
}

func splitHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "str.split: expected 2 arguments, got %d", len(args))
	}
	s, err := asString("str.split", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	sep, err := asString("str.split", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	parts := strings.Split(s, sep)
	elems := make([]*ast.Value, len(parts))
	for i, p := range parts {
		elems[i] = ast.String(p)
	}
	return registry.Done(ast.ValueFromList(ast.NewListOf(elems...))), nil
}

func replaceHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 3 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "str.replace: expected 3 arguments, got %d", len(args))
	}
	s, err := asString("str.replace", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	old, err := asString("str.replace", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	repl, err := asString("str.replace", args[2])
	if err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.String(strings.ReplaceAll(s, old, repl))), nil
}

func sliceHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "str.slice: expected at least 2 arguments, got %d", len(args))
	}
	s, err := asString("str.slice", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	runes := []rune(s)
	start := clampIndex(int(args[1].Number()), len(runes))
	end := len(runes)
	if len(args) > 2 {
		end = clampIndex(int(args[2].Number()), len(runes))
	}
	if end < start {
		end = start
	}
	return registry.Done(ast.String(string(runes[start:end]))), nil
}

func clampIndex(i, length int) int {
	if i < 0 {
		i = length + i
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func indexOfHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "str.indexOf: expected 2 arguments, got %d", len(args))
	}
	s, err := asString("str.indexOf", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	sub, err := asString("str.indexOf", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.Number(float64(strings.Index(s, sub)))), nil
}

func containsHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "str.contains: expected 2 arguments, got %d", len(args))
	}
	s, err := asString("str.contains", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	sub, err := asString("str.contains", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.Bool(strings.Contains(s, sub))), nil
}

func lenHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "str.len: expected 1 argument, got 0")
	}
	s, err := asString("str.len", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.Number(float64(len([]rune(s))))), nil
}

func toNumberHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "str.toNumber: expected 1 argument, got 0")
	}
	s, err := asString("str.toNumber", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	n, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if perr != nil {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "str.toNumber: %q is not a valid number", s)
	}
	return registry.Done(ast.Number(n)), nil
}

func meta(name string, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "str", Layout: ast.LayoutStandard, Parameters: params, ReturnType: "string"}
}

// Register adds the str.* library to r.
func Register(r *registry.Registry) {
	strParam := ast.Param{Name: "s", Type: "string"}
	r.Register(registry.Library{
		"str.concat":   {Meta: ast.Metadata{Name: "str.concat", Category: "str", Parameters: []ast.Param{{Name: "values", Type: "any", Variadic: true}}, ReturnType: "string"}, Handler: concatHandler},
		"str.upper":    {Meta: meta("str.upper", strParam), Handler: oneArgString("str.upper", strings.ToUpper)},
		"str.lower":    {Meta: meta("str.lower", strParam), Handler: oneArgString("str.lower", strings.ToLower)},
		"str.trim":     {Meta: meta("str.trim", strParam), Handler: oneArgString("str.trim", strings.TrimSpace)},
		"str.split":    {Meta: ast.Metadata{Name: "str.split", Category: "str", Parameters: []ast.Param{strParam, {Name: "sep", Type: "string"}}, ReturnType: "string[]"}, Handler: splitHandler},
		"str.replace":  {Meta: ast.Metadata{Name: "str.replace", Category: "str", Parameters: []ast.Param{strParam, {Name: "old", Type: "string"}, {Name: "new", Type: "string"}}, ReturnType: "string"}, Handler: replaceHandler},
		"str.slice":    {Meta: ast.Metadata{Name: "str.slice", Category: "str", Parameters: []ast.Param{strParam, {Name: "start", Type: "number"}, {Name: "end", Type: "number", Optional: true}}, ReturnType: "string"}, Handler: sliceHandler},
		"str.indexOf":  {Meta: ast.Metadata{Name: "str.indexOf", Category: "str", Parameters: []ast.Param{strParam, {Name: "sub", Type: "string"}}, ReturnType: "number"}, Handler: indexOfHandler},
		"str.contains": {Meta: ast.Metadata{Name: "str.contains", Category: "str", Parameters: []ast.Param{strParam, {Name: "sub", Type: "string"}}, ReturnType: "boolean"}, Handler: containsHandler},
		"str.len":      {Meta: ast.Metadata{Name: "str.len", Category: "str", Parameters: []ast.Param{strParam}, ReturnType: "number"}, Handler: lenHandler},
		"str.toNumber": {Meta: ast.Metadata{Name: "str.toNumber", Category: "str", Parameters: []ast.Param{strParam}, ReturnType: "number"}, Handler: toNumberHandler},
	})
}
