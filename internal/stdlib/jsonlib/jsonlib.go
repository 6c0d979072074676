// Package jsonlib registers the json.* opcodes (§4.7, §6 "Values are
// serializable to JSON"). json.stringify/parse convert whole Values
// to/from JSON text via encoding/json; json.get/set/pretty operate on raw
// JSON text by path using gjson/sjson/pretty, path-addressable rather
// than whole-document only.
package jsonlib

import (
	"encoding/json"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ToGo converts a Value to a plain Go value suitable for encoding/json.
// Lambdas and capabilities are not serializable (§3) and fail.
func ToGo(v *ast.Value) (any, error) {
	switch v.Kind() {
	case ast.KindNull:
		return nil, nil
	case ast.KindBool:
		return v.Bool(), nil
	case ast.KindNumber:
		return v.Number(), nil
	case ast.KindString:
		return v.Str(), nil
	case ast.KindList:
		elems := v.List().Elements()
		out := make([]any, len(elems))
		for i, e := range elems {
			g, err := ToGo(e)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case ast.KindObject:
		obj := v.Object()
		out := make(map[string]any, obj.Len())
		for _, k := range obj.Keys() {
			ev, _ := obj.Get(k)
			g, err := ToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k] = g
		}
		return out, nil
	default:
		return nil, scripterr.New(scripterr.KindArgumentType, "json.stringify: %s values are not JSON-serializable", v.Kind())
	}
}

// FromGo converts a decoded encoding/json value back into a Value.
func FromGo(g any) *ast.Value {
	switch x := g.(type) {
	case nil:
		return ast.Null()
	case bool:
		return ast.Bool(x)
	case float64:
		return ast.Number(x)
	case string:
		return ast.String(x)
	case []any:
		elems := make([]*ast.Value, len(x))
		for i, e := range x {
			elems[i] = FromGo(e)
		}
		return ast.ValueFromList(ast.NewListOf(elems...))
	case map[string]any:
		obj := ast.NewEmptyObject()
		for k, v := range x {
			obj.Set(k, FromGo(v))
		}
		return ast.ValueFromObject(obj)
	default:
		return ast.Null()
	}
}

func stringifyHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "json.stringify: expected 1 argument, got 0")
	}
	g, err := ToGo(args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	b, merr := json.Marshal(g)
	if merr != nil {
		return registry.Outcome{}, scripterr.New(scripterr.KindCustom, "json.stringify: %s", merr)
	}
	return registry.Done(ast.String(string(b))), nil
}

func parseHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 || args[0].Kind() != ast.KindString {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "json.parse: expected a string argument")
	}
	var g any
	if err := json.Unmarshal([]byte(args[0].Str()), &g); err != nil {
		return registry.Outcome{}, scripterr.New(scripterr.KindCustom, "json.parse: %s", err)
	}
	return registry.Done(FromGo(g)), nil
}

func getHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "json.get: expected 2 arguments, got %d", len(args))
	}
	doc, path := args[0].Str(), args[1].Str()
	res := gjson.Get(doc, path)
	if !res.Exists() {
		return registry.Done(ast.Null()), nil
	}
	return registry.Done(FromGo(res.Value())), nil
}

func setHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 3 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "json.set: expected 3 arguments, got %d", len(args))
	}
	doc, path := args[0].Str(), args[1].Str()
	g, err := ToGo(args[2])
	if err != nil {
		return registry.Outcome{}, err
	}
	out, serr := sjson.Set(doc, path, g)
	if serr != nil {
		return registry.Outcome{}, scripterr.New(scripterr.KindCustom, "json.set: %s", serr)
	}
	return registry.Done(ast.String(out)), nil
}

func prettyHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 || args[0].Kind() != ast.KindString {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "json.pretty: expected a string argument")
	}
	return registry.Done(ast.String(string(pretty.Pretty([]byte(args[0].Str()))))), nil
}

func meta(name, ret string, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "json", Layout: ast.LayoutStandard, Parameters: params, ReturnType: ret}
}

// Register adds the json.* library to r.
func Register(r *registry.Registry) {
	anyParam := ast.Param{Name: "v", Type: "any"}
	strParam := ast.Param{Name: "s", Type: "string"}
	pathParam := ast.Param{Name: "path", Type: "string"}
	r.Register(registry.Library{
		"json.stringify": {Meta: meta("json.stringify", "string", anyParam), Handler: stringifyHandler},
		"json.parse":     {Meta: meta("json.parse", "any", strParam), Handler: parseHandler},
		"json.get":       {Meta: meta("json.get", "any", strParam, pathParam), Handler: getHandler},
		"json.set":       {Meta: meta("json.set", "string", strParam, pathParam, anyParam), Handler: setHandler},
		"json.pretty":    {Meta: meta("json.pretty", "string", strParam), Handler: prettyHandler},
	})
}
