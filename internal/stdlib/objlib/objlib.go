// Package objlib registers the obj.* opcodes (§4.7). obj.get on a missing
// key returns the optional default or null — never an error — so scripts
// don't need an obj.has guard before every read.
package objlib

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

// DisallowedKeys is the set of reflective/prototype-escaping attribute
// names forbidden on every object/list key access, shared with the
// compiler's compile-time security filter so both evaluation paths agree
// (§4.3).
var DisallowedKeys = map[string]bool{
	"__proto__":   true,
	"prototype":   true,
	"constructor": true,
	"__class__":   true,
}

func checkKey(key string) error {
	if DisallowedKeys[key] {
		return scripterr.New(scripterr.KindDisallowedKey, "access to %q is not permitted", key).WithContext("key", key)
	}
	return nil
}

func asObject(op string, v *ast.Value) (*ast.Object, error) {
	if v.Kind() != ast.KindObject {
		return nil, scripterr.New(scripterr.KindArgumentType, "%s: expected object, got %s", op, v.Kind())
	}
	return v.Object(), nil
}

func asKeyString(op string, v *ast.Value) (string, error) {
	if v.Kind() != ast.KindString {
		return "", scripterr.New(scripterr.KindArgumentType, "%s: key must be a string, got %s", op, v.Kind())
	}
	return v.Str(), nil
}

func newHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	obj := ast.NewEmptyObject()
	for i := 0; i+1 < len(args); i += 2 {
		k, err := asKeyString("obj.new", args[i])
		if err != nil {
			return registry.Outcome{}, err
		}
		if err := checkKey(k); err != nil {
			return registry.Outcome{}, err
		}
		obj.Set(k, args[i+1])
	}
	return registry.Done(ast.ValueFromObject(obj)), nil
}

func getHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "obj.get: expected at least 2 arguments, got %d", len(args))
	}
	o, err := asObject("obj.get", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	k, err := asKeyString("obj.get", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	if err := checkKey(k); err != nil {
		return registry.Outcome{}, err
	}
	if v, ok := o.Get(k); ok {
		return registry.Done(v), nil
	}
	if len(args) > 2 {
		return registry.Done(args[2]), nil
	}
	return registry.Done(ast.Null()), nil
}

func setHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 3 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "obj.set: expected 3 arguments, got %d", len(args))
	}
	o, err := asObject("obj.set", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	k, err := asKeyString("obj.set", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	if err := checkKey(k); err != nil {
		return registry.Outcome{}, err
	}
	o.Set(k, args[2])
	return registry.Done(ast.ValueFromObject(o)), nil
}

func hasHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "obj.has: expected 2 arguments, got %d", len(args))
	}
	o, err := asObject("obj.has", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	k, err := asKeyString("obj.has", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	if err := checkKey(k); err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.Bool(o.Has(k))), nil
}

func delHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "obj.del: expected 2 arguments, got %d", len(args))
	}
	o, err := asObject("obj.del", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	k, err := asKeyString("obj.del", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	if err := checkKey(k); err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.Bool(o.Delete(k))), nil
}

func keysHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "obj.keys: expected 1 argument, got 0")
	}
	o, err := asObject("obj.keys", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	keys := o.Keys()
	elems := make([]*ast.Value, len(keys))
	for i, k := range keys {
		elems[i] = ast.String(k)
	}
	return registry.Done(ast.ValueFromList(ast.NewListOf(elems...))), nil
}

func meta(name, ret string, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "obj", Layout: ast.LayoutStandard, Parameters: params, ReturnType: ret}
}

// Register adds the obj.* library to r.
func Register(r *registry.Registry) {
	objParam := ast.Param{Name: "obj", Type: "object"}
	keyParam := ast.Param{Name: "key", Type: "string"}
	r.Register(registry.Library{
		"obj.new": {Meta: ast.Metadata{Name: "obj.new", Category: "obj", Parameters: []ast.Param{{Name: "entries", Type: "any", Variadic: true}}, ReturnType: "object"}, Handler: newHandler},
		"obj.get": {Meta: meta("obj.get", "any", objParam, keyParam, ast.Param{Name: "default", Type: "any", Optional: true}), Handler: getHandler},
		"obj.set": {Meta: meta("obj.set", "object", objParam, keyParam, ast.Param{Name: "v", Type: "any"}), Handler: setHandler},
		"obj.has": {Meta: meta("obj.has", "boolean", objParam, keyParam), Handler: hasHandler},
		"obj.del": {Meta: meta("obj.del", "boolean", objParam, keyParam), Handler: delHandler},
		"obj.keys": {Meta: meta("obj.keys", "string[]", objParam), Handler: keysHandler},
	})
}
