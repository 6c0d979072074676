// Package listlib registers the list.* opcodes (§4.7): mutating ops
// (push/pop/shift/unshift/splice/sort/reverse) operate in place on the
// shared backing List; non-mutating ops (slice/map/filter/find/...)
// return new lists, keeping in-place and value-returning list builtins
// clearly distinct by name.
package listlib

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

func asList(op string, v *ast.Value) (*ast.List, error) {
	if v.Kind() != ast.KindList {
		return nil, scripterr.New(scripterr.KindArgumentType, "%s: expected list, got %s", op, v.Kind())
	}
	return v.List(), nil
}

func newHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	return registry.Done(ast.ValueFromList(ast.NewListOf(args...))), nil
}

func pushHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.push", args, 2)
	if err != nil {
		return registry.Outcome{}, err
	}
	l.Push(args[1])
	return registry.Done(ast.Number(float64(l.Len()))), nil
}

func popHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.pop", args, 1)
	if err != nil {
		return registry.Outcome{}, err
	}
	v, ok := l.Pop()
	if !ok {
		return registry.Done(ast.Null()), nil
	}
	return registry.Done(v), nil
}

func shiftHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.shift", args, 1)
	if err != nil {
		return registry.Outcome{}, err
	}
	v, ok := l.Shift()
	if !ok {
		return registry.Done(ast.Null()), nil
	}
	return registry.Done(v), nil
}

func unshiftHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.unshift", args, 2)
	if err != nil {
		return registry.Outcome{}, err
	}
	l.Unshift(args[1])
	return registry.Done(ast.Number(float64(l.Len()))), nil
}

func spliceHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.splice", args, 3)
	if err != nil {
		return registry.Outcome{}, err
	}
	start := int(args[1].Number())
	count := int(args[2].Number())
	removed := l.Splice(start, count, args[3:]...)
	return registry.Done(ast.ValueFromList(ast.NewListOf(removed...))), nil
}

func reverseHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.reverse", args, 1)
	if err != nil {
		return registry.Outcome{}, err
	}
	l.Reverse()
	return registry.Done(ast.ValueFromList(l)), nil
}

func sortHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.sort", args, 1)
	if err != nil {
		return registry.Outcome{}, err
	}
	l.Sort(func(a, b *ast.Value) bool {
		if a.Kind() == ast.KindNumber && b.Kind() == ast.KindNumber {
			return a.Number() < b.Number()
		}
		return a.Str() < b.Str()
	})
	return registry.Done(ast.ValueFromList(l)), nil
}

func lenHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.len", args, 1)
	if err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.Number(float64(l.Len()))), nil
}

func getHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.get", args, 2)
	if err != nil {
		return registry.Outcome{}, err
	}
	v, ok := l.Get(int(args[1].Number()))
	if !ok {
		return registry.Done(ast.Null()), nil
	}
	return registry.Done(v), nil
}

func setHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.set", args, 3)
	if err != nil {
		return registry.Outcome{}, err
	}
	l.Set(int(args[1].Number()), args[2])
	return registry.Done(ast.ValueFromList(l)), nil
}

func sliceNonMutating(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	l, err := requireList("list.slice", args, 1)
	if err != nil {
		return registry.Outcome{}, err
	}
	elems := l.Elements()
	start, end := 0, len(elems)
	if len(args) > 1 {
		start = clampIndex(int(args[1].Number()), len(elems))
	}
	if len(args) > 2 {
		end = clampIndex(int(args[2].Number()), len(elems))
	}
	if end < start {
		end = start
	}
	return registry.Done(ast.ValueFromList(ast.NewListOf(elems[start:end]...))), nil
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

// findHandler implements the non-mutating list.find: a lambda predicate is
// invoked per element via the given apply callback (wired from corelib to
// avoid an import cycle with the interpreter); returns null on no match
// (§4.7, §8 boundary behavior).
type ApplyFunc func(ctx ast.EvalContext, fn *ast.Value, args []*ast.Value) (*ast.Value, error)

// NewFindHandler builds list.find against the given apply callback — kept
// as a constructor rather than a package-level var so Register can wire it
// without a global.
func NewFindHandler(apply ApplyFunc) registry.Handler {
	return func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		l, err := requireList("list.find", args, 2)
		if err != nil {
			return registry.Outcome{}, err
		}
		for _, e := range l.Elements() {
			v, err := apply(ctx, args[1], []*ast.Value{e})
			if err != nil {
				return registry.Outcome{}, err
			}
			if v.Truthy() {
				return registry.Done(e), nil
			}
		}
		return registry.Done(ast.Null()), nil
	}
}

// NewMapHandler builds the non-mutating list.map against apply.
func NewMapHandler(apply ApplyFunc) registry.Handler {
	return func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		l, err := requireList("list.map", args, 2)
		if err != nil {
			return registry.Outcome{}, err
		}
		elems := l.Elements()
		out := make([]*ast.Value, len(elems))
		for i, e := range elems {
			v, err := apply(ctx, args[1], []*ast.Value{e, ast.Number(float64(i))})
			if err != nil {
				return registry.Outcome{}, err
			}
			out[i] = v
		}
		return registry.Done(ast.ValueFromList(ast.NewListOf(out...))), nil
	}
}

// NewFilterHandler builds the non-mutating list.filter against apply.
func NewFilterHandler(apply ApplyFunc) registry.Handler {
	return func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		l, err := requireList("list.filter", args, 2)
		if err != nil {
			return registry.Outcome{}, err
		}
		var out []*ast.Value
		for i, e := range l.Elements() {
			v, err := apply(ctx, args[1], []*ast.Value{e, ast.Number(float64(i))})
			if err != nil {
				return registry.Outcome{}, err
			}
			if v.Truthy() {
				out = append(out, e)
			}
		}
		return registry.Done(ast.ValueFromList(ast.NewListOf(out...))), nil
	}
}

func requireList(op string, args []*ast.Value, n int) (*ast.List, error) {
	if len(args) < n {
		return nil, scripterr.New(scripterr.KindArgumentCount, "%s: expected at least %d argument(s), got %d", op, n, len(args))
	}
	return asList(op, args[0])
}

func meta(name string, ret string, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "list", Layout: ast.LayoutStandard, Parameters: params, ReturnType: ret}
}

// Register adds the list.* library to r. apply wires the higher-order ops
// (find/map/filter) to the interpreter's lambda-invocation mechanism.
func Register(r *registry.Registry, apply ApplyFunc) {
	listParam := ast.Param{Name: "list", Type: "any[]"}
	r.Register(registry.Library{
		"list.new":     {Meta: ast.Metadata{Name: "list.new", Category: "list", Parameters: []ast.Param{{Name: "values", Type: "any", Variadic: true}}, ReturnType: "any[]"}, Handler: newHandler},
		"list.push":    {Meta: meta("list.push", "number", listParam, ast.Param{Name: "v", Type: "any"}), Handler: pushHandler},
		"list.pop":     {Meta: meta("list.pop", "any", listParam), Handler: popHandler},
		"list.shift":   {Meta: meta("list.shift", "any", listParam), Handler: shiftHandler},
		"list.unshift": {Meta: meta("list.unshift", "number", listParam, ast.Param{Name: "v", Type: "any"}), Handler: unshiftHandler},
		"list.splice":  {Meta: meta("list.splice", "any[]", listParam, ast.Param{Name: "start", Type: "number"}, ast.Param{Name: "count", Type: "number"}, ast.Param{Name: "items", Type: "any", Variadic: true}), Handler: spliceHandler},
		"list.reverse": {Meta: meta("list.reverse", "any[]", listParam), Handler: reverseHandler},
		"list.sort":    {Meta: meta("list.sort", "any[]", listParam), Handler: sortHandler},
		"list.len":     {Meta: meta("list.len", "number", listParam), Handler: lenHandler},
		"list.get":     {Meta: meta("list.get", "any", listParam, ast.Param{Name: "index", Type: "number"}), Handler: getHandler},
		"list.set":     {Meta: meta("list.set", "any[]", listParam, ast.Param{Name: "index", Type: "number"}, ast.Param{Name: "v", Type: "any"}), Handler: setHandler},
		"list.slice":   {Meta: meta("list.slice", "any[]", listParam, ast.Param{Name: "start", Type: "number", Optional: true}, ast.Param{Name: "end", Type: "number", Optional: true}), Handler: sliceNonMutating},
		"list.find":    {Meta: meta("list.find", "any", listParam, ast.Param{Name: "fn", Type: "lambda"}), Handler: NewFindHandler(apply)},
		"list.map":     {Meta: meta("list.map", "any[]", listParam, ast.Param{Name: "fn", Type: "lambda"}), Handler: NewMapHandler(apply)},
		"list.filter":  {Meta: meta("list.filter", "any[]", listParam, ast.Param{Name: "fn", Type: "lambda"}), Handler: NewFilterHandler(apply)},
	})
}
