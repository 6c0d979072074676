// Package mathlib registers the arithmetic and math.* opcodes (§4.7):
// left-to-right folding for +, -, *, /, %, right-to-left for ^ (power
// tower), chained comparisons, and the math.* library built on the Go
// standard math package.
package mathlib

import (
	"math"
	"math/rand"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/registry"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

func numberOp(name string, fold func(acc, v float64) float64) registry.Handler {
	return func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		if err := requireMinArgs(name, args, 2); err != nil {
			return registry.Outcome{}, err
		}
		acc, err := asNumber(name, args[0])
		if err != nil {
			return registry.Outcome{}, err
		}
		for _, a := range args[1:] {
			n, err := asNumber(name, a)
			if err != nil {
				return registry.Outcome{}, err
			}
			acc = fold(acc, n)
		}
		return registry.Done(ast.Number(acc)), nil
	}
}

// powerTower folds right-to-left: a ^ b ^ c = a ^ (b ^ c).
func powerTower(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if err := requireMinArgs("^", args, 2); err != nil {
		return registry.Outcome{}, err
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		n, err := asNumber("^", a)
		if err != nil {
			return registry.Outcome{}, err
		}
		nums[i] = n
	}
	acc := nums[len(nums)-1]
	for i := len(nums) - 2; i >= 0; i-- {
		acc = math.Pow(nums[i], acc)
	}
	return registry.Done(ast.Number(acc)), nil
}

func chainedComparison(name string, cmp func(a, b float64) bool) registry.Handler {
	return func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		if len(args) < 2 {
			// Vacuous truth for length 0 or 1 (§8 boundary behavior).
			return registry.Done(ast.Bool(true)), nil
		}
		prev, err := asNumber(name, args[0])
		if err != nil {
			return registry.Outcome{}, err
		}
		for _, a := range args[1:] {
			next, err := asNumber(name, a)
			if err != nil {
				return registry.Outcome{}, err
			}
			if !cmp(prev, next) {
				return registry.Done(ast.Bool(false)), nil
			}
			prev = next
		}
		return registry.Done(ast.Bool(true)), nil
	}
}

func asNumber(op string, v *ast.Value) (float64, error) {
	if v.Kind() != ast.KindNumber {
		return 0, scripterr.New(scripterr.KindArgumentType, "%s: expected number, got %s", op, v.Kind())
	}
	return v.Number(), nil
}

func requireMinArgs(op string, args []*ast.Value, n int) error {
	if len(args) < n {
		return scripterr.New(scripterr.KindArgumentCount, "%s: expected at least %d argument(s), got %d", op, n, len(args))
	}
	return nil
}

func mathOne(name string, fn func(float64) float64) registry.Handler {
	return func(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
		if err := requireMinArgs(name, args, 1); err != nil {
			return registry.Outcome{}, err
		}
		n, err := asNumber(name, args[0])
		if err != nil {
			return registry.Outcome{}, err
		}
		return registry.Done(ast.Number(fn(n))), nil
	}
}

func randomHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if err := requireMinArgs("random", args, 2); err != nil {
		return registry.Outcome{}, err
	}
	min, err := asNumber("random", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	max, err := asNumber("random", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	if min > max {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "random: min (%g) must not exceed max (%g)", min, max)
	}
	if isInt(min) && isInt(max) {
		lo, hi := int64(min), int64(max)
		return registry.Done(ast.Number(float64(lo + rand.Int63n(hi-lo+1)))), nil
	}
	return registry.Done(ast.Number(min + rand.Float64()*(max-min))), nil
}

func isInt(f float64) bool { return f == math.Trunc(f) }

func meta(name string, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "math", Layout: ast.LayoutInfix, Parameters: params, ReturnType: "number"}
}

// Register adds the arithmetic operators, chained comparisons, and math.*
// library to r.
func Register(r *registry.Registry) {
	numParam := ast.Param{Name: "n", Type: "number"}
	variadic := ast.Param{Name: "values", Type: "number", Variadic: true}

	r.Register(registry.Library{
		"add": {Meta: meta("add", numParam, variadic), Handler: numberOp("add", func(a, b float64) float64 { return a + b })},
		"sub": {Meta: meta("sub", numParam, variadic), Handler: numberOp("sub", func(a, b float64) float64 { return a - b })},
		"mul": {Meta: meta("mul", numParam, variadic), Handler: numberOp("mul", func(a, b float64) float64 { return a * b })},
		"div": {Meta: meta("div", numParam, variadic), Handler: numberOp("div", func(a, b float64) float64 { return a / b })},
		"mod": {Meta: meta("mod", numParam, variadic), Handler: numberOp("mod", math.Mod)},
		"^":   {Meta: meta("^", numParam, variadic), Handler: powerTower},

		"<":  {Meta: meta("<", numParam, variadic), Handler: chainedComparison("<", func(a, b float64) bool { return a < b })},
		"<=": {Meta: meta("<=", numParam, variadic), Handler: chainedComparison("<=", func(a, b float64) bool { return a <= b })},
		">":  {Meta: meta(">", numParam, variadic), Handler: chainedComparison(">", func(a, b float64) bool { return a > b })},
		">=": {Meta: meta(">=", numParam, variadic), Handler: chainedComparison(">=", func(a, b float64) bool { return a >= b })},

		"math.sqrt":  {Meta: meta("math.sqrt", numParam), Handler: mathOne("math.sqrt", math.Sqrt)},
		"math.abs":   {Meta: meta("math.abs", numParam), Handler: mathOne("math.abs", math.Abs)},
		"math.floor": {Meta: meta("math.floor", numParam), Handler: mathOne("math.floor", math.Floor)},
		"math.ceil":  {Meta: meta("math.ceil", numParam), Handler: mathOne("math.ceil", math.Ceil)},
		"math.round": {Meta: meta("math.round", numParam), Handler: mathOne("math.round", math.Round)},
		"math.sin":   {Meta: meta("math.sin", numParam), Handler: mathOne("math.sin", math.Sin)},
		"math.cos":   {Meta: meta("math.cos", numParam), Handler: mathOne("math.cos", math.Cos)},
		"math.log":   {Meta: meta("math.log", numParam), Handler: mathOne("math.log", math.Log)},
		"math.min": {Meta: meta("math.min", numParam, variadic), Handler: numberOp("math.min", math.Min)},
		"math.max": {Meta: meta("math.max", numParam, variadic), Handler: numberOp("math.max", math.Max)},
		"random": {
			Meta:    meta("random", ast.Param{Name: "min", Type: "number"}, ast.Param{Name: "max", Type: "number"}),
			Handler: randomHandler,
		},
	})
}
