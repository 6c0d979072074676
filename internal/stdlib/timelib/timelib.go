// Package timelib registers the time.* opcodes (§4.7): ISO-8601 strings
// and millisecond timestamps, built on the Go standard time package, with
// date/time construction and arithmetic built-ins operating on this
// engine's ISO-8601-string representation.
package timelib

import (
	"time"

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

func parseISO(op, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, scripterr.New(scripterr.KindArgumentType, "%s: %q is not a valid ISO-8601 timestamp", op, s)
	}
	return t, nil
}

func nowHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	return registry.Done(ast.String(time.Now().UTC().Format(time.RFC3339))), nil
}

func nowMsHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	return registry.Done(ast.Number(float64(time.Now().UnixMilli()))), nil
}

func toMsHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "time.toMillis: expected 1 argument, got 0")
	}
	s, err := asString("time.toMillis", args[0])
	if err != nil {
		return registry.Outcome{}, err
	}
	t, err := parseISO("time.toMillis", s)
	if err != nil {
		return registry.Outcome{}, err
	}
	return registry.Done(ast.Number(float64(t.UnixMilli()))), nil
}

func fromMsHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 1 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "time.fromMillis: expected 1 argument, got 0")
	}
	if args[0].Kind() != ast.KindNumber {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "time.fromMillis: expected number, got %s", args[0].Kind())
	}
	ms := int64(args[0].Number())
	t := time.UnixMilli(ms).UTC()
	return registry.Done(ast.String(t.Format(time.RFC3339))), nil
}

// unitTable maps singular and plural unit names to the AddDate/Add
// adjustment they apply, matching §4.7's "singular/plural unit names for
// year/month/day/hour/minute/second" requirement.
var unitTable = map[string]func(t time.Time, n int) time.Time{
	"year":    func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) },
	"years":   func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) },
	"month":   func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) },
	"months":  func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) },
	"day":     func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) },
	"days":    func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) },
	"hour":    func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Hour) },
	"hours":   func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Hour) },
	"minute":  func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Minute) },
	"minutes": func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Minute) },
	"second":  func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Second) },
	"seconds": func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Second) },
}

// offsetHandler implements time.offset(amount, unit, base?): unknown units
// fail with UnknownUnit (§4.7, §8 boundary behavior).
func offsetHandler(ctx ast.EvalContext, args []*ast.Value) (registry.Outcome, error) {
	if len(args) < 2 {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentCount, "time.offset: expected at least 2 arguments, got %d", len(args))
	}
	if args[0].Kind() != ast.KindNumber {
		return registry.Outcome{}, scripterr.New(scripterr.KindArgumentType, "time.offset: amount must be a number, got %s", args[0].Kind())
	}
	unit, err := asString("time.offset", args[1])
	if err != nil {
		return registry.Outcome{}, err
	}
	adjust, ok := unitTable[unit]
	if !ok {
		return registry.Outcome{}, scripterr.New(scripterr.KindUnknownUnit, "time.offset: unknown unit %q", unit)
	}
	base := time.Now().UTC()
	if len(args) > 2 {
		baseStr, err := asString("time.offset", args[2])
		if err != nil {
			return registry.Outcome{}, err
		}
		base, err = parseISO("time.offset", baseStr)
		if err != nil {
			return registry.Outcome{}, err
		}
	}
	result := adjust(base, int(args[0].Number()))
	return registry.Done(ast.String(result.Format(time.RFC3339))), nil
}

func meta(name, ret string, params ...ast.Param) ast.Metadata {
	return ast.Metadata{Name: name, Category: "time", Layout: ast.LayoutStandard, Parameters: params, ReturnType: ret}
}

// Register adds the time.* library to r.
func Register(r *registry.Registry) {
	isoParam := ast.Param{Name: "iso", Type: "string"}
	r.Register(registry.Library{
		"time.now":        {Meta: meta("time.now", "string"), Handler: nowHandler},
		"time.nowMillis":  {Meta: meta("time.nowMillis", "number"), Handler: nowMsHandler},
		"time.toMillis":   {Meta: meta("time.toMillis", "number", isoParam), Handler: toMsHandler},
		"time.fromMillis": {Meta: meta("time.fromMillis", "string", ast.Param{Name: "ms", Type: "number"}), Handler: fromMsHandler},
		"time.offset": {
			Meta: meta("time.offset", "string",
				ast.Param{Name: "amount", Type: "number"},
				ast.Param{Name: "unit", Type: "string"},
				ast.Param{Name: "base", Type: "string", Optional: true},
			),
			Handler: offsetHandler,
		},
	})
}
