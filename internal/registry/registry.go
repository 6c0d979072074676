// Package registry implements the opcode registry (§4.1): the mapping from
// opcode name to handler + metadata that the interpreter and compiler
// dispatch against.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/scripterr"
)

// Pending is returned by a handler that suspends cooperatively (§4.2,
// §5): the interpreter awaits it before resuming the stack loop at the
// exact frame that produced it.
type Pending interface {
	Await() (*ast.Value, error)
}

// Outcome is a handler's return value: either a concrete Value (Pending
// is nil) or a Pending that must be awaited for the real Value.
type Outcome struct {
	Value   *ast.Value
	Pending Pending
}

// Done wraps a synchronous result — the overwhelmingly common case.
func Done(v *ast.Value) Outcome { return Outcome{Value: v} }

// Suspend wraps an asynchronous result.
func Suspend(p Pending) Outcome { return Outcome{Pending: p} }

// Handler is a strict opcode's implementation: args are already-evaluated
// Values.
type Handler func(ctx ast.EvalContext, args []*ast.Value) (Outcome, error)

// LazyHandler is a lazy opcode's implementation: args are raw AST
// sub-nodes, left for the handler itself to evaluate selectively (this is
// the mechanism behind if/while/for/and/or/try/lambda/quote/seq — §4.2).
type LazyHandler func(ctx ast.EvalContext, args []ast.Node) (Outcome, error)

// Entry is one registered opcode: its metadata plus exactly one of Handler
// or LazyHandler populated, matching Metadata.Lazy.
type Entry struct {
	Meta    ast.Metadata
	Handler Handler
	Lazy    LazyHandler
}

// Library is a named set of opcodes presented to Register in one batch.
type Library map[string]Entry

// Registry is a concurrency-safe name -> Entry mapping. Multiple registries
// may coexist in one process (the canonical, host-wide registry used by
// the interpreter, and restricted registries built with Subset — §4.1).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register atomically merges library into the registry. Per §4.1, a name
// already present is replaced — last registration wins.
func (r *Registry) Register(lib Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, entry := range lib {
		entry.Meta.Name = name
		r.entries[name] = entry
	}
}

// Lookup returns the entry for name, or UnknownOpcode.
func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, scripterr.New(scripterr.KindUnknownOpcode, "unknown opcode %q", name)
	}
	return e, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns every registered opcode name, sorted, for the surface
// type-definition emitter and for tests/snapshots.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Metadata returns the metadata for name.
func (r *Registry) Metadata(name string) (ast.Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.Meta, ok
}

// Subset builds a new, independent registry containing only the named
// opcodes. The optimizer does not use it: it checks opcode names against
// stdlib.PureOpNames and evaluates against its full registry (§4.6).
func (r *Registry) Subset(names ...string) *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub := New()
	for _, n := range names {
		if e, ok := r.entries[n]; ok {
			sub.entries[n] = e
		}
	}
	return sub
}

// String is a debug dump, useful in tests and the CLI's opcode listing.
func (r *Registry) String() string {
	names := r.Names()
	s := ""
	for _, n := range names {
		e, _ := r.Lookup(n)
		s += fmt.Sprintf("%s (%s)\n", n, e.Meta.Category)
	}
	return s
}
