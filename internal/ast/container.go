package ast

// List is the backing store for a KindList Value. Lists are shared by
// reference: every Value wrapping the same *List observes the same
// mutations.
type List struct {
	elems []*Value
}

// NewEmptyList returns an empty, mutable list.
func NewEmptyList() *List { return &List{} }

// NewListOf returns a list pre-populated with elems (copied into the
// backing slice, so later appends to the caller's slice don't alias it).
func NewListOf(elems ...*Value) *List {
	l := &List{elems: make([]*Value, len(elems))}
	copy(l.elems, elems)
	return l
}

// Len returns the number of elements.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.elems)
}

// Get returns the element at index, or nil/false if out of bounds.
func (l *List) Get(index int) (*Value, bool) {
	if l == nil || index < 0 || index >= len(l.elems) {
		return nil, false
	}
	return l.elems[index], true
}

// Set overwrites the element at index, returning false if out of bounds.
func (l *List) Set(index int, v *Value) bool {
	if l == nil || index < 0 || index >= len(l.elems) {
		return false
	}
	l.elems[index] = v
	return true
}

// Push appends an element (list.push).
func (l *List) Push(v *Value) { l.elems = append(l.elems, v) }

// Pop removes and returns the last element (list.pop).
func (l *List) Pop() (*Value, bool) {
	if len(l.elems) == 0 {
		return nil, false
	}
	v := l.elems[len(l.elems)-1]
	l.elems = l.elems[:len(l.elems)-1]
	return v, true
}

// Shift removes and returns the first element (list.shift).
func (l *List) Shift() (*Value, bool) {
	if len(l.elems) == 0 {
		return nil, false
	}
	v := l.elems[0]
	l.elems = l.elems[1:]
	return v, true
}

// Unshift prepends an element (list.unshift).
func (l *List) Unshift(v *Value) {
	l.elems = append([]*Value{v}, l.elems...)
}

// Splice removes count elements starting at start and inserts ins in their
// place, returning the removed elements (list.splice).
func (l *List) Splice(start, count int, ins ...*Value) []*Value {
	if start < 0 {
		start = 0
	}
	if start > len(l.elems) {
		start = len(l.elems)
	}
	end := start + count
	if end > len(l.elems) {
		end = len(l.elems)
	}
	removed := append([]*Value(nil), l.elems[start:end]...)
	tail := append([]*Value(nil), l.elems[end:]...)
	l.elems = append(l.elems[:start], append(ins, tail...)...)
	return removed
}

// Reverse reverses the list in place (list.reverse).
func (l *List) Reverse() {
	for i, j := 0, len(l.elems)-1; i < j; i, j = i+1, j-1 {
		l.elems[i], l.elems[j] = l.elems[j], l.elems[i]
	}
}

// Sort sorts the list in place using less as the comparator (list.sort).
func (l *List) Sort(less func(a, b *Value) bool) {
	// Simple insertion sort: lists are small and scripts are gas-metered,
	// so O(n^2) is acceptable and keeps the comparator callback simple
	// (no need to satisfy sort.Interface).
	for i := 1; i < len(l.elems); i++ {
		for j := i; j > 0 && less(l.elems[j], l.elems[j-1]); j-- {
			l.elems[j], l.elems[j-1] = l.elems[j-1], l.elems[j]
		}
	}
}

// Elements returns a snapshot slice of the elements (safe to range over
// while the caller may also mutate the list).
func (l *List) Elements() []*Value {
	if l == nil {
		return nil
	}
	out := make([]*Value, len(l.elems))
	copy(out, l.elems)
	return out
}

// Object is the backing store for a KindObject Value: an insertion-order
// preserving string-keyed map, shared by reference like List.
type Object struct {
	entries map[string]*Value
	keys    []string
}

// NewEmptyObject returns an empty, mutable object.
func NewEmptyObject() *Object {
	return &Object{entries: make(map[string]*Value)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.entries[key]
	return v, ok
}

// Set inserts or overwrites key, appending it to the key order on first
// insertion (obj.set / obj.new).
func (o *Object) Set(key string, v *Value) {
	if _, exists := o.entries[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = v
}

// Delete removes key, returning whether it was present (obj.del).
func (o *Object) Delete(key string) bool {
	if _, exists := o.entries[key]; !exists {
		return false
	}
	delete(o.entries, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether key is present (obj.has).
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.entries[key]
	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}
