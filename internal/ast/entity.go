package ast

// Entity is the host-owned identity record a ScriptContext carries as
// Caller/This: a numeric id plus arbitrary host attributes. The engine
// never inspects an Entity directly — it only ever sees the Value produced
// by ToValue, returned from opcodes like std.caller/std.this.
type Entity struct {
	ID    float64
	Attrs *Object
}

// NewEntity constructs an Entity with the given id and no attributes.
func NewEntity(id float64) *Entity {
	return &Entity{ID: id, Attrs: NewEmptyObject()}
}

// ToValue renders the entity as the object Value scripts observe:
// {"id": ID, ...Attrs}. A nil Entity renders as null.
func (e *Entity) ToValue() *Value {
	if e == nil {
		return Null()
	}
	obj := NewEmptyObject()
	obj.Set("id", Number(e.ID))
	if e.Attrs != nil {
		for _, k := range e.Attrs.Keys() {
			v, _ := e.Attrs.Get(k)
			obj.Set(k, v)
		}
	}
	return ValueFromObject(obj)
}

// Capability is an opaque token (e.g. a permission grant or handle) minted
// by the host and passed through scripts without being forgeable: scripts
// can hold, compare and pass capabilities but cannot construct one from
// primitive values.
type Capability struct {
	ID    string
	Owner *Entity
}

// NewCapability mints a capability token. Callers (host opcodes) are
// responsible for generating a suitably unpredictable ID.
func NewCapability(id string, owner *Entity) *Capability {
	return &Capability{ID: id, Owner: owner}
}
