package ast

// Layout is an editor hint describing how a node-based visual editor
// should render an opcode. It has no effect on evaluation.
type Layout string

const (
	LayoutInfix       Layout = "infix"
	LayoutStandard    Layout = "standard"
	LayoutPrimitive   Layout = "primitive"
	LayoutControlFlow Layout = "control-flow"
)

// Param describes one formal parameter of an opcode for the type
// validator and the surface-type emitter.
type Param struct {
	Name        string
	Type        string // "number", "string", "boolean", "object", "any", "unknown",
	// "Entity", "Capability", union "string|number", or list-suffixed "T[]"
	Optional    bool
	Variadic    bool // true only on the last parameter: accepts zero or more trailing args
	Description string
}

// Metadata describes one registered opcode: its name, typing information,
// and editor hints. Lazy is true when the handler receives raw AST
// sub-nodes instead of evaluated Values (§4.2).
type Metadata struct {
	Name               string
	Category           string
	Description        string
	Layout             Layout
	Parameters         []Param
	GenericParameters  []string
	ReturnType         string
	Lazy               bool
	Slots              []string // editor-only hint, opaque to the engine
}
