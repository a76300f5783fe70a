// Package treedoc provides a mutable, tree-structured document abstraction
// for the update-modifier engine. Documents are ordered trees of typed
// elements; every element is a stable heap handle, so a reference captured
// during a scan stays valid while sibling elements are removed around it.
package treedoc

// Type identifies the value kind held by an element.
type Type int

const (
	TypeNull Type = iota
	TypeBool
	TypeInt
	TypeDouble
	TypeString
	TypeObject
	TypeArray
)

// String returns a human-readable name for the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Element is a single node in a document tree: a field name, a type, and
// either a scalar value or an ordered list of children. Children are kept in
// a doubly-linked sibling list so that removing one child never invalidates
// handles to the others.
type Element struct {
	name string
	typ  Type

	parent     *Element
	prev, next *Element
	firstChild *Element
	lastChild  *Element

	str string
	i64 int64
	f64 float64
	b   bool
}

// Document owns a tree of elements rooted at an unnamed object.
type Document struct {
	root *Element
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{root: NewObject("")}
}

// Root returns the document's root object element.
func (d *Document) Root() *Element {
	return d.root
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.Copy("")}
}

// NewObject creates a detached object element with no children.
func NewObject(name string) *Element {
	return &Element{name: name, typ: TypeObject}
}

// NewArray creates a detached array element with no children.
func NewArray(name string) *Element {
	return &Element{name: name, typ: TypeArray}
}

// NewString creates a detached string element.
func NewString(name, value string) *Element {
	return &Element{name: name, typ: TypeString, str: value}
}

// NewInt creates a detached integer element.
func NewInt(name string, value int64) *Element {
	return &Element{name: name, typ: TypeInt, i64: value}
}

// NewDouble creates a detached floating-point element.
func NewDouble(name string, value float64) *Element {
	return &Element{name: name, typ: TypeDouble, f64: value}
}

// NewBool creates a detached boolean element.
func NewBool(name string, value bool) *Element {
	return &Element{name: name, typ: TypeBool, b: value}
}

// NewNull creates a detached null element.
func NewNull(name string) *Element {
	return &Element{name: name, typ: TypeNull}
}
