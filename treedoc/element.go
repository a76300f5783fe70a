package treedoc

import (
	"fmt"
	"strconv"
)

// FieldName returns the element's field name. Array members carry whatever
// name they were created with; the name takes no part in array semantics.
func (e *Element) FieldName() string {
	return e.name
}

// Rename changes the element's field name.
func (e *Element) Rename(name string) {
	e.name = name
}

// Type returns the element's value kind.
func (e *Element) Type() Type {
	return e.typ
}

// Parent returns the element's parent, or nil for a root or detached element.
func (e *Element) Parent() *Element {
	return e.parent
}

// LeftChild returns the first child, or nil.
func (e *Element) LeftChild() *Element {
	return e.firstChild
}

// RightChild returns the last child, or nil.
func (e *Element) RightChild() *Element {
	return e.lastChild
}

// RightSibling returns the next sibling in document order, or nil.
func (e *Element) RightSibling() *Element {
	return e.next
}

// LeftSibling returns the previous sibling in document order, or nil.
func (e *Element) LeftSibling() *Element {
	return e.prev
}

// HasChildren reports whether the element has at least one child.
func (e *Element) HasChildren() bool {
	return e.firstChild != nil
}

// ChildCount returns the number of direct children.
func (e *Element) ChildCount() int {
	n := 0
	for c := e.firstChild; c != nil; c = c.next {
		n++
	}
	return n
}

// ChildNamed returns the first child with the given field name, or nil.
func (e *Element) ChildNamed(name string) *Element {
	for c := e.firstChild; c != nil; c = c.next {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ChildAt returns the i-th child in document order, or nil when out of range.
func (e *Element) ChildAt(i int) *Element {
	if i < 0 {
		return nil
	}
	c := e.firstChild
	for ; c != nil && i > 0; c = c.next {
		i--
	}
	return c
}

// PushBack appends child as the element's last child. The receiver must be an
// object or array, and child must be detached.
func (e *Element) PushBack(child *Element) error {
	if e.typ != TypeObject && e.typ != TypeArray {
		return fmt.Errorf("cannot add children to a %s element", e.typ)
	}
	if child.parent != nil {
		return fmt.Errorf("element %q is already attached", child.name)
	}
	child.parent = e
	child.prev = e.lastChild
	child.next = nil
	if e.lastChild != nil {
		e.lastChild.next = child
	} else {
		e.firstChild = child
	}
	e.lastChild = child
	return nil
}

// Remove detaches the element from its parent. The handle stays valid and
// keeps its value; sibling handles are unaffected.
func (e *Element) Remove() error {
	p := e.parent
	if p == nil {
		return fmt.Errorf("element %q has no parent", e.name)
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		p.firstChild = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		p.lastChild = e.prev
	}
	e.parent, e.prev, e.next = nil, nil, nil
	return nil
}

// Copy returns a detached deep copy of the element under a new field name.
func (e *Element) Copy(name string) *Element {
	cp := &Element{name: name, typ: e.typ, str: e.str, i64: e.i64, f64: e.f64, b: e.b}
	for c := e.firstChild; c != nil; c = c.next {
		// PushBack cannot fail here: cp is a container iff e is, and the
		// copied child is detached.
		_ = cp.PushBack(c.Copy(c.name))
	}
	return cp
}

// SetValue replaces the element's type, value, and children with a deep copy
// of from's, keeping the element's own field name and position.
func (e *Element) SetValue(from *Element) {
	cp := from.Copy(e.name)
	e.typ, e.str, e.i64, e.f64, e.b = cp.typ, cp.str, cp.i64, cp.f64, cp.b
	e.firstChild, e.lastChild = cp.firstChild, cp.lastChild
	for c := e.firstChild; c != nil; c = c.next {
		c.parent = e
	}
}

// BoolValue returns the boolean value; zero for non-bool elements.
func (e *Element) BoolValue() bool {
	return e.b
}

// IntValue returns the integer value; zero for non-int elements.
func (e *Element) IntValue() int64 {
	return e.i64
}

// DoubleValue returns the floating-point value; zero for non-double elements.
func (e *Element) DoubleValue() float64 {
	return e.f64
}

// StringValue returns the string value; empty for non-string elements.
func (e *Element) StringValue() string {
	return e.str
}

// Value returns the scalar value as a Go value: nil for null, and nil for
// containers, which must be walked through their children.
func (e *Element) Value() any {
	switch e.typ {
	case TypeBool:
		return e.b
	case TypeInt:
		return e.i64
	case TypeDouble:
		return e.f64
	case TypeString:
		return e.str
	default:
		return nil
	}
}

// String renders a compact debugging form of the element.
func (e *Element) String() string {
	switch e.typ {
	case TypeNull:
		return "null"
	case TypeBool:
		return strconv.FormatBool(e.b)
	case TypeInt:
		return strconv.FormatInt(e.i64, 10)
	case TypeDouble:
		return strconv.FormatFloat(e.f64, 'g', -1, 64)
	case TypeString:
		return strconv.Quote(e.str)
	default:
		out, err := MarshalJSONElement(e)
		if err != nil {
			return fmt.Sprintf("<%s:%v>", e.typ, err)
		}
		return string(out)
	}
}
