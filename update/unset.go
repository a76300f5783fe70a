package update

import (
	"errors"

	"github.com/arthur-debert/docmod/treedoc"
)

// Unset implements the $unset operator: remove the value at a dotted path.
// The operator argument is conventionally true and is ignored. Unsetting an
// array member leaves a null in its slot so that sibling indexes keep their
// meaning.
type Unset struct {
	field  *FieldRef
	posIdx int

	prepared *unsetPrepared
}

type unsetPrepared struct {
	root      *treedoc.Element
	foundIdx  int
	foundElem *treedoc.Element
	fullPath  bool
	applied   bool
}

// Init captures and validates the path; the argument value is ignored.
func (m *Unset) Init(spec *treedoc.Element) error {
	ref, err := ParseFieldRef(spec.FieldName())
	if err != nil {
		return err
	}
	m.field = ref

	posIdx, err := ref.Positional()
	if err != nil {
		return newBadValue("$unset", spec.FieldName(), err.Error())
	}
	m.posIdx = posIdx
	return nil
}

// Prepare resolves the path. An absent path means there is nothing to unset:
// a successful no-op.
func (m *Unset) Prepare(root *treedoc.Element, matchedField string, info *ExecInfo) error {
	m.prepared = &unsetPrepared{root: root, foundIdx: -1}

	if m.posIdx > 0 {
		if matchedField == "" {
			info.Field = m.field
			return newBadValue("$unset", m.field.Dotted(), "matched field not provided")
		}
		m.field.SetPart(m.posIdx, matchedField)
	}

	idx, elem, err := FindLongestPrefix(m.field, root)
	m.prepared.foundIdx, m.prepared.foundElem = idx, elem
	info.Field = m.field

	if err != nil {
		info.NoOp, info.InPlace = true, true
		if errors.Is(err, ErrNonExistentPath) {
			return nil
		}
		return err
	}
	m.prepared.fullPath = true
	return nil
}

// Apply removes the resolved element, or nulls it out when its parent is an
// array.
func (m *Unset) Apply() error {
	if m.prepared == nil || m.prepared.applied {
		panic("update: Unset.Apply called without a fresh successful Prepare")
	}
	m.prepared.applied = true

	elem := m.prepared.foundElem
	if parent := elem.Parent(); parent != nil && parent.Type() == treedoc.TypeArray {
		elem.SetValue(treedoc.NewNull(""))
		return nil
	}
	if err := elem.Remove(); err != nil {
		return newInternal("$unset", m.field.Dotted(), err.Error())
	}
	return nil
}

// Log always emits $unset of the full dotted path.
func (m *Unset) Log(logRoot *treedoc.Element) error {
	opElem := treedoc.NewObject("$unset")
	if err := opElem.PushBack(treedoc.NewBool(m.field.Dotted(), true)); err != nil {
		return newInternal("$unset", m.field.Dotted(), "cannot create log entry details")
	}
	if err := logRoot.PushBack(opElem); err != nil {
		return newInternal("$unset", m.field.Dotted(), "cannot append log entry")
	}
	return nil
}
