package update

import (
	"errors"

	"github.com/arthur-debert/docmod/treedoc"
)

// Set implements the $set operator: place a value at a dotted path, creating
// missing intermediate fields. It is also what makes $set oplog fragments
// replayable by this engine.
type Set struct {
	field  *FieldRef
	posIdx int
	value  *treedoc.Element

	prepared *setPrepared
}

type setPrepared struct {
	root      *treedoc.Element
	foundIdx  int
	foundElem *treedoc.Element
	fullPath  bool
	applied   bool
}

// Init captures the path and the value to set. Any value type is legal.
func (m *Set) Init(spec *treedoc.Element) error {
	ref, err := ParseFieldRef(spec.FieldName())
	if err != nil {
		return err
	}
	m.field = ref

	posIdx, err := ref.Positional()
	if err != nil {
		return newBadValue("$set", spec.FieldName(), err.Error())
	}
	m.posIdx = posIdx
	m.value = spec
	return nil
}

// Prepare resolves the path. Setting a value equal to the one already there
// is a no-op; a blocked path (scalar in the middle) is an error.
func (m *Set) Prepare(root *treedoc.Element, matchedField string, info *ExecInfo) error {
	m.prepared = &setPrepared{root: root, foundIdx: -1}

	if m.posIdx > 0 {
		if matchedField == "" {
			info.Field = m.field
			return newBadValue("$set", m.field.Dotted(), "matched field not provided")
		}
		m.field.SetPart(m.posIdx, matchedField)
	}

	idx, elem, err := FindLongestPrefix(m.field, root)
	m.prepared.foundIdx, m.prepared.foundElem = idx, elem
	info.Field = m.field

	if err != nil {
		if errors.Is(err, ErrNonExistentPath) {
			// The suffix will be created at Apply time.
			return nil
		}
		return err
	}

	m.prepared.fullPath = true
	if treedoc.Equal(elem, m.value) {
		info.NoOp, info.InPlace = true, true
	}
	return nil
}

// Apply writes the value: in place when the target exists, otherwise by
// creating the missing path suffix under the deepest existing prefix.
func (m *Set) Apply() error {
	if m.prepared == nil || m.prepared.applied {
		panic("update: Set.Apply called without a fresh successful Prepare")
	}
	m.prepared.applied = true

	if m.prepared.fullPath {
		m.prepared.foundElem.SetValue(m.value)
		return nil
	}

	parent := m.prepared.root
	if m.prepared.foundIdx >= 0 {
		parent = m.prepared.foundElem
	}
	leaf := m.value.Copy(m.field.Part(m.field.NumParts() - 1))
	return createPathAt(m.field, m.prepared.foundIdx+1, parent, leaf)
}

// Log emits $set of the full dotted path and the value written.
func (m *Set) Log(logRoot *treedoc.Element) error {
	opElem := treedoc.NewObject("$set")
	if err := opElem.PushBack(m.value.Copy(m.field.Dotted())); err != nil {
		return newInternal("$set", m.field.Dotted(), "cannot create log entry details")
	}
	if err := logRoot.PushBack(opElem); err != nil {
		return newInternal("$set", m.field.Dotted(), "cannot append log entry")
	}
	return nil
}
