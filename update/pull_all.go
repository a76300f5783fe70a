package update

import (
	"errors"

	"github.com/arthur-debert/docmod/treedoc"
)

// PullAll implements the $pullAll operator: remove every element of the
// target array that equals any value in an explicit set. One instance is
// initialized once and then reused sequentially across the documents of a
// batch; all per-document state lives in pullAllPrepared.
type PullAll struct {
	field  *FieldRef
	posIdx int

	// toFind holds the argument array's elements in their original order.
	// Membership, not order, is what matters when matching.
	toFind []*treedoc.Element

	prepared *pullAllPrepared
}

// pullAllPrepared is the transient state captured by Prepare for one
// document and consumed by the matching Apply/Log pair.
type pullAllPrepared struct {
	root *treedoc.Element

	// foundIdx is the index of the deepest resolved path part; foundElem
	// the element it resolved to. -1/nil when nothing resolved.
	foundIdx  int
	foundElem *treedoc.Element

	// posPart is the concrete value bound to the positional part, if any.
	posPart string

	applied bool

	// toRemove captures every matching element, in scan order, before any
	// removal happens. Element handles stay valid while their siblings
	// are removed, so the full list can be taken up front.
	toRemove []*treedoc.Element
}

// Init parses and validates the dotted path and requires an array argument,
// whose elements become the value set shared by the whole batch.
func (m *PullAll) Init(spec *treedoc.Element) error {
	ref, err := ParseFieldRef(spec.FieldName())
	if err != nil {
		return err
	}
	m.field = ref

	posIdx, err := ref.Positional()
	if err != nil {
		return newBadValue("$pullAll", spec.FieldName(), err.Error())
	}
	m.posIdx = posIdx

	if spec.Type() != treedoc.TypeArray {
		return newBadValue("$pullAll", spec.FieldName(), "$pullAll requires an array argument")
	}
	for c := spec.LeftChild(); c != nil; c = c.RightSibling() {
		m.toFind = append(m.toFind, c)
	}
	return nil
}

// Prepare resolves the path for one document, scans the target array, and
// captures the elements to remove. A path absent from the document is a
// successful no-op, not an error.
func (m *PullAll) Prepare(root *treedoc.Element, matchedField string, info *ExecInfo) error {
	m.prepared = &pullAllPrepared{root: root, foundIdx: -1}

	// Bind the positional part to the index the query match supplied.
	if m.posIdx > 0 {
		if matchedField == "" {
			info.Field = m.field
			return newBadValue("$pullAll", m.field.Dotted(), "matched field not provided")
		}
		m.prepared.posPart = matchedField
		m.field.SetPart(m.posIdx, matchedField)
	}

	idx, elem, err := FindLongestPrefix(m.field, root)
	m.prepared.foundIdx, m.prepared.foundElem = idx, elem
	info.Field = m.field

	if err != nil {
		// Nothing to remove from a path that isn't there.
		info.NoOp, info.InPlace = true, true
		if errors.Is(err, ErrNonExistentPath) {
			return nil
		}
		return err
	}

	if elem.Type() != treedoc.TypeArray {
		return newBadValue("$pullAll", m.field.Dotted(), "can only remove from arrays")
	}

	if !elem.HasChildren() {
		info.NoOp, info.InPlace = true, true
		return nil
	}

	// Capture the full removal list before any mutation begins.
	for c := elem.LeftChild(); c != nil; c = c.RightSibling() {
		if m.matches(c) {
			m.prepared.toRemove = append(m.prepared.toRemove, c)
		}
	}
	if len(m.prepared.toRemove) == 0 {
		info.NoOp, info.InPlace = true, true
	}
	return nil
}

// matches tests one array member against the value set. The member's own
// field name is ignored; only value and type are compared.
func (m *PullAll) matches(elem *treedoc.Element) bool {
	for _, want := range m.toFind {
		if treedoc.Equal(elem, want) {
			return true
		}
	}
	return false
}

// Apply removes the captured elements in the order they were scanned.
// Calling Apply without a Prepare, or twice for one Prepare, is a
// programming-contract violation.
func (m *PullAll) Apply() error {
	if m.prepared == nil || m.prepared.applied {
		panic("update: PullAll.Apply called without a fresh successful Prepare")
	}
	m.prepared.applied = true
	for _, elem := range m.prepared.toRemove {
		// Cannot fail: every captured element is still attached, since
		// removing one sibling does not invalidate the others.
		_ = elem.Remove()
	}
	return nil
}

// Log appends a fragment describing the effective result: $set of the
// remaining array when the full path existed, $unset of the path otherwise.
// Replaying the fragment alone reproduces the post-Apply state.
func (m *PullAll) Log(logRoot *treedoc.Element) error {
	pathExists := m.prepared.foundElem != nil &&
		m.prepared.foundIdx == m.field.NumParts()-1

	opName := "$unset"
	if pathExists {
		opName = "$set"
	}
	opElem := treedoc.NewObject(opName)

	var logElem *treedoc.Element
	if pathExists {
		logElem = m.prepared.foundElem.Copy(m.field.Dotted())
	} else {
		logElem = treedoc.NewBool(m.field.Dotted(), true)
	}

	if err := opElem.PushBack(logElem); err != nil {
		return newInternal("$pullAll", m.field.Dotted(), "cannot create log entry details")
	}
	if err := logRoot.PushBack(opElem); err != nil {
		return newInternal("$pullAll", m.field.Dotted(), "cannot append log entry")
	}
	return nil
}
