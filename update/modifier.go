package update

import (
	"fmt"

	"github.com/arthur-debert/docmod/treedoc"
)

// ExecInfo reports what a prepared modifier will do to the current document.
// The surrounding framework uses it to skip no-op applications and to track
// which field each modifier touched.
type ExecInfo struct {
	// NoOp is true when the modifier will not change the document.
	NoOp bool

	// InPlace is true when the mutation, if any, does not change the size
	// or position guarantees the storage layer relies on.
	InPlace bool

	// Field is the (possibly positional-bound) path the modifier examined.
	// Always populated by a returning Prepare, no-op or not.
	Field *FieldRef
}

// Modifier is the lifecycle contract every update operator implements.
//
// Init runs once per operator specification. Prepare, Apply, and Log then
// run once per target document, in that strict order: Prepare resolves the
// path and captures per-document state, Apply performs the mutation, and Log
// appends a replication fragment describing the effective result. State from
// one document never leaks into the next; Prepare rebuilds it from scratch.
type Modifier interface {
	// Init validates and captures the operator's raw field/argument pair.
	// The spec element's field name is the dotted path, its value the
	// operator argument.
	Init(spec *treedoc.Element) error

	// Prepare resolves the path against root, decides whether the
	// modifier is a no-op for this document, and fills info. matchedField
	// supplies the concrete index a query match bound to a positional
	// part, when the path has one.
	Prepare(root *treedoc.Element, matchedField string, info *ExecInfo) error

	// Apply mutates the document using the state captured by the most
	// recent Prepare. It must be called at most once per Prepare.
	Apply() error

	// Log appends a $set/$unset fragment under logRoot describing the
	// effective result, sufficient to reproduce the post-Apply state.
	Log(logRoot *treedoc.Element) error
}

// modifierFactories maps operator names to constructors. One interface
// layer, variant dispatch by name.
var modifierFactories = map[string]func() Modifier{
	"$pullAll": func() Modifier { return &PullAll{} },
	"$set":     func() Modifier { return &Set{} },
	"$unset":   func() Modifier { return &Unset{} },
}

// newModifier returns a fresh modifier for the named operator.
func newModifier(op string) (Modifier, error) {
	factory, ok := modifierFactories[op]
	if !ok {
		return nil, newBadValue("update", "", fmt.Sprintf("unknown modifier %q", op))
	}
	return factory(), nil
}
