package update

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arthur-debert/docmod/treedoc"
)

// Update is a parsed update specification: an ordered list of initialized
// modifiers. One Update is reusable sequentially across the documents of a
// batch; every per-document step rebuilds its own transient state.
type Update struct {
	mods   []Modifier
	logger *slog.Logger
}

// ParseUpdate turns an update-spec document, e.g.
//
//	{"$pullAll": {"tags": ["a", "b"]}, "$set": {"state": "clean"}}
//
// into an Update. Each operator must map to an object of field/value pairs;
// unknown operators and malformed operands are ErrBadValue. An oplog entry
// produced by Update.ApplyTo is itself a valid update spec, so replaying a
// log entry is parse-then-apply.
func ParseUpdate(spec *treedoc.Document) (*Update, error) {
	root := spec.Root()
	if !root.HasChildren() {
		return nil, newBadValue("update", "", "update specification is empty")
	}

	u := &Update{logger: slog.Default()}
	for op := root.LeftChild(); op != nil; op = op.RightSibling() {
		name := op.FieldName()
		if _, ok := modifierFactories[name]; !ok {
			return nil, newBadValue("update", "", fmt.Sprintf("unknown modifier %q", name))
		}
		if op.Type() != treedoc.TypeObject {
			return nil, newBadValue(name, "", fmt.Sprintf("%s expects an object of field/value pairs", name))
		}
		if !op.HasChildren() {
			return nil, newBadValue(name, "", fmt.Sprintf("%s is empty", name))
		}
		for fieldSpec := op.LeftChild(); fieldSpec != nil; fieldSpec = fieldSpec.RightSibling() {
			mod, err := newModifier(name)
			if err != nil {
				return nil, err
			}
			if err := mod.Init(fieldSpec); err != nil {
				return nil, err
			}
			u.mods = append(u.mods, mod)
		}
	}
	return u, nil
}

// WithLogger replaces the executor's logger, which defaults to
// slog.Default.
func (u *Update) WithLogger(logger *slog.Logger) *Update {
	u.logger = logger
	return u
}

// Result describes the outcome of applying an Update to one document.
type Result struct {
	// ChangeID uniquely identifies this application for change tracking.
	ChangeID string

	// NoOp is true when no modifier changed the document.
	NoOp bool

	// Fields lists the dotted paths the modifiers examined, in execution
	// order, positional parts already bound.
	Fields []string

	// Oplog is the replication entry: a $set/$unset description of the
	// net effect, replayable through ParseUpdate + ApplyTo.
	Oplog *treedoc.Document
}

// ApplyTo runs the strict Prepare, Apply, Log sequence of every modifier
// against one document. A Prepare or Log error aborts the document; the
// caller decides what that means for the surrounding batch.
func (u *Update) ApplyTo(doc *treedoc.Document, matchedField string) (*Result, error) {
	res := &Result{
		ChangeID: uuid.NewString(),
		NoOp:     true,
		Oplog:    treedoc.NewDocument(),
	}

	for _, mod := range u.mods {
		var info ExecInfo
		if err := mod.Prepare(doc.Root(), matchedField, &info); err != nil {
			return nil, err
		}
		if info.Field != nil {
			res.Fields = append(res.Fields, info.Field.Dotted())
		}
		if !info.NoOp {
			res.NoOp = false
			if err := mod.Apply(); err != nil {
				return nil, err
			}
		}
		if err := mod.Log(res.Oplog.Root()); err != nil {
			return nil, err
		}

		field := ""
		if info.Field != nil {
			field = info.Field.Dotted()
		}
		u.logger.Debug("modifier executed",
			"change_id", res.ChangeID,
			"field", field,
			"noop", info.NoOp,
			"in_place", info.InPlace)
	}
	return res, nil
}
