package update

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the update engine can surface.
var (
	// ErrBadValue marks user-facing validation failures: a malformed
	// modifier specification, a type mismatch at the target path, or a
	// missing positional binding.
	ErrBadValue = errors.New("bad value")

	// ErrInternalError marks engine invariants that failed, such as a log
	// fragment that could not be constructed. Never caused by user input.
	ErrInternalError = errors.New("internal error")

	// ErrNonExistentPath is reported by path resolution when the full path
	// is absent from the document. Modifiers fold it into a successful
	// no-op; it is never surfaced to callers of the engine.
	ErrNonExistentPath = errors.New("non-existent path")

	// ErrPathNotViable is reported by path resolution when a path part
	// cannot traverse the element it landed on, e.g. a field name applied
	// to a scalar or a non-numeric part applied to an array.
	ErrPathNotViable = errors.New("path not viable")
)

// Error carries the operator, path, and message context for an engine error.
type Error struct {
	Op      string // operator or phase that failed, e.g. "$pullAll"
	Path    string // dotted field path, when one is in play
	Message string
	Err     error // sentinel classifying the failure
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("update %s failed at path %q: %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("update %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the classifying sentinel for errors.Is matching.
func (e *Error) Unwrap() error {
	return e.Err
}

func newBadValue(op, path, message string) error {
	return &Error{Op: op, Path: path, Message: message, Err: ErrBadValue}
}

func newInternal(op, path, message string) error {
	return &Error{Op: op, Path: path, Message: message, Err: ErrInternalError}
}
