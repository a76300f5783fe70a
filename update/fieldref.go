package update

import (
	"strings"

	"github.com/arthur-debert/docmod/internal/fieldcheck"
)

// FieldRef is a parsed dotted field path. It is immutable after parsing
// except for SetPart, which modifiers use to bind a positional part to a
// concrete index for the duration of one document's processing.
type FieldRef struct {
	parts []string
}

// ParseFieldRef splits a dotted field name into parts and validates it as an
// updatable path. Malformed paths are reported as ErrBadValue.
func ParseFieldRef(path string) (*FieldRef, error) {
	parts := strings.Split(path, ".")
	if err := fieldcheck.Updatable(parts); err != nil {
		return nil, newBadValue("path", path, err.Error())
	}
	return &FieldRef{parts: parts}, nil
}

// NumParts returns the number of path parts.
func (r *FieldRef) NumParts() int {
	return len(r.parts)
}

// Part returns the i-th path part.
func (r *FieldRef) Part(i int) string {
	return r.parts[i]
}

// SetPart rewrites the i-th path part in place.
func (r *FieldRef) SetPart(i int, part string) {
	r.parts[i] = part
}

// Dotted returns the path in dotted form, reflecting any SetPart rewrites.
func (r *FieldRef) Dotted() string {
	return strings.Join(r.parts, ".")
}

// Positional returns the index of the positional part, 0 when absent.
func (r *FieldRef) Positional() (int, error) {
	return fieldcheck.Positional(r.parts)
}
