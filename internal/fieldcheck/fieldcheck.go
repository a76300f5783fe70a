// Package fieldcheck validates dotted field paths before update modifiers
// accept them.
package fieldcheck

import (
	"fmt"
	"strings"
)

// PositionalPart is the path part bound to a concrete array index at
// document-processing time.
const PositionalPart = "$"

// Updatable checks that the parts form a legal updatable field path: every
// part non-empty, no operator-style parts other than the positional
// placeholder, and the placeholder never in the leading position.
func Updatable(parts []string) error {
	if len(parts) == 0 {
		return fmt.Errorf("empty field path")
	}
	for i, part := range parts {
		if part == "" {
			return fmt.Errorf("field path part %d is empty", i)
		}
		if part == PositionalPart {
			if i == 0 {
				return fmt.Errorf("positional part cannot be the first path part")
			}
			continue
		}
		if strings.HasPrefix(part, "$") {
			return fmt.Errorf("field path part %q cannot start with '$'", part)
		}
	}
	return nil
}

// Positional returns the index of the positional part, or 0 when there is
// none. Index 0 can stand in for "absent" because Updatable rejects a
// leading positional part. More than one positional part is an error.
func Positional(parts []string) (int, error) {
	found := 0
	for i, part := range parts {
		if part != PositionalPart {
			continue
		}
		if found != 0 {
			return 0, fmt.Errorf("field path has more than one positional part")
		}
		found = i
	}
	return found, nil
}
