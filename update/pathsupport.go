package update

import (
	"fmt"
	"strconv"

	"github.com/arthur-debert/docmod/treedoc"
)

// FindLongestPrefix walks ref against the document rooted at root and
// reports the deepest existing prefix.
//
// The returned index is the 0-based index of the last path part that
// resolved, or -1 when not even the first part exists; elem is the element
// that part resolved to, or nil when idx is -1. The error distinguishes the
// outcomes:
//   - nil: the full path resolved, elem is the target.
//   - ErrNonExistentPath: the full path is absent; idx/elem still describe
//     the longest prefix that does exist.
//   - ErrPathNotViable: a part cannot traverse the element it reached, e.g.
//     a field name applied to a scalar or a non-numeric part applied to an
//     array. idx/elem describe the prefix resolved before the blockage.
func FindLongestPrefix(ref *FieldRef, root *treedoc.Element) (int, *treedoc.Element, error) {
	idx := -1
	cur := root
	for i := 0; i < ref.NumParts(); i++ {
		part := ref.Part(i)
		var next *treedoc.Element
		switch cur.Type() {
		case treedoc.TypeObject:
			next = cur.ChildNamed(part)
		case treedoc.TypeArray:
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 {
				return idx, prefixElem(idx, cur), &Error{
					Op:      "resolve",
					Path:    ref.Dotted(),
					Message: fmt.Sprintf("cannot use part %q to index an array", part),
					Err:     ErrPathNotViable,
				}
			}
			next = cur.ChildAt(n)
		default:
			return idx, prefixElem(idx, cur), &Error{
				Op:      "resolve",
				Path:    ref.Dotted(),
				Message: fmt.Sprintf("cannot traverse a %s element with part %q", cur.Type(), part),
				Err:     ErrPathNotViable,
			}
		}
		if next == nil {
			break
		}
		idx, cur = i, next
	}

	if idx == ref.NumParts()-1 {
		return idx, cur, nil
	}
	return idx, prefixElem(idx, cur), &Error{
		Op:      "resolve",
		Path:    ref.Dotted(),
		Message: "path does not exist in the document",
		Err:     ErrNonExistentPath,
	}
}

// prefixElem maps the internal cursor to the reported prefix element: nil
// when no part resolved at all.
func prefixElem(idx int, cur *treedoc.Element) *treedoc.Element {
	if idx < 0 {
		return nil
	}
	return cur
}

// createPathAt builds the missing path suffix ref[from:] under elem and
// attaches leaf as the final part's value. Intermediate object fields are
// created as empty objects; numeric parts under arrays pad the array with
// nulls up to the requested index.
func createPathAt(ref *FieldRef, from int, elem *treedoc.Element, leaf *treedoc.Element) error {
	cur := elem
	for i := from; i < ref.NumParts(); i++ {
		part := ref.Part(i)
		last := i == ref.NumParts()-1

		var child *treedoc.Element
		if last {
			child = leaf
		} else {
			child = treedoc.NewObject(part)
		}

		switch cur.Type() {
		case treedoc.TypeObject:
			child.Rename(part)
			if err := cur.PushBack(child); err != nil {
				return newInternal("create", ref.Dotted(), err.Error())
			}
		case treedoc.TypeArray:
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 {
				return &Error{
					Op:      "create",
					Path:    ref.Dotted(),
					Message: fmt.Sprintf("cannot use part %q to index an array", part),
					Err:     ErrPathNotViable,
				}
			}
			for cur.ChildCount() < n {
				if err := cur.PushBack(treedoc.NewNull("")); err != nil {
					return newInternal("create", ref.Dotted(), err.Error())
				}
			}
			child.Rename("")
			if err := cur.PushBack(child); err != nil {
				return newInternal("create", ref.Dotted(), err.Error())
			}
		default:
			return &Error{
				Op:      "create",
				Path:    ref.Dotted(),
				Message: fmt.Sprintf("cannot create %q inside a %s element", part, cur.Type()),
				Err:     ErrPathNotViable,
			}
		}
		cur = child
	}
	return nil
}
