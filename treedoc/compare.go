package treedoc

// Equal reports whether a and b hold the same typed value. The field names of
// a and b themselves are ignored, but field names inside nested objects are
// significant, as is member order in both objects and arrays. There is no
// cross-type coercion: an int and a double never compare equal.
func Equal(a, b *Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeNull:
		return true
	case TypeBool:
		return a.b == b.b
	case TypeInt:
		return a.i64 == b.i64
	case TypeDouble:
		return a.f64 == b.f64
	case TypeString:
		return a.str == b.str
	case TypeObject:
		ca, cb := a.firstChild, b.firstChild
		for ca != nil && cb != nil {
			if ca.name != cb.name || !Equal(ca, cb) {
				return false
			}
			ca, cb = ca.next, cb.next
		}
		return ca == nil && cb == nil
	case TypeArray:
		ca, cb := a.firstChild, b.firstChild
		for ca != nil && cb != nil {
			if !Equal(ca, cb) {
				return false
			}
			ca, cb = ca.next, cb.next
		}
		return ca == nil && cb == nil
	default:
		return false
	}
}
