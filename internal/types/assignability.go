package types

// NullType is the pseudo-type of the `null` literal before it takes on a
// target type from context. It is assignable to any reference type but is
// never itself a named, declarable type.
var NullType Type = &PrimitiveType{NameStr: "<null>"}

// IsValueType reports whether t is a struct, enum, or primitive — a type
// whose values are never null and are copied, not aliased, on assignment.
func IsValueType(t Type) bool {
	switch v := t.(type) {
	case *PrimitiveType:
		return v != nil
	case *EnumTypeEntry:
		return true
	case *TypeEntry:
		return v.GenreVal == GenreStruct
	default:
		return false
	}
}

// Assignable reports whether a value of type from may be assigned to a
// location of type to, per the eight assignability rules: identity
// (ref-stripped), implicit numeric widening (char to int), the universal
// conversion to System.Object, null to any reference type, array
// covariance, the universal array-to-System.Array conversion, class
// subtype transitivity, and interface transitive-closure realization.
func Assignable(from, to Type) bool {
	if from == nil || to == nil {
		return false
	}

	// Rule: to=Object is always satisfied, by value type (boxed) or
	// reference type alike.
	if Equal(to, Object) {
		return true
	}

	// Rule: null is assignable to any non-value (reference) type.
	if Equal(from, NullType) && !IsValueType(to) {
		return true
	}

	fu, tu := Unwrap(from), Unwrap(to)

	// Rule: ref-stripped identity.
	if Equal(fu, tu) {
		return true
	}

	// Rule: char widens implicitly to int; no other primitive conversion
	// is implicit in this subset (no float, no narrowing).
	if Equal(fu, Char) && Equal(tu, Int) {
		return true
	}

	// Rule: array covariance, ref-stripped: T[] assignable to U[] of equal
	// rank when T is assignable to U and neither is a value type (value-type
	// arrays are invariant, matching CLR array-covariance semantics).
	if fa, ok := fu.(*ArrayTypeEntry); ok {
		if ta, ok := tu.(*ArrayTypeEntry); ok {
			if fa.Rank == ta.Rank && !IsValueType(fa.Element) && !IsValueType(ta.Element) {
				if Assignable(fa.Element, ta.Element) {
					return true
				}
			}
		}
		// Rule: any array is assignable to System.Array.
		if Equal(tu, Array) {
			return true
		}
	}

	// Rule: class subtype transitivity, walking the super chain.
	if fc, ok := fu.(*TypeEntry); ok {
		if tc, ok := tu.(*TypeEntry); ok && tc.GenreVal != GenreInterface {
			for cur := fc; cur != nil; {
				if cur == tc {
					return true
				}
				super, _ := cur.SuperVal.(*TypeEntry)
				cur = super
			}
		}
	}
	if fe, ok := fu.(*EnumTypeEntry); ok {
		if Equal(tu, Enum) || fe == tu {
			return true
		}
	}

	// Rule: interface realization via the transitive closure of
	// implemented/base interfaces.
	if tc, ok := tu.(*TypeEntry); ok && tc.GenreVal == GenreInterface {
		if fc, ok := fu.(*TypeEntry); ok {
			if implementsInterface(fc, tc) {
				return true
			}
		}
	}

	return false
}

// implementsInterface reports whether class/struct t realizes target,
// directly or through t's super chain, checking each level's declared
// interface list's transitive base-interface closure.
func implementsInterface(t *TypeEntry, target *TypeEntry) bool {
	for cur := t; cur != nil; {
		for _, iface := range cur.Interfaces {
			if interfaceExtends(iface, target) {
				return true
			}
		}
		super, _ := cur.SuperVal.(*TypeEntry)
		cur = super
	}
	return false
}

// interfaceExtends reports whether iface is target or extends it, directly
// or transitively, through iface.Interfaces (an interface's Interfaces list
// holds its base interfaces).
func interfaceExtends(iface, target *TypeEntry) bool {
	if iface == target {
		return true
	}
	for _, base := range iface.Interfaces {
		if interfaceExtends(base, target) {
			return true
		}
	}
	return false
}
