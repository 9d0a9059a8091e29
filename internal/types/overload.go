package types

import "fmt"

// objectDistance is the conversion distance assigned to any implicit
// conversion to System.Object: deliberately worse than any subclass step,
// interface step, or the char->int widening, so a more specific overload
// always wins when one exists.
const objectDistance = 1000

// SignaturesEqual reports whether two headers are indistinguishable for
// overload-declaration purposes: same parameter count, same parameter
// types in order, same ref/out-ness, same variadic status. Return type is
// not part of a signature's identity — C# forbids overloading on return
// type alone, and the resolver's linkMethod uses SignaturesEqual to reject
// such a redeclaration.
func SignaturesEqual(a, b *MethodHeaderEntry) bool {
	if len(a.ParamTypes) != len(b.ParamTypes) || a.IsVariadic != b.IsVariadic {
		return false
	}
	for i := range a.ParamTypes {
		if !Equal(a.ParamTypes[i], b.ParamTypes[i]) {
			return false
		}
		if a.ParamIsRef[i] != b.ParamIsRef[i] || a.ParamIsOut[i] != b.ParamIsOut[i] {
			return false
		}
	}
	if a.IsVariadic && !Equal(a.VariadicElem, b.VariadicElem) {
		return false
	}
	return true
}

// DecoratedKey builds the string used to detect duplicate overloads: the
// method name followed by its parameter types and ref/out markers. Two
// overloads of the same name with the same DecoratedKey are a duplicate
// declaration, not a legal overload pair.
func DecoratedKey(name string, h *MethodHeaderEntry) string {
	key := name
	for i, pt := range h.ParamTypes {
		key += "|"
		if h.ParamIsOut[i] {
			key += "out:"
		} else if h.ParamIsRef[i] {
			key += "ref:"
		}
		key += pt.String()
	}
	if h.IsVariadic {
		key += "|params:" + h.VariadicElem.String()
	}
	return key
}

// SignatureDistance scores how well argTypes matches header's parameters,
// per-argument, summing each argument's typeDistance against its
// corresponding parameter (or, past the fixed parameter count of a
// variadic header, against the params-array element type). Returns -1 if
// the arities are incompatible or any argument has no implicit conversion
// to its parameter.
func SignatureDistance(argTypes []Type, header *MethodHeaderEntry) int {
	minParams := len(header.ParamTypes)
	if header.IsVariadic {
		minParams--
	}
	if len(argTypes) < minParams {
		return -1
	}
	if !header.IsVariadic && len(argTypes) > len(header.ParamTypes) {
		return -1
	}

	total := 0
	for i, arg := range argTypes {
		var want Type
		switch {
		case header.IsVariadic && i >= len(header.ParamTypes)-1:
			want = header.VariadicElem
		case i < len(header.ParamTypes):
			want = header.ParamTypes[i]
		default:
			return -1
		}
		d := typeDistance(arg, want)
		if d < 0 {
			return -1
		}
		total += d
	}
	return total
}

// typeDistance scores the implicit conversion from from to to, mirroring
// Assignable's rules but weighting each rule by how much it should cost a
// candidate in overload resolution: identity is free, char->int widening
// and each class-hierarchy/interface step cost 1, and the universal
// conversion to System.Object is deliberately the most expensive so it
// never beats a more specific overload.
func typeDistance(from, to Type) int {
	fu, tu := Unwrap(from), Unwrap(to)
	if Equal(fu, tu) {
		return 0
	}
	if Equal(fu, Char) && Equal(tu, Int) {
		return 1
	}
	if Equal(tu, Object) {
		return objectDistance
	}
	if fc, ok := fu.(*TypeEntry); ok {
		if tc, ok := tu.(*TypeEntry); ok {
			if tc.GenreVal == GenreInterface {
				if d, ok := interfaceStepDistance(fc, tc); ok {
					return d
				}
				return -1
			}
			if d, ok := subclassStepDistance(fc, tc); ok {
				return d
			}
		}
	}
	if fa, ok := fu.(*ArrayTypeEntry); ok {
		if ta, ok := tu.(*ArrayTypeEntry); ok && fa.Rank == ta.Rank {
			if d := typeDistance(fa.Element, ta.Element); d >= 0 {
				return d
			}
		}
		if Equal(tu, Array) {
			return 1
		}
	}
	if !Assignable(from, to) {
		return -1
	}
	// Assignable via a rule typeDistance doesn't score specially (e.g.
	// null-to-reference, enum-to-System.Enum): treat as a single step.
	return 1
}

// subclassStepDistance counts how many super-chain steps separate fc from
// tc, or reports false if tc is not an ancestor of fc.
func subclassStepDistance(fc, tc *TypeEntry) (int, bool) {
	steps := 0
	for cur := fc; cur != nil; steps++ {
		if cur == tc {
			return steps, true
		}
		super, _ := cur.SuperVal.(*TypeEntry)
		cur = super
	}
	return 0, false
}

// interfaceStepDistance scores realizing interface tc from class fc: one
// step per level of fc's super chain needed to find a declared
// Interfaces list containing (or transitively extending to) tc, plus one
// step per level of interface inheritance walked within that list.
func interfaceStepDistance(fc, tc *TypeEntry) (int, bool) {
	classSteps := 0
	for cur := fc; cur != nil; classSteps++ {
		for _, iface := range cur.Interfaces {
			if d, ok := interfaceExtendsDistance(iface, tc); ok {
				return classSteps + d + 1, true
			}
		}
		super, _ := cur.SuperVal.(*TypeEntry)
		cur = super
	}
	return 0, false
}

func interfaceExtendsDistance(iface, target *TypeEntry) (int, bool) {
	if iface == target {
		return 0, true
	}
	for _, base := range iface.Interfaces {
		if d, ok := interfaceExtendsDistance(base, target); ok {
			return d + 1, true
		}
	}
	return 0, false
}

// ResolveOverload picks the best-matching overload from candidates for a
// call site with the given argument types, following the same
// filter-by-compatibility / rank-by-minimum-distance / require-a-unique-
// winner algorithm as the single-namespace function case, generalized to
// methods.
//
// The three returned error sentinels distinguish the diagnostics the
// resolver must raise: ErrNoOverloads (the name isn't a method at all),
// ErrNoAcceptableOverload (no candidate's signature accepts these
// arguments), and ErrAmbiguousOverload (two or more candidates tie for
// best).
func ResolveOverload(candidates []*MethodExpEntry, argTypes []Type) (*MethodExpEntry, error) {
	if len(candidates) == 0 {
		return nil, ErrNoOverloads
	}

	type scored struct {
		m    *MethodExpEntry
		dist int
	}
	var compatible []scored
	for _, c := range candidates {
		d := SignatureDistance(argTypes, c.Header)
		if d < 0 {
			continue
		}
		// Doubling every distance before adding the variadic candidate's
		// +1 preserves ranking among same-variadicness candidates while
		// breaking an exact tie in favor of the non-variadic (normal
		// form) match, per overload resolution preferring the fixed-arity
		// signature over the params-array expansion.
		d *= 2
		if c.Header.IsVariadic {
			d++
		}
		compatible = append(compatible, scored{c, d})
	}
	if len(compatible) == 0 {
		return nil, ErrNoAcceptableOverload
	}

	best := compatible[0].dist
	for _, c := range compatible[1:] {
		if c.dist < best {
			best = c.dist
		}
	}
	var winners []*MethodExpEntry
	for _, c := range compatible {
		if c.dist == best {
			winners = append(winners, c.m)
		}
	}
	if len(winners) == 1 {
		return winners[0], nil
	}
	return nil, fmt.Errorf("%w: %d candidates at distance %d", ErrAmbiguousOverload, len(winners), best)
}

// overloadError is a sentinel comparison type; the resolver maps these to
// its Resolve*/NoAcceptableOverload/AmbiguousMethod diagnostic codes via
// errors.Is.
type overloadError string

func (e overloadError) Error() string { return string(e) }

const (
	ErrNoOverloads          overloadError = "no overload candidates"
	ErrNoAcceptableOverload overloadError = "no acceptable overload for argument types"
	ErrAmbiguousOverload    overloadError = "ambiguous overload"
)
