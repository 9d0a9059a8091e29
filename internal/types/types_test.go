package types

import "testing"

func newClass(name string, super *TypeEntry) *TypeEntry {
	return &TypeEntry{NameStr: name, GenreVal: GenreClass, SuperVal: super}
}

func newInterface(name string, bases ...*TypeEntry) *TypeEntry {
	return &TypeEntry{NameStr: name, GenreVal: GenreInterface, Interfaces: bases}
}

func TestAssignableIdentity(t *testing.T) {
	if !Assignable(Int, Int) {
		t.Error("a type must be assignable to itself")
	}
}

func TestAssignableToObject(t *testing.T) {
	a := newClass("A", Object)
	if !Assignable(a, Object) {
		t.Error("every type should be assignable to System.Object")
	}
	if !Assignable(Int, Object) {
		t.Error("primitives should box-assign to System.Object")
	}
}

func TestAssignableNullToReference(t *testing.T) {
	a := newClass("A", Object)
	if !Assignable(NullType, a) {
		t.Error("null should be assignable to a reference type")
	}
	if Assignable(NullType, Int) {
		t.Error("null should not be assignable to a value type")
	}
}

func TestAssignableCharToInt(t *testing.T) {
	if !Assignable(Char, Int) {
		t.Error("char should widen implicitly to int")
	}
	if Assignable(Int, Char) {
		t.Error("int should not narrow implicitly to char")
	}
}

func TestAssignableSubclassTransitivity(t *testing.T) {
	base := newClass("Base", Object)
	mid := newClass("Mid", base)
	leaf := newClass("Leaf", mid)
	if !Assignable(leaf, base) {
		t.Error("a grandchild class should be assignable to its grandparent")
	}
	if Assignable(base, leaf) {
		t.Error("a base class should not be assignable to a derived class")
	}
}

func TestAssignableInterfaceTransitiveClosure(t *testing.T) {
	iBase := newInterface("IBase")
	iMid := newInterface("IMid", iBase)
	impl := newClass("Impl", Object)
	impl.Interfaces = []*TypeEntry{iMid}
	if !Assignable(impl, iBase) {
		t.Error("a class implementing IMid, which extends IBase, should satisfy IBase")
	}
	if !Assignable(impl, iMid) {
		t.Error("a class should satisfy the interface it directly implements")
	}
}

func TestAssignableArrayCovariance(t *testing.T) {
	base := newClass("Base", Object)
	leaf := newClass("Leaf", base)
	leafArr := &ArrayTypeEntry{Element: leaf, Rank: 1}
	baseArr := &ArrayTypeEntry{Element: base, Rank: 1}
	if !Assignable(leafArr, baseArr) {
		t.Error("Leaf[] should be covariantly assignable to Base[]")
	}
	if !Assignable(leafArr, Array) {
		t.Error("any array should be assignable to System.Array")
	}
}

func TestSignatureDistanceExactMatch(t *testing.T) {
	h := &MethodHeaderEntry{ParamTypes: []Type{Int, String}, ParamIsRef: []bool{false, false}, ParamIsOut: []bool{false, false}}
	d := SignatureDistance([]Type{Int, String}, h)
	if d != 0 {
		t.Errorf("expected exact match distance 0, got %d", d)
	}
}

func TestSignatureDistanceIncompatibleArity(t *testing.T) {
	h := &MethodHeaderEntry{ParamTypes: []Type{Int}, ParamIsRef: []bool{false}, ParamIsOut: []bool{false}}
	if d := SignatureDistance([]Type{Int, Int}, h); d != -1 {
		t.Errorf("expected -1 for too many arguments, got %d", d)
	}
}

func TestSignatureDistanceVariadic(t *testing.T) {
	h := &MethodHeaderEntry{
		ParamTypes:   []Type{String, Int},
		ParamIsRef:   []bool{false, false},
		ParamIsOut:   []bool{false, false},
		IsVariadic:   true,
		VariadicElem: Int,
	}
	if d := SignatureDistance([]Type{}, h); d != -1 {
		t.Errorf("expected -1 below the minimum fixed arity, got %d", d)
	}
	if d := SignatureDistance([]Type{String, Int, Int, Int}, h); d != 0 {
		t.Errorf("expected 0 for all-exact variadic call, got %d", d)
	}
}

func TestResolveOverloadPicksMoreSpecific(t *testing.T) {
	base := newClass("Base", Object)
	leaf := newClass("Leaf", base)

	overloadBase := &MethodExpEntry{Name: "M", Header: &MethodHeaderEntry{
		ParamTypes: []Type{base}, ParamIsRef: []bool{false}, ParamIsOut: []bool{false},
	}}
	overloadLeaf := &MethodExpEntry{Name: "M", Header: &MethodHeaderEntry{
		ParamTypes: []Type{leaf}, ParamIsRef: []bool{false}, ParamIsOut: []bool{false},
	}}

	got, err := ResolveOverload([]*MethodExpEntry{overloadBase, overloadLeaf}, []Type{leaf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != overloadLeaf {
		t.Error("expected the exact-match Leaf overload to win over the Base overload")
	}
}

func TestResolveOverloadAmbiguous(t *testing.T) {
	a := &MethodExpEntry{Name: "M", Header: &MethodHeaderEntry{
		ParamTypes: []Type{Int}, ParamIsRef: []bool{false}, ParamIsOut: []bool{false},
	}}
	b := &MethodExpEntry{Name: "M", Header: &MethodHeaderEntry{
		ParamTypes: []Type{Int}, ParamIsRef: []bool{false}, ParamIsOut: []bool{false},
	}}
	_, err := ResolveOverload([]*MethodExpEntry{a, b}, []Type{Int})
	if err == nil {
		t.Fatal("expected an ambiguity error for two identical-signature candidates")
	}
}

func TestResolveOverloadNoMatch(t *testing.T) {
	a := &MethodExpEntry{Name: "M", Header: &MethodHeaderEntry{
		ParamTypes: []Type{Int}, ParamIsRef: []bool{false}, ParamIsOut: []bool{false},
	}}
	_, err := ResolveOverload([]*MethodExpEntry{a}, []Type{String})
	if err != ErrNoAcceptableOverload {
		t.Errorf("expected ErrNoAcceptableOverload, got %v", err)
	}
}

func TestScopeSuperChainLookup(t *testing.T) {
	base := newClass("Base", Object)
	base.MemberScope = NewScope(ScopeClassMembers, nil)
	base.MemberScope.Define("field", &FieldExpEntry{Name: "field", FieldType: Int})

	leaf := newClass("Leaf", base)
	leaf.MemberScope = NewScope(ScopeClassMembers, nil)
	leaf.MemberScope.Controller = &superChainController{start: base}

	sym, ok := leaf.MemberScope.Resolve("field")
	if !ok {
		t.Fatal("expected to find 'field' via the super-chain controller")
	}
	if sym.(*FieldExpEntry).FieldType != Int {
		t.Error("resolved field has the wrong type")
	}
}

func TestScopeSharedNamespaceVisibility(t *testing.T) {
	global := NewScope(ScopeGlobal, nil)
	nsScope := NewScope(ScopeNamespace, global)

	fileA := NewSharedScope(ScopeNamespace, global, nsScope)
	fileB := NewSharedScope(ScopeNamespace, global, nsScope)

	fileA.Define("Widget", newClass("Widget", Object))

	if _, ok := fileB.OwnSymbol("Widget"); !ok {
		t.Error("a symbol defined in one namespace section should be visible from another sharing the same scope")
	}
}

func TestDecoratedKeyDistinguishesRefAndOut(t *testing.T) {
	byVal := &MethodHeaderEntry{ParamTypes: []Type{Int}, ParamIsRef: []bool{false}, ParamIsOut: []bool{false}}
	byRef := &MethodHeaderEntry{ParamTypes: []Type{Int}, ParamIsRef: []bool{true}, ParamIsOut: []bool{false}}
	if DecoratedKey("M", byVal) == DecoratedKey("M", byRef) {
		t.Error("ref and by-value overloads must have distinct decorated keys")
	}
}
