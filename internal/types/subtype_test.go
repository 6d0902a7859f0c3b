package types

import "testing"

func TestPrimitiveWidening(t *testing.T) {
	if !IsSubtype(Prim(Int), Prim(Number)) {
		t.Error("Int should be subtype of Number")
	}
	if !IsSubtype(Prim(Float), Prim(Number)) {
		t.Error("Float should be subtype of Number")
	}
	if IsSubtype(Prim(Number), Prim(Int)) {
		t.Error("Number should not be subtype of Int")
	}
}

func TestNeverAndUnknown(t *testing.T) {
	if !IsSubtype(Prim(NeverPrim), Prim(String)) {
		t.Error("Never should be subtype of everything")
	}
	if !IsSubtype(Prim(String), Prim(Unknown)) {
		t.Error("everything should be subtype of Unknown")
	}
}

func TestLiteralSubtype(t *testing.T) {
	lit := Literal(LitValue{IsNumber: true, Num: 5}, Int)
	if !IsSubtype(lit, Prim(Int)) {
		t.Error("literal 5 should be subtype of Int")
	}
	if !IsSubtype(lit, lit) {
		t.Error("literal should be subtype of itself")
	}
}

func TestUnionSubtype(t *testing.T) {
	u := UnionT{Variants: []Type{Prim(Int), Prim(String)}}
	if !IsSubtype(Prim(Int), u) {
		t.Error("Int should be subtype of (Int | String)")
	}
	if IsSubtype(Prim(Boolean), u) {
		t.Error("Boolean should not be subtype of (Int | String)")
	}
	if !IsSubtype(u, UnionT{Variants: []Type{Prim(Int), Prim(String), Prim(Boolean)}}) {
		t.Error("(Int|String) should be subtype of (Int|String|Boolean)")
	}
}

func TestRecordWidthAndDepth(t *testing.T) {
	circle := RecordT{Fields: []FieldT{
		{Name: "kind", Type: Literal(LitValue{IsString: true, Str: "circle"}, String)},
		{Name: "r", Type: Prim(Int)},
	}}
	shape := RecordT{Fields: []FieldT{
		{Name: "kind", Type: Prim(String)},
	}}
	if !IsSubtype(circle, shape) {
		t.Error("circle should be subtype of the wider shape record")
	}
	if IsSubtype(shape, circle) {
		t.Error("shape should not be subtype of circle (missing field r)")
	}
}

func TestClosedRecordRejectsExtraFields(t *testing.T) {
	closed := RecordT{Closed: true, Fields: []FieldT{{Name: "a", Type: Prim(Int)}}}
	wide := RecordT{Fields: []FieldT{{Name: "a", Type: Prim(Int)}, {Name: "b", Type: Prim(Int)}}}
	if IsSubtype(wide, closed) {
		t.Error("extra field b should be rejected by closed record")
	}
}

func TestFunctionVariance(t *testing.T) {
	// (Number) => Int  should be a subtype of  (Int) => Number
	// contravariant params, covariant return.
	narrow := FunctionT{Params: []Type{Prim(Number)}, ReturnType: Prim(Int)}
	wide := FunctionT{Params: []Type{Prim(Int)}, ReturnType: Prim(Number)}
	if !IsSubtype(narrow, wide) {
		t.Error("expected contravariant/covariant function subtyping to hold")
	}
}

func TestBrandedOpaque(t *testing.T) {
	a := BrandedT{Base: Prim(Int), Name: "UserId"}
	b := BrandedT{Base: Prim(Int), Name: "UserId"}
	c := BrandedT{Base: Prim(Int), Name: "OrderId"}
	if !IsSubtype(a, b) {
		t.Error("same brand should subtype")
	}
	if IsSubtype(a, c) {
		t.Error("different brands must not subtype")
	}
	if IsSubtype(a, Prim(Int)) || IsSubtype(Prim(Int), a) {
		t.Error("branded type must not subtype its base in either direction")
	}
}

func TestBridgeRoundTripOnConcreteTypes(t *testing.T) {
	cases := []Type{
		Prim(Number), Prim(String), Prim(Boolean), Prim(Null),
		Literal(LitValue{IsNumber: true, Num: 5}, Number),
	}
	for _, ty := range cases {
		back := ConstraintToType(TypeToConstraint(ty))
		if back.String() != ty.String() {
			t.Errorf("round trip mismatch: %s -> %s", ty, back)
		}
	}
}
