package constraint

import "testing"

// numVal is a minimal Equatable over float64, used to exercise equals()
// and bound interplay without depending on the value package.
type numVal float64

func (n numVal) Classify() Tag                { return IsNumber }
func (n numVal) EqualTo(o Equatable) bool     { other, ok := o.(numVal); return ok && other == n }
func (n numVal) NumValue() (float64, bool)    { return float64(n), true }
func (n numVal) StrValue() (string, bool)     { return "", false }
func (n numVal) BoolValue() (bool, bool)      { return false, false }
func (n numVal) String() string               { return formatNum(float64(n)) }

type strVal string

func (s strVal) Classify() Tag             { return IsString }
func (s strVal) EqualTo(o Equatable) bool  { other, ok := o.(strVal); return ok && other == s }
func (s strVal) NumValue() (float64, bool) { return 0, false }
func (s strVal) StrValue() (string, bool)  { return string(s), true }
func (s strVal) BoolValue() (bool, bool)   { return false, false }
func (s strVal) String() string            { return string(s) }

func TestSimplifyIdempotent(t *testing.T) {
	cases := []*Constraint{
		AndC(IsNumberC, GtC(3)),
		OrC(IsNumberC, IsStringC, IsNumberC),
		AndC(IsNumberC, IsStringC),
		NotC(NotC(IsNumberC)),
		AndC(GtC(3), GtC(5), LtC(10)),
	}
	for _, c := range cases {
		once := Simplify(c)
		twice := Simplify(once)
		if once.String() != twice.String() {
			t.Errorf("Simplify not idempotent: %s -> %s -> %s", c, once, twice)
		}
	}
}

func TestDisjointClassificationCollapsesToNever(t *testing.T) {
	got := Simplify(AndC(IsNumberC, IsStringC))
	if got.tag != Never {
		t.Errorf("expected never, got %s", got)
	}
}

func TestEqualsWithDisjointClassificationCollapses(t *testing.T) {
	got := Simplify(AndC(EqualsV(numVal(5)), IsStringC))
	if got.tag != Never {
		t.Errorf("expected never, got %s", got)
	}
}

func TestBoundsCombineByMaxMin(t *testing.T) {
	got := Simplify(AndC(GtC(3), GteC(5), LtC(20), LteC(10)))
	if !Implies(got, GteC(5)) || !Implies(got, LteC(10)) {
		t.Errorf("expected tightened bounds, got %s", got)
	}
	if Implies(got, GtC(5)) {
		t.Errorf("gte(5) must not imply gt(5) was chosen over gte(5): %s", got)
	}
}

func TestEmptyIntervalIsNever(t *testing.T) {
	got := Simplify(AndC(GtC(10), LtC(5)))
	if got.tag != Never {
		t.Errorf("expected never, got %s", got)
	}
	got2 := Simplify(AndC(GtC(5), LteC(5)))
	if got2.tag != Never {
		t.Errorf("strict/non-strict clash at same value should be never, got %s", got2)
	}
	got3 := Simplify(AndC(GteC(5), LteC(5)))
	if got3.tag == Never {
		t.Errorf("closed single point interval must be satisfiable, got never")
	}
}

func TestHasFieldContradiction(t *testing.T) {
	got := Simplify(AndC(
		HasFieldC("kind", EqualsV(strVal("circle"))),
		HasFieldC("kind", EqualsV(strVal("square"))),
	))
	if got.tag != Never {
		t.Errorf("expected never, got %s", got)
	}
}

func TestImpliesReflexiveAnyNever(t *testing.T) {
	c := AndC(IsNumberC, GtC(3))
	if !Implies(c, c) {
		t.Error("implies should be reflexive")
	}
	if !Implies(c, AnyC) {
		t.Error("implies(c, any) should hold")
	}
	if !Implies(NeverC, c) {
		t.Error("implies(never, c) should hold")
	}
}

func TestImpliesEqualsToClassification(t *testing.T) {
	if !Implies(EqualsV(numVal(5)), IsNumberC) {
		t.Error("equals(5) should imply isNumber")
	}
	if Implies(EqualsV(numVal(5)), IsStringC) {
		t.Error("equals(5) should not imply isString")
	}
}

func TestImpliesBounds(t *testing.T) {
	if !Implies(GtC(5), GtC(3)) {
		t.Error("gt(5) should imply gt(3)")
	}
	if Implies(GtC(3), GtC(5)) {
		t.Error("gt(3) should not imply gt(5)")
	}
	if !Implies(EqualsV(numVal(10)), GtC(3)) {
		t.Error("equals(10) should imply gt(3)")
	}
}

func TestUnifyCommutative(t *testing.T) {
	a, b := IsNumberC, GtC(3)
	if !ConstraintEquals(Unify(a, b), Unify(b, a)) {
		t.Error("unify should be commutative up to constraintEquals")
	}
}

func TestNarrowOrDropsNeverBranches(t *testing.T) {
	disc := OrC(
		HasFieldC("kind", EqualsV(strVal("circle"))),
		HasFieldC("kind", EqualsV(strVal("square"))),
	)
	refined := NarrowOr(disc, HasFieldC("kind", EqualsV(strVal("circle"))))
	if refined.tag == Or {
		t.Errorf("expected single surviving branch, got %s", refined)
	}
	if !ConstraintEquals(refined, HasFieldC("kind", EqualsV(strVal("circle")))) {
		t.Errorf("unexpected refined constraint: %s", refined)
	}
}

func TestNegateBoundInversion(t *testing.T) {
	if !ConstraintEquals(Negate(GtC(5)), LteC(5)) {
		t.Errorf("negate(gt(5)) should be lte(5), got %s", Negate(GtC(5)))
	}
	if !ConstraintEquals(Negate(Negate(IsNumberC)), IsNumberC) {
		t.Error("double negation should cancel")
	}
}

func TestNegateDeMorgan(t *testing.T) {
	c := AndC(IsNumberC, GtC(3))
	neg := Negate(c)
	if neg.tag != Or {
		t.Errorf("expected Or after negating And, got %s", neg)
	}
}
