package value

import (
	"testing"

	"github.com/typeforge/tfc/internal/constraint"
)

func TestConstraintOfNeverNever(t *testing.T) {
	vals := []Value{
		Int(5),
		Float(3.5),
		String{Value: "hi"},
		Bool{Value: true},
		Null{},
		Object{Fields: []ObjectField{{Name: "x", Value: Int(1)}}},
		Array{Elements: []Value{Int(1), Int(2)}},
	}
	for _, v := range vals {
		c := ConstraintOf(v)
		if constraint.Simplify(c).Tag() == constraint.Never {
			t.Errorf("constraintOf(%s) collapsed to never", v.Inspect())
		}
	}
}

func TestValuesEqualStructural(t *testing.T) {
	a := Array{Elements: []Value{Int(1), Int(2)}}
	b := Array{Elements: []Value{Int(1), Int(2)}}
	c := Array{Elements: []Value{Int(1), Int(3)}}
	if !ValuesEqual(a, b) {
		t.Error("equal arrays should compare equal")
	}
	if ValuesEqual(a, c) {
		t.Error("differing arrays should not compare equal")
	}
}

func TestEnvironmentExtendDoesNotMutateParent(t *testing.T) {
	parent := NewEnvironment()
	parent.Bind("x", EvaluatedBinding(Int(1), nil))
	child := parent.Extend()
	child.Bind("x", EvaluatedBinding(Int(2), nil))

	if b, _ := parent.Lookup("x"); b.Value.(Number).I != 1 {
		t.Error("extending a scope must not mutate the parent")
	}
	if b, _ := child.Lookup("x"); b.Value.(Number).I != 2 {
		t.Error("child scope should see its own binding")
	}
}
