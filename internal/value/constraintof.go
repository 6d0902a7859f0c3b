package value

import "github.com/typeforge/tfc/internal/constraint"

// ConstraintOf is defined for every Value, including composite
// record/array values, as the conjunction of classification plus
// per-field / per-element constraints.
func ConstraintOf(v Value) *constraint.Constraint {
	switch tv := v.(type) {
	case Number, String, Bool:
		return constraint.EqualsV(v)
	case Null:
		return constraint.IsNullC
	case Object:
		cs := []*constraint.Constraint{constraint.IsObjectC}
		for _, f := range tv.Fields {
			cs = append(cs, constraint.HasFieldC(f.Name, ConstraintOf(f.Value)))
		}
		return constraint.AndC(cs...)
	case Array:
		cs := []*constraint.Constraint{constraint.IsArrayC}
		if !tv.Variadic {
			cs = append(cs, constraint.LengthC(constraint.EqualsV(Int(int64(len(tv.Elements))))))
			for i, e := range tv.Elements {
				cs = append(cs, constraint.ElementAtC(i, ConstraintOf(e)))
			}
		} else if len(tv.Elements) > 0 {
			// Best effort: a spread-built array only guarantees its
			// elements satisfy the join of their individual constraints.
			cs = append(cs, constraint.ElementsC(elementsJoin(tv.Elements)))
		}
		return constraint.AndC(cs...)
	case *Closure, *Builtin:
		return constraint.IsFunctionC
	case TypeValue:
		return constraint.IsObjectC
	default:
		return constraint.AnyC
	}
}

func elementsJoin(elems []Value) *constraint.Constraint {
	cs := make([]*constraint.Constraint, len(elems))
	for i, e := range elems {
		cs[i] = ConstraintOf(e)
	}
	return constraint.OrC(cs...)
}
