package types

import "github.com/typeforge/tfc/internal/constraint"

// Classify implements constraint.Equatable so a LiteralT's payload can be
// wrapped directly into an equals() constraint by TypeToConstraint.
func (l LitValue) Classify() constraint.Tag {
	switch {
	case l.IsString:
		return constraint.IsString
	case l.IsBool:
		return constraint.IsBool
	case l.IsNumber:
		return constraint.IsNumber
	default:
		return constraint.IsNull
	}
}

func (l LitValue) EqualTo(o constraint.Equatable) bool {
	other, ok := o.(LitValue)
	return ok && l.Equal(other)
}

func (l LitValue) NumValue() (float64, bool)  { return l.Num, l.IsNumber }
func (l LitValue) StrValue() (string, bool)   { return l.Str, l.IsString }
func (l LitValue) BoolValue() (bool, bool)    { return l.Bool, l.IsBool }

// TypeToConstraint projects a Type onto the boolean-reasoning Constraint
// algebra. The projection is lossy for Branded/BoundedT/WithMetadata (the
// constraint form cannot express nominal brands or generic bounds) — it
// falls through to the underlying structural constraint, which is sound
// for implication purposes even though it is not precise for subtyping.
func TypeToConstraint(t Type) *constraint.Constraint {
	switch tv := t.(type) {
	case PrimitiveT:
		switch tv.Kind {
		case Int, Float, Number:
			return constraint.IsNumberC
		case String:
			return constraint.IsStringC
		case Boolean:
			return constraint.IsBoolC
		case Null, Undefined:
			return constraint.IsNullC
		case NeverPrim:
			return constraint.NeverC
		default:
			return constraint.AnyC
		}
	case LiteralT:
		return constraint.EqualsV(tv.Value)
	case RecordT:
		cs := []*constraint.Constraint{constraint.IsObjectC}
		for _, f := range tv.Fields {
			if f.Optional {
				continue
			}
			cs = append(cs, constraint.HasFieldC(f.Name, TypeToConstraint(f.Type)))
		}
		return constraint.AndC(cs...)
	case ArrayT:
		if tv.Variadic {
			return constraint.AndC(constraint.IsArrayC, constraint.ElementsC(TypeToConstraint(tv.Elements[0])))
		}
		cs := []*constraint.Constraint{constraint.IsArrayC, constraint.LengthC(constraint.EqualsV(intLit(len(tv.Elements))))}
		for i, e := range tv.Elements {
			cs = append(cs, constraint.ElementAtC(i, TypeToConstraint(e)))
		}
		return constraint.AndC(cs...)
	case UnionT:
		cs := make([]*constraint.Constraint, len(tv.Variants))
		for i, v := range tv.Variants {
			cs[i] = TypeToConstraint(v)
		}
		return constraint.OrC(cs...)
	case IntersectionT:
		cs := make([]*constraint.Constraint, len(tv.Members))
		for i, m := range tv.Members {
			cs[i] = TypeToConstraint(m)
		}
		return constraint.AndC(cs...)
	case FunctionT:
		return constraint.IsFunctionC
	case BrandedT:
		return TypeToConstraint(tv.Base)
	case BoundedT:
		return TypeToConstraint(tv.Bound)
	case WithMetadataT:
		return TypeToConstraint(tv.Inner)
	default:
		return constraint.AnyC
	}
}

func intLit(n int) LitValue { return LitValue{IsNumber: true, Num: float64(n)} }

// ConstraintToType is the best-effort inverse of TypeToConstraint. It is
// exact on the subset of constraints that name a concrete type
// (classifications, equals, never/any), which is the subset the spec's
// round-trip property quantifies over.
func ConstraintToType(c *constraint.Constraint) Type {
	c = constraint.Simplify(c)
	switch c.Tag() {
	case constraint.IsNumber:
		return Prim(Number)
	case constraint.IsString:
		return Prim(String)
	case constraint.IsBool:
		return Prim(Boolean)
	case constraint.IsNull:
		return Prim(Null)
	case constraint.IsObject:
		return RecordT{Closed: false}
	case constraint.IsArray:
		return ArrayT{Elements: []Type{Prim(Unknown)}, Variadic: true}
	case constraint.IsFunction:
		return FunctionT{ReturnType: Prim(Unknown)}
	case constraint.Never:
		return Prim(NeverPrim)
	case constraint.Any:
		return Prim(Unknown)
	case constraint.Equals:
		v := c.Value()
		lit := LitValue{}
		base := Unknown
		if n, ok := v.NumValue(); ok {
			lit = LitValue{IsNumber: true, Num: n}
			base = Number
		} else if s, ok := v.StrValue(); ok {
			lit = LitValue{IsString: true, Str: s}
			base = String
		} else if b, ok := v.BoolValue(); ok {
			lit = LitValue{IsBool: true, Bool: b}
			base = Boolean
		}
		return Literal(lit, base)
	case constraint.And:
		// Approximate: an And of classification + hasField entries maps
		// back onto an open record; anything else falls back to Unknown.
		rec := RecordT{Closed: false}
		for _, child := range c.Children() {
			if child.Tag() == constraint.HasField {
				rec.Fields = append(rec.Fields, FieldT{Name: child.Field(), Type: ConstraintToType(child.Inner())})
			}
		}
		if len(rec.Fields) > 0 {
			return rec
		}
		return Prim(Unknown)
	case constraint.Or:
		variants := make([]Type, len(c.Children()))
		for i, ch := range c.Children() {
			variants[i] = ConstraintToType(ch)
		}
		return UnionT{Variants: variants}
	default:
		return Prim(Unknown)
	}
}
