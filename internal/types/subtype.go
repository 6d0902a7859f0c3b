package types

// IsSubtype decides a ≤ b per the spec's structural subtyping rules. It is
// recursive and total; unrecognized combinations are not subtypes.
func IsSubtype(a, b Type) bool {
	a, b = Unwrap(a), Unwrap(b)

	if p, ok := a.(PrimitiveT); ok && p.Kind == NeverPrim {
		return true
	}
	if p, ok := b.(PrimitiveT); ok && p.Kind == Unknown {
		return true
	}

	// Union/intersection on either side are checked before anything else,
	// since they can appear on both sides simultaneously.
	if u, ok := a.(UnionT); ok {
		for _, s := range u.Variants {
			if !IsSubtype(s, b) {
				return false
			}
		}
		return true
	}
	if u, ok := b.(UnionT); ok {
		for _, v := range u.Variants {
			if IsSubtype(a, v) {
				return true
			}
		}
		return false
	}
	if i, ok := a.(IntersectionT); ok {
		for _, m := range i.Members {
			if IsSubtype(m, b) {
				return true
			}
		}
		return false
	}
	if i, ok := b.(IntersectionT); ok {
		for _, m := range i.Members {
			if !IsSubtype(a, m) {
				return false
			}
		}
		return true
	}

	switch av := a.(type) {
	case PrimitiveT:
		bv, ok := b.(PrimitiveT)
		if !ok {
			return false
		}
		if av.Kind == bv.Kind {
			return true
		}
		switch av.Kind {
		case Int, Float:
			return bv.Kind == Number
		default:
			return false
		}

	case LiteralT:
		switch bv := b.(type) {
		case LiteralT:
			return av.Value.Equal(bv.Value) && av.Base == bv.Base
		case PrimitiveT:
			return av.Base == bv.Kind || (bv.Kind == Number && (av.Base == Int || av.Base == Float))
		default:
			return false
		}

	case RecordT:
		bv, ok := b.(RecordT)
		if !ok {
			return false
		}
		return recordSubtype(av, bv)

	case ArrayT:
		bv, ok := b.(ArrayT)
		if !ok {
			return false
		}
		return arraySubtype(av, bv)

	case FunctionT:
		bv, ok := b.(FunctionT)
		if !ok {
			return false
		}
		return functionSubtype(av, bv)

	case BrandedT:
		bv, ok := b.(BrandedT)
		if !ok {
			return false
		}
		return av.Name == bv.Name

	case BoundedT:
		bv, ok := b.(BoundedT)
		if !ok {
			return false
		}
		return IsSubtype(av.Bound, bv.Bound)

	default:
		return false
	}
}

func recordSubtype(a, b RecordT) bool {
	for _, bf := range b.Fields {
		af, ok := a.Field(bf.Name)
		if !ok {
			if bf.Optional {
				continue
			}
			return false
		}
		if !IsSubtype(af.Type, bf.Type) {
			return false
		}
		if af.Optional && !bf.Optional {
			return false
		}
	}
	if b.Closed {
		for _, af := range a.Fields {
			if _, ok := b.Field(af.Name); ok {
				continue
			}
			if b.IndexType != nil && IsSubtype(af.Type, b.IndexType) {
				continue
			}
			return false
		}
	}
	return true
}

func arraySubtype(a, b ArrayT) bool {
	switch {
	case a.Variadic && b.Variadic:
		return IsSubtype(a.Elements[0], b.Elements[0])
	case !a.Variadic && b.Variadic:
		for _, e := range a.Elements {
			if !IsSubtype(e, b.Elements[0]) {
				return false
			}
		}
		return true
	case !a.Variadic && !b.Variadic:
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !IsSubtype(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	default: // a variadic, b tuple
		return false
	}
}

func functionSubtype(a, b FunctionT) bool {
	if len(a.Params) < len(b.Params) {
		return false
	}
	for i := range b.Params {
		// Contravariant: b's param must be a subtype of a's param.
		if !IsSubtype(b.Params[i], a.Params[i]) {
			return false
		}
	}
	if len(a.Params) > len(b.Params) {
		// Extra params on a are only compatible if b supplies fewer
		// arguments — acceptable (arity-optional compatibility).
	}
	return IsSubtype(a.ReturnType, b.ReturnType)
}
