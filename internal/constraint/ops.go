package constraint

// Unify is simplify(and(a,b)).
func Unify(a, b *Constraint) *Constraint {
	return Simplify(AndC(a, b))
}

// Narrow conjoins base with refinement and simplifies — the constraint
// that holds once refinement is additionally known to hold.
func Narrow(base, refinement *Constraint) *Constraint {
	return Simplify(AndC(base, refinement))
}

// NarrowOr maps each branch of an Or constraint through Narrow and drops
// branches that reduce to Never. If c is not an Or, it behaves like Narrow.
func NarrowOr(c *Constraint, refinement *Constraint) *Constraint {
	s := Simplify(c)
	if s.tag != Or {
		return Narrow(s, refinement)
	}
	var kept []*Constraint
	for _, branch := range s.children {
		n := Narrow(branch, refinement)
		if n.tag != Never {
			kept = append(kept, n)
		}
	}
	return simplifyOr(kept)
}

// Negate returns the logical negation of c, pushing Not through the
// logical combinators (De Morgan) so callers get a constraint with Not
// only ever wrapping a non-logical leaf.
func Negate(c *Constraint) *Constraint {
	c = Simplify(c)
	switch c.tag {
	case Never:
		return AnyC
	case Any:
		return NeverC
	case Not:
		return Simplify(c.inner)
	case And:
		negated := make([]*Constraint, len(c.children))
		for i, ch := range c.children {
			negated[i] = Negate(ch)
		}
		return Simplify(OrC(negated...))
	case Or:
		negated := make([]*Constraint, len(c.children))
		for i, ch := range c.children {
			negated[i] = Negate(ch)
		}
		return Simplify(AndC(negated...))
	case Gt:
		return LteC(c.num)
	case Gte:
		return LtC(c.num)
	case Lt:
		return GteC(c.num)
	case Lte:
		return GtC(c.num)
	default:
		return Simplify(NotC(c))
	}
}

// ConstraintEquals reports whether a and b denote the same predicate after
// canonicalization.
func ConstraintEquals(a, b *Constraint) bool {
	return Simplify(a).String() == Simplify(b).String()
}

// ToString renders c in canonical form.
func ToString(c *Constraint) string {
	return Simplify(c).String()
}
