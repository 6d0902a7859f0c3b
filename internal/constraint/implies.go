package constraint

// Implies decides a ⊨ b: every value satisfying a also satisfies b. It is
// a best-effort decision procedure — for constructs it cannot resolve it
// returns false, never panics.
func Implies(a, b *Constraint) bool {
	a, b = Simplify(a), Simplify(b)
	return implies(a, b)
}

func implies(a, b *Constraint) bool {
	// Reflexivity, and the base cases `implies(c, any)` / `implies(never, c)`.
	if b.tag == Any || a.tag == Never {
		return true
	}
	if structEqual(a, b) {
		return true
	}

	// `a` implies any branch of an Or it contains.
	if b.tag == Or {
		for _, child := range b.children {
			if implies(a, child) {
				return true
			}
		}
	}

	// An And implies b if b is (or is implied by) one of its conjuncts,
	// or if b is itself an And each of whose members is implied.
	if a.tag == And {
		for _, child := range a.children {
			if implies(child, b) {
				return true
			}
		}
	}
	if b.tag == And {
		for _, child := range b.children {
			if !implies(a, child) {
				return false
			}
		}
		return true
	}

	// An Or implies b only if every branch implies b.
	if a.tag == Or {
		for _, child := range a.children {
			if !implies(child, b) {
				return false
			}
		}
		return true
	}

	switch {
	case a.tag == Equals && isClassification(b.tag):
		return a.value.Classify() == b.tag

	case a.tag == Equals && b.tag == Equals:
		return a.value.EqualTo(b.value)

	case a.tag == Equals && isBound(b.tag):
		n, ok := a.value.NumValue()
		if !ok {
			return false
		}
		return satisfiesBound(n, b.tag, b.num)

	case isClassification(a.tag) && isClassification(b.tag):
		return a.tag == b.tag

	case isLowerBound(a.tag) && isLowerBound(b.tag):
		return lowerImplies(a.tag, a.num, b.tag, b.num)

	case isUpperBound(a.tag) && isUpperBound(b.tag):
		return upperImplies(a.tag, a.num, b.tag, b.num)

	case a.tag == HasField && b.tag == HasField:
		return a.field == b.field && implies(a.inner, b.inner)

	case a.tag == Elements && b.tag == Elements:
		return implies(a.inner, b.inner)

	case a.tag == ElementAt && b.tag == ElementAt:
		return a.index == b.index && implies(a.inner, b.inner)

	case a.tag == Length && b.tag == Length:
		return implies(a.inner, b.inner)

	case a.tag == Not && b.tag == Not:
		return implies(b.inner, a.inner)

	case a.tag == CVar && b.tag == CVar:
		return a.id == b.id

	default:
		return false
	}
}

func isBound(t Tag) bool      { return t == Gt || t == Gte || t == Lt || t == Lte }
func isLowerBound(t Tag) bool { return t == Gt || t == Gte }
func isUpperBound(t Tag) bool { return t == Lt || t == Lte }

func satisfiesBound(n float64, tag Tag, bound float64) bool {
	switch tag {
	case Gt:
		return n > bound
	case Gte:
		return n >= bound
	case Lt:
		return n < bound
	case Lte:
		return n <= bound
	default:
		return false
	}
}

// lowerImplies decides whether the lower-bound interval described by
// (aTag, aNum) is a subset of the one described by (bTag, bNum).
func lowerImplies(aTag Tag, aNum float64, bTag Tag, bNum float64) bool {
	if aNum > bNum {
		return true
	}
	if aNum < bNum {
		return false
	}
	if aTag == Gte && bTag == Gt {
		return false
	}
	return true
}

// upperImplies mirrors lowerImplies for Lt/Lte.
func upperImplies(aTag Tag, aNum float64, bTag Tag, bNum float64) bool {
	if aNum < bNum {
		return true
	}
	if aNum > bNum {
		return false
	}
	if aTag == Lte && bTag == Lt {
		return false
	}
	return true
}

func structEqual(a, b *Constraint) bool {
	return a.String() == b.String()
}
