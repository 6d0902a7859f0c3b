package constraint

// Simplify puts c into canonical form: recursive simplification of
// children, flattening of same-tag logical groups, identity/annihilator
// rules, deduplication, and a contradiction scan. Simplification is total.
func Simplify(c *Constraint) *Constraint {
	if c == nil {
		return NeverC
	}
	switch c.tag {
	case IsNumber, IsString, IsBool, IsNull, IsObject, IsArray, IsFunction,
		Equals, Gt, Gte, Lt, Lte, Never, Any, CVar:
		return c

	case Not:
		inner := Simplify(c.inner)
		switch inner.tag {
		case Never:
			return AnyC
		case Any:
			return NeverC
		case Not:
			return Simplify(inner.inner)
		default:
			return &Constraint{tag: Not, inner: inner}
		}

	case HasField:
		inner := Simplify(c.inner)
		if inner.tag == Never {
			return NeverC
		}
		return &Constraint{tag: HasField, field: c.field, inner: inner}

	case Elements:
		return &Constraint{tag: Elements, inner: Simplify(c.inner)}

	case ElementAt:
		inner := Simplify(c.inner)
		if inner.tag == Never {
			return NeverC
		}
		return &Constraint{tag: ElementAt, index: c.index, inner: inner}

	case Length:
		inner := Simplify(c.inner)
		if inner.tag == Never {
			return NeverC
		}
		return &Constraint{tag: Length, inner: inner}

	case And:
		return simplifyAnd(flatten(c, And))

	case Or:
		return simplifyOr(flatten(c, Or))

	default:
		return c
	}
}

// flatten recursively simplifies c's children and splices in any direct
// child that shares c's own tag, so and/or never nest in their own tag.
func flatten(c *Constraint, tag Tag) []*Constraint {
	var out []*Constraint
	for _, child := range c.children {
		s := Simplify(child)
		if s.tag == tag {
			out = append(out, s.children...)
		} else {
			out = append(out, s)
		}
	}
	return out
}

func simplifyAnd(children []*Constraint) *Constraint {
	var kept []*Constraint
	for _, c := range children {
		if c.tag == Any {
			continue // identity
		}
		if c.tag == Never {
			return NeverC // annihilator
		}
		kept = append(kept, c)
	}

	kept = dedupe(kept)

	// (i) disjoint classifications.
	classes := map[Tag]bool{}
	for _, c := range kept {
		if isClassification(c.tag) {
			classes[c.tag] = true
		}
	}
	if len(classes) > 1 {
		return NeverC
	}
	var soleClass Tag
	haveClass := false
	for t := range classes {
		soleClass, haveClass = t, true
	}

	// (ii)/(iii) equals.
	var eq *Constraint
	for _, c := range kept {
		if c.tag != Equals {
			continue
		}
		if eq == nil {
			eq = c
			continue
		}
		if !eq.value.EqualTo(c.value) {
			return NeverC
		}
	}
	if eq != nil && haveClass && eq.value.Classify() != soleClass {
		return NeverC
	}

	// (iv) numeric bounds: compute tightest lower/upper.
	var lowerSet, upperSet bool
	var lowerVal, upperVal float64
	var lowerStrict, upperStrict bool
	for _, c := range kept {
		switch c.tag {
		case Gt, Gte:
			strict := c.tag == Gt
			if !lowerSet || c.num > lowerVal || (c.num == lowerVal && strict) {
				lowerVal, lowerStrict, lowerSet = c.num, strict, true
			}
		case Lt, Lte:
			strict := c.tag == Lt
			if !upperSet || c.num < upperVal || (c.num == upperVal && strict) {
				upperVal, upperStrict, upperSet = c.num, strict, true
			}
		}
	}
	if lowerSet && upperSet {
		if lowerVal > upperVal {
			return NeverC
		}
		if lowerVal == upperVal && (lowerStrict || upperStrict) {
			return NeverC
		}
	}

	// (v) equals outside bound.
	if eq != nil {
		if n, ok := eq.value.NumValue(); ok {
			if lowerSet && (n < lowerVal || (n == lowerVal && lowerStrict)) {
				return NeverC
			}
			if upperSet && (n > upperVal || (n == upperVal && upperStrict)) {
				return NeverC
			}
		}
	}

	// (vi) hasField contradictions: merge same-field entries.
	fieldOrder := []string{}
	fieldMerge := map[string]*Constraint{}
	for _, c := range kept {
		if c.tag != HasField {
			continue
		}
		if existing, ok := fieldMerge[c.field]; ok {
			merged := Simplify(AndC(existing.inner, c.inner))
			if merged.tag == Never {
				return NeverC
			}
			fieldMerge[c.field] = HasFieldC(c.field, merged)
		} else {
			fieldMerge[c.field] = c
			fieldOrder = append(fieldOrder, c.field)
		}
	}

	// Rebuild the kept list: drop individual bound/hasField constraints,
	// replace with their canonical merged forms.
	var result []*Constraint
	for _, c := range kept {
		switch c.tag {
		case Gt, Gte, Lt, Lte, HasField:
			continue
		default:
			result = append(result, c)
		}
	}
	if lowerSet {
		if lowerStrict {
			result = append(result, GtC(lowerVal))
		} else {
			result = append(result, GteC(lowerVal))
		}
	}
	if upperSet {
		if upperStrict {
			result = append(result, LtC(upperVal))
		} else {
			result = append(result, LteC(upperVal))
		}
	}
	for _, f := range fieldOrder {
		result = append(result, fieldMerge[f])
	}
	result = dedupe(result)

	switch len(result) {
	case 0:
		return AnyC
	case 1:
		return result[0]
	default:
		return &Constraint{tag: And, children: result}
	}
}

func simplifyOr(children []*Constraint) *Constraint {
	var kept []*Constraint
	for _, c := range children {
		if c.tag == Never {
			continue // identity
		}
		if c.tag == Any {
			return AnyC // annihilator
		}
		kept = append(kept, c)
	}
	kept = dedupe(kept)
	switch len(kept) {
	case 0:
		return NeverC
	case 1:
		return kept[0]
	default:
		return &Constraint{tag: Or, children: kept}
	}
}

// dedupe removes structurally-equal constraints, preserving first-seen order.
func dedupe(cs []*Constraint) []*Constraint {
	seen := map[string]bool{}
	var out []*Constraint
	for _, c := range cs {
		key := c.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
