// Package refine implements the refinement extractor: given a boolean
// guard expression, it derives the constraints that hold on each named
// variable when the guard is true (and, via Negate, when it is false).
package refine

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/constraint"
	"github.com/typeforge/tfc/internal/value"
)

// Refinement maps a variable name to what is known to hold about it.
type Refinement map[string]*constraint.Constraint

// wellKnownGuards maps type-guard builtin names to the classification
// they establish.
var wellKnownGuards = map[string]constraint.Tag{
	"isNumber":   constraint.IsNumber,
	"isString":   constraint.IsString,
	"isBool":     constraint.IsBool,
	"isObject":   constraint.IsObject,
	"isArray":    constraint.IsArray,
	"isFunction": constraint.IsFunction,
	"isNull":     constraint.IsNull,
}

// Extract returns what holds when cond evaluates truthy. Patterns it does
// not recognize contribute nothing — never an error.
func Extract(cond ast.Expr) Refinement {
	switch e := cond.(type) {
	case *ast.Binary:
		return extractBinary(e)
	case *ast.Unary:
		if e.Op == ast.Not {
			return negate(Extract(e.Operand))
		}
		return nil
	case *ast.Call:
		return extractGuardCall(e)
	default:
		return nil
	}
}

// ExtractElse returns what holds when cond evaluates falsy: the
// de-negated form of the same extraction.
func ExtractElse(cond ast.Expr) Refinement {
	return negate(Extract(cond))
}

func extractBinary(e *ast.Binary) Refinement {
	switch e.Op {
	case ast.And:
		return merge(Extract(e.Left), Extract(e.Right))

	case ast.Eq, ast.Neq:
		return extractComparison(e)

	case ast.Gt, ast.Gte, ast.Lt, ast.Lte:
		return extractComparison(e)

	default:
		return nil
	}
}

// extractComparison handles `x op lit`, its reflection `lit op x`, and the
// discriminant-field case `obj.field == lit`.
func extractComparison(e *ast.Binary) Refinement {
	if prop, lit, ok := asPropertyLiteral(e.Left, e.Right); ok && (e.Op == ast.Eq || e.Op == ast.Neq) {
		if base, ok := prop.Object.(*ast.Identifier); ok {
			fieldC := constraint.EqualsV(value.FromLiteral(lit))
			if e.Op == ast.Neq {
				fieldC = constraint.Negate(fieldC)
			}
			return Refinement{base.Name: constraint.HasFieldC(prop.Name, fieldC)}
		}
		return nil
	}

	name, lit, swapped, ok := asIdentifierLiteral(e.Left, e.Right)
	if !ok {
		return nil
	}
	op := e.Op
	if swapped {
		op = reflectOp(op)
	}
	c := comparisonConstraint(op, value.FromLiteral(lit))
	if c == nil {
		return nil
	}
	return Refinement{name: c}
}

func comparisonConstraint(op ast.BinaryOp, v value.Value) *constraint.Constraint {
	switch op {
	case ast.Eq:
		return constraint.EqualsV(v)
	case ast.Neq:
		return constraint.Negate(constraint.EqualsV(v))
	case ast.Gt, ast.Gte, ast.Lt, ast.Lte:
		n, ok := v.NumValue()
		if !ok {
			return nil
		}
		switch op {
		case ast.Gt:
			return constraint.GtC(n)
		case ast.Gte:
			return constraint.GteC(n)
		case ast.Lt:
			return constraint.LtC(n)
		default:
			return constraint.LteC(n)
		}
	default:
		return nil
	}
}

// reflectOp mirrors an operator for the `lit op x` case, e.g. `5 < x`
// means `x > 5`.
func reflectOp(op ast.BinaryOp) ast.BinaryOp {
	switch op {
	case ast.Gt:
		return ast.Lt
	case ast.Gte:
		return ast.Lte
	case ast.Lt:
		return ast.Gt
	case ast.Lte:
		return ast.Gte
	default:
		return op
	}
}

func asIdentifierLiteral(l, r ast.Expr) (name string, lit *ast.Literal, swapped bool, ok bool) {
	if id, idok := l.(*ast.Identifier); idok {
		if lt, ltok := r.(*ast.Literal); ltok {
			return id.Name, lt, false, true
		}
	}
	if id, idok := r.(*ast.Identifier); idok {
		if lt, ltok := l.(*ast.Literal); ltok {
			return id.Name, lt, true, true
		}
	}
	return "", nil, false, false
}

func asPropertyLiteral(l, r ast.Expr) (prop *ast.Property, lit *ast.Literal, ok bool) {
	if p, pok := l.(*ast.Property); pok {
		if lt, ltok := r.(*ast.Literal); ltok {
			return p, lt, true
		}
	}
	if p, pok := r.(*ast.Property); pok {
		if lt, ltok := l.(*ast.Literal); ltok {
			return p, lt, true
		}
	}
	return nil, nil, false
}

func extractGuardCall(e *ast.Call) Refinement {
	fn, ok := e.Fn.(*ast.Identifier)
	if !ok {
		return nil
	}
	tag, ok := wellKnownGuards[fn.Name]
	if !ok || len(e.Args) != 1 || e.Args[0].Spread {
		return nil
	}
	id, ok := e.Args[0].Value.(*ast.Identifier)
	if !ok {
		return nil
	}
	return Refinement{id.Name: constraint.Classification(tag)}
}

func merge(a, b Refinement) Refinement {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make(Refinement, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			out[k] = constraint.Narrow(existing, v)
		} else {
			out[k] = v
		}
	}
	return out
}

// negate applies De Morgan and the bound-inversion table per-variable.
func negate(r Refinement) Refinement {
	if r == nil {
		return nil
	}
	out := make(Refinement, len(r))
	for k, v := range r {
		out[k] = constraint.Negate(v)
	}
	return out
}
