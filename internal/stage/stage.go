// Package stage implements the staged evaluator: it partitions a typed
// expression into a compile-time-known part (Now) and a residual JS part
// (Later), producing an SValue plus whatever residual tree that requires.
package stage

import (
	"github.com/typeforge/tfc/internal/evalc"
	"github.com/typeforge/tfc/internal/jsast"
	"github.com/typeforge/tfc/internal/types"
)

// OriginKind discriminates what a Later value's residual expression came from.
type OriginKind int

const (
	OriginExpr OriginKind = iota
	OriginRuntimeInput
	OriginImport
)

// SValue is the staged-value sum: now(value), later(origin, type),
// laterArray(entries), stagedClosure(params, body, captured).
type SValue struct {
	kind sKind

	// now
	Now evalc.TypedValue

	// later / laterArray common
	OriginKind OriginKind
	Type       types.Type

	// later: the residual expression that stands in for this value.
	Expr jsast.Expr

	// laterArray: per-element staging, each possibly itself Now or Later.
	Entries []SValue

	// stagedClosure
	Closure *StagedClosure
}

type sKind int

const (
	kindNow sKind = iota
	kindLater
	kindLaterArray
	kindStagedClosure
)

func (s SValue) IsNow() bool          { return s.kind == kindNow }
func (s SValue) IsLater() bool        { return s.kind == kindLater }
func (s SValue) IsLaterArray() bool   { return s.kind == kindLaterArray }
func (s SValue) IsStagedClosure() bool { return s.kind == kindStagedClosure }

func NowValue(tv evalc.TypedValue) SValue { return SValue{kind: kindNow, Now: tv} }

func LaterValue(origin OriginKind, expr jsast.Expr, t types.Type) SValue {
	return SValue{kind: kindLater, OriginKind: origin, Expr: expr, Type: t}
}

func LaterArrayValue(entries []SValue) SValue {
	return SValue{kind: kindLaterArray, Entries: entries}
}

func StagedClosureValue(c *StagedClosure) SValue {
	return SValue{kind: kindStagedClosure, Closure: c}
}

// StaticType reports the best statically known type of s, used wherever a
// residual node needs an attached type (e.g. runtime's fresh variable).
func (s SValue) StaticType() types.Type {
	switch s.kind {
	case kindNow:
		return s.Now.Type
	case kindLater:
		return s.Type
	case kindLaterArray:
		ts := make([]types.Type, len(s.Entries))
		for i, e := range s.Entries {
			ts[i] = e.StaticType()
		}
		return types.ArrayT{Elements: ts}
	default:
		return types.Prim(types.Unknown)
	}
}

// AllFreeNow reports whether s has no Later/stagedClosure component at all,
// i.e. it is fully computable at compile time.
func (s SValue) AllFreeNow() bool {
	switch s.kind {
	case kindNow:
		return true
	case kindLaterArray:
		for _, e := range s.Entries {
			if !e.AllFreeNow() {
				return false
			}
		}
		return true
	default:
		return false
	}
}
