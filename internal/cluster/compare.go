package cluster

import (
	"fmt"

	"github.com/typeforge/tfc/internal/jsast"
)

// CompareExprs walks a and b in lockstep per §4.6: identical tags recurse
// into children, identical operator/identifier/field-name continue, two
// lit nodes with different values record their path as a hole, and any
// other structural divergence is a mismatch. Two function shapes
// (Arrow/NamedFn) must share parameter names and arity; NamedFn must also
// share its name.
func CompareExprs(a, b jsast.Expr) (holes []Path, ok bool) {
	ok = compareExpr(a, b, nil, &holes)
	return holes, ok
}

func litEqual(a, b any) bool { return a == b }

func compareExpr(a, b jsast.Expr, path Path, holes *[]Path) bool {
	switch av := a.(type) {
	case *jsast.Lit:
		bv, ok := b.(*jsast.Lit)
		if !ok {
			return false
		}
		if !litEqual(av.Value, bv.Value) {
			*holes = append(*holes, path)
		}
		return true

	case *jsast.Var:
		bv, ok := b.(*jsast.Var)
		return ok && av.Name == bv.Name

	case *jsast.BinOp:
		bv, ok := b.(*jsast.BinOp)
		if !ok || av.Op != bv.Op {
			return false
		}
		return compareExpr(av.Left, bv.Left, withStep(path, Step{"Left", 0}), holes) &&
			compareExpr(av.Right, bv.Right, withStep(path, Step{"Right", 0}), holes)

	case *jsast.Unary:
		bv, ok := b.(*jsast.Unary)
		if !ok || av.Op != bv.Op {
			return false
		}
		return compareExpr(av.Operand, bv.Operand, withStep(path, Step{"Operand", 0}), holes)

	case *jsast.Call:
		bv, ok := b.(*jsast.Call)
		if !ok || len(av.Args) != len(bv.Args) {
			return false
		}
		if !compareExpr(av.Fn, bv.Fn, withStep(path, Step{"Fn", 0}), holes) {
			return false
		}
		for i := range av.Args {
			if !compareExpr(av.Args[i], bv.Args[i], withStep(path, Step{"Args", i}), holes) {
				return false
			}
		}
		return true

	case *jsast.Method:
		bv, ok := b.(*jsast.Method)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		if !compareExpr(av.Recv, bv.Recv, withStep(path, Step{"Recv", 0}), holes) {
			return false
		}
		for i := range av.Args {
			if !compareExpr(av.Args[i], bv.Args[i], withStep(path, Step{"Args", i}), holes) {
				return false
			}
		}
		return true

	case *jsast.Arrow:
		bv, ok := b.(*jsast.Arrow)
		if !ok || !sameParams(av.Params, bv.Params) {
			return false
		}
		switch {
		case av.Body != nil && bv.Body != nil:
			return compareExpr(av.Body, bv.Body, withStep(path, Step{"Body", 0}), holes)
		case av.Block != nil && bv.Block != nil:
			return compareStmtList(av.Block, bv.Block, path, "Block", holes)
		default:
			return false
		}

	case *jsast.NamedFn:
		bv, ok := b.(*jsast.NamedFn)
		if !ok || av.Name != bv.Name || !sameParams(av.Params, bv.Params) {
			return false
		}
		return compareStmtList(av.Body, bv.Body, path, "FnBody", holes)

	case *jsast.Ternary:
		bv, ok := b.(*jsast.Ternary)
		if !ok {
			return false
		}
		return compareExpr(av.Cond, bv.Cond, withStep(path, Step{"Cond", 0}), holes) &&
			compareExpr(av.Then, bv.Then, withStep(path, Step{"Then", 0}), holes) &&
			compareExpr(av.Else, bv.Else, withStep(path, Step{"Else", 0}), holes)

	case *jsast.Member:
		bv, ok := b.(*jsast.Member)
		if !ok || av.Name != bv.Name {
			return false
		}
		return compareExpr(av.Object, bv.Object, withStep(path, Step{"Object", 0}), holes)

	case *jsast.Index:
		bv, ok := b.(*jsast.Index)
		if !ok {
			return false
		}
		return compareExpr(av.Object, bv.Object, withStep(path, Step{"Object", 0}), holes) &&
			compareExpr(av.Idx, bv.Idx, withStep(path, Step{"Idx", 0}), holes)

	case *jsast.Object:
		bv, ok := b.(*jsast.Object)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Key != bv.Fields[i].Key {
				return false
			}
			if !compareExpr(av.Fields[i].Value, bv.Fields[i].Value, withStep(path, Step{"Fields", i}), holes) {
				return false
			}
		}
		return true

	case *jsast.Array:
		bv, ok := b.(*jsast.Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !compareExpr(av.Elements[i], bv.Elements[i], withStep(path, Step{"Elements", i}), holes) {
				return false
			}
		}
		return true

	case *jsast.IIFE:
		bv, ok := b.(*jsast.IIFE)
		if !ok {
			return false
		}
		return compareStmtList(av.Body, bv.Body, path, "IIFEBody", holes)

	default:
		return false
	}
}

func sameParams(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// compareStmtList and compareStmt implement the statement-shape half of
// §4.6 ("For statements, the shapes const/let/return/if/forOf/exprStmt/
// constPattern/throw/continue/break compare analogously"). listKind names
// the step a statement's position is recorded under ("Block", "FnBody",
// "IIFEBody", "Then", "Else", "Body") so a hole found anywhere inside a
// statement body still resolves back to a real Path via getAt/replaceAt,
// instead of being discarded.
func compareStmtList(a, b []jsast.Stmt, path Path, listKind string, holes *[]Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !compareStmt(a[i], b[i], withStep(path, Step{listKind, i}), holes) {
			return false
		}
	}
	return true
}

func compareStmt(a, b jsast.Stmt, path Path, holes *[]Path) bool {
	switch av := a.(type) {
	case *jsast.Const:
		bv, ok := b.(*jsast.Const)
		return ok && av.Name == bv.Name && compareExpr(av.Init, bv.Init, withStep(path, Step{"Init", 0}), holes)
	case *jsast.Let:
		bv, ok := b.(*jsast.Let)
		if !ok || av.Name != bv.Name {
			return false
		}
		if (av.Init == nil) != (bv.Init == nil) {
			return false
		}
		return av.Init == nil || compareExpr(av.Init, bv.Init, withStep(path, Step{"Init", 0}), holes)
	case *jsast.Return:
		bv, ok := b.(*jsast.Return)
		if !ok {
			return false
		}
		if (av.Value == nil) != (bv.Value == nil) {
			return false
		}
		return av.Value == nil || compareExpr(av.Value, bv.Value, withStep(path, Step{"Value", 0}), holes)
	case *jsast.If:
		bv, ok := b.(*jsast.If)
		if !ok {
			return false
		}
		if (av.Else == nil) != (bv.Else == nil) {
			return false
		}
		return compareExpr(av.Cond, bv.Cond, withStep(path, Step{"Cond", 0}), holes) &&
			compareStmtList(av.Then, bv.Then, path, "Then", holes) &&
			(av.Else == nil || compareStmtList(av.Else, bv.Else, path, "Else", holes))
	case *jsast.ForOf:
		bv, ok := b.(*jsast.ForOf)
		return ok && av.Name == bv.Name &&
			compareExpr(av.Iter, bv.Iter, withStep(path, Step{"Iter", 0}), holes) &&
			compareStmtList(av.Body, bv.Body, path, "Body", holes)
	case *jsast.ExprStmt:
		bv, ok := b.(*jsast.ExprStmt)
		return ok && compareExpr(av.Value, bv.Value, withStep(path, Step{"Value", 0}), holes)
	case *jsast.ConstPattern:
		bv, ok := b.(*jsast.ConstPattern)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i] != bv.Fields[i] {
				return false
			}
		}
		return compareExpr(av.Init, bv.Init, withStep(path, Step{"Init", 0}), holes)
	case *jsast.Throw:
		bv, ok := b.(*jsast.Throw)
		return ok && compareExpr(av.Value, bv.Value, withStep(path, Step{"Value", 0}), holes)
	case *jsast.Continue:
		_, ok := b.(*jsast.Continue)
		return ok
	case *jsast.Break:
		_, ok := b.(*jsast.Break)
		return ok
	default:
		return false
	}
}

// ExtractError is raised by ComputeParameterMapping when a hole path does
// not resolve to a *jsast.Lit in every member, per §4.6's failure model.
type ExtractError struct {
	Path Path
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("cluster: hole path %v does not name a literal in every member", e.Path)
}
