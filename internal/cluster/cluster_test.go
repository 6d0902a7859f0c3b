package cluster

import (
	"testing"

	"github.com/typeforge/tfc/internal/jsast"
)

func lit(v any) *jsast.Lit { return &jsast.Lit{Value: v} }

func discountExpr(pct float64) jsast.Expr {
	return &jsast.BinOp{
		Op:   "*",
		Left: &jsast.Var{Name: "price"},
		Right: &jsast.BinOp{
			Op:    "-",
			Left:  lit(1.0),
			Right: lit(pct),
		},
	}
}

func TestCompareExprsFindsSingleHole(t *testing.T) {
	a := discountExpr(0.1)
	b := discountExpr(0.2)
	holes, ok := CompareExprs(a, b)
	if !ok {
		t.Fatalf("expected structurally isomorphic expressions to compare ok")
	}
	if len(holes) != 1 {
		t.Fatalf("expected exactly one hole, got %d: %v", len(holes), holes)
	}
}

func TestCompareExprsRejectsStructuralMismatch(t *testing.T) {
	a := discountExpr(0.1)
	b := &jsast.BinOp{Op: "+", Left: &jsast.Var{Name: "price"}, Right: lit(1.0)}
	if _, ok := CompareExprs(a, b); ok {
		t.Fatalf("expected a different operator to break structural equality")
	}
}

func TestCompareExprsIdenticalHasNoHoles(t *testing.T) {
	a := discountExpr(0.1)
	b := discountExpr(0.1)
	holes, ok := CompareExprs(a, b)
	if !ok || len(holes) != 0 {
		t.Fatalf("identical expressions should compare with zero holes, got %v ok=%v", holes, ok)
	}
}

func TestSignatureIgnoresLiteralValue(t *testing.T) {
	a := Signature(discountExpr(0.1))
	b := Signature(discountExpr(0.2))
	if a != b {
		t.Fatalf("signatures should collapse literal differences: %q != %q", a, b)
	}
}

func TestSignatureDiffersOnShape(t *testing.T) {
	a := Signature(discountExpr(0.1))
	b := Signature(&jsast.BinOp{Op: "+", Left: &jsast.Var{Name: "price"}, Right: lit(1.0)})
	if a == b {
		t.Fatalf("differently-shaped expressions must not share a signature")
	}
}

func TestBuildClustersGroupsIsomorphicMembers(t *testing.T) {
	exprs := []jsast.Expr{
		discountExpr(0.1),
		discountExpr(0.2),
		discountExpr(0.3),
		&jsast.BinOp{Op: "+", Left: &jsast.Var{Name: "price"}, Right: lit(1.0)},
	}
	clusters := BuildClusters(exprs)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	var discountCluster *Cluster
	for _, cl := range clusters {
		if len(cl.Members) == 3 {
			discountCluster = cl
		}
	}
	if discountCluster == nil {
		t.Fatalf("expected one cluster with 3 discount members")
	}
	if len(discountCluster.Holes) != 1 {
		t.Fatalf("expected 1 hole in the discount cluster, got %d", len(discountCluster.Holes))
	}
}

func TestComputeParameterMappingSharesOneParamForOneHole(t *testing.T) {
	cl := &Cluster{
		Canonical: discountExpr(0.1),
		Members:   []jsast.Expr{discountExpr(0.1), discountExpr(0.2), discountExpr(0.3)},
		Holes:     selfHolesForTest(discountExpr(0.1)),
	}
	mapping, err := ComputeParameterMapping(cl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ParamCount(mapping) != 1 {
		t.Fatalf("expected 1 distinct parameter, got %d", ParamCount(mapping))
	}
}

func selfHolesForTest(e jsast.Expr) []Path {
	holes, _ := CompareExprs(discountExpr(0.1), discountExpr(0.2))
	_ = e
	return holes
}

func iifeReturning(v float64) jsast.Expr {
	return &jsast.IIFE{Body: []jsast.Stmt{
		&jsast.Const{Name: "base", Init: lit(v)},
		&jsast.Return{Value: &jsast.Var{Name: "base"}},
	}}
}

func TestCompareExprsFindsHoleInsideIIFEBody(t *testing.T) {
	a := iifeReturning(5)
	b := iifeReturning(6)
	holes, ok := CompareExprs(a, b)
	if !ok {
		t.Fatalf("expected isomorphic IIFE bodies to compare ok")
	}
	if len(holes) != 1 {
		t.Fatalf("expected exactly one hole inside the IIFE body, got %d: %v", len(holes), holes)
	}
	gotA, ok := getAt(a, holes[0])
	if !ok {
		t.Fatalf("hole path %v does not resolve in a", holes[0])
	}
	if gotA.(*jsast.Lit).Value != 5.0 {
		t.Fatalf("expected hole to resolve to a's literal 5, got %v", gotA)
	}
	gotB, ok := getAt(b, holes[0])
	if !ok {
		t.Fatalf("hole path %v does not resolve in b", holes[0])
	}
	if gotB.(*jsast.Lit).Value != 6.0 {
		t.Fatalf("expected hole to resolve to b's literal 6, got %v", gotB)
	}
}

func TestBuildClustersTemplatesIIFEBodyHole(t *testing.T) {
	exprs := []jsast.Expr{iifeReturning(5), iifeReturning(6), iifeReturning(7)}
	clusters := BuildClusters(exprs)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	cl := clusters[0]
	if len(cl.Holes) != 1 {
		t.Fatalf("expected 1 hole, got %d: %v", len(cl.Holes), cl.Holes)
	}
	mapping, err := ComputeParameterMapping(cl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, err := FunctionTemplate(cl, mapping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Signature(fn.Body) != Signature(cl.Canonical) {
		t.Fatalf("templated IIFE body must keep the same shape as the canonical member")
	}
	// Every member's own literal must still be recoverable at the hole
	// path recorded against that member, not just against the canonical.
	wantByMember := []float64{5, 6, 7}
	for mi, member := range cl.Members {
		node, ok := getAt(member, cl.Holes[0])
		if !ok {
			t.Fatalf("hole path does not resolve in member %d", mi)
		}
		if node.(*jsast.Lit).Value != wantByMember[mi] {
			t.Fatalf("member %d: expected literal %v at the hole, got %v", mi, wantByMember[mi], node)
		}
	}
}

func TestApplyTemplateSubstitutesHole(t *testing.T) {
	cl := &Cluster{
		Canonical: discountExpr(0.1),
		Members:   []jsast.Expr{discountExpr(0.1), discountExpr(0.2)},
	}
	holes, _ := CompareExprs(cl.Members[0], cl.Members[1])
	cl.Holes = holes
	mapping, err := ComputeParameterMapping(cl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, err := FunctionTemplate(cl, mapping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fn.Params) != 1 {
		t.Fatalf("expected 1 template parameter, got %d", len(fn.Params))
	}
	got, ok := getAt(fn.Body, cl.Holes[0])
	if v, isVar := got.(*jsast.Var); !ok || !isVar || v.Name != fn.Params[0] {
		t.Fatalf("expected the hole to reference parameter %q, got %v", fn.Params[0], got)
	}
	restored := replaceAt(fn.Body, cl.Holes[0], lit(0.1))
	if rest, ok := CompareExprs(restored, cl.Canonical); !ok || len(rest) != 0 {
		t.Fatalf("templated body must keep the same shape as the canonical member")
	}
}
