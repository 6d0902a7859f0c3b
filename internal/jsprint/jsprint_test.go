package jsprint

import (
	"strings"
	"testing"

	"github.com/typeforge/tfc/internal/jsast"
)

func TestExprRendersBinaryAndCall(t *testing.T) {
	e := &jsast.Call{
		Fn: &jsast.Var{Name: "discount"},
		Args: []jsast.Expr{
			&jsast.BinOp{Op: "*", Left: &jsast.Var{Name: "price"}, Right: &jsast.Lit{Value: 2.0}},
		},
	}
	got := Expr(e)
	want := "discount((price * 2))"
	if got != want {
		t.Fatalf("Expr() = %q, want %q", got, want)
	}
}

func TestProgramRendersConstAndIf(t *testing.T) {
	stmts := []jsast.Stmt{
		&jsast.Const{Name: "x", Init: &jsast.Lit{Value: 1.0}},
		&jsast.If{
			Cond: &jsast.BinOp{Op: ">", Left: &jsast.Var{Name: "x"}, Right: &jsast.Lit{Value: 0.0}},
			Then: []jsast.Stmt{&jsast.Return{Value: &jsast.Var{Name: "x"}}},
		},
	}
	out := Program(stmts)
	if !strings.Contains(out, "const x = 1;") {
		t.Fatalf("missing const statement in output:\n%s", out)
	}
	if !strings.Contains(out, "if ((x > 0)) {") {
		t.Fatalf("missing if statement in output:\n%s", out)
	}
	if !strings.Contains(out, "return x;") {
		t.Fatalf("missing return statement in output:\n%s", out)
	}
}

func TestObjectKeyQuotingOnlyWhenNeeded(t *testing.T) {
	obj := &jsast.Object{Fields: []jsast.ObjectField{
		{Key: "plain", Value: &jsast.Lit{Value: 1.0}},
		{Key: "kebab-case", Value: &jsast.Lit{Value: 2.0}},
	}}
	got := Expr(obj)
	if !strings.Contains(got, "plain: 1") {
		t.Fatalf("expected unquoted plain key, got %q", got)
	}
	if !strings.Contains(got, `"kebab-case": 2`) {
		t.Fatalf("expected quoted kebab-case key, got %q", got)
	}
}
