package frontend

import (
	"testing"

	"github.com/typeforge/tfc/internal/ast"
)

func TestParseArithmeticConst(t *testing.T) {
	prog, err := Parse("t.tfc", `(const x (binary + 2 3))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(prog.Decls))
	}
	c, ok := prog.Decls[0].(*ast.Const)
	if !ok {
		t.Fatalf("expected *ast.Const, got %T", prog.Decls[0])
	}
	if c.Name != "x" {
		t.Fatalf("expected name x, got %q", c.Name)
	}
	bin, ok := c.Init.(*ast.Binary)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("expected a + binary init, got %#v", c.Init)
	}
}

func TestParseLambdaWithBoundParam(t *testing.T) {
	src := `(const id (lambda ((n (bound Number))) n))`
	prog, err := Parse("t.tfc", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := prog.Decls[0].(*ast.Const)
	lam, ok := c.Init.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected *ast.Lambda, got %T", c.Init)
	}
	if len(lam.Params) != 1 || lam.Params[0].Name != "n" || lam.Params[0].Bound == nil {
		t.Fatalf("expected one bounded param %%n, got %#v", lam.Params)
	}
}

func TestParseImportAndComptimeConst(t *testing.T) {
	src := `
(import "lib/math" (sqrt))
(comptime-const two (binary + 1 1))
`
	prog, err := Parse("t.tfc", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(prog.Decls))
	}
	imp, ok := prog.Decls[0].(*ast.Import)
	if !ok || imp.Path != "lib/math" || len(imp.Names) != 1 || imp.Names[0] != "sqrt" {
		t.Fatalf("unexpected import decl: %#v", prog.Decls[0])
	}
	c, ok := prog.Decls[1].(*ast.Const)
	if !ok || !c.Comptime {
		t.Fatalf("expected a comptime const, got %#v", prog.Decls[1])
	}
}

func TestParseRejectsUnterminatedList(t *testing.T) {
	if _, err := Parse("t.tfc", `(const x (binary + 1 2)`); err == nil {
		t.Fatalf("expected an error for an unterminated list")
	}
}
