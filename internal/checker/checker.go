// Package checker implements the type checker driver and erasure pass of
// the spec (§4.7): it walks declarations in source order, calling the
// compile-time evaluator and stager for each, records the type and
// comptime-only-ness of every binding, and produces the residual
// declaration stream that erasure hands to the clusterer.
package checker

import (
	"fmt"

	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/evalc"
	"github.com/typeforge/tfc/internal/jsast"
	"github.com/typeforge/tfc/internal/stage"
	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

// DeclInfo records what the checker learned about one top-level
// declaration: its inferred/declared type and whether every transitive
// dependency of its initializer is comptime-only.
type DeclInfo struct {
	Name         string
	Type         types.Type
	ComptimeOnly bool
	Exported     bool
}

// Program is the checker's output: the residual statement stream erasure
// produced, alongside the per-declaration type information a driver may
// want to report (e.g. for `check`'s exit-status-only mode, or a future
// `.d.ts` emitter, which remains out of scope per §1).
type Program struct {
	Residual []jsast.Stmt
	Decls    []DeclInfo
}

// Checker owns one compilation's evaluator, stager, and the three
// environments declarations accumulate into as they are checked in
// order: the compile-time value environment, the (here, identical-shaped)
// type environment, and the staging environment tracking Now/Later.
type Checker struct {
	Ev   *evalc.Evaluator
	Stg  *stage.Stager
	CEnv *value.Environment
	TEnv *value.Environment
	SEnv *stage.Env
}

// New creates a Checker with a fresh Evaluator armed with fuel steps (or
// evalc.DefaultFuel if fuel <= 0), and the global environment exposing the
// builtin type constructors and primitive type constants.
func New(fuel int) *Checker {
	ev := evalc.New(fuel)
	return &Checker{
		Ev:   ev,
		Stg:  stage.New(ev),
		CEnv: evalc.NewGlobalEnv(),
		TEnv: evalc.NewGlobalEnv(),
		SEnv: stage.NewEnv(),
	}
}

// Check walks prog's declarations in source order and returns the checked
// Program. It fails fast at the first declaration whose checking raises a
// Diagnostic, per §7's "surfaces a single error at the first failure".
func (c *Checker) Check(prog *ast.Program) (*Program, error) {
	out := &Program{}
	for _, d := range prog.Decls {
		switch dd := d.(type) {
		case *ast.Const:
			info, stmt, err := c.checkConst(dd)
			if err != nil {
				return nil, err
			}
			out.Decls = append(out.Decls, info)
			if stmt != nil {
				out.Residual = append(out.Residual, stmt)
			}
		case *ast.Import:
			c.bindImport(dd)
		case *ast.ExprStmt:
			stmt, err := c.checkExprStmt(dd)
			if err != nil {
				return nil, err
			}
			if stmt != nil {
				out.Residual = append(out.Residual, stmt)
			}
		default:
			rng := d.Range()
			return nil, diag.New(diag.Typecheck, diag.DesugarFailure, &rng, "unsupported top-level declaration %T", d)
		}
	}
	return out, nil
}

// bindImport reserves each imported name across all three environments.
// Module resolution is an external collaborator per §1 ("`.d.ts` and
// module resolution" is explicitly out of scope), so this implementation
// never learns a real value or type for an imported binding; it always
// drops the import from the residual stream rather than guess at
// cross-module comptime-only-ness.
func (c *Checker) bindImport(imp *ast.Import) {
	for _, n := range imp.Names {
		c.CEnv.Bind(n, value.EvaluatedBinding(value.Null{}, types.Prim(types.Unknown)))
		c.TEnv.Bind(n, value.EvaluatedBinding(value.Null{}, types.Prim(types.Unknown)))
		c.SEnv.Bind(n, stage.NowValue(evalc.TypedValue{Value: value.Null{}, Type: types.Prim(types.Unknown)}))
	}
}

func (c *Checker) checkExprStmt(dd *ast.ExprStmt) (jsast.Stmt, error) {
	sv, err := c.Stg.Stage(dd.Value, c.SEnv, c.CEnv, c.TEnv)
	if err != nil {
		return nil, noted(err, dd.Range(), "while checking a top-level expression statement")
	}
	if sv.AllFreeNow() {
		// A comptime-only expression statement has no observable runtime
		// effect left to residualize (its value is discarded either way).
		return nil, nil
	}
	return &jsast.ExprStmt{Value: stage.ToJS(sv)}, nil
}

// checkConst implements the two-branch rule of §4.7 step 1/2: stage the
// initializer; if it (and every comptime declaration) turns out fully
// Now, record it in both cenv and tenv for later comptime lookups and
// erase it; otherwise keep the residual const declaration.
func (c *Checker) checkConst(dd *ast.Const) (DeclInfo, jsast.Stmt, error) {
	sv, err := c.Stg.Stage(dd.Init, c.SEnv, c.CEnv, c.TEnv)
	if err != nil {
		return DeclInfo{}, nil, noted(err, dd.Range(), fmt.Sprintf("while checking type of %q", dd.Name))
	}

	comptimeOnly := sv.AllFreeNow()
	if dd.Comptime && !comptimeOnly {
		rng := dd.Range()
		return DeclInfo{}, nil, diag.New(diag.Typecheck, diag.StagingError, &rng,
			"comptime binding %q is not computable at compile time", dd.Name)
	}

	declType := sv.StaticType()
	if dd.Type != nil {
		annotated, err := c.evalTypeAnnotation(dd.Type, dd.Name)
		if err != nil {
			return DeclInfo{}, nil, err
		}
		if !types.IsSubtype(declType, annotated) {
			rng := dd.Init.Range()
			return DeclInfo{}, nil, diag.New(diag.Typecheck, diag.TypeMismatch, &rng,
				"%q has type %s, which is not assignable to declared type %s", dd.Name, declType.String(), annotated.String())
		}
		declType = annotated
	}

	c.SEnv.Bind(dd.Name, sv)
	if sv.IsNow() {
		c.CEnv.Bind(dd.Name, value.EvaluatedBinding(sv.Now.Value, declType))
		c.TEnv.Bind(dd.Name, value.EvaluatedBinding(sv.Now.Value, declType))
	}

	info := DeclInfo{Name: dd.Name, Type: declType, ComptimeOnly: comptimeOnly, Exported: dd.Exported}
	if comptimeOnly {
		return info, nil, nil
	}
	return info, &jsast.Const{Name: dd.Name, Init: stage.ToJS(sv)}, nil
}

func (c *Checker) evalTypeAnnotation(typeExpr ast.Expr, name string) (types.Type, error) {
	tv, err := c.Ev.Evaluate(typeExpr, c.CEnv, c.TEnv)
	if err != nil {
		return nil, noted(err, typeExpr.Range(), fmt.Sprintf("while evaluating the type annotation of %q", name))
	}
	tvv, ok := tv.Value.(value.TypeValue)
	if !ok {
		rng := typeExpr.Range()
		return nil, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "type annotation of %q does not evaluate to a type", name)
	}
	return tvv.Type, nil
}

// noted appends a context note to err without rewriting its primary Kind
// or Range, per §7's propagation rule. Non-Diagnostic errors (which the
// core never raises, but a defensive caller might pass through) are
// returned unchanged.
func noted(err error, rng ast.Range, note string) error {
	if dg, ok := err.(*diag.Diagnostic); ok {
		return dg.WithNote(note, &rng)
	}
	return err
}
