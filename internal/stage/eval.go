package stage

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/constraint"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/evalc"
	"github.com/typeforge/tfc/internal/jsast"
	"github.com/typeforge/tfc/internal/refine"
	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

// Stager wraps a compile-time Evaluator and re-entrantly partitions
// expressions into Now/Later per the staging rules: re-entrant because
// staged-closure calls recurse through the same evaluator.
type Stager struct {
	Ev *evalc.Evaluator
}

func New(ev *evalc.Evaluator) *Stager {
	return &Stager{Ev: ev}
}

// Stage partitions expr under the staging environment senv and the
// compile-time environments cenv/tenv (kept alongside senv so that a
// subexpression found to be wholly Now can be handed to the plain
// compile-time evaluator rather than re-implementing its semantics here).
func (st *Stager) Stage(expr ast.Expr, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return st.stageNow(expr, cenv, tenv)
	case *ast.Identifier:
		return st.stageIdentifier(e, senv, cenv, tenv)
	case *ast.Binary:
		return st.stageBinary(e, senv, cenv, tenv)
	case *ast.Unary:
		return st.stageUnary(e, senv, cenv, tenv)
	case *ast.Conditional:
		return st.stageConditional(e, senv, cenv, tenv)
	case *ast.Record:
		return st.stageRecord(e, senv, cenv, tenv)
	case *ast.Array:
		return st.stageArray(e, senv, cenv, tenv)
	case *ast.Property:
		return st.stageProperty(e, senv, cenv, tenv)
	case *ast.Index:
		return st.stageIndex(e, senv, cenv, tenv)
	case *ast.Lambda:
		return st.stageLambda(e, senv, cenv, tenv)
	case *ast.Call:
		return st.stageCall(e, senv, cenv, tenv)
	case *ast.Match:
		return st.stageMatch(e, senv, cenv, tenv)
	case *ast.Throw:
		return st.stageThrow(e, senv, cenv, tenv)
	case *ast.Await:
		return st.stageAwait(e, senv, cenv, tenv)
	case *ast.Template:
		return st.stageTemplate(e, senv, cenv, tenv)
	case *ast.Block:
		return st.stageBlock(e, senv, cenv, tenv)
	default:
		rng := expr.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.DesugarFailure, &rng, "unsupported expression node %T in staging", expr)
	}
}

func (st *Stager) stageNow(expr ast.Expr, cenv, tenv *value.Environment) (SValue, error) {
	tv, err := st.Ev.Evaluate(expr, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	return NowValue(tv), nil
}

func (st *Stager) stageIdentifier(e *ast.Identifier, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	if s, ok := senv.Lookup(e.Name); ok {
		return s, nil
	}
	return st.stageNow(e, cenv, tenv)
}

func (st *Stager) stageBinary(e *ast.Binary, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	if e.Op == ast.And || e.Op == ast.Or {
		l, err := st.Stage(e.Left, senv, cenv, tenv)
		if err != nil {
			return SValue{}, err
		}
		if l.IsNow() {
			if lb, ok := l.Now.Value.(value.Bool); ok {
				if (e.Op == ast.And && !lb.Value) || (e.Op == ast.Or && lb.Value) {
					return l, nil
				}
				return st.Stage(e.Right, senv, cenv, tenv)
			}
		}
		r, err := st.Stage(e.Right, senv, cenv, tenv)
		if err != nil {
			return SValue{}, err
		}
		if l.AllFreeNow() && r.AllFreeNow() {
			return st.stageNow(e, cenv, tenv)
		}
		t := binaryResultType(e.Op, l.StaticType(), r.StaticType())
		return LaterValue(OriginExpr, &jsast.BinOp{Op: jsOp(e.Op), Left: sToJS(l), Right: sToJS(r)}, t), nil
	}

	l, err := st.Stage(e.Left, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	r, err := st.Stage(e.Right, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if l.AllFreeNow() && r.AllFreeNow() {
		return st.stageNow(e, cenv, tenv)
	}
	t := binaryResultType(e.Op, l.StaticType(), r.StaticType())
	return LaterValue(OriginExpr, &jsast.BinOp{Op: jsOp(e.Op), Left: sToJS(l), Right: sToJS(r)}, t), nil
}

func (st *Stager) stageUnary(e *ast.Unary, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	v, err := st.Stage(e.Operand, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if v.AllFreeNow() {
		return st.stageNow(e, cenv, tenv)
	}
	op := "!"
	t := types.Prim(types.Boolean)
	if e.Op == ast.Neg {
		op = "-"
		t = types.Prim(types.Number)
	}
	return LaterValue(OriginExpr, &jsast.Unary{Op: op, Operand: sToJS(v)}, t), nil
}

func (st *Stager) stageConditional(e *ast.Conditional, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	cond, err := st.Stage(e.Cond, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if cond.IsNow() {
		b, ok := cond.Now.Value.(value.Bool)
		if !ok {
			rng := e.Range()
			return SValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "conditional guard must be boolean")
		}
		if b.Value {
			return st.Stage(e.Then, senv, cenv, tenv)
		}
		return st.Stage(e.Else, senv, cenv, tenv)
	}
	if !cond.IsLater() {
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "conditional guard must stage to a boolean")
	}

	thenEnv := applyRefinement(senv, refine.Extract(e.Cond))
	elseEnv := applyRefinement(senv, refine.ExtractElse(e.Cond))
	thenS, err := st.Stage(e.Then, thenEnv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	elseS, err := st.Stage(e.Else, elseEnv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	t := joinTypesLocal([]types.Type{thenS.StaticType(), elseS.StaticType()})
	return LaterValue(OriginExpr, &jsast.Ternary{Cond: cond.Expr, Then: sToJS(thenS), Else: sToJS(elseS)}, t), nil
}

// applyRefinement narrows the recorded type of every currently-Later
// variable named by ref, in a fresh child scope (the parent is untouched,
// matching Environment's own extend-never-mutates rule).
func applyRefinement(senv *Env, ref refine.Refinement) *Env {
	if len(ref) == 0 {
		return senv
	}
	child := senv.Extend()
	for name, c := range ref {
		s, ok := senv.Lookup(name)
		if !ok || !s.IsLater() {
			continue
		}
		narrowed := constraint.Narrow(types.TypeToConstraint(s.Type), c)
		child.Bind(name, LaterValue(s.OriginKind, s.Expr, types.ConstraintToType(narrowed)))
	}
	return child
}

func (st *Stager) stageRecord(e *ast.Record, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	type item struct {
		name   string
		spread bool
		val    SValue
	}
	items := make([]item, 0, len(e.Fields))
	allNow := true
	for _, f := range e.Fields {
		v, err := st.Stage(f.Value, senv, cenv, tenv)
		if err != nil {
			return SValue{}, err
		}
		if !v.AllFreeNow() {
			allNow = false
		}
		items = append(items, item{f.Name, f.Spread, v})
	}
	if allNow {
		return st.stageNow(e, cenv, tenv)
	}
	fields := make([]jsast.ObjectField, 0, len(items))
	fieldTypes := make([]types.FieldT, 0, len(items))
	for _, it := range items {
		if it.spread {
			rng := e.Range()
			return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "spreading a runtime value into a record literal is not supported")
		}
		fields = append(fields, jsast.ObjectField{Key: it.name, Value: sToJS(it.val)})
		fieldTypes = append(fieldTypes, types.FieldT{Name: it.name, Type: it.val.StaticType()})
	}
	return LaterValue(OriginExpr, &jsast.Object{Fields: fields}, types.RecordT{Fields: fieldTypes, Closed: true}), nil
}

func (st *Stager) stageArray(e *ast.Array, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	items := make([]SValue, 0, len(e.Elements))
	allNow := true
	for _, el := range e.Elements {
		v, err := st.Stage(el.Value, senv, cenv, tenv)
		if err != nil {
			return SValue{}, err
		}
		if el.Spread && !v.AllFreeNow() {
			rng := e.Range()
			return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "spreading a runtime value into an array literal is not supported")
		}
		if el.Spread {
			arr, ok := v.Now.Value.(value.Array)
			if !ok {
				rng := e.Range()
				return SValue{}, diag.New(diag.Typecheck, diag.BadSpread, &rng, "spread element is not an array")
			}
			for _, sub := range arr.Elements {
				items = append(items, NowValue(evalc.TypedValue{Value: sub, Type: types.Prim(types.Unknown)}))
			}
			continue
		}
		if !v.AllFreeNow() {
			allNow = false
		}
		items = append(items, v)
	}
	if allNow {
		return st.stageNow(e, cenv, tenv)
	}
	elems := make([]jsast.Expr, len(items))
	elemTypes := make([]types.Type, len(items))
	for i, it := range items {
		elems[i] = sToJS(it)
		elemTypes[i] = it.StaticType()
	}
	return LaterValue(OriginExpr, &jsast.Array{Elements: elems}, types.ArrayT{Elements: []types.Type{joinTypesLocal(elemTypes)}, Variadic: true}), nil
}

func (st *Stager) stageProperty(e *ast.Property, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	obj, err := st.Stage(e.Object, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if obj.AllFreeNow() {
		return st.stageNow(e, cenv, tenv)
	}
	if !obj.IsLater() {
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "cannot access a property of a staged closure")
	}
	rt := types.Type(types.Prim(types.Unknown))
	if rec, ok := types.Unwrap(obj.Type).(types.RecordT); ok {
		if f, ok2 := rec.Field(e.Name); ok2 {
			rt = f.Type
		}
	}
	return LaterValue(OriginExpr, &jsast.Member{Object: obj.Expr, Name: e.Name}, rt), nil
}

func (st *Stager) stageIndex(e *ast.Index, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	obj, err := st.Stage(e.Object, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	idx, err := st.Stage(e.Idx, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if obj.AllFreeNow() && idx.AllFreeNow() {
		return st.stageNow(e, cenv, tenv)
	}
	if !obj.IsLater() {
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "cannot index a staged closure")
	}
	elemT := types.Type(types.Prim(types.Unknown))
	if arr, ok := types.Unwrap(obj.Type).(types.ArrayT); ok {
		elemT = joinTypesLocal(arr.Elements)
	}
	return LaterValue(OriginExpr, &jsast.Index{Object: obj.Expr, Idx: sToJS(idx)}, elemT), nil
}

func (st *Stager) stageLambda(e *ast.Lambda, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	if senv.HasLater() {
		return StagedClosureValue(&StagedClosure{Params: e.Params, Body: e.Body, Captured: senv, CapturedC: cenv, CapturedT: tenv}), nil
	}
	return st.stageNow(e, cenv, tenv)
}

func (st *Stager) stageMatch(e *ast.Match, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	scrut, err := st.Stage(e.Scrutinee, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if !scrut.IsNow() {
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "matching over a runtime-staged scrutinee is not supported")
	}
	return st.stageNow(e, cenv, tenv)
}

func (st *Stager) stageThrow(e *ast.Throw, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	v, err := st.Stage(e.Value, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if v.AllFreeNow() {
		return st.stageNow(e, cenv, tenv)
	}
	return LaterValue(OriginExpr, &jsast.IIFE{Body: []jsast.Stmt{&jsast.Throw{Value: sToJS(v)}}}, types.Prim(types.NeverPrim)), nil
}

func (st *Stager) stageAwait(e *ast.Await, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	v, err := st.Stage(e.Value, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	return LaterValue(OriginExpr, &jsast.Unary{Op: "await", Operand: sToJS(v)}, v.StaticType()), nil
}

func (st *Stager) stageTemplate(e *ast.Template, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	staged := make([]SValue, len(e.Parts))
	allNow := true
	for i, p := range e.Parts {
		if p.Interp == nil {
			continue
		}
		v, err := st.Stage(p.Interp, senv, cenv, tenv)
		if err != nil {
			return SValue{}, err
		}
		staged[i] = v
		if !v.AllFreeNow() {
			allNow = false
		}
	}
	if allNow {
		return st.stageNow(e, cenv, tenv)
	}
	var acc jsast.Expr
	for i, p := range e.Parts {
		var seg jsast.Expr
		if p.Interp == nil {
			seg = &jsast.Lit{Value: p.Literal}
		} else {
			seg = sToJS(staged[i])
		}
		if acc == nil {
			acc = seg
		} else {
			acc = &jsast.BinOp{Op: "+", Left: acc, Right: seg}
		}
	}
	return LaterValue(OriginExpr, acc, types.Prim(types.String)), nil
}

func (st *Stager) stageBlock(e *ast.Block, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	inner := senv.Extend()
	innerCenv := cenv.Extend()
	var stmts []jsast.Stmt
	anyLaterDecl := false

	for _, d := range e.Decls {
		switch dd := d.(type) {
		case *ast.Const:
			v, err := st.Stage(dd.Init, inner, innerCenv, tenv)
			if err != nil {
				return SValue{}, err
			}
			if dd.Comptime && !v.AllFreeNow() {
				rng := dd.Range()
				return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "comptime binding %q is not computable at compile time", dd.Name)
			}
			inner.Bind(dd.Name, v)
			if v.IsNow() {
				innerCenv.Bind(dd.Name, value.EvaluatedBinding(v.Now.Value, v.Now.Type))
			} else {
				anyLaterDecl = true
				stmts = append(stmts, &jsast.Const{Name: dd.Name, Init: sToJS(v)})
			}
		case *ast.ExprStmt:
			v, err := st.Stage(dd.Value, inner, innerCenv, tenv)
			if err != nil {
				return SValue{}, err
			}
			if !v.IsNow() {
				anyLaterDecl = true
				stmts = append(stmts, &jsast.ExprStmt{Value: sToJS(v)})
			}
		case *ast.Import:
			for _, n := range dd.Names {
				inner.Bind(n, NowValue(evalc.TypedValue{Value: value.Null{}, Type: types.Prim(types.Unknown)}))
				innerCenv.Bind(n, value.EvaluatedBinding(value.Null{}, types.Prim(types.Unknown)))
			}
		default:
			rng := d.Range()
			return SValue{}, diag.New(diag.Typecheck, diag.DesugarFailure, &rng, "unsupported declaration node %T in staging", d)
		}
	}

	var result SValue
	if e.Result == nil {
		result = NowValue(evalc.TypedValue{Value: value.Null{}, Type: types.Prim(types.Null)})
	} else {
		r, err := st.Stage(e.Result, inner, innerCenv, tenv)
		if err != nil {
			return SValue{}, err
		}
		result = r
	}

	if !anyLaterDecl && result.AllFreeNow() {
		return result, nil
	}
	stmts = append(stmts, &jsast.Return{Value: sToJS(result)})
	return LaterValue(OriginExpr, &jsast.IIFE{Body: stmts}, result.StaticType()), nil
}
