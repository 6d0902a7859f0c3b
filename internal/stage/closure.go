package stage

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/jsast"
	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

func (st *Stager) stageCall(e *ast.Call, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	if id, ok := e.Fn.(*ast.Identifier); ok {
		switch id.Name {
		case "comptime":
			return st.stageComptime(e, senv, cenv, tenv)
		case "runtime":
			return st.stageRuntime(e, senv, cenv, tenv)
		}
	}

	fnS, err := st.Stage(e.Fn, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}

	argSs := make([]SValue, 0, len(e.Args))
	argsAllNow := true
	for _, a := range e.Args {
		v, err := st.Stage(a.Value, senv, cenv, tenv)
		if err != nil {
			return SValue{}, err
		}
		if a.Spread && !v.AllFreeNow() {
			rng := e.Range()
			return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "spreading a runtime value into a call is not supported")
		}
		if a.Spread {
			arr, ok := v.Now.Value.(value.Array)
			if !ok {
				rng := e.Range()
				return SValue{}, diag.New(diag.Typecheck, diag.BadSpread, &rng, "spread argument is not an array")
			}
			for range arr.Elements {
				// each spread element is itself already fully Now; keep the
				// expansion in stageNow's hands by falling through below.
			}
			argsAllNow = argsAllNow && v.AllFreeNow()
			argSs = append(argSs, v)
			continue
		}
		if !v.AllFreeNow() {
			argsAllNow = false
		}
		argSs = append(argSs, v)
	}

	if fnS.IsNow() && argsAllNow {
		return st.stageNow(e, cenv, tenv)
	}

	if fnS.IsStagedClosure() {
		return st.applyStagedClosure(fnS.Closure, e, argSs)
	}

	var fnExpr jsast.Expr
	switch {
	case fnS.IsLater():
		fnExpr = fnS.Expr
	case fnS.IsNow():
		fnExpr = valueToJSExpr(fnS.Now.Value)
	default:
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "callee does not stage to a callable value")
	}
	argExprs := make([]jsast.Expr, len(argSs))
	for i, a := range argSs {
		argExprs[i] = sToJS(a)
	}
	return LaterValue(OriginExpr, &jsast.Call{Fn: fnExpr, Args: argExprs}, types.Prim(types.Unknown)), nil
}

// stageComptime implements the `comptime(e)` special form: it stages e and
// requires the result to be fully compile-time known, surfacing a
// StagingError rather than silently residualizing when it is not.
func (st *Stager) stageComptime(e *ast.Call, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	if len(e.Args) != 1 {
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.MissingArg, &rng, "comptime expects exactly one argument")
	}
	v, err := st.Stage(e.Args[0].Value, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	if !v.AllFreeNow() {
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "comptime requires its argument to be fully compile-time known, but it has a residual (Later) part")
	}
	return v, nil
}

// stageRuntime implements the `runtime(e[, name])` special form: it stages
// e, then forces a Later result regardless of e's own Now-ness by binding
// its value (folded to a residual literal if it was Now) into a fresh
// IIFE-scoped const, so every downstream use sees a runtime binding rather
// than an inlined compile-time value. name defaults to "runtimeValue" and,
// when given, must be a string literal.
func (st *Stager) stageRuntime(e *ast.Call, senv *Env, cenv, tenv *value.Environment) (SValue, error) {
	if len(e.Args) < 1 || len(e.Args) > 2 {
		rng := e.Range()
		return SValue{}, diag.New(diag.Typecheck, diag.MissingArg, &rng, "runtime expects one value argument and an optional name")
	}
	v, err := st.Stage(e.Args[0].Value, senv, cenv, tenv)
	if err != nil {
		return SValue{}, err
	}
	name := "runtimeValue"
	if len(e.Args) == 2 {
		lit, ok := e.Args[1].Value.(*ast.Literal)
		if !ok || lit.Kind != ast.StringLit {
			rng := e.Args[1].Value.Range()
			return SValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "runtime's second argument must be a string literal naming the residual binding")
		}
		name = lit.Raw.(string)
	}
	body := []jsast.Stmt{
		&jsast.Const{Name: name, Init: sToJS(v)},
		&jsast.Return{Value: &jsast.Var{Name: name}},
	}
	return LaterValue(OriginRuntimeInput, &jsast.IIFE{Body: body}, v.StaticType()), nil
}

// applyStagedClosure re-stages a staged closure's body under a fresh scope
// extending its captured environment, per "do not try to partial-eval them
// up front ... re-stage their body on each call whose argument staging
// differs". Bounded-generic (`Bound != nil`) parameters are not supported
// on this path: a staged closure's generic parameters cannot be resolved
// without concrete type arguments, which this path does not read from the
// call; such parameters are skipped, consume no argument and stay unbound.
func (st *Stager) applyStagedClosure(c *StagedClosure, call *ast.Call, argSs []SValue) (SValue, error) {
	bodyEnv := c.Captured.Extend()
	bodyCenv := c.CapturedC.Extend()
	bodyTenv := c.CapturedT.Extend()
	argIdx := 0
	for _, p := range c.Params {
		if p.Bound != nil {
			continue
		}
		var av SValue
		switch {
		case argIdx < len(argSs):
			av = argSs[argIdx]
			argIdx++
		case p.Default != nil:
			dv, err := st.Stage(p.Default, bodyEnv, bodyCenv, bodyTenv)
			if err != nil {
				return SValue{}, err
			}
			av = dv
		default:
			rng := call.Range()
			return SValue{}, diag.New(diag.Typecheck, diag.MissingArg, &rng, "missing argument %q", p.Name)
		}
		bodyEnv.Bind(p.Name, av)
		if av.IsNow() {
			bodyCenv.Bind(p.Name, value.EvaluatedBinding(av.Now.Value, av.Now.Type))
		}
	}
	return st.Stage(c.Body, bodyEnv, bodyCenv, bodyTenv)
}
