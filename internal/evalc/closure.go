package evalc

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

func (ev *Evaluator) evalLambda(e *ast.Lambda, cenv, tenv *value.Environment) (TypedValue, error) {
	var rt types.Type
	if e.ReturnType != nil {
		tv, err := ev.Evaluate(e.ReturnType, cenv, tenv)
		if err != nil {
			return TypedValue{}, err
		}
		tvt, ok := tv.Value.(value.TypeValue)
		if !ok {
			rng := e.Range()
			return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "return type annotation must be a type value")
		}
		rt = tvt.Type
	}

	closure := &value.Closure{Params: e.Params, Body: e.Body, Captured: cenv, Async: e.Async, ReturnType: rt}

	paramTypes := make([]types.Type, len(e.Params))
	for i, p := range e.Params {
		if p.Type != nil {
			tv, err := ev.Evaluate(p.Type, cenv, tenv)
			if err != nil {
				return TypedValue{}, err
			}
			if tvt, ok := tv.Value.(value.TypeValue); ok {
				paramTypes[i] = tvt.Type
				continue
			}
		}
		paramTypes[i] = types.Prim(types.Unknown)
	}

	ret := rt
	if ret == nil {
		ret = types.Prim(types.Unknown)
	}
	return TypedValue{Value: closure, Type: types.FunctionT{Params: paramTypes, ReturnType: ret, Async: e.Async}}, nil
}

func (ev *Evaluator) evalCall(e *ast.Call, cenv, tenv *value.Environment) (TypedValue, error) {
	fnTV, err := ev.Evaluate(e.Fn, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}

	var typeArgs []value.Value
	for _, ta := range e.TypeArgs {
		tv, err := ev.Evaluate(ta, cenv, tenv)
		if err != nil {
			return TypedValue{}, err
		}
		typeArgs = append(typeArgs, tv.Value)
	}

	var args []value.Value
	var argTypes []types.Type
	for _, a := range e.Args {
		tv, err := ev.Evaluate(a.Value, cenv, tenv)
		if err != nil {
			return TypedValue{}, err
		}
		if a.Spread {
			arr, ok := tv.Value.(value.Array)
			if !ok {
				rng := e.Range()
				return TypedValue{}, diag.New(diag.Typecheck, diag.BadSpread, &rng, "spread argument is not an array")
			}
			elemType := elemTypeOf(tv.Type)
			for _, el := range arr.Elements {
				args = append(args, el)
				argTypes = append(argTypes, elemType)
			}
			continue
		}
		args = append(args, tv.Value)
		argTypes = append(argTypes, tv.Type)
	}

	switch fn := fnTV.Value.(type) {
	case *value.Closure:
		return ev.applyClosure(fn, typeArgs, args, argTypes, e.Range())
	case *value.Builtin:
		res, err := fn.Fn(args)
		if err != nil {
			rng := e.Range()
			kind := diag.DesugarFailure
			if fn.Name == "assert" {
				kind = diag.AssertionFailed
			}
			return TypedValue{}, diag.New(diag.Typecheck, kind, &rng, "%s", err.Error())
		}
		return TypedValue{Value: res, Type: inferType(res)}, nil
	default:
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "value is not callable")
	}
}

func elemTypeOf(t types.Type) types.Type {
	if at, ok := types.Unwrap(t).(types.ArrayT); ok {
		return joinTypes(at.Elements)
	}
	return types.Prim(types.Unknown)
}

// applyClosure binds typeArgs to parameters carrying an explicit `Bound`
// (the `<T extends Bound>`-style type parameters of a generic call),
// enforcing the constraint via isSubtype, then binds the remaining
// positional args to the remaining parameters, falling back to each
// parameter's default expression and finally to MissingArg.
func (ev *Evaluator) applyClosure(c *value.Closure, typeArgs, args []value.Value, argTypes []types.Type, rng ast.Range) (TypedValue, error) {
	env := c.Captured.Extend()
	typeIdx, argIdx := 0, 0

	for _, p := range c.Params {
		if p.Bound != nil {
			boundType, err := ev.evalBound(p.Bound, env, rng)
			if err != nil {
				return TypedValue{}, err
			}
			if typeIdx >= len(typeArgs) {
				return TypedValue{}, diag.New(diag.Typecheck, diag.MissingArg, &rng, "missing type argument for %q", p.Name)
			}
			argVal := typeArgs[typeIdx]
			typeIdx++
			tv, ok := argVal.(value.TypeValue)
			if !ok {
				return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "type argument for %q must be a type value", p.Name)
			}
			if !types.IsSubtype(tv.Type, boundType) {
				return TypedValue{}, diag.New(diag.Typecheck, diag.ConstraintViolation, &rng,
					"type argument %s does not satisfy bound %s", tv.Type.String(), boundType.String())
			}
			env.Bind(p.Name, value.EvaluatedBinding(argVal, types.BoundedT{Bound: boundType}))
			continue
		}

		var argVal value.Value
		var argType types.Type
		switch {
		case argIdx < len(args):
			argVal, argType = args[argIdx], argTypes[argIdx]
			argIdx++
		case p.Default != nil:
			tv, err := ev.Evaluate(p.Default, env, env)
			if err != nil {
				return TypedValue{}, err
			}
			argVal, argType = tv.Value, tv.Type
		default:
			return TypedValue{}, diag.New(diag.Typecheck, diag.MissingArg, &rng, "missing argument %q", p.Name)
		}

		if p.Type != nil {
			declType, err := ev.evalBound(p.Type, env, rng)
			if err == nil {
				if bt, isBound := declType.(types.BoundedT); isBound {
					if argTV, isTV := argVal.(value.TypeValue); isTV && !types.IsSubtype(argTV.Type, bt.Bound) {
						return TypedValue{}, diag.New(diag.Typecheck, diag.ConstraintViolation, &rng,
							"argument %s does not satisfy bound %s", argTV.Type.String(), bt.Bound.String())
					}
				}
				argType = declType
			}
		}
		env.Bind(p.Name, value.EvaluatedBinding(argVal, argType))
	}

	return ev.Evaluate(c.Body, env, env)
}

// evalBound evaluates a type expression (a param's declared Type or
// Bound) down to the types.Type it denotes.
func (ev *Evaluator) evalBound(typeExpr ast.Expr, env *value.Environment, rng ast.Range) (types.Type, error) {
	tv, err := ev.Evaluate(typeExpr, env, env)
	if err != nil {
		return nil, err
	}
	bt, ok := tv.Value.(value.TypeValue)
	if !ok {
		return nil, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "parameter type/bound expression must evaluate to a type value")
	}
	return bt.Type, nil
}

// applyClosureWithValues is the entry point builtins use to invoke a
// user-supplied callback with already-computed argument values (array
// methods' element/index/array triple, reduce's accumulator, ...).
func (ev *Evaluator) applyClosureWithValues(c *value.Closure, args []value.Value) (value.Value, error) {
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = inferType(a)
	}
	tv, err := ev.applyClosure(c, nil, args, argTypes, ast.Range{})
	if err != nil {
		return nil, err
	}
	return tv.Value, nil
}
