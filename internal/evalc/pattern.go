package evalc

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/value"
)

func (ev *Evaluator) evalMatch(e *ast.Match, cenv, tenv *value.Environment) (TypedValue, error) {
	scrutinee, err := ev.Evaluate(e.Scrutinee, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	for _, c := range e.Cases {
		env := cenv.Extend()
		ok, err := ev.bindPattern(c.Pattern, scrutinee, env)
		if err != nil {
			return TypedValue{}, err
		}
		if !ok {
			continue
		}
		if c.Guard != nil {
			g, err := ev.Evaluate(c.Guard, env, tenv)
			if err != nil {
				return TypedValue{}, err
			}
			gb, isBool := g.Value.(value.Bool)
			if !isBool || !gb.Value {
				continue
			}
		}
		return ev.Evaluate(c.Body, env, tenv)
	}
	rng := e.Range()
	return TypedValue{}, diag.New(diag.Typecheck, diag.NoMatch, &rng, "no case matched the scrutinee")
}

// bindPattern attempts to bind pat against scrutinee in env, reporting
// whether the pattern matched. Raw-value equality for literal patterns is
// structural: primitives by identity, arrays component-wise, records by
// key-set and recursive equality, type-values by canonical form equality.
func (ev *Evaluator) bindPattern(pat ast.Pattern, scrutinee TypedValue, env *value.Environment) (bool, error) {
	switch p := pat.(type) {
	case ast.WildcardPattern:
		return true, nil

	case ast.LiteralPattern:
		litTV, err := ev.Evaluate(p.Value, env, env)
		if err != nil {
			return false, err
		}
		return value.ValuesEqual(litTV.Value, scrutinee.Value), nil

	case ast.BindingPattern:
		env.Bind(p.Name, value.EvaluatedBinding(scrutinee.Value, scrutinee.Type))
		if p.Inner != nil {
			return ev.bindPattern(p.Inner, scrutinee, env)
		}
		return true, nil

	case ast.DestructurePattern:
		obj, ok := scrutinee.Value.(value.Object)
		if !ok {
			return false, nil
		}
		for _, df := range p.Fields {
			f, found := obj.Field(df.Name)
			if !found {
				return false, nil
			}
			fieldTV := TypedValue{Value: f.Value, Type: f.Type}
			if df.Pattern != nil {
				matched, err := ev.bindPattern(df.Pattern, fieldTV, env)
				if err != nil || !matched {
					return false, err
				}
				continue
			}
			name := df.Alias
			if name == "" {
				name = df.Name
			}
			env.Bind(name, value.EvaluatedBinding(f.Value, f.Type))
		}
		return true, nil

	default:
		return false, nil
	}
}
