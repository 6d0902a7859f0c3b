package evalc

import (
	"math"

	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/value"
)

func (ev *Evaluator) evalBinary(e *ast.Binary, cenv, tenv *value.Environment) (TypedValue, error) {
	switch e.Op {
	case ast.And:
		return ev.evalShortCircuit(e, cenv, tenv, false)
	case ast.Or:
		return ev.evalShortCircuit(e, cenv, tenv, true)
	}

	l, err := ev.Evaluate(e.Left, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	r, err := ev.Evaluate(e.Right, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}

	switch e.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		return ev.evalArith(e, l, r)
	case ast.Eq, ast.Neq:
		return ev.evalEquality(e, l, r)
	case ast.Lt, ast.Lte, ast.Gt, ast.Gte:
		return ev.evalCompare(e, l, r)
	default:
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.DesugarFailure, &rng, "unsupported operator %q", e.Op)
	}
}

// evalShortCircuit returns the left operand without touching the right
// when the left already determines the result: for `||` that's a true
// left, for `&&` a false left. Otherwise the right operand is evaluated
// and its value (and type) becomes the result, per the spec's "preserving
// its type" rule.
func (ev *Evaluator) evalShortCircuit(e *ast.Binary, cenv, tenv *value.Environment, or bool) (TypedValue, error) {
	l, err := ev.Evaluate(e.Left, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	lb, ok := l.Value.(value.Bool)
	if !ok {
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "operand of %q must be boolean", e.Op)
	}
	if lb.Value == or {
		return l, nil
	}
	return ev.Evaluate(e.Right, cenv, tenv)
}

func (ev *Evaluator) evalArith(e *ast.Binary, l, r TypedValue) (TypedValue, error) {
	ln, lok := l.Value.(value.Number)
	rn, rok := r.Value.(value.Number)
	if !lok || !rok {
		if e.Op == ast.Add {
			ls, lsok := l.Value.(value.String)
			rs, rsok := r.Value.(value.String)
			if lsok && rsok {
				res := value.String{Value: ls.Value + rs.Value}
				return TypedValue{Value: res, Type: literalType(res)}, nil
			}
		}
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "operator %q requires numeric operands", e.Op)
	}

	bothInt := ln.IsInt && rn.IsInt && e.Op != ast.Div
	var res value.Number
	switch e.Op {
	case ast.Add:
		if bothInt {
			res = value.Int(ln.I + rn.I)
		} else {
			res = value.Float(ln.AsFloat() + rn.AsFloat())
		}
	case ast.Sub:
		if bothInt {
			res = value.Int(ln.I - rn.I)
		} else {
			res = value.Float(ln.AsFloat() - rn.AsFloat())
		}
	case ast.Mul:
		if bothInt {
			res = value.Int(ln.I * rn.I)
		} else {
			res = value.Float(ln.AsFloat() * rn.AsFloat())
		}
	case ast.Div:
		if rn.AsFloat() == 0 {
			rng := e.Range()
			return TypedValue{}, diag.New(diag.Typecheck, diag.AssertionFailed, &rng, "division by zero")
		}
		res = value.Float(ln.AsFloat() / rn.AsFloat())
	case ast.Mod:
		if bothInt {
			if rn.I == 0 {
				rng := e.Range()
				return TypedValue{}, diag.New(diag.Typecheck, diag.AssertionFailed, &rng, "modulo by zero")
			}
			res = value.Int(ln.I % rn.I)
		} else {
			res = value.Float(math.Mod(ln.AsFloat(), rn.AsFloat()))
		}
	}
	return TypedValue{Value: res, Type: literalType(res)}, nil
}

func (ev *Evaluator) evalEquality(e *ast.Binary, l, r TypedValue) (TypedValue, error) {
	eq := value.ValuesEqual(l.Value, r.Value)
	if e.Op == ast.Neq {
		eq = !eq
	}
	res := value.Bool{Value: eq}
	return TypedValue{Value: res, Type: literalType(res)}, nil
}

func (ev *Evaluator) evalCompare(e *ast.Binary, l, r TypedValue) (TypedValue, error) {
	ln, lok := l.Value.(value.Number)
	rn, rok := r.Value.(value.Number)
	if !lok || !rok {
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "operator %q requires numeric operands", e.Op)
	}
	var res bool
	switch e.Op {
	case ast.Lt:
		res = ln.AsFloat() < rn.AsFloat()
	case ast.Lte:
		res = ln.AsFloat() <= rn.AsFloat()
	case ast.Gt:
		res = ln.AsFloat() > rn.AsFloat()
	case ast.Gte:
		res = ln.AsFloat() >= rn.AsFloat()
	}
	bv := value.Bool{Value: res}
	return TypedValue{Value: bv, Type: literalType(bv)}, nil
}

func (ev *Evaluator) evalUnary(e *ast.Unary, cenv, tenv *value.Environment) (TypedValue, error) {
	operand, err := ev.Evaluate(e.Operand, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	switch e.Op {
	case ast.Neg:
		n, ok := operand.Value.(value.Number)
		if !ok {
			rng := e.Range()
			return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "unary - requires a numeric operand")
		}
		var res value.Number
		if n.IsInt {
			res = value.Int(-n.I)
		} else {
			res = value.Float(-n.F)
		}
		return TypedValue{Value: res, Type: literalType(res)}, nil
	case ast.Not:
		b, ok := operand.Value.(value.Bool)
		if !ok {
			rng := e.Range()
			return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "unary ! requires a boolean operand")
		}
		res := value.Bool{Value: !b.Value}
		return TypedValue{Value: res, Type: literalType(res)}, nil
	default:
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.DesugarFailure, &rng, "unsupported unary operator %q", e.Op)
	}
}
