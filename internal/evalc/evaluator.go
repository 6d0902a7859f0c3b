// Package evalc is the compile-time evaluator: a fuel-bounded interpreter
// over the core expression AST that produces TypedValue pairs, threading
// the persistent Environment of the value package and the structural Type
// algebra of the types package.
package evalc

import (
	"strings"

	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

// TypedValue pairs a raw runtime value with its statically known type, so
// that typeOf(v) is a projection rather than a re-analysis.
type TypedValue struct {
	Value value.Value
	Type  types.Type
}

// Evaluator owns all mutable state of one compilation: the fuel counter
// and the fresh-id generators. A fresh Evaluator is created per top-level
// compilation; nothing here is global.
type Evaluator struct {
	fuel       int
	maxFuel    int
	nextVarID  int
	nextCVarID int
}

// DefaultFuel is the budget used when none is configured, per §5.
const DefaultFuel = 10000

// New creates an Evaluator with the given fuel budget.
func New(fuel int) *Evaluator {
	if fuel <= 0 {
		fuel = DefaultFuel
	}
	return &Evaluator{fuel: fuel, maxFuel: fuel}
}

// Reset rearms the fuel counter and zeroes the fresh-id generators, for
// reuse across independent compilations in the same process.
func (ev *Evaluator) Reset(fuel int) {
	if fuel <= 0 {
		fuel = ev.maxFuel
	}
	ev.fuel, ev.maxFuel = fuel, fuel
	ev.nextVarID, ev.nextCVarID = 0, 0
}

// RemainingFuel reports the steps left before FuelExhausted.
func (ev *Evaluator) RemainingFuel() int { return ev.fuel }

// FreshVar returns a process-unique (within this evaluator) variable id,
// used by the stager to name residual locals.
func (ev *Evaluator) FreshVar() int {
	ev.nextVarID++
	return ev.nextVarID
}

// FreshCVar returns a fresh constraint inference-variable id.
func (ev *Evaluator) FreshCVar() int {
	ev.nextCVarID++
	return ev.nextCVarID
}

func (ev *Evaluator) tick(rng ast.Range) error {
	ev.fuel--
	if ev.fuel < 0 {
		return diag.New(diag.Typecheck, diag.FuelExhausted, &rng, "fuel budget exhausted")
	}
	return nil
}

// Evaluate interprets expr under the compile-time (cenv) and type (tenv)
// environments, decrementing fuel once per call.
func (ev *Evaluator) Evaluate(expr ast.Expr, cenv, tenv *value.Environment) (TypedValue, error) {
	if err := ev.tick(expr.Range()); err != nil {
		return TypedValue{}, err
	}
	switch e := expr.(type) {
	case *ast.Literal:
		return ev.evalLiteral(e)
	case *ast.Identifier:
		return ev.evalIdentifier(e, cenv)
	case *ast.Binary:
		return ev.evalBinary(e, cenv, tenv)
	case *ast.Unary:
		return ev.evalUnary(e, cenv, tenv)
	case *ast.Conditional:
		return ev.evalConditional(e, cenv, tenv)
	case *ast.Record:
		return ev.evalRecord(e, cenv, tenv)
	case *ast.Array:
		return ev.evalArray(e, cenv, tenv)
	case *ast.Property:
		return ev.evalProperty(e, cenv, tenv)
	case *ast.Index:
		return ev.evalIndex(e, cenv, tenv)
	case *ast.Lambda:
		return ev.evalLambda(e, cenv, tenv)
	case *ast.Call:
		return ev.evalCall(e, cenv, tenv)
	case *ast.Match:
		return ev.evalMatch(e, cenv, tenv)
	case *ast.Throw:
		return ev.evalThrow(e, cenv, tenv)
	case *ast.Await:
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.StagingError, &rng, "await is not permitted at compile time")
	case *ast.Template:
		return ev.evalTemplate(e, cenv, tenv)
	case *ast.Block:
		return ev.evalBlock(e, cenv, tenv)
	default:
		rng := expr.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.DesugarFailure, &rng, "unsupported expression node %T", expr)
	}
}

func (ev *Evaluator) evalLiteral(lit *ast.Literal) (TypedValue, error) {
	v := value.FromLiteral(lit)
	return TypedValue{Value: v, Type: literalType(v)}, nil
}

func (ev *Evaluator) evalIdentifier(id *ast.Identifier, cenv *value.Environment) (TypedValue, error) {
	b, ok := cenv.Lookup(id.Name)
	if !ok {
		rng := id.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.UndefinedIdentifier, &rng, "undefined identifier %q", id.Name)
	}
	return ev.force(id.Name, b, id.Range())
}

// force evaluates an unevaluated binding on first access and memoizes the
// result, detecting self-referential forces explicitly rather than
// overflowing the Go call stack.
func (ev *Evaluator) force(name string, b *value.Binding, rng ast.Range) (TypedValue, error) {
	if b.Evaluated {
		return TypedValue{Value: b.Value, Type: b.Type}, nil
	}
	if b.Forcing {
		return TypedValue{}, diag.New(diag.Typecheck, diag.CyclicBinding, &rng, "%q is referenced while evaluating its own definition", name)
	}
	b.Forcing = true
	tv, err := ev.Evaluate(b.Expr, b.Env, b.Env)
	b.Forcing = false
	if err != nil {
		return TypedValue{}, err
	}
	b.Evaluated = true
	b.Value, b.Type = tv.Value, tv.Type
	return tv, nil
}

func (ev *Evaluator) evalConditional(e *ast.Conditional, cenv, tenv *value.Environment) (TypedValue, error) {
	cond, err := ev.Evaluate(e.Cond, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	b, ok := cond.Value.(value.Bool)
	if !ok {
		rng := e.Range()
		return TypedValue{}, diag.New(diag.Typecheck, diag.TypeMismatch, &rng, "conditional guard must be boolean")
	}
	if b.Value {
		return ev.Evaluate(e.Then, cenv, tenv)
	}
	return ev.Evaluate(e.Else, cenv, tenv)
}

func (ev *Evaluator) evalTemplate(e *ast.Template, cenv, tenv *value.Environment) (TypedValue, error) {
	var b strings.Builder
	for _, part := range e.Parts {
		if part.Interp == nil {
			b.WriteString(part.Literal)
			continue
		}
		tv, err := ev.Evaluate(part.Interp, cenv, tenv)
		if err != nil {
			return TypedValue{}, err
		}
		b.WriteString(tv.Value.String())
	}
	res := value.String{Value: b.String()}
	return TypedValue{Value: res, Type: literalType(res)}, nil
}

func (ev *Evaluator) evalThrow(e *ast.Throw, cenv, tenv *value.Environment) (TypedValue, error) {
	tv, err := ev.Evaluate(e.Value, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	rng := e.Range()
	return TypedValue{}, diag.New(diag.Typecheck, diag.UserThrow, &rng, "uncaught throw: %s", tv.Value.Inspect())
}

func (ev *Evaluator) evalBlock(e *ast.Block, cenv, tenv *value.Environment) (TypedValue, error) {
	inner := cenv.Extend()
	for _, d := range e.Decls {
		if err := ev.evalDecl(d, inner, tenv); err != nil {
			return TypedValue{}, err
		}
	}
	if e.Result == nil {
		return TypedValue{Value: value.Null{}, Type: types.Prim(types.Null)}, nil
	}
	return ev.Evaluate(e.Result, inner, tenv)
}

func (ev *Evaluator) evalDecl(d ast.Decl, env, tenv *value.Environment) error {
	switch dd := d.(type) {
	case *ast.Const:
		b := value.UnevaluatedBinding(dd.Init, env, nil)
		env.Bind(dd.Name, b)
		if dd.Comptime {
			if _, err := ev.force(dd.Name, b, dd.Range()); err != nil {
				return err
			}
		}
		return nil
	case *ast.ExprStmt:
		_, err := ev.Evaluate(dd.Value, env, tenv)
		return err
	case *ast.Import:
		for _, n := range dd.Names {
			env.Bind(n, value.EvaluatedBinding(value.Null{}, types.Prim(types.Unknown)))
		}
		return nil
	default:
		rng := d.Range()
		return diag.New(diag.Typecheck, diag.DesugarFailure, &rng, "unsupported declaration node %T", d)
	}
}

// literalType builds the literalType(value, baseKind) the spec assigns to
// any value whose exact runtime identity is known at compile time.
func literalType(v value.Value) types.Type {
	switch tv := v.(type) {
	case value.Number:
		if tv.IsInt {
			return types.Literal(types.LitValue{IsNumber: true, Num: tv.AsFloat()}, types.Int)
		}
		return types.Literal(types.LitValue{IsNumber: true, Num: tv.AsFloat()}, types.Float)
	case value.String:
		return types.Literal(types.LitValue{IsString: true, Str: tv.Value}, types.String)
	case value.Bool:
		return types.Literal(types.LitValue{IsBool: true, Bool: tv.Value}, types.Boolean)
	case value.Null:
		return types.Prim(types.Null)
	default:
		return types.Prim(types.Unknown)
	}
}

// inferType reconstructs a reasonable type for a raw value whose declared
// type was not tracked through a binding (builtin results, callback
// returns). It is always sound for implication but may be looser than a
// type explicitly annotated in source.
func inferType(v value.Value) types.Type {
	switch tv := v.(type) {
	case value.Number, value.String, value.Bool, value.Null:
		return literalType(v)
	case value.TypeValue:
		return types.Prim(types.Unknown)
	case value.Object:
		fts := make([]types.FieldT, len(tv.Fields))
		for i, f := range tv.Fields {
			t := f.Type
			if t == nil {
				t = inferType(f.Value)
			}
			fts[i] = types.FieldT{Name: f.Name, Type: t}
		}
		return types.RecordT{Fields: fts, Closed: true}
	case value.Array:
		ts := make([]types.Type, len(tv.Elements))
		for i, el := range tv.Elements {
			ts[i] = inferType(el)
		}
		if tv.Variadic {
			return types.ArrayT{Elements: []types.Type{joinTypes(ts)}, Variadic: true}
		}
		return types.ArrayT{Elements: ts}
	case *value.Closure:
		rt := tv.ReturnType
		if rt == nil {
			rt = types.Prim(types.Unknown)
		}
		return types.FunctionT{ReturnType: rt, Async: tv.Async}
	case *value.Builtin:
		return types.FunctionT{ReturnType: types.Prim(types.Unknown)}
	default:
		return types.Prim(types.Unknown)
	}
}

func joinTypes(ts []types.Type) types.Type {
	switch len(ts) {
	case 0:
		return types.Prim(types.Unknown)
	case 1:
		return ts[0]
	default:
		variants := make([]types.Type, len(ts))
		copy(variants, ts)
		return types.UnionT{Variants: variants}
	}
}
