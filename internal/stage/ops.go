package stage

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/jsast"
	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

func jsOp(op ast.BinaryOp) string {
	switch op {
	case ast.Add:
		return "+"
	case ast.Sub:
		return "-"
	case ast.Mul:
		return "*"
	case ast.Div:
		return "/"
	case ast.Mod:
		return "%"
	case ast.Eq:
		return "==="
	case ast.Neq:
		return "!=="
	case ast.Lt:
		return "<"
	case ast.Lte:
		return "<="
	case ast.Gt:
		return ">"
	case ast.Gte:
		return ">="
	case ast.And:
		return "&&"
	case ast.Or:
		return "||"
	default:
		return "?"
	}
}

func isNumberType(t types.Type) bool {
	switch tt := types.Unwrap(t).(type) {
	case types.PrimitiveT:
		return tt.Kind == types.Int || tt.Kind == types.Float || tt.Kind == types.Number
	case types.LiteralT:
		return tt.Value.IsNumber
	default:
		return false
	}
}

// binaryResultType is a best-effort static type for a residualized binary
// expression; it need not be exact, only sound enough for downstream
// narrowing and printing.
func binaryResultType(op ast.BinaryOp, l, r types.Type) types.Type {
	switch op {
	case ast.Add:
		if isNumberType(l) && isNumberType(r) {
			return types.Prim(types.Number)
		}
		return types.Prim(types.String)
	case ast.Sub, ast.Mul, ast.Div, ast.Mod:
		return types.Prim(types.Number)
	case ast.Eq, ast.Neq, ast.Lt, ast.Lte, ast.Gt, ast.Gte:
		return types.Prim(types.Boolean)
	case ast.And, ast.Or:
		return joinTypesLocal([]types.Type{l, r})
	default:
		return types.Prim(types.Unknown)
	}
}

func joinTypesLocal(ts []types.Type) types.Type {
	seen := map[string]types.Type{}
	order := make([]types.Type, 0, len(ts))
	for _, t := range ts {
		if t == nil {
			continue
		}
		k := t.String()
		if _, ok := seen[k]; !ok {
			seen[k] = t
			order = append(order, t)
		}
	}
	switch len(order) {
	case 0:
		return types.Prim(types.Unknown)
	case 1:
		return order[0]
	default:
		return types.UnionT{Variants: order}
	}
}

// valueToJSExpr embeds a compile-time-known value into a residual tree,
// e.g. a Now field sitting alongside Later siblings in an object literal.
func valueToJSExpr(v value.Value) jsast.Expr {
	switch tv := v.(type) {
	case value.Number:
		return &jsast.Lit{Value: tv.AsFloat()}
	case value.String:
		return &jsast.Lit{Value: tv.Value}
	case value.Bool:
		return &jsast.Lit{Value: tv.Value}
	case value.Null:
		return &jsast.Lit{Value: nil}
	case value.Object:
		fields := make([]jsast.ObjectField, len(tv.Fields))
		for i, f := range tv.Fields {
			fields[i] = jsast.ObjectField{Key: f.Name, Value: valueToJSExpr(f.Value)}
		}
		return &jsast.Object{Fields: fields}
	case value.Array:
		elems := make([]jsast.Expr, len(tv.Elements))
		for i, el := range tv.Elements {
			elems[i] = valueToJSExpr(el)
		}
		return &jsast.Array{Elements: elems}
	default:
		return &jsast.Lit{Value: nil}
	}
}

// ToJS is the exported form of sToJS, used by the checker driver to
// residualize a top-level staged declaration's value.
func ToJS(s SValue) jsast.Expr { return sToJS(s) }

// sToJS converts an already-staged SValue (Now or Later) into the residual
// expression standing in for it at an embedding site.
func sToJS(s SValue) jsast.Expr {
	switch s.kind {
	case kindNow:
		return valueToJSExpr(s.Now.Value)
	case kindLater:
		return s.Expr
	case kindLaterArray:
		elems := make([]jsast.Expr, len(s.Entries))
		for i, e := range s.Entries {
			elems[i] = sToJS(e)
		}
		return &jsast.Array{Elements: elems}
	default:
		return &jsast.Lit{Value: nil}
	}
}

// materializeNow recovers a concrete TypedValue from an SValue that is
// wholly compile-time known (kindNow, or a kindLaterArray all of whose
// entries are themselves materializable).
func materializeNow(s SValue) (tv typedValue, ok bool) {
	switch s.kind {
	case kindNow:
		return typedValue{Value: s.Now.Value, Type: s.Now.Type}, true
	case kindLaterArray:
		vals := make([]value.Value, len(s.Entries))
		elemTypes := make([]types.Type, len(s.Entries))
		for i, e := range s.Entries {
			etv, ok := materializeNow(e)
			if !ok {
				return typedValue{}, false
			}
			vals[i] = etv.Value
			elemTypes[i] = etv.Type
		}
		return typedValue{
			Value: value.Array{Elements: vals, Variadic: true},
			Type:  types.ArrayT{Elements: []types.Type{joinTypesLocal(elemTypes)}, Variadic: true},
		}, true
	default:
		return typedValue{}, false
	}
}

// typedValue mirrors evalc.TypedValue without importing evalc from this
// file, which only needs the shape for materializeNow's local use.
type typedValue struct {
	Value value.Value
	Type  types.Type
}
