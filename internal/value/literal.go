package value

import "github.com/typeforge/tfc/internal/ast"

// FromLiteral converts a literal AST node into its runtime Value. This is
// shared by the compile-time evaluator and the refinement extractor so
// both agree on what a literal denotes.
func FromLiteral(lit *ast.Literal) Value {
	switch lit.Kind {
	case ast.IntLit:
		return Int(lit.Raw.(int64))
	case ast.FloatLit:
		return Float(lit.Raw.(float64))
	case ast.StringLit:
		return String{Value: lit.Raw.(string)}
	case ast.BoolLit:
		return Bool{Value: lit.Raw.(bool)}
	default:
		return Null{}
	}
}
