package cluster

import (
	"fmt"
	"strings"

	"github.com/typeforge/tfc/internal/jsast"
)

// Signature collapses expr into a string that is identical for every
// member of a cluster: every Lit collapses to the symbol "L", while
// variable names, operators, member/method names, and named-function
// names are preserved verbatim. Function parameters contribute only their
// count, not their names, and statement bodies (an Arrow's Block, a
// NamedFn's Body, an IIFE's Body) contribute only a fixed placeholder, so
// trees that differ inside such a body can share a signature.
func Signature(expr jsast.Expr) string {
	var b strings.Builder
	writeSignature(&b, expr)
	return b.String()
}

func writeSignature(b *strings.Builder, e jsast.Expr) {
	switch v := e.(type) {
	case *jsast.Lit:
		b.WriteString("L")
	case *jsast.Var:
		fmt.Fprintf(b, "V(%s)", v.Name)
	case *jsast.BinOp:
		b.WriteString("Bin(")
		b.WriteString(v.Op)
		b.WriteString(",")
		writeSignature(b, v.Left)
		b.WriteString(",")
		writeSignature(b, v.Right)
		b.WriteString(")")
	case *jsast.Unary:
		b.WriteString("Un(")
		b.WriteString(v.Op)
		b.WriteString(",")
		writeSignature(b, v.Operand)
		b.WriteString(")")
	case *jsast.Call:
		b.WriteString("Call(")
		writeSignature(b, v.Fn)
		for _, a := range v.Args {
			b.WriteString(",")
			writeSignature(b, a)
		}
		b.WriteString(")")
	case *jsast.Method:
		fmt.Fprintf(b, "Method(%s,", v.Name)
		writeSignature(b, v.Recv)
		for _, a := range v.Args {
			b.WriteString(",")
			writeSignature(b, a)
		}
		b.WriteString(")")
	case *jsast.Arrow:
		fmt.Fprintf(b, "Arrow(%d,", len(v.Params))
		if v.Body != nil {
			writeSignature(b, v.Body)
		} else {
			b.WriteString("block")
		}
		b.WriteString(")")
	case *jsast.NamedFn:
		fmt.Fprintf(b, "Fn(%s,%d,block)", v.Name, len(v.Params))
	case *jsast.Ternary:
		b.WriteString("Tern(")
		writeSignature(b, v.Cond)
		b.WriteString(",")
		writeSignature(b, v.Then)
		b.WriteString(",")
		writeSignature(b, v.Else)
		b.WriteString(")")
	case *jsast.Member:
		fmt.Fprintf(b, "Member(%s,", v.Name)
		writeSignature(b, v.Object)
		b.WriteString(")")
	case *jsast.Index:
		b.WriteString("Index(")
		writeSignature(b, v.Object)
		b.WriteString(",")
		writeSignature(b, v.Idx)
		b.WriteString(")")
	case *jsast.Object:
		b.WriteString("Obj(")
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(b, "%s:", f.Key)
			writeSignature(b, f.Value)
		}
		b.WriteString(")")
	case *jsast.Array:
		fmt.Fprintf(b, "Arr(%d", len(v.Elements))
		for _, el := range v.Elements {
			b.WriteString(",")
			writeSignature(b, el)
		}
		b.WriteString(")")
	case *jsast.IIFE:
		b.WriteString("IIFE(block)")
	default:
		b.WriteString("?")
	}
}
