// Package jsprint renders the residual jsast tree (internal/jsast) as
// JavaScript source text. It has no opinion on formatting beyond
// readable, deterministic output: one statement per line, consistent
// indentation, no attempt at source maps (out of scope).
package jsprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/typeforge/tfc/internal/jsast"
)

// Program renders stmts as a full top-level JS program.
func Program(stmts []jsast.Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		writeStmt(&b, s, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func writeStmt(b *strings.Builder, s jsast.Stmt, depth int) {
	indent(b, depth)
	switch v := s.(type) {
	case *jsast.Const:
		fmt.Fprintf(b, "const %s = %s;\n", v.Name, Expr(v.Init))
	case *jsast.Let:
		if v.Init != nil {
			fmt.Fprintf(b, "let %s = %s;\n", v.Name, Expr(v.Init))
		} else {
			fmt.Fprintf(b, "let %s;\n", v.Name)
		}
	case *jsast.Return:
		if v.Value != nil {
			fmt.Fprintf(b, "return %s;\n", Expr(v.Value))
		} else {
			b.WriteString("return;\n")
		}
	case *jsast.If:
		fmt.Fprintf(b, "if (%s) {\n", Expr(v.Cond))
		for _, st := range v.Then {
			writeStmt(b, st, depth+1)
		}
		indent(b, depth)
		if v.Else != nil {
			b.WriteString("} else {\n")
			for _, st := range v.Else {
				writeStmt(b, st, depth+1)
			}
			indent(b, depth)
		}
		b.WriteString("}\n")
	case *jsast.ForOf:
		fmt.Fprintf(b, "for (const %s of %s) {\n", v.Name, Expr(v.Iter))
		for _, st := range v.Body {
			writeStmt(b, st, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *jsast.ExprStmt:
		fmt.Fprintf(b, "%s;\n", Expr(v.Value))
	case *jsast.ConstPattern:
		var names []string
		for _, f := range v.Fields {
			if f.Alias != "" && f.Alias != f.Name {
				names = append(names, fmt.Sprintf("%s: %s", f.Name, f.Alias))
			} else {
				names = append(names, f.Name)
			}
		}
		fmt.Fprintf(b, "const {%s} = %s;\n", strings.Join(names, ", "), Expr(v.Init))
	case *jsast.Throw:
		fmt.Fprintf(b, "throw %s;\n", Expr(v.Value))
	case *jsast.Continue:
		b.WriteString("continue;\n")
	case *jsast.Break:
		b.WriteString("break;\n")
	default:
		fmt.Fprintf(b, "/* unprintable statement %T */\n", v)
	}
}

// Expr renders a single residual expression.
func Expr(e jsast.Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e jsast.Expr) {
	switch v := e.(type) {
	case *jsast.Lit:
		writeLit(b, v.Value)
	case *jsast.Var:
		b.WriteString(v.Name)
	case *jsast.BinOp:
		fmt.Fprintf(b, "(%s %s %s)", Expr(v.Left), v.Op, Expr(v.Right))
	case *jsast.Unary:
		if v.Op == "await" {
			fmt.Fprintf(b, "(await %s)", Expr(v.Operand))
		} else {
			fmt.Fprintf(b, "(%s%s)", v.Op, Expr(v.Operand))
		}
	case *jsast.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = Expr(a)
		}
		fmt.Fprintf(b, "%s(%s)", Expr(v.Fn), strings.Join(args, ", "))
	case *jsast.Method:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = Expr(a)
		}
		fmt.Fprintf(b, "%s.%s(%s)", Expr(v.Recv), v.Name, strings.Join(args, ", "))
	case *jsast.Arrow:
		if v.Body != nil {
			fmt.Fprintf(b, "(%s) => %s", strings.Join(v.Params, ", "), Expr(v.Body))
			return
		}
		fmt.Fprintf(b, "(%s) => {\n", strings.Join(v.Params, ", "))
		for _, st := range v.Block {
			writeStmt(b, st, 1)
		}
		b.WriteString("}")
	case *jsast.NamedFn:
		fmt.Fprintf(b, "function %s(%s) {\n", v.Name, strings.Join(v.Params, ", "))
		for _, st := range v.Body {
			writeStmt(b, st, 1)
		}
		b.WriteString("}")
	case *jsast.Ternary:
		fmt.Fprintf(b, "(%s ? %s : %s)", Expr(v.Cond), Expr(v.Then), Expr(v.Else))
	case *jsast.Member:
		fmt.Fprintf(b, "%s.%s", Expr(v.Object), v.Name)
	case *jsast.Index:
		fmt.Fprintf(b, "%s[%s]", Expr(v.Object), Expr(v.Idx))
	case *jsast.Object:
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = fmt.Sprintf("%s: %s", jsKey(f.Key), Expr(f.Value))
		}
		fmt.Fprintf(b, "{%s}", strings.Join(fields, ", "))
	case *jsast.Array:
		elems := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			elems[i] = Expr(el)
		}
		fmt.Fprintf(b, "[%s]", strings.Join(elems, ", "))
	case *jsast.IIFE:
		b.WriteString("(() => {\n")
		for _, st := range v.Body {
			writeStmt(b, st, 1)
		}
		b.WriteString("})()")
	default:
		fmt.Fprintf(b, "/* unprintable expr %T */", v)
	}
}

func writeLit(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case string:
		b.WriteString(strconv.Quote(val))
	default:
		fmt.Fprintf(b, "%v", val)
	}
}

// jsKey quotes an object key only when it is not a valid bare identifier.
func jsKey(name string) string {
	if name == "" {
		return `""`
	}
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter || i > 0 && !isLetter && !isDigit {
			return strconv.Quote(name)
		}
	}
	return name
}
