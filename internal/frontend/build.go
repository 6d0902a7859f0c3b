package frontend

import (
	"fmt"
	"strconv"

	"github.com/typeforge/tfc/internal/ast"
)

// Parse reads source (named file, for diagnostics) and builds the core
// Program. This is the only exported entry point; everything else is
// this package's private S-expression reader and builder.
func Parse(file, source string) (*ast.Program, error) {
	forms, err := newReader(source).readAll()
	if err != nil {
		return nil, err
	}
	b := &builder{file: file}
	prog := &ast.Program{}
	for _, f := range forms {
		decl, err := b.buildDecl(f)
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

type builder struct{ file string }

func (b *builder) rng(s sexpr) ast.Range {
	p := ast.Pos{Line: s.line, Column: s.column}
	return ast.Range{File: b.file, Start: p, End: p}
}

func (b *builder) errf(s sexpr, format string, args ...any) error {
	return fmt.Errorf("frontend: %d:%d: %s", s.line, s.column, fmt.Sprintf(format, args...))
}

func (b *builder) buildDecl(s sexpr) (ast.Decl, error) {
	head, ok := s.head()
	if !ok {
		expr, err := b.buildExpr(s)
		if err != nil {
			return nil, err
		}
		return ast.NewExprStmt(b.rng(s), expr), nil
	}
	switch head {
	case "import":
		return b.buildImport(s)
	case "const", "comptime-const", "export-const", "export-comptime-const":
		return b.buildConst(s, head)
	default:
		expr, err := b.buildExpr(s)
		if err != nil {
			return nil, err
		}
		return ast.NewExprStmt(b.rng(s), expr), nil
	}
}

func (b *builder) buildImport(s sexpr) (ast.Decl, error) {
	if len(s.list) < 2 {
		return nil, b.errf(s, "import requires a path")
	}
	path, err := b.symText(s.list[1], "import path")
	if err != nil {
		return nil, err
	}
	var names []string
	if len(s.list) >= 3 {
		for _, n := range s.list[2].list {
			name, err := b.symText(n, "import name")
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}
	return ast.NewImport(b.rng(s), path, names), nil
}

func (b *builder) buildConst(s sexpr, head string) (ast.Decl, error) {
	if len(s.list) < 3 {
		return nil, b.errf(s, "%s requires a name and an initializer", head)
	}
	name, err := b.symText(s.list[1], "const name")
	if err != nil {
		return nil, err
	}
	comptime := head == "comptime-const" || head == "export-comptime-const"
	exported := head == "export-const" || head == "export-comptime-const"

	rest := s.list[2:]
	var typeExpr ast.Expr
	if len(rest) >= 2 {
		if th, ok := rest[0].head(); ok && th == "type" && len(rest[0].list) == 2 {
			te, err := b.buildExpr(rest[0].list[1])
			if err != nil {
				return nil, err
			}
			typeExpr = te
			rest = rest[1:]
		}
	}
	if len(rest) != 1 {
		return nil, b.errf(s, "%s %q: expected exactly one initializer after optional (type ...)", head, name)
	}
	init, err := b.buildExpr(rest[0])
	if err != nil {
		return nil, err
	}
	return ast.NewConst(b.rng(s), name, typeExpr, init, comptime, exported), nil
}

func (b *builder) symText(s sexpr, what string) (string, error) {
	if s.atom == nil || (s.atom.kind != tokSymbol && s.atom.kind != tokString) {
		return "", b.errf(s, "expected %s", what)
	}
	return s.atom.text, nil
}

func (b *builder) buildExpr(s sexpr) (ast.Expr, error) {
	if s.isAtom() {
		return b.buildAtom(s)
	}
	if len(s.list) == 0 {
		return nil, b.errf(s, "empty form")
	}
	head, ok := s.head()
	if !ok {
		return nil, b.errf(s, "expected an operator symbol in head position")
	}
	switch head {
	case "binary":
		return b.buildBinary(s)
	case "unary":
		return b.buildUnary(s)
	case "call":
		return b.buildCall(s)
	case "prop":
		return b.buildProperty(s)
	case "index":
		return b.buildIndex(s)
	case "lambda":
		return b.buildLambda(s)
	case "if":
		return b.buildConditional(s)
	case "record":
		return b.buildRecord(s)
	case "array":
		return b.buildArray(s)
	case "match":
		return b.buildMatch(s)
	case "throw":
		return b.buildThrow(s)
	case "await":
		return b.buildAwait(s)
	case "template":
		return b.buildTemplate(s)
	case "block":
		return b.buildBlock(s)
	default:
		return nil, b.errf(s, "unknown expression form %q", head)
	}
}

func (b *builder) buildAtom(s sexpr) (ast.Expr, error) {
	switch s.atom.kind {
	case tokNumber:
		if i, err := strconv.ParseInt(s.atom.text, 10, 64); err == nil {
			return ast.NewLiteral(b.rng(s), ast.IntLit, i), nil
		}
		f, err := strconv.ParseFloat(s.atom.text, 64)
		if err != nil {
			return nil, b.errf(s, "malformed number %q", s.atom.text)
		}
		return ast.NewLiteral(b.rng(s), ast.FloatLit, f), nil
	case tokString:
		return ast.NewLiteral(b.rng(s), ast.StringLit, s.atom.text), nil
	case tokSymbol:
		switch s.atom.text {
		case "true":
			return ast.NewLiteral(b.rng(s), ast.BoolLit, true), nil
		case "false":
			return ast.NewLiteral(b.rng(s), ast.BoolLit, false), nil
		case "null":
			return ast.NewLiteral(b.rng(s), ast.NullLit, nil), nil
		case "undefined":
			return ast.NewLiteral(b.rng(s), ast.UndefinedLit, nil), nil
		default:
			return ast.NewIdentifier(b.rng(s), s.atom.text), nil
		}
	default:
		return nil, b.errf(s, "unexpected atom")
	}
}

var binaryOps = map[string]ast.BinaryOp{
	"+": ast.Add, "-": ast.Sub, "*": ast.Mul, "/": ast.Div, "%": ast.Mod,
	"==": ast.Eq, "!=": ast.Neq, "<": ast.Lt, "<=": ast.Lte, ">": ast.Gt, ">=": ast.Gte,
	"&&": ast.And, "||": ast.Or,
}

func (b *builder) buildBinary(s sexpr) (ast.Expr, error) {
	if len(s.list) != 4 {
		return nil, b.errf(s, "binary requires (binary OP LEFT RIGHT)")
	}
	opText, err := b.symText(s.list[1], "binary operator")
	if err != nil {
		return nil, err
	}
	op, ok := binaryOps[opText]
	if !ok {
		return nil, b.errf(s, "unknown binary operator %q", opText)
	}
	l, err := b.buildExpr(s.list[2])
	if err != nil {
		return nil, err
	}
	r, err := b.buildExpr(s.list[3])
	if err != nil {
		return nil, err
	}
	return ast.NewBinary(b.rng(s), op, l, r), nil
}

func (b *builder) buildUnary(s sexpr) (ast.Expr, error) {
	if len(s.list) != 3 {
		return nil, b.errf(s, "unary requires (unary OP OPERAND)")
	}
	opText, err := b.symText(s.list[1], "unary operator")
	if err != nil {
		return nil, err
	}
	var op ast.UnaryOp
	switch opText {
	case "-":
		op = ast.Neg
	case "!":
		op = ast.Not
	default:
		return nil, b.errf(s, "unknown unary operator %q", opText)
	}
	e, err := b.buildExpr(s.list[2])
	if err != nil {
		return nil, err
	}
	return ast.NewUnary(b.rng(s), op, e), nil
}

func (b *builder) buildCall(s sexpr) (ast.Expr, error) {
	if len(s.list) < 2 {
		return nil, b.errf(s, "call requires (call FN ARG...)")
	}
	fn, err := b.buildExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	rest := s.list[2:]
	var typeArgs []ast.Expr
	if len(rest) > 0 {
		if th, ok := rest[0].head(); ok && th == "typeargs" {
			for _, ta := range rest[0].list[1:] {
				e, err := b.buildExpr(ta)
				if err != nil {
					return nil, err
				}
				typeArgs = append(typeArgs, e)
			}
			rest = rest[1:]
		}
	}
	var args []ast.Arg
	for _, a := range rest {
		if th, ok := a.head(); ok && th == "spread" && len(a.list) == 2 {
			e, err := b.buildExpr(a.list[1])
			if err != nil {
				return nil, err
			}
			args = append(args, ast.Arg{Value: e, Spread: true})
			continue
		}
		e, err := b.buildExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Arg{Value: e})
	}
	return ast.NewCall(b.rng(s), fn, args, typeArgs), nil
}

func (b *builder) buildProperty(s sexpr) (ast.Expr, error) {
	if len(s.list) != 3 {
		return nil, b.errf(s, "prop requires (prop OBJECT NAME)")
	}
	obj, err := b.buildExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	name, err := b.symText(s.list[2], "property name")
	if err != nil {
		return nil, err
	}
	return ast.NewProperty(b.rng(s), obj, name), nil
}

func (b *builder) buildIndex(s sexpr) (ast.Expr, error) {
	if len(s.list) != 3 {
		return nil, b.errf(s, "index requires (index OBJECT IDX)")
	}
	obj, err := b.buildExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	idx, err := b.buildExpr(s.list[2])
	if err != nil {
		return nil, err
	}
	return ast.NewIndex(b.rng(s), obj, idx), nil
}

func (b *builder) buildLambda(s sexpr) (ast.Expr, error) {
	if len(s.list) < 3 {
		return nil, b.errf(s, "lambda requires (lambda (PARAMS) BODY)")
	}
	params, err := b.buildParams(s.list[1])
	if err != nil {
		return nil, err
	}
	rest := s.list[2:]
	async := false
	var rt ast.Expr
	for len(rest) > 1 {
		head, ok := rest[0].head()
		if ok && head == "async" {
			async = true
			rest = rest[1:]
			continue
		}
		if ok && head == "rtype" && len(rest[0].list) == 2 {
			rtExpr, err := b.buildExpr(rest[0].list[1])
			if err != nil {
				return nil, err
			}
			rt = rtExpr
			rest = rest[1:]
			continue
		}
		break
	}
	if len(rest) != 1 {
		return nil, b.errf(s, "lambda: expected exactly one body expression")
	}
	body, err := b.buildExpr(rest[0])
	if err != nil {
		return nil, err
	}
	return ast.NewLambda(b.rng(s), params, body, async, rt), nil
}

func (b *builder) buildParams(s sexpr) ([]ast.Param, error) {
	var params []ast.Param
	for _, p := range s.list {
		if p.isAtom() {
			name, err := b.symText(p, "param name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: name})
			continue
		}
		if len(p.list) == 0 {
			return nil, b.errf(p, "malformed param")
		}
		name, err := b.symText(p.list[0], "param name")
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: name}
		for _, attr := range p.list[1:] {
			head, ok := attr.head()
			if !ok || len(attr.list) != 2 {
				return nil, b.errf(attr, "malformed param attribute")
			}
			e, err := b.buildExpr(attr.list[1])
			if err != nil {
				return nil, err
			}
			switch head {
			case "type":
				param.Type = e
			case "default":
				param.Default = e
			case "bound":
				param.Bound = e
			default:
				return nil, b.errf(attr, "unknown param attribute %q", head)
			}
		}
		params = append(params, param)
	}
	return params, nil
}

func (b *builder) buildConditional(s sexpr) (ast.Expr, error) {
	if len(s.list) != 4 {
		return nil, b.errf(s, "if requires (if COND THEN ELSE)")
	}
	cond, err := b.buildExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	then, err := b.buildExpr(s.list[2])
	if err != nil {
		return nil, err
	}
	els, err := b.buildExpr(s.list[3])
	if err != nil {
		return nil, err
	}
	return ast.NewConditional(b.rng(s), cond, then, els), nil
}

func (b *builder) buildRecord(s sexpr) (ast.Expr, error) {
	var fields []ast.Field
	for _, f := range s.list[1:] {
		head, ok := f.head()
		if !ok {
			return nil, b.errf(f, "malformed record field")
		}
		switch head {
		case "f":
			if len(f.list) != 3 {
				return nil, b.errf(f, "(f NAME VALUE) expected")
			}
			name, err := b.symText(f.list[1], "field name")
			if err != nil {
				return nil, err
			}
			val, err := b.buildExpr(f.list[2])
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.Field{Name: name, Value: val})
		case "spread":
			if len(f.list) != 2 {
				return nil, b.errf(f, "(spread EXPR) expected")
			}
			val, err := b.buildExpr(f.list[1])
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.Field{Value: val, Spread: true})
		default:
			return nil, b.errf(f, "unknown record field form %q", head)
		}
	}
	return ast.NewRecord(b.rng(s), fields), nil
}

func (b *builder) buildArray(s sexpr) (ast.Expr, error) {
	var elems []ast.Element
	for _, e := range s.list[1:] {
		if head, ok := e.head(); ok && head == "spread" {
			if len(e.list) != 2 {
				return nil, b.errf(e, "(spread EXPR) expected")
			}
			val, err := b.buildExpr(e.list[1])
			if err != nil {
				return nil, err
			}
			elems = append(elems, ast.Element{Value: val, Spread: true})
			continue
		}
		val, err := b.buildExpr(e)
		if err != nil {
			return nil, err
		}
		elems = append(elems, ast.Element{Value: val})
	}
	return ast.NewArray(b.rng(s), elems), nil
}

func (b *builder) buildMatch(s sexpr) (ast.Expr, error) {
	if len(s.list) < 3 {
		return nil, b.errf(s, "match requires (match SCRUTINEE (case ...)...)")
	}
	scrutinee, err := b.buildExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	var cases []ast.Case
	for _, c := range s.list[2:] {
		head, ok := c.head()
		if !ok || head != "case" || len(c.list) < 3 {
			return nil, b.errf(c, "expected (case PATTERN [ (guard G) ] BODY)")
		}
		pat, err := b.buildPattern(c.list[1])
		if err != nil {
			return nil, err
		}
		rest := c.list[2:]
		var guard ast.Expr
		if len(rest) == 2 {
			if gh, ok := rest[0].head(); ok && gh == "guard" && len(rest[0].list) == 2 {
				g, err := b.buildExpr(rest[0].list[1])
				if err != nil {
					return nil, err
				}
				guard = g
				rest = rest[1:]
			}
		}
		if len(rest) != 1 {
			return nil, b.errf(c, "case: expected exactly one body expression")
		}
		body, err := b.buildExpr(rest[0])
		if err != nil {
			return nil, err
		}
		cases = append(cases, ast.Case{Pattern: pat, Guard: guard, Body: body})
	}
	return ast.NewMatch(b.rng(s), scrutinee, cases), nil
}

func (b *builder) buildPattern(s sexpr) (ast.Pattern, error) {
	if s.isAtom() {
		name, err := b.symText(s, "pattern")
		if err != nil {
			return nil, err
		}
		if name == "_" {
			return ast.WildcardPattern{}, nil
		}
		return ast.BindingPattern{Name: name}, nil
	}
	head, ok := s.head()
	if !ok {
		return nil, b.errf(s, "malformed pattern")
	}
	switch head {
	case "lit":
		if len(s.list) != 2 {
			return nil, b.errf(s, "(lit EXPR) expected")
		}
		val, err := b.buildExpr(s.list[1])
		if err != nil {
			return nil, err
		}
		return ast.LiteralPattern{Value: val}, nil
	case "bind":
		if len(s.list) != 3 {
			return nil, b.errf(s, "(bind NAME INNER) expected")
		}
		name, err := b.symText(s.list[1], "bind name")
		if err != nil {
			return nil, err
		}
		inner, err := b.buildPattern(s.list[2])
		if err != nil {
			return nil, err
		}
		return ast.BindingPattern{Name: name, Inner: inner}, nil
	case "destructure":
		var fields []ast.DestructureField
		for _, f := range s.list[1:] {
			if len(f.list) < 1 {
				return nil, b.errf(f, "malformed destructure field")
			}
			name, err := b.symText(f.list[0], "destructure field name")
			if err != nil {
				return nil, err
			}
			field := ast.DestructureField{Name: name}
			for _, attr := range f.list[1:] {
				ah, ok := attr.head()
				if !ok {
					return nil, b.errf(attr, "malformed destructure attribute")
				}
				switch ah {
				case "as":
					if len(attr.list) != 2 {
						return nil, b.errf(attr, "(as ALIAS) expected")
					}
					alias, err := b.symText(attr.list[1], "alias")
					if err != nil {
						return nil, err
					}
					field.Alias = alias
				case "pattern":
					if len(attr.list) != 2 {
						return nil, b.errf(attr, "(pattern P) expected")
					}
					p, err := b.buildPattern(attr.list[1])
					if err != nil {
						return nil, err
					}
					field.Pattern = p
				default:
					return nil, b.errf(attr, "unknown destructure attribute %q", ah)
				}
			}
			fields = append(fields, field)
		}
		return ast.DestructurePattern{Fields: fields}, nil
	default:
		return nil, b.errf(s, "unknown pattern form %q", head)
	}
}

func (b *builder) buildThrow(s sexpr) (ast.Expr, error) {
	if len(s.list) != 2 {
		return nil, b.errf(s, "throw requires (throw EXPR)")
	}
	v, err := b.buildExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	return ast.NewThrow(b.rng(s), v), nil
}

func (b *builder) buildAwait(s sexpr) (ast.Expr, error) {
	if len(s.list) != 2 {
		return nil, b.errf(s, "await requires (await EXPR)")
	}
	v, err := b.buildExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	return ast.NewAwait(b.rng(s), v), nil
}

func (b *builder) buildTemplate(s sexpr) (ast.Expr, error) {
	var parts []ast.TemplatePart
	for _, p := range s.list[1:] {
		if p.atom != nil && p.atom.kind == tokString {
			parts = append(parts, ast.TemplatePart{Literal: p.atom.text})
			continue
		}
		e, err := b.buildExpr(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.TemplatePart{Interp: e})
	}
	return ast.NewTemplate(b.rng(s), parts), nil
}

func (b *builder) buildBlock(s sexpr) (ast.Expr, error) {
	if len(s.list) < 2 {
		return nil, b.errf(s, "block requires at least a result expression")
	}
	body := s.list[1:]
	var decls []ast.Decl
	var result ast.Expr
	for i, item := range body {
		last := i == len(body)-1
		if last {
			if head, ok := item.head(); ok && (head == "const" || head == "comptime-const" ||
				head == "export-const" || head == "export-comptime-const" || head == "import") {
				decl, err := b.buildDecl(item)
				if err != nil {
					return nil, err
				}
				decls = append(decls, decl)
				result = nil
				continue
			}
			e, err := b.buildExpr(item)
			if err != nil {
				return nil, err
			}
			result = e
			continue
		}
		decl, err := b.buildDecl(item)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return ast.NewBlock(b.rng(s), decls, result), nil
}
