// Package cluster implements the JS residual clustering/template engine
// of the spec (§4.6): it compares residual expressions structurally,
// hashes them into a signature that ignores literal values, groups
// structurally isomorphic members into clusters, and parameterizes the
// positions ("holes") where their literals diverge.
package cluster

import "github.com/typeforge/tfc/internal/jsast"

// Step is one edge of a path through a residual expression tree: either a
// named child ("Left", "Operand", "Body", ...) or, combined with Index, a
// positional child of a slice field ("Args", "Elements", "Fields").
type Step struct {
	Kind  string
	Index int
}

// Path is a tree position, recorded in pre-order as the list of steps
// from the root. Two structurally identical trees produce identical hole
// vectors regardless of construction order because holes are always
// discovered in the same pre-order walk.
type Path []Step

func withStep(p Path, s Step) Path {
	np := make(Path, len(p)+1)
	copy(np, p)
	np[len(p)] = s
	return np
}

func pathsEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func holeSetsEqual(a, b []Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !pathsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// getAt navigates n along path, returning the node found there. A path may
// cross from expression-level steps into a statement body (Arrow.Block,
// NamedFn.Body, IIFE.Body) via a Step whose Kind names the statement list
// and whose Index selects the statement within it; getAtStmt takes over
// from there, alternating between statement-list and expression steps as
// needed (e.g. If.Then/If.Else, ForOf.Body).
func getAt(n jsast.Expr, path Path) (jsast.Expr, bool) {
	if len(path) == 0 {
		return n, true
	}
	s, rest := path[0], path[1:]
	switch e := n.(type) {
	case *jsast.BinOp:
		switch s.Kind {
		case "Left":
			return getAt(e.Left, rest)
		case "Right":
			return getAt(e.Right, rest)
		}
	case *jsast.Unary:
		if s.Kind == "Operand" {
			return getAt(e.Operand, rest)
		}
	case *jsast.Call:
		switch s.Kind {
		case "Fn":
			return getAt(e.Fn, rest)
		case "Args":
			if s.Index < len(e.Args) {
				return getAt(e.Args[s.Index], rest)
			}
		}
	case *jsast.Method:
		switch s.Kind {
		case "Recv":
			return getAt(e.Recv, rest)
		case "Args":
			if s.Index < len(e.Args) {
				return getAt(e.Args[s.Index], rest)
			}
		}
	case *jsast.Arrow:
		switch s.Kind {
		case "Body":
			if e.Body != nil {
				return getAt(e.Body, rest)
			}
		case "Block":
			return getAtStmtList(e.Block, s.Index, rest)
		}
	case *jsast.NamedFn:
		if s.Kind == "FnBody" {
			return getAtStmtList(e.Body, s.Index, rest)
		}
	case *jsast.IIFE:
		if s.Kind == "IIFEBody" {
			return getAtStmtList(e.Body, s.Index, rest)
		}
	case *jsast.Ternary:
		switch s.Kind {
		case "Cond":
			return getAt(e.Cond, rest)
		case "Then":
			return getAt(e.Then, rest)
		case "Else":
			return getAt(e.Else, rest)
		}
	case *jsast.Member:
		if s.Kind == "Object" {
			return getAt(e.Object, rest)
		}
	case *jsast.Index:
		switch s.Kind {
		case "Object":
			return getAt(e.Object, rest)
		case "Idx":
			return getAt(e.Idx, rest)
		}
	case *jsast.Object:
		if s.Kind == "Fields" && s.Index < len(e.Fields) {
			return getAt(e.Fields[s.Index].Value, rest)
		}
	case *jsast.Array:
		if s.Kind == "Elements" && s.Index < len(e.Elements) {
			return getAt(e.Elements[s.Index], rest)
		}
	}
	return nil, false
}

// getAtStmtList selects the statement at idx and continues navigation into
// it with rest.
func getAtStmtList(stmts []jsast.Stmt, idx int, rest Path) (jsast.Expr, bool) {
	if idx < 0 || idx >= len(stmts) {
		return nil, false
	}
	return getAtStmt(stmts[idx], rest)
}

// getAtStmt continues a path inside a single statement: a leading step
// names one of the statement's expression fields ("Init", "Value", "Cond",
// "Iter") and hands the remaining path to getAt, or one of its nested
// statement lists ("Then", "Else", "Body") and recurses into
// getAtStmtList with that step's Index selecting which nested statement.
func getAtStmt(s jsast.Stmt, path Path) (jsast.Expr, bool) {
	if len(path) == 0 {
		return nil, false
	}
	s0, rest := path[0], path[1:]
	switch st := s.(type) {
	case *jsast.Const:
		if s0.Kind == "Init" {
			return getAt(st.Init, rest)
		}
	case *jsast.Let:
		if s0.Kind == "Init" && st.Init != nil {
			return getAt(st.Init, rest)
		}
	case *jsast.Return:
		if s0.Kind == "Value" && st.Value != nil {
			return getAt(st.Value, rest)
		}
	case *jsast.If:
		switch s0.Kind {
		case "Cond":
			return getAt(st.Cond, rest)
		case "Then":
			return getAtStmtList(st.Then, s0.Index, rest)
		case "Else":
			if st.Else != nil {
				return getAtStmtList(st.Else, s0.Index, rest)
			}
		}
	case *jsast.ForOf:
		switch s0.Kind {
		case "Iter":
			return getAt(st.Iter, rest)
		case "Body":
			return getAtStmtList(st.Body, s0.Index, rest)
		}
	case *jsast.ExprStmt:
		if s0.Kind == "Value" {
			return getAt(st.Value, rest)
		}
	case *jsast.ConstPattern:
		if s0.Kind == "Init" {
			return getAt(st.Init, rest)
		}
	case *jsast.Throw:
		if s0.Kind == "Value" {
			return getAt(st.Value, rest)
		}
	}
	return nil, false
}

// replaceAt returns a new tree with the node at path replaced by repl,
// copying only the spine from the root to that position (the rest of the
// tree is shared), matching "erasure and clustering produce new trees
// without mutating the input".
func replaceAt(n jsast.Expr, path Path, repl jsast.Expr) jsast.Expr {
	if len(path) == 0 {
		return repl
	}
	s, rest := path[0], path[1:]
	switch e := n.(type) {
	case *jsast.BinOp:
		cp := *e
		switch s.Kind {
		case "Left":
			cp.Left = replaceAt(e.Left, rest, repl)
		case "Right":
			cp.Right = replaceAt(e.Right, rest, repl)
		}
		return &cp
	case *jsast.Unary:
		cp := *e
		if s.Kind == "Operand" {
			cp.Operand = replaceAt(e.Operand, rest, repl)
		}
		return &cp
	case *jsast.Call:
		cp := *e
		switch s.Kind {
		case "Fn":
			cp.Fn = replaceAt(e.Fn, rest, repl)
		case "Args":
			args := append([]jsast.Expr(nil), e.Args...)
			if s.Index < len(args) {
				args[s.Index] = replaceAt(args[s.Index], rest, repl)
			}
			cp.Args = args
		}
		return &cp
	case *jsast.Method:
		cp := *e
		switch s.Kind {
		case "Recv":
			cp.Recv = replaceAt(e.Recv, rest, repl)
		case "Args":
			args := append([]jsast.Expr(nil), e.Args...)
			if s.Index < len(args) {
				args[s.Index] = replaceAt(args[s.Index], rest, repl)
			}
			cp.Args = args
		}
		return &cp
	case *jsast.Arrow:
		cp := *e
		switch s.Kind {
		case "Body":
			if e.Body != nil {
				cp.Body = replaceAt(e.Body, rest, repl)
			}
		case "Block":
			cp.Block = replaceAtStmtList(e.Block, s.Index, rest, repl)
		}
		return &cp
	case *jsast.NamedFn:
		cp := *e
		if s.Kind == "FnBody" {
			cp.Body = replaceAtStmtList(e.Body, s.Index, rest, repl)
		}
		return &cp
	case *jsast.IIFE:
		cp := *e
		if s.Kind == "IIFEBody" {
			cp.Body = replaceAtStmtList(e.Body, s.Index, rest, repl)
		}
		return &cp
	case *jsast.Ternary:
		cp := *e
		switch s.Kind {
		case "Cond":
			cp.Cond = replaceAt(e.Cond, rest, repl)
		case "Then":
			cp.Then = replaceAt(e.Then, rest, repl)
		case "Else":
			cp.Else = replaceAt(e.Else, rest, repl)
		}
		return &cp
	case *jsast.Member:
		cp := *e
		if s.Kind == "Object" {
			cp.Object = replaceAt(e.Object, rest, repl)
		}
		return &cp
	case *jsast.Index:
		cp := *e
		switch s.Kind {
		case "Object":
			cp.Object = replaceAt(e.Object, rest, repl)
		case "Idx":
			cp.Idx = replaceAt(e.Idx, rest, repl)
		}
		return &cp
	case *jsast.Object:
		cp := *e
		if s.Kind == "Fields" {
			fields := append([]jsast.ObjectField(nil), e.Fields...)
			if s.Index < len(fields) {
				fields[s.Index].Value = replaceAt(fields[s.Index].Value, rest, repl)
			}
			cp.Fields = fields
		}
		return &cp
	case *jsast.Array:
		cp := *e
		if s.Kind == "Elements" {
			elems := append([]jsast.Expr(nil), e.Elements...)
			if s.Index < len(elems) {
				elems[s.Index] = replaceAt(elems[s.Index], rest, repl)
			}
			cp.Elements = elems
		}
		return &cp
	}
	return n
}

// replaceAtStmtList returns a copy of stmts with the statement at idx
// replaced by the result of threading rest/repl into it.
func replaceAtStmtList(stmts []jsast.Stmt, idx int, rest Path, repl jsast.Expr) []jsast.Stmt {
	if idx < 0 || idx >= len(stmts) {
		return stmts
	}
	cp := append([]jsast.Stmt(nil), stmts...)
	cp[idx] = replaceAtStmt(cp[idx], rest, repl)
	return cp
}

// replaceAtStmt mirrors getAtStmt: it copies only the one statement on the
// path's spine, replacing the expression or nested statement list it
// points into.
func replaceAtStmt(s jsast.Stmt, path Path, repl jsast.Expr) jsast.Stmt {
	if len(path) == 0 {
		return s
	}
	s0, rest := path[0], path[1:]
	switch st := s.(type) {
	case *jsast.Const:
		cp := *st
		if s0.Kind == "Init" {
			cp.Init = replaceAt(st.Init, rest, repl)
		}
		return &cp
	case *jsast.Let:
		cp := *st
		if s0.Kind == "Init" && st.Init != nil {
			cp.Init = replaceAt(st.Init, rest, repl)
		}
		return &cp
	case *jsast.Return:
		cp := *st
		if s0.Kind == "Value" && st.Value != nil {
			cp.Value = replaceAt(st.Value, rest, repl)
		}
		return &cp
	case *jsast.If:
		cp := *st
		switch s0.Kind {
		case "Cond":
			cp.Cond = replaceAt(st.Cond, rest, repl)
		case "Then":
			cp.Then = replaceAtStmtList(st.Then, s0.Index, rest, repl)
		case "Else":
			if st.Else != nil {
				cp.Else = replaceAtStmtList(st.Else, s0.Index, rest, repl)
			}
		}
		return &cp
	case *jsast.ForOf:
		cp := *st
		switch s0.Kind {
		case "Iter":
			cp.Iter = replaceAt(st.Iter, rest, repl)
		case "Body":
			cp.Body = replaceAtStmtList(st.Body, s0.Index, rest, repl)
		}
		return &cp
	case *jsast.ExprStmt:
		cp := *st
		if s0.Kind == "Value" {
			cp.Value = replaceAt(st.Value, rest, repl)
		}
		return &cp
	case *jsast.ConstPattern:
		cp := *st
		if s0.Kind == "Init" {
			cp.Init = replaceAt(st.Init, rest, repl)
		}
		return &cp
	case *jsast.Throw:
		cp := *st
		if s0.Kind == "Value" {
			cp.Value = replaceAt(st.Value, rest, repl)
		}
		return &cp
	}
	return s
}
