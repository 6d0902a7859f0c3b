package frontend

import "fmt"

// sexpr is the untyped syntax tree the lexer feeds into buildExpr/buildDecl:
// either an atom (symbol, string, or number token) or a list of sexprs.
type sexpr struct {
	atom     *tok
	list     []sexpr
	line     int
	column   int
}

func (s sexpr) isAtom() bool { return s.atom != nil }

func (s sexpr) head() (string, bool) {
	if len(s.list) == 0 || s.list[0].atom == nil || s.list[0].atom.kind != tokSymbol {
		return "", false
	}
	return s.list[0].atom.text, true
}

type reader struct {
	lx   *lexer
	peek *tok
}

func newReader(input string) *reader {
	return &reader{lx: newLexer(input)}
}

func (r *reader) nextTok() (tok, error) {
	if r.peek != nil {
		t := *r.peek
		r.peek = nil
		return t, nil
	}
	return r.lx.next()
}

func (r *reader) peekTok() (tok, error) {
	if r.peek == nil {
		t, err := r.lx.next()
		if err != nil {
			return tok{}, err
		}
		r.peek = &t
	}
	return *r.peek, nil
}

// readAll reads every top-level form in the source.
func (r *reader) readAll() ([]sexpr, error) {
	var forms []sexpr
	for {
		t, err := r.peekTok()
		if err != nil {
			return nil, err
		}
		if t.kind == tokEOF {
			return forms, nil
		}
		s, err := r.readOne()
		if err != nil {
			return nil, err
		}
		forms = append(forms, s)
	}
}

func (r *reader) readOne() (sexpr, error) {
	t, err := r.nextTok()
	if err != nil {
		return sexpr{}, err
	}
	switch t.kind {
	case tokLParen:
		var items []sexpr
		for {
			p, err := r.peekTok()
			if err != nil {
				return sexpr{}, err
			}
			if p.kind == tokRParen {
				r.nextTok()
				return sexpr{list: items, line: t.line, column: t.column}, nil
			}
			if p.kind == tokEOF {
				return sexpr{}, fmt.Errorf("frontend: unterminated list starting at %d:%d", t.line, t.column)
			}
			item, err := r.readOne()
			if err != nil {
				return sexpr{}, err
			}
			items = append(items, item)
		}
	case tokRParen:
		return sexpr{}, fmt.Errorf("frontend: unexpected ')' at %d:%d", t.line, t.column)
	case tokSymbol, tokString, tokNumber:
		tc := t
		return sexpr{atom: &tc, line: t.line, column: t.column}, nil
	default:
		return sexpr{}, fmt.Errorf("frontend: unexpected end of input")
	}
}
