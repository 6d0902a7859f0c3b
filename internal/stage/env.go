package stage

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/value"
)

// StagedClosure is a closure that captured at least one Later variable, so
// its body cannot be partial-evaluated up front; it is re-staged on each
// call whose argument staging differs, and residualized where it appears
// in residual code as-is. CapturedC/CapturedT are the compile-time
// environments in effect where the lambda was defined, kept so that a
// re-staged call can still resolve outer Now bindings the params don't
// shadow.
type StagedClosure struct {
	Params    []ast.Param
	Body      ast.Expr
	Captured  *Env
	CapturedC *value.Environment
	CapturedT *value.Environment
}

// Env is a persistent linked frame mapping name -> SValue, parallel to
// value.Environment but tracking staging rather than raw values.
type Env struct {
	parent *Env
	vars   map[string]SValue
}

func NewEnv() *Env {
	return &Env{vars: map[string]SValue{}}
}

func (e *Env) Extend() *Env {
	return &Env{parent: e, vars: map[string]SValue{}}
}

func (e *Env) Bind(name string, s SValue) {
	e.vars[name] = s
}

func (e *Env) Lookup(name string) (SValue, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.vars[name]; ok {
			return s, true
		}
	}
	return SValue{}, false
}

// HasLater reports whether any binding visible from e (in this frame or an
// ancestor) is not fully compile-time known, i.e. whether a lambda closing
// over e must become a stagedClosure rather than a plain Now closure.
func (e *Env) HasLater() bool {
	for env := e; env != nil; env = env.parent {
		for _, s := range env.vars {
			if !s.AllFreeNow() {
				return true
			}
		}
	}
	return false
}
