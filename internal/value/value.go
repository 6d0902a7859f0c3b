// Package value implements the runtime Value model of the spec: a tagged
// union of number/string/bool/null/object/array/closure/type-value/
// builtin, each carrying an associated Constraint via ConstraintOf.
package value

import (
	"fmt"
	"strings"

	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/constraint"
	"github.com/typeforge/tfc/internal/types"
)

// Value is implemented by every case of the value sum. It also implements
// constraint.Equatable so any Value can be wrapped directly into an
// equals() constraint.
type Value interface {
	constraint.Equatable
	Inspect() string
	value()
}

type base struct{}

func (base) value() {}

// Number preserves whether it originated as an Int or a Float literal /
// arithmetic result, per the evaluator's widening rules.
type Number struct {
	base
	IsInt bool
	I     int64
	F     float64
}

func Int(n int64) Number      { return Number{IsInt: true, I: n} }
func Float(n float64) Number  { return Number{IsInt: false, F: n} }

func (n Number) AsFloat() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

func (n Number) Classify() constraint.Tag { return constraint.IsNumber }
func (n Number) EqualTo(o constraint.Equatable) bool {
	other, ok := o.(Number)
	return ok && n.AsFloat() == other.AsFloat()
}
func (n Number) NumValue() (float64, bool) { return n.AsFloat(), true }
func (n Number) StrValue() (string, bool)  { return "", false }
func (n Number) BoolValue() (bool, bool)   { return false, false }
func (n Number) String() string {
	if n.IsInt {
		return fmt.Sprintf("%d", n.I)
	}
	return fmt.Sprintf("%g", n.F)
}
func (n Number) Inspect() string { return n.String() }

// String is a UTF-8 string value.
type String struct {
	base
	Value string
}

func (s String) Classify() constraint.Tag { return constraint.IsString }
func (s String) EqualTo(o constraint.Equatable) bool {
	other, ok := o.(String)
	return ok && s.Value == other.Value
}
func (s String) NumValue() (float64, bool) { return 0, false }
func (s String) StrValue() (string, bool)  { return s.Value, true }
func (s String) BoolValue() (bool, bool)   { return false, false }
func (s String) String() string            { return s.Value }
func (s String) Inspect() string            { return `"` + s.Value + `"` }

// Bool is a boolean value.
type Bool struct {
	base
	Value bool
}

func (b Bool) Classify() constraint.Tag { return constraint.IsBool }
func (b Bool) EqualTo(o constraint.Equatable) bool {
	other, ok := o.(Bool)
	return ok && b.Value == other.Value
}
func (b Bool) NumValue() (float64, bool) { return 0, false }
func (b Bool) StrValue() (string, bool)  { return "", false }
func (b Bool) BoolValue() (bool, bool)   { return b.Value, true }
func (b Bool) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b Bool) Inspect() string { return b.String() }

// Null is the singleton null/undefined value. Distinct *kinds* (null vs.
// undefined) are tracked on the literal AST node, but at the value level
// they are the same "nullish" runtime value per the constraint algebra,
// which has only one nullish classification tag (isNull).
type Null struct{ base }

func (Null) Classify() constraint.Tag           { return constraint.IsNull }
func (Null) EqualTo(o constraint.Equatable) bool { _, ok := o.(Null); return ok }
func (Null) NumValue() (float64, bool)           { return 0, false }
func (Null) StrValue() (string, bool)            { return "", false }
func (Null) BoolValue() (bool, bool)             { return false, false }
func (Null) String() string                      { return "null" }
func (Null) Inspect() string                     { return "null" }

// ObjectField is a single field of a record Value, with the declared
// field type carried alongside (so property access can report it without
// re-inferring).
type ObjectField struct {
	Name  string
	Value Value
	Type  types.Type
}

// Object is a record value. Fields preserve insertion order for
// deterministic evaluation left-to-right.
type Object struct {
	base
	Fields []ObjectField
}

func (o Object) Field(name string) (ObjectField, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ObjectField{}, false
}

func (o Object) Classify() constraint.Tag { return constraint.IsObject }
func (o Object) EqualTo(other constraint.Equatable) bool {
	oo, ok := other.(Object)
	if !ok || len(oo.Fields) != len(o.Fields) {
		return false
	}
	for _, f := range o.Fields {
		of, ok := oo.Field(f.Name)
		if !ok || !valuesEqual(f.Value, of.Value) {
			return false
		}
	}
	return true
}
func (o Object) NumValue() (float64, bool) { return 0, false }
func (o Object) StrValue() (string, bool)  { return "", false }
func (o Object) BoolValue() (bool, bool)   { return false, false }
func (o Object) String() string            { return o.Inspect() }
func (o Object) Inspect() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = f.Name + ": " + f.Value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Array is an array/tuple value. Variadic marks that it was built with at
// least one spread, per the evaluator's array-type-inference rule.
type Array struct {
	base
	Elements []Value
	Variadic bool
}

func (a Array) Classify() constraint.Tag { return constraint.IsArray }
func (a Array) EqualTo(other constraint.Equatable) bool {
	oa, ok := other.(Array)
	if !ok || len(oa.Elements) != len(a.Elements) {
		return false
	}
	for i := range a.Elements {
		if !valuesEqual(a.Elements[i], oa.Elements[i]) {
			return false
		}
	}
	return true
}
func (a Array) NumValue() (float64, bool) { return 0, false }
func (a Array) StrValue() (string, bool)  { return "", false }
func (a Array) BoolValue() (bool, bool)   { return false, false }
func (a Array) String() string            { return a.Inspect() }
func (a Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Environment is a persistent linked frame: parent + local bindings.
// Extending a scope never mutates the parent, matching closure semantics
// without shared mutable state.
type Environment struct {
	parent  *Environment
	symbols map[string]*Binding
}

func NewEnvironment() *Environment {
	return &Environment{symbols: map[string]*Binding{}}
}

// Extend returns a new child scope; the receiver (the parent) is never
// mutated by writes to the child.
func (e *Environment) Extend() *Environment {
	return &Environment{parent: e, symbols: map[string]*Binding{}}
}

// Bind installs a new binding in the local frame.
func (e *Environment) Bind(name string, b *Binding) {
	e.symbols[name] = b
}

// Lookup walks outward through parent frames.
func (e *Environment) Lookup(name string) (*Binding, bool) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.symbols[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// Binding is either an already-evaluated value or an unevaluated
// expression to be forced (and memoized) on first read.
type Binding struct {
	Evaluated bool
	Forcing   bool // set while a force is in progress, to detect cycles

	Value Value
	Type  types.Type

	Expr Expr
	Env  *Environment
}

// Expr is the minimal surface the value package needs from the AST: a
// node plus the environment it closes over for laziness. Declared via
// ast.Expr directly (no wrapper) to avoid a dependency cycle with evalc.
type Expr = ast.Expr

func EvaluatedBinding(v Value, t types.Type) *Binding {
	return &Binding{Evaluated: true, Value: v, Type: t}
}

func UnevaluatedBinding(e Expr, env *Environment, t types.Type) *Binding {
	return &Binding{Expr: e, Env: env, Type: t}
}

// Closure is a lambda value, capturing its defining environment.
type Closure struct {
	base
	Params     []ast.Param
	Body       ast.Expr
	Captured   *Environment
	Async      bool
	ReturnType types.Type // optional
}

func (c *Closure) Classify() constraint.Tag           { return constraint.IsFunction }
func (c *Closure) EqualTo(o constraint.Equatable) bool { return o == constraint.Equatable(c) }
func (c *Closure) NumValue() (float64, bool)           { return 0, false }
func (c *Closure) StrValue() (string, bool)            { return "", false }
func (c *Closure) BoolValue() (bool, bool)             { return false, false }
func (c *Closure) String() string                      { return "<closure>" }
func (c *Closure) Inspect() string                      { return "<closure>" }

// TypeValue wraps a types.Type as a first-class Value — the embodiment of
// "types are first-class values" from the spec's purpose statement.
type TypeValue struct {
	base
	Type types.Type
}

// Classify reports type-values as objects: the constraint algebra has no
// dedicated "is a type" classification, and at the JS residual boundary a
// reified type descriptor would be represented as a plain object.
func (t TypeValue) Classify() constraint.Tag { return constraint.IsObject }
func (t TypeValue) EqualTo(o constraint.Equatable) bool {
	other, ok := o.(TypeValue)
	return ok && t.Type.String() == other.Type.String()
}
func (t TypeValue) NumValue() (float64, bool) { return 0, false }
func (t TypeValue) StrValue() (string, bool)  { return "", false }
func (t TypeValue) BoolValue() (bool, bool)   { return false, false }
func (t TypeValue) String() string             { return t.Type.String() }
func (t TypeValue) Inspect() string             { return t.Type.String() }

// BuiltinFunc is the Go implementation behind a Builtin value.
type BuiltinFunc func(args []Value) (Value, error)

// Builtin is a host-provided function (assert, Union, Array methods,
// string methods, ...).
type Builtin struct {
	base
	Name string
	Fn   BuiltinFunc
}

func (b *Builtin) Classify() constraint.Tag           { return constraint.IsFunction }
func (b *Builtin) EqualTo(o constraint.Equatable) bool { return o == constraint.Equatable(b) }
func (b *Builtin) NumValue() (float64, bool)           { return 0, false }
func (b *Builtin) StrValue() (string, bool)            { return "", false }
func (b *Builtin) BoolValue() (bool, bool)              { return false, false }
func (b *Builtin) String() string                       { return "<builtin " + b.Name + ">" }
func (b *Builtin) Inspect() string                       { return b.String() }

// valuesEqual is the structural raw-value equality the evaluator's match
// construct relies on: primitives by identity, arrays component-wise,
// records by key-set and recursive equality, type-values by canonical
// form equality.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Object:
		return av.EqualTo(b)
	case Array:
		return av.EqualTo(b)
	case TypeValue:
		return av.EqualTo(b)
	default:
		ae, aok := a.(constraint.Equatable)
		be, bok := b.(constraint.Equatable)
		return aok && bok && ae.EqualTo(be)
	}
}

// ValuesEqual is the exported form of the raw-value equality relation.
func ValuesEqual(a, b Value) bool { return valuesEqual(a, b) }
