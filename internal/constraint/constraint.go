// Package constraint implements the constraint algebra of the spec: a
// small boolean-reasoning language over runtime values used for
// classification, equality, numeric bounds, structural shape, and their
// logical combinators. It is the most foundational component — the value
// model, refinement extractor, and evaluator all build on it, but it
// depends on none of them.
package constraint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tag discriminates the sum-type cases of Constraint.
type Tag int

const (
	IsNumber Tag = iota
	IsString
	IsBool
	IsNull
	IsObject
	IsArray
	IsFunction

	Equals

	Gt
	Gte
	Lt
	Lte

	HasField
	Elements
	ElementAt
	Length

	And
	Or
	Not

	Never
	Any

	CVar
)

// classificationTags lists the disjoint runtime-kind tags, in a fixed
// order used for canonical sorting.
var classificationTags = []Tag{IsNumber, IsString, IsBool, IsNull, IsObject, IsArray, IsFunction}

func isClassification(t Tag) bool {
	switch t {
	case IsNumber, IsString, IsBool, IsNull, IsObject, IsArray, IsFunction:
		return true
	default:
		return false
	}
}

// Equatable is implemented by runtime values that can appear inside an
// equals(v) constraint. Kept minimal so this leaf package never depends on
// the value model that sits above it.
type Equatable interface {
	// Classify returns which classification Tag this value satisfies.
	Classify() Tag
	// EqualTo reports whether this value is the same concrete value as other.
	EqualTo(other Equatable) bool
	// NumValue returns the numeric value and true, if this value is numeric.
	NumValue() (float64, bool)
	// StrValue returns the string value and true, if this value is a string.
	StrValue() (string, bool)
	// BoolValue returns the boolean value and true, if this value is a bool.
	BoolValue() (bool, bool)
	String() string
}

// Constraint is the sum type described by the spec. Zero value is not a
// valid Constraint; use the constructor functions below.
type Constraint struct {
	tag Tag

	// Equals
	value Equatable

	// Gt/Gte/Lt/Lte
	num float64

	// HasField
	field string
	inner *Constraint // HasField's value constraint; Elements/ElementAt/Length/Not's operand

	// ElementAt
	index int

	// And/Or
	children []*Constraint

	// CVar
	id int
}

func (c *Constraint) Tag() Tag { return c.tag }

// --- constructors -----------------------------------------------------

func Classification(t Tag) *Constraint {
	if !isClassification(t) {
		panic("constraint: not a classification tag")
	}
	return &Constraint{tag: t}
}

var (
	IsNumberC   = Classification(IsNumber)
	IsStringC   = Classification(IsString)
	IsBoolC     = Classification(IsBool)
	IsNullC     = Classification(IsNull)
	IsObjectC   = Classification(IsObject)
	IsArrayC    = Classification(IsArray)
	IsFunctionC = Classification(IsFunction)
	NeverC      = &Constraint{tag: Never}
	AnyC        = &Constraint{tag: Any}
)

func EqualsV(v Equatable) *Constraint { return &Constraint{tag: Equals, value: v} }

func GtC(n float64) *Constraint  { return &Constraint{tag: Gt, num: n} }
func GteC(n float64) *Constraint { return &Constraint{tag: Gte, num: n} }
func LtC(n float64) *Constraint  { return &Constraint{tag: Lt, num: n} }
func LteC(n float64) *Constraint { return &Constraint{tag: Lte, num: n} }

func HasFieldC(name string, c *Constraint) *Constraint {
	return &Constraint{tag: HasField, field: name, inner: c}
}

func ElementsC(c *Constraint) *Constraint { return &Constraint{tag: Elements, inner: c} }

func ElementAtC(i int, c *Constraint) *Constraint {
	return &Constraint{tag: ElementAt, index: i, inner: c}
}

func LengthC(c *Constraint) *Constraint { return &Constraint{tag: Length, inner: c} }

func AndC(cs ...*Constraint) *Constraint { return &Constraint{tag: And, children: cs} }
func OrC(cs ...*Constraint) *Constraint  { return &Constraint{tag: Or, children: cs} }
func NotC(c *Constraint) *Constraint     { return &Constraint{tag: Not, inner: c} }

func CVarC(id int) *Constraint { return &Constraint{tag: CVar, id: id} }

// Accessors used by Simplify/Implies/the refinement extractor.

func (c *Constraint) Value() Equatable     { return c.value }
func (c *Constraint) Num() float64         { return c.num }
func (c *Constraint) Field() string        { return c.field }
func (c *Constraint) Inner() *Constraint   { return c.inner }
func (c *Constraint) Index() int           { return c.index }
func (c *Constraint) Children() []*Constraint {
	return c.children
}
func (c *Constraint) ID() int { return c.id }

// String renders a Constraint in a small canonical surface syntax, mostly
// useful for debugging and golden tests.
func (c *Constraint) String() string {
	if c == nil {
		return "<nil>"
	}
	switch c.tag {
	case IsNumber:
		return "isNumber"
	case IsString:
		return "isString"
	case IsBool:
		return "isBool"
	case IsNull:
		return "isNull"
	case IsObject:
		return "isObject"
	case IsArray:
		return "isArray"
	case IsFunction:
		return "isFunction"
	case Equals:
		return fmt.Sprintf("equals(%s)", c.value.String())
	case Gt:
		return "gt(" + formatNum(c.num) + ")"
	case Gte:
		return "gte(" + formatNum(c.num) + ")"
	case Lt:
		return "lt(" + formatNum(c.num) + ")"
	case Lte:
		return "lte(" + formatNum(c.num) + ")"
	case HasField:
		return fmt.Sprintf("hasField(%s, %s)", c.field, c.inner.String())
	case Elements:
		return fmt.Sprintf("elements(%s)", c.inner.String())
	case ElementAt:
		return fmt.Sprintf("elementAt(%d, %s)", c.index, c.inner.String())
	case Length:
		return fmt.Sprintf("length(%s)", c.inner.String())
	case And:
		return joinChildren("and", c.children)
	case Or:
		return joinChildren("or", c.children)
	case Not:
		return fmt.Sprintf("not(%s)", c.inner.String())
	case Never:
		return "never"
	case Any:
		return "any"
	case CVar:
		return fmt.Sprintf("cvar(%d)", c.id)
	default:
		return "?"
	}
}

func joinChildren(name string, cs []*Constraint) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	sort.Strings(parts)
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatNum(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
