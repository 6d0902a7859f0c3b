// Package types implements the structural Type algebra of the spec: the
// `Type` sum distinct from `constraint.Constraint`, and the subtype
// relation and property-access rules that operate on it. Constraint and
// Type are two views of the same information; see bridge.go for the
// conversion functions mentioned in the spec's design notes.
package types

import (
	"sort"
	"strings"
)

// PrimitiveKind enumerates the built-in primitive types.
type PrimitiveKind int

const (
	Int PrimitiveKind = iota
	Float
	Number
	String
	Boolean
	Null
	Undefined
	NeverPrim
	Unknown // top type ("any"/"unknown")
)

func (p PrimitiveKind) String() string {
	switch p {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Number:
		return "Number"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case Null:
		return "Null"
	case Undefined:
		return "Undefined"
	case NeverPrim:
		return "Never"
	case Unknown:
		return "Unknown"
	default:
		return "?"
	}
}

// Type is implemented by every case of the type sum.
type Type interface {
	String() string
	typ()
}

type base struct{}

func (base) typ() {}

// PrimitiveT is a built-in primitive type.
type PrimitiveT struct {
	base
	Kind PrimitiveKind
}

func (p PrimitiveT) String() string { return p.Kind.String() }

func Prim(k PrimitiveKind) Type { return PrimitiveT{Kind: k} }

// LitValue is the minimal comparable payload a LiteralT can carry — kept
// self-contained (no dependency on the value model) the same way
// constraint.Equatable is.
type LitValue struct {
	IsString bool
	IsBool   bool
	IsNumber bool
	Str      string
	Bool     bool
	Num      float64
}

func (l LitValue) String() string {
	switch {
	case l.IsString:
		return `"` + l.Str + `"`
	case l.IsBool:
		if l.Bool {
			return "true"
		}
		return "false"
	case l.IsNumber:
		return formatNum(l.Num)
	default:
		return "null"
	}
}

func (l LitValue) Equal(o LitValue) bool {
	return l.IsString == o.IsString && l.IsBool == o.IsBool && l.IsNumber == o.IsNumber &&
		l.Str == o.Str && l.Bool == o.Bool && l.Num == o.Num
}

// LiteralT is a singleton literal type, e.g. `"circle"` or `5`, carrying
// the base primitive it widens to.
type LiteralT struct {
	base
	Value LitValue
	Base  PrimitiveKind
}

func Literal(v LitValue, base_ PrimitiveKind) Type { return LiteralT{Value: v, Base: base_} }

func (l LiteralT) String() string { return l.Value.String() }

// FieldT is one field of a RecordT.
type FieldT struct {
	Name     string
	Type     Type
	Optional bool
}

// RecordT is a structural record/object type.
type RecordT struct {
	base
	Fields     []FieldT
	IndexType  Type // optional: non-nil means an index signature is present
	Closed     bool
}

func (r RecordT) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		opt := ""
		if f.Optional {
			opt = "?"
		}
		parts[i] = f.Name + opt + ": " + f.Type.String()
	}
	prefix := "{"
	if !r.Closed {
		prefix = "{..."
	}
	return prefix + strings.Join(parts, ", ") + "}"
}

func (r RecordT) Field(name string) (FieldT, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldT{}, false
}

// ArrayT is either a variadic array `T[]` (len(Elements)==1, Variadic) or
// a fixed-length tuple (Variadic==false).
type ArrayT struct {
	base
	Elements []Type
	Variadic bool
}

func (a ArrayT) String() string {
	if a.Variadic {
		return a.Elements[0].String() + "[]"
	}
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// UnionT is a union of types.
type UnionT struct {
	base
	Variants []Type
}

func (u UnionT) String() string {
	parts := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// IntersectionT is an intersection of types.
type IntersectionT struct {
	base
	Members []Type
}

func (i IntersectionT) String() string {
	parts := make([]string, len(i.Members))
	for j, m := range i.Members {
		parts[j] = m.String()
	}
	return strings.Join(parts, " & ")
}

// FunctionT is a function type.
type FunctionT struct {
	base
	Params     []Type
	ReturnType Type
	Async      bool
}

func (f FunctionT) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	prefix := ""
	if f.Async {
		prefix = "async "
	}
	return prefix + "(" + strings.Join(parts, ", ") + ") => " + f.ReturnType.String()
}

// BrandedT is an opaque nominal wrapper around a base type.
type BrandedT struct {
	base
	Base Type
	Name string
}

func (b BrandedT) String() string { return b.Name }

// BoundedT is a generic parameter's constraint, created by `Type(bound)`.
type BoundedT struct {
	base
	Bound Type
}

func (b BoundedT) String() string { return "Type<" + b.Bound.String() + ">" }

// WithMetadataT attaches a display name, type arguments, and free-form
// annotations to an inner type without changing its structural identity;
// it is transparent for subtyping.
type WithMetadataT struct {
	base
	Inner       Type
	Name        *string
	TypeArgs    []Type
	Annotations map[string]string
}

func (w WithMetadataT) String() string {
	if w.Name != nil {
		if len(w.TypeArgs) == 0 {
			return *w.Name
		}
		parts := make([]string, len(w.TypeArgs))
		for i, t := range w.TypeArgs {
			parts[i] = t.String()
		}
		return *w.Name + "<" + strings.Join(parts, ", ") + ">"
	}
	return w.Inner.String()
}

// Unwrap strips any WithMetadataT wrapper, returning the structural type.
func Unwrap(t Type) Type {
	for {
		w, ok := t.(WithMetadataT)
		if !ok {
			return t
		}
		t = w.Inner
	}
}

func formatNum(n float64) string {
	if n == float64(int64(n)) {
		return itoa(int64(n))
	}
	return ftoa(n)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

func ftoa(f float64) string {
	return sortableFloat(f)
}

func sortableFloat(f float64) string {
	// Minimal, allocation-light float formatting sufficient for type/
	// literal display; not a general-purpose formatter.
	i := int64(f)
	frac := f - float64(i)
	if frac < 0 {
		frac = -frac
	}
	s := itoa(i)
	if frac == 0 {
		return s
	}
	fracStr := ""
	for k := 0; k < 6 && frac > 1e-9; k++ {
		frac *= 10
		d := int64(frac)
		fracStr += string(byte('0' + d))
		frac -= float64(d)
	}
	return s + "." + fracStr
}

// sortTypeStrings is a small helper used when canonical ordering of a
// type list matters for display.
func sortTypeStrings(ts []Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	sort.Strings(out)
	return out
}
