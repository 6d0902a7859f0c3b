package types

import (
	"fmt"
	"sort"
)

// PropKind discriminates what GetTypeProperty returned, so the evaluator
// can wrap the right shape into its own Value representation.
type PropKind int

const (
	PropType PropKind = iota
	PropTypeList
	PropStringList
	PropString
	PropStringMap
	PropBool
)

// Property is the result of GetTypeProperty.
type Property struct {
	Kind    PropKind
	Type    Type
	Types   []Type
	Strings []string
	Str     string
	Map     map[string]string
}

// AmbiguousSignatureError is raised by .returnType/.parameterTypes when t
// is an intersection with more than one function member.
type AmbiguousSignatureError struct {
	Type Type
}

func (e *AmbiguousSignatureError) Error() string {
	return fmt.Sprintf("ambiguous signature on intersection type %s", e.Type.String())
}

// GetTypeProperty exposes the structural introspection properties named
// in the spec (`.name`, `.fields`, `.variants`, `.returnType`, ...).
func GetTypeProperty(t Type, name string) (Property, error) {
	switch name {
	case "name":
		if w, ok := t.(WithMetadataT); ok && w.Name != nil {
			return Property{Kind: PropString, Str: *w.Name}, nil
		}
		return Property{Kind: PropString, Str: t.String()}, nil
	case "baseName":
		return Property{Kind: PropString, Str: Unwrap(t).String()}, nil
	case "typeArgs":
		if w, ok := t.(WithMetadataT); ok {
			return Property{Kind: PropTypeList, Types: w.TypeArgs}, nil
		}
		return Property{Kind: PropTypeList, Types: nil}, nil
	case "annotations":
		if w, ok := t.(WithMetadataT); ok {
			return Property{Kind: PropStringMap, Map: w.Annotations}, nil
		}
		return Property{Kind: PropStringMap, Map: nil}, nil
	}

	u := Unwrap(t)
	switch tv := u.(type) {
	case RecordT:
		switch name {
		case "fields":
			return Property{Kind: PropTypeList, Types: fieldTypes(tv)}, nil
		case "fieldNames":
			return Property{Kind: PropStringList, Strings: fieldNames(tv)}, nil
		case "indexType":
			if tv.IndexType == nil {
				return Property{Kind: PropType, Type: Prim(NeverPrim)}, nil
			}
			return Property{Kind: PropType, Type: tv.IndexType}, nil
		case "keysType":
			return Property{Kind: PropType, Type: keysType(tv)}, nil
		}
	case UnionT:
		if name == "variants" {
			return Property{Kind: PropTypeList, Types: tv.Variants}, nil
		}
	case IntersectionT:
		switch name {
		case "signatures":
			return Property{Kind: PropTypeList, Types: functionMembers(tv)}, nil
		case "returnType":
			fns := functionMembers(tv)
			if len(fns) != 1 {
				return Property{}, &AmbiguousSignatureError{Type: t}
			}
			return Property{Kind: PropType, Type: fns[0].(FunctionT).ReturnType}, nil
		case "parameterTypes":
			fns := functionMembers(tv)
			if len(fns) != 1 {
				return Property{}, &AmbiguousSignatureError{Type: t}
			}
			return Property{Kind: PropTypeList, Types: fns[0].(FunctionT).Params}, nil
		}
	case FunctionT:
		switch name {
		case "returnType":
			return Property{Kind: PropType, Type: tv.ReturnType}, nil
		case "parameterTypes":
			return Property{Kind: PropTypeList, Types: tv.Params}, nil
		}
	case BrandedT:
		switch name {
		case "baseType":
			return Property{Kind: PropType, Type: tv.Base}, nil
		case "brand":
			return Property{Kind: PropString, Str: tv.Name}, nil
		}
	}
	return Property{}, fmt.Errorf("type %s has no property %q", t.String(), name)
}

func fieldTypes(r RecordT) []Type {
	out := make([]Type, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = f.Type
	}
	return out
}

func fieldNames(r RecordT) []string {
	out := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = f.Name
	}
	return out
}

// keysType is the union of literal field-name types, `.keysType`.
func keysType(r RecordT) Type {
	names := fieldNames(r)
	sort.Strings(names)
	variants := make([]Type, len(names))
	for i, n := range names {
		variants[i] = Literal(LitValue{IsString: true, Str: n}, String)
	}
	switch len(variants) {
	case 0:
		return Prim(NeverPrim)
	case 1:
		return variants[0]
	default:
		return UnionT{Variants: variants}
	}
}

func functionMembers(i IntersectionT) []Type {
	var out []Type
	for _, m := range i.Members {
		if _, ok := Unwrap(m).(FunctionT); ok {
			out = append(out, Unwrap(m))
		}
	}
	return out
}

// Extends is `.extends(other)`, the first-class exposure of IsSubtype.
func Extends(a, b Type) bool { return IsSubtype(a, b) }
