package evalc

import (
	"fmt"

	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

// NewGlobalEnv builds the environment exposing the compiler's built-in
// type constructors, primitive type constants, and assert to user code.
func NewGlobalEnv() *value.Environment {
	env := value.NewEnvironment()

	bindType := func(name string, t types.Type) {
		env.Bind(name, value.EvaluatedBinding(value.TypeValue{Type: t}, types.Prim(types.Unknown)))
	}
	bindType("Int", types.Prim(types.Int))
	bindType("Float", types.Prim(types.Float))
	bindType("Number", types.Prim(types.Number))
	bindType("String", types.Prim(types.String))
	bindType("Boolean", types.Prim(types.Boolean))
	bindType("Null", types.Prim(types.Null))
	bindType("Undefined", types.Prim(types.Undefined))
	bindType("Never", types.Prim(types.NeverPrim))
	bindType("Unknown", types.Prim(types.Unknown))

	bindBuiltin := func(name string, fn value.BuiltinFunc) {
		b := &value.Builtin{Name: name, Fn: fn}
		env.Bind(name, value.EvaluatedBinding(b, types.FunctionT{ReturnType: types.Prim(types.Unknown)}))
	}
	bindBuiltin("assert", builtinAssert)
	bindBuiltin("Union", builtinUnion)
	bindBuiltin("Intersection", builtinIntersection)
	bindBuiltin("RecordType", builtinRecordType)
	bindBuiltin("Array", builtinArrayType)
	bindBuiltin("FunctionType", builtinFunctionType)
	bindBuiltin("Branded", builtinBranded)
	bindBuiltin("WithMetadata", builtinWithMetadata)
	bindBuiltin("LiteralType", builtinLiteralType)
	bindBuiltin("Type", builtinBoundedType)

	return env
}

func asTypeValue(v value.Value, who string) (types.Type, error) {
	tv, ok := v.(value.TypeValue)
	if !ok {
		return nil, fmt.Errorf("%s expects a type argument", who)
	}
	return tv.Type, nil
}

func builtinAssert(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("assert requires a condition argument")
	}
	b, ok := args[0].(value.Bool)
	if !ok {
		return nil, fmt.Errorf("assert's condition must be boolean")
	}
	if !b.Value {
		msg := "assertion failed"
		if len(args) > 1 {
			if s, ok := args[1].(value.String); ok {
				msg = s.Value
			}
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return value.Null{}, nil
}

func builtinUnion(args []value.Value) (value.Value, error) {
	variants := make([]types.Type, len(args))
	for i, a := range args {
		t, err := asTypeValue(a, "Union")
		if err != nil {
			return nil, err
		}
		variants[i] = t
	}
	return value.TypeValue{Type: types.UnionT{Variants: variants}}, nil
}

func builtinIntersection(args []value.Value) (value.Value, error) {
	members := make([]types.Type, len(args))
	for i, a := range args {
		t, err := asTypeValue(a, "Intersection")
		if err != nil {
			return nil, err
		}
		members[i] = t
	}
	return value.TypeValue{Type: types.IntersectionT{Members: members}}, nil
}

func builtinRecordType(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("RecordType requires a record of field types")
	}
	fieldsObj, ok := args[0].(value.Object)
	if !ok {
		return nil, fmt.Errorf("RecordType's first argument must be a record of field types")
	}
	fields := make([]types.FieldT, 0, len(fieldsObj.Fields))
	for _, f := range fieldsObj.Fields {
		t, err := asTypeValue(f.Value, "RecordType field")
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.FieldT{Name: f.Name, Type: t})
	}
	rt := types.RecordT{Fields: fields, Closed: true}
	if len(args) > 1 {
		idx, err := asTypeValue(args[1], "RecordType indexType")
		if err != nil {
			return nil, err
		}
		rt.IndexType = idx
		if p, ok := idx.(types.PrimitiveT); !ok || p.Kind != types.NeverPrim {
			rt.Closed = false
		}
	}
	return value.TypeValue{Type: rt}, nil
}

func builtinArrayType(args []value.Value) (value.Value, error) {
	if len(args) == 1 {
		t, err := asTypeValue(args[0], "Array")
		if err != nil {
			return nil, err
		}
		return value.TypeValue{Type: types.ArrayT{Elements: []types.Type{t}, Variadic: true}}, nil
	}
	elems := make([]types.Type, len(args))
	for i, a := range args {
		t, err := asTypeValue(a, "Array")
		if err != nil {
			return nil, err
		}
		elems[i] = t
	}
	return value.TypeValue{Type: types.ArrayT{Elements: elems}}, nil
}

func builtinFunctionType(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("FunctionType requires params and a returnType")
	}
	paramsArr, ok := args[0].(value.Array)
	if !ok {
		return nil, fmt.Errorf("FunctionType's first argument must be an array of parameter types")
	}
	params := make([]types.Type, len(paramsArr.Elements))
	for i, p := range paramsArr.Elements {
		t, err := asTypeValue(p, "FunctionType parameter")
		if err != nil {
			return nil, err
		}
		params[i] = t
	}
	ret, err := asTypeValue(args[1], "FunctionType returnType")
	if err != nil {
		return nil, err
	}
	return value.TypeValue{Type: types.FunctionT{Params: params, ReturnType: ret}}, nil
}

func builtinBranded(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("Branded requires a base type and a name")
	}
	base, err := asTypeValue(args[0], "Branded")
	if err != nil {
		return nil, err
	}
	name, ok := args[1].(value.String)
	if !ok {
		return nil, fmt.Errorf("Branded's second argument must be a string name")
	}
	return value.TypeValue{Type: types.BrandedT{Base: base, Name: name.Value}}, nil
}

func builtinWithMetadata(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("WithMetadata requires a base type")
	}
	base, err := asTypeValue(args[0], "WithMetadata")
	if err != nil {
		return nil, err
	}
	w := types.WithMetadataT{Inner: base}
	if len(args) > 1 {
		opts, ok := args[1].(value.Object)
		if !ok {
			return nil, fmt.Errorf("WithMetadata's second argument must be a record")
		}
		if f, ok := opts.Field("name"); ok {
			if s, ok := f.Value.(value.String); ok {
				name := s.Value
				w.Name = &name
			}
		}
		if f, ok := opts.Field("typeArgs"); ok {
			if arr, ok := f.Value.(value.Array); ok {
				w.TypeArgs = make([]types.Type, len(arr.Elements))
				for i, el := range arr.Elements {
					t, err := asTypeValue(el, "WithMetadata typeArgs")
					if err != nil {
						return nil, err
					}
					w.TypeArgs[i] = t
				}
			}
		}
		if f, ok := opts.Field("annotations"); ok {
			if obj, ok := f.Value.(value.Object); ok {
				w.Annotations = map[string]string{}
				for _, af := range obj.Fields {
					if s, ok := af.Value.(value.String); ok {
						w.Annotations[af.Name] = s.Value
					}
				}
			}
		}
	}
	return value.TypeValue{Type: w}, nil
}

func builtinLiteralType(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("LiteralType requires exactly one value argument")
	}
	return value.TypeValue{Type: literalType(args[0])}, nil
}

func builtinBoundedType(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("Type requires a bound type argument")
	}
	bound, err := asTypeValue(args[0], "Type")
	if err != nil {
		return nil, err
	}
	return value.TypeValue{Type: types.BoundedT{Bound: bound}}, nil
}
