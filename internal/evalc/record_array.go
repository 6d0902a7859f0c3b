package evalc

import (
	"github.com/typeforge/tfc/internal/ast"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

func (ev *Evaluator) evalRecord(e *ast.Record, cenv, tenv *value.Environment) (TypedValue, error) {
	var fields []value.ObjectField
	var fieldTypes []types.FieldT

	upsert := func(f value.ObjectField, ft types.FieldT) {
		for i, existing := range fields {
			if existing.Name == f.Name {
				fields[i] = f
				fieldTypes[i] = ft
				return
			}
		}
		fields = append(fields, f)
		fieldTypes = append(fieldTypes, ft)
	}

	for _, f := range e.Fields {
		if f.Spread {
			tv, err := ev.Evaluate(f.Value, cenv, tenv)
			if err != nil {
				return TypedValue{}, err
			}
			obj, ok := tv.Value.(value.Object)
			if !ok {
				rng := e.Range()
				return TypedValue{}, diag.New(diag.Typecheck, diag.BadSpread, &rng, "spread of a non-record value")
			}
			for _, of := range obj.Fields {
				upsert(of, types.FieldT{Name: of.Name, Type: of.Type})
			}
			continue
		}
		tv, err := ev.Evaluate(f.Value, cenv, tenv)
		if err != nil {
			return TypedValue{}, err
		}
		upsert(value.ObjectField{Name: f.Name, Value: tv.Value, Type: tv.Type}, types.FieldT{Name: f.Name, Type: tv.Type})
	}

	return TypedValue{
		Value: value.Object{Fields: fields},
		Type:  types.RecordT{Fields: fieldTypes, Closed: true},
	}, nil
}

func (ev *Evaluator) evalArray(e *ast.Array, cenv, tenv *value.Environment) (TypedValue, error) {
	var elems []value.Value
	var typesSeen []types.Type
	variadic := false

	for _, el := range e.Elements {
		if el.Spread {
			variadic = true
			tv, err := ev.Evaluate(el.Value, cenv, tenv)
			if err != nil {
				return TypedValue{}, err
			}
			arr, ok := tv.Value.(value.Array)
			if !ok {
				rng := e.Range()
				return TypedValue{}, diag.New(diag.Typecheck, diag.BadSpread, &rng, "spread of a non-array value")
			}
			elems = append(elems, arr.Elements...)
			if at, ok := types.Unwrap(tv.Type).(types.ArrayT); ok {
				typesSeen = append(typesSeen, at.Elements...)
			}
			continue
		}
		tv, err := ev.Evaluate(el.Value, cenv, tenv)
		if err != nil {
			return TypedValue{}, err
		}
		elems = append(elems, tv.Value)
		typesSeen = append(typesSeen, tv.Type)
	}

	arr := value.Array{Elements: elems, Variadic: variadic}
	if variadic {
		return TypedValue{Value: arr, Type: types.ArrayT{Elements: []types.Type{joinTypes(typesSeen)}, Variadic: true}}, nil
	}
	return TypedValue{Value: arr, Type: types.ArrayT{Elements: typesSeen}}, nil
}

func (ev *Evaluator) evalProperty(e *ast.Property, cenv, tenv *value.Environment) (TypedValue, error) {
	obj, err := ev.Evaluate(e.Object, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	return ev.getProperty(obj, e.Name, e.Range())
}

func (ev *Evaluator) getProperty(obj TypedValue, name string, rng ast.Range) (TypedValue, error) {
	switch v := obj.Value.(type) {
	case value.TypeValue:
		if name == "extends" {
			return ev.extendsMethod(v.Type), nil
		}
		prop, propErr := types.GetTypeProperty(v.Type, name)
		if propErr != nil {
			return TypedValue{}, diag.New(diag.Typecheck, diag.NoSuchField, &rng, "%s", propErr.Error())
		}
		return propertyToTyped(prop), nil

	case value.Array:
		if name == "length" {
			n := value.Int(int64(len(v.Elements)))
			return TypedValue{Value: n, Type: literalType(n)}, nil
		}
		if fn, ft, ok := arrayMethod(ev, v, name); ok {
			return TypedValue{Value: fn, Type: ft}, nil
		}
		return TypedValue{}, diag.New(diag.Typecheck, diag.NoSuchField, &rng, "array has no property %q", name)

	case value.Object:
		if f, ok := v.Field(name); ok {
			t := f.Type
			if t == nil {
				t = inferType(f.Value)
			}
			return TypedValue{Value: f.Value, Type: t}, nil
		}
		return TypedValue{}, diag.New(diag.Typecheck, diag.NoSuchField, &rng, "record has no field %q", name)

	case value.String:
		if name == "length" {
			n := value.Int(int64(len([]rune(v.Value))))
			return TypedValue{Value: n, Type: literalType(n)}, nil
		}
		if fn, ft, ok := stringMethod(v, name); ok {
			return TypedValue{Value: fn, Type: ft}, nil
		}
		return TypedValue{}, diag.New(diag.Typecheck, diag.NoSuchField, &rng, "string has no property %q", name)

	default:
		return TypedValue{}, diag.New(diag.Typecheck, diag.NoSuchField, &rng, "value has no property %q", name)
	}
}

// extendsMethod is the first-class exposure of isSubtype as `.extends(other)`.
func (ev *Evaluator) extendsMethod(t types.Type) TypedValue {
	fn := &value.Builtin{Name: "extends", Fn: func(args []value.Value) (value.Value, error) {
		other, err := asTypeValue(firstOrNil(args), "extends")
		if err != nil {
			return nil, err
		}
		return value.Bool{Value: types.Extends(t, other)}, nil
	}}
	ft := types.FunctionT{Params: []types.Type{types.Prim(types.Unknown)}, ReturnType: types.Prim(types.Boolean)}
	return TypedValue{Value: fn, Type: ft}
}

func firstOrNil(args []value.Value) value.Value {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func propertyToTyped(p types.Property) TypedValue {
	switch p.Kind {
	case types.PropType:
		return TypedValue{Value: value.TypeValue{Type: p.Type}, Type: types.Prim(types.Unknown)}
	case types.PropTypeList:
		elems := make([]value.Value, len(p.Types))
		ets := make([]types.Type, len(p.Types))
		for i, t := range p.Types {
			elems[i] = value.TypeValue{Type: t}
			ets[i] = types.Prim(types.Unknown)
		}
		return TypedValue{Value: value.Array{Elements: elems}, Type: types.ArrayT{Elements: ets}}
	case types.PropStringList:
		elems := make([]value.Value, len(p.Strings))
		ets := make([]types.Type, len(p.Strings))
		for i, s := range p.Strings {
			elems[i] = value.String{Value: s}
			ets[i] = types.Prim(types.String)
		}
		return TypedValue{Value: value.Array{Elements: elems}, Type: types.ArrayT{Elements: ets}}
	case types.PropString:
		s := value.String{Value: p.Str}
		return TypedValue{Value: s, Type: literalType(s)}
	case types.PropStringMap:
		var fields []value.ObjectField
		var fts []types.FieldT
		for k, val := range p.Map {
			sv := value.String{Value: val}
			fields = append(fields, value.ObjectField{Name: k, Value: sv, Type: literalType(sv)})
			fts = append(fts, types.FieldT{Name: k, Type: literalType(sv)})
		}
		return TypedValue{Value: value.Object{Fields: fields}, Type: types.RecordT{Fields: fts, Closed: true}}
	default:
		return TypedValue{Value: value.Null{}, Type: types.Prim(types.Null)}
	}
}

func (ev *Evaluator) evalIndex(e *ast.Index, cenv, tenv *value.Environment) (TypedValue, error) {
	obj, err := ev.Evaluate(e.Object, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	idx, err := ev.Evaluate(e.Idx, cenv, tenv)
	if err != nil {
		return TypedValue{}, err
	}
	rng := e.Range()

	switch v := obj.Value.(type) {
	case value.Array:
		n, ok := idx.Value.(value.Number)
		if !ok {
			return TypedValue{}, diag.New(diag.Typecheck, diag.BadIndex, &rng, "array index must be numeric")
		}
		i := int(n.AsFloat())
		if i < 0 || i >= len(v.Elements) {
			return TypedValue{}, diag.New(diag.Typecheck, diag.BadIndex, &rng, "array index %d out of range", i)
		}
		elemType := types.Prim(types.Unknown)
		if at, ok := types.Unwrap(obj.Type).(types.ArrayT); ok {
			if at.Variadic {
				elemType = at.Elements[0]
			} else if i < len(at.Elements) {
				elemType = at.Elements[i]
			}
		}
		return TypedValue{Value: v.Elements[i], Type: elemType}, nil

	case value.String:
		n, ok := idx.Value.(value.Number)
		if !ok {
			return TypedValue{}, diag.New(diag.Typecheck, diag.BadIndex, &rng, "string index must be numeric")
		}
		runes := []rune(v.Value)
		i := int(n.AsFloat())
		if i < 0 || i >= len(runes) {
			return TypedValue{}, diag.New(diag.Typecheck, diag.BadIndex, &rng, "string index %d out of range", i)
		}
		s := value.String{Value: string(runes[i])}
		return TypedValue{Value: s, Type: literalType(s)}, nil

	case value.Object:
		s, ok := idx.Value.(value.String)
		if !ok {
			return TypedValue{}, diag.New(diag.Typecheck, diag.BadIndex, &rng, "record index must be a string")
		}
		f, ok := v.Field(s.Value)
		if !ok {
			return TypedValue{}, diag.New(diag.Typecheck, diag.NoSuchField, &rng, "record has no field %q", s.Value)
		}
		t := f.Type
		if t == nil {
			t = inferType(f.Value)
		}
		return TypedValue{Value: f.Value, Type: t}, nil

	default:
		return TypedValue{}, diag.New(diag.Typecheck, diag.BadIndex, &rng, "value is not indexable")
	}
}
