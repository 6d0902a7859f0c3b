package evalc

import (
	"fmt"
	"strings"

	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

// arrayMethod resolves the array-method protocol: each callback-taking
// method runs the callback through applyClosureWithValues with the
// standard (element, index, array) triple; reduce passes
// (accumulator, element, index, array).
func arrayMethod(ev *Evaluator, arr value.Array, name string) (value.Value, types.Type, bool) {
	ft := types.FunctionT{ReturnType: types.Prim(types.Unknown)}
	mk := func(fn value.BuiltinFunc) (value.Value, types.Type, bool) {
		return &value.Builtin{Name: name, Fn: fn}, ft, true
	}

	switch name {
	case "map":
		return mk(func(args []value.Value) (value.Value, error) {
			cb, err := asClosure(args, "map")
			if err != nil {
				return nil, err
			}
			out := make([]value.Value, len(arr.Elements))
			for i, el := range arr.Elements {
				r, err := ev.applyClosureWithValues(cb, []value.Value{el, value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				out[i] = r
			}
			return value.Array{Elements: out, Variadic: true}, nil
		})

	case "filter":
		return mk(func(args []value.Value) (value.Value, error) {
			cb, err := asClosure(args, "filter")
			if err != nil {
				return nil, err
			}
			var out []value.Value
			for i, el := range arr.Elements {
				r, err := ev.applyClosureWithValues(cb, []value.Value{el, value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				if b, ok := r.(value.Bool); ok && b.Value {
					out = append(out, el)
				}
			}
			return value.Array{Elements: out, Variadic: true}, nil
		})

	case "find":
		return mk(func(args []value.Value) (value.Value, error) {
			cb, err := asClosure(args, "find")
			if err != nil {
				return nil, err
			}
			for i, el := range arr.Elements {
				r, err := ev.applyClosureWithValues(cb, []value.Value{el, value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				if b, ok := r.(value.Bool); ok && b.Value {
					return el, nil
				}
			}
			return value.Null{}, nil
		})

	case "findIndex":
		return mk(func(args []value.Value) (value.Value, error) {
			cb, err := asClosure(args, "findIndex")
			if err != nil {
				return nil, err
			}
			for i, el := range arr.Elements {
				r, err := ev.applyClosureWithValues(cb, []value.Value{el, value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				if b, ok := r.(value.Bool); ok && b.Value {
					return value.Int(int64(i)), nil
				}
			}
			return value.Int(-1), nil
		})

	case "some":
		return mk(func(args []value.Value) (value.Value, error) {
			cb, err := asClosure(args, "some")
			if err != nil {
				return nil, err
			}
			for i, el := range arr.Elements {
				r, err := ev.applyClosureWithValues(cb, []value.Value{el, value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				if b, ok := r.(value.Bool); ok && b.Value {
					return value.Bool{Value: true}, nil
				}
			}
			return value.Bool{Value: false}, nil
		})

	case "every":
		return mk(func(args []value.Value) (value.Value, error) {
			cb, err := asClosure(args, "every")
			if err != nil {
				return nil, err
			}
			for i, el := range arr.Elements {
				r, err := ev.applyClosureWithValues(cb, []value.Value{el, value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				if b, ok := r.(value.Bool); !ok || !b.Value {
					return value.Bool{Value: false}, nil
				}
			}
			return value.Bool{Value: true}, nil
		})

	case "reduce":
		return mk(func(args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("reduce requires a callback argument")
			}
			cb, ok := args[0].(*value.Closure)
			if !ok {
				return nil, fmt.Errorf("reduce's first argument must be a function")
			}
			elems := arr.Elements
			var acc value.Value
			start := 0
			if len(args) > 1 {
				acc = args[1]
			} else {
				if len(elems) == 0 {
					return nil, fmt.Errorf("reduce of empty array with no initial value")
				}
				acc, start = elems[0], 1
			}
			for i := start; i < len(elems); i++ {
				r, err := ev.applyClosureWithValues(cb, []value.Value{acc, elems[i], value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				acc = r
			}
			return acc, nil
		})

	case "concat":
		return mk(func(args []value.Value) (value.Value, error) {
			out := append([]value.Value{}, arr.Elements...)
			for _, a := range args {
				other, ok := a.(value.Array)
				if !ok {
					return nil, fmt.Errorf("concat's arguments must be arrays")
				}
				out = append(out, other.Elements...)
			}
			return value.Array{Elements: out, Variadic: true}, nil
		})

	case "slice":
		return mk(func(args []value.Value) (value.Value, error) {
			start, end := sliceBounds(args, len(arr.Elements))
			return value.Array{Elements: append([]value.Value{}, arr.Elements[start:end]...), Variadic: arr.Variadic}, nil
		})

	case "indexOf":
		return mk(func(args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("indexOf requires a value argument")
			}
			for i, el := range arr.Elements {
				if value.ValuesEqual(el, args[0]) {
					return value.Int(int64(i)), nil
				}
			}
			return value.Int(-1), nil
		})

	case "includes":
		return mk(func(args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("includes requires a value argument")
			}
			for _, el := range arr.Elements {
				if value.ValuesEqual(el, args[0]) {
					return value.Bool{Value: true}, nil
				}
			}
			return value.Bool{Value: false}, nil
		})

	case "join":
		return mk(func(args []value.Value) (value.Value, error) {
			sep := ","
			if len(args) > 0 {
				if s, ok := args[0].(value.String); ok {
					sep = s.Value
				}
			}
			parts := make([]string, len(arr.Elements))
			for i, el := range arr.Elements {
				parts[i] = el.String()
			}
			return value.String{Value: strings.Join(parts, sep)}, nil
		})

	case "flat":
		return mk(func(args []value.Value) (value.Value, error) {
			var out []value.Value
			for _, el := range arr.Elements {
				if sub, ok := el.(value.Array); ok {
					out = append(out, sub.Elements...)
				} else {
					out = append(out, el)
				}
			}
			return value.Array{Elements: out, Variadic: true}, nil
		})

	case "flatMap":
		return mk(func(args []value.Value) (value.Value, error) {
			cb, err := asClosure(args, "flatMap")
			if err != nil {
				return nil, err
			}
			var out []value.Value
			for i, el := range arr.Elements {
				r, err := ev.applyClosureWithValues(cb, []value.Value{el, value.Int(int64(i)), arr})
				if err != nil {
					return nil, err
				}
				if sub, ok := r.(value.Array); ok {
					out = append(out, sub.Elements...)
				} else {
					out = append(out, r)
				}
			}
			return value.Array{Elements: out, Variadic: true}, nil
		})

	default:
		return nil, nil, false
	}
}

func asClosure(args []value.Value, who string) (*value.Closure, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s requires a callback argument", who)
	}
	cb, ok := args[0].(*value.Closure)
	if !ok {
		return nil, fmt.Errorf("%s's argument must be a function", who)
	}
	return cb, nil
}

func sliceBounds(args []value.Value, n int) (int, int) {
	start, end := 0, n
	if len(args) > 0 {
		if s, ok := args[0].(value.Number); ok {
			start = normalizeIndex(int(s.AsFloat()), n)
		}
	}
	if len(args) > 1 {
		if e, ok := args[1].(value.Number); ok {
			end = normalizeIndex(int(e.AsFloat()), n)
		}
	}
	if start > end {
		start = end
	}
	return start, end
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
