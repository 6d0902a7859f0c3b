package evalc

import (
	"fmt"
	"strings"

	"github.com/typeforge/tfc/internal/types"
	"github.com/typeforge/tfc/internal/value"
)

func stringMethod(s value.String, name string) (value.Value, types.Type, bool) {
	ft := types.FunctionT{ReturnType: types.Prim(types.Unknown)}
	mk := func(fn value.BuiltinFunc) (value.Value, types.Type, bool) {
		return &value.Builtin{Name: name, Fn: fn}, ft, true
	}
	runes := []rune(s.Value)

	switch name {
	case "charAt":
		return mk(func(args []value.Value) (value.Value, error) {
			i, err := intArg(args, 0, "charAt")
			if err != nil {
				return nil, err
			}
			if i < 0 || i >= len(runes) {
				return value.String{Value: ""}, nil
			}
			return value.String{Value: string(runes[i])}, nil
		})

	case "charCodeAt":
		return mk(func(args []value.Value) (value.Value, error) {
			i, err := intArg(args, 0, "charCodeAt")
			if err != nil {
				return nil, err
			}
			if i < 0 || i >= len(runes) {
				return nil, fmt.Errorf("charCodeAt index out of range")
			}
			return value.Int(int64(runes[i])), nil
		})

	case "substring":
		return mk(func(args []value.Value) (value.Value, error) {
			start, end := sliceBounds(args, len(runes))
			if start > end {
				start, end = end, start
			}
			return value.String{Value: string(runes[start:end])}, nil
		})

	case "slice":
		return mk(func(args []value.Value) (value.Value, error) {
			start, end := sliceBounds(args, len(runes))
			return value.String{Value: string(runes[start:end])}, nil
		})

	case "indexOf":
		return mk(func(args []value.Value) (value.Value, error) {
			sub, err := strArg(args, 0, "indexOf")
			if err != nil {
				return nil, err
			}
			return value.Int(int64(runeIndex(s.Value, sub, false))), nil
		})

	case "lastIndexOf":
		return mk(func(args []value.Value) (value.Value, error) {
			sub, err := strArg(args, 0, "lastIndexOf")
			if err != nil {
				return nil, err
			}
			return value.Int(int64(runeIndex(s.Value, sub, true))), nil
		})

	case "includes":
		return mk(func(args []value.Value) (value.Value, error) {
			sub, err := strArg(args, 0, "includes")
			if err != nil {
				return nil, err
			}
			return value.Bool{Value: strings.Contains(s.Value, sub)}, nil
		})

	case "startsWith":
		return mk(func(args []value.Value) (value.Value, error) {
			sub, err := strArg(args, 0, "startsWith")
			if err != nil {
				return nil, err
			}
			return value.Bool{Value: strings.HasPrefix(s.Value, sub)}, nil
		})

	case "endsWith":
		return mk(func(args []value.Value) (value.Value, error) {
			sub, err := strArg(args, 0, "endsWith")
			if err != nil {
				return nil, err
			}
			return value.Bool{Value: strings.HasSuffix(s.Value, sub)}, nil
		})

	case "split":
		return mk(func(args []value.Value) (value.Value, error) {
			sep, err := strArg(args, 0, "split")
			if err != nil {
				return nil, err
			}
			parts := strings.Split(s.Value, sep)
			out := make([]value.Value, len(parts))
			for i, p := range parts {
				out[i] = value.String{Value: p}
			}
			return value.Array{Elements: out, Variadic: true}, nil
		})

	case "trim":
		return mk(func(args []value.Value) (value.Value, error) {
			return value.String{Value: strings.TrimSpace(s.Value)}, nil
		})
	case "trimStart":
		return mk(func(args []value.Value) (value.Value, error) {
			return value.String{Value: strings.TrimLeft(s.Value, " \t\n\r")}, nil
		})
	case "trimEnd":
		return mk(func(args []value.Value) (value.Value, error) {
			return value.String{Value: strings.TrimRight(s.Value, " \t\n\r")}, nil
		})
	case "toUpperCase":
		return mk(func(args []value.Value) (value.Value, error) {
			return value.String{Value: strings.ToUpper(s.Value)}, nil
		})
	case "toLowerCase":
		return mk(func(args []value.Value) (value.Value, error) {
			return value.String{Value: strings.ToLower(s.Value)}, nil
		})

	case "replace":
		return mk(func(args []value.Value) (value.Value, error) {
			old, err := strArg(args, 0, "replace")
			if err != nil {
				return nil, err
			}
			repl, err := strArg(args, 1, "replace")
			if err != nil {
				return nil, err
			}
			return value.String{Value: strings.Replace(s.Value, old, repl, 1)}, nil
		})

	case "replaceAll":
		return mk(func(args []value.Value) (value.Value, error) {
			old, err := strArg(args, 0, "replaceAll")
			if err != nil {
				return nil, err
			}
			repl, err := strArg(args, 1, "replaceAll")
			if err != nil {
				return nil, err
			}
			return value.String{Value: strings.ReplaceAll(s.Value, old, repl)}, nil
		})

	case "padStart":
		return mk(func(args []value.Value) (value.Value, error) { return padString(s.Value, args, true) })
	case "padEnd":
		return mk(func(args []value.Value) (value.Value, error) { return padString(s.Value, args, false) })

	case "repeat":
		return mk(func(args []value.Value) (value.Value, error) {
			n, err := intArg(args, 0, "repeat")
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("repeat count must be non-negative")
			}
			return value.String{Value: strings.Repeat(s.Value, n)}, nil
		})

	case "concat":
		return mk(func(args []value.Value) (value.Value, error) {
			var b strings.Builder
			b.WriteString(s.Value)
			for _, a := range args {
				str, ok := a.(value.String)
				if !ok {
					return nil, fmt.Errorf("concat's arguments must be strings")
				}
				b.WriteString(str.Value)
			}
			return value.String{Value: b.String()}, nil
		})

	default:
		return nil, nil, false
	}
}

func intArg(args []value.Value, i int, who string) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%s requires an argument", who)
	}
	n, ok := args[i].(value.Number)
	if !ok {
		return 0, fmt.Errorf("%s expects a numeric argument", who)
	}
	return int(n.AsFloat()), nil
}

func strArg(args []value.Value, i int, who string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s requires a string argument", who)
	}
	s, ok := args[i].(value.String)
	if !ok {
		return "", fmt.Errorf("%s expects a string argument", who)
	}
	return s.Value, nil
}

func runeIndex(s, sub string, last bool) int {
	sr, subr := []rune(s), []rune(sub)
	if last {
		for i := len(sr) - len(subr); i >= 0; i-- {
			if string(sr[i:i+len(subr)]) == sub {
				return i
			}
		}
		return -1
	}
	for i := 0; i+len(subr) <= len(sr); i++ {
		if string(sr[i:i+len(subr)]) == sub {
			return i
		}
	}
	return -1
}

func padString(s string, args []value.Value, start bool) (value.Value, error) {
	targetLen, err := intArg(args, 0, "pad")
	if err != nil {
		return nil, err
	}
	pad := " "
	if len(args) > 1 {
		if p, ok := args[1].(value.String); ok {
			pad = p.Value
		}
	}
	runes := []rune(s)
	if len(runes) >= targetLen || pad == "" {
		return value.String{Value: s}, nil
	}
	padRunes := []rune(pad)
	need := targetLen - len(runes)
	out := make([]rune, 0, need)
	for len(out) < need {
		out = append(out, padRunes...)
	}
	out = out[:need]
	if start {
		return value.String{Value: string(out) + s}, nil
	}
	return value.String{Value: s + string(out)}, nil
}
