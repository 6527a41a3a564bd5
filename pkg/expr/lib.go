package expr

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/csvr/pkg/value"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),

		// `string_contains` mirrors the native builtin: any non-string
		// argument yields false.
		// Example: string_contains(row.Name, "Ada").
		cel.Function("string_contains",
			cel.Overload("string_contains_dyn_dyn", []*cel.Type{cel.DynType, cel.DynType}, cel.BoolType,
				cel.BinaryBinding(func(haystack, needle ref.Val) ref.Val {
					h, ok := haystack.(types.String)
					if !ok {
						return types.False
					}

					n, ok := needle.(types.String)
					if !ok {
						return types.False
					}

					return types.Bool(strings.Contains(string(h), string(n)))
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// RowValue converts a record [Context] to a CEL map value.
//
//nolint:ireturn // Following CEL's function signature.
func RowValue(ctx Context) ref.Val {
	celMap := make(map[ref.Val]ref.Val, len(ctx))
	for key, val := range ctx {
		celMap[types.String(key)] = ConvertToCELValue(val)
	}

	return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)
}

// ConvertToCELValue converts a typed cell value to a CEL value.
// Invalid values become null.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(v value.Value) ref.Val {
	switch v.Kind() {
	case value.KindFloat:
		f, _ := v.AsFloat()
		return types.Double(f)

	case value.KindString:
		s, _ := v.AsString()
		return types.String(s)

	case value.KindBool:
		b, _ := v.AsBool()
		return types.Bool(b)

	case value.KindInvalid:
	}

	return types.NullValue
}
