package pipeline

import (
	"github.com/velalang/vela/internal/config"
	"github.com/velalang/vela/internal/infer"
	"github.com/velalang/vela/internal/types"
)

// catalog is the static builtin table the inference engine consults.
// Builtins the table does not know type as Any on the engine side.
type catalog struct{}

// Builtins returns the engine's builtin catalog.
func Builtins() infer.BuiltinCatalog {
	return catalog{}
}

func (catalog) ReturnType(name string, args []types.Type) (types.Type, bool) {
	switch name {
	case config.PrintFuncName:
		return types.Prim(types.Nothing), true

	case config.LengthFuncName:
		return types.Prim(types.DefaultInt), true

	case config.TypeOfFuncName:
		if len(args) == 1 {
			return types.TypeOf{T: args[0]}, true
		}
		return types.Prim(types.Any), true

	case config.PushFuncName:
		// push(arr, v...) keeps the container shape; the element type is
		// joined with the pushed values.
		if len(args) >= 1 {
			if arr, ok := args[0].(types.Array); ok {
				elem := arr.Elem
				for _, v := range args[1:] {
					elem = types.Join(elem, v)
				}
				return types.Array{Elem: elem, Rank: arr.Rank}, true
			}
		}
		return types.Prim(types.Any), true

	case config.ConvertFuncName:
		// convert(T, v) yields the described type when the first argument
		// is a type value.
		if len(args) == 2 {
			if tv, ok := args[0].(types.TypeOf); ok {
				return tv.T, true
			}
		}
		return types.Prim(types.Any), true
	}
	return nil, false
}
