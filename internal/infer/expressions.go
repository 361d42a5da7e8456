package infer

import (
	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/registry"
	"github.com/velalang/vela/internal/types"
)

// BuiltinCatalog is the boundary to the builtin-function collaborator: a
// static name→behavior table. Given a builtin's name and argument types it
// reports the call's result type. Unknown names return ok=false and the
// engine degrades to Any.
type BuiltinCatalog interface {
	ReturnType(name string, args []types.Type) (types.Type, bool)
}

// Signature is one function's inferred (or annotated) signature. Parameter
// types default to Any until call-site observations specialize them.
type Signature struct {
	Name   string
	Params []string
	Types  []types.Type
	Return types.Type
}

// Context carries the shared read state of one inference pass: the sealed
// registry, the current best-known signatures by function name, the builtin
// catalog, and the entry-block globals inferred so far.
type Context struct {
	Reg      *registry.Registry
	Sigs     map[string]*Signature
	Builtins BuiltinCatalog
	Globals  map[string]types.Type
	userFns  map[string]bool
}

// NewContext builds an inference context for one program.
func NewContext(prog *ir.Program, reg *registry.Registry, builtins BuiltinCatalog) *Context {
	return &Context{
		Reg:      reg,
		Sigs:     make(map[string]*Signature),
		Builtins: builtins,
		Globals:  make(map[string]types.Type),
		userFns:  prog.FunctionNames(),
	}
}

// TypeOf computes the static type of an expression under an environment.
// This is also the expression-level query the bytecode compiler consumes.
// It is total: anything unresolved types as Any.
func (c *Context) TypeOf(e ir.Expression, env *Env) types.Type {
	switch n := e.(type) {
	case *ir.IntLit:
		return types.Prim(types.DefaultInt)
	case *ir.BigIntLit:
		return types.Prim(types.BigInt)
	case *ir.FloatLit:
		return types.Prim(types.DefaultFloat)
	case *ir.BoolLit:
		return types.Prim(types.Bool)
	case *ir.StringLit:
		return types.Prim(types.String)
	case *ir.CharLit:
		return types.Prim(types.Char)
	case *ir.NothingLit:
		return types.Prim(types.Nothing)
	case *ir.MissingLit:
		return types.Prim(types.Missing)
	case *ir.TypeLit:
		return types.TypeOf{T: n.T}

	case *ir.Ident:
		if t, ok := env.Lookup(n.Name); ok {
			return t
		}
		if t, ok := c.Globals[n.Name]; ok {
			return t
		}
		return types.Prim(types.Any)

	case *ir.ArrayLit:
		var elem types.Type
		for _, el := range n.Elems {
			elem = types.Join(elem, c.TypeOf(el, env))
		}
		if elem == nil {
			elem = types.Prim(types.Any)
		}
		return types.Array{Elem: elem, Rank: 1}

	case *ir.TupleLit:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = c.TypeOf(el, env)
		}
		return types.Tuple{Elems: elems}

	case *ir.RangeLit:
		from := c.TypeOf(n.From, env)
		to := c.TypeOf(n.To, env)
		if types.IsInteger(from) && types.IsInteger(to) {
			return types.Range{Elem: types.Promote(from, to)}
		}
		return types.Range{Elem: types.Join(from, to)}

	case *ir.FieldAccess:
		recv := c.TypeOf(n.X, env)
		if s, ok := recv.(types.Struct); ok {
			return c.Reg.FieldType(s.Name, n.Name)
		}
		return types.Prim(types.Any)

	case *ir.IndexExpr:
		return types.ElemType(c.TypeOf(n.X, env))

	case *ir.UnaryExpr:
		operand := c.TypeOf(n.X, env)
		switch n.Op {
		case "!":
			return types.Prim(types.Bool)
		case "-", "+":
			if types.IsNumeric(operand) {
				return operand
			}
			if _, ok := operand.(types.Struct); ok {
				return operand
			}
		}
		return types.Prim(types.Any)

	case *ir.BinaryExpr:
		left := c.TypeOf(n.Left, env)
		right := c.TypeOf(n.Right, env)
		return types.BinaryResult(n.Op, left, right)

	case *ir.IfExpr:
		return types.Join(c.TypeOf(n.Then, env), c.TypeOf(n.Else, env))

	case *ir.CallExpr:
		return c.callResult(n, env)

	case *ir.BroadcastExpr:
		return c.broadcastResult(n, env)
	}
	return types.Prim(types.Any)
}

// callResult types a call: constructor calls yield the (possibly
// instantiated) struct type, user calls yield the current best-known return
// type, builtin calls consult the catalog, and everything else is Any.
func (c *Context) callResult(call *ir.CallExpr, env *Env) types.Type {
	if info, ok := c.Reg.Struct(call.Name); ok {
		return c.constructorResult(call, info, env)
	}
	if c.userFns[call.Name] {
		if sig, ok := c.Sigs[call.Name]; ok && sig.Return != nil {
			return sig.Return
		}
		return types.Prim(types.Any)
	}
	if c.Builtins != nil {
		args := make([]types.Type, 0, len(call.Args)+len(call.Kwargs))
		for _, a := range call.Args {
			args = append(args, c.TypeOf(a, env))
		}
		for _, kw := range call.Kwargs {
			args = append(args, c.TypeOf(kw.Value, env))
		}
		if ret, ok := c.Builtins.ReturnType(call.Name, args); ok {
			return ret
		}
	}
	return types.Prim(types.Any)
}

// constructorResult types a struct constructor call. For a parametric
// family the type parameters are bound from the argument types of the
// fields declared with them, producing the instantiated name. Fields the
// declaration left untyped are lazily resolved from the first constructor
// literal that pins them down.
func (c *Context) constructorResult(call *ir.CallExpr, info *registry.StructInfo, env *Env) types.Type {
	argTypes := make([]types.Type, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = c.TypeOf(a, env)
	}
	for i, f := range info.Fields {
		if i >= len(argTypes) {
			break
		}
		if f.Type == nil && types.IsConcrete(argTypes[i]) {
			c.Reg.ResolveFieldType(info.Name, f.Name, argTypes[i])
		}
	}
	if len(info.TypeParams) == 0 {
		return types.Struct{Name: info.Name}
	}
	bound := make([]string, len(info.TypeParams))
	for pi, param := range info.TypeParams {
		var b types.Type
		for fi, f := range info.Fields {
			if fi >= len(argTypes) {
				break
			}
			if tv, ok := f.Type.(types.TypeVar); ok && tv.Name == param {
				b = types.Join(b, argTypes[fi])
			}
		}
		if b == nil || !types.IsConcrete(b) {
			// An unbound parameter keeps the family generic.
			return types.Struct{Name: info.Name}
		}
		bound[pi] = b.String()
	}
	return types.Struct{Name: types.Instantiate(info.Name, bound)}
}

// broadcastResult types a vectorized call: the target runs once per element
// and the results are collected into an array. The element type is the
// target's return type over the per-element argument types; the rank is
// taken from the first container argument when it is known.
func (c *Context) broadcastResult(bc *ir.BroadcastExpr, env *Env) types.Type {
	rank := 0
	for _, a := range bc.Args {
		if arr, ok := c.TypeOf(a, env).(types.Array); ok {
			rank = arr.Rank
			break
		}
	}
	var ret types.Type = types.Prim(types.Any)
	if c.userFns[bc.Name] {
		if sig, ok := c.Sigs[bc.Name]; ok && sig.Return != nil {
			ret = sig.Return
		}
	} else if c.Builtins != nil {
		elems := make([]types.Type, len(bc.Args))
		for i, a := range bc.Args {
			elems[i] = broadcastElem(c.TypeOf(a, env))
		}
		if r, ok := c.Builtins.ReturnType(bc.Name, elems); ok {
			ret = r
		}
	}
	return types.Array{Elem: ret, Rank: rank}
}

// broadcastElem is the per-element view of a broadcast argument: containers
// contribute their element type, scalars pass through unchanged.
func broadcastElem(t types.Type) types.Type {
	switch t.(type) {
	case types.Array, types.Range:
		return types.ElemType(t)
	default:
		return t
	}
}
