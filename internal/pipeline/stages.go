package pipeline

import (
	"fmt"

	"github.com/velalang/vela/internal/bundle"
	"github.com/velalang/vela/internal/dispatch"
	"github.com/velalang/vela/internal/infer"
	"github.com/velalang/vela/internal/registry"
	"github.com/velalang/vela/internal/types"
)

// DeclareProcessor seals the type registry: the built-in numeric hierarchy
// first, then the program's abstract and struct declarations.
type DeclareProcessor struct{}

func (dp *DeclareProcessor) Process(ctx *Context) *Context {
	b := registry.NewBuilder()
	declareBuiltinHierarchy(b)
	for _, a := range ctx.Program.Abstracts {
		b.DeclareAbstract(registry.AbstractInfo{Name: a.Name, Parent: a.Parent})
	}
	for _, s := range ctx.Program.Structs {
		info := registry.StructInfo{
			Name:       s.Name,
			Mutable:    s.Mutable,
			Parent:     s.Parent,
			TypeParams: s.TypeParams,
		}
		for _, f := range s.Fields {
			info.Fields = append(info.Fields, registry.Field{Name: f.Name, Type: f.Type})
		}
		b.DeclareStruct(info)
	}
	ctx.Registry = b.Seal()
	return ctx
}

// declareBuiltinHierarchy hangs the primitive leaves under the standard
// abstract families, so abstract-typed method parameters match primitive
// arguments.
func declareBuiltinHierarchy(b *registry.Builder) {
	b.DeclareAbstract(registry.AbstractInfo{Name: "Number"})
	b.DeclareAbstract(registry.AbstractInfo{Name: "Integer", Parent: "Number"})
	b.DeclareAbstract(registry.AbstractInfo{Name: "AbstractFloat", Parent: "Number"})

	integers := []types.Prim{
		types.Int8, types.Int16, types.Int32, types.Int64,
		types.UInt8, types.UInt16, types.UInt32, types.UInt64,
		types.BigInt,
	}
	for _, p := range integers {
		b.DeclareLeafParent(p.String(), "Integer")
	}
	floats := []types.Prim{types.Float32, types.Float64, types.BigFloat}
	for _, p := range floats {
		b.DeclareLeafParent(p.String(), "AbstractFloat")
	}
}

// InferProcessor runs the fixpoint engine.
type InferProcessor struct{}

func (ip *InferProcessor) Process(ctx *Context) *Context {
	if ctx.Registry == nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("infer: registry stage did not run"))
		return ctx
	}
	ctx.Typed = infer.New(ctx.Program, ctx.Registry, Builtins(), ctx.Options).Run()
	return ctx
}

// MethodsProcessor populates the method table from the typed signatures, in
// declaration order so tie-breaking stays deterministic.
type MethodsProcessor struct{}

func (mp *MethodsProcessor) Process(ctx *Context) *Context {
	if ctx.Typed == nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("methods: inference stage did not run"))
		return ctx
	}
	table := dispatch.NewTable(ctx.Registry)
	for _, fi := range ctx.Typed.Functions {
		table.Register(fi.Fn.Name, fi.Sig.Types, fi.Sig.Return, fi.Fn.TypeParams, fi.Fn)
	}
	ctx.Methods = table
	if !ctx.Options.NoDispatchCache {
		ctx.Cache = dispatch.NewCache()
	}
	return ctx
}

// BundleProcessor emits the typed-program artifact.
type BundleProcessor struct{}

func (bp *BundleProcessor) Process(ctx *Context) *Context {
	if ctx.Typed == nil || ctx.Methods == nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("bundle: earlier stages did not run"))
		return ctx
	}
	ctx.Bundle = bundle.New(ctx.Typed, ctx.Methods, ctx.SourceFile)
	return ctx
}
