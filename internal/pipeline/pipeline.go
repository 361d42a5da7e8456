// Package pipeline stages the compilation of a lowered program: declaring
// the type hierarchy, running the inference fixpoint, populating the method
// table, and emitting the typed-program bundle. Stages run in order and
// accumulate errors instead of aborting, so a caller sees every diagnostic
// from one run.
package pipeline

import (
	"github.com/velalang/vela/internal/bundle"
	"github.com/velalang/vela/internal/config"
	"github.com/velalang/vela/internal/dispatch"
	"github.com/velalang/vela/internal/infer"
	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/registry"
)

// Context carries the artifacts of one compilation through the stages.
type Context struct {
	Program    *ir.Program
	Options    config.Options
	SourceFile string

	Registry *registry.Registry
	Typed    *infer.TypedProgram
	Methods  *dispatch.Table
	Cache    *dispatch.Cache
	Bundle   *bundle.Bundle

	Errors []error
}

// NewContext builds the initial context for one program.
func NewContext(prog *ir.Program, opts config.Options, sourceFile string) *Context {
	return &Context{Program: prog, Options: opts, SourceFile: sourceFile}
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Default is the full staging: Declare, Infer, Methods, Bundle.
func Default() *Pipeline {
	return New(
		&DeclareProcessor{},
		&InferProcessor{},
		&MethodsProcessor{},
		&BundleProcessor{},
	)
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors so later stages still contribute their
		// diagnostics.
	}
	return ctx
}
