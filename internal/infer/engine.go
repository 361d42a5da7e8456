package infer

import (
	"log"

	"github.com/velalang/vela/internal/config"
	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/registry"
	"github.com/velalang/vela/internal/types"
)

// Engine is the fixpoint driver. It alternates call-site collection with
// signature re-inference until the observed call-site table stops changing
// or the iteration budget runs out, then emits the fully typed program.
// Termination comes from the budget, never from convergence alone; on a
// pathological call graph the result is less precise, not wrong.
type Engine struct {
	prog *ir.Program
	reg  *registry.Registry
	opts config.Options
	ctx  *Context
}

// New builds an engine over a lowered program and a sealed registry. The
// builtin catalog may be nil, in which case builtin calls type as Any.
func New(prog *ir.Program, reg *registry.Registry, builtins BuiltinCatalog, opts config.Options) *Engine {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = config.DefaultMaxIterations
	}
	return &Engine{
		prog: prog,
		reg:  reg,
		opts: opts,
		ctx:  NewContext(prog, reg, builtins),
	}
}

// FunctionInfo pairs one function body with its inferred signature and
// local-variable types.
type FunctionInfo struct {
	Fn     *ir.Function
	Sig    *Signature
	Locals map[string]types.Type
}

// TypedProgram is the engine's product: per-function signatures and local
// type maps, entry-block global types, the stabilized call-site table, and
// the expression-level type query the bytecode compiler uses to pick
// specialized instructions.
type TypedProgram struct {
	Program   *ir.Program
	Functions []*FunctionInfo
	Globals   map[string]types.Type
	Sites     CallSiteTable
	ctx       *Context
}

// ExprType answers the type of any sub-expression under an environment.
// Pass a fresh environment for entry-block expressions.
func (tp *TypedProgram) ExprType(e ir.Expression, env *Env) types.Type {
	return tp.ctx.TypeOf(e, env)
}

// Signatures returns the per-name merged signatures (overload returns
// joined), as consumed when typing calls.
func (tp *TypedProgram) Signatures() map[string]*Signature {
	return tp.ctx.Sigs
}

// Run executes the bounded fixpoint and the final re-inference pass.
func (e *Engine) Run() *TypedProgram {
	e.seedSignatures()

	prev := NewCallSiteTable()
	for iter := 1; iter <= e.opts.MaxIterations; iter++ {
		table := e.collectPass(prev)
		if e.opts.Trace {
			log.Printf("infer: pass %d observed %d call targets", iter, len(table))
		}
		if table.Equal(prev) {
			break
		}
		e.refreshSignatures(table)
		prev = table
	}

	tp := &TypedProgram{
		Program: e.prog,
		Globals: make(map[string]types.Type),
		Sites:   prev,
		ctx:     e.ctx,
	}

	// Final pass: fully re-infer every function against the stabilized
	// table, registering each signature as soon as it is known so that
	// functions later in declaration order observe the updated return
	// types of earlier ones.
	registered := make(map[string]bool)
	for _, f := range e.prog.Functions {
		params := e.ctx.specializeParams(f, prev)
		ret, locals := e.ctx.inferFunction(f, params, true)
		sig := &Signature{Name: f.Name, Params: paramNames(f), Types: params, Return: ret}
		if registered[f.Name] {
			// Overloads of one name share the lookup entry; the visible
			// return type is the join of every overload's return.
			merged := *e.ctx.Sigs[f.Name]
			merged.Return = types.Join(merged.Return, ret)
			e.ctx.Sigs[f.Name] = &merged
		} else {
			e.ctx.Sigs[f.Name] = sig
			registered[f.Name] = true
		}
		tp.Functions = append(tp.Functions, &FunctionInfo{Fn: f, Sig: sig, Locals: locals})
	}

	// Top-level bindings reuse the local-type machinery over the entry
	// block.
	w := &walker{ctx: e.ctx, locals: tp.Globals}
	w.block(e.prog.Entry, NewEnv())
	e.ctx.Globals = tp.Globals

	return tp
}

// seedSignatures installs the pre-inference signatures: annotated types
// where given, Any elsewhere.
func (e *Engine) seedSignatures() {
	for _, f := range e.prog.Functions {
		if _, ok := e.ctx.Sigs[f.Name]; ok {
			continue
		}
		sig := &Signature{Name: f.Name, Params: paramNames(f)}
		for _, p := range f.Params {
			t := p.Ann
			if t == nil {
				t = types.Prim(types.Any)
			}
			sig.Types = append(sig.Types, t)
		}
		if f.ReturnAnn != nil {
			sig.Return = f.ReturnAnn
		}
		e.ctx.Sigs[f.Name] = sig
	}
}

// collectPass walks the entry block and every function body once,
// recording call-site observations. Function bodies are seeded with the
// parameter types specialized from the previous pass's table, so each pass
// is a pure function of (program, previous table).
func (e *Engine) collectPass(prev CallSiteTable) CallSiteTable {
	table := NewCallSiteTable()

	w := &walker{ctx: e.ctx, sites: table}
	w.block(e.prog.Entry, NewEnv())

	for _, f := range e.prog.Functions {
		params := e.ctx.specializeParams(f, prev)
		env := NewEnv()
		for i, p := range f.Params {
			env.Define(p.Name, params[i])
		}
		fw := &walker{ctx: e.ctx, sites: table}
		fw.block(f.Body, env)
	}
	return table
}

// refreshSignatures recomputes every function's signature from a new
// table, so the next collection pass types calls with the freshest
// knowledge. Overload returns are joined per name.
func (e *Engine) refreshSignatures(table CallSiteTable) {
	next := make(map[string]*Signature, len(e.ctx.Sigs))
	for _, f := range e.prog.Functions {
		params := e.ctx.specializeParams(f, table)
		ret, _ := e.ctx.inferFunction(f, params, false)
		if existing, ok := next[f.Name]; ok {
			merged := *existing
			merged.Return = types.Join(merged.Return, ret)
			next[f.Name] = &merged
			continue
		}
		next[f.Name] = &Signature{Name: f.Name, Params: paramNames(f), Types: params, Return: ret}
	}
	e.ctx.Sigs = next
}

func paramNames(f *ir.Function) []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}
