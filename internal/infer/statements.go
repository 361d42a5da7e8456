package infer

import (
	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/types"
)

// walker is one traversal over statements. Depending on which fields are
// set it records call sites, local-variable types, and return types; the
// environment discipline (fresh scopes for bodies, branches, loops and let
// blocks) is identical in every mode.
type walker struct {
	ctx     *Context
	sites   CallSiteTable         // collect call sites when non-nil
	locals  map[string]types.Type // record local variable types when non-nil
	returns []types.Type
}

// block walks a statement sequence and returns the value type of its
// trailing statement, which is what the block evaluates to when control
// falls off its end. An empty block has the nothing-type.
func (w *walker) block(b *ir.Block, env *Env) types.Type {
	var value types.Type = types.Prim(types.Nothing)
	if b == nil {
		return value
	}
	for _, s := range b.Stmts {
		value = w.stmt(s, env)
	}
	return value
}

// stmt walks one statement and returns its value type.
func (w *walker) stmt(s ir.Statement, env *Env) types.Type {
	switch n := s.(type) {
	case *ir.ExprStatement:
		w.scanExpr(n.E, env)
		return w.ctx.TypeOf(n.E, env)

	case *ir.AssignStatement:
		w.scanExpr(n.Value, env)
		t := w.ctx.TypeOf(n.Value, env)
		env.Assign(n.Name, t)
		w.record(n.Name, t)
		return t

	case *ir.ReturnStatement:
		var rt types.Type = types.Prim(types.Nothing)
		if n.Value != nil {
			w.scanExpr(n.Value, env)
			rt = w.ctx.TypeOf(n.Value, env)
		}
		w.returns = append(w.returns, rt)
		return types.Prim(types.Nothing)

	case *ir.IfStatement:
		w.scanExpr(n.Cond, env)
		// Each branch gets its own scope; bindings made inside it are not
		// merged back. Conditional narrowing is intentionally absent.
		thenVal := w.block(n.Then, env.Enclosed())
		if n.Else == nil {
			return types.NewUnion(thenVal, types.Prim(types.Nothing))
		}
		elseVal := w.block(n.Else, env.Enclosed())
		return types.Join(thenVal, elseVal)

	case *ir.WhileStatement:
		w.scanExpr(n.Cond, env)
		w.block(n.Body, env.Enclosed())
		return types.Prim(types.Nothing)

	case *ir.ForRangeStatement:
		w.scanExpr(n.From, env)
		w.scanExpr(n.To, env)
		from := w.ctx.TypeOf(n.From, env)
		to := w.ctx.TypeOf(n.To, env)
		var loopVar types.Type = types.Prim(types.DefaultInt)
		if types.IsInteger(from) && types.IsInteger(to) {
			loopVar = types.Promote(from, to)
		}
		body := env.Enclosed()
		body.Define(n.Var, loopVar)
		w.record(n.Var, loopVar)
		w.block(n.Body, body)
		return types.Prim(types.Nothing)

	case *ir.ForEachStatement:
		w.scanExpr(n.Iterable, env)
		loopVar := types.ElemType(w.ctx.TypeOf(n.Iterable, env))
		body := env.Enclosed()
		body.Define(n.Var, loopVar)
		w.record(n.Var, loopVar)
		w.block(n.Body, body)
		return types.Prim(types.Nothing)

	case *ir.LetStatement:
		scope := env.Enclosed()
		for _, b := range n.Bindings {
			w.scanExpr(b.Value, scope)
			t := w.ctx.TypeOf(b.Value, scope)
			scope.Define(b.Name, t)
			w.record(b.Name, t)
		}
		return w.block(n.Body, scope)
	}
	return types.Prim(types.Nothing)
}

// record notes a local variable's type, joining with earlier observations
// so a variable rebound along different paths keeps a safe common type.
func (w *walker) record(name string, t types.Type) {
	if w.locals == nil {
		return
	}
	if prev, ok := w.locals[name]; ok {
		w.locals[name] = types.Join(prev, t)
		return
	}
	w.locals[name] = t
}
