package infer

import (
	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/types"
)

// specializeParams builds a function's current best-known parameter types.
// User annotations always win; unannotated parameters specialize from the
// call-site observations, or stay Any when the observations disagree in a
// way promotion cannot reconcile.
func (c *Context) specializeParams(f *ir.Function, table CallSiteTable) []types.Type {
	out := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		if p.Ann != nil {
			out[i] = p.Ann
			continue
		}
		out[i] = specializeParam(table[f.Name], i, len(f.Params))
	}
	return out
}

// specializeParam applies the observation rules to one parameter position:
// no observations leave Any; a single distinct concrete type is adopted
// exactly; several all-numeric types promote pairwise; several all-array
// types specialize to an array of the promoted element type with the first
// observation's rank; anything else stays Any.
func specializeParam(vecs []ArgVector, pos, arity int) types.Type {
	var distinct []types.Type
	seen := make(map[string]bool)
	for _, vec := range vecs {
		if len(vec) != arity || pos >= len(vec) {
			continue
		}
		t := vec[pos]
		if s := t.String(); !seen[s] {
			seen[s] = true
			distinct = append(distinct, t)
		}
	}
	switch {
	case len(distinct) == 0:
		return types.Prim(types.Any)
	case len(distinct) == 1:
		if types.IsConcrete(distinct[0]) {
			return distinct[0]
		}
		return types.Prim(types.Any)
	}
	if allNumeric(distinct) {
		promoted := distinct[0]
		for _, t := range distinct[1:] {
			promoted = types.Promote(promoted, t)
		}
		return promoted
	}
	if elem, rank, ok := arrayObservations(distinct); ok {
		return types.Array{Elem: elem, Rank: rank}
	}
	return types.Prim(types.Any)
}

func allNumeric(ts []types.Type) bool {
	for _, t := range ts {
		if !types.IsNumeric(t) {
			return false
		}
	}
	return true
}

// arrayObservations reconciles several observed array types into one: the
// element type is the promotion of the observed element types (numeric
// elements only), the rank comes from the first observation.
func arrayObservations(ts []types.Type) (types.Type, int, bool) {
	var elem types.Type
	rank := 0
	for i, t := range ts {
		arr, ok := t.(types.Array)
		if !ok || !types.IsNumeric(arr.Elem) {
			return nil, 0, false
		}
		if i == 0 {
			elem = arr.Elem
			rank = arr.Rank
			continue
		}
		elem = types.Promote(elem, arr.Elem)
	}
	return elem, rank, true
}

// inferFunction runs one pass over a function body with the given
// parameter types, returning the inferred return type and, when wanted,
// the local-variable type map. The return type is the user annotation if
// present; otherwise it is built from every return expression (an implicit
// bare return counts as the nothing-type) plus, when control can fall off
// the end, the trailing statement's value type. One distinct type is used
// directly; several are wrapped as a Union; none is the nothing-type.
func (c *Context) inferFunction(f *ir.Function, paramTypes []types.Type, wantLocals bool) (types.Type, map[string]types.Type) {
	env := NewEnv()
	for i, p := range f.Params {
		if i < len(paramTypes) {
			env.Define(p.Name, paramTypes[i])
		} else {
			env.Define(p.Name, types.Prim(types.Any))
		}
	}
	var locals map[string]types.Type
	if wantLocals {
		locals = make(map[string]types.Type)
	}
	w := &walker{ctx: c, locals: locals}
	tail := w.block(f.Body, env)

	if f.ReturnAnn != nil {
		return f.ReturnAnn, locals
	}
	collected := append([]types.Type(nil), w.returns...)
	if fallsOff(f.Body) {
		collected = append(collected, tail)
	}
	return types.NewUnion(collected...), locals
}

// fallsOff reports whether control can reach the end of a block. Only an
// explicit trailing return stops it; branching statements are treated
// conservatively as falling through.
func fallsOff(b *ir.Block) bool {
	if b == nil || len(b.Stmts) == 0 {
		return true
	}
	_, isReturn := b.Stmts[len(b.Stmts)-1].(*ir.ReturnStatement)
	return !isReturn
}
