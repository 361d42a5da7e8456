package infer

import (
	"sort"
	"strings"

	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/types"
)

// ArgVector is the ordered argument types observed at one call site,
// positional arguments first, then keyword arguments.
type ArgVector []types.Type

// Equal compares two vectors by value.
func (v ArgVector) Equal(o ArgVector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if !types.Equal(v[i], o[i]) {
			return false
		}
	}
	return true
}

// CallSiteTable maps a user function's name to the argument-type vectors
// observed at its call sites, one entry per syntactic occurrence, in
// traversal order. Tables grow monotonically within one collection pass and
// are compared by value across passes to detect the fixpoint.
type CallSiteTable map[string][]ArgVector

func NewCallSiteTable() CallSiteTable {
	return make(CallSiteTable)
}

// Add appends one observation.
func (t CallSiteTable) Add(name string, vec ArgVector) {
	t[name] = append(t[name], vec)
}

// Equal compares two tables by value, order-sensitively per function.
func (t CallSiteTable) Equal(o CallSiteTable) bool {
	if len(t) != len(o) {
		return false
	}
	for name, vecs := range t {
		others, ok := o[name]
		if !ok || len(others) != len(vecs) {
			return false
		}
		for i := range vecs {
			if !vecs[i].Equal(others[i]) {
				return false
			}
		}
	}
	return true
}

// String renders the table deterministically, for tracing.
func (t CallSiteTable) String() string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString(":")
		for _, vec := range t[name] {
			parts := make([]string, len(vec))
			for i, a := range vec {
				parts[i] = a.String()
			}
			sb.WriteString(" (" + strings.Join(parts, ",") + ")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// scanExpr descends an expression recording call-site observations for
// calls to user-defined functions. Traversal order is source order, so the
// table is deterministic across passes.
func (w *walker) scanExpr(e ir.Expression, env *Env) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ir.ArrayLit:
		for _, el := range n.Elems {
			w.scanExpr(el, env)
		}
	case *ir.TupleLit:
		for _, el := range n.Elems {
			w.scanExpr(el, env)
		}
	case *ir.RangeLit:
		w.scanExpr(n.From, env)
		w.scanExpr(n.To, env)
	case *ir.FieldAccess:
		w.scanExpr(n.X, env)
	case *ir.IndexExpr:
		w.scanExpr(n.X, env)
		w.scanExpr(n.Index, env)
	case *ir.UnaryExpr:
		w.scanExpr(n.X, env)
	case *ir.BinaryExpr:
		w.scanExpr(n.Left, env)
		w.scanExpr(n.Right, env)
	case *ir.IfExpr:
		w.scanExpr(n.Cond, env)
		w.scanExpr(n.Then, env)
		w.scanExpr(n.Else, env)
	case *ir.CallExpr:
		for _, a := range n.Args {
			w.scanExpr(a, env)
		}
		for _, kw := range n.Kwargs {
			w.scanExpr(kw.Value, env)
		}
		if w.sites != nil && w.ctx.userFns[n.Name] {
			vec := make(ArgVector, 0, len(n.Args)+len(n.Kwargs))
			for _, a := range n.Args {
				vec = append(vec, w.ctx.TypeOf(a, env))
			}
			for _, kw := range n.Kwargs {
				vec = append(vec, w.ctx.TypeOf(kw.Value, env))
			}
			if informative(vec) {
				w.sites.Add(n.Name, vec)
			}
		}
	case *ir.BroadcastExpr:
		for _, a := range n.Args {
			w.scanExpr(a, env)
		}
		if w.sites != nil && w.ctx.userFns[n.Name] {
			// The target executes once per element, so the observation
			// carries element types, not container types.
			vec := make(ArgVector, len(n.Args))
			for i, a := range n.Args {
				vec[i] = broadcastElem(w.ctx.TypeOf(a, env))
			}
			if informative(vec) {
				w.sites.Add(n.Name, vec)
			}
		}
	}
}

// informative reports whether at least one argument type carries static
// information. Purely-Any vectors would only fabricate specializations, so
// they are discarded.
func informative(vec ArgVector) bool {
	for _, t := range vec {
		if !types.IsAny(t) {
			return true
		}
	}
	return false
}
