// Package infer implements the static inference engine: a bounded,
// iterative, forward analysis that assigns best-effort static types to
// every expression, local variable and function signature of a lowered
// program. It never fails; everything unresolved decays to Any.
package infer

import (
	"github.com/velalang/vela/internal/types"
)

// Env is a scope-chained mapping from variable name to inferred type. A
// fresh Env is created per function body (seeded from parameter types) and
// per nested binding construct; inner scopes shadow outer ones and are
// simply dropped on exit.
type Env struct {
	store map[string]types.Type
	outer *Env
}

func NewEnv() *Env {
	return &Env{store: make(map[string]types.Type)}
}

// Enclosed returns a child scope whose lookups fall through to e.
func (e *Env) Enclosed() *Env {
	return &Env{store: make(map[string]types.Type), outer: e}
}

// Lookup resolves a name through the scope chain.
func (e *Env) Lookup(name string) (types.Type, bool) {
	for cur := e; cur != nil; cur = cur.outer {
		if t, ok := cur.store[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Define binds a name in the current scope, shadowing any outer binding.
func (e *Env) Define(name string, t types.Type) {
	e.store[name] = t
}

// Assign rebinds a name in the scope that already holds it, or defines it
// in the current scope for a first assignment.
func (e *Env) Assign(name string, t types.Type) {
	for cur := e; cur != nil; cur = cur.outer {
		if _, ok := cur.store[name]; ok {
			cur.store[name] = t
			return
		}
	}
	e.store[name] = t
}
