// Package dispatch implements the method table and the runtime dispatch
// resolver: given a function name (or its operator aliases) and the
// concrete types of a call's operands, it selects the most specific
// registered candidate, or fails with a method-resolution error.
//
// Candidates accumulate as functions are compiled and are never removed.
// Candidate ordering within a name is registration order; among equally
// specific matches the first registered wins, which callers must treat as
// unspecified behavior rather than a guarantee.
package dispatch

import (
	"github.com/velalang/vela/internal/registry"
	"github.com/velalang/vela/internal/types"
)

// Candidate is one registered method: its declared parameter types, return
// type, precomputed specificity score, and an opaque reference to the
// compiled body the VM jumps to.
type Candidate struct {
	Name        string
	Params      []types.Type
	Return      types.Type
	TypeParams  []string
	Specificity int
	Body        any
	index       int
}

// Index is the candidate's position within its name's registration order;
// the dispatch cache stores it.
func (c *Candidate) Index() int {
	return c.index
}

// Table is the method table: per function name, every registered
// candidate.
type Table struct {
	reg     *registry.Registry
	methods map[string][]*Candidate
}

// NewTable builds an empty method table over a sealed registry.
func NewTable(reg *registry.Registry) *Table {
	return &Table{
		reg:     reg,
		methods: make(map[string][]*Candidate),
	}
}

// Register adds one candidate and returns it. The specificity score is the
// sum of per-parameter ranks: a concrete type outranks an abstract family,
// which outranks a bare type variable, which outranks Any.
func (t *Table) Register(name string, params []types.Type, ret types.Type, typeParams []string, body any) *Candidate {
	c := &Candidate{
		Name:       name,
		Params:     append([]types.Type(nil), params...),
		Return:     ret,
		TypeParams: append([]string(nil), typeParams...),
		Body:       body,
		index:      len(t.methods[name]),
	}
	c.Specificity = t.specificity(c)
	t.methods[name] = append(t.methods[name], c)
	return c
}

// Candidates returns a name's candidates in registration order. The slice
// must not be mutated.
func (t *Table) Candidates(name string) []*Candidate {
	return t.methods[name]
}

// CandidateAt returns a candidate by registration index.
func (t *Table) CandidateAt(name string, index int) (*Candidate, bool) {
	list := t.methods[name]
	if index < 0 || index >= len(list) {
		return nil, false
	}
	return list[index], true
}

// Names returns how many distinct function names carry methods.
func (t *Table) Names() int {
	return len(t.methods)
}

func (t *Table) specificity(c *Candidate) int {
	score := 0
	for _, p := range c.Params {
		score += t.paramRank(p, c.TypeParams)
	}
	return score
}

// paramRank scores how narrowly one declared parameter type constrains its
// argument.
func (t *Table) paramRank(p types.Type, typeParams []string) int {
	switch v := p.(type) {
	case nil:
		return 0
	case types.Prim:
		if v == types.Any {
			return 0
		}
		return 3
	case types.TypeVar:
		return 1
	case types.Union:
		return 1
	case types.Struct:
		if t.reg.IsAbstract(v.Name) {
			return 2
		}
		if hasUnboundParams(v, typeParams, t.reg) {
			return 2
		}
		return 3
	case types.TypeOf:
		if _, unbound := v.T.(types.TypeVar); unbound {
			return 2
		}
		return 3
	default:
		return 3
	}
}

// hasUnboundParams reports whether a struct parameter type still has free
// type variables: either a bare parametric family, or an instantiation
// whose bracketed parameters mention the candidate's type parameters.
func hasUnboundParams(s types.Struct, typeParams []string, reg *registry.Registry) bool {
	info, ok := reg.Struct(s.Name)
	if !ok || len(info.TypeParams) == 0 {
		return false
	}
	params := types.InstanceParams(s.Name)
	if len(params) == 0 {
		return true
	}
	for _, p := range params {
		if containsName(typeParams, p) {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
