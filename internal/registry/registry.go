// Package registry holds the declared struct and abstract-type hierarchy.
//
// Declarations are collected by a Builder during the front-loaded
// declaration pass; Seal then produces a read-only Registry with the
// transitive ancestor closure precomputed, so subtype queries during
// inference and dispatch are O(1) map lookups. The phase split is
// deliberate: no traversal ever mutates a registry another traversal is
// reading.
package registry

import (
	"github.com/velalang/vela/internal/types"
)

// Field is one named, typed struct field. A nil Type means the declaration
// left the field unannotated; ResolveFieldType may fill it in lazily when a
// constructor literal first pins it down.
type Field struct {
	Name string
	Type types.Type
}

// StructInfo describes one declared struct family.
type StructInfo struct {
	Name       string
	Mutable    bool
	Fields     []Field
	Parent     string // abstract supertype, "" for none
	TypeParams []string
}

// AbstractInfo describes one declared abstract type.
type AbstractInfo struct {
	Name   string
	Parent string // "" for a root of the hierarchy
}

// Builder accumulates declarations before sealing.
type Builder struct {
	structs   map[string]*StructInfo
	abstracts map[string]*AbstractInfo
	leaves    map[string]string
	order     []string
}

func NewBuilder() *Builder {
	return &Builder{
		structs:   make(map[string]*StructInfo),
		abstracts: make(map[string]*AbstractInfo),
		leaves:    make(map[string]string),
	}
}

// DeclareStruct records a struct declaration. Redeclaring a name replaces
// the earlier entry.
func (b *Builder) DeclareStruct(info StructInfo) {
	if _, seen := b.structs[info.Name]; !seen {
		b.order = append(b.order, info.Name)
	}
	copied := info
	copied.Fields = append([]Field(nil), info.Fields...)
	b.structs[info.Name] = &copied
}

// DeclareAbstract records an abstract-type declaration.
func (b *Builder) DeclareAbstract(info AbstractInfo) {
	b.abstracts[info.Name] = &info
}

// DeclareLeafParent hangs a built-in leaf type (by its canonical name,
// e.g. "Int64") under an abstract parent, so leaves participate in
// abstract-type dispatch without becoming constructible structs.
func (b *Builder) DeclareLeafParent(leaf, parent string) {
	b.leaves[leaf] = parent
}

// Seal computes the ancestor closure and returns the read-only registry.
// The builder must not be used afterwards.
func (b *Builder) Seal() *Registry {
	r := &Registry{
		structs:   b.structs,
		abstracts: b.abstracts,
		leaves:    b.leaves,
		order:     b.order,
		ancestors: make(map[string]map[string]bool),
	}
	for name := range b.abstracts {
		r.ancestors[name] = r.closure(name)
	}
	for name := range b.structs {
		r.ancestors[name] = r.closure(name)
	}
	for name := range b.leaves {
		r.ancestors[name] = r.closure(name)
	}
	return r
}

// Registry is the sealed, query-only view of the declared type hierarchy.
type Registry struct {
	structs   map[string]*StructInfo
	abstracts map[string]*AbstractInfo
	leaves    map[string]string
	order     []string
	ancestors map[string]map[string]bool
}

// closure walks parent links from name, tolerating unknown or cyclic
// parents. Every type is its own ancestor.
func (r *Registry) closure(name string) map[string]bool {
	out := map[string]bool{name: true}
	cur := name
	for {
		var parent string
		if s, ok := r.structs[cur]; ok {
			parent = s.Parent
		} else if a, ok := r.abstracts[cur]; ok {
			parent = a.Parent
		} else if p, ok := r.leaves[cur]; ok {
			parent = p
		}
		if parent == "" || out[parent] {
			return out
		}
		out[parent] = true
		cur = parent
	}
}

// Struct looks up a struct family by its un-bracketed name.
func (r *Registry) Struct(name string) (*StructInfo, bool) {
	s, ok := r.structs[types.Family(name)]
	return s, ok
}

// Abstract looks up a declared abstract type.
func (r *Registry) Abstract(name string) (*AbstractInfo, bool) {
	a, ok := r.abstracts[name]
	return a, ok
}

// IsAbstract reports whether name denotes a declared abstract type.
func (r *Registry) IsAbstract(name string) bool {
	_, ok := r.abstracts[name]
	return ok
}

// StructNames returns the declared struct families in declaration order.
func (r *Registry) StructNames() []string {
	return r.order
}

// IsSubtype reports whether sub's family is super or a registered
// descendant of super, using the precomputed closure. Unknown names are
// never subtypes of anything but themselves.
func (r *Registry) IsSubtype(sub, super string) bool {
	sub = types.Family(sub)
	if sub == super {
		return true
	}
	anc, ok := r.ancestors[sub]
	return ok && anc[super]
}

// Ancestors returns the ancestor closure of a type name, the name itself
// included. The returned map must not be mutated.
func (r *Registry) Ancestors(name string) map[string]bool {
	if anc, ok := r.ancestors[types.Family(name)]; ok {
		return anc
	}
	return map[string]bool{types.Family(name): true}
}

// FieldType returns the declared type of a struct field. Unknown structs or
// fields degrade to Any so that inference stays total.
func (r *Registry) FieldType(structName, fieldName string) types.Type {
	s, ok := r.Struct(structName)
	if !ok {
		return types.Prim(types.Any)
	}
	bindings := r.paramBindings(s, structName)
	for _, f := range s.Fields {
		if f.Name != fieldName {
			continue
		}
		if f.Type == nil {
			return types.Prim(types.Any)
		}
		return substParams(f.Type, bindings)
	}
	return types.Prim(types.Any)
}

// ResolveFieldType is the one narrow post-seal mutation: when a constructor
// literal first supplies a concrete type for a field that was declared
// without one, the inferred type is remembered for later lookups. Already
// typed fields are never overwritten.
func (r *Registry) ResolveFieldType(structName, fieldName string, t types.Type) {
	s, ok := r.Struct(structName)
	if !ok || t == nil || types.IsAny(t) {
		return
	}
	for i, f := range s.Fields {
		if f.Name == fieldName && f.Type == nil {
			s.Fields[i].Type = t
			return
		}
	}
}

// paramBindings maps a family's type parameters to the concrete parameters
// of an instantiated name, e.g. Pair{Int64} binds T to Int64.
func (r *Registry) paramBindings(s *StructInfo, instanceName string) map[string]types.Type {
	params := types.InstanceParams(instanceName)
	if len(params) == 0 || len(s.TypeParams) == 0 {
		return nil
	}
	bindings := make(map[string]types.Type)
	for i, name := range s.TypeParams {
		if i < len(params) {
			bindings[name] = types.Parse(params[i])
		}
	}
	return bindings
}

// substParams replaces type-parameter references inside a declared field
// type with the instantiation's bindings.
func substParams(t types.Type, bindings map[string]types.Type) types.Type {
	if len(bindings) == 0 || t == nil {
		return t
	}
	switch v := t.(type) {
	case types.TypeVar:
		if b, ok := bindings[v.Name]; ok {
			return b
		}
		return v
	case types.Struct:
		if b, ok := bindings[v.Name]; ok {
			return b
		}
		return v
	case types.Array:
		return types.Array{Elem: substParams(v.Elem, bindings), Rank: v.Rank}
	case types.Range:
		return types.Range{Elem: substParams(v.Elem, bindings)}
	case types.Tuple:
		elems := make([]types.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = substParams(e, bindings)
		}
		return types.Tuple{Elems: elems}
	default:
		return t
	}
}
