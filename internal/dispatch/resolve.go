package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/velalang/vela/internal/types"
)

// NoMethodError is the only failure this subsystem surfaces: no registered
// candidate matches a call's argument types. It is fatal to the call, not
// to the compilation.
type NoMethodError struct {
	Name string
	Args []types.Type
}

func (e *NoMethodError) Error() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("no method matching %s(%s)", e.Name, strings.Join(parts, ", "))
}

// Resolve selects the best candidate for a call. Several names may be
// given to cover operator-overload lookup under multiple spellings; they
// are searched in order and compete on one specificity scale. Among the
// matching candidates the highest specificity wins; ties go to the first
// registered.
func (t *Table) Resolve(names []string, args []types.Type) (*Candidate, error) {
	var best *Candidate
	for _, name := range names {
		for _, c := range t.methods[name] {
			if len(c.Params) != len(args) {
				continue
			}
			if !t.matches(c, args) {
				continue
			}
			if best == nil || c.Specificity > best.Specificity {
				best = c
			}
		}
	}
	if best == nil {
		primary := ""
		if len(names) > 0 {
			primary = names[0]
		}
		return nil, &NoMethodError{Name: primary, Args: args}
	}
	return best, nil
}

// ResolveCached consults the positive-only cache before resolving. A hit
// returns the memoized candidate directly; a successful miss is stored.
// Failures are never cached, so methods registered later stay reachable.
func (t *Table) ResolveCached(cache *Cache, site uint32, names []string, args []types.Type) (*Candidate, error) {
	if cache != nil {
		if name, index, ok := cache.Lookup(site, args); ok {
			if c, ok := t.CandidateAt(name, index); ok {
				return c, nil
			}
		}
	}
	c, err := t.Resolve(names, args)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Store(site, args, c.Name, c.index)
	}
	return c, nil
}

func (t *Table) matches(c *Candidate, args []types.Type) bool {
	for i, p := range c.Params {
		if !t.matchParam(p, args[i], c.TypeParams) {
			return false
		}
	}
	return true
}

// matchParam implements the parameter matching rules: Any matches
// everything, type variables match everything (binding happens after
// selection), concrete types match by equality, abstract families match
// registered descendants through the ancestor closure, parametric families
// with unbound variables match any instantiation of the family while fully
// bound instantiations match only exactly, and Type{T} parameters match
// type values whose described type is a subtype of T.
func (t *Table) matchParam(param, arg types.Type, typeParams []string) bool {
	if param == nil || types.IsAny(param) {
		return true
	}
	if types.Equal(param, arg) {
		return true
	}
	switch p := param.(type) {
	case types.TypeVar:
		return true
	case types.Union:
		for _, v := range p.Variants {
			if t.matchParam(v, arg, typeParams) {
				return true
			}
		}
		return false
	case types.TypeOf:
		described, ok := arg.(types.TypeOf)
		if !ok {
			return false
		}
		if _, unbound := p.T.(types.TypeVar); unbound {
			return true
		}
		return t.isSubtype(described.T, p.T)
	case types.Struct:
		if t.reg.IsAbstract(p.Name) {
			return t.reg.IsSubtype(runtimeName(arg), p.Name)
		}
		if hasUnboundParams(p, typeParams, t.reg) {
			argStruct, ok := arg.(types.Struct)
			// Any instantiation of the family matches; the bound
			// parameters are ignored here and extracted by BindTypeParams.
			return ok && types.Family(argStruct.Name) == types.Family(p.Name)
		}
		// A fully bound instantiation matches only the equality case
		// handled above.
		return false
	case types.Array:
		a, ok := arg.(types.Array)
		if !ok {
			return false
		}
		if p.Rank != 0 && a.Rank != p.Rank {
			return false
		}
		return t.matchParam(p.Elem, a.Elem, typeParams)
	case types.Range:
		a, ok := arg.(types.Range)
		return ok && t.matchParam(p.Elem, a.Elem, typeParams)
	case types.Tuple:
		a, ok := arg.(types.Tuple)
		if !ok || len(a.Elems) != len(p.Elems) {
			return false
		}
		for i := range p.Elems {
			if !t.matchParam(p.Elems[i], a.Elems[i], typeParams) {
				return false
			}
		}
		return true
	}
	return false
}

// isSubtype extends the registry's closure query to lattice elements.
func (t *Table) isSubtype(sub, super types.Type) bool {
	if types.Equal(sub, super) || types.IsAny(super) {
		return true
	}
	if s, ok := super.(types.Struct); ok {
		return t.reg.IsSubtype(runtimeName(sub), s.Name)
	}
	return false
}

// runtimeName is the hierarchy name of a runtime type: the family of a
// struct instantiation, the canonical name of a leaf, the container kind
// for arrays, tuples and ranges.
func runtimeName(t types.Type) string {
	return types.Family(t.String())
}

// Binding is one resolved type parameter: a structural type binding, or an
// encoded value-level constant (integer, boolean or symbol).
type Binding struct {
	Type  types.Type
	Const string
}

// IsValue reports whether the binding is value-level.
func (b Binding) IsValue() bool {
	return b.Type == nil
}

// BindTypeParams binds a selected candidate's declared type parameters by
// structurally unifying each argument's concrete type against the
// corresponding declared parameter type: element types are extracted from
// containers, instantiation parameters from struct names. Value-level
// parameters are bound directly from the constant encoded in the
// instantiated name. Parameters no argument pins down are absent from the
// result.
func (t *Table) BindTypeParams(c *Candidate, args []types.Type) map[string]Binding {
	if len(c.TypeParams) == 0 {
		return nil
	}
	declared := make(map[string]bool, len(c.TypeParams))
	for _, name := range c.TypeParams {
		declared[name] = true
	}
	bindings := make(map[string]Binding)
	for i, p := range c.Params {
		if i >= len(args) {
			break
		}
		unifyBindings(p, args[i], declared, bindings)
	}
	return bindings
}

func unifyBindings(param, arg types.Type, declared map[string]bool, out map[string]Binding) {
	if param == nil || arg == nil {
		return
	}
	switch p := param.(type) {
	case types.TypeVar:
		bindOnce(out, declared, p.Name, Binding{Type: arg})
	case types.Array:
		if a, ok := arg.(types.Array); ok {
			unifyBindings(p.Elem, a.Elem, declared, out)
		}
	case types.Range:
		if a, ok := arg.(types.Range); ok {
			unifyBindings(p.Elem, a.Elem, declared, out)
		}
	case types.Tuple:
		if a, ok := arg.(types.Tuple); ok && len(a.Elems) == len(p.Elems) {
			for i := range p.Elems {
				unifyBindings(p.Elems[i], a.Elems[i], declared, out)
			}
		}
	case types.TypeOf:
		if a, ok := arg.(types.TypeOf); ok {
			unifyBindings(p.T, a.T, declared, out)
		}
	case types.Struct:
		a, ok := arg.(types.Struct)
		if !ok || types.Family(a.Name) != types.Family(p.Name) {
			return
		}
		declaredParams := types.InstanceParams(p.Name)
		actualParams := types.InstanceParams(a.Name)
		for i, dp := range declaredParams {
			if i >= len(actualParams) || !declared[dp] {
				continue
			}
			actual := actualParams[i]
			if isValueConstant(actual) {
				bindOnce(out, declared, dp, Binding{Const: actual})
			} else {
				bindOnce(out, declared, dp, Binding{Type: types.Parse(actual)})
			}
		}
	}
}

// bindOnce keeps the first binding for a name; later occurrences of the
// same variable do not overwrite it.
func bindOnce(out map[string]Binding, declared map[string]bool, name string, b Binding) {
	if !declared[name] {
		return
	}
	if _, seen := out[name]; !seen {
		out[name] = b
	}
}

// isValueConstant recognizes the value-level encodings inside instantiated
// names: integers, booleans, and :symbol constants.
func isValueConstant(s string) bool {
	if s == "true" || s == "false" || strings.HasPrefix(s, ":") {
		return true
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
