package types

import (
	"strconv"
	"strings"
)

var primByName map[string]Prim

func init() {
	primByName = make(map[string]Prim, len(primNames))
	for p, name := range primNames {
		primByName[name] = p
	}
}

func parsePrim(s string) (Type, bool) {
	if p, ok := primByName[strings.TrimSpace(s)]; ok {
		return p, true
	}
	return nil, false
}

// Parse turns a canonical type name back into a lattice element. Parsing is
// total: malformed or unknown names come back as a Struct with the given
// name, which the registry will simply fail to find, and the engine then
// degrades to Any. Parse and String round-trip for every variant.
func Parse(s string) Type {
	s = strings.TrimSpace(s)
	if s == "" {
		return Prim(Any)
	}
	if p, ok := primByName[s]; ok {
		return p
	}
	i := strings.IndexByte(s, '{')
	if i < 0 || !strings.HasSuffix(s, "}") {
		return Struct{Name: s}
	}
	head := s[:i]
	args := InstanceParams(s)
	switch head {
	case "Array":
		switch len(args) {
		case 1:
			return Array{Elem: Parse(args[0])}
		case 2:
			if rank, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil {
				return Array{Elem: Parse(args[0]), Rank: rank}
			}
		}
		return Struct{Name: s}
	case "Tuple":
		elems := make([]Type, len(args))
		for j, a := range args {
			elems[j] = Parse(a)
		}
		return Tuple{Elems: elems}
	case "Range":
		if len(args) == 1 {
			return Range{Elem: Parse(args[0])}
		}
		return Struct{Name: s}
	case "Union":
		variants := make([]Type, len(args))
		for j, a := range args {
			variants[j] = Parse(a)
		}
		return NewUnion(variants...)
	case "Type":
		if len(args) == 1 {
			return TypeOf{T: Parse(args[0])}
		}
		return Struct{Name: s}
	default:
		// A parametric struct instantiation. Re-render the parameters so
		// spacing differences cannot make equal instantiations unequal.
		canon := make([]string, len(args))
		for j, a := range args {
			canon[j] = canonParam(a)
		}
		return Struct{Name: Instantiate(head, canon)}
	}
}

// canonParam canonicalizes one bracketed parameter, which is either a type
// name or a value-level constant (integer, boolean or symbol).
func canonParam(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.Atoi(s); err == nil {
		return s
	}
	if s == "true" || s == "false" {
		return s
	}
	if strings.HasPrefix(s, ":") {
		return s
	}
	return Parse(s).String()
}
