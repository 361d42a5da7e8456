// Package types defines the static type lattice used by the inference
// engine and the dispatch resolver.
//
// The lattice is a closed tagged union: the built-in leaves are a Prim
// enumeration, and every user-defined struct family is represented by a
// single Struct variant carrying its (possibly instantiated) name. Values
// are compared and joined by value; there is no identity semantics.
package types

import (
	"sort"
	"strconv"
	"strings"
)

// Type is the closed union of all static types. The concrete variants are
// Prim, Array, Tuple, Range, Struct, Union, TypeVar and TypeOf; nothing
// outside this package implements it.
type Type interface {
	String() string
	isType()
}

// Prim is a built-in leaf type.
type Prim int

const (
	// Any is the unique top element: the absence of static information.
	Any Prim = iota
	// Nothing is the type of the no-value result.
	Nothing
	// Missing is the type of the missing-data sentinel.
	Missing
	Bool
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	BigInt
	Float32
	Float64
	BigFloat
	String
	Char
)

// DefaultInt and DefaultFloat are the types assigned to unsuffixed numeric
// literals and to loop variables with non-integral bounds.
const (
	DefaultInt   = Int64
	DefaultFloat = Float64
)

var primNames = map[Prim]string{
	Any:      "Any",
	Nothing:  "Nothing",
	Missing:  "Missing",
	Bool:     "Bool",
	Int8:     "Int8",
	Int16:    "Int16",
	Int32:    "Int32",
	Int64:    "Int64",
	UInt8:    "UInt8",
	UInt16:   "UInt16",
	UInt32:   "UInt32",
	UInt64:   "UInt64",
	BigInt:   "BigInt",
	Float32:  "Float32",
	Float64:  "Float64",
	BigFloat: "BigFloat",
	String:   "String",
	Char:     "Char",
}

func (p Prim) String() string {
	if s, ok := primNames[p]; ok {
		return s
	}
	return "Any"
}

func (p Prim) isType() {}

// Array is a homogeneous container type. Rank 0 means the rank is unknown;
// known ranks are 1 or greater.
type Array struct {
	Elem Type
	Rank int
}

func (a Array) String() string {
	if a.Rank > 0 {
		return "Array{" + a.Elem.String() + "," + strconv.Itoa(a.Rank) + "}"
	}
	return "Array{" + a.Elem.String() + "}"
}

func (a Array) isType() {}

// Tuple is a fixed-arity heterogeneous container type.
type Tuple struct {
	Elems []Type
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "Tuple{" + strings.Join(parts, ",") + "}"
}

func (t Tuple) isType() {}

// Range is the type of a start:stop iteration value.
type Range struct {
	Elem Type
}

func (r Range) String() string { return "Range{" + r.Elem.String() + "}" }

func (r Range) isType() {}

// Struct names a user-defined struct or abstract type. A bracketed name such
// as "Complex{Float64}" denotes a concrete instantiation of a parametric
// family; the un-bracketed prefix names the generic family itself.
type Struct struct {
	Name string
}

func (s Struct) String() string { return s.Name }

func (s Struct) isType() {}

// Union is a normalized set of variant types: flattened, deduplicated and
// sorted. Construct through NewUnion, which collapses singletons.
type Union struct {
	Variants []Type
}

func (u Union) String() string {
	parts := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		parts[i] = v.String()
	}
	return "Union{" + strings.Join(parts, ",") + "}"
}

func (u Union) isType() {}

// TypeVar is a named placeholder declared by a generic function or struct,
// bound at each call or instantiation.
type TypeVar struct {
	Name string
}

func (v TypeVar) String() string { return v.Name }

func (v TypeVar) isType() {}

// TypeOf is the type of a type value: the literal Int64 has type
// TypeOf{Int64}. Dispatch uses it for Type{T}-style parameters.
type TypeOf struct {
	T Type
}

func (t TypeOf) String() string { return "Type{" + t.T.String() + "}" }

func (t TypeOf) isType() {}

// NewUnion builds a normalized union: nested unions are flattened,
// duplicates removed, variants sorted. A single surviving variant is
// returned directly.
func NewUnion(variants ...Type) Type {
	flat := []Type{}
	for _, v := range variants {
		if u, ok := v.(Union); ok {
			flat = append(flat, u.Variants...)
		} else if v != nil {
			flat = append(flat, v)
		}
	}
	seen := make(map[string]bool)
	unique := []Type{}
	for _, v := range flat {
		if IsAny(v) {
			// Any absorbs the whole union.
			return Prim(Any)
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, v)
		}
	}
	if len(unique) == 0 {
		return Prim(Nothing)
	}
	if len(unique) == 1 {
		return unique[0]
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})
	return Union{Variants: unique}
}

// Equal reports whether two lattice elements denote the same type. The
// canonical string form is injective over the closed variant set, so string
// comparison is exact.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// IsAny reports whether t carries no static information.
func IsAny(t Type) bool {
	p, ok := t.(Prim)
	return t == nil || (ok && p == Any)
}

// IsConcrete reports whether t pins down a single runtime type: every
// variant except Any, unions and unbound type variables.
func IsConcrete(t Type) bool {
	switch v := t.(type) {
	case nil:
		return false
	case Prim:
		return v != Any
	case Union:
		return false
	case TypeVar:
		return false
	case Array:
		return IsConcrete(v.Elem)
	case Tuple:
		for _, e := range v.Elems {
			if !IsConcrete(e) {
				return false
			}
		}
		return true
	case Range:
		return IsConcrete(v.Elem)
	default:
		return true
	}
}

// IsTextual reports whether t is a string or character type.
func IsTextual(t Type) bool {
	p, ok := t.(Prim)
	return ok && (p == String || p == Char)
}

// Family returns the un-bracketed prefix of a struct name:
// Family("Complex{Float64}") == "Complex".
func Family(name string) string {
	if i := strings.IndexByte(name, '{'); i >= 0 {
		return name[:i]
	}
	return name
}

// InstanceParams splits the bracketed parameter list of an instantiated
// struct name at the top nesting level. It returns nil for a bare family
// name.
func InstanceParams(name string) []string {
	i := strings.IndexByte(name, '{')
	if i < 0 || !strings.HasSuffix(name, "}") {
		return nil
	}
	body := name[i+1 : len(name)-1]
	if body == "" {
		return nil
	}
	var params []string
	depth := 0
	start := 0
	for j := 0; j < len(body); j++ {
		switch body[j] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, body[start:j])
				start = j + 1
			}
		}
	}
	params = append(params, body[start:])
	return params
}

// Instantiate builds the canonical name of a parametric struct instance.
func Instantiate(family string, params []string) string {
	if len(params) == 0 {
		return family
	}
	return family + "{" + strings.Join(params, ",") + "}"
}
