package types

// Join returns the least upper bound of two lattice elements.
//
// Identical types join to themselves, Any absorbs everything, numeric
// leaves widen via Promote, arrays join elementwise (keeping the rank only
// when both agree), equal-arity tuples join elementwise, and instantiations
// of the same numeric struct family promote parameterwise. Everything else
// falls back to Any rather than failing.
func Join(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if Equal(a, b) {
		return a
	}
	if IsAny(a) || IsAny(b) {
		return Prim(Any)
	}
	if IsNumeric(a) && IsNumeric(b) {
		return Promote(a, b)
	}
	if ua, ok := a.(Union); ok {
		return NewUnion(append([]Type{b}, ua.Variants...)...)
	}
	if ub, ok := b.(Union); ok {
		return NewUnion(append([]Type{a}, ub.Variants...)...)
	}
	switch va := a.(type) {
	case Array:
		if vb, ok := b.(Array); ok {
			rank := 0
			if va.Rank == vb.Rank {
				rank = va.Rank
			}
			return Array{Elem: Join(va.Elem, vb.Elem), Rank: rank}
		}
	case Tuple:
		if vb, ok := b.(Tuple); ok && len(va.Elems) == len(vb.Elems) {
			elems := make([]Type, len(va.Elems))
			for i := range va.Elems {
				elems[i] = Join(va.Elems[i], vb.Elems[i])
			}
			return Tuple{Elems: elems}
		}
	case Range:
		if vb, ok := b.(Range); ok {
			return Range{Elem: Join(va.Elem, vb.Elem)}
		}
	case Struct:
		if vb, ok := b.(Struct); ok {
			if t, ok := joinFamily(va, vb); ok {
				return t
			}
		}
	}
	return Prim(Any)
}

// joinFamily joins two instantiations of the same parametric family by the
// family's own promotion rule: each pair of parameters must be numeric
// leaves, and each position promotes independently. Unrelated families, or
// families parameterized over non-numeric types, do not join.
func joinFamily(a, b Struct) (Type, bool) {
	fam := Family(a.Name)
	if fam != Family(b.Name) {
		return nil, false
	}
	pa := InstanceParams(a.Name)
	pb := InstanceParams(b.Name)
	if len(pa) == 0 || len(pa) != len(pb) {
		return nil, false
	}
	joined := make([]string, len(pa))
	for i := range pa {
		ta, okA := parsePrim(pa[i])
		tb, okB := parsePrim(pb[i])
		if !okA || !okB || !IsNumeric(ta) || !IsNumeric(tb) {
			return nil, false
		}
		joined[i] = Promote(ta, tb).String()
	}
	return Struct{Name: Instantiate(fam, joined)}, true
}

// ElemType extracts the per-element type of a container: the element type
// of arrays and ranges, the join of a tuple's element types, Char for
// strings. Anything else yields Any.
func ElemType(t Type) Type {
	switch v := t.(type) {
	case Array:
		return v.Elem
	case Range:
		return v.Elem
	case Tuple:
		if len(v.Elems) == 0 {
			return Prim(Any)
		}
		elem := v.Elems[0]
		for _, e := range v.Elems[1:] {
			elem = Join(elem, e)
		}
		return elem
	case Prim:
		if v == String {
			return Prim(Char)
		}
	}
	return Prim(Any)
}
