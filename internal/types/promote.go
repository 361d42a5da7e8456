package types

// Numeric promotion. The precedence table is a fixed total order over the
// numeric leaves; promote returns the wider operand and never narrows. Bool
// sits below every integer leaf, the arbitrary-precision integer above the
// fixed-width ones, and the float leaves above all integers.
var numericRank = map[Prim]int{
	Bool:     1,
	Int8:     2,
	UInt8:    3,
	Int16:    4,
	UInt16:   5,
	Int32:    6,
	UInt32:   7,
	Int64:    8,
	UInt64:   9,
	BigInt:   10,
	Float32:  11,
	Float64:  12,
	BigFloat: 13,
}

// IsNumeric reports whether t is a numeric leaf (booleans included, since
// they promote into the integer tower).
func IsNumeric(t Type) bool {
	p, ok := t.(Prim)
	if !ok {
		return false
	}
	_, num := numericRank[p]
	return num
}

// IsInteger reports whether t is an integer leaf (bool through BigInt).
func IsInteger(t Type) bool {
	p, ok := t.(Prim)
	if !ok {
		return false
	}
	r, num := numericRank[p]
	return num && r <= numericRank[BigInt]
}

// IsFloat reports whether t is a floating-point leaf.
func IsFloat(t Type) bool {
	p, ok := t.(Prim)
	if !ok {
		return false
	}
	r, num := numericRank[p]
	return num && r > numericRank[BigInt]
}

// Promote returns the wider of two numeric leaves per the precedence table.
// Mixing a numeric with anything that is not a numeric leaf (including Any)
// yields Any: the actual runtime type is unknown and the operation must
// dispatch dynamically.
func Promote(a, b Type) Type {
	pa, okA := a.(Prim)
	pb, okB := b.(Prim)
	if !okA || !okB {
		return Prim(Any)
	}
	ra, numA := numericRank[pa]
	rb, numB := numericRank[pb]
	if !numA || !numB {
		return Prim(Any)
	}
	if ra >= rb {
		return pa
	}
	return pb
}

// BinaryResult computes the static result type of a binary operator applied
// to two operand types. The rules apply uniformly whether the operands are
// concrete or unknown:
//
//   - comparison and logical operators always yield Bool;
//   - true division always yields the default float type;
//   - integer division and modulo yield the promoted operand type;
//   - exponentiation stays integral only for integer operands, and a struct
//     base raised to an integer power keeps the struct type (families that
//     close under integer powers, complex-like numerics for instance);
//   - multiplication with a textual operand is concatenation/repetition and
//     yields String;
//   - any other arithmetic with an Any operand propagates Any.
func BinaryResult(op string, left, right Type) Type {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return Prim(Bool)
	}
	if op == "*" && (IsTextual(left) || IsTextual(right)) {
		return Prim(String)
	}
	if op == "^" {
		if _, ok := left.(Struct); ok && IsInteger(right) {
			return left
		}
	}
	if IsAny(left) || IsAny(right) {
		return Prim(Any)
	}
	switch op {
	case "/":
		return Prim(DefaultFloat)
	case "div", "%":
		return Promote(left, right)
	case "^":
		if IsInteger(left) && IsInteger(right) {
			return Promote(left, right)
		}
		return Prim(DefaultFloat)
	case "+", "-", "*":
		if IsNumeric(left) && IsNumeric(right) {
			return Promote(left, right)
		}
		// A family closed under its own arithmetic, e.g. complex-like
		// structs: the operation preserves the instantiation.
		if ls, ok := left.(Struct); ok {
			if rs, ok := right.(Struct); ok && ls.Name == rs.Name {
				return left
			}
		}
		return Prim(Any)
	default:
		return Prim(Any)
	}
}
