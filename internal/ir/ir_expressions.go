package ir

import (
	"github.com/velalang/vela/internal/types"
)

// IntLit is an integer literal; it types as the default integer.
type IntLit struct {
	Value int64
}

func (e *IntLit) node()           {}
func (e *IntLit) expressionNode() {}

// BigIntLit is an arbitrary-precision integer literal, kept as text.
type BigIntLit struct {
	Text string
}

func (e *BigIntLit) node()           {}
func (e *BigIntLit) expressionNode() {}

// FloatLit is a floating literal; it types as the default float.
type FloatLit struct {
	Value float64
}

func (e *FloatLit) node()           {}
func (e *FloatLit) expressionNode() {}

type BoolLit struct {
	Value bool
}

func (e *BoolLit) node()           {}
func (e *BoolLit) expressionNode() {}

type StringLit struct {
	Value string
}

func (e *StringLit) node()           {}
func (e *StringLit) expressionNode() {}

type CharLit struct {
	Value rune
}

func (e *CharLit) node()           {}
func (e *CharLit) expressionNode() {}

// NothingLit is the literal no-value.
type NothingLit struct{}

func (e *NothingLit) node()           {}
func (e *NothingLit) expressionNode() {}

// MissingLit is the missing-data sentinel literal.
type MissingLit struct{}

func (e *MissingLit) node()           {}
func (e *MissingLit) expressionNode() {}

// Ident references a variable or global binding by name.
type Ident struct {
	Name string
}

func (e *Ident) node()           {}
func (e *Ident) expressionNode() {}

// ArrayLit is a one-dimensional array literal.
type ArrayLit struct {
	Elems []Expression
}

func (e *ArrayLit) node()           {}
func (e *ArrayLit) expressionNode() {}

// TupleLit is a tuple literal.
type TupleLit struct {
	Elems []Expression
}

func (e *TupleLit) node()           {}
func (e *TupleLit) expressionNode() {}

// RangeLit is a from:to range literal.
type RangeLit struct {
	From Expression
	To   Expression
}

func (e *RangeLit) node()           {}
func (e *RangeLit) expressionNode() {}

// FieldAccess reads a named struct field.
type FieldAccess struct {
	X    Expression
	Name string
}

func (e *FieldAccess) node()           {}
func (e *FieldAccess) expressionNode() {}

// IndexExpr reads one element of a container.
type IndexExpr struct {
	X     Expression
	Index Expression
}

func (e *IndexExpr) node()           {}
func (e *IndexExpr) expressionNode() {}

// UnaryExpr applies a prefix operator.
type UnaryExpr struct {
	Op string
	X  Expression
}

func (e *UnaryExpr) node()           {}
func (e *UnaryExpr) expressionNode() {}

// BinaryExpr applies an infix operator.
type BinaryExpr struct {
	Op    string
	Left  Expression
	Right Expression
}

func (e *BinaryExpr) node()           {}
func (e *BinaryExpr) expressionNode() {}

// KwArg is one keyword argument of a call.
type KwArg struct {
	Name  string
	Value Expression
}

// CallExpr invokes a function by name. Site is the lowering-assigned
// identity of this syntactic call occurrence; the dispatch cache keys on
// it. Constructor calls use the struct family name.
type CallExpr struct {
	Name   string
	Args   []Expression
	Kwargs []KwArg
	Site   uint32
}

func (e *CallExpr) node()           {}
func (e *CallExpr) expressionNode() {}

// BroadcastExpr is a vectorized call: the named function runs once per
// element of the argument containers.
type BroadcastExpr struct {
	Name string
	Args []Expression
	Site uint32
}

func (e *BroadcastExpr) node()           {}
func (e *BroadcastExpr) expressionNode() {}

// IfExpr is a branching expression; its value type is the join of both
// branch types.
type IfExpr struct {
	Cond Expression
	Then Expression
	Else Expression
}

func (e *IfExpr) node()           {}
func (e *IfExpr) expressionNode() {}

// TypeLit is a type used in value position, e.g. as a Type{T} argument.
type TypeLit struct {
	T types.Type
}

func (e *TypeLit) node()           {}
func (e *TypeLit) expressionNode() {}
