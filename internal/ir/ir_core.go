// Package ir defines the lowered program tree consumed by the inference
// engine. The lowering collaborator produces it from the surface syntax and
// guarantees syntactic well-formedness; this package only describes shape.
package ir

import (
	"github.com/velalang/vela/internal/types"
)

// Node is the base interface for all tree nodes.
type Node interface {
	node()
}

// Statement is a Node that appears in statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of a lowered compilation unit: type declarations,
// user functions, and the entry block of top-level statements.
type Program struct {
	Structs   []StructDecl
	Abstracts []AbstractDecl
	Functions []*Function
	Entry     *Block
}

// FunctionNames returns the set of user-defined function names, which the
// call-site collector uses to tell user calls from builtin calls.
func (p *Program) FunctionNames() map[string]bool {
	names := make(map[string]bool, len(p.Functions))
	for _, f := range p.Functions {
		names[f.Name] = true
	}
	return names
}

// StructDecl declares a struct family. A nil field type means the surface
// declaration left the field unannotated.
type StructDecl struct {
	Name       string
	Mutable    bool
	Parent     string
	TypeParams []string
	Fields     []FieldDecl
}

// FieldDecl is one field of a struct declaration.
type FieldDecl struct {
	Name string
	Type types.Type
}

// AbstractDecl declares an abstract type and its optional parent.
type AbstractDecl struct {
	Name   string
	Parent string
}

// Param is one formal parameter. Ann is the user annotation, nil when the
// parameter was written bare.
type Param struct {
	Name string
	Ann  types.Type
}

// Function is one user-defined method body. Overloads of the same name
// appear as separate Functions.
type Function struct {
	Name       string
	Params     []Param
	TypeParams []string
	ReturnAnn  types.Type
	Body       *Block
}

// Block is an ordered statement sequence.
type Block struct {
	Stmts []Statement
}

func (b *Block) node() {}

// ExprStatement evaluates an expression for its effect (or, as the last
// statement of a body, for its value).
type ExprStatement struct {
	E Expression
}

func (s *ExprStatement) node()          {}
func (s *ExprStatement) statementNode() {}

// AssignStatement binds or rebinds a variable.
type AssignStatement struct {
	Name  string
	Value Expression
}

func (s *AssignStatement) node()          {}
func (s *AssignStatement) statementNode() {}

// ReturnStatement returns from the enclosing function. A nil Value is the
// implicit `return nothing`.
type ReturnStatement struct {
	Value Expression
}

func (s *ReturnStatement) node()          {}
func (s *ReturnStatement) statementNode() {}

// IfStatement is a branching statement. Else may be nil.
type IfStatement struct {
	Cond Expression
	Then *Block
	Else *Block
}

func (s *IfStatement) node()          {}
func (s *IfStatement) statementNode() {}

// WhileStatement loops while the condition holds.
type WhileStatement struct {
	Cond Expression
	Body *Block
}

func (s *WhileStatement) node()          {}
func (s *WhileStatement) statementNode() {}

// ForRangeStatement is a counting loop over From..To inclusive.
type ForRangeStatement struct {
	Var  string
	From Expression
	To   Expression
	Body *Block
}

func (s *ForRangeStatement) node()          {}
func (s *ForRangeStatement) statementNode() {}

// ForEachStatement iterates over the elements of an iterable value.
type ForEachStatement struct {
	Var      string
	Iterable Expression
	Body     *Block
}

func (s *ForEachStatement) node()          {}
func (s *ForEachStatement) statementNode() {}

// LetBinding is one binding of a let block.
type LetBinding struct {
	Name  string
	Value Expression
}

// LetStatement introduces scoped bindings visible only inside Body.
type LetStatement struct {
	Bindings []LetBinding
	Body     *Block
}

func (s *LetStatement) node()          {}
func (s *LetStatement) statementNode() {}
