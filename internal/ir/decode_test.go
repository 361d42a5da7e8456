package ir

import (
	"testing"
)

const sampleProgram = `
structs:
  - name: Point
    type_params: [T]
    fields:
      - {name: x, type: T}
      - {name: y, type: T}
abstracts:
  - {name: Number}
functions:
  - name: double
    params:
      - {name: x}
    body:
      - return:
          binary:
            op: "*"
            left: {ident: x}
            right: {int: 2}
  - name: norm
    params:
      - {name: p, type: "Point{Float64}"}
    returns: Float64
    body:
      - return:
          field: {of: {ident: p}, name: x}
entry:
  - assign:
      name: a
      value: {call: {name: double, args: [{int: 3}]}}
  - expr:
      broadcast: {name: double, args: [{array: [{int: 1}, {int: 2}]}]}
  - if:
      cond: {binary: {op: "<", left: {ident: a}, right: {int: 10}}}
      then:
        - expr: {call: {name: print, args: [{string: small}]}}
      else:
        - expr: {call: {name: print, args: [{string: big}]}}
`

func TestDecodeProgram(t *testing.T) {
	prog, err := DecodeProgram([]byte(sampleProgram))
	if err != nil {
		t.Fatal(err)
	}

	if len(prog.Structs) != 1 || prog.Structs[0].Name != "Point" {
		t.Fatalf("structs decoded as %+v", prog.Structs)
	}
	if got := prog.Structs[0].Fields[0].Type; got == nil || got.String() != "T" {
		t.Fatalf("field type decoded as %v", got)
	}
	if len(prog.Abstracts) != 1 || prog.Abstracts[0].Name != "Number" {
		t.Fatalf("abstracts decoded as %+v", prog.Abstracts)
	}

	if len(prog.Functions) != 2 {
		t.Fatalf("decoded %d functions", len(prog.Functions))
	}
	double := prog.Functions[0]
	if double.Params[0].Ann != nil {
		t.Fatal("bare parameter decoded with an annotation")
	}
	ret, ok := double.Body.Stmts[0].(*ReturnStatement)
	if !ok {
		t.Fatalf("body statement is %T", double.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*BinaryExpr)
	if !ok || bin.Op != "*" {
		t.Fatalf("return value is %T", ret.Value)
	}

	norm := prog.Functions[1]
	if norm.Params[0].Ann == nil || norm.Params[0].Ann.String() != "Point{Float64}" {
		t.Fatalf("annotated parameter decoded as %v", norm.Params[0].Ann)
	}
	if norm.ReturnAnn == nil || norm.ReturnAnn.String() != "Float64" {
		t.Fatalf("return annotation decoded as %v", norm.ReturnAnn)
	}

	if len(prog.Entry.Stmts) != 3 {
		t.Fatalf("entry decoded %d statements", len(prog.Entry.Stmts))
	}
	assign, ok := prog.Entry.Stmts[0].(*AssignStatement)
	if !ok || assign.Name != "a" {
		t.Fatalf("first entry statement is %T", prog.Entry.Stmts[0])
	}
	call, ok := assign.Value.(*CallExpr)
	if !ok || call.Name != "double" || len(call.Args) != 1 {
		t.Fatalf("assigned value is %T", assign.Value)
	}
	if _, ok := prog.Entry.Stmts[2].(*IfStatement); !ok {
		t.Fatalf("third entry statement is %T", prog.Entry.Stmts[2])
	}
}

func TestDecodeAssignsDistinctSites(t *testing.T) {
	prog, err := DecodeProgram([]byte(sampleProgram))
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[uint32]bool)
	var visitExpr func(e Expression)
	var visitBlock func(b *Block)
	visitExpr = func(e Expression) {
		switch n := e.(type) {
		case *CallExpr:
			if n.Site == 0 || seen[n.Site] {
				t.Fatalf("call %s has site %d (zero or duplicate)", n.Name, n.Site)
			}
			seen[n.Site] = true
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *BroadcastExpr:
			if n.Site == 0 || seen[n.Site] {
				t.Fatalf("broadcast %s has site %d (zero or duplicate)", n.Name, n.Site)
			}
			seen[n.Site] = true
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *BinaryExpr:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *FieldAccess:
			visitExpr(n.X)
		case *ArrayLit:
			for _, el := range n.Elems {
				visitExpr(el)
			}
		}
	}
	visitBlock = func(b *Block) {
		for _, s := range b.Stmts {
			switch n := s.(type) {
			case *ExprStatement:
				visitExpr(n.E)
			case *AssignStatement:
				visitExpr(n.Value)
			case *ReturnStatement:
				if n.Value != nil {
					visitExpr(n.Value)
				}
			case *IfStatement:
				visitExpr(n.Cond)
				visitBlock(n.Then)
				if n.Else != nil {
					visitBlock(n.Else)
				}
			}
		}
	}
	for _, f := range prog.Functions {
		visitBlock(f.Body)
	}
	visitBlock(prog.Entry)

	if len(seen) != 4 {
		t.Fatalf("found %d call sites, want 4", len(seen))
	}
}

func TestDecodeRejectsUnknownKinds(t *testing.T) {
	bad := []string{
		"entry:\n  - frobnicate: {}\n",
		"entry:\n  - expr: {squeep: 1}\n",
		"entry:\n  - expr: {char: ab}\n",
	}
	for _, src := range bad {
		if _, err := DecodeProgram([]byte(src)); err == nil {
			t.Errorf("decode accepted %q", src)
		}
	}
}
