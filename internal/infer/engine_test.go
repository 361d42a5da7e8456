package infer

import (
	"testing"

	"github.com/velalang/vela/internal/config"
	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/types"
)

func call(name string, args ...ir.Expression) *ir.CallExpr {
	return &ir.CallExpr{Name: name, Args: args}
}

func TestEngineSpecializesFromCallSites(t *testing.T) {
	// double(x) = x * 2, called with an integer and a float. The two
	// observations promote to Float64, and the return type follows.
	prog := &ir.Program{
		Functions: []*ir.Function{{
			Name:   "double",
			Params: []ir.Param{{Name: "x"}},
			Body: &ir.Block{Stmts: []ir.Statement{
				&ir.ReturnStatement{Value: &ir.BinaryExpr{
					Op:   "*",
					Left: &ir.Ident{Name: "x"}, Right: &ir.IntLit{Value: 2},
				}},
			}},
		}},
		Entry: &ir.Block{Stmts: []ir.Statement{
			&ir.ExprStatement{E: call("double", &ir.IntLit{Value: 3})},
			&ir.ExprStatement{E: call("double", &ir.FloatLit{Value: 2.5})},
		}},
	}

	tp := New(prog, testRegistry(t), nil, config.DefaultOptions()).Run()

	sig := tp.Functions[0].Sig
	if got := sig.Types[0]; got.String() != "Float64" {
		t.Fatalf("parameter specialized to %s, want Float64", got)
	}
	if got := sig.Return; got.String() != "Float64" {
		t.Fatalf("return inferred as %s, want Float64", got)
	}
	if vecs := tp.Sites["double"]; len(vecs) != 2 {
		t.Fatalf("call-site table holds %d vectors, want 2", len(vecs))
	}
}

func TestEngineAnnotationsWin(t *testing.T) {
	// The annotated parameter keeps its type no matter what the call sites
	// observe.
	prog := &ir.Program{
		Functions: []*ir.Function{{
			Name:   "f",
			Params: []ir.Param{{Name: "x", Ann: types.Prim(types.Int32)}},
			Body: &ir.Block{Stmts: []ir.Statement{
				&ir.ReturnStatement{Value: &ir.Ident{Name: "x"}},
			}},
		}},
		Entry: &ir.Block{Stmts: []ir.Statement{
			&ir.ExprStatement{E: call("f", &ir.FloatLit{Value: 1.0})},
		}},
	}

	tp := New(prog, testRegistry(t), nil, config.DefaultOptions()).Run()
	sig := tp.Functions[0].Sig
	if got := sig.Types[0]; got.String() != "Int32" {
		t.Fatalf("annotated parameter became %s", got)
	}
	if got := sig.Return; got.String() != "Int32" {
		t.Fatalf("return inferred as %s, want Int32", got)
	}
}

func TestEngineReturnsPropagateThroughCalls(t *testing.T) {
	// g(x) = x; the entry binds y = g(1), so y is Int64 once g's signature
	// has stabilized.
	prog := &ir.Program{
		Functions: []*ir.Function{{
			Name:   "g",
			Params: []ir.Param{{Name: "x"}},
			Body: &ir.Block{Stmts: []ir.Statement{
				&ir.ReturnStatement{Value: &ir.Ident{Name: "x"}},
			}},
		}},
		Entry: &ir.Block{Stmts: []ir.Statement{
			&ir.AssignStatement{Name: "y", Value: call("g", &ir.IntLit{Value: 1})},
		}},
	}

	tp := New(prog, testRegistry(t), nil, config.DefaultOptions()).Run()
	if got := tp.Globals["y"]; got.String() != "Int64" {
		t.Fatalf("global y typed %s, want Int64", got)
	}
}

func TestEngineMutualRecursionStaysAny(t *testing.T) {
	// f and g only call each other with their own untyped parameters;
	// nothing pins a concrete type down, so everything stays Any and the
	// fixpoint is reached immediately.
	body := func(callee string) *ir.Block {
		return &ir.Block{Stmts: []ir.Statement{
			&ir.ReturnStatement{Value: call(callee, &ir.Ident{Name: "x"})},
		}}
	}
	prog := &ir.Program{
		Functions: []*ir.Function{
			{Name: "f", Params: []ir.Param{{Name: "x"}}, Body: body("g")},
			{Name: "g", Params: []ir.Param{{Name: "x"}}, Body: body("f")},
		},
		Entry: &ir.Block{},
	}

	tp := New(prog, testRegistry(t), nil, config.DefaultOptions()).Run()
	for _, fi := range tp.Functions {
		if !types.IsAny(fi.Sig.Types[0]) {
			t.Fatalf("%s parameter typed %s, want Any", fi.Fn.Name, fi.Sig.Types[0])
		}
		if !types.IsAny(fi.Sig.Return) {
			t.Fatalf("%s return typed %s, want Any", fi.Fn.Name, fi.Sig.Return)
		}
	}
	if len(tp.Sites) != 0 {
		t.Fatalf("uninformative observations were recorded: %v", tp.Sites)
	}
}

func TestEngineOverloadReturnsJoin(t *testing.T) {
	// Two methods of one name; the merged signature used at call sites
	// carries the join of both returns, while each body keeps its own.
	prog := &ir.Program{
		Functions: []*ir.Function{
			{Name: "area", Body: &ir.Block{Stmts: []ir.Statement{
				&ir.ReturnStatement{Value: &ir.IntLit{Value: 1}},
			}}},
			{Name: "area", Body: &ir.Block{Stmts: []ir.Statement{
				&ir.ReturnStatement{Value: &ir.FloatLit{Value: 2.5}},
			}}},
		},
		Entry: &ir.Block{},
	}

	tp := New(prog, testRegistry(t), nil, config.DefaultOptions()).Run()
	if got := tp.Functions[0].Sig.Return; got.String() != "Int64" {
		t.Fatalf("first overload return %s, want Int64", got)
	}
	if got := tp.Functions[1].Sig.Return; got.String() != "Float64" {
		t.Fatalf("second overload return %s, want Float64", got)
	}
	if got := tp.Signatures()["area"].Return; got.String() != "Float64" {
		t.Fatalf("merged return %s, want Float64", got)
	}
}

func TestEngineCollectionIsIdempotentAtFixpoint(t *testing.T) {
	prog := &ir.Program{
		Functions: []*ir.Function{{
			Name:   "inc",
			Params: []ir.Param{{Name: "x"}},
			Body: &ir.Block{Stmts: []ir.Statement{
				&ir.ReturnStatement{Value: &ir.BinaryExpr{
					Op:   "+",
					Left: &ir.Ident{Name: "x"}, Right: &ir.IntLit{Value: 1},
				}},
			}},
		}},
		Entry: &ir.Block{Stmts: []ir.Statement{
			&ir.ExprStatement{E: call("inc", &ir.IntLit{Value: 41})},
		}},
	}

	e := New(prog, testRegistry(t), nil, config.DefaultOptions())
	tp := e.Run()

	// Re-collecting against the stabilized table reproduces it exactly.
	again := e.collectPass(tp.Sites)
	if !again.Equal(tp.Sites) {
		t.Fatalf("collection moved past the fixpoint:\nbefore %snow %s", tp.Sites, again)
	}
}

func TestEngineDefaultsIterationBudget(t *testing.T) {
	e := New(emptyProgram(), testRegistry(t), nil, config.Options{})
	if e.opts.MaxIterations != config.DefaultMaxIterations {
		t.Fatalf("MaxIterations defaulted to %d", e.opts.MaxIterations)
	}
}

func TestCallSiteTableEquality(t *testing.T) {
	i64 := types.Prim(types.Int64)
	f64 := types.Prim(types.Float64)

	a := NewCallSiteTable()
	a.Add("f", ArgVector{i64})
	a.Add("f", ArgVector{f64})

	b := NewCallSiteTable()
	b.Add("f", ArgVector{i64})
	b.Add("f", ArgVector{f64})
	if !a.Equal(b) {
		t.Fatal("identical tables compare unequal")
	}

	// Order matters per function.
	c := NewCallSiteTable()
	c.Add("f", ArgVector{f64})
	c.Add("f", ArgVector{i64})
	if a.Equal(c) {
		t.Fatal("reordered tables compare equal")
	}

	b.Add("g", ArgVector{i64})
	if a.Equal(b) {
		t.Fatal("tables with different names compare equal")
	}
}
