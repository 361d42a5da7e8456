package dispatch

import (
	"errors"
	"strings"
	"testing"

	"github.com/velalang/vela/internal/registry"
	"github.com/velalang/vela/internal/types"
)

func numericRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	b := registry.NewBuilder()
	b.DeclareAbstract(registry.AbstractInfo{Name: "Number"})
	b.DeclareAbstract(registry.AbstractInfo{Name: "Integer", Parent: "Number"})
	b.DeclareAbstract(registry.AbstractInfo{Name: "AbstractFloat", Parent: "Number"})
	b.DeclareLeafParent("Int64", "Integer")
	b.DeclareLeafParent("Int32", "Integer")
	b.DeclareLeafParent("Float64", "AbstractFloat")
	b.DeclareStruct(registry.StructInfo{
		Name:   "Rational",
		Parent: "Number",
		Fields: []registry.Field{
			{Name: "num", Type: types.Prim(types.Int64)},
			{Name: "den", Type: types.Prim(types.Int64)},
		},
	})
	b.DeclareStruct(registry.StructInfo{
		Name:       "Point",
		TypeParams: []string{"T"},
		Fields: []registry.Field{
			{Name: "x", Type: types.TypeVar{Name: "T"}},
			{Name: "y", Type: types.TypeVar{Name: "T"}},
		},
	})
	b.DeclareStruct(registry.StructInfo{
		Name:       "Matrix",
		TypeParams: []string{"T", "N"},
	})
	return b.Seal()
}

func TestSpecificityOrdersCandidates(t *testing.T) {
	tbl := NewTable(numericRegistry(t))

	anyC := tbl.Register("describe", []types.Type{types.Prim(types.Any)}, nil, nil, nil)
	absC := tbl.Register("describe", []types.Type{types.Struct{Name: "Integer"}}, nil, nil, nil)
	conC := tbl.Register("describe", []types.Type{types.Prim(types.Int64)}, nil, nil, nil)

	if !(conC.Specificity > absC.Specificity && absC.Specificity > anyC.Specificity) {
		t.Fatalf("specificity order wrong: any=%d abstract=%d concrete=%d",
			anyC.Specificity, absC.Specificity, conC.Specificity)
	}

	got, err := tbl.Resolve([]string{"describe"}, []types.Type{types.Prim(types.Int64)})
	if err != nil {
		t.Fatal(err)
	}
	if got != conC {
		t.Fatalf("Int64 argument resolved to %v, want the concrete candidate", got.Params)
	}

	got, err = tbl.Resolve([]string{"describe"}, []types.Type{types.Prim(types.Int32)})
	if err != nil {
		t.Fatal(err)
	}
	if got != absC {
		t.Fatalf("Int32 argument resolved to %v, want the abstract Integer candidate", got.Params)
	}

	got, err = tbl.Resolve([]string{"describe"}, []types.Type{types.Prim(types.String)})
	if err != nil {
		t.Fatal(err)
	}
	if got != anyC {
		t.Fatalf("String argument resolved to %v, want the Any fallback", got.Params)
	}
}

func TestAbstractHierarchyMatching(t *testing.T) {
	tbl := NewTable(numericRegistry(t))
	numC := tbl.Register("abs", []types.Type{types.Struct{Name: "Number"}}, nil, nil, nil)

	for _, arg := range []types.Type{
		types.Prim(types.Int64),
		types.Prim(types.Float64),
		types.Struct{Name: "Rational"},
	} {
		got, err := tbl.Resolve([]string{"abs"}, []types.Type{arg})
		if err != nil {
			t.Fatalf("abs(%s): %v", arg, err)
		}
		if got != numC {
			t.Fatalf("abs(%s) resolved to unexpected candidate", arg)
		}
	}

	if _, err := tbl.Resolve([]string{"abs"}, []types.Type{types.Prim(types.String)}); err == nil {
		t.Fatal("abs(String) matched the Number candidate")
	}
}

func TestFirstRegisteredWinsTies(t *testing.T) {
	tbl := NewTable(numericRegistry(t))
	first := tbl.Register("f", []types.Type{types.Prim(types.Int64)}, nil, nil, nil)
	tbl.Register("f", []types.Type{types.Prim(types.Int64)}, nil, nil, nil)

	got, err := tbl.Resolve([]string{"f"}, []types.Type{types.Prim(types.Int64)})
	if err != nil {
		t.Fatal(err)
	}
	if got != first {
		t.Fatal("tie between identical signatures did not keep the first registered")
	}
}

func TestArityFilter(t *testing.T) {
	tbl := NewTable(numericRegistry(t))
	tbl.Register("g", []types.Type{types.Prim(types.Any), types.Prim(types.Any)}, nil, nil, nil)

	_, err := tbl.Resolve([]string{"g"}, []types.Type{types.Prim(types.Int64)})
	if err == nil {
		t.Fatal("one-argument call matched a two-parameter candidate")
	}
	var nm *NoMethodError
	if !errors.As(err, &nm) {
		t.Fatalf("error is %T, want *NoMethodError", err)
	}
	if !strings.Contains(nm.Error(), "g(Int64)") {
		t.Fatalf("error text %q does not name the failed call", nm.Error())
	}
}

func TestParametricFamilyMatching(t *testing.T) {
	tbl := NewTable(numericRegistry(t))

	// norm(p Point{T}) matches any instantiation of the family.
	generic := tbl.Register("norm",
		[]types.Type{types.Struct{Name: "Point"}}, nil, []string{"T"}, nil)
	// scale(p Point{Float64}) matches only that exact instantiation.
	exact := tbl.Register("scale",
		[]types.Type{types.Struct{Name: "Point{Float64}"}}, nil, nil, nil)

	got, err := tbl.Resolve([]string{"norm"}, []types.Type{types.Struct{Name: "Point{Int64}"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != generic {
		t.Fatal("Point{Int64} did not match the unbound parametric candidate")
	}

	got, err = tbl.Resolve([]string{"scale"}, []types.Type{types.Struct{Name: "Point{Float64}"}})
	if err != nil || got != exact {
		t.Fatalf("Point{Float64} against the bound candidate: got %v, err %v", got, err)
	}
	if _, err := tbl.Resolve([]string{"scale"}, []types.Type{types.Struct{Name: "Point{Int64}"}}); err == nil {
		t.Fatal("Point{Int64} matched a candidate bound to Point{Float64}")
	}

	// The unbound parametric candidate outranks Any but not a bound one.
	anyRank := tbl.paramRank(types.Prim(types.Any), nil)
	unboundRank := tbl.paramRank(types.Struct{Name: "Point"}, []string{"T"})
	boundRank := tbl.paramRank(types.Struct{Name: "Point{Float64}"}, nil)
	if !(boundRank > unboundRank && unboundRank > anyRank) {
		t.Fatalf("parametric ranks wrong: any=%d unbound=%d bound=%d", anyRank, unboundRank, boundRank)
	}
}

func TestTypeValueParameters(t *testing.T) {
	tbl := NewTable(numericRegistry(t))

	// zero(::Type{T}) accepts any type value.
	generic := tbl.Register("zero",
		[]types.Type{types.TypeOf{T: types.TypeVar{Name: "T"}}}, nil, []string{"T"}, nil)
	// parse(::Type{Number}, s) accepts type values describing Number subtypes.
	bounded := tbl.Register("parse",
		[]types.Type{types.TypeOf{T: types.Struct{Name: "Number"}}, types.Prim(types.String)},
		nil, nil, nil)

	got, err := tbl.Resolve([]string{"zero"}, []types.Type{types.TypeOf{T: types.Prim(types.Float64)}})
	if err != nil || got != generic {
		t.Fatalf("zero(Float64 type value): got %v, err %v", got, err)
	}
	if _, err := tbl.Resolve([]string{"zero"}, []types.Type{types.Prim(types.Float64)}); err == nil {
		t.Fatal("a plain value matched a Type{T} parameter")
	}

	args := []types.Type{types.TypeOf{T: types.Prim(types.Int64)}, types.Prim(types.String)}
	got, err = tbl.Resolve([]string{"parse"}, args)
	if err != nil || got != bounded {
		t.Fatalf("parse(Int64 type value, String): got %v, err %v", got, err)
	}
	args[0] = types.TypeOf{T: types.Prim(types.String)}
	if _, err := tbl.Resolve([]string{"parse"}, args); err == nil {
		t.Fatal("Type{String} matched a Type{Number} parameter")
	}
}

func TestUnionParameterMatching(t *testing.T) {
	tbl := NewTable(numericRegistry(t))
	u := types.NewUnion(types.Prim(types.Int64), types.Prim(types.String))
	c := tbl.Register("h", []types.Type{u}, nil, nil, nil)

	for _, arg := range []types.Type{types.Prim(types.Int64), types.Prim(types.String)} {
		got, err := tbl.Resolve([]string{"h"}, []types.Type{arg})
		if err != nil || got != c {
			t.Fatalf("h(%s): got %v, err %v", arg, got, err)
		}
	}
	if _, err := tbl.Resolve([]string{"h"}, []types.Type{types.Prim(types.Float64)}); err == nil {
		t.Fatal("Float64 matched Union{Int64,String}")
	}
}

func TestContainerParameterMatching(t *testing.T) {
	tbl := NewTable(numericRegistry(t))
	vecC := tbl.Register("sum",
		[]types.Type{types.Array{Elem: types.Prim(types.Int64), Rank: 1}}, nil, nil, nil)
	matC := tbl.Register("sum",
		[]types.Type{types.Array{Elem: types.Prim(types.Int64), Rank: 2}}, nil, nil, nil)

	got, err := tbl.Resolve([]string{"sum"},
		[]types.Type{types.Array{Elem: types.Prim(types.Int64), Rank: 2}})
	if err != nil || got != matC {
		t.Fatalf("rank-2 array: got %v, err %v", got, err)
	}
	got, err = tbl.Resolve([]string{"sum"},
		[]types.Type{types.Array{Elem: types.Prim(types.Int64), Rank: 1}})
	if err != nil || got != vecC {
		t.Fatalf("rank-1 array: got %v, err %v", got, err)
	}
	if _, err := tbl.Resolve([]string{"sum"},
		[]types.Type{types.Array{Elem: types.Prim(types.Float64), Rank: 1}}); err == nil {
		t.Fatal("Float64 elements matched an Int64 array parameter")
	}
}

func TestOperatorAliasLookup(t *testing.T) {
	tbl := NewTable(numericRegistry(t))
	c := tbl.Register("+", []types.Type{types.Struct{Name: "Rational"}, types.Struct{Name: "Rational"}}, nil, nil, nil)

	got, err := tbl.Resolve([]string{"+", "add"},
		[]types.Type{types.Struct{Name: "Rational"}, types.Struct{Name: "Rational"}})
	if err != nil || got != c {
		t.Fatalf("alias lookup: got %v, err %v", got, err)
	}
}

func TestBindTypeParams(t *testing.T) {
	tbl := NewTable(numericRegistry(t))

	elem := tbl.Register("first",
		[]types.Type{types.Array{Elem: types.TypeVar{Name: "T"}, Rank: 1}},
		nil, []string{"T"}, nil)
	b := tbl.BindTypeParams(elem, []types.Type{types.Array{Elem: types.Prim(types.Float64), Rank: 1}})
	if got := b["T"]; got.IsValue() || !types.Equal(got.Type, types.Prim(types.Float64)) {
		t.Fatalf("T bound to %+v, want Float64", got)
	}

	pt := tbl.Register("swap",
		[]types.Type{types.Struct{Name: "Point{T}"}}, nil, []string{"T"}, nil)
	b = tbl.BindTypeParams(pt, []types.Type{types.Struct{Name: "Point{Int64}"}})
	if got := b["T"]; got.IsValue() || !types.Equal(got.Type, types.Prim(types.Int64)) {
		t.Fatalf("T bound to %+v, want Int64", got)
	}

	// Value-level parameters come back as constants.
	mat := tbl.Register("rank",
		[]types.Type{types.Struct{Name: "Matrix{T,N}"}}, nil, []string{"T", "N"}, nil)
	b = tbl.BindTypeParams(mat, []types.Type{types.Struct{Name: "Matrix{Float64,2}"}})
	if got := b["T"]; got.IsValue() || !types.Equal(got.Type, types.Prim(types.Float64)) {
		t.Fatalf("T bound to %+v, want Float64", got)
	}
	if got := b["N"]; !got.IsValue() || got.Const != "2" {
		t.Fatalf("N bound to %+v, want the constant 2", got)
	}

	// A variable pinned by two arguments keeps its first binding.
	pair := tbl.Register("both",
		[]types.Type{types.TypeVar{Name: "T"}, types.TypeVar{Name: "T"}},
		nil, []string{"T"}, nil)
	b = tbl.BindTypeParams(pair, []types.Type{types.Prim(types.Int64), types.Prim(types.Float64)})
	if got := b["T"]; !types.Equal(got.Type, types.Prim(types.Int64)) {
		t.Fatalf("T bound to %+v, want the first argument's Int64", got)
	}
}

func TestCachePositiveOnly(t *testing.T) {
	tbl := NewTable(numericRegistry(t))
	cache := NewCache()

	args := []types.Type{types.Prim(types.Int64)}
	if _, err := tbl.ResolveCached(cache, 7, []string{"f"}, args); err == nil {
		t.Fatal("resolution succeeded with an empty table")
	}
	if cache.Len() != 0 {
		t.Fatal("a failed resolution was cached")
	}

	c := tbl.Register("f", args, nil, nil, nil)
	got, err := tbl.ResolveCached(cache, 7, []string{"f"}, args)
	if err != nil || got != c {
		t.Fatalf("post-registration resolve: got %v, err %v", got, err)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache holds %d entries, want 1", cache.Len())
	}

	// The hit path returns the same candidate by stored index.
	got, err = tbl.ResolveCached(cache, 7, []string{"f"}, args)
	if err != nil || got != c {
		t.Fatalf("cache hit: got %v, err %v", got, err)
	}

	// Different operand types at the same site miss independently.
	if _, err := tbl.ResolveCached(cache, 7, []string{"f"}, []types.Type{types.Prim(types.Float64)}); err == nil {
		t.Fatal("Float64 operand resolved against an Int64-only table")
	}
	if cache.Len() != 1 {
		t.Fatal("a failed per-signature lookup was cached")
	}

	cache.Reset()
	if cache.Len() != 0 {
		t.Fatal("Reset left entries behind")
	}
}
