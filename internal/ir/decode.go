package ir

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/velalang/vela/internal/types"
)

// DecodeProgram parses the YAML encoding of a lowered program. Statements
// and expressions are mappings with exactly one kind key ("assign",
// "binary", "call", ...); declarations use plain field mappings. Call and
// broadcast nodes are assigned site identities in decode order.
func DecodeProgram(data []byte) (*Program, error) {
	var file fileProgram
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}

	d := &decoder{}
	prog := &Program{}
	for _, s := range file.Structs {
		decl := StructDecl{
			Name:       s.Name,
			Mutable:    s.Mutable,
			Parent:     s.Parent,
			TypeParams: s.TypeParams,
		}
		for _, f := range s.Fields {
			decl.Fields = append(decl.Fields, FieldDecl{Name: f.Name, Type: parseAnn(f.Type)})
		}
		prog.Structs = append(prog.Structs, decl)
	}
	for _, a := range file.Abstracts {
		prog.Abstracts = append(prog.Abstracts, AbstractDecl{Name: a.Name, Parent: a.Parent})
	}
	for _, f := range file.Functions {
		fn := &Function{
			Name:       f.Name,
			TypeParams: f.TypeParams,
			ReturnAnn:  parseAnn(f.Returns),
		}
		for _, p := range f.Params {
			fn.Params = append(fn.Params, Param{Name: p.Name, Ann: parseAnn(p.Type)})
		}
		body, err := d.block(f.Body)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		fn.Body = body
		prog.Functions = append(prog.Functions, fn)
	}
	entry, err := d.block(file.Entry)
	if err != nil {
		return nil, fmt.Errorf("entry block: %w", err)
	}
	prog.Entry = entry
	return prog, nil
}

// parseAnn turns an optional type annotation string into a lattice element.
// The empty string is the absent annotation.
func parseAnn(s string) types.Type {
	if s == "" {
		return nil
	}
	return types.Parse(s)
}

type fileProgram struct {
	Structs   []fileStruct   `yaml:"structs"`
	Abstracts []fileAbstract `yaml:"abstracts"`
	Functions []fileFunction `yaml:"functions"`
	Entry     []yaml.Node    `yaml:"entry"`
}

type fileStruct struct {
	Name       string      `yaml:"name"`
	Mutable    bool        `yaml:"mutable"`
	Parent     string      `yaml:"parent"`
	TypeParams []string    `yaml:"type_params"`
	Fields     []fileField `yaml:"fields"`
}

type fileField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type fileAbstract struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}

type fileFunction struct {
	Name       string      `yaml:"name"`
	Params     []fileParam `yaml:"params"`
	TypeParams []string    `yaml:"type_params"`
	Returns    string      `yaml:"returns"`
	Body       []yaml.Node `yaml:"body"`
}

type fileParam struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// decoder threads the site counter through statement and expression
// decoding.
type decoder struct {
	nextSite uint32
}

func (d *decoder) site() uint32 {
	d.nextSite++
	return d.nextSite
}

func (d *decoder) block(nodes []yaml.Node) (*Block, error) {
	b := &Block{}
	for i := range nodes {
		s, err := d.stmt(&nodes[i])
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

// kindOf extracts the single kind key of a node mapping.
func kindOf(n *yaml.Node) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, fmt.Errorf("line %d: node must be a single-key mapping", n.Line)
	}
	return n.Content[0].Value, n.Content[1], nil
}

func (d *decoder) stmt(n *yaml.Node) (Statement, error) {
	kind, body, err := kindOf(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "expr":
		e, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		return &ExprStatement{E: e}, nil

	case "assign":
		var raw struct {
			Name  string    `yaml:"name"`
			Value yaml.Node `yaml:"value"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		v, err := d.expr(&raw.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStatement{Name: raw.Name, Value: v}, nil

	case "return":
		if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
			return &ReturnStatement{}, nil
		}
		v, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		return &ReturnStatement{Value: v}, nil

	case "if":
		var raw struct {
			Cond yaml.Node   `yaml:"cond"`
			Then []yaml.Node `yaml:"then"`
			Else []yaml.Node `yaml:"else"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		cond, err := d.expr(&raw.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.block(raw.Then)
		if err != nil {
			return nil, err
		}
		s := &IfStatement{Cond: cond, Then: then}
		if raw.Else != nil {
			if s.Else, err = d.block(raw.Else); err != nil {
				return nil, err
			}
		}
		return s, nil

	case "while":
		var raw struct {
			Cond yaml.Node   `yaml:"cond"`
			Body []yaml.Node `yaml:"body"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		cond, err := d.expr(&raw.Cond)
		if err != nil {
			return nil, err
		}
		blk, err := d.block(raw.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStatement{Cond: cond, Body: blk}, nil

	case "for_range":
		var raw struct {
			Var  string      `yaml:"var"`
			From yaml.Node   `yaml:"from"`
			To   yaml.Node   `yaml:"to"`
			Body []yaml.Node `yaml:"body"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		from, err := d.expr(&raw.From)
		if err != nil {
			return nil, err
		}
		to, err := d.expr(&raw.To)
		if err != nil {
			return nil, err
		}
		blk, err := d.block(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ForRangeStatement{Var: raw.Var, From: from, To: to, Body: blk}, nil

	case "for_each":
		var raw struct {
			Var  string      `yaml:"var"`
			In   yaml.Node   `yaml:"in"`
			Body []yaml.Node `yaml:"body"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		iter, err := d.expr(&raw.In)
		if err != nil {
			return nil, err
		}
		blk, err := d.block(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ForEachStatement{Var: raw.Var, Iterable: iter, Body: blk}, nil

	case "let":
		var raw struct {
			Bindings []struct {
				Name  string    `yaml:"name"`
				Value yaml.Node `yaml:"value"`
			} `yaml:"bindings"`
			Body []yaml.Node `yaml:"body"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		s := &LetStatement{}
		for i := range raw.Bindings {
			v, err := d.expr(&raw.Bindings[i].Value)
			if err != nil {
				return nil, err
			}
			s.Bindings = append(s.Bindings, LetBinding{Name: raw.Bindings[i].Name, Value: v})
		}
		if s.Body, err = d.block(raw.Body); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("line %d: unknown statement kind %q", n.Line, kind)
}

func (d *decoder) expr(n *yaml.Node) (Expression, error) {
	kind, body, err := kindOf(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "int":
		var v int64
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		return &IntLit{Value: v}, nil

	case "big_int":
		var v string
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		return &BigIntLit{Text: v}, nil

	case "float":
		var v float64
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		return &FloatLit{Value: v}, nil

	case "bool":
		var v bool
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		return &BoolLit{Value: v}, nil

	case "string":
		var v string
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		return &StringLit{Value: v}, nil

	case "char":
		var v string
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		if len([]rune(v)) != 1 {
			return nil, fmt.Errorf("line %d: char literal %q must hold one rune", n.Line, v)
		}
		return &CharLit{Value: []rune(v)[0]}, nil

	case "nothing":
		return &NothingLit{}, nil

	case "missing":
		return &MissingLit{}, nil

	case "ident":
		var v string
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		return &Ident{Name: v}, nil

	case "type":
		var v string
		if err := body.Decode(&v); err != nil {
			return nil, wrapNode(n, err)
		}
		return &TypeLit{T: types.Parse(v)}, nil

	case "array":
		elems, err := d.exprList(body)
		if err != nil {
			return nil, err
		}
		return &ArrayLit{Elems: elems}, nil

	case "tuple":
		elems, err := d.exprList(body)
		if err != nil {
			return nil, err
		}
		return &TupleLit{Elems: elems}, nil

	case "range":
		var raw struct {
			From yaml.Node `yaml:"from"`
			To   yaml.Node `yaml:"to"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		from, err := d.expr(&raw.From)
		if err != nil {
			return nil, err
		}
		to, err := d.expr(&raw.To)
		if err != nil {
			return nil, err
		}
		return &RangeLit{From: from, To: to}, nil

	case "field":
		var raw struct {
			Of   yaml.Node `yaml:"of"`
			Name string    `yaml:"name"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		x, err := d.expr(&raw.Of)
		if err != nil {
			return nil, err
		}
		return &FieldAccess{X: x, Name: raw.Name}, nil

	case "index":
		var raw struct {
			Of yaml.Node `yaml:"of"`
			At yaml.Node `yaml:"at"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		x, err := d.expr(&raw.Of)
		if err != nil {
			return nil, err
		}
		idx, err := d.expr(&raw.At)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{X: x, Index: idx}, nil

	case "unary":
		var raw struct {
			Op string    `yaml:"op"`
			X  yaml.Node `yaml:"x"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		x, err := d.expr(&raw.X)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: raw.Op, X: x}, nil

	case "binary":
		var raw struct {
			Op    string    `yaml:"op"`
			Left  yaml.Node `yaml:"left"`
			Right yaml.Node `yaml:"right"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		left, err := d.expr(&raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(&raw.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: raw.Op, Left: left, Right: right}, nil

	case "if":
		var raw struct {
			Cond yaml.Node `yaml:"cond"`
			Then yaml.Node `yaml:"then"`
			Else yaml.Node `yaml:"else"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		cond, err := d.expr(&raw.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.expr(&raw.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.expr(&raw.Else)
		if err != nil {
			return nil, err
		}
		return &IfExpr{Cond: cond, Then: then, Else: els}, nil

	case "call":
		var raw struct {
			Name   string      `yaml:"name"`
			Args   []yaml.Node `yaml:"args"`
			Kwargs []struct {
				Name  string    `yaml:"name"`
				Value yaml.Node `yaml:"value"`
			} `yaml:"kwargs"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		call := &CallExpr{Name: raw.Name, Site: d.site()}
		for i := range raw.Args {
			a, err := d.expr(&raw.Args[i])
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, a)
		}
		for i := range raw.Kwargs {
			v, err := d.expr(&raw.Kwargs[i].Value)
			if err != nil {
				return nil, err
			}
			call.Kwargs = append(call.Kwargs, KwArg{Name: raw.Kwargs[i].Name, Value: v})
		}
		return call, nil

	case "broadcast":
		var raw struct {
			Name string      `yaml:"name"`
			Args []yaml.Node `yaml:"args"`
		}
		if err := body.Decode(&raw); err != nil {
			return nil, wrapNode(n, err)
		}
		bc := &BroadcastExpr{Name: raw.Name, Site: d.site()}
		for i := range raw.Args {
			a, err := d.expr(&raw.Args[i])
			if err != nil {
				return nil, err
			}
			bc.Args = append(bc.Args, a)
		}
		return bc, nil
	}
	return nil, fmt.Errorf("line %d: unknown expression kind %q", n.Line, kind)
}

func (d *decoder) exprList(n *yaml.Node) ([]Expression, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence", n.Line)
	}
	var out []Expression
	for i := range n.Content {
		e, err := d.expr(n.Content[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func wrapNode(n *yaml.Node, err error) error {
	return fmt.Errorf("line %d: %w", n.Line, err)
}
