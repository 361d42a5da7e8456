// Package bundle defines the typed-program artifact handed to the bytecode
// compiler: the inferred signatures, local and global type maps, and the
// method table, serialized with gob behind a magic header. Lattice types
// are stored in their canonical string form and re-parsed on load, so the
// wire format is independent of the in-memory representation.
package bundle

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"

	"github.com/velalang/vela/internal/dispatch"
	"github.com/velalang/vela/internal/infer"
	"github.com/velalang/vela/internal/types"
)

// Format:
// - Magic number (4 bytes): "VLAT"
// - Version (1 byte): 0x01
// - Gob-encoded Bundle data
const formatVersion byte = 0x01

var magic = [4]byte{'V', 'L', 'A', 'T'}

// Function is one inferred function signature with its local type map.
type Function struct {
	Name       string
	Params     []string
	ParamTypes []string
	Return     string
	Locals     map[string]string
}

// Method is one method-table candidate.
type Method struct {
	Name        string
	Params      []string
	Return      string
	TypeParams  []string
	Specificity int
}

// Bundle is the complete typed-program artifact.
type Bundle struct {
	// BuildID uniquely identifies one inference run.
	BuildID string

	// SourceFile is the IR file the bundle was built from.
	SourceFile string

	Functions []Function
	Globals   map[string]string
	Methods   []Method
}

// New builds a bundle from an inference result and a populated method
// table.
func New(tp *infer.TypedProgram, table *dispatch.Table, sourceFile string) *Bundle {
	b := &Bundle{
		BuildID:    uuid.NewString(),
		SourceFile: sourceFile,
		Globals:    make(map[string]string),
	}
	seen := make(map[string]bool)
	for _, fi := range tp.Functions {
		fn := Function{
			Name:   fi.Fn.Name,
			Params: append([]string(nil), fi.Sig.Params...),
			Return: typeName(fi.Sig.Return),
			Locals: make(map[string]string, len(fi.Locals)),
		}
		for _, t := range fi.Sig.Types {
			fn.ParamTypes = append(fn.ParamTypes, typeName(t))
		}
		for name, t := range fi.Locals {
			fn.Locals[name] = typeName(t)
		}
		b.Functions = append(b.Functions, fn)

		// Overloads share one candidate list; emit it once per name.
		if seen[fi.Fn.Name] {
			continue
		}
		seen[fi.Fn.Name] = true
		for _, c := range table.Candidates(fi.Fn.Name) {
			m := Method{
				Name:        c.Name,
				Return:      typeName(c.Return),
				TypeParams:  append([]string(nil), c.TypeParams...),
				Specificity: c.Specificity,
			}
			for _, p := range c.Params {
				m.Params = append(m.Params, typeName(p))
			}
			b.Methods = append(b.Methods, m)
		}
	}
	for name, t := range tp.Globals {
		b.Globals[name] = typeName(t)
	}
	return b
}

// Serialize converts the bundle to its binary format.
func (b *Bundle) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(magic[:])
	buf.WriteByte(formatVersion)
	if err := gob.NewEncoder(buf).Encode(b); err != nil {
		return nil, fmt.Errorf("bundle gob encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize reads a serialized bundle, validating the header.
func Deserialize(data []byte) (*Bundle, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("bundle data too short")
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, fmt.Errorf("invalid magic number, expected VLAT")
	}
	version := data[4]
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported bundle version: %d (this build supports version %d)",
			version, formatVersion)
	}
	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(data[5:])).Decode(&b); err != nil {
		return nil, fmt.Errorf("bundle gob decoding failed: %w", err)
	}
	if b.Globals == nil {
		b.Globals = make(map[string]string)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("bundle validation failed: %w", err)
	}
	return &b, nil
}

// Validate checks the structural integrity of a deserialized bundle.
func (b *Bundle) Validate() error {
	if b.BuildID == "" {
		return fmt.Errorf("bundle has no build ID")
	}
	if _, err := uuid.Parse(b.BuildID); err != nil {
		return fmt.Errorf("malformed build ID %q: %w", b.BuildID, err)
	}
	for _, f := range b.Functions {
		if len(f.Params) != len(f.ParamTypes) {
			return fmt.Errorf("function %s has %d parameter names but %d types",
				f.Name, len(f.Params), len(f.ParamTypes))
		}
	}
	return nil
}

// ParseType recovers a lattice element from its stored name.
func ParseType(name string) types.Type {
	if name == "" {
		return nil
	}
	return types.Parse(name)
}

// typeName is the canonical stored form; the absent type is the empty
// string.
func typeName(t types.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}
