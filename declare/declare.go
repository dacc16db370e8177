// The declare package is used to generate spec structures in a
// declarative style. Declarations are plain data: names for types, byte
// orders, and face layouts are resolved and validated only when Declare
// is called.
//
// The easiest way to use this package is to import it directly into the
// current package:
//
//	import . "github.com/meshkit/meshfile/declare"
//
// This allows the package's identifiers to be used directly without a
// qualifier:
//
//	f, err := Format("example", "big", "sequential",
//	    Block("vertex_data",
//	        Attr("vertex_count", "uint32"),
//	        Attr("position", "float", 3),
//	    ),
//	    Block("face_data",
//	        Attr("face_count", "uint32"),
//	        Attr("face", "uint32", 3),
//	    ),
//	).Declare()
package declare

import (
	"fmt"

	"github.com/meshkit/meshfile/spec"
)

// An Attribute declares a spec.Attribute.
type Attribute struct {
	Name string
	Type string
	Size int
}

// Attr declares an attribute of the given name and type. At most one
// size may be given; the default cardinality is 1.
func Attr(name, typ string, size ...int) Attribute {
	a := Attribute{Name: name, Type: typ, Size: 1}
	if len(size) > 0 {
		a.Size = size[0]
	}
	return a
}

// Declare resolves the declaration into a validated spec.Attribute.
func (d Attribute) Declare() (spec.Attribute, error) {
	typ := spec.TypeFromString(d.Type)
	if typ == spec.TypeInvalid {
		return spec.Attribute{}, fmt.Errorf("attribute %q: unknown data type %q", d.Name, d.Type)
	}
	return spec.NewAttributeSize(d.Name, typ, d.Size)
}

// A Blk declares a spec.Block.
type Blk struct {
	Name       string
	Attributes []Attribute
	Terminator *Attribute
}

// Block declares a block containing the given attributes in order.
func Block(name string, attrs ...Attribute) Blk {
	return Blk{Name: name, Attributes: attrs}
}

// Terminated returns the block declaration with term declared as its
// terminator.
func (d Blk) Terminated(term Attribute) Blk {
	d.Terminator = &term
	return d
}

// Declare resolves the declaration into a validated spec.Block.
func (d Blk) Declare() (spec.Block, error) {
	attrs := make([]spec.Attribute, len(d.Attributes))
	for i, da := range d.Attributes {
		a, err := da.Declare()
		if err != nil {
			return spec.Block{}, fmt.Errorf("block %q: %w", d.Name, err)
		}
		attrs[i] = a
	}
	block := spec.NewBlock(d.Name, attrs...)
	if d.Terminator != nil {
		term, err := d.Terminator.Declare()
		if err != nil {
			return spec.Block{}, fmt.Errorf("block %q: terminator: %w", d.Name, err)
		}
		block = block.Terminated(term)
	}
	return block, nil
}

// A Fmt declares a spec.FormatSpec.
type Fmt struct {
	Name       string
	ByteOrder  string
	FaceLayout string
	Blocks     []Blk
}

// Format declares a format specification with the given byte order
// ("little" or "big") and face layout ("sequential" or "separate").
func Format(name, byteOrder, faceLayout string, blocks ...Blk) Fmt {
	return Fmt{Name: name, ByteOrder: byteOrder, FaceLayout: faceLayout, Blocks: blocks}
}

// Declare evaluates the declaration, resolving every name and value
// into a validated spec.FormatSpec.
func (d Fmt) Declare() (*spec.FormatSpec, error) {
	order, err := spec.ByteOrderFromString(d.ByteOrder)
	if err != nil {
		return nil, err
	}
	layout, err := spec.FaceLayoutFromString(d.FaceLayout)
	if err != nil {
		return nil, err
	}
	blocks := make([]spec.Block, len(d.Blocks))
	for i, db := range d.Blocks {
		if blocks[i], err = db.Declare(); err != nil {
			return nil, err
		}
	}
	return spec.New(d.Name, blocks, order, layout)
}
