package binmesh

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/meshkit/meshfile/errors"
	"github.com/meshkit/meshfile/spec"
	"golang.org/x/crypto/blake2b"
)

// Dump is the structured record tree produced by decoding: one entry
// per block, one field per attribute, in stream order. It is a
// diagnostic artifact, not a re-ingestible format.
type Dump struct {
	// Format, Order, and Layout echo the specification that drove the
	// decode.
	Format string
	Order  spec.ByteOrder
	Layout spec.FaceLayout

	// Digest is a BLAKE2b-256 digest of the decoded stream, set when
	// the dump was produced by DumpText. It describes the input bytes,
	// not the wire format, which carries no checksum.
	Digest []byte

	Blocks []BlockDump
}

// BlockDump holds the decoded fields of one block.
type BlockDump struct {
	Name   string
	Fields []Field
}

// Field is one decoded attribute: a scalar, tuple, or array value.
type Field struct {
	Name  string
	Value Value
}

// Block returns the decoded block of the given name, or nil.
func (d *Dump) Block(name string) *BlockDump {
	for i := range d.Blocks {
		if d.Blocks[i].Name == name {
			return &d.Blocks[i]
		}
	}
	return nil
}

// Field returns the first decoded field of the given name, or nil.
func (b *BlockDump) Field(name string) *Field {
	for i := range b.Fields {
		if b.Fields[i].Name == name {
			return &b.Fields[i]
		}
	}
	return nil
}

// WriteText renders the dump as indented, human-readable text.
func (d *Dump) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "File format: %s\n", d.Format)
	fmt.Fprintf(bw, "Byte order: %s\n", d.Order)
	fmt.Fprintf(bw, "Face layout: %s\n", d.Layout)
	if d.Digest != nil {
		fmt.Fprintf(bw, "Digest: %x\n", d.Digest)
	}
	for _, b := range d.Blocks {
		bw.WriteByte('\n')
		fmt.Fprintf(bw, "%s:\n", b.Name)
		for _, f := range b.Fields {
			fmt.Fprintf(bw, "  %s:\n", f.Name)
			bw.WriteString("    ")
			bw.WriteString(f.Value.String())
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// DumpText decodes r according to f and writes a readable rendition of
// the stream to w, prefixed with the format description and a
// BLAKE2b-256 digest of the input bytes.
func (d Decoder) DumpText(w io.Writer, r io.Reader, f *spec.FormatSpec) (warn, err error) {
	if w == nil {
		return nil, errors.New("nil writer")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dump, warn, err := d.Decode(bytes.NewReader(data), f)
	if err != nil {
		return warn, err
	}
	sum := blake2b.Sum256(data)
	dump.Digest = sum[:]
	return warn, dump.WriteText(w)
}
