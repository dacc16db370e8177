// Package binmesh implements an encoder and decoder for user-declared
// binary mesh formats.
//
// A format is declared at the data level as a spec.FormatSpec: ordered
// blocks of named, typed attributes, plus a byte order and a face
// layout. The codec infers each attribute's role from its resolved
// spec.Role: counts carry array lengths, dynamic attributes emit whole
// mesh arrays, face-corner attributes emit per-corner index streams
// (interleaved or contiguous depending on the layout), and string
// attributes carry length-prefixed text. The wire format is exactly
// what the specification declares; there is no magic number, version
// field, or checksum.
//
// The easiest way to encode and decode is through the Encode and Decode
// functions. Encoding consumes a meshfile.Mesh; decoding produces a
// structured Dump for inspection.
package binmesh

import (
	"io"

	"github.com/meshkit/meshfile"
	"github.com/meshkit/meshfile/spec"
)

// Encode writes m to w in the layout declared by f, using a default
// Encoder.
func Encode(w io.Writer, f *spec.FormatSpec, m *meshfile.Mesh) (warn, err error) {
	return Encoder{}.Encode(w, f, m)
}

// Decode reads a binary stream from r according to f, using a default
// Decoder.
func Decode(r io.Reader, f *spec.FormatSpec) (dump *Dump, warn, err error) {
	return Decoder{}.Decode(r, f)
}
