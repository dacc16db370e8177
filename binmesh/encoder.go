package binmesh

import (
	"encoding/binary"
	"io"

	"github.com/anaminus/parse"
	"github.com/meshkit/meshfile"
	"github.com/meshkit/meshfile/errors"
	"github.com/meshkit/meshfile/spec"
)

// Encoder encodes a mesh model into the binary layout declared by a
// format specification.
type Encoder struct {
	// Strings resolves values for string-typed attributes, keyed by
	// attribute name. A nil resolver yields the empty string for every
	// string attribute.
	Strings func(name string) string
}

// Encode walks f block by block, attribute by attribute, and writes the
// mesh to w in the declared layout.
//
// Attributes whose names match no recognized pattern are zero-filled;
// each such attribute is reported through warn as a ZeroFillWarning.
func (e Encoder) Encode(w io.Writer, f *spec.FormatSpec, m *meshfile.Mesh) (warn, err error) {
	if w == nil {
		return nil, errors.New("nil writer")
	}
	if f == nil {
		return nil, errors.New("nil format")
	}
	if m == nil {
		return nil, errors.New("nil mesh")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	order := f.Order.Binary()
	fw := parse.NewBinaryWriter(w)
	var warns errors.Errors

	for bi := range f.Blocks {
		block := &f.Blocks[bi]

		// Under the sequential layout, the first face-corner attribute
		// consumes all three face streams; the streams are then drained
		// for the rest of the block.
		seqDrained := false

		for ai := range block.Attributes {
			attr := block.Attributes[ai]
			switch role := attr.Role(); role.Kind {
			case spec.RoleDynamic:
				writeDynamic(fw, order, attr, role.Stem, m)

			case spec.RoleFaceCorner:
				if f.Layout == spec.Separate {
					writeIndexStream(fw, order, attr, faceStream(m, role.Corner))
					break
				}
				if seqDrained {
					break
				}
				writeInterleaved(fw, order, faceGroup(block.Attributes[ai:]), m)
				seqDrained = true

			case spec.RoleCount:
				writeScalar(fw, order, attr.Type, float64(stemLen(m, role.Stem)))

			case spec.RoleString:
				var s string
				if e.Strings != nil {
					s = e.Strings(attr.Name)
				}
				p, err := spec.PackString(s, f.StringLength, order)
				if fw.Add(0, err) {
					break
				}
				fw.Bytes(p)

			case spec.RoleScalar:
				for k := 0; k < attr.Size; k++ {
					writeScalar(fw, order, attr.Type, 0)
				}
				warns = warns.Append(ZeroFillWarning{Block: block.Name, Attr: attr.Name})
			}
			if fw.Err() != nil {
				return warns.Return(), fw.Err()
			}
		}

		if term := block.Terminator; term != nil {
			if term.Type == spec.TypeString {
				p, err := spec.PackString("", f.StringLength, order)
				if !fw.Add(0, err) {
					fw.Bytes(p)
				}
			} else {
				writeScalar(fw, order, term.Type, 0)
			}
			if fw.Err() != nil {
				return warns.Return(), fw.Err()
			}
		}
	}

	if _, err := fw.End(); err != nil {
		return warns.Return(), err
	}
	return warns.Return(), nil
}

// writeDynamic emits every entry of the mesh array the stem denotes.
func writeDynamic(fw *parse.BinaryWriter, order binary.ByteOrder, attr spec.Attribute, stem string, m *meshfile.Mesh) {
	switch stem {
	case "vertex":
		for _, p := range m.Positions {
			writeFloatTuple(fw, order, attr, p[:])
		}
	case "normal":
		for _, p := range m.Normals {
			writeFloatTuple(fw, order, attr, p[:])
		}
	case "texcoord":
		for _, p := range m.Texcoords {
			writeFloatTuple(fw, order, attr, p[:])
		}
	}
}

// writeFloatTuple packs one entry of the attribute, taking cardinality
// elements from vals and zero-padding past its end.
func writeFloatTuple(fw *parse.BinaryWriter, order binary.ByteOrder, attr spec.Attribute, vals []float64) bool {
	for k := 0; k < attr.Size; k++ {
		var x float64
		if k < len(vals) {
			x = vals[k]
		}
		if writeScalar(fw, order, attr.Type, x) {
			return true
		}
	}
	return false
}

func writeIndexTuple(fw *parse.BinaryWriter, order binary.ByteOrder, attr spec.Attribute, idx []uint32) bool {
	for k := 0; k < attr.Size; k++ {
		var x float64
		if k < len(idx) {
			x = float64(idx[k])
		}
		if writeScalar(fw, order, attr.Type, x) {
			return true
		}
	}
	return false
}

func writeIndexStream(fw *parse.BinaryWriter, order binary.ByteOrder, attr spec.Attribute, stream [][]uint32) {
	for _, idx := range stream {
		if writeIndexTuple(fw, order, attr, idx) {
			return
		}
	}
}

// writeInterleaved emits the face streams of the group one face index
// at a time: for face i, each member of the group emits its own tuple
// before any member emits tuple i+1.
func writeInterleaved(fw *parse.BinaryWriter, order binary.ByteOrder, group []faceMember, m *meshfile.Mesh) {
	count := len(m.Faces)
	for i := 0; i < count; i++ {
		for _, g := range group {
			if writeIndexTuple(fw, order, g.attr, faceStream(m, g.corner)[i]) {
				return
			}
		}
	}
}

// faceMember pairs a face-corner attribute with its resolved stream.
type faceMember struct {
	attr   spec.Attribute
	corner spec.Corner
}

// faceGroup resolves, once per block, which face-corner attributes take
// part in a sequential interleave: the anchor attribute (attrs[0]),
// followed by the first later occurrence of each other corner kind. The
// same rule runs on both the encode and decode paths, so the interleave
// order is identical by construction.
func faceGroup(attrs []spec.Attribute) []faceMember {
	var group []faceMember
	var seen [3]bool
	for _, a := range attrs {
		role := a.Role()
		if role.Kind != spec.RoleFaceCorner || seen[role.Corner] {
			continue
		}
		seen[role.Corner] = true
		group = append(group, faceMember{attr: a, corner: role.Corner})
	}
	return group
}

func faceStream(m *meshfile.Mesh, corner spec.Corner) [][]uint32 {
	switch corner {
	case spec.CornerNormal:
		return m.FaceNormals
	case spec.CornerTexcoord:
		return m.FaceTexcoords
	}
	return m.Faces
}

// stemLen reports the current length of the mesh array a count
// attribute describes.
func stemLen(m *meshfile.Mesh, stem string) int {
	switch stem {
	case "vertex":
		return len(m.Positions)
	case "normal":
		return len(m.Normals)
	case "texcoord":
		return len(m.Texcoords)
	case "face":
		return len(m.Faces)
	}
	return 0
}
