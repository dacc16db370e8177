// Package meshfile implements an in-memory model of a triangle mesh,
// along with ingestion of the model from Wavefront OBJ text.
//
// The model is consumed by the binmesh package, which encodes it into a
// user-declared binary layout described by the spec package.
package meshfile

import (
	"fmt"
)

// Mesh is a parsed triangle-mesh model.
//
// Face indices are 1-based, as they appear in OBJ files; no renumbering
// is performed. FaceNormals and FaceTexcoords always have the same
// outer length as Faces, with zero-filled entries where the source had
// no normal or texcoord indices. Within one face, the three index
// tuples have the same number of corners.
type Mesh struct {
	Positions [][3]float64
	Normals   [][3]float64
	Texcoords [][2]float64

	Faces         [][]uint32
	FaceNormals   [][]uint32
	FaceTexcoords [][]uint32
}

// Validate checks the structural invariants of the mesh: the three
// face-related arrays have equal outer lengths, and the corner count of
// each face is consistent across them.
func (m *Mesh) Validate() error {
	if len(m.FaceNormals) != len(m.Faces) {
		return fmt.Errorf("mesh: %d face normal tuples for %d faces", len(m.FaceNormals), len(m.Faces))
	}
	if len(m.FaceTexcoords) != len(m.Faces) {
		return fmt.Errorf("mesh: %d face texcoord tuples for %d faces", len(m.FaceTexcoords), len(m.Faces))
	}
	for i, face := range m.Faces {
		if len(m.FaceNormals[i]) != len(face) || len(m.FaceTexcoords[i]) != len(face) {
			return fmt.Errorf("mesh: face %d has inconsistent corner counts", i)
		}
	}
	return nil
}
