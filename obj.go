package meshfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/meshkit/meshfile/errors"
)

// DecodeOBJ reads Wavefront OBJ text from r and builds a Mesh.
//
// Recognized lines are `v x y z`, `vn x y z`, `vt u v`, and `f` with
// per-corner references in any of the forms `i`, `i/j`, `i/j/k`, or
// `i//k`. Indices are kept 1-based as they appear in the file; absent
// texcoord and normal references are recorded as 0. Blank lines and
// unrecognized line types are ignored. Lines that are recognized but
// malformed are skipped and reported through warn.
func DecodeOBJ(r io.Reader) (m *Mesh, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}

	m = &Mesh{}
	var warns errors.Errors

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				warns = warns.Append(lineError(line, "v", err))
				continue
			}
			m.Positions = append(m.Positions, [3]float64{v[0], v[1], v[2]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				warns = warns.Append(lineError(line, "vn", err))
				continue
			}
			m.Normals = append(m.Normals, [3]float64{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				warns = warns.Append(lineError(line, "vt", err))
				continue
			}
			m.Texcoords = append(m.Texcoords, [2]float64{v[0], v[1]})
		case "f":
			if len(fields) < 2 {
				warns = warns.Append(lineError(line, "f", errors.New("no corners")))
				continue
			}
			verts := make([]uint32, 0, len(fields)-1)
			texs := make([]uint32, 0, len(fields)-1)
			norms := make([]uint32, 0, len(fields)-1)
			ok := true
			for _, corner := range fields[1:] {
				v, t, n, err := parseCorner(corner)
				if err != nil {
					warns = warns.Append(lineError(line, "f", err))
					ok = false
					break
				}
				verts = append(verts, v)
				texs = append(texs, t)
				norms = append(norms, n)
			}
			if !ok {
				continue
			}
			m.Faces = append(m.Faces, verts)
			m.FaceTexcoords = append(m.FaceTexcoords, texs)
			m.FaceNormals = append(m.FaceNormals, norms)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, warns.Return(), err
	}
	return m, warns.Return(), nil
}

func lineError(line int, kind string, err error) error {
	return fmt.Errorf("line %d: %s: %w", line, kind, err)
}

// parseFloats parses at least n leading float fields, ignoring extras.
func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%d components, need %d", len(fields), n)
	}
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return v, nil
}

// parseCorner parses one face corner reference. Absent texcoord and
// normal indices are returned as 0.
func parseCorner(s string) (vert, tex, norm uint32, err error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("corner %q has too many components", s)
	}
	if vert, err = parseIndex(parts[0]); err != nil {
		return 0, 0, 0, err
	}
	if len(parts) >= 2 && parts[1] != "" {
		if tex, err = parseIndex(parts[1]); err != nil {
			return 0, 0, 0, err
		}
	}
	if len(parts) == 3 {
		if norm, err = parseIndex(parts[2]); err != nil {
			return 0, 0, 0, err
		}
	}
	return vert, tex, norm, nil
}

func parseIndex(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", s, err)
	}
	return uint32(n), nil
}
