package binmesh

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/anaminus/parse"
	"github.com/meshkit/meshfile/errors"
	"github.com/meshkit/meshfile/spec"
)

// Decoder decodes a binary stream into a structured dump according to a
// format specification.
type Decoder struct{}

// Decode performs a walk symmetric to Encoder.Encode: blocks in order,
// attributes in order, with per-block count state resolving the lengths
// of dynamic arrays.
//
// Running out of bytes while reading a declared-width field fails with
// TruncatedError. A dynamic attribute whose stem was never populated by
// a preceding count fails with UnresolvedError. Bytes remaining after
// the final block are reported through warn as a TrailingWarning.
func (d Decoder) Decode(r io.Reader, f *spec.FormatSpec) (dump *Dump, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	if f == nil {
		return nil, nil, errors.New("nil format")
	}
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}

	order := f.Order.Binary()
	fr := parse.NewBinaryReader(r)
	dump = &Dump{Format: f.Name, Order: f.Order, Layout: f.Layout}
	var warns errors.Errors

	for bi := range f.Blocks {
		block := &f.Blocks[bi]
		bd := BlockDump{Name: block.Name}

		// counts maps resolved stems to element counts read so far in
		// this block. A face count populates all three face stems.
		counts := map[string]int{}
		// Under the sequential layout, the first face-corner attribute
		// consumes the whole interleaved segment; the tuples belonging
		// to its siblings are stashed and echoed when their attributes
		// are visited.
		seqDone := false
		var stash map[string]Value

		for ai := range block.Attributes {
			attr := block.Attributes[ai]
			var v Value
			switch role := attr.Role(); role.Kind {
			case spec.RoleCount:
				sv, failed := readScalar(fr, order, attr.Type)
				if failed {
					return nil, warns.Return(), truncated(fr, block.Name, attr.Name)
				}
				n := countValue(sv)
				counts[role.Stem] = n
				if role.Stem == "face" {
					counts["face_normal"] = n
					counts["face_texcoord"] = n
				}
				v = sv

			case spec.RoleDynamic:
				n, ok := counts[role.Stem]
				if !ok {
					return nil, warns.Return(), UnresolvedError{Block: block.Name, Attr: attr.Name, Stem: role.Stem}
				}
				arr, failed := readArray(fr, order, attr, n)
				if failed {
					return nil, warns.Return(), truncated(fr, block.Name, attr.Name)
				}
				v = arr

			case spec.RoleFaceCorner:
				if f.Layout == spec.Sequential && seqDone {
					sv, ok := stash[attr.Name]
					if !ok {
						sv = Array{}
					}
					v = sv
					break
				}
				n, ok := counts[role.Stem]
				if !ok {
					return nil, warns.Return(), UnresolvedError{Block: block.Name, Attr: attr.Name, Stem: role.Stem}
				}
				if f.Layout == spec.Separate {
					arr, failed := readArray(fr, order, attr, n)
					if failed {
						return nil, warns.Return(), truncated(fr, block.Name, attr.Name)
					}
					v = arr
					break
				}
				group := faceGroup(block.Attributes[ai:])
				arrays := make([]Array, len(group))
				for i := 0; i < n; i++ {
					for gi, g := range group {
						tv, failed := readTuple(fr, order, g.attr)
						if failed {
							return nil, warns.Return(), truncated(fr, block.Name, g.attr.Name)
						}
						arrays[gi] = append(arrays[gi], tv)
					}
				}
				if stash == nil {
					stash = map[string]Value{}
				}
				v = Array(nil)
				for gi, g := range group {
					arr := arrays[gi]
					if arr == nil {
						arr = Array{}
					}
					if gi == 0 {
						v = arr
						continue
					}
					stash[g.attr.Name] = arr
				}
				seqDone = true

			case spec.RoleString:
				sv, failed := readStringValue(fr, order, f.StringLength)
				if failed {
					return nil, warns.Return(), truncated(fr, block.Name, attr.Name)
				}
				v = sv

			case spec.RoleScalar:
				tv, failed := readTuple(fr, order, attr)
				if failed {
					return nil, warns.Return(), truncated(fr, block.Name, attr.Name)
				}
				v = tv
			}
			bd.Fields = append(bd.Fields, Field{Name: attr.Name, Value: v})
		}

		if term := block.Terminator; term != nil {
			var v Value
			var failed bool
			if term.Type == spec.TypeString {
				v, failed = readStringValue(fr, order, f.StringLength)
			} else {
				v, failed = readScalar(fr, order, term.Type)
			}
			if failed {
				return nil, warns.Return(), truncated(fr, block.Name, term.Name)
			}
			bd.Fields = append(bd.Fields, Field{Name: term.Name, Value: v})
		}

		dump.Blocks = append(dump.Blocks, bd)
	}

	if rest, failed := fr.All(); !failed && len(rest) > 0 {
		warns = warns.Append(TrailingWarning(len(rest)))
	}
	if _, err := fr.End(); err != nil {
		return nil, warns.Return(), err
	}
	return dump, warns.Return(), nil
}

// readTuple reads one entry of the attribute: a bare scalar for
// cardinality 1, a tuple otherwise.
func readTuple(fr *parse.BinaryReader, order binary.ByteOrder, attr spec.Attribute) (Value, bool) {
	if attr.Size == 1 {
		return readScalar(fr, order, attr.Type)
	}
	t := make(Tuple, attr.Size)
	for k := range t {
		v, failed := readScalar(fr, order, attr.Type)
		if failed {
			return nil, true
		}
		t[k] = v
	}
	return t, false
}

// Counts and string lengths are stream data and untrusted; allocations
// driven by them are capped so that a hostile value fails with a short
// read instead of exhausting memory.
const preallocLimit = 4096

func readArray(fr *parse.BinaryReader, order binary.ByteOrder, attr spec.Attribute, n int) (Array, bool) {
	c := n
	if c > preallocLimit {
		c = preallocLimit
	}
	arr := make(Array, 0, c)
	for i := 0; i < n; i++ {
		v, failed := readTuple(fr, order, attr)
		if failed {
			return nil, true
		}
		arr = append(arr, v)
	}
	return arr, false
}

func readStringValue(fr *parse.BinaryReader, order binary.ByteOrder, length spec.DataType) (Value, bool) {
	sv, failed := readScalar(fr, order, length)
	if failed {
		return nil, true
	}
	var buf strings.Builder
	for n := countValue(sv); n > 0; {
		c := n
		if c > preallocLimit {
			c = preallocLimit
		}
		chunk := make([]byte, c)
		if fr.Bytes(chunk) {
			return nil, true
		}
		buf.Write(chunk)
		n -= c
	}
	return ValueString(buf.String()), false
}

func truncated(fr *parse.BinaryReader, block, attr string) error {
	return TruncatedError{Offset: fr.N(), Block: block, Attr: attr, Cause: fr.Err()}
}
