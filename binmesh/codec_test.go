package binmesh

import (
	"bytes"
	"strings"
	"testing"

	"github.com/meshkit/meshfile"
	"github.com/meshkit/meshfile/declare"
	"github.com/meshkit/meshfile/errors"
	"github.com/meshkit/meshfile/spec"
)

// One triangle, no source normals or texcoords; the face-corner streams
// are zero-filled placeholders of matching shape.
func triangle() *meshfile.Mesh {
	return &meshfile.Mesh{
		Positions:     [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:         [][]uint32{{1, 2, 3}},
		FaceNormals:   [][]uint32{{0, 0, 0}},
		FaceTexcoords: [][]uint32{{0, 0, 0}},
	}
}

// One triangle carrying normal and texcoord data.
func texturedTriangle() *meshfile.Mesh {
	return &meshfile.Mesh{
		Positions:     [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:       [][3]float64{{0, 0, 1}},
		Texcoords:     [][2]float64{{0, 0}, {1, 0}, {0, 1}},
		Faces:         [][]uint32{{1, 2, 3}},
		FaceNormals:   [][]uint32{{1, 1, 1}},
		FaceTexcoords: [][]uint32{{1, 2, 3}},
	}
}

func declareFormat(t *testing.T, d declare.Fmt) *spec.FormatSpec {
	t.Helper()
	f, err := d.Declare()
	if err != nil {
		t.Fatalf("declare format: %s", err)
	}
	return f
}

func encode(t *testing.T, f *spec.FormatSpec, m *meshfile.Mesh) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := Encode(&buf, f, m); err != nil {
		t.Fatalf("encode: %s", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, f *spec.FormatSpec, b []byte) *Dump {
	t.Helper()
	dump, _, err := Decode(bytes.NewReader(b), f)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	return dump
}

func fieldString(t *testing.T, dump *Dump, block, attr string) string {
	t.Helper()
	bd := dump.Block(block)
	if bd == nil {
		t.Fatalf("no block %q in dump", block)
	}
	f := bd.Field(attr)
	if f == nil {
		t.Fatalf("no field %q in block %q", attr, block)
	}
	return f.Value.String()
}

// Big-endian, sequential; a 32-bit vertex count followed by float32
// position triples, then a 32-bit face count followed by uint32 index
// triples.
const goldenTriangle = "\x00\x00\x00\x03" +
	"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00" +
	"\x3f\x80\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00" +
	"\x00\x00\x00\x00\x3f\x80\x00\x00\x00\x00\x00\x00" +
	"\x00\x00\x00\x01" +
	"\x00\x00\x00\x01\x00\x00\x00\x02\x00\x00\x00\x03"

func exampleFormat(t *testing.T) *spec.FormatSpec {
	return declareFormat(t, declare.Format("example", "big", "sequential",
		declare.Block("vertex_data",
			declare.Attr("vertex_count", "uint32"),
			declare.Attr("position", "float", 3),
		),
		declare.Block("face_data",
			declare.Attr("face_count", "uint32"),
			declare.Attr("face", "uint32", 3),
		),
	))
}

func TestEncodeGolden(t *testing.T) {
	b := encode(t, exampleFormat(t), triangle())
	if string(b) != goldenTriangle {
		t.Errorf("encoded % x, want % x", b, goldenTriangle)
	}
}

func TestDecodeGolden(t *testing.T) {
	dump := decode(t, exampleFormat(t), []byte(goldenTriangle))
	for _, c := range []struct {
		block, attr, want string
	}{
		{"vertex_data", "vertex_count", "3"},
		{"vertex_data", "position", "[(0, 0, 0), (1, 0, 0), (0, 1, 0)]"},
		{"face_data", "face_count", "1"},
		{"face_data", "face", "[(1, 2, 3)]"},
	} {
		if got := fieldString(t, dump, c.block, c.attr); got != c.want {
			t.Errorf("%s.%s: got %s, want %s", c.block, c.attr, got, c.want)
		}
	}
}

func TestRoundTripCounts(t *testing.T) {
	// The resolved counts map is per-block state, so every count must
	// precede its array within the same block.
	f := declareFormat(t, declare.Format("counts", "little", "separate",
		declare.Block("geometry",
			declare.Attr("vertex_count", "uint16"),
			declare.Attr("position", "double", 3),
			declare.Attr("normal_count", "uint16"),
			declare.Attr("normal", "float", 3),
			declare.Attr("texcoord_count", "uint16"),
			declare.Attr("texcoord", "float", 2),
			declare.Attr("face_count", "uint16"),
			declare.Attr("face", "uint32", 3),
		),
	))
	m := texturedTriangle()
	dump := decode(t, f, encode(t, f, m))
	for _, c := range []struct {
		attr string
		want string
	}{
		{"vertex_count", "3"},
		{"normal_count", "1"},
		{"texcoord_count", "3"},
		{"face_count", "1"},
	} {
		if got := fieldString(t, dump, "geometry", c.attr); got != c.want {
			t.Errorf("%s: got %s, want %s", c.attr, got, c.want)
		}
	}
	if got := fieldString(t, dump, "geometry", "normal"); got != "[(0, 0, 1)]" {
		t.Errorf("normal: got %s", got)
	}
	if got := fieldString(t, dump, "geometry", "texcoord"); got != "[(0, 0), (1, 0), (0, 1)]" {
		t.Errorf("texcoord: got %s", got)
	}
}

// The counts in a block govern dynamic arrays in the same block only;
// a block with dynamic attributes and no preceding counts fails.
func TestUnresolvedDynamic(t *testing.T) {
	f := declareFormat(t, declare.Format("bad", "little", "separate",
		declare.Block("data", declare.Attr("position", "float", 3)),
	))
	_, _, err := Decode(bytes.NewReader([]byte{0, 0, 0, 0}), f)
	var unresolved UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("got error %v, want UnresolvedError", err)
	}
	if unresolved.Stem != "vertex" {
		t.Errorf("stem %q, want %q", unresolved.Stem, "vertex")
	}
}

func faceFormat(t *testing.T, layout string, attrs ...declare.Attribute) *spec.FormatSpec {
	block := []declare.Attribute{declare.Attr("face_count", "uint32")}
	block = append(block, attrs...)
	return declareFormat(t, declare.Format("faces", "little", layout,
		declare.Block("face_data", block...),
	))
}

// Encoding the same mesh under the sequential and separate layouts must
// decode to the same face values; only the byte interleaving differs.
func TestSequentialSeparateEquivalence(t *testing.T) {
	attrs := []declare.Attribute{
		declare.Attr("face", "uint32", 3),
		declare.Attr("face_normal", "uint32", 3),
		declare.Attr("face_texcoord", "uint32", 3),
	}
	m := &meshfile.Mesh{
		Faces:         [][]uint32{{1, 2, 3}, {3, 2, 4}},
		FaceNormals:   [][]uint32{{1, 1, 1}, {2, 2, 2}},
		FaceTexcoords: [][]uint32{{1, 2, 3}, {3, 2, 5}},
	}

	seq := faceFormat(t, "sequential", attrs...)
	sep := faceFormat(t, "separate", attrs...)
	seqBytes := encode(t, seq, m)
	sepBytes := encode(t, sep, m)
	if bytes.Equal(seqBytes, sepBytes) {
		t.Errorf("sequential and separate layouts produced identical bytes")
	}

	seqDump := decode(t, seq, seqBytes)
	sepDump := decode(t, sep, sepBytes)
	for _, attr := range []string{"face", "face_normal", "face_texcoord"} {
		got := fieldString(t, seqDump, "face_data", attr)
		want := fieldString(t, sepDump, "face_data", attr)
		if got != want {
			t.Errorf("%s: sequential decoded %s, separate decoded %s", attr, got, want)
		}
	}
	if got := fieldString(t, sepDump, "face_data", "face_normal"); got != "[(1, 1, 1), (2, 2, 2)]" {
		t.Errorf("face_normal: got %s", got)
	}
}

// The interleave is anchored on the first face-corner attribute of the
// block; declaring face_normal first changes the byte order of the
// stream but not the decoded values.
func TestSequentialAnchorOrder(t *testing.T) {
	m := &meshfile.Mesh{
		Faces:         [][]uint32{{1, 2, 3}},
		FaceNormals:   [][]uint32{{4, 5, 6}},
		FaceTexcoords: [][]uint32{{0, 0, 0}},
	}
	faceFirst := faceFormat(t, "sequential",
		declare.Attr("face", "uint8", 3),
		declare.Attr("face_normal", "uint8", 3),
	)
	normalFirst := faceFormat(t, "sequential",
		declare.Attr("face_normal", "uint8", 3),
		declare.Attr("face", "uint8", 3),
	)

	b1 := encode(t, faceFirst, m)
	b2 := encode(t, normalFirst, m)
	if want := "\x01\x00\x00\x00\x01\x02\x03\x04\x05\x06"; string(b1) != want {
		t.Errorf("face-first encoded % x, want % x", b1, want)
	}
	if want := "\x01\x00\x00\x00\x04\x05\x06\x01\x02\x03"; string(b2) != want {
		t.Errorf("normal-first encoded % x, want % x", b2, want)
	}

	d1 := decode(t, faceFirst, b1)
	d2 := decode(t, normalFirst, b2)
	for _, attr := range []string{"face", "face_normal"} {
		if got, want := fieldString(t, d1, "face_data", attr), fieldString(t, d2, "face_data", attr); got != want {
			t.Errorf("%s: decoded %s and %s across anchor orders", attr, got, want)
		}
	}
}

// Attribute order is part of the wire contract: decoding sequential
// bytes with the face attributes transposed yields transposed values.
func TestSequentialOrderSensitivity(t *testing.T) {
	m := &meshfile.Mesh{
		Faces:         [][]uint32{{1, 2, 3}},
		FaceNormals:   [][]uint32{{4, 5, 6}},
		FaceTexcoords: [][]uint32{{0, 0, 0}},
	}
	faceFirst := faceFormat(t, "sequential",
		declare.Attr("face", "uint8", 3),
		declare.Attr("face_normal", "uint8", 3),
	)
	normalFirst := faceFormat(t, "sequential",
		declare.Attr("face_normal", "uint8", 3),
		declare.Attr("face", "uint8", 3),
	)
	dump := decode(t, normalFirst, encode(t, faceFirst, m))
	if got := fieldString(t, dump, "face_data", "face_normal"); got != "[(1, 2, 3)]" {
		t.Errorf("transposed face_normal: got %s, want [(1, 2, 3)]", got)
	}
	if got := fieldString(t, dump, "face_data", "face"); got != "[(4, 5, 6)]" {
		t.Errorf("transposed face: got %s, want [(4, 5, 6)]", got)
	}
}

// An attribute named "position" and one named "vertex" over the same
// mesh must produce byte-identical output.
func TestPositionVertexSynonym(t *testing.T) {
	build := func(name string) *spec.FormatSpec {
		return declareFormat(t, declare.Format("syn", "big", "separate",
			declare.Block("vertex_data",
				declare.Attr("vertex_count", "uint32"),
				declare.Attr(name, "float", 3),
			),
		))
	}
	m := triangle()
	b1 := encode(t, build("position"), m)
	b2 := encode(t, build("vertex"), m)
	if !bytes.Equal(b1, b2) {
		t.Errorf("position encoded % x, vertex encoded % x", b1, b2)
	}

	// The vertex count resolves either spelling of the array.
	dump := decode(t, build("position"), b1)
	if got := fieldString(t, dump, "vertex_data", "position"); got != "[(0, 0, 0), (1, 0, 0), (0, 1, 0)]" {
		t.Errorf("position: got %s", got)
	}
}

// An attribute matching no recognized pattern is zero-filled on encode,
// reported as a warning, and decodes back to a zero-valued scalar.
func TestZeroFillFallback(t *testing.T) {
	for _, typ := range []string{"uint16", "int64", "double", "bool"} {
		f := declareFormat(t, declare.Format("zf", "little", "separate",
			declare.Block("header", declare.Attr("magic", typ)),
		))
		var buf bytes.Buffer
		warn, err := Encode(&buf, f, triangle())
		if err != nil {
			t.Fatalf("%s: encode: %s", typ, err)
		}
		var zf ZeroFillWarning
		if !errors.As(warn, &zf) {
			t.Errorf("%s: warning %v, want ZeroFillWarning", typ, warn)
		}
		want := "0"
		if typ == "bool" {
			want = "false"
		}
		dump := decode(t, f, buf.Bytes())
		if got := fieldString(t, dump, "header", "magic"); got != want {
			t.Errorf("%s: decoded %s, want %s", typ, got, want)
		}
	}
}

func TestStringAttribute(t *testing.T) {
	f := declareFormat(t, declare.Format("meta", "little", "separate",
		declare.Block("metadata",
			declare.Attr("name", "string"),
			declare.Attr("id", "uint32"),
		),
	))
	e := Encoder{Strings: func(name string) string {
		if name == "name" {
			return "teapot"
		}
		return ""
	}}
	var buf bytes.Buffer
	if _, err := e.Encode(&buf, f, triangle()); err != nil {
		t.Fatalf("encode: %s", err)
	}
	// Default uint16 length prefix, little-endian.
	if want := "\x06\x00teapot\x00\x00\x00\x00"; buf.String() != want {
		t.Errorf("encoded % x, want % x", buf.Bytes(), want)
	}
	dump := decode(t, f, buf.Bytes())
	if got := fieldString(t, dump, "metadata", "name"); got != `"teapot"` {
		t.Errorf("name: got %s", got)
	}
}

func TestBlockTerminator(t *testing.T) {
	f := declareFormat(t, declare.Format("term", "big", "separate",
		declare.Block("vertex_data",
			declare.Attr("vertex_count", "uint8"),
		).Terminated(declare.Attr("end", "uint16")),
		declare.Block("tail", declare.Attr("after", "uint8")),
	))
	b := encode(t, f, triangle())
	if want := "\x03\x00\x00\x00"; string(b) != want {
		t.Errorf("encoded % x, want % x", b, want)
	}
	dump := decode(t, f, b)
	if got := fieldString(t, dump, "vertex_data", "end"); got != "0" {
		t.Errorf("terminator: got %s, want 0", got)
	}
	if got := fieldString(t, dump, "tail", "after"); got != "0" {
		t.Errorf("after: got %s, want 0", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	f := exampleFormat(t)
	b := []byte(goldenTriangle)
	_, _, err := Decode(bytes.NewReader(b[:20]), f)
	var trunc TruncatedError
	if !errors.As(err, &trunc) {
		t.Fatalf("got error %v, want TruncatedError", err)
	}
	if trunc.Attr != "position" {
		t.Errorf("truncated at attribute %q, want %q", trunc.Attr, "position")
	}
	if errors.Unwrap(trunc) == nil {
		t.Errorf("truncated error carries no cause")
	}
}

// A count is stream data and untrusted; an enormous value must fail as
// a truncated read, not crash or exhaust memory.
func TestDecodeOversizedCount(t *testing.T) {
	f := declareFormat(t, declare.Format("hostile", "little", "separate",
		declare.Block("face_data",
			declare.Attr("face_count", "uint64"),
			declare.Attr("face", "uint32", 3),
		),
	))
	b := []byte("\xff\xff\xff\xff\xff\xff\xff\xff")
	_, _, err := Decode(bytes.NewReader(b), f)
	var trunc TruncatedError
	if !errors.As(err, &trunc) {
		t.Fatalf("got error %v, want TruncatedError", err)
	}
	if trunc.Attr != "face" {
		t.Errorf("truncated at attribute %q, want %q", trunc.Attr, "face")
	}
}

// The same holds for a string length prefix promising more bytes than
// any stream could carry.
func TestDecodeOversizedStringLength(t *testing.T) {
	f := declareFormat(t, declare.Format("hostile", "little", "separate",
		declare.Block("metadata", declare.Attr("name", "string")),
	))
	f.StringLength = spec.TypeUint64
	b := []byte("\xff\xff\xff\xff\xff\xff\xff\xffab")
	_, _, err := Decode(bytes.NewReader(b), f)
	var trunc TruncatedError
	if !errors.As(err, &trunc) {
		t.Fatalf("got error %v, want TruncatedError", err)
	}
	if trunc.Attr != "name" {
		t.Errorf("truncated at attribute %q, want %q", trunc.Attr, "name")
	}
}

func TestDecodeTrailing(t *testing.T) {
	f := exampleFormat(t)
	b := append([]byte(goldenTriangle), 0xFF, 0xFF)
	_, warn, err := Decode(bytes.NewReader(b), f)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	var trailing TrailingWarning
	if !errors.As(warn, &trailing) || trailing != 2 {
		t.Errorf("warning %v, want 2 trailing bytes", warn)
	}
}

func TestLittleEndianEncode(t *testing.T) {
	f := declareFormat(t, declare.Format("le", "little", "separate",
		declare.Block("header", declare.Attr("vertex_count", "uint32")),
	))
	b := encode(t, f, triangle())
	if want := "\x03\x00\x00\x00"; string(b) != want {
		t.Errorf("encoded % x, want % x", b, want)
	}
}

func TestDumpText(t *testing.T) {
	var buf bytes.Buffer
	warn, err := Decoder{}.DumpText(&buf, strings.NewReader(goldenTriangle), exampleFormat(t))
	if warn != nil {
		t.Errorf("unexpected warning: %s", warn)
	}
	if err != nil {
		t.Fatalf("dump: %s", err)
	}
	out := buf.String()
	for _, want := range []string{
		"File format: example",
		"Byte order: big",
		"Face layout: sequential",
		"Digest: ",
		"vertex_data:",
		"  position:",
		"    [(0, 0, 0), (1, 0, 0), (0, 1, 0)]",
		"face_data:",
		"    [(1, 2, 3)]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump output missing %q:\n%s", want, out)
		}
	}
}
