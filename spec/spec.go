package spec

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// RoleKind enumerates the codec roles an attribute can take. The role
// is inferred once, from the attribute's name and declared type, when
// the attribute is constructed; the encoder and decoder branch on the
// resolved role, never on the name itself, so the two directions cannot
// diverge in their inference.
type RoleKind uint8

const (
	// RoleScalar is a plain fixed-width field with no inferable
	// meaning. The encoder zero-fills it; the decoder echoes it.
	RoleScalar RoleKind = iota
	// RoleCount carries the element count of a mesh array. The stream
	// value governs how many elements a later dynamic attribute reads.
	RoleCount
	// RoleDynamic is a variable-length array of mesh data whose length
	// comes from a preceding count attribute.
	RoleDynamic
	// RoleFaceCorner is one of the per-face-corner index streams, which
	// may be interleaved with its siblings under the Sequential layout.
	RoleFaceCorner
	// RoleString is a length-prefixed string value.
	RoleString
)

// Corner identifies which per-face-corner index stream a face
// attribute addresses.
type Corner uint8

const (
	CornerVertex Corner = iota
	CornerNormal
	CornerTexcoord
)

// Role is the resolved codec role of an attribute.
type Role struct {
	Kind RoleKind
	// Stem is the resolved array name for RoleCount, RoleDynamic, and
	// RoleFaceCorner. The synonym "position" resolves to "vertex".
	Stem string
	// Corner is set for RoleFaceCorner.
	Corner Corner
}

// resolveRole infers an attribute's role from its name and type. Name
// patterns take priority over the declared type; an unmatched name with
// a string type is a string value, and anything else is a plain scalar.
func resolveRole(name string, typ DataType) Role {
	switch name {
	case "position", "vertex":
		return Role{Kind: RoleDynamic, Stem: "vertex"}
	case "normal":
		return Role{Kind: RoleDynamic, Stem: "normal"}
	case "texcoord":
		return Role{Kind: RoleDynamic, Stem: "texcoord"}
	case "face":
		return Role{Kind: RoleFaceCorner, Stem: "face", Corner: CornerVertex}
	case "face_normal":
		return Role{Kind: RoleFaceCorner, Stem: "face_normal", Corner: CornerNormal}
	case "face_texcoord":
		return Role{Kind: RoleFaceCorner, Stem: "face_texcoord", Corner: CornerTexcoord}
	}
	if stem, ok := countStem(name); ok {
		return Role{Kind: RoleCount, Stem: stem}
	}
	if typ == TypeString {
		return Role{Kind: RoleString}
	}
	return Role{Kind: RoleScalar}
}

// countStem resolves names of the form `<stem>_count`. Only stems that
// denote a mesh array qualify; `position_count` aliases to the vertex
// array. A `_count` name with any other stem carries no inferable
// meaning and falls through to RoleScalar, keeping the encoder and
// decoder symmetric.
func countStem(name string) (string, bool) {
	stem, ok := trimSuffix(name, "_count")
	if !ok {
		return "", false
	}
	switch stem {
	case "position":
		return "vertex", true
	case "vertex", "normal", "texcoord", "face":
		return stem, true
	}
	return "", false
}

func trimSuffix(s, suffix string) (string, bool) {
	if !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[:len(s)-len(suffix)], true
}

// Attribute is a named, typed field within a block. Size is the
// cardinality: the number of scalar elements one entry of the attribute
// occupies on the wire.
type Attribute struct {
	Name string
	Type DataType
	Size int

	role Role
}

// NewAttribute constructs a validated attribute with a cardinality of
// one.
func NewAttribute(name string, typ DataType) (Attribute, error) {
	return NewAttributeSize(name, typ, 1)
}

// NewAttributeSize constructs a validated attribute. The type must be
// registered, size must be at least 1, and string attributes must have
// a size of exactly 1.
func NewAttributeSize(name string, typ DataType, size int) (Attribute, error) {
	if !typ.Valid() {
		return Attribute{}, ErrUnknownType(typ)
	}
	if size < 1 || (typ == TypeString && size != 1) {
		return Attribute{}, ErrCardinality{Attr: name, Size: size}
	}
	return Attribute{
		Name: name,
		Type: typ,
		Size: size,
		role: resolveRole(name, typ),
	}, nil
}

// Role returns the attribute's resolved codec role.
func (a Attribute) Role() Role {
	if a.role == (Role{}) && a.Name != "" {
		// Attribute built without the constructor.
		return resolveRole(a.Name, a.Type)
	}
	return a.role
}

// ByteLen returns the fixed encoded width of one entry of the
// attribute, or SizeVariable if the attribute is a string.
func (a Attribute) ByteLen() int {
	if a.Type == TypeString {
		return SizeVariable
	}
	return a.Type.Size() * a.Size
}

// Desc returns a layout descriptor for the attribute, for
// documentation and testing.
func (a Attribute) Desc() string {
	if a.Size == 1 {
		return a.Type.String()
	}
	return fmt.Sprintf("%s[%d]", a.Type, a.Size)
}

// Block is an ordered group of attributes forming one section of a
// binary file. Attribute order is semantically meaningful: counts must
// precede the dynamic arrays they govern, and face-corner interleaving
// follows declaration order.
type Block struct {
	Name       string
	Attributes []Attribute
	// Terminator, if non-nil, is written and read once after all
	// attributes, independent of any counts.
	Terminator *Attribute
}

// NewBlock constructs a block owning a fresh copy of attrs.
func NewBlock(name string, attrs ...Attribute) Block {
	return Block{Name: name, Attributes: append([]Attribute(nil), attrs...)}
}

// Terminated returns a copy of the block with term as its terminator.
func (b Block) Terminated(term Attribute) Block {
	b.Terminator = &term
	return b
}

// Desc returns the concatenated layout descriptor of the block.
func (b Block) Desc() string {
	var buf strings.Builder
	buf.WriteString(b.Name)
	buf.WriteByte('{')
	for i, a := range b.Attributes {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(a.Desc())
	}
	if b.Terminator != nil {
		buf.WriteString(" !")
		buf.WriteString(b.Terminator.Desc())
	}
	buf.WriteByte('}')
	return buf.String()
}

// ByteOrder selects the byte order of every multi-byte field in a
// stream.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Valid returns whether the byte order has a legal value.
func (o ByteOrder) Valid() bool {
	return o == LittleEndian || o == BigEndian
}

func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	}
	return "Invalid"
}

// Binary returns the corresponding encoding/binary byte order.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ByteOrderFromString parses "little" or "big". Any other value is an
// ErrConfig.
func ByteOrderFromString(s string) (ByteOrder, error) {
	switch s {
	case "little":
		return LittleEndian, nil
	case "big":
		return BigEndian, nil
	}
	return 0, ErrConfig{Field: "byte order", Value: s}
}

// FaceLayout selects the physical layout of the per-face-corner index
// streams.
type FaceLayout uint8

const (
	// Sequential interleaves the vertex, normal, and texcoord index
	// tuples of each face corner in the stream.
	Sequential FaceLayout = iota
	// Separate stores all vertex index tuples contiguously, then all
	// normal index tuples, then all texcoord index tuples.
	Separate
)

// Valid returns whether the face layout has a legal value.
func (l FaceLayout) Valid() bool {
	return l == Sequential || l == Separate
}

func (l FaceLayout) String() string {
	switch l {
	case Sequential:
		return "sequential"
	case Separate:
		return "separate"
	}
	return "Invalid"
}

// FaceLayoutFromString parses "sequential" or "separate". Any other
// value is an ErrConfig.
func FaceLayoutFromString(s string) (FaceLayout, error) {
	switch s {
	case "sequential":
		return Sequential, nil
	case "separate":
		return Separate, nil
	}
	return 0, ErrConfig{Field: "face layout", Value: s}
}

// FormatSpec is the complete schema of a binary mesh format: an ordered
// set of blocks plus the byte order and face layout that govern the
// whole stream. The schema itself is the format specification; the wire
// carries no magic number, version field, or checksum.
//
// A FormatSpec is read-only after construction and may be shared across
// concurrent encode and decode calls.
type FormatSpec struct {
	Name   string
	Blocks []Block
	Order  ByteOrder
	Layout FaceLayout
	// StringLength is the length prefix type for string values.
	StringLength DataType
}

// New constructs a validated format specification. Illegal byte order
// or face layout values fail with ErrConfig; no default is silently
// applied. The string length prefix is set to DefaultStringLength.
func New(name string, blocks []Block, order ByteOrder, layout FaceLayout) (*FormatSpec, error) {
	f := &FormatSpec{
		Name:         name,
		Blocks:       append([]Block(nil), blocks...),
		Order:        order,
		Layout:       layout,
		StringLength: DefaultStringLength,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the configuration values of the specification.
func (f *FormatSpec) Validate() error {
	if !f.Order.Valid() {
		return ErrConfig{Field: "byte order", Value: f.Order.String()}
	}
	if !f.Layout.Valid() {
		return ErrConfig{Field: "face layout", Value: f.Layout.String()}
	}
	if !f.StringLength.Unsigned() {
		return ErrConfig{Field: "string length type", Value: f.StringLength.String()}
	}
	return nil
}

// Desc returns the concatenated layout descriptor of the whole format.
// The codec does not consume this; it exists for documentation and
// testing.
func (f *FormatSpec) Desc() string {
	descs := make([]string, len(f.Blocks))
	for i, b := range f.Blocks {
		descs[i] = b.Desc()
	}
	return strings.Join(descs, " ")
}
