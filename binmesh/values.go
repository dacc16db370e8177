package binmesh

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/anaminus/parse"
	"github.com/meshkit/meshfile/spec"
)

// Value is a single decoded datum in a structured dump: a scalar, a
// fixed-size tuple, or an array of either.
type Value interface {
	// String renders the value on one line.
	String() string
}

type ValueInt int64

func (v ValueInt) String() string {
	return strconv.FormatInt(int64(v), 10)
}

type ValueUint uint64

func (v ValueUint) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

type ValueFloat float32

func (v ValueFloat) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

type ValueDouble float64

func (v ValueDouble) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

type ValueBool bool

func (v ValueBool) String() string {
	return strconv.FormatBool(bool(v))
}

type ValueChar byte

func (v ValueChar) String() string {
	return strconv.QuoteRune(rune(v))
}

type ValueString string

func (v ValueString) String() string {
	return strconv.Quote(string(v))
}

// Tuple is a fixed-cardinality group of scalars.
type Tuple []Value

func (v Tuple) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, e := range v {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// Array is a count-governed sequence of scalars or tuples.
type Array []Value

func (v Array) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for i, e := range v {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.String())
	}
	buf.WriteByte(']')
	return buf.String()
}

// putScalar encodes x into the fixed-width wire form of t, returning
// the number of bytes written. Integer types truncate toward zero;
// TypeBool encodes any non-zero x as 1. Returns 0 if t has no fixed
// width. b must hold at least 8 bytes.
func putScalar(b []byte, order binary.ByteOrder, t spec.DataType, x float64) int {
	switch t {
	case spec.TypeInt8:
		b[0] = byte(int8(x))
		return 1
	case spec.TypeInt16:
		order.PutUint16(b, uint16(int16(x)))
		return 2
	case spec.TypeInt32:
		order.PutUint32(b, uint32(int32(x)))
		return 4
	case spec.TypeInt64:
		order.PutUint64(b, uint64(int64(x)))
		return 8
	case spec.TypeUint8, spec.TypeChar:
		b[0] = byte(uint8(x))
		return 1
	case spec.TypeUint16:
		order.PutUint16(b, uint16(x))
		return 2
	case spec.TypeUint32:
		order.PutUint32(b, uint32(x))
		return 4
	case spec.TypeUint64:
		order.PutUint64(b, uint64(x))
		return 8
	case spec.TypeFloat:
		order.PutUint32(b, math.Float32bits(float32(x)))
		return 4
	case spec.TypeDouble:
		order.PutUint64(b, math.Float64bits(x))
		return 8
	case spec.TypeBool:
		if x != 0 {
			b[0] = 1
		} else {
			b[0] = 0
		}
		return 1
	}
	return 0
}

// writeScalar writes one scalar of type t with the value x.
func writeScalar(fw *parse.BinaryWriter, order binary.ByteOrder, t spec.DataType, x float64) bool {
	var b [8]byte
	n := putScalar(b[:], order, t, x)
	if n == 0 {
		return fw.Add(0, spec.ErrUnknownType(t))
	}
	return fw.Bytes(b[:n])
}

// readScalar reads one scalar of type t, producing its dump value.
func readScalar(fr *parse.BinaryReader, order binary.ByteOrder, t spec.DataType) (Value, bool) {
	n := t.Size()
	if n <= 0 {
		fr.Add(0, spec.ErrUnknownType(t))
		return nil, true
	}
	var b [8]byte
	if fr.Bytes(b[:n]) {
		return nil, true
	}
	switch t {
	case spec.TypeInt8:
		return ValueInt(int8(b[0])), false
	case spec.TypeInt16:
		return ValueInt(int16(order.Uint16(b[:2]))), false
	case spec.TypeInt32:
		return ValueInt(int32(order.Uint32(b[:4]))), false
	case spec.TypeInt64:
		return ValueInt(int64(order.Uint64(b[:8]))), false
	case spec.TypeUint8:
		return ValueUint(b[0]), false
	case spec.TypeUint16:
		return ValueUint(order.Uint16(b[:2])), false
	case spec.TypeUint32:
		return ValueUint(order.Uint32(b[:4])), false
	case spec.TypeUint64:
		return ValueUint(order.Uint64(b[:8])), false
	case spec.TypeFloat:
		return ValueFloat(math.Float32frombits(order.Uint32(b[:4]))), false
	case spec.TypeDouble:
		return ValueDouble(math.Float64frombits(order.Uint64(b[:8]))), false
	case spec.TypeChar:
		return ValueChar(b[0]), false
	case spec.TypeBool:
		return ValueBool(b[0] != 0), false
	}
	fr.Add(0, spec.ErrUnknownType(t))
	return nil, true
}

// countValue converts a decoded count scalar to an element count.
// Negative values clamp to zero; values that overflow int clamp to the
// maximum, leaving the stream to fail with a short read.
func countValue(v Value) int {
	switch v := v.(type) {
	case ValueInt:
		if v < 0 {
			return 0
		}
		return int(v)
	case ValueUint:
		if uint64(v) > math.MaxInt {
			return math.MaxInt
		}
		return int(v)
	case ValueFloat:
		if v < 0 {
			return 0
		}
		if float64(v) >= math.MaxInt {
			return math.MaxInt
		}
		return int(v)
	case ValueDouble:
		if v < 0 {
			return 0
		}
		if float64(v) >= math.MaxInt {
			return math.MaxInt
		}
		return int(v)
	case ValueChar:
		return int(v)
	case ValueBool:
		if v {
			return 1
		}
	}
	return 0
}
