package spec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultStringLength is the length prefix type used for string values
// when a format does not configure one.
const DefaultStringLength = TypeUint16

// PackString encodes s as a length prefix followed by the UTF-8 bytes
// of s. The prefix is written as the fixed-width unsigned type length,
// using the given byte order.
func PackString(s string, length DataType, order binary.ByteOrder) ([]byte, error) {
	if !length.Unsigned() {
		return nil, ErrConfig{Field: "string length type", Value: length.String()}
	}
	size := length.Size()
	if max := maxUint(size); uint64(len(s)) > max {
		return nil, fmt.Errorf("string of %d bytes exceeds %s length prefix", len(s), length)
	}
	b := make([]byte, size+len(s))
	putUint(b, order, size, uint64(len(s)))
	copy(b[size:], s)
	return b, nil
}

// UnpackString decodes a length-prefixed string from the front of b,
// returning the string and the total number of bytes consumed.
func UnpackString(b []byte, length DataType, order binary.ByteOrder) (string, int, error) {
	if !length.Unsigned() {
		return "", 0, ErrConfig{Field: "string length type", Value: length.String()}
	}
	size := length.Size()
	if len(b) < size {
		return "", 0, io.ErrUnexpectedEOF
	}
	n := getUint(b, order, size)
	if uint64(len(b)-size) < n {
		return "", 0, io.ErrUnexpectedEOF
	}
	return string(b[size : size+int(n)]), size + int(n), nil
}

func maxUint(size int) uint64 {
	if size >= 8 {
		return 1<<64 - 1
	}
	return 1<<(8*uint(size)) - 1
}

func putUint(b []byte, order binary.ByteOrder, size int, v uint64) {
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	}
}

func getUint(b []byte, order binary.ByteOrder, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	return 0
}
