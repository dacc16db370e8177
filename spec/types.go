// Package spec describes user-declared binary mesh layouts: the
// registry of scalar data types, and the schema model of attributes,
// blocks, and format specifications consumed by the binmesh codec.
package spec

import (
	"strings"
)

// DataType identifies a scalar wire encoding.
type DataType byte

const (
	TypeInvalid DataType = 0x0
	TypeInt8    DataType = 0x1
	TypeInt16   DataType = 0x2
	TypeInt32   DataType = 0x3
	TypeInt64   DataType = 0x4
	TypeUint8   DataType = 0x5
	TypeUint16  DataType = 0x6
	TypeUint32  DataType = 0x7
	TypeUint64  DataType = 0x8
	TypeFloat   DataType = 0x9
	TypeDouble  DataType = 0xA
	TypeChar    DataType = 0xB
	TypeBool    DataType = 0xC
	TypeString  DataType = 0xD
)

// Variable size.
const SizeVariable = -1

// Valid returns whether the type is registered.
func (t DataType) Valid() bool {
	return TypeInt8 <= t && t <= TypeString
}

// Size returns the encoded width of the type in bytes. Returns
// SizeVariable for TypeString, whose wire form is a length prefix
// followed by that many bytes, and 0 for an invalid type.
func (t DataType) Size() int {
	switch t {
	case TypeInt8, TypeUint8, TypeChar, TypeBool:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat:
		return 4
	case TypeInt64, TypeUint64, TypeDouble:
		return 8
	case TypeString:
		return SizeVariable
	}
	return 0
}

// Unsigned returns whether the type is a fixed-width unsigned integer.
// Only unsigned types may serve as string length prefixes.
func (t DataType) Unsigned() bool {
	return TypeUint8 <= t && t <= TypeUint64
}

var typeStrings = map[DataType]string{
	TypeInt8:   "int8",
	TypeInt16:  "int16",
	TypeInt32:  "int32",
	TypeInt64:  "int64",
	TypeUint8:  "uint8",
	TypeUint16: "uint16",
	TypeUint32: "uint32",
	TypeUint64: "uint64",
	TypeFloat:  "float",
	TypeDouble: "double",
	TypeChar:   "char",
	TypeBool:   "bool",
	TypeString: "string",
}

// String returns the name of the type as used in schema declarations.
// If the type is not valid, then the returned value is "Invalid".
func (t DataType) String() string {
	s, ok := typeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

// TypeFromString returns a DataType from its schema name. TypeInvalid
// is returned if the string does not name a registered type. The names
// "float32" and "float64" are accepted as aliases of "float" and
// "double".
func TypeFromString(s string) DataType {
	switch s = strings.ToLower(s); s {
	case "float32":
		return TypeFloat
	case "float64":
		return TypeDouble
	}
	for typ, str := range typeStrings {
		if s == str {
			return typ
		}
	}
	return TypeInvalid
}
