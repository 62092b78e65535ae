package doctree

import "fmt"

// ValueType is the closed tag set of attribute value kinds. The
// numeric values are the wire type-ids shared by the LSF, LSX and LSJ
// codecs; they must never be renumbered once a codec depends on them.
type ValueType uint32

const (
	TypeNone ValueType = iota
	TypeByte
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeFloat
	TypeDouble
	TypeIVec2
	TypeIVec3
	TypeIVec4
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat2
	TypeMat3
	TypeMat4
	TypeBool
	TypeString
	TypeFixedString
	TypeLSString
	TypeWString
	TypeLSWString
	TypeTranslatedString
	TypeTranslatedFSString
	TypeUInt64
	TypeScratchBuffer
	TypeLong
	TypeInt8
	TypeGuid
	TypeInt64
	TypePath
	typeCount
)

// typeNames mirrors the XML tag names used by the LSX codec (§4.4);
// the tag<->id mapping is bijective and shared with LSF.
var typeNames = [typeCount]string{
	TypeNone:               "None",
	TypeByte:                "uint8",
	TypeShort:               "int16",
	TypeUShort:              "uint16",
	TypeInt:                 "int32",
	TypeUInt:                "uint32",
	TypeFloat:               "float",
	TypeDouble:              "double",
	TypeIVec2:               "ivec2",
	TypeIVec3:               "ivec3",
	TypeIVec4:               "ivec4",
	TypeVec2:                "fvec2",
	TypeVec3:                "fvec3",
	TypeVec4:                "fvec4",
	TypeMat2:                "mat2x2",
	TypeMat3:                "mat3x3",
	TypeMat4:                "mat4x4",
	TypeBool:                "bool",
	TypeString:               "string",
	TypeFixedString:         "FixedString",
	TypeLSString:            "LSString",
	TypeWString:             "WString",
	TypeLSWString:           "LSWString",
	TypeTranslatedString:    "TranslatedString",
	TypeTranslatedFSString:  "TranslatedFSString",
	TypeUInt64:              "uint64",
	TypeScratchBuffer:       "ScratchBuffer",
	TypeLong:                "old_int64",
	TypeInt8:                "int8",
	TypeGuid:                "guid",
	TypeInt64:               "int64",
	TypePath:                "Path",
}

// Name returns the LSX tag name for a type-id.
func (t ValueType) Name() string {
	if t >= typeCount {
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
	return typeNames[t]
}

// TypeByName reverses Name; used by the LSX reader, which addresses
// attribute types by tag text rather than numeric id.
func TypeByName(name string) (ValueType, bool) {
	for i, n := range typeNames {
		if n == name {
			return ValueType(i), true
		}
	}
	return TypeNone, false
}

// VecComponents reports the number of float32/int32 lanes a vector or
// (row-major) matrix type carries.
func (t ValueType) VecComponents() int {
	switch t {
	case TypeIVec2, TypeVec2:
		return 2
	case TypeIVec3, TypeVec3:
		return 3
	case TypeIVec4, TypeVec4, TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	}
	return 0
}

func (t ValueType) IsIntVec() bool {
	switch t {
	case TypeIVec2, TypeIVec3, TypeIVec4:
		return true
	}
	return false
}

// TranslatedString is the payload of TypedValue for
// TypeTranslatedString/TypeTranslatedFSString. Value and Version are
// only meaningful in LSF >= 2 / LSX / LSJ; a pre-version-2 LSF file
// carries Handle alone (§8.2).
type TranslatedString struct {
	Handle     string
	Value      string
	HasValue   bool
	Version    uint16
	HasVersion bool
}

// TypedValue is the tagged union of attribute values, modelled as a flat
// value aggregate with an exhaustive Type switch in every codec
// rather than a TypedValue interface with per-type methods: the set
// of types is closed and versioned across seven LSF revisions, so a
// dispatch table indexed by Type is cheaper to reason about than a
// virtual-call hierarchy (§9 "typed-value tagged union vs. dynamic
// dispatch").
type TypedValue struct {
	Type ValueType

	// Scalar payload. Which field is meaningful is determined by Type:
	//   Byte, Short, UShort, Int, UInt, Bool, UInt64, Long, Int8, Int64 -> I64
	//   Float                                                           -> F32
	//   Double                                                         -> F64
	I64 int64
	F32 float32
	F64 float64

	// Vector/matrix payload: IVec* reinterprets each lane as int32,
	// Vec*/Mat* (row-major) as float32. Always len() == VecComponents().
	Ints   []int32
	Floats []float32

	// String-like payload: String, FixedString, LSString, WString,
	// LSWString, Path.
	Str string

	// ScratchBuffer payload: an opaque byte blob.
	Bytes []byte

	// Guid payload: 16 raw bytes (§3.1 invariants). The lsx and lsj text
	// forms render them as hyphenated hex in stored byte order; no byte
	// swap is applied in either direction.
	Guid [16]byte

	// TranslatedString / TranslatedFSString payload.
	Translated TranslatedString
}

// Equal implements ordered-tree equality (§8.1 document round-trip
// property) for a single attribute value.
func (v TypedValue) Equal(o TypedValue) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeNone:
		return true
	case TypeByte, TypeShort, TypeUShort, TypeInt, TypeUInt, TypeBool,
		TypeUInt64, TypeLong, TypeInt8, TypeInt64:
		return v.I64 == o.I64
	case TypeFloat:
		return v.F32 == o.F32
	case TypeDouble:
		return v.F64 == o.F64
	case TypeIVec2, TypeIVec3, TypeIVec4:
		return int32SliceEqual(v.Ints, o.Ints)
	case TypeVec2, TypeVec3, TypeVec4, TypeMat2, TypeMat3, TypeMat4:
		return float32SliceEqual(v.Floats, o.Floats)
	case TypeString, TypeFixedString, TypeLSString, TypeWString, TypeLSWString, TypePath:
		return v.Str == o.Str
	case TypeScratchBuffer:
		return bytesEqual(v.Bytes, o.Bytes)
	case TypeGuid:
		return v.Guid == o.Guid
	case TypeTranslatedString, TypeTranslatedFSString:
		return v.Translated == o.Translated
	}
	return false
}

func int32SliceEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float32SliceEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
