package lsf

import (
	"encoding/binary"
	"math"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/doctree"
)

// valueCodec is the per-type entry in the values-blob dispatch table
// (§9 "put per-type codecs in a table indexed by type-id; no virtual
// methods"). encode appends the value's wire bytes to buf and returns
// the new buffer; decode reads exactly length bytes starting at
// offset in the values blob.
type valueCodec struct {
	encode func(buf []byte, v doctree.TypedValue, version uint32) []byte
	decode func(data []byte, version uint32) (doctree.TypedValue, error)
}

var valueCodecs = buildValueCodecs()

func buildValueCodecs() map[doctree.ValueType]valueCodec {
	m := make(map[doctree.ValueType]valueCodec)

	m[doctree.TypeNone] = valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte { return buf },
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			return doctree.TypedValue{Type: doctree.TypeNone}, nil
		},
	}
	m[doctree.TypeByte] = scalarCodec(doctree.TypeByte, 1)
	m[doctree.TypeShort] = scalarCodec(doctree.TypeShort, 2)
	m[doctree.TypeUShort] = scalarCodec(doctree.TypeUShort, 2)
	m[doctree.TypeInt] = scalarCodec(doctree.TypeInt, 4)
	m[doctree.TypeUInt] = scalarCodec(doctree.TypeUInt, 4)
	m[doctree.TypeBool] = scalarCodec(doctree.TypeBool, 1)
	m[doctree.TypeUInt64] = scalarCodec(doctree.TypeUInt64, 8)
	m[doctree.TypeLong] = scalarCodec(doctree.TypeLong, 8)
	m[doctree.TypeInt8] = scalarCodec(doctree.TypeInt8, 1)
	m[doctree.TypeInt64] = scalarCodec(doctree.TypeInt64, 8)

	m[doctree.TypeFloat] = valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte {
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v.F32))
			return append(buf, tmp[:]...)
		},
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			if len(data) != 4 {
				return doctree.TypedValue{}, &apperr.UnexpectedEOF{Context: "float value"}
			}
			return doctree.TypedValue{Type: doctree.TypeFloat, F32: math.Float32frombits(binary.LittleEndian.Uint32(data))}, nil
		},
	}
	m[doctree.TypeDouble] = valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.F64))
			return append(buf, tmp[:]...)
		},
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			if len(data) != 8 {
				return doctree.TypedValue{}, &apperr.UnexpectedEOF{Context: "double value"}
			}
			return doctree.TypedValue{Type: doctree.TypeDouble, F64: math.Float64frombits(binary.LittleEndian.Uint64(data))}, nil
		},
	}

	for _, t := range []doctree.ValueType{doctree.TypeIVec2, doctree.TypeIVec3, doctree.TypeIVec4} {
		m[t] = intVecCodec(t)
	}
	for _, t := range []doctree.ValueType{doctree.TypeVec2, doctree.TypeVec3, doctree.TypeVec4, doctree.TypeMat2, doctree.TypeMat3, doctree.TypeMat4} {
		m[t] = floatVecCodec(t)
	}

	for _, t := range []doctree.ValueType{doctree.TypeString, doctree.TypeFixedString, doctree.TypeLSString, doctree.TypeWString, doctree.TypeLSWString, doctree.TypePath} {
		m[t] = stringCodec(t)
	}

	m[doctree.TypeScratchBuffer] = valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte { return append(buf, v.Bytes...) },
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			cp := make([]byte, len(data))
			copy(cp, data)
			return doctree.TypedValue{Type: doctree.TypeScratchBuffer, Bytes: cp}, nil
		},
	}

	m[doctree.TypeGuid] = valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte { return append(buf, v.Guid[:]...) },
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			if len(data) != 16 {
				return doctree.TypedValue{}, &apperr.UnexpectedEOF{Context: "guid value"}
			}
			var g [16]byte
			copy(g[:], data)
			return doctree.TypedValue{Type: doctree.TypeGuid, Guid: g}, nil
		},
	}

	m[doctree.TypeTranslatedString] = translatedStringCodec(doctree.TypeTranslatedString)
	m[doctree.TypeTranslatedFSString] = translatedStringCodec(doctree.TypeTranslatedFSString)

	return m
}

func scalarCodec(t doctree.ValueType, width int) valueCodec {
	return valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], uint64(v.I64))
			return append(buf, tmp[:width]...)
		},
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			if len(data) != width {
				return doctree.TypedValue{}, &apperr.UnexpectedEOF{Context: "scalar value"}
			}
			var tmp [8]byte
			copy(tmp[:width], data)
			u := binary.LittleEndian.Uint64(tmp[:])
			return doctree.TypedValue{Type: t, I64: int64(u)}, nil
		},
	}
}

func intVecCodec(t doctree.ValueType) valueCodec {
	return valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte {
			for _, c := range v.Ints {
				var tmp [4]byte
				binary.LittleEndian.PutUint32(tmp[:], uint32(c))
				buf = append(buf, tmp[:]...)
			}
			return buf
		},
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			n := t.VecComponents()
			if len(data) != n*4 {
				return doctree.TypedValue{}, &apperr.UnexpectedEOF{Context: "int vector value"}
			}
			out := make([]int32, n)
			for i := 0; i < n; i++ {
				out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
			}
			return doctree.TypedValue{Type: t, Ints: out}, nil
		},
	}
}

func floatVecCodec(t doctree.ValueType) valueCodec {
	return valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte {
			for _, c := range v.Floats {
				var tmp [4]byte
				binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(c))
				buf = append(buf, tmp[:]...)
			}
			return buf
		},
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			n := t.VecComponents()
			if len(data) != n*4 {
				return doctree.TypedValue{}, &apperr.UnexpectedEOF{Context: "float vector/matrix value"}
			}
			out := make([]float32, n)
			for i := 0; i < n; i++ {
				out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
			}
			return doctree.TypedValue{Type: t, Floats: out}, nil
		},
	}
}

func stringCodec(t doctree.ValueType) valueCodec {
	return valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, _ uint32) []byte {
			return append(buf, v.Str...)
		},
		decode: func(data []byte, _ uint32) (doctree.TypedValue, error) {
			return doctree.TypedValue{Type: t, Str: string(data)}, nil
		},
	}
}

// translatedStringCodec encodes { handle : null-terminated string;
// [ value_len u32; value bytes; version u16 ] if this LSF version
// carries Value/Version (§8.2: "TranslatedString in a pre-version-2
// file: value absent on read; on write to version 1, value is
// dropped").
func translatedStringCodec(t doctree.ValueType) valueCodec {
	return valueCodec{
		encode: func(buf []byte, v doctree.TypedValue, version uint32) []byte {
			buf = append(buf, v.Translated.Handle...)
			buf = append(buf, 0)
			if hasTranslatedStringValue(version) {
				var lb [4]byte
				binary.LittleEndian.PutUint32(lb[:], uint32(len(v.Translated.Value)))
				buf = append(buf, lb[:]...)
				buf = append(buf, v.Translated.Value...)
				var vb [2]byte
				binary.LittleEndian.PutUint16(vb[:], v.Translated.Version)
				buf = append(buf, vb[:]...)
			}
			return buf
		},
		decode: func(data []byte, version uint32) (doctree.TypedValue, error) {
			nul := -1
			for i, b := range data {
				if b == 0 {
					nul = i
					break
				}
			}
			if nul < 0 {
				return doctree.TypedValue{}, &apperr.UnexpectedEOF{Context: "translated string handle"}
			}
			ts := doctree.TranslatedString{Handle: string(data[:nul])}
			rest := data[nul+1:]
			if hasTranslatedStringValue(version) && len(rest) >= 4 {
				vlen := int(binary.LittleEndian.Uint32(rest))
				rest = rest[4:]
				if vlen <= len(rest)-2 {
					ts.Value = string(rest[:vlen])
					ts.HasValue = true
					rest = rest[vlen:]
					ts.Version = binary.LittleEndian.Uint16(rest)
					ts.HasVersion = true
				}
			}
			return doctree.TypedValue{Type: t, Translated: ts}, nil
		},
	}
}
