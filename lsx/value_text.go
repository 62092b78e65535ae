package lsx

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/doctree"
)

// renderValueText renders a TypedValue's text-form "value" attribute
// (§4.4): decimal for scalars, space-separated components for
// vectors/matrices, hyphenated hex for guid, raw text for strings,
// base64 for an opaque scratch buffer.
func renderValueText(v doctree.TypedValue) string {
	switch v.Type {
	case doctree.TypeNone:
		return ""
	case doctree.TypeFloat:
		return strconv.FormatFloat(float64(v.F32), 'g', -1, 32)
	case doctree.TypeDouble:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case doctree.TypeBool:
		if v.I64 != 0 {
			return "True"
		}
		return "False"
	case doctree.TypeByte, doctree.TypeShort, doctree.TypeUShort, doctree.TypeInt,
		doctree.TypeUInt, doctree.TypeUInt64, doctree.TypeLong, doctree.TypeInt8, doctree.TypeInt64:
		return strconv.FormatInt(v.I64, 10)
	case doctree.TypeIVec2, doctree.TypeIVec3, doctree.TypeIVec4:
		parts := make([]string, len(v.Ints))
		for i, c := range v.Ints {
			parts[i] = strconv.FormatInt(int64(c), 10)
		}
		return strings.Join(parts, " ")
	case doctree.TypeVec2, doctree.TypeVec3, doctree.TypeVec4, doctree.TypeMat2, doctree.TypeMat3, doctree.TypeMat4:
		parts := make([]string, len(v.Floats))
		for i, c := range v.Floats {
			parts[i] = strconv.FormatFloat(float64(c), 'g', -1, 32)
		}
		return strings.Join(parts, " ")
	case doctree.TypeString, doctree.TypeFixedString, doctree.TypeLSString,
		doctree.TypeWString, doctree.TypeLSWString, doctree.TypePath:
		return v.Str
	case doctree.TypeScratchBuffer:
		return base64.StdEncoding.EncodeToString(v.Bytes)
	case doctree.TypeGuid:
		return renderGuid(v.Guid)
	}
	return ""
}

func renderGuid(g [16]byte) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(g[0:4]), hex.EncodeToString(g[4:6]), hex.EncodeToString(g[6:8]),
		hex.EncodeToString(g[8:10]), hex.EncodeToString(g[10:16]))
}

func parseGuid(s string) ([16]byte, error) {
	var g [16]byte
	stripped := strings.ReplaceAll(s, "-", "")
	if len(stripped) != 32 {
		return g, &apperr.InvalidFormat{Context: "guid text length"}
	}
	decoded, err := hex.DecodeString(stripped)
	if err != nil {
		return g, &apperr.InvalidFormat{Context: "guid text digit", Err: err}
	}
	copy(g[:], decoded)
	return g, nil
}

// parseValueText parses an attribute's text-form value back into a
// TypedValue for type t.
func parseValueText(t doctree.ValueType, value string, hasValue bool, handle string, hasHandle bool, version string, hasVersion bool) (doctree.TypedValue, error) {
	switch t {
	case doctree.TypeNone:
		return doctree.TypedValue{Type: t}, nil
	case doctree.TypeFloat:
		f, _ := strconv.ParseFloat(value, 32)
		return doctree.TypedValue{Type: t, F32: float32(f)}, nil
	case doctree.TypeDouble:
		f, _ := strconv.ParseFloat(value, 64)
		return doctree.TypedValue{Type: t, F64: f}, nil
	case doctree.TypeBool:
		b := value == "True" || value == "true" || value == "1"
		i64 := int64(0)
		if b {
			i64 = 1
		}
		return doctree.TypedValue{Type: t, I64: i64}, nil
	case doctree.TypeByte, doctree.TypeShort, doctree.TypeUShort, doctree.TypeInt,
		doctree.TypeUInt, doctree.TypeUInt64, doctree.TypeLong, doctree.TypeInt8, doctree.TypeInt64:
		n, _ := strconv.ParseInt(value, 10, 64)
		return doctree.TypedValue{Type: t, I64: n}, nil
	case doctree.TypeIVec2, doctree.TypeIVec3, doctree.TypeIVec4:
		fields := strings.Fields(value)
		out := make([]int32, t.VecComponents())
		for i := range out {
			if i < len(fields) {
				n, _ := strconv.ParseInt(fields[i], 10, 32)
				out[i] = int32(n)
			}
		}
		return doctree.TypedValue{Type: t, Ints: out}, nil
	case doctree.TypeVec2, doctree.TypeVec3, doctree.TypeVec4, doctree.TypeMat2, doctree.TypeMat3, doctree.TypeMat4:
		fields := strings.Fields(value)
		out := make([]float32, t.VecComponents())
		for i := range out {
			if i < len(fields) {
				f, _ := strconv.ParseFloat(fields[i], 32)
				out[i] = float32(f)
			}
		}
		return doctree.TypedValue{Type: t, Floats: out}, nil
	case doctree.TypeString, doctree.TypeFixedString, doctree.TypeLSString,
		doctree.TypeWString, doctree.TypeLSWString, doctree.TypePath:
		return doctree.TypedValue{Type: t, Str: value}, nil
	case doctree.TypeScratchBuffer:
		b, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return doctree.TypedValue{}, &apperr.InvalidFormat{Context: "scratch buffer base64", Err: err}
		}
		return doctree.TypedValue{Type: t, Bytes: b}, nil
	case doctree.TypeGuid:
		g, err := parseGuid(value)
		if err != nil {
			return doctree.TypedValue{}, err
		}
		return doctree.TypedValue{Type: t, Guid: g}, nil
	case doctree.TypeTranslatedString, doctree.TypeTranslatedFSString:
		ts := doctree.TranslatedString{Handle: handle}
		if hasValue {
			ts.Value = value
			ts.HasValue = true
		}
		if hasVersion {
			n, _ := strconv.ParseUint(version, 10, 16)
			ts.Version = uint16(n)
			ts.HasVersion = true
		}
		return doctree.TypedValue{Type: t, Translated: ts}, nil
	}
	return doctree.TypedValue{}, &apperr.InvalidAttributeType{TypeID: uint32(t)}
}
