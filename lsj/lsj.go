// Package lsj implements the LSJ sibling text form of an LSF document:
// a JSON dialect of the same typed tree. doctree is the only pivot;
// lsj never talks to lsx or lsf directly.
//
// Decoding uses json.Decoder.Decode into a fixed Go struct shape.
// Object key order is not preserved by Go's JSON decoder (LSJ
// attribute order is documented lossy), so Decode makes
// no attempt to recover emission order. Encode, by contrast, writes
// ordered JSON by hand rather than through json.Marshal on a map (map
// key order is always sorted by Marshal), so a round trip through
// Encode alone still preserves order; only passing through Decode
// loses it.
package lsj

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/doctree"
)

type wireDocument struct {
	Save wireSave `json:"save"`
}

type wireSave struct {
	Version wireVersion           `json:"version"`
	Regions map[string]wireNode   `json:"regions"`
}

type wireVersion struct {
	Major    uint32 `json:"major"`
	Minor    uint32 `json:"minor"`
	Revision uint32 `json:"revision"`
	Build    uint32 `json:"build"`
}

type wireNode struct {
	Attributes map[string]wireAttr      `json:"attributes,omitempty"`
	Children   map[string][]wireNode    `json:"children,omitempty"`
}

type wireAttr struct {
	Type    string          `json:"type"`
	Value   json.RawMessage `json:"value"`
	Handle  *string         `json:"handle,omitempty"`
	Version *uint16         `json:"version,omitempty"`
}

// Decode parses an LSJ document from r.
func Decode(r io.Reader) (*doctree.Document, error) {
	var w wireDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		return nil, &apperr.InvalidFormat{Context: "lsj document", Err: err}
	}

	doc := doctree.NewDocument(w.Save.Version.Major, w.Save.Version.Minor, w.Save.Version.Revision, w.Save.Version.Build)
	for id, n := range w.Save.Regions {
		root, err := decNode(id, n)
		if err != nil {
			return nil, err
		}
		doc.Regions = append(doc.Regions, &doctree.Region{ID: id, Root: root})
	}
	return doc, nil
}

func decNode(id string, w wireNode) (*doctree.Node, error) {
	n := doctree.NewNode(id)
	for attrID, wa := range w.Attributes {
		v, err := decAttr(wa)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attrID, err)
		}
		n.AddAttribute(attrID, v)
	}
	for childID, children := range w.Children {
		for _, wc := range children {
			child, err := decNode(childID, wc)
			if err != nil {
				return nil, err
			}
			n.AddChild(child)
		}
	}
	return n, nil
}

func decAttr(wa wireAttr) (doctree.TypedValue, error) {
	t, ok := doctree.TypeByName(wa.Type)
	if !ok {
		return doctree.TypedValue{}, &apperr.InvalidFormat{Context: fmt.Sprintf("lsj attribute type %q", wa.Type)}
	}

	switch t {
	case doctree.TypeTranslatedString, doctree.TypeTranslatedFSString:
		ts := doctree.TranslatedString{}
		if wa.Handle != nil {
			ts.Handle = *wa.Handle
		}
		if len(wa.Value) > 0 {
			var s string
			if err := json.Unmarshal(wa.Value, &s); err == nil {
				ts.Value = s
				ts.HasValue = true
			}
		}
		if wa.Version != nil {
			ts.Version = *wa.Version
			ts.HasVersion = true
		}
		return doctree.TypedValue{Type: t, Translated: ts}, nil
	case doctree.TypeNone:
		return doctree.TypedValue{Type: t}, nil
	case doctree.TypeFloat:
		var f float64
		json.Unmarshal(wa.Value, &f)
		return doctree.TypedValue{Type: t, F32: float32(f)}, nil
	case doctree.TypeDouble:
		var f float64
		json.Unmarshal(wa.Value, &f)
		return doctree.TypedValue{Type: t, F64: f}, nil
	case doctree.TypeBool:
		var b bool
		json.Unmarshal(wa.Value, &b)
		i64 := int64(0)
		if b {
			i64 = 1
		}
		return doctree.TypedValue{Type: t, I64: i64}, nil
	case doctree.TypeByte, doctree.TypeShort, doctree.TypeUShort, doctree.TypeInt,
		doctree.TypeUInt, doctree.TypeUInt64, doctree.TypeLong, doctree.TypeInt8, doctree.TypeInt64:
		var n int64
		json.Unmarshal(wa.Value, &n)
		return doctree.TypedValue{Type: t, I64: n}, nil
	case doctree.TypeIVec2, doctree.TypeIVec3, doctree.TypeIVec4:
		var raw []int32
		json.Unmarshal(wa.Value, &raw)
		return doctree.TypedValue{Type: t, Ints: raw}, nil
	case doctree.TypeVec2, doctree.TypeVec3, doctree.TypeVec4, doctree.TypeMat2, doctree.TypeMat3, doctree.TypeMat4:
		var raw []float32
		json.Unmarshal(wa.Value, &raw)
		return doctree.TypedValue{Type: t, Floats: raw}, nil
	case doctree.TypeString, doctree.TypeFixedString, doctree.TypeLSString,
		doctree.TypeWString, doctree.TypeLSWString, doctree.TypePath:
		var s string
		json.Unmarshal(wa.Value, &s)
		return doctree.TypedValue{Type: t, Str: s}, nil
	case doctree.TypeScratchBuffer:
		var s string
		json.Unmarshal(wa.Value, &s)
		b, err := decodeBase64(s)
		if err != nil {
			return doctree.TypedValue{}, err
		}
		return doctree.TypedValue{Type: t, Bytes: b}, nil
	case doctree.TypeGuid:
		var s string
		json.Unmarshal(wa.Value, &s)
		g, err := parseGuidJSON(s)
		if err != nil {
			return doctree.TypedValue{}, err
		}
		return doctree.TypedValue{Type: t, Guid: g}, nil
	}
	return doctree.TypedValue{}, &apperr.InvalidAttributeType{TypeID: uint32(t)}
}

// Encode renders doc as LSJ, writing ordered JSON text by hand so
// emission order survives this codec alone (§4.4 "attribute order
// preserved by emission order only").
func Encode(w io.Writer, doc *doctree.Document) error {
	var b strings.Builder
	b.WriteString("{\n  \"save\": {\n")
	fmt.Fprintf(&b, "    \"version\": {\"major\": %d, \"minor\": %d, \"revision\": %d, \"build\": %d},\n",
		doc.Major, doc.Minor, doc.Revision, doc.Build)
	b.WriteString("    \"regions\": {\n")
	for i, r := range doc.Regions {
		fmt.Fprintf(&b, "      %s: ", jsonString(r.ID))
		encNode(&b, r.Root, 6)
		if i < len(doc.Regions)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("    }\n  }\n}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func encNode(b *strings.Builder, n *doctree.Node, indent int) {
	ind := strings.Repeat(" ", indent)
	b.WriteString("{\n")
	if len(n.Attributes) > 0 {
		fmt.Fprintf(b, "%s  \"attributes\": {\n", ind)
		for i, a := range n.Attributes {
			fmt.Fprintf(b, "%s    %s: ", ind, jsonString(a.ID))
			encAttr(b, a.Value)
			if i < len(n.Attributes)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "%s  }", ind)
		if len(n.Children) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	if len(n.Children) > 0 {
		groups, order := groupChildren(n.Children)
		fmt.Fprintf(b, "%s  \"children\": {\n", ind)
		for gi, id := range order {
			fmt.Fprintf(b, "%s    %s: [\n", ind, jsonString(id))
			group := groups[id]
			for ci, c := range group {
				fmt.Fprintf(b, "%s      ", ind)
				encNode(b, c, indent+6)
				if ci < len(group)-1 {
					b.WriteString(",")
				}
				b.WriteString("\n")
			}
			fmt.Fprintf(b, "%s    ]", ind)
			if gi < len(order)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "%s  }\n", ind)
	}
	fmt.Fprintf(b, "%s}", ind)
}

// groupChildren buckets children by id, preserving each id's first
// appearance order (LSJ's children map groups same-id siblings into
// one array, per §4.4).
func groupChildren(children []*doctree.Node) (map[string][]*doctree.Node, []string) {
	groups := make(map[string][]*doctree.Node)
	var order []string
	for _, c := range children {
		if _, ok := groups[c.ID]; !ok {
			order = append(order, c.ID)
		}
		groups[c.ID] = append(groups[c.ID], c)
	}
	return groups, order
}

func encAttr(b *strings.Builder, v doctree.TypedValue) {
	typeName := jsonString(v.Type.Name())
	switch v.Type {
	case doctree.TypeTranslatedString, doctree.TypeTranslatedFSString:
		if v.Translated.HasValue {
			fmt.Fprintf(b, `{"type": %s, "handle": %s, "version": %d, "value": %s}`,
				typeName, jsonString(v.Translated.Handle), v.Translated.Version, jsonString(v.Translated.Value))
		} else {
			fmt.Fprintf(b, `{"type": %s, "handle": %s}`, typeName, jsonString(v.Translated.Handle))
		}
	default:
		fmt.Fprintf(b, `{"type": %s, "value": %s}`, typeName, jsonValue(v))
	}
}

func jsonValue(v doctree.TypedValue) string {
	switch v.Type {
	case doctree.TypeNone:
		return "null"
	case doctree.TypeFloat:
		return strconv.FormatFloat(float64(v.F32), 'g', -1, 32)
	case doctree.TypeDouble:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case doctree.TypeBool:
		if v.I64 != 0 {
			return "true"
		}
		return "false"
	case doctree.TypeByte, doctree.TypeShort, doctree.TypeUShort, doctree.TypeInt,
		doctree.TypeUInt, doctree.TypeUInt64, doctree.TypeLong, doctree.TypeInt8, doctree.TypeInt64:
		return strconv.FormatInt(v.I64, 10)
	case doctree.TypeIVec2, doctree.TypeIVec3, doctree.TypeIVec4:
		parts := make([]string, len(v.Ints))
		for i, c := range v.Ints {
			parts[i] = strconv.FormatInt(int64(c), 10)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case doctree.TypeVec2, doctree.TypeVec3, doctree.TypeVec4, doctree.TypeMat2, doctree.TypeMat3, doctree.TypeMat4:
		parts := make([]string, len(v.Floats))
		for i, c := range v.Floats {
			parts[i] = strconv.FormatFloat(float64(c), 'g', -1, 32)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case doctree.TypeString, doctree.TypeFixedString, doctree.TypeLSString,
		doctree.TypeWString, doctree.TypeLSWString, doctree.TypePath:
		return jsonString(v.Str)
	case doctree.TypeScratchBuffer:
		return jsonString(encodeBase64(v.Bytes))
	case doctree.TypeGuid:
		return jsonString(renderGuidJSON(v.Guid))
	}
	return "null"
}

func jsonString(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}
