package lsj

import (
	"bytes"
	"testing"

	"github.com/larian-tools/assetcore/doctree"
)

// lsjSampleDocument builds a fixture with only a single child-id group
// per node, since LSJ's map-based Decode does not promise to preserve
// relative order across distinct child ids (only within one, via its
// JSON array).
func lsjSampleDocument() *doctree.Document {
	doc := doctree.NewDocument(4, 0, 9, 18)

	root := doctree.NewNode("Gustav")
	save := doctree.NewNode("save")
	save.AddAttribute("Name", doctree.TypedValue{Type: doctree.TypeString, Str: "Gustav"})
	save.AddAttribute("Priority", doctree.TypedValue{Type: doctree.TypeInt, I64: 1})
	save.AddAttribute("Scale", doctree.TypedValue{Type: doctree.TypeFloat, F32: 1.5})
	save.AddAttribute("Origin", doctree.TypedValue{Type: doctree.TypeVec3, Floats: []float32{1, 2, 3}})
	save.AddAttribute("DisplayName", doctree.TypedValue{
		Type: doctree.TypeTranslatedString,
		Translated: doctree.TranslatedString{
			Handle:     "h1234567890abcdef1234567890abcd",
			Value:      "Gustav's Camp",
			HasValue:   true,
			Version:    1,
			HasVersion: true,
		},
	})

	tag1 := doctree.NewNode("Tags")
	tag1.AddAttribute("Object", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "S_Player_Tag"})
	tag2 := doctree.NewNode("Tags")
	tag2.AddAttribute("Object", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "S_Camp_Tag"})
	save.AddChild(tag1)
	save.AddChild(tag2)

	root.AddChild(save)
	doc.Regions = append(doc.Regions, &doctree.Region{ID: "Gustav", Root: root})
	return doc
}

func TestLSJEncodeDecodeRoundTrip(t *testing.T) {
	doc := lsjSampleDocument()

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Regions) != 1 || !doc.Regions[0].Root.EqualUnordered(got.Regions[0].Root) {
		t.Fatalf("round trip mismatch (attribute order allowed to differ):\noriginal: %+v\ndecoded:  %+v", doc, got)
	}
	if got.Major != doc.Major || got.Minor != doc.Minor || got.Revision != doc.Revision || got.Build != doc.Build {
		t.Fatalf("version mismatch: got %+v, want major=%d minor=%d revision=%d build=%d",
			got, doc.Major, doc.Minor, doc.Revision, doc.Build)
	}
}

func TestLSJEncodePreservesAttributeOrder(t *testing.T) {
	doc := lsjSampleDocument()

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Encode alone (no Decode) writes attributes in emission order; the
	// "Name" key must appear before "Priority" in the raw JSON text.
	text := buf.String()
	nameIdx := bytes.Index([]byte(text), []byte(`"Name"`))
	priorityIdx := bytes.Index([]byte(text), []byte(`"Priority"`))
	if nameIdx < 0 || priorityIdx < 0 || nameIdx > priorityIdx {
		t.Fatalf("expected \"Name\" to precede \"Priority\" in emitted JSON:\n%s", text)
	}
}
