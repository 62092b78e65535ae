package lsx

import (
	"bytes"
	"testing"

	"github.com/larian-tools/assetcore/doctree"
)

func sampleDocument() *doctree.Document {
	doc := doctree.NewDocument(4, 0, 9, 18)

	region := doctree.NewNode("Gustav")
	root := doctree.NewNode("root")
	root.AddAttribute("Name", doctree.TypedValue{Type: doctree.TypeString, Str: "Gustav"})
	root.AddAttribute("Priority", doctree.TypedValue{Type: doctree.TypeInt, I64: 1})

	tag := doctree.NewNode("Tags")
	tag.HasKey = true
	tag.Key = "tag-0001"
	tag.AddAttribute("Object", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "S_Player_Tag"})
	tag.AddAttribute("Scale", doctree.TypedValue{Type: doctree.TypeFloat, F32: 1.5})
	root.AddChild(tag)

	region.AddChild(root)
	doc.Regions = append(doc.Regions, &doctree.Region{ID: "Gustav", Root: region})
	return doc
}

func TestLSXEncodeDecodeRoundTrip(t *testing.T) {
	doc := sampleDocument()

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !doc.Equal(got) {
		t.Fatalf("round trip mismatch:\noriginal: %+v\ndecoded:  %+v", doc, got)
	}
}

func TestLSXDecodeRejectsWrongRootElement(t *testing.T) {
	_, err := Decode(bytes.NewBufferString(`<notsave/>`))
	if err == nil {
		t.Fatal("expected an error for a non-\"save\" root element")
	}
}
