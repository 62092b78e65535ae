package lsf

import (
	"bytes"
	"testing"

	"github.com/larian-tools/assetcore/doctree"
	"github.com/larian-tools/assetcore/lsx"
)

func sampleDocument() *doctree.Document {
	doc := doctree.NewDocument(4, 0, 9, 18)

	root := doctree.NewNode("Gustav")
	save := doctree.NewNode("save")
	save.AddAttribute("Name", doctree.TypedValue{Type: doctree.TypeString, Str: "Gustav"})
	save.AddAttribute("Priority", doctree.TypedValue{Type: doctree.TypeInt, I64: 1})
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

	tag := doctree.NewNode("Tags")
	tag.HasKey = true
	tag.Key = "tag-0001"
	tag.AddAttribute("Object", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "S_Player_Tag"})
	save.AddChild(tag)

	root.AddChild(save)
	doc.Regions = append(doc.Regions, &doctree.Region{ID: "Gustav", Root: root})
	return doc
}

func TestLSFWriteReadRoundTrip(t *testing.T) {
	doc := sampleDocument()

	cases := []struct {
		name string
		opts WriteOptions
	}{
		{"uncompressed", WriteOptions{Version: MaxVersion, Compression: CompressionNone, Level: 0}},
		{"default", DefaultWriteOptions()},
	}
	for _, c := range cases {
		opts := c.opts
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, doc, opts); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Read(&buf)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !doc.Equal(got) {
				t.Fatalf("round trip mismatch:\noriginal: %+v\ngot:      %+v", doc, got)
			}
		})
	}
}

// TestLSXToLSFToLSXRoundTrip exercises the cross-codec chain: an LSX
// document decoded, re-serialized as LSF, read back, and re-encoded as
// LSX must match the original byte-for-byte tree.
func TestLSXToLSFToLSXRoundTrip(t *testing.T) {
	original := sampleDocument()

	var lsxBuf bytes.Buffer
	if err := lsx.Encode(&lsxBuf, original); err != nil {
		t.Fatalf("lsx.Encode: %v", err)
	}
	fromLSX, err := lsx.Decode(&lsxBuf)
	if err != nil {
		t.Fatalf("lsx.Decode: %v", err)
	}
	if !original.Equal(fromLSX) {
		t.Fatalf("lsx round trip mismatch before lsf leg")
	}

	var lsfBuf bytes.Buffer
	if err := Write(&lsfBuf, fromLSX, DefaultWriteOptions()); err != nil {
		t.Fatalf("lsf.Write: %v", err)
	}
	fromLSF, err := Read(&lsfBuf)
	if err != nil {
		t.Fatalf("lsf.Read: %v", err)
	}

	var lsxBuf2 bytes.Buffer
	if err := lsx.Encode(&lsxBuf2, fromLSF); err != nil {
		t.Fatalf("lsx.Encode (2nd leg): %v", err)
	}
	final, err := lsx.Decode(&lsxBuf2)
	if err != nil {
		t.Fatalf("lsx.Decode (2nd leg): %v", err)
	}

	if !original.Equal(final) {
		t.Fatalf("lsx->lsf->lsx round trip mismatch:\noriginal: %+v\nfinal:    %+v", original, final)
	}
}
