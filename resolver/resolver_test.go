package resolver

import (
	"testing"

	"github.com/larian-tools/assetcore/doctree"
)

func TestProjectDocumentRecognizesVisualBank(t *testing.T) {
	doc := doctree.NewDocument(4, 0, 0, 0)
	visual := doctree.NewNode("Visual")
	visual.AddAttribute("ID", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "visual-1"})
	visual.AddAttribute("Name", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "Foo"})
	visual.AddAttribute("SourceFile", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "Meshes/Foo.GR2"})

	texRef := doctree.NewNode("TextureRef")
	texRef.AddAttribute("ID", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "tex-1"})
	texRef.AddAttribute("DDSPath", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "Textures/T.dds"})
	visual.AddChild(texRef)

	bank := doctree.NewNode("VisualBank")
	bank.AddChild(visual)
	doc.Regions = append(doc.Regions, &doctree.Region{ID: "VisualBank", Root: bank})

	g := newGraph()
	projectDocument(g, doc, "Shared.pak")

	got, ok := g.GetByVisualName("Foo")
	if !ok {
		t.Fatal("expected visual Foo to be indexed")
	}
	if got.GR2Path != "Meshes/Foo.GR2" {
		t.Fatalf("GR2Path = %q, want Meshes/Foo.GR2", got.GR2Path)
	}
	if len(got.Textures) != 1 || got.Textures[0].DDSPath != "Textures/T.dds" {
		t.Fatalf("unexpected textures: %+v", got.Textures)
	}

	byGR2 := g.GetVisualsForGR2("Meshes/Foo.GR2")
	if len(byGR2) != 1 || byGR2[0] != got {
		t.Fatalf("expected visual reachable by GR2 filename, got %+v", byGR2)
	}
}

func TestMultipleVisualsShareOneGR2(t *testing.T) {
	doc := doctree.NewDocument(4, 0, 0, 0)
	bank := doctree.NewNode("VisualBank")
	for _, name := range []string{"A", "B"} {
		v := doctree.NewNode("Visual")
		v.AddAttribute("ID", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "visual-" + name})
		v.AddAttribute("Name", doctree.TypedValue{Type: doctree.TypeFixedString, Str: name})
		v.AddAttribute("SourceFile", doctree.TypedValue{Type: doctree.TypeFixedString, Str: "Meshes/Shared.GR2"})
		bank.AddChild(v)
	}
	doc.Regions = append(doc.Regions, &doctree.Region{ID: "VisualBank", Root: bank})

	g := newGraph()
	projectDocument(g, doc, "Shared.pak")

	visuals := g.GetVisualsForGR2("Meshes/Shared.GR2")
	if len(visuals) != 2 {
		t.Fatalf("expected 2 visuals sharing the mesh, got %d", len(visuals))
	}
}
