package merge

import (
	"testing"

	"github.com/larian-tools/assetcore/doctree"
)

func sampleDoc(attrValue string) *doctree.Document {
	doc := doctree.NewDocument(4, 0, 0, 0)
	n := doctree.NewNode("N")
	n.AddAttribute("A", doctree.TypedValue{Type: doctree.TypeFixedString, Str: attrValue})
	doc.Regions = append(doc.Regions, &doctree.Region{ID: "R", Root: n})
	return doc
}

func TestMergeIdentity(t *testing.T) {
	x := sampleDoc("same")
	res := Merge(x, x, x, Policy{})
	if len(res.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", res.Conflicts)
	}
	if !res.Merged.Equal(x) {
		t.Fatalf("merged document diverged from identical inputs")
	}
}

func TestMergeAttributeConflictDefaultPolicy(t *testing.T) {
	base := sampleDoc("base")
	ours := sampleDoc("mine")
	theirs := sampleDoc("theirs")

	res := Merge(base, ours, theirs, Policy{})
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d: %v", len(res.Conflicts), res.Conflicts)
	}
	c := res.Conflicts[0]
	if c.Kind != AttributeConflict || c.Ours != "mine" || c.Theirs != "theirs" {
		t.Fatalf("unexpected conflict: %+v", c)
	}
	if res.OursApplied != 0 || res.TheirsApplied != 0 {
		t.Fatalf("expected no applied counts under default policy, got ours=%d theirs=%d", res.OursApplied, res.TheirsApplied)
	}

	merged := res.Merged.Region("R").Root.Attribute("A")
	if merged.Value.Str != "mine" {
		t.Fatalf("expected tentative resolution to favor ours, got %q", merged.Value.Str)
	}
}

func TestMergeAttributeConflictPreferTheirs(t *testing.T) {
	base := sampleDoc("base")
	ours := sampleDoc("mine")
	theirs := sampleDoc("theirs")

	res := Merge(base, ours, theirs, Policy{PreferTheirs: true})
	if len(res.Conflicts) != 0 {
		t.Fatalf("expected no recorded conflicts under prefer_theirs, got %v", res.Conflicts)
	}
	if res.TheirsApplied != 1 {
		t.Fatalf("expected theirs_applied = 1, got %d", res.TheirsApplied)
	}
	merged := res.Merged.Region("R").Root.Attribute("A")
	if merged.Value.Str != "theirs" {
		t.Fatalf("expected merged value theirs, got %q", merged.Value.Str)
	}
}

func TestMergeCommutativitySymmetricPolicy(t *testing.T) {
	base := sampleDoc("base")
	ours := sampleDoc("mine")
	theirs := sampleDoc("theirs")

	a := Merge(base, ours, theirs, Policy{})
	b := Merge(base, theirs, ours, Policy{})

	if len(a.Conflicts) != len(b.Conflicts) {
		t.Fatalf("conflict counts differ: %d vs %d", len(a.Conflicts), len(b.Conflicts))
	}
	if len(a.Merged.Regions) != len(b.Merged.Regions) {
		t.Fatalf("merged region counts differ")
	}
}
