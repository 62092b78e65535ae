// Package merge implements a three-way structural merge over a
// doctree.Document: base/ours/theirs are compared region by region,
// node list by node list, attribute by attribute, with conflicts
// classified and resolved per a caller-supplied Policy.
package merge

import (
	"fmt"
	"strings"

	"github.com/larian-tools/assetcore/doctree"
	"github.com/larian-tools/assetcore/util/logger"
)

var log = logger.New("merge", logger.Default)

// Policy controls automatic conflict resolution (§4.9).
type Policy struct {
	PreferOurs   bool
	PreferTheirs bool
}

// NodePath identifies where in the document tree a conflict occurred
// (§4.9 "Path tracking").
type NodePath struct {
	RegionID string
	Segments []string // each is node_id, or node_id/key when keyed
}

func (p NodePath) String() string {
	if len(p.Segments) == 0 {
		return p.RegionID
	}
	return p.RegionID + "/" + strings.Join(p.Segments, "/")
}

func (p NodePath) child(n *doctree.Node) NodePath {
	seg := n.ID
	if n.HasKey {
		seg = n.ID + "/" + n.Key
	}
	out := NodePath{RegionID: p.RegionID, Segments: append(append([]string{}, p.Segments...), seg)}
	return out
}

// ConflictKind identifies the shape of a merge conflict (§4.9).
type ConflictKind int

const (
	DeleteModifyConflict ConflictKind = iota
	AddAddConflict
	AttributeConflict
)

func (k ConflictKind) String() string {
	switch k {
	case DeleteModifyConflict:
		return "DeleteModifyConflict"
	case AddAddConflict:
		return "AddAddConflict"
	case AttributeConflict:
		return "AttributeConflict"
	default:
		return "UnknownConflict"
	}
}

// Conflict is one disagreement between ours and theirs that no policy
// resolved. Disagreements a policy resolves are not recorded here; they
// are only counted in OursApplied/TheirsApplied.
type Conflict struct {
	Kind   ConflictKind
	Path   string
	Ours   string
	Theirs string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s(path=%q, ours=%q, theirs=%q)", c.Kind, c.Path, c.Ours, c.Theirs)
}

// Result is the outcome of a full three-way merge (§4.9).
type Result struct {
	Merged        *doctree.Document
	Conflicts     []Conflict
	OursApplied   int
	TheirsApplied int
}

type merger struct {
	policy Policy
	result *Result
}

// Merge performs a three-way structural merge of base/ours/theirs
// under policy.
func Merge(base, ours, theirs *doctree.Document, policy Policy) *Result {
	m := &merger{policy: policy, result: &Result{}}
	m.result.Merged = m.mergeDocument(base, ours, theirs)
	log.Debug("merge complete: %d conflicts, %d ours applied, %d theirs applied",
		len(m.result.Conflicts), m.result.OursApplied, m.result.TheirsApplied)
	return m.result
}

func (m *merger) mergeDocument(base, ours, theirs *doctree.Document) *doctree.Document {
	version := ours
	if version == nil {
		version = theirs
	}
	if version == nil {
		version = base
	}
	out := doctree.NewDocument(version.Major, version.Minor, version.Revision, version.Build)

	ids := orderedRegionIDs(base, ours, theirs)
	for _, id := range ids {
		b := regionByID(base, id)
		o := regionByID(ours, id)
		t := regionByID(theirs, id)
		path := NodePath{RegionID: id}
		merged := m.mergeRegionTriple(path, b, o, t)
		if merged != nil {
			out.Regions = append(out.Regions, merged)
		}
	}
	return out
}

func orderedRegionIDs(docs ...*doctree.Document) []string {
	seen := map[string]bool{}
	var ids []string
	for _, d := range docs {
		if d == nil {
			continue
		}
		for _, r := range d.Regions {
			if !seen[r.ID] {
				seen[r.ID] = true
				ids = append(ids, r.ID)
			}
		}
	}
	return ids
}

func regionByID(d *doctree.Document, id string) *doctree.Region {
	if d == nil {
		return nil
	}
	return d.Region(id)
}

// mergeRegionTriple classifies a region's presence across base/ours/
// theirs and merges or resolves it (§4.9 "Regions are matched by id").
func (m *merger) mergeRegionTriple(path NodePath, b, o, t *doctree.Region) *doctree.Region {
	switch {
	case b != nil && o != nil && t != nil:
		root := m.mergeNodeTriple(path, b.Root, o.Root, t.Root)
		if root == nil {
			return nil
		}
		return &doctree.Region{ID: path.RegionID, Root: root}
	case o == nil && t == nil:
		// both deleted (or never existed): accept the deletion.
		return nil
	case o != nil && t == nil && b != nil:
		// theirs deleted, ours modified relative to base.
		if !o.Root.Equal(b.Root) {
			return m.resolveDeleteModify(path, o, nil)
		}
		return nil
	case t != nil && o == nil && b != nil:
		if !t.Root.Equal(b.Root) {
			return m.resolveDeleteModify(path, nil, t)
		}
		return nil
	case b == nil && o != nil && t != nil:
		if o.Root.Equal(t.Root) {
			return &doctree.Region{ID: path.RegionID, Root: o.Root}
		}
		return m.resolveAddAdd(path, o, t)
	case o != nil:
		return o
	case t != nil:
		return t
	default:
		return nil
	}
}

func (m *merger) resolveDeleteModify(path NodePath, o, t *doctree.Region) *doctree.Region {
	oursText, theirsText := "<deleted>", "<deleted>"
	if o != nil {
		oursText = "<modified>"
	}
	if t != nil {
		theirsText = "<modified>"
	}
	switch {
	case m.policy.PreferOurs:
		m.result.OursApplied++
		return o
	case m.policy.PreferTheirs:
		m.result.TheirsApplied++
		return t
	default:
		log.Warn("delete/modify conflict at %s (ours=%s, theirs=%s)", path, oursText, theirsText)
		m.result.Conflicts = append(m.result.Conflicts, Conflict{
			Kind: DeleteModifyConflict, Path: path.String(), Ours: oursText, Theirs: theirsText,
		})
		return o
	}
}

func (m *merger) resolveAddAdd(path NodePath, o, t *doctree.Region) *doctree.Region {
	switch {
	case m.policy.PreferOurs:
		m.result.OursApplied++
		return o
	case m.policy.PreferTheirs:
		m.result.TheirsApplied++
		return t
	default:
		log.Warn("add/add conflict at %s", path)
		m.result.Conflicts = append(m.result.Conflicts, Conflict{
			Kind: AddAddConflict, Path: path.String(), Ours: "<added>", Theirs: "<added>",
		})
		return o
	}
}
