package merge

import "github.com/larian-tools/assetcore/doctree"

// groupKey is the (id, key) pair node lists are grouped by (§4.9
// "Node lists: group by (id, key)").
type groupKey struct {
	id     string
	key    string
	hasKey bool
}

func keyOf(n *doctree.Node) groupKey {
	return groupKey{id: n.ID, key: n.Key, hasKey: n.HasKey}
}

// mergeNodeTriple merges a single node present (or absent) on each of
// base/ours/theirs, recursing into attributes and children.
func (m *merger) mergeNodeTriple(path NodePath, b, o, t *doctree.Node) *doctree.Node {
	switch {
	case o == nil && t == nil:
		return nil
	case o != nil && t == nil && b != nil:
		if !o.Equal(b) {
			if r := m.resolveNodeDeleteModify(path, o, nil); r != nil {
				return r
			}
			return nil
		}
		return nil
	case t != nil && o == nil && b != nil:
		if !t.Equal(b) {
			if r := m.resolveNodeDeleteModify(path, nil, t); r != nil {
				return r
			}
			return nil
		}
		return nil
	case b == nil && o != nil && t != nil:
		if o.Equal(t) {
			return o
		}
		return m.resolveNodeAddAdd(path, o, t)
	case o != nil && t != nil:
		return m.mergePresentNode(path, b, o, t)
	case o != nil:
		return o
	case t != nil:
		return t
	default:
		return nil
	}
}

func (m *merger) resolveNodeDeleteModify(path NodePath, o, t *doctree.Node) *doctree.Node {
	switch {
	case m.policy.PreferOurs:
		m.result.OursApplied++
		return o
	case m.policy.PreferTheirs:
		m.result.TheirsApplied++
		return t
	default:
		ours, theirs := "<deleted>", "<deleted>"
		if o != nil {
			ours = "<modified>"
		}
		if t != nil {
			theirs = "<modified>"
		}
		m.result.Conflicts = append(m.result.Conflicts, Conflict{
			Kind: DeleteModifyConflict, Path: path.String(), Ours: ours, Theirs: theirs,
		})
		return o
	}
}

func (m *merger) resolveNodeAddAdd(path NodePath, o, t *doctree.Node) *doctree.Node {
	switch {
	case m.policy.PreferOurs:
		m.result.OursApplied++
		return o
	case m.policy.PreferTheirs:
		m.result.TheirsApplied++
		return t
	default:
		m.result.Conflicts = append(m.result.Conflicts, Conflict{
			Kind: AddAddConflict, Path: path.String(), Ours: "<added>", Theirs: "<added>",
		})
		return o
	}
}

// mergePresentNode merges a node present (though possibly absent from
// base) on both ours and theirs: attributes, then children.
func (m *merger) mergePresentNode(path NodePath, b, o, t *doctree.Node) *doctree.Node {
	out := doctree.NewNode(o.ID)
	out.Key = o.Key
	out.HasKey = o.HasKey

	out.Attributes = m.mergeAttributes(path, b, o, t)
	out.Children = m.mergeChildren(path, b, o, t)
	return out
}

func (m *merger) mergeAttributes(path NodePath, b, o, t *doctree.Node) []*doctree.Attribute {
	ids := orderedAttrIDs(b, o, t)
	var out []*doctree.Attribute
	for _, id := range ids {
		ba := attrByID(b, id)
		oa := attrByID(o, id)
		ta := attrByID(t, id)
		merged := m.mergeAttribute(path, id, ba, oa, ta)
		if merged != nil {
			out = append(out, merged)
		}
	}
	return out
}

func orderedAttrIDs(nodes ...*doctree.Node) []string {
	seen := map[string]bool{}
	var ids []string
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for _, a := range n.Attributes {
			if !seen[a.ID] {
				seen[a.ID] = true
				ids = append(ids, a.ID)
			}
		}
	}
	return ids
}

func attrByID(n *doctree.Node, id string) *doctree.Attribute {
	if n == nil {
		return nil
	}
	return n.Attribute(id)
}

func (m *merger) mergeAttribute(path NodePath, id string, b, o, t *doctree.Attribute) *doctree.Attribute {
	switch {
	case o == nil && t == nil:
		return nil
	case o != nil && t == nil:
		if b != nil && !o.Value.Equal(b.Value) {
			return o // ours modified, theirs deleted: no conflict type defined for attribute delete/modify, take ours.
		}
		if b == nil {
			return o
		}
		return nil
	case t != nil && o == nil:
		if b != nil && !t.Value.Equal(b.Value) {
			return t
		}
		if b == nil {
			return t
		}
		return nil
	case o.Value.Equal(t.Value):
		return o
	default:
		return m.resolveAttributeConflict(path, id, o, t)
	}
}

func (m *merger) resolveAttributeConflict(path NodePath, id string, o, t *doctree.Attribute) *doctree.Attribute {
	switch {
	case m.policy.PreferOurs:
		m.result.OursApplied++
		return o
	case m.policy.PreferTheirs:
		m.result.TheirsApplied++
		return t
	default:
		m.result.Conflicts = append(m.result.Conflicts, Conflict{
			Kind:   AttributeConflict,
			Path:   path.child(&doctree.Node{ID: id}).String(),
			Ours:   attrText(o),
			Theirs: attrText(t),
		})
		return o
	}
}

func attrText(a *doctree.Attribute) string {
	if a == nil {
		return ""
	}
	return a.Value.Str
}

// mergeChildren groups children by (id, key) and merges each group
// positionally, reusing the region-level policy (§4.9 "Node lists").
func (m *merger) mergeChildren(path NodePath, b, o, t *doctree.Node) []*doctree.Node {
	bGroups := groupChildren(b)
	oGroups := groupChildren(o)
	tGroups := groupChildren(t)

	keys := orderedGroupKeys(b, o, t)
	var out []*doctree.Node
	for _, k := range keys {
		bList, oList, tList := bGroups[k], oGroups[k], tGroups[k]
		n := maxLen(bList, oList, tList)
		for i := 0; i < n; i++ {
			bn := nodeAt(bList, i)
			on := nodeAt(oList, i)
			tn := nodeAt(tList, i)
			childPath := path
			if on != nil {
				childPath = path.child(on)
			} else if tn != nil {
				childPath = path.child(tn)
			} else if bn != nil {
				childPath = path.child(bn)
			}
			merged := m.mergeNodeTriple(childPath, bn, on, tn)
			if merged != nil {
				out = append(out, merged)
			}
		}
	}
	return out
}

func groupChildren(n *doctree.Node) map[groupKey][]*doctree.Node {
	groups := map[groupKey][]*doctree.Node{}
	if n == nil {
		return groups
	}
	for _, c := range n.Children {
		k := keyOf(c)
		groups[k] = append(groups[k], c)
	}
	return groups
}

func orderedGroupKeys(nodes ...*doctree.Node) []groupKey {
	seen := map[groupKey]bool{}
	var keys []groupKey
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			k := keyOf(c)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func nodeAt(list []*doctree.Node, i int) *doctree.Node {
	if i < len(list) {
		return list[i]
	}
	return nil
}

func maxLen(lists ...[]*doctree.Node) int {
	max := 0
	for _, l := range lists {
		if len(l) > max {
			max = len(l)
		}
	}
	return max
}
