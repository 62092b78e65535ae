// Package doctree implements the common typed-document model shared by
// the LSF, LSX and LSJ codecs. It is the pivot every format conversion
// goes through: no codec ever talks to another codec directly.
package doctree

// Document is the root of a parsed LSF/LSX/LSJ file.
type Document struct {
	Major, Minor, Revision, Build uint32
	Regions                       []*Region
}

// NewDocument creates an empty document with the given version stamp.
func NewDocument(major, minor, revision, build uint32) *Document {
	return &Document{Major: major, Minor: minor, Revision: revision, Build: build}
}

// Region returns the region with the given id, or nil.
func (d *Document) Region(id string) *Region {
	for _, r := range d.Regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Region is a named top-level subtree. Region order is preserved.
type Region struct {
	ID   string
	Root *Node
}

// Node is a tree element identified by an id and an optional secondary
// key (used by list-of-records encodings to disambiguate siblings that
// share an id). Attribute and child order is preserved.
type Node struct {
	ID         string
	Key        string
	HasKey     bool
	Attributes []*Attribute
	Children   []*Node
}

// NewNode creates a Node with the given id.
func NewNode(id string) *Node {
	return &Node{ID: id}
}

// Attribute returns the node's attribute with the given id, or nil.
func (n *Node) Attribute(id string) *Attribute {
	for _, a := range n.Attributes {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AddAttribute appends an attribute, preserving insertion order.
func (n *Node) AddAttribute(id string, v TypedValue) *Attribute {
	a := &Attribute{ID: id, Value: v}
	n.Attributes = append(n.Attributes, a)
	return a
}

// AddChild appends a child node, preserving insertion order. Nodes
// with identical (id, key) may appear multiple times as ordered
// siblings.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
}

// ChildrenByID returns, in document order, the children sharing id.
func (n *Node) ChildrenByID(id string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.ID == id {
			out = append(out, c)
		}
	}
	return out
}

// Attribute is a single {id, value} pair inside a node. Order inside
// a node is preserved.
type Attribute struct {
	ID    string
	Value TypedValue
}

// Equal performs ordered-tree equality between two documents (§8.1).
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Major != o.Major || d.Minor != o.Minor || d.Revision != o.Revision || d.Build != o.Build {
		return false
	}
	if len(d.Regions) != len(o.Regions) {
		return false
	}
	for i, r := range d.Regions {
		if r.ID != o.Regions[i].ID {
			return false
		}
		if !r.Root.Equal(o.Regions[i].Root) {
			return false
		}
	}
	return true
}

// Equal performs ordered-tree equality between two nodes, including
// attribute and child order.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.ID != o.ID || n.HasKey != o.HasKey || (n.HasKey && n.Key != o.Key) {
		return false
	}
	if len(n.Attributes) != len(o.Attributes) {
		return false
	}
	for i, a := range n.Attributes {
		ob := o.Attributes[i]
		if a.ID != ob.ID || !a.Value.Equal(ob.Value) {
			return false
		}
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i, c := range n.Children {
		if !c.Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// EqualUnordered compares two nodes allowing attribute order to
// differ (but not child order): used to validate the LSF/LSX <-> LSJ
// round-trip, which is documented as lossy for attribute order only
// (§8.1, §9).
func (n *Node) EqualUnordered(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.ID != o.ID || n.HasKey != o.HasKey || (n.HasKey && n.Key != o.Key) {
		return false
	}
	if len(n.Attributes) != len(o.Attributes) {
		return false
	}
	used := make([]bool, len(o.Attributes))
	for _, a := range n.Attributes {
		found := false
		for i, ob := range o.Attributes {
			if used[i] || ob.ID != a.ID {
				continue
			}
			if a.Value.Equal(ob.Value) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i, c := range n.Children {
		if !c.EqualUnordered(o.Children[i]) {
			return false
		}
	}
	return true
}
