// Package resolver builds an in-memory asset graph by parsing every
// structured document in a game's archives and linking visuals to
// their materials and textures. The parse fan-out reuses the same
// errgroup pattern as archive.ReadBytesMany: a pure parallel map over
// documents followed by a single-threaded reduce into the graph's
// dictionaries.
package resolver

// VisualAsset is a single renderable visual.
type VisualAsset struct {
	ID              string
	Name            string
	GR2Path         string
	SourcePak       string
	MaterialIDs     []string
	Textures        []TextureRef
	VirtualTextures []VirtualTextureRef
}

// MaterialDef is a material resource (§3.6).
type MaterialDef struct {
	ID                string
	Name              string
	SourceFile        string
	TextureIDs        []string
	VirtualTextureIDs []string
}

// TextureRef is a flat-texture reference carried by a visual or
// material (§3.6).
type TextureRef struct {
	ID         string
	Name       string
	DDSPath    string
	SourcePak  string
	Width      int
	Height     int
}

// VirtualTextureRef is a GTS/GTP-backed texture reference (§3.6).
type VirtualTextureRef struct {
	ID       string
	Name     string
	GTexHash string
}

// Graph is the resolver's fully built, immutable-once-built index
// (§3.6 "Lifecycle").
type Graph struct {
	visualsByID         map[string]*VisualAsset
	visualsByName       map[string]*VisualAsset
	visualsByGR2        map[string][]*VisualAsset
	materialsByID       map[string]*MaterialDef
	texturesByID        map[string]*TextureRef
	virtualTexturesByID map[string]*VirtualTextureRef
}

func newGraph() *Graph {
	return &Graph{
		visualsByID:         map[string]*VisualAsset{},
		visualsByName:       map[string]*VisualAsset{},
		visualsByGR2:        map[string][]*VisualAsset{},
		materialsByID:       map[string]*MaterialDef{},
		texturesByID:        map[string]*TextureRef{},
		virtualTexturesByID: map[string]*VirtualTextureRef{},
	}
}

// GetByVisualName looks up a visual by its human-readable name
// (§4.8.2).
func (g *Graph) GetByVisualName(name string) (*VisualAsset, bool) {
	v, ok := g.visualsByName[name]
	return v, ok
}

// GetByVisualID looks up a visual by its resource id.
func (g *Graph) GetByVisualID(id string) (*VisualAsset, bool) {
	v, ok := g.visualsByID[id]
	return v, ok
}

// GetVisualsForGR2 returns every visual that references the given GR2
// filename; many visuals can share one mesh (§4.8.2).
func (g *Graph) GetVisualsForGR2(gr2Filename string) []*VisualAsset {
	return g.visualsByGR2[gr2Filename]
}

// GetMaterial looks up a material by id.
func (g *Graph) GetMaterial(id string) (*MaterialDef, bool) {
	m, ok := g.materialsByID[id]
	return m, ok
}

// GetTexture looks up a flat texture by id.
func (g *Graph) GetTexture(id string) (*TextureRef, bool) {
	t, ok := g.texturesByID[id]
	return t, ok
}

// GetVirtualTexture looks up a virtual texture by id.
func (g *Graph) GetVirtualTexture(id string) (*VirtualTextureRef, bool) {
	t, ok := g.virtualTexturesByID[id]
	return t, ok
}

func (g *Graph) addVisual(v *VisualAsset) {
	g.visualsByID[v.ID] = v
	g.visualsByName[v.Name] = v
	if v.GR2Path != "" {
		g.visualsByGR2[v.GR2Path] = append(g.visualsByGR2[v.GR2Path], v)
	}
}

func (g *Graph) addMaterial(m *MaterialDef) {
	g.materialsByID[m.ID] = m
}

func (g *Graph) addTexture(t *TextureRef) {
	g.texturesByID[t.ID] = t
}

func (g *Graph) addVirtualTexture(t *VirtualTextureRef) {
	g.virtualTexturesByID[t.ID] = t
}
