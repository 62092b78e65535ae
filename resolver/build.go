package resolver

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/archive"
	"github.com/larian-tools/assetcore/doctree"
	"github.com/larian-tools/assetcore/lsf"
	"github.com/larian-tools/assetcore/util/logger"
)

var log = logger.New("resolver", logger.Default)

// baseArchiveNames are the base archives looked for in the game
// directory before any resolver query can proceed; at least one must be
// present, and finding none is fatal (§4.8.1 step 1).
var baseArchiveNames = []string{"Shared.pak", "Gustav.pak", "GustavX.pak", "Engine.pak"}

// Resolver is the lazily-built, one-shot asset graph (§3.6
// "Lifecycle"). Build is idempotent: concurrent callers block on the
// first build and then share its result read-only.
type Resolver struct {
	gameDir string

	once  sync.Once
	graph *Graph
	err   error
}

// New creates a resolver bound to a game data directory. No I/O
// happens until the first query triggers Build.
func New(gameDir string) *Resolver {
	return &Resolver{gameDir: gameDir}
}

// Ensure triggers the one-shot build if it hasn't run yet, and returns
// its graph (or the build error).
func (r *Resolver) Ensure() (*Graph, error) {
	r.once.Do(func() {
		r.graph, r.err = build(r.gameDir)
	})
	return r.graph, r.err
}

// GetByVisualName is a convenience wrapper that ensures the graph is
// built before querying it (§4.8.2).
func (r *Resolver) GetByVisualName(name string) (*VisualAsset, error) {
	g, err := r.Ensure()
	if err != nil {
		return nil, err
	}
	v, ok := g.GetByVisualName(name)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// GetVisualsForGR2 is a convenience wrapper that ensures the graph is
// built before querying it (§4.8.2).
func (r *Resolver) GetVisualsForGR2(gr2Filename string) ([]*VisualAsset, error) {
	g, err := r.Ensure()
	if err != nil {
		return nil, err
	}
	return g.GetVisualsForGR2(gr2Filename), nil
}

func build(gameDir string) (*Graph, error) {
	basePath, err := findBaseArchive(gameDir)
	if err != nil {
		return nil, err
	}

	paks, err := filepath.Glob(filepath.Join(gameDir, "*.pak"))
	if err != nil {
		return nil, err
	}
	if len(paks) == 0 {
		paks = []string{basePath}
	}
	log.Debug("building asset graph from %d archives under %s", len(paks), gameDir)

	type parsed struct {
		sourcePak string
		doc       *doctree.Document
	}

	var jobs []func() (parsed, error)
	for _, pakPath := range paks {
		pakPath := pakPath
		a, err := archive.Open(pakPath)
		if err != nil {
			continue
		}
		for _, e := range a.List() {
			if !strings.HasSuffix(strings.ToLower(e.Path), ".lsf") {
				continue
			}
			e := e
			jobs = append(jobs, func() (parsed, error) {
				raw, err := a.ReadBytes(e.Path)
				if err != nil {
					return parsed{}, nil
				}
				doc, err := lsf.Read(bytes.NewReader(raw))
				if err != nil {
					return parsed{}, nil
				}
				return parsed{sourcePak: filepath.Base(pakPath), doc: doc}, nil
			})
		}
	}

	// Pure parallel map: each job independently parses one document.
	results := make([]parsed, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(8)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			p, err := job()
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Serial reduce: project recognized bank shapes into the graph.
	// Iterating results in the fixed job order keeps last-write-wins
	// resolution deterministic for a given paks/entries ordering, even
	// though two banks declaring the same id is itself a documented
	// known-issue (§9).
	graph := newGraph()
	for _, p := range results {
		if p.doc == nil {
			continue
		}
		projectDocument(graph, p.doc, p.sourcePak)
	}

	log.Debug("graph built: %d visuals, %d materials", len(graph.visualsByID), len(graph.materialsByID))
	return graph, nil
}

func findBaseArchive(gameDir string) (string, error) {
	for _, name := range baseArchiveNames {
		path := filepath.Join(gameDir, name)
		if _, err := archive.Open(path); err == nil {
			return path, nil
		}
	}
	log.Warn("no base archive found under %s", gameDir)
	return "", &apperr.GameDataPathNotFound{Dir: gameDir}
}

// projectDocument recognizes the four bank shapes and projects their
// resources into graph (§4.8.1 step 4).
func projectDocument(graph *Graph, doc *doctree.Document, sourcePak string) {
	for _, region := range doc.Regions {
		switch region.Root.ID {
		case "VisualBank":
			for _, res := range region.Root.Children {
				graph.addVisual(decodeVisual(res, sourcePak))
			}
		case "MaterialBank":
			for _, res := range region.Root.Children {
				graph.addMaterial(decodeMaterial(res))
			}
		case "TextureBank":
			for _, res := range region.Root.Children {
				graph.addTexture(decodeTexture(res, sourcePak))
			}
		case "VirtualTextureBank":
			for _, res := range region.Root.Children {
				graph.addVirtualTexture(decodeVirtualTexture(res))
			}
		}
	}
}

func attrStr(n *doctree.Node, id string) string {
	a := n.Attribute(id)
	if a == nil {
		return ""
	}
	return a.Value.Str
}

func attrInt(n *doctree.Node, id string) int {
	a := n.Attribute(id)
	if a == nil {
		return 0
	}
	return int(a.Value.I64)
}

func decodeVisual(n *doctree.Node, defaultPak string) *VisualAsset {
	v := &VisualAsset{
		ID:        attrStr(n, "ID"),
		Name:      attrStr(n, "Name"),
		GR2Path:   attrStr(n, "SourceFile"),
		SourcePak: defaultPak,
	}
	if sp := attrStr(n, "SourcePak"); sp != "" {
		v.SourcePak = sp
	}
	for _, mat := range n.ChildrenByID("MaterialID") {
		v.MaterialIDs = append(v.MaterialIDs, attrStr(mat, "ID"))
	}
	for _, tex := range n.ChildrenByID("TextureRef") {
		v.Textures = append(v.Textures, TextureRef{
			ID:        attrStr(tex, "ID"),
			Name:      attrStr(tex, "Name"),
			DDSPath:   attrStr(tex, "DDSPath"),
			SourcePak: attrStr(tex, "SourcePak"),
			Width:     attrInt(tex, "Width"),
			Height:    attrInt(tex, "Height"),
		})
	}
	for _, vt := range n.ChildrenByID("VirtualTextureRef") {
		v.VirtualTextures = append(v.VirtualTextures, VirtualTextureRef{
			ID:       attrStr(vt, "ID"),
			Name:     attrStr(vt, "Name"),
			GTexHash: attrStr(vt, "GTexHash"),
		})
	}
	return v
}

func decodeMaterial(n *doctree.Node) *MaterialDef {
	m := &MaterialDef{
		ID:         attrStr(n, "ID"),
		Name:       attrStr(n, "Name"),
		SourceFile: attrStr(n, "SourceFile"),
	}
	for _, t := range n.ChildrenByID("TextureID") {
		m.TextureIDs = append(m.TextureIDs, attrStr(t, "ID"))
	}
	for _, t := range n.ChildrenByID("VirtualTextureID") {
		m.VirtualTextureIDs = append(m.VirtualTextureIDs, attrStr(t, "ID"))
	}
	return m
}

func decodeTexture(n *doctree.Node, defaultPak string) *TextureRef {
	t := &TextureRef{
		ID:        attrStr(n, "ID"),
		Name:      attrStr(n, "Name"),
		DDSPath:   attrStr(n, "DDSPath"),
		SourcePak: defaultPak,
		Width:     attrInt(n, "Width"),
		Height:    attrInt(n, "Height"),
	}
	if sp := attrStr(n, "SourcePak"); sp != "" {
		t.SourcePak = sp
	}
	return t
}

func decodeVirtualTexture(n *doctree.Node) *VirtualTextureRef {
	return &VirtualTextureRef{
		ID:       attrStr(n, "ID"),
		Name:     attrStr(n, "Name"),
		GTexHash: attrStr(n, "GTexHash"),
	}
}
