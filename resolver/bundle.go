package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/archive"
	"github.com/larian-tools/assetcore/vtex"
)

// TextureArchiveOrder is the prioritized list of texture-bearing
// archives the bundler searches when a TextureRef's SourcePak is
// empty (§4.8.3).
var TextureArchiveOrder = []string{"Textures.pak", "Shared.pak", "GustavX_Textures.pak"}

// findSplitTexturePaks appends any Textures_N.pak archives found under
// gameDir to the fixed TextureArchiveOrder candidates. Some platform
// builds ship textures split across "Textures_1.pak", "Textures_2.pak"
// and so on instead of a single "Textures.pak"; sorted lexically, this
// mirrors the same split-archive convention's discovery order.
func findSplitTexturePaks(gameDir string) []string {
	entries, err := os.ReadDir(gameDir)
	if err != nil {
		return nil
	}
	var paks []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "Textures_") && strings.HasSuffix(name, ".pak") {
			paks = append(paks, name)
		}
	}
	sort.Strings(paks)
	return paks
}

// gtsHashSuffixLen is the length of the content-hash suffix some
// VirtualTextures filenames carry before the extension, e.g.
// "Albedo_Normal_Physical_0_<32 hex chars>.gts".
const gtsHashSuffixLen = 32

// findGTSByHash searches dir (recursively) for a .gts file whose name
// ends in "_{hash}.gts", for builds that bucket virtual textures into
// per-layer-set subfolders rather than a flat "{hash}.gts" file.
func findGTSByHash(dir, hash string) (string, bool) {
	if len(hash) != gtsHashSuffixLen {
		return "", false
	}
	suffix := "_" + hash + ".gts"
	var found string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, suffix) {
			found = path
		}
		return nil
	})
	return found, found != ""
}

// BundleGR2 produces destDir containing every DDS texture referenced
// by any visual using gr2Filename, fetched from the archives under
// gameDir (§4.8.3).
func (r *Resolver) BundleGR2(gr2Filename, gameDir, destDir string) error {
	visuals, err := r.GetVisualsForGR2(gr2Filename)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	log.Debug("bundling %d visuals for %s into %s", len(visuals), gr2Filename, destDir)

	archives := map[string]*archive.Archive{}
	openArchive := func(name string) (*archive.Archive, error) {
		if a, ok := archives[name]; ok {
			return a, nil
		}
		a, err := archive.Open(filepath.Join(gameDir, name))
		if err != nil {
			return nil, err
		}
		archives[name] = a
		return a, nil
	}

	for _, v := range visuals {
		for _, tex := range v.Textures {
			if err := bundleTexture(tex, v.Name, gameDir, destDir, openArchive); err != nil {
				return err
			}
		}
		for _, vt := range v.VirtualTextures {
			if err := bundleVirtualTexture(vt, v.Name, gameDir, destDir); err != nil {
				return err
			}
		}
	}
	return nil
}

// bundleVirtualTexture locates the GTex's GTS/GTP pair by its content
// hash under gameDir, extracts every layer, and writes each under the
// `{visual_name}_{layer_name}.dds` convention (§4.8.3). It first tries
// the flat "{hash}.gts" convention, then falls back to a recursive
// search for "*_{hash}.gts" for builds that bucket virtual textures
// into per-layer-set subfolders.
func bundleVirtualTexture(vt VirtualTextureRef, visualName, gameDir, destDir string) error {
	vtDir := filepath.Join(gameDir, "VirtualTextures")
	gtsPath := filepath.Join(vtDir, vt.GTexHash+".gts")
	f, err := os.Open(gtsPath)
	if err != nil {
		if found, ok := findGTSByHash(vtDir, vt.GTexHash); ok {
			gtsPath = found
			f, err = os.Open(gtsPath)
		}
	}
	if err != nil {
		log.Warn("virtual texture %s referenced by %s not found under %s", vt.Name, visualName, vtDir)
		return &apperr.MissingReferencedTexture{Visual: visualName, Texture: vt.Name}
	}
	defer f.Close()

	gts, err := vtex.ReadGTS(f)
	if err != nil {
		return err
	}

	layers, err := vtex.ExtractAllLayers(gts, filepath.Dir(gtsPath), visualName, 0, true)
	if err != nil {
		return err
	}
	for outName, dds := range layers {
		out, err := os.Create(filepath.Join(destDir, outName+".dds"))
		if err != nil {
			return err
		}
		err = vtex.WriteDDS(out, dds)
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func bundleTexture(tex TextureRef, visualName, gameDir, destDir string, openArchive func(string) (*archive.Archive, error)) error {
	candidates := TextureArchiveOrder
	if tex.SourcePak != "" {
		candidates = []string{tex.SourcePak}
	} else {
		candidates = append(append([]string{}, candidates...), findSplitTexturePaks(gameDir)...)
	}

	for _, pakName := range candidates {
		a, err := openArchive(pakName)
		if err != nil {
			continue
		}
		raw, err := a.ReadBytes(tex.DDSPath)
		if err != nil {
			continue
		}
		outName := fmt.Sprintf("%s_%s", visualName, filepath.Base(tex.DDSPath))
		return os.WriteFile(filepath.Join(destDir, outName), raw, 0o644)
	}

	return &apperr.MissingReferencedTexture{Visual: visualName, Texture: tex.DDSPath}
}
