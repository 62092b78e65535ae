package vtex

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/math/f32"
	"golang.org/x/sync/errgroup"

	"github.com/larian-tools/assetcore/apperr"
)

// decodedTile is one tile's composed-ready bytes plus its placement.
type decodedTile struct {
	addr    TileAddress
	origin  f32.Vec2
	payload []byte
}

// ExtractLayer decodes every tile of one layer at one level from gts
// (whose directory is gtsDir, used to resolve page-file paths) and
// composes them into a DDS output (§4.7.1).
//
// Per-tile decode is parallelised; composition is serialised, since
// writing into the shared output buffer is tile-order-sensitive
// (§4.7.1 "the composition step is tile-order-sensitive and
// serialised per output").
func ExtractLayer(gts *GTS, gtsDir string, layer, level uint32, stripBorder bool) (*DDS, error) {
	if int(level) >= len(gts.Levels) {
		return nil, &apperr.InvalidFormat{Context: "vtex level out of range"}
	}
	lv := gts.Levels[level]

	effectiveTile := uint32(gts.TileWidth)
	if stripBorder {
		effectiveTile -= uint32(2 * gts.TileBorder)
	}

	type job struct {
		addr TileAddress
		fti  FlatTileInfo
	}
	var jobs []job
	for y := uint32(0); y < lv.HeightTiles; y++ {
		for x := uint32(0); x < lv.WidthTiles; x++ {
			addr := TileAddress{Layer: layer, Level: level, X: x, Y: y}
			fti, ok := gts.FindTile(addr)
			if !ok {
				continue
			}
			jobs = append(jobs, job{addr: addr, fti: fti})
		}
	}

	log.Debug("extracting layer %d level %d: %d tiles", layer, level, len(jobs))
	results := make([]decodedTile, len(jobs))
	var pageCacheMu sync.Mutex
	pageCache := map[string]*GTP{}

	g := new(errgroup.Group)
	g.SetLimit(8)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if int(j.fti.PageFileIndex) >= len(gts.PageFiles) {
				return &apperr.InvalidFormat{Context: "vtex page file index out of range"}
			}
			pf := gts.PageFiles[j.fti.PageFileIndex]

			pageCacheMu.Lock()
			gtp, ok := pageCache[pf.Filename]
			pageCacheMu.Unlock()
			if !ok {
				f, err := os.Open(filepath.Join(gtsDir, pf.Filename))
				if err != nil {
					return err
				}
				defer f.Close()
				gtp, err = ReadGTP(f)
				if err != nil {
					return err
				}
				pageCacheMu.Lock()
				pageCache[pf.Filename] = gtp
				pageCacheMu.Unlock()
			}

			if int(j.fti.PageIndex) >= len(gtp.Pages) {
				return &apperr.InvalidFormat{Context: "vtex page index out of range"}
			}
			page := gtp.Pages[j.fti.PageIndex]
			if int(j.fti.ChunkIndex) >= len(page.Chunks) {
				return &apperr.InvalidFormat{Context: "vtex chunk index out of range"}
			}
			chunk := page.Chunks[j.fti.ChunkIndex]

			fullTile := uint32(gts.TileWidth) * uint32(gts.TileHeight)
			decompressed, err := DecodeChunk(chunk, int(fullTile))
			if err != nil {
				return err
			}

			if stripBorder && gts.TileBorder > 0 {
				decompressed = stripTileBorder(decompressed, uint32(gts.TileWidth), uint32(gts.TileBorder))
			}

			results[i] = decodedTile{
				addr:    j.addr,
				origin:  tileOrigin(j.addr, effectiveTile),
				payload: decompressed,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &DDS{
		Width:  lv.WidthPixels,
		Height: lv.HeightPixels,
		Data:   make([]byte, lv.WidthPixels*lv.HeightPixels),
	}
	for _, t := range results {
		composeTile(out, t, effectiveTile)
	}
	return out, nil
}

// stripTileBorder removes a tileBorder-pixel ring from each side of a
// tileWidth-square tile payload (§4.7.1 step 3).
func stripTileBorder(raw []byte, tileWidth, border uint32) []byte {
	inner := tileWidth - 2*border
	out := make([]byte, inner*inner)
	for y := uint32(0); y < inner; y++ {
		srcOff := (y + border) * tileWidth + border
		dstOff := y * inner
		copy(out[dstOff:dstOff+inner], raw[srcOff:srcOff+inner])
	}
	return out
}

func composeTile(out *DDS, t decodedTile, effectiveTile uint32) {
	x0, y0 := uint32(t.origin[0]), uint32(t.origin[1])
	for row := uint32(0); row < effectiveTile; row++ {
		dstY := y0 + row
		if dstY >= out.Height {
			break
		}
		dstOff := dstY*out.Width + x0
		srcOff := row * effectiveTile
		n := effectiveTile
		if x0+n > out.Width {
			n = out.Width - x0
		}
		if srcOff+n > uint32(len(t.payload)) {
			continue
		}
		copy(out.Data[dstOff:dstOff+n], t.payload[srcOff:srcOff+n])
	}
}

// ExtractAllLayers decodes every layer at the given level, naming
// each output per the bundler's `{visual_name}_{layer_name}.dds`
// convention (§4.8.3).
func ExtractAllLayers(gts *GTS, gtsDir, visualName string, level uint32, stripBorder bool) (map[string]*DDS, error) {
	out := make(map[string]*DDS, len(gts.Layers))
	for i, l := range gts.Layers {
		dds, err := ExtractLayer(gts, gtsDir, uint32(i), level, stripBorder)
		if err != nil {
			return nil, err
		}
		out[fmt.Sprintf("%s_%s", visualName, l.Name)] = dds
	}
	return out, nil
}
