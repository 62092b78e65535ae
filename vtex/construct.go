package vtex

import (
	"crypto/sha256"

	"golang.org/x/sync/errgroup"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/codec"
	"github.com/larian-tools/assetcore/util/logger"
)

var log = logger.New("vtex", logger.Default)

// TileSetConfiguration configures GTS/GTP construction (§4.7.2).
type TileSetConfiguration struct {
	TileWidth             int32
	TileHeight            int32
	TileBorder            int32
	PageSize              uint32
	CompressionPreference codec.Method
	EmbedMip              bool
	Deduplicate           bool
}

// SourceTexture is one input layer for construction: a raw DDS whose
// pixel data is already BC-compressed (§4.7.2 inputs).
type SourceTexture struct {
	LayerName string
	DDS       *DDS
}

// Build constructs a GTS + one GTP from a set of source textures,
// following §4.7.2's numbered steps.
func Build(sources []SourceTexture, cfg TileSetConfiguration) (*GTS, *GTP, error) {
	if len(sources) == 0 {
		return nil, nil, &apperr.InvalidFormat{Context: "vtex build: no source textures"}
	}

	effectiveTile := uint32(cfg.TileWidth) - uint32(2*cfg.TileBorder)
	first := sources[0].DDS
	levels := calculateLevels(first.Width, first.Height, effectiveTile)

	gts := &GTS{
		Version:         1,
		TileWidth:       cfg.TileWidth,
		TileHeight:      cfg.TileHeight,
		TileBorder:      cfg.TileBorder,
		PageSize:        cfg.PageSize,
		Levels:          levels,
		ParameterBlocks: []ParameterBlock{{BCFormat: "BC3 "}},
		PageFiles:       []PageFile{{Filename: "page0.gtp"}},
	}
	for _, s := range sources {
		gts.Layers = append(gts.Layers, Layer{Name: s.LayerName})
	}
	log.Debug("building tile set from %d layers, %d levels", len(sources), len(levels))

	type rawTile struct {
		addr TileAddress
		data []byte
	}
	var allTiles []rawTile
	for layerIdx, s := range sources {
		for levelIdx, lv := range levels {
			for y := uint32(0); y < lv.HeightTiles; y++ {
				for x := uint32(0); x < lv.WidthTiles; x++ {
					addr := TileAddress{Layer: uint32(layerIdx), Level: uint32(levelIdx), X: x, Y: y}
					tile := sliceTile(s.DDS, x, y, uint32(cfg.TileWidth), uint32(cfg.TileBorder))
					allTiles = append(allTiles, rawTile{addr: addr, data: tile})
				}
			}
		}
	}

	// Deduplicate by stable hash (§4.7.2 step 4).
	uniqueData := [][]byte{}
	uniqueIdx := map[string]int{}
	tileUnique := make([]int, len(allTiles))
	for i, t := range allTiles {
		key := string(t.data)
		if cfg.Deduplicate {
			key = hashTile(t.data)
		}
		idx, ok := uniqueIdx[key]
		if !ok || !cfg.Deduplicate {
			idx = len(uniqueData)
			uniqueIdx[key] = idx
			uniqueData = append(uniqueData, t.data)
		}
		tileUnique[i] = idx
	}
	log.Debug("deduplicated %d tiles into %d unique payloads", len(allTiles), len(uniqueData))

	// Compress each unique tile concurrently (§4.7.2 step 5).
	compressed := make([][]byte, len(uniqueData))
	g := new(errgroup.Group)
	g.SetLimit(8)
	for i, data := range uniqueData {
		i, data := i, data
		g.Go(func() error {
			out, err := codec.Encode(cfg.CompressionPreference, data, 1)
			if err != nil {
				return err
			}
			compressed[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Assemble GTP pages (§4.7.2 step 6).
	gtp := &GTP{Version: 1, PageSize: cfg.PageSize}
	uniqueLocation := make([]struct{ page, chunk int }, len(uniqueData))
	var curChunks []Chunk
	curSize := 2 // chunk-count prefix
	pageIdx := 0
	flush := func() {
		if len(curChunks) == 0 {
			return
		}
		gtp.Pages = append(gtp.Pages, Page{Chunks: curChunks})
		curChunks = nil
		curSize = 2
		pageIdx++
	}
	for i, payload := range compressed {
		need := len(payload) + 8
		if curSize+need > int(cfg.PageSize) && len(curChunks) > 0 {
			flush()
		}
		uniqueLocation[i] = struct{ page, chunk int }{pageIdx, len(curChunks)}
		curChunks = append(curChunks, Chunk{
			Codec:            byte(cfg.CompressionPreference),
			ParameterBlockID: 0,
			Payload:          payload,
		})
		curSize += need
	}
	flush()

	// Build packed_tile_ids / flat_tile_infos, sharing chunk
	// coordinates among duplicates (§4.7.2 step 7).
	packedToIndex := map[uint32]int{}
	for i, t := range allTiles {
		packed := t.addr.Pack()
		idx, ok := packedToIndex[packed]
		if !ok {
			idx = len(gts.PackedTileIDs)
			gts.PackedTileIDs = append(gts.PackedTileIDs, packed)
			packedToIndex[packed] = idx
		}
		loc := uniqueLocation[tileUnique[i]]
		gts.FlatTileInfos = append(gts.FlatTileInfos, FlatTileInfo{
			PageFileIndex:     0,
			PageIndex:         uint32(loc.page),
			ChunkIndex:        uint32(loc.chunk),
			PackedTileIDIndex: uint32(idx),
		})
	}

	return gts, gtp, nil
}

// calculateLevels derives the mip pyramid for a texture of the given
// pixel size clipped to the effective tile size (§4.7.2 step 2).
func calculateLevels(widthPixels, heightPixels, effectiveTile uint32) []Level {
	var levels []Level
	w, h := widthPixels, heightPixels
	for w >= effectiveTile && h >= effectiveTile {
		levels = append(levels, Level{
			WidthTiles:   (w + effectiveTile - 1) / effectiveTile,
			HeightTiles:  (h + effectiveTile - 1) / effectiveTile,
			WidthPixels:  w,
			HeightPixels: h,
		})
		w /= 2
		h /= 2
	}
	if len(levels) == 0 {
		levels = append(levels, Level{WidthTiles: 1, HeightTiles: 1, WidthPixels: widthPixels, HeightPixels: heightPixels})
	}
	return levels
}

// sliceTile extracts one tile-sized block (padded by border) from a
// source DDS's pixel data (§4.7.2 step 3).
func sliceTile(d *DDS, x, y, tileWidth, border uint32) []byte {
	effective := tileWidth - 2*border
	out := make([]byte, tileWidth*tileWidth)
	baseX, baseY := x*effective, y*effective
	for row := uint32(0); row < tileWidth; row++ {
		srcY := int64(baseY) + int64(row) - int64(border)
		if srcY < 0 || uint32(srcY) >= d.Height {
			continue
		}
		for col := uint32(0); col < tileWidth; col++ {
			srcX := int64(baseX) + int64(col) - int64(border)
			if srcX < 0 || uint32(srcX) >= d.Width {
				continue
			}
			srcOff := uint32(srcY)*d.Width + uint32(srcX)
			if int(srcOff) >= len(d.Data) {
				continue
			}
			out[row*tileWidth+col] = d.Data[srcOff]
		}
	}
	return out
}

func hashTile(data []byte) string {
	sum := sha256.Sum256(data)
	return string(sum[:])
}
