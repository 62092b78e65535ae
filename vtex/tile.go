package vtex

// TileAddress identifies one tile in the quadtree (§3.5).
type TileAddress struct {
	Layer uint32
	Level uint32
	X     uint32
	Y     uint32
}

// Bit widths for the packed tile id: 4 bits layer (up to 3 layers),
// 4 bits level, 12 bits x, 12 bits y. This layout is this codec's own
// choice: only the byte layout of the tables that store the
// already-packed id is fixed elsewhere, not the packing function
// itself.
const (
	tileLayerBits = 4
	tileLevelBits = 4
	tileXBits     = 12
	tileYBits     = 12

	tileYShift     = 0
	tileXShift     = tileYShift + tileYBits
	tileLevelShift = tileXShift + tileXBits
	tileLayerShift = tileLevelShift + tileLevelBits

	tileCoordMask = (1 << tileXBits) - 1
	tileLevelMask = (1 << tileLevelBits) - 1
	tileLayerMask = (1 << tileLayerBits) - 1
)

// Pack collapses a TileAddress into a packed_tile_id (§3.5).
func (a TileAddress) Pack() uint32 {
	return (a.Layer&tileLayerMask)<<tileLayerShift |
		(a.Level&tileLevelMask)<<tileLevelShift |
		(a.X&tileCoordMask)<<tileXShift |
		(a.Y & tileCoordMask)
}

// UnpackTileAddress reverses Pack.
func UnpackTileAddress(packed uint32) TileAddress {
	return TileAddress{
		Layer: (packed >> tileLayerShift) & tileLayerMask,
		Level: (packed >> tileLevelShift) & tileLevelMask,
		X:     (packed >> tileXShift) & tileCoordMask,
		Y:     packed & tileCoordMask,
	}
}

// FindTile looks up a tile address's flat-tile-info by its
// packed_tile_id, per §4.7.1 step 1.
func (g *GTS) FindTile(addr TileAddress) (FlatTileInfo, bool) {
	packed := addr.Pack()
	for idx, id := range g.PackedTileIDs {
		if id == packed {
			for _, fti := range g.FlatTileInfos {
				if int(fti.PackedTileIDIndex) == idx {
					return fti, true
				}
			}
		}
	}
	return FlatTileInfo{}, false
}
