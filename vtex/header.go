// Package vtex implements the GTS/GTP tiled virtual-texture format: a
// quadtree of BC-compressed tiles split across one metadata file
// (GTS) and one or more page-data files (GTP), with tile
// deduplication by content hash and a packed tile-ID index.
//
// Tile payloads are treated as opaque bytes (DDS/BC decode is out of
// scope); golang.org/x/image is used only for its math/f32 vector type,
// which carries tile origins when tiles are placed into or read from
// the DDS envelope around those opaque tile bytes.
package vtex

import (
	"encoding/binary"
	"io"

	"github.com/larian-tools/assetcore/apperr"
)

// GTSMagic and GTPMagic are the four-byte file signatures (§6.3).
var (
	GTSMagic = [4]byte{'I', 'V', 'T', 'X'}
	GTPMagic = [4]byte{'I', 'V', 'T', 'X'}
)

// Layer identifies one of up to three texture layers a virtual
// texture carries (§3.5).
type Layer struct {
	Name string
}

// Level is one quadtree mip level's tile geometry (§3.5).
type Level struct {
	WidthTiles   uint32
	HeightTiles  uint32
	WidthPixels  uint32
	HeightPixels uint32
}

// ParameterBlock declares the BC compression format tiles under it
// use (§3.5: "parameter_block_id's declared BC format").
type ParameterBlock struct {
	BCFormat string
}

// PageFile names one GTP file this GTS references, resolved relative
// to the GTS's own directory (§4.7.1).
type PageFile struct {
	Filename string
}

// FlatTileInfo resolves one packed tile id to its chunk location
// (§3.5).
type FlatTileInfo struct {
	PageFileIndex     uint32
	PageIndex         uint32
	ChunkIndex        uint32
	D                 uint32
	PackedTileIDIndex uint32
}

// GTS is the fully decoded metadata side of a virtual texture set.
type GTS struct {
	Version         uint32
	GUID            [16]byte
	TileWidth       int32
	TileHeight      int32
	TileBorder      int32
	Flags           uint32
	PageSize        uint32
	Layers          []Layer
	Levels          []Level
	ParameterBlocks []ParameterBlock
	PackedTileIDs   []uint32
	FlatTileInfos   []FlatTileInfo
	PageFiles       []PageFile
}

type gtsHeaderFixed struct {
	Version             uint32
	GUID                [16]byte
	TileWidth           int32
	TileHeight          int32
	TileBorder          int32
	Flags               uint32
	PageSize            uint32
	LayerCount          uint32
	LevelCount          uint32
	ParameterBlockCount uint32
	PackedTileIDCount   uint32
	FlatTileInfoCount   uint32
	PageFileCount       uint32
	FourccOffset        uint64
}

// ReadGTS parses a GTS metadata file (§6.3).
func ReadGTS(r io.Reader) (*GTS, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "gts magic"}
	}
	if magic != GTSMagic {
		return nil, &apperr.InvalidFormat{Context: "gts magic mismatch"}
	}

	var fh gtsHeaderFixed
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "gts header"}
	}

	g := &GTS{
		Version:    fh.Version,
		GUID:       fh.GUID,
		TileWidth:  fh.TileWidth,
		TileHeight: fh.TileHeight,
		TileBorder: fh.TileBorder,
		Flags:      fh.Flags,
		PageSize:   fh.PageSize,
	}

	g.Layers = make([]Layer, fh.LayerCount)
	for i := range g.Layers {
		name, err := readPascalString(r)
		if err != nil {
			return nil, err
		}
		g.Layers[i] = Layer{Name: name}
	}

	g.Levels = make([]Level, fh.LevelCount)
	for i := range g.Levels {
		if err := binary.Read(r, binary.LittleEndian, &g.Levels[i]); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "gts level"}
		}
	}

	g.ParameterBlocks = make([]ParameterBlock, fh.ParameterBlockCount)
	for i := range g.ParameterBlocks {
		var raw [4]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "gts parameter block"}
		}
		g.ParameterBlocks[i] = ParameterBlock{BCFormat: string(raw[:])}
	}

	g.PackedTileIDs = make([]uint32, fh.PackedTileIDCount)
	for i := range g.PackedTileIDs {
		if err := binary.Read(r, binary.LittleEndian, &g.PackedTileIDs[i]); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "gts packed tile id"}
		}
	}

	g.FlatTileInfos = make([]FlatTileInfo, fh.FlatTileInfoCount)
	for i := range g.FlatTileInfos {
		if err := binary.Read(r, binary.LittleEndian, &g.FlatTileInfos[i]); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "gts flat tile info"}
		}
	}

	g.PageFiles = make([]PageFile, fh.PageFileCount)
	for i := range g.PageFiles {
		name, err := readPascalString(r)
		if err != nil {
			return nil, err
		}
		g.PageFiles[i] = PageFile{Filename: name}
	}

	return g, nil
}

// WriteGTS serializes g as a GTS metadata file.
func WriteGTS(w io.Writer, g *GTS) error {
	if _, err := w.Write(GTSMagic[:]); err != nil {
		return err
	}
	fh := gtsHeaderFixed{
		Version:             g.Version,
		GUID:                g.GUID,
		TileWidth:           g.TileWidth,
		TileHeight:          g.TileHeight,
		TileBorder:          g.TileBorder,
		Flags:               g.Flags,
		PageSize:            g.PageSize,
		LayerCount:          uint32(len(g.Layers)),
		LevelCount:          uint32(len(g.Levels)),
		ParameterBlockCount: uint32(len(g.ParameterBlocks)),
		PackedTileIDCount:   uint32(len(g.PackedTileIDs)),
		FlatTileInfoCount:   uint32(len(g.FlatTileInfos)),
		PageFileCount:       uint32(len(g.PageFiles)),
	}
	if err := binary.Write(w, binary.LittleEndian, fh); err != nil {
		return err
	}
	for _, l := range g.Layers {
		if err := writePascalString(w, l.Name); err != nil {
			return err
		}
	}
	for _, lv := range g.Levels {
		if err := binary.Write(w, binary.LittleEndian, lv); err != nil {
			return err
		}
	}
	for _, pb := range g.ParameterBlocks {
		var raw [4]byte
		copy(raw[:], pb.BCFormat)
		if _, err := w.Write(raw[:]); err != nil {
			return err
		}
	}
	for _, id := range g.PackedTileIDs {
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
	}
	for _, fti := range g.FlatTileInfos {
		if err := binary.Write(w, binary.LittleEndian, fti); err != nil {
			return err
		}
	}
	for _, pf := range g.PageFiles {
		if err := writePascalString(w, pf.Filename); err != nil {
			return err
		}
	}
	return nil
}

func readPascalString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", &apperr.UnexpectedEOF{Context: "pascal string length"}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", &apperr.UnexpectedEOF{Context: "pascal string body"}
	}
	return string(buf), nil
}

func writePascalString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
