package vtex

import (
	"bytes"
	"testing"

	"github.com/larian-tools/assetcore/codec"
)

func TestTileAddressPackRoundTrip(t *testing.T) {
	addr := TileAddress{Layer: 2, Level: 3, X: 17, Y: 42}
	got := UnpackTileAddress(addr.Pack())
	if got != addr {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, addr)
	}
}

func TestGTSRoundTrip(t *testing.T) {
	g := &GTS{
		Version:    1,
		TileWidth:  256,
		TileHeight: 256,
		TileBorder: 4,
		PageSize:   65536,
		Layers:     []Layer{{Name: "base"}, {Name: "normal"}},
		Levels:     []Level{{WidthTiles: 2, HeightTiles: 2, WidthPixels: 512, HeightPixels: 512}},
		ParameterBlocks: []ParameterBlock{{BCFormat: "BC3 "}},
		PackedTileIDs:   []uint32{TileAddress{0, 0, 0, 0}.Pack()},
		FlatTileInfos:   []FlatTileInfo{{PageFileIndex: 0, PageIndex: 0, ChunkIndex: 0, PackedTileIDIndex: 0}},
		PageFiles:       []PageFile{{Filename: "page0.gtp"}},
	}

	var buf bytes.Buffer
	if err := WriteGTS(&buf, g); err != nil {
		t.Fatalf("WriteGTS: %v", err)
	}
	got, err := ReadGTS(&buf)
	if err != nil {
		t.Fatalf("ReadGTS: %v", err)
	}
	if len(got.Layers) != 2 || got.Layers[0].Name != "base" || got.Layers[1].Name != "normal" {
		t.Fatalf("layers mismatch: %+v", got.Layers)
	}
	if len(got.Levels) != 1 || got.Levels[0].WidthPixels != 512 {
		t.Fatalf("levels mismatch: %+v", got.Levels)
	}
	if len(got.PageFiles) != 1 || got.PageFiles[0].Filename != "page0.gtp" {
		t.Fatalf("page files mismatch: %+v", got.PageFiles)
	}
}

func TestGTPRoundTrip(t *testing.T) {
	gtp := &GTP{
		Version:  1,
		PageSize: 4096,
		Pages: []Page{
			{Chunks: []Chunk{
				{Codec: byte(codec.MethodNone), ParameterBlockID: 0, Payload: []byte("tile-one-payload")},
				{Codec: byte(codec.MethodNone), ParameterBlockID: 0, Payload: []byte("tile-two-payload")},
			}},
		},
	}

	var buf bytes.Buffer
	if err := WriteGTP(&buf, gtp); err != nil {
		t.Fatalf("WriteGTP: %v", err)
	}
	got, err := ReadGTP(&buf)
	if err != nil {
		t.Fatalf("ReadGTP: %v", err)
	}
	if len(got.Pages) != 1 || len(got.Pages[0].Chunks) != 2 {
		t.Fatalf("unexpected page/chunk shape: %+v", got.Pages)
	}
	if string(got.Pages[0].Chunks[0].Payload) != "tile-one-payload" {
		t.Fatalf("chunk 0 payload mismatch: %q", got.Pages[0].Chunks[0].Payload)
	}
	if string(got.Pages[0].Chunks[1].Payload) != "tile-two-payload" {
		t.Fatalf("chunk 1 payload mismatch: %q", got.Pages[0].Chunks[1].Payload)
	}
}

func TestDDSRoundTrip(t *testing.T) {
	d := &DDS{Width: 4, Height: 4, FourCC: [4]byte{'D', 'X', 'T', '5'}, Data: bytes.Repeat([]byte{0xAB}, 16)}
	var buf bytes.Buffer
	if err := WriteDDS(&buf, d); err != nil {
		t.Fatalf("WriteDDS: %v", err)
	}
	got, err := ReadDDS(&buf)
	if err != nil {
		t.Fatalf("ReadDDS: %v", err)
	}
	if got.Width != 4 || got.Height != 4 || got.FourCC != d.FourCC {
		t.Fatalf("envelope mismatch: %+v", got)
	}
	if !bytes.Equal(got.Data, d.Data) {
		t.Fatalf("pixel data mismatch")
	}
}

func TestBuildSingleTileNoMipsNoBorderNoDedup(t *testing.T) {
	src := SourceTexture{
		LayerName: "base",
		DDS:       &DDS{Width: 256, Height: 256, Data: bytes.Repeat([]byte{0x7}, 256*256)},
	}
	cfg := TileSetConfiguration{
		TileWidth:             256,
		TileHeight:            256,
		TileBorder:            0,
		PageSize:              1 << 20,
		CompressionPreference: codec.MethodNone,
	}
	gts, gtp, err := Build([]SourceTexture{src}, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(gts.FlatTileInfos) != 1 {
		t.Fatalf("expected 1 flat tile info, got %d", len(gts.FlatTileInfos))
	}
	if len(gtp.Pages) != 1 || len(gtp.Pages[0].Chunks) != 1 {
		t.Fatalf("expected 1 page with 1 chunk, got %+v", gtp.Pages)
	}
}
