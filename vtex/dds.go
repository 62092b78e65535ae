package vtex

import (
	"encoding/binary"
	"io"

	"golang.org/x/image/math/f32"

	"github.com/larian-tools/assetcore/apperr"
)

// DDS is the minimal DDS envelope this engine round-trips around an
// opaque BC-compressed payload: just enough header fields to declare
// width/height/format, wrapping the compressed bytes in a typed
// container without decoding them. Actual BC block decode/encode
// stays out of scope.
type DDS struct {
	Width, Height uint32
	FourCC        [4]byte
	Data          []byte
}

const ddsMagicSize = 4
const ddsHeaderSize = 124

var ddsMagic = [4]byte{'D', 'D', 'S', ' '}

// ReadDDS parses a minimal DDS envelope.
func ReadDDS(r io.Reader) (*DDS, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "dds magic"}
	}
	if magic != ddsMagic {
		return nil, &apperr.InvalidFormat{Context: "dds magic mismatch"}
	}

	header := make([]byte, ddsHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "dds header"}
	}
	height := binary.LittleEndian.Uint32(header[8:12])
	width := binary.LittleEndian.Uint32(header[12:16])
	var fourCC [4]byte
	copy(fourCC[:], header[80:84])

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "dds pixel data"}
	}
	return &DDS{Width: width, Height: height, FourCC: fourCC, Data: data}, nil
}

// WriteDDS serializes a minimal DDS envelope.
func WriteDDS(w io.Writer, d *DDS) error {
	if _, err := w.Write(ddsMagic[:]); err != nil {
		return err
	}
	header := make([]byte, ddsHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], ddsHeaderSize)
	binary.LittleEndian.PutUint32(header[8:12], d.Height)
	binary.LittleEndian.PutUint32(header[12:16], d.Width)
	copy(header[80:84], d.FourCC[:])
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(d.Data)
	return err
}

// tileOrigin returns a tile's top-left pixel position within its
// level, in the level's own pixel space, as an f32.Vec2 so the
// composition pass can do its offset arithmetic through a proper
// 2-D vector type.
func tileOrigin(addr TileAddress, effectiveTileSize uint32) f32.Vec2 {
	return f32.Vec2{float32(addr.X * effectiveTileSize), float32(addr.Y * effectiveTileSize)}
}
