package vtex

import (
	"encoding/binary"
	"io"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/codec"
)

type gtpHeaderFixed struct {
	Version  uint32
	GUID     [16]byte
	PageSize uint32
	NumPages uint32
	Reserved [8]byte
}

// Chunk is one tile payload inside a GTP page (§3.5).
type Chunk struct {
	Codec            uint8
	ParameterBlockID uint8
	Offset           uint32 // u24 on the wire
	Length           uint32 // u24 on the wire
	Payload          []byte
}

// Page is one page_size-aligned block of a GTP file.
type Page struct {
	Chunks []Chunk
}

// GTP is a fully decoded page-data file.
type GTP struct {
	Version  uint32
	GUID     [16]byte
	PageSize uint32
	Pages    []Page
}

// ReadGTP parses a GTP page-data file (§6.3, §3.5).
func ReadGTP(r io.Reader) (*GTP, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "gtp magic"}
	}
	if magic != GTPMagic {
		return nil, &apperr.InvalidFormat{Context: "gtp magic mismatch"}
	}

	var fh gtpHeaderFixed
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "gtp header"}
	}

	g := &GTP{Version: fh.Version, GUID: fh.GUID, PageSize: fh.PageSize, Pages: make([]Page, fh.NumPages)}
	for i := range g.Pages {
		raw := make([]byte, fh.PageSize)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "gtp page body"}
		}
		page, err := decodePage(raw)
		if err != nil {
			return nil, err
		}
		g.Pages[i] = page
	}
	return g, nil
}

func decodePage(raw []byte) (Page, error) {
	if len(raw) < 2 {
		return Page{}, &apperr.UnexpectedEOF{Context: "gtp page chunk count"}
	}
	count := binary.LittleEndian.Uint16(raw[0:2])
	pos := 2

	chunks := make([]Chunk, count)
	for i := range chunks {
		if pos+8 > len(raw) {
			return Page{}, &apperr.UnexpectedEOF{Context: "gtp chunk descriptor"}
		}
		c := Chunk{
			Codec:            raw[pos],
			ParameterBlockID: raw[pos+1],
			Offset:           readU24(raw[pos+2:]),
			Length:           readU24(raw[pos+5:]),
		}
		pos += 8
		chunks[i] = c
	}

	for i := range chunks {
		start, end := int(chunks[i].Offset), int(chunks[i].Offset)+int(chunks[i].Length)
		if end > len(raw) {
			return Page{}, &apperr.UnexpectedEOF{Context: "gtp chunk payload"}
		}
		chunks[i].Payload = raw[start:end]
	}
	return Page{Chunks: chunks}, nil
}

// DecodeChunk decompresses a chunk's payload (if wrapped in a fast
// LZ-family codec) into the raw BC tile bytes (§4.7.1 step 2).
func DecodeChunk(c Chunk, decompressedSize int) ([]byte, error) {
	method := codec.Method(c.Codec)
	if method == codec.MethodNone {
		out := make([]byte, len(c.Payload))
		copy(out, c.Payload)
		return out, nil
	}
	return codec.Decode(method, c.Payload, decompressedSize)
}

func readU24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func writeU24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// encodePage packs chunks into one page_size-aligned byte slice.
func encodePage(chunks []Chunk, pageSize uint32) ([]byte, error) {
	raw := make([]byte, pageSize)
	binary.LittleEndian.PutUint16(raw[0:2], uint16(len(chunks)))

	descTable := 2
	payloadStart := descTable + len(chunks)*8

	pos := payloadStart
	for i, c := range chunks {
		if pos+len(c.Payload) > len(raw) {
			return nil, &apperr.DecompressionError{Codec: "gtp", Msg: "page overflow"}
		}
		off := descTable + i*8
		raw[off] = c.Codec
		raw[off+1] = c.ParameterBlockID
		writeU24(raw[off+2:], uint32(pos))
		writeU24(raw[off+5:], uint32(len(c.Payload)))
		copy(raw[pos:], c.Payload)
		pos += len(c.Payload)
	}
	return raw, nil
}

// WriteGTP serializes g as a GTP page-data file.
func WriteGTP(w io.Writer, g *GTP) error {
	if _, err := w.Write(GTPMagic[:]); err != nil {
		return err
	}
	fh := gtpHeaderFixed{Version: g.Version, GUID: g.GUID, PageSize: g.PageSize, NumPages: uint32(len(g.Pages))}
	if err := binary.Write(w, binary.LittleEndian, fh); err != nil {
		return err
	}
	for _, p := range g.Pages {
		raw, err := encodePage(p.Chunks, g.PageSize)
		if err != nil {
			return err
		}
		if _, err := w.Write(raw); err != nil {
			return err
		}
	}
	return nil
}
