// Package gr2 implements the subset of the GR2 3D mesh/skeleton
// container this engine decodes: section parsing, BitKnit-backed
// decompression, and typed-pointer graph traversal down to
// Mesh/Skeleton records.
package gr2

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/codec/bitknit"
)

// sectionCompressionNone/BitKnit identify a GR2 section's compression
// method (§3.4).
const (
	sectionCompressionNone    = 0
	sectionCompressionBitKnit = 4
)

// Magic is the four-byte GR2 file signature.
var Magic = [4]byte{'G', 'R', '2', 0}

type sectionHeader struct {
	Compression        uint32
	DataOffset         uint32
	CompressedLength   uint32
	DecompressedLength uint32
	Alignment          uint32
}

// fileHeader is the fixed prefix of a GR2 file: a magic/version block
// followed by the section table and the root object pointer. This
// engine does not need to round-trip every reserved field, so only
// the fields it reads are modelled.
type fileHeader struct {
	Version      uint32
	FileSize     uint32
	SectionCount uint32
	RootSection  uint32
	RootOffset   uint32
}

// Document is a fully decompressed, concatenated GR2 address space:
// section i's bytes start at SectionBase[i]. Offsets recorded
// elsewhere in the graph are always (section_index, offset-within-
// section) pairs rebased into this flat buffer on load.
type Document struct {
	Data        []byte
	SectionBase []int
	Root        Pointer
}

// Pointer is a resolved (section, offset) address into Document.Data.
type Pointer struct {
	Section int32
	Offset  uint32
}

// Resolve returns the absolute byte offset into d.Data that p
// addresses, or ok=false if p is the null pointer (section == -1).
func (d *Document) Resolve(p Pointer) (int, bool) {
	if p.Section < 0 {
		return 0, false
	}
	if int(p.Section) >= len(d.SectionBase) {
		return 0, false
	}
	return d.SectionBase[p.Section] + int(p.Offset), true
}

// Load parses a GR2 file's section table, decompresses every section
// (BitKnit sections via codec/bitknit, uncompressed sections via a
// raw copy), and concatenates them into one flat address space.
func Load(r io.Reader) (*Document, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "gr2 magic"}
	}
	if magic != Magic {
		return nil, &apperr.InvalidFormat{Context: "gr2 magic mismatch"}
	}

	var fh fileHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "gr2 file header"}
	}

	sections := make([]sectionHeader, fh.SectionCount)
	for i := range sections {
		if err := binary.Read(r, binary.LittleEndian, &sections[i]); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "gr2 section header"}
		}
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "gr2 body"}
	}

	doc := &Document{SectionBase: make([]int, len(sections))}
	for i, s := range sections {
		if int(s.DataOffset)+int(s.CompressedLength) > len(rest) {
			return nil, &apperr.UnexpectedEOF{Context: "gr2 section body"}
		}
		raw := rest[s.DataOffset : s.DataOffset+s.CompressedLength]

		var decoded []byte
		switch s.Compression {
		case sectionCompressionNone:
			decoded = make([]byte, len(raw))
			copy(decoded, raw)
		case sectionCompressionBitKnit:
			decoded, err = bitknit.Decode(raw, int(s.DecompressedLength))
			if err != nil {
				return nil, err
			}
		default:
			return nil, &apperr.UnsupportedCompressionMethod{Method: byte(s.Compression)}
		}

		doc.SectionBase[i] = len(doc.Data)
		doc.Data = append(doc.Data, decoded...)
	}

	doc.Root = Pointer{Section: int32(fh.RootSection), Offset: fh.RootOffset}
	return doc, nil
}

func (d *Document) readUint32(off int) uint32 {
	return binary.LittleEndian.Uint32(d.Data[off : off+4])
}

func (d *Document) readFloat32(off int) float32 {
	return math.Float32frombits(d.readUint32(off))
}

func (d *Document) readPointer(off int) Pointer {
	return Pointer{Section: int32(d.readUint32(off)), Offset: d.readUint32(off + 4)}
}
