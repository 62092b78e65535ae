// Package archive implements the LSPK archive reader/writer:
// split-part archives, per-file compression, parallel extraction and
// a path-sorted streaming writer.
package archive

import (
	"encoding/binary"
	"io"

	"github.com/larian-tools/assetcore/apperr"
)

// Magic is the four-byte LSPK file signature.
var Magic = [4]byte{'L', 'S', 'P', 'K'}

// MaxEntries and MaxFileTableSize bound a file table's claimed size,
// guarding against a corrupt or hostile archive (§7 "archive-too-large").
const (
	MaxEntries       = 1 << 20
	MaxFileTableSize = 1 << 31
)

// header is the bit-exact LSPK header (§6.1).
type header struct {
	Version                  uint32
	FileTableOffset          uint64
	FileTableCompressedSize  uint32
	FileTableDecompressedSize uint32
	CompressionMethod        byte
	NumParts                 byte
	Flags                    uint16
	Priority                 uint32
	MD5                      [16]byte
}

const headerWidth = 4 + 4 + 8 + 4 + 4 + 1 + 1 + 2 + 4 + 16

func readHeader(r io.Reader, path string) (*header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "lspk header magic"}
	}
	if magic != Magic {
		return nil, &apperr.InvalidPakMagic{Path: path, Got: magic}
	}

	var raw struct {
		Version                   uint32
		FileTableOffset           uint64
		FileTableCompressedSize   uint32
		FileTableDecompressedSize uint32
		CompressionMethod         byte
		NumParts                  byte
		Flags                     uint16
		Priority                  uint32
		MD5                       [16]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "lspk header body"}
	}

	return &header{
		Version:                   raw.Version,
		FileTableOffset:           raw.FileTableOffset,
		FileTableCompressedSize:   raw.FileTableCompressedSize,
		FileTableDecompressedSize: raw.FileTableDecompressedSize,
		CompressionMethod:         raw.CompressionMethod,
		NumParts:                  raw.NumParts,
		Flags:                     raw.Flags,
		Priority:                  raw.Priority,
		MD5:                       raw.MD5,
	}, nil
}

func writeHeader(w io.Writer, h *header) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	raw := struct {
		Version                   uint32
		FileTableOffset           uint64
		FileTableCompressedSize   uint32
		FileTableDecompressedSize uint32
		CompressionMethod         byte
		NumParts                  byte
		Flags                     uint16
		Priority                  uint32
		MD5                       [16]byte
	}{
		Version:                   h.Version,
		FileTableOffset:           h.FileTableOffset,
		FileTableCompressedSize:   h.FileTableCompressedSize,
		FileTableDecompressedSize: h.FileTableDecompressedSize,
		CompressionMethod:         h.CompressionMethod,
		NumParts:                  h.NumParts,
		Flags:                     h.Flags,
		Priority:                  h.Priority,
		MD5:                       h.MD5,
	}
	return binary.Write(w, binary.LittleEndian, &raw)
}
