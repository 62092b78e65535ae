// Package lsf implements the binary LSF document codec: a typed tree
// serialization with interned strings and a side-band value heap,
// versioned across seven revisions.
package lsf

import (
	"encoding/binary"
	"io"

	"github.com/larian-tools/assetcore/apperr"
)

// Magic is the four-byte LSF file signature ("LSOF", §6.2).
var Magic = [4]byte{'L', 'S', 'O', 'F'}

// CompressionMethod identifies how one of the four LSF tables was
// compressed (§3.2).
type CompressionMethod byte

const (
	CompressionNone CompressionMethod = iota
	CompressionLZ4Frame
	CompressionZlib
)

// MinVersion/MaxVersion bound the LSF revisions this codec dispatches
// through its version-indexed strategy table (§4.3).
const (
	MinVersion = 1
	MaxVersion = 7

	// versionMetadataChunk is the first version that inserts a
	// metadata chunk between the header and the strings table (§6.2).
	versionMetadataChunk = 2
	// versionWideNodeRecords is the first version using 16-byte node
	// records; versions 1-2 use 12-byte records (§6.2).
	versionWideNodeRecords = 3
	// versionTranslatedStringValue is the first version that carries
	// TranslatedString.Value/Version on the wire (§3.1, §8.2).
	versionTranslatedStringValue = 2
)

// Header is the bit-exact LSF header (§6.2). Offsets 58..63 (reserved
// / metadata) are not modelled as fields: the metadata chunk itself
// (when present) is read/written immediately after this header by the
// caller.
type Header struct {
	Version uint32

	EngineMajor, EngineMinor, EngineRevision, EngineBuild uint32

	StringsUncompressedSize, StringsCompressedSize     uint32
	NodesUncompressedSize, NodesCompressedSize          uint32
	AttributesUncompressedSize, AttributesCompressedSize uint32
	ValuesUncompressedSize, ValuesCompressedSize         uint32

	CompressionFlags byte
	HasSiblingData   byte
}

// Method returns the table compression method encoded in the low
// nibble of CompressionFlags.
func (h *Header) Method() CompressionMethod {
	return CompressionMethod(h.CompressionFlags & 0x0F)
}

// Level returns the compression level encoded in the high nibble of
// CompressionFlags.
func (h *Header) Level() byte {
	return (h.CompressionFlags >> 4) & 0x0F
}

func readHeader(r io.Reader) (*Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "lsf header magic"}
	}
	if magic != Magic {
		return nil, &apperr.InvalidLsfMagic{Got: magic}
	}

	var raw struct {
		Version                                              uint32
		EngineMajor, EngineMinor, EngineRevision, EngineBuild uint32
		StringsUncompressed, StringsCompressed               uint32
		NodesUncompressed, NodesCompressed                   uint32
		AttributesUncompressed, AttributesCompressed         uint32
		ValuesUncompressed, ValuesCompressed                 uint32
		CompressionFlags                                     byte
		HasSiblingData                                       byte
		Reserved                                             [6]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "lsf header body"}
	}
	if raw.Version < MinVersion || raw.Version > MaxVersion {
		return nil, &apperr.UnsupportedLsfVersion{Version: raw.Version}
	}

	return &Header{
		Version:                    raw.Version,
		EngineMajor:                raw.EngineMajor,
		EngineMinor:                raw.EngineMinor,
		EngineRevision:             raw.EngineRevision,
		EngineBuild:                raw.EngineBuild,
		StringsUncompressedSize:    raw.StringsUncompressed,
		StringsCompressedSize:      raw.StringsCompressed,
		NodesUncompressedSize:      raw.NodesUncompressed,
		NodesCompressedSize:        raw.NodesCompressed,
		AttributesUncompressedSize: raw.AttributesUncompressed,
		AttributesCompressedSize:   raw.AttributesCompressed,
		ValuesUncompressedSize:     raw.ValuesUncompressed,
		ValuesCompressedSize:       raw.ValuesCompressed,
		CompressionFlags:           raw.CompressionFlags,
		HasSiblingData:             raw.HasSiblingData,
	}, nil
}

func writeHeader(w io.Writer, h *Header) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	raw := struct {
		Version                                              uint32
		EngineMajor, EngineMinor, EngineRevision, EngineBuild uint32
		StringsUncompressed, StringsCompressed               uint32
		NodesUncompressed, NodesCompressed                   uint32
		AttributesUncompressed, AttributesCompressed         uint32
		ValuesUncompressed, ValuesCompressed                 uint32
		CompressionFlags                                     byte
		HasSiblingData                                       byte
		Reserved                                             [6]byte
	}{
		Version:               h.Version,
		EngineMajor:            h.EngineMajor,
		EngineMinor:            h.EngineMinor,
		EngineRevision:         h.EngineRevision,
		EngineBuild:            h.EngineBuild,
		StringsUncompressed:    h.StringsUncompressedSize,
		StringsCompressed:      h.StringsCompressedSize,
		NodesUncompressed:      h.NodesUncompressedSize,
		NodesCompressed:        h.NodesCompressedSize,
		AttributesUncompressed: h.AttributesUncompressedSize,
		AttributesCompressed:   h.AttributesCompressedSize,
		ValuesUncompressed:     h.ValuesUncompressedSize,
		ValuesCompressed:       h.ValuesCompressedSize,
		CompressionFlags:       h.CompressionFlags,
		HasSiblingData:         h.HasSiblingData,
	}
	return binary.Write(w, binary.LittleEndian, &raw)
}

// nodeRecordWidth returns the on-wire size of one nodes-table record
// for the given LSF version (§6.2).
func nodeRecordWidth(version uint32) int {
	if version >= versionWideNodeRecords {
		return 16
	}
	return 12
}

// hasMetadataChunk reports whether this version inserts a metadata
// chunk (carrying lslib_meta hints: GUID byte-swap, extended types)
// between the header and the strings table.
func hasMetadataChunk(version uint32) bool {
	return version >= versionMetadataChunk
}

// hasTranslatedStringValue reports whether TranslatedString values
// carry Value/Version on the wire for this LSF version.
func hasTranslatedStringValue(version uint32) bool {
	return version >= versionTranslatedStringValue
}
