package archive

import (
	"bytes"
	"encoding/binary"

	"github.com/larian-tools/assetcore/apperr"
)

// entryWidth is the fixed 296-byte on-wire size of one file-table
// entry (§3.3, §6.1): a 256-byte null-padded path, three u64 size
// fields, a part/compression byte pair, a flags word, and 12 reserved
// bytes rounding the record out to 296.
const entryWidth = 256 + 8 + 8 + 8 + 1 + 1 + 2 + 12

// FileEntry is one file-table record (§3.3).
type FileEntry struct {
	Path             string
	Offset           uint64
	SizeCompressed   uint64
	SizeDecompressed uint64
	ArchivePart      uint8
	Compression      uint8
	Flags            uint16
}

func encodeEntries(entries []FileEntry) []byte {
	buf := make([]byte, len(entries)*entryWidth)
	for i, e := range entries {
		rec := buf[i*entryWidth : (i+1)*entryWidth]
		copy(rec[:256], e.Path)
		binary.LittleEndian.PutUint64(rec[256:264], e.Offset)
		binary.LittleEndian.PutUint64(rec[264:272], e.SizeCompressed)
		binary.LittleEndian.PutUint64(rec[272:280], e.SizeDecompressed)
		rec[280] = e.ArchivePart
		rec[281] = e.Compression
		binary.LittleEndian.PutUint16(rec[282:284], e.Flags)
	}
	return buf
}

func decodeEntries(data []byte) ([]FileEntry, error) {
	if len(data)%entryWidth != 0 {
		return nil, &apperr.UnexpectedEOF{Context: "lspk file table truncated record"}
	}
	count := len(data) / entryWidth
	if count > MaxEntries {
		return nil, &apperr.ArchiveTooLarge{Limit: MaxEntries, Got: count}
	}
	out := make([]FileEntry, count)
	for i := 0; i < count; i++ {
		rec := data[i*entryWidth : (i+1)*entryWidth]
		nul := bytes.IndexByte(rec[:256], 0)
		if nul < 0 {
			nul = 256
		}
		out[i] = FileEntry{
			Path:             string(rec[:nul]),
			Offset:           binary.LittleEndian.Uint64(rec[256:264]),
			SizeCompressed:   binary.LittleEndian.Uint64(rec[264:272]),
			SizeDecompressed: binary.LittleEndian.Uint64(rec[272:280]),
			ArchivePart:      rec[280],
			Compression:      rec[281],
			Flags:            binary.LittleEndian.Uint16(rec[282:284]),
		}
	}
	return out, nil
}
