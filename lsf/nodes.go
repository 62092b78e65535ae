package lsf

import (
	"encoding/binary"

	"github.com/larian-tools/assetcore/apperr"
)

// nodeRecord mirrors one entry of the nodes table (§3.2): every
// *_index is either -1 (absent) or in range of its table.
type nodeRecord struct {
	NameIndex         uint32
	ParentIndex       int32
	NextSiblingIndex  int32
	FirstAttrIndex    int32
}

func encodeNodes(records []nodeRecord, version uint32) []byte {
	wide := nodeRecordWidth(version) == 16
	buf := make([]byte, 0, len(records)*nodeRecordWidth(version))
	for _, r := range records {
		var tmp [16]byte
		binary.LittleEndian.PutUint32(tmp[0:4], r.NameIndex)
		binary.LittleEndian.PutUint32(tmp[4:8], uint32(r.ParentIndex))
		if wide {
			binary.LittleEndian.PutUint32(tmp[8:12], uint32(r.NextSiblingIndex))
			binary.LittleEndian.PutUint32(tmp[12:16], uint32(r.FirstAttrIndex))
			buf = append(buf, tmp[:16]...)
		} else {
			// Versions 1-2: 12-byte records narrow the sibling/attr
			// indices to 16 bits each (§6.2).
			binary.LittleEndian.PutUint16(tmp[8:10], uint16(int16(r.NextSiblingIndex)))
			binary.LittleEndian.PutUint16(tmp[10:12], uint16(int16(r.FirstAttrIndex)))
			buf = append(buf, tmp[:12]...)
		}
	}
	return buf
}

func decodeNodes(data []byte, version uint32) ([]nodeRecord, error) {
	width := nodeRecordWidth(version)
	if len(data)%width != 0 {
		return nil, &apperr.UnexpectedEOF{Context: "lsf nodes table truncated record"}
	}
	count := len(data) / width
	out := make([]nodeRecord, count)
	for i := 0; i < count; i++ {
		rec := data[i*width : i*width+width]
		out[i].NameIndex = binary.LittleEndian.Uint32(rec[0:4])
		out[i].ParentIndex = int32(binary.LittleEndian.Uint32(rec[4:8]))
		if width == 16 {
			out[i].NextSiblingIndex = int32(binary.LittleEndian.Uint32(rec[8:12]))
			out[i].FirstAttrIndex = int32(binary.LittleEndian.Uint32(rec[12:16]))
		} else {
			out[i].NextSiblingIndex = int32(int16(binary.LittleEndian.Uint16(rec[8:10])))
			out[i].FirstAttrIndex = int32(int16(binary.LittleEndian.Uint16(rec[10:12])))
		}
	}
	return out, nil
}
