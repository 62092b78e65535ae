package lsf

import (
	"encoding/binary"

	"github.com/larian-tools/assetcore/apperr"
)

// attrRecord mirrors one entry of the attributes table (§3.2).
// Offset/Length address the values table; NextAttrIndex chains
// sibling attributes of the same node.
type attrRecord struct {
	NameIndex      uint32
	TypeID         uint32
	Length         uint32
	Offset         uint32
	NextAttrIndex  int32
}

const attrRecordWidth = 20

func encodeAttributes(records []attrRecord) []byte {
	buf := make([]byte, len(records)*attrRecordWidth)
	for i, r := range records {
		rec := buf[i*attrRecordWidth : i*attrRecordWidth+attrRecordWidth]
		binary.LittleEndian.PutUint32(rec[0:4], r.NameIndex)
		binary.LittleEndian.PutUint32(rec[4:8], r.TypeID)
		binary.LittleEndian.PutUint32(rec[8:12], r.Length)
		binary.LittleEndian.PutUint32(rec[12:16], r.Offset)
		binary.LittleEndian.PutUint32(rec[16:20], uint32(r.NextAttrIndex))
	}
	return buf
}

func decodeAttributes(data []byte) ([]attrRecord, error) {
	if len(data)%attrRecordWidth != 0 {
		return nil, &apperr.UnexpectedEOF{Context: "lsf attributes table truncated record"}
	}
	count := len(data) / attrRecordWidth
	out := make([]attrRecord, count)
	for i := 0; i < count; i++ {
		rec := data[i*attrRecordWidth : i*attrRecordWidth+attrRecordWidth]
		out[i].NameIndex = binary.LittleEndian.Uint32(rec[0:4])
		out[i].TypeID = binary.LittleEndian.Uint32(rec[4:8])
		out[i].Length = binary.LittleEndian.Uint32(rec[8:12])
		out[i].Offset = binary.LittleEndian.Uint32(rec[12:16])
		out[i].NextAttrIndex = int32(binary.LittleEndian.Uint32(rec[16:20]))
	}
	return out, nil
}
