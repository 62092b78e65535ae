package lsf

import (
	"io"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/codec"
	"github.com/larian-tools/assetcore/doctree"
)

// Read parses one LSF document from r (§3.2, §4.3). Region boundaries
// are recovered from the forest structure of the nodes table: every
// record with ParentIndex == -1 starts a new region, named after its
// own node id.
func Read(r io.Reader) (*doctree.Document, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	if hasMetadataChunk(h.Version) {
		// The metadata chunk (lslib_meta hints) carries no information
		// this codec's document model needs; skip its fixed 12-byte body.
		var skip [12]byte
		if _, err := io.ReadFull(r, skip[:]); err != nil {
			return nil, &apperr.UnexpectedEOF{Context: "lsf metadata chunk"}
		}
	}

	stringsRaw, err := readTable(r, h.Method(), int(h.StringsCompressedSize), int(h.StringsUncompressedSize))
	if err != nil {
		return nil, err
	}
	pool, err := decodeStringPool(stringsRaw)
	if err != nil {
		return nil, err
	}

	nodesRaw, err := readTable(r, h.Method(), int(h.NodesCompressedSize), int(h.NodesUncompressedSize))
	if err != nil {
		return nil, err
	}
	nodeRecords, err := decodeNodes(nodesRaw, h.Version)
	if err != nil {
		return nil, err
	}

	attrsRaw, err := readTable(r, h.Method(), int(h.AttributesCompressedSize), int(h.AttributesUncompressedSize))
	if err != nil {
		return nil, err
	}
	attrRecords, err := decodeAttributes(attrsRaw)
	if err != nil {
		return nil, err
	}

	values, err := readTable(r, h.Method(), int(h.ValuesCompressedSize), int(h.ValuesUncompressedSize))
	if err != nil {
		return nil, err
	}

	return build(h, pool, nodeRecords, attrRecords, values)
}

func readTable(r io.Reader, method CompressionMethod, compressedSize, uncompressedSize int) ([]byte, error) {
	if compressedSize == 0 && uncompressedSize == 0 {
		return nil, nil
	}
	raw := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "lsf table body"}
	}
	if method == CompressionNone {
		return raw, nil
	}
	var codecMethod codec.Method
	switch method {
	case CompressionLZ4Frame:
		codecMethod = codec.MethodLZ4Frame
	case CompressionZlib:
		codecMethod = codec.MethodZlib
	default:
		return nil, &apperr.UnsupportedCompressionMethod{Method: byte(method)}
	}
	return codec.Decode(codecMethod, raw, uncompressedSize)
}

// build assembles the typed forest from the four decoded tables,
// validating the index invariants of §4.3: name_index < string_count,
// parent_index in {-1} ∪ [0, node_count), attribute chains terminate,
// offset+length <= values_size.
func build(h *Header, pool *stringPool, nodeRecords []nodeRecord, attrRecords []attrRecord, values []byte) (*doctree.Document, error) {
	stringCount := pool.Count()
	nodeCount := len(nodeRecords)
	attrCount := len(attrRecords)

	nodes := make([]*doctree.Node, nodeCount)
	for i, rec := range nodeRecords {
		if int(rec.NameIndex) >= stringCount {
			return nil, &apperr.InvalidStringIndex{Index: int(rec.NameIndex), Count: stringCount}
		}
		name, _ := pool.Lookup(rec.NameIndex)
		nodes[i] = doctree.NewNode(name)
	}

	for i, rec := range nodeRecords {
		if rec.ParentIndex != -1 {
			if int(rec.ParentIndex) >= nodeCount {
				return nil, &apperr.InvalidNodeIndex{Index: int(rec.ParentIndex), Count: nodeCount}
			}
			nodes[rec.ParentIndex].AddChild(nodes[i])
		}

		attrIdx := rec.FirstAttrIndex
		seen := make(map[int32]bool)
		for attrIdx != -1 {
			if attrIdx < -1 || int(attrIdx) >= attrCount {
				return nil, &apperr.InvalidAttributeIndex{Index: int(attrIdx), Count: attrCount}
			}
			if seen[attrIdx] {
				return nil, &apperr.InvalidAttributeIndex{Index: int(attrIdx), Count: attrCount}
			}
			seen[attrIdx] = true
			a := attrRecords[attrIdx]
			if int(a.NameIndex) >= stringCount {
				return nil, &apperr.InvalidStringIndex{Index: int(a.NameIndex), Count: stringCount}
			}
			attrName, _ := pool.Lookup(a.NameIndex)

			t := doctree.ValueType(a.TypeID)
			vc, ok := valueCodecs[t]
			if !ok {
				return nil, &apperr.InvalidAttributeType{TypeID: a.TypeID}
			}
			end := uint64(a.Offset) + uint64(a.Length)
			if end > uint64(len(values)) {
				return nil, &apperr.UnexpectedEOF{Context: "lsf attribute value out of values blob"}
			}
			v, err := vc.decode(values[a.Offset:end], h.Version)
			if err != nil {
				return nil, err
			}
			v.Type = t
			nodes[i].AddAttribute(attrName, v)

			attrIdx = a.NextAttrIndex
		}
	}

	doc := doctree.NewDocument(h.EngineMajor, h.EngineMinor, h.EngineRevision, h.EngineBuild)
	for i, rec := range nodeRecords {
		if rec.ParentIndex == -1 {
			doc.Regions = append(doc.Regions, &doctree.Region{ID: nodes[i].ID, Root: nodes[i]})
		}
	}
	return doc, nil
}
