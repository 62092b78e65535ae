package lsf

import (
	"io"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/codec"
	"github.com/larian-tools/assetcore/doctree"
)

// WriteOptions controls the on-wire shape of an LSF document.
type WriteOptions struct {
	Version     uint32
	Compression CompressionMethod
	Level       byte
}

// DefaultWriteOptions targets the newest supported revision with
// Zlib table compression at a moderate level.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Version: MaxVersion, Compression: CompressionZlib, Level: 6}
}

// Write serializes doc as an LSF document to w.
func Write(w io.Writer, doc *doctree.Document, opts WriteOptions) error {
	if opts.Version < MinVersion || opts.Version > MaxVersion {
		return &apperr.UnsupportedLsfVersion{Version: opts.Version}
	}

	pool := newStringPool()
	var nodeRecords []nodeRecord
	var attrRecords []attrRecord
	var values []byte

	for _, region := range doc.Regions {
		flattenNode(region.Root, -1, opts.Version, pool, &nodeRecords, &attrRecords, &values)
	}

	stringsRaw := pool.encode()
	nodesRaw := encodeNodes(nodeRecords, opts.Version)
	attrsRaw := encodeAttributes(attrRecords)

	stringsOut, err := compressTable(stringsRaw, opts)
	if err != nil {
		return err
	}
	nodesOut, err := compressTable(nodesRaw, opts)
	if err != nil {
		return err
	}
	attrsOut, err := compressTable(attrsRaw, opts)
	if err != nil {
		return err
	}
	valuesOut, err := compressTable(values, opts)
	if err != nil {
		return err
	}

	h := &Header{
		Version:                    opts.Version,
		EngineMajor:                doc.Major,
		EngineMinor:                doc.Minor,
		EngineRevision:             doc.Revision,
		EngineBuild:                doc.Build,
		StringsUncompressedSize:    uint32(len(stringsRaw)),
		StringsCompressedSize:      uint32(len(stringsOut)),
		NodesUncompressedSize:      uint32(len(nodesRaw)),
		NodesCompressedSize:        uint32(len(nodesOut)),
		AttributesUncompressedSize: uint32(len(attrsRaw)),
		AttributesCompressedSize:   uint32(len(attrsOut)),
		ValuesUncompressedSize:     uint32(len(values)),
		ValuesCompressedSize:       uint32(len(valuesOut)),
		CompressionFlags:           byte(opts.Compression) | (opts.Level << 4),
	}

	if err := writeHeader(w, h); err != nil {
		return err
	}
	if hasMetadataChunk(opts.Version) {
		var meta [12]byte
		if _, err := w.Write(meta[:]); err != nil {
			return err
		}
	}
	for _, b := range [][]byte{stringsOut, nodesOut, attrsOut, valuesOut} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func compressTable(raw []byte, opts WriteOptions) ([]byte, error) {
	if opts.Compression == CompressionNone {
		return raw, nil
	}
	var method codec.Method
	switch opts.Compression {
	case CompressionLZ4Frame:
		method = codec.MethodLZ4Frame
	case CompressionZlib:
		method = codec.MethodZlib
	default:
		return nil, &apperr.UnsupportedCompressionMethod{Method: byte(opts.Compression)}
	}
	return codec.Encode(method, raw, int(opts.Level))
}

// flattenNode performs a depth-first walk of the document tree,
// appending one nodeRecord per node (linked to parentIdx) and one
// attrRecord per attribute, and appending each attribute's encoded
// bytes to the shared values blob.
func flattenNode(n *doctree.Node, parentIdx int32, version uint32, pool *stringPool, nodeRecords *[]nodeRecord, attrRecords *[]attrRecord, values *[]byte) int32 {
	selfIdx := int32(len(*nodeRecords))
	*nodeRecords = append(*nodeRecords, nodeRecord{
		NameIndex:        pool.Intern(n.ID),
		ParentIndex:      parentIdx,
		NextSiblingIndex: -1,
		FirstAttrIndex:   -1,
	})

	firstAttr := int32(-1)
	prevAttr := int32(-1)
	for _, a := range n.Attributes {
		idx := int32(len(*attrRecords))
		offset := uint32(len(*values))

		codecEntry, ok := valueCodecs[a.Value.Type]
		if !ok {
			codecEntry = valueCodecs[doctree.TypeNone]
		}
		*values = codecEntry.encode(*values, a.Value, version)
		length := uint32(len(*values)) - offset

		*attrRecords = append(*attrRecords, attrRecord{
			NameIndex:     pool.Intern(a.ID),
			TypeID:        uint32(a.Value.Type),
			Length:        length,
			Offset:        offset,
			NextAttrIndex: -1,
		})
		if firstAttr == -1 {
			firstAttr = idx
		} else {
			(*attrRecords)[prevAttr].NextAttrIndex = idx
		}
		prevAttr = idx
	}
	(*nodeRecords)[selfIdx].FirstAttrIndex = firstAttr

	prevChild := int32(-1)
	for _, c := range n.Children {
		childIdx := flattenNode(c, selfIdx, version, pool, nodeRecords, attrRecords, values)
		if prevChild != -1 {
			(*nodeRecords)[prevChild].NextSiblingIndex = childIdx
		}
		prevChild = childIdx
	}

	return selfIdx
}
