package lsf

import (
	"encoding/binary"

	"github.com/larian-tools/assetcore/apperr"
)

// stringPool is the interning dictionary behind the bucketed strings
// table: every interned string appears at most once, keyed by byte
// equality. Wire indices are dense: a string's index is its position in
// append order (on read, the order strings appear across all buckets);
// no (bucket, position) folding is applied.
type stringPool struct {
	index   map[string]int // string -> wire index, for interning
	byIndex []string        // wire index -> string, densely packed by append order
}

func newStringPool() *stringPool {
	return &stringPool{index: make(map[string]int)}
}

// Intern returns the stable wire index for s, adding it to the pool
// if it is not already present.
func (p *stringPool) Intern(s string) uint32 {
	if idx, ok := p.index[s]; ok {
		return uint32(idx)
	}
	idx := len(p.byIndex)
	p.byIndex = append(p.byIndex, s)
	p.index[s] = idx
	return uint32(idx)
}

// Lookup resolves a wire string index back to its text.
func (p *stringPool) Lookup(idx uint32) (string, bool) {
	if int(idx) >= len(p.byIndex) {
		return "", false
	}
	return p.byIndex[idx], true
}

// Count is the number of interned strings.
func (p *stringPool) Count() int {
	return len(p.byIndex)
}

// encode lays the pool out as: bucket_count u32; for each bucket:
// entry_count u16; [length u16; bytes]* (§3.2). Encoding writes one
// string per bucket in insertion order, so a string's wire index equals
// its bucket number. decodeStringPool numbers strings densely in read
// order and applies no bucket stride, so the entries of a bucket that
// holds several strings get consecutive indices.
func (p *stringPool) encode() []byte {
	count := len(p.byIndex)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(count))
	for _, s := range p.byIndex {
		var eb [2]byte
		binary.LittleEndian.PutUint16(eb[:], 1)
		buf = append(buf, eb[:]...)
		var lb [2]byte
		binary.LittleEndian.PutUint16(lb[:], uint16(len(s)))
		buf = append(buf, lb[:]...)
		buf = append(buf, s...)
	}
	return buf
}

func decodeStringPool(data []byte) (*stringPool, error) {
	if len(data) < 4 {
		return newStringPool(), nil
	}
	bucketCount := binary.LittleEndian.Uint32(data)
	off := 4
	p := newStringPool()
	for b := 0; b < int(bucketCount); b++ {
		if off+2 > len(data) {
			return nil, &apperr.UnexpectedEOF{Context: "lsf string bucket header"}
		}
		entryCount := binary.LittleEndian.Uint16(data[off:])
		off += 2
		for e := 0; e < int(entryCount); e++ {
			if off+2 > len(data) {
				return nil, &apperr.UnexpectedEOF{Context: "lsf string entry length"}
			}
			length := int(binary.LittleEndian.Uint16(data[off:]))
			off += 2
			if off+length > len(data) {
				return nil, &apperr.UnexpectedEOF{Context: "lsf string entry bytes"}
			}
			s := string(data[off : off+length])
			off += length
			idx := len(p.byIndex)
			p.byIndex = append(p.byIndex, s)
			p.index[s] = idx
		}
	}
	return p, nil
}
