// Package codec implements the block (de)compression primitives
// shared across the archive and container formats: LZ4 frame, Zlib,
// the ZSTD family, and an uncompressed passthrough. BitKnit, the
// proprietary entropy+LZ77 decompressor used inside GR2 sections,
// lives in the bitknit subpackage because it carries enough state
// (frequency tables, distance cache) to deserve its own file set, one
// subpackage per format.
package codec

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/larian-tools/assetcore/apperr"
)

// Method identifies a per-file compression method, matching the LSPK
// entry.compression byte. The LSF compression_flags nibble numbers its
// methods differently (lsf.CompressionMethod); the lsf package maps it
// onto Method explicitly.
type Method byte

const (
	MethodNone Method = iota
	MethodZlib
	MethodLZ4Frame
	MethodLZ4Fast
	MethodZstd
)

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodZlib:
		return "zlib"
	case MethodLZ4Frame:
		return "lz4"
	case MethodLZ4Fast:
		return "lz4fast"
	case MethodZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Decode decompresses src with the given method into exactly
// expectedOutSize bytes. Every codec must fail with a
// *apperr.DecompressionError when the produced output differs in
// size from expectedOutSize: this acts as a strong checksum
// surrogate in place of a CRC.
func Decode(method Method, src []byte, expectedOutSize int) ([]byte, error) {
	switch method {
	case MethodNone:
		if len(src) != expectedOutSize {
			return nil, &apperr.DecompressionError{Codec: "none", Msg: "size mismatch"}
		}
		out := make([]byte, expectedOutSize)
		copy(out, src)
		return out, nil
	case MethodZlib:
		return decodeZlib(src, expectedOutSize)
	case MethodLZ4Frame, MethodLZ4Fast:
		return decodeLZ4(src, expectedOutSize)
	case MethodZstd:
		return decodeZstd(src, expectedOutSize)
	default:
		return nil, &apperr.UnsupportedCompressionMethod{Method: byte(method)}
	}
}

// Encode compresses src with the given method and level. BitKnit has
// no encoder: this engine only ever needs to read GR2 files produced
// by the external content pipeline.
func Encode(method Method, src []byte, level int) ([]byte, error) {
	switch method {
	case MethodNone:
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	case MethodZlib:
		return encodeZlib(src, level)
	case MethodLZ4Frame, MethodLZ4Fast:
		return encodeLZ4(src, level)
	case MethodZstd:
		return encodeZstd(src, level)
	default:
		return nil, &apperr.UnsupportedCompressionMethod{Method: byte(method)}
	}
}

func decodeZlib(src []byte, expectedOutSize int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, &apperr.DecompressionError{Codec: "zlib", Msg: err.Error()}
	}
	defer zr.Close()
	out := make([]byte, expectedOutSize)
	n, err := io.ReadFull(zr, out)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, &apperr.DecompressionError{Codec: "zlib", Msg: err.Error()}
	}
	if n != expectedOutSize {
		return nil, &apperr.DecompressionError{Codec: "zlib", Msg: "size mismatch"}
	}
	// Confirm the stream doesn't carry extra trailing bytes beyond
	// expectedOutSize; a well-formed encode never does.
	var extra [1]byte
	if m, _ := zr.Read(extra[:]); m != 0 {
		return nil, &apperr.DecompressionError{Codec: "zlib", Msg: "size mismatch (trailing data)"}
	}
	return out, nil
}

func encodeZlib(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		level = zlib.DefaultCompression
	}
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(src); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeLZ4(src []byte, expectedOutSize int) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	out := make([]byte, expectedOutSize)
	n, err := io.ReadFull(zr, out)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, &apperr.DecompressionError{Codec: "lz4", Msg: err.Error()}
	}
	if n != expectedOutSize {
		return nil, &apperr.DecompressionError{Codec: "lz4", Msg: "size mismatch"}
	}
	var extra [1]byte
	if m, _ := zr.Read(extra[:]); m != 0 {
		return nil, &apperr.DecompressionError{Codec: "lz4", Msg: "size mismatch (trailing data)"}
	}
	return out, nil
}

func encodeLZ4(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	// lz4 accepts only Fast or Level1..Level9 (consecutive powers of
	// two), so the integer level is mapped onto that set.
	lz4Level := lz4.Fast
	if level > 0 {
		if level > 9 {
			level = 9
		}
		lz4Level = lz4.Level1 << uint(level-1)
	}
	opts := []lz4.Option{lz4.CompressionLevelOption(lz4Level)}
	if err := zw.Apply(opts...); err != nil {
		return nil, err
	}
	if _, err := zw.Write(src); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeZstd(src []byte, expectedOutSize int) ([]byte, error) {
	zr, err := zstd.NewReader(nil)
	if err != nil {
		return nil, &apperr.DecompressionError{Codec: "zstd", Msg: err.Error()}
	}
	defer zr.Close()
	out, err := zr.DecodeAll(src, make([]byte, 0, expectedOutSize))
	if err != nil {
		return nil, &apperr.DecompressionError{Codec: "zstd", Msg: err.Error()}
	}
	if len(out) != expectedOutSize {
		return nil, &apperr.DecompressionError{Codec: "zstd", Msg: "size mismatch"}
	}
	return out, nil
}

func encodeZstd(src []byte, level int) ([]byte, error) {
	lvl := zstd.EncoderLevelFromZstd(level)
	zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(lvl))
	if err != nil {
		return nil, err
	}
	defer zw.Close()
	return zw.EncodeAll(src, nil), nil
}
