// Package apperr defines the error taxonomy shared by every codec and
// engine component: each kind from a failure mode carries enough
// context for a single-line CLI diagnostic, while still being
// inspectable by structured callers via errors.As.
package apperr

import "fmt"

// InvalidPakMagic is returned when an LSPK file does not begin with
// the expected "LSPK" magic.
type InvalidPakMagic struct {
	Path string
	Got  [4]byte
}

func (e *InvalidPakMagic) Error() string {
	return fmt.Sprintf("%s: invalid LSPK magic %q", e.Path, e.Got[:])
}

// ArchivePartMissing is returned when a split-archive part file named
// by the header cannot be opened.
type ArchivePartMissing struct {
	Path string
	Part int
}

func (e *ArchivePartMissing) Error() string {
	return fmt.Sprintf("archive part %d missing: %s", e.Part, e.Path)
}

// FileNotFoundInArchive is returned by read_bytes/read_bytes_many when
// a requested path has no entry in the archive's file table.
type FileNotFoundInArchive struct {
	Archive string
	Path    string
}

func (e *FileNotFoundInArchive) Error() string {
	return fmt.Sprintf("%s: file not found in archive: %s", e.Archive, e.Path)
}

// RequestedSubsetEmpty is returned when a filter/path-list extraction
// selects zero entries.
type RequestedSubsetEmpty struct {
	Archive string
}

func (e *RequestedSubsetEmpty) Error() string {
	return fmt.Sprintf("%s: requested subset matched no entries", e.Archive)
}

// ArchiveTooLarge guards against a corrupt or hostile file table
// claiming an unreasonable entry or table-size count.
type ArchiveTooLarge struct {
	Archive string
	Limit   int
	Got     int
}

func (e *ArchiveTooLarge) Error() string {
	return fmt.Sprintf("%s: exceeds limit (%d > %d)", e.Archive, e.Got, e.Limit)
}

// InvalidFormat is a generic "stream exhausted/malformed" error with a
// layer-supplied context string (e.g. which table was being read).
type InvalidFormat struct {
	Context string
	Err     error
}

func (e *InvalidFormat) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid format: %s: %v", e.Context, e.Err)
	}
	return fmt.Sprintf("invalid format: %s", e.Context)
}

func (e *InvalidFormat) Unwrap() error { return e.Err }

// InvalidLsfMagic is returned when an LSF file does not begin with the
// expected "LSOF" magic.
type InvalidLsfMagic struct {
	Got [4]byte
}

func (e *InvalidLsfMagic) Error() string {
	return fmt.Sprintf("invalid LSF magic %q", e.Got[:])
}

// UnsupportedLsfVersion is returned for LSF versions outside 1..7.
type UnsupportedLsfVersion struct {
	Version uint32
}

func (e *UnsupportedLsfVersion) Error() string {
	return fmt.Sprintf("unsupported LSF version %d", e.Version)
}

// InvalidStringIndex is returned when a name_index is out of range of
// the interned string pool.
type InvalidStringIndex struct {
	Index, Count int
}

func (e *InvalidStringIndex) Error() string {
	return fmt.Sprintf("string index %d out of range (count %d)", e.Index, e.Count)
}

// InvalidNodeIndex is returned when a parent/sibling index is out of
// range of the nodes table.
type InvalidNodeIndex struct {
	Index, Count int
}

func (e *InvalidNodeIndex) Error() string {
	return fmt.Sprintf("node index %d out of range (count %d)", e.Index, e.Count)
}

// InvalidAttributeIndex is returned when an attribute chain index is
// out of range, or the chain fails to terminate within the table size.
type InvalidAttributeIndex struct {
	Index, Count int
}

func (e *InvalidAttributeIndex) Error() string {
	return fmt.Sprintf("attribute index %d out of range (count %d)", e.Index, e.Count)
}

// InvalidAttributeType is returned for a type-id with no registered
// codec.
type InvalidAttributeType struct {
	TypeID uint32
}

func (e *InvalidAttributeType) Error() string {
	return fmt.Sprintf("invalid attribute type id %d", e.TypeID)
}

// UnexpectedEOF is returned when a table decoder runs out of bytes
// before satisfying a declared length.
type UnexpectedEOF struct {
	Context string
}

func (e *UnexpectedEOF) Error() string {
	return fmt.Sprintf("unexpected EOF: %s", e.Context)
}

// DecompressionError is returned by any C1 codec when the decoded
// output size does not match the size the caller declared it expects,
// or the input stream is otherwise malformed.
type DecompressionError struct {
	Codec string
	Msg   string
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("%s decompression failed: %s", e.Codec, e.Msg)
}

// UnsupportedCompressionMethod is returned for a compression method
// byte with no registered codec.
type UnsupportedCompressionMethod struct {
	Method byte
}

func (e *UnsupportedCompressionMethod) Error() string {
	return fmt.Sprintf("unsupported compression method %d", e.Method)
}

// BitKnitDecompressionFailed is returned by the BitKnit decoder when a
// symbol is out of range, a distance exceeds the current output
// length, or the input stream is exhausted before the expected output
// size is reached.
type BitKnitDecompressionFailed struct {
	Reason string
}

func (e *BitKnitDecompressionFailed) Error() string {
	return fmt.Sprintf("bitknit decompression failed: %s", e.Reason)
}

// GR2MissingAssets is returned when a GR2 file has no Mesh or Skeleton
// object reachable from its root.
type GR2MissingAssets struct {
	Path string
}

func (e *GR2MissingAssets) Error() string {
	return fmt.Sprintf("%s: GR2 file has no mesh or skeleton", e.Path)
}

// MissingReferencedTexture is returned by the asset bundler when a
// VisualAsset references a texture or virtual texture that cannot be
// located in any known archive.
type MissingReferencedTexture struct {
	Visual  string
	Texture string
}

func (e *MissingReferencedTexture) Error() string {
	return fmt.Sprintf("visual %q: referenced texture %q not found", e.Visual, e.Texture)
}

// GameDataPathNotFound is returned when the resolver cannot locate the
// base archive in the caller-supplied game directory.
type GameDataPathNotFound struct {
	Dir string
}

func (e *GameDataPathNotFound) Error() string {
	return fmt.Sprintf("no base archive found under %s", e.Dir)
}

// ExtractionPartialFailure aggregates per-item errors from a batch
// extraction or read. It is returned instead of nil only when at
// least one item failed; items that succeeded have already been
// written/returned.
type ExtractionPartialFailure struct {
	Total, Failed int
	FirstError    error
	Errors        []error
}

func (e *ExtractionPartialFailure) Error() string {
	return fmt.Sprintf("partial failure: %d/%d items failed, first error: %v", e.Failed, e.Total, e.FirstError)
}

func (e *ExtractionPartialFailure) Unwrap() error { return e.FirstError }

// RequestedFileNotFound is returned by single-file operations (as
// opposed to FileNotFoundInArchive, which is archive-table specific).
type RequestedFileNotFound struct {
	Path string
}

func (e *RequestedFileNotFound) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}
