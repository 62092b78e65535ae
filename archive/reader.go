package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/larian-tools/assetcore/apperr"
	"github.com/larian-tools/assetcore/codec"
	"github.com/larian-tools/assetcore/progress"
	"github.com/larian-tools/assetcore/util/logger"
)

var log = logger.New("archive", logger.Default)

// Archive is an opened LSPK file: the header and decoded file table.
// Part files are opened lazily, one handle per accessing goroutine,
// per §4.2's shared-file discipline.
type Archive struct {
	path    string
	dir     string
	stem    string
	header  *header
	entries []FileEntry
	byPath  map[string]int // lower-cased path -> index, for case-insensitive lookup
}

// Open reads an LSPK header and file table (list, §4.2). It has no
// side effects beyond opening path for the duration of the call.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := readHeader(f, path)
	if err != nil {
		return nil, err
	}

	if h.FileTableCompressedSize > MaxFileTableSize {
		return nil, &apperr.ArchiveTooLarge{Archive: path, Limit: MaxFileTableSize, Got: int(h.FileTableCompressedSize)}
	}

	if _, err := f.Seek(int64(h.FileTableOffset), 0); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "lspk file table offset"}
	}
	raw := make([]byte, h.FileTableCompressedSize)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: "lspk file table body"}
	}

	var tableBytes []byte
	if archiveCompression(h.CompressionMethod) == codec.MethodNone {
		tableBytes = raw
	} else {
		tableBytes, err = codec.Decode(archiveCompression(h.CompressionMethod), raw, int(h.FileTableDecompressedSize))
		if err != nil {
			return nil, err
		}
	}

	entries, err := decodeEntries(tableBytes)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	byPath := make(map[string]int, len(entries))
	for i, e := range entries {
		key := strings.ToLower(e.Path)
		if seen[key] {
			return nil, fmt.Errorf("archive %s: duplicate entry %q", path, e.Path)
		}
		seen[key] = true
		byPath[key] = i
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return &Archive{path: path, dir: dir, stem: stem, header: h, entries: entries, byPath: byPath}, nil
}

func archiveCompression(method byte) codec.Method {
	switch method {
	case 0:
		return codec.MethodNone
	case 1:
		return codec.MethodZlib
	case 2:
		return codec.MethodLZ4Frame
	case 3:
		return codec.MethodLZ4Fast
	case 4:
		return codec.MethodZstd
	default:
		return codec.MethodNone
	}
}

// List returns the archive's file table in its on-disk order.
func (a *Archive) List() []FileEntry {
	out := make([]FileEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// partPath resolves the sibling file holding part N's bytes (§3.3):
// part 0 is the archive file itself, part N>0 is "<stem>_N<ext>".
func (a *Archive) partPath(part uint8) string {
	if part == 0 {
		return a.path
	}
	ext := filepath.Ext(a.path)
	return filepath.Join(a.dir, fmt.Sprintf("%s_%d%s", a.stem, part, ext))
}

func (a *Archive) lookup(path string) (FileEntry, int, bool) {
	idx, ok := a.byPath[strings.ToLower(path)]
	if !ok {
		return FileEntry{}, 0, false
	}
	return a.entries[idx], idx, true
}

// ReadBytes decompresses a single entry's bytes without touching disk
// (§4.2 read_bytes).
func (a *Archive) ReadBytes(path string) ([]byte, error) {
	e, _, ok := a.lookup(path)
	if !ok {
		return nil, &apperr.FileNotFoundInArchive{Archive: a.path, Path: path}
	}
	return a.readEntry(e)
}

func (a *Archive) readEntry(e FileEntry) ([]byte, error) {
	partPath := a.partPath(e.ArchivePart)
	f, err := os.Open(partPath)
	if err != nil {
		return nil, &apperr.ArchivePartMissing{Path: partPath, Part: int(e.ArchivePart)}
	}
	defer f.Close()

	if _, err := f.Seek(int64(e.Offset), 0); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: fmt.Sprintf("entry %s offset", e.Path)}
	}
	raw := make([]byte, e.SizeCompressed)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, &apperr.UnexpectedEOF{Context: fmt.Sprintf("entry %s body", e.Path)}
	}

	method := archiveCompression(e.Compression)
	if method == codec.MethodNone {
		return raw, nil
	}
	return codec.Decode(method, raw, int(e.SizeDecompressed))
}

// ReadBytesMany batch-reads several entries (§4.2 read_bytes_many):
// per part file, compressed blobs are fetched sequentially sorted by
// offset to minimize seeks, then decompressed concurrently.
func (a *Archive) ReadBytesMany(paths []string) (map[string][]byte, error) {
	type job struct {
		path  string
		entry FileEntry
	}
	byPart := make(map[uint8][]job)
	var missing []error
	for _, p := range paths {
		e, _, ok := a.lookup(p)
		if !ok {
			missing = append(missing, &apperr.FileNotFoundInArchive{Archive: a.path, Path: p})
			continue
		}
		byPart[e.ArchivePart] = append(byPart[e.ArchivePart], job{path: p, entry: e})
	}

	type rawBlob struct {
		path string
		raw  []byte
		e    FileEntry
	}
	var blobs []rawBlob
	for part, jobs := range byPart {
		sort.Slice(jobs, func(i, j int) bool { return jobs[i].entry.Offset < jobs[j].entry.Offset })
		partPath := a.partPath(part)
		f, err := os.Open(partPath)
		if err != nil {
			for _, j := range jobs {
				missing = append(missing, &apperr.ArchivePartMissing{Path: partPath, Part: int(part)})
				_ = j
			}
			continue
		}
		for _, j := range jobs {
			if _, err := f.Seek(int64(j.entry.Offset), 0); err != nil {
				missing = append(missing, &apperr.UnexpectedEOF{Context: fmt.Sprintf("entry %s offset", j.path)})
				continue
			}
			raw := make([]byte, j.entry.SizeCompressed)
			if _, err := io.ReadFull(f, raw); err != nil {
				missing = append(missing, &apperr.UnexpectedEOF{Context: fmt.Sprintf("entry %s body", j.path)})
				continue
			}
			blobs = append(blobs, rawBlob{path: j.path, raw: raw, e: j.entry})
		}
		f.Close()
	}

	out := make(map[string][]byte, len(blobs))
	var mu sync.Mutex
	g := new(errgroup.Group)
	for _, b := range blobs {
		b := b
		g.Go(func() error {
			method := archiveCompression(b.e.Compression)
			var data []byte
			var err error
			if method == codec.MethodNone {
				data = b.raw
			} else {
				data, err = codec.Decode(method, b.raw, int(b.e.SizeDecompressed))
			}
			if err != nil {
				mu.Lock()
				missing = append(missing, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			out[b.path] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(missing) > 0 {
		return out, &apperr.ExtractionPartialFailure{Total: len(paths), Failed: len(missing), FirstError: missing[0], Errors: missing}
	}
	return out, nil
}

// matchPaths resolves a glob pattern against the file table.
func (a *Archive) matchPaths(glob string) []FileEntry {
	var out []FileEntry
	for _, e := range a.entries {
		if matchGlob(glob, e.Path) {
			out = append(out, e)
		}
	}
	return out
}

// destPath rewrites a flat archive path to its on-disk extraction
// path, inserting a stem-named subdirectory for virtual-texture
// members (§4.2 "virtual-texture path rewriting on extract").
func destPath(root, archivePath string) string {
	rewritten := archivePath
	if gtsGtp.MatchString(archivePath) {
		dir := filepath.Dir(archivePath)
		base := filepath.Base(archivePath)
		if m := gtsGtpStem.FindStringSubmatch(base); m != nil {
			rewritten = filepath.Join(dir, m[1], base)
		}
	}
	return filepath.Join(root, filepath.FromSlash(rewritten))
}

var (
	gtsGtp     = regexp.MustCompile(`(?i)\.(gtp|gts)$`)
	gtsGtpStem = regexp.MustCompile(`^(.+_[0-9a-fA-F]{32})\.(?:gtp|gts)$`)
)

// ExtractAll extracts every entry to destDir (§4.2 extract_all).
func (a *Archive) ExtractAll(destDir string, cb progress.Callback) error {
	return a.extract(destDir, a.entries, cb)
}

// ExtractSubset extracts entries matching any of the given glob
// patterns (§4.2 extract_subset, §4.2 filtering).
func (a *Archive) ExtractSubset(destDir string, globs []string, cb progress.Callback) error {
	var subset []FileEntry
	seen := make(map[string]bool)
	for _, g := range globs {
		for _, e := range a.matchPaths(g) {
			key := strings.ToLower(e.Path)
			if seen[key] {
				continue
			}
			seen[key] = true
			subset = append(subset, e)
		}
	}
	if len(subset) == 0 {
		return &apperr.RequestedSubsetEmpty{Archive: a.path}
	}
	return a.extract(destDir, subset, cb)
}

// extract implements the parallel extraction algorithm (§4.2): each
// worker opens its own handle per part file, decompresses, and writes
// its own entries; progress callbacks are only ever invoked from the
// calling goroutine.
func (a *Archive) extract(destDir string, entries []FileEntry, cb progress.Callback) error {
	log.Debug("extracting %d entries from %s to %s", len(entries), a.path, destDir)
	reporter := progress.NewReporter(int64(len(entries)), cb)

	var mu sync.Mutex
	var errs []error

	g := new(errgroup.Group)
	g.SetLimit(workerLimit())
	for _, e := range entries {
		e := e
		g.Go(func() error {
			data, err := a.readEntry(e)
			if err == nil {
				out := destPath(destDir, e.Path)
				if mkErr := os.MkdirAll(filepath.Dir(out), 0o755); mkErr != nil {
					err = mkErr
				} else {
					err = os.WriteFile(out, data, 0o644)
				}
			}
			reporter.Add(1)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", e.Path, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	reporter.Flush()

	if len(errs) > 0 {
		return &apperr.ExtractionPartialFailure{Total: len(entries), Failed: len(errs), FirstError: errs[0], Errors: errs}
	}
	return nil
}

func workerLimit() int {
	return 8
}

