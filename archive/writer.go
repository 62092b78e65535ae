package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/larian-tools/assetcore/codec"
)

// WriteConfig holds the writer options that apply to a whole archive:
// compression, level, priority and split-part budget (the source
// directory and destination archive are Write's own arguments). It can
// be loaded from a YAML descriptor with yaml.Unmarshal.
type WriteConfig struct {
	Compression      string `yaml:"compression"` // "none", "zlib", "lz4", "lz4fast", "zstd"
	Level            int    `yaml:"level"`
	Priority         uint32 `yaml:"priority"`
	SplitPartBudget  uint64 `yaml:"split_part_budget"` // 0 disables splitting
}

// LoadWriteConfig parses a YAML writer descriptor.
func LoadWriteConfig(data []byte) (WriteConfig, error) {
	var c WriteConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return WriteConfig{}, fmt.Errorf("archive write config: %w", err)
	}
	return c, nil
}

func (c WriteConfig) codecMethod() codec.Method {
	switch strings.ToLower(c.Compression) {
	case "", "none":
		return codec.MethodNone
	case "zlib":
		return codec.MethodZlib
	case "lz4":
		return codec.MethodLZ4Frame
	case "lz4fast":
		return codec.MethodLZ4Fast
	case "zstd":
		return codec.MethodZstd
	default:
		return codec.MethodNone
	}
}

func (c WriteConfig) wireCompressionByte() byte {
	switch c.codecMethod() {
	case codec.MethodZlib:
		return 1
	case codec.MethodLZ4Frame:
		return 2
	case codec.MethodLZ4Fast:
		return 3
	case codec.MethodZstd:
		return 4
	default:
		return 0
	}
}

// Write scans sourceDir in stable path-sorted order, compresses each
// file, and emits destArchive: the data region, the compressed file
// table, then the header (§4.2 writer contract). Splitting across
// parts when a part's accumulated size would exceed
// cfg.SplitPartBudget is honored but files are never split across
// parts themselves.
func Write(sourceDir, destArchive string, cfg WriteConfig) error {
	var relPaths []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(relPaths)

	method := cfg.codecMethod()
	compressionByte := cfg.wireCompressionByte()
	level := cfg.Level

	type partState struct {
		path string
		f    *os.File
		size uint64
	}
	parts := []*partState{{path: destArchive}}

	basePath := destArchive
	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(filepath.Base(basePath), ext)
	dir := filepath.Dir(basePath)

	currentPart := 0
	openPart := func(idx int) (*os.File, error) {
		if idx < len(parts) && parts[idx].f != nil {
			return parts[idx].f, nil
		}
		p := destArchive
		if idx > 0 {
			p = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, idx, ext))
		}
		// The base part's header is written last (its size isn't known
		// until the file table is serialized), so the base file is
		// opened for writing the data region now and the header is
		// prepended by seeking back to offset 0 at the end.
		f, err := os.OpenFile(p, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			if _, err := f.Seek(headerWidth, 0); err != nil {
				return nil, err
			}
		}
		for len(parts) <= idx {
			parts = append(parts, &partState{})
		}
		parts[idx] = &partState{path: p, f: f}
		return f, nil
	}

	base, err := openPart(0)
	if err != nil {
		return err
	}

	var entries []FileEntry
	for _, rel := range relPaths {
		full := filepath.Join(sourceDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(full)
		if err != nil {
			return err
		}
		compressed, err := codec.Encode(method, data, level)
		if err != nil {
			return err
		}

		if cfg.SplitPartBudget > 0 && parts[currentPart].size > 0 &&
			parts[currentPart].size+uint64(len(compressed)) > cfg.SplitPartBudget {
			currentPart++
		}
		f, err := openPart(currentPart)
		if err != nil {
			return err
		}

		pos, err := f.Seek(0, 1)
		if err != nil {
			return err
		}
		offset := uint64(pos)
		if _, err := f.Write(compressed); err != nil {
			return err
		}
		parts[currentPart].size += uint64(len(compressed))

		entries = append(entries, FileEntry{
			Path:             rel,
			Offset:           offset,
			SizeCompressed:   uint64(len(compressed)),
			SizeDecompressed: uint64(len(data)),
			ArchivePart:      uint8(currentPart),
			Compression:      compressionByte,
		})
	}

	tableRaw := encodeEntries(entries)
	tableCompressed, err := codec.Encode(method, tableRaw, level)
	if err != nil {
		return err
	}
	tableOffset, err := base.Seek(0, 1)
	if err != nil {
		return err
	}
	if _, err := base.Write(tableCompressed); err != nil {
		return err
	}

	h := &header{
		Version:                   18,
		FileTableOffset:           uint64(tableOffset),
		FileTableCompressedSize:   uint32(len(tableCompressed)),
		FileTableDecompressedSize: uint32(len(tableRaw)),
		CompressionMethod:         compressionByte,
		NumParts:                  byte(len(parts)),
		Priority:                  cfg.Priority,
	}
	if _, err := base.Seek(0, 0); err != nil {
		return err
	}
	if err := writeHeader(base, h); err != nil {
		return err
	}

	for _, p := range parts {
		if p.f != nil {
			if err := p.f.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
