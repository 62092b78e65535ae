// Package engine is the thin façade every outer tool calls. It does
// no format-specific work itself; every method is a short call into
// the component that owns that format.
package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/larian-tools/assetcore/archive"
	"github.com/larian-tools/assetcore/doctree"
	"github.com/larian-tools/assetcore/loca"
	"github.com/larian-tools/assetcore/lsf"
	"github.com/larian-tools/assetcore/lsj"
	"github.com/larian-tools/assetcore/lsx"
	"github.com/larian-tools/assetcore/progress"
	"github.com/larian-tools/assetcore/resolver"
)

// Format identifies a document format for Convert's auto-detection
// and explicit -i/-o flags (§6.6).
type Format string

const (
	FormatLSF  Format = "lsf"
	FormatLSX  Format = "lsx"
	FormatLSJ  Format = "lsj"
	FormatLoca Format = "loca"
	FormatXML  Format = "xml"
)

// FormatFromExtension maps a file extension (with or without the
// leading dot) to a Format, or "" if unrecognized.
func FormatFromExtension(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "lsf":
		return FormatLSF
	case "lsx":
		return FormatLSX
	case "lsj":
		return FormatLSJ
	case "loca":
		return FormatLoca
	case "xml":
		return FormatXML
	default:
		return ""
	}
}

// ExtractOptions configures Extract (§6.6 "extract").
type ExtractOptions struct {
	Filter string // glob, mutually exclusive with File
	File   string
}

// Extract opens the archive at source and extracts into destination,
// delegating entirely to C2 (§4.2).
func Extract(source, destination string, opts ExtractOptions, cb progress.Callback) error {
	a, err := archive.Open(source)
	if err != nil {
		return err
	}
	switch {
	case opts.File != "":
		return a.ExtractSubset(destination, []string{opts.File}, cb)
	case opts.Filter != "":
		return a.ExtractSubset(destination, []string{opts.Filter}, cb)
	default:
		return a.ExtractAll(destination, cb)
	}
}

// Convert reads source as inFormat (or its auto-detected extension)
// and writes destination as outFormat, pivoting through doctree for
// the structured-document formats and through loca's own binary/XML
// pivot for localization tables (§6.6 "convert").
func Convert(source, destination string, inFormat, outFormat Format) error {
	if inFormat == "" {
		inFormat = FormatFromExtension(filepath.Ext(source))
	}
	if outFormat == "" {
		outFormat = FormatFromExtension(filepath.Ext(destination))
	}
	if inFormat == "" || outFormat == "" {
		return fmt.Errorf("convert: could not determine format for %s -> %s", source, destination)
	}

	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	if inFormat == FormatLoca || outFormat == FormatLoca {
		return convertLoca(in, destination, inFormat, outFormat)
	}

	doc, err := decodeDocument(in, inFormat)
	if err != nil {
		return err
	}

	out, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer out.Close()
	return encodeDocument(out, doc, outFormat)
}

func decodeDocument(r io.Reader, f Format) (*doctree.Document, error) {
	switch f {
	case FormatLSF:
		return lsf.Read(r)
	case FormatLSX, FormatXML:
		return lsx.Decode(r)
	case FormatLSJ:
		return lsj.Decode(r)
	default:
		return nil, fmt.Errorf("convert: unsupported input format %q", f)
	}
}

func encodeDocument(w io.Writer, doc *doctree.Document, f Format) error {
	switch f {
	case FormatLSF:
		return lsf.Write(w, doc, lsf.DefaultWriteOptions())
	case FormatLSX, FormatXML:
		return lsx.Encode(w, doc)
	case FormatLSJ:
		return lsj.Encode(w, doc)
	default:
		return fmt.Errorf("convert: unsupported output format %q", f)
	}
}

func convertLoca(in io.Reader, destination string, inFormat, outFormat Format) error {
	var entries []loca.Entry
	var err error
	if inFormat == FormatXML {
		entries, err = loca.DecodeXML(in)
	} else {
		entries, err = loca.Decode(in)
	}
	if err != nil {
		return err
	}

	out, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer out.Close()

	if outFormat == FormatXML {
		return loca.EncodeXML(out, entries)
	}
	return loca.Encode(out, entries)
}

// List returns an archive's file table without extracting anything
// (§6.6's `list` command surface).
func List(source string) ([]archive.FileEntry, error) {
	a, err := archive.Open(source)
	if err != nil {
		return nil, err
	}
	return a.List(), nil
}

// NewResolver returns a resolver that builds (lazily) the asset graph
// for the game directory at gameDir (§4.8).
func NewResolver(gameDir string) *resolver.Resolver {
	return resolver.New(gameDir)
}
