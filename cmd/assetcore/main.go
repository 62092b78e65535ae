// This is the command-line front end for the asset pipeline: a thin
// wrapper over the engine package exposing extract/convert/list. The
// other command names are recognized but report that they are not
// implemented. For anything beyond a single archive or document, call
// into the engine package from Go code directly.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/larian-tools/assetcore/engine"
	"github.com/larian-tools/assetcore/util/logger"
)

var log = logger.New("cli", logger.Default)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	log.Info("running %q", strings.Join(os.Args[1:], " "))

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "create", "gr2", "vt", "mod", "search", "index", "pak", "loca", "texture":
		err = fmt.Errorf("%s: not implemented in this build", os.Args[1])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "assetcore:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: assetcore <extract|convert|list|...> [flags]")
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	source := fs.String("source", "", "path to the source archive")
	destination := fs.String("destination", "", "directory to extract into")
	filter := fs.String("filter", "", "glob pattern restricting which entries are extracted")
	file := fs.String("file", "", "a single archive-relative path to extract")
	bundle := fs.Bool("bundle", false, "also pull in every texture a GR2 references (requires --bg3-path)")
	convertGR2 := fs.Bool("convert-gr2", false, "run the same texture bundling as --bundle; meshes are not converted to glTF")
	extractTextures := fs.Bool("extract-textures", false, "extract flat DDS textures referenced by extracted GR2 meshes")
	extractVT := fs.Bool("extract-virtual-textures", false, "extract virtual texture layers referenced by extracted GR2 meshes")
	bg3Path := fs.String("bg3-path", "", "game data directory, required for --bundle and friends")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" || *destination == "" {
		return fmt.Errorf("extract: --source and --destination are required")
	}
	if *filter != "" && *file != "" {
		return fmt.Errorf("extract: --filter and --file are mutually exclusive")
	}

	opts := engine.ExtractOptions{Filter: *filter, File: *file}
	cb := func(done, total int64) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\rextracting... %d/%d", done, total)
		}
	}
	if err := engine.Extract(*source, *destination, opts, cb); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	if !*bundle && !*convertGR2 && !*extractTextures && !*extractVT {
		return nil
	}
	if *bg3Path == "" {
		return fmt.Errorf("extract: --bg3-path is required with --bundle, --convert-gr2, --extract-textures or --extract-virtual-textures")
	}
	return bundleExtracted(*destination, *bg3Path)
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	source := fs.String("source", "", "input document path")
	destination := fs.String("destination", "", "output document path")
	in := fs.String("i", "", "input format override: lsf, lsx, lsj, loca, xml")
	out := fs.String("o", "", "output format override: lsf, lsx, lsj, loca, xml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" || *destination == "" {
		return fmt.Errorf("convert: --source and --destination are required")
	}
	return engine.Convert(*source, *destination, engine.Format(*in), engine.Format(*out))
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	source := fs.String("source", "", "path to the archive to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *source == "" {
		return fmt.Errorf("list: --source is required")
	}
	entries, err := engine.List(*source)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%10d  %s\n", e.SizeDecompressed, e.Path)
	}
	return nil
}

// bundleExtracted walks an already-extracted destination directory
// for GR2 files and pulls in their referenced textures via the
// resolver, per the extract command's --bundle family of flags.
func bundleExtracted(destDir, gameDir string) error {
	log.Debug("bundling referenced textures for GR2 meshes under %s", destDir)
	r := engine.NewResolver(gameDir)
	if _, err := r.Ensure(); err != nil {
		return fmt.Errorf("bundle: %w", err)
	}
	return walkGR2(destDir, func(gr2Path string) error {
		return r.BundleGR2(gr2Path, gameDir, destDir)
	})
}

// walkGR2 finds every extracted .gr2 file under root and calls fn
// with its path relative to root, using forward slashes so it
// matches the archive-relative paths the resolver indexes visuals by
// (e.g. "Meshes/Foo.GR2").
func walkGR2(root string, fn func(gr2Path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".gr2") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel))
	})
}
