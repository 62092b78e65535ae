package archive

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// writeSourceTree lays out a small directory of files to pack.
func writeSourceTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{
		"Mods/Gustav/meta.lsx":             "<save><version/></save>",
		"Generated/Public/Gustav/data.txt": "hello gustav",
		"Localization/English/loca.xml":    "<contentList/>",
	}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return files
}

func TestWriteOpenExtractRoundTrip(t *testing.T) {
	for _, compression := range []string{"none", "zlib", "lz4", "zstd"} {
		compression := compression
		t.Run(compression, func(t *testing.T) {
			dir := t.TempDir()
			srcDir := filepath.Join(dir, "src")
			files := writeSourceTree(t, srcDir)

			pakPath := filepath.Join(dir, "Test.pak")
			cfg := WriteConfig{Compression: compression, Level: 1}
			if err := Write(srcDir, pakPath, cfg); err != nil {
				t.Fatalf("Write: %v", err)
			}

			a, err := Open(pakPath)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}

			entries := a.List()
			if len(entries) != len(files) {
				t.Fatalf("List returned %d entries, want %d", len(entries), len(files))
			}
			var listedPaths []string
			for _, e := range entries {
				listedPaths = append(listedPaths, e.Path)
			}
			sort.Strings(listedPaths)
			var wantPaths []string
			for rel := range files {
				wantPaths = append(wantPaths, rel)
			}
			sort.Strings(wantPaths)
			for i := range wantPaths {
				if listedPaths[i] != wantPaths[i] {
					t.Fatalf("listed paths = %v, want %v", listedPaths, wantPaths)
				}
			}

			for rel, want := range files {
				got, err := a.ReadBytes(rel)
				if err != nil {
					t.Fatalf("ReadBytes(%q): %v", rel, err)
				}
				if string(got) != want {
					t.Fatalf("ReadBytes(%q) = %q, want %q", rel, got, want)
				}
			}

			destDir := filepath.Join(dir, "extracted")
			if err := a.ExtractAll(destDir, nil); err != nil {
				t.Fatalf("ExtractAll: %v", err)
			}
			for rel, want := range files {
				got, err := os.ReadFile(filepath.Join(destDir, filepath.FromSlash(rel)))
				if err != nil {
					t.Fatalf("reading extracted %q: %v", rel, err)
				}
				if string(got) != want {
					t.Fatalf("extracted %q = %q, want %q", rel, got, want)
				}
			}
		})
	}
}

func TestReadBytesManyMatchesIndividualReads(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	files := writeSourceTree(t, srcDir)

	pakPath := filepath.Join(dir, "Test.pak")
	if err := Write(srcDir, pakPath, WriteConfig{Compression: "zlib", Level: 6}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	a, err := Open(pakPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var paths []string
	for rel := range files {
		paths = append(paths, rel)
	}
	got, err := a.ReadBytesMany(paths)
	if err != nil {
		t.Fatalf("ReadBytesMany: %v", err)
	}
	for rel, want := range files {
		if string(got[rel]) != want {
			t.Fatalf("ReadBytesMany[%q] = %q, want %q", rel, got[rel], want)
		}
	}
}

func TestExtractSubsetHonorsGlob(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	writeSourceTree(t, srcDir)

	pakPath := filepath.Join(dir, "Test.pak")
	if err := Write(srcDir, pakPath, WriteConfig{Compression: "none"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	a, err := Open(pakPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	destDir := filepath.Join(dir, "subset")
	if err := a.ExtractSubset(destDir, []string{"Mods/**"}, nil); err != nil {
		t.Fatalf("ExtractSubset: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "Mods", "Gustav", "meta.lsx")); err != nil {
		t.Fatalf("expected Mods/Gustav/meta.lsx to be extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "Generated")); err == nil {
		t.Fatal("Generated should not have been extracted by the Mods/** subset")
	}
}
