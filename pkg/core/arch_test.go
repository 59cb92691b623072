package core_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/dailyflow/dailyflow"

// importsOf returns the imports of every non-test Go file under dir, keyed by
// file path. Subdirectories are included when recursive is set.
func importsOf(t *testing.T, dir string, recursive bool) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()
	out := make(map[string][]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			return nil
		}
		for _, imp := range f.Imports {
			out[path] = append(out[path], strings.Trim(imp.Path.Value, `"`))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", dir, err)
	}
	return out
}

// TestCoreImportsOnly verifies pkg/core only imports the standard library.
func TestCoreImportsOnly(t *testing.T) {
	for file, imports := range importsOf(t, ".", false) {
		for _, importPath := range imports {
			// Stdlib paths have no dot in their first element
			if !strings.Contains(importPath, ".") {
				continue
			}
			t.Errorf("%s imports forbidden package: %s", file, importPath)
		}
	}
}

// TestIngestDoesNotImportCLI verifies the pipeline packages stay usable
// without the command-line layer or a concrete store.
func TestIngestDoesNotImportCLI(t *testing.T) {
	dir := filepath.Join("..", "..", "internal", "ingest")
	if _, err := os.Stat(dir); err != nil {
		t.Skipf("ingest packages not found: %v", err)
	}

	forbidden := []string{
		modulePath + "/internal/cli",
		modulePath + "/internal/state",
	}
	for file, imports := range importsOf(t, dir, true) {
		for _, importPath := range imports {
			for _, prefix := range forbidden {
				if strings.HasPrefix(importPath, prefix) {
					t.Errorf("%s imports %s (the pipeline talks to storage through the core store interfaces)", file, importPath)
				}
			}
		}
	}
}
