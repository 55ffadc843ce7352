package testgen

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// GenerateZIP creates a ZIP archive at dir/filename containing entries in order.
func GenerateZIP(t *testing.T, dir, filename string, entries []ZIPEntry) string {
	t.Helper()

	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create ZIP file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		if err := writeZipFile(zw, e.Name, e.Data); err != nil {
			t.Fatalf("failed to write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize ZIP file: %v", err)
	}

	return path
}
