package builder

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildContextTarSkipsIgnoredEntries(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch\n"), 0o644)
	os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755)
	os.WriteFile(filepath.Join(dir, "node_modules", "x.js"), []byte("x"), 0o644)
	os.MkdirAll(filepath.Join(dir, "tools"), 0o755)
	os.WriteFile(filepath.Join(dir, "tools", "a.ts"), []byte("a"), 0o644)

	r, err := buildContextTar(dir, []string{"node_modules"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	var names []string
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		names = append(names, hdr.Name)
	}

	for _, n := range names {
		if n == "node_modules/x.js" {
			t.Fatalf("expected node_modules to be excluded, found %v", names)
		}
	}
	found := false
	for _, n := range names {
		if n == "tools/a.ts" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tools/a.ts in tar, got %v", names)
	}
}
