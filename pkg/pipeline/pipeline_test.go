package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

const sampleToolSource = `export const metadata = {
  name: "echo",
  description: "Echoes input back",
  version: "1.0.0",
  schemaVersion: "1.0",
};
`

func newTestWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	toolDir := filepath.Join(dir, "tools", "echo")
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := os.WriteFile(filepath.Join(toolDir, "index.ts"), []byte(sampleToolSource), 0o644); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return dir
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.Out = os.Stderr
	return logrus.NewEntry(l)
}

func TestDiscoverFindsModules(t *testing.T) {
	dir := newTestWorkspace(t)

	disc, err := Discover(testLog(), Options{Workspace: dir})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(disc.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(disc.Modules))
	}
	if disc.Modules[0].Name != "echo" {
		t.Fatalf("expected module named echo, got %q", disc.Modules[0].Name)
	}
	if !disc.Validation.Valid() {
		t.Fatalf("expected a valid workspace, got errors: %v", disc.Validation.Errors)
	}
}

func TestValidateEmptyWorkspaceFindsNoModules(t *testing.T) {
	dir := t.TempDir()

	disc, err := Validate(testLog(), Options{Workspace: dir})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(disc.Modules) != 0 {
		t.Fatalf("expected no modules in an empty workspace, got %d", len(disc.Modules))
	}
}

func TestListToolsProjectsDiscoveredModules(t *testing.T) {
	dir := newTestWorkspace(t)

	disc, err := ListTools(testLog(), Options{Workspace: dir})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(disc.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(disc.Modules))
	}
}

func TestBuildFailsFastOnInvalidWorkspace(t *testing.T) {
	dir := t.TempDir()
	badDir := filepath.Join(dir, "tools", "broken")
	if err := os.MkdirAll(badDir, 0o755); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// A .ts file with no metadata declaration at all is simply skipped by
	// the loader (with a warning), so an empty workspace still reaches
	// validation; it is exercised here to confirm Build surfaces a
	// configuration error instead of attempting to reach the daemon.
	if err := os.WriteFile(filepath.Join(badDir, "index.ts"), []byte("export const x = 1;\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	_, err := Build(nil, testLog(), Options{Workspace: dir}, BuildOptions{})
	if err == nil {
		t.Fatalf("expected an error for a workspace with no modules to tag into a manifest")
	}
}
