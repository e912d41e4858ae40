package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewAppConfigUsesConfigDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	conf, err := NewAppConfig("manifestctl", "1.2.3", "abcdef", "2026-01-01", false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if conf.ConfigDir != dir {
		t.Fatalf("expected config dir %s, got %s", dir, conf.ConfigDir)
	}
	if conf.Version != "1.2.3" {
		t.Fatalf("expected version to be carried through, got %s", conf.Version)
	}
	if conf.Debug {
		t.Fatalf("expected debug to be false")
	}
}

func TestNewAppConfigDebugFlagFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("DEBUG", "TRUE")

	conf, err := NewAppConfig("manifestctl", "dev", "", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !conf.Debug {
		t.Fatalf("expected DEBUG=TRUE to force debug mode on")
	}
}

func TestFindOrCreateConfigDirCreatesDirectory(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "nested", "config")
	t.Setenv("CONFIG_DIR", nested)

	conf, err := NewAppConfig("manifestctl", "dev", "", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, err := os.Stat(conf.ConfigDir); err != nil {
		t.Fatalf("expected config dir to exist: %s", err)
	}
}
