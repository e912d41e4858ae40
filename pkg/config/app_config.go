// Package config handles the tool's own bootstrap configuration: where
// its log and cache files live, and the version metadata stamped into
// every build. The layered tools/connectors configuration a build
// resolves lives in pkg/resolver, not here.
package config

import (
	"os"

	"github.com/OpenPeeDeeP/xdg"
)

// AppConfig contains the base configuration fields required to run the
// tool.
type AppConfig struct {
	Debug     bool   `long:"debug" env:"DEBUG" default:"false"`
	Version   string `long:"version" env:"VERSION" default:"unversioned"`
	Commit    string `long:"commit" env:"COMMIT"`
	BuildDate string `long:"build-date" env:"BUILD_DATE"`
	Name      string `long:"name" env:"NAME" default:"manifestctl"`
	ConfigDir string
}

// NewAppConfig makes a new app config, resolving (and creating) the
// tool's per-OS config directory.
func NewAppConfig(name, version, commit, date string, debuggingFlag bool) (*AppConfig, error) {
	configDir, err := findOrCreateConfigDir(name)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		Name:      name,
		Version:   version,
		Commit:    commit,
		BuildDate: date,
		Debug:     debuggingFlag || os.Getenv("DEBUG") == "TRUE",
		ConfigDir: configDir,
	}, nil
}

func configDir(projectName string) string {
	if envConfigDir := os.Getenv("CONFIG_DIR"); envConfigDir != "" {
		return envConfigDir
	}
	configDirs := xdg.New("", projectName)
	return configDirs.ConfigHome()
}

func findOrCreateConfigDir(projectName string) (string, error) {
	folder := configDir(projectName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}
	return folder, nil
}
