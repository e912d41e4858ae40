package resolver

import "path/filepath"

// OverlayCandidates returns the environment-specific overlay filenames to
// probe, in priority order: "config.<env>.yaml", "<env>.yaml",
// "config.<env>.json", all inside the base config file's directory. The
// first that exists wins.
func OverlayCandidates(configPath, env string) []string {
	if configPath == "" || env == "" {
		return nil
	}
	dir := filepath.Dir(configPath)
	return []string{
		filepath.Join(dir, "config."+env+".yaml"),
		filepath.Join(dir, env+".yaml"),
		filepath.Join(dir, "config."+env+".json"),
	}
}
