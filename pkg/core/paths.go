package core

import "path/filepath"

// ResolvePathFromConfig resolves a path found in a config file.
// If the provided path is already absolute, it's returned as is.
// If it's relative, it's joined with configDir.
func ResolvePathFromConfig(configDir, pathFromYAML string) string {
	if pathFromYAML == "" || filepath.IsAbs(pathFromYAML) {
		return pathFromYAML
	}
	return filepath.Join(configDir, pathFromYAML)
}
