// Package config locates the user's config script and the editor's data
// and cache directories. Lookup follows XDG conventions with home-dotfile
// fallbacks, and a TypeScript entry wins over a JavaScript one at the
// same location.
package config

import (
	"os"
	"path/filepath"
)

// EntryScript returns the config script path. The RSVIM_CONFIG
// environment variable overrides the search. An empty path with a nil
// error means no config exists.
func EntryScript() (string, error) {
	if path := os.Getenv("RSVIM_CONFIG"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var candidates []string
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir, ".config")
	}
	for _, ext := range []string{".ts", ".js"} {
		candidates = append(candidates, filepath.Join(configHome, "rsvim", "rsvim"+ext))
	}
	for _, ext := range []string{".ts", ".js"} {
		candidates = append(candidates, filepath.Join(homeDir, ".rsvim", "rsvim"+ext))
	}
	for _, ext := range []string{".ts", ".js"} {
		candidates = append(candidates, filepath.Join(homeDir, ".rsvim"+ext))
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// DataDir returns the directory for persistent editor data, such as the
// startup snapshot cache.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "rsvim"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "rsvim"), nil
}

// CacheDir returns the directory for disposable cached state.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "rsvim"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".cache", "rsvim"), nil
}

// EnsureDir creates the directory if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
