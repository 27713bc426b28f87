package config

import (
	"os"
	"path/filepath"
)

// FindPath returns the first existing config file, or "".
func FindPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}
	if fileExists(FileName) {
		if abs, err := filepath.Abs(FileName); err == nil {
			return abs
		}
		return FileName
	}
	if path := filepath.Join(configHome(), DirName, "config.toml"); configHome() != "" && fileExists(path) {
		return path
	}
	return ""
}

// DefaultPath is where `canvaskit config init` writes a new file.
func DefaultPath() string {
	if home := configHome(); home != "" {
		return filepath.Join(home, DirName, "config.toml")
	}
	return FileName
}

func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return ""
}

// defaultDataDir is $XDG_DATA_HOME/canvaskit, falling back to
// ~/.local/share/canvaskit and then ./canvaskit-data.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, DirName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", DirName)
	}
	return "canvaskit-data"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
