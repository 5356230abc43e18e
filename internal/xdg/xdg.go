// ABOUTME: XDG Base Directory support for cyberai-tui config, data, and log paths
// ABOUTME: Resolves per-app directories and expands ~ and $XDG_* prefixes in config values

package xdg

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "cyberai-tui"

type baseDir struct {
	env      string
	fallback []string // relative to HOME
}

var (
	configBase = baseDir{env: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	dataBase   = baseDir{env: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
	stateBase  = baseDir{env: "XDG_STATE_HOME", fallback: []string{".local", "state"}}
)

func (b baseDir) root() string {
	if v := os.Getenv(b.env); v != "" {
		return v
	}
	return filepath.Join(append([]string{getHome()}, b.fallback...)...)
}

// ConfigHome returns ~/.config/cyberai-tui or respects XDG_CONFIG_HOME.
func ConfigHome() string {
	return filepath.Join(configBase.root(), AppName)
}

// DataHome returns ~/.local/share/cyberai-tui or respects XDG_DATA_HOME.
func DataHome() string {
	return filepath.Join(dataBase.root(), AppName)
}

// StateHome returns ~/.local/state/cyberai-tui or respects XDG_STATE_HOME.
// Log files live here.
func StateHome() string {
	return filepath.Join(stateBase.root(), AppName)
}

// ExpandPath expands a leading ~/ or $XDG_{CONFIG,DATA,STATE}_HOME in path.
// The XDG variables expand to the generic base directory, not the app one.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(getHome(), path[2:])
	}

	for _, b := range []baseDir{configBase, dataBase, stateBase} {
		prefix := "$" + b.env
		if strings.HasPrefix(path, prefix) {
			return strings.Replace(path, prefix, b.root(), 1)
		}
	}

	return path
}

// getHome returns HOME with a fallback to the working directory.
func getHome() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}
