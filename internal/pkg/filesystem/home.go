package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the state directory.
const HomeEnv = "TERMIND_HOME"

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// StateDir is where termind keeps its config, memory and caches:
// $TERMIND_HOME, or ~/.termind.
func StateDir() string {
	if custom := strings.TrimSpace(os.Getenv(HomeEnv)); custom != "" {
		return ExpandPath(custom)
	}
	return filepath.Join(UserHomeDir(), ".termind")
}

// ExpandPath resolves a leading "~/" against the home directory.
func ExpandPath(path string) string {
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(path)
}
