package config

import (
	"os"
	"path/filepath"
)

func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("RAGCHAT_RUNTIME_PATH"))
}

// GetLogPath reads RAGCHAT_LOG_FILE before the full config is parsed, so the
// logger can be built first.
func GetLogPath() string {
	return resolveInRuntime(GetRuntimePath(), os.Getenv("RAGCHAT_LOG_FILE"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".ragchat"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

// resolveInRuntime anchors a relative path in the runtime directory. Empty
// stays empty.
func resolveInRuntime(runtimePath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(runtimePath, path)
}
