package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
)

// DefaultDBFileName is the database file name inside the data directory.
const DefaultDBFileName = "daylog.db"

// GetDefaultDBPathOnly returns a system-appropriate default path for the database
func GetDefaultDBPathOnly() string {
	homeDir, err := homedir.Dir()
	if err != nil {
		return DefaultDBFileName
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", "daylog", DefaultDBFileName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "daylog", DefaultDBFileName)
	default:
		return filepath.Join(homeDir, ".local", "share", "daylog", DefaultDBFileName)
	}
}

// ResolveAndEnsureDBPath expands providedPath (or the default path when it
// is empty) to an absolute path and creates its parent directory.
// ":memory:" is returned unchanged.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	targetPath := providedPath
	if targetPath == "" {
		targetPath = GetDefaultDBPathOnly()
	}
	if targetPath == ":memory:" {
		return targetPath, nil
	}

	expanded, err := homedir.Expand(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to expand path '%s': %w", targetPath, err)
	}

	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", expanded, err)
	}
	targetPath = absPath

	dbDir := filepath.Dir(targetPath)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory '%s' for database: %w", dbDir, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat directory '%s' for database: %w", dbDir, err)
	}

	return targetPath, nil
}
