package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fileeraser/internal/config"
)

// CheckTarget validates that path is something we are willing to
// destroy: an existing regular file outside the protected prefixes.
// It runs before a job starts; a rejected target never reaches the
// engine.
func CheckTarget(path string, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}

	if path == "" {
		return fmt.Errorf("no file selected")
	}

	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !cfg.Security.AllowSymlinks {
			return fmt.Errorf("%s is a symlink, refusing to erase through it", path)
		}
		info, err = os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot resolve symlink %s: %w", path, err)
		}
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, only regular files are supported", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	for _, protected := range cfg.Security.ProtectedPaths {
		if isUnder(abs, filepath.Clean(protected)) {
			return fmt.Errorf("%s is inside protected path %s", path, protected)
		}
	}

	return nil
}

func isUnder(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}
