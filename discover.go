package metard

import (
	"os"
	"path/filepath"
	"strings"
)

// IsTarget reports whether path's extension equals suffix, ignoring case.
func IsTarget(path, suffix string) bool {
	return strings.EqualFold(filepath.Ext(path), suffix)
}

// Discover lists the regular files directly inside dir whose extension
// matches suffix. Symlinks are followed. Subdirectories are not visited.
func Discover(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !IsTarget(path, suffix) {
			continue
		}
		mode := e.Type()
		if mode&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			mode = info.Mode()
		}
		if mode.IsRegular() {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
