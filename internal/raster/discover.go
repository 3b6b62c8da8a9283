package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discover lists the variant map files in dir.
//
// Parameters:
//   - dir: Directory holding the base map and its variants.
//   - base: File name of the base map inside dir. It is never returned.
//   - exclude: Additional entry names to skip (for example "unused").
//
// Returns full paths of every regular file with a supported image extension,
// sorted lexicographically by name. The sort fixes the merge order, so
// repeated runs over the same directory produce identical outputs.
func Discover(dir, base string, exclude []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}

	skip := make(map[string]bool, len(exclude)+1)
	skip[base] = true
	for _, e := range exclude {
		skip[e] = true
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if skip[name] || !e.Type().IsRegular() || !Supported(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
