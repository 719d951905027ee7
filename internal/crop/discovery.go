package crop

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// discoverImages lists the files in dir whose base name matches *<ext>,
// sorted by name. Sub-directories are not descended into.
func discoverImages(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}

	pattern := "*" + ext
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if matched, _ := filepath.Match(pattern, e.Name()); matched {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// imageName strips the directory and extension from an image path.
func imageName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
