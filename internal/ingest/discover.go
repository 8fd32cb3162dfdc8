package ingest

import (
	"os"
	"path/filepath"
	"strings"
)

type SourceFile struct {
	Path string
}

// DiscoverSource lists the markdown files directly under root, in name order.
// Subdirectories are not descended into.
func DiscoverSource(root string) ([]SourceFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []SourceFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown") {
			out = append(out, SourceFile{Path: filepath.Join(root, e.Name())})
		}
	}
	return out, nil
}
