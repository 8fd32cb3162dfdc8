package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mdblog/internal/domain/content"
)

// Encode renders the article index as an indented JSON array, in input order.
func Encode(articles []content.Article) ([]byte, error) {
	summaries := make([]content.Summary, 0, len(articles))
	for _, a := range articles {
		summaries = append(summaries, a.Summary())
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteIndex replaces the index at path with a fresh snapshot of articles.
// The previous file is never merged; it is overwritten through a rename.
func WriteIndex(path string, articles []content.Article) error {
	data, err := Encode(articles)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
