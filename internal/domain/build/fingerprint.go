package build

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"mdblog/internal/domain/config"
)

// Fingerprint summarizes every input of a build. Two builds with equal Sum
// produce the same output.
type Fingerprint struct {
	ContentHash  string
	TemplateHash string
	StaticHash   string
	ConfigHash   string
	Sum          string
}

func (f *Fingerprint) ComputeSum() {
	h := sha256.New()
	for _, part := range []string{f.ContentHash, f.TemplateHash, f.StaticHash, f.ConfigHash} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	f.Sum = hex.EncodeToString(h.Sum(nil))
}

// Compute fingerprints the source, template and static directories of cfg
// together with the configuration itself.
func Compute(cfg config.Config) (Fingerprint, error) {
	var f Fingerprint
	var err error
	if f.ContentHash, err = HashTree(cfg.Build.SourceDir); err != nil {
		return f, err
	}
	if f.TemplateHash, err = HashTree(cfg.Build.TemplatesDir); err != nil {
		return f, err
	}
	if f.StaticHash, err = HashTree(cfg.Build.StaticDir); err != nil {
		return f, err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return f, fmt.Errorf("hash config: %w", err)
	}
	sum := sha256.Sum256(data)
	f.ConfigHash = hex.EncodeToString(sum[:])
	f.ComputeSum()
	return f, nil
}

// HashTree hashes the relative paths and contents of all files under dir.
// A missing dir hashes to "".
func HashTree(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		h.Write([]byte{0})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", dir, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
