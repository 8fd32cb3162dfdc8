package ingest

import (
	"fmt"
	"os"

	"mdblog/internal/domain/content"
	domainerr "mdblog/internal/domain/errors"
)

// Warning is a per-file problem that did not stop the run.
type Warning struct {
	Path string
	Msg  string
	Err  error
}

func (w Warning) Error() string {
	if w.Path == "" {
		return w.Msg
	}
	return w.Path + ": " + w.Msg
}

func (w Warning) Unwrap() error { return w.Err }

type Result struct {
	Article content.Article
	Warns   []Warning
	Skip    bool
}

// Ingest reads every source file under sourceDir in enumeration order. Files
// that fail to parse, or whose output filename is already taken, are skipped
// and reported as warnings. Only a failure to list sourceDir is returned as
// an error.
func Ingest(sourceDir string) ([]content.Article, []Warning, error) {
	files, err := DiscoverSource(sourceDir)
	if err != nil {
		return nil, nil, fmt.Errorf("discover %s: %w", sourceDir, err)
	}

	var out []content.Article
	var warns []Warning
	for _, sf := range files {
		r := ingestFile(sf)
		warns = append(warns, r.Warns...)
		if r.Skip {
			continue
		}
		out = append(out, r.Article)
	}

	seen := make(map[string]string, len(out))
	filtered := make([]content.Article, 0, len(out))
	for _, a := range out {
		if first, ok := seen[a.Filename]; ok {
			warns = append(warns, Warning{
				Path: a.SourcePath,
				Msg:  fmt.Sprintf("output %s already produced by %s, skipped", a.Filename, first),
				Err:  domainerr.ErrDuplicateFilename,
			})
			continue
		}
		seen[a.Filename] = a.SourcePath
		filtered = append(filtered, a)
	}
	return filtered, warns, nil
}

func ingestFile(sf SourceFile) Result {
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return Result{
			Warns: []Warning{{Path: sf.Path, Msg: "read failed: " + err.Error(), Err: err}},
			Skip:  true,
		}
	}

	p, err := ParseArticle(string(raw))
	if err != nil {
		return Result{
			Warns: []Warning{{Path: sf.Path, Msg: err.Error(), Err: err}},
			Skip:  true,
		}
	}

	a := content.Article{
		Title:      p.Title,
		Date:       p.Date,
		Tags:       p.Tags,
		Body:       p.Body,
		Excerpt:    Excerpt(p.Body),
		Filename:   OutputFilename(sf.Path),
		SourcePath: sf.Path,
	}
	a.Normalize()
	return Result{Article: a}
}
