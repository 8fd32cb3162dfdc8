package build

import (
	"context"
	_ "embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"mdblog/internal/domain/content"
	"mdblog/internal/domain/site"
	"mdblog/internal/index"
	"mdblog/internal/render"
)

const ScriptFile = "script.js"

//go:embed assets/script.js
var scriptJS string

// scriptRoutes is injected into script.js so the browser links to the same
// files the build wrote.
type scriptRoutes struct {
	Index      string            `json:"index"`
	Articles   map[string]string `json:"articles"`
	Categories map[string]string `json:"categories"`
	Tags       map[string]string `json:"tags"`
}

func (g *generator) writeScript(ctx context.Context, indexFile string, arts []content.Article, data index.PageData) error {
	sr := scriptRoutes{
		Index:      g.routes.File(site.RouteJSON, indexFile).URL,
		Articles:   make(map[string]string, len(arts)),
		Categories: make(map[string]string, len(data.ByCategory)),
		Tags:       make(map[string]string, len(g.tags)),
	}
	for _, a := range arts {
		sr.Articles[a.Filename] = g.routes.Article(a).URL
	}
	for cat := range data.ByCategory {
		sr.Categories[cat] = g.routes.Category(cat).URL
	}
	for tag, r := range g.tags {
		sr.Tags[tag] = r.URL
	}

	routes, err := json.Marshal(sr)
	var out []byte
	if err == nil {
		out = []byte(render.Fill(scriptJS, map[string]string{"routes": string(routes)}))
	}
	return g.emit(ctx, g.routes.File(site.RouteAsset, ScriptFile), out, err)
}

// copyStaticAssets copies src into outDir, replacing generated files of the
// same name. A missing src is not an error.
func copyStaticAssets(src, outDir string) error {
	if src == "" {
		return nil
	}
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(outDir, rel)

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		in, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, in, 0o644)
	})
}
