package render

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	ArticleTemplateFile = "article-template.html"
	ListingTemplateFile = "listing-template.html"
)

// Required placeholders per template. {{home}}, {{script}} and {{toc}} are
// optional and filled when present.
var (
	ArticlePlaceholders = []string{"title", "date", "category", "tags", "content"}
	ListingPlaceholders = []string{"title", "content"}
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// Templates are plain HTML files with {{name}} placeholders.
type Templates struct {
	Article string
	Listing string
}

// LoadTemplates reads both templates from dir. A file missing from dir (or an
// empty dir) falls back to the built-in default of the same name.
func LoadTemplates(dir string) (Templates, error) {
	article, err := loadTemplate(dir, ArticleTemplateFile)
	if err != nil {
		return Templates{}, err
	}
	listing, err := loadTemplate(dir, ListingTemplateFile)
	if err != nil {
		return Templates{}, err
	}
	return Templates{Article: article, Listing: listing}, nil
}

func loadTemplate(dir, name string) (string, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	data, err := defaultTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("default template %s: %w", name, err)
	}
	return string(data), nil
}

// Fill replaces every occurrence of each {{key}} in tpl with its value, in a
// single pass: substituted text is never scanned for further placeholders.
// Placeholders absent from tpl are silently skipped.
func Fill(tpl string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, placeholder(k), values[k])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// MissingPlaceholders lists the names whose {{name}} does not occur in tpl.
func MissingPlaceholders(tpl string, names []string) []string {
	var missing []string
	for _, n := range names {
		if !strings.Contains(tpl, placeholder(n)) {
			missing = append(missing, n)
		}
	}
	return missing
}

func placeholder(name string) string {
	return "{{" + name + "}}"
}

// SiteLinks are the URLs every page shares. They carry the base URL prefix.
type SiteLinks struct {
	Home   string
	Script string
}

type TemplateRenderer struct {
	tpl   Templates
	links SiteLinks
}

func NewTemplateRenderer(dir string, links SiteLinks) (*TemplateRenderer, error) {
	tpl, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl, links: links}, nil
}

// Missing reports, per template file, the placeholders it does not contain.
func (r *TemplateRenderer) Missing() map[string][]string {
	out := make(map[string][]string)
	if m := MissingPlaceholders(r.tpl.Article, ArticlePlaceholders); len(m) > 0 {
		out[ArticleTemplateFile] = m
	}
	if m := MissingPlaceholders(r.tpl.Listing, ListingPlaceholders); len(m) > 0 {
		out[ListingTemplateFile] = m
	}
	return out
}

func (r *TemplateRenderer) RenderArticle(ctx context.Context, page ArticlePage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(r.fill(r.tpl.Article, page.values())), nil
}

func (r *TemplateRenderer) RenderListing(ctx context.Context, page ListingPage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(r.fill(r.tpl.Listing, page.values())), nil
}

func (r *TemplateRenderer) fill(tpl string, values map[string]string) string {
	values["home"] = html.EscapeString(r.links.Home)
	values["script"] = html.EscapeString(r.links.Script)
	return Fill(tpl, values)
}
