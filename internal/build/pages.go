package build

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"mdblog/internal/app"
	"mdblog/internal/domain/config"
	"mdblog/internal/domain/content"
	domainerr "mdblog/internal/domain/errors"
	"mdblog/internal/domain/site"
	"mdblog/internal/feed"
	"mdblog/internal/index"
	"mdblog/internal/ingest"
	"mdblog/internal/logfields"
	"mdblog/internal/render"
)

// generator writes the pages of one build into outDir.
type generator struct {
	outDir string
	routes *app.RouteBuilder
	// tags holds the routes of tags that got a page.
	tags map[string]site.Route
	md   *render.MarkdownRenderer
	tpl  render.Renderer
	res  *Result
	log  *slog.Logger
}

func (g *generator) warn(w ingest.Warning) {
	g.res.Warnings = append(g.res.Warnings, w)
	g.log.Warn("skipped", logfields.Path(w.Path), logfields.Kind(WarningKind(w)), logfields.Error(w))
}

func (g *generator) templateWarnings(dir string, missing map[string][]string) {
	for _, file := range index.SortedKeys(missing) {
		g.warn(ingest.Warning{
			Path: filepath.Join(dir, file),
			Msg:  "no placeholder for " + strings.Join(missing[file], ", "),
			Err:  domainerr.ErrTemplatePlaceholder,
		})
	}
}

// emit writes one page. A render or write failure becomes a warning; only a
// done ctx stops the run.
func (g *generator) emit(ctx context.Context, r site.Route, data []byte, renderErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if renderErr != nil {
		g.warn(ingest.Warning{Path: r.OutPath, Msg: "render " + string(r.Kind) + ": " + renderErr.Error(), Err: renderErr})
		return nil
	}
	if err := writeFile(g.outDir, r.OutPath, data); err != nil {
		g.warn(ingest.Warning{Path: r.OutPath, Msg: "write: " + err.Error(), Err: err})
		return nil
	}
	g.res.Pages = append(g.res.Pages, r)
	g.log.Debug("wrote page", slog.String("route", r.String()))
	return nil
}

func (g *generator) buildPages(ctx context.Context, sc config.SiteConfig, arts []content.Article, data index.PageData) error {
	if err := g.buildHome(ctx, sc, arts); err != nil {
		return fmt.Errorf("build home: %w", err)
	}
	if err := g.buildArticles(ctx, arts); err != nil {
		return fmt.Errorf("build articles: %w", err)
	}
	if err := g.buildCategories(ctx, data); err != nil {
		return fmt.Errorf("build categories: %w", err)
	}
	if err := g.buildTags(ctx, data); err != nil {
		return fmt.Errorf("build tags: %w", err)
	}
	if err := g.buildYears(ctx, data); err != nil {
		return fmt.Errorf("build years: %w", err)
	}
	return nil
}

// buildHome lists every article, newest first. A static index.html copied
// later replaces it.
func (g *generator) buildHome(ctx context.Context, sc config.SiteConfig, arts []content.Article) error {
	return g.listing(ctx, g.routes.Home(), sc.Title, render.ArticleList(g.articleLinks(index.SortByDateDesc(arts))))
}

func (g *generator) buildArticles(ctx context.Context, arts []content.Article) error {
	for _, a := range arts {
		data, err := g.articlePage(ctx, a)
		if err := g.emit(ctx, g.routes.Article(a), data, err); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) articlePage(ctx context.Context, a content.Article) ([]byte, error) {
	md, err := g.md.Render([]byte(a.Body))
	if err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	cat := g.routes.Category(a.Category())
	return g.tpl.RenderArticle(ctx, render.ArticlePage{
		Title:    a.Title,
		Date:     a.Date,
		Category: render.CategoryLinks([]render.Link{{URL: cat.URL, Text: cat.Key}}),
		Tags:     render.TagLinks(g.tagLinks(a.Tags)),
		TOC:      render.TableOfContents(md.Sections),
		Content:  template.HTML(md.HTML),
	})
}

func (g *generator) buildCategories(ctx context.Context, data index.PageData) error {
	for _, cat := range index.SortedKeys(data.ByCategory) {
		body := render.ArticleList(g.articleLinks(data.ByCategory[cat]))
		if err := g.listing(ctx, g.routes.Category(cat), cat, body); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) buildTags(ctx context.Context, data index.PageData) error {
	for _, tag := range index.SortedKeys(data.ByTag) {
		r, ok := g.tags[tag]
		if !ok {
			continue
		}
		body := render.ArticleList(g.articleLinks(data.ByTag[tag]))
		if err := g.listing(ctx, r, tag, body); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) buildYears(ctx context.Context, data index.PageData) error {
	for _, year := range index.SortedKeys(data.ByYear) {
		cats := data.ByYear[year]
		links := make([]render.Link, 0, len(cats))
		for _, cat := range cats {
			links = append(links, render.Link{URL: g.routes.Category(cat).URL, Text: cat})
		}
		if err := g.listing(ctx, g.routes.Year(year), year, render.CategoryLinks(links)); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) listing(ctx context.Context, r site.Route, title string, body template.HTML) error {
	data, err := g.tpl.RenderListing(ctx, render.ListingPage{Title: title, Content: body})
	return g.emit(ctx, r, data, err)
}

// articleLinks keeps the order of arts. Category and tag pages list their
// group in ingest order.
func (g *generator) articleLinks(arts []content.Article) []render.Link {
	links := make([]render.Link, 0, len(arts))
	for _, a := range arts {
		links = append(links, render.Link{URL: g.routes.Article(a).URL, Text: a.Title, Note: a.Date})
	}
	return links
}

// tagLinks links each distinct tag that has a page.
func (g *generator) tagLinks(tags []string) []render.Link {
	links := make([]render.Link, 0, len(tags))
	for i, tag := range tags {
		if slices.Contains(tags[:i], tag) {
			continue
		}
		if r, ok := g.tags[tag]; ok {
			links = append(links, render.Link{URL: r.URL, Text: tag})
		}
	}
	return links
}

func (g *generator) buildFeeds(ctx context.Context, sc config.SiteConfig, arts []content.Article, size int) error {
	latest := index.Latest(arts, size)
	items := make([]feed.Item, 0, len(latest))
	for _, a := range latest {
		items = append(items, feed.Item{
			Title:   a.Title,
			URL:     feed.Absolute(sc.SiteURL, g.routes.Article(a).URL),
			Summary: a.Excerpt,
			Date:    a.Date,
		})
	}
	rss, err := feed.RSS(feed.Channel{
		Title:       sc.Title,
		Link:        feed.Absolute(sc.SiteURL, g.routes.Home().URL),
		Description: sc.Description,
		Language:    sc.Language,
		Author:      sc.Author,
	}, items)
	if err := g.emit(ctx, g.routes.File(site.RouteRSS, "feed.xml"), rss, err); err != nil {
		return err
	}

	dates := make(map[string]string, len(arts))
	for _, a := range arts {
		dates[a.Filename] = a.Date
	}
	var entries []feed.Entry
	for _, p := range g.res.Pages {
		switch p.Kind {
		case site.RouteIndex, site.RouteCategory, site.RouteTag, site.RouteYear:
			entries = append(entries, feed.Entry{URL: feed.Absolute(sc.SiteURL, p.URL)})
		case site.RoutePost:
			e := feed.Entry{URL: feed.Absolute(sc.SiteURL, p.URL)}
			if _, err := time.Parse(feed.DateLayout, dates[p.Key]); err == nil {
				e.LastMod = dates[p.Key]
			}
			entries = append(entries, e)
		}
	}
	sitemap, err := feed.Sitemap(entries)
	return g.emit(ctx, g.routes.File(site.RouteSitemap, "sitemap.xml"), sitemap, err)
}

// writeFile writes data to rel under root. rel must stay inside root.
func writeFile(root, rel string, data []byte) error {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return fmt.Errorf("output path %q escapes %s", rel, root)
	}
	full := filepath.Join(root, local)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
