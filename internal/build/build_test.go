package build

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/internal/domain/config"
	"mdblog/internal/domain/content"
	domainerr "mdblog/internal/domain/errors"
	"mdblog/internal/domain/site"
	"mdblog/internal/metrics"
)

const helloMD = "# Hello World\n> 2024-05-01\n[tags] go, web\nThis is the **body**.\n"

type fixture struct {
	root string
	cfg  config.Config
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Build.SourceDir = filepath.Join(root, "markdowns")
	cfg.Build.PublicDir = filepath.Join(root, "public")
	cfg.Build.TemplatesDir = filepath.Join(root, "templates")
	cfg.Build.StaticDir = filepath.Join(root, "static")

	require.NoError(t, os.MkdirAll(cfg.Build.SourceDir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Build.SourceDir, name), []byte(body), 0o644))
	}
	return fixture{root: root, cfg: cfg}
}

func (f fixture) run(t *testing.T, rec metrics.Recorder) *Result {
	t.Helper()
	b := &Builder{
		Cfg:     f.cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: rec,
	}
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	return res
}

func (f fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.cfg.Build.PublicDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func (f fixture) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(f.cfg.Build.PublicDir, filepath.FromSlash(rel)))
	return err == nil
}

func TestRun_HelloWorld(t *testing.T) {
	f := newFixture(t, map[string]string{"hello.md": helloMD})
	res := f.run(t, nil)

	require.Len(t, res.Articles, 1)
	assert.Empty(t, res.Warnings)

	var idx []content.Summary
	require.NoError(t, json.Unmarshal([]byte(f.read(t, "articles.json")), &idx))
	assert.Equal(t, []content.Summary{{
		Title:    "Hello World",
		Date:     "2024-05-01",
		Filename: "hello.html",
		Excerpt:  "This is the body.",
		Category: "2024-05",
		Tags:     []string{"go", "web"},
	}}, idx)

	for _, rel := range []string{
		"index.html",
		"articles/hello.html",
		"2024-05.html",
		"2024.html",
		"tags/go.html",
		"tags/web.html",
		"script.js",
	} {
		assert.True(t, f.exists(rel), rel)
	}
	assert.False(t, f.exists("feed.xml"))
	assert.False(t, f.exists("sitemap.xml"))

	page := f.read(t, "articles/hello.html")
	assert.Contains(t, page, "<h1>Hello World</h1>")
	assert.Contains(t, page, "<strong>body</strong>")
	assert.Contains(t, page, `<a class="tag" href="/tags/go.html">go</a>, <a class="tag" href="/tags/web.html">web</a>`)
	assert.Contains(t, page, `<a class="category" href="/2024-05.html">2024-05</a>`)

	assert.Contains(t, f.read(t, "tags/go.html"), `<a href="/articles/hello.html">Hello World</a>`)
	assert.Contains(t, f.read(t, "2024.html"), `href="/2024-05.html"`)

	js := f.read(t, "script.js")
	assert.NotContains(t, js, "{{routes}}")
	assert.Contains(t, js, `"index":"/articles.json"`)
	assert.Contains(t, js, `"go":"/tags/go.html"`)
	assert.NotContains(t, js, `"years"`)
}

func TestRun_PagesListed(t *testing.T) {
	f := newFixture(t, map[string]string{"hello.md": helloMD})
	res := f.run(t, nil)

	kinds := map[site.RouteKind]int{}
	for _, p := range res.Pages {
		kinds[p.Kind]++
	}
	assert.Equal(t, map[site.RouteKind]int{
		site.RouteIndex:    1,
		site.RoutePost:     1,
		site.RouteCategory: 1,
		site.RouteTag:      2,
		site.RouteYear:     1,
		site.RouteJSON:     1,
		site.RouteAsset:    1,
	}, kinds)
}

func TestRun_MalformedSkipped(t *testing.T) {
	f := newFixture(t, map[string]string{
		"hello.md":  helloMD,
		"bad.md":    "# Only a title\n",
		"notes.txt": "ignored",
	})
	res := f.run(t, nil)

	require.Len(t, res.Articles, 1)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], domainerr.ErrMalformedArticle)
	assert.Equal(t, "malformed_article", WarningKind(res.Warnings[0]))
	assert.False(t, f.exists("articles/bad.html"))
}

func TestRun_GroupedPagesKeepIngestOrder(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.md": "# First\n> 2023-01-01\n[tags] go\nfirst\n",
		"b.md": "# Second\n> 2023-01-20\n[tags] go\nsecond\n",
	})
	f.run(t, nil)

	for _, rel := range []string{"2023-01.html", "tags/go.html"} {
		page := f.read(t, rel)
		first, second := strings.Index(page, ">First<"), strings.Index(page, ">Second<")
		require.NotEqual(t, -1, first, rel)
		require.NotEqual(t, -1, second, rel)
		assert.Less(t, first, second, rel)
	}

	home := f.read(t, "index.html")
	assert.Less(t, strings.Index(home, ">Second<"), strings.Index(home, ">First<"))
}

func TestRun_YearPageListsOwnMonths(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.md": "# Old\n> 2023-01-01\nold\n",
		"b.md": "# New\n> 2024-01-01\nnew\n",
	})
	f.run(t, nil)

	year := f.read(t, "2023.html")
	assert.Contains(t, year, "2023-01")
	assert.NotContains(t, year, "2024-01")
}

func TestRun_ArticleTableOfContents(t *testing.T) {
	f := newFixture(t, map[string]string{
		"toc.md":   "# Guide\n> 2024-05-01\n## Install\n\nsteps\n\n## Usage\n\nrun it\n",
		"short.md": "# Short\n> 2024-05-02\n## Only\n\nbody\n",
	})
	f.run(t, nil)

	page := f.read(t, "articles/toc.html")
	assert.Contains(t, page, `<li class="toc-h2"><a href="#install">Install</a></li>`)
	assert.Contains(t, page, `<li class="toc-h2"><a href="#usage">Usage</a></li>`)
	assert.NotContains(t, f.read(t, "articles/short.html"), `class="toc"`)
}

func TestRun_SlugCollision(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.md": "# A\n> 2024-01-01\n[tags] Go Lang, go-lang\nbody\n",
	})
	f.cfg.Build.SlugStrategy = config.SlugTransliterate
	res := f.run(t, nil)

	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], domainerr.ErrSlugCollision)
	assert.True(t, f.exists("tags/go-lang.html"))
	assert.Contains(t, f.read(t, "tags/go-lang.html"), "<title>Go Lang</title>")
}

func TestRun_FeedsWithSiteURL(t *testing.T) {
	f := newFixture(t, map[string]string{"hello.md": helloMD})
	f.cfg.Site.SiteURL = "https://example.com"
	f.cfg.Site.Author = "me@example.com"
	f.run(t, nil)

	rss := f.read(t, "feed.xml")
	assert.Contains(t, rss, "<managingEditor>me@example.com</managingEditor>")
	assert.Contains(t, rss, "<link>https://example.com/articles/hello.html</link>")
	assert.Contains(t, rss, "<pubDate>Wed, 01 May 2024 00:00:00 +0000</pubDate>")

	sm := f.read(t, "sitemap.xml")
	assert.Contains(t, sm, "<loc>https://example.com/</loc>")
	assert.Contains(t, sm, "<loc>https://example.com/tags/go.html</loc>")
	assert.Contains(t, sm, "<lastmod>2024-05-01</lastmod>")
}

func TestRun_PrefixAndStaticOverride(t *testing.T) {
	f := newFixture(t, map[string]string{"hello.md": helloMD})
	f.cfg.Build.BaseURLPrefix = "/blog"
	require.NoError(t, os.MkdirAll(f.cfg.Build.StaticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.Build.StaticDir, "index.html"), []byte("custom"), 0o644))
	f.run(t, nil)

	assert.Equal(t, "custom", f.read(t, "index.html"))
	assert.Contains(t, f.read(t, "articles/hello.html"), `href="/blog/tags/go.html"`)
	assert.Contains(t, f.read(t, "script.js"), `"index":"/blog/articles.json"`)

	for _, rel := range []string{"articles/hello.html", "tags/go.html", "2024-05.html", "2024.html"} {
		page := f.read(t, rel)
		assert.Contains(t, page, `<script src="/blog/script.js"></script>`, rel)
		assert.Contains(t, page, `<a href="/blog/">Home</a>`, rel)
		assert.NotContains(t, page, `src="/script.js"`, rel)
	}
}

func TestRun_RootPagesLinkRootAssets(t *testing.T) {
	f := newFixture(t, map[string]string{"hello.md": helloMD})
	f.run(t, nil)

	page := f.read(t, "index.html")
	assert.Contains(t, page, `<script src="/script.js"></script>`)
	assert.Contains(t, page, `<a href="/">Home</a>`)
	assert.Contains(t, page, `<ul id="tag-links"></ul>`)
}

func TestRun_TemplatePlaceholderWarning(t *testing.T) {
	f := newFixture(t, map[string]string{"hello.md": helloMD})
	require.NoError(t, os.MkdirAll(f.cfg.Build.TemplatesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.Build.TemplatesDir, "article-template.html"),
		[]byte("<h1>{{title}}</h1>{{content}}"), 0o644))
	res := f.run(t, nil)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "template_placeholder", WarningKind(res.Warnings[0]))
	assert.Contains(t, res.Warnings[0].Msg, "date, category, tags")
	assert.Equal(t, "<h1>Hello World</h1><p>This is the <strong>body</strong>.</p>\n", f.read(t, "articles/hello.html"))
}

func TestRun_MissingSourceDir(t *testing.T) {
	f := newFixture(t, nil)
	f.cfg.Build.SourceDir = filepath.Join(f.root, "nope")

	rec := &countingRecorder{}
	_, err := (&Builder{Cfg: f.cfg, Metrics: rec}).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeFailed}, rec.outcomes)
}

func TestRun_Canceled(t *testing.T) {
	f := newFixture(t, map[string]string{"hello.md": helloMD})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &countingRecorder{}
	_, err := (&Builder{Cfg: f.cfg, Metrics: rec}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeCanceled}, rec.outcomes)
}

func TestRun_Metrics(t *testing.T) {
	f := newFixture(t, map[string]string{
		"hello.md": helloMD,
		"bad.md":   "oops",
	})
	rec := &countingRecorder{}
	f.run(t, rec)

	assert.Equal(t, []metrics.Outcome{metrics.OutcomeWarning}, rec.outcomes)
	assert.Equal(t, 1, rec.articles)
	assert.Equal(t, map[string]int{"malformed_article": 1}, rec.warnings)
	assert.Equal(t, 2, rec.pages["tag"])
	assert.ElementsMatch(t, []string{StageIngest, StagePages, StageIndex, StageAssets}, rec.stages)
}

func TestWriteFile_RejectsEscape(t *testing.T) {
	root := t.TempDir()
	require.Error(t, writeFile(root, "../outside.html", []byte("x")))
	require.NoError(t, writeFile(root, "a/b.html", []byte("x")))
}

type countingRecorder struct {
	metrics.NoopRecorder
	outcomes []metrics.Outcome
	stages   []string
	articles int
	warnings map[string]int
	pages    map[string]int
}

func (r *countingRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.stages = append(r.stages, stage)
}

func (r *countingRecorder) IncBuildOutcome(o metrics.Outcome) { r.outcomes = append(r.outcomes, o) }
func (r *countingRecorder) SetArticles(n int)                 { r.articles = n }

func (r *countingRecorder) IncWarning(kind string) {
	if r.warnings == nil {
		r.warnings = map[string]int{}
	}
	r.warnings[kind]++
}

func (r *countingRecorder) AddPages(kind string, n int) {
	if r.pages == nil {
		r.pages = map[string]int{}
	}
	r.pages[kind] += n
}
