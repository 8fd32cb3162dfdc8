package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mdblog/internal/app"
	"mdblog/internal/domain/config"
	"mdblog/internal/domain/content"
	domainerr "mdblog/internal/domain/errors"
	"mdblog/internal/domain/site"
	"mdblog/internal/index"
	"mdblog/internal/ingest"
	"mdblog/internal/logfields"
	"mdblog/internal/metrics"
	"mdblog/internal/render"
)

const (
	StageIngest = "ingest"
	StagePages  = "pages"
	StageIndex  = "index"
	StageFeeds  = "feeds"
	StageAssets = "assets"
)

type Builder struct {
	Cfg     config.Config
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

type Result struct {
	Articles []content.Article
	// Pages lists every file written under the public directory.
	Pages    []site.Route
	Warnings []ingest.Warning
}

// Run performs one full build. Per-file problems end up in Result.Warnings;
// an error is returned only when the source directory cannot be listed, the
// output cannot be written, or ctx is done.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	rec := b.recorder()
	log := b.logger()

	res, err := b.run(ctx, log, rec)
	rec.ObserveBuildDuration(time.Since(start))

	var warnCount int
	if res != nil {
		warnCount = len(res.Warnings)
		rec.SetArticles(len(res.Articles))
		for _, w := range res.Warnings {
			rec.IncWarning(WarningKind(w))
		}
	}

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		rec.IncBuildOutcome(metrics.OutcomeCanceled)
	case err != nil:
		rec.IncBuildOutcome(metrics.OutcomeFailed)
	case warnCount > 0:
		rec.IncBuildOutcome(metrics.OutcomeWarning)
	default:
		rec.IncBuildOutcome(metrics.OutcomeSuccess)
	}
	if err != nil {
		return res, err
	}

	log.Info("build finished",
		slog.Int("articles", len(res.Articles)),
		slog.Int("pages", len(res.Pages)),
		slog.Int("warnings", warnCount),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
	)
	return res, nil
}

func (b *Builder) run(ctx context.Context, log *slog.Logger, rec metrics.Recorder) (*Result, error) {
	cfg := b.Cfg.Build
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	routes, err := app.NewRouteBuilder(cfg)
	if err != nil {
		return nil, err
	}
	tpl, err := render.NewTemplateRenderer(cfg.TemplatesDir, render.SiteLinks{
		Home:   routes.Home().URL,
		Script: routes.File(site.RouteAsset, ScriptFile).URL,
	})
	if err != nil {
		return nil, fmt.Errorf("load templates(%s): %w", cfg.TemplatesDir, err)
	}

	res := &Result{}
	g := &generator{
		outDir: cfg.PublicDir,
		routes: routes,
		md:     render.NewMarkdownRenderer(),
		tpl:    tpl,
		res:    res,
		log:    log,
	}
	g.templateWarnings(cfg.TemplatesDir, tpl.Missing())

	var arts []content.Article
	err = b.stage(StageIngest, log, rec, func() error {
		found, warns, err := ingest.Ingest(cfg.SourceDir)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		arts = found
		res.Articles = found
		for _, w := range warns {
			g.warn(w)
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := os.MkdirAll(cfg.PublicDir, 0o755); err != nil {
		return res, fmt.Errorf("mkdir public: %w", err)
	}

	data := index.Aggregate(arts)
	tagRoutes, problems := routes.TagRoutes(index.SortedKeys(data.ByTag))
	g.tags = tagRoutes
	for _, p := range problems {
		g.warn(ingest.Warning{Msg: p.Error(), Err: p})
	}

	err = b.stage(StagePages, log, rec, func() error {
		return g.buildPages(ctx, b.Cfg.Site, arts, data)
	})
	if err != nil {
		return res, err
	}

	err = b.stage(StageIndex, log, rec, func() error {
		r := routes.File(site.RouteJSON, cfg.IndexFile)
		if err := index.WriteIndex(filepath.Join(cfg.PublicDir, filepath.FromSlash(r.OutPath)), arts); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
		res.Pages = append(res.Pages, r)
		return nil
	})
	if err != nil {
		return res, err
	}

	if strings.TrimSpace(b.Cfg.Site.SiteURL) != "" {
		err = b.stage(StageFeeds, log, rec, func() error {
			return g.buildFeeds(ctx, b.Cfg.Site, arts, cfg.FeedSize)
		})
		if err != nil {
			return res, err
		}
	}

	err = b.stage(StageAssets, log, rec, func() error {
		if err := g.writeScript(ctx, cfg.IndexFile, arts, data); err != nil {
			return err
		}
		if err := copyStaticAssets(cfg.StaticDir, cfg.PublicDir); err != nil {
			g.warn(ingest.Warning{Path: cfg.StaticDir, Msg: "copy static assets: " + err.Error(), Err: err})
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	for _, k := range pageKinds(res.Pages) {
		rec.AddPages(string(k.kind), k.n)
	}
	return res, nil
}

func (b *Builder) stage(name string, log *slog.Logger, rec metrics.Recorder, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	rec.ObserveStageDuration(name, d)
	if err != nil {
		log.Error("stage failed", logfields.Stage(name), logfields.Error(err))
		return err
	}
	log.Debug("stage done", logfields.Stage(name), logfields.DurationMS(float64(d.Microseconds())/1000))
	return nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Builder) recorder() metrics.Recorder {
	if b.Metrics != nil {
		return b.Metrics
	}
	return metrics.NoopRecorder{}
}

// WarningKind classifies a warning for metrics and log output.
func WarningKind(w ingest.Warning) string {
	switch {
	case errors.Is(w, domainerr.ErrMalformedArticle):
		return "malformed_article"
	case errors.Is(w, domainerr.ErrDuplicateFilename):
		return "duplicate_filename"
	case errors.Is(w, domainerr.ErrEmptySlug):
		return "empty_slug"
	case errors.Is(w, domainerr.ErrSlugCollision):
		return "slug_collision"
	case errors.Is(w, domainerr.ErrTemplatePlaceholder):
		return "template_placeholder"
	default:
		return "io"
	}
}

type kindCount struct {
	kind site.RouteKind
	n    int
}

func pageKinds(pages []site.Route) []kindCount {
	var out []kindCount
	pos := make(map[site.RouteKind]int)
	for _, p := range pages {
		i, ok := pos[p.Kind]
		if !ok {
			i = len(out)
			pos[p.Kind] = i
			out = append(out, kindCount{kind: p.Kind})
		}
		out[i].n++
	}
	return out
}
