package app

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"mdblog/internal/domain/config"
	"mdblog/internal/domain/content"
	domainerr "mdblog/internal/domain/errors"
	"mdblog/internal/domain/site"
	"mdblog/internal/slug"
)

// RouteBuilder derives output paths and link URLs. Page writers and link
// renderers both go through it, so a tag page is always written where its
// links point.
type RouteBuilder struct {
	// Prefix is prepended to every URL, e.g. "/blog". Empty for the site root.
	Prefix      string
	ArticlesDir string
	TagsDir     string
	Slugger     slug.Slugger
}

func NewRouteBuilder(cfg config.BuildConfig) (*RouteBuilder, error) {
	s, err := slug.New(slug.Strategy(cfg.SlugStrategy))
	if err != nil {
		return nil, err
	}
	return &RouteBuilder{
		Prefix:      strings.TrimRight(strings.TrimSpace(cfg.BaseURLPrefix), "/"),
		ArticlesDir: strings.Trim(cfg.ArticlesDir, "/"),
		TagsDir:     strings.Trim(cfg.TagsDir, "/"),
		Slugger:     s,
	}, nil
}

func (rb *RouteBuilder) url(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		for _, part := range strings.Split(s, "/") {
			if part == "" {
				continue
			}
			escaped = append(escaped, url.PathEscape(part))
		}
	}
	return rb.Prefix + "/" + strings.Join(escaped, "/")
}

func (rb *RouteBuilder) Home() site.Route {
	return site.Route{Kind: site.RouteIndex, OutPath: "index.html", URL: rb.Prefix + "/"}
}

func (rb *RouteBuilder) Article(a content.Article) site.Route {
	return site.Route{
		Kind:    site.RoutePost,
		Key:     a.Filename,
		OutPath: path.Join(rb.ArticlesDir, a.Filename),
		URL:     rb.url(rb.ArticlesDir, a.Filename),
	}
}

func (rb *RouteBuilder) Category(cat string) site.Route {
	return site.Route{
		Kind:    site.RouteCategory,
		Key:     cat,
		OutPath: cat + ".html",
		URL:     rb.url(cat + ".html"),
	}
}

func (rb *RouteBuilder) Year(year string) site.Route {
	return site.Route{
		Kind:    site.RouteYear,
		Key:     year,
		OutPath: year + ".html",
		URL:     rb.url(year + ".html"),
	}
}

// Tag fails with ErrEmptySlug when the tag has no usable slug.
func (rb *RouteBuilder) Tag(tag string) (site.Route, error) {
	s, err := rb.Slugger.Slug(tag)
	if err != nil {
		return site.Route{}, err
	}
	if s == "" || s == "." || s == ".." {
		return site.Route{}, fmt.Errorf("%w: %q", domainerr.ErrEmptySlug, tag)
	}
	return site.Route{
		Kind:    site.RouteTag,
		Key:     tag,
		Slug:    s,
		OutPath: path.Join(rb.TagsDir, s+".html"),
		URL:     rb.url(rb.TagsDir, s+".html"),
	}, nil
}

// File is a route for a fixed file at the public root, such as articles.json.
func (rb *RouteBuilder) File(kind site.RouteKind, name string) site.Route {
	return site.Route{Kind: kind, Key: name, OutPath: name, URL: rb.url(name)}
}

// TagRoutes resolves every tag once. Tags without a slug, or whose slug is
// already taken by a different tag, are returned as warnings and left out.
func (rb *RouteBuilder) TagRoutes(tags []string) (map[string]site.Route, []error) {
	routes := make(map[string]site.Route, len(tags))
	owner := make(map[string]string, len(tags))
	var problems []error
	for _, tag := range tags {
		if _, done := routes[tag]; done {
			continue
		}
		r, err := rb.Tag(tag)
		if err != nil {
			problems = append(problems, fmt.Errorf("tag %q: %w", tag, err))
			continue
		}
		if prev, taken := owner[r.Slug]; taken {
			problems = append(problems, fmt.Errorf("tag %q: %w with %q on %s", tag, domainerr.ErrSlugCollision, prev, r.OutPath))
			continue
		}
		owner[r.Slug] = tag
		routes[tag] = r
	}
	return routes, problems
}
