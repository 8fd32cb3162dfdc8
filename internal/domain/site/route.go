package site

import (
	"fmt"
	"strings"
)

type RouteKind string

const (
	RouteIndex    RouteKind = "index"
	RoutePost     RouteKind = "post"
	RouteTag      RouteKind = "tag"
	RouteCategory RouteKind = "category"
	RouteYear     RouteKind = "year"
	RouteRSS      RouteKind = "rss"
	RouteSitemap  RouteKind = "sitemap"
	RouteJSON     RouteKind = "json"
	RouteAsset    RouteKind = "asset"
)

// Route ties a generated file to the URL that links to it.
type Route struct {
	Kind RouteKind
	// Key is the group key: a filename, category, tag or year.
	Key string
	// Slug is only set for tag routes.
	Slug string
	// OutPath is relative to the public directory, using forward slashes.
	OutPath string
	URL     string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	if r.URL != "" {
		parts = append(parts, fmt.Sprintf("url=%s", r.URL))
	}
	return strings.Join(parts, " ")
}
