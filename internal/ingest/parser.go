package ingest

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	domainerr "mdblog/internal/domain/errors"
)

// TagsMarker starts the optional tag-declaration line.
const TagsMarker = "[tags]"

var (
	reTitlePrefix = regexp.MustCompile(`^#\s*`)
	reDatePrefix  = regexp.MustCompile(`^>\s*`)
)

// Parsed is the metadata and body extracted from one source file.
type Parsed struct {
	Title string
	Date  string
	Tags  []string
	Body  string
}

// ParseArticle reads the fixed header of a source file:
//
//	# <title>
//	> <date>
//	[tags] a, b, c     (optional, blank lines before it are allowed)
//	<body ...>
func ParseArticle(raw string) (Parsed, error) {
	norm := strings.ReplaceAll(raw, "\r\n", "\n")
	norm = strings.ReplaceAll(norm, "\r", "\n")
	lines := strings.Split(norm, "\n")
	if len(lines) < 2 {
		return Parsed{}, domainerr.Malformed("fewer than 2 lines")
	}

	p := Parsed{
		Title: strings.TrimSpace(reTitlePrefix.ReplaceAllString(lines[0], "")),
		Date:  strings.TrimSpace(reDatePrefix.ReplaceAllString(lines[1], "")),
		Tags:  []string{},
	}
	if p.Title == "" {
		return Parsed{}, domainerr.Malformed("empty title line")
	}
	if p.Date == "" {
		return Parsed{}, domainerr.Malformed("empty date line")
	}
	if utf8.RuneCountInString(p.Date) < 7 {
		return Parsed{}, domainerr.Malformed("date " + p.Date + " has no YYYY-MM prefix")
	}

	bodyStart := 2
	for i := 2; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, TagsMarker) {
			p.Tags = ParseTags(strings.TrimPrefix(line, TagsMarker))
			bodyStart = i + 1
		}
		break
	}
	if bodyStart < len(lines) {
		p.Body = strings.Join(lines[bodyStart:], "\n")
	}
	return p, nil
}

// ParseTags splits a comma separated list. Order and duplicates are kept.
func ParseTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// OutputFilename swaps the source extension for .html.
func OutputFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}
