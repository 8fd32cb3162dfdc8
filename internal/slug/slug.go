// Package slug maps tag labels to identifiers that are safe as a single
// path segment, both on disk and in URLs.
//
// A build picks one Strategy and uses the same Slugger for writing tag pages
// and for linking to them.
package slug

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	domainerr "mdblog/internal/domain/errors"
)

type Strategy string

const (
	StrategyPercent       Strategy = "percent"
	StrategyTransliterate Strategy = "transliterate"
)

type Slugger interface {
	Slug(tag string) (string, error)
}

func New(s Strategy) (Slugger, error) {
	switch s {
	case StrategyPercent, "":
		return Percent{}, nil
	case StrategyTransliterate:
		return Transliterate{}, nil
	default:
		return nil, fmt.Errorf("unknown slug strategy %q", s)
	}
}

// Percent escapes the trimmed tag losslessly. Non-Latin tags stay readable
// once decoded but appear percent-encoded in URLs.
type Percent struct{}

func (Percent) Slug(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", domainerr.ErrEmptySlug
	}
	return url.PathEscape(tag), nil
}

var (
	reNonWord    = regexp.MustCompile(`[^\w\s-]`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reDashes     = regexp.MustCompile(`-+`)
)

// Transliterate folds a tag to lower-case ASCII words joined by hyphens.
//
// It is lossy: "Go Lang", "go-lang" and "Gö Lang!" all become "go-lang", and
// scripts without a Latin decomposition (CJK, Cyrillic, ...) are dropped
// entirely. A tag that folds to nothing yields ErrEmptySlug.
type Transliterate struct{}

func (Transliterate) Slug(tag string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, tag)
	if err != nil {
		return "", err
	}
	s = reNonWord.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = reWhitespace.ReplaceAllString(s, "-")
	s = reDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if s == "" {
		return "", fmt.Errorf("%w: %q has no transliterable characters", domainerr.ErrEmptySlug, tag)
	}
	return s, nil
}
