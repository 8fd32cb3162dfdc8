package index

import (
	"cmp"
	"slices"

	"mdblog/internal/domain/content"
)

// PageData holds the three groupings that drive listing pages.
type PageData struct {
	ByCategory map[string][]content.Article
	ByTag      map[string][]content.Article
	// ByYear maps a year to the distinct categories seen in it, ascending.
	ByYear map[string][]string
}

// GroupBy files every article under each key returned by keyFn. Keys are
// compared exactly and each group keeps the input order. An article listing
// the same key twice is filed once.
func GroupBy(articles []content.Article, keyFn func(content.Article) []string) map[string][]content.Article {
	out := make(map[string][]content.Article)
	for _, a := range articles {
		keys := keyFn(a)
		for i, k := range keys {
			if slices.Contains(keys[:i], k) {
				continue
			}
			out[k] = append(out[k], a)
		}
	}
	return out
}

func ByCategory(articles []content.Article) map[string][]content.Article {
	return GroupBy(articles, func(a content.Article) []string {
		return []string{a.Category()}
	})
}

func ByTag(articles []content.Article) map[string][]content.Article {
	return GroupBy(articles, func(a content.Article) []string {
		return a.Tags
	})
}

func ByYear(articles []content.Article) map[string][]string {
	byYear := GroupBy(articles, func(a content.Article) []string {
		return []string{a.Year()}
	})
	out := make(map[string][]string, len(byYear))
	for year, arts := range byYear {
		cats := make([]string, 0, len(arts))
		for _, a := range arts {
			cats = append(cats, a.Category())
		}
		slices.Sort(cats)
		out[year] = slices.Compact(cats)
	}
	return out
}

func Aggregate(articles []content.Article) PageData {
	return PageData{
		ByCategory: ByCategory(articles),
		ByTag:      ByTag(articles),
		ByYear:     ByYear(articles),
	}
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SortByDateDesc returns a copy of articles, newest first. Equal dates keep
// their input order.
func SortByDateDesc(articles []content.Article) []content.Article {
	out := slices.Clone(articles)
	slices.SortStableFunc(out, func(a, b content.Article) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return out
}

// Latest returns at most n articles, newest first. n <= 0 means all of them.
func Latest(articles []content.Article, n int) []content.Article {
	sorted := SortByDateDesc(articles)
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
