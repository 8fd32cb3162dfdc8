package ingest

import (
	"regexp"
	"strings"
)

// ExcerptLen is the excerpt size in characters.
const ExcerptLen = 100

var (
	reHTMLTag = regexp.MustCompile(`<[^>]*>`)

	syntaxStripper = strings.NewReplacer(
		"`", "",
		"*", "",
		"_", "",
		">", "",
		"#", "",
		"-", "",
		"[", "",
		"]", "",
		"(", "",
		")", "",
		"\r", "",
		"\n", "",
	)
)

// Excerpt derives a plain-text preview from a markdown body. It is positional,
// not semantic: reference links and other constructs are left as they are.
func Excerpt(body string) string {
	s := reHTMLTag.ReplaceAllString(body, "")
	s = syntaxStripper.Replace(s)
	return truncateRunes(s, ExcerptLen)
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
