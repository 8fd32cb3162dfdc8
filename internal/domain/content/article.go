package content

import (
	"strings"
	"unicode/utf8"
)

// Article is one parsed source file.
type Article struct {
	Title string
	// Date is kept as written in the source; it sorts lexically for YYYY-MM-DD.
	Date string

	Tags    []string
	Body    string
	Excerpt string

	Filename   string
	SourcePath string
}

// Category is the YYYY-MM prefix of Date.
func (a Article) Category() string {
	return prefix(a.Date, 7)
}

// Year is the YYYY prefix of Date.
func (a Article) Year() string {
	return prefix(a.Date, 4)
}

func (a *Article) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Date = strings.TrimSpace(a.Date)
	if a.Tags == nil {
		a.Tags = []string{}
	}
}

// Summary is the index entry written to articles.json.
type Summary struct {
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Filename string   `json:"filename"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

func (a Article) Summary() Summary {
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	return Summary{
		Title:    a.Title,
		Date:     a.Date,
		Filename: a.Filename,
		Excerpt:  a.Excerpt,
		Category: a.Category(),
		Tags:     tags,
	}
}

// prefix returns the first n characters of s, counted in runes.
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
