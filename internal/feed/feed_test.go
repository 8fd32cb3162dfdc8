package feed

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSS(t *testing.T) {
	out, err := RSS(Channel{Title: "Blog", Link: "https://example.com/", Description: "notes"}, []Item{
		{Title: "A & B", URL: "https://example.com/articles/a.html", Summary: "first", Date: "2024-05-01"},
		{Title: "Loose", URL: "https://example.com/articles/b.html", Date: "May 2024"},
	})
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, xml.Header))
	assert.Contains(t, s, `<rss version="2.0">`)
	assert.Contains(t, s, "<title>A &amp; B</title>")
	assert.Contains(t, s, "<pubDate>Wed, 01 May 2024 00:00:00 +0000</pubDate>")
	assert.Contains(t, s, "<guid>https://example.com/articles/b.html</guid>")
	assert.Equal(t, 1, strings.Count(s, "<pubDate>"))

	var doc rssXML
	require.NoError(t, xml.Unmarshal(out, &doc))
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "Loose", doc.Channel.Items[1].Title)
}

func TestRSS_ManagingEditor(t *testing.T) {
	out, err := RSS(Channel{Title: "Blog", Link: "https://example.com/", Author: "editor@example.com (Ed)"}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<managingEditor>editor@example.com (Ed)</managingEditor>")

	out, err = RSS(Channel{Title: "Blog", Link: "https://example.com/"}, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "managingEditor")
}

func TestSitemap_Dedup(t *testing.T) {
	out, err := Sitemap([]Entry{
		{URL: "https://example.com/"},
		{URL: "https://example.com/articles/a.html", LastMod: "2024-05-01"},
		{URL: "https://example.com/"},
	})
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Equal(t, 2, strings.Count(s, "<url>"))
	assert.Contains(t, s, "<lastmod>2024-05-01</lastmod>")
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "https://example.com/tags/go.html", Absolute("https://example.com/", "/tags/go.html"))
	assert.Equal(t, "https://example.com/blog/", Absolute(" https://example.com", "blog/"))
}
