package render

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

// ArticlePage fills the article template. Title and Date are plain text;
// the other fields are ready-made HTML.
type ArticlePage struct {
	Title    string
	Date     string
	Category template.HTML
	Tags     template.HTML
	TOC      template.HTML
	Content  template.HTML
}

func (p ArticlePage) values() map[string]string {
	return map[string]string{
		"title":    html.EscapeString(p.Title),
		"date":     html.EscapeString(p.Date),
		"category": string(p.Category),
		"tags":     string(p.Tags),
		"toc":      string(p.TOC),
		"content":  string(p.Content),
	}
}

// ListingPage fills the listing template used for category, tag and year pages.
type ListingPage struct {
	Title   string
	Content template.HTML
}

func (p ListingPage) values() map[string]string {
	return map[string]string{
		"title":   html.EscapeString(p.Title),
		"content": string(p.Content),
	}
}

type Link struct {
	URL  string
	Text string
	// Note is shown next to the link, e.g. the article date.
	Note string
}

// ArticleList renders a listing page body: one <li> per article link.
func ArticleList(links []Link) template.HTML {
	return linkList("article-list", links)
}

// CategoryLinks renders links to category (month) pages inline.
func CategoryLinks(links []Link) template.HTML {
	return inlineLinks("category", links)
}

// TagLinks renders links to tag pages inline.
func TagLinks(links []Link) template.HTML {
	return inlineLinks("tag", links)
}

// TableOfContents links the sections of an article. Fewer than two sections
// render nothing.
func TableOfContents(secs []Section) template.HTML {
	if len(secs) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<nav class=\"toc\">\n<ul>\n")
	for _, s := range secs {
		fmt.Fprintf(&b, "<li class=\"toc-h%d\"><a href=\"#%s\">%s</a></li>\n",
			s.Level, html.EscapeString(s.ID), html.EscapeString(s.Title))
	}
	b.WriteString("</ul>\n</nav>")
	return template.HTML(b.String())
}

func linkList(class string, links []Link) template.HTML {
	var b strings.Builder
	b.WriteString(`<ul class="`)
	b.WriteString(html.EscapeString(class))
	b.WriteString("\">\n")
	for _, l := range links {
		b.WriteString(`<li><a href="`)
		b.WriteString(html.EscapeString(l.URL))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(l.Text))
		b.WriteString("</a>")
		if l.Note != "" {
			b.WriteString(` <span class="note">`)
			b.WriteString(html.EscapeString(l.Note))
			b.WriteString("</span>")
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>")
	return template.HTML(b.String())
}

func inlineLinks(class string, links []Link) template.HTML {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, `<a class="`+html.EscapeString(class)+`" href="`+html.EscapeString(l.URL)+`">`+html.EscapeString(l.Text)+`</a>`)
	}
	return template.HTML(strings.Join(parts, ", "))
}
