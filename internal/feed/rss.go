// Package feed renders the RSS feed and the sitemap of a built site.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Editor      string    `xml:"managingEditor,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	// Author becomes the channel's managingEditor.
	Author string
}

// Item is one feed entry. URL must be absolute; Date is the article's date
// string and only becomes a pubDate when it parses as DateLayout.
type Item struct {
	Title   string
	URL     string
	Summary string
	Date    string
}

// RSS encodes an RSS 2.0 document, items in the given order.
func RSS(ch Channel, items []Item) ([]byte, error) {
	out := make([]rssItem, 0, len(items))
	for _, it := range items {
		pubDate := ""
		if t, err := time.Parse(DateLayout, it.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		out = append(out, rssItem{
			Title:       it.Title,
			Link:        it.URL,
			Description: it.Summary,
			PubDate:     pubDate,
			GUID:        it.URL,
		})
	}
	doc := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       ch.Title,
			Link:        ch.Link,
			Description: ch.Description,
			Language:    ch.Language,
			Editor:      strings.TrimSpace(ch.Author),
			Items:       out,
		},
	}
	return encode(doc)
}

// Absolute joins the site URL and a root-relative link.
func Absolute(siteURL, link string) string {
	base := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return base + link
}

func encode(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	return append(out, '\n'), nil
}
