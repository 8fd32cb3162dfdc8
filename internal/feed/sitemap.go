package feed

import "encoding/xml"

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type Entry struct {
	URL     string
	LastMod string
}

// Sitemap encodes entries in order, dropping repeated URLs.
func Sitemap(entries []Entry) ([]byte, error) {
	seen := make(map[string]struct{}, len(entries))
	urls := make([]sitemapURL, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.URL]; dup {
			continue
		}
		seen[e.URL] = struct{}{}
		urls = append(urls, sitemapURL{Loc: e.URL, LastMod: e.LastMod})
	}
	return encode(sitemapURLSet{XMLNS: sitemapNS, URLs: urls})
}
