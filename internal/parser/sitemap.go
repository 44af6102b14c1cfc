package parser

import (
	"strings"

	"golang.org/x/net/html"
)

// SitemapEntries holds the <loc> values of a sitemap document, split by
// whether they point at pages (<url>) or at nested sitemaps (<sitemap>).
type SitemapEntries struct {
	Pages    []string
	Sitemaps []string
}

// ParseSitemap extracts locations from a sitemap or sitemap index.
// The tokenizer is lenient, so namespaced or slightly malformed documents
// still yield their <loc> entries.
func ParseSitemap(xmlContent string) SitemapEntries {
	var entries SitemapEntries

	z := html.NewTokenizer(strings.NewReader(xmlContent))
	inSitemap := false
	inLoc := false
	var loc strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return entries
		case html.StartTagToken:
			switch localName(z) {
			case "sitemap":
				inSitemap = true
			case "loc":
				inLoc = true
				loc.Reset()
			}
		case html.EndTagToken:
			switch localName(z) {
			case "sitemap":
				inSitemap = false
			case "loc":
				inLoc = false
				value := strings.TrimSpace(loc.String())
				if value == "" {
					continue
				}
				if inSitemap {
					entries.Sitemaps = append(entries.Sitemaps, value)
				} else {
					entries.Pages = append(entries.Pages, value)
				}
			}
		case html.TextToken:
			if inLoc {
				loc.Write(z.Text())
			}
		}
	}
}

func localName(z *html.Tokenizer) string {
	name, _ := z.TagName()
	n := strings.ToLower(string(name))
	if i := strings.LastIndexByte(n, ':'); i >= 0 {
		n = n[i+1:]
	}
	return n
}
