package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks extracts all anchor links and the title from an HTML document.
// Links are resolved against pageURL and normalized; duplicates are removed
// while keeping document order.
func ExtractLinks(htmlContent, pageURL string) ([]string, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, ""
	}

	base := pageURL
	// <base href> changes how relative links resolve
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved := resolve(href, pageURL); resolved != nil {
			base = resolved.String()
		}
	}

	links := make([]string, 0)
	visited := make(map[string]bool)
	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link := NormalizeURL(href, base); link != "" && !visited[link] {
			links = append(links, link)
			visited[link] = true
		}
	})

	return links, title
}

// NormalizeURL converts href to an absolute, fragment-free http(s) URL.
// It returns "" for fragment-only links, pseudo-scheme links (javascript:,
// mailto:, tel:, data:) and anything that does not resolve to http or https.
func NormalizeURL(href, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	resolved := resolve(href, baseURL)
	if resolved == nil {
		return ""
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	resolved.Fragment = ""
	resolved.RawFragment = ""
	resolved.Host = strings.ToLower(resolved.Host)

	removeTrackingParams(resolved)

	return resolved.String()
}

func resolve(href, baseURL string) *url.URL {
	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if baseURL == "" {
		return u
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	return base.ResolveReference(u)
}

var trackingParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"fbclid",
	"gclid",
	"msclkid",
	"mc_cid",
	"mc_eid",
}

// removeTrackingParams drops common tracking parameters. The query is only
// re-encoded when one of them was present.
func removeTrackingParams(u *url.URL) {
	if u.RawQuery == "" {
		return
	}

	q := u.Query()
	removed := false
	for _, param := range trackingParams {
		if q.Has(param) {
			q.Del(param)
			removed = true
		}
	}

	if removed {
		u.RawQuery = q.Encode()
	}
}
