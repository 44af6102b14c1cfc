package parser

import (
	"testing"
)

func TestExtractLinks(t *testing.T) {
	html := `
	<html>
		<head><title>Test Page</title></head>
		<body>
			<a href="https://example.com/page1">Link 1</a>
			<a href="/page2">Link 2</a>
			<a href="page3">Link 3</a>
			<a href="#top">Top</a>
			<a href="javascript:void(0)">Menu</a>
			<a href="mailto:x@example.com">Mail</a>
		</body>
	</html>
	`

	links, title := ExtractLinks(html, "https://example.com/docs/")

	if title != "Test Page" {
		t.Errorf("Expected title 'Test Page', got %s", title)
	}

	want := []string{
		"https://example.com/page1",
		"https://example.com/page2",
		"https://example.com/docs/page3",
	}
	if len(links) != len(want) {
		t.Fatalf("Expected %d links, got %d: %v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %s, want %s", i, links[i], want[i])
		}
	}
}

func TestExtractLinksEmptyHTML(t *testing.T) {
	links, title := ExtractLinks("", "https://example.com")

	if len(links) != 0 {
		t.Errorf("Expected 0 links, got %d", len(links))
	}

	if title != "" {
		t.Errorf("Expected empty title, got %s", title)
	}
}

func TestExtractLinksNoDuplicates(t *testing.T) {
	html := `
	<html>
		<body>
			<a href="https://example.com/page">Link 1</a>
			<a href="https://example.com/page#section">Link 2</a>
		</body>
	</html>
	`

	links, _ := ExtractLinks(html, "https://example.com")

	if len(links) != 1 {
		t.Errorf("Expected 1 unique link, got %d", len(links))
	}
}

func TestExtractLinksBaseHref(t *testing.T) {
	html := `<html><head><base href="https://cdn.example.com/root/"></head>
	<body><a href="child">Child</a></body></html>`

	links, _ := ExtractLinks(html, "https://example.com/page")

	if len(links) != 1 || links[0] != "https://cdn.example.com/root/child" {
		t.Errorf("Expected link resolved against base href, got %v", links)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		href string
		base string
		want string
	}{
		{"https://example.com", "https://example.com", "https://example.com"},
		{"https://example.com/a#frag", "https://example.com", "https://example.com/a"},
		{"/a", "https://example.com/x/y", "https://example.com/a"},
		{"b", "https://example.com/x/y", "https://example.com/x/b"},
		{"../c", "https://example.com/x/y/", "https://example.com/x/c"},
		{"//other.example.com/p", "https://example.com", "https://other.example.com/p"},
		{"https://EXAMPLE.com/Case", "https://example.com", "https://example.com/Case"},
		{"/p?utm_source=x&id=2", "https://example.com", "https://example.com/p?id=2"},
		{"/p?b=2&a=1", "https://example.com", "https://example.com/p?b=2&a=1"},
		{"#only", "https://example.com", ""},
		{"", "https://example.com", ""},
		{"javascript:alert(1)", "https://example.com", ""},
		{"mailto:x@example.com", "https://example.com", ""},
		{"tel:+123", "https://example.com", ""},
		{"ftp://example.com/file", "https://example.com", ""},
	}

	for _, tt := range tests {
		got := NormalizeURL(tt.href, tt.base)
		if got != tt.want {
			t.Errorf("NormalizeURL(%q, %q) = %q, want %q", tt.href, tt.base, got, tt.want)
		}
	}
}

func TestParseSitemap(t *testing.T) {
	index := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-1.xml</loc></sitemap>
  <sitemap><loc> https://example.com/sitemap-2.xml </loc></sitemap>
</sitemapindex>`

	entries := ParseSitemap(index)
	if len(entries.Sitemaps) != 2 {
		t.Fatalf("Expected 2 nested sitemaps, got %v", entries.Sitemaps)
	}
	if entries.Sitemaps[1] != "https://example.com/sitemap-2.xml" {
		t.Errorf("Expected trimmed loc, got %q", entries.Sitemaps[1])
	}
	if len(entries.Pages) != 0 {
		t.Errorf("Expected no pages, got %v", entries.Pages)
	}

	urlset := `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/a?x=1&amp;y=2</loc></url>
  <url><loc>https://example.com/b</loc><lastmod>2024-01-01</lastmod></url>
</urlset>`

	pages := ParseSitemap(urlset).Pages
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %v", pages)
	}
	if pages[0] != "https://example.com/a?x=1&y=2" {
		t.Errorf("Expected unescaped loc, got %q", pages[0])
	}
}
