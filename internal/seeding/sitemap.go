package seeding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/crawler"
	customhttp "github.com/BenjaminSRussell/gositemap/internal/http"
	"github.com/BenjaminSRussell/gositemap/internal/parser"
)

// ErrNoSitemap is returned when none of the candidate sitemaps could be read
var ErrNoSitemap = errors.New("no sitemap found")

// maxDocuments caps how many sitemap files one Seed call downloads
const maxDocuments = 50

// well-known sitemap locations tried after the robots.txt declarations
var defaultSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
}

// SitemapSeeder discovers start URLs from a site's existing sitemaps
type SitemapSeeder struct {
	client *customhttp.Client
	limit  int
	delay  time.Duration
	logger *slog.Logger
}

// NewSitemapSeeder creates a seeder returning at most limit URLs. Sitemap
// downloads are spaced by delay, like page fetches.
func NewSitemapSeeder(client *customhttp.Client, limit int, delay time.Duration, logger *slog.Logger) *SitemapSeeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapSeeder{
		client: client,
		limit:  limit,
		delay:  delay,
		logger: logger,
	}
}

// Seed returns page URLs listed in the sitemaps of baseURL's site. The
// declared sitemaps come first, then the well-known locations. Sitemap
// indexes are followed; pages on other hosts are ignored.
func (s *SitemapSeeder) Seed(ctx context.Context, baseURL string, declared []string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	queue := candidates(base, declared)
	queued := make(map[string]bool, len(queue))
	for _, u := range queue {
		queued[u] = true
	}

	seen := make(map[string]bool)
	pages := make([]string, 0)
	pacer := crawler.NewPacer(s.delay)
	fetched := 0

	for len(queue) > 0 && fetched < maxDocuments {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		if s.limit > 0 && len(pages) >= s.limit {
			break
		}

		sitemapURL := queue[0]
		queue = queue[1:]

		if err := pacer.Wait(ctx); err != nil {
			return pages, err
		}
		body, err := s.client.FetchSitemap(ctx, sitemapURL)
		pacer.Done()
		if err != nil {
			s.logger.Debug("sitemap not available", "url", sitemapURL, "error", err)
			continue
		}
		fetched++

		entries := parser.ParseSitemap(string(body))
		for _, nested := range entries.Sitemaps {
			if !queued[nested] {
				queued[nested] = true
				queue = append(queue, nested)
			}
		}

		for _, page := range entries.Pages {
			if s.limit > 0 && len(pages) >= s.limit {
				break
			}
			if seen[page] || !sameHost(page, base) {
				continue
			}
			seen[page] = true
			pages = append(pages, page)
		}

		s.logger.Debug("sitemap parsed",
			"url", sitemapURL,
			"pages", len(entries.Pages),
			"nested", len(entries.Sitemaps))
	}

	if fetched == 0 {
		return nil, ErrNoSitemap
	}
	return pages, nil
}

// candidates lists the declared sitemaps followed by the well-known locations
func candidates(base *url.URL, declared []string) []string {
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	urls := make([]string, 0, len(declared)+len(defaultSitemapPaths))

	for _, u := range declared {
		if !slices.Contains(urls, u) {
			urls = append(urls, u)
		}
	}

	for _, path := range defaultSitemapPaths {
		candidate := root.ResolveReference(&url.URL{Path: path}).String()
		if !slices.Contains(urls, candidate) {
			urls = append(urls, candidate)
		}
	}

	return urls
}

func sameHost(rawURL string, base *url.URL) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, base.Host)
}

