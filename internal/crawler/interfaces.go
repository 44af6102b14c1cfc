package crawler

import (
	"context"

	"github.com/BenjaminSRussell/gositemap/internal/types"
)

// PageFetcher renders one page and returns the outbound links found on it
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]string, error)
}

// Session is a checked-out browsing session. Release must be called exactly
// once when the crawl is done with it.
type Session interface {
	PageFetcher
	Release() error
}

// Browser hands out sessions. Acquire must release anything it partially
// set up before returning an error.
type Browser interface {
	Acquire(ctx context.Context) (Session, error)
}

// RobotsFetcher returns the raw robots.txt body for a site
type RobotsFetcher interface {
	FetchRobots(ctx context.Context, robotsURL string) ([]byte, error)
}

// Seeder supplies extra start URLs, e.g. from an existing sitemap.
// declared holds the sitemap URLs listed in the site's robots.txt.
type Seeder interface {
	Seed(ctx context.Context, baseURL string, declared []string) ([]string, error)
}

// Exporter writes the final URL list and returns where it went
type Exporter interface {
	Export(urls []string, format types.OutputFormat) (string, error)
}
