package types

import "errors"

// Configuration errors returned by Config.Validate.
var (
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrInvalidBaseURL    = errors.New("invalid base URL")
	ErrInvalidMaxDepth   = errors.New("max depth cannot be negative")
	ErrInvalidMaxURLs    = errors.New("max urls must be positive")
	ErrInvalidCrawlDelay = errors.New("crawl delay cannot be negative")
	ErrUnknownFormat     = errors.New("unknown output format")
	ErrUnknownRenderer   = errors.New("unknown renderer")
	ErrInvalidPattern    = errors.New("invalid url pattern")
)

// Run errors returned by the crawl engine.
var (
	// ErrSessionUnavailable means the browsing session could not be acquired.
	ErrSessionUnavailable = errors.New("browser session unavailable")

	// ErrExport means the crawl finished but the artifact could not be written.
	ErrExport = errors.New("sitemap export failed")

	// ErrAlreadyRunning is returned when Generate is called on a busy engine.
	ErrAlreadyRunning = errors.New("crawl already running on this engine")
)
