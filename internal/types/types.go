package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// OutputFormat selects the sitemap encoding
type OutputFormat string

const (
	FormatXML  OutputFormat = "xml"
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "txt"
)

// Renderer backends
const (
	RendererChrome = "chrome"
	RendererHTTP   = "http"
)

// DefaultUserAgent is the crawler identity used for robots.txt and requests
const DefaultUserAgent = "GoSitemapBot"

// ParseOutputFormat accepts the short names and the long aliases
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xml", "structured-xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "txt", "text", "plain-text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension used for the artifact
func (f OutputFormat) Extension() string {
	return string(f)
}

// Config holds crawler configuration
type Config struct {
	BaseURL          string       `yaml:"base_url" json:"base_url"`
	MaxDepth         int          `yaml:"max_depth" json:"max_depth"`
	MaxURLs          int          `yaml:"max_urls" json:"max_urls"`
	RespectRobotsTxt bool         `yaml:"respect_robots_txt" json:"respect_robots_txt"`
	CrawlDelay       int          `yaml:"crawl_delay" json:"crawl_delay"` // milliseconds
	ExcludePatterns  []string     `yaml:"exclude_patterns" json:"exclude_patterns"`
	IncludePatterns  []string     `yaml:"include_patterns" json:"include_patterns"`
	OutputFormat     OutputFormat `yaml:"output_format" json:"output_format"`

	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
	Renderer        string        `yaml:"renderer" json:"renderer"`
	PageTimeout     time.Duration `yaml:"page_timeout" json:"page_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay" json:"settle_delay"`
	MaxRetries      int           `yaml:"max_retries" json:"max_retries"`
	OutputDir       string        `yaml:"output_dir" json:"output_dir"`
	OutputFile      string        `yaml:"output_file" json:"output_file"`
	SeedFromSitemap bool          `yaml:"seed_from_sitemap" json:"seed_from_sitemap"`
	Lastmod         bool          `yaml:"lastmod" json:"lastmod"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig selects log verbosity and format
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Structured bool   `yaml:"structured" json:"structured"`
}

// DefaultConfig returns a Config populated with the documented defaults.
// BaseURL is left empty and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		MaxDepth:         3,
		MaxURLs:          1000,
		RespectRobotsTxt: true,
		CrawlDelay:       1000,
		ExcludePatterns:  []string{},
		IncludePatterns:  []string{},
		OutputFormat:     FormatXML,
		UserAgent:        DefaultUserAgent,
		Renderer:         RendererChrome,
		PageTimeout:      30 * time.Second,
		SettleDelay:      500 * time.Millisecond,
		MaxRetries:       2,
		OutputDir:        ".",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CrawlInterval is the minimum spacing between two page fetches
func (c Config) CrawlInterval() time.Duration {
	return time.Duration(c.CrawlDelay) * time.Millisecond
}

// Validate checks the configuration and normalizes the output format
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrBaseURLRequired
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBaseURL, c.BaseURL)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxDepth, c.MaxDepth)
	}

	if c.MaxURLs <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxURLs, c.MaxURLs)
	}

	if c.CrawlDelay < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCrawlDelay, c.CrawlDelay)
	}

	format, err := ParseOutputFormat(string(c.OutputFormat))
	if err != nil {
		return err
	}
	c.OutputFormat = format

	switch c.Renderer {
	case RendererChrome, RendererHTTP:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRenderer, c.Renderer)
	}

	if c.PageTimeout <= 0 {
		return fmt.Errorf("page timeout must be positive, got %v", c.PageTimeout)
	}

	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10, got %d", c.MaxRetries)
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	return nil
}

// CrawlTask is a URL waiting in the frontier
type CrawlTask struct {
	URL       string
	Depth     int
	ParentURL string
}

// Results contains the outcome of one crawl run
type Results struct {
	// URLs holds the visited set in visitation order
	URLs []string

	Discovered int // links enqueued
	Processed  int // pages admitted and fetched
	Errors     int // fetch failures
	Skipped    int // tasks dropped by admission checks

	RobotsLoaded bool
	OutputPath   string
	Duration     time.Duration
}
