package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/crawler"
	"github.com/BenjaminSRussell/gositemap/internal/export"
	customhttp "github.com/BenjaminSRussell/gositemap/internal/http"
	"github.com/BenjaminSRussell/gositemap/internal/renderer"
	"github.com/BenjaminSRussell/gositemap/internal/seeding"
	"github.com/BenjaminSRussell/gositemap/internal/types"
)

// newEngine wires the crawl engine and its collaborators for cfg.
// cfg must already be validated.
func newEngine(cfg types.Config, logger *slog.Logger) (*crawler.Engine, error) {
	client := newHTTPClient(cfg)

	browser, err := newBrowser(cfg, client)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}

	opts := []crawler.Option{
		crawler.WithLogger(logger),
		crawler.WithRobotsFetcher(customhttp.NewRobotsFetcher(client)),
		crawler.WithExporter(exporter),
	}
	if cfg.SeedFromSitemap {
		opts = append(opts, crawler.WithSeeder(seeding.NewSitemapSeeder(client, cfg.MaxURLs, cfg.CrawlInterval(), logger)))
	}

	return crawler.New(cfg, browser, opts...)
}

func newHTTPClient(cfg types.Config) *customhttp.Client {
	retry := customhttp.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	return customhttp.NewClient(customhttp.ClientOptions{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.PageTimeout,
		Retry:     retry,
	})
}

// newBrowser selects the page renderer backend
func newBrowser(cfg types.Config, client *customhttp.Client) (crawler.Browser, error) {
	switch cfg.Renderer {
	case types.RendererChrome:
		return renderer.NewChromeRenderer(renderer.Options{
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.PageTimeout,
			SettleDelay: cfg.SettleDelay,
		}), nil
	case types.RendererHTTP:
		return customhttp.NewStaticBrowser(client), nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownRenderer, cfg.Renderer)
}

func newExporter(cfg types.Config) (*export.Exporter, error) {
	opts := export.Options{FileName: cfg.OutputFile}
	if cfg.Lastmod {
		opts.Lastmod = time.Now().UTC().Truncate(time.Second)
	}
	return export.NewExporter(cfg.OutputDir, opts)
}
