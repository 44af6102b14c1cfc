package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/config"
	"github.com/BenjaminSRussell/gositemap/internal/logging"
	"github.com/BenjaminSRussell/gositemap/internal/types"
	"github.com/spf13/cobra"
)

// crawlFlags mirrors the config fields that can be set on the command line
type crawlFlags struct {
	maxDepth      int
	maxURLs       int
	crawlDelay    int
	respectRobots bool
	exclude       []string
	include       []string
	format        string
	userAgent     string
	renderer      string
	pageTimeout   time.Duration
	settleDelay   time.Duration
	maxRetries    int
	outputDir     string
	outputFile    string
	seedSitemap   bool
	lastmod       bool
}

// NewCrawlCmd creates the crawl command
func NewCrawlCmd(global *globalOptions) *cobra.Command {
	flags := &crawlFlags{}
	defaults := types.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "crawl [base-url]",
		Aliases: []string{"generate"},
		Short:   "Crawl a site and write its sitemap",
		Long: `Crawl a site breadth-first from the base URL and export every visited URL.
The base URL may also come from the configuration file. Flags override file values.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, global, flags, args)
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd, global, cfg)
			if err != nil {
				return err
			}

			engine, err := newEngine(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create crawler: %w", err)
			}

			results, err := engine.Generate(cmd.Context())
			if results != nil {
				printSummary(cmd, results)
			}
			if err != nil {
				return fmt.Errorf("crawl failed: %w", err)
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.maxDepth, "max-depth", defaults.MaxDepth, "Maximum link depth from the base URL")
	f.IntVar(&flags.maxURLs, "max-urls", defaults.MaxURLs, "Maximum number of URLs to visit")
	f.IntVar(&flags.crawlDelay, "crawl-delay", defaults.CrawlDelay, "Minimum delay between page fetches in milliseconds")
	f.BoolVar(&flags.respectRobots, "respect-robots", defaults.RespectRobotsTxt, "Honor robots.txt")
	f.StringArrayVar(&flags.exclude, "exclude", nil, "Regular expression of URLs to skip (repeatable)")
	f.StringArrayVar(&flags.include, "include", nil, "Regular expression a URL must match (repeatable)")
	f.StringVarP(&flags.format, "format", "f", string(defaults.OutputFormat), "Output format: xml/json/txt")
	f.StringVar(&flags.userAgent, "user-agent", defaults.UserAgent, "User agent for requests and robots.txt matching")
	f.StringVar(&flags.renderer, "renderer", defaults.Renderer, "Page renderer: chrome/http")
	f.DurationVar(&flags.pageTimeout, "page-timeout", defaults.PageTimeout, "Timeout for a single page")
	f.DurationVar(&flags.settleDelay, "settle-delay", defaults.SettleDelay, "Wait after the DOM is ready (chrome)")
	f.IntVar(&flags.maxRetries, "max-retries", defaults.MaxRetries, "Retries for transient HTTP failures")
	f.StringVarP(&flags.outputDir, "output-dir", "o", defaults.OutputDir, "Directory for the sitemap file")
	f.StringVar(&flags.outputFile, "output-file", "", "Sitemap file name (default sitemap.<format>)")
	f.BoolVar(&flags.seedSitemap, "seed-sitemap", defaults.SeedFromSitemap, "Start from URLs in the site's existing sitemap")
	f.BoolVar(&flags.lastmod, "lastmod", defaults.Lastmod, "Add <lastmod> to XML output")

	return cmd
}

// buildConfig layers defaults, the config file, explicitly set flags and the
// positional base URL, in that order, and validates the result
func buildConfig(cmd *cobra.Command, global *globalOptions, flags *crawlFlags, args []string) (types.Config, error) {
	cfg, err := config.Load(global.configPath)
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("max-depth") {
		cfg.MaxDepth = flags.maxDepth
	}
	if f.Changed("max-urls") {
		cfg.MaxURLs = flags.maxURLs
	}
	if f.Changed("crawl-delay") {
		cfg.CrawlDelay = flags.crawlDelay
	}
	if f.Changed("respect-robots") {
		cfg.RespectRobotsTxt = flags.respectRobots
	}
	if f.Changed("exclude") {
		cfg.ExcludePatterns = flags.exclude
	}
	if f.Changed("include") {
		cfg.IncludePatterns = flags.include
	}
	if f.Changed("format") {
		cfg.OutputFormat = types.OutputFormat(flags.format)
	}
	if f.Changed("user-agent") {
		cfg.UserAgent = flags.userAgent
	}
	if f.Changed("renderer") {
		cfg.Renderer = flags.renderer
	}
	if f.Changed("page-timeout") {
		cfg.PageTimeout = flags.pageTimeout
	}
	if f.Changed("settle-delay") {
		cfg.SettleDelay = flags.settleDelay
	}
	if f.Changed("max-retries") {
		cfg.MaxRetries = flags.maxRetries
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if f.Changed("output-file") {
		cfg.OutputFile = flags.outputFile
	}
	if f.Changed("seed-sitemap") {
		cfg.SeedFromSitemap = flags.seedSitemap
	}
	if f.Changed("lastmod") {
		cfg.Lastmod = flags.lastmod
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = global.logLevel
	}
	if f.Changed("log-json") {
		cfg.Logging.Structured = global.logJSON
	}

	if len(args) > 0 {
		cfg.BaseURL = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(cmd *cobra.Command, global *globalOptions, cfg types.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = global.logLevel
	}
	return logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Structured)
}

func printSummary(cmd *cobra.Command, results *types.Results) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Crawl completed!\n")
	fmt.Fprintf(out, "Visited: %d, Discovered: %d, Processed: %d, Errors: %d, Skipped: %d\n",
		len(results.URLs), results.Discovered, results.Processed, results.Errors, results.Skipped)
	if results.OutputPath != "" {
		fmt.Fprintf(out, "Sitemap written to %s\n", results.OutputPath)
	}
}
