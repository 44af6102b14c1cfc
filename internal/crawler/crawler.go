package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/parser"
	"github.com/BenjaminSRussell/gositemap/internal/types"
)

// Engine is the main crawler engine. It walks one site breadth-first from
// the base URL and hands the visited URLs to an exporter.
type Engine struct {
	config  types.Config
	seedURL string
	filter  *PatternFilter

	browser  Browser
	robots   RobotsFetcher
	seeder   Seeder
	exporter Exporter
	logger   *slog.Logger

	running atomic.Bool
}

// Option configures an Engine
type Option func(*Engine)

// WithRobotsFetcher sets where robots.txt is loaded from. Without one,
// robots rules are not enforced.
func WithRobotsFetcher(f RobotsFetcher) Option {
	return func(e *Engine) {
		e.robots = f
	}
}

// WithSeeder adds extra depth-0 start URLs
func WithSeeder(s Seeder) Option {
	return func(e *Engine) {
		e.seeder = s
	}
}

// WithExporter sets the sink for the final URL list
func WithExporter(x Exporter) Option {
	return func(e *Engine) {
		e.exporter = x
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a new crawl engine
func New(config types.Config, browser Browser, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if browser == nil {
		return nil, fmt.Errorf("browser is required")
	}

	include, err := CompilePatterns(config.IncludePatterns)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	exclude, err := CompilePatterns(config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	seedURL := parser.NormalizeURL(config.BaseURL, "")
	if seedURL == "" {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidBaseURL, config.BaseURL)
	}

	config.IncludePatterns = slices.Clone(config.IncludePatterns)
	config.ExcludePatterns = slices.Clone(config.ExcludePatterns)

	e := &Engine{
		config:  config,
		seedURL: seedURL,
		filter:  NewPatternFilter(include, exclude),
		browser: browser,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Config returns the validated configuration
func (e *Engine) Config() types.Config {
	return e.config
}

// runState is the per-run crawl state. It is created by Generate and
// never shared between runs.
type runState struct {
	frontier *Frontier
	visited  *VisitedSet
	gate     *PolicyGate
	pacer    *Pacer
	results  *types.Results
	logger   *slog.Logger
}

// Generate crawls the site and exports the visited URLs. Page failures are
// logged and skipped. It fails when no browser session can be acquired or the
// export fails; a cancelled context stops the crawl, exports what was found
// and returns the context error.
func (e *Engine) Generate(ctx context.Context) (*types.Results, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, types.ErrAlreadyRunning
	}
	defer e.running.Store(false)

	started := time.Now()
	logger := e.logger.With("base_url", e.seedURL)
	logger.Info("starting crawl",
		"max_depth", e.config.MaxDepth,
		"max_urls", e.config.MaxURLs,
		"crawl_delay", e.config.CrawlInterval(),
		"respect_robots", e.config.RespectRobotsTxt)

	rules := e.loadRobots(ctx, logger)
	enforced := rules
	if !e.config.RespectRobotsTxt {
		enforced = nil
	}

	st := &runState{
		frontier: NewFrontier(),
		visited:  NewVisitedSet(e.config.MaxURLs),
		gate:     NewPolicyGate(e.filter, enforced, e.config.RespectRobotsTxt, e.config.UserAgent),
		pacer:    NewPacer(e.config.CrawlInterval()),
		results:  &types.Results{RobotsLoaded: enforced != nil},
		logger:   logger,
	}

	st.frontier.Push(types.CrawlTask{URL: e.seedURL, Depth: 0})
	e.runSeeder(ctx, st, rules.Sitemaps())

	crawlErr := e.crawl(ctx, st)
	if errors.Is(crawlErr, types.ErrSessionUnavailable) {
		return nil, crawlErr
	}

	results := st.results
	results.URLs = st.visited.URLs()
	results.Duration = time.Since(started)

	if e.exporter != nil {
		path, err := e.exporter.Export(results.URLs, e.config.OutputFormat)
		if err != nil {
			return results, fmt.Errorf("%w: %w", types.ErrExport, err)
		}
		results.OutputPath = path
	}

	logger.Info("crawl finished",
		"visited", len(results.URLs),
		"errors", results.Errors,
		"skipped", results.Skipped,
		"pending", st.frontier.Len(),
		"duration", results.Duration.Round(time.Millisecond))

	return results, crawlErr
}

// crawl checks out a session, runs the loop and releases the session
// exactly once on every path out, panics included.
func (e *Engine) crawl(ctx context.Context, st *runState) error {
	session, err := e.browser.Acquire(ctx)
	if err != nil {
		if session != nil {
			if rerr := session.Release(); rerr != nil {
				st.logger.Error("failed to release partial browser session", "error", rerr)
			}
		}
		return fmt.Errorf("%w: %w", types.ErrSessionUnavailable, err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := session.Release(); err != nil {
				st.logger.Error("failed to release browser session", "error", err)
			}
		})
	}
	defer release()

	err = e.loop(ctx, session, st)
	release()
	return err
}

// loop is the breadth-first traversal
func (e *Engine) loop(ctx context.Context, fetcher PageFetcher, st *runState) error {
	for !st.frontier.IsEmpty() && st.visited.Len() < e.config.MaxURLs {
		if err := ctx.Err(); err != nil {
			return err
		}

		task, _ := st.frontier.Pop()

		reason := e.admit(task, st)
		if reason != admitted {
			st.results.Skipped++
			st.logger.Debug("task dropped", "url", task.URL, "depth", task.Depth, "reason", reason)
			if reason == dropLimit {
				break
			}
			continue
		}

		st.visited.Add(task.URL)

		if err := st.pacer.Wait(ctx); err != nil {
			return err
		}

		links, err := fetchSafely(ctx, fetcher, task.URL)
		st.pacer.Done()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			st.results.Errors++
			st.logger.Warn("failed to crawl page", "url", task.URL, "depth", task.Depth, "error", err)
			var perr *PanicError
			if errors.As(err, &perr) {
				st.logger.Debug("fetcher panic stack", "url", task.URL, "stack", string(perr.Stack))
			}
			continue
		}

		st.results.Processed++
		st.logger.Debug("page crawled", "url", task.URL, "depth", task.Depth, "links", len(links))

		e.enqueueLinks(task, links, st)
	}

	return nil
}

type dropReason string

const (
	admitted       dropReason = ""
	dropDepth      dropReason = "max depth exceeded"
	dropLimit      dropReason = "max urls reached"
	dropVisited    dropReason = "already visited"
	dropIneligible dropReason = "blocked by policy"
)

// admit runs the admission checks in order: depth, size, dedup, policy
func (e *Engine) admit(task types.CrawlTask, st *runState) dropReason {
	switch {
	case task.Depth > e.config.MaxDepth:
		return dropDepth
	case st.visited.Len() >= e.config.MaxURLs:
		return dropLimit
	case st.visited.Contains(task.URL):
		return dropVisited
	case !st.gate.IsEligible(task.URL):
		return dropIneligible
	}
	return admitted
}

// enqueueLinks normalizes the links of a fetched page and queues the ones
// not visited yet. Links beyond MaxDepth are never queued.
func (e *Engine) enqueueLinks(task types.CrawlTask, links []string, st *runState) {
	depth := task.Depth + 1
	if depth > e.config.MaxDepth {
		return
	}

	for _, link := range links {
		normalized := parser.NormalizeURL(link, task.URL)
		if normalized == "" || st.visited.Contains(normalized) {
			continue
		}

		st.frontier.Push(types.CrawlTask{
			URL:       normalized,
			Depth:     depth,
			ParentURL: task.URL,
		})
		st.results.Discovered++
	}
}

// loadRobots fetches and parses robots.txt when the rules are enforced or
// the seeder needs its Sitemap: entries. Every failure leaves the run
// without robots rules.
func (e *Engine) loadRobots(ctx context.Context, logger *slog.Logger) *RobotsRules {
	if !e.config.RespectRobotsTxt && e.seeder == nil {
		return nil
	}
	if e.robots == nil {
		logger.Debug("no robots fetcher configured, robots.txt not enforced")
		return nil
	}

	robotsURL, err := RobotsURL(e.seedURL)
	if err != nil {
		logger.Warn("cannot build robots.txt URL", "error", err)
		return nil
	}

	body, err := e.robots.FetchRobots(ctx, robotsURL)
	if err != nil {
		logger.Warn("failed to fetch robots.txt, continuing without robots rules",
			"robots_url", robotsURL, "error", err)
		return nil
	}

	rules, err := ParseRobots(robotsURL, body)
	if err != nil {
		logger.Warn("failed to parse robots.txt, continuing without robots rules",
			"robots_url", robotsURL, "error", err)
		return nil
	}

	logger.Debug("robots.txt loaded", "robots_url", robotsURL)
	return rules
}

// runSeeder queues seeder URLs at depth 0 behind the base URL. sitemaps are
// the Sitemap: entries of the robots.txt already loaded for this run.
func (e *Engine) runSeeder(ctx context.Context, st *runState, sitemaps []string) {
	if e.seeder == nil {
		return
	}

	urls, err := e.seeder.Seed(ctx, e.seedURL, sitemaps)
	if err != nil {
		st.logger.Warn("seeding failed", "error", err)
	}

	added := 0
	for _, u := range urls {
		normalized := parser.NormalizeURL(u, e.seedURL)
		if normalized == "" || normalized == e.seedURL {
			continue
		}
		st.frontier.Push(types.CrawlTask{URL: normalized, Depth: 0})
		added++
	}

	if added > 0 {
		st.logger.Info("seeded frontier from sitemap", "urls", added)
	}
}
