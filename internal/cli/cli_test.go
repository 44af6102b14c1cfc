package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	customhttp "github.com/BenjaminSRussell/gositemap/internal/http"
	"github.com/BenjaminSRussell/gositemap/internal/renderer"
	"github.com/BenjaminSRussell/gositemap/internal/types"
)

// run executes the root command and returns stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/":           `<a href="/about">About</a><a href="/docs/">Docs</a><a href="/report.pdf">Report</a>`,
		"/about":      `<a href="/about">About</a><a href="/team">Team</a>`,
		"/docs/":      `<a href="intro">Intro</a><a href="/private/notes">Notes</a>`,
		"/robots.txt": "User-agent: *\nDisallow: /private\n",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".txt") {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "text/html")
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRootCommand(t *testing.T) {
	stdout, _, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"crawl", "export"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("Expected %q in help output", sub)
		}
	}
}

func TestCrawlCommandFlags(t *testing.T) {
	cmd := NewCrawlCmd(&globalOptions{})

	defaults := types.DefaultConfig()
	tests := map[string]string{
		"max-depth":    fmt.Sprint(defaults.MaxDepth),
		"max-urls":     fmt.Sprint(defaults.MaxURLs),
		"crawl-delay":  fmt.Sprint(defaults.CrawlDelay),
		"format":       "xml",
		"renderer":     types.RendererChrome,
		"page-timeout": "30s",
	}
	for name, want := range tests {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("Missing flag %s", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("Flag %s default = %s, want %s", name, flag.DefValue, want)
		}
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gositemap.yaml")
	yaml := `base_url: https://file.example.com
max_depth: 5
max_urls: 50
exclude_patterns: ['\.pdf$']
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	global := &globalOptions{configPath: path}
	flags := &crawlFlags{}
	cmd := NewCrawlCmd(global)
	if err := cmd.ParseFlags([]string{"--max-depth", "2", "--format", "text"}); err != nil {
		t.Fatal(err)
	}
	flags.maxDepth, _ = cmd.Flags().GetInt("max-depth")
	flags.format, _ = cmd.Flags().GetString("format")

	cfg, err := buildConfig(cmd, global, flags, nil)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}

	if cfg.MaxDepth != 2 {
		t.Errorf("Expected flag to override file, got MaxDepth=%d", cfg.MaxDepth)
	}
	if cfg.MaxURLs != 50 {
		t.Errorf("Expected file value MaxURLs=50, got %d", cfg.MaxURLs)
	}
	if cfg.CrawlDelay != 1000 {
		t.Errorf("Expected default CrawlDelay, got %d", cfg.CrawlDelay)
	}
	if cfg.OutputFormat != types.FormatText {
		t.Errorf("Expected normalized text format, got %s", cfg.OutputFormat)
	}
	if cfg.BaseURL != "https://file.example.com" {
		t.Errorf("Expected base url from file, got %s", cfg.BaseURL)
	}

	cfg, err = buildConfig(cmd, global, flags, []string{"https://arg.example.com"})
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.BaseURL != "https://arg.example.com" {
		t.Errorf("Expected positional base url to win, got %s", cfg.BaseURL)
	}
}

func TestCrawlCommandInvalidConfig(t *testing.T) {
	_, _, err := run(t, "crawl", "https://example.com", "--max-depth=-1")
	if !errors.Is(err, types.ErrInvalidMaxDepth) {
		t.Errorf("Expected ErrInvalidMaxDepth, got %v", err)
	}

	_, _, err = run(t, "crawl")
	if !errors.Is(err, types.ErrBaseURLRequired) {
		t.Errorf("Expected ErrBaseURLRequired, got %v", err)
	}

	_, _, err = run(t, "crawl", "https://example.com", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestCrawlCommandHTTPRenderer(t *testing.T) {
	server := newTestSite(t)
	outDir := t.TempDir()

	stdout, _, err := run(t, "crawl", server.URL,
		"--renderer", "http",
		"--crawl-delay", "0",
		"--max-retries", "0",
		"--exclude", `\.pdf$`,
		"--format", "json",
		"--output-dir", outDir,
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	if !strings.Contains(stdout, "Crawl completed!") {
		t.Errorf("Expected summary, got %q", stdout)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "sitemap.json"))
	if err != nil {
		t.Fatalf("Expected sitemap.json: %v", err)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		t.Fatalf("Invalid sitemap JSON: %v", err)
	}

	want := []string{
		server.URL,
		server.URL + "/about",
		server.URL + "/docs/",
		server.URL + "/team",
		server.URL + "/docs/intro",
	}
	if len(urls) != len(want) {
		t.Fatalf("sitemap = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("sitemap[%d] = %s, want %s", i, urls[i], want[i])
		}
	}
}

func TestCrawlCommandIgnoreRobots(t *testing.T) {
	server := newTestSite(t)
	outDir := t.TempDir()

	_, _, err := run(t, "crawl", server.URL,
		"--renderer", "http",
		"--crawl-delay", "0",
		"--max-retries", "0",
		"--respect-robots=false",
		"--format", "txt",
		"--output-dir", outDir,
		"--output-file", "urls.txt",
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "urls.txt"))
	if err != nil {
		t.Fatalf("Expected urls.txt: %v", err)
	}
	if !strings.Contains(string(data), server.URL+"/private/notes") {
		t.Errorf("Expected robots to be ignored, got %s", data)
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "urls.txt")
	list := "# exported urls\nhttps://example.com\n\nhttps://example.com/a#top\nhttps://example.com/a\nmailto:x@example.com\n"
	if err := os.WriteFile(input, []byte(list), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := run(t, "export", input, "--output-dir", dir, "--lastmod")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(stdout, "Successfully exported 2 URLs") {
		t.Errorf("Unexpected output %q", stdout)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sitemap.xml"))
	if err != nil {
		t.Fatalf("Expected sitemap.xml: %v", err)
	}
	content := string(data)
	if strings.Count(content, "<loc>") != 2 {
		t.Errorf("Expected 2 entries, got %s", content)
	}
	if !strings.Contains(content, "<lastmod>") {
		t.Error("Expected lastmod entries")
	}
}

func TestExportCommandUnknownFormat(t *testing.T) {
	_, _, err := run(t, "export", "-", "--format", "csv")
	if !errors.Is(err, types.ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestNewBrowser(t *testing.T) {
	cfg := types.DefaultConfig()
	client := customhttp.NewClient(customhttp.ClientOptions{Timeout: time.Second})

	cfg.Renderer = types.RendererChrome
	browser, err := newBrowser(cfg, client)
	if err != nil {
		t.Fatalf("newBrowser(chrome) error = %v", err)
	}
	if _, ok := browser.(*renderer.ChromeRenderer); !ok {
		t.Errorf("Expected ChromeRenderer, got %T", browser)
	}

	cfg.Renderer = types.RendererHTTP
	browser, err = newBrowser(cfg, client)
	if err != nil {
		t.Fatalf("newBrowser(http) error = %v", err)
	}
	if _, ok := browser.(*customhttp.StaticBrowser); !ok {
		t.Errorf("Expected StaticBrowser, got %T", browser)
	}

	cfg.Renderer = "webkit"
	if _, err := newBrowser(cfg, client); !errors.Is(err, types.ErrUnknownRenderer) {
		t.Errorf("Expected ErrUnknownRenderer, got %v", err)
	}
}
