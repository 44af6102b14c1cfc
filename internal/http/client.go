package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultMaxBodySize = 10 << 20

// ClientOptions configures Client
type ClientOptions struct {
	UserAgent   string
	Timeout     time.Duration
	Retry       RetryConfig
	MaxBodySize int64
}

// Client performs GET requests with retry and per-host backoff
type Client struct {
	client  *http.Client
	retry   *RetryHandler
	headers HeaderProfile
	maxBody int64
}

// Response is a fully read response body
type Response struct {
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
}

// NewClient creates a client
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaultMaxBodySize
	}

	return &Client{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry:   NewRetryHandler(opts.Retry),
		headers: NewHeaderProfile(opts.UserAgent),
		maxBody: opts.MaxBodySize,
	}
}

// Get fetches rawURL, retrying transient failures. Any final status other
// than 200 is returned as a *FetchError.
func (c *Client) Get(ctx context.Context, rawURL, accept string) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	host := parsed.Host

	var lastErr error
	lastStatus := 0
	attempts := 0

	for attempt := 0; attempt <= c.retry.MaxRetries(); attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, c.retry.GetBackoff(host, attempt-1)); err != nil {
				return nil, err
			}
		}
		attempts++

		resp, err := c.do(ctx, rawURL, accept)
		if err == nil && resp.StatusCode == http.StatusOK {
			c.retry.RecordSuccess(host)
			return resp, nil
		}

		lastErr = err
		lastStatus = 0
		if resp != nil {
			lastStatus = resp.StatusCode
		}

		if !c.retry.ShouldRetry(lastStatus, err) {
			break
		}
		c.retry.RecordFailure(host, lastStatus)
	}

	return nil, &FetchError{
		URL:        rawURL,
		StatusCode: lastStatus,
		Attempts:   attempts,
		Err:        lastErr,
	}
}

func (c *Client) do(ctx context.Context, rawURL, accept string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	c.headers.WithAccept(accept).ApplyHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("body read failed: %w", err)
	}
	result.Body = body

	return result, nil
}

// FetchSitemap returns the raw body of a sitemap document
func (c *Client) FetchSitemap(ctx context.Context, sitemapURL string) ([]byte, error) {
	resp, err := c.Get(ctx, sitemapURL, acceptXML)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CloseIdleConnections releases pooled connections
func (c *Client) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}
