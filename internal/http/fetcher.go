package http

import (
	"context"
	"strings"
	"sync"

	"github.com/BenjaminSRussell/gositemap/internal/crawler"
	"github.com/BenjaminSRussell/gositemap/internal/parser"
)

// StaticBrowser fetches pages over plain HTTP and parses the returned HTML.
// It does not execute JavaScript; links added client-side are not seen.
type StaticBrowser struct {
	client *Client
}

// NewStaticBrowser creates a browser backed by client
func NewStaticBrowser(client *Client) *StaticBrowser {
	return &StaticBrowser{client: client}
}

// Acquire returns a session sharing the browser's HTTP client
func (b *StaticBrowser) Acquire(ctx context.Context) (crawler.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &staticSession{client: b.client}, nil
}

type staticSession struct {
	client  *Client
	release sync.Once
}

// Fetch downloads pageURL and returns its links. Non-HTML responses
// are valid pages without outbound links.
func (s *staticSession) Fetch(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := s.client.Get(ctx, pageURL, acceptHTML)
	if err != nil {
		return nil, err
	}

	if !isHTML(resp.ContentType) {
		return nil, nil
	}

	links, _ := parser.ExtractLinks(string(resp.Body), resp.URL)
	return links, nil
}

func (s *staticSession) Release() error {
	s.release.Do(s.client.CloseIdleConnections)
	return nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}
