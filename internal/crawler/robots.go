package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
)

// RobotsRules are the parsed robots.txt rules of one origin
type RobotsRules struct {
	scheme string
	host   string
	data   *robotstxt.RobotsData
}

// ParseRobots parses body as the robots.txt served at robotsURL
func ParseRobots(robotsURL string, body []byte) (*RobotsRules, error) {
	u, err := url.Parse(robotsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid robots URL: %w", err)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
	}

	return &RobotsRules{
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(u.Host),
		data:   data,
	}, nil
}

// Allowed reports whether agent may fetch rawURL. The rules only speak for
// their own origin, so URLs on another scheme or host are not allowed.
func (r *RobotsRules) Allowed(rawURL, agent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if strings.ToLower(u.Scheme) != r.scheme || strings.ToLower(u.Host) != r.host {
		return false
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return r.data.TestAgent(path, agent)
}

// Sitemaps returns the Sitemap: entries declared in robots.txt. A nil
// receiver has none.
func (r *RobotsRules) Sitemaps() []string {
	if r == nil || r.data == nil {
		return nil
	}
	return r.data.Sitemaps
}

// RobotsURL returns the robots.txt location for the site of baseURL
func RobotsURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	return u.ResolveReference(&url.URL{Path: "/robots.txt"}).String(), nil
}
