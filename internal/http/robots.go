package http

import (
	"context"
)

// RobotsFetcher downloads robots.txt files
type RobotsFetcher struct {
	client *Client
}

// NewRobotsFetcher creates a robots fetcher backed by client
func NewRobotsFetcher(client *Client) *RobotsFetcher {
	return &RobotsFetcher{client: client}
}

// FetchRobots returns the raw robots.txt body. Any non-200 answer is an error;
// the crawler treats that as "no rules".
func (f *RobotsFetcher) FetchRobots(ctx context.Context, robotsURL string) ([]byte, error) {
	resp, err := f.client.Get(ctx, robotsURL, acceptText)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
