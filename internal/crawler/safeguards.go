package crawler

import (
	"context"
	"fmt"
	"runtime/debug"
)

// PanicError is returned when a fetcher panics while rendering a page
type PanicError struct {
	URL   string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while fetching %s: %v", e.URL, e.Value)
}

// fetchSafely runs the fetch and turns a panic into a page failure
func fetchSafely(ctx context.Context, fetcher PageFetcher, pageURL string) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			links = nil
			err = &PanicError{
				URL:   pageURL,
				Value: r,
				Stack: debug.Stack(),
			}
		}
	}()

	return fetcher.Fetch(ctx, pageURL)
}
