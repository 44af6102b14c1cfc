package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// RetryHandler decides when to retry and tracks per-host backoff
type RetryHandler struct {
	config RetryConfig

	hostRetries sync.Map // map[string]*hostRetryState
}

type hostRetryState struct {
	mu               sync.Mutex
	consecutiveFails int
	backoffUntil     time.Time
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryConfig) *RetryHandler {
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	return &RetryHandler{
		config: config,
	}
}

// MaxRetries returns the configured retry budget
func (rh *RetryHandler) MaxRetries() int {
	return rh.config.MaxRetries
}

// ShouldRetry determines if a request should be retried
func (rh *RetryHandler) ShouldRetry(statusCode int, err error) bool {
	if err != nil {
		// a cancelled crawl must not keep retrying
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}

// Backoff returns the exponential backoff for the given attempt, capped at MaxBackoff
func (rh *RetryHandler) Backoff(attempt int) time.Duration {
	backoff := rh.config.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * rh.config.BackoffFactor)
		if backoff > rh.config.MaxBackoff {
			return rh.config.MaxBackoff
		}
	}
	return backoff
}

// GetBackoff returns how long to wait before the next attempt against host
func (rh *RetryHandler) GetBackoff(host string, attempt int) time.Duration {
	if inBackoff, remaining := rh.IsInBackoff(host); inBackoff {
		return remaining
	}
	return rh.Backoff(attempt)
}

// RecordFailure records a failed request for a host
func (rh *RetryHandler) RecordFailure(host string, statusCode int) {
	state := rh.getOrCreateState(host)
	state.mu.Lock()
	defer state.mu.Unlock()

	state.consecutiveFails++
	backoff := rh.Backoff(state.consecutiveFails - 1)

	// rate limited hosts get twice the pause
	if statusCode == http.StatusTooManyRequests {
		backoff *= 2
	}
	state.backoffUntil = time.Now().Add(backoff)
}

// RecordSuccess records a successful request for a host
func (rh *RetryHandler) RecordSuccess(host string) {
	state := rh.getOrCreateState(host)
	state.mu.Lock()
	defer state.mu.Unlock()

	state.consecutiveFails = 0
	state.backoffUntil = time.Time{}
}

// IsInBackoff checks if a host is currently in backoff
func (rh *RetryHandler) IsInBackoff(host string) (bool, time.Duration) {
	state := rh.getOrCreateState(host)
	state.mu.Lock()
	defer state.mu.Unlock()

	if time.Now().Before(state.backoffUntil) {
		return true, time.Until(state.backoffUntil)
	}

	return false, 0
}

func (rh *RetryHandler) getOrCreateState(host string) *hostRetryState {
	if val, ok := rh.hostRetries.Load(host); ok {
		return val.(*hostRetryState)
	}

	state := &hostRetryState{}
	actual, _ := rh.hostRetries.LoadOrStore(host, state)
	return actual.(*hostRetryState)
}

// FetchError describes a request that failed after all attempts
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("request to %s failed with status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
