package coingecko

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	InitialDelay    time.Duration `yaml:"initial_delay" env:"INITIAL_DELAY"`
	MaxDelay        time.Duration `yaml:"max_delay" env:"MAX_DELAY"`
	BackoffMultiple float64       `yaml:"backoff_multiple" env:"BACKOFF_MULTIPLE"`
}

// DefaultRetryConfig suits the public API limits.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        30 * time.Second,
	BackoffMultiple: 2.0,
}

// HTTPError is a non 200 answer of the API.
type HTTPError struct {
	StatusCode int
	Status     string
	Path       string
	RetryAfter time.Duration // from the Retry-After header, if any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("cannot http GET %s: %s", e.Path, e.Status)
}

func newHTTPError(resp *http.Response) *HTTPError {
	e := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Path: resp.Request.URL.Path}
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s > 0 {
		e.RetryAfter = time.Duration(s) * time.Second
	}
	return e
}

// retryable tells whether another attempt may succeed.
// Network errors, rate limiting and server errors are retried, other client errors are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode == http.StatusTooManyRequests || herr.StatusCode >= 500
	}
	return true
}

// withRetry calls fn with exponential backoff until it succeeds, fails with
// a non retryable error or runs out of attempts.
func withRetry[T any](ctx context.Context, config RetryConfig, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := max(config.MaxAttempts, 1)
	attempt := 0
	for ; attempt < attempts; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !retryable(err) || attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(retryDelay(attempt, config, err)):
		}
	}

	if attempt == 0 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", attempt+1, lastErr)
}

// retryDelay is the backoff, stretched to the Retry-After of err if longer.
// A zero MaxDelay caps neither.
func retryDelay(attempt int, config RetryConfig, err error) time.Duration {
	delay := calculateBackoff(attempt, config)
	var herr *HTTPError
	if errors.As(err, &herr) && herr.RetryAfter > delay {
		delay = herr.RetryAfter
		if config.MaxDelay > 0 {
			delay = min(delay, config.MaxDelay)
		}
	}
	return delay
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if config.MaxDelay > 0 && delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
