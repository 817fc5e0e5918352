// Package retry retries YouTube API calls that fail with transient status codes.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/api/googleapi"
)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts bounds the total number of calls, the first one included.
	MaxAttempts uint
	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// OnRetry, when set, is called before each sleep.
	OnRetry func(err error, next time.Duration)
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    4,
		InitialBackoff: 5 * time.Second,
		MaxBackoff:     time.Minute,
	}
}

// transientStatus is the fixed set of API status codes worth retrying.
var transientStatus = map[int]bool{
	http.StatusForbidden:           true, // quota / rate limit exceeded
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusServiceUnavailable:  true,
}

// IsTransient reports whether err is an API error with a retryable status code.
func IsTransient(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return transientStatus[apiErr.Code]
}

// ExhaustedError is returned when every attempt failed with a transient error.
type ExhaustedError struct {
	Attempts uint
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do calls op until it succeeds, fails permanently, runs out of attempts or ctx ends.
// Only errors accepted by IsTransient are retried.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialBackoff
	bo.MaxInterval = cfg.MaxBackoff

	var attempts uint
	operation := func() (T, error) {
		attempts++
		v, err := op(ctx)
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(cfg.MaxAttempts),
		// attempts, not elapsed time, bound the retries
		backoff.WithMaxElapsedTime(0),
	}
	if cfg.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(cfg.OnRetry))
	}

	v, err := backoff.Retry(ctx, operation, opts...)
	if err == nil {
		return v, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return v, permanent.Unwrap()
	}
	if IsTransient(err) {
		return v, &ExhaustedError{Attempts: attempts, Err: err}
	}
	return v, err
}
