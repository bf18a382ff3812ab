package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a backend that could not be reached, such as a
// Redis instance that refused the connection or timed out.
var ErrUnavailable = errors.New("cache unavailable")

// RetryableError marks a failure worth another attempt. Redis operations
// wrap network errors in it; everything else fails immediately.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err in a RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retry runs op up to attempts times while it fails with a retryable
// error, sleeping backoff before the second attempt and twice as long
// before each one after. Canceling ctx stops the wait.
func retry(ctx context.Context, attempts int, backoff time.Duration, op func() error) error {
	err := op()
	for left := attempts - 1; left > 0 && IsRetryable(err); left-- {
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff *= 2
		err = op()
	}
	return err
}
