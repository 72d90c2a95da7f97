// Package retry provides a small retry-with-backoff decorator for collaborator
// boundaries (LLM and search HTTP calls).  Pure pipeline functions are never
// wrapped; transient upstream failures are the only thing worth retrying.
package retry

import (
	"context"
	"time"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// Config controls the retry schedule.
type Config struct {
	// MaxAttempts is the total number of tries including the first.
	MaxAttempts int
	// BaseBackoff is the delay before the second attempt; it doubles per
	// attempt up to MaxBackoff.
	BaseBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// Retryable decides whether an error is worth another attempt.  Nil
	// retries everything.
	Retryable func(error) bool
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 4 * time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	return c
}

// Do runs fn up to cfg.MaxAttempts times with exponential backoff between
// attempts.  It stops early when ctx is done, when fn succeeds, or when
// cfg.Retryable reports the error as permanent.  The last error is wrapped
// with ErrCodeRetriesExceeded when all attempts fail.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	backoff := cfg.BaseBackoff
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "retry aborted")
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return apperrors.Wrap(ctx.Err(), apperrors.ErrCodeCanceled, "retry aborted")
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
	return apperrors.Wrap(lastErr, apperrors.ErrCodeRetriesExceeded, "all retry attempts failed")
}

//Personal.AI order the ending
