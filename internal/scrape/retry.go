package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// retrying retries transient failures of the wrapped Scraper
type retrying struct {
	next     Scraper
	attempts int
	backoff  time.Duration
}

// WithRetry wraps s so that transient failures are retried up to attempts times in
// total, waiting backoff, then twice that, between tries. Validation, malformed and
// non-transient HTTP errors are returned immediately. attempts <= 1 returns s unchanged.
func WithRetry(s Scraper, attempts int, backoff time.Duration) Scraper {
	if attempts <= 1 {
		return s
	}
	return &retrying{next: s, attempts: attempts, backoff: backoff}
}

func (r *retrying) Scrape(ctx context.Context, target string) (*Result, error) {
	wait := r.backoff
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		res, err := r.next.Scrape(ctx, target)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == r.attempts {
			break
		}

		log.Warn().Err(err).Str("url", target).Int("attempt", attempt).
			Dur("backoff", wait).Msg("transient scrape failure, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
		wait *= 2
	}
	return nil, lastErr
}

// IsTransient reports whether err is a scraper failure worth retrying later
func IsTransient(err error) bool {
	var scrapeErr *Error
	return errors.As(err, &scrapeErr) && scrapeErr.Transient
}
