package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedScraper struct {
	errs  []error
	calls int
}

func (s *scriptedScraper) Scrape(_ context.Context, _ string) (*Result, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return &Result{Job: ScrapedJob{}}, nil
}

var errTransient = &Error{URL: "u", Message: "scraper request failed", Transient: true}

func TestWithRetry_SingleAttemptReturnsSameScraper(t *testing.T) {
	s := &scriptedScraper{}
	assert.Same(t, s, WithRetry(s, 1, time.Millisecond))
	assert.Same(t, s, WithRetry(s, 0, time.Millisecond))
}

func TestWithRetry_RetriesTransientUntilSuccess(t *testing.T) {
	s := &scriptedScraper{errs: []error{errTransient, errTransient}}

	res, err := WithRetry(s, 3, time.Millisecond).Scrape(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, 3, s.calls)
}

func TestWithRetry_GivesUpAfterAttempts(t *testing.T) {
	s := &scriptedScraper{errs: []error{errTransient, errTransient, errTransient, errTransient}}

	_, err := WithRetry(s, 3, time.Millisecond).Scrape(context.Background(), "https://example.com")
	assert.Same(t, errTransient, err)
	assert.Equal(t, 3, s.calls)
}

func TestWithRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	for _, permanent := range []error{
		&Error{URL: "u", StatusCode: 400, Message: "HTTP status 400"},
		&ValidationError{URL: "u", Message: "URL is required"},
		&MalformedError{URL: "u", Cause: errors.New("bad")},
		&IncompleteError{URL: "u", Field: "title"},
	} {
		s := &scriptedScraper{errs: []error{permanent}}

		_, err := WithRetry(s, 5, time.Millisecond).Scrape(context.Background(), "https://example.com")
		assert.Equal(t, permanent, err)
		assert.Equal(t, 1, s.calls)
	}
}

func TestWithRetry_StopsWhenContextDone(t *testing.T) {
	s := &scriptedScraper{errs: []error{errTransient, errTransient}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(s, 3, time.Hour).Scrape(ctx, "https://example.com")
	assert.Same(t, errTransient, err)
	assert.Equal(t, 1, s.calls)
}
