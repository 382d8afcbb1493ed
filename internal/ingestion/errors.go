package ingestion

import "fmt"

// ValidationError is returned when the ingestion request itself is invalid.
// Nothing is created.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ScrapeUnavailableError is returned when the scraper could not be reached or
// asked to be retried later. The caller may resubmit.
type ScrapeUnavailableError struct {
	URL   string
	Cause error
}

func (e *ScrapeUnavailableError) Error() string {
	return fmt.Sprintf("scraper unavailable for %s: %v", e.URL, e.Cause)
}

func (e *ScrapeUnavailableError) Unwrap() error {
	return e.Cause
}

// ScrapeFailedError is returned when the scraper answered with a non-success status
// that is not worth retrying.
type ScrapeFailedError struct {
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *ScrapeFailedError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("scrape failed for %s: status %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("scrape failed for %s: status %d", e.URL, e.StatusCode)
}

func (e *ScrapeFailedError) Unwrap() error {
	return e.Cause
}

// MalformedScrapeError is returned when the scraper's response does not have the
// expected shape.
type MalformedScrapeError struct {
	URL   string
	Cause error
}

func (e *MalformedScrapeError) Error() string {
	return fmt.Sprintf("malformed scrape for %s: %v", e.URL, e.Cause)
}

func (e *MalformedScrapeError) Unwrap() error {
	return e.Cause
}

// IncompleteScrapeError is returned when the scrape lacks a field a job requires
type IncompleteScrapeError struct {
	URL   string
	Field string
}

func (e *IncompleteScrapeError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("incomplete scrape: missing %s", e.Field)
	}
	return fmt.Sprintf("incomplete scrape for %s: missing %s", e.URL, e.Field)
}
