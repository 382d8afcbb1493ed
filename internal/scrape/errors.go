package scrape

import "fmt"

// Error represents a failed call to the scraper service.
// Transient is set for network failures, timeouts and the service's own
// "try again later" statuses (503, 504).
type Error struct {
	URL        string
	StatusCode int // 0 when no response was received
	Body       string
	Transient  bool
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("scrape error for %s: %s", e.URL, e.Message)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ValidationError is returned before any network call when the target URL is not
// an absolute http(s) URL.
type ValidationError struct {
	URL     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Message)
}

// MalformedError is returned when the scraper responds 2xx with a body that is not
// a job description.
type MalformedError struct {
	URL   string
	Cause error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed scrape response for %s: %v", e.URL, e.Cause)
}

func (e *MalformedError) Unwrap() error {
	return e.Cause
}

// IncompleteError is returned when a well-formed response lacks a required field
type IncompleteError struct {
	URL   string
	Field string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete scrape response for %s: missing %s", e.URL, e.Field)
}
