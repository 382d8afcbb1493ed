// Package scrape is the client for the external job scraper service.
// The service fetches a posting, extracts it with an LLM and returns a
// structured job description; this package validates and decodes that
// response at the boundary.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/schemas"
	rootschemas "github.com/jonathan/job-tracker/schemas"
)

// DefaultBaseURL is where the scraper service listens unless configured otherwise.
const DefaultBaseURL = "http://0.0.0.0:8000"

// DefaultTimeout bounds a single scrape; extraction runs an LLM call and is slow.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for scraper requests.
const DefaultUserAgent = "JobTracker/1.0"

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

var scrapedJobSchema = schemas.MustCompile("scraped_job", rootschemas.ScrapedJob)

// Scraper turns a posting URL into a structured job description
type Scraper interface {
	Scrape(ctx context.Context, target string) (*Result, error)
}

// Options configures the client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for scraping.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client calls POST {baseURL}/scrape/. It never retries; wrap it with WithRetry for that.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// New creates a Client for the scraper at baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/scrape/",
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// ValidateURL checks that target is an absolute http or https URL with a host
func ValidateURL(target string) error {
	if strings.TrimSpace(target) == "" {
		return &ValidationError{URL: target, Message: "URL is required"}
	}
	u, err := url.Parse(target)
	if err != nil {
		return &ValidationError{URL: target, Message: "URL cannot be parsed"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{URL: target, Message: "URL must use http or https"}
	}
	if u.Host == "" {
		return &ValidationError{URL: target, Message: "URL must include a host"}
	}
	return nil
}

// Scrape asks the service to extract the posting at target. Cancelling ctx aborts
// the request.
func (c *Client) Scrape(ctx context.Context, target string) (*Result, error) {
	if err := ValidateURL(target); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"url": target})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{URL: target, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			URL:       target,
			Message:   "scraper request failed",
			Transient: !errors.Is(ctx.Err(), context.Canceled),
			Cause:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Transient:  !errors.Is(ctx.Err(), context.Canceled),
			Cause:      err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       summarizeBody(resp.Header.Get("Content-Type"), body),
			Transient:  resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusGatewayTimeout,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return Decode(target, body)
}

// Decode validates a scraper response body against the scraped job schema and
// decodes it. target is only used in errors.
func Decode(target string, body []byte) (*Result, error) {
	if err := scrapedJobSchema.Validate(body); err != nil {
		return nil, &MalformedError{URL: target, Cause: err}
	}

	var job ScrapedJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, &MalformedError{URL: target, Cause: err}
	}
	if job.TitleText() == "" {
		return nil, &IncompleteError{URL: target, Field: "title"}
	}

	raw := make(json.RawMessage, len(body))
	copy(raw, body)
	return &Result{Job: job, Raw: raw}, nil
}
