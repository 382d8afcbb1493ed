package scrape

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const techCorpResponse = `{
	"company": "Tech Corp",
	"title": "Backend Engineer",
	"location": {"city": "Austin", "state": "TX", "country": "USA", "remote_status": "Hybrid"},
	"employment": null,
	"technical_keywords": ["Go", "Postgres"],
	"important_info": {
		"visa_sponsorship": false,
		"salary_range": {"min": 120000, "max": 150000, "currency": "USD"},
		"posted_date": "2024-01-10",
		"application_deadline": null
	},
	"role_tags": ["backend"],
	"markdown_description": "# Backend Engineer",
	"metadata": {"confidence_score": 0.9}
}`

func newScraperServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scrape/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			URL string `json:"url"`
		}
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &req))
		requested = append(requested, req.URL)

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requested
}

func TestScrape_Success(t *testing.T) {
	server, requested := newScraperServer(t, http.StatusOK, "application/json", techCorpResponse)

	res, err := New(server.URL+"/", nil).Scrape(context.Background(), "https://jobs.example.com/42")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://jobs.example.com/42"}, *requested)
	assert.Equal(t, "Backend Engineer", res.Job.TitleText())
	assert.Equal(t, "Tech Corp", res.Job.CompanyName())
	require.NotNil(t, res.Job.Location)
	assert.Equal(t, "Austin", *res.Job.Location.City)
	assert.Nil(t, res.Job.Employment)
	assert.Equal(t, []string{"Go", "Postgres"}, res.Job.TechnicalKeywords)
	require.NotNil(t, res.Job.ImportantInfo.SalaryRange)
	assert.Equal(t, 120000.0, *res.Job.ImportantInfo.SalaryRange.Min)
	assert.Nil(t, res.Job.ImportantInfo.ApplicationDeadline)
	assert.Equal(t, 0.9, *res.Job.Metadata.ConfidenceScore)
	assert.JSONEq(t, techCorpResponse, string(res.Raw))
}

func TestScrape_InvalidURLMakesNoRequest(t *testing.T) {
	server, requested := newScraperServer(t, http.StatusOK, "application/json", techCorpResponse)
	client := New(server.URL, nil)

	for _, target := range []string{"", "not-a-url", "ftp://example.com/job", "https://", "/relative/path"} {
		_, err := client.Scrape(context.Background(), target)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr, "target %q", target)
	}
	assert.Empty(t, *requested)
}

func TestScrape_NonSuccessStatus(t *testing.T) {
	server, _ := newScraperServer(t, http.StatusUnprocessableEntity, "application/json",
		`{"detail": "Could not parse job page"}`)

	_, err := New(server.URL, nil).Scrape(context.Background(), "https://jobs.example.com/1")
	require.Error(t, err)

	var scrapeErr *Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, http.StatusUnprocessableEntity, scrapeErr.StatusCode)
	assert.Equal(t, "Could not parse job page", scrapeErr.Body)
	assert.False(t, scrapeErr.Transient)
	assert.Contains(t, err.Error(), "422")
}

func TestScrape_ServiceUnavailableIsTransient(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		server, _ := newScraperServer(t, status, "application/json", `{"detail": "LLM service unavailable"}`)

		_, err := New(server.URL, nil).Scrape(context.Background(), "https://jobs.example.com/1")
		assert.True(t, IsTransient(err), "status %d", status)
	}
}

func TestScrape_HTMLErrorBodyIsSummarized(t *testing.T) {
	server, _ := newScraperServer(t, http.StatusBadGateway, "text/html",
		`<html><head><title>502 Bad Gateway</title></head><body><center><h1>502 Bad Gateway</h1></center><hr><center>nginx</center></body></html>`)

	_, err := New(server.URL, nil).Scrape(context.Background(), "https://jobs.example.com/1")
	var scrapeErr *Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, "502 Bad Gateway", scrapeErr.Body)
	assert.False(t, scrapeErr.Transient)
}

func TestScrape_NetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	_, err := New(baseURL, nil).Scrape(context.Background(), "https://jobs.example.com/1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))

	var scrapeErr *Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Zero(t, scrapeErr.StatusCode)
}

func TestScrape_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(server.URL, &Options{Timeout: 50 * time.Millisecond})
	_, err := client.Scrape(context.Background(), "https://jobs.example.com/1")
	assert.True(t, IsTransient(err))
}

func TestScrape_CancelledContextIsNotTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := New(server.URL, nil).Scrape(ctx, "https://jobs.example.com/1")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScrape_MalformedPayload(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       `<html>hello</html>`,
		"wrong tag type": `{"title": "Engineer", "technical_keywords": "Go"}`,
		"array root":     `[{"title": "Engineer"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			server, _ := newScraperServer(t, http.StatusOK, "application/json", body)

			_, err := New(server.URL, nil).Scrape(context.Background(), "https://jobs.example.com/1")
			var malformed *MalformedError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestScrape_MissingTitleIsIncomplete(t *testing.T) {
	for name, body := range map[string]string{
		"absent": `{"company": "Tech Corp"}`,
		"null":   `{"company": "Tech Corp", "title": null}`,
		"blank":  `{"company": "Tech Corp", "title": "   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			server, _ := newScraperServer(t, http.StatusOK, "application/json", body)

			_, err := New(server.URL, nil).Scrape(context.Background(), "https://jobs.example.com/1")
			var incomplete *IncompleteError
			require.ErrorAs(t, err, &incomplete)
			assert.Equal(t, "title", incomplete.Field)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New("", nil)
	assert.Equal(t, DefaultBaseURL+"/scrape/", c.endpoint)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, DefaultUserAgent, c.userAgent)
}
