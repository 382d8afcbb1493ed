// Package ingestion turns a job posting URL into a stored job: scrape, resolve the
// company, normalize, insert.
package ingestion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/events"
	"github.com/jonathan/job-tracker/internal/scrape"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Failure outcomes recorded on log lines
const (
	outcomeNothingCreated  = "nothing_created"
	outcomeCompanyMayExist = "company_may_exist"
)

// CompanyResolver finds or creates the company a scrape names
type CompanyResolver interface {
	FindOrCreate(ctx context.Context, name, location string) (*db.Company, error)
}

// JobWriter persists new jobs
type JobWriter interface {
	InsertJob(ctx context.Context, in *db.JobInsert) (*db.Job, error)
}

// Request is a single ingestion
type Request struct {
	UserID   uuid.UUID
	URL      string
	ResumeID *uuid.UUID
	Notes    *string
}

// Service runs ingestions. It holds no per-request state and is safe for concurrent use.
type Service struct {
	scraper   scrape.Scraper
	companies CompanyResolver
	jobs      JobWriter
	events    events.Publisher
	now       func() time.Time
}

// NewService wires an ingestion Service. A nil publisher disables events.
func NewService(scraper scrape.Scraper, companies CompanyResolver, jobs JobWriter, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		scraper:   scraper,
		companies: companies,
		jobs:      jobs,
		events:    publisher,
		now:       time.Now,
	}
}

// Ingest scrapes req.URL and stores the result as a SAVED job owned by req.UserID.
// Every call inserts a new job, even for a URL ingested before.
//
// Company resolution and the job insert are not one transaction: if the insert
// fails, a company created for this scrape remains.
func (s *Service) Ingest(ctx context.Context, req Request) (*db.Job, error) {
	logger := log.With().Str("user_id", req.UserID.String()).Str("url", req.URL).Logger()
	started := s.now()

	target := strings.TrimSpace(req.URL)
	if err := scrape.ValidateURL(target); err != nil {
		err = classifyScrapeError(target, err)
		logFailure(&logger, "validate", outcomeNothingCreated, err)
		return nil, err
	}
	if req.UserID == uuid.Nil {
		verr := &ValidationError{Field: "user_id", Message: "user is required"}
		logFailure(&logger, "validate", outcomeNothingCreated, verr)
		return nil, verr
	}

	res, err := s.scraper.Scrape(ctx, target)
	if err != nil {
		err = classifyScrapeError(target, err)
		logFailure(&logger, "scrape", outcomeNothingCreated, err)
		return nil, err
	}

	var company *db.Company
	if name := res.Job.CompanyName(); name != "" {
		var location string
		if l := res.Job.Location; l != nil {
			location = ComposeLocation(l.City, l.State, l.Country)
		}
		company, err = s.companies.FindOrCreate(ctx, name, location)
		if err != nil {
			logFailure(&logger, "resolve_company", outcomeNothingCreated, err)
			return nil, err
		}
	}

	var companyID *uuid.UUID
	if company != nil {
		companyID = &company.ID
	}

	in, err := Normalize(res, companyID, Extra{URL: target, ResumeID: req.ResumeID, Notes: req.Notes})
	if err != nil {
		logFailure(&logger, "normalize", outcomeFor(company), err)
		return nil, err
	}
	in.UserID = req.UserID

	job, err := s.jobs.InsertJob(ctx, in)
	if err != nil {
		logFailure(&logger, "insert_job", outcomeFor(company), err)
		return nil, err
	}
	if job.Company == nil && company != nil {
		job.Company = company
	}

	event := events.JobIngested{
		JobID:      job.ID,
		UserID:     job.UserID,
		CompanyID:  job.CompanyID,
		URL:        target,
		IngestedAt: s.now().UTC(),
	}
	if err := s.events.PublishJobIngested(ctx, event); err != nil {
		logger.Warn().Err(err).Str("job_id", job.ID.String()).Msg("publish job ingested event failed")
	}

	logger.Info().
		Str("job_id", job.ID.String()).
		Bool("has_company", company != nil).
		Dur("duration", s.now().Sub(started)).
		Msg("job ingested")
	return job, nil
}

// classifyScrapeError maps scraper failures onto the ingestion error taxonomy.
// A request abandoned by the caller is returned as context.Canceled.
func classifyScrapeError(target string, err error) error {
	var (
		validationErr *scrape.ValidationError
		malformedErr  *scrape.MalformedError
		incompleteErr *scrape.IncompleteError
		scrapeErr     *scrape.Error
	)
	switch {
	case errors.As(err, &validationErr):
		return &ValidationError{Field: "url", Message: validationErr.Message}
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case errors.As(err, &incompleteErr):
		return &IncompleteScrapeError{URL: target, Field: incompleteErr.Field}
	case errors.As(err, &malformedErr):
		return &MalformedScrapeError{URL: target, Cause: err}
	case errors.As(err, &scrapeErr) && scrapeErr.Transient:
		return &ScrapeUnavailableError{URL: target, Cause: err}
	case errors.As(err, &scrapeErr):
		return &ScrapeFailedError{URL: target, StatusCode: scrapeErr.StatusCode, Body: scrapeErr.Body, Cause: err}
	default:
		return err
	}
}

// outcomeFor reports what may have been left behind once the company step ran
func outcomeFor(company *db.Company) string {
	if company != nil {
		return outcomeCompanyMayExist
	}
	return outcomeNothingCreated
}

func logFailure(logger *zerolog.Logger, stage, outcome string, err error) {
	logger.Error().Err(err).Str("stage", stage).Str("outcome", outcome).Msg("ingestion failed")
}
