package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-tracker/internal/company"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/jonathan/job-tracker/internal/jobs"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists      *ErrEmailAlreadyExists
		badCredentials   *ErrInvalidCredentials
		requestInvalid   *ErrValidation
		fieldsInvalid    validator.ValidationErrors
		ingestInvalid    *ingestion.ValidationError
		jobInvalid       *jobs.ValidationError
		companyInvalid   *company.InvalidInputError
		scrapeDown       *ingestion.ScrapeUnavailableError
		scrapeFailed     *ingestion.ScrapeFailedError
		scrapeMalformed  *ingestion.MalformedScrapeError
		scrapeIncomplete *ingestion.IncompleteScrapeError
	)

	switch {
	case errors.As(err, &requestInvalid), errors.As(err, &fieldsInvalid),
		errors.As(err, &ingestInvalid), errors.As(err, &jobInvalid), errors.As(err, &companyInvalid):
		return http.StatusBadRequest
	case errors.As(err, &badCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &emailExists), errors.Is(err, db.ErrEmailExists), errors.Is(err, db.ErrCompanyExists):
		return http.StatusConflict
	case errors.As(err, &scrapeIncomplete):
		return http.StatusUnprocessableEntity
	case errors.As(err, &scrapeFailed), errors.As(err, &scrapeMalformed):
		return http.StatusBadGateway
	case errors.As(err, &scrapeDown):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
