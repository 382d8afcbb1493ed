package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/job-tracker/internal/company"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/jonathan/job-tracker/internal/jobs"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestErrEmailAlreadyExists(t *testing.T) {
	err := &ErrEmailAlreadyExists{Email: "test@example.com"}
	assert.Equal(t, "email already registered: test@example.com", err.Error())
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid email or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "email", Message: "invalid format"}
	assert.Equal(t, "validation error: email - invalid format", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tagErr := types.Validate(&types.MagicScrapeRequest{})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request fields", tagErr, http.StatusBadRequest},
		{"ingestion validation", &ingestion.ValidationError{Field: "url", Message: "bad"}, http.StatusBadRequest},
		{"job validation", &jobs.ValidationError{Field: "status", Message: "bad"}, http.StatusBadRequest},
		{"company input", &company.InvalidInputError{Field: "name", Message: "empty"}, http.StatusBadRequest},
		{"not found", db.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get job: %w", db.ErrNotFound), http.StatusNotFound},
		{"email taken", db.ErrEmailExists, http.StatusConflict},
		{"company taken", db.ErrCompanyExists, http.StatusConflict},
		{"incomplete scrape", &ingestion.IncompleteScrapeError{Field: "title"}, http.StatusUnprocessableEntity},
		{"scrape failed", &ingestion.ScrapeFailedError{StatusCode: 500}, http.StatusBadGateway},
		{"malformed scrape", &ingestion.MalformedScrapeError{Cause: errors.New("x")}, http.StatusBadGateway},
		{"scraper unavailable", &ingestion.ScrapeUnavailableError{Cause: errors.New("x")}, http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("scrape: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
