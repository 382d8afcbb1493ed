package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// validatable is a request body with tag-based validation
type validatable interface {
	Validate() error
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to its HTTP status. Internal errors are logged and hidden
// from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		errorResponse(w, status, "internal server error")
		return
	}

	if fields := types.Describe(err); fields != nil {
		jsonResponse(w, status, map[string]any{"error": "validation failed", "fields": fields})
		return
	}

	var scrapeFailed *ingestion.ScrapeFailedError
	if errors.As(err, &scrapeFailed) {
		jsonResponse(w, status, map[string]any{
			"error":           err.Error(),
			"upstream_status": scrapeFailed.StatusCode,
		})
		return
	}

	errorResponse(w, status, err.Error())
}

// decodeAndValidate reads the JSON body into v and validates it. On failure the
// error response is written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			errorResponse(w, http.StatusBadRequest, "request body is required")
		default:
			errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		}
		return false
	}
	if err := v.Validate(); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

// requireUser returns the authenticated user ID or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the {id} path value or writes a 400
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, &ErrValidation{Field: "id", Message: fmt.Sprintf("invalid ID %q", r.PathValue("id"))})
		return uuid.Nil, false
	}
	return id, true
}
