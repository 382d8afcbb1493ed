package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/jonathan/job-tracker/internal/types"
)

// handleMagicScrape creates a job from a posting URL. The scrape runs inside the
// request and is bounded by the server's scrape timeout.
func (s *Server) handleMagicScrape(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.MagicScrapeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := ingestion.Request{UserID: userID, URL: req.URL, Notes: req.Notes}
	if req.ResumeID != nil {
		id, err := uuid.Parse(*req.ResumeID)
		if err != nil {
			writeError(w, r, &ErrValidation{Field: "resume_id", Message: "must be a UUID"})
			return
		}
		in.ResumeID = &id
	}

	ctx := r.Context()
	if s.scrapeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scrapeTimeout)
		defer cancel()
	}

	job, err := s.deps.Ingester.Ingest(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, types.JobResponse{Job: job})
}
