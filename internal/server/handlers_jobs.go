package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/jobs"
	"github.com/jonathan/job-tracker/internal/types"
)

// handleListJobs lists the caller's jobs, narrowed by query parameters
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filters, err := parseJobFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.deps.Jobs.FindMany(r.Context(), userID, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, jobsResponse(list))
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.CreateJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := s.deps.Jobs.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, types.JobResponse{Job: job})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	job, err := s.deps.Jobs.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types.JobResponse{Job: job})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req types.UpdateJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := s.deps.Jobs.Update(r.Context(), userID, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types.JobResponse{Job: job})
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req types.UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := s.deps.Jobs.UpdateStatus(r.Context(), userID, id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types.JobResponse{Job: job})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.deps.Jobs.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func jobsResponse(list []db.Job) types.JobsResponse {
	if list == nil {
		list = []db.Job{}
	}
	return types.JobsResponse{Jobs: list, Count: len(list)}
}

// parseJobFilters reads list filters from the query string. Tag filters accept
// comma-separated values, repeated parameters, or both.
func parseJobFilters(q url.Values) (db.JobFilters, error) {
	f := db.JobFilters{
		Title:         strings.TrimSpace(q.Get("title")),
		JobType:       strings.TrimSpace(q.Get("job_type")),
		Term:          strings.TrimSpace(q.Get("term")),
		Location:      strings.TrimSpace(q.Get("location")),
		RemoteStatus:  strings.TrimSpace(q.Get("remote_status")),
		TechnicalTags: listParam(q, "technical_tags"),
		RoleTags:      listParam(q, "role_tags"),
	}

	if v := q.Get("status"); v != "" {
		st, err := db.ParseStatus(v)
		if err != nil {
			return f, &ErrValidation{Field: "status", Message: err.Error()}
		}
		f.Status = &st
	}

	if v := q.Get("company_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, &ErrValidation{Field: "company_id", Message: "must be a UUID"}
		}
		f.CompanyID = &id
	}

	var err error
	if f.SalaryMin, err = floatParam(q, "salary_min"); err != nil {
		return f, err
	}
	if f.SalaryMax, err = floatParam(q, "salary_max"); err != nil {
		return f, err
	}

	if v := q.Get("visa_sponsorship"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, &ErrValidation{Field: "visa_sponsorship", Message: "must be true or false"}
		}
		f.VisaSponsorship = &b
	}

	limit, err := intParam(q, "limit")
	if err != nil {
		return f, err
	}
	f.Limit = jobs.ClampLimit(limit)

	if f.Offset, err = intParam(q, "offset"); err != nil {
		return f, err
	}
	if f.Offset < 0 {
		return f, &ErrValidation{Field: "offset", Message: "must not be negative"}
	}

	return f, nil
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, &ErrValidation{Field: key, Message: "must be a non-negative number"}
	}
	return &f, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ErrValidation{Field: key, Message: "must be an integer"}
	}
	return n, nil
}
