package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/jobs"
	"github.com/jonathan/job-tracker/internal/types"
)

// handleListCompanies lists companies, optionally filtered by ?search= and ?industry=
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := db.CompanyFilters{
		Search:   strings.TrimSpace(q.Get("search")),
		Industry: strings.TrimSpace(q.Get("industry")),
	}

	list, err := s.deps.Companies.List(r.Context(), filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []db.Company{}
	}
	jsonResponse(w, http.StatusOK, types.CompaniesResponse{Companies: list, Count: len(list)})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCompanyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	company, err := s.deps.Companies.Create(r.Context(), db.CompanyInsert{
		Name:     req.Name,
		Website:  req.Website,
		Industry: req.Industry,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"company": company})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	company, err := s.deps.Companies.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"company": company})
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req types.UpdateCompanyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	company, err := s.deps.Companies.Update(r.Context(), id, db.CompanyUpdate{
		Name:     req.Name,
		Website:  req.Website,
		Industry: req.Industry,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"company": company})
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.deps.Companies.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompanyStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	stats, err := s.deps.Companies.Stats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"stats": stats})
}

// handleCompanyJobs lists the caller's jobs at one company
func (s *Server) handleCompanyJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.deps.Companies.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	filters, err := parseJobFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	filters.CompanyID = &id
	filters.Limit = jobs.ClampLimit(filters.Limit)

	list, err := s.deps.Jobs.FindMany(r.Context(), userID, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, jobsResponse(list))
}
