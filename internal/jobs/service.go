// Package jobs manages a user's tracked jobs: listing with filters, manual
// creation and edits.
package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/jonathan/job-tracker/internal/types"
)

// List paging bounds
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// InternshipJobType is the job_type value FindInternships matches
const InternshipJobType = "internship"

// Store is the job and company storage used by Service
type Store interface {
	InsertJob(ctx context.Context, in *db.JobInsert) (*db.Job, error)
	GetJob(ctx context.Context, userID, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, userID uuid.UUID, filters db.JobFilters) ([]db.Job, error)
	UpdateJob(ctx context.Context, userID, id uuid.UUID, u db.JobUpdate) (*db.Job, error)
	DeleteJob(ctx context.Context, userID, id uuid.UUID) error
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*db.Company, error)
}

// CompanyResolver finds or creates a company by name
type CompanyResolver interface {
	FindOrCreate(ctx context.Context, name, location string) (*db.Company, error)
}

// Service is the job query and CRUD service. Every method is scoped to one user;
// another user's job is reported as db.ErrNotFound.
type Service struct {
	store     Store
	companies CompanyResolver
}

// NewService creates a jobs Service
func NewService(store Store, companies CompanyResolver) *Service {
	return &Service{store: store, companies: companies}
}

// ClampLimit applies the default and maximum page size
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// FindMany returns userID's jobs matching every set filter, most recently updated first.
func (s *Service) FindMany(ctx context.Context, userID uuid.UUID, filters db.JobFilters) ([]db.Job, error) {
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + string(*filters.Status)}
	}
	if filters.Offset < 0 {
		return nil, &ValidationError{Field: "offset", Message: "must be non-negative"}
	}
	filters.TechnicalTags = ingestion.DedupeTags(filters.TechnicalTags)
	filters.RoleTags = ingestion.DedupeTags(filters.RoleTags)
	return s.store.ListJobs(ctx, userID, filters)
}

// FindByTechnicalSkills returns jobs tagged with any of skills
func (s *Service) FindByTechnicalSkills(ctx context.Context, userID uuid.UUID, skills []string) ([]db.Job, error) {
	return s.FindMany(ctx, userID, db.JobFilters{TechnicalTags: skills})
}

// FindByRoleTags returns jobs carrying any of roles
func (s *Service) FindByRoleTags(ctx context.Context, userID uuid.UUID, roles []string) ([]db.Job, error) {
	return s.FindMany(ctx, userID, db.JobFilters{RoleTags: roles})
}

// FindInternships returns internships, narrowed to term when it is not empty
func (s *Service) FindInternships(ctx context.Context, userID uuid.UUID, term string) ([]db.Job, error) {
	return s.FindMany(ctx, userID, db.JobFilters{JobType: InternshipJobType, Term: strings.TrimSpace(term)})
}

// FindWithSalaryRange returns jobs whose advertised range lies within [min, max].
// Either bound may be nil.
func (s *Service) FindWithSalaryRange(ctx context.Context, userID uuid.UUID, salaryMin, salaryMax *float64) ([]db.Job, error) {
	return s.FindMany(ctx, userID, db.JobFilters{SalaryMin: salaryMin, SalaryMax: salaryMax})
}

// Get returns one of userID's jobs
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*db.Job, error) {
	job, err := s.store.GetJob(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, db.ErrNotFound
	}
	return job, nil
}

// Create inserts a job entered by hand. The company is taken from company_id, which
// must exist, or resolved from company.name.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req types.CreateJobRequest) (*db.Job, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}

	in := &db.JobInsert{
		UserID:          userID,
		Title:           title,
		Status:          db.StatusSaved,
		URL:             trimmed(req.URL),
		Notes:           req.Notes,
		JobType:         trimmed(req.JobType),
		Term:            trimmed(req.Term),
		City:            trimmed(req.City),
		State:           trimmed(req.State),
		Country:         trimmed(req.Country),
		RemoteStatus:    trimmed(req.RemoteStatus),
		VisaSponsorship: req.VisaSponsorship,
		TechnicalTags:   ingestion.DedupeTags(req.TechnicalTags),
		RoleTags:        ingestion.DedupeTags(req.RoleTags),
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryCurrency:  upper(req.SalaryCurrency),
	}

	var err error
	if req.Status != nil {
		if in.Status, err = parseStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if in.ApplicationDate, err = parseDate("application_date", req.ApplicationDate); err != nil {
		return nil, err
	}
	if in.ResumeID, err = parseID("resume_id", req.ResumeID); err != nil {
		return nil, err
	}
	if err := checkSalary(in.SalaryMin, in.SalaryMax); err != nil {
		return nil, err
	}

	company, err := s.companyFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if company != nil {
		in.CompanyID = &company.ID
	}

	job, err := s.store.InsertJob(ctx, in)
	if err != nil {
		return nil, err
	}
	if job.Company == nil {
		job.Company = company
	}
	return job, nil
}

func (s *Service) companyFor(ctx context.Context, req types.CreateJobRequest) (*db.Company, error) {
	if req.CompanyID != nil && *req.CompanyID != "" {
		id, err := parseID("company_id", req.CompanyID)
		if err != nil {
			return nil, err
		}
		return s.existingCompany(ctx, *id)
	}
	if req.Company != nil {
		var location string
		if req.Company.Location != nil {
			location = *req.Company.Location
		}
		return s.companies.FindOrCreate(ctx, req.Company.Name, location)
	}
	return nil, nil
}

func (s *Service) existingCompany(ctx context.Context, id uuid.UUID) (*db.Company, error) {
	c, err := s.store.GetCompanyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &ValidationError{Field: "company_id", Message: "company does not exist"}
	}
	return c, nil
}

// Update applies a partial edit and bumps updated_at
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req types.UpdateJobRequest) (*db.Job, error) {
	u := db.JobUpdate{
		URL:            trimmed(req.URL),
		Notes:          req.Notes,
		JobType:        trimmed(req.JobType),
		Term:           trimmed(req.Term),
		RemoteStatus:   trimmed(req.RemoteStatus),
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		SalaryCurrency: upper(req.SalaryCurrency),
	}
	if req.TechnicalTags != nil {
		u.TechnicalTags = ingestion.DedupeTags(req.TechnicalTags)
	}
	if req.RoleTags != nil {
		u.RoleTags = ingestion.DedupeTags(req.RoleTags)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, &ValidationError{Field: "title", Message: "title cannot be empty"}
		}
		u.Title = &title
	}

	var err error
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		u.Status = &status
	}
	if u.ApplicationDate, err = parseDate("application_date", req.ApplicationDate); err != nil {
		return nil, err
	}
	if u.ResumeID, err = parseID("resume_id", req.ResumeID); err != nil {
		return nil, err
	}
	if err := checkSalary(u.SalaryMin, u.SalaryMax); err != nil {
		return nil, err
	}

	if req.CompanyID != nil {
		if strings.TrimSpace(*req.CompanyID) == "" {
			u.ClearCompany = true
		} else {
			companyID, err := parseID("company_id", req.CompanyID)
			if err != nil {
				return nil, err
			}
			if _, err := s.existingCompany(ctx, *companyID); err != nil {
				return nil, err
			}
			u.CompanyID = companyID
		}
	}

	if u.IsEmpty() {
		return s.Get(ctx, userID, id)
	}
	return s.store.UpdateJob(ctx, userID, id, u)
}

// UpdateStatus moves a job to status. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) (*db.Job, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateJob(ctx, userID, id, db.JobUpdate{Status: &st})
}

// Delete removes one of userID's jobs
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteJob(ctx, userID, id)
}

func parseStatus(s string) (db.JobStatus, error) {
	st, err := db.ParseStatus(s)
	if err != nil {
		return "", &ValidationError{Field: "status", Message: err.Error()}
	}
	return st, nil
}

func parseID(field string, s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "must be a UUID"}
	}
	return &id, nil
}

func parseDate(field string, s *string) (*db.Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*s))
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "must be formatted YYYY-MM-DD"}
	}
	return db.NewDate(t), nil
}

func checkSalary(lo, hi *float64) error {
	if lo != nil && hi != nil && *lo > *hi {
		return &ValidationError{Field: "salary_min", Message: "must not exceed salary_max"}
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func upper(s *string) *string {
	v := trimmed(s)
	if v == nil {
		return nil
	}
	u := strings.ToUpper(*v)
	return &u
}
