package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the application pipeline state of a job
type JobStatus string

// Job statuses
const (
	StatusSaved        JobStatus = "SAVED"
	StatusApplied      JobStatus = "APPLIED"
	StatusInterviewing JobStatus = "INTERVIEWING"
	StatusOffered      JobStatus = "OFFERED"
	StatusRejected     JobStatus = "REJECTED"
)

// AllStatuses lists every valid status in pipeline order
var AllStatuses = []JobStatus{StatusSaved, StatusApplied, StatusInterviewing, StatusOffered, StatusRejected}

// Valid reports whether s is a known status
func (s JobStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus converts user input into a JobStatus. Matching ignores case.
func ParseStatus(s string) (JobStatus, error) {
	st := JobStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid job status: %q", s)
	}
	return st, nil
}

// Job is a posting tracked by one user
type Job struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	CompanyID       *uuid.UUID `json:"company_id,omitempty"`
	Company         *Company   `json:"company,omitempty"`
	Title           string     `json:"title"`
	URL             *string    `json:"url,omitempty"`
	Status          JobStatus  `json:"status"`
	ApplicationDate *Date      `json:"application_date,omitempty"`
	ResumeID        *uuid.UUID `json:"resume_id,omitempty"`
	Notes           *string    `json:"notes,omitempty"`

	// Scrape-derived
	JobType             *string         `json:"job_type,omitempty"`
	Term                *string         `json:"term,omitempty"`
	StartDate           *Date           `json:"start_date,omitempty"`
	EndDate             *Date           `json:"end_date,omitempty"`
	Duration            *string         `json:"duration,omitempty"`
	City                *string         `json:"city,omitempty"`
	State               *string         `json:"state,omitempty"`
	Country             *string         `json:"country,omitempty"`
	RemoteStatus        *string         `json:"remote_status,omitempty"`
	VisaSponsorship     *bool           `json:"visa_sponsorship,omitempty"`
	TechnicalTags       []string        `json:"technical_tags"`
	RoleTags            []string        `json:"role_tags"`
	SalaryMin           *float64        `json:"salary_min,omitempty"`
	SalaryMax           *float64        `json:"salary_max,omitempty"`
	SalaryCurrency      *string         `json:"salary_currency,omitempty"`
	PostedDate          *Date           `json:"posted_date,omitempty"`
	ApplicationDeadline *Date           `json:"application_deadline,omitempty"`
	MarkdownContent     *string         `json:"markdown_content,omitempty"`
	ScraperData         json.RawMessage `json:"scraper_data,omitempty"`
	ConfidenceScore     *float64        `json:"confidence_score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobInsert holds the columns written when a job is created.
// UserID is always set by the caller that owns the request.
type JobInsert struct {
	UserID          uuid.UUID
	CompanyID       *uuid.UUID
	Title           string
	URL             *string
	Status          JobStatus
	ApplicationDate *Date
	ResumeID        *uuid.UUID
	Notes           *string

	JobType             *string
	Term                *string
	StartDate           *Date
	EndDate             *Date
	Duration            *string
	City                *string
	State               *string
	Country             *string
	RemoteStatus        *string
	VisaSponsorship     *bool
	TechnicalTags       []string
	RoleTags            []string
	SalaryMin           *float64
	SalaryMax           *float64
	SalaryCurrency      *string
	PostedDate          *Date
	ApplicationDeadline *Date
	MarkdownContent     *string
	ScraperData         json.RawMessage
	ConfidenceScore     *float64
}

// JobUpdate is a partial update of the user-editable job fields; nil fields are left unchanged.
// ClearCompany unsets company_id and takes precedence over CompanyID.
type JobUpdate struct {
	Title           *string
	CompanyID       *uuid.UUID
	ClearCompany    bool
	URL             *string
	Status          *JobStatus
	ApplicationDate *Date
	ResumeID        *uuid.UUID
	Notes           *string
	JobType         *string
	Term            *string
	RemoteStatus    *string
	SalaryMin       *float64
	SalaryMax       *float64
	SalaryCurrency  *string
	TechnicalTags   []string
	RoleTags        []string
}

// IsEmpty reports whether the update changes nothing
func (u JobUpdate) IsEmpty() bool {
	return u.Title == nil && u.CompanyID == nil && !u.ClearCompany && u.URL == nil &&
		u.Status == nil && u.ApplicationDate == nil && u.ResumeID == nil && u.Notes == nil &&
		u.JobType == nil && u.Term == nil && u.RemoteStatus == nil && u.SalaryMin == nil &&
		u.SalaryMax == nil && u.SalaryCurrency == nil && u.TechnicalTags == nil && u.RoleTags == nil
}

// JobFilters narrows a user's job list. Every set field is ANDed; zero values are ignored.
type JobFilters struct {
	Status          *JobStatus
	CompanyID       *uuid.UUID
	Title           string   // case-insensitive substring
	JobType         string   // exact
	Term            string   // exact
	TechnicalTags   []string // any-of
	RoleTags        []string // any-of
	Location        string   // case-insensitive substring of city, state or country
	SalaryMin       *float64 // job.salary_min >= SalaryMin
	SalaryMax       *float64 // job.salary_max <= SalaryMax
	RemoteStatus    string   // exact
	VisaSponsorship *bool

	// Limit <= 0 returns every matching row
	Limit  int
	Offset int
}
