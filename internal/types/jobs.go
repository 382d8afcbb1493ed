package types

import "github.com/jonathan/job-tracker/internal/db"

// MagicScrapeRequest ingests a job posting from its URL
type MagicScrapeRequest struct {
	URL      string  `json:"url" validate:"required,http_url"`
	ResumeID *string `json:"resume_id,omitempty" validate:"omitempty,uuid"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=10000"`
}

// JobResponse wraps a single job
type JobResponse struct {
	Job *db.Job `json:"job"`
}

// JobsResponse wraps a job list
type JobsResponse struct {
	Jobs  []db.Job `json:"jobs"`
	Count int      `json:"count"`
}

// CompanyRef names the company of a manually created job. It is resolved like a
// scraped company name.
type CompanyRef struct {
	Name     string  `json:"name" validate:"required,max=300"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=300"`
}

// CreateJobRequest creates a job by hand. At most one of CompanyID and Company is used;
// CompanyID wins when both are set.
type CreateJobRequest struct {
	Title           string      `json:"title" validate:"required,max=300"`
	CompanyID       *string     `json:"company_id,omitempty" validate:"omitempty,uuid"`
	Company         *CompanyRef `json:"company,omitempty"`
	URL             *string     `json:"url,omitempty" validate:"omitempty,http_url"`
	Status          *string     `json:"status,omitempty"`
	ApplicationDate *string     `json:"application_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ResumeID        *string     `json:"resume_id,omitempty" validate:"omitempty,uuid"`
	Notes           *string     `json:"notes,omitempty" validate:"omitempty,max=10000"`
	JobType         *string     `json:"job_type,omitempty"`
	Term            *string     `json:"term,omitempty"`
	City            *string     `json:"city,omitempty"`
	State           *string     `json:"state,omitempty"`
	Country         *string     `json:"country,omitempty"`
	RemoteStatus    *string     `json:"remote_status,omitempty"`
	VisaSponsorship *bool       `json:"visa_sponsorship,omitempty"`
	TechnicalTags   []string    `json:"technical_tags,omitempty" validate:"omitempty,dive,required"`
	RoleTags        []string    `json:"role_tags,omitempty" validate:"omitempty,dive,required"`
	SalaryMin       *float64    `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax       *float64    `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	SalaryCurrency  *string     `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
}

// UpdateJobRequest changes the given fields of a job. Setting company_id to ""
// detaches the job from its company.
type UpdateJobRequest struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	CompanyID       *string  `json:"company_id,omitempty" validate:"omitempty,uuid|len=0"`
	URL             *string  `json:"url,omitempty" validate:"omitempty,http_url"`
	Status          *string  `json:"status,omitempty"`
	ApplicationDate *string  `json:"application_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ResumeID        *string  `json:"resume_id,omitempty" validate:"omitempty,uuid"`
	Notes           *string  `json:"notes,omitempty" validate:"omitempty,max=10000"`
	JobType         *string  `json:"job_type,omitempty"`
	Term            *string  `json:"term,omitempty"`
	RemoteStatus    *string  `json:"remote_status,omitempty"`
	SalaryMin       *float64 `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax       *float64 `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	SalaryCurrency  *string  `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	TechnicalTags   []string `json:"technical_tags,omitempty" validate:"omitempty,dive,required"`
	RoleTags        []string `json:"role_tags,omitempty" validate:"omitempty,dive,required"`
}

// UpdateStatusRequest moves a job to another status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate validates the MagicScrapeRequest using the validator.
func (r *MagicScrapeRequest) Validate() error {
	return Validate(r)
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	return Validate(r)
}

// Validate validates the UpdateJobRequest using the validator.
func (r *UpdateJobRequest) Validate() error {
	return Validate(r)
}

// Validate validates the UpdateStatusRequest using the validator.
func (r *UpdateStatusRequest) Validate() error {
	return Validate(r)
}
