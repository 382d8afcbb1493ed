package db

import (
	"time"

	"github.com/google/uuid"
)

// Company is a canonical employer record shared across users.
// Name is the natural dedup key and is compared case-insensitively.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Website   *string   `json:"website,omitempty"`
	Industry  *string   `json:"industry,omitempty"`
	Location  *string   `json:"location,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// JobCount is the number of tracked jobs at the company. Only listings fill it in.
	JobCount *int `json:"job_count,omitempty"`
}

// CompanyInsert holds the columns written when a company is created
type CompanyInsert struct {
	Name     string
	Website  *string
	Industry *string
	Location *string
	Notes    *string
}

// CompanyUpdate is a partial update; nil fields are left unchanged
type CompanyUpdate struct {
	Name     *string
	Website  *string
	Industry *string
	Location *string
	Notes    *string
}

// IsEmpty reports whether the update changes nothing
func (u CompanyUpdate) IsEmpty() bool {
	return u.Name == nil && u.Website == nil && u.Industry == nil && u.Location == nil && u.Notes == nil
}

// CompanyFilters narrows ListCompanies.
type CompanyFilters struct {
	// Search is a case-insensitive substring matched against name, industry or location
	Search string
	// Industry is an exact match
	Industry string
}

// CompanyStats summarizes the jobs tracked against a company
type CompanyStats struct {
	CompanyID      uuid.UUID `json:"company_id"`
	TotalJobs      int       `json:"total_jobs"`
	ActiveJobs     int       `json:"active_jobs"`
	SuccessfulJobs int       `json:"successful_jobs"`
	SuccessRate    float64   `json:"success_rate"`
}

// NewCompanyStats derives the success rate (percent) from the counts
func NewCompanyStats(id uuid.UUID, total, active, successful int) *CompanyStats {
	stats := &CompanyStats{
		CompanyID:      id,
		TotalJobs:      total,
		ActiveJobs:     active,
		SuccessfulJobs: successful,
	}
	if total > 0 {
		stats.SuccessRate = float64(successful) / float64(total) * 100
	}
	return stats
}
