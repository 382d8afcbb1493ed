package types

import "github.com/jonathan/job-tracker/internal/db"

// CreateCompanyRequest adds a company by hand
type CreateCompanyRequest struct {
	Name     string  `json:"name" validate:"required,max=300"`
	Website  *string `json:"website,omitempty" validate:"omitempty,http_url"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=200"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=300"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=10000"`
}

// UpdateCompanyRequest changes the given fields of a company
type UpdateCompanyRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=300"`
	Website  *string `json:"website,omitempty" validate:"omitempty,http_url"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=200"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=300"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=10000"`
}

// CompaniesResponse wraps a company list
type CompaniesResponse struct {
	Companies []db.Company `json:"companies"`
	Count     int          `json:"count"`
}

// Validate validates the CreateCompanyRequest using the validator.
func (r *CreateCompanyRequest) Validate() error {
	return Validate(r)
}

// Validate validates the UpdateCompanyRequest using the validator.
func (r *UpdateCompanyRequest) Validate() error {
	return Validate(r)
}
