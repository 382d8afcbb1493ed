package company

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
)

// Repository is the storage used by Service
type Repository interface {
	Finder
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*db.Company, error)
	ListCompanies(ctx context.Context, filters db.CompanyFilters) ([]db.Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, u db.CompanyUpdate) (*db.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	GetCompanyStats(ctx context.Context, id uuid.UUID) (*db.CompanyStats, error)
}

// Service manages companies entered by hand
type Service struct {
	repo Repository
}

// NewService creates a company Service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns companies ordered by name
func (s *Service) List(ctx context.Context, filters db.CompanyFilters) ([]db.Company, error) {
	return s.repo.ListCompanies(ctx, filters)
}

// Get returns a company or db.ErrNotFound
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*db.Company, error) {
	c, err := s.repo.GetCompanyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, db.ErrNotFound
	}
	return c, nil
}

// Create inserts a company. A name that already exists ignoring case yields db.ErrCompanyExists.
func (s *Service) Create(ctx context.Context, in db.CompanyInsert) (*db.Company, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, &InvalidInputError{Field: "name", Message: "company name cannot be empty"}
	}
	return s.repo.InsertCompany(ctx, in)
}

// Update applies a partial edit
func (s *Service) Update(ctx context.Context, id uuid.UUID, u db.CompanyUpdate) (*db.Company, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, &InvalidInputError{Field: "name", Message: "company name cannot be empty"}
		}
		u.Name = &name
	}
	return s.repo.UpdateCompany(ctx, id, u)
}

// Delete removes a company; its jobs are kept without a company
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCompany(ctx, id)
}

// Stats summarizes the jobs tracked against a company
func (s *Service) Stats(ctx context.Context, id uuid.UUID) (*db.CompanyStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetCompanyStats(ctx, id)
}
