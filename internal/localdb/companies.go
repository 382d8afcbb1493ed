package localdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"gorm.io/gorm"
)

func (r *companyRow) toCompany() *db.Company {
	return &db.Company{
		ID:        r.ID,
		Name:      r.Name,
		Website:   r.Website,
		Industry:  r.Industry,
		Location:  r.Location,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// FindCompanyByName returns the company whose name equals name ignoring case, or nil
func (s *Store) FindCompanyByName(ctx context.Context, name string) (*db.Company, error) {
	var row companyRow
	err := s.db.WithContext(ctx).
		Where("name_key = ?", strings.ToLower(name)).
		Order("created_at, id").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find company by name: %w", err)
	}
	return row.toCompany(), nil
}

// InsertCompany creates a company. A case-folded name collision returns db.ErrCompanyExists.
func (s *Store) InsertCompany(ctx context.Context, in db.CompanyInsert) (*db.Company, error) {
	row := companyRow{
		ID:       uuid.New(),
		Name:     in.Name,
		Website:  in.Website,
		Industry: in.Industry,
		Location: in.Location,
		Notes:    in.Notes,
	}
	row.refreshKeys()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return nil, db.ErrCompanyExists
		}
		return nil, fmt.Errorf("create company: %w", err)
	}
	return row.toCompany(), nil
}

// GetCompanyByID retrieves a company, or nil if none exists
func (s *Store) GetCompanyByID(ctx context.Context, id uuid.UUID) (*db.Company, error) {
	var row companyRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return row.toCompany(), nil
}

// ListCompanies lists companies ordered by name
func (s *Store) ListCompanies(ctx context.Context, filters db.CompanyFilters) ([]db.Company, error) {
	q := s.db.WithContext(ctx).Model(&companyRow{})
	if search := strings.TrimSpace(filters.Search); search != "" {
		q = q.Where(`search_key LIKE ? ESCAPE '\'`, containsPattern(search))
	}
	if filters.Industry != "" {
		q = q.Where("industry = ?", filters.Industry)
	}

	var rows []companyListRow
	err := q.Select("companies.*, (SELECT COUNT(*) FROM jobs WHERE jobs.company_id = companies.id) AS job_count").
		Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	companies := make([]db.Company, 0, len(rows))
	for i := range rows {
		c := rows[i].toCompany()
		jobCount := rows[i].JobCount
		c.JobCount = &jobCount
		companies = append(companies, *c)
	}
	return companies, nil
}

type companyListRow struct {
	companyRow
	JobCount int
}

// UpdateCompany applies a partial update. Returns db.ErrNotFound for an unknown id and
// db.ErrCompanyExists when a rename collides with another company.
func (s *Store) UpdateCompany(ctx context.Context, id uuid.UUID, u db.CompanyUpdate) (*db.Company, error) {
	var row companyRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return db.ErrNotFound
			}
			return fmt.Errorf("get company: %w", err)
		}
		if u.IsEmpty() {
			return nil
		}

		if u.Name != nil {
			row.Name = *u.Name
		}
		if u.Website != nil {
			row.Website = u.Website
		}
		if u.Industry != nil {
			row.Industry = u.Industry
		}
		if u.Location != nil {
			row.Location = u.Location
		}
		if u.Notes != nil {
			row.Notes = u.Notes
		}
		row.refreshKeys()

		if err := tx.Save(&row).Error; err != nil {
			if isDuplicate(err) {
				return db.ErrCompanyExists
			}
			return fmt.Errorf("update company: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row.toCompany(), nil
}

// DeleteCompany removes a company. Jobs that referenced it keep a NULL company_id.
func (s *Store) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&jobRow{}).Where("company_id = ?", id).Update("company_id", nil).Error; err != nil {
			return fmt.Errorf("detach jobs: %w", err)
		}
		res := tx.Delete(&companyRow{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete company: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}
		return nil
	})
}

// GetCompanyStats counts the jobs tracked against a company across all users
func (s *Store) GetCompanyStats(ctx context.Context, id uuid.UUID) (*db.CompanyStats, error) {
	var counts struct {
		Total      int
		Active     int
		Successful int
	}
	err := s.db.WithContext(ctx).Model(&jobRow{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status IN ('APPLIED', 'INTERVIEWING') THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN status = 'OFFERED' THEN 1 ELSE 0 END), 0) AS successful`).
		Where("company_id = ?", id).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("get company stats: %w", err)
	}
	return db.NewCompanyStats(id, counts.Total, counts.Active, counts.Successful), nil
}
