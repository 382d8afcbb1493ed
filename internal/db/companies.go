package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const companyColumns = `id, name, website, industry, location, notes, created_at, updated_at`

func scanCompany(row scanner) (*Company, error) {
	var c Company
	if err := row.Scan(&c.ID, &c.Name, &c.Website, &c.Industry, &c.Location, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCompanyByName returns the oldest company whose name equals name ignoring case,
// or nil if none exists.
func (db *DB) FindCompanyByName(ctx context.Context, name string) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+`
		 FROM companies WHERE lower(name) = lower($1)
		 ORDER BY created_at, id
		 LIMIT 1`,
		name,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find company by name: %w", err)
	}
	return c, nil
}

// InsertCompany creates a company. A case-folded name collision returns ErrCompanyExists.
func (db *DB) InsertCompany(ctx context.Context, in CompanyInsert) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`INSERT INTO companies (name, website, industry, location, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+companyColumns,
		in.Name, in.Website, in.Industry, in.Location, in.Notes,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCompanyExists
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return c, nil
}

// GetCompanyByID retrieves a company by its UUID
func (db *DB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`,
		id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// ListCompanies lists companies ordered by name
func (db *DB) ListCompanies(ctx context.Context, filters CompanyFilters) ([]Company, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if search := strings.TrimSpace(filters.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR industry ILIKE $%d OR location ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, containsPattern(search))
		argIndex++
	}

	if filters.Industry != "" {
		conditions = append(conditions, fmt.Sprintf("industry = $%d", argIndex))
		args = append(args, filters.Industry)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := db.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s,
			(SELECT COUNT(*) FROM jobs WHERE jobs.company_id = companies.id) AS job_count
			FROM companies %s ORDER BY name ASC`, companyColumns, whereClause),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		var c Company
		var jobCount int
		if err := rows.Scan(&c.ID, &c.Name, &c.Website, &c.Industry, &c.Location, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt, &jobCount); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		c.JobCount = &jobCount
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// UpdateCompany applies a partial update. Returns ErrNotFound for an unknown id and
// ErrCompanyExists when a rename collides with another company.
func (db *DB) UpdateCompany(ctx context.Context, id uuid.UUID, u CompanyUpdate) (*Company, error) {
	if u.IsEmpty() {
		c, err := db.GetCompanyByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrNotFound
		}
		return c, nil
	}

	var sets []string
	var args []interface{}
	argIndex := 1
	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Website != nil {
		set("website", *u.Website)
	}
	if u.Industry != nil {
		set("industry", *u.Industry)
	}
	if u.Location != nil {
		set("location", *u.Location)
	}
	if u.Notes != nil {
		set("notes", *u.Notes)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	c, err := scanCompany(db.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE companies SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), argIndex, companyColumns),
		args...,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrCompanyExists
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return c, nil
}

// DeleteCompany removes a company. Jobs that referenced it keep a NULL company_id.
func (db *DB) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCompanyStats counts the jobs tracked against a company across all users
func (db *DB) GetCompanyStats(ctx context.Context, id uuid.UUID) (*CompanyStats, error) {
	var total, active, successful int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status IN ('APPLIED', 'INTERVIEWING')),
		        COUNT(*) FILTER (WHERE status = 'OFFERED')
		 FROM jobs WHERE company_id = $1`,
		id,
	).Scan(&total, &active, &successful)
	if err != nil {
		return nil, fmt.Errorf("failed to get company stats: %w", err)
	}
	return NewCompanyStats(id, total, active, successful), nil
}
