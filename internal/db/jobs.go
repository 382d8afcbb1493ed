package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// InsertJob persists a job and returns it with its id, timestamps and company
func (db *DB) InsertJob(ctx context.Context, in *JobInsert) (*Job, error) {
	status := in.Status
	if status == "" {
		status = StatusSaved
	}
	technicalTags := in.TechnicalTags
	if technicalTags == nil {
		technicalTags = []string{}
	}
	roleTags := in.RoleTags
	if roleTags == nil {
		roleTags = []string{}
	}
	var scraperData interface{}
	if len(in.ScraperData) > 0 {
		scraperData = string(in.ScraperData)
	}

	query := `WITH inserted AS (
		INSERT INTO jobs (
			user_id, company_id, title, url, status, application_date, resume_id, notes,
			job_type, term, start_date, end_date, duration, city, state, country,
			remote_status, visa_sponsorship, technical_tags, role_tags,
			salary_min, salary_max, salary_currency, posted_date, application_deadline,
			markdown_content, scraper_data, confidence_score
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		) RETURNING *
	) ` + fmt.Sprintf(jobSelect, "inserted")

	j, err := scanJob(db.pool.QueryRow(ctx, query,
		in.UserID, in.CompanyID, in.Title, in.URL, string(status), in.ApplicationDate, in.ResumeID, in.Notes,
		in.JobType, in.Term, in.StartDate, in.EndDate, in.Duration, in.City, in.State, in.Country,
		in.RemoteStatus, in.VisaSponsorship, technicalTags, roleTags,
		in.SalaryMin, in.SalaryMax, in.SalaryCurrency, in.PostedDate, in.ApplicationDeadline,
		in.MarkdownContent, scraperData, in.ConfidenceScore,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}
	return j, nil
}

// GetJob retrieves one of userID's jobs, or nil if it does not exist for that user
func (db *DB) GetJob(ctx context.Context, userID, id uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		fmt.Sprintf(jobSelect, "jobs")+` WHERE j.id = $1 AND j.user_id = $2`,
		id, userID,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListJobs returns userID's jobs matching filters, most recently updated first
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID, filters JobFilters) ([]Job, error) {
	query, args := buildJobQuery(userID, filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob applies a partial update to one of userID's jobs and bumps updated_at.
// Returns ErrNotFound when the job does not exist for that user.
func (db *DB) UpdateJob(ctx context.Context, userID, id uuid.UUID, u JobUpdate) (*Job, error) {
	sets, args := jobUpdateSets(u)
	sets = append(sets, "updated_at = NOW()")
	argIndex := len(args) + 1
	args = append(args, id, userID)

	query := fmt.Sprintf(`WITH updated AS (
		UPDATE jobs SET %s WHERE id = $%d AND user_id = $%d RETURNING *
	) `, strings.Join(sets, ", "), argIndex, argIndex+1) + fmt.Sprintf(jobSelect, "updated")

	j, err := scanJob(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return j, nil
}

// jobUpdateSets returns the SET assignments for u, numbered from $1
func jobUpdateSets(u JobUpdate) ([]string, []interface{}) {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.ClearCompany {
		sets = append(sets, "company_id = NULL")
	} else if u.CompanyID != nil {
		set("company_id", *u.CompanyID)
	}
	if u.URL != nil {
		set("url", *u.URL)
	}
	if u.Status != nil {
		set("status", string(*u.Status))
	}
	if u.ApplicationDate != nil {
		set("application_date", u.ApplicationDate)
	}
	if u.ResumeID != nil {
		set("resume_id", *u.ResumeID)
	}
	if u.Notes != nil {
		set("notes", *u.Notes)
	}
	if u.JobType != nil {
		set("job_type", *u.JobType)
	}
	if u.Term != nil {
		set("term", *u.Term)
	}
	if u.RemoteStatus != nil {
		set("remote_status", *u.RemoteStatus)
	}
	if u.SalaryMin != nil {
		set("salary_min", *u.SalaryMin)
	}
	if u.SalaryMax != nil {
		set("salary_max", *u.SalaryMax)
	}
	if u.SalaryCurrency != nil {
		set("salary_currency", *u.SalaryCurrency)
	}
	if u.TechnicalTags != nil {
		set("technical_tags", u.TechnicalTags)
	}
	if u.RoleTags != nil {
		set("role_tags", u.RoleTags)
	}
	return sets, args
}

// DeleteJob removes one of userID's jobs. Returns ErrNotFound when it does not exist for that user.
func (db *DB) DeleteJob(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
