package localdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func dateTime(d *db.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func dateOf(t *time.Time) *db.Date {
	if t == nil {
		return nil
	}
	return db.NewDate(*t)
}

func tags(in []string) datatypes.JSONSlice[string] {
	if in == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](in)
}

func (r *jobRow) toJob() *db.Job {
	j := &db.Job{
		ID:                  r.ID,
		UserID:              r.UserID,
		CompanyID:           r.CompanyID,
		Title:               r.Title,
		URL:                 r.URL,
		Status:              db.JobStatus(r.Status),
		ApplicationDate:     dateOf(r.ApplicationDate),
		ResumeID:            r.ResumeID,
		Notes:               r.Notes,
		JobType:             r.JobType,
		Term:                r.Term,
		StartDate:           dateOf(r.StartDate),
		EndDate:             dateOf(r.EndDate),
		Duration:            r.Duration,
		City:                r.City,
		State:               r.State,
		Country:             r.Country,
		RemoteStatus:        r.RemoteStatus,
		VisaSponsorship:     r.VisaSponsorship,
		TechnicalTags:       []string(r.TechnicalTags),
		RoleTags:            []string(r.RoleTags),
		SalaryMin:           r.SalaryMin,
		SalaryMax:           r.SalaryMax,
		SalaryCurrency:      r.SalaryCurrency,
		PostedDate:          dateOf(r.PostedDate),
		ApplicationDeadline: dateOf(r.ApplicationDeadline),
		MarkdownContent:     r.MarkdownContent,
		ConfidenceScore:     r.ConfidenceScore,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if j.TechnicalTags == nil {
		j.TechnicalTags = []string{}
	}
	if j.RoleTags == nil {
		j.RoleTags = []string{}
	}
	if len(r.ScraperData) > 0 {
		j.ScraperData = json.RawMessage(r.ScraperData)
	}
	if r.Company != nil {
		j.Company = r.Company.toCompany()
	}
	return j
}

// InsertJob persists a job and returns it with its id, timestamps and company
func (s *Store) InsertJob(ctx context.Context, in *db.JobInsert) (*db.Job, error) {
	status := in.Status
	if status == "" {
		status = db.StatusSaved
	}
	row := jobRow{
		ID:                  uuid.New(),
		UserID:              in.UserID,
		CompanyID:           in.CompanyID,
		Title:               in.Title,
		URL:                 in.URL,
		Status:              string(status),
		ApplicationDate:     dateTime(in.ApplicationDate),
		ResumeID:            in.ResumeID,
		Notes:               in.Notes,
		JobType:             in.JobType,
		Term:                in.Term,
		StartDate:           dateTime(in.StartDate),
		EndDate:             dateTime(in.EndDate),
		Duration:            in.Duration,
		City:                in.City,
		State:               in.State,
		Country:             in.Country,
		RemoteStatus:        in.RemoteStatus,
		VisaSponsorship:     in.VisaSponsorship,
		TechnicalTags:       tags(in.TechnicalTags),
		RoleTags:            tags(in.RoleTags),
		SalaryMin:           in.SalaryMin,
		SalaryMax:           in.SalaryMax,
		SalaryCurrency:      in.SalaryCurrency,
		PostedDate:          dateTime(in.PostedDate),
		ApplicationDeadline: dateTime(in.ApplicationDeadline),
		MarkdownContent:     in.MarkdownContent,
		ScraperData:         datatypes.JSON(in.ScraperData),
		ConfidenceScore:     in.ConfidenceScore,
	}
	row.refreshKeys()
	if err := s.db.WithContext(ctx).Omit("Company").Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	j, err := s.GetJob(ctx, in.UserID, row.ID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("insert job: row %s vanished", row.ID)
	}
	return j, nil
}

// GetJob retrieves one of userID's jobs, or nil if it does not exist for that user
func (s *Store) GetJob(ctx context.Context, userID, id uuid.UUID) (*db.Job, error) {
	var row jobRow
	err := s.db.WithContext(ctx).Preload("Company").
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return row.toJob(), nil
}

// ListJobs returns userID's jobs matching filters, most recently updated first
func (s *Store) ListJobs(ctx context.Context, userID uuid.UUID, filters db.JobFilters) ([]db.Job, error) {
	q := applyJobFilters(s.db.WithContext(ctx).Model(&jobRow{}).Preload("Company"), userID, filters)

	var rows []jobRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]db.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, *rows[i].toJob())
	}
	return jobs, nil
}

// applyJobFilters ANDs every set filter onto q
func applyJobFilters(q *gorm.DB, userID uuid.UUID, f db.JobFilters) *gorm.DB {
	q = q.Where("user_id = ?", userID)

	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	if f.Title != "" {
		q = q.Where(`title_key LIKE ? ESCAPE '\'`, containsPattern(f.Title))
	}
	if f.JobType != "" {
		q = q.Where("job_type = ?", f.JobType)
	}
	if f.Term != "" {
		q = q.Where("term = ?", f.Term)
	}
	if len(f.TechnicalTags) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM json_each(CAST(jobs.technical_tags AS TEXT)) WHERE json_each.value IN ?)", f.TechnicalTags)
	}
	if len(f.RoleTags) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM json_each(CAST(jobs.role_tags AS TEXT)) WHERE json_each.value IN ?)", f.RoleTags)
	}
	if f.Location != "" {
		q = q.Where(`location_key LIKE ? ESCAPE '\'`, containsPattern(f.Location))
	}
	if f.SalaryMin != nil {
		q = q.Where("salary_min >= ?", *f.SalaryMin)
	}
	if f.SalaryMax != nil {
		q = q.Where("salary_max <= ?", *f.SalaryMax)
	}
	if f.RemoteStatus != "" {
		q = q.Where("remote_status = ?", f.RemoteStatus)
	}
	if f.VisaSponsorship != nil {
		q = q.Where("visa_sponsorship = ?", *f.VisaSponsorship)
	}

	q = q.Order("updated_at DESC").Order("id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	return q
}

// UpdateJob applies a partial update to one of userID's jobs and bumps updated_at.
// Returns db.ErrNotFound when the job does not exist for that user.
func (s *Store) UpdateJob(ctx context.Context, userID, id uuid.UUID, u db.JobUpdate) (*db.Job, error) {
	updates := jobUpdates(u)
	updates["updated_at"] = s.db.NowFunc()

	res := s.db.WithContext(ctx).Model(&jobRow{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, db.ErrNotFound
	}

	j, err := s.GetJob(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, db.ErrNotFound
	}
	return j, nil
}

func jobUpdates(u db.JobUpdate) map[string]any {
	updates := map[string]any{}
	if u.Title != nil {
		updates["title"] = *u.Title
		updates["title_key"] = strings.ToLower(*u.Title)
	}
	if u.ClearCompany {
		updates["company_id"] = nil
	} else if u.CompanyID != nil {
		updates["company_id"] = *u.CompanyID
	}
	if u.URL != nil {
		updates["url"] = *u.URL
	}
	if u.Status != nil {
		updates["status"] = string(*u.Status)
	}
	if u.ApplicationDate != nil {
		updates["application_date"] = dateTime(u.ApplicationDate)
	}
	if u.ResumeID != nil {
		updates["resume_id"] = *u.ResumeID
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}
	if u.JobType != nil {
		updates["job_type"] = *u.JobType
	}
	if u.Term != nil {
		updates["term"] = *u.Term
	}
	if u.RemoteStatus != nil {
		updates["remote_status"] = *u.RemoteStatus
	}
	if u.SalaryMin != nil {
		updates["salary_min"] = *u.SalaryMin
	}
	if u.SalaryMax != nil {
		updates["salary_max"] = *u.SalaryMax
	}
	if u.SalaryCurrency != nil {
		updates["salary_currency"] = *u.SalaryCurrency
	}
	if u.TechnicalTags != nil {
		updates["technical_tags"] = tags(u.TechnicalTags)
	}
	if u.RoleTags != nil {
		updates["role_tags"] = tags(u.RoleTags)
	}
	return updates
}

// DeleteJob removes one of userID's jobs. Returns db.ErrNotFound when it does not exist for that user.
func (s *Store) DeleteJob(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&jobRow{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("delete job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
