package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// scanner is satisfied by pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

const jobColumns = `j.id, j.user_id, j.company_id, j.title, j.url, j.status, j.application_date,
	j.resume_id, j.notes, j.job_type, j.term, j.start_date, j.end_date, j.duration,
	j.city, j.state, j.country, j.remote_status, j.visa_sponsorship,
	j.technical_tags, j.role_tags, j.salary_min, j.salary_max, j.salary_currency,
	j.posted_date, j.application_deadline, j.markdown_content, j.scraper_data,
	j.confidence_score, j.created_at, j.updated_at,
	c.id, c.name, c.website, c.industry, c.location, c.notes, c.created_at, c.updated_at`

// jobSelect reads jobs joined with their company; %s is the row source aliased as j
const jobSelect = `SELECT ` + jobColumns + ` FROM %s j LEFT JOIN companies c ON c.id = j.company_id`

func scanJob(row scanner) (*Job, error) {
	var j Job
	var status string
	var scraperData []byte
	var (
		cID                 *uuid.UUID
		cName               *string
		cWebsite, cIndustry *string
		cLocation, cNotes   *string
		cCreated, cUpdated  *time.Time
	)

	err := row.Scan(
		&j.ID, &j.UserID, &j.CompanyID, &j.Title, &j.URL, &status, &j.ApplicationDate,
		&j.ResumeID, &j.Notes, &j.JobType, &j.Term, &j.StartDate, &j.EndDate, &j.Duration,
		&j.City, &j.State, &j.Country, &j.RemoteStatus, &j.VisaSponsorship,
		&j.TechnicalTags, &j.RoleTags, &j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency,
		&j.PostedDate, &j.ApplicationDeadline, &j.MarkdownContent, &scraperData,
		&j.ConfidenceScore, &j.CreatedAt, &j.UpdatedAt,
		&cID, &cName, &cWebsite, &cIndustry, &cLocation, &cNotes, &cCreated, &cUpdated,
	)
	if err != nil {
		return nil, err
	}

	j.Status = JobStatus(status)
	if len(scraperData) > 0 {
		j.ScraperData = scraperData
	}
	if j.TechnicalTags == nil {
		j.TechnicalTags = []string{}
	}
	if j.RoleTags == nil {
		j.RoleTags = []string{}
	}
	if cID != nil && cName != nil {
		j.Company = &Company{
			ID:       *cID,
			Name:     *cName,
			Website:  cWebsite,
			Industry: cIndustry,
			Location: cLocation,
			Notes:    cNotes,
		}
		if cCreated != nil {
			j.Company.CreatedAt = *cCreated
		}
		if cUpdated != nil {
			j.Company.UpdatedAt = *cUpdated
		}
	}
	return &j, nil
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// buildJobQuery returns the SQL and arguments listing userID's jobs that match filters,
// newest update first.
func buildJobQuery(userID uuid.UUID, filters JobFilters) (string, []interface{}) {
	conditions := []string{"j.user_id = $1"}
	args := []interface{}{userID}
	argIndex := 2

	add := func(format string, value interface{}) {
		conditions = append(conditions, strings.ReplaceAll(format, "$?", fmt.Sprintf("$%d", argIndex)))
		args = append(args, value)
		argIndex++
	}

	if filters.Status != nil {
		add("j.status = $?", string(*filters.Status))
	}
	if filters.CompanyID != nil {
		add("j.company_id = $?", *filters.CompanyID)
	}
	if filters.Title != "" {
		add("j.title ILIKE $?", containsPattern(filters.Title))
	}
	if filters.JobType != "" {
		add("j.job_type = $?", filters.JobType)
	}
	if filters.Term != "" {
		add("j.term = $?", filters.Term)
	}
	if len(filters.TechnicalTags) > 0 {
		add("j.technical_tags && $?::text[]", filters.TechnicalTags)
	}
	if len(filters.RoleTags) > 0 {
		add("j.role_tags && $?::text[]", filters.RoleTags)
	}
	if filters.Location != "" {
		add("(j.city ILIKE $? OR j.state ILIKE $? OR j.country ILIKE $?)", containsPattern(filters.Location))
	}
	if filters.SalaryMin != nil {
		add("j.salary_min >= $?", *filters.SalaryMin)
	}
	if filters.SalaryMax != nil {
		add("j.salary_max <= $?", *filters.SalaryMax)
	}
	if filters.RemoteStatus != "" {
		add("j.remote_status = $?", filters.RemoteStatus)
	}
	if filters.VisaSponsorship != nil {
		add("j.visa_sponsorship = $?", *filters.VisaSponsorship)
	}

	query := fmt.Sprintf(jobSelect, "jobs") +
		" WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY j.updated_at DESC, j.id"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filters.Limit)
		argIndex++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filters.Offset)
	}

	return query, args
}
