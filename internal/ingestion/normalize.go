package ingestion

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/scrape"
)

// Extra carries the request values that don't come from the scrape
type Extra struct {
	URL      string
	ResumeID *uuid.UUID
	Notes    *string
}

// Normalize maps a scrape onto the columns of a new job. It performs no I/O.
// The caller sets UserID. Status is always SAVED whatever the payload says.
func Normalize(res *scrape.Result, companyID *uuid.UUID, extra Extra) (*db.JobInsert, error) {
	if res == nil {
		return nil, &IncompleteScrapeError{URL: extra.URL, Field: "title"}
	}
	job := &res.Job

	title := job.TitleText()
	if title == "" {
		return nil, &IncompleteScrapeError{URL: extra.URL, Field: "title"}
	}

	in := &db.JobInsert{
		CompanyID:     companyID,
		Title:         title,
		Status:        db.StatusSaved,
		ResumeID:      extra.ResumeID,
		Notes:         extra.Notes,
		TechnicalTags: DedupeTags(job.TechnicalKeywords),
		RoleTags:      DedupeTags(job.RoleTags),
	}
	if u := strings.TrimSpace(extra.URL); u != "" {
		in.URL = &u
	}

	if e := job.Employment; e != nil {
		in.JobType = text(e.Type)
		in.Term = text(e.Term)
		in.StartDate = ParseDate(e.StartDate)
		in.EndDate = ParseDate(e.EndDate)
		in.Duration = text(e.Duration)
	}

	if l := job.Location; l != nil {
		in.City = text(l.City)
		in.State = text(l.State)
		in.Country = text(l.Country)
		in.RemoteStatus = text(l.RemoteStatus)
	}

	if info := job.ImportantInfo; info != nil {
		in.VisaSponsorship = info.VisaSponsorship
		in.PostedDate = ParseDate(info.PostedDate)
		in.ApplicationDeadline = ParseDate(info.ApplicationDeadline)
		if s := info.SalaryRange; s != nil {
			in.SalaryMin, in.SalaryMax = salaryBounds(s.Min, s.Max)
			in.SalaryCurrency = text(s.Currency)
		}
	}

	if job.MarkdownDescription != nil {
		if md := CleanMarkdown(*job.MarkdownDescription); md != "" {
			in.MarkdownContent = &md
		}
	}

	if job.Metadata != nil {
		in.ConfidenceScore = job.Metadata.ConfidenceScore
	}

	if len(res.Raw) > 0 {
		in.ScraperData = res.Raw
	}

	return in, nil
}

// salaryBounds orders a salary range so min <= max. A single bound is kept alone.
func salaryBounds(lo, hi *float64) (*float64, *float64) {
	if lo != nil && hi != nil && *lo > *hi {
		return copyFloat(hi), copyFloat(lo)
	}
	return copyFloat(lo), copyFloat(hi)
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
