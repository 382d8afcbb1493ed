package scrape

import (
	"encoding/json"
	"strings"
)

// ScrapedJob is the job description returned by the scraper service.
// Every value may be absent or null in the payload.
type ScrapedJob struct {
	Company             *string        `json:"company"`
	Title               *string        `json:"title"`
	Location            *Location      `json:"location"`
	Employment          *Employment    `json:"employment"`
	TechnicalKeywords   []string       `json:"technical_keywords"`
	ImportantInfo       *ImportantInfo `json:"important_info"`
	RoleTags            []string       `json:"role_tags"`
	MarkdownDescription *string        `json:"markdown_description"`
	Metadata            *Metadata      `json:"metadata"`
}

// Location is where the job is based
type Location struct {
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	RemoteStatus *string `json:"remote_status"`
}

// Employment describes the engagement
type Employment struct {
	Type      *string `json:"type"`
	Term      *string `json:"term"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Duration  *string `json:"duration"`
}

// SalaryRange is the advertised compensation band
type SalaryRange struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Currency *string  `json:"currency"`
}

// ImportantInfo groups sponsorship, salary and key dates
type ImportantInfo struct {
	VisaSponsorship     *bool        `json:"visa_sponsorship"`
	SalaryRange         *SalaryRange `json:"salary_range"`
	PostedDate          *string      `json:"posted_date"`
	ApplicationDeadline *string      `json:"application_deadline"`
}

// Metadata describes the extraction itself
type Metadata struct {
	ScrapingTimestamp *string  `json:"scraping_timestamp"`
	ConfidenceScore   *float64 `json:"confidence_score"`
	SourceURL         *string  `json:"source_url"`
}

// Result is a decoded scrape together with the exact bytes the service returned
type Result struct {
	Job ScrapedJob
	Raw json.RawMessage
}

// TitleText returns the trimmed title, or "" when absent
func (j *ScrapedJob) TitleText() string {
	if j.Title == nil {
		return ""
	}
	return strings.TrimSpace(*j.Title)
}

// CompanyName returns the trimmed company name, or "" when absent
func (j *ScrapedJob) CompanyName() string {
	if j.Company == nil {
		return ""
	}
	return strings.TrimSpace(*j.Company)
}
