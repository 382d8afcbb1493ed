package ingestion

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func result(job scrape.ScrapedJob) *scrape.Result {
	raw, _ := json.Marshal(job)
	return &scrape.Result{Job: job, Raw: raw}
}

func TestNormalize_DedupesTagsPreservingOrder(t *testing.T) {
	in, err := Normalize(result(scrape.ScrapedJob{
		Title:             strPtr("Engineer"),
		TechnicalKeywords: []string{"Python", "SQL", "Python", "Go"},
		RoleTags:          []string{"backend", "Backend", "backend"},
	}), nil, Extra{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "SQL", "Go"}, in.TechnicalTags)
	assert.Equal(t, []string{"backend", "Backend"}, in.RoleTags)
}

func TestDedupeTags_ExactMatchOnly(t *testing.T) {
	assert.Equal(t, []string{"Go", " Go", "go", "Go "}, DedupeTags([]string{"Go", " Go", "go", "Go ", "Go", " Go"}))
	assert.Equal(t, []string{"SQL"}, DedupeTags([]string{"", "  ", "SQL", "\t"}))
	assert.Equal(t, []string{}, DedupeTags(nil))
}

func TestNormalize_NilTagsBecomeEmpty(t *testing.T) {
	in, err := Normalize(result(scrape.ScrapedJob{Title: strPtr("Engineer")}), nil, Extra{})
	require.NoError(t, err)

	assert.NotNil(t, in.TechnicalTags)
	assert.Empty(t, in.TechnicalTags)
	assert.NotNil(t, in.RoleTags)
	assert.Empty(t, in.RoleTags)
}

func TestNormalize_SwapsInvertedSalary(t *testing.T) {
	in, err := Normalize(result(scrape.ScrapedJob{
		Title: strPtr("Engineer"),
		ImportantInfo: &scrape.ImportantInfo{
			SalaryRange: &scrape.SalaryRange{Min: floatPtr(200000), Max: floatPtr(100000)},
		},
	}), nil, Extra{})
	require.NoError(t, err)

	require.NotNil(t, in.SalaryMin)
	require.NotNil(t, in.SalaryMax)
	assert.Equal(t, 100000.0, *in.SalaryMin)
	assert.Equal(t, 200000.0, *in.SalaryMax)
	assert.Nil(t, in.SalaryCurrency)
}

func TestNormalize_SingleSalaryBound(t *testing.T) {
	in, err := Normalize(result(scrape.ScrapedJob{
		Title: strPtr("Engineer"),
		ImportantInfo: &scrape.ImportantInfo{
			SalaryRange: &scrape.SalaryRange{Max: floatPtr(90000), Currency: strPtr("EUR")},
		},
	}), nil, Extra{})
	require.NoError(t, err)

	assert.Nil(t, in.SalaryMin)
	require.NotNil(t, in.SalaryMax)
	assert.Equal(t, 90000.0, *in.SalaryMax)
	assert.Equal(t, "EUR", *in.SalaryCurrency)
}

func TestNormalize_MissingTitleFails(t *testing.T) {
	for name, title := range map[string]*string{
		"absent": nil,
		"empty":  strPtr(""),
		"blank":  strPtr("   "),
	} {
		t.Run(name, func(t *testing.T) {
			in, err := Normalize(result(scrape.ScrapedJob{Title: title, Company: strPtr("Acme")}), nil, Extra{URL: "https://x.test/1"})
			assert.Nil(t, in)
			var incomplete *IncompleteScrapeError
			require.ErrorAs(t, err, &incomplete)
			assert.Equal(t, "title", incomplete.Field)
		})
	}

	_, err := Normalize(nil, nil, Extra{})
	var incomplete *IncompleteScrapeError
	assert.ErrorAs(t, err, &incomplete)
}

func TestNormalize_StatusAlwaysSaved(t *testing.T) {
	// A status-like hint in the payload is not part of the decoded shape and is ignored
	raw := []byte(`{"title": "Engineer", "status": "OFFERED"}`)
	res, err := scrape.Decode("https://x.test/1", raw)
	require.NoError(t, err)

	in, err := Normalize(res, nil, Extra{})
	require.NoError(t, err)
	assert.Equal(t, db.StatusSaved, in.Status)
	assert.JSONEq(t, string(raw), string(in.ScraperData))
}

func TestNormalize_MapsAllFields(t *testing.T) {
	companyID := uuid.New()
	resumeID := uuid.New()
	notes := "referred by Sam"

	res := result(scrape.ScrapedJob{
		Company: strPtr("Tech Corp"),
		Title:   strPtr("  Software Intern "),
		Location: &scrape.Location{
			City: strPtr("Austin"), State: strPtr(" TX "), Country: strPtr(""), RemoteStatus: strPtr("Hybrid"),
		},
		Employment: &scrape.Employment{
			Type: strPtr("internship"), Term: strPtr("Summer 2025"),
			StartDate: strPtr("2025-06-01"), EndDate: strPtr("August 29, 2025"), Duration: strPtr("12 weeks"),
		},
		ImportantInfo: &scrape.ImportantInfo{
			VisaSponsorship:     boolPtr(false),
			PostedDate:          strPtr("2024-01-10T09:30:00Z"),
			ApplicationDeadline: strPtr("sometime soon"),
		},
		MarkdownDescription: strPtr("# Intern\r\n\r\n\r\n\r\nBuild things.   \r\n"),
		Metadata:            &scrape.Metadata{ConfidenceScore: floatPtr(0.87)},
	})

	in, err := Normalize(res, &companyID, Extra{URL: "https://jobs.example.com/9", ResumeID: &resumeID, Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "Software Intern", in.Title)
	assert.Equal(t, &companyID, in.CompanyID)
	assert.Equal(t, "https://jobs.example.com/9", *in.URL)
	assert.Equal(t, &resumeID, in.ResumeID)
	assert.Equal(t, "referred by Sam", *in.Notes)

	assert.Equal(t, "internship", *in.JobType)
	assert.Equal(t, "Summer 2025", *in.Term)
	assert.Equal(t, "2025-06-01", in.StartDate.String())
	assert.Equal(t, "2025-08-29", in.EndDate.String())
	assert.Equal(t, "12 weeks", *in.Duration)

	assert.Equal(t, "Austin", *in.City)
	assert.Equal(t, "TX", *in.State)
	assert.Nil(t, in.Country)
	assert.Equal(t, "Hybrid", *in.RemoteStatus)

	require.NotNil(t, in.VisaSponsorship)
	assert.False(t, *in.VisaSponsorship)
	assert.Equal(t, "2024-01-10", in.PostedDate.String())
	assert.Nil(t, in.ApplicationDeadline, "unparsable dates are dropped")

	assert.Equal(t, "# Intern\n\nBuild things.", *in.MarkdownContent)
	assert.Equal(t, 0.87, *in.ConfidenceScore)
	assert.Equal(t, []byte(res.Raw), []byte(in.ScraperData))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-01-10", "2024-01-10"},
		{"2024-01-10T23:30:00-05:00", "2024-01-10"},
		{"2024-01-10T08:00:00", "2024-01-10"},
		{"2024-01-10 08:00:00", "2024-01-10"},
		{"January 5, 2025", "2025-01-05"},
		{"Jan 5, 2025", "2025-01-05"},
		{"5 January 2025", "2025-01-05"},
		{"03/15/2025", "2025-03-15"},
		{"2025/03/15", "2025-03-15"},
		{"June 2025", "2025-06-01"},
		{"  2024-02-29 ", "2024-02-29"},
		{"ASAP", ""},
		{"2024-02-30", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDate(&tt.input)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}

	assert.Nil(t, ParseDate(nil))
}

func TestComposeLocation(t *testing.T) {
	assert.Equal(t, "Austin, TX, USA", ComposeLocation(strPtr("Austin"), strPtr("TX"), strPtr("USA")))
	assert.Equal(t, "Austin, USA", ComposeLocation(strPtr("Austin"), nil, strPtr("USA")))
	assert.Equal(t, "Berlin", ComposeLocation(strPtr(" "), strPtr("Berlin"), strPtr("")))
	assert.Equal(t, "", ComposeLocation(nil, nil, nil))
}

func TestCleanMarkdown(t *testing.T) {
	assert.Equal(t, "", CleanMarkdown(""))
	assert.Equal(t, "# Title\n\n- one\n  - nested", CleanMarkdown("\n# Title  \r\n\r\n\r\n- one\n  - nested\t\n\n"))
}
