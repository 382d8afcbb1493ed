package db

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJobQuery_NoFilters(t *testing.T) {
	userID := uuid.New()

	query, args := buildJobQuery(userID, JobFilters{})

	assert.Contains(t, query, "WHERE j.user_id = $1 ORDER BY j.updated_at DESC")
	assert.NotContains(t, query, "LIMIT")
	assert.NotContains(t, query, "OFFSET")
	require.Len(t, args, 1)
	assert.Equal(t, userID, args[0])
}

func TestBuildJobQuery_AllFilters(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()
	status := StatusApplied
	minSalary := 50000.0
	maxSalary := 90000.0
	visa := true

	query, args := buildJobQuery(userID, JobFilters{
		Status:          &status,
		CompanyID:       &companyID,
		Title:           "engineer",
		JobType:         "internship",
		Term:            "Summer 2025",
		TechnicalTags:   []string{"Go", "SQL"},
		RoleTags:        []string{"backend"},
		Location:        "york",
		SalaryMin:       &minSalary,
		SalaryMax:       &maxSalary,
		RemoteStatus:    "remote",
		VisaSponsorship: &visa,
		Limit:           10,
		Offset:          20,
	})

	for _, clause := range []string{
		"j.status = $2",
		"j.company_id = $3",
		"j.title ILIKE $4",
		"j.job_type = $5",
		"j.term = $6",
		"j.technical_tags && $7::text[]",
		"j.role_tags && $8::text[]",
		"(j.city ILIKE $9 OR j.state ILIKE $9 OR j.country ILIKE $9)",
		"j.salary_min >= $10",
		"j.salary_max <= $11",
		"j.remote_status = $12",
		"j.visa_sponsorship = $13",
		"LIMIT $14",
		"OFFSET $15",
	} {
		assert.Contains(t, query, clause)
	}

	require.Len(t, args, 15)
	assert.Equal(t, "APPLIED", args[1])
	assert.Equal(t, "%engineer%", args[3])
	assert.Equal(t, []string{"Go", "SQL"}, args[6])
	assert.Equal(t, "%york%", args[8])
	assert.Equal(t, 50000.0, args[9])
	assert.Equal(t, true, args[12])
	assert.Equal(t, 10, args[13])
	assert.Equal(t, 20, args[14])

	// Conditions are ANDed and ordering comes after them
	assert.Equal(t, 12, strings.Count(query, " AND "))
	assert.Less(t, strings.Index(query, "WHERE"), strings.Index(query, "ORDER BY j.updated_at DESC"))
}

func TestBuildJobQuery_FalseVisaSponsorshipIsApplied(t *testing.T) {
	visa := false

	query, args := buildJobQuery(uuid.New(), JobFilters{VisaSponsorship: &visa})

	assert.Contains(t, query, "j.visa_sponsorship = $2")
	assert.Equal(t, false, args[1])
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%new york%", containsPattern("new york"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, containsPattern(`c:\dir`))
}

func TestJobUpdateSets(t *testing.T) {
	title := "Staff Engineer"
	status := StatusOffered

	sets, args := jobUpdateSets(JobUpdate{Title: &title, Status: &status, ClearCompany: true})

	assert.Equal(t, []string{"title = $1", "company_id = NULL", "status = $2"}, sets)
	assert.Equal(t, []interface{}{"Staff Engineer", "OFFERED"}, args)
}
