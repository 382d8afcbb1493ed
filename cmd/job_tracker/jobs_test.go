package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseJobsFlags runs the jobs flag set over args and returns the filters
func parseJobsFlags(t *testing.T, args ...string) (db.JobFilters, error) {
	t.Helper()
	var opts jobsFlags
	cmd := &cobra.Command{Use: "jobs"}
	f := cmd.Flags()
	f.StringVar(&opts.status, "status", "", "")
	f.StringVar(&opts.company, "company", "", "")
	f.StringVar(&opts.term, "term", "", "")
	f.StringSliceVar(&opts.technicalTags, "technical-tags", nil, "")
	f.Float64Var(&opts.salaryMin, "salary-min", 0, "")
	f.Float64Var(&opts.salaryMax, "salary-max", 0, "")
	f.StringVar(&opts.visa, "visa", "", "")
	f.BoolVar(&opts.internships, "internships", false, "")
	f.IntVar(&opts.limit, "limit", 50, "")
	f.IntVar(&opts.offset, "offset", 0, "")
	require.NoError(t, f.Parse(args))
	return opts.filters(cmd)
}

func TestJobsFlags_Filters(t *testing.T) {
	companyID := uuid.New()
	f, err := parseJobsFlags(t,
		"--status", "offered",
		"--company", companyID.String(),
		"--internships", "--term", "Summer 2025",
		"--technical-tags", "Go,SQL",
		"--salary-min", "0",
		"--visa", "true",
		"--limit", "1000",
	)
	require.NoError(t, err)

	assert.Equal(t, db.StatusOffered, *f.Status)
	assert.Equal(t, companyID, *f.CompanyID)
	assert.Equal(t, "internship", f.JobType)
	assert.Equal(t, "Summer 2025", f.Term)
	assert.Equal(t, []string{"Go", "SQL"}, f.TechnicalTags)
	require.NotNil(t, f.SalaryMin, "an explicit zero is a filter")
	assert.Zero(t, *f.SalaryMin)
	assert.Nil(t, f.SalaryMax)
	assert.True(t, *f.VisaSponsorship)
	assert.Equal(t, 100, f.Limit)
}

func TestJobsFlags_Rejects(t *testing.T) {
	for _, args := range [][]string{
		{"--status", "ghosted"},
		{"--company", "acme"},
		{"--visa", "sometimes"},
		{"--offset", "-1"},
	} {
		_, err := parseJobsFlags(t, args...)
		assert.Error(t, err, args)
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "ingest", "jobs", "migrate"} {
		assert.True(t, names[want], want)
	}
}
