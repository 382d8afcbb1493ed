package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/jobs"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/spf13/cobra"
)

// jobsFlags are the filter flags of the jobs command
type jobsFlags struct {
	user          string
	status        string
	company       string
	title         string
	jobType       string
	term          string
	technicalTags []string
	roleTags      []string
	location      string
	salaryMin     float64
	salaryMax     float64
	remoteStatus  string
	visa          string
	internships   bool
	limit         int
	offset        int
}

var jobsOpts jobsFlags

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List a user's jobs as JSON",
	Long:  "List the jobs of --user, most recently updated first. Every filter flag given narrows the list.",
	RunE:  runJobs,
}

func init() {
	f := jobsCmd.Flags()
	f.StringVar(&jobsOpts.user, "user", "", "Owner user ID (required)")
	f.StringVar(&jobsOpts.status, "status", "", "SAVED, APPLIED, INTERVIEWING, OFFERED or REJECTED")
	f.StringVar(&jobsOpts.company, "company", "", "Company ID")
	f.StringVar(&jobsOpts.title, "title", "", "Case-insensitive title substring")
	f.StringVar(&jobsOpts.jobType, "job-type", "", "Exact job type")
	f.StringVar(&jobsOpts.term, "term", "", "Exact term, e.g. \"Summer 2025\"")
	f.StringSliceVar(&jobsOpts.technicalTags, "technical-tags", nil, "Jobs with any of these technical tags")
	f.StringSliceVar(&jobsOpts.roleTags, "role-tags", nil, "Jobs with any of these role tags")
	f.StringVar(&jobsOpts.location, "location", "", "Substring of city, state or country")
	f.Float64Var(&jobsOpts.salaryMin, "salary-min", 0, "Minimum salary_min")
	f.Float64Var(&jobsOpts.salaryMax, "salary-max", 0, "Maximum salary_max")
	f.StringVar(&jobsOpts.remoteStatus, "remote-status", "", "Exact remote status")
	f.StringVar(&jobsOpts.visa, "visa", "", "Visa sponsorship, true or false")
	f.BoolVar(&jobsOpts.internships, "internships", false, "Only internships (combine with --term)")
	f.IntVar(&jobsOpts.limit, "limit", jobs.DefaultLimit, "Page size")
	f.IntVar(&jobsOpts.offset, "offset", 0, "Rows to skip")

	_ = jobsCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(jobsOpts.user)
	if err != nil {
		return fmt.Errorf("invalid --user %q: %w", jobsOpts.user, err)
	}

	filters, err := jobsOpts.filters(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.jobs.FindMany(cmd.Context(), userID, filters)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(types.JobsResponse{Jobs: list, Count: len(list)})
}

// filters converts the flags into job filters. Numeric flags count only when set.
func (o jobsFlags) filters(cmd *cobra.Command) (db.JobFilters, error) {
	f := db.JobFilters{
		Title:         o.title,
		JobType:       o.jobType,
		Term:          o.term,
		TechnicalTags: o.technicalTags,
		RoleTags:      o.roleTags,
		Location:      o.location,
		RemoteStatus:  o.remoteStatus,
		Limit:         jobs.ClampLimit(o.limit),
		Offset:        o.offset,
	}
	if o.internships {
		f.JobType = jobs.InternshipJobType
	}

	if o.status != "" {
		st, err := db.ParseStatus(o.status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if o.company != "" {
		id, err := uuid.Parse(o.company)
		if err != nil {
			return f, fmt.Errorf("invalid --company %q: %w", o.company, err)
		}
		f.CompanyID = &id
	}
	if cmd.Flags().Changed("salary-min") {
		v := o.salaryMin
		f.SalaryMin = &v
	}
	if cmd.Flags().Changed("salary-max") {
		v := o.salaryMax
		f.SalaryMax = &v
	}
	if o.visa != "" {
		b, err := strconv.ParseBool(o.visa)
		if err != nil {
			return f, fmt.Errorf("invalid --visa %q: must be true or false", o.visa)
		}
		f.VisaSponsorship = &b
	}
	if f.Offset < 0 {
		return f, fmt.Errorf("--offset must not be negative")
	}
	return f, nil
}
