package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	ingestUser        string
	ingestResume      string
	ingestNotes       string
	ingestConcurrency int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest URL...",
	Short: "Ingest job postings by URL",
	Long: `Scrape each URL through the scraper service and store the result as a SAVED job
for --user. One JSON line is printed per URL, in argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestUser, "user", "", "Owner user ID (required)")
	ingestCmd.Flags().StringVar(&ingestResume, "resume", "", "Resume ID to attach to every job")
	ingestCmd.Flags().StringVar(&ingestNotes, "notes", "", "Notes to attach to every job")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 4, "Maximum ingestions in flight")

	_ = ingestCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(ingestCmd)
}

// ingester is the part of the ingestion service the command uses
type ingester interface {
	Ingest(ctx context.Context, req ingestion.Request) (*db.Job, error)
}

// ingestResult is the outcome for one URL
type ingestResult struct {
	URL   string  `json:"url"`
	Job   *db.Job `json:"job,omitempty"`
	Error string  `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	template, err := ingestTemplate(ingestUser, ingestResume, ingestNotes)
	if err != nil {
		return err
	}
	if ingestConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	results := ingestAll(cmd.Context(), a.ingester, template, args, ingestConcurrency)
	return reportIngest(cmd.OutOrStdout(), results)
}

// ingestTemplate builds the request shared by every URL
func ingestTemplate(user, resume, notes string) (ingestion.Request, error) {
	var req ingestion.Request

	userID, err := uuid.Parse(user)
	if err != nil {
		return req, fmt.Errorf("invalid --user %q: %w", user, err)
	}
	req.UserID = userID

	if resume != "" {
		resumeID, err := uuid.Parse(resume)
		if err != nil {
			return req, fmt.Errorf("invalid --resume %q: %w", resume, err)
		}
		req.ResumeID = &resumeID
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		req.Notes = &notes
	}
	return req, nil
}

// ingestAll ingests urls with at most limit in flight. A failed URL does not stop the others.
func ingestAll(ctx context.Context, svc ingester, template ingestion.Request, urls []string, limit int) []ingestResult {
	results := make([]ingestResult, len(urls))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			req := template
			req.URL = u
			results[i].URL = u

			job, err := svc.Ingest(ctx, req)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Job = job
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// reportIngest writes one JSON line per result and fails if any URL failed
func reportIngest(w io.Writer, results []ingestResult) error {
	enc := json.NewEncoder(w)
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d ingestions failed", failed, len(results))
	}
	return nil
}
