package main

import (
	"fmt"
	"time"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/server"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job, company and auth endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != "" {
		cfg.Port = servePort
	}

	auth, err := config.LoadAuth()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Config{
		Addr:          cfg.Addr(),
		ScrapeTimeout: scrapeBudget(cfg),
	}, server.Deps{
		Jobs:      a.jobs,
		Companies: a.companies,
		Ingester:  a.ingester,
		Users:     a.store,
		Passwords: auth.Passwords,
		JWT:       auth.JWT,
		Ping:      a.store.Ping,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(cmd.Context())
}

// scrapeBudget is the longest a magic-scrape request may take: every attempt
// plus the backoff between attempts.
func scrapeBudget(c *config.Config) time.Duration {
	attempts := max(c.ScraperMaxAttempts, 1)
	budget := time.Duration(attempts) * c.ScraperTimeout.Duration
	for i := 1; i < attempts; i++ {
		budget += c.ScraperRetryBackoff.Duration << (i - 1)
	}
	return budget
}
