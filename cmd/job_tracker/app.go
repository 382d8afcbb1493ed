package main

import (
	"context"
	"fmt"

	"github.com/jonathan/job-tracker/internal/company"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/events"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/jonathan/job-tracker/internal/jobs"
	"github.com/jonathan/job-tracker/internal/scrape"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/rs/zerolog/log"
)

// app holds the services shared by the commands
type app struct {
	store     store.Store
	publisher events.Publisher
	companies *company.Service
	jobs      *jobs.Service
	ingester  *ingestion.Service
}

// newApp opens storage and wires the services described by c
func newApp(ctx context.Context, c *config.Config) (*app, error) {
	st, err := store.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", c.StorageDriver, err)
	}

	publisher, err := newPublisher(ctx, c.RedisURL)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	resolver := company.NewResolver(st)
	return &app{
		store:     st,
		publisher: publisher,
		companies: company.NewService(st),
		jobs:      jobs.NewService(st, resolver),
		ingester:  ingestion.NewService(newScraper(c), resolver, st, publisher),
	}, nil
}

func newScraper(c *config.Config) scrape.Scraper {
	opts := scrape.DefaultOptions()
	opts.Timeout = c.ScraperTimeout.Duration

	var s scrape.Scraper = scrape.New(c.ScraperURL, opts)
	if c.ScraperMaxAttempts > 1 {
		s = scrape.WithRetry(s, c.ScraperMaxAttempts, c.ScraperRetryBackoff.Duration)
	}
	return s
}

func newPublisher(ctx context.Context, redisURL string) (events.Publisher, error) {
	if redisURL == "" {
		return events.Nop{}, nil
	}
	rdb, err := events.NewRedisClient(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Msg("publishing ingestion events to redis")
	return events.NewRedisPublisher(rdb), nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		log.Warn().Err(err).Msg("closing event publisher")
	}
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("closing storage")
	}
}
