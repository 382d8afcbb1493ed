// Package server provides the HTTP REST API for the job tracker.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/ingestion"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/server/ratelimit"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/rs/zerolog/log"
)

// JobService is the job query and CRUD service
type JobService interface {
	FindMany(ctx context.Context, userID uuid.UUID, filters db.JobFilters) ([]db.Job, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*db.Job, error)
	Create(ctx context.Context, userID uuid.UUID, req types.CreateJobRequest) (*db.Job, error)
	Update(ctx context.Context, userID, id uuid.UUID, req types.UpdateJobRequest) (*db.Job, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) (*db.Job, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// CompanyService manages companies
type CompanyService interface {
	List(ctx context.Context, filters db.CompanyFilters) ([]db.Company, error)
	Get(ctx context.Context, id uuid.UUID) (*db.Company, error)
	Create(ctx context.Context, in db.CompanyInsert) (*db.Company, error)
	Update(ctx context.Context, id uuid.UUID, u db.CompanyUpdate) (*db.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*db.CompanyStats, error)
}

// Ingester turns a posting URL into a stored job
type Ingester interface {
	Ingest(ctx context.Context, req ingestion.Request) (*db.Job, error)
}

// Deps are the services the server routes to
type Deps struct {
	Jobs      JobService
	Companies CompanyService
	Ingester  Ingester
	Users     UserStore
	Passwords *config.PasswordConfig
	JWT       *config.JWTConfig

	// RateLimit defaults to ratelimit.LoadConfig() when nil
	RateLimit *ratelimit.Config

	// Ping reports storage health for GET /health; optional
	Ping func(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Addr string

	// ScrapeTimeout bounds a magic-scrape request, including retries; zero means no bound
	ScrapeTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	handler       http.Handler
	deps          Deps
	scrapeTimeout time.Duration
	rateLimiter   *ratelimit.Limiter
	jwtService    *JWTService
	authHandler   *AuthHandler
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Jobs == nil || deps.Companies == nil || deps.Ingester == nil || deps.Users == nil {
		return nil, fmt.Errorf("server requires job, company, ingestion and user services")
	}
	if deps.Passwords == nil || deps.JWT == nil {
		return nil, fmt.Errorf("server requires password and JWT configuration")
	}

	rlConfig := deps.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		deps:          deps,
		scrapeTimeout: cfg.ScrapeTimeout,
		rateLimiter:   ratelimit.NewLimiter(rlConfig),
		jwtService:    NewJWTService(deps.JWT),
	}
	s.authHandler = NewAuthHandler(NewUserService(deps.Users, deps.Passwords), s.jwtService)

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /users/me", protect(s.authHandler.Me))

	// Jobs
	mux.Handle("POST /jobs/magic-scrape", protect(s.handleMagicScrape))
	mux.Handle("GET /jobs", protect(s.handleListJobs))
	mux.Handle("POST /jobs", protect(s.handleCreateJob))
	mux.Handle("GET /jobs/{id}", protect(s.handleGetJob))
	mux.Handle("PUT /jobs/{id}", protect(s.handleUpdateJob))
	mux.Handle("PATCH /jobs/{id}/status", protect(s.handleUpdateJobStatus))
	mux.Handle("DELETE /jobs/{id}", protect(s.handleDeleteJob))

	// Companies
	mux.Handle("GET /companies", protect(s.handleListCompanies))
	mux.Handle("POST /companies", protect(s.handleCreateCompany))
	mux.Handle("GET /companies/{id}", protect(s.handleGetCompany))
	mux.Handle("PUT /companies/{id}", protect(s.handleUpdateCompany))
	mux.Handle("DELETE /companies/{id}", protect(s.handleDeleteCompany))
	mux.Handle("GET /companies/{id}/stats", protect(s.handleCompanyStats))
	mux.Handle("GET /companies/{id}/jobs", protect(s.handleCompanyJobs))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))

	writeTimeout := 60 * time.Second
	if cfg.ScrapeTimeout > 0 {
		writeTimeout = max(writeTimeout, cfg.ScrapeTimeout+30*time.Second)
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled or the process receives SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// Close releases background resources without serving
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their tier's limit with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging logs one line per request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Str("remote", clientID(r)).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientID identifies the client by the IP in RemoteAddr
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		retryAfter := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = retryAfter
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}

	log.Warn().
		Str("client", clientID(r)).
		Str("tier", info.Tier).
		Int("limit", info.Limit).
		Msg("rate limit exceeded")

	jsonResponse(w, http.StatusTooManyRequests, response)
}
