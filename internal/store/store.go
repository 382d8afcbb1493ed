// Package store opens the configured storage backend.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/localdb"
)

// Store is everything the services need from storage. Both *db.DB and
// *localdb.Store implement it.
type Store interface {
	// Companies
	FindCompanyByName(ctx context.Context, name string) (*db.Company, error)
	InsertCompany(ctx context.Context, in db.CompanyInsert) (*db.Company, error)
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*db.Company, error)
	ListCompanies(ctx context.Context, filters db.CompanyFilters) ([]db.Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, u db.CompanyUpdate) (*db.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	GetCompanyStats(ctx context.Context, id uuid.UUID) (*db.CompanyStats, error)

	// Jobs
	InsertJob(ctx context.Context, in *db.JobInsert) (*db.Job, error)
	GetJob(ctx context.Context, userID, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, userID uuid.UUID, filters db.JobFilters) ([]db.Job, error)
	UpdateJob(ctx context.Context, userID, id uuid.UUID, u db.JobUpdate) (*db.Job, error)
	DeleteJob(ctx context.Context, userID, id uuid.UUID) error

	// Users
	CreateUser(ctx context.Context, name, email, passwordHash string) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*db.DB)(nil)
	_ Store = (*localdb.Store)(nil)
)

// Open connects to the backend named by cfg.StorageDriver. The SQLite store is
// migrated on open; call Migrate for Postgres.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pg, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverSQLite:
		local, err := localdb.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
