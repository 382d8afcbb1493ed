// Package localdb is a single-file SQLite store for companies, jobs and users.
// It implements the same methods as the PostgreSQL store in package db and is
// meant for local use and tests.
package localdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps a gorm SQLite connection
type Store struct {
	db *gorm.DB
}

type companyRow struct {
	ID        uuid.UUID `gorm:"primaryKey;type:text"`
	Name      string    `gorm:"not null"`
	NameKey   string    `gorm:"not null;uniqueIndex"` // lower-cased name
	SearchKey string    `gorm:"not null;default:''"`
	Website   *string
	Industry  *string `gorm:"index"`
	Location  *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (companyRow) TableName() string { return "companies" }

type jobRow struct {
	ID              uuid.UUID   `gorm:"primaryKey;type:text"`
	UserID          uuid.UUID   `gorm:"type:text;not null;index:jobs_user_updated_idx,priority:1"`
	CompanyID       *uuid.UUID  `gorm:"type:text;index"`
	Company         *companyRow `gorm:"foreignKey:CompanyID"`
	Title           string      `gorm:"not null"`
	TitleKey        string      `gorm:"not null;default:''"`
	URL             *string
	Status          string `gorm:"not null;default:SAVED"`
	ApplicationDate *time.Time
	ResumeID        *uuid.UUID `gorm:"type:text"`
	Notes           *string

	JobType             *string
	Term                *string
	StartDate           *time.Time
	EndDate             *time.Time
	Duration            *string
	City                *string
	State               *string
	Country             *string
	LocationKey         string `gorm:"not null;default:''"`
	RemoteStatus        *string
	VisaSponsorship     *bool
	TechnicalTags       datatypes.JSONSlice[string]
	RoleTags            datatypes.JSONSlice[string]
	SalaryMin           *float64
	SalaryMax           *float64
	SalaryCurrency      *string
	PostedDate          *time.Time
	ApplicationDeadline *time.Time
	MarkdownContent     *string
	ScraperData         datatypes.JSON
	ConfidenceScore     *float64

	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index:jobs_user_updated_idx,priority:2"`
}

func (jobRow) TableName() string { return "jobs" }

type userRow struct {
	ID           uuid.UUID `gorm:"primaryKey;type:text"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null;default:''"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

// Substring filters compare Go-lowercased key columns against a Go-lowercased
// pattern. SQLite's LOWER only folds ASCII.

// foldKey lower-cases the non-empty parts and joins them with newlines, so a
// pattern without a newline only matches inside one part.
func foldKey(parts ...*string) string {
	var kept []string
	for _, p := range parts {
		if p != nil && *p != "" {
			kept = append(kept, strings.ToLower(*p))
		}
	}
	return strings.Join(kept, "\n")
}

func (r *companyRow) refreshKeys() {
	r.NameKey = strings.ToLower(r.Name)
	r.SearchKey = foldKey(&r.Name, r.Industry, r.Location)
}

func (r *jobRow) refreshKeys() {
	r.TitleKey = strings.ToLower(r.Title)
	r.LocationKey = foldKey(r.City, r.State, r.Country)
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = path + "?_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" shared
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates or updates the tables
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&userRow{}, &companyRow{}, &jobRow{}); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	return s.backfillKeys(ctx)
}

// backfillKeys fills the key columns of rows written before they existed
func (s *Store) backfillKeys(ctx context.Context) error {
	var companies []companyRow
	err := s.db.WithContext(ctx).Where("search_key = ''").
		FindInBatches(&companies, 200, func(tx *gorm.DB, _ int) error {
			for i := range companies {
				companies[i].refreshKeys()
				if err := tx.Model(&companies[i]).UpdateColumn("search_key", companies[i].SearchKey).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("backfill company keys: %w", err)
	}

	var jobs []jobRow
	err = s.db.WithContext(ctx).Where("title_key = ''").
		FindInBatches(&jobs, 200, func(tx *gorm.DB, _ int) error {
			for i := range jobs {
				jobs[i].refreshKeys()
				if err := tx.Model(&jobs[i]).UpdateColumns(map[string]any{
					"title_key":    jobs[i].TitleKey,
					"location_key": jobs[i].LocationKey,
				}).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("backfill job keys: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// containsPattern builds a LIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally. Use with ESCAPE '\'.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
