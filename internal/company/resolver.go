// Package company resolves scraped employer names to canonical company records
// and exposes manual company management.
package company

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/rs/zerolog/log"
)

// Finder looks up and creates companies by name
type Finder interface {
	FindCompanyByName(ctx context.Context, name string) (*db.Company, error)
	InsertCompany(ctx context.Context, in db.CompanyInsert) (*db.Company, error)
}

// Resolver maps a free-text company name to a single company row, creating it on first sight.
type Resolver struct {
	store Finder
}

// NewResolver creates a Resolver backed by store
func NewResolver(store Finder) *Resolver {
	return &Resolver{store: store}
}

// FindOrCreate returns the oldest company whose name matches name ignoring case,
// inserting {name, location} when none exists. An existing company is returned as-is;
// location is only used when inserting. A concurrent insert of the same name is
// resolved by re-reading the row that won.
func (r *Resolver) FindOrCreate(ctx context.Context, name, location string) (*db.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &InvalidInputError{Field: "name", Message: "company name cannot be empty"}
	}

	existing, err := r.store.FindCompanyByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	in := db.CompanyInsert{Name: name}
	if loc := strings.TrimSpace(location); loc != "" {
		in.Location = &loc
	}

	created, err := r.store.InsertCompany(ctx, in)
	if err == nil {
		log.Debug().Str("company_id", created.ID.String()).Str("name", name).Msg("created company")
		return created, nil
	}
	if !errors.Is(err, db.ErrCompanyExists) {
		return nil, err
	}

	winner, err := r.store.FindCompanyByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("company %q conflicted on insert but could not be re-read", name)
	}
	log.Debug().Str("company_id", winner.ID.String()).Str("name", name).Msg("company created concurrently, using existing row")
	return winner, nil
}
