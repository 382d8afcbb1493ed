package localdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"gorm.io/gorm"
)

func (r *userRow) toUser() *db.User {
	return &db.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// CreateUser inserts a user with an already hashed password.
// Returns db.ErrEmailExists if the email is taken.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (*db.User, error) {
	row := userRow{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return nil, db.ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return row.toUser(), nil
}

// GetUser retrieves a user by ID, or nil if none exists
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*db.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email, or nil if none exists
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	return s.findUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) findUser(ctx context.Context, query string, arg any) (*db.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toUser(), nil
}
