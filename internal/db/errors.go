package db

import "errors"

var (
	// ErrNotFound is returned when a row does not exist or is owned by another user
	ErrNotFound = errors.New("not found")

	// ErrCompanyExists is returned when a company with the same case-folded name already exists
	ErrCompanyExists = errors.New("company already exists")

	// ErrEmailExists is returned when registering an email that is already taken
	ErrEmailExists = errors.New("email already registered")
)
