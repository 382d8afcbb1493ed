package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Auth holds the secrets the API server needs. They are read from the
// environment only and never from the config file.
type Auth struct {
	JWT       *JWTConfig
	Passwords *PasswordConfig
}

// JWTConfig controls the access tokens issued at login
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// PasswordConfig controls password hashing
type PasswordConfig struct {
	BcryptCost int
	Pepper     string
}

// bcrypt ignores input past 72 bytes
const maxPasswordBytes = 72

// ErrPasswordTooLong is returned when the password plus pepper exceeds what bcrypt hashes
var ErrPasswordTooLong = errors.New("password is too long")

// LoadAuth reads the auth settings:
//
//	JWT_SECRET            required, at least 16 characters
//	JWT_EXPIRATION_HOURS  default 24
//	JWT_ISSUER            default "job-tracker"
//	BCRYPT_COST           default 12, between 10 and 14
//	PASSWORD_PEPPER       optional
func LoadAuth() (*Auth, error) {
	hours, err := envInt("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cost, err := envInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}

	a := &Auth{
		JWT: &JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			ExpirationHours: hours,
			Issuer:          envString("JWT_ISSUER", "job-tracker"),
		},
		Passwords: &PasswordConfig{
			BcryptCost: cost,
			Pepper:     os.Getenv("PASSWORD_PEPPER"),
		},
	}
	if err := a.JWT.Validate(); err != nil {
		return nil, err
	}
	if err := a.Passwords.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the token settings
func (c *JWTConfig) Validate() error {
	switch {
	case c.Secret == "":
		return fmt.Errorf("JWT_SECRET is required but not set")
	case len(c.Secret) < 16:
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	case c.ExpirationHours < 1:
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// TTL is how long an issued token stays valid
func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// Validate checks the hashing settings
func (c *PasswordConfig) Validate() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashPassword hashes pw with bcrypt after appending the pepper.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	peppered := pw + c.Pepper
	if len(peppered) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(peppered), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return n, nil
}
