package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-0123456789"

func setAuthEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{"JWT_SECRET", "JWT_EXPIRATION_HOURS", "JWT_ISSUER", "BCRYPT_COST", "PASSWORD_PEPPER"} {
		t.Setenv(k, env[k])
	}
}

func TestLoadAuth_Defaults(t *testing.T) {
	setAuthEnv(t, map[string]string{"JWT_SECRET": testSecret})

	a, err := LoadAuth()
	require.NoError(t, err)
	assert.Equal(t, testSecret, a.JWT.Secret)
	assert.Equal(t, 24, a.JWT.ExpirationHours)
	assert.Equal(t, "job-tracker", a.JWT.Issuer)
	assert.Equal(t, 24*time.Hour, a.JWT.TTL())
	assert.Equal(t, 12, a.Passwords.BcryptCost)
	assert.Empty(t, a.Passwords.Pepper)
}

func TestLoadAuth(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{name: "custom values", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRATION_HOURS": "12", "BCRYPT_COST": "10", "PASSWORD_PEPPER": "pepper"}},
		{name: "missing secret", env: map[string]string{}, errMsg: "JWT_SECRET is required"},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, errMsg: "at least 16 characters"},
		{name: "zero hours", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRATION_HOURS": "0"}, errMsg: "at least 1 hour"},
		{name: "hours not a number", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRATION_HOURS": "soon"}, errMsg: "invalid JWT_EXPIRATION_HOURS"},
		{name: "cost too low", env: map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "9"}, errMsg: "bcrypt cost out of range"},
		{name: "cost too high", env: map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "15"}, errMsg: "bcrypt cost out of range"},
		{name: "cost not a number", env: map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "high"}, errMsg: "invalid BCRYPT_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setAuthEnv(t, tt.env)

			a, err := LoadAuth()
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 12, a.JWT.ExpirationHours)
			assert.Equal(t, 10, a.Passwords.BcryptCost)
			assert.Equal(t, "pepper", a.Passwords.Pepper)
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "s3cret"}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))

	// A different pepper can't verify the hash
	other := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "other"}
	assert.False(t, other.VerifyPassword("correct horse", hash))
}

func TestHashPassword_TooLong(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper"}
	_, err := cfg.HashPassword(strings.Repeat("a", 70))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
