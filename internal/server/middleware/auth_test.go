package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapValidator accepts the tokens in its map
type mapValidator map[string]uuid.UUID

func (v mapValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	userID, ok := v[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(userID), nil
}

type testClaims uuid.UUID

func (c testClaims) GetUserID() uuid.UUID { return uuid.UUID(c) }

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r)
		assert.NoError(t, err)
		_, _ = w.Write([]byte(userID.String()))
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	handler := AuthMiddleware(mapValidator{"good-token": userID})(echoUser(t))

	for _, header := range []string{"Bearer good-token", "bearer good-token", "BEARER   good-token"} {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, header)
		assert.Equal(t, userID.String(), rec.Body.String())
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	handler := AuthMiddleware(mapValidator{"good-token": uuid.New()})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler should not run")
	}))

	for _, header := range []string{"", "good-token", "Basic good-token", "Bearer", "Bearer bad-token", "Bearer good-token extra"} {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	}
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := GetUserID(req)
	assert.ErrorIs(t, err, ErrNoUser)

	got, err := GetUserID(req.WithContext(WithUserID(req.Context(), userID)))
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	wrongType := req.WithContext(context.WithValue(req.Context(), userIDKey, userID.String()))
	_, err = GetUserID(wrongType)
	assert.ErrorIs(t, err, ErrNoUser)
}
