package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	cfg := testJWTConfig()
	logger := slog.Default()
	middleware := Authenticate(logger, cfg)

	okHandler := func(t *testing.T) (http.Handler, *bool) {
		called := false
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			userID, ok := GetUserIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, int64(42), userID)

			mail, ok := GetUserMailFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "amelie@example.com", mail)

			scopes, ok := GetUserScopesFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, []string{ScopeUser}, scopes)

			w.WriteHeader(http.StatusOK)
		}), &called
	}

	t.Run("ValidToken", func(t *testing.T) {
		signed, err := NewJWTTokenService(cfg).GenerateToken(42, "Amélie", "Poulain", "amelie@example.com", []string{ScopeUser})
		require.NoError(t, err)

		handler, called := okHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()

		middleware(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		handler, called := okHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		rec := httptest.NewRecorder()

		middleware(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("MalformedToken", func(t *testing.T) {
		handler, called := okHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		middleware(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		otherCfg := cfg
		otherCfg.Issuer = "someone-else"
		signed, err := NewJWTTokenService(otherCfg).GenerateToken(42, "Amélie", "Poulain", "amelie@example.com", []string{ScopeUser})
		require.NoError(t, err)

		handler, called := okHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()

		middleware(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})
}

func TestRequireScope(t *testing.T) {
	logger := slog.Default()

	withScopes := func(r *http.Request, scopes []string) *http.Request {
		ctx := context.WithValue(r.Context(), UserScopesKey, scopes)
		return r.WithContext(ctx)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("AllowsMatchingScope", func(t *testing.T) {
		req := withScopes(httptest.NewRequest(http.MethodPost, "/movie", nil), []string{ScopeAdmin})
		rec := httptest.NewRecorder()

		RequireScope(logger, ScopeAdmin)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("AllowsAnyOfSeveralScopes", func(t *testing.T) {
		req := withScopes(httptest.NewRequest(http.MethodGet, "/movies", nil), []string{ScopeUser})
		rec := httptest.NewRecorder()

		RequireScope(logger, ScopeAdmin, ScopeUser)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ForbidsMissingScope", func(t *testing.T) {
		req := withScopes(httptest.NewRequest(http.MethodPost, "/movies/export", nil), []string{ScopeUser})
		rec := httptest.NewRecorder()

		RequireScope(logger, ScopeAdmin)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("UnauthenticatedWithoutClaims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/movies/export", nil)
		rec := httptest.NewRecorder()

		RequireScope(logger, ScopeAdmin)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
