package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/burnsbros/taskdeck/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	jwtManager := security.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "alice@example.com", "Alice")
	assert.NoError(t, err)

	var gotID uuid.UUID
	var gotEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		gotEmail, _ = GetUserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	m := NewAuthMiddleware(jwtManager)
	req := httptest.NewRequest(http.MethodGet, "/api/workspaces", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	m.Authenticate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "alice@example.com", gotEmail)
}

func TestAuthenticate_Rejections(t *testing.T) {
	jwtManager := security.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	m := NewAuthMiddleware(jwtManager)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/workspaces", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			m.Authenticate(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]interface{}
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
		})
	}
}

type fakeLimiter struct {
	allowed   bool
	remaining int
	reset     time.Time
	err       error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	return f.allowed, f.remaining, f.reset, f.err
}

func limitedRequest(t *testing.T, limiter Limiter) *httptest.ResponseRecorder {
	t.Helper()

	jwtManager := security.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	token, err := jwtManager.GenerateAccessToken(uuid.New(), "bob@example.com", "Bob")
	assert.NoError(t, err)

	auth := NewAuthMiddleware(jwtManager)
	rate := NewRateLimitMiddleware(limiter)

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	auth.Authenticate(rate.Limit(okHandler())).ServeHTTP(rec, req)
	return rec
}

func TestLimit_Allowed(t *testing.T) {
	reset := time.Now().Add(time.Minute).Truncate(time.Second)
	rec := limitedRequest(t, &fakeLimiter{allowed: true, remaining: 42, reset: reset})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, reset.Format(time.RFC3339), rec.Header().Get("X-RateLimit-Reset"))
}

func TestLimit_ExceededReturns429Envelope(t *testing.T) {
	rec := limitedRequest(t, &fakeLimiter{allowed: false, remaining: 0, reset: time.Now().Add(time.Minute)})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "rate limit exceeded", body["error"])
}

func TestLimit_LimiterFailureLetsRequestThrough(t *testing.T) {
	rec := limitedRequest(t, &fakeLimiter{err: assert.AnError})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWorkspaceContext(t *testing.T) {
	t.Run("valid id", func(t *testing.T) {
		workspaceID := uuid.New()

		var got uuid.UUID
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = GetWorkspaceID(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/workspaces/"+workspaceID.String(), nil)
		req = withURLParam(req, "workspaceID", workspaceID.String())
		rec := httptest.NewRecorder()

		WorkspaceContext(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, workspaceID, got)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/workspaces/not-a-uuid", nil)
		req = withURLParam(req, "workspaceID", "not-a-uuid")
		rec := httptest.NewRecorder()

		WorkspaceContext(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
