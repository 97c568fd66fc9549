package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cowrite/internal/domain"
	"cowrite/internal/domain/models"
	"cowrite/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubVerifier struct {
	tokens map[string]string // token -> user id
}

func (s stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return &models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}, nil
}

func (stubVerifier) Close() error { return nil }

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(httputil.GetUserID(r)))
	})
}

func TestAuthMiddleware(t *testing.T) {
	mw := AuthMiddleware(stubVerifier{tokens: map[string]string{"good": "user-1"}}, discard, "/health")
	h := mw(echoUser())

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "/api/backups/import", "Bearer good", http.StatusOK, "user-1"},
		{"lowercase scheme", "/api/x", "bearer good", http.StatusOK, "user-1"},
		{"missing header", "/api/x", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/x", "Basic good", http.StatusUnauthorized, ""},
		{"bad token", "/api/x", "Bearer bad", http.StatusUnauthorized, ""},
		{"public path", "/health", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	h := Recovery(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	const given = "3f1c7c2e-8d5b-4a53-9a0e-6c8f1d2b4e7a"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, given, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\n")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not a uuid\n", seen)
}

func TestUserRateLimiter(t *testing.T) {
	l := NewUserRateLimiter(2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ok, _ := l.Reserve("a")
	assert.True(t, ok)
	ok, _ = l.Reserve("a")
	assert.True(t, ok)
	ok, wait := l.Reserve("a")
	assert.False(t, ok)
	assert.InDelta(t, 30*time.Second, wait, float64(time.Second))

	ok, _ = l.Reserve("b")
	assert.True(t, ok, "buckets are per user")

	now = now.Add(31 * time.Second)
	ok, _ = l.Reserve("a")
	assert.True(t, ok)
}

func TestRateLimit(t *testing.T) {
	l := NewUserRateLimiter(1)
	h := RateLimit(l, discard)(echoUser())

	req := httputil.WithUserID(httptest.NewRequest(http.MethodPost, "/api/backups/import", nil), "user-1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
