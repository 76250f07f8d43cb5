package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMiddlewareRejectsMissingUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	UserMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "/api/schedules", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserMiddlewareRejectsInvalidUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	req := httptest.NewRequest("GET", "/api/schedules", nil)
	req.Header.Set("X-User-ID", "not-a-number")

	rec := httptest.NewRecorder()
	UserMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserMiddlewarePassesUserThrough(t *testing.T) {
	var got int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = userFrom(r)
	})

	req := httptest.NewRequest("GET", "/api/schedules", nil)
	req.Header.Set("X-User-ID", "42")

	rec := httptest.NewRecorder()
	UserMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, got)
}

func TestRecoveryMiddlewareTurnsPanicInto500(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
