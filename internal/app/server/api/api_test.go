package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipsync/internal/app/server/config"
	gosync "clipsync/internal/domain/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newMux(t *testing.T) http.Handler {
	t.Helper()
	return newMuxWith(t, config.RateLimit{})
}

func newMuxWith(t *testing.T, limit config.RateLimit) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := slog.Default()
	return New(ctx, &Services{Hub: gosync.NewHub(nil, nil, log), RateLimit: limit}, log)
}

func TestNew_RegistersAllOperations(t *testing.T) {
	mux := newMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	want := map[string][]string{
		"/health":                  {"get"},
		"/api/auth/register":       {"post"},
		"/api/auth/login":          {"post"},
		"/api/auth/profile":        {"get"},
		"/api/auth/logout":         {"post"},
		"/api/clipboard":           {"get", "post"},
		"/api/clipboard/{id}":      {"patch", "delete"},
		"/api/clipboard/{id}/use":  {"post"},
		"/api/clipboard/most-used": {"get"},
		"/api/clipboard/stats":     {"get"},
		"/api/clipboard/search":    {"get"},
		"/api/devices":             {"get"},
		"/api/devices/{deviceId}":  {"delete"},
		"/api/backup":              {"get", "post"},
		"/api/backup/{id}":         {"put", "delete"},
		"/api/backup/{id}/trigger": {"post"},
	}
	for path, methods := range want {
		require.Contains(t, doc.Paths, path)
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, "%s %s", m, path)
		}
	}
}

func TestNew_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestNew_ProtectedRouteRequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clipboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())
}

func TestNew_WebsocketRequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_APIRateLimited(t *testing.T) {
	mux := newMuxWith(t, config.RateLimit{Window: time.Hour, MaxRequests: 1})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clipboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clipboard", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	// health не ограничивается
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
