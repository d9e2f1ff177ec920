package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *MetricsService) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Code, rec.Body.String()
}

func TestMetricsServiceRecordsCommands(t *testing.T) {
	m := NewMetricsService()
	m.RecordCommand("ASSIGN_DEGREE", nil, 2*time.Millisecond)
	m.RecordCommand("ASSIGN_DEGREE", errors.New("out of range"), time.Millisecond)
	m.RecordCommand("ASSIGN_DEGREE", errors.New("not authorized"), time.Millisecond)

	code, body := scrape(t, m)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `registry_commands_total{command="ASSIGN_DEGREE",outcome="committed"} 1`)
	assert.Contains(t, body, `registry_commands_total{command="ASSIGN_DEGREE",outcome="rejected"} 2`)
	assert.Contains(t, body, `registry_command_duration_seconds_count{command="ASSIGN_DEGREE"} 3`)
}

func TestMetricsServiceRecordsHTTPAndCache(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/classes", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	_, body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/v1/classes",status="200"} 1`)
	assert.Contains(t, body, "cache_hits_total 1")
	assert.Contains(t, body, "cache_misses_total 2")
	assert.Contains(t, body, "goroutines_total")
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordCommand("ENROLL_STUDENT", nil, time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	code, _ := scrape(t, m)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
