package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-registry-api/internal/middleware"
	"github.com/noah-isme/degree-registry-api/internal/models"
	"github.com/noah-isme/degree-registry-api/internal/registry"
	"github.com/noah-isme/degree-registry-api/internal/repository"
	"github.com/noah-isme/degree-registry-api/internal/service"
)

const testPrincipalHeader = "X-Test-Principal"

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func newRegistryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	journal := repository.NewMemoryJournal()
	cache := service.NewCacheService(repository.NewCacheRepository(nil, nil), nil, 0, nil, false)
	svc := service.NewRegistryService(registry.New(registry.WithJournal(journal)), journal, cache, nil, nil, nil)

	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.Use(func(c *gin.Context) {
		if p := c.GetHeader(testPrincipalHeader); p != "" {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: p}})
		}
		c.Next()
	})
	NewRegistryHandler(svc).Register(router.Group("/api/v1"))
	return router
}

func call(t *testing.T, router *gin.Engine, method, path, principal string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(testPrincipalHeader, principal)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func seedClass(t *testing.T, router *gin.Engine) {
	t.Helper()
	steps := []struct {
		method, path, principal string
		body                    interface{}
	}{
		{http.MethodPost, "/api/v1/professors", "0xprof", gin.H{"display_name": "Ada"}},
		{http.MethodPost, "/api/v1/students", "0xstu", gin.H{"student_id": 1001, "display_name": "Grace"}},
		{http.MethodPost, "/api/v1/courses", "0xprof", gin.H{"name": "Mechanics", "code": "M101"}},
		{http.MethodPost, "/api/v1/classes", "0xprof", gin.H{"course_code": "M101"}},
		{http.MethodPost, "/api/v1/classes/1/enrollments", "0xstu", gin.H{"student_id": 1001}},
	}
	for _, step := range steps {
		rec, _ := call(t, router, step.method, step.path, step.principal, step.body)
		require.Equal(t, http.StatusCreated, rec.Code, "%s %s: %s", step.method, step.path, rec.Body.String())
	}
}

func TestRegistryHandlerDegreeLifecycle(t *testing.T) {
	router := newRegistryRouter(t)
	seedClass(t, router)

	rec, env := call(t, router, http.MethodGet, "/api/v1/classes/1/enrollments/1001", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status service.EnrollmentStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Enrolled)

	rec, _ = call(t, router, http.MethodPost, "/api/v1/classes/1/degrees", "0xprof", gin.H{"student_id": 1001, "value": 0})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = call(t, router, http.MethodPut, "/api/v1/classes/1/degrees/1001", "0xprof", gin.H{"value": 1000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = call(t, router, http.MethodGet, "/api/v1/classes/1/degrees/1001", "0xstu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view models.DegreeView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, int64(1000), view.Value)
	assert.Equal(t, models.Principal("0xprof"), view.LastModifiedBy)

	rec, env = call(t, router, http.MethodGet, "/api/v1/classes/1/degrees", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all models.ClassDegrees
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Equal(t, []int64{1001}, all.StudentIDs)
	assert.Equal(t, []int64{1000}, all.Values)
	assert.Equal(t, false, env.Meta["cache_hit"])

	rec, _ = call(t, router, http.MethodGet, "/api/v1/classes/1/degrees/export?format=csv", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "class-1-degrees.csv")
	assert.Contains(t, rec.Body.String(), "1001,Grace,1000,0xprof")
}

func TestRegistryHandlerErrorStatuses(t *testing.T) {
	router := newRegistryRouter(t)
	seedClass(t, router)
	call(t, router, http.MethodPost, "/api/v1/students", "0xstu2", gin.H{"student_id": 1002, "display_name": "Linus"})

	cases := []struct {
		name      string
		method    string
		path      string
		principal string
		body      interface{}
		status    int
		code      string
	}{
		{"out of range", http.MethodPost, "/api/v1/classes/1/degrees", "0xprof", gin.H{"student_id": 1001, "value": 1001}, http.StatusUnprocessableEntity, "OUT_OF_RANGE"},
		{"not owner", http.MethodPost, "/api/v1/classes/1/degrees", "0xstu", gin.H{"student_id": 1001, "value": 5}, http.StatusForbidden, "NOT_AUTHORIZED"},
		{"not enrolled", http.MethodPost, "/api/v1/classes/1/degrees", "0xprof", gin.H{"student_id": 1002, "value": 5}, http.StatusConflict, "INVALID_STATE"},
		{"alter without record", http.MethodPut, "/api/v1/classes/1/degrees/1001", "0xprof", gin.H{"value": 5}, http.StatusConflict, "INVALID_STATE"},
		{"missing value", http.MethodPost, "/api/v1/classes/1/degrees", "0xprof", gin.H{"student_id": 1001}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad class id", http.MethodGet, "/api/v1/classes/abc", "0xprof", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown class", http.MethodGet, "/api/v1/classes/9/degrees", "0xprof", nil, http.StatusNotFound, "NOT_FOUND"},
		{"duplicate enrollment", http.MethodPost, "/api/v1/classes/1/enrollments", "0xstu", gin.H{"student_id": 1001}, http.StatusConflict, "ALREADY_EXISTS"},
		{"no caller", http.MethodPost, "/api/v1/courses", "", gin.H{"name": "X", "code": "X1"}, http.StatusForbidden, "NOT_AUTHORIZED"},
		{"no degree", http.MethodGet, "/api/v1/classes/1/degrees/1001", "0xprof", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad export format", http.MethodGet, "/api/v1/classes/1/degrees/export?format=docx", "0xprof", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := call(t, router, tc.method, tc.path, tc.principal, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestRegistryHandlerLookups(t *testing.T) {
	router := newRegistryRouter(t)
	seedClass(t, router)

	rec, env := call(t, router, http.MethodGet, "/api/v1/professors/me", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var professor models.Professor
	require.NoError(t, json.Unmarshal(env.Data, &professor))
	assert.Equal(t, "Ada", professor.DisplayName)

	rec, _ = call(t, router, http.MethodGet, "/api/v1/professors/0xstu", "0xprof", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = call(t, router, http.MethodGet, "/api/v1/students/1001", "0xprof", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = call(t, router, http.MethodGet, "/api/v1/courses/M101", "0xprof", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = call(t, router, http.MethodGet, "/api/v1/classes", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), env.Meta["count"])

	rec, env = call(t, router, http.MethodGet, "/api/v1/classes/1/roster", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster models.ClassRoster
	require.NoError(t, json.Unmarshal(env.Data, &roster))
	require.Len(t, roster.Students, 1)
	assert.Nil(t, roster.Students[0].Degree)

	rec, env = call(t, router, http.MethodGet, "/api/v1/stats", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.RegistryStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(5), stats.LastSeq)
	assert.Equal(t, 1, stats.Enrollments)
}

func TestRegistryHandlerJournal(t *testing.T) {
	router := newRegistryRouter(t)
	seedClass(t, router)

	rec, env := call(t, router, http.MethodGet, "/api/v1/journal?after=3&limit=1", "0xprof", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.JournalEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, models.CommandRegisterClass, entries[0].Command)
	assert.Equal(t, float64(4), env.Meta["next_after"])

	rec, _ = call(t, router, http.MethodGet, "/api/v1/journal?after=x", "0xprof", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
