package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	c := NewSystemController("http://localhost:3001")
	c.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	rec := httptest.NewRecorder()

	c.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "2024-01-01T00:00:00Z", body["timestamp"])
	assert.NotEmpty(t, body["message"])
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()

	NewSystemController("").Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestRoutes(t *testing.T) {
	rec := httptest.NewRecorder()

	NewSystemController("https://readings.example.com").Routes(rec, httptest.NewRequest(http.MethodGet, "/routes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "https://readings.example.com", body["baseUrl"])
	routes := body["routes"].([]any)
	require.Len(t, routes, len(Catalog))
	first := routes[0].(map[string]any)
	assert.Equal(t, "GET", first["method"])
	assert.Equal(t, "/", first["path"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["code"])

	rec = httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/data", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", decode(t, rec)["code"])
}
