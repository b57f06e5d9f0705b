package controller

import (
	"net/http"
	"time"

	"CapIot.readings/internal/models"
	"CapIot.readings/internal/utils"
)

// Catalog is the static list of routes served by the API, reported by GET /routes.
var Catalog = []models.RouteInfo{
	{Method: http.MethodGet, Path: "/", Description: "Service status and current server time"},
	{Method: http.MethodGet, Path: "/health", Description: "Health check"},
	{Method: http.MethodGet, Path: "/routes", Description: "List available routes"},
	{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
	{Method: http.MethodPost, Path: "/data", Description: "Save a reading (value1 to value5 required)"},
	{Method: http.MethodGet, Path: "/data", Description: "List readings (query: limit, orderBy, order)"},
	{Method: http.MethodGet, Path: "/data/latest", Description: "Get the most recent reading"},
	{Method: http.MethodGet, Path: "/data/range", Description: "List readings between startDate and endDate (YYYY-MM-DD, query: limit)"},
	{Method: http.MethodGet, Path: "/data/{id}", Description: "Get a reading by id"},
	{Method: http.MethodDelete, Path: "/data/{id}", Description: "Delete a reading by id"},
}

// SystemController serves the status, health and route catalog endpoints.
type SystemController struct {
	baseURL string
	now     func() time.Time
}

func NewSystemController(baseURL string) *SystemController {
	return &SystemController{baseURL: baseURL, now: time.Now}
}

// Root handles GET /.
func (c *SystemController) Root(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, models.StatusResponse{
		Message:   "Readings API is running",
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
	})
}

// Health handles GET /health.
func (c *SystemController) Health(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Message: "Service is up and running",
	})
}

// Routes handles GET /routes.
func (c *SystemController) Routes(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, models.RoutesResponse{
		Message: "Available routes",
		Routes:  Catalog,
		BaseURL: c.baseURL,
	})
}

// NotFound answers requests for paths no route matches.
func NotFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeNotFound, "Route not found", map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
	}, http.StatusNotFound))
}

// MethodNotAllowed answers requests whose path matches but whose method does not.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, "Method not allowed", map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
	}, http.StatusMethodNotAllowed))
}
