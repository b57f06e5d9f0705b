package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"CapIot.readings/internal/models"
	"CapIot.readings/internal/service"
	"CapIot.readings/internal/utils"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxBodyBytes bounds the size of a POST /data body.
const maxBodyBytes = 1 << 20

// rangeEchoLayout renders the effective bounds of a range query.
const rangeEchoLayout = "2006-01-02T15:04:05.000Z07:00"

// DataController handles HTTP requests for readings.
type DataController struct {
	service *service.DataService
	logger  *zap.Logger
}

// NewDataController creates a new DataController.
func NewDataController(service *service.DataService, logger *zap.Logger) *DataController {
	return &DataController{
		service: service,
		logger:  logger,
	}
}

// SaveData handles POST /data.
func (c *DataController) SaveData(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var body map[string]any
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body)
	if err != nil && !errors.Is(err, io.EOF) {
		apiErr := models.NewAPIError(models.ErrorCodeBadRequest, "Invalid request payload", fmt.Sprintf("error decoding JSON: %v", err), http.StatusBadRequest)
		utils.RespondWithError(w, apiErr)
		return
	}
	if body == nil {
		// an empty or literal null body supplies no fields at all
		body = map[string]any{}
	}

	reading, err := c.service.SaveReading(r.Context(), body)
	if err != nil {
		c.respondWithServiceError(w, r, err, "", "Failed to save data")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.SaveResponse{
		Message:   "Data saved successfully",
		ID:        reading.ID,
		Timestamp: reading.Timestamp,
	})
}

// ListData handles GET /data.
func (c *DataController) ListData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	readings, err := c.service.ListReadings(r.Context(), service.ListParams{
		Limit:   query.Get("limit"),
		OrderBy: query.Get("orderBy"),
		Order:   query.Get("order"),
	})
	if err != nil {
		c.respondWithServiceError(w, r, err, "", "Failed to retrieve data")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.ListResponse{
		Message: listMessage(len(readings)),
		Data:    nonNil(readings),
		Count:   len(readings),
	})
}

// GetData handles GET /data/{id}.
func (c *DataController) GetData(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	reading, err := c.service.GetReading(r.Context(), id)
	if err != nil {
		c.respondWithServiceError(w, r, err, id, "Failed to retrieve data")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.ReadingResponse{
		Message: "Data retrieved successfully",
		Data:    reading,
	})
}

// LatestData handles GET /data/latest.
func (c *DataController) LatestData(w http.ResponseWriter, r *http.Request) {
	reading, err := c.service.LatestReading(r.Context())
	if err != nil {
		c.respondWithServiceError(w, r, err, "", "Failed to retrieve latest data")
		return
	}

	message := "Latest data retrieved successfully"
	if reading == nil {
		message = "No data found"
	}
	utils.RespondWithJSON(w, http.StatusOK, models.ReadingResponse{
		Message: message,
		Data:    reading,
	})
}

// RangeData handles GET /data/range.
func (c *DataController) RangeData(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := c.service.ReadingsInRange(r.Context(), service.RangeParams{
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
		Limit:     query.Get("limit"),
	})
	if err != nil {
		c.respondWithServiceError(w, r, err, "", "Failed to retrieve data by date range")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.RangeResponse{
		Message: listMessage(len(result.Readings)),
		Data:    nonNil(result.Readings),
		Count:   len(result.Readings),
		Range: models.DateRange{
			StartDate: result.Start.UTC().Format(rangeEchoLayout),
			EndDate:   result.End.UTC().Format(rangeEchoLayout),
		},
	})
}

// DeleteData handles DELETE /data/{id}.
func (c *DataController) DeleteData(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := c.service.DeleteReading(r.Context(), id); err != nil {
		c.respondWithServiceError(w, r, err, id, "Failed to delete data")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.DeleteResponse{
		Message: "Data deleted successfully",
		ID:      id,
	})
}

func listMessage(count int) string {
	if count == 0 {
		return "No data found"
	}
	return "Data retrieved successfully"
}

// nonNil keeps empty results encoded as [] instead of null.
func nonNil(readings []models.Reading) []models.Reading {
	if readings == nil {
		return []models.Reading{}
	}
	return readings
}
