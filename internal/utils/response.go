package utils

import (
	"encoding/json"
	"net/http"

	"CapIot.readings/internal/models"
	"go.uber.org/zap"
)

// RespondWithError sends a JSON error response using the APIError model.
// The status code comes from the APIError.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	RespondWithJSON(writer, apiErr.StatusCode, apiErr)
}

// RespondWithJSON sends a JSON response with the given status code.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		// headers are already sent, so all we can do is log
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}
