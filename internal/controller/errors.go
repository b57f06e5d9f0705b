package controller

import (
	"errors"
	"net/http"

	"CapIot.readings/internal/models"
	"CapIot.readings/internal/service"
	"CapIot.readings/internal/utils"
	"go.uber.org/zap"
)

// respondWithServiceError maps a service error onto the API error envelope.
// failure is the generic label used when the store itself failed.
func (c *DataController) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, id, failure string) {
	var (
		vErr *service.ValidationError
		pErr *service.ParameterError
	)
	switch {
	case errors.As(err, &vErr):
		if len(vErr.Missing) > 0 {
			utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeValidationFailed, vErr.Message, map[string]any{
				"required": vErr.Required,
				"missing":  vErr.Missing,
			}, http.StatusBadRequest))
			return
		}
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMissingParameter, vErr.Message, map[string]any{
			"required": vErr.Required,
			"format":   vErr.Format,
		}, http.StatusBadRequest))
	case errors.As(err, &pErr):
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInvalidFormat, pErr.Error(), map[string]string{
			"param":  pErr.Param,
			"value":  pErr.Value,
			"reason": pErr.Reason,
		}, http.StatusBadRequest))
	case errors.Is(err, service.ErrNotFound):
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeResourceNotFound, "Data not found", map[string]string{
			"id": id,
		}, http.StatusNotFound))
	default:
		c.logger.Error(failure,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInternalServerError, failure, err.Error(), http.StatusInternalServerError))
	}
}
