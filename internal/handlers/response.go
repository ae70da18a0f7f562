package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"client-feedback-admin/internal/importer"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/services"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(log *logger.Logger, w http.ResponseWriter, statusCode int, message string, err error) {
	response := map[string]interface{}{
		"error":     message,
		"status":    statusCode,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err != nil {
		entry := log.WithError(err).WithField("status", statusCode)
		// 5xx causes stay in the log
		if statusCode >= http.StatusInternalServerError {
			entry.Error(message)
		} else {
			entry.Debug(message)
			response["details"] = err.Error()
		}
	}

	writeJSONResponse(w, statusCode, response)
}

// writeServiceError maps a service error onto an HTTP status
func writeServiceError(log *logger.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrUnreadableFile),
		errors.Is(err, importer.ErrEmptyFile),
		errors.Is(err, importer.ErrNotClientList),
		errors.Is(err, services.ErrNoValidRecords):
		writeErrorResponse(log, w, http.StatusBadRequest, "Import file rejected", err)
	case errors.Is(err, models.ErrValidation):
		writeErrorResponse(log, w, http.StatusUnprocessableEntity, "Validation failed", err)
	case errors.Is(err, services.ErrImportNotFound):
		writeErrorResponse(log, w, http.StatusNotFound, "Import not found", err)
	case errors.Is(err, services.ErrClientNotFound):
		writeErrorResponse(log, w, http.StatusNotFound, "Client not found", err)
	case errors.Is(err, services.ErrImportForbidden):
		writeErrorResponse(log, w, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, services.ErrEmailTaken):
		writeErrorResponse(log, w, http.StatusConflict, "Email already in use", err)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeErrorResponse(log, w, http.StatusUnauthorized, "Invalid credentials", nil)
	default:
		writeErrorResponse(log, w, http.StatusInternalServerError, "Internal server error", err)
	}
}

func decodeJSONBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
