package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto an HTTP status. Domain errors
// keep their stable code; anything else is an internal error.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeOrderNotFound, model.ErrCodeUnknownConfirmation:
		status = http.StatusNotFound
	case model.ErrCodeValidationFailure, model.ErrCodeInvalidTransition,
		model.ErrCodeClaimNotPaid, model.ErrCodeMissingField, model.ErrCodeInvalidJSON:
		status = http.StatusUnprocessableEntity
	case model.ErrCodeDuplicateOrder:
		status = http.StatusConflict
	case model.ErrCodeImportFormat:
		status = http.StatusBadRequest
	case model.ErrCodeFetchFailure, model.ErrCodeNotification:
		status = http.StatusBadGateway
	}

	writeError(w, status, domainErr.Code, domainErr.Message, logger)
}
