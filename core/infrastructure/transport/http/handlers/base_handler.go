package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	logger logging.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(tag string) *BaseHandler {
	return &BaseHandler{
		logger: logging.New(tag),
	}
}

// Logger returns the handler's logger
func (h *BaseHandler) Logger() logging.Logger {
	return h.logger
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Errorf("Failed to encode JSON response: %v", err)
	}
}

// WriteError writes an error response with the status mapped from its code
func (h *BaseHandler) WriteError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	message := err.Error()
	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.PrintError("request failed", err)
	}
	h.WriteJSON(w, status, dto.ErrorResponse{Detail: message})
}

// WriteValidationError writes a validation error response
func (h *BaseHandler) WriteValidationError(w http.ResponseWriter, details []dto.ErrorDetail) {
	h.WriteJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
		Detail:  "Validation failed",
		Details: details,
	})
}

// WriteSuccess writes a success response
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, data any) {
	h.WriteJSON(w, http.StatusOK, data)
}
