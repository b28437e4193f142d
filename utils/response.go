package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"fashion-store/services"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// RespondJSON writes the envelope with the given status code.
func RespondJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// RespondData writes a successful envelope.
func RespondData(w http.ResponseWriter, status int, message string, data interface{}) {
	RespondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// RespondMessage writes a success envelope with no data payload.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: true, Message: message})
}

// RespondErrorMessage writes a failure envelope with an explicit status.
func RespondErrorMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: false, Message: message})
}

// RespondError maps a service error onto the HTTP taxonomy. Unexpected
// errors are logged and surfaced as a generic 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondErrorMessage(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrForbidden):
		RespondErrorMessage(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrConflict):
		RespondErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrValidation):
		RespondErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientStock):
		RespondErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientBalance):
		RespondErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		RespondErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("internal server error")
		RespondErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
