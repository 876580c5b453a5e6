package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fjod/storefront/internal/service"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	respondJSON(w, status, resp)
}

// handleServiceError maps service errors to 400, 404 or 500. message is the
// generic text used for server errors.
func handleServiceError(w http.ResponseWriter, log zerolog.Logger, err error, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, clientMessage(err, service.ErrInvalidInput), nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, clientMessage(err, service.ErrNotFound), nil)
	default:
		log.Error().Err(err).Msg(message)
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

// clientMessage strips the sentinel prefix and capitalises the rest, so
// "not found: coupon expired" becomes "Coupon expired".
func clientMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
