package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string              `json:"error"`
	Code  apperrors.ErrorCode `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.MustGlobal().Warn("Failed to encode response", logging.Err(err))
	}
}

func respondError(w http.ResponseWriter, status int, code apperrors.ErrorCode, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondErr classifies err and replies with the registered status.
func respondErr(w http.ResponseWriter, err error, message string) {
	code := apperrors.CodeOf(err)
	var ae *apperrors.AnalysisError
	if message == "" {
		message = err.Error()
		if errors.As(err, &ae) {
			message = ae.Message
		}
	}
	respondError(w, apperrors.HTTPStatus(code), code, message)
}
