// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// validate checks request payloads against their struct tags. A single
// instance caches the struct metadata.
var validate = validator.New()

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps any error onto the structured error envelope. The
// user-facing message survives verbatim so clients can show it inline.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := errors.Wrap(err, "request failed")

	if appErr.StatusCode() >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	writeJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}

// decodeBody unmarshals and validates a JSON request payload.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewBadRequestError("invalid JSON payload")
	}
	if err := validate.Struct(dst); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}
