// Package respond writes API responses and maps domain errors onto the
// error envelope.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/armand/immo-contracts/pkg/api"
	"github.com/armand/immo-contracts/pkg/render"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/workflow"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Fail writes the error envelope with an explicit status and code.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, api.Error{Code: code, Message: message})
}

// Validation writes a 400 validation_error envelope.
func Validation(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, "validation_error", message)
}

// Forbidden writes a 403 not_authorized envelope.
func Forbidden(w http.ResponseWriter, message string) {
	Fail(w, http.StatusForbidden, "not_authorized", message)
}

// Error maps a domain error onto the envelope. Unrecognized errors are logged
// and surfaced as an opaque 500.
func Error(w http.ResponseWriter, err error) {
	var renderErr *render.Error
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, storage.ErrVersionConflict):
		Fail(w, http.StatusConflict, "version_conflict", "the contract changed underneath this request, retry with fresh data")
	case errors.Is(err, storage.ErrInvalidState):
		Fail(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, workflow.ErrNotAParty):
		Fail(w, http.StatusForbidden, "not_a_party", "user is not a party to this contract")
	case errors.Is(err, workflow.ErrAmbiguousParty):
		Fail(w, http.StatusUnprocessableEntity, "ambiguous_party", "cannot resolve the opposing party")
	case errors.Is(err, workflow.ErrInvalidOtp):
		Fail(w, http.StatusBadRequest, "invalid_otp", "the submitted code is not valid")
	case errors.Is(err, workflow.ErrOtpExpired):
		Fail(w, http.StatusBadRequest, "otp_expired", "the code expired, request a new one")
	case errors.As(err, &renderErr):
		slog.Error("rendering service failure", "error", err)
		Fail(w, http.StatusBadGateway, "render_failure", "document rendering failed")
	default:
		slog.Error("unhandled error", "error", err)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
