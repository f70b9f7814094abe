package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"accu-registry/apperrors"
	"accu-registry/utils"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps a domain error to its HTTP status and writes the
// machine-readable envelope. Unexpected errors become an opaque 500.
func respondError(w http.ResponseWriter, err error) {
	kind := apperrors.Kind(err)

	var status int
	message := err.Error()
	switch kind {
	case "NotFound":
		status = http.StatusNotFound
	case "ValidationError", "ClassificationMismatch":
		status = http.StatusBadRequest
	case "InvalidStateTransition", "InsufficientCollateral", "ConflictError":
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		utils.LogError("Unexpected error: %v", err)
		utils.GetMetrics().RecordError(err)
	}

	respondJSON(w, status, map[string]string{
		"error":   kind,
		"message": message,
	})
}

// pathID extracts the numeric {id} path variable
func pathID(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid id in path")
	}
	return uint(id), nil
}

// queryUint parses an optional unsigned query parameter, 0 when absent
func queryUint(r *http.Request, name string) (uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid " + name + " query parameter")
	}
	return uint(v), nil
}

// decodeBody decodes a JSON request body into dst
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	return nil
}
